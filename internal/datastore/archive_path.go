package datastore

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/aleister1102/revtrail/internal/common"
)

const (
	archiveFileName = "revisions.parquet"
	slugHashLength  = 8
)

var unsafeSlugChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ArchivePathGenerator maps document slugs to archive file locations
type ArchivePathGenerator struct {
	basePath string
}

// NewArchivePathGenerator creates a new path generator rooted at basePath
func NewArchivePathGenerator(basePath string) *ArchivePathGenerator {
	return &ArchivePathGenerator{basePath: basePath}
}

// ArchiveFilePath returns <base>/<dir>/revisions.parquet for slug
func (apg *ArchivePathGenerator) ArchiveFilePath(slug string) (string, error) {
	dir, err := SlugDirName(slug)
	if err != nil {
		return "", err
	}
	return filepath.Join(apg.basePath, dir, archiveFileName), nil
}

// SlugDirName turns slug into a single safe directory name. Slugs that need
// rewriting get a short hash suffix so distinct slugs never share a directory.
func SlugDirName(slug string) (string, error) {
	trimmed := strings.TrimSpace(slug)
	if trimmed == "" || trimmed == "." || trimmed == ".." {
		return "", common.NewValidationError("slug", slug, "slug must name a document")
	}

	safe := unsafeSlugChars.ReplaceAllString(trimmed, "-")
	safe = strings.Trim(safe, ".-")
	if safe == slug {
		return safe, nil
	}
	if safe == "" {
		safe = "document"
	}
	return safe + "-" + hashSlug(slug), nil
}

func hashSlug(slug string) string {
	sum := sha256.Sum256([]byte(slug))
	return hex.EncodeToString(sum[:])[:slugHashLength]
}
