package writing

import (
	"regexp"
	"strings"

	"github.com/aleister1102/revtrail/internal/common"
	"github.com/aleister1102/revtrail/internal/models"
	"gopkg.in/yaml.v3"
)

var (
	frontmatterPattern = regexp.MustCompile(`^---\n([\s\S]*?)\n---\n([\s\S]*)$`)
	headingPattern     = regexp.MustCompile(`(?m)^#[ \t]+(.+)$`)
	authorSeparator    = regexp.MustCompile(`,\s*`)
)

type frontmatterFields struct {
	Title       string          `yaml:"title"`
	Description string          `yaml:"description"`
	Author      yaml.Node       `yaml:"author"`
	Authors     yaml.Node       `yaml:"authors"`
	Style       string          `yaml:"style"`
	Branches    []models.Branch `yaml:"branches"`
}

// ExtractFrontmatter splits a document into its metadata block and body.
// Without a block the title comes from the first "# " heading and the body is
// the whole content. A block that is not valid YAML still yields the body,
// together with an error wrapping common.ErrMalformedPayload.
func ExtractFrontmatter(content string) (models.Frontmatter, error) {
	match := frontmatterPattern.FindStringSubmatch(content)
	if match == nil {
		return models.Frontmatter{
			Title: FirstHeading(content),
			Body:  content,
		}, nil
	}

	fm := models.Frontmatter{Body: strings.TrimSpace(match[2])}

	var fields frontmatterFields
	if err := yaml.Unmarshal([]byte(match[1]), &fields); err != nil {
		return fm, common.WrapErrorf(common.ErrMalformedPayload, "frontmatter: %v", err)
	}

	fm.Title = strings.TrimSpace(fields.Title)
	fm.Description = strings.TrimSpace(fields.Description)
	fm.Style = parseStyle(fields.Style)
	fm.Branches = parseBranches(fields.Branches)

	fm.Authors = parseAuthors(&fields.Authors)
	if len(fm.Authors) == 0 {
		fm.Authors = parseAuthors(&fields.Author)
	}
	return fm, nil
}

// FirstHeading returns the text of the first level-one heading, or "".
func FirstHeading(content string) string {
	match := headingPattern.FindStringSubmatch(content)
	if match == nil {
		return ""
	}
	return strings.TrimSpace(match[1])
}

func parseAuthors(node *yaml.Node) []string {
	var raw []string
	switch node.Kind {
	case yaml.ScalarNode:
		raw = authorSeparator.Split(node.Value, -1)
	case yaml.SequenceNode:
		if err := node.Decode(&raw); err != nil {
			return nil
		}
	default:
		return nil
	}

	authors := make([]string, 0, len(raw))
	for _, a := range raw {
		if a = strings.TrimSpace(a); a != "" {
			authors = append(authors, a)
		}
	}
	if len(authors) == 0 {
		return nil
	}
	return authors
}

// parseBranches trims every field and drops entries that link nowhere.
func parseBranches(raw []models.Branch) []models.Branch {
	var branches []models.Branch
	for _, b := range raw {
		b = models.Branch{
			URL:   strings.TrimSpace(b.URL),
			Label: strings.TrimSpace(b.Label),
			Repo:  strings.Trim(strings.TrimSpace(b.Repo), "/"),
			Path:  strings.Trim(strings.TrimSpace(b.Path), "/"),
		}
		if b.URL == "" && !b.HasExternalHistory() {
			continue
		}
		branches = append(branches, b)
	}
	return branches
}

func parseStyle(style string) models.WritingStyle {
	switch strings.ToLower(strings.TrimSpace(style)) {
	case "":
		return ""
	case string(models.WritingStyleNotebook):
		return models.WritingStyleNotebook
	default:
		return models.WritingStyleDefault
	}
}
