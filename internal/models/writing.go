package models

import "time"

// WritingStyle selects the visual style of a writing.
type WritingStyle string

const (
	WritingStyleDefault  WritingStyle = "default"
	WritingStyleNotebook WritingStyle = "notebook"
)

// Branch links a writing to a related version published elsewhere. When Repo
// ("owner/name") and Path are set, Revisions holds that file's change history.
type Branch struct {
	URL       string         `json:"url" yaml:"url"`
	Label     string         `json:"label" yaml:"label"`
	Repo      string         `json:"repo,omitempty" yaml:"repo"`
	Path      string         `json:"path,omitempty" yaml:"path"`
	Revisions []ChangeRecord `json:"revisions,omitempty" yaml:"-"`
}

// HasExternalHistory reports whether the branch points at a file on the host.
func (b Branch) HasExternalHistory() bool {
	return b.Repo != "" && b.Path != ""
}

// Frontmatter is the metadata block parsed from the top of a document.
type Frontmatter struct {
	Title       string
	Description string
	Authors     []string
	Style       WritingStyle
	Branches    []Branch
	Body        string
}

// WritingMetadata summarises a writing and its history.
type WritingMetadata struct {
	Slug          string       `json:"slug"`
	Title         string       `json:"title"`
	Description   string       `json:"description,omitempty"`
	Authors       []string     `json:"authors,omitempty"`
	Style         WritingStyle `json:"style,omitempty"`
	Branches      []Branch     `json:"branches,omitempty"`
	CreatedAt     time.Time    `json:"createdAt,omitzero"`
	UpdatedAt     time.Time    `json:"updatedAt,omitzero"`
	RevisionCount int          `json:"revisionCount"`
}

// WritingWithHistory is a writing together with its reconstructed revisions, newest first.
// NextSlug names the next more recently updated writing; the newest one wraps
// around to the oldest.
type WritingWithHistory struct {
	Metadata       WritingMetadata `json:"metadata"`
	CurrentContent string          `json:"currentContent"`
	Revisions      []Revision      `json:"revisions"`
	NextSlug       string          `json:"nextSlug,omitempty"`
}

// HasHistory reports whether any revision could be recovered.
func (w *WritingWithHistory) HasHistory() bool {
	return len(w.Revisions) > 0
}
