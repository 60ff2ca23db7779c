package writing

import (
	"testing"

	"github.com/aleister1102/revtrail/internal/common"
	"github.com/aleister1102/revtrail/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFrontmatter(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    models.Frontmatter
	}{
		{
			name:    "no frontmatter uses first heading",
			content: "intro\n# The Title\n\nbody\n",
			want:    models.Frontmatter{Title: "The Title", Body: "intro\n# The Title\n\nbody\n"},
		},
		{
			name:    "no frontmatter and no heading",
			content: "just prose\n",
			want:    models.Frontmatter{Body: "just prose\n"},
		},
		{
			name:    "single author",
			content: "---\ntitle: \"Jazz\"\ndescription: on improvisation\nauthor: Ada\n---\n\n# Heading\nbody\n\n",
			want: models.Frontmatter{
				Title:       "Jazz",
				Description: "on improvisation",
				Authors:     []string{"Ada"},
				Body:        "# Heading\nbody",
			},
		},
		{
			name:    "comma separated authors",
			content: "---\nauthors: Ada, Grace,Linus\n---\nbody",
			want:    models.Frontmatter{Authors: []string{"Ada", "Grace", "Linus"}, Body: "body"},
		},
		{
			name:    "yaml list of authors and notebook style",
			content: "---\ntitle: Notes\nauthors:\n  - Ada\n  - Grace\nstyle: notebook\n---\nbody\n",
			want: models.Frontmatter{
				Title:   "Notes",
				Authors: []string{"Ada", "Grace"},
				Style:   models.WritingStyleNotebook,
				Body:    "body",
			},
		},
		{
			name:    "unknown style falls back to default",
			content: "---\nstyle: fancy\n---\nbody",
			want:    models.Frontmatter{Style: models.WritingStyleDefault, Body: "body"},
		},
		{
			name:    "empty author value",
			content: "---\nauthor:\n---\nbody",
			want:    models.Frontmatter{Body: "body"},
		},
		{
			name: "branches with and without external history",
			content: "---\nbranches:\n" +
				"  - url: https://blog.example.com/jazz\n    label: Blog\n    repo: ada/blog\n    path: /content/jazz.md\n" +
				"  - url: https://news.example.com/jazz\n    label: \" News \"\n" +
				"  - label: nowhere\n" +
				"---\nbody",
			want: models.Frontmatter{
				Branches: []models.Branch{
					{URL: "https://blog.example.com/jazz", Label: "Blog", Repo: "ada/blog", Path: "content/jazz.md"},
					{URL: "https://news.example.com/jazz", Label: "News"},
				},
				Body: "body",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractFrontmatter(tt.content)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractFrontmatter_InvalidYAMLKeepsBody(t *testing.T) {
	got, err := ExtractFrontmatter("---\ntitle: [unclosed\n---\nbody\n")

	assert.ErrorIs(t, err, common.ErrMalformedPayload)
	assert.Equal(t, "body", got.Body)
	assert.Empty(t, got.Title)
}

func TestFirstHeading(t *testing.T) {
	assert.Equal(t, "Top", FirstHeading("# Top\n# Second\n"))
	assert.Equal(t, "", FirstHeading("## Sub only\n"))
	assert.Equal(t, "", FirstHeading("#NoSpace\n"))
}
