package host

import (
	"time"

	"github.com/aleister1102/revtrail/internal/common"
	"github.com/aleister1102/revtrail/internal/models"
)

// commitPayload is one entry of GET /repos/{owner}/{repo}/commits
type commitPayload struct {
	SHA    string `json:"sha"`
	Commit struct {
		Author struct {
			Name string `json:"name"`
			Date string `json:"date"`
		} `json:"author"`
		Message string `json:"message"`
	} `json:"commit"`
}

// toChangeRecord fails when the payload lacks an id or carries an unparsable date.
func (p commitPayload) toChangeRecord() (models.ChangeRecord, error) {
	if p.SHA == "" {
		return models.ChangeRecord{}, common.WrapError(common.ErrMalformedPayload, "commit without sha")
	}
	ts, err := time.Parse(time.RFC3339, p.Commit.Author.Date)
	if err != nil {
		return models.ChangeRecord{}, common.WrapErrorf(common.ErrMalformedPayload,
			"commit %s has invalid date %q", p.SHA, p.Commit.Author.Date)
	}
	return models.NewChangeRecord(p.SHA, ts, p.Commit.Author.Name, p.Commit.Message), nil
}

// contentPayload is the file variant of GET /repos/{owner}/{repo}/contents/{path}
type contentPayload struct {
	Type     string `json:"type"`
	Path     string `json:"path"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// directoryEntry is one element of the directory variant of the contents endpoint
type directoryEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"`
}
