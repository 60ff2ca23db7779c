package datastore

import (
	"time"

	"github.com/aleister1102/revtrail/internal/models"
)

func sampleRevisions() []models.Revision {
	return []models.Revision{
		{
			ChangeRecord: models.NewChangeRecord("cccccccc33", time.Unix(300, 0).UTC(), "Ada", "third"),
			Content:      "one\ntwo\nthree\n",
			Diff: &models.DiffResult{
				Lines: []models.DiffLine{
					{Type: models.DiffLineContext, Content: "one", OldLineNumber: 1, NewLineNumber: 1},
					{Type: models.DiffLineAdd, Content: "two", NewLineNumber: 2},
					{Type: models.DiffLineContext, Content: "three", OldLineNumber: 2, NewLineNumber: 3},
				},
				Additions: 1,
			},
		},
		{
			ChangeRecord: models.NewChangeRecord("bbbbbbbb22", time.Unix(200, 0).UTC(), "Grace", "second"),
			Content:      "one\nthree\n",
			Diff: &models.DiffResult{
				Lines: []models.DiffLine{
					{Type: models.DiffLineContext, Content: "one", OldLineNumber: 1, NewLineNumber: 1},
					{Type: models.DiffLineRemove, Content: "zwei", OldLineNumber: 2},
					{Type: models.DiffLineAdd, Content: "three", NewLineNumber: 2},
				},
				Additions: 1,
				Deletions: 1,
			},
		},
		{
			ChangeRecord: models.NewChangeRecord("aaaaaaaa11", time.Unix(100, 0).UTC(), "Ada", "first"),
			Content:      "ünïcödé\n",
		},
	}
}
