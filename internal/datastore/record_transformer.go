package datastore

import (
	"encoding/json"
	"time"

	"github.com/aleister1102/revtrail/internal/common"
	"github.com/aleister1102/revtrail/internal/models"
)

// RecordTransformer converts between revisions and their archived form
type RecordTransformer struct{}

// NewRecordTransformer creates a new RecordTransformer
func NewRecordTransformer() *RecordTransformer {
	return &RecordTransformer{}
}

// ToParquetRecord converts one revision of the document at path
func (rt *RecordTransformer) ToParquetRecord(slug, path string, rev models.Revision, archivedAt time.Time) (models.ParquetRevisionRecord, error) {
	record := models.ParquetRevisionRecord{
		Slug:        slug,
		Path:        path,
		ChangeID:    rev.ID,
		ShortID:     rev.ShortID,
		TimestampMs: models.TimeToUnixMilli(rev.Timestamp),
		AuthorName:  rev.AuthorName,
		Summary:     rev.Summary,
		Content:     rev.Content,
		ArchivedAt:  models.TimeToUnixMilli(archivedAt),
	}

	if rev.Diff != nil {
		lines, err := json.Marshal(rev.Diff.Lines)
		if err != nil {
			return models.ParquetRevisionRecord{}, common.WrapErrorf(err, "failed to marshal diff of %s", rev.ID)
		}
		diffJSON := string(lines)
		record.DiffJSON = &diffJSON
		record.Additions = int32(rev.Diff.Additions)
		record.Deletions = int32(rev.Diff.Deletions)
	}
	return record, nil
}

// FromParquetRecord rebuilds a revision from its archived form
func (rt *RecordTransformer) FromParquetRecord(record models.ParquetRevisionRecord) (models.Revision, error) {
	rev := models.Revision{
		ChangeRecord: models.ChangeRecord{
			ID:         record.ChangeID,
			ShortID:    record.ShortID,
			Timestamp:  models.UnixMilliToTime(record.TimestampMs),
			AuthorName: record.AuthorName,
			Summary:    record.Summary,
		},
		Content: record.Content,
	}

	if record.DiffJSON != nil {
		var lines []models.DiffLine
		if err := json.Unmarshal([]byte(*record.DiffJSON), &lines); err != nil {
			return models.Revision{}, common.WrapErrorf(common.ErrMalformedPayload, "diff of %s: %v", record.ChangeID, err)
		}
		if lines == nil {
			lines = []models.DiffLine{}
		}
		rev.Diff = &models.DiffResult{
			Lines:     lines,
			Additions: int(record.Additions),
			Deletions: int(record.Deletions),
		}
	}
	return rev, nil
}
