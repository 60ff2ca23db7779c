package models

// ParquetRevisionRecord is one archived revision, stored with parquet-go/parquet-go.
// Timestamps are Unix milliseconds. The diff lines are stored as a JSON string;
// DiffJSON is null for revisions without a diff.
type ParquetRevisionRecord struct {
	Slug        string  `parquet:"slug,dict"`
	Path        string  `parquet:"path,dict"`
	ChangeID    string  `parquet:"change_id"`
	ShortID     string  `parquet:"short_id"`
	TimestampMs int64   `parquet:"timestamp_ms"`
	AuthorName  string  `parquet:"author_name,dict"`
	Summary     string  `parquet:"summary"`
	Content     string  `parquet:"content"`
	Additions   int32   `parquet:"additions"`
	Deletions   int32   `parquet:"deletions"`
	DiffJSON    *string `parquet:"diff_json,optional"`
	ArchivedAt  int64   `parquet:"archived_at_ms"`
}
