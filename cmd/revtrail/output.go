package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/aleister1102/revtrail/internal/models"
	"github.com/olekukonko/tablewriter"
)

const (
	noHistoryMessage = "no recoverable history"
	dateLayout       = "2006-01-02 15:04"
)

type exportResult struct {
	Slug      string `json:"slug"`
	Revisions int    `json:"revisions"`
	File      string `json:"file"`
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderCatalog(out io.Writer, catalog []models.WritingMetadata) {
	table := newTable(out, []string{"Updated", "Slug", "Revisions", "Title"})
	for _, entry := range catalog {
		table.Append([]string{
			formatDate(entry.UpdatedAt),
			entry.Slug,
			strconv.Itoa(entry.RevisionCount),
			entry.Title,
		})
	}
	table.Render()
}

func renderHistory(out io.Writer, w *models.WritingWithHistory) {
	meta := w.Metadata
	fmt.Fprintf(out, "%s (%s)\n", meta.Title, meta.Slug)
	if len(meta.Authors) > 0 {
		fmt.Fprintf(out, "by %s\n", strings.Join(meta.Authors, ", "))
	}
	fmt.Fprintf(out, "%d revisions, %s to %s\n\n", meta.RevisionCount, formatDate(meta.CreatedAt), formatDate(meta.UpdatedAt))

	table := newTable(out, []string{"Change", "Date", "Author", "Summary", "Diff"})
	for _, rev := range w.Revisions {
		table.Append([]string{
			rev.ShortID,
			formatDate(rev.Timestamp),
			rev.AuthorName,
			rev.Summary,
			formatDiffStat(rev.Diff),
		})
	}
	table.Render()

	for _, b := range meta.Branches {
		fmt.Fprintf(out, "\nbranch %s: %s (%d changes)\n", b.Label, b.URL, len(b.Revisions))
	}
	if w.NextSlug != "" && w.NextSlug != meta.Slug {
		fmt.Fprintf(out, "\nnext: %s\n", w.NextSlug)
	}
}

func renderExports(out io.Writer, exported []exportResult) {
	table := newTable(out, []string{"Slug", "Revisions", "File"})
	for _, e := range exported {
		table.Append([]string{e.Slug, strconv.Itoa(e.Revisions), e.File})
	}
	table.Render()
}

func newTable(out io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(out)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	return table
}

// formatDiffStat renders "+a/-d"; the oldest revision has no diff.
func formatDiffStat(diff *models.DiffResult) string {
	if diff == nil {
		return "initial"
	}
	return fmt.Sprintf("+%d/-%d", diff.Additions, diff.Deletions)
}

func formatDate(t time.Time) string {
	if formatted := models.FormatTimeOptional(t.UTC(), dateLayout); formatted != "" {
		return formatted
	}
	return "-"
}
