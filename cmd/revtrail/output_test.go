package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/aleister1102/revtrail/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestFormatDiffStat(t *testing.T) {
	assert.Equal(t, "initial", formatDiffStat(nil))
	assert.Equal(t, "+3/-1", formatDiffStat(&models.DiffResult{Additions: 3, Deletions: 1}))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "-", formatDate(time.Time{}))
	assert.Equal(t, "2024-02-01 10:00", formatDate(time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)))
}

func TestRenderCatalog(t *testing.T) {
	var out bytes.Buffer
	renderCatalog(&out, []models.WritingMetadata{
		{Slug: "essay", Title: "An Essay", RevisionCount: 2, UpdatedAt: time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)},
		{Slug: "draft", Title: "draft", RevisionCount: 0},
	})

	text := out.String()
	assert.Contains(t, text, "Slug")
	assert.Contains(t, text, "An Essay")
	assert.Contains(t, text, "2024-02-01 10:00")
	assert.Contains(t, text, "draft")
}
