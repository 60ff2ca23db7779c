package datastore

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aleister1102/revtrail/internal/common"
	"github.com/aleister1102/revtrail/internal/config"
	"github.com/aleister1102/revtrail/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestArchive(t *testing.T, codec string) *ParquetRevisionArchive {
	t.Helper()
	cfg := config.NewDefaultStorageConfig()
	cfg.ParquetBasePath = t.TempDir()
	cfg.CompressionCodec = codec
	archive, err := NewParquetRevisionArchive(&cfg, zerolog.Nop())
	require.NoError(t, err)
	return archive
}

func TestNewParquetRevisionArchive_Validation(t *testing.T) {
	_, err := NewParquetRevisionArchive(nil, zerolog.Nop())
	assert.Error(t, err)

	_, err = NewParquetRevisionArchive(&config.StorageConfig{}, zerolog.Nop())
	assert.ErrorIs(t, err, common.ErrInvalidConfiguration)
}

func TestParquetRevisionArchive_RoundTripPerCodec(t *testing.T) {
	for _, codec := range []string{"zstd", "snappy", "gzip", "none", "lz-unknown"} {
		t.Run(codec, func(t *testing.T) {
			archive := newTestArchive(t, codec)
			ctx := context.Background()

			filePath, err := archive.Write(ctx, "essay", "src/lib/writings/essay/content.md", sampleRevisions())
			require.NoError(t, err)
			assert.FileExists(t, filePath)
			assert.NoFileExists(t, filePath+".tmp")

			got, err := archive.Read(ctx, "essay")
			require.NoError(t, err)
			assert.Equal(t, sampleRevisions(), got)
		})
	}
}

func TestParquetRevisionArchive_ReadReturnsNewestFirst(t *testing.T) {
	archive := newTestArchive(t, "zstd")
	ctx := context.Background()

	revisions := sampleRevisions()
	shuffled := []models.Revision{revisions[2], revisions[0], revisions[1]}
	_, err := archive.Write(ctx, "essay", "p", shuffled)
	require.NoError(t, err)

	got, err := archive.Read(ctx, "essay")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "cccccccc33", got[0].ID)
	assert.Equal(t, "bbbbbbbb22", got[1].ID)
	assert.Equal(t, "aaaaaaaa11", got[2].ID)
}

func TestParquetRevisionArchive_WriteReplaces(t *testing.T) {
	archive := newTestArchive(t, "snappy")
	ctx := context.Background()

	_, err := archive.Write(ctx, "essay", "p", sampleRevisions())
	require.NoError(t, err)
	_, err = archive.Write(ctx, "essay", "p", sampleRevisions()[:1])
	require.NoError(t, err)

	got, err := archive.Read(ctx, "essay")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestParquetRevisionArchive_EmptyAndMissing(t *testing.T) {
	archive := newTestArchive(t, "zstd")
	ctx := context.Background()

	_, err := archive.Read(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = archive.Write(ctx, "blank", "p", nil)
	require.NoError(t, err)
	got, err := archive.Read(ctx, "blank")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParquetRevisionArchive_ZeroLengthFile(t *testing.T) {
	archive := newTestArchive(t, "zstd")
	filePath, err := archive.ArchivePath("hollow")
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0755))
	require.NoError(t, os.WriteFile(filePath, nil, 0644))

	got, err := archive.Read(context.Background(), "hollow")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParquetRevisionArchive_ConcurrentWritersSameSlug(t *testing.T) {
	archive := newTestArchive(t, "zstd")
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := archive.Write(ctx, "essay", "p", sampleRevisions())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := archive.Read(ctx, "essay")
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestParquetRevisionArchive_CancelledContext(t *testing.T) {
	archive := newTestArchive(t, "zstd")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := archive.Write(ctx, "essay", "p", sampleRevisions())
	assert.ErrorIs(t, err, context.Canceled)
	_, err = archive.Read(ctx, "essay")
	assert.ErrorIs(t, err, context.Canceled)
}
