package datastore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aleister1102/revtrail/internal/common"
	"github.com/aleister1102/revtrail/internal/config"
	"github.com/aleister1102/revtrail/internal/models"
	"github.com/parquet-go/parquet-go"
	"github.com/rs/zerolog"
)

// ParquetRevisionArchive stores the assembled revisions of each writing in
// one Parquet file per slug.
type ParquetRevisionArchive struct {
	storageConfig *config.StorageConfig
	logger        zerolog.Logger
	paths         *ArchivePathGenerator
	mutexes       *KeyMutexManager
	transformer   *RecordTransformer
	fileManager   *common.FileManager
}

// NewParquetRevisionArchive creates the archive rooted at cfg.ParquetBasePath
func NewParquetRevisionArchive(cfg *config.StorageConfig, logger zerolog.Logger) (*ParquetRevisionArchive, error) {
	if cfg == nil {
		return nil, common.NewValidationError("storage_config", nil, "storage config cannot be nil")
	}
	if strings.TrimSpace(cfg.ParquetBasePath) == "" {
		return nil, common.NewConfigurationError("storage_config", "parquet_base_path", "cannot be empty")
	}

	return &ParquetRevisionArchive{
		storageConfig: cfg,
		logger:        logger.With().Str("component", "ParquetRevisionArchive").Logger(),
		paths:         NewArchivePathGenerator(cfg.ParquetBasePath),
		mutexes:       NewKeyMutexManager(),
		transformer:   NewRecordTransformer(),
		fileManager:   common.NewFileManager(logger),
	}, nil
}

// ArchivePath returns the file that holds the revisions of slug
func (pra *ParquetRevisionArchive) ArchivePath(slug string) (string, error) {
	return pra.paths.ArchiveFilePath(slug)
}

// Write replaces the archive of slug with revisions. The file is written to a
// temporary name first so readers never observe a partial archive.
func (pra *ParquetRevisionArchive) Write(ctx context.Context, slug, path string, revisions []models.Revision) (string, error) {
	if result := common.CheckCancellationWithLog(ctx, pra.logger, "archive write"); result.Cancelled {
		return "", result.Error
	}

	filePath, err := pra.ArchivePath(slug)
	if err != nil {
		return "", err
	}

	mu := pra.mutexes.GetMutex(filePath)
	mu.Lock()
	defer mu.Unlock()

	archivedAt := time.Now()
	records := make([]models.ParquetRevisionRecord, 0, len(revisions))
	for _, rev := range revisions {
		record, err := pra.transformer.ToParquetRecord(slug, path, rev, archivedAt)
		if err != nil {
			return "", err
		}
		records = append(records, record)
	}

	if err := pra.fileManager.EnsureDirectory(filepath.Dir(filePath), 0755); err != nil {
		return "", fmt.Errorf("creating archive directory for '%s': %w", slug, err)
	}

	tmpPath := filePath + ".tmp"
	file, compressionOption, err := pra.createParquetFile(tmpPath)
	if err != nil {
		return "", err
	}

	writeErr := pra.writeParquetData(file, compressionOption, records)
	closeErr := file.Close()
	if writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		_ = os.Remove(tmpPath)
		return "", writeErr
	}

	if err := os.Rename(tmpPath, filePath); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("moving archive into place '%s': %w", filePath, err)
	}

	pra.logger.Info().
		Str("slug", slug).
		Int("revisions", len(records)).
		Str("file", filePath).
		Msg("Archived revisions")
	return filePath, nil
}

// Read loads the archived revisions of slug, newest first
func (pra *ParquetRevisionArchive) Read(ctx context.Context, slug string) ([]models.Revision, error) {
	if result := common.CheckCancellationWithLog(ctx, pra.logger, "archive read"); result.Cancelled {
		return nil, result.Error
	}

	filePath, err := pra.ArchivePath(slug)
	if err != nil {
		return nil, err
	}

	mu := pra.mutexes.GetMutex(filePath)
	mu.Lock()
	defer mu.Unlock()

	records, err := pra.readRecords(filePath)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].TimestampMs > records[j].TimestampMs
	})

	revisions := make([]models.Revision, 0, len(records))
	for _, record := range records {
		rev, err := pra.transformer.FromParquetRecord(record)
		if err != nil {
			return nil, err
		}
		revisions = append(revisions, rev)
	}
	return revisions, nil
}

func (pra *ParquetRevisionArchive) readRecords(filePath string) ([]models.ParquetRevisionRecord, error) {
	osFile, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, common.WrapErrorf(common.ErrNotFound, "archive '%s'", filePath)
		}
		return nil, fmt.Errorf("opening archive '%s': %w", filePath, err)
	}
	defer func() {
		if err := osFile.Close(); err != nil {
			pra.logger.Warn().Err(err).Str("file", filePath).Msg("Failed to close archive file")
		}
	}()

	stat, err := osFile.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat archive '%s': %w", filePath, err)
	}
	if stat.Size() == 0 {
		return []models.ParquetRevisionRecord{}, nil
	}

	pqFile, err := parquet.OpenFile(osFile, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file '%s': %w", filePath, err)
	}

	reader := parquet.NewReader(pqFile)
	defer reader.Close()

	records := make([]models.ParquetRevisionRecord, 0, pqFile.NumRows())
	for {
		var record models.ParquetRevisionRecord
		if err := reader.Read(&record); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("error reading record from parquet file '%s': %w", filePath, err)
		}
		records = append(records, record)
	}
	return records, nil
}

func (pra *ParquetRevisionArchive) createParquetFile(filePath string) (*os.File, parquet.WriterOption, error) {
	file, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening/creating archive file '%s': %w", filePath, err)
	}

	compressionOption := parquet.Compression(&parquet.Uncompressed)

	switch strings.ToLower(pra.storageConfig.CompressionCodec) {
	case "snappy":
		compressionOption = parquet.Compression(&parquet.Snappy)
	case "gzip":
		compressionOption = parquet.Compression(&parquet.Gzip)
	case "zstd":
		compressionOption = parquet.Compression(&parquet.Zstd)
	case "none", "uncompressed", "":
	default:
		pra.logger.Warn().Str("codec", pra.storageConfig.CompressionCodec).Msg("Unsupported compression codec, writing uncompressed")
	}

	return file, compressionOption, nil
}

func (pra *ParquetRevisionArchive) writeParquetData(file *os.File, compressionOption parquet.WriterOption, records []models.ParquetRevisionRecord) error {
	writer := parquet.NewWriter(file, parquet.SchemaOf(models.ParquetRevisionRecord{}), compressionOption)

	for _, record := range records {
		if err := writer.Write(record); err != nil {
			_ = writer.Close()
			return fmt.Errorf("writing revision %s: %w", record.ChangeID, err)
		}
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing Parquet writer: %w", err)
	}
	return nil
}
