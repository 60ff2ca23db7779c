package datastore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aleister1102/revtrail/internal/common"
	"github.com/aleister1102/revtrail/internal/config"
	"github.com/aleister1102/revtrail/internal/models"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// SQLiteCache keeps reconstructed blobs and assembled revision sets between runs.
// Blob entries are keyed by (change, path) and never expire since content at a
// change cannot change. Revision sets expire after the configured TTL; a TTL of
// zero disables them.
type SQLiteCache struct {
	db     *sql.DB
	ttl    time.Duration
	now    func() time.Time
	logger zerolog.Logger
}

// NewSQLiteCache opens (or creates) the cache database at cfg.SQLitePath.
func NewSQLiteCache(cfg config.StorageConfig, logger zerolog.Logger) (*SQLiteCache, error) {
	dataSourceName := cfg.SQLitePath
	if dataSourceName == "" {
		return nil, common.NewConfigurationError("storage_config", "sqlite_path", "cannot be empty")
	}
	logger = logger.With().Str("component", "SQLiteCache").Logger()

	dbDir := filepath.Dir(dataSourceName)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		logger.Error().Err(err).Str("directory", dbDir).Msg("Failed to create cache database directory")
		return nil, fmt.Errorf("failed to create cache database directory %s: %w", dbDir, err)
	}

	dbInstance, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		logger.Error().Err(err).Str("db_path", dataSourceName).Msg("Failed to open cache database")
		return nil, fmt.Errorf("sql.Open failed for %s: %w", dataSourceName, err)
	}
	// SQLite allows a single writer; one connection avoids SQLITE_BUSY under fan-out.
	dbInstance.SetMaxOpenConns(1)

	cache := &SQLiteCache{
		db:     dbInstance,
		ttl:    cfg.CacheTTL(),
		now:    time.Now,
		logger: logger,
	}

	if err := cache.InitSchema(); err != nil {
		_ = cache.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	logger.Debug().Str("path", dataSourceName).Dur("ttl", cache.ttl).Msg("Cache database ready")
	return cache, nil
}

// Close closes the database connection.
func (c *SQLiteCache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

var cacheSchema = []string{
	`CREATE TABLE IF NOT EXISTS blob_cache (
		change_id TEXT NOT NULL,
		path TEXT NOT NULL,
		content TEXT NOT NULL,
		PRIMARY KEY (change_id, path)
	)`,
	`CREATE TABLE IF NOT EXISTS revision_sets (
		path TEXT PRIMARY KEY,
		head_id TEXT NOT NULL,
		stored_at INTEGER NOT NULL,
		payload TEXT NOT NULL
	)`,
}

// InitSchema creates the cache tables if they don't already exist.
func (c *SQLiteCache) InitSchema() error {
	for _, query := range cacheSchema {
		if _, err := c.db.Exec(query); err != nil {
			c.logger.Error().Err(err).Msg("Failed to initialize cache schema")
			return err
		}
	}
	return nil
}

// GetBlob returns the cached content of path at changeID.
func (c *SQLiteCache) GetBlob(ctx context.Context, changeID, path string) (string, bool, error) {
	var content string
	err := c.db.QueryRowContext(ctx,
		`SELECT content FROM blob_cache WHERE change_id = ? AND path = ?`,
		changeID, path,
	).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading cached blob %s@%s: %w", path, changeID, err)
	}
	return content, true, nil
}

// PutBlob stores the content of path at changeID.
func (c *SQLiteCache) PutBlob(ctx context.Context, changeID, path, content string) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO blob_cache (change_id, path, content) VALUES (?, ?, ?)`,
		changeID, path, content,
	)
	if err != nil {
		return fmt.Errorf("caching blob %s@%s: %w", path, changeID, err)
	}
	return nil
}

// GetRevisions returns the revision set stored for path if it has not expired.
func (c *SQLiteCache) GetRevisions(ctx context.Context, path string) ([]models.Revision, bool, error) {
	if c.ttl <= 0 {
		return nil, false, nil
	}

	var storedAt int64
	var payload string
	err := c.db.QueryRowContext(ctx,
		`SELECT stored_at, payload FROM revision_sets WHERE path = ?`,
		path,
	).Scan(&storedAt, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cached revisions of %s: %w", path, err)
	}

	if c.now().Sub(models.UnixMilliToTime(storedAt)) >= c.ttl {
		return nil, false, nil
	}

	var revisions []models.Revision
	if err := json.Unmarshal([]byte(payload), &revisions); err != nil {
		return nil, false, common.WrapErrorf(common.ErrMalformedPayload, "cached revisions of %s: %v", path, err)
	}
	if revisions == nil {
		revisions = []models.Revision{}
	}
	return revisions, true, nil
}

// PutRevisions stores the assembled revision set for path, replacing any earlier one.
func (c *SQLiteCache) PutRevisions(ctx context.Context, path string, revisions []models.Revision) error {
	if c.ttl <= 0 {
		return nil
	}

	payload, err := json.Marshal(revisions)
	if err != nil {
		return fmt.Errorf("encoding revisions of %s: %w", path, err)
	}

	headID := ""
	if len(revisions) > 0 {
		headID = revisions[0].ID
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT INTO revision_sets (path, head_id, stored_at, payload) VALUES (?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			head_id = excluded.head_id,
			stored_at = excluded.stored_at,
			payload = excluded.payload`,
		path, headID, models.TimeToUnixMilli(c.now()), string(payload),
	)
	if err != nil {
		return fmt.Errorf("caching revisions of %s: %w", path, err)
	}
	return nil
}

// PurgeExpired drops revision sets older than the TTL and returns how many were removed.
func (c *SQLiteCache) PurgeExpired(ctx context.Context) (int64, error) {
	if c.ttl <= 0 {
		res, err := c.db.ExecContext(ctx, `DELETE FROM revision_sets`)
		if err != nil {
			return 0, fmt.Errorf("purging revision sets: %w", err)
		}
		return res.RowsAffected()
	}

	cutoff := models.TimeToUnixMilli(c.now().Add(-c.ttl))
	res, err := c.db.ExecContext(ctx, `DELETE FROM revision_sets WHERE stored_at <= ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purging revision sets: %w", err)
	}
	return res.RowsAffected()
}
