package history

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"time"

	"github.com/aleister1102/revtrail/internal/host"
	"github.com/aleister1102/revtrail/internal/models"
)

// fakeHost is an in-memory ChangeLister and BlobGetter.
type fakeHost struct {
	mu         sync.Mutex
	changes    map[string][]models.ChangeRecord
	changeErrs map[string]error
	delays     map[string]time.Duration
	blobs      map[string]string
	blobErrs   map[string]error
	rawBlobs   map[string]*models.Blob
	blobCalls  []string
	listCalls  []string
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		changes:    map[string][]models.ChangeRecord{},
		changeErrs: map[string]error{},
		delays:     map[string]time.Duration{},
		blobs:      map[string]string{},
		blobErrs:   map[string]error{},
		rawBlobs:   map[string]*models.Blob{},
	}
}

func blobKey(path, changeID string) string {
	return path + "@" + changeID
}

func (f *fakeHost) setBlob(path, changeID, content string) {
	f.blobs[blobKey(path, changeID)] = content
}

func (f *fakeHost) ListChanges(ctx context.Context, path string) ([]models.ChangeRecord, error) {
	f.mu.Lock()
	f.listCalls = append(f.listCalls, path)
	delay := f.delays[path]
	records, err := f.changes[path], f.changeErrs[path]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	out := make([]models.ChangeRecord, len(records))
	copy(out, records)
	return out, nil
}

func (f *fakeHost) GetBlobAt(ctx context.Context, path, changeID string) (*models.Blob, error) {
	key := blobKey(path, changeID)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.blobCalls = append(f.blobCalls, key)

	if err := f.blobErrs[key]; err != nil {
		return nil, err
	}
	if raw, ok := f.rawBlobs[key]; ok {
		return raw, nil
	}
	content, ok := f.blobs[key]
	if !ok {
		return nil, host.ErrBlobNotFound
	}
	return &models.Blob{
		Path:           path,
		Ref:            changeID,
		EncodedContent: base64.StdEncoding.EncodeToString([]byte(content)),
		Encoding:       "base64",
	}, nil
}

func (f *fakeHost) blobCallsCopy() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.blobCalls))
	copy(out, f.blobCalls)
	return out
}

// memoryBlobCache is an in-memory BlobCache.
type memoryBlobCache struct {
	mu      sync.Mutex
	entries map[string]string
	getErr  error
	puts    int
}

func newMemoryBlobCache() *memoryBlobCache {
	return &memoryBlobCache{entries: map[string]string{}}
}

func (c *memoryBlobCache) GetBlob(_ context.Context, changeID, path string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return "", false, c.getErr
	}
	content, ok := c.entries[blobKey(path, changeID)]
	return content, ok, nil
}

func (c *memoryBlobCache) PutBlob(_ context.Context, changeID, path, content string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.puts++
	c.entries[blobKey(path, changeID)] = content
	return nil
}

var errHostDown = errors.New("host down")

func record(id string, unix int64) models.ChangeRecord {
	return models.NewChangeRecord(id, time.Unix(unix, 0).UTC(), "author-"+id, "change "+id)
}

func ids(records []models.ChangeRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}
