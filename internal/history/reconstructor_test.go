package history

import (
	"context"
	"testing"

	"github.com/aleister1102/revtrail/internal/config"
	"github.com/aleister1102/revtrail/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReconstructor(h *fakeHost, opts ...ReconstructorOption) *ContentReconstructor {
	resolver := NewAliasResolver(config.RenameConfig{currentPath: {aliasPath, aliasPath2}})
	return NewContentReconstructor(resolver, h, zerolog.Nop(), opts...)
}

func TestContentAt_CurrentPathShortCircuits(t *testing.T) {
	h := newFakeHost()
	h.setBlob(currentPath, "c1", "current text\n")
	h.setBlob(aliasPath, "c1", "alias text\n")

	content, found := newReconstructor(h).ContentAt(context.Background(), "c1", currentPath)

	require.True(t, found)
	assert.Equal(t, "current text\n", content)
	assert.Equal(t, []string{blobKey(currentPath, "c1")}, h.blobCallsCopy())
}

func TestReconstruct_FallsBackToAliasesInOrder(t *testing.T) {
	h := newFakeHost()
	h.setBlob(aliasPath2, "c1", "oldest name\n")
	h.blobErrs[blobKey(aliasPath, "c1")] = errHostDown
	r := newReconstructor(h)

	outcome := r.Reconstruct(context.Background(), "c1", r.resolver.PathSet(currentPath))

	require.True(t, outcome.Found)
	assert.Equal(t, "oldest name\n", outcome.Content)
	assert.Equal(t, aliasPath2, outcome.Path)
	assert.False(t, outcome.Cached)
	require.Len(t, outcome.Attempts, 3)
	assert.Equal(t, models.FetchStatusEmpty, outcome.Attempts[0].Status)
	assert.Equal(t, models.FetchStatusFailed, outcome.Attempts[1].Status)
	assert.ErrorIs(t, outcome.Attempts[1].Err, errHostDown)
	assert.Equal(t, models.FetchStatusFetched, outcome.Attempts[2].Status)
	assert.Equal(t, []string{
		blobKey(currentPath, "c1"),
		blobKey(aliasPath, "c1"),
		blobKey(aliasPath2, "c1"),
	}, h.blobCallsCopy())
}

func TestReconstruct_UndecodableBlobTriesNextCandidate(t *testing.T) {
	h := newFakeHost()
	h.rawBlobs[blobKey(currentPath, "c1")] = &models.Blob{Encoding: "none"}
	h.setBlob(aliasPath, "c1", "fallback")

	content, found := newReconstructor(h).ContentAt(context.Background(), "c1", currentPath)

	require.True(t, found)
	assert.Equal(t, "fallback", content)
}

func TestReconstruct_NothingRecoverable(t *testing.T) {
	h := newFakeHost()

	content, found := newReconstructor(h).ContentAt(context.Background(), "c1", currentPath)

	assert.False(t, found)
	assert.Empty(t, content)
	assert.Len(t, h.blobCallsCopy(), 3)
}

func TestReconstruct_EmptyFileIsFound(t *testing.T) {
	h := newFakeHost()
	h.setBlob(currentPath, "c1", "")
	h.setBlob(aliasPath, "c1", "should not be reached")

	content, found := newReconstructor(h).ContentAt(context.Background(), "c1", currentPath)

	assert.True(t, found)
	assert.Equal(t, "", content)
}

func TestReconstruct_MultiByteContent(t *testing.T) {
	h := newFakeHost()
	h.setBlob(currentPath, "c1", "naïve café\n漢字\n")

	content, found := newReconstructor(h).ContentAt(context.Background(), "c1", currentPath)

	require.True(t, found)
	assert.Equal(t, "naïve café\n漢字\n", content)
}

func TestReconstruct_UsesAndFillsBlobCache(t *testing.T) {
	h := newFakeHost()
	h.setBlob(aliasPath, "c1", "from host")
	cache := newMemoryBlobCache()
	r := newReconstructor(h, WithBlobCache(cache))

	first := r.Reconstruct(context.Background(), "c1", r.resolver.PathSet(currentPath))
	require.True(t, first.Found)
	assert.False(t, first.Cached)
	assert.Equal(t, 1, cache.puts)

	callsAfterFirst := len(h.blobCallsCopy())
	cache.entries[blobKey(currentPath, "c2")] = "cached only"

	second := r.Reconstruct(context.Background(), "c2", r.resolver.PathSet(currentPath))
	require.True(t, second.Found)
	assert.True(t, second.Cached)
	assert.Equal(t, "cached only", second.Content)
	assert.Len(t, h.blobCallsCopy(), callsAfterFirst)
}

func TestReconstruct_CacheErrorsDegradeToMiss(t *testing.T) {
	h := newFakeHost()
	h.setBlob(currentPath, "c1", "host text")
	cache := newMemoryBlobCache()
	cache.getErr = errHostDown

	content, found := newReconstructor(h, WithBlobCache(cache)).ContentAt(context.Background(), "c1", currentPath)

	require.True(t, found)
	assert.Equal(t, "host text", content)
}
