package history

import (
	"context"

	"github.com/aleister1102/revtrail/internal/models"
)

// ChangeLister lists the changes that touched a path, in host order.
type ChangeLister interface {
	ListChanges(ctx context.Context, path string) ([]models.ChangeRecord, error)
}

// BlobGetter fetches a path as it existed at a change. A path that did not
// exist at the change must be reported with an error matching host.ErrBlobNotFound.
type BlobGetter interface {
	GetBlobAt(ctx context.Context, path, changeID string) (*models.Blob, error)
}

// BlobCache stores decoded content keyed by change id and path.
// Content at a change is immutable, so entries never need invalidation.
type BlobCache interface {
	GetBlob(ctx context.Context, changeID, path string) (content string, found bool, err error)
	PutBlob(ctx context.Context, changeID, path, content string) error
}
