// Package workflow holds the admin editing state: drafts for creating and
// editing catalog records, and the list snapshots they refresh.
package workflow

import (
	"context"
	"encoding/base64"
	"errors"
	"io"

	"boutique-catalog/internal/client"
	"boutique-catalog/internal/domain"
	"boutique-catalog/internal/storage"
)

var (
	// ErrBusy is returned when an operation is already in flight.
	ErrBusy = errors.New("another request is in progress")
	// ErrNotOpen is returned when no draft is open.
	ErrNotOpen = errors.New("no draft is open")
)

// State is the lifecycle stage of an editor.
type State int

const (
	Closed State = iota
	Creating
	Editing
	Submitting
)

func (s State) String() string {
	switch s {
	case Creating:
		return "creating"
	case Editing:
		return "editing"
	case Submitting:
		return "submitting"
	default:
		return "closed"
	}
}

// ProductAPI is the subset of the catalog client the product workflow uses.
type ProductAPI interface {
	List(ctx context.Context) ([]*domain.Product, error)
	Create(ctx context.Context, in domain.ProductInput, image *storage.Upload) (*domain.Product, error)
	Update(ctx context.Context, id string, patch domain.ProductPatch, image *storage.Upload) (*domain.Product, error)
	UpdateQuantity(ctx context.Context, id string, quantity int) (*client.QuantityUpdate, error)
	Delete(ctx context.Context, id string) (*domain.Product, error)
}

// CollectionAPI is the subset of the catalog client a collection workflow
// uses.
type CollectionAPI interface {
	Kind() domain.Kind
	List(ctx context.Context) ([]*domain.Collection, error)
	Create(ctx context.Context, in domain.CollectionInput, image *storage.Upload) (*domain.Collection, error)
	Update(ctx context.Context, id string, patch domain.CollectionPatch, image *storage.Upload) (*domain.Collection, error)
	Delete(ctx context.Context, id string) (*domain.Collection, error)
}

var (
	_ ProductAPI    = (*client.ProductsClient)(nil)
	_ CollectionAPI = (*client.CollectionsClient)(nil)
)

// Reloader refreshes a list snapshot after a mutation.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Image is a selected file kept in memory until submission, with a data
// URL for previewing it.
type Image struct {
	Upload  *storage.Upload
	Preview string
}

// SelectImage reads a picked file and builds its preview. Non-images are
// rejected with a validation error; nothing is uploaded.
func SelectImage(filename string, r io.Reader, maxBytes int64) (*Image, error) {
	upload, err := storage.NewUpload(filename, r, maxBytes)
	switch {
	case errors.Is(err, storage.ErrNotImage):
		return nil, domain.NewValidationError("Only image files are allowed")
	case errors.Is(err, storage.ErrTooLarge):
		return nil, domain.NewValidationError("File too large")
	case err != nil:
		return nil, err
	}

	return &Image{
		Upload:  upload,
		Preview: "data:" + upload.ContentType + ";base64," + base64.StdEncoding.EncodeToString(upload.Data),
	}, nil
}

func imageUpload(img *Image) *storage.Upload {
	if img == nil {
		return nil
	}
	return img.Upload
}

// reloadIfStale refreshes r when err reports that the record is gone, so
// the list drops the stale id. err is returned unchanged.
func reloadIfStale(ctx context.Context, r Reloader, err error) error {
	var nf *domain.NotFoundError
	if r != nil && errors.As(err, &nf) {
		_ = r.Reload(ctx)
	}
	return err
}

// errorMessage is the text shown for a failed submission.
func errorMessage(err error) string {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	return err.Error()
}
