package workflow

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"boutique-catalog/internal/domain"

	"github.com/shopspring/decimal"
)

// ProductDraft holds the form values of a product being created or edited.
// Numeric fields are kept as typed text.
type ProductDraft struct {
	Name        string
	Description string
	Price       string
	CategoryID  string
	LookbookID  string
	Quantity    string
	Sizes       []string
	Available   bool
	// Images are new selections; the first one is primary and is the one
	// uploaded.
	Images []*Image
}

func (d ProductDraft) clone() ProductDraft {
	d.Sizes = append([]string(nil), d.Sizes...)
	d.Images = append([]*Image(nil), d.Images...)
	return d
}

func (d ProductDraft) input() domain.ProductInput {
	in := domain.ProductInput{
		Name:        d.Name,
		Description: d.Description,
		CategoryID:  d.CategoryID,
		LookbookID:  d.LookbookID,
		Size:        strings.Join(d.Sizes, ","),
		IsAvailable: &d.Available,
	}
	in.Price = parseDraftPrice(d.Price)
	in.Quantity = parseDraftQuantity(d.Quantity)
	return in
}

// parseDraftPrice returns nil for a blank field and zero for text that is
// not a number, so validation reports the missing or invalid value.
func parseDraftPrice(s string) *decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	price, err := decimal.NewFromString(s)
	if err != nil {
		price = decimal.Zero
	}
	return &price
}

func parseDraftQuantity(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	quantity, err := strconv.Atoi(s)
	if err != nil {
		quantity = -1
	}
	return &quantity
}

// ProductEditor drives the create and edit forms for products.
type ProductEditor struct {
	api      ProductAPI
	reloader Reloader

	mu       sync.Mutex
	state    State
	draft    ProductDraft
	original *domain.Product
	message  string
}

// NewProductEditor creates a closed editor. reloader, when not nil, is
// refreshed after every successful submission.
func NewProductEditor(api ProductAPI, reloader Reloader) *ProductEditor {
	return &ProductEditor{api: api, reloader: reloader}
}

func (e *ProductEditor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Message returns the error shown for the last failed submission.
func (e *ProductEditor) Message() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.message
}

// Draft returns a copy of the current form values.
func (e *ProductEditor) Draft() ProductDraft {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft.clone()
}

// OpenCreate starts a blank draft.
func (e *ProductEditor) OpenCreate() error {
	return e.open(Creating, nil, ProductDraft{Available: true})
}

// OpenEdit starts a draft pre-populated from p. The image selection is
// left empty so the stored image is kept unless a new one is picked.
func (e *ProductEditor) OpenEdit(p *domain.Product) error {
	return e.open(Editing, p, ProductDraft{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.String(),
		CategoryID:  p.CategoryID,
		LookbookID:  p.LookbookID,
		Quantity:    strconv.Itoa(p.Quantity),
		Sizes:       p.Sizes(),
		Available:   p.IsAvailable,
	})
}

func (e *ProductEditor) open(state State, original *domain.Product, draft ProductDraft) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Submitting {
		return ErrBusy
	}
	e.state = state
	e.original = original
	e.draft = draft
	e.message = ""
	return nil
}

// Close discards the draft.
func (e *ProductEditor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Submitting {
		return ErrBusy
	}
	e.state = Closed
	e.original = nil
	e.draft = ProductDraft{}
	e.message = ""
	return nil
}

// Edit applies fn to the open draft.
func (e *ProductEditor) Edit(fn func(*ProductDraft)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.editable(); err != nil {
		return err
	}
	fn(&e.draft)
	return nil
}

func (e *ProductEditor) editable() error {
	switch e.state {
	case Submitting:
		return ErrBusy
	case Closed:
		return ErrNotOpen
	}
	return nil
}

// ToggleSize adds size to the selection, or removes it when present.
func (e *ProductEditor) ToggleSize(size string) error {
	return e.Edit(func(d *ProductDraft) {
		for i, s := range d.Sizes {
			if s == size {
				d.Sizes = append(d.Sizes[:i:i], d.Sizes[i+1:]...)
				return
			}
		}
		d.Sizes = append(d.Sizes, size)
	})
}

// AddImage appends a selected image to the draft.
func (e *ProductEditor) AddImage(img *Image) error {
	return e.Edit(func(d *ProductDraft) {
		d.Images = append(d.Images, img)
	})
}

// RemoveImage drops the selected image at index i.
func (e *ProductEditor) RemoveImage(i int) error {
	return e.Edit(func(d *ProductDraft) {
		if i >= 0 && i < len(d.Images) {
			d.Images = append(d.Images[:i:i], d.Images[i+1:]...)
		}
	})
}

// Preview returns the image shown on the form: the primary selection, or
// the stored primary image while editing.
func (e *ProductEditor) Preview() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.draft.Images) > 0 {
		return e.draft.Images[0].Preview
	}
	if e.original != nil {
		return e.original.PrimaryImage()
	}
	return ""
}

// Submit validates the draft locally and sends it. On success the editor
// closes and the list is reloaded; on failure the draft stays open with
// the error message.
func (e *ProductEditor) Submit(ctx context.Context) (*domain.Product, error) {
	e.mu.Lock()
	if err := e.editable(); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	draft := e.draft.clone()
	original := e.original
	resume := e.state

	var image *Image
	if len(draft.Images) > 0 {
		image = draft.Images[0]
	}

	in := draft.input()
	var patch domain.ProductPatch
	var err error
	if original == nil {
		err = domain.ValidateProductInput(in, image != nil)
	} else {
		patch = productPatch(original, in)
		err = domain.ValidateProductPatch(patch)
	}
	if err != nil {
		e.message = errorMessage(err)
		e.mu.Unlock()
		return nil, err
	}

	e.state = Submitting
	e.mu.Unlock()

	var saved *domain.Product
	if original == nil {
		saved, err = e.api.Create(ctx, in, imageUpload(image))
	} else {
		saved, err = e.api.Update(ctx, original.ID, patch, imageUpload(image))
	}

	e.mu.Lock()
	if err != nil {
		e.state = resume
		e.message = errorMessage(err)
		e.mu.Unlock()
		return nil, reloadIfStale(ctx, e.reloader, err)
	}
	e.state = Closed
	e.original = nil
	e.draft = ProductDraft{}
	e.message = ""
	e.mu.Unlock()

	if e.reloader != nil {
		if err := e.reloader.Reload(ctx); err != nil {
			return saved, err
		}
	}
	return saved, nil
}

// productPatch carries the fields of in that differ from the stored
// record, pinned to the record's version.
func productPatch(p *domain.Product, in domain.ProductInput) domain.ProductPatch {
	in.Normalize()
	version := p.Version
	patch := domain.ProductPatch{Version: &version}
	if in.Name != p.Name {
		patch.Name = &in.Name
	}
	if in.Description != p.Description {
		patch.Description = &in.Description
	}
	if in.Price == nil {
		zero := decimal.Zero
		patch.Price = &zero
	} else if !in.Price.Equal(p.Price) {
		patch.Price = in.Price
	}
	if in.CategoryID != p.CategoryID {
		patch.CategoryID = &in.CategoryID
	}
	if in.LookbookID != p.LookbookID {
		patch.LookbookID = &in.LookbookID
	}
	if in.Quantity == nil {
		missing := -1
		patch.Quantity = &missing
	} else if *in.Quantity != p.Quantity {
		patch.Quantity = in.Quantity
	}
	if in.Size != strings.Join(p.Sizes(), ",") {
		patch.Size = &in.Size
	}
	if *in.IsAvailable != p.IsAvailable {
		patch.IsAvailable = in.IsAvailable
	}
	return patch
}
