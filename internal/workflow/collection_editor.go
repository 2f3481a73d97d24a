package workflow

import (
	"context"
	"strings"
	"sync"

	"boutique-catalog/internal/domain"
)

// CollectionDraft holds the form values of a category or lookbook.
type CollectionDraft struct {
	Name        string
	Description string
	Image       *Image
}

// CollectionEditor drives the create and edit forms of one collection
// kind.
type CollectionEditor struct {
	api      CollectionAPI
	reloader Reloader

	mu       sync.Mutex
	state    State
	draft    CollectionDraft
	original *domain.Collection
	message  string
}

func NewCollectionEditor(api CollectionAPI, reloader Reloader) *CollectionEditor {
	return &CollectionEditor{api: api, reloader: reloader}
}

func (e *CollectionEditor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *CollectionEditor) Message() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.message
}

func (e *CollectionEditor) Draft() CollectionDraft {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft
}

func (e *CollectionEditor) OpenCreate() error {
	return e.open(Creating, nil, CollectionDraft{})
}

// OpenEdit pre-populates the draft from c without selecting an image.
func (e *CollectionEditor) OpenEdit(c *domain.Collection) error {
	return e.open(Editing, c, CollectionDraft{Name: c.Name, Description: c.Description})
}

func (e *CollectionEditor) open(state State, original *domain.Collection, draft CollectionDraft) error {
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

func (e *CollectionEditor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == Submitting {
		return ErrBusy
	}
	e.state = Closed
	e.original = nil
	e.draft = CollectionDraft{}
	e.message = ""
	return nil
}

func (e *CollectionEditor) editable() error {
	switch e.state {
	case Submitting:
		return ErrBusy
	case Closed:
		return ErrNotOpen
	}
	return nil
}

// Edit applies fn to the open draft.
func (e *CollectionEditor) Edit(fn func(*CollectionDraft)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.editable(); err != nil {
		return err
	}
	fn(&e.draft)
	return nil
}

// SetImage replaces the selected image.
func (e *CollectionEditor) SetImage(img *Image) error {
	return e.Edit(func(d *CollectionDraft) {
		d.Image = img
	})
}

// Preview returns the selected image preview, or the stored image while
// editing.
func (e *CollectionEditor) Preview() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.draft.Image != nil {
		return e.draft.Image.Preview
	}
	if e.original != nil {
		return e.original.Image
	}
	return ""
}

func (e *CollectionEditor) Submit(ctx context.Context) (*domain.Collection, error) {
	kind := e.api.Kind()

	e.mu.Lock()
	if err := e.editable(); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	draft := e.draft
	original := e.original
	resume := e.state

	in := domain.CollectionInput{Name: strings.TrimSpace(draft.Name), Description: draft.Description}
	var patch domain.CollectionPatch
	var err error
	if original == nil {
		err = domain.ValidateCollectionInput(kind, in, draft.Image != nil)
	} else {
		version := original.Version
		patch = domain.CollectionPatch{Version: &version}
		if in.Name != original.Name {
			patch.Name = &in.Name
		}
		if in.Description != original.Description {
			patch.Description = &in.Description
		}
		err = domain.ValidateCollectionPatch(kind, patch)
	}
	if err != nil {
		e.message = errorMessage(err)
		e.mu.Unlock()
		return nil, err
	}
	e.state = Submitting
	e.mu.Unlock()

	var saved *domain.Collection
	if original == nil {
		saved, err = e.api.Create(ctx, in, imageUpload(draft.Image))
	} else {
		saved, err = e.api.Update(ctx, original.ID, patch, imageUpload(draft.Image))
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
	e.draft = CollectionDraft{}
	e.message = ""
	e.mu.Unlock()

	if e.reloader != nil {
		if err := e.reloader.Reload(ctx); err != nil {
			return saved, err
		}
	}
	return saved, nil
}
