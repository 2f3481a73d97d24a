package domain

import (
	"strings"
	"time"
)

// Kind names a collection type. Categories and lookbooks share one shape.
type Kind string

const (
	KindCategory Kind = "category"
	KindLookbook Kind = "lookbook"
)

// Label returns the capitalized name used in user-facing messages.
func (k Kind) Label() string {
	switch k {
	case KindCategory:
		return "Category"
	case KindLookbook:
		return "Lookbook"
	default:
		return "Collection"
	}
}

// Collection is a named, illustrated grouping of products: a category or a
// lookbook.
type Collection struct {
	ID          string    `json:"_id"`
	Name        string    `json:"name"`
	Image       string    `json:"image"`
	Description string    `json:"description"`
	Version     int       `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CollectionInput carries the fields of a collection creation request.
type CollectionInput struct {
	Name        string `validate:"required"`
	Description string
}

// CollectionPatch is a partial collection update.
type CollectionPatch struct {
	Name        *string
	Description *string
	Version     *int
}

// IsEmpty reports whether the patch changes nothing.
func (p CollectionPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil
}

// Apply copies the supplied fields onto the collection.
func (p CollectionPatch) Apply(c *Collection) {
	if p.Name != nil {
		c.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
}
