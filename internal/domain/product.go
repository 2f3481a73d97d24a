package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Storefront clients read prices as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Product represents a product in the catalog. Price is the canonical
// price, denominated in INR.
type Product struct {
	ID          string          `json:"_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Size        string          `json:"size"`
	IsAvailable bool            `json:"isAvailable"`
	Images      []string        `json:"images"`
	CategoryID  string          `json:"category_id"`
	LookbookID  string          `json:"lookbook"`
	// Category is populated on reads; nil when the reference dangles.
	Category  *Collection `json:"category"`
	Version   int         `json:"version"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// PrimaryImage returns the first image URI or an empty string.
func (p *Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Sizes splits the comma-separated size field into trimmed tokens.
func (p *Product) Sizes() []string {
	return SplitSizes(p.Size)
}

// SplitSizes splits a comma-separated size string, dropping empty tokens.
func SplitSizes(size string) []string {
	var sizes []string
	for _, s := range strings.Split(size, ",") {
		if s = strings.TrimSpace(s); s != "" {
			sizes = append(sizes, s)
		}
	}
	return sizes
}

// ProductInput carries the fields of a product creation request.
type ProductInput struct {
	Name        string           `validate:"required"`
	Description string           `validate:"required"`
	Price       *decimal.Decimal `validate:"required"`
	CategoryID  string           `validate:"required"`
	LookbookID  string           `validate:"required"`
	Quantity    *int             `validate:"required"`
	Size        string
	IsAvailable *bool
}

// ProductPatch is a partial product update. Nil fields keep their stored
// value. Version, when set, must match the stored version.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	CategoryID  *string
	LookbookID  *string
	Quantity    *int
	Size        *string
	IsAvailable *bool
	Version     *int
}

// IsEmpty reports whether the patch changes nothing.
func (p ProductPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil && p.Price == nil &&
		p.CategoryID == nil && p.LookbookID == nil && p.Quantity == nil &&
		p.Size == nil && p.IsAvailable == nil
}

// Apply copies the supplied fields onto the product.
func (p ProductPatch) Apply(product *Product) {
	if p.Name != nil {
		product.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		product.Description = *p.Description
	}
	if p.Price != nil {
		product.Price = *p.Price
	}
	if p.CategoryID != nil {
		product.CategoryID = NormalizeID(*p.CategoryID)
	}
	if p.LookbookID != nil {
		product.LookbookID = NormalizeID(*p.LookbookID)
	}
	if p.Quantity != nil {
		product.Quantity = *p.Quantity
	}
	if p.Size != nil {
		product.Size = *p.Size
	}
	if p.IsAvailable != nil {
		product.IsAvailable = *p.IsAvailable
	}
}
