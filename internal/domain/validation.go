package domain

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var validate = validator.New()

// NewID returns a fresh 24-hex record identifier.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// IsValidID reports whether id has the 24-hex identifier shape.
func IsValidID(id string) bool {
	return primitive.IsValidObjectID(id)
}

// NormalizeID trims and lower-cases an identifier.
func NormalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// Normalize trims the text fields of the input in place.
func (in *ProductInput) Normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.CategoryID = NormalizeID(in.CategoryID)
	in.LookbookID = NormalizeID(in.LookbookID)
}

// ValidateProductInput checks required fields and value ranges of a
// creation request. hasImage reports whether an image accompanies it.
// Reference existence is not checked here.
func ValidateProductInput(in ProductInput, hasImage bool) error {
	in.Normalize()
	if err := validate.Struct(in); err != nil {
		return NewValidationError("Name, description, price, category, lookbook, and quantity are required")
	}
	if !hasImage {
		return NewValidationError("Product image is required")
	}
	if err := ValidatePrice(*in.Price); err != nil {
		return err
	}
	if err := ValidateQuantity(*in.Quantity); err != nil {
		return err
	}
	if err := ValidateReference(KindCategory, in.CategoryID); err != nil {
		return err
	}
	return ValidateReference(KindLookbook, in.LookbookID)
}

// ValidateProductPatch checks the supplied fields of a partial update.
func ValidateProductPatch(p ProductPatch) error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return NewValidationError("Name cannot be empty")
	}
	if p.Price != nil {
		if err := ValidatePrice(*p.Price); err != nil {
			return err
		}
	}
	if p.Quantity != nil {
		if err := ValidateQuantity(*p.Quantity); err != nil {
			return err
		}
	}
	if p.CategoryID != nil {
		if err := ValidateReference(KindCategory, NormalizeID(*p.CategoryID)); err != nil {
			return err
		}
	}
	if p.LookbookID != nil {
		if err := ValidateReference(KindLookbook, NormalizeID(*p.LookbookID)); err != nil {
			return err
		}
	}
	return nil
}

// maxPrice is the exclusive upper bound of the NUMERIC(12,2) price column.
var maxPrice = decimal.New(1, 10)

// ValidatePrice rejects prices the price column cannot hold exactly:
// non-positive values, more than two decimal places, or ten integer digits
// and above.
func ValidatePrice(price decimal.Decimal) error {
	if !price.IsPositive() || !price.Equal(price.Truncate(2)) || price.GreaterThanOrEqual(maxPrice) {
		return NewValidationError("Price must be a valid positive number")
	}
	return nil
}

// ValidateQuantity rejects negative quantities.
func ValidateQuantity(quantity int) error {
	if quantity < 0 {
		return NewValidationError("Quantity must be a valid non-negative integer")
	}
	return nil
}

// ValidateReference checks the identifier shape of a referenced record.
func ValidateReference(kind Kind, id string) error {
	if !IsValidID(id) {
		return NewValidationError("Invalid " + string(kind) + " ID format")
	}
	return nil
}

// ValidateCollectionInput checks the required fields of a collection
// creation request.
func ValidateCollectionInput(kind Kind, in CollectionInput, hasImage bool) error {
	in.Name = strings.TrimSpace(in.Name)
	if err := validate.Struct(in); err != nil || !hasImage {
		return NewValidationError(kind.Label() + " name and image are required")
	}
	return nil
}

// ValidateCollectionPatch checks the supplied fields of a partial update.
func ValidateCollectionPatch(kind Kind, p CollectionPatch) error {
	if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
		return NewValidationError(kind.Label() + " name cannot be empty")
	}
	return nil
}
