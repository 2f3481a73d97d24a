package transport

import (
	"encoding/json"
	"net/http"
	"strings"

	"boutique-catalog/internal/domain"
	"boutique-catalog/internal/middleware"
	"boutique-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// QuantityRequest represents the quantity update payload
type QuantityRequest struct {
	Quantity json.RawMessage `json:"quantity"`
}

// QuantityResponse is returned by a quantity update. Version is the
// product version after the update.
type QuantityResponse struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
	Version  int    `json:"version"`
}

// ProductHandler handles HTTP requests for products
type ProductHandler struct {
	products      service.ProductService
	maxImageBytes int64
	logger        *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(products service.ProductService, maxImageBytes int64, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		products:      products,
		maxImageBytes: maxImageBytes,
		logger:        logger,
	}
}

// RegisterRoutes registers all product routes. Writes go through
// authMiddleware.
func (h *ProductHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/category/{categoryId}", h.ListByCategory)
		r.Get("/lookbook/{lookbookId}", h.ListByLookbook)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(middleware.RequireAdmin(h.logger))
			r.Use(middleware.MaxBodySize(2*h.maxImageBytes + multipartMemory))
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Patch("/{id}/quantity", h.UpdateQuantity)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// List handles listing all products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		respondError(w, h.logger, err, "Error fetching products")
		return
	}
	middleware.RespondWithData(w, http.StatusOK, orEmpty(products), "")
}

// Get handles fetching one product
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.logger, err, "Error fetching product")
		return
	}
	middleware.RespondWithData(w, http.StatusOK, product, "")
}

// ListByCategory handles listing the products of a category
func (h *ProductHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListByCategory(r.Context(), chi.URLParam(r, "categoryId"))
	if err != nil {
		respondError(w, h.logger, err, "Error fetching products by category")
		return
	}
	middleware.RespondWithData(w, http.StatusOK, orEmpty(products), "")
}

// ListByLookbook handles listing the products of a lookbook
func (h *ProductHandler) ListByLookbook(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.ListByLookbook(r.Context(), chi.URLParam(r, "lookbookId"))
	if err != nil {
		respondError(w, h.logger, err, "Error fetching products by lookbook")
		return
	}
	middleware.RespondWithData(w, http.StatusOK, orEmpty(products), "")
}

// Create handles product creation from a multipart form
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	const fallback = "Error adding product"

	if err := parseForm(r); err != nil {
		h.logger.Debug("Product form parsing failed", zap.Error(err))
		respondError(w, h.logger, err, fallback)
		return
	}

	in := productInputFromForm(r)

	image, err := readImage(r, h.maxImageBytes)
	if err != nil {
		respondError(w, h.logger, err, fallback)
		return
	}

	product, err := h.products.Create(r.Context(), in, image)
	if err != nil {
		respondError(w, h.logger, err, fallback)
		return
	}

	middleware.RespondWithData(w, http.StatusCreated, product, "Product added successfully")
}

// productInputFromForm reads a creation request. A price or quantity that
// is present but malformed is replaced by an out of range value, so the
// service reports it in the same order as the other input problems.
func productInputFromForm(r *http.Request) domain.ProductInput {
	in := domain.ProductInput{}
	in.Name, _ = formValue(r, "name")
	in.Description, _ = formValue(r, "description")
	in.CategoryID, _ = formValue(r, "category")
	in.LookbookID, _ = formValue(r, "lookbook")
	in.Size, _ = formValue(r, "size")

	if v, ok := formValue(r, "price"); ok && strings.TrimSpace(v) != "" {
		price, err := parsePrice(v)
		if err != nil {
			zero := decimal.Zero
			price = &zero
		}
		in.Price = price
	}
	if v, ok := formValue(r, "quantity"); ok && strings.TrimSpace(v) != "" {
		quantity, err := parseQuantity(v)
		if err != nil {
			invalid := -1
			quantity = &invalid
		}
		in.Quantity = quantity
	}
	if v, ok := formValue(r, "availability"); ok {
		available := parseAvailability(v)
		in.IsAvailable = &available
	}
	return in
}

// Update handles a partial product update. Only the fields present in
// the form change.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	const fallback = "Error updating product"

	if err := parseForm(r); err != nil {
		h.logger.Debug("Product form parsing failed", zap.Error(err))
		respondError(w, h.logger, err, fallback)
		return
	}

	patch, err := productPatchFromForm(r)
	if err != nil {
		respondError(w, h.logger, err, fallback)
		return
	}

	image, err := readImage(r, h.maxImageBytes)
	if err != nil {
		respondError(w, h.logger, err, fallback)
		return
	}

	product, err := h.products.Update(r.Context(), chi.URLParam(r, "id"), patch, image)
	if err != nil {
		respondError(w, h.logger, err, fallback)
		return
	}

	middleware.RespondWithData(w, http.StatusOK, product, "Product updated successfully")
}

func productPatchFromForm(r *http.Request) (domain.ProductPatch, error) {
	patch := domain.ProductPatch{
		Name:        optionalString(r, "name"),
		Description: optionalString(r, "description"),
		CategoryID:  optionalString(r, "category"),
		LookbookID:  optionalString(r, "lookbook"),
		Size:        optionalString(r, "size"),
	}

	if v, ok := formValue(r, "price"); ok {
		price, err := parsePrice(v)
		if err != nil {
			return patch, err
		}
		patch.Price = price
	}
	if v, ok := formValue(r, "quantity"); ok {
		quantity, err := parseQuantity(v)
		if err != nil {
			return patch, err
		}
		patch.Quantity = quantity
	}
	if v, ok := formValue(r, "availability"); ok {
		available := parseAvailability(v)
		patch.IsAvailable = &available
	}

	version, err := parseVersion(r)
	if err != nil {
		return patch, err
	}
	patch.Version = version
	return patch, nil
}

// UpdateQuantity handles the quantity-only update
func (h *ProductHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req QuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Debug("Quantity decode failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusBadRequest, "Quantity is required")
		return
	}

	quantity, err := parseJSONQuantity(req.Quantity)
	if err != nil {
		respondError(w, h.logger, err, "Error updating quantity")
		return
	}

	product, err := h.products.UpdateQuantity(r.Context(), chi.URLParam(r, "id"), quantity)
	if err != nil {
		respondError(w, h.logger, err, "Error updating quantity")
		return
	}

	middleware.RespondWithData(w, http.StatusOK,
		QuantityResponse{ID: product.ID, Quantity: product.Quantity, Version: product.Version},
		"Quantity updated successfully")
}

// Delete handles product deletion
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.logger, err, "Error deleting product")
		return
	}
	middleware.RespondWithData(w, http.StatusOK, product, "Product deleted successfully")
}
