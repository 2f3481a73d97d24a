package transport

import (
	"net/http"

	"boutique-catalog/internal/domain"
	"boutique-catalog/internal/middleware"
	"boutique-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CollectionHandler handles HTTP requests for one collection kind. The
// category and lookbook routes are two instances of it.
type CollectionHandler struct {
	collections   service.CollectionService
	basePath      string
	maxImageBytes int64
	logger        *zap.Logger
}

// NewCollectionHandler creates a CollectionHandler serving basePath, e.g.
// /api/categories.
func NewCollectionHandler(collections service.CollectionService, basePath string, maxImageBytes int64, logger *zap.Logger) *CollectionHandler {
	return &CollectionHandler{
		collections:   collections,
		basePath:      basePath,
		maxImageBytes: maxImageBytes,
		logger:        logger.With(zap.String("kind", string(collections.Kind()))),
	}
}

// RegisterRoutes registers the collection routes. Writes go through
// authMiddleware.
func (h *CollectionHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route(h.basePath, func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(middleware.RequireAdmin(h.logger))
			r.Use(middleware.MaxBodySize(2*h.maxImageBytes + multipartMemory))
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// plural names the kind in fallback messages, e.g. "Error fetching
// categories".
func (h *CollectionHandler) plural() string {
	if h.collections.Kind() == domain.KindCategory {
		return "categories"
	}
	return "lookbooks"
}

func (h *CollectionHandler) kind() string {
	return string(h.collections.Kind())
}

func (h *CollectionHandler) List(w http.ResponseWriter, r *http.Request) {
	collections, err := h.collections.List(r.Context())
	if err != nil {
		respondError(w, h.logger, err, "Error fetching "+h.plural())
		return
	}
	middleware.RespondWithData(w, http.StatusOK, orEmpty(collections), "")
}

func (h *CollectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	collection, err := h.collections.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.logger, err, "Error fetching "+h.kind())
		return
	}
	middleware.RespondWithData(w, http.StatusOK, collection, "")
}

func (h *CollectionHandler) Create(w http.ResponseWriter, r *http.Request) {
	fallback := "Error adding " + h.kind()

	if err := parseForm(r); err != nil {
		respondError(w, h.logger, err, fallback)
		return
	}

	in := domain.CollectionInput{}
	in.Name, _ = formValue(r, "name")
	in.Description, _ = formValue(r, "description")

	image, err := readImage(r, h.maxImageBytes)
	if err != nil {
		respondError(w, h.logger, err, fallback)
		return
	}

	collection, err := h.collections.Create(r.Context(), in, image)
	if err != nil {
		respondError(w, h.logger, err, fallback)
		return
	}

	middleware.RespondWithData(w, http.StatusCreated, collection, h.collections.Kind().Label()+" added successfully")
}

func (h *CollectionHandler) Update(w http.ResponseWriter, r *http.Request) {
	fallback := "Error updating " + h.kind()

	if err := parseForm(r); err != nil {
		respondError(w, h.logger, err, fallback)
		return
	}

	version, err := parseVersion(r)
	if err != nil {
		respondError(w, h.logger, err, fallback)
		return
	}
	patch := domain.CollectionPatch{
		Name:        optionalString(r, "name"),
		Description: optionalString(r, "description"),
		Version:     version,
	}

	image, err := readImage(r, h.maxImageBytes)
	if err != nil {
		respondError(w, h.logger, err, fallback)
		return
	}

	collection, err := h.collections.Update(r.Context(), chi.URLParam(r, "id"), patch, image)
	if err != nil {
		respondError(w, h.logger, err, fallback)
		return
	}

	middleware.RespondWithData(w, http.StatusOK, collection, h.collections.Kind().Label()+" updated successfully")
}

func (h *CollectionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	collection, err := h.collections.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, h.logger, err, "Error deleting "+h.kind())
		return
	}
	middleware.RespondWithData(w, http.StatusOK, collection, h.collections.Kind().Label()+" deleted successfully")
}
