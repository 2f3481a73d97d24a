package transport

import (
	"net"
	"net/http"

	"boutique-catalog/internal/catalog"
	"boutique-catalog/internal/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// StorefrontHandler serves the public storefront pages with display
// prices in the viewer's currency.
type StorefrontHandler struct {
	browser *catalog.Browser
	quoter  catalog.Quoter
	logger  *zap.Logger
}

// NewStorefrontHandler creates a new StorefrontHandler
func NewStorefrontHandler(browser *catalog.Browser, quoter catalog.Quoter, logger *zap.Logger) *StorefrontHandler {
	return &StorefrontHandler{
		browser: browser,
		quoter:  quoter,
		logger:  logger,
	}
}

// RegisterRoutes registers the storefront routes
func (h *StorefrontHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/storefront", func(r chi.Router) {
		r.Get("/collections", h.Collections)
		r.Get("/quote", h.Quote)
	})
}

// Collections returns the products of the collections page, optionally
// scoped by the category query parameter.
func (h *StorefrontHandler) Collections(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, err := h.browser.Load(r.Context(), catalog.PageRequest{
		CategoryID: query.Get("category"),
		ViewerIP:   viewerIP(r),
		Country:    query.Get("country"),
	})
	if err != nil {
		respondError(w, h.logger, err, "Failed to load data. Please try again later.")
		return
	}
	middleware.RespondWithData(w, http.StatusOK, page, "")
}

// Quote returns the viewer's currency quote
func (h *StorefrontHandler) Quote(w http.ResponseWriter, r *http.Request) {
	quote := h.quoter.Quote(r.Context(), viewerIP(r), r.URL.Query().Get("country"))
	middleware.RespondWithData(w, http.StatusOK, quote, "")
}

// viewerIP returns the client address as rewritten by the RealIP
// middleware.
func viewerIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
