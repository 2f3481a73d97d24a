package transport

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"boutique-catalog/internal/domain"
	"boutique-catalog/internal/middleware"
	"boutique-catalog/internal/storage"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// multipartMemory is the part of a multipart form kept in memory; larger
// files spill to temporary files.
const multipartMemory = 8 << 20

// imageField is the multipart field carrying an uploaded image.
const imageField = "image"

// respondError writes the envelope matching err. Domain errors keep their
// message; anything else is logged and reported as fallback.
func respondError(w http.ResponseWriter, logger *zap.Logger, err error, fallback string) {
	var (
		validationErr *domain.ValidationError
		notFoundErr   *domain.NotFoundError
		conflictErr   *domain.ConflictError
		maxBytesErr   *http.MaxBytesError
	)

	switch {
	case errors.As(err, &validationErr):
		middleware.RespondWithError(w, http.StatusBadRequest, validationErr.Message)
	case errors.As(err, &notFoundErr):
		middleware.RespondWithError(w, http.StatusNotFound, notFoundErr.Error())
	case errors.As(err, &conflictErr):
		middleware.RespondWithError(w, http.StatusConflict, conflictErr.Error())
	case errors.Is(err, storage.ErrNotImage):
		middleware.RespondWithError(w, http.StatusBadRequest, "Only image files are allowed")
	case errors.Is(err, storage.ErrTooLarge), errors.As(err, &maxBytesErr):
		middleware.RespondWithError(w, http.StatusRequestEntityTooLarge, "File too large")
	default:
		logger.Error(fallback, zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, fallback)
	}
}

// parseForm parses a multipart or url-encoded body.
func parseForm(r *http.Request) error {
	err := r.ParseMultipartForm(multipartMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		return nil
	}
	return err
}

// readImage returns the uploaded image, or nil when the request carries
// none.
func readImage(r *http.Request, maxBytes int64) (*storage.Upload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}

	file, header, err := r.FormFile(imageField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if header.Size > maxBytes {
		return nil, storage.ErrTooLarge
	}
	return storage.NewUpload(header.Filename, file, maxBytes)
}

// formValue returns a form field and whether it was sent at all.
func formValue(r *http.Request, name string) (string, bool) {
	values, ok := r.PostForm[name]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// optionalString returns a pointer to the field value, nil when absent.
func optionalString(r *http.Request, name string) *string {
	v, ok := formValue(r, name)
	if !ok {
		return nil
	}
	return &v
}

func parsePrice(v string) (*decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		return nil, domain.NewValidationError("Price must be a valid positive number")
	}
	return &price, nil
}

func parseQuantity(v string) (*int, error) {
	quantity, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return nil, domain.NewValidationError("Quantity must be a valid non-negative integer")
	}
	return &quantity, nil
}

// parseAvailability treats anything but a true value as false.
func parseAvailability(v string) bool {
	available, err := strconv.ParseBool(strings.TrimSpace(v))
	return err == nil && available
}

func parseVersion(r *http.Request) (*int, error) {
	v, ok := formValue(r, "version")
	if !ok || strings.TrimSpace(v) == "" {
		return nil, nil
	}
	version, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return nil, domain.NewValidationError("Version must be an integer")
	}
	return &version, nil
}

// parseJSONQuantity accepts a quantity sent as a JSON number or numeric
// string. A missing or null quantity yields nil.
func parseJSONQuantity(raw json.RawMessage) (*int, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return &n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return parseQuantity(s)
	}
	return nil, domain.NewValidationError("Quantity must be a valid non-negative integer")
}

// orEmpty keeps empty lists encoded as [] rather than null.
func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
