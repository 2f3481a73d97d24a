package transport

import (
	"errors"
	"net/http"

	"boutique-catalog/internal/middleware"
	"boutique-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// LoginRequest represents the login request payload
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthHandler handles admin login and logout
type AuthHandler struct {
	auth   service.AuthService
	logger *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(auth service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		logger: logger,
	}
}

// RegisterRoutes registers the auth routes. Login goes through
// loginLimiter, logout through authMiddleware.
func (h *AuthHandler) RegisterRoutes(r chi.Router, loginLimiter, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/auth", func(r chi.Router) {
		r.With(loginLimiter).Post("/login", h.Login)
		r.With(authMiddleware).Post("/logout", h.Logout)
	})
}

// Login handles admin authentication
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Login validation failed", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, "Username and password are required", validationErrors)
			return
		}

		middleware.RespondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingCredentials):
			middleware.RespondWithError(w, http.StatusBadRequest, "Username and password are required")
		case errors.Is(err, service.ErrInvalidCredentials):
			h.logger.Info("Rejected admin login", zap.String("username", req.Username))
			middleware.RespondWithError(w, http.StatusUnauthorized, "Invalid username or password")
		default:
			h.logger.Error("Login failed", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	h.logger.Info("Admin logged in", zap.String("username", session.Username))
	middleware.RespondWithData(w, http.StatusOK, session, "Login successful")
}

// Logout revokes the session token that authenticated the request
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	tokenID, expiresAt, ok := middleware.GetToken(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.auth.Logout(r.Context(), tokenID, expiresAt); err != nil {
		h.logger.Error("Logout failed", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Error logging out")
		return
	}

	h.logger.Info("Admin logged out")
	middleware.RespondWithData(w, http.StatusOK, nil, "Logout successful")
}
