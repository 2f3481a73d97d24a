package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

type contextKey string

const (
	UserIDKey      contextKey = "user_id"
	UserRoleKey    contextKey = "user_role"
	TokenIDKey     contextKey = "token_id"
	TokenExpiryKey contextKey = "token_expiry"
)

// RevocationChecker reports whether a session token id has been revoked.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// AuthMiddleware validates bearer session tokens and stores their claims
// in the request context. A nil checker skips the revocation lookup.
func AuthMiddleware(jwtSecret string, revocations RevocationChecker, logger *zap.Logger) func(http.Handler) http.Handler {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Debug("Missing authorization header")
				RespondWithError(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			// Check for Bearer token format
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				logger.Debug("Invalid authorization header format")
				RespondWithError(w, http.StatusUnauthorized, "Invalid authorization header format")
				return
			}

			claims := jwt.MapClaims{}
			token, err := parser.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				return []byte(jwtSecret), nil
			})
			if err != nil || !token.Valid {
				logger.Debug("Token validation failed", zap.Error(err))
				if errors.Is(err, jwt.ErrTokenExpired) {
					RespondWithError(w, http.StatusUnauthorized, "Session expired, please log in again")
				} else {
					RespondWithError(w, http.StatusUnauthorized, "Invalid token")
				}
				return
			}

			subject, _ := claims.GetSubject()
			role, _ := claims["role"].(string)
			tokenID, _ := claims["jti"].(string)
			if subject == "" || role == "" || tokenID == "" {
				logger.Warn("Token is missing required claims")
				RespondWithError(w, http.StatusUnauthorized, "Invalid token claims")
				return
			}

			if revocations != nil {
				revoked, err := revocations.IsRevoked(r.Context(), tokenID)
				if err != nil {
					logger.Error("Failed to check token revocation", zap.Error(err))
					RespondWithError(w, http.StatusServiceUnavailable, "Unable to verify session")
					return
				}
				if revoked {
					RespondWithError(w, http.StatusUnauthorized, "Session has been logged out")
					return
				}
			}

			expiry, _ := claims.GetExpirationTime()

			ctx := context.WithValue(r.Context(), UserIDKey, subject)
			ctx = context.WithValue(ctx, UserRoleKey, role)
			ctx = context.WithValue(ctx, TokenIDKey, tokenID)
			ctx = context.WithValue(ctx, TokenExpiryKey, expiry.Time)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserID extracts the authenticated username from request context
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}

// GetUserRole extracts user role from request context
func GetUserRole(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(UserRoleKey).(string)
	return role, ok
}

// GetToken returns the id and expiry of the session token that
// authenticated the request
func GetToken(ctx context.Context) (string, time.Time, bool) {
	id, ok := ctx.Value(TokenIDKey).(string)
	if !ok {
		return "", time.Time{}, false
	}
	expiry, _ := ctx.Value(TokenExpiryKey).(time.Time)
	return id, expiry, true
}
