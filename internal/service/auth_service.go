package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"boutique-catalog/internal/config"
	"boutique-catalog/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the cost factor used when hashing a plain admin password
	BcryptCost = 10

	AdminRole = "admin"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrMissingCredentials = errors.New("username and password are required")
)

// AuthService issues and revokes admin session tokens.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*Session, error)
	Logout(ctx context.Context, tokenID string, expiresAt time.Time) error
}

// Session is the result of a successful login.
type Session struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Claims represents the JWT claims of a session token. Subject carries the
// username and ID the revocable token id.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type authService struct {
	username     string
	passwordHash []byte
	jwtSecret    []byte
	expiry       time.Duration
	sessions     repository.SessionRepository
	now          func() time.Time
}

// NewAuthService creates an AuthService for the single configured admin.
// A plain password is hashed once at startup.
func NewAuthService(admin config.AdminConfig, jwtCfg config.JWTConfig, sessions repository.SessionRepository) (AuthService, error) {
	if jwtCfg.Secret == "" {
		return nil, errors.New("JWT secret is not configured")
	}

	hash := []byte(admin.PasswordHash)
	if len(hash) == 0 {
		if admin.Password == "" {
			return nil, errors.New("admin password is not configured")
		}
		var err error
		if hash, err = bcrypt.GenerateFromPassword([]byte(admin.Password), BcryptCost); err != nil {
			return nil, fmt.Errorf("failed to hash admin password: %w", err)
		}
	}

	return &authService{
		username:     admin.Username,
		passwordHash: hash,
		jwtSecret:    []byte(jwtCfg.Secret),
		expiry:       time.Duration(jwtCfg.AccessExpiry) * time.Minute,
		sessions:     sessions,
		now:          time.Now,
	}, nil
}

// Login checks the admin credentials and returns a signed session token
func (s *authService) Login(ctx context.Context, username, password string) (*Session, error) {
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	// Always run the hash comparison, even for an unknown username.
	passOK := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)) == nil
	if !userOK || !passOK {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	expiresAt := now.Add(s.expiry)
	claims := &Claims{
		Role: AdminRole,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	return &Session{Token: token, Username: username, ExpiresAt: expiresAt}, nil
}

// Logout revokes a token until it would have expired anyway
func (s *authService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return nil
	}
	return s.sessions.Revoke(ctx, tokenID, expiresAt.Sub(s.now()))
}
