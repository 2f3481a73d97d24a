package service

import (
	"context"
	"testing"
	"time"

	"boutique-catalog/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "test-secret"

func newTestAuthService(t *testing.T) (AuthService, *mockSessionRepository) {
	t.Helper()
	sessions := &mockSessionRepository{revoked: map[string]time.Duration{}}
	svc, err := NewAuthService(
		config.AdminConfig{Username: "admin", Password: "s3cret-pass"},
		config.JWTConfig{Secret: testSecret, AccessExpiry: 60},
		sessions,
	)
	require.NoError(t, err)
	return svc, sessions
}

func TestAuthService_LoginIssuesSignedToken(t *testing.T) {
	svc, _ := newTestAuthService(t)

	session, err := svc.Login(context.Background(), "admin", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "admin", session.Username)
	assert.WithinDuration(t, time.Now().Add(time.Hour), session.ExpiresAt, 5*time.Second)

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(session.Token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	assert.True(t, token.Valid)
	assert.Equal(t, AdminRole, claims.Role)
	assert.Equal(t, "admin", claims.Subject)
	assert.NotEmpty(t, claims.ID)
	assert.Equal(t, "HS256", token.Method.Alg())
}

func TestAuthService_LoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, "admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "root", "s3cret-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "", "s3cret-pass")
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

// Feature: boutique-catalog, Property 5: Only the configured password logs in
func TestProperty_OnlyConfiguredPasswordLogsIn(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)
	svc, err := NewAuthService(
		config.AdminConfig{Username: "admin", PasswordHash: string(hash)},
		config.JWTConfig{Secret: testSecret, AccessExpiry: 5},
		&mockSessionRepository{revoked: map[string]time.Duration{}},
	)
	require.NoError(t, err)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	properties := gopter.NewProperties(parameters)

	properties.Property("any other password is rejected", prop.ForAll(
		func(password string) bool {
			_, err := svc.Login(context.Background(), "admin", password)
			return err == ErrInvalidCredentials
		},
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{1,20}`).SuchThat(func(s string) bool { return s != "correct-horse" }),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestAuthService_LogoutRevokesUntilExpiry(t *testing.T) {
	svc, sessions := newTestAuthService(t)

	require.NoError(t, svc.Logout(context.Background(), "token-id", time.Now().Add(30*time.Minute)))
	ttl, ok := sessions.revoked["token-id"]
	require.True(t, ok)
	assert.InDelta(t, (30 * time.Minute).Seconds(), ttl.Seconds(), 5)

	require.NoError(t, svc.Logout(context.Background(), "expired", time.Now().Add(-time.Minute)))
	_, ok = sessions.revoked["expired"]
	assert.False(t, ok)
}

func TestNewAuthServiceRequiresSecrets(t *testing.T) {
	_, err := NewAuthService(config.AdminConfig{Username: "admin", Password: "x"}, config.JWTConfig{}, nil)
	assert.Error(t, err)

	_, err = NewAuthService(config.AdminConfig{Username: "admin"}, config.JWTConfig{Secret: "s"}, nil)
	assert.Error(t, err)
}
