package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "rankhwa/internal/errors"
)

type memoryTokenStore struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func newMemoryTokenStore() *memoryTokenStore {
	return &memoryTokenStore{revoked: map[string]time.Duration{}}
}

func (s *memoryTokenStore) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[tokenID] = ttl
	return nil
}

func (s *memoryTokenStore) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[tokenID]
	return ok, nil
}

func newTestServer(svc *JWTService, store TokenStoreInterface) *echo.Echo {
	e := echo.New()
	e.Use(Middleware(svc, store))
	e.GET("/whoami", func(c echo.Context) error {
		id, err := UserID(c)
		if err != nil {
			return c.String(http.StatusOK, "anonymous")
		}
		return c.JSON(http.StatusOK, map[string]uint{"id": id})
	})
	return e
}

func do(e *echo.Echo, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if header != "" {
		req.Header.Set(echo.HeaderAuthorization, header)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestMiddleware_OptionalAuthentication(t *testing.T) {
	svc := NewJWTService(testSecret, time.Hour)
	e := newTestServer(svc, newMemoryTokenStore())

	token, err := svc.GenerateToken(7, "reader@example.com")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		body   string
	}{
		{"valid bearer", "Bearer " + token, `{"id":7}`},
		{"no header", "", "anonymous"},
		{"malformed token", "Bearer not.a.token", "anonymous"},
		{"missing scheme", token, "anonymous"},
		{"wrong scheme", "Basic dXNlcjpwYXNz", "anonymous"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, tt.header)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.body)
		})
	}
}

func TestMiddleware_RevokedTokenIsAnonymous(t *testing.T) {
	svc := NewJWTService(testSecret, time.Hour)
	store := newMemoryTokenStore()
	e := newTestServer(svc, store)

	token, err := svc.GenerateToken(7, "reader@example.com")
	require.NoError(t, err)
	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)

	require.NoError(t, store.Revoke(context.Background(), claims.ID, time.Hour))

	rec := do(e, "Bearer "+token)
	assert.Equal(t, "anonymous", rec.Body.String())
}

func TestUserID_Unauthenticated(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	_, err := UserID(c)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestTokenStore_NilCacheNeverRevokes(t *testing.T) {
	store := NewTokenStore(nil)
	ctx := context.Background()

	require.NoError(t, store.Revoke(ctx, "jti", time.Minute))
	revoked, err := store.IsRevoked(ctx, "jti")
	require.NoError(t, err)
	assert.False(t, revoked)
}
