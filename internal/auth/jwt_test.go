package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "access-secret-32-chars-long!!!!!"

func TestJWTManager_GenerateAndValidate(t *testing.T) {
	mgr := NewJWTManager(testSecret)

	t.Run("generate and validate", func(t *testing.T) {
		token, err := mgr.Generate("alice", 15*time.Minute)
		require.NoError(t, err)
		assert.NotEmpty(t, token)

		claims, err := mgr.Validate(token)
		require.NoError(t, err)
		assert.Equal(t, "alice", claims.Username)
		assert.Equal(t, "alice", claims.Name())
		assert.Equal(t, "parrot", claims.Issuer)
	})

	t.Run("invalid token fails validation", func(t *testing.T) {
		_, err := mgr.Validate("invalid-token")
		assert.Error(t, err)
	})

	t.Run("expired token fails", func(t *testing.T) {
		token, err := mgr.Generate("alice", -1*time.Second)
		require.NoError(t, err)
		_, err = mgr.Validate(token)
		assert.Error(t, err)
	})

	t.Run("wrong secret fails", func(t *testing.T) {
		other := NewJWTManager("another-secret-32-chars-long!!!!")
		token, err := other.Generate("alice", time.Minute)
		require.NoError(t, err)
		_, err = mgr.Validate(token)
		assert.Error(t, err)
	})

	t.Run("subject is used when username claim is absent", func(t *testing.T) {
		claims := jwt.RegisteredClaims{
			Subject:   "bob",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		got, err := mgr.Validate(signed)
		require.NoError(t, err)
		assert.Equal(t, "bob", got.Name())
	})

	t.Run("token without identity fails", func(t *testing.T) {
		claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute))}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = mgr.Validate(signed)
		assert.Error(t, err)
	})
}

func TestMiddleware(t *testing.T) {
	mgr := NewJWTManager(testSecret)
	var seen string
	handler := Middleware(mgr)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = Username(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong scheme", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic abc")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("bad token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := mgr.Generate("alice", time.Minute)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "alice", seen)
	})
}
