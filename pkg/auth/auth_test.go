package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestIdentity(role string) *Identity {
	return &Identity{
		UserID:    "user-1",
		Email:     "jane@example.com",
		FirstName: "Jane",
		LastName:  "Doe",
		Role:      role,
	}
}

// ==================== Policy Tests ====================

func TestIsAdmin(t *testing.T) {
	assert.False(t, IsAdmin(nil))
	assert.False(t, IsAdmin(newTestIdentity("customer")))
	assert.False(t, IsAdmin(&Identity{Role: "Admin"}))
	assert.True(t, IsAdmin(newTestIdentity(RoleAdmin)))
}

func TestVisible(t *testing.T) {
	tests := []struct {
		name  string
		flag  bool
		admin bool
		want  bool
	}{
		{"visible record, regular caller", true, false, true},
		{"hidden record, regular caller", false, false, false},
		{"hidden record, admin", false, true, true},
		{"visible record, admin", true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Visible(tt.flag, tt.admin))
		})
	}
}

func TestIsOwner(t *testing.T) {
	id := newTestIdentity("customer")

	assert.True(t, IsOwner(id, "jane@example.com"))
	assert.False(t, IsOwner(id, "john@example.com"))
	assert.False(t, IsOwner(nil, "jane@example.com"))
	assert.False(t, IsOwner(&Identity{}, ""))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Jane Doe", newTestIdentity("customer").DisplayName())
}

// ==================== JWT Tests ====================

func TestJWTManager_RoundTrip(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Minute)

	token, err := manager.GenerateToken(newTestIdentity(RoleAdmin))
	require.NoError(t, err)

	claims, err := manager.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, newTestIdentity(RoleAdmin), claims.Identity())
}

func TestJWTManager_WrongSecret(t *testing.T) {
	token, err := NewJWTManager("secret-a", time.Minute).GenerateToken(newTestIdentity("customer"))
	require.NoError(t, err)

	_, err = NewJWTManager("secret-b", time.Minute).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_Expired(t *testing.T) {
	manager := NewJWTManager("test-secret", -time.Minute)

	token, err := manager.GenerateToken(newTestIdentity("customer"))
	require.NoError(t, err)

	_, err = manager.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

// ==================== Middleware Tests ====================

func newIdentityEchoRouter(manager *JWTManager) *gin.Engine {
	router := gin.New()
	router.Use(NewAuthMiddleware(manager).OptionalAuthenticate())
	router.GET("/whoami", func(c *gin.Context) {
		id := IdentityFromContext(c)
		if id == nil {
			c.JSON(http.StatusOK, gin.H{"anonymous": true})
			return
		}
		c.JSON(http.StatusOK, gin.H{"email": id.Email, "admin": IsAdmin(id)})
	})
	return router
}

func TestOptionalAuthenticate_Anonymous(t *testing.T) {
	router := newIdentityEchoRouter(NewJWTManager("s", time.Minute))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"anonymous":true}`, w.Body.String())
}

func TestOptionalAuthenticate_ValidToken(t *testing.T) {
	manager := NewJWTManager("s", time.Minute)
	router := newIdentityEchoRouter(manager)
	token, err := manager.GenerateToken(newTestIdentity(RoleAdmin))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"email":"jane@example.com","admin":true}`, w.Body.String())
}

func TestOptionalAuthenticate_StoresOnlyIdentity(t *testing.T) {
	manager := NewJWTManager("s", time.Minute)
	token, err := manager.GenerateToken(newTestIdentity("user"))
	require.NoError(t, err)

	var keys []any
	router := gin.New()
	router.Use(NewAuthMiddleware(manager).OptionalAuthenticate())
	router.GET("/keys", func(c *gin.Context) {
		for key := range c.Keys {
			keys = append(keys, key)
		}
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/keys", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, []any{identityKey}, keys)
}

func TestOptionalAuthenticate_Rejections(t *testing.T) {
	router := newIdentityEchoRouter(NewJWTManager("s", time.Minute))

	tests := []struct {
		name    string
		header  string
		message string
	}{
		{"bad scheme", "Basic abc", "Invalid authorization header format"},
		{"missing token", "Bearer", "Invalid authorization header format"},
		{"garbage token", "Bearer not-a-jwt", "Invalid or expired token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			req.Header.Set("Authorization", tt.header)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.message, body["message"])
		})
	}
}
