package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vendora/config"
	"vendora/internal/auth"
	"vendora/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{
		AccessSecret:  "test-access-secret",
		RefreshSecret: "test-refresh-secret",
		AccessExpiry:  time.Minute,
		RefreshExpiry: time.Hour,
		Issuer:        "vendora-test",
	}
}

func authTestRouter(cfg *config.JWTConfig, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{AuthRequired(cfg)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c)})
	})
	r.GET("/protected", handlers...)
	return r
}

func TestAuthRequiredAcceptsValidToken(t *testing.T) {
	cfg := testJWTConfig()
	token, err := auth.GenerateAccessToken(cfg, 42, domain.RoleMember)
	require.NoError(t, err)

	r := authTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"user_id":42}`, rec.Body.String())
}

func TestAuthRequiredRejections(t *testing.T) {
	cfg := testJWTConfig()
	otherCfg := testJWTConfig()
	otherCfg.AccessSecret = "a-different-secret"
	foreignToken, err := auth.GenerateAccessToken(otherCfg, 42, domain.RoleMember)
	require.NoError(t, err)

	expiredCfg := testJWTConfig()
	expiredCfg.AccessExpiry = -time.Minute
	expiredToken, err := auth.GenerateAccessToken(expiredCfg, 42, domain.RoleMember)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", "Bearer not-a-jwt"},
		{"wrong secret", "Bearer " + foreignToken},
		{"expired", "Bearer " + expiredToken},
	}
	r := authTestRouter(cfg)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestAdminRequired(t *testing.T) {
	cfg := testJWTConfig()
	r := authTestRouter(cfg, AdminRequired())

	adminToken, err := auth.GenerateAccessToken(cfg, 1, domain.RoleAdmin)
	require.NoError(t, err)
	memberToken, err := auth.GenerateAccessToken(cfg, 2, domain.RoleMember)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+memberToken)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
