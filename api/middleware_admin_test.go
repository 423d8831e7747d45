package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"github.com/safevoice-app/safevoice-api/models"
)

func signTestToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return signed
}

func adminClaims(role string) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":   "5fc51f36c72ff10004dca384",
		"email": "admin@safevoice.app",
		"role":  role,
		"scope": "admin",
		"typ":   "access",
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
}

func TestAdminMiddlewareMissingToken(t *testing.T) {
	called := false
	handler := AdminMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest("GET", "/api/v1/admin/reports", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.False(t, called)
}

func TestAdminMiddlewareBadSignature(t *testing.T) {
	t.Setenv("JWT_SECRET", "the-real-secret")

	token := signTestToken(t, "some-other-secret", adminClaims("admin"))

	called := false
	handler := AdminMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest("GET", "/api/v1/admin/reports", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.False(t, called)
}

func TestAdminMiddlewareRejectsMemberScope(t *testing.T) {
	t.Setenv("JWT_SECRET", "the-real-secret")

	claims := adminClaims("admin")
	claims["scope"] = "member"
	token := signTestToken(t, "the-real-secret", claims)

	handler := AdminMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest("GET", "/api/v1/admin/reports", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAdminMiddlewareAttachesSession(t *testing.T) {
	t.Setenv("JWT_SECRET", "the-real-secret")

	token := signTestToken(t, "the-real-secret", adminClaims("super_admin"))

	var got Session
	handler := AdminMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := SessionFrom(r.Context())
		assert.True(t, ok)
		got = session
	}))

	req := httptest.NewRequest("GET", "/api/v1/admin/reports", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "5fc51f36c72ff10004dca384", got.AdminID)
	assert.Equal(t, "admin@safevoice.app", got.Email)
	assert.Equal(t, models.RoleSuperAdmin, got.Role)
}

func TestRequireRoleDeniesWrongRole(t *testing.T) {
	handler := RequireRole(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}), models.RoleSuperAdmin)

	req := httptest.NewRequest("DELETE", "/api/v1/admin/accounts/abc", nil)
	req = req.WithContext(WithSession(req.Context(), Session{
		AdminID: "5fc51f36c72ff10004dca384",
		Role:    models.RoleModerator,
	}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.JSONEq(t, `{"error": "insufficient role"}`, rr.Body.String())
}

func TestRequireRoleAllowsMatchingRole(t *testing.T) {
	called := false
	handler := RequireRole(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}), models.RoleSuperAdmin)

	req := httptest.NewRequest("GET", "/api/v1/admin/accounts", nil)
	req = req.WithContext(WithSession(req.Context(), Session{
		AdminID: "5fc51f36c72ff10004dca384",
		Role:    models.RoleSuperAdmin,
	}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRequireRoleWithoutSession(t *testing.T) {
	handler := RequireRole(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}), models.RoleSuperAdmin)

	req := httptest.NewRequest("GET", "/api/v1/admin/accounts", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
