package api

import (
	"net/http"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/safevoice-app/safevoice-api/models"
)

// AdminMiddleware authenticates dashboard requests with the admin JWT issued
// by the login handler and attaches the decoded Session to the context
func AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		header := r.Header.Get("Authorization")
		parts := strings.Split(header, "Bearer ")
		if len(parts) != 2 {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "unauthorized"}`))
			return
		}

		token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(os.Getenv("JWT_SECRET")), nil
		})
		if err != nil || !token.Valid {
			zap.S().Errorw("admin token rejected",
				"url", r.URL,
				"error", err)
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "unauthorized"}`))
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || claims["scope"] != "admin" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "unauthorized"}`))
			return
		}

		session := Session{
			AdminID: stringClaim(claims, "sub"),
			Email:   stringClaim(claims, "email"),
			Role:    models.AdminRole(stringClaim(claims, "role")),
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
	})
}

// RequireRole wraps an admin handler with an additional role check. The
// session must already be present, so this composes inside AdminMiddleware.
func RequireRole(next http.Handler, roles ...models.AdminRole) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := SessionFrom(r.Context())
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "unauthorized"}`))
			return
		}
		for _, role := range roles {
			if session.Role == role {
				next.ServeHTTP(w, r)
				return
			}
		}
		zap.S().Warnw("admin role denied",
			"url", r.URL,
			"role", session.Role)
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": "insufficient role"}`))
	})
}

func stringClaim(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
