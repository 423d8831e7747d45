package testhelpers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	"github.com/safevoice-app/safevoice-api/api"
	"github.com/safevoice-app/safevoice-api/models"
)

// AdminRequest builds a JSON request carrying an admin session with the given
// role, the way AdminMiddleware would attach it after verifying a JWT
func AdminRequest(method, target string, body interface{}, role models.AdminRole) *http.Request {
	r := JSONRequest(method, target, body)
	session := api.Session{
		AdminID: "5fc51f36c72ff10004dca384",
		Email:   "admin@safevoice.app",
		Role:    role,
	}
	return r.WithContext(api.WithSession(r.Context(), session))
}

// MemberRequest builds a JSON request carrying an authenticated member
// session, the way the go-guardian middleware would attach it
func MemberRequest(method, target string, body interface{}, memberID string) *http.Request {
	r := JSONRequest(method, target, body)
	return r.WithContext(api.WithMember(r.Context(), "member@safevoice.app", memberID))
}

// JSONRequest builds a request with the body marshalled as JSON. A nil body
// yields an empty request body.
func JSONRequest(method, target string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	r := httptest.NewRequest(method, target, &buf)
	r.Header.Set("Content-Type", "application/json")
	return r
}
