package handlers_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/crypto/bcrypt"

	"github.com/safevoice-app/safevoice-api/api/handlers"
	"github.com/safevoice-app/safevoice-api/api/testhelpers"
	"github.com/safevoice-app/safevoice-api/databases"
	"github.com/safevoice-app/safevoice-api/databases/mocks"
	"github.com/safevoice-app/safevoice-api/models"
)

func TestAdmin_LoginHandlerBadJSON(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/v1/admin/login", strings.NewReader("{not json"))
	if err != nil {
		t.Fatal(err)
	}

	h := handlers.Admin{}

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.AdminLoginHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "invalid request")
}

func TestAdmin_LoginHandlerUnknownEmail(t *testing.T) {
	body := map[string]string{"email": "nobody@safevoice.app", "password": "whatever123"}
	req := testhelpers.JSONRequest("POST", "/api/v1/admin/login", body)

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	singleResult := &mocks.SingleResultHelper{}
	singleResult.On("Decode", mock.Anything).Return(errors.New("mongo: no documents in result"))
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResult)
	db.On("Collection", "admin_members").Return(conn)

	h := handlers.Admin{ADB: databases.NewAdminDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.AdminLoginHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "INVALID_CREDENTIALS")
}

func TestAdmin_LoginHandlerWrongPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("the-real-password"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	body := map[string]string{"email": "admin@safevoice.app", "password": "not-the-password"}
	req := testhelpers.JSONRequest("POST", "/api/v1/admin/login", body)

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	singleResult := &mocks.SingleResultHelper{}
	singleResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.AdminMember)
		(*arg).Email = "admin@safevoice.app"
		(*arg).PasswordHash = string(hash)
		(*arg).Role = models.RoleAdmin
		(*arg).Active = true
	})
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResult)
	db.On("Collection", "admin_members").Return(conn)

	h := handlers.Admin{ADB: databases.NewAdminDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.AdminLoginHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "INVALID_CREDENTIALS")
}

func TestAdmin_LoginHandlerSuccess(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse battery"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}

	body := map[string]string{"email": "Admin@SafeVoice.app", "password": "correct horse battery"}
	req := testhelpers.JSONRequest("POST", "/api/v1/admin/login", body)

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	singleResult := &mocks.SingleResultHelper{}
	singleResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.AdminMember)
		(*arg).Name = "Dana"
		(*arg).Email = "admin@safevoice.app"
		(*arg).PasswordHash = string(hash)
		(*arg).Role = models.RoleSuperAdmin
		(*arg).Active = true
	})
	conn.On("FindOne", mock.Anything, mock.MatchedBy(func(filter interface{}) bool {
		m, ok := filter.(bson.M)
		if !ok {
			return false
		}
		// login lowercases the email before the lookup
		return m["email"] == "admin@safevoice.app"
	})).Return(singleResult)
	db.On("Collection", "admin_members").Return(conn)

	h := handlers.Admin{ADB: databases.NewAdminDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.AdminLoginHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"token"`)
	assert.Contains(t, rr.Body.String(), `"role":"super_admin"`)
}

func TestAdmin_CreateAdminHandlerRejectsUnknownRole(t *testing.T) {
	body := map[string]string{
		"name":     "New Admin",
		"email":    "new@safevoice.app",
		"password": "longenough",
		"role":     "owner",
	}
	req := testhelpers.AdminRequest("POST", "/api/v1/admin/accounts", body, models.RoleSuperAdmin)

	h := handlers.Admin{}

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.CreateAdminHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAdmin_UpdateAdminHandlerBlocksSelfDemotion(t *testing.T) {
	selfID := "5fc51f36c72ff10004dca384"
	body := map[string]interface{}{"name": "Me", "role": "moderator", "active": true}
	req := testhelpers.AdminRequest("PUT", "/api/v1/admin/accounts/"+selfID, body, models.RoleSuperAdmin)
	req = mux.SetURLVars(req, map[string]string{"admin_id": selfID})

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	db.On("Collection", "admin_members").Return(conn)

	h := handlers.Admin{ADB: databases.NewAdminDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.UpdateAdminHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "cannot demote or deactivate your own account")
	conn.AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestAdmin_DeleteAdminHandlerBlocksSelfDelete(t *testing.T) {
	selfID := "5fc51f36c72ff10004dca384"
	req := testhelpers.AdminRequest("DELETE", "/api/v1/admin/accounts/"+selfID, nil, models.RoleSuperAdmin)
	req = mux.SetURLVars(req, map[string]string{"admin_id": selfID})

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	db.On("Collection", "admin_members").Return(conn)

	h := handlers.Admin{ADB: databases.NewAdminDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(h.DeleteAdminHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "cannot delete your own account")
	conn.AssertNotCalled(t, "DeleteOne", mock.Anything, mock.Anything)
}
