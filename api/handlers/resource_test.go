package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/safevoice-app/safevoice-api/api/handlers"
	"github.com/safevoice-app/safevoice-api/api/testhelpers"
	"github.com/safevoice-app/safevoice-api/databases"
	"github.com/safevoice-app/safevoice-api/databases/mocks"
	"github.com/safevoice-app/safevoice-api/models"
)

func TestResource_CreateResourceHandlerRejectsBadURL(t *testing.T) {
	body := map[string]interface{}{
		"title":       "Legal aid hotline",
		"description": "Free legal consultations",
		"category":    "legal",
		"url":         "not a url",
	}
	req := testhelpers.AdminRequest("POST", "/api/v1/admin/resources", body, models.RoleAdmin)

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	db.On("Collection", "resources").Return(conn)

	res := handlers.Resource{DB: databases.NewResourceDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(res.CreateResourceHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	conn.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestResource_ResourceByIDHandlerBadObjectID(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/resources/1234", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"resource_id": "1234"})

	res := handlers.Resource{}

	rr := httptest.NewRecorder()
	http.HandlerFunc(res.ResourceByIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "failed to get objectID from Hex")
}

func TestResource_ResourcesHandlerDefaultsToPublished(t *testing.T) {
	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	cursor := &mocks.CursorHelper{}

	cursor.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.Resource)
		*arg = []models.Resource{{Title: "Legal aid hotline", Published: true}}
	})
	conn.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(1), nil)
	conn.On("Find", mock.Anything, mock.MatchedBy(func(filter interface{}) bool {
		m, ok := filter.(bson.M)
		return ok && m["published"] == true
	}), mock.Anything).Return(cursor, nil)
	db.On("Collection", "resources").Return(conn)

	res := handlers.Resource{DB: databases.NewResourceDatabase(db)}

	req, _ := http.NewRequest("GET", "/api/v1/resources", nil)
	rr := httptest.NewRecorder()
	http.HandlerFunc(res.ResourcesHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Legal aid hotline")
	assert.Contains(t, rr.Body.String(), `"totalCount":1`)
}

func TestResource_ResourcesHandlerAllIncludesUnpublishedForAdmin(t *testing.T) {
	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	cursor := &mocks.CursorHelper{}

	cursor.On("Decode", mock.Anything).Return(nil)
	conn.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(0), nil)
	conn.On("Find", mock.Anything, mock.MatchedBy(func(filter interface{}) bool {
		m, ok := filter.(bson.M)
		if !ok {
			return false
		}
		_, hasPublished := m["published"]
		return !hasPublished
	}), mock.Anything).Return(cursor, nil)
	db.On("Collection", "resources").Return(conn)

	res := handlers.Resource{DB: databases.NewResourceDatabase(db)}

	req := testhelpers.AdminRequest("GET", "/api/v1/resources?all=true", nil, models.RoleAdmin)
	rr := httptest.NewRecorder()
	http.HandlerFunc(res.ResourcesHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestResource_ResourcesHandlerAllIgnoredForAnonymous(t *testing.T) {
	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	cursor := &mocks.CursorHelper{}

	cursor.On("Decode", mock.Anything).Return(nil)
	conn.On("CountDocuments", mock.Anything, mock.Anything).Return(int64(0), nil)
	conn.On("Find", mock.Anything, mock.MatchedBy(func(filter interface{}) bool {
		m, ok := filter.(bson.M)
		return ok && m["published"] == true
	}), mock.Anything).Return(cursor, nil)
	db.On("Collection", "resources").Return(conn)

	res := handlers.Resource{DB: databases.NewResourceDatabase(db)}

	req, _ := http.NewRequest("GET", "/api/v1/resources?all=true", nil)
	rr := httptest.NewRecorder()
	http.HandlerFunc(res.ResourcesHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}
