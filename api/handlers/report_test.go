package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
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

func TestReport_ReportByIDHandlerBadObjectID(t *testing.T) {
	req, err := http.NewRequest("GET", "/api/v1/reports/1234", nil)
	if err != nil {
		t.Fatal(err)
	}
	req = mux.SetURLVars(req, map[string]string{"report_id": "1234"})

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	db.On("Collection", "reports").Return(conn)

	re := handlers.Report{DB: databases.NewReportDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(re.ReportByIDHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "failed to get objectID from Hex")
}

func TestReport_CreateReportHandlerDecodeFailure(t *testing.T) {
	req, err := http.NewRequest("POST", "/api/v1/reports", strings.NewReader("{not json"))
	if err != nil {
		t.Fatal(err)
	}

	re := handlers.Report{}

	rr := httptest.NewRecorder()
	http.HandlerFunc(re.CreateReportHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "failed to decode request body")
}

func TestReport_CreateReportHandlerRejectsUnknownType(t *testing.T) {
	body := map[string]string{
		"title":       "Threats received",
		"description": "Details of what happened",
		"type":        "gossip",
		"priority":    "High",
	}
	req := testhelpers.JSONRequest("POST", "/api/v1/reports", body)

	re := handlers.Report{}

	rr := httptest.NewRecorder()
	http.HandlerFunc(re.CreateReportHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestReport_CreateReportHandlerAnonymous(t *testing.T) {
	body := map[string]string{
		"title":       "Threats received",
		"description": "Details of what happened",
		"type":        "harassment",
		"priority":    "High",
	}
	req := testhelpers.JSONRequest("POST", "/api/v1/reports", body)

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	conn.On("InsertOne", mock.Anything, mock.Anything).Return(nil, nil)
	db.On("Collection", "reports").Return(conn)

	re := handlers.Report{DB: databases.NewReportDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(re.CreateReportHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	// no member session, so the report stays unattributed
	assert.NotContains(t, rr.Body.String(), "reporterId")
	assert.Contains(t, rr.Body.String(), `"status":"Open"`)
}

func TestReport_ResolveReportHandlerRejectsOpenStatus(t *testing.T) {
	body := map[string]string{"status": "Open"}
	req := testhelpers.AdminRequest("PUT", "/api/v1/admin/reports/5fc51f36c72ff10004dca385/resolve", body, models.RoleAdmin)
	req = mux.SetURLVars(req, map[string]string{"report_id": "5fc51f36c72ff10004dca385"})

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	db.On("Collection", "reports").Return(conn)

	re := handlers.Report{DB: databases.NewReportDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(re.ResolveReportHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	conn.AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestReport_AlertsHandlerFiltersDerivedSet(t *testing.T) {
	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	cursor := &mocks.CursorHelper{}

	cursor.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(*[]models.Report)
		*arg = []models.Report{
			{Title: "urgent one", Status: models.StatusOpen, Priority: models.PriorityCritical},
		}
	})
	conn.On("Find", mock.Anything, mock.MatchedBy(func(filter interface{}) bool {
		m, ok := filter.(bson.M)
		if !ok {
			return false
		}
		_, hasStatus := m["status"]
		_, hasPriority := m["priority"]
		return hasStatus && hasPriority
	}), mock.Anything).Return(cursor, nil)
	db.On("Collection", "reports").Return(conn)

	re := handlers.Report{DB: databases.NewReportDatabase(db)}

	req, _ := http.NewRequest("GET", "/api/v1/admin/reports/alerts", nil)
	rr := httptest.NewRecorder()
	http.HandlerFunc(re.AlertsHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "urgent one")
}
