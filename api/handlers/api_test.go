package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/safevoice-app/safevoice-api/api/handlers"
)

var a handlers.App

func executeRequest(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	a.Router.ServeHTTP(rr, req)
	return rr
}

func checkResponseCode(t *testing.T, expected, actual int) {
	if expected != actual {
		t.Errorf("Expected response code %d. Got %d\n", expected, actual)
	}
}

func TestHealthCheckRoute(t *testing.T) {
	a.Router = a.New()

	req, _ := http.NewRequest("GET", "/health", nil)
	response := executeRequest(req)

	checkResponseCode(t, http.StatusOK, response.Code)

	expected := `{"alive":true}`
	if body := response.Body.String(); body != expected {
		t.Errorf("Expected %s. Got %s", expected, body)
	}
}

func TestUnknownRoute(t *testing.T) {
	a.Router = a.New()

	req, _ := http.NewRequest("GET", "/zzz-not-a-route", nil)
	response := executeRequest(req)

	checkResponseCode(t, http.StatusNotFound, response.Code)
}

func TestAdminRoutesRejectAnonymous(t *testing.T) {
	a.Router = a.New()

	req, _ := http.NewRequest("GET", "/api/v1/admin/reports", nil)
	response := executeRequest(req)

	checkResponseCode(t, http.StatusUnauthorized, response.Code)
}
