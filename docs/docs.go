// Package docs SafeVoice API.
//
// Documentation of the SafeVoice incident-reporting API.
//
//     Schemes: https
//     BasePath: /
//     Version: 1.0.0
//     Host: https://api.safevoice.app
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - application/json
//
//     Security:
//     - basic
//
//    SecurityDefinitions:
//    basic:
//      type: basic
//
// swagger:meta
package docs

import (
	"github.com/safevoice-app/safevoice-api/models"
)

// swagger:route GET /health health healthEndpointID
// Lists the healthchex of the web service api.
// responses:
//   200: healthResponse

// Shows the current health of the api. true means it is alive, false means it is not.
// swagger:response healthResponse
type healthResponseWrapper struct {
	// in:body
	Body models.HealthCheckResponse
}

// swagger:route GET /api/v1/admin/reports reports adminReports
// Lists incident reports for the admin dashboard.
// responses:
//   200: reportListResponse

// A page of incident reports.
// swagger:response reportListResponse
type reportListResponseWrapper struct {
	// in:body
	Body []models.Report
}

// swagger:route GET /api/v1/stories stories storyList
// Lists published community stories.
// responses:
//   200: storyListResponse

// A page of published stories.
// swagger:response storyListResponse
type storyListResponseWrapper struct {
	// in:body
	Body []models.Story
}
