package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/safevoice-app/safevoice-api/config"
	"github.com/safevoice-app/safevoice-api/databases"
	"github.com/safevoice-app/safevoice-api/models"
)

// Activity handles the dashboard recent-activity feed
type Activity struct {
	DB databases.ActivityDatabase
}

type activityListResponse struct {
	Page int               `json:"page"`
	Data []models.Activity `json:"data"`
}

// ActivityHandler returns a page of recent activity entries, newest first
func (a Activity) ActivityHandler(w http.ResponseWriter, r *http.Request) {
	Limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		Limit = 50
	}
	Page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		Page = 0
	}

	dbResp, err := a.DB.FindRecent(r.Context(), Limit, Page)
	if err != nil {
		config.ErrorStatus("failed to get recent activity", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Activity{}
	}

	b, err := json.Marshal(activityListResponse{Page: Page, Data: dbResp})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
