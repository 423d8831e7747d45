package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/safevoice-app/safevoice-api/api"
	"github.com/safevoice-app/safevoice-api/config"
	"github.com/safevoice-app/safevoice-api/databases"
	"github.com/safevoice-app/safevoice-api/models"
)

// Report handles report-related requests
type Report struct {
	DB   databases.ReportDatabase
	ADB  databases.ActivityDatabase
	Feed *ChangeFeed
}

type createReportRequest struct {
	Title             string `json:"title" validate:"required,max=200"`
	Description       string `json:"description" validate:"required,max=5000"`
	Type              string `json:"type" validate:"required,oneof=harassment violence discrimination other"`
	Priority          string `json:"priority" validate:"required,oneof=Low Medium High Critical"`
	Location          string `json:"location" validate:"max=500"`
	ContactPreference string `json:"contactPreference" validate:"max=200"`
}

// reportListResponse holds the structure for paginated report responses
type reportListResponse struct {
	Page       int             `json:"page"`
	TotalCount int64           `json:"totalCount"`
	Data       []models.Report `json:"data"`
}

// CreateReportHandler accepts a new incident report from the public
// submission form. Anonymous submission is allowed; when the caller holds a
// member session the report is attributed to them.
func (re Report) CreateReportHandler(w http.ResponseWriter, r *http.Request) {
	var req createReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		config.ErrorStatus("invalid report", http.StatusBadRequest, w, err)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	report := models.Report{
		ID:                primitive.NewObjectID(),
		Title:             req.Title,
		Description:       req.Description,
		Type:              models.ReportType(req.Type),
		Priority:          models.ReportPriority(req.Priority),
		Status:            models.StatusOpen,
		Location:          req.Location,
		ContactPreference: req.ContactPreference,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if member, ok := api.MemberFrom(r.Context()); ok {
		report.ReporterID = member.MemberID
	}

	if _, err := re.DB.InsertOne(r.Context(), report); err != nil {
		config.ErrorStatus("failed to create report", http.StatusInternalServerError, w, err)
		return
	}

	if re.ADB != nil {
		_, err := re.ADB.InsertOne(r.Context(), models.Activity{
			Kind:      "report",
			Subject:   report.ID.Hex(),
			Message:   "new " + string(report.Priority) + " priority report",
			CreatedAt: now,
		})
		if err != nil {
			zap.S().Errorw("failed to record report activity", "error", err)
		}
	}

	re.Feed.Publish(ChangeEvent{
		Collection: "reports",
		Action:     ChangeInsert,
		ID:         report.ID.Hex(),
		Row:        report,
	})

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(report)
}

// ReportByIDHandler returns a single report by ID
func (re Report) ReportByIDHandler(w http.ResponseWriter, r *http.Request) {
	reportID := mux.Vars(r)["report_id"]

	rID, err := primitive.ObjectIDFromHex(reportID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	dbResp, err := re.DB.FindOne(r.Context(), bson.M{"_id": rID})
	if err != nil {
		config.ErrorStatus("failed to get report by ID", http.StatusNotFound, w, err)
		return
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// ReportsHandler returns a page of reports for the triage dashboard, with
// optional search and equality filters on status, priority and type
func (re Report) ReportsHandler(w http.ResponseWriter, r *http.Request) {
	Limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		zap.S().Warnf("limit not set, using default of %v, err: %v", 10, err)
		Limit = 10
	}
	limit64 := int64(Limit)
	Page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		Page = 0
	}
	skip64 := int64(Page * Limit)

	filter := bson.M{}
	if search := r.URL.Query().Get("search"); search != "" {
		regex := primitive.Regex{Pattern: search, Options: "i"}
		filter["$or"] = []bson.M{
			{"title": regex},
			{"description": regex},
		}
	}
	for _, key := range []string{"status", "priority", "type"} {
		if v := r.URL.Query().Get(key); v != "" {
			filter[key] = v
		}
	}

	totalCount, err := re.DB.CountDocuments(r.Context(), filter)
	if err != nil {
		config.ErrorStatus("failed to get total count of reports", http.StatusInternalServerError, w, err)
		return
	}

	sort := bson.D{{Key: "createdAt", Value: -1}}
	dbResp, err := re.DB.Find(r.Context(), filter, &options.FindOptions{Limit: &limit64, Skip: &skip64, Sort: sort})
	if err != nil {
		config.ErrorStatus("failed to get reports", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Report{}
	}

	b, err := json.Marshal(reportListResponse{
		Page:       Page,
		TotalCount: totalCount,
		Data:       dbResp,
	})
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// AlertsHandler returns the reports currently classified as alerts:
// unresolved and at High or Critical priority. The classification is
// derived, never stored.
func (re Report) AlertsHandler(w http.ResponseWriter, r *http.Request) {
	dbResp, err := re.DB.Find(r.Context(), models.AlertFilter(), &options.FindOptions{Sort: bson.D{{Key: "createdAt", Value: -1}}})
	if err != nil {
		config.ErrorStatus("failed to get alerts", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Report{}
	}

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

var errExpectedTriageStatus = errors.New(`status must be "In Progress" or "Resolved"`)

type resolveReportRequest struct {
	Status         string `json:"status"`
	ResolutionNote string `json:"resolutionNote"`
}

// ResolveReportHandler moves a report forward in triage. Resolution is
// one-way: there is no optimistic counter to revert, the report simply
// leaves the alert set once resolved.
func (re Report) ResolveReportHandler(w http.ResponseWriter, r *http.Request) {
	reportID := mux.Vars(r)["report_id"]
	rID, err := primitive.ObjectIDFromHex(reportID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req resolveReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	status := models.ReportStatus(req.Status)
	if status != models.StatusInProgress && status != models.StatusResolved {
		config.ErrorStatus("invalid status transition", http.StatusBadRequest, w, errExpectedTriageStatus)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	err = re.DB.UpdateOne(r.Context(), bson.M{"_id": rID}, bson.M{
		"$set": bson.M{
			"status":         status,
			"resolutionNote": req.ResolutionNote,
			"updatedAt":      now,
		},
	})
	if err != nil {
		config.ErrorStatus("failed to update report", http.StatusInternalServerError, w, err)
		return
	}

	dbResp, err := re.DB.FindOne(r.Context(), bson.M{"_id": rID})
	if err != nil {
		config.ErrorStatus("failed to get report by ID", http.StatusNotFound, w, err)
		return
	}

	if re.ADB != nil {
		session, _ := api.SessionFrom(r.Context())
		_, err = re.ADB.InsertOne(r.Context(), models.Activity{
			Kind:      "triage",
			Actor:     session.Email,
			Subject:   reportID,
			Message:   "report moved to " + string(status),
			CreatedAt: now,
		})
		if err != nil {
			zap.S().Errorw("failed to record triage activity", "error", err)
		}
	}

	re.Feed.Publish(ChangeEvent{
		Collection: "reports",
		Action:     ChangeUpdate,
		ID:         reportID,
		Row:        dbResp,
	})

	b, err := json.Marshal(dbResp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

// DeleteReportHandler hard-deletes a report from the management screen
func (re Report) DeleteReportHandler(w http.ResponseWriter, r *http.Request) {
	reportID := mux.Vars(r)["report_id"]
	rID, err := primitive.ObjectIDFromHex(reportID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	if err := re.DB.DeleteOne(r.Context(), bson.M{"_id": rID}); err != nil {
		config.ErrorStatus("failed to delete report", http.StatusInternalServerError, w, err)
		return
	}

	re.Feed.Publish(ChangeEvent{
		Collection: "reports",
		Action:     ChangeDelete,
		ID:         reportID,
	})

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message": "Report deleted successfully"}`))
}
