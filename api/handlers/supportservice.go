package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/safevoice-app/safevoice-api/config"
	"github.com/safevoice-app/safevoice-api/databases"
	"github.com/safevoice-app/safevoice-api/models"
)

// SupportService handles support-service directory requests
type SupportService struct {
	DB   databases.SupportServiceDatabase
	Feed *ChangeFeed
}

type supportServiceListResponse struct {
	Page       int                     `json:"page"`
	TotalCount int64                   `json:"totalCount"`
	Data       []models.SupportService `json:"data"`
}

type supportServiceRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"omitempty,max=2000"`
	Category    string `json:"category" validate:"required,max=100"`
	Phone       string `json:"phone" validate:"omitempty,max=50"`
	Email       string `json:"email" validate:"omitempty,email"`
	Location    string `json:"location" validate:"omitempty,max=300"`
	Hours       string `json:"hours" validate:"omitempty,max=200"`
	Verified    bool   `json:"verified"`
}

// SupportServicesHandler returns a page of support services with optional
// substring search, category and verified filters
func (s SupportService) SupportServicesHandler(w http.ResponseWriter, r *http.Request) {
	Limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		Limit = 20
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
			{"name": regex},
			{"description": regex},
			{"location": regex},
		}
	}
	if category := r.URL.Query().Get("category"); category != "" {
		filter["category"] = category
	}
	if verified := r.URL.Query().Get("verified"); verified != "" {
		filter["verified"] = verified == "true"
	}

	totalCount, err := s.DB.CountDocuments(r.Context(), filter)
	if err != nil {
		config.ErrorStatus("failed to get total count of support services", http.StatusInternalServerError, w, err)
		return
	}

	dbResp, err := s.DB.Find(r.Context(), filter, &options.FindOptions{Limit: &limit64, Skip: &skip64})
	if err != nil {
		config.ErrorStatus("failed to get support services", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.SupportService{}
	}

	b, err := json.Marshal(supportServiceListResponse{
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

// SupportServiceByIDHandler returns a single support service by ID
func (s SupportService) SupportServiceByIDHandler(w http.ResponseWriter, r *http.Request) {
	serviceID := mux.Vars(r)["service_id"]

	sID, err := primitive.ObjectIDFromHex(serviceID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	dbResp, err := s.DB.FindOne(r.Context(), bson.M{"_id": sID})
	if err != nil {
		config.ErrorStatus("failed to get support service by ID", http.StatusNotFound, w, err)
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

// CreateSupportServiceHandler adds a new entry to the support-service directory
func (s SupportService) CreateSupportServiceHandler(w http.ResponseWriter, r *http.Request) {
	var req supportServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		config.ErrorStatus("invalid support service", http.StatusBadRequest, w, err)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	service := models.SupportService{
		ID:          primitive.NewObjectID(),
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Phone:       req.Phone,
		Email:       req.Email,
		Location:    req.Location,
		Hours:       req.Hours,
		Verified:    req.Verified,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := s.DB.InsertOne(r.Context(), service); err != nil {
		config.ErrorStatus("failed to create support service", http.StatusInternalServerError, w, err)
		return
	}

	s.Feed.Publish(ChangeEvent{
		Collection: "support_services",
		Action:     ChangeInsert,
		ID:         service.ID.Hex(),
		Row:        service,
	})

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(service)
}

// UpdateSupportServiceHandler replaces the editable fields of a support service
func (s SupportService) UpdateSupportServiceHandler(w http.ResponseWriter, r *http.Request) {
	serviceID := mux.Vars(r)["service_id"]
	sID, err := primitive.ObjectIDFromHex(serviceID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req supportServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		config.ErrorStatus("invalid support service", http.StatusBadRequest, w, err)
		return
	}

	err = s.DB.UpdateOne(r.Context(), bson.M{"_id": sID}, bson.M{
		"$set": bson.M{
			"name":        req.Name,
			"description": req.Description,
			"category":    req.Category,
			"phone":       req.Phone,
			"email":       req.Email,
			"location":    req.Location,
			"hours":       req.Hours,
			"verified":    req.Verified,
			"updatedAt":   primitive.NewDateTimeFromTime(time.Now()),
		},
	})
	if err != nil {
		config.ErrorStatus("failed to update support service", http.StatusInternalServerError, w, err)
		return
	}

	dbResp, err := s.DB.FindOne(r.Context(), bson.M{"_id": sID})
	if err != nil {
		config.ErrorStatus("failed to get support service by ID", http.StatusNotFound, w, err)
		return
	}

	s.Feed.Publish(ChangeEvent{
		Collection: "support_services",
		Action:     ChangeUpdate,
		ID:         serviceID,
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

// DeleteSupportServiceHandler removes a support service from the directory
func (s SupportService) DeleteSupportServiceHandler(w http.ResponseWriter, r *http.Request) {
	serviceID := mux.Vars(r)["service_id"]
	sID, err := primitive.ObjectIDFromHex(serviceID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	if err := s.DB.DeleteOne(r.Context(), bson.M{"_id": sID}); err != nil {
		config.ErrorStatus("failed to delete support service", http.StatusInternalServerError, w, err)
		return
	}

	s.Feed.Publish(ChangeEvent{
		Collection: "support_services",
		Action:     ChangeDelete,
		ID:         serviceID,
	})

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message": "Support service deleted successfully"}`))
}
