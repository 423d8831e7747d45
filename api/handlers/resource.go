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

	"github.com/safevoice-app/safevoice-api/api"
	"github.com/safevoice-app/safevoice-api/config"
	"github.com/safevoice-app/safevoice-api/databases"
	"github.com/safevoice-app/safevoice-api/models"
)

// Resource handles resource directory requests
type Resource struct {
	DB   databases.ResourceDatabase
	Feed *ChangeFeed
}

// resourceListResponse holds the structure for paginated resource responses
type resourceListResponse struct {
	Page       int               `json:"page"`
	TotalCount int64             `json:"totalCount"`
	Data       []models.Resource `json:"data"`
}

type resourceRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required,max=2000"`
	Category    string `json:"category" validate:"required,max=100"`
	URL         string `json:"url" validate:"omitempty,url"`
	DocumentURL string `json:"documentUrl" validate:"omitempty,url"`
	Published   bool   `json:"published"`
}

// ResourcesHandler returns a page of published resources, with optional
// substring search and category filter. Admin callers may pass all=true to
// include unpublished entries.
func (res Resource) ResourcesHandler(w http.ResponseWriter, r *http.Request) {
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

	// Only an authenticated admin may see unpublished entries. Anonymous
	// callers get published resources regardless of the all parameter.
	_, isAdmin := api.SessionFrom(r.Context())
	filter := bson.M{}
	if !isAdmin || r.URL.Query().Get("all") != "true" {
		filter["published"] = true
	}
	if search := r.URL.Query().Get("search"); search != "" {
		regex := primitive.Regex{Pattern: search, Options: "i"}
		filter["$or"] = []bson.M{
			{"title": regex},
			{"description": regex},
		}
	}
	if category := r.URL.Query().Get("category"); category != "" {
		filter["category"] = category
	}

	totalCount, err := res.DB.CountDocuments(r.Context(), filter)
	if err != nil {
		config.ErrorStatus("failed to get total count of resources", http.StatusInternalServerError, w, err)
		return
	}

	dbResp, err := res.DB.Find(r.Context(), filter, &options.FindOptions{Limit: &limit64, Skip: &skip64})
	if err != nil {
		config.ErrorStatus("failed to get resources", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Resource{}
	}

	b, err := json.Marshal(resourceListResponse{
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

// ResourceByIDHandler returns a single resource by ID
func (res Resource) ResourceByIDHandler(w http.ResponseWriter, r *http.Request) {
	resourceID := mux.Vars(r)["resource_id"]

	rID, err := primitive.ObjectIDFromHex(resourceID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	dbResp, err := res.DB.FindOne(r.Context(), bson.M{"_id": rID})
	if err != nil {
		config.ErrorStatus("failed to get resource by ID", http.StatusNotFound, w, err)
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

// CreateResourceHandler adds a new entry to the resource directory
func (res Resource) CreateResourceHandler(w http.ResponseWriter, r *http.Request) {
	var req resourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		config.ErrorStatus("invalid resource", http.StatusBadRequest, w, err)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	resource := models.Resource{
		ID:          primitive.NewObjectID(),
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		URL:         req.URL,
		DocumentURL: req.DocumentURL,
		Published:   req.Published,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if _, err := res.DB.InsertOne(r.Context(), resource); err != nil {
		config.ErrorStatus("failed to create resource", http.StatusInternalServerError, w, err)
		return
	}

	res.Feed.Publish(ChangeEvent{
		Collection: "resources",
		Action:     ChangeInsert,
		ID:         resource.ID.Hex(),
		Row:        resource,
	})

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(resource)
}

// UpdateResourceHandler replaces the editable fields of a resource
func (res Resource) UpdateResourceHandler(w http.ResponseWriter, r *http.Request) {
	resourceID := mux.Vars(r)["resource_id"]
	rID, err := primitive.ObjectIDFromHex(resourceID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req resourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		config.ErrorStatus("invalid resource", http.StatusBadRequest, w, err)
		return
	}

	err = res.DB.UpdateOne(r.Context(), bson.M{"_id": rID}, bson.M{
		"$set": bson.M{
			"title":       req.Title,
			"description": req.Description,
			"category":    req.Category,
			"url":         req.URL,
			"documentUrl": req.DocumentURL,
			"published":   req.Published,
			"updatedAt":   primitive.NewDateTimeFromTime(time.Now()),
		},
	})
	if err != nil {
		config.ErrorStatus("failed to update resource", http.StatusInternalServerError, w, err)
		return
	}

	dbResp, err := res.DB.FindOne(r.Context(), bson.M{"_id": rID})
	if err != nil {
		config.ErrorStatus("failed to get resource by ID", http.StatusNotFound, w, err)
		return
	}

	res.Feed.Publish(ChangeEvent{
		Collection: "resources",
		Action:     ChangeUpdate,
		ID:         resourceID,
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

// DeleteResourceHandler removes a resource from the directory
func (res Resource) DeleteResourceHandler(w http.ResponseWriter, r *http.Request) {
	resourceID := mux.Vars(r)["resource_id"]
	rID, err := primitive.ObjectIDFromHex(resourceID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	if err := res.DB.DeleteOne(r.Context(), bson.M{"_id": rID}); err != nil {
		config.ErrorStatus("failed to delete resource", http.StatusInternalServerError, w, err)
		return
	}

	res.Feed.Publish(ChangeEvent{
		Collection: "resources",
		Action:     ChangeDelete,
		ID:         resourceID,
	})

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message": "Resource deleted successfully"}`))
}
