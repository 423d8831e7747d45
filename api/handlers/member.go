package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/safevoice-app/safevoice-api/api"
	"github.com/safevoice-app/safevoice-api/config"
	"github.com/safevoice-app/safevoice-api/databases"
	"github.com/safevoice-app/safevoice-api/models"
	"github.com/safevoice-app/safevoice-api/moderation"
)

// Member handles community member requests on the admin dashboard
type Member struct {
	DB    databases.MemberDatabase
	ADB   databases.ActivityDatabase
	Feed  *ChangeFeed
	Clock func() time.Time
}

var errMemberExists = errors.New("duplicate email or username")

func (m Member) now() time.Time {
	if m.Clock != nil {
		return m.Clock()
	}
	return time.Now()
}

// memberListResponse holds the structure for paginated member responses
type memberListResponse struct {
	Page       int                      `json:"page"`
	TotalCount int64                    `json:"totalCount"`
	Data       []models.CommunityMember `json:"data"`
}

// MembersHandler returns a page of community members, with optional
// substring search and status filter
func (m Member) MembersHandler(w http.ResponseWriter, r *http.Request) {
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
			{"name": regex},
			{"username": regex},
			{"email": regex},
		}
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}

	totalCount, err := m.DB.CountDocuments(r.Context(), filter)
	if err != nil {
		config.ErrorStatus("failed to get total count of members", http.StatusInternalServerError, w, err)
		return
	}

	dbResp, err := m.DB.Find(r.Context(), filter, &options.FindOptions{Limit: &limit64, Skip: &skip64})
	if err != nil {
		config.ErrorStatus("failed to get members", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.CommunityMember{}
	}

	b, err := json.Marshal(memberListResponse{
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

// MemberByIDHandler returns a single community member by ID
func (m Member) MemberByIDHandler(w http.ResponseWriter, r *http.Request) {
	memberID := mux.Vars(r)["member_id"]

	mID, err := primitive.ObjectIDFromHex(memberID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	dbResp, err := m.DB.FindOne(r.Context(), bson.M{"_id": mID})
	if err != nil {
		config.ErrorStatus("failed to get member by ID", http.StatusNotFound, w, err)
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

type createMemberRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Username string `json:"username" validate:"required,alphanum,min=3,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// CreateMemberHandler registers a new community member account. New members
// start active with empty violation log and zeroed counters.
func (m Member) CreateMemberHandler(w http.ResponseWriter, r *http.Request) {
	var req createMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		config.ErrorStatus("invalid member", http.StatusBadRequest, w, err)
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	if _, err := m.DB.FindOne(r.Context(), bson.M{"$or": []bson.M{{"email": email}, {"username": req.Username}}}); err == nil {
		config.ErrorStatus("email or username already in use", http.StatusConflict, w, errMemberExists)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		config.ErrorStatus("failed to create member", http.StatusInternalServerError, w, err)
		return
	}

	now := primitive.NewDateTimeFromTime(m.now())
	member := models.CommunityMember{
		ID:           primitive.NewObjectID(),
		Name:         req.Name,
		Username:     req.Username,
		Email:        email,
		PasswordHash: string(hash),
		Status:       models.MemberStatusActive,
		Violations:   []models.Violation{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := m.DB.InsertOne(r.Context(), member); err != nil {
		config.ErrorStatus("failed to create member", http.StatusInternalServerError, w, err)
		return
	}

	m.Feed.Publish(ChangeEvent{
		Collection: "community_members",
		Action:     ChangeInsert,
		ID:         member.ID.Hex(),
		Row:        member,
	})

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(member)
}

type moderationRequest struct {
	Action string `json:"action" validate:"required"`
	Reason string `json:"reason" validate:"required,min=5,max=500"`
}

// ModerationActionHandler applies a moderation action (warn, suspend, ban,
// activate) to a community member. Only super_admin and admin roles may
// moderate; the role check and the reason validation both run before any
// state is touched.
func (m Member) ModerationActionHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := api.SessionFrom(r.Context())
	if !ok || !session.Role.CanModerate() {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(models.ErrorResponse{
			Success: false,
			Error:   "moderation requires an admin role",
			Code:    "FORBIDDEN",
		})
		return
	}

	var req moderationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		config.ErrorStatus("invalid moderation request", http.StatusBadRequest, w, err)
		return
	}

	action, err := moderation.ParseAction(req.Action)
	if err != nil {
		config.ErrorStatus("invalid moderation action", http.StatusBadRequest, w, err)
		return
	}

	memberID := mux.Vars(r)["member_id"]
	mID, err := primitive.ObjectIDFromHex(memberID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	member, err := m.DB.FindOne(r.Context(), bson.M{"_id": mID})
	if err != nil {
		config.ErrorStatus("failed to get member by ID", http.StatusNotFound, w, err)
		return
	}

	next, err := moderation.Apply(*member, action, req.Reason, m.now())
	if err != nil {
		config.ErrorStatus("moderation action rejected", http.StatusBadRequest, w, err)
		return
	}

	// One update carrying the full violation log replacement, per the
	// transition's side effect contract
	err = m.DB.UpdateOne(r.Context(), bson.M{"_id": mID}, bson.M{
		"$set": bson.M{
			"status":       next.Status,
			"violations":   next.Violations,
			"reportsCount": next.ReportsCount,
			"updatedAt":    next.UpdatedAt,
		},
	})
	if err != nil {
		config.ErrorStatus("failed to update member", http.StatusInternalServerError, w, err)
		return
	}

	if m.ADB != nil {
		_, err = m.ADB.InsertOne(r.Context(), models.Activity{
			Kind:      "moderation",
			Actor:     session.Email,
			Subject:   next.Username,
			Message:   string(action) + ": " + req.Reason,
			CreatedAt: primitive.NewDateTimeFromTime(m.now()),
		})
		if err != nil {
			zap.S().Errorw("failed to record moderation activity", "error", err)
		}
	}

	m.Feed.Publish(ChangeEvent{
		Collection: "community_members",
		Action:     ChangeUpdate,
		ID:         memberID,
		Row:        next,
	})

	b, err := json.Marshal(next)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
