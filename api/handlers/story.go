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
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/safevoice-app/safevoice-api/api"
	"github.com/safevoice-app/safevoice-api/config"
	"github.com/safevoice-app/safevoice-api/databases"
	"github.com/safevoice-app/safevoice-api/models"
)

// Story handles community story requests
type Story struct {
	DB   databases.StoryDatabase
	LDB  databases.StoryLikeDatabase
	VDB  databases.StoryViewDatabase
	CDB  databases.CommentDatabase
	MDB  databases.MemberDatabase
	Feed *ChangeFeed
}

var errStoryNotLiked = errors.New("story was not liked")

// storyListResponse holds the structure for paginated story responses
type storyListResponse struct {
	Page       int            `json:"page"`
	TotalCount int64          `json:"totalCount"`
	Data       []models.Story `json:"data"`
}

// storyDetailResponse decorates a story with its engagement counts
type storyDetailResponse struct {
	models.Story
	LikeCount int64 `json:"likeCount"`
	ViewCount int64 `json:"viewCount"`
	IsLiked   bool  `json:"isLiked"`
}

type likeResponse struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"likeCount"`
}

// StoriesHandler returns a page of published stories, with optional
// substring search and category filter
func (s Story) StoriesHandler(w http.ResponseWriter, r *http.Request) {
	Limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		Limit = 10
	}
	limit64 := int64(Limit)
	Page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		Page = 0
	}
	skip64 := int64(Page * Limit)

	filter := bson.M{"published": true}
	if search := r.URL.Query().Get("search"); search != "" {
		regex := primitive.Regex{Pattern: search, Options: "i"}
		filter["$or"] = []bson.M{
			{"title": regex},
			{"body": regex},
		}
	}
	if category := r.URL.Query().Get("category"); category != "" {
		filter["category"] = category
	}

	totalCount, err := s.DB.CountDocuments(r.Context(), filter)
	if err != nil {
		config.ErrorStatus("failed to get total count of stories", http.StatusInternalServerError, w, err)
		return
	}

	sort := bson.D{{Key: "createdAt", Value: -1}}
	dbResp, err := s.DB.Find(r.Context(), filter, &options.FindOptions{Limit: &limit64, Skip: &skip64, Sort: sort})
	if err != nil {
		config.ErrorStatus("failed to get stories", http.StatusNotFound, w, err)
		return
	}
	if len(dbResp) == 0 {
		dbResp = []models.Story{}
	}

	b, err := json.Marshal(storyListResponse{
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

// StoryByIDHandler returns a single story with its like and view counts.
// Counts come from the precomputed count views with a live-count fallback.
func (s Story) StoryByIDHandler(w http.ResponseWriter, r *http.Request) {
	storyID := mux.Vars(r)["story_id"]

	sID, err := primitive.ObjectIDFromHex(storyID)
	if err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	story, err := s.DB.FindOne(r.Context(), bson.M{"_id": sID})
	if err != nil {
		config.ErrorStatus("failed to get story by ID", http.StatusNotFound, w, err)
		return
	}

	likeCount, err := s.LDB.CountFor(r.Context(), storyID)
	if err != nil {
		config.ErrorStatus("failed to get like count", http.StatusInternalServerError, w, err)
		return
	}
	viewCount, err := s.VDB.CountFor(r.Context(), storyID)
	if err != nil {
		config.ErrorStatus("failed to get view count", http.StatusInternalServerError, w, err)
		return
	}

	resp := storyDetailResponse{Story: *story, LikeCount: likeCount, ViewCount: viewCount}
	if member, ok := api.MemberFrom(r.Context()); ok {
		_, err := s.LDB.FindOne(r.Context(), bson.M{"storyId": storyID, "memberId": member.MemberID})
		resp.IsLiked = err == nil
	}

	b, err := json.Marshal(resp)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

type createStoryRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	Body     string `json:"body" validate:"required,max=10000"`
	Category string `json:"category" validate:"max=100"`
}

// CreateStoryHandler publishes a new community story for the authenticated member
func (s Story) CreateStoryHandler(w http.ResponseWriter, r *http.Request) {
	member, ok := api.MemberFrom(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "unauthorized"}`))
		return
	}

	var req createStoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		config.ErrorStatus("invalid story", http.StatusBadRequest, w, err)
		return
	}

	now := primitive.NewDateTimeFromTime(time.Now())
	story := models.Story{
		ID:        primitive.NewObjectID(),
		AuthorID:  member.MemberID,
		Title:     req.Title,
		Body:      req.Body,
		Category:  req.Category,
		Published: true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.DB.InsertOne(r.Context(), story); err != nil {
		config.ErrorStatus("failed to create story", http.StatusInternalServerError, w, err)
		return
	}

	if err := s.incrementAuthorCounter(r, member.MemberID, "storiesCount"); err != nil {
		zap.S().Errorw("failed to bump author story counter", "error", err)
	}

	s.Feed.Publish(ChangeEvent{
		Collection: "stories",
		Action:     ChangeInsert,
		ID:         story.ID.Hex(),
		Row:        story,
	})

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(story)
}

// LikeStoryHandler toggles a like on. The count view is updated
// optimistically and reverted if the membership insert is rejected; a
// duplicate-key conflict means the member already liked the story and is
// treated as success.
func (s Story) LikeStoryHandler(w http.ResponseWriter, r *http.Request) {
	member, ok := api.MemberFrom(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "unauthorized"}`))
		return
	}

	storyID := mux.Vars(r)["story_id"]
	if _, err := primitive.ObjectIDFromHex(storyID); err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	like := models.StoryLike{
		StoryID:  storyID,
		MemberID: member.MemberID,
		LikedAt:  primitive.NewDateTimeFromTime(time.Now()),
	}

	var alreadyLiked bool
	err := databases.PerformOptimistic(
		func() error { return s.LDB.AdjustCount(r.Context(), storyID, 1) },
		func() error { return s.LDB.AdjustCount(r.Context(), storyID, -1) },
		func() error {
			_, err := s.LDB.InsertOne(r.Context(), like)
			if err != nil && mongo.IsDuplicateKeyError(err) {
				// already liked: idempotent success. The optimistic count
				// stands as-is; the periodic rollup reconciles it.
				alreadyLiked = true
				return nil
			}
			return err
		},
	)
	if err != nil {
		config.ErrorStatus("failed to like story", http.StatusInternalServerError, w, err)
		return
	}

	if !alreadyLiked {
		if err := s.bumpLikesReceived(r, storyID, 1); err != nil {
			zap.S().Errorw("failed to bump author likes counter", "error", err)
		}
	}

	likeCount, err := s.LDB.CountFor(r.Context(), storyID)
	if err != nil {
		zap.S().Errorw("failed to read like count", "error", err)
	}

	s.Feed.Publish(ChangeEvent{
		Collection: "story_likes",
		Action:     ChangeInsert,
		ID:         storyID + ":" + member.MemberID,
		Row:        like,
	})

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(likeResponse{Liked: true, LikeCount: likeCount})
}

// UnlikeStoryHandler toggles a like off, with the same optimistic count
// discipline in the opposite direction
func (s Story) UnlikeStoryHandler(w http.ResponseWriter, r *http.Request) {
	member, ok := api.MemberFrom(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "unauthorized"}`))
		return
	}

	storyID := mux.Vars(r)["story_id"]
	if _, err := primitive.ObjectIDFromHex(storyID); err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	err := databases.PerformOptimistic(
		func() error { return s.LDB.AdjustCount(r.Context(), storyID, -1) },
		func() error { return s.LDB.AdjustCount(r.Context(), storyID, 1) },
		func() error {
			n, err := s.LDB.Delete(r.Context(), bson.M{"storyId": storyID, "memberId": member.MemberID})
			if err != nil {
				return err
			}
			if n == 0 {
				return errStoryNotLiked
			}
			return nil
		},
	)
	notLiked := errors.Is(err, errStoryNotLiked)
	if err != nil && !notLiked {
		config.ErrorStatus("failed to unlike story", http.StatusInternalServerError, w, err)
		return
	}

	// Unliking a story the member never liked is a no-op: the count delta has
	// already been reverted and the author's counter must not move.
	if !notLiked {
		if err := s.bumpLikesReceived(r, storyID, -1); err != nil {
			zap.S().Errorw("failed to bump author likes counter", "error", err)
		}
	}

	likeCount, err := s.LDB.CountFor(r.Context(), storyID)
	if err != nil {
		zap.S().Errorw("failed to read like count", "error", err)
	}

	if !notLiked {
		s.Feed.Publish(ChangeEvent{
			Collection: "story_likes",
			Action:     ChangeDelete,
			ID:         storyID + ":" + member.MemberID,
		})
	}

	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(likeResponse{Liked: false, LikeCount: likeCount})
}

// ViewStoryHandler records that the member viewed the story, once per member
func (s Story) ViewStoryHandler(w http.ResponseWriter, r *http.Request) {
	member, ok := api.MemberFrom(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "unauthorized"}`))
		return
	}

	storyID := mux.Vars(r)["story_id"]
	if _, err := primitive.ObjectIDFromHex(storyID); err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	view := models.StoryView{
		StoryID:  storyID,
		MemberID: member.MemberID,
		ViewedAt: primitive.NewDateTimeFromTime(time.Now()),
	}
	if _, err := s.VDB.InsertOne(r.Context(), view); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"viewed": true}`))
			return
		}
		config.ErrorStatus("failed to record view", http.StatusInternalServerError, w, err)
		return
	}

	if err := s.VDB.AdjustCount(r.Context(), storyID, 1); err != nil {
		zap.S().Errorw("failed to bump view count", "error", err)
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"viewed": true}`))
}

// CommentsHandler returns the comments for a story, oldest first
func (s Story) CommentsHandler(w http.ResponseWriter, r *http.Request) {
	storyID := mux.Vars(r)["story_id"]

	comments, err := s.CDB.Find(r.Context(), bson.M{"storyId": storyID},
		&options.FindOptions{Sort: bson.D{{Key: "createdAt", Value: 1}}})
	if err != nil {
		config.ErrorStatus("failed to get comments", http.StatusNotFound, w, err)
		return
	}
	if len(comments) == 0 {
		comments = []models.Comment{}
	}

	b, err := json.Marshal(comments)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

type createCommentRequest struct {
	Body string `json:"body" validate:"required,max=2000"`
}

// CreateCommentHandler adds a comment to a story for the authenticated member
func (s Story) CreateCommentHandler(w http.ResponseWriter, r *http.Request) {
	member, ok := api.MemberFrom(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "unauthorized"}`))
		return
	}

	storyID := mux.Vars(r)["story_id"]
	if _, err := primitive.ObjectIDFromHex(storyID); err != nil {
		config.ErrorStatus("failed to get objectID from Hex", http.StatusBadRequest, w, err)
		return
	}

	var req createCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		config.ErrorStatus("failed to decode request body", http.StatusBadRequest, w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		config.ErrorStatus("invalid comment", http.StatusBadRequest, w, err)
		return
	}

	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		StoryID:   storyID,
		AuthorID:  member.MemberID,
		Body:      req.Body,
		CreatedAt: primitive.NewDateTimeFromTime(time.Now()),
	}
	if _, err := s.CDB.InsertOne(r.Context(), comment); err != nil {
		config.ErrorStatus("failed to create comment", http.StatusInternalServerError, w, err)
		return
	}

	if err := s.incrementAuthorCounter(r, member.MemberID, "commentsCount"); err != nil {
		zap.S().Errorw("failed to bump author comment counter", "error", err)
	}

	s.Feed.Publish(ChangeEvent{
		Collection: "comments",
		Action:     ChangeInsert,
		ID:         comment.ID.Hex(),
		Row:        comment,
	})

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(comment)
}

// incrementAuthorCounter bumps one of the member's denormalized counters
func (s Story) incrementAuthorCounter(r *http.Request, memberID, field string) error {
	if s.MDB == nil {
		return nil
	}
	mID, err := primitive.ObjectIDFromHex(memberID)
	if err != nil {
		return err
	}
	return s.MDB.UpdateOne(r.Context(), bson.M{"_id": mID}, bson.M{"$inc": bson.M{field: 1}})
}

// bumpLikesReceived adjusts the story author's likesReceived counter
func (s Story) bumpLikesReceived(r *http.Request, storyID string, delta int) error {
	if s.MDB == nil {
		return nil
	}
	sID, err := primitive.ObjectIDFromHex(storyID)
	if err != nil {
		return err
	}
	story, err := s.DB.FindOne(r.Context(), bson.M{"_id": sID})
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil
		}
		return err
	}
	aID, err := primitive.ObjectIDFromHex(story.AuthorID)
	if err != nil {
		return err
	}
	return s.MDB.UpdateOne(r.Context(), bson.M{"_id": aID}, bson.M{"$inc": bson.M{"likesReceived": delta}})
}
