package handlers_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/safevoice-app/safevoice-api/api/handlers"
	"github.com/safevoice-app/safevoice-api/api/testhelpers"
	"github.com/safevoice-app/safevoice-api/databases"
	"github.com/safevoice-app/safevoice-api/databases/mocks"
	"github.com/safevoice-app/safevoice-api/models"
)

const (
	testStoryID  = "5fc51f36c72ff10004dca382"
	testMemberID = "5fc51f36c72ff10004dca383"
)

func likeRequest() *http.Request {
	req := testhelpers.MemberRequest("POST", "/api/v1/stories/"+testStoryID+"/like", nil, testMemberID)
	return mux.SetURLVars(req, map[string]string{"story_id": testStoryID})
}

func TestStory_LikeStoryHandlerUnauthorized(t *testing.T) {
	req := testhelpers.JSONRequest("POST", "/api/v1/stories/"+testStoryID+"/like", nil)
	req = mux.SetURLVars(req, map[string]string{"story_id": testStoryID})

	s := handlers.Story{}

	rr := httptest.NewRecorder()
	http.HandlerFunc(s.LikeStoryHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestStory_LikeStoryHandlerRevertsCountOnInsertFailure(t *testing.T) {
	db := &MockDatabaseHelper{}
	likesConn := &mocks.CollectionHelper{}
	countsConn := &mocks.CollectionHelper{}

	// optimistic apply, then the revert after the rejected insert
	countsConn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)
	likesConn.On("InsertOne", mock.Anything, mock.Anything).Return(nil, errors.New("write rejected"))

	db.On("Collection", "story_likes").Return(likesConn)
	db.On("Collection", "story_like_counts").Return(countsConn)

	s := handlers.Story{LDB: databases.NewStoryLikeDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(s.LikeStoryHandler).ServeHTTP(rr, likeRequest())

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	countsConn.AssertNumberOfCalls(t, "UpdateOne", 2)
}

func TestStory_LikeStoryHandlerDuplicateKeyIsIdempotent(t *testing.T) {
	db := &MockDatabaseHelper{}
	likesConn := &mocks.CollectionHelper{}
	countsConn := &mocks.CollectionHelper{}
	countResult := &mocks.SingleResultHelper{}

	dupErr := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000}}}

	countsConn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)
	likesConn.On("InsertOne", mock.Anything, mock.Anything).Return(nil, dupErr)
	countResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.StoryCount)
		(*arg).Count = 12
	})
	countsConn.On("FindOne", mock.Anything, mock.Anything).Return(countResult)

	db.On("Collection", "story_likes").Return(likesConn)
	db.On("Collection", "story_like_counts").Return(countsConn)

	s := handlers.Story{LDB: databases.NewStoryLikeDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(s.LikeStoryHandler).ServeHTTP(rr, likeRequest())

	// duplicate like is success, and the optimistic count is left standing
	// for the rollup rather than being reverted
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"liked":true`)
	countsConn.AssertNumberOfCalls(t, "UpdateOne", 1)
}

func TestStory_LikeStoryHandlerBadObjectID(t *testing.T) {
	req := testhelpers.MemberRequest("POST", "/api/v1/stories/1234/like", nil, testMemberID)
	req = mux.SetURLVars(req, map[string]string{"story_id": "1234"})

	s := handlers.Story{}

	rr := httptest.NewRecorder()
	http.HandlerFunc(s.LikeStoryHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestStory_UnlikeStoryHandlerRevertsCountOnDeleteFailure(t *testing.T) {
	db := &MockDatabaseHelper{}
	likesConn := &mocks.CollectionHelper{}
	countsConn := &mocks.CollectionHelper{}

	countsConn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)
	likesConn.On("DeleteMany", mock.Anything, mock.Anything).Return(int64(0), errors.New("write rejected"))

	db.On("Collection", "story_likes").Return(likesConn)
	db.On("Collection", "story_like_counts").Return(countsConn)

	s := handlers.Story{LDB: databases.NewStoryLikeDatabase(db)}

	req := testhelpers.MemberRequest("DELETE", "/api/v1/stories/"+testStoryID+"/like", nil, testMemberID)
	req = mux.SetURLVars(req, map[string]string{"story_id": testStoryID})

	rr := httptest.NewRecorder()
	http.HandlerFunc(s.UnlikeStoryHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	countsConn.AssertNumberOfCalls(t, "UpdateOne", 2)
}

func TestStory_UnlikeStoryHandlerNeverLikedIsNoOp(t *testing.T) {
	db := &MockDatabaseHelper{}
	likesConn := &mocks.CollectionHelper{}
	countsConn := &mocks.CollectionHelper{}
	storiesConn := &mocks.CollectionHelper{}
	countResult := &mocks.SingleResultHelper{}

	// optimistic apply, then the revert once the delete matches nothing
	countsConn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)
	likesConn.On("DeleteMany", mock.Anything, mock.Anything).Return(int64(0), nil)
	countResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.StoryCount)
		(*arg).Count = 0
	})
	countsConn.On("FindOne", mock.Anything, mock.Anything).Return(countResult)

	db.On("Collection", "story_likes").Return(likesConn)
	db.On("Collection", "story_like_counts").Return(countsConn)
	db.On("Collection", "stories").Return(storiesConn)
	db.On("Collection", "community_members").Return(&mocks.CollectionHelper{})

	s := handlers.Story{
		DB:  databases.NewStoryDatabase(db),
		LDB: databases.NewStoryLikeDatabase(db),
		MDB: databases.NewMemberDatabase(db),
	}

	req := testhelpers.MemberRequest("DELETE", "/api/v1/stories/"+testStoryID+"/like", nil, testMemberID)
	req = mux.SetURLVars(req, map[string]string{"story_id": testStoryID})

	rr := httptest.NewRecorder()
	http.HandlerFunc(s.UnlikeStoryHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"liked":false`)
	countsConn.AssertNumberOfCalls(t, "UpdateOne", 2)
	storiesConn.AssertNotCalled(t, "FindOne", mock.Anything, mock.Anything)
}

func TestStory_CreateStoryHandlerUnauthorized(t *testing.T) {
	body := map[string]interface{}{"title": "My story", "content": "What happened to me", "category": "healing"}
	req := testhelpers.JSONRequest("POST", "/api/v1/stories", body)

	s := handlers.Story{}

	rr := httptest.NewRecorder()
	http.HandlerFunc(s.CreateStoryHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
