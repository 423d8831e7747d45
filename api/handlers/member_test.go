package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/safevoice-app/safevoice-api/api/handlers"
	"github.com/safevoice-app/safevoice-api/api/testhelpers"
	"github.com/safevoice-app/safevoice-api/databases"
	"github.com/safevoice-app/safevoice-api/databases/mocks"
	"github.com/safevoice-app/safevoice-api/models"
)

// MockDatabaseHelper is a hand-rolled databases.DatabaseHelper mock so tests
// can route collection lookups by name
type MockDatabaseHelper struct {
	mock.Mock
}

// Client provides a mock function.
func (_m *MockDatabaseHelper) Client() databases.ClientHelper {
	ret := _m.Called()

	var r0 databases.ClientHelper
	if rf, ok := ret.Get(0).(func() databases.ClientHelper); ok {
		r0 = rf()
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(databases.ClientHelper)
		}
	}

	return r0
}

// Collection provides a mock function.
func (_m *MockDatabaseHelper) Collection(name string) databases.CollectionHelper {
	ret := _m.Called(name)

	var r0 databases.CollectionHelper
	if rf, ok := ret.Get(0).(func(string) databases.CollectionHelper); ok {
		r0 = rf(name)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(databases.CollectionHelper)
		}
	}

	return r0
}

func moderationBody(action, reason string) map[string]string {
	return map[string]string{"action": action, "reason": reason}
}

func TestMember_ModerationActionHandlerModeratorForbidden(t *testing.T) {
	req := testhelpers.AdminRequest("POST", "/api/v1/admin/members/5fc51f36c72ff10004dca381/moderation",
		moderationBody("ban", "posting hate speech in comments"), models.RoleModerator)
	req = mux.SetURLVars(req, map[string]string{"member_id": "5fc51f36c72ff10004dca381"})

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	db.On("Collection", "community_members").Return(conn)

	m := handlers.Member{DB: databases.NewMemberDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(m.ModerationActionHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	// a forbidden caller must not reach the database at all
	conn.AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
	conn.AssertNotCalled(t, "FindOne", mock.Anything, mock.Anything)
}

func TestMember_ModerationActionHandlerNoSessionForbidden(t *testing.T) {
	req := testhelpers.JSONRequest("POST", "/api/v1/admin/members/5fc51f36c72ff10004dca381/moderation",
		moderationBody("warn", "unsolicited contact"))
	req = mux.SetURLVars(req, map[string]string{"member_id": "5fc51f36c72ff10004dca381"})

	m := handlers.Member{}

	rr := httptest.NewRecorder()
	http.HandlerFunc(m.ModerationActionHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestMember_ModerationActionHandlerShortReason(t *testing.T) {
	req := testhelpers.AdminRequest("POST", "/api/v1/admin/members/5fc51f36c72ff10004dca381/moderation",
		moderationBody("warn", "spam"), models.RoleAdmin)
	req = mux.SetURLVars(req, map[string]string{"member_id": "5fc51f36c72ff10004dca381"})

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	db.On("Collection", "community_members").Return(conn)

	m := handlers.Member{DB: databases.NewMemberDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(m.ModerationActionHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	conn.AssertNotCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}

func TestMember_ModerationActionHandlerBadObjectID(t *testing.T) {
	req := testhelpers.AdminRequest("POST", "/api/v1/admin/members/1234/moderation",
		moderationBody("warn", "unsolicited contact"), models.RoleAdmin)
	req = mux.SetURLVars(req, map[string]string{"member_id": "1234"})

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	db.On("Collection", "community_members").Return(conn)

	m := handlers.Member{DB: databases.NewMemberDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(m.ModerationActionHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMember_ModerationActionHandlerWarn(t *testing.T) {
	req := testhelpers.AdminRequest("POST", "/api/v1/admin/members/5fc51f36c72ff10004dca381/moderation",
		moderationBody("warn", "repeated harassment in comments"), models.RoleSuperAdmin)
	req = mux.SetURLVars(req, map[string]string{"member_id": "5fc51f36c72ff10004dca381"})

	db := &MockDatabaseHelper{}
	conn := &mocks.CollectionHelper{}
	singleResult := &mocks.SingleResultHelper{}

	singleResult.On("Decode", mock.Anything).Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.CommunityMember)
		(*arg).Username = "jrivera"
		(*arg).Status = models.MemberStatusActive
	})
	conn.On("FindOne", mock.Anything, mock.Anything).Return(singleResult)
	conn.On("UpdateOne", mock.Anything, mock.Anything, mock.Anything).Return(nil, nil)
	db.On("Collection", "community_members").Return(conn)

	m := handlers.Member{DB: databases.NewMemberDatabase(db)}

	rr := httptest.NewRecorder()
	http.HandlerFunc(m.ModerationActionHandler).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"warned"`)
	assert.Contains(t, rr.Body.String(), `"type":"harassment"`)
	conn.AssertCalled(t, "UpdateOne", mock.Anything, mock.Anything, mock.Anything)
}
