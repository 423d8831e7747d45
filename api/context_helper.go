package api

import (
	"context"
	"time"

	"github.com/safevoice-app/safevoice-api/models"
)

// QueryTimeout is the default timeout for database queries
const QueryTimeout = 10 * time.Second

// WithQueryTimeout creates a context with query timeout
func WithQueryTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, QueryTimeout)
}

type contextKey string

const (
	sessionKey contextKey = "adminSession"
	memberKey  contextKey = "memberSession"
)

// Session carries the authenticated admin identity through a request.
// Handlers take their authorization decisions from this value alone, never
// from ambient state.
type Session struct {
	AdminID string
	Email   string
	Role    models.AdminRole
}

// MemberSession carries the authenticated community member identity
type MemberSession struct {
	MemberID string
	Email    string
}

// WithSession attaches the admin session to the request context
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// SessionFrom extracts the admin session, if any, from the request context
func SessionFrom(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey).(Session)
	return s, ok
}

// WithMember attaches the community member session to the request context
func WithMember(ctx context.Context, email, id string) context.Context {
	return context.WithValue(ctx, memberKey, MemberSession{MemberID: id, Email: email})
}

// MemberFrom extracts the community member session from the request context
func MemberFrom(ctx context.Context) (MemberSession, bool) {
	m, ok := ctx.Value(memberKey).(MemberSession)
	return m, ok
}
