// Package tenant carries the caller's identity through a request. Every
// store call is scoped to Session.TenantID; nothing below the HTTP layer
// reads identity from anywhere else.
package tenant

import (
	"context"

	"github.com/google/uuid"
	"github.com/teresa-solution/firm-management-service/internal/apperr"
)

// Session is the authenticated caller. TenantID equals the user id of the
// account and scopes every row the caller can reach.
type Session struct {
	TenantID    uuid.UUID
	AccessToken string
}

type sessionKey struct{}

func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok && s.TenantID != uuid.Nil
}

// Require returns the session or an Unauthorized error when the context
// carries none.
func Require(ctx context.Context) (Session, error) {
	s, ok := FromContext(ctx)
	if !ok {
		return Session{}, apperr.Unauthorized("session")
	}
	return s, nil
}
