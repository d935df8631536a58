// Package handler implements the HTTP endpoints of the auth service.
// Handlers speak DTOs and HTTP statuses; all domain rules live in the
// session manager, the repositories and the access predicate.
package handler

import (
	"context"

	"github.com/movieon/auth-service/internal/model"
	"github.com/movieon/auth-service/internal/session"
)

// UserStore is the user repository surface the handlers need.
type UserStore interface {
	Create(ctx context.Context, email, password string, cost int) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id string) (model.User, error)
	UpdateProfile(ctx context.Context, id string, up model.ProfileUpdate) error
	Delete(ctx context.Context, id string) error
	GetRoles(ctx context.Context, userID string) ([]model.Role, error)
	UpdateRoles(ctx context.Context, userID string, roleIDs []string) error
}

// RoleStore is the role repository surface for the admin endpoints.
type RoleStore interface {
	Create(ctx context.Context, name string) (model.Role, error)
	GetByID(ctx context.Context, id string) (model.Role, error)
	List(ctx context.Context) ([]model.Role, error)
	Update(ctx context.Context, id, name string) error
	Delete(ctx context.Context, id string) error
	GetUsers(ctx context.Context, roleID string) ([]model.User, error)
}

// HistoryStore lists login history for the profile and admin endpoints.
type HistoryStore interface {
	ListByUser(ctx context.Context, userID string, page, size int) ([]model.LoginHistory, error)
}

// SessionManager is the session lifecycle surface, satisfied by
// *session.Manager.
type SessionManager interface {
	Login(ctx context.Context, user model.User, userAgent string) (session.TokenPair, error)
	Refresh(ctx context.Context, rawRefresh string) (session.TokenPair, error)
	Logout(ctx context.Context, raw string) error
}
