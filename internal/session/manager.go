// Package session orchestrates the lifecycle of a token pair: login mints
// it, refresh rotates it exactly once, logout revokes it.  The manager only
// runs at these boundaries; per-request authorization lives in the
// middleware gate and never calls into this package.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/movieon/auth-service/internal/model"
	"github.com/movieon/auth-service/internal/queue"
	"github.com/movieon/auth-service/internal/token"
)

// ErrRevoked is returned when a presented token decodes correctly but its
// jti (or its paired access jti) is blocklisted.
var ErrRevoked = errors.New("token is in the blocklist")

// UserStore is the slice of the user repository the manager needs.
type UserStore interface {
	GetByID(ctx context.Context, id string) (model.User, error)
	GetRoles(ctx context.Context, userID string) ([]model.Role, error)
}

// HistoryStore records login events.
type HistoryStore interface {
	Insert(ctx context.Context, h model.LoginHistory) error
}

// Blocklist is the revocation store interface the manager depends on.
// RevokePair reports whether the first jti was already revoked, which is
// how a lost rotation race surfaces.
type Blocklist interface {
	Revoke(ctx context.Context, userID, jti string, ttl time.Duration) error
	RevokePair(ctx context.Context, userID, jti1 string, ttl1 time.Duration, jti2 string, ttl2 time.Duration) (bool, error)
	IsRevoked(ctx context.Context, userID string, jtis ...string) (bool, error)
}

// EventPublisher pushes login audit events to the message queue.  Publishing
// is best effort; failures never fail the login.
type EventPublisher interface {
	PublishLogin(ctx context.Context, ev queue.LoginEvent) error
}

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken    string
	AccessExpires  time.Time
	RefreshToken   string
	RefreshExpires time.Time
}

// Manager ties the token codec, the relational store and the blocklist
// together.  All dependencies are injected at construction; the manager
// holds no per-session state (a "session" exists only as its token pair).
type Manager struct {
	users     UserStore
	history   HistoryStore
	blocklist Blocklist
	codec     *token.Codec
	events    EventPublisher // may be nil when the queue is not configured
}

func NewManager(users UserStore, history HistoryStore, blocklist Blocklist, codec *token.Codec, events EventPublisher) *Manager {
	return &Manager{
		users:     users,
		history:   history,
		blocklist: blocklist,
		codec:     codec,
		events:    events,
	}
}

// Login records the login event and mints a fresh token pair carrying the
// user's current role names.  The user must already be authenticated by the
// caller (password check lives in the handler, next to the request body).
func (m *Manager) Login(ctx context.Context, user model.User, userAgent string) (TokenPair, error) {
	roles, err := m.users.GetRoles(ctx, user.ID)
	if err != nil {
		return TokenPair{}, fmt.Errorf("load roles: %w", err)
	}

	device := DeviceType(userAgent)
	if err := m.history.Insert(ctx, model.LoginHistory{
		ID:         uuid.NewString(),
		UserID:     user.ID,
		UserAgent:  userAgent,
		DeviceType: device,
		LoginAt:    time.Now().UTC(),
	}); err != nil {
		return TokenPair{}, fmt.Errorf("record login: %w", err)
	}

	pair, err := m.issuePair(user.ID, roleNames(roles))
	if err != nil {
		return TokenPair{}, err
	}

	if m.events != nil {
		ev := queue.LoginEvent{
			UserID:     user.ID,
			Email:      user.Email,
			UserAgent:  userAgent,
			DeviceType: device,
			LoginAt:    time.Now().UTC().Format(time.RFC3339),
		}
		if err := m.events.PublishLogin(ctx, ev); err != nil {
			log.Printf("session: publish login event for %s failed: %v", user.ID, err)
		}
	}
	return pair, nil
}

// Refresh rotates a token pair.  The presented refresh token is usable
// exactly once: both its jti and its embedded access jti are revoked, in
// one durable write, before the new pair is returned.  A concurrent second
// refresh with the same token therefore observes the revocation and fails.
//
// Errors: token.ErrInvalidToken for anything that does not decode as a
// refresh token, ErrRevoked for an already-rotated token, and
// repository.ErrNotFound when the user vanished since issuance.
func (m *Manager) Refresh(ctx context.Context, rawRefresh string) (TokenPair, error) {
	claims, err := m.decodeRefresh(rawRefresh)
	if err != nil {
		return TokenPair{}, err
	}

	revoked, err := m.blocklist.IsRevoked(ctx, claims.UserID, claims.ID, claims.AccessJTI)
	if err != nil {
		return TokenPair{}, fmt.Errorf("blocklist check: %w", err)
	}
	if revoked {
		return TokenPair{}, ErrRevoked
	}

	// Revoke the old pair before issuing the new one.  The paired access
	// token's exact expiry is unknown here, so its entry gets the full
	// access TTL, which is always >= the remaining window.  A concurrent
	// rotation of the same token loses the SET NX race here even after
	// passing the revocation check above.
	now := time.Now().UTC()
	already, err := m.blocklist.RevokePair(ctx,
		claims.UserID,
		claims.ID, claims.Remaining(now),
		claims.AccessJTI, m.codec.AccessTTL(),
	)
	if err != nil {
		return TokenPair{}, fmt.Errorf("revoke rotated pair: %w", err)
	}
	if already {
		return TokenPair{}, ErrRevoked
	}

	// Re-fetch the user and roles: the new pair snapshots the current role
	// set, not whatever the old token carried.
	user, err := m.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return TokenPair{}, err
	}
	roles, err := m.users.GetRoles(ctx, user.ID)
	if err != nil {
		return TokenPair{}, fmt.Errorf("load roles: %w", err)
	}
	return m.issuePair(user.ID, roleNames(roles))
}

// Logout revokes the presented token.  A refresh token terminates the whole
// pair (it embeds its partner's jti); an access token only revokes itself,
// since nothing links it forward to its refresh twin.
func (m *Manager) Logout(ctx context.Context, raw string) error {
	claims, err := m.codec.Decode(raw)
	if err != nil {
		return err
	}

	jtis := []string{claims.ID}
	if claims.Kind == token.KindRefresh && claims.AccessJTI != "" {
		jtis = append(jtis, claims.AccessJTI)
	}
	revoked, err := m.blocklist.IsRevoked(ctx, claims.UserID, jtis...)
	if err != nil {
		return fmt.Errorf("blocklist check: %w", err)
	}
	if revoked {
		return ErrRevoked
	}

	now := time.Now().UTC()
	if claims.Kind == token.KindRefresh && claims.AccessJTI != "" {
		already, err := m.blocklist.RevokePair(ctx, claims.UserID,
			claims.ID, claims.Remaining(now),
			claims.AccessJTI, m.codec.AccessTTL())
		if err != nil {
			return err
		}
		if already {
			return ErrRevoked
		}
		return nil
	}
	return m.blocklist.Revoke(ctx, claims.UserID, claims.ID, claims.Remaining(now))
}

func (m *Manager) decodeRefresh(raw string) (*token.Claims, error) {
	claims, err := m.codec.Decode(raw)
	if err != nil {
		return nil, err
	}
	if claims.Kind != token.KindRefresh {
		return nil, fmt.Errorf("%w: not a refresh token", token.ErrInvalidToken)
	}
	return claims, nil
}

func (m *Manager) issuePair(userID string, roles []string) (TokenPair, error) {
	accessRaw, accessClaims, err := m.codec.IssueAccess(userID, roles)
	if err != nil {
		return TokenPair{}, err
	}
	refreshRaw, refreshClaims, err := m.codec.IssueRefresh(userID, roles, accessClaims.ID)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		AccessToken:    accessRaw,
		AccessExpires:  accessClaims.ExpiresAt.Time,
		RefreshToken:   refreshRaw,
		RefreshExpires: refreshClaims.ExpiresAt.Time,
	}, nil
}

func roleNames(roles []model.Role) []string {
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = r.Name
	}
	return names
}
