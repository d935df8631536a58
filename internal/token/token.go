// Package token implements the session token codec.  Tokens are HS256 JWTs
// carrying the subject's id and a snapshot of their role names at issuance.
// Tokens come in pairs: a short-lived access token and a long-lived refresh
// token that embeds the jti of its paired access token, so revoking one half
// of the pair can always find the other.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Kind distinguishes the two halves of a session pair.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// ErrInvalidToken wraps every decode failure: bad signature, malformed
// structure, unexpected signing algorithm, or expiry in the past.  Callers
// get one sentinel and a reason string.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the payload carried by both token kinds.  Roles are a snapshot
// taken at issuance, not a live view: revoking a role does not shrink
// already-issued tokens, only blocklisting the jti does.
type Claims struct {
	UserID    string   `json:"user_id"`
	Roles     []string `json:"roles"`
	Kind      Kind     `json:"type"`
	AccessJTI string   `json:"access_jti,omitempty"` // set on refresh tokens only
	jwt.RegisteredClaims
}

// Codec signs and verifies session tokens.  It is stateless: a pure function
// of (claims, secret, clock).  The same secret must be shared by every
// process that verifies tokens.
type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewCodec builds a codec from the shared signing secret and the configured
// lifetimes of the two token kinds.
func NewCodec(secret string, accessTTL, refreshTTL time.Duration) *Codec {
	return &Codec{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// AccessTTL returns the configured access token lifetime.  The revocation
// store uses it to bound blocklist entries for access jtis whose exact
// expiry is not at hand.
func (c *Codec) AccessTTL() time.Duration { return c.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

// IssueAccess signs a fresh access token for the user with the given role
// snapshot.  The returned claims carry the generated jti and expiry.
func (c *Codec) IssueAccess(userID string, roles []string) (string, *Claims, error) {
	return c.issue(userID, roles, KindAccess, "", c.accessTTL)
}

// IssueRefresh signs a refresh token paired with the access token identified
// by accessJTI.  The pairing is what lets a single refresh or logout call
// revoke both halves of the session.
func (c *Codec) IssueRefresh(userID string, roles []string, accessJTI string) (string, *Claims, error) {
	return c.issue(userID, roles, KindRefresh, accessJTI, c.refreshTTL)
}

func (c *Codec) issue(userID string, roles []string, kind Kind, accessJTI string, ttl time.Duration) (string, *Claims, error) {
	now := time.Now().UTC()
	claims := &Claims{
		UserID:    userID,
		Roles:     roles,
		Kind:      kind,
		AccessJTI: accessJTI,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign %s token: %w", kind, err)
	}
	return signed, claims, nil
}

// Decode verifies the signature and expiry of raw and returns its claims.
// Any failure yields ErrInvalidToken with a human-readable reason.
func (c *Codec) Decode(raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return c.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !tok.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Remaining returns how long the claims are still valid, clamped at zero.
// Revocation entries use it as their TTL so a blocklist key never outlives
// the token it blocks by less than the token's own lifetime.
func (cl *Claims) Remaining(now time.Time) time.Duration {
	if cl.ExpiresAt == nil {
		return 0
	}
	d := cl.ExpiresAt.Time.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
