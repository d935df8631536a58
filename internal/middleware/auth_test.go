package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movieon/auth-service/internal/access"
	"github.com/movieon/auth-service/internal/token"
)

type fakeBlocklist struct {
	revoked map[string]bool
	err     error
}

func (f *fakeBlocklist) IsRevoked(_ context.Context, userID string, jtis ...string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	for _, jti := range jtis {
		if f.revoked[userID+":"+jti] {
			return true, nil
		}
	}
	return false, nil
}

const gateTestSecret = "gate-test-secret"

func gateRequest(t *testing.T, gate *Gate, spec access.Spec, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := gate.Require(spec)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	require.NoError(t, handler(c))
	return rec
}

func TestGateMissingHeader(t *testing.T) {
	codec := token.NewCodec(gateTestSecret, time.Hour, 24*time.Hour)
	gate := NewGate(codec, &fakeBlocklist{})

	for _, header := range []string{"", "Bearer ", "Basic abc", "token-without-scheme"} {
		rec := gateRequest(t, gate, access.Spec{}, header)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
		assert.Contains(t, rec.Body.String(), "missing bearer token")
	}
}

func TestGateInvalidToken(t *testing.T) {
	codec := token.NewCodec(gateTestSecret, time.Hour, 24*time.Hour)
	gate := NewGate(codec, &fakeBlocklist{})

	rec := gateRequest(t, gate, access.Spec{}, "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid token")
}

func TestGateExpiredToken(t *testing.T) {
	expired := token.NewCodec(gateTestSecret, -time.Minute, -time.Minute)
	raw, _, err := expired.IssueAccess("user-a", nil)
	require.NoError(t, err)

	gate := NewGate(token.NewCodec(gateTestSecret, time.Hour, 24*time.Hour), &fakeBlocklist{})
	rec := gateRequest(t, gate, access.Spec{}, "Bearer "+raw)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid token")
}

func TestGateRejectsRefreshToken(t *testing.T) {
	codec := token.NewCodec(gateTestSecret, time.Hour, 24*time.Hour)
	accessRaw, accessClaims, err := codec.IssueAccess("user-a", []string{"admin"})
	require.NoError(t, err)
	refreshRaw, _, err := codec.IssueRefresh("user-a", []string{"admin"}, accessClaims.ID)
	require.NoError(t, err)

	gate := NewGate(codec, &fakeBlocklist{})

	// The refresh token carries the same role snapshot but is not a
	// request credential; only its access twin passes the gate.
	rec := gateRequest(t, gate, access.Spec{Any: []access.Role{access.Admin}}, "Bearer "+refreshRaw)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid token")

	rec = gateRequest(t, gate, access.Spec{Any: []access.Role{access.Admin}}, "Bearer "+accessRaw)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGateRevokedToken(t *testing.T) {
	codec := token.NewCodec(gateTestSecret, time.Hour, 24*time.Hour)
	raw, claims, err := codec.IssueAccess("user-a", []string{"admin"})
	require.NoError(t, err)

	blocklist := &fakeBlocklist{revoked: map[string]bool{"user-a:" + claims.ID: true}}
	gate := NewGate(codec, blocklist)

	rec := gateRequest(t, gate, access.Spec{}, "Bearer "+raw)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "token is in the blocklist")
}

func TestGateBlocklistFailureDenies(t *testing.T) {
	codec := token.NewCodec(gateTestSecret, time.Hour, 24*time.Hour)
	raw, _, err := codec.IssueAccess("user-a", nil)
	require.NoError(t, err)

	gate := NewGate(codec, &fakeBlocklist{err: errors.New("connection refused")})
	rec := gateRequest(t, gate, access.Spec{}, "Bearer "+raw)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGateInsufficientRole(t *testing.T) {
	codec := token.NewCodec(gateTestSecret, time.Hour, 24*time.Hour)
	raw, _, err := codec.IssueAccess("user-a", []string{"writer"})
	require.NoError(t, err)

	gate := NewGate(codec, &fakeBlocklist{})
	rec := gateRequest(t, gate, access.Spec{Any: []access.Role{access.Admin}}, "Bearer "+raw)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "not enough permissions")
}

func TestGatePassesAndInjectsIdentity(t *testing.T) {
	codec := token.NewCodec(gateTestSecret, time.Hour, 24*time.Hour)
	raw, _, err := codec.IssueAccess("user-a", []string{"admin"})
	require.NoError(t, err)

	gate := NewGate(codec, &fakeBlocklist{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := gate.Require(access.Spec{Any: []access.Role{access.Admin}})(func(c echo.Context) error {
		assert.Equal(t, "user-a", c.Get(CtxUserID))
		assert.Equal(t, []string{"admin"}, c.Get(CtxRoles))
		return c.String(http.StatusOK, "ok")
	})
	require.NoError(t, handler(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGateSuperuserBypass(t *testing.T) {
	codec := token.NewCodec(gateTestSecret, time.Hour, 24*time.Hour)
	raw, _, err := codec.IssueAccess("root", []string{"superuser"})
	require.NoError(t, err)

	gate := NewGate(codec, &fakeBlocklist{})
	rec := gateRequest(t, gate,
		access.Spec{All: []access.Role{access.Admin, access.Manager}}, "Bearer "+raw)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"Bearer  abc ", "abc", true},
		{"Bearer ", "", false},
		{"", "", false},
		{"bearer abc", "", false},
		{"Basic abc", "", false},
	}
	for _, tt := range tests {
		got, ok := BearerToken(tt.header)
		assert.Equal(t, tt.ok, ok, "header %q", tt.header)
		assert.Equal(t, tt.want, got, "header %q", tt.header)
	}
}
