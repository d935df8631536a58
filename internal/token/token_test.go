package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret"

func testCodec() *Codec {
	return NewCodec(testSecret, time.Hour, 24*time.Hour)
}

func TestIssueAccessRoundTrip(t *testing.T) {
	c := testCodec()

	raw, issued, err := c.IssueAccess("user-1", []string{"admin", "manager"})
	require.NoError(t, err)
	require.NotEmpty(t, raw)
	require.NotEmpty(t, issued.ID)

	claims, err := c.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, []string{"admin", "manager"}, claims.Roles)
	assert.Equal(t, KindAccess, claims.Kind)
	assert.Equal(t, issued.ID, claims.ID)
	assert.Empty(t, claims.AccessJTI)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestIssueRefreshEmbedsAccessJTI(t *testing.T) {
	c := testCodec()

	_, accessClaims, err := c.IssueAccess("user-1", []string{"writer"})
	require.NoError(t, err)

	raw, _, err := c.IssueRefresh("user-1", []string{"writer"}, accessClaims.ID)
	require.NoError(t, err)

	claims, err := c.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, KindRefresh, claims.Kind)
	assert.Equal(t, accessClaims.ID, claims.AccessJTI)
	assert.NotEqual(t, accessClaims.ID, claims.ID)
}

func TestDecodeExpired(t *testing.T) {
	c := NewCodec(testSecret, -time.Minute, -time.Minute)

	raw, _, err := c.IssueAccess("user-1", nil)
	require.NoError(t, err)

	_, err = c.Decode(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDecodeWrongSecret(t *testing.T) {
	raw, _, err := testCodec().IssueAccess("user-1", nil)
	require.NoError(t, err)

	other := NewCodec("a-different-secret", time.Hour, 24*time.Hour)
	_, err = other.Decode(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDecodeGarbage(t *testing.T) {
	c := testCodec()

	for _, raw := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := c.Decode(raw)
		assert.ErrorIs(t, err, ErrInvalidToken, "input %q", raw)
	}
}

func TestRemaining(t *testing.T) {
	c := testCodec()

	_, claims, err := c.IssueAccess("user-1", nil)
	require.NoError(t, err)

	now := time.Now()
	assert.InDelta(t, time.Hour, claims.Remaining(now), float64(5*time.Second))
	assert.Equal(t, time.Duration(0), claims.Remaining(now.Add(2*time.Hour)))
}
