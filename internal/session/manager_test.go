package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movieon/auth-service/internal/model"
	"github.com/movieon/auth-service/internal/queue"
	"github.com/movieon/auth-service/internal/repository"
	"github.com/movieon/auth-service/internal/token"
)

// fakeUserStore serves a fixed set of users and role assignments.
type fakeUserStore struct {
	users map[string]model.User
	roles map[string][]model.Role
}

func (f *fakeUserStore) GetByID(_ context.Context, id string) (model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserStore) GetRoles(_ context.Context, userID string) ([]model.Role, error) {
	return f.roles[userID], nil
}

type fakeHistoryStore struct {
	rows []model.LoginHistory
}

func (f *fakeHistoryStore) Insert(_ context.Context, h model.LoginHistory) error {
	f.rows = append(f.rows, h)
	return nil
}

// fakeBlocklist mimics the Redis store: a set of user:jti keys.  The mutex
// lets the concurrency test hammer it from multiple goroutines.
type fakeBlocklist struct {
	mu   sync.Mutex
	keys map[string]struct{}
}

func newFakeBlocklist() *fakeBlocklist {
	return &fakeBlocklist{keys: make(map[string]struct{})}
}

func (f *fakeBlocklist) Revoke(_ context.Context, userID, jti string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys[userID+":"+jti] = struct{}{}
	return nil
}

func (f *fakeBlocklist) RevokePair(_ context.Context, userID, jti1 string, _ time.Duration, jti2 string, _ time.Duration) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, already := f.keys[userID+":"+jti1]
	f.keys[userID+":"+jti1] = struct{}{}
	f.keys[userID+":"+jti2] = struct{}{}
	return already, nil
}

func (f *fakeBlocklist) IsRevoked(_ context.Context, userID string, jtis ...string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, jti := range jtis {
		if jti == "" {
			continue
		}
		if _, ok := f.keys[userID+":"+jti]; ok {
			return true, nil
		}
	}
	return false, nil
}

type fakePublisher struct {
	events []queue.LoginEvent
}

func (f *fakePublisher) PublishLogin(_ context.Context, ev queue.LoginEvent) error {
	f.events = append(f.events, ev)
	return nil
}

const managerTestSecret = "manager-test-secret"

func newTestManager(t *testing.T) (*Manager, *fakeUserStore, *fakeHistoryStore, *fakeBlocklist, *fakePublisher) {
	t.Helper()
	users := &fakeUserStore{
		users: map[string]model.User{
			"user-a": {ID: "user-a", Email: "a@example.com"},
		},
		roles: map[string][]model.Role{
			"user-a": {{ID: "r1", Name: "admin"}, {ID: "r2", Name: "manager"}},
		},
	}
	history := &fakeHistoryStore{}
	blocklist := newFakeBlocklist()
	events := &fakePublisher{}
	codec := token.NewCodec(managerTestSecret, time.Hour, 24*time.Hour)
	return NewManager(users, history, blocklist, codec, events), users, history, blocklist, events
}

func TestLogin(t *testing.T) {
	m, users, history, blocklist, events := newTestManager(t)
	ctx := context.Background()

	pair, err := m.Login(ctx, users.users["user-a"], "Mozilla/5.0 (iPhone) Mobile Safari")
	require.NoError(t, err)

	// One history row, classified as mobile.
	require.Len(t, history.rows, 1)
	assert.Equal(t, "user-a", history.rows[0].UserID)
	assert.Equal(t, model.DeviceMobile, history.rows[0].DeviceType)
	assert.NotEmpty(t, history.rows[0].ID)

	// Both tokens decode, carry the role snapshot, and are not revoked.
	codec := token.NewCodec(managerTestSecret, time.Hour, 24*time.Hour)
	access, err := codec.Decode(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, token.KindAccess, access.Kind)
	assert.Equal(t, []string{"admin", "manager"}, access.Roles)

	refresh, err := codec.Decode(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, token.KindRefresh, refresh.Kind)
	assert.Equal(t, access.ID, refresh.AccessJTI)

	revoked, err := blocklist.IsRevoked(ctx, "user-a", access.ID, refresh.ID)
	require.NoError(t, err)
	assert.False(t, revoked)

	// The audit event went out.
	require.Len(t, events.events, 1)
	assert.Equal(t, "a@example.com", events.events[0].Email)
	assert.Equal(t, model.DeviceMobile, events.events[0].DeviceType)
}

func TestRefreshRotatesExactlyOnce(t *testing.T) {
	m, users, _, blocklist, _ := newTestManager(t)
	ctx := context.Background()

	pair, err := m.Login(ctx, users.users["user-a"], "test-agent")
	require.NoError(t, err)

	codec := token.NewCodec(managerTestSecret, time.Hour, 24*time.Hour)
	oldRefresh, err := codec.Decode(pair.RefreshToken)
	require.NoError(t, err)

	newPair, err := m.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, pair.AccessToken, newPair.AccessToken)
	assert.NotEqual(t, pair.RefreshToken, newPair.RefreshToken)

	// Both halves of the old pair are now blocklisted.
	revoked, err := blocklist.IsRevoked(ctx, "user-a", oldRefresh.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
	revoked, err = blocklist.IsRevoked(ctx, "user-a", oldRefresh.AccessJTI)
	require.NoError(t, err)
	assert.True(t, revoked)

	// Reusing the rotated token is a terminal failure.
	_, err = m.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrRevoked)

	// The new pair decodes the current role snapshot.
	newAccess, err := codec.Decode(newPair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, []string{"admin", "manager"}, newAccess.Roles)
}

func TestRefreshConcurrentUseOfOneToken(t *testing.T) {
	m, users, _, _, _ := newTestManager(t)
	ctx := context.Background()

	pair, err := m.Login(ctx, users.users["user-a"], "test-agent")
	require.NoError(t, err)

	// Two rotations race on the same token.  Both may pass the revocation
	// read, but the blocklist write admits exactly one.
	const workers = 8
	errs := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Refresh(ctx, pair.RefreshToken)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, revoked int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrRevoked):
			revoked++
		default:
			t.Fatalf("unexpected refresh error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, revoked)
}

func TestRefreshPicksUpRoleChanges(t *testing.T) {
	m, users, _, _, _ := newTestManager(t)
	ctx := context.Background()

	pair, err := m.Login(ctx, users.users["user-a"], "test-agent")
	require.NoError(t, err)

	// Roles change after issuance; the old access token keeps its snapshot,
	// the refreshed pair sees the new set.
	users.roles["user-a"] = []model.Role{{ID: "r3", Name: "writer"}}

	newPair, err := m.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)

	codec := token.NewCodec(managerTestSecret, time.Hour, 24*time.Hour)
	oldAccess, err := codec.Decode(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, []string{"admin", "manager"}, oldAccess.Roles)

	newAccess, err := codec.Decode(newPair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, []string{"writer"}, newAccess.Roles)
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	m, users, _, _, _ := newTestManager(t)
	ctx := context.Background()

	pair, err := m.Login(ctx, users.users["user-a"], "test-agent")
	require.NoError(t, err)

	_, err = m.Refresh(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestRefreshGarbageToken(t *testing.T) {
	m, _, _, _, _ := newTestManager(t)

	_, err := m.Refresh(context.Background(), "garbage")
	assert.ErrorIs(t, err, token.ErrInvalidToken)
}

func TestRefreshUserGone(t *testing.T) {
	m, users, _, _, _ := newTestManager(t)
	ctx := context.Background()

	pair, err := m.Login(ctx, users.users["user-a"], "test-agent")
	require.NoError(t, err)

	delete(users.users, "user-a")

	_, err = m.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestLogoutWithRefreshTokenRevokesPair(t *testing.T) {
	m, users, _, blocklist, _ := newTestManager(t)
	ctx := context.Background()

	pair, err := m.Login(ctx, users.users["user-a"], "test-agent")
	require.NoError(t, err)

	require.NoError(t, m.Logout(ctx, pair.RefreshToken))

	codec := token.NewCodec(managerTestSecret, time.Hour, 24*time.Hour)
	refresh, err := codec.Decode(pair.RefreshToken)
	require.NoError(t, err)

	revoked, err := blocklist.IsRevoked(ctx, "user-a", refresh.ID, refresh.AccessJTI)
	require.NoError(t, err)
	assert.True(t, revoked)

	// A second logout with the same token reports the terminal state.
	assert.ErrorIs(t, m.Logout(ctx, pair.RefreshToken), ErrRevoked)
}

func TestLogoutWithAccessTokenRevokesOnlyItself(t *testing.T) {
	m, users, _, blocklist, _ := newTestManager(t)
	ctx := context.Background()

	pair, err := m.Login(ctx, users.users["user-a"], "test-agent")
	require.NoError(t, err)

	require.NoError(t, m.Logout(ctx, pair.AccessToken))

	codec := token.NewCodec(managerTestSecret, time.Hour, 24*time.Hour)
	access, err := codec.Decode(pair.AccessToken)
	require.NoError(t, err)
	refresh, err := codec.Decode(pair.RefreshToken)
	require.NoError(t, err)

	revoked, err := blocklist.IsRevoked(ctx, "user-a", access.ID)
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = blocklist.IsRevoked(ctx, "user-a", refresh.ID)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestLoginWithoutPublisher(t *testing.T) {
	m, users, _, _, _ := newTestManager(t)
	m.events = nil

	_, err := m.Login(context.Background(), users.users["user-a"], "test-agent")
	assert.NoError(t, err)
}
