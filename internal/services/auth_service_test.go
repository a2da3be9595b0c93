package services

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backend/internal/config"
	"backend/internal/models"
	"backend/internal/repositories"
	"backend/internal/utils"
)

type fakeUsers struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]models.User
	login map[uuid.UUID]int
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[uuid.UUID]models.User{}, login: map[uuid.UUID]int{}}
}

func (f *fakeUsers) Create(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u.CreatedAt = time.Now().UTC()
	f.byID[u.ID] = *u
	return nil
}

func (f *fakeUsers) FindUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (f *fakeUsers) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeUsers) UpdateLastLogin(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.login[id]++
	return nil
}

func (f *fakeUsers) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.PasswordHash = hash
	f.byID[id] = u
	return nil
}

func (f *fakeUsers) List(_ context.Context, filter repositories.UserFilter) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.User{}
	for _, u := range f.byID {
		if filter.UserType != "" && u.UserType != filter.UserType {
			continue
		}
		if filter.IsActive != nil && u.IsActive != *filter.IsActive {
			continue
		}
		if filter.IsVerified != nil && u.IsVerified != *filter.IsVerified {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (f *fakeUsers) Update(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.byID[u.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	u.PasswordHash = stored.PasswordHash
	f.byID[u.ID] = *u
	return nil
}

func (f *fakeUsers) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeUsers) CountByType(_ context.Context, userType string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, u := range f.byID {
		if u.UserType == userType {
			n++
		}
	}
	return n, nil
}

type fakeSessions struct {
	mu        sync.Mutex
	sessions  map[string]string
	blacklist map[string]bool
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: map[string]string{}, blacklist: map[string]bool{}}
}

func (f *fakeSessions) StoreSession(_ context.Context, jti, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[jti] = userID
	return nil
}

func (f *fakeSessions) SessionUser(_ context.Context, jti string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions[jti], nil
}

func (f *fakeSessions) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.blacklist[jti], nil
}

func (f *fakeSessions) Blacklist(_ context.Context, jti string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blacklist[jti] = true
	return nil
}

func (f *fakeSessions) DeleteSession(_ context.Context, jti string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, jti)
	return nil
}

func newAuthService() (*AuthService, *fakeUsers, *fakeSessions) {
	users, sessions := newFakeUsers(), newFakeSessions()
	tokens := utils.NewTokenIssuer(config.JWTConfig{
		AccessSecret: "a", RefreshSecret: "r", AccessTTL: time.Minute, RefreshTTL: time.Hour,
	})
	return NewAuthService(users, sessions, tokens), users, sessions
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, users, sessions := newAuthService()

	user, pair, err := svc.Register(ctx, RegisterRequest{Email: " Agent@Example.com ", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, "agent@example.com", user.Email)
	assert.Equal(t, models.UserTypeAgent, user.UserType)
	assert.NotEqual(t, "password1", user.PasswordHash)
	assert.Equal(t, user.ID.String(), sessions.sessions[pair.JTI])

	_, _, err = svc.Register(ctx, RegisterRequest{Email: "agent@example.com", Password: "password2"})
	assert.ErrorIs(t, err, ErrUserExists)

	_, _, err = svc.Login(ctx, LoginRequest{Email: "agent@example.com", Password: "nope"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, _, err = svc.Login(ctx, LoginRequest{Email: "missing@example.com", Password: "password1"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	got, _, err := svc.Login(ctx, LoginRequest{Email: "AGENT@example.com", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, 1, users.login[user.ID])
}

func TestRegisterRejectsInvalidInput(t *testing.T) {
	svc, _, _ := newAuthService()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, RegisterRequest{Email: "not-an-email", Password: "password1"})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, _, err = svc.Register(ctx, RegisterRequest{Email: "Bob <bob@example.com>", Password: "password1"})
	assert.ErrorIs(t, err, ErrInvalidRequest, "display names are not part of an account email")

	_, _, err = svc.Register(ctx, RegisterRequest{Email: "a@example.com", Password: "password1", UserType: models.UserTypeAdmin})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, _, err = svc.Register(ctx, RegisterRequest{Email: "a@example.com", Password: "password1", UserType: "pilot"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestRefreshRotatesAndRevokes(t *testing.T) {
	ctx := context.Background()
	svc, _, sessions := newAuthService()

	_, first, err := svc.Register(ctx, RegisterRequest{Email: "b@example.com", Password: "password1", UserType: models.UserTypeBuilder})
	require.NoError(t, err)

	second, err := svc.Refresh(ctx, first.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.JTI, second.JTI)
	assert.True(t, sessions.blacklist[first.JTI])

	_, err = svc.Refresh(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized, "a rotated token cannot be reused")

	revoked, err := svc.IsRevoked(ctx, first.JTI)
	require.NoError(t, err)
	assert.True(t, revoked)

	require.NoError(t, svc.Logout(ctx, second.RefreshToken))
	_, err = svc.Refresh(ctx, second.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized)

	assert.NoError(t, svc.Logout(ctx, "garbage"), "logging out twice is harmless")
}

func TestCreateAdmin(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAuthService()

	admin, err := svc.CreateAdmin(ctx, "Root@Example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, models.UserTypeAdmin, admin.UserType)
	assert.Equal(t, "root@example.com", admin.Email)

	_, err = svc.CreateAdmin(ctx, "root@example.com", "password1")
	assert.ErrorIs(t, err, ErrUserExists)

	_, err = svc.CreateAdmin(ctx, "other@example.com", "short")
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, pair, err := svc.Login(ctx, LoginRequest{Email: "root@example.com", Password: "password1"})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAuthService()

	user, _, err := svc.Register(ctx, RegisterRequest{Email: "c@example.com", Password: "password1"})
	require.NoError(t, err)

	_, err = svc.ChangePassword(ctx, user.ID, ChangePasswordRequest{OldPassword: "wrong", NewPassword: "password2", NewPasswordConfirm: "password2"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	_, err = svc.ChangePassword(ctx, user.ID, ChangePasswordRequest{OldPassword: "password1", NewPassword: "password2", NewPasswordConfirm: "password3"})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	pair, err := svc.ChangePassword(ctx, user.ID, ChangePasswordRequest{OldPassword: "password1", NewPassword: "password2", NewPasswordConfirm: "password2"})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)

	_, _, err = svc.Login(ctx, LoginRequest{Email: "c@example.com", Password: "password1"})
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, _, err = svc.Login(ctx, LoginRequest{Email: "c@example.com", Password: "password2"})
	assert.NoError(t, err)
}

func TestInactiveUserCannotSignIn(t *testing.T) {
	ctx := context.Background()
	svc, users, _ := newAuthService()

	user, pair, err := svc.Register(ctx, RegisterRequest{Email: "d@example.com", Password: "password1"})
	require.NoError(t, err)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsVerified)

	stored := users.byID[user.ID]
	stored.IsActive = false
	users.byID[user.ID] = stored

	_, _, err = svc.Login(ctx, LoginRequest{Email: "d@example.com", Password: "password1"})
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
