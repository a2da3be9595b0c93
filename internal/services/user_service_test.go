package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backend/internal/models"
	"backend/internal/repositories"
)

func ptr[T any](v T) *T { return &v }

func newUserFixture(t *testing.T) (*UserService, *AuthService, *models.User, *models.User) {
	t.Helper()
	ctx := context.Background()
	auth, users, _ := newAuthService()

	admin, err := auth.CreateAdmin(ctx, "admin@example.com", "password1")
	require.NoError(t, err)
	agent, _, err := auth.Register(ctx, RegisterRequest{Email: "agent@example.com", Password: "password1", FirstName: "Ann"})
	require.NoError(t, err)
	return NewUserService(users), auth, admin, agent
}

func TestUpdateProfile(t *testing.T) {
	svc, _, _, agent := newUserFixture(t)

	user, err := svc.UpdateProfile(context.Background(), agent.ID, UpdateProfileRequest{LastName: ptr(" Lee "), Phone: ptr(" 555-0100 ")})
	require.NoError(t, err)
	assert.Equal(t, "Ann", user.FirstName, "omitted fields are untouched")
	assert.Equal(t, "Lee", user.LastName)
	assert.Equal(t, "555-0100", user.Phone)
	assert.Equal(t, models.UserTypeAgent, user.UserType)
	assert.Empty(t, user.PasswordHash)
}

func TestAdminUpdatesStatusAndRole(t *testing.T) {
	ctx := context.Background()
	svc, auth, admin, agent := newUserFixture(t)

	user, err := svc.UpdateUser(ctx, agent.ID, admin.ID, UpdateUserRequest{IsVerified: ptr(true), UserType: ptr(models.UserTypeBuilder)})
	require.NoError(t, err)
	assert.True(t, user.IsVerified)
	assert.Equal(t, models.UserTypeBuilder, user.UserType)

	_, err = svc.UpdateUser(ctx, agent.ID, admin.ID, UpdateUserRequest{IsActive: ptr(false)})
	require.NoError(t, err)
	_, _, err = auth.Login(ctx, LoginRequest{Email: "agent@example.com", Password: "password1"})
	assert.ErrorIs(t, err, ErrUnauthorized, "deactivated accounts cannot sign in")

	_, err = svc.UpdateUser(ctx, agent.ID, admin.ID, UpdateUserRequest{UserType: ptr("pilot")})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = svc.UpdateUser(ctx, admin.ID, admin.ID, UpdateUserRequest{UserType: ptr(models.UserTypeAgent)})
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.UpdateUser(ctx, admin.ID, admin.ID, UpdateUserRequest{IsActive: ptr(false)})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestListUsersFilters(t *testing.T) {
	ctx := context.Background()
	svc, _, admin, agent := newUserFixture(t)

	all, err := svc.ListUsers(ctx, repositories.UserFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	verified, err := svc.ListUsers(ctx, repositories.UserFilter{IsVerified: ptr(true)})
	require.NoError(t, err)
	require.Len(t, verified, 1)
	assert.Equal(t, admin.ID, verified[0].ID)

	agents, err := svc.ListUsers(ctx, repositories.UserFilter{UserType: models.UserTypeAgent})
	require.NoError(t, err)
	require.Len(t, agents, 1)
	assert.Equal(t, agent.ID, agents[0].ID)
	assert.Empty(t, agents[0].PasswordHash)

	_, err = svc.ListUsers(ctx, repositories.UserFilter{UserType: "pilot"})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestDeleteUserPolicies(t *testing.T) {
	ctx := context.Background()
	svc, auth, admin, agent := newUserFixture(t)

	assert.ErrorIs(t, svc.DeleteUser(ctx, admin.ID, admin.ID), ErrForbidden, "the last admin stays")

	other, err := auth.CreateAdmin(ctx, "second@example.com", "password1")
	require.NoError(t, err)
	assert.ErrorIs(t, svc.DeleteUser(ctx, other.ID, admin.ID), ErrForbidden, "admins cannot delete other admins")
	require.NoError(t, svc.DeleteUser(ctx, other.ID, other.ID))

	require.NoError(t, svc.DeleteUser(ctx, agent.ID, agent.ID))
	_, err = svc.GetUser(ctx, agent.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.DeleteUser(ctx, agent.ID, admin.ID), ErrNotFound)
}
