package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"backend/internal/logger"
	"backend/internal/models"
	"backend/internal/repositories"
	"backend/internal/utils"
)

type UserService struct {
	users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

// GetUser retrieves a user by ID
func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context, filter repositories.UserFilter) ([]models.User, error) {
	if filter.UserType != "" && !utils.Contains(models.UserTypes, filter.UserType) {
		return nil, fmt.Errorf("%w: invalid user_type %q", ErrInvalidRequest, filter.UserType)
	}
	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}

// UpdateProfileRequest is the part of an account its owner may change.
type UpdateProfileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone" binding:"omitempty,max=17"`
}

// UpdateUserRequest is what an admin may change on any account.
type UpdateUserRequest struct {
	UpdateProfileRequest
	UserType   *string `json:"user_type"`
	IsVerified *bool   `json:"is_verified"`
	IsActive   *bool   `json:"is_active"`
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*models.User, error) {
	return s.update(ctx, userID, userID, UpdateUserRequest{UpdateProfileRequest: req})
}

// UpdateUser applies an admin change. actorID is the admin making it.
func (s *UserService) UpdateUser(ctx context.Context, userID, actorID uuid.UUID, req UpdateUserRequest) (*models.User, error) {
	return s.update(ctx, userID, actorID, req)
}

func (s *UserService) update(ctx context.Context, userID, actorID uuid.UUID, req UpdateUserRequest) (*models.User, error) {
	user, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	if req.UserType != nil && *req.UserType != user.UserType {
		if !utils.Contains(models.UserTypes, *req.UserType) {
			return nil, fmt.Errorf("%w: invalid user_type %q", ErrInvalidRequest, *req.UserType)
		}
		if actorID == userID {
			return nil, fmt.Errorf("%w: admins cannot change their own user type", ErrForbidden)
		}
	}
	if req.IsActive != nil && !*req.IsActive && actorID == userID {
		return nil, fmt.Errorf("%w: admins cannot deactivate themselves", ErrForbidden)
	}

	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Phone != nil {
		user.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.UserType != nil {
		user.UserType = *req.UserType
	}
	if req.IsVerified != nil {
		user.IsVerified = *req.IsVerified
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	logger.FromContext(ctx).Info("user updated",
		zap.String("user_id", user.ID.String()),
		zap.String("actor_id", actorID.String()),
	)
	user.PasswordHash = ""
	return user, nil
}

// DeleteUser removes an account. Admins cannot delete other admins and the
// last admin cannot be deleted.
func (s *UserService) DeleteUser(ctx context.Context, userID, actorID uuid.UUID) error {
	user, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrNotFound
	}

	if user.UserType == models.UserTypeAdmin {
		if userID != actorID {
			return fmt.Errorf("%w: admins cannot delete other admins", ErrForbidden)
		}
		admins, err := s.users.CountByType(ctx, models.UserTypeAdmin)
		if err != nil {
			return fmt.Errorf("failed to count admins: %w", err)
		}
		if admins <= 1 {
			return fmt.Errorf("%w: cannot delete the last admin", ErrForbidden)
		}
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	logger.FromContext(ctx).Info("user deleted",
		zap.String("user_id", userID.String()),
		zap.String("actor_id", actorID.String()),
	)
	return nil
}
