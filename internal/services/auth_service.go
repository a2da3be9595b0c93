package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"backend/internal/logger"
	"backend/internal/models"
	"backend/internal/repositories"
	"backend/internal/utils"
)

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
	List(ctx context.Context, filter repositories.UserFilter) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByType(ctx context.Context, userType string) (int, error)
}

// SessionStore tracks refresh tokens by jti.
type SessionStore interface {
	StoreSession(ctx context.Context, jti string, userID string) error
	SessionUser(ctx context.Context, jti string) (string, error)
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
	Blacklist(ctx context.Context, jti string) error
	DeleteSession(ctx context.Context, jti string) error
}

type AuthService struct {
	users    UserStore
	sessions SessionStore
	tokens   *utils.TokenIssuer
}

func NewAuthService(users UserStore, sessions SessionStore, tokens *utils.TokenIssuer) *AuthService {
	return &AuthService{users: users, sessions: sessions, tokens: tokens}
}

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	UserType  string `json:"user_type"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register creates an account and signs it in. Admin accounts cannot be
// self-registered.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*models.User, *utils.TokenPair, error) {
	req.Email = strings.TrimSpace(req.Email)
	if !validEmail(req.Email) {
		return nil, nil, fmt.Errorf("%w: invalid email address", ErrInvalidRequest)
	}
	if req.UserType == "" {
		req.UserType = models.UserTypeAgent
	}
	if req.UserType == models.UserTypeAdmin || !utils.Contains(models.UserTypes, req.UserType) {
		return nil, nil, fmt.Errorf("%w: invalid user_type %q", ErrInvalidRequest, req.UserType)
	}

	user := &models.User{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     strings.TrimSpace(req.Phone),
		UserType:  req.UserType,
	}
	if err := s.createUser(ctx, user, req.Password); err != nil {
		return nil, nil, err
	}

	pair, err := s.issue(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	logger.FromContext(ctx).Info("user registered", zap.String("user_id", user.ID.String()))
	return user, pair, nil
}

// CreateAdmin adds an admin account. It is only reachable from the CLI.
func (s *AuthService) CreateAdmin(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if !validEmail(email) {
		return nil, fmt.Errorf("%w: invalid email address", ErrInvalidRequest)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidRequest)
	}

	user := &models.User{Email: email, UserType: models.UserTypeAdmin, IsVerified: true}
	if err := s.createUser(ctx, user, password); err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("admin created", zap.String("user_id", user.ID.String()))
	return user, nil
}

func (s *AuthService) createUser(ctx context.Context, user *models.User, password string) error {
	user.Prepare()
	user.IsActive = true

	existing, err := s.users.FindUserByEmail(ctx, user.Email)
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if existing != nil {
		return ErrUserExists
	}

	hashed, err := utils.Hash(password)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hashed)

	if err := s.users.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*models.User, *utils.TokenPair, error) {
	user, err := s.users.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, nil, ErrUnauthorized
	}
	if err := utils.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		return nil, nil, ErrUnauthorized
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		logger.FromContext(ctx).Warn("failed to record last login", zap.Error(err))
	}

	pair, err := s.issue(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

type ChangePasswordRequest struct {
	OldPassword        string `json:"old_password" binding:"required"`
	NewPassword        string `json:"new_password" binding:"required,min=8"`
	NewPasswordConfirm string `json:"new_password_confirm" binding:"required,eqfield=NewPassword"`
}

// ChangePassword replaces the password after checking the current one and
// signs the user in again with a fresh pair.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) (*utils.TokenPair, error) {
	if len(req.NewPassword) < 8 || req.NewPassword != req.NewPasswordConfirm {
		return nil, fmt.Errorf("%w: new passwords must match and be at least 8 characters", ErrInvalidRequest)
	}
	user, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}
	if err := utils.VerifyPassword(user.PasswordHash, req.OldPassword); err != nil {
		return nil, fmt.Errorf("%w: old password is incorrect", ErrInvalidRequest)
	}

	hashed, err := utils.Hash(req.NewPassword)
	if err != nil {
		return nil, err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, string(hashed)); err != nil {
		return nil, fmt.Errorf("failed to update password: %w", err)
	}
	logger.FromContext(ctx).Info("password changed", zap.String("user_id", user.ID.String()))
	return s.issue(ctx, user)
}

// Refresh rotates the pair: the presented refresh token is revoked and a new
// one is issued.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*utils.TokenPair, error) {
	claims, err := s.activeRefresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, ErrUnauthorized
	}
	user, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, ErrUnauthorized
	}

	if err := s.revoke(ctx, claims.ID); err != nil {
		return nil, err
	}
	return s.issue(ctx, user)
}

// Logout revokes the refresh token. An already invalid token is not an error.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.activeRefresh(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			return nil
		}
		return err
	}
	return s.revoke(ctx, claims.ID)
}

func (s *AuthService) activeRefresh(ctx context.Context, token string) (*utils.Claims, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	claims, err := s.tokens.VerifyRefresh(token)
	if err != nil {
		return nil, ErrUnauthorized
	}

	blacklisted, err := s.sessions.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check token: %w", err)
	}
	if blacklisted {
		return nil, ErrUnauthorized
	}

	owner, err := s.sessions.SessionUser(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if owner != claims.Subject {
		return nil, ErrUnauthorized
	}
	return claims, nil
}

// IsRevoked reports whether the session behind an access token's jti was
// logged out.
func (s *AuthService) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return s.sessions.IsBlacklisted(ctx, jti)
}

func (s *AuthService) issue(ctx context.Context, user *models.User) (*utils.TokenPair, error) {
	pair, err := s.tokens.GenerateTokens(user.ID, user.UserType)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}
	if err := s.sessions.StoreSession(ctx, pair.JTI, user.ID.String()); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return pair, nil
}

func (s *AuthService) revoke(ctx context.Context, jti string) error {
	if err := s.sessions.Blacklist(ctx, jti); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	if err := s.sessions.DeleteSession(ctx, jti); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
