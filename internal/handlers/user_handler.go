package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"backend/internal/middlewares"
	"backend/internal/repositories"
	"backend/internal/responses"
	"backend/internal/services"
)

type UserHandler struct {
	userService *services.UserService
	authService *services.AuthService
}

func NewUserHandler(userService *services.UserService, authService *services.AuthService) *UserHandler {
	return &UserHandler{userService: userService, authService: authService}
}

// GetMe handles GET /api/v1/users/me
func (h *UserHandler) GetMe(c *gin.Context) {
	userID, ok := middlewares.UserID(c)
	if !ok {
		responses.Fail(c, http.StatusUnauthorized, nil, "Unauthorized")
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), userID)
	if err != nil {
		fail(c, err, "Failed to retrieve user")
		return
	}

	responses.Success(c, http.StatusOK, user, "User retrieved successfully")
}

// UpdateMe handles PATCH /api/v1/users/me
func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID, ok := middlewares.UserID(c)
	if !ok {
		responses.Fail(c, http.StatusUnauthorized, nil, "Unauthorized")
		return
	}

	var req services.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		fail(c, err, "Failed to update user")
		return
	}

	responses.Success(c, http.StatusOK, user, "User updated successfully")
}

// ChangePassword handles POST /api/v1/users/me/password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	userID, ok := middlewares.UserID(c)
	if !ok {
		responses.Fail(c, http.StatusUnauthorized, nil, "Unauthorized")
		return
	}

	var req services.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}

	pair, err := h.authService.ChangePassword(c.Request.Context(), userID, req)
	if err != nil {
		fail(c, err, "Failed to change password")
		return
	}

	responses.Success(c, http.StatusOK, authResponse{AccessToken: pair.AccessToken}, "Password changed successfully")
}

// DeleteMe handles DELETE /api/v1/users/me
func (h *UserHandler) DeleteMe(c *gin.Context) {
	userID, ok := middlewares.UserID(c)
	if !ok {
		responses.Fail(c, http.StatusUnauthorized, nil, "Unauthorized")
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), userID, userID); err != nil {
		fail(c, err, "Failed to delete user")
		return
	}

	responses.Success(c, http.StatusOK, gin.H{"access_token": ""}, "User deleted successfully")
}

// ListUsers handles GET /api/v1/users (admin only). It filters on
// user_type, is_active and is_verified.
func (h *UserHandler) ListUsers(c *gin.Context) {
	filter := repositories.UserFilter{UserType: c.Query("user_type")}
	for key, dst := range map[string]**bool{"is_active": &filter.IsActive, "is_verified": &filter.IsVerified} {
		raw, ok := c.GetQuery(key)
		if !ok {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			responses.Fail(c, http.StatusBadRequest, err, "Invalid "+key)
			return
		}
		*dst = &v
	}

	users, err := h.userService.ListUsers(c.Request.Context(), filter)
	if err != nil {
		fail(c, err, "Failed to retrieve users")
		return
	}

	responses.Success(c, http.StatusOK, users, "Users retrieved successfully")
}

// GetUser handles GET /api/v1/users/:user_id (admin only)
func (h *UserHandler) GetUser(c *gin.Context) {
	userID, ok := userParam(c)
	if !ok {
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), userID)
	if err != nil {
		fail(c, err, "Failed to retrieve user")
		return
	}

	responses.Success(c, http.StatusOK, user, "User retrieved successfully")
}

// UpdateUser handles PATCH /api/v1/users/:user_id (admin only)
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req services.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid request body")
		return
	}
	h.applyUpdate(c, req, "User updated successfully")
}

// SetStatus returns the handler of POST /users/:user_id/verify, /activate
// and /deactivate (admin only).
func (h *UserHandler) SetStatus(action string) gin.HandlerFunc {
	yes, no := true, false
	var (
		req     services.UpdateUserRequest
		message string
	)
	switch action {
	case "verify":
		req.IsVerified, message = &yes, "User verified successfully"
	case "activate":
		req.IsActive, message = &yes, "User activated successfully"
	case "deactivate":
		req.IsActive, message = &no, "User deactivated successfully"
	default:
		panic("unknown user status action " + action)
	}
	return func(c *gin.Context) {
		h.applyUpdate(c, req, message)
	}
}

func (h *UserHandler) applyUpdate(c *gin.Context, req services.UpdateUserRequest, message string) {
	actorID, ok := middlewares.UserID(c)
	if !ok {
		responses.Fail(c, http.StatusUnauthorized, nil, "Unauthorized")
		return
	}
	userID, ok := userParam(c)
	if !ok {
		return
	}

	user, err := h.userService.UpdateUser(c.Request.Context(), userID, actorID, req)
	if err != nil {
		fail(c, err, "Failed to update user")
		return
	}

	responses.Success(c, http.StatusOK, user, message)
}

// DeleteUser handles DELETE /api/v1/users/:user_id (admin only)
func (h *UserHandler) DeleteUser(c *gin.Context) {
	actorID, ok := middlewares.UserID(c)
	if !ok {
		responses.Fail(c, http.StatusUnauthorized, nil, "Unauthorized")
		return
	}
	userID, ok := userParam(c)
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(c.Request.Context(), userID, actorID); err != nil {
		fail(c, err, "Failed to delete user")
		return
	}

	responses.Success(c, http.StatusOK, nil, "User deleted successfully")
}

func userParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("user_id"))
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, nil, "Invalid user ID format")
		return uuid.Nil, false
	}
	return id, true
}
