package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"backend/internal/models"
	"backend/internal/responses"
	"backend/internal/services"
	"backend/internal/utils"
)

const RefreshTokenCookieName = "refresh_token"

type AuthHandler struct {
	authService  *services.AuthService
	secureCookie bool
}

func NewAuthHandler(authService *services.AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{authService: authService, secureCookie: secureCookie}
}

type authResponse struct {
	AccessToken string       `json:"access_token"`
	User        *models.User `json:"user,omitempty"`
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, pair *utils.TokenPair) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(RefreshTokenCookieName, pair.RefreshToken, int(pair.RefreshTTL.Seconds()), "/", "", h.secureCookie, true)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetCookie(RefreshTokenCookieName, "", -1, "/", "", h.secureCookie, true)
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Please provide your email and password correctly")
		return
	}

	user, pair, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		fail(c, err, "Could not register user")
		return
	}

	h.setRefreshCookie(c, pair)
	responses.Success(c, http.StatusCreated, authResponse{AccessToken: pair.AccessToken, User: user}, "New user registered successfully!")
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Invalid Format")
		return
	}

	user, pair, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		fail(c, err, "Failed to login")
		return
	}

	h.setRefreshCookie(c, pair)
	responses.Success(c, http.StatusOK, authResponse{AccessToken: pair.AccessToken, User: user}, "User Login Successfully!")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	refreshToken, _ := c.Cookie(RefreshTokenCookieName)
	if err := h.authService.Logout(c.Request.Context(), refreshToken); err != nil {
		fail(c, err, "Could not revoke token")
		return
	}

	h.clearRefreshCookie(c)
	responses.Success(c, http.StatusOK, nil, "Logged out successfully")
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, err := c.Cookie(RefreshTokenCookieName)
	if err != nil {
		responses.Fail(c, http.StatusBadRequest, err, "Missing refresh token")
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		h.clearRefreshCookie(c)
		fail(c, err, "Invalid or expired refresh token")
		return
	}

	h.setRefreshCookie(c, pair)
	responses.Success(c, http.StatusOK, authResponse{AccessToken: pair.AccessToken}, "Access token refreshed successfully")
}
