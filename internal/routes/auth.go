package routes

import (
	"github.com/gin-gonic/gin"

	"backend/internal/handlers"
)

type AuthRoutes struct {
	handler     *handlers.AuthHandler
	userHandler *handlers.UserHandler
	auth        gin.HandlerFunc
}

func NewAuthRoutes(handler *handlers.AuthHandler, userHandler *handlers.UserHandler, auth gin.HandlerFunc) *AuthRoutes {
	return &AuthRoutes{handler: handler, userHandler: userHandler, auth: auth}
}

func (r *AuthRoutes) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/auth")
	{
		// Public routes
		auth.POST("/register", r.handler.Register)
		auth.POST("/login", r.handler.Login)
		auth.POST("/refresh", r.handler.Refresh)
		auth.POST("/logout", r.handler.Logout)

		auth.GET("/me", r.auth, r.userHandler.GetMe)
	}
}
