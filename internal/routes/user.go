package routes

import (
	"github.com/gin-gonic/gin"

	"backend/internal/handlers"
)

type UserRoutes struct {
	userHandler *handlers.UserHandler
	auth        gin.HandlerFunc
	admins      gin.HandlerFunc
}

func NewUserRoutes(userHandler *handlers.UserHandler, auth, admins gin.HandlerFunc) *UserRoutes {
	return &UserRoutes{userHandler: userHandler, auth: auth, admins: admins}
}

func (r *UserRoutes) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	users.Use(r.auth)
	{
		// Own account
		users.GET("/me", r.userHandler.GetMe)
		users.PATCH("/me", r.userHandler.UpdateMe)
		users.DELETE("/me", r.userHandler.DeleteMe)
		users.POST("/me/password", r.userHandler.ChangePassword)

		// Admin only
		users.GET("", r.admins, r.userHandler.ListUsers)
		users.GET("/:user_id", r.admins, r.userHandler.GetUser)
		users.PATCH("/:user_id", r.admins, r.userHandler.UpdateUser)
		users.DELETE("/:user_id", r.admins, r.userHandler.DeleteUser)
		users.POST("/:user_id/verify", r.admins, r.userHandler.SetStatus("verify"))
		users.POST("/:user_id/activate", r.admins, r.userHandler.SetStatus("activate"))
		users.POST("/:user_id/deactivate", r.admins, r.userHandler.SetStatus("deactivate"))
	}
}
