package routes

import (
	"urbanfix-be/controllers"
	"urbanfix-be/middlewares"

	"github.com/gin-gonic/gin"
)

// AdminRoutes sets up the user moderation routes
func AdminRoutes(r *gin.Engine, controller *controllers.AdminController) {
	admin := r.Group("/api/admin", middlewares.RequireAuth(), middlewares.RequireAdmin())
	{
		admin.GET("/users", controller.ListUsers)
		admin.PATCH("/users/:id/block", controller.ToggleBlockUser)
	}
}
