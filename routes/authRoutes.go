package routes

import (
	"urbanfix-be/controllers"
	"urbanfix-be/middlewares"

	"github.com/gin-gonic/gin"
)

// AuthRoutes sets up the authentication routes
func AuthRoutes(r *gin.Engine, controller *controllers.AuthController) {
	auth := r.Group("/api/auth")
	{
		auth.POST("/register", controller.RegisterUser)
		auth.POST("/login", controller.LoginUser)
		auth.GET("/me", middlewares.RequireAuth(), controller.GetMe)
		auth.POST("/logout", controller.LogoutUser)
	}
}
