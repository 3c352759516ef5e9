package routes

import (
	"urbanfix-be/controllers"
	"urbanfix-be/middlewares"

	"github.com/gin-gonic/gin"
)

// PaymentRoutes sets up the premium payment routes
func PaymentRoutes(r *gin.Engine, controller *controllers.PaymentController) {
	payment := r.Group("/api/payment", middlewares.RequireAuth())
	{
		payment.POST("/create", controller.CreateSession)
		payment.POST("/verify", controller.VerifySession)
	}
}
