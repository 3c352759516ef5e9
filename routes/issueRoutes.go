package routes

import (
	"urbanfix-be/controllers"
	"urbanfix-be/middlewares"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// IssueRoutes sets up the issue routes
func IssueRoutes(r *gin.Engine, controller *controllers.IssueController, redisClient *redis.Client, createLimit int) {
	issues := r.Group("/api/issues")
	{
		issues.GET("", middlewares.OptionalAuth(), controller.GetIssues)
		issues.GET("/:id", middlewares.OptionalAuth(), controller.GetIssue)
		issues.POST("", middlewares.RequireAuth(), middlewares.IssueRateLimiter(redisClient, createLimit), controller.CreateIssue)
		issues.PUT("/:id", middlewares.RequireAuth(), controller.UpdateIssue)
		issues.DELETE("/:id", middlewares.RequireAuth(), controller.DeleteIssue)
		issues.PUT("/:id/upvote", middlewares.RequireAuth(), controller.UpvoteIssue)
		issues.PATCH("/:id/status", middlewares.RequireAuth(), middlewares.RequireAdmin(), controller.UpdateIssueStatus)
	}
}
