package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"urbanfix-be/config"
	"urbanfix-be/controllers"
	"urbanfix-be/repositories"
	"urbanfix-be/routes"
	"urbanfix-be/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const issuesPerUserPerDay = 5

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	ctx := context.Background()

	db, err := config.ConnectDB(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	log.Println("MongoDB connection established successfully!")

	redisClient, err := config.ConnectRedis(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	log.Println("Connected to Redis")

	issueRepo := repositories.NewMongoIssueRepository(db)
	issueService := services.NewIssueService(issueRepo)

	issueController := controllers.NewIssueController(issueService)
	authController := controllers.NewAuthController(db.Collection("users"))
	adminController := controllers.NewAdminController(db.Collection("users"))
	paymentController := controllers.NewPaymentController(db.Collection("payments"), db.Collection("users"))

	r := gin.Default()
	r.Use(cors.Default())

	routes.IssueRoutes(r, issueController, redisClient, issuesPerUserPerDay)
	routes.AuthRoutes(r, authController)
	routes.AdminRoutes(r, adminController)
	routes.PaymentRoutes(r, paymentController)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
