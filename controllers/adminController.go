package controllers

import (
	"log"
	"net/http"
	"time"

	"urbanfix-be/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AdminController handles user moderation. All routes are admin-gated by
// middleware before they reach these handlers.
type AdminController struct {
	users *mongo.Collection
}

func NewAdminController(users *mongo.Collection) *AdminController {
	return &AdminController{users: users}
}

// ListUsers returns all registered users, newest first.
func (ac *AdminController) ListUsers(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := ac.users.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		log.Println("Error listing users:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err := cursor.All(ctx, &users); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// ToggleBlockUser flips a user's blocked flag.
func (ac *AdminController) ToggleBlockUser(c *gin.Context) {
	userID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	var user models.User
	err = ac.users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve user"})
		}
		return
	}

	blocked := !user.Blocked
	_, err = ac.users.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{
		"$set": bson.M{"blocked": blocked, "updatedAt": time.Now()},
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":      user.ID,
		"email":   user.Email,
		"blocked": blocked,
	})
}
