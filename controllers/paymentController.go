package controllers

import (
	"log"
	"net/http"
	"time"

	"urbanfix-be/middlewares"
	"urbanfix-be/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PaymentController handles the premium-unlock payment sessions. The actual
// provider checkout happens on the frontend; this side only records the
// session and flips the premium flag once it is verified.
type PaymentController struct {
	payments *mongo.Collection
	users    *mongo.Collection
}

func NewPaymentController(payments, users *mongo.Collection) *PaymentController {
	return &PaymentController{payments: payments, users: users}
}

// CreateSession opens a pending payment session for the caller.
func (pc *PaymentController) CreateSession(c *gin.Context) {
	identity := middlewares.IdentityFrom(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		Amount int64 `json:"amount" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	payment := models.Payment{
		ID:        primitive.NewObjectID(),
		SessionID: primitive.NewObjectID().Hex(),
		Email:     identity.Email,
		Amount:    input.Amount,
		Status:    models.PaymentPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	if _, err := pc.payments.InsertOne(ctx, payment); err != nil {
		log.Println("Error creating payment session:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create payment session"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"sessionId": payment.SessionID,
		"amount":    payment.Amount,
		"status":    payment.Status,
	})
}

// VerifySession marks a pending session as paid exactly once and unlocks the
// payer's premium tier. Verifying the same session again is rejected.
func (pc *PaymentController) VerifySession(c *gin.Context) {
	var input struct {
		SessionID string `json:"sessionId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	var payment models.Payment
	err := pc.payments.FindOneAndUpdate(
		ctx,
		bson.M{"sessionId": input.SessionID, "status": models.PaymentPending},
		bson.M{"$set": bson.M{"status": models.PaymentPaid, "updatedAt": time.Now()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&payment)
	if err == mongo.ErrNoDocuments {
		count, countErr := pc.payments.CountDocuments(ctx, bson.M{"sessionId": input.SessionID})
		if countErr == nil && count > 0 {
			c.JSON(http.StatusConflict, gin.H{"error": "Payment session already verified"})
		} else {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment session not found"})
		}
		return
	}
	if err != nil {
		log.Println("Error verifying payment:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify payment"})
		return
	}

	_, err = pc.users.UpdateOne(ctx, bson.M{"email": payment.Email}, bson.M{
		"$set": bson.M{"premium": true, "updatedAt": time.Now()},
	})
	if err != nil {
		log.Println("Error unlocking premium:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unlock premium"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sessionId": payment.SessionID,
		"status":    payment.Status,
		"premium":   true,
	})
}
