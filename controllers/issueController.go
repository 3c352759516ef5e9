package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"urbanfix-be/middlewares"
	"urbanfix-be/models"
	"urbanfix-be/repositories"
	"urbanfix-be/services"

	"github.com/gin-gonic/gin"
)

const requestTimeout = 10 * time.Second

// IssueController wires the issue lifecycle service to gin.
type IssueController struct {
	service *services.IssueService
}

func NewIssueController(service *services.IssueService) *IssueController {
	return &IssueController{service: service}
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

// respondIssueError maps the service error taxonomy onto HTTP statuses.
// Unknown errors are transient storage failures and come back retryable.
func respondIssueError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue ID"})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not authorized to perform this action"})
	case errors.Is(err, services.ErrSelfUpvote):
		c.JSON(http.StatusConflict, gin.H{"error": "You cannot upvote your own issue"})
	case errors.Is(err, services.ErrAlreadyUpvoted):
		c.JSON(http.StatusConflict, gin.H{"error": "You have already upvoted this issue"})
	default:
		log.Println("issue request failed:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
	}
}

// CreateIssue handles a citizen submission.
func (ic *IssueController) CreateIssue(c *gin.Context) {
	identity := middlewares.IdentityFrom(c)
	if identity == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input struct {
		Title       string  `json:"title" binding:"max=200"`
		Description string  `json:"description" binding:"max=1000"`
		Category    string  `json:"category" binding:"max=50"`
		Priority    string  `json:"priority" binding:"max=50"`
		Location    string  `json:"location" binding:"max=200"`
		Image       *string `json:"image,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	issue, err := ic.service.Submit(ctx, services.IssueInput{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Priority:    input.Priority,
		Location:    input.Location,
		Image:       input.Image,
	}, identity)
	if err != nil {
		respondIssueError(c, err)
		return
	}

	c.JSON(http.StatusCreated, issue)
}

// GetIssues handles retrieving issues with filtering and pagination.
func (ic *IssueController) GetIssues(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	filter := repositories.IssueFilter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Status:   c.Query("status"),
		PostedBy: c.Query("postedBy"),
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	total, issues, err := ic.service.List(ctx, filter, page, limit)
	if err != nil {
		respondIssueError(c, err)
		return
	}

	if limit < 1 || limit > 100 {
		limit = 10
	}
	if page < 1 {
		page = 1
	}
	totalPages := (total + int64(limit) - 1) / int64(limit)

	c.JSON(http.StatusOK, gin.H{
		"issues":      issues,
		"totalIssues": total,
		"totalPages":  totalPages,
		"currentPage": page,
	})
}

// GetIssue retrieves a single issue by its ID.
func (ic *IssueController) GetIssue(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	issue, err := ic.service.Get(ctx, c.Param("id"))
	if err != nil {
		respondIssueError(c, err)
		return
	}

	c.JSON(http.StatusOK, issue)
}

// UpdateIssue lets the reporter (or an admin) edit issue details.
func (ic *IssueController) UpdateIssue(c *gin.Context) {
	var input struct {
		Title       *string `json:"title,omitempty"`
		Description *string `json:"description,omitempty"`
		Category    *string `json:"category,omitempty"`
		Location    *string `json:"location,omitempty"`
		Image       *string `json:"image,omitempty"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	issue, err := ic.service.Edit(ctx, c.Param("id"), repositories.IssueUpdate{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Location:    input.Location,
		Image:       input.Image,
	}, middlewares.IdentityFrom(c))
	if err != nil {
		respondIssueError(c, err)
		return
	}

	c.JSON(http.StatusOK, issue)
}

// DeleteIssue lets the reporter (or an admin) remove an issue.
func (ic *IssueController) DeleteIssue(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := ic.service.Remove(ctx, c.Param("id"), middlewares.IdentityFrom(c)); err != nil {
		respondIssueError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Issue deleted successfully"})
}

// UpvoteIssue casts the caller's upvote.
func (ic *IssueController) UpvoteIssue(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	issue, err := ic.service.Upvote(ctx, c.Param("id"), middlewares.IdentityFrom(c))
	if err != nil {
		respondIssueError(c, err)
		return
	}

	c.JSON(http.StatusOK, issue)
}

// UpdateIssueStatus records a moderation status change on the timeline.
func (ic *IssueController) UpdateIssueStatus(c *gin.Context) {
	var input struct {
		Status  string `json:"status" binding:"required"`
		Message string `json:"message" binding:"max=1000"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	issue, err := ic.service.AppendStatus(ctx, c.Param("id"), models.IssueStatus(input.Status), input.Message, middlewares.IdentityFrom(c))
	if err != nil {
		respondIssueError(c, err)
		return
	}

	c.JSON(http.StatusOK, issue)
}
