package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"urbanfix-be/models"
	"urbanfix-be/repositories"
)

var (
	ErrValidation     = errors.New("validation failed")
	ErrInvalidID      = errors.New("invalid issue id")
	ErrNotFound       = errors.New("issue not found")
	ErrUnauthorized   = errors.New("not authorized")
	ErrSelfUpvote     = errors.New("cannot upvote your own issue")
	ErrAlreadyUpvoted = errors.New("issue already upvoted")
)

// IssueInput is the citizen submission payload.
type IssueInput struct {
	Title       string
	Description string
	Category    string
	Priority    string
	Location    string
	Image       *string
}

// IssueService enforces authorization, status history and upvote idempotence
// on top of the repository. Authentication itself happens upstream; operations
// receive the already-verified identity (nil for anonymous).
type IssueService struct {
	repo repositories.IssueRepository
}

func NewIssueService(repo repositories.IssueRepository) *IssueService {
	return &IssueService{repo: repo}
}

// translate maps repository sentinels onto the service taxonomy. Anything else
// is a storage failure and passes through untouched.
func translate(err error) error {
	switch {
	case errors.Is(err, repositories.ErrInvalidID):
		return ErrInvalidID
	case errors.Is(err, repositories.ErrNotFound):
		return ErrNotFound
	}
	return err
}

func canModify(issue *models.Issue, requester *models.Identity) bool {
	if requester == nil {
		return false
	}
	return requester.IsAdmin() || requester.Email == issue.PostedBy.Email
}

// Submit creates a new issue on behalf of the reporter. The status is always
// Pending and the timeline starts with the report itself.
func (s *IssueService) Submit(ctx context.Context, input IssueInput, reporter *models.Identity) (*models.Issue, error) {
	if reporter == nil {
		return nil, ErrUnauthorized
	}
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}

	category := input.Category
	if category == "" {
		category = models.DefaultCategory
	}
	priority := input.Priority
	if priority == "" {
		priority = models.DefaultPriority
	}

	issue := &models.Issue{
		Title:       input.Title,
		Description: input.Description,
		Category:    category,
		Priority:    priority,
		Location:    input.Location,
		Image:       input.Image,
		PostedBy: models.PostedBy{
			Email:    reporter.Email,
			Name:     reporter.Name,
			PhotoURL: reporter.PhotoURL,
		},
	}
	return s.repo.Create(ctx, issue)
}

// Get fetches one issue. Reads are open to anonymous callers.
func (s *IssueService) Get(ctx context.Context, id string) (*models.Issue, error) {
	issue, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return issue, nil
}

// List applies pagination defaults and delegates to the repository. A category
// or status of "all" means no filter, matching the frontend's query values.
func (s *IssueService) List(ctx context.Context, filter repositories.IssueFilter, page, limit int) (int64, []models.Issue, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	if filter.Category == "all" {
		filter.Category = ""
	}
	if filter.Status == "all" {
		filter.Status = ""
	}
	return s.repo.List(ctx, filter, page, limit)
}

// Edit applies a patch to an issue. Only the reporter or an administrator may
// edit, and the check happens before any write is attempted.
func (s *IssueService) Edit(ctx context.Context, id string, patch repositories.IssueUpdate, requester *models.Identity) (*models.Issue, error) {
	issue, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	if !canModify(issue, requester) {
		return nil, ErrUnauthorized
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, translate(err)
	}
	return updated, nil
}

// Remove deletes an issue under the same ownership rule as Edit.
func (s *IssueService) Remove(ctx context.Context, id string, requester *models.Identity) error {
	issue, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return translate(err)
	}
	if !canModify(issue, requester) {
		return ErrUnauthorized
	}
	return translate(s.repo.Delete(ctx, id))
}

// Upvote records one endorsement per voter. Reporters cannot vote for their
// own issues and repeating a vote is rejected without changing state.
func (s *IssueService) Upvote(ctx context.Context, id string, voter *models.Identity) (*models.Issue, error) {
	if voter == nil {
		return nil, ErrUnauthorized
	}

	issue, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	if issue.PostedBy.Email == voter.Email {
		return nil, ErrSelfUpvote
	}
	if issue.HasUpvoted(voter.Email) {
		return nil, ErrAlreadyUpvoted
	}

	updated, err := s.repo.AddUpvote(ctx, id, voter.Email)
	if errors.Is(err, repositories.ErrVoteConflict) {
		// The conditional write lost a race. Re-read and answer the way the
		// current state demands, so duplicate deliveries stay idempotent.
		current, readErr := s.repo.GetByID(ctx, id)
		switch {
		case readErr != nil:
			return nil, translate(readErr)
		case current.PostedBy.Email == voter.Email:
			return nil, ErrSelfUpvote
		default:
			return nil, ErrAlreadyUpvoted
		}
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AppendStatus records a moderation-driven status change. Any transition is
// accepted; whether the actor may moderate is decided by the caller's
// authorization layer.
func (s *IssueService) AppendStatus(ctx context.Context, id string, status models.IssueStatus, message string, actor *models.Identity) (*models.Issue, error) {
	if actor == nil {
		return nil, ErrUnauthorized
	}
	if !models.ValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	entry := models.TimelineEntry{
		Status:    status,
		Message:   message,
		UpdatedBy: actor.Email,
		Date:      time.Now(),
	}
	updated, err := s.repo.AppendTimeline(ctx, id, entry)
	if err != nil {
		return nil, translate(err)
	}
	return updated, nil
}
