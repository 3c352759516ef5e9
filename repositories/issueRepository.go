package repositories

import (
	"context"
	"errors"
	"time"

	"urbanfix-be/models"
)

//go:generate mockgen -source=issueRepository.go -destination=mocks/issueRepository_mock.go -package=mocks

var (
	// ErrInvalidID means the id is not a structurally valid ObjectID hex string.
	// It is reported before any storage round trip.
	ErrInvalidID = errors.New("invalid issue id")
	// ErrNotFound means no issue exists with the given id.
	ErrNotFound = errors.New("issue not found")
	// ErrVoteConflict means the conditional upvote matched nothing: the voter is
	// the reporter, is already in the set, or the issue is gone.
	ErrVoteConflict = errors.New("upvote precondition failed")
)

// IssueFilter narrows List results. Zero-value fields are ignored. Search is a
// case-insensitive substring match over title, description and location.
type IssueFilter struct {
	Search   string
	Category string
	Status   string
	PostedBy string
}

// IssueUpdate is a partial patch; nil fields are left untouched. Votes and the
// timeline are not reachable through this path.
type IssueUpdate struct {
	Title       *string
	Description *string
	Category    *string
	Location    *string
	Image       *string
}

// IssueRepository owns storage, filtering and pagination for issue records.
type IssueRepository interface {
	// List returns the total count matching filter (ignoring pagination) and
	// the requested page, newest first. page is 1-indexed.
	List(ctx context.Context, filter IssueFilter, page, limit int) (int64, []models.Issue, error)
	GetByID(ctx context.Context, id string) (*models.Issue, error)
	// Create assigns the id and timestamps, forces Pending status with zero
	// votes, and seeds the timeline when the caller supplied none.
	Create(ctx context.Context, issue *models.Issue) (*models.Issue, error)
	Update(ctx context.Context, id string, patch IssueUpdate) (*models.Issue, error)
	Delete(ctx context.Context, id string) error

	// AddUpvote adds voter to the upvote set and bumps the counter, but only
	// when voter is neither the reporter nor already present. The check and the
	// write happen as one atomic storage operation.
	AddUpvote(ctx context.Context, id, voter string) (*models.Issue, error)

	// AppendTimeline appends one entry and moves the top-level status to the
	// entry's status. Existing entries are never rewritten.
	AppendTimeline(ctx context.Context, id string, entry models.TimelineEntry) (*models.Issue, error)
}

// prepareNewIssue applies the creation-time rules shared by all
// implementations.
func prepareNewIssue(issue *models.Issue, now time.Time) {
	issue.Status = models.Pending
	issue.Upvotes = 0
	issue.UpvotedUsers = []string{}
	issue.CreatedAt = now
	issue.UpdatedAt = now
	if len(issue.Timeline) == 0 {
		issue.Timeline = []models.TimelineEntry{{
			Status:    models.Pending,
			Message:   "Issue reported",
			UpdatedBy: issue.PostedBy.Email,
			Date:      now,
		}}
	}
}
