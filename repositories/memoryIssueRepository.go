package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"urbanfix-be/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryIssueRepository is an in-memory IssueRepository with the same
// conditional-update semantics as the MongoDB implementation. It backs tests
// and local development without a database.
type MemoryIssueRepository struct {
	mu         sync.Mutex
	issues     map[string]*models.Issue
	lastCreate time.Time
}

var _ IssueRepository = (*MemoryIssueRepository)(nil)

func NewMemoryIssueRepository() *MemoryIssueRepository {
	return &MemoryIssueRepository{issues: make(map[string]*models.Issue)}
}

// copyIssue detaches the stored record so callers cannot mutate repository
// state through returned slices.
func copyIssue(issue *models.Issue) *models.Issue {
	clone := *issue
	clone.UpvotedUsers = append([]string(nil), issue.UpvotedUsers...)
	clone.Timeline = append([]models.TimelineEntry(nil), issue.Timeline...)
	return &clone
}

func matches(issue *models.Issue, f IssueFilter) bool {
	if f.Category != "" && issue.Category != f.Category {
		return false
	}
	if f.Status != "" && string(issue.Status) != f.Status {
		return false
	}
	if f.PostedBy != "" && issue.PostedBy.Email != f.PostedBy {
		return false
	}
	if f.Search != "" {
		search := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(issue.Title), search) &&
			!strings.Contains(strings.ToLower(issue.Description), search) &&
			!strings.Contains(strings.ToLower(issue.Location), search) {
			return false
		}
	}
	return true
}

func (r *MemoryIssueRepository) List(ctx context.Context, filter IssueFilter, page, limit int) (int64, []models.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := make([]*models.Issue, 0, len(r.issues))
	for _, issue := range r.issues {
		if matches(issue, filter) {
			matched = append(matched, issue)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	skip := (page - 1) * limit
	if skip >= len(matched) {
		return total, []models.Issue{}, nil
	}
	end := skip + limit
	if end > len(matched) {
		end = len(matched)
	}

	items := make([]models.Issue, 0, end-skip)
	for _, issue := range matched[skip:end] {
		items = append(items, *copyIssue(issue))
	}
	return total, items, nil
}

func (r *MemoryIssueRepository) GetByID(ctx context.Context, id string) (*models.Issue, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, ErrInvalidID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	issue, ok := r.issues[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyIssue(issue), nil
}

func (r *MemoryIssueRepository) Create(ctx context.Context, issue *models.Issue) (*models.Issue, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Strictly increasing creation times keep newest-first ordering total.
	now := time.Now()
	if !now.After(r.lastCreate) {
		now = r.lastCreate.Add(time.Nanosecond)
	}
	r.lastCreate = now

	issue.ID = primitive.NewObjectID()
	prepareNewIssue(issue, now)

	r.issues[issue.ID.Hex()] = copyIssue(issue)
	return issue, nil
}

func (r *MemoryIssueRepository) Update(ctx context.Context, id string, patch IssueUpdate) (*models.Issue, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, ErrInvalidID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	issue, ok := r.issues[id]
	if !ok {
		return nil, ErrNotFound
	}

	if patch.Title != nil {
		issue.Title = *patch.Title
	}
	if patch.Description != nil {
		issue.Description = *patch.Description
	}
	if patch.Category != nil {
		issue.Category = *patch.Category
	}
	if patch.Location != nil {
		issue.Location = *patch.Location
	}
	if patch.Image != nil {
		image := *patch.Image
		issue.Image = &image
	}
	issue.UpdatedAt = time.Now()

	return copyIssue(issue), nil
}

func (r *MemoryIssueRepository) Delete(ctx context.Context, id string) error {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return ErrInvalidID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.issues[id]; !ok {
		return ErrNotFound
	}
	delete(r.issues, id)
	return nil
}

// AddUpvote performs the membership check and the write inside one critical
// section, mirroring the conditional update of the MongoDB implementation.
func (r *MemoryIssueRepository) AddUpvote(ctx context.Context, id, voter string) (*models.Issue, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, ErrInvalidID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	issue, ok := r.issues[id]
	if !ok {
		return nil, ErrVoteConflict
	}
	if issue.PostedBy.Email == voter || issue.HasUpvoted(voter) {
		return nil, ErrVoteConflict
	}

	issue.UpvotedUsers = append(issue.UpvotedUsers, voter)
	issue.Upvotes++
	issue.UpdatedAt = time.Now()

	return copyIssue(issue), nil
}

func (r *MemoryIssueRepository) AppendTimeline(ctx context.Context, id string, entry models.TimelineEntry) (*models.Issue, error) {
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, ErrInvalidID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	issue, ok := r.issues[id]
	if !ok {
		return nil, ErrNotFound
	}

	issue.Timeline = append(issue.Timeline, entry)
	issue.Status = entry.Status
	issue.UpdatedAt = entry.Date

	return copyIssue(issue), nil
}
