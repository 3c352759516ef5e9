package repositories

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"urbanfix-be/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createIssue(t *testing.T, repo *MemoryIssueRepository, issue models.Issue) *models.Issue {
	t.Helper()
	created, err := repo.Create(context.Background(), &issue)
	require.NoError(t, err)
	return created
}

func TestMemoryCreate_AppliesCreationRules(t *testing.T) {
	repo := NewMemoryIssueRepository()

	created := createIssue(t, repo, models.Issue{
		Title:    "Pothole",
		Status:   models.Resolved, // callers cannot choose the initial status
		Upvotes:  42,
		PostedBy: models.PostedBy{Email: "a@x.com"},
	})

	assert.False(t, created.ID.IsZero())
	assert.Equal(t, models.Pending, created.Status)
	assert.Equal(t, 0, created.Upvotes)
	assert.Empty(t, created.UpvotedUsers)
	require.Len(t, created.Timeline, 1)
	assert.Equal(t, "a@x.com", created.Timeline[0].UpdatedBy)

	t.Run("ExplicitTimelineKept", func(t *testing.T) {
		seeded := createIssue(t, repo, models.Issue{
			Title: "Leak",
			Timeline: []models.TimelineEntry{
				{Status: models.Pending, Message: "imported", UpdatedBy: "import@city.gov", Date: time.Now()},
			},
		})
		require.Len(t, seeded.Timeline, 1)
		assert.Equal(t, "imported", seeded.Timeline[0].Message)
	})
}

func TestMemoryGetByID(t *testing.T) {
	repo := NewMemoryIssueRepository()
	ctx := context.Background()

	created := createIssue(t, repo, models.Issue{Title: "Pothole"})

	got, err := repo.GetByID(ctx, created.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = repo.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, ErrInvalidID)

	_, err = repo.GetByID(ctx, "ffffffffffffffffffffffff")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryGetByID_ReturnsDetachedCopy(t *testing.T) {
	repo := NewMemoryIssueRepository()
	ctx := context.Background()

	created := createIssue(t, repo, models.Issue{Title: "Pothole", PostedBy: models.PostedBy{Email: "a@x.com"}})
	id := created.ID.Hex()

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	got.Timeline[0].Message = "tampered"
	got.UpvotedUsers = append(got.UpvotedUsers, "x@y.com")

	fresh, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Issue reported", fresh.Timeline[0].Message)
	assert.Empty(t, fresh.UpvotedUsers)
}

func TestMemoryUpdate(t *testing.T) {
	repo := NewMemoryIssueRepository()
	ctx := context.Background()

	created := createIssue(t, repo, models.Issue{Title: "Pothole", Description: "old"})
	id := created.ID.Hex()

	title := "Sinkhole"
	updated, err := repo.Update(ctx, id, IssueUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Sinkhole", updated.Title)
	assert.Equal(t, "old", updated.Description, "nil fields stay untouched")
	assert.Len(t, updated.Timeline, 1, "update cannot touch the timeline")
	assert.Equal(t, 0, updated.Upvotes, "update cannot touch votes")

	_, err = repo.Update(ctx, "ffffffffffffffffffffffff", IssueUpdate{Title: &title})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.Update(ctx, "nope", IssueUpdate{Title: &title})
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestMemoryDelete(t *testing.T) {
	repo := NewMemoryIssueRepository()
	ctx := context.Background()

	created := createIssue(t, repo, models.Issue{Title: "Pothole"})
	id := created.ID.Hex()

	require.NoError(t, repo.Delete(ctx, id))
	assert.ErrorIs(t, repo.Delete(ctx, id), ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "nope"), ErrInvalidID)
}

func TestMemoryAddUpvote_Preconditions(t *testing.T) {
	repo := NewMemoryIssueRepository()
	ctx := context.Background()

	created := createIssue(t, repo, models.Issue{Title: "Pothole", PostedBy: models.PostedBy{Email: "a@x.com"}})
	id := created.ID.Hex()

	updated, err := repo.AddUpvote(ctx, id, "b@y.com")
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Upvotes)
	assert.Equal(t, []string{"b@y.com"}, updated.UpvotedUsers)

	_, err = repo.AddUpvote(ctx, id, "b@y.com")
	assert.ErrorIs(t, err, ErrVoteConflict, "duplicate voter")

	_, err = repo.AddUpvote(ctx, id, "a@x.com")
	assert.ErrorIs(t, err, ErrVoteConflict, "reporter")

	_, err = repo.AddUpvote(ctx, "ffffffffffffffffffffffff", "b@y.com")
	assert.ErrorIs(t, err, ErrVoteConflict, "missing issue")

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, got.Upvotes, len(got.UpvotedUsers))
}

func TestMemoryAddUpvote_Concurrent(t *testing.T) {
	repo := NewMemoryIssueRepository()
	ctx := context.Background()

	created := createIssue(t, repo, models.Issue{Title: "Pothole", PostedBy: models.PostedBy{Email: "a@x.com"}})
	id := created.ID.Hex()

	const voters = 50
	var wg sync.WaitGroup
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.AddUpvote(ctx, id, fmt.Sprintf("voter%d@y.com", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, voters, got.Upvotes)
	assert.Len(t, got.UpvotedUsers, voters)
}

func TestMemoryAppendTimeline(t *testing.T) {
	repo := NewMemoryIssueRepository()
	ctx := context.Background()

	created := createIssue(t, repo, models.Issue{Title: "Pothole", PostedBy: models.PostedBy{Email: "a@x.com"}})
	id := created.ID.Hex()
	first := created.Timeline[0]

	entry := models.TimelineEntry{Status: models.InProgress, Message: "Crew dispatched", UpdatedBy: "mod@city.gov", Date: time.Now()}
	updated, err := repo.AppendTimeline(ctx, id, entry)
	require.NoError(t, err)

	assert.Equal(t, models.InProgress, updated.Status)
	require.Len(t, updated.Timeline, 2)
	assert.Equal(t, first, updated.Timeline[0])
	assert.Equal(t, entry, updated.Timeline[1])

	_, err = repo.AppendTimeline(ctx, "ffffffffffffffffffffffff", entry)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryList(t *testing.T) {
	repo := NewMemoryIssueRepository()
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		issue := models.Issue{
			Title:       fmt.Sprintf("Report %02d", i),
			Description: "streetlight flickering",
			Location:    "Elm Avenue",
			Category:    "Electricity",
			PostedBy:    models.PostedBy{Email: "a@x.com"},
		}
		if i%2 == 0 {
			issue.Category = "Road"
			issue.PostedBy.Email = "b@y.com"
		}
		createIssue(t, repo, issue)
	}

	t.Run("NewestFirstWindow", func(t *testing.T) {
		total, items, err := repo.List(ctx, IssueFilter{}, 2, 5)
		require.NoError(t, err)
		assert.Equal(t, int64(12), total)
		require.Len(t, items, 5)
		assert.Equal(t, "Report 06", items[0].Title)
		assert.Equal(t, "Report 02", items[4].Title)
	})

	t.Run("TotalIgnoresPagination", func(t *testing.T) {
		total, items, err := repo.List(ctx, IssueFilter{}, 5, 5)
		require.NoError(t, err)
		assert.Equal(t, int64(12), total)
		assert.Empty(t, items)
	})

	t.Run("ExactFilters", func(t *testing.T) {
		total, items, err := repo.List(ctx, IssueFilter{Category: "Road", PostedBy: "b@y.com"}, 1, 100)
		require.NoError(t, err)
		assert.Equal(t, int64(6), total)
		for _, issue := range items {
			assert.Equal(t, "Road", issue.Category)
		}
	})

	t.Run("SearchOrSemantics", func(t *testing.T) {
		// Matches description even though the title does not contain it.
		total, _, err := repo.List(ctx, IssueFilter{Search: "FLICKERING"}, 1, 100)
		require.NoError(t, err)
		assert.Equal(t, int64(12), total)

		total, _, err = repo.List(ctx, IssueFilter{Search: "elm"}, 1, 100)
		require.NoError(t, err)
		assert.Equal(t, int64(12), total)

		total, _, err = repo.List(ctx, IssueFilter{Search: "Report 03"}, 1, 100)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})

	t.Run("StatusFilter", func(t *testing.T) {
		total, _, err := repo.List(ctx, IssueFilter{Status: string(models.Pending)}, 1, 100)
		require.NoError(t, err)
		assert.Equal(t, int64(12), total)

		total, _, err = repo.List(ctx, IssueFilter{Status: string(models.Resolved)}, 1, 100)
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
	})
}
