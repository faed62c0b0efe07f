package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmarkapp/shelfmark-server/internal/domain"
)

func newTestShelfService(t *testing.T) (*ShelfService, *ReviewService) {
	t.Helper()
	store := newTestStore(t)
	return NewShelfService(store, testLogger()), NewReviewService(store, testLogger())
}

func shelfInput(workID string, status domain.ReviewStatus, pages int) UpsertReviewInput {
	return UpsertReviewInput{
		WorkID:    workID,
		Title:     "Book " + workID,
		Authors:   []string{"Some Author"},
		PageCount: pages,
		Status:    status,
	}
}

func TestGetShelf_Buckets(t *testing.T) {
	shelf, reviews := newTestShelfService(t)
	ctx := context.Background()
	createTestUser(t, shelf.store, "user-1", "alice")

	_, err := reviews.Upsert(ctx, "user-1", shelfInput("OL1W", domain.StatusReading, 100))
	require.NoError(t, err)
	_, err = reviews.Upsert(ctx, "user-1", shelfInput("OL2W", domain.StatusRead, 200))
	require.NoError(t, err)
	_, err = reviews.Upsert(ctx, "user-1", shelfInput("OL3W", domain.StatusRead, 300))
	require.NoError(t, err)
	_, err = reviews.Upsert(ctx, "user-1", shelfInput("OL4W", domain.StatusWantToRead, 400))
	require.NoError(t, err)
	_, err = reviews.Upsert(ctx, "user-1", shelfInput("OL5W", domain.StatusDropped, 500))
	require.NoError(t, err)

	got, err := shelf.GetShelf(ctx, "user-1")
	require.NoError(t, err)

	assert.Len(t, got.Reading, 1)
	assert.Len(t, got.Read, 2)
	assert.Len(t, got.WantToRead, 1)

	// Dropped books stay out of every bucket.
	for _, bucket := range [][]*domain.Review{got.Reading, got.Read, got.WantToRead} {
		for _, r := range bucket {
			assert.NotEqual(t, domain.StatusDropped, r.Status)
		}
	}
}

func TestGetShelf_Stats(t *testing.T) {
	shelf, reviews := newTestShelfService(t)
	ctx := context.Background()
	createTestUser(t, shelf.store, "user-1", "alice")

	_, err := reviews.Upsert(ctx, "user-1", shelfInput("OL1W", domain.StatusRead, 250))
	require.NoError(t, err)
	_, err = reviews.Upsert(ctx, "user-1", shelfInput("OL2W", domain.StatusRead, 350))
	require.NoError(t, err)
	// In-progress books do not count.
	_, err = reviews.Upsert(ctx, "user-1", shelfInput("OL3W", domain.StatusReading, 900))
	require.NoError(t, err)

	got, err := shelf.GetShelf(ctx, "user-1")
	require.NoError(t, err)

	assert.Equal(t, 2, got.Stats.BooksRead)
	assert.Equal(t, 600, got.Stats.PagesRead)
}

func TestGetShelf_Activity(t *testing.T) {
	shelf, reviews := newTestShelfService(t)
	ctx := context.Background()
	createTestUser(t, shelf.store, "user-1", "alice")

	rating := 4.5
	input := shelfInput("OL1W", domain.StatusRead, 300)
	input.Rating = &rating
	_, err := reviews.Upsert(ctx, "user-1", input)
	require.NoError(t, err)

	_, err = reviews.Upsert(ctx, "user-1", shelfInput("OL2W", domain.StatusReading, 100))
	require.NoError(t, err)
	_, err = reviews.Upsert(ctx, "user-1", shelfInput("OL3W", domain.StatusWantToRead, 100))
	require.NoError(t, err)

	got, err := shelf.GetShelf(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got.Activity, 3)

	descriptions := make(map[string]string)
	for _, entry := range got.Activity {
		descriptions[entry.WorkID] = entry.Description
		assert.NotEmpty(t, entry.BookTitle)
	}
	assert.Equal(t, "finished reading and rated 4.5 stars", descriptions["OL1W"])
	assert.Equal(t, "started reading", descriptions["OL2W"])
	assert.Equal(t, "added to list", descriptions["OL3W"])

	require.NotNil(t, got.LastUpdatedAt)
	assert.WithinDuration(t, time.Now(), *got.LastUpdatedAt, 5*time.Second)
}

func TestGetShelf_ActivityCapped(t *testing.T) {
	shelf, reviews := newTestShelfService(t)
	ctx := context.Background()
	createTestUser(t, shelf.store, "user-1", "alice")

	for i := 0; i < activityLimit+5; i++ {
		_, err := reviews.Upsert(ctx, "user-1", shelfInput(fmt.Sprintf("OL%dW", i), domain.StatusReading, 100))
		require.NoError(t, err)
	}

	got, err := shelf.GetShelf(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, got.Activity, activityLimit)
}

func TestGetShelf_Empty(t *testing.T) {
	shelf, _ := newTestShelfService(t)
	ctx := context.Background()
	createTestUser(t, shelf.store, "user-1", "alice")

	got, err := shelf.GetShelf(ctx, "user-1")
	require.NoError(t, err)

	assert.Empty(t, got.Reading)
	assert.Empty(t, got.Read)
	assert.Empty(t, got.WantToRead)
	assert.Empty(t, got.Activity)
	assert.Zero(t, got.Stats.BooksRead)
	assert.Nil(t, got.LastUpdatedAt)
}
