package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/shelfmarkapp/shelfmark-server/internal/domain"
	"github.com/shelfmarkapp/shelfmark-server/internal/store/sqlite"
)

const (
	// activityWindow is how far back the shelf's activity feed looks.
	activityWindow = 7 * 24 * time.Hour
	// activityLimit caps the number of activity entries.
	activityLimit = 10
)

// Shelf is a user's aggregated reading view: status buckets, lifetime
// stats, and recent activity.
type Shelf struct {
	Reading    []*domain.Review `json:"reading"`
	Read       []*domain.Review `json:"read"`
	WantToRead []*domain.Review `json:"wantToRead"`

	Stats         ShelfStats      `json:"stats"`
	Activity      []ActivityEntry `json:"activity"`
	LastUpdatedAt *time.Time      `json:"lastUpdatedAt,omitempty"`
}

// ShelfStats summarizes finished reading.
type ShelfStats struct {
	BooksRead int `json:"booksRead"`
	PagesRead int `json:"pagesRead"`
}

// ActivityEntry is one line of the recent-activity feed.
type ActivityEntry struct {
	At          time.Time `json:"at"`
	BookTitle   string    `json:"bookTitle"`
	WorkID      string    `json:"workId"`
	Description string    `json:"description"`
}

// ShelfService aggregates a user's reviews into their shelf view.
type ShelfService struct {
	store  *sqlite.Store
	logger *slog.Logger
}

// NewShelfService creates a new shelf service.
func NewShelfService(store *sqlite.Store, logger *slog.Logger) *ShelfService {
	return &ShelfService{
		store:  store,
		logger: logger,
	}
}

// GetShelf builds the user's shelf. Dropped books stay out of the
// buckets but still count toward activity.
func (s *ShelfService) GetShelf(ctx context.Context, userID string) (*Shelf, error) {
	reviews, err := s.store.ListUserShelf(ctx, userID)
	if err != nil {
		return nil, err
	}

	shelf := &Shelf{
		Reading:    []*domain.Review{},
		Read:       []*domain.Review{},
		WantToRead: []*domain.Review{},
	}

	for _, r := range reviews {
		switch r.Status {
		case domain.StatusReading:
			shelf.Reading = append(shelf.Reading, r)
		case domain.StatusRead:
			shelf.Read = append(shelf.Read, r)
			shelf.Stats.BooksRead++
			if r.Book != nil {
				shelf.Stats.PagesRead += r.Book.PageCount
			}
		case domain.StatusWantToRead:
			shelf.WantToRead = append(shelf.WantToRead, r)
		}
	}

	recent, err := s.store.ListRecentReviews(ctx, userID, time.Now().Add(-activityWindow), activityLimit)
	if err != nil {
		return nil, err
	}
	shelf.Activity = buildActivity(recent)

	shelf.LastUpdatedAt, err = s.store.LatestReviewUpdate(ctx, userID)
	if err != nil {
		return nil, err
	}

	return shelf, nil
}

// buildActivity renders reviews into feed lines like
// "finished reading and rated 4.5 stars".
func buildActivity(reviews []*domain.Review) []ActivityEntry {
	entries := make([]ActivityEntry, 0, len(reviews))
	for _, r := range reviews {
		entry := ActivityEntry{
			At:          r.UpdatedAt,
			Description: domain.ActivityDescription(r),
		}
		if r.Book != nil {
			entry.BookTitle = r.Book.Title
			entry.WorkID = r.Book.WorkID
		}
		entries = append(entries, entry)
	}
	return entries
}
