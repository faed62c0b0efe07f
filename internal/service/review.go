// Package service contains the application logic between the HTTP API
// and the store.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/shelfmarkapp/shelfmark-server/internal/domain"
	"github.com/shelfmarkapp/shelfmark-server/internal/errors"
	"github.com/shelfmarkapp/shelfmark-server/internal/id"
	"github.com/shelfmarkapp/shelfmark-server/internal/store/sqlite"
)

// MyReviewsPageSize is how many reviews a page of the caller's own list holds.
const MyReviewsPageSize = 20

// ReviewService orchestrates review writes and the caller's own review list.
type ReviewService struct {
	store  *sqlite.Store
	logger *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(store *sqlite.Store, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		store:  store,
		logger: logger,
	}
}

// UpsertReviewInput carries everything needed to record a book on a
// shelf: the catalog snapshot of the book and the review fields. The
// book snapshot comes from search results so writing a review never
// needs another catalog round-trip.
type UpsertReviewInput struct {
	WorkID        string
	Title         string
	Authors       []string
	CoverURL      string
	PageCount     int
	PublishedYear int

	Rating   *float64
	Text     string
	Status   domain.ReviewStatus
	Favorite bool
	ReadAt   *time.Time
}

// Upsert records or updates the user's review of a work. The book is
// created on first track. When the status moves to read and no read
// date is given, the read date defaults to now.
func (s *ReviewService) Upsert(ctx context.Context, userID string, input UpsertReviewInput) (*domain.Review, error) {
	if input.WorkID == "" {
		return nil, errors.Validation("work id is required")
	}
	if !input.Status.Valid() {
		return nil, errors.Validationf("invalid status %q", input.Status)
	}
	if err := domain.ValidateRating(input.Rating); err != nil {
		return nil, err
	}

	now := time.Now()

	bookID, err := id.Generate("bok")
	if err != nil {
		return nil, err
	}
	title := input.Title
	if title == "" {
		title = "No title"
	}
	book, err := s.store.FindOrCreateBook(ctx, &domain.Book{
		ID:            bookID,
		CreatedAt:     now,
		UpdatedAt:     now,
		WorkID:        input.WorkID,
		Title:         title,
		Authors:       input.Authors,
		CoverURL:      input.CoverURL,
		PageCount:     input.PageCount,
		PublishedYear: input.PublishedYear,
	})
	if err != nil {
		return nil, err
	}

	readAt := input.ReadAt
	if input.Status == domain.StatusRead && readAt == nil {
		readAt = &now
	}

	reviewID, err := id.Generate("rev")
	if err != nil {
		return nil, err
	}
	review, err := s.store.UpsertReview(ctx, &domain.Review{
		ID:        reviewID,
		CreatedAt: now,
		UpdatedAt: now,
		UserID:    userID,
		BookID:    book.ID,
		Rating:    input.Rating,
		Text:      input.Text,
		Status:    input.Status,
		Favorite:  input.Favorite,
		ReadAt:    readAt,
	})
	if err != nil {
		return nil, err
	}

	review.Book = book
	s.logger.Info("review saved",
		"user_id", userID,
		"work_id", input.WorkID,
		"status", review.Status,
	)
	return review, nil
}

// UpdateReviewInput carries the updatable fields of a review. Nil
// pointers leave the current value in place.
type UpdateReviewInput struct {
	Rating      *float64
	ClearRating bool
	Text        *string
	Status      *domain.ReviewStatus
	Favorite    *bool
	ReadAt      *time.Time
}

// Get returns a review by ID if it belongs to the user.
func (s *ReviewService) Get(ctx context.Context, userID, reviewID string) (*domain.Review, error) {
	review, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID != userID {
		return nil, errors.Forbidden("you can only view your own reviews")
	}

	book, err := s.store.GetBook(ctx, review.BookID)
	if err != nil {
		return nil, err
	}
	review.Book = book
	return review, nil
}

// Update applies partial changes to the user's own review.
func (s *ReviewService) Update(ctx context.Context, userID, reviewID string, input UpdateReviewInput) (*domain.Review, error) {
	review, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID != userID {
		return nil, errors.Forbidden("you can only edit your own reviews")
	}

	if input.ClearRating {
		review.Rating = nil
	} else if input.Rating != nil {
		if err := domain.ValidateRating(input.Rating); err != nil {
			return nil, err
		}
		review.Rating = input.Rating
	}
	if input.Text != nil {
		review.Text = *input.Text
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, errors.Validationf("invalid status %q", *input.Status)
		}
		review.Status = *input.Status
	}
	if input.Favorite != nil {
		review.Favorite = *input.Favorite
	}
	if input.ReadAt != nil {
		review.ReadAt = input.ReadAt
	}

	now := time.Now()
	if review.Status == domain.StatusRead && review.ReadAt == nil {
		review.ReadAt = &now
	}
	review.UpdatedAt = now

	if err := s.store.UpdateReview(ctx, review); err != nil {
		return nil, err
	}

	book, err := s.store.GetBook(ctx, review.BookID)
	if err != nil {
		return nil, err
	}
	review.Book = book
	return review, nil
}

// Delete removes the user's own review.
func (s *ReviewService) Delete(ctx context.Context, userID, reviewID string) error {
	review, err := s.store.GetReview(ctx, reviewID)
	if err != nil {
		return err
	}
	if review.UserID != userID {
		return errors.Forbidden("you can only delete your own reviews")
	}

	return s.store.DeleteReview(ctx, reviewID)
}

// ListMine returns a page of the user's reviews, newest first.
func (s *ReviewService) ListMine(ctx context.Context, userID string, page int) ([]*domain.Review, int, error) {
	if page < 1 {
		page = 1
	}
	return s.store.ListReviewsByUser(ctx, userID, page, MyReviewsPageSize)
}
