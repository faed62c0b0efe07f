package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/shelfmarkapp/shelfmark-server/internal/domain"
	"github.com/shelfmarkapp/shelfmark-server/internal/errors"
	"github.com/shelfmarkapp/shelfmark-server/internal/id"
	"github.com/shelfmarkapp/shelfmark-server/internal/metadata/openlibrary"
	"github.com/shelfmarkapp/shelfmark-server/internal/store/sqlite"
)

// BookReviewsPageSize is how many reviews a page of a book's review list holds.
const BookReviewsPageSize = 10

// BookDetail is a book plus the viewer's own review of it, when one exists.
type BookDetail struct {
	Book     *domain.Book   `json:"book"`
	MyReview *domain.Review `json:"myReview,omitempty"`
}

// BookService serves book detail pages, enriching tracked books from
// the catalog on first view.
type BookService struct {
	store  *sqlite.Store
	client *openlibrary.Client
	logger *slog.Logger
}

// NewBookService creates a new book service.
func NewBookService(store *sqlite.Store, client *openlibrary.Client, logger *slog.Logger) *BookService {
	return &BookService{
		store:  store,
		client: client,
		logger: logger,
	}
}

// GetByWorkID returns the detail view of a work. Books created from
// search results lack a description, so the first detail view fetches
// the full work record from the catalog and persists it. When the
// catalog is unreachable an already-tracked book is served as-is;
// an untracked work becomes a not-found.
func (s *BookService) GetByWorkID(ctx context.Context, workID, viewerID string) (*BookDetail, error) {
	book, err := s.store.GetBookByWorkID(ctx, workID)
	if err != nil && !errors.Is(err, errors.ErrNotFound) {
		return nil, err
	}

	if book == nil || !book.HasDescription() {
		book, err = s.enrich(ctx, workID, book)
		if err != nil {
			return nil, err
		}
	}

	detail := &BookDetail{Book: book}

	if viewerID != "" {
		review, err := s.store.GetReviewByUserAndBook(ctx, viewerID, book.ID)
		if err == nil {
			detail.MyReview = review
		} else if !errors.Is(err, errors.ErrNotFound) {
			return nil, err
		}
	}

	return detail, nil
}

// enrich fetches the full work record and merges it into the tracked
// book, creating the book when the work is not yet tracked. existing
// may be nil.
func (s *BookService) enrich(ctx context.Context, workID string, existing *domain.Book) (*domain.Book, error) {
	work, err := s.client.GetWork(ctx, workID)
	if err != nil {
		// A tracked book still renders without catalog detail.
		if existing != nil {
			s.logger.Warn("catalog enrichment failed, serving local record",
				"work_id", workID,
				"error", err,
			)
			return existing, nil
		}
		if errors.Is(err, openlibrary.ErrNotFound) {
			return nil, errors.NotFoundf("work %s not found", workID)
		}
		s.logger.Error("catalog lookup failed", "work_id", workID, "error", err)
		if errors.Is(err, openlibrary.ErrMalformed) {
			return nil, errors.Processing("could not read the book catalog response").WithCause(err)
		}
		return nil, errors.RemoteService("book catalog is unavailable").WithCause(err)
	}

	authors := s.resolveAuthors(ctx, work.AuthorKeys)

	now := time.Now()
	if existing == nil {
		bookID, err := id.Generate("bok")
		if err != nil {
			return nil, err
		}
		candidate := &domain.Book{
			ID:            bookID,
			CreatedAt:     now,
			UpdatedAt:     now,
			WorkID:        workID,
			Title:         work.Title,
			Authors:       authors,
			Description:   work.Description,
			PublishedYear: work.FirstPublishYear,
		}
		if candidate.Title == "" {
			candidate.Title = "No title"
		}
		if len(work.CoverIDs) > 0 {
			candidate.CoverURL = s.client.CoverURL(work.CoverIDs[0])
		}
		return s.store.FindOrCreateBook(ctx, candidate)
	}

	// Merge into the tracked record. Fields the work record lacks
	// keep their search-derived values.
	if work.Title != "" {
		existing.Title = work.Title
	}
	if len(authors) > 0 {
		existing.Authors = authors
	}
	if work.Description != "" {
		existing.Description = work.Description
	}
	if len(work.CoverIDs) > 0 {
		existing.CoverURL = s.client.CoverURL(work.CoverIDs[0])
	}
	if existing.PublishedYear == 0 {
		existing.PublishedYear = work.FirstPublishYear
	}
	existing.UpdatedAt = now

	if err := s.store.UpdateBook(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// resolveAuthors looks up author names for the work's author keys.
// Individual lookup failures are logged and skipped.
func (s *BookService) resolveAuthors(ctx context.Context, keys []string) []string {
	var authors []string
	for _, key := range keys {
		author, err := s.client.GetAuthor(ctx, key)
		if err != nil {
			s.logger.Warn("author lookup failed", "author_key", key, "error", err)
			continue
		}
		if author.Name != "" {
			authors = append(authors, author.Name)
		}
	}
	return authors
}

// ListReviews returns a page of a work's reviews that carry a rating or
// text, newest first, plus the total count.
func (s *BookService) ListReviews(ctx context.Context, workID string, page int) ([]*domain.Review, int, error) {
	if page < 1 {
		page = 1
	}

	book, err := s.store.GetBookByWorkID(ctx, workID)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, 0, errors.NotFoundf("work %s not found", workID)
		}
		return nil, 0, err
	}

	return s.store.ListReviewsForBook(ctx, book.ID, page, BookReviewsPageSize)
}
