package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shelfmarkapp/shelfmark-server/internal/errors"
	"github.com/shelfmarkapp/shelfmark-server/internal/metadata/openlibrary"
)

// minQueryLength is the shortest search query the catalog accepts.
const minQueryLength = 2

// CatalogResult is a deduplicated catalog search hit with the number of
// reviews it has on this server.
type CatalogResult struct {
	WorkID           string   `json:"workId"`
	Title            string   `json:"title"`
	Authors          []string `json:"authors"`
	CoverURL         string   `json:"coverUrl,omitempty"`
	FirstPublishYear int      `json:"firstPublishYear,omitempty"`
	PageCount        int      `json:"pageCount,omitempty"`
	ReviewCount      int      `json:"reviewCount"`
}

// CatalogService searches the OpenLibrary catalog and decorates results
// with local review counts.
type CatalogService struct {
	store  ReviewCounter
	client *openlibrary.Client
	logger *slog.Logger
}

// ReviewCounter is the slice of the store the catalog needs.
type ReviewCounter interface {
	CountReviewsByWorkIDs(ctx context.Context, workIDs []string) (map[string]int, error)
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(store ReviewCounter, client *openlibrary.Client, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		store:  store,
		client: client,
		logger: logger,
	}
}

// Search queries the catalog by title or author, deduplicates reprints,
// and attaches local review counts.
func (s *CatalogService) Search(ctx context.Context, query string, mode openlibrary.SearchMode) ([]CatalogResult, error) {
	query = strings.TrimSpace(query)
	if len([]rune(query)) < minQueryLength {
		return nil, errors.Validationf("search query must be at least %d characters", minQueryLength)
	}
	if mode == "" {
		mode = openlibrary.SearchByTitle
	}
	if !mode.Valid() {
		return nil, errors.Validationf("invalid search type %q", mode)
	}

	raw, err := s.client.Search(ctx, query, mode)
	if err != nil {
		s.logger.Error("catalog search failed", "query", query, "error", err)
		if errors.Is(err, openlibrary.ErrMalformed) {
			return nil, errors.Processing("could not read the book catalog response").WithCause(err)
		}
		return nil, errors.RemoteService("book catalog is unavailable").WithCause(err)
	}

	deduped := openlibrary.Deduplicate(raw)

	workIDs := make([]string, len(deduped))
	for i, r := range deduped {
		workIDs[i] = r.WorkID
	}
	counts, err := s.store.CountReviewsByWorkIDs(ctx, workIDs)
	if err != nil {
		return nil, err
	}

	results := make([]CatalogResult, len(deduped))
	for i, r := range deduped {
		results[i] = CatalogResult{
			WorkID:           r.WorkID,
			Title:            r.Title,
			Authors:          r.Authors,
			CoverURL:         r.CoverURL,
			FirstPublishYear: r.FirstPublishYear,
			PageCount:        r.PageCount,
			ReviewCount:      counts[r.WorkID],
		}
	}

	return results, nil
}
