package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shelfmarkapp/shelfmark-server/internal/metadata/openlibrary"
	"github.com/shelfmarkapp/shelfmark-server/internal/service"
)

func (s *Server) registerCatalogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/search",
		Summary:     "Search the catalog",
		Description: "Searches OpenLibrary by title or author, deduplicates reprints, and attaches local review counts",
		Tags:        []string{"Catalog"},
	}, s.handleSearchBooks)
}

// === DTOs ===

// SearchBooksInput contains parameters for a catalog search.
type SearchBooksInput struct {
	Query string `query:"q" validate:"required,min=2,max=200" doc:"Search query"`
	Type  string `query:"type" validate:"omitempty,oneof=title author" doc:"Search mode: title (default) or author"`
}

// SearchBooksResponse contains deduplicated search hits.
type SearchBooksResponse struct {
	Query   string                  `json:"query" doc:"Original search query"`
	Results []service.CatalogResult `json:"results" doc:"Deduplicated catalog hits"`
}

// SearchBooksOutput wraps the search response for Huma.
type SearchBooksOutput struct {
	Body SearchBooksResponse
}

// === Handlers ===

func (s *Server) handleSearchBooks(ctx context.Context, input *SearchBooksInput) (*SearchBooksOutput, error) {
	results, err := s.services.Catalog.Search(ctx, input.Query, openlibrary.SearchMode(input.Type))
	if err != nil {
		return nil, err
	}

	return &SearchBooksOutput{
		Body: SearchBooksResponse{
			Query:   input.Query,
			Results: results,
		},
	}, nil
}
