package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shelfmarkapp/shelfmark-server/internal/domain"
	"github.com/shelfmarkapp/shelfmark-server/internal/service"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{workId}",
		Summary:     "Get book detail",
		Description: "Returns a book's full record, enriched from the catalog on first view. Includes the viewer's own review when authenticated.",
		Tags:        []string{"Books"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "listBookReviews",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{workId}/reviews",
		Summary:     "List book reviews",
		Description: "Returns reviews for a book that carry a rating or text, newest first",
		Tags:        []string{"Books"},
	}, s.handleListBookReviews)
}

// === DTOs ===

// GetBookInput identifies a book by its OpenLibrary work ID.
type GetBookInput struct {
	WorkID string `path:"workId" doc:"OpenLibrary work ID (e.g. OL45883W)"`
}

// BookDetailOutput wraps the book detail for Huma.
type BookDetailOutput struct {
	Body service.BookDetail
}

// ListBookReviewsInput contains parameters for listing a book's reviews.
type ListBookReviewsInput struct {
	WorkID string `path:"workId" doc:"OpenLibrary work ID"`
	Page   int    `query:"page" validate:"omitempty,gte=1" doc:"Page number, starting at 1"`
}

// ReviewListResponse is a paginated list of reviews.
type ReviewListResponse struct {
	Reviews []*domain.Review `json:"reviews" doc:"Reviews on this page"`
	Total   int              `json:"total" doc:"Total matching reviews"`
	Page    int              `json:"page" doc:"Current page"`
}

// ReviewListOutput wraps the review list for Huma.
type ReviewListOutput struct {
	Body ReviewListResponse
}

// === Handlers ===

func (s *Server) handleGetBook(ctx context.Context, input *GetBookInput) (*BookDetailOutput, error) {
	// Viewer is optional; unauthenticated requests see no own-review.
	viewerID, _ := GetUserID(ctx)

	detail, err := s.services.Book.GetByWorkID(ctx, input.WorkID, viewerID)
	if err != nil {
		return nil, err
	}

	return &BookDetailOutput{Body: *detail}, nil
}

func (s *Server) handleListBookReviews(ctx context.Context, input *ListBookReviewsInput) (*ReviewListOutput, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}

	reviews, total, err := s.services.Book.ListReviews(ctx, input.WorkID, page)
	if err != nil {
		return nil, err
	}

	return &ReviewListOutput{
		Body: ReviewListResponse{
			Reviews: reviews,
			Total:   total,
			Page:    page,
		},
	}, nil
}
