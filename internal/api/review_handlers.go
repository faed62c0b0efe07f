package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shelfmarkapp/shelfmark-server/internal/domain"
	"github.com/shelfmarkapp/shelfmark-server/internal/service"
)

func (s *Server) registerReviewRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "upsertReview",
		Method:      http.MethodPost,
		Path:        "/api/v1/reviews",
		Summary:     "Track a book",
		Description: "Creates or updates the caller's review of a work. Writing again for the same work updates the existing record.",
		Tags:        []string{"Reviews"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpsertReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "listMyReviews",
		Method:      http.MethodGet,
		Path:        "/api/v1/reviews",
		Summary:     "List my reviews",
		Description: "Returns the caller's reviews, newest first",
		Tags:        []string{"Reviews"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListMyReviews)

	huma.Register(s.api, huma.Operation{
		OperationID: "getReview",
		Method:      http.MethodGet,
		Path:        "/api/v1/reviews/{id}",
		Summary:     "Get review",
		Description: "Returns one of the caller's reviews by ID",
		Tags:        []string{"Reviews"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateReview",
		Method:      http.MethodPut,
		Path:        "/api/v1/reviews/{id}",
		Summary:     "Update review",
		Description: "Updates fields of one of the caller's reviews. Omitted fields keep their current value.",
		Tags:        []string{"Reviews"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateReview)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteReview",
		Method:      http.MethodDelete,
		Path:        "/api/v1/reviews/{id}",
		Summary:     "Delete review",
		Description: "Removes one of the caller's reviews. The book record stays for other reviewers.",
		Tags:        []string{"Reviews"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteReview)
}

// === DTOs ===

// UpsertReviewRequest is the request body for tracking a book. The book
// fields carry the catalog snapshot from search results.
type UpsertReviewRequest struct {
	WorkID        string     `json:"workId" validate:"required,max=50" doc:"OpenLibrary work ID"`
	Title         string     `json:"title" validate:"omitempty,max=500" doc:"Book title from search results"`
	Authors       []string   `json:"authors,omitempty" validate:"omitempty,max=20,dive,max=200" doc:"Author names from search results"`
	CoverURL      string     `json:"coverUrl,omitempty" validate:"omitempty,url,max=500" doc:"Cover image URL"`
	PageCount     int        `json:"pageCount,omitempty" validate:"omitempty,gte=0,lte=100000" doc:"Page count"`
	PublishedYear int        `json:"publishedYear,omitempty" validate:"omitempty,gte=0,lte=3000" doc:"First publication year"`
	Rating        *float64   `json:"rating,omitempty" validate:"omitempty,gte=1,lte=5" doc:"Star rating, 1-5 in half-point steps"`
	Text          string     `json:"text,omitempty" validate:"omitempty,max=20000" doc:"Review text"`
	Status        string     `json:"status" validate:"required,oneof=want_to_read reading read dropped" doc:"Reading status"`
	Favorite      bool       `json:"favorite,omitempty" doc:"Mark as a favorite"`
	ReadAt        *time.Time `json:"readAt,omitempty" doc:"When the book was finished"`
}

// UpsertReviewInput wraps the upsert request for Huma.
type UpsertReviewInput struct {
	Authorization string `header:"Authorization"`
	Body          UpsertReviewRequest
}

// ReviewOutput wraps a single review for Huma.
type ReviewOutput struct {
	Body *domain.Review
}

// ListMyReviewsInput contains parameters for listing the caller's reviews.
type ListMyReviewsInput struct {
	Authorization string `header:"Authorization"`
	Page          int    `query:"page" validate:"omitempty,gte=1" doc:"Page number, starting at 1"`
}

// ReviewIDInput identifies a review by ID.
type ReviewIDInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Review ID"`
}

// UpdateReviewRequest is the request body for updating a review.
// Omitted fields keep their current value.
type UpdateReviewRequest struct {
	Rating      *float64   `json:"rating,omitempty" validate:"omitempty,gte=1,lte=5" doc:"Star rating, 1-5 in half-point steps"`
	ClearRating bool       `json:"clearRating,omitempty" doc:"Remove the rating"`
	Text        *string    `json:"text,omitempty" validate:"omitempty,max=20000" doc:"Review text"`
	Status      *string    `json:"status,omitempty" validate:"omitempty,oneof=want_to_read reading read dropped" doc:"Reading status"`
	Favorite    *bool      `json:"favorite,omitempty" doc:"Mark as a favorite"`
	ReadAt      *time.Time `json:"readAt,omitempty" doc:"When the book was finished"`
}

// UpdateReviewInput wraps the update request for Huma.
type UpdateReviewInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Review ID"`
	Body          UpdateReviewRequest
}

// === Handlers ===

func (s *Server) handleUpsertReview(ctx context.Context, input *UpsertReviewInput) (*ReviewOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	review, err := s.services.Review.Upsert(ctx, userID, service.UpsertReviewInput{
		WorkID:        input.Body.WorkID,
		Title:         input.Body.Title,
		Authors:       input.Body.Authors,
		CoverURL:      input.Body.CoverURL,
		PageCount:     input.Body.PageCount,
		PublishedYear: input.Body.PublishedYear,
		Rating:        input.Body.Rating,
		Text:          input.Body.Text,
		Status:        domain.ReviewStatus(input.Body.Status),
		Favorite:      input.Body.Favorite,
		ReadAt:        input.Body.ReadAt,
	})
	if err != nil {
		return nil, err
	}

	return &ReviewOutput{Body: review}, nil
}

func (s *Server) handleListMyReviews(ctx context.Context, input *ListMyReviewsInput) (*ReviewListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	page := input.Page
	if page < 1 {
		page = 1
	}

	reviews, total, err := s.services.Review.ListMine(ctx, userID, page)
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

func (s *Server) handleGetReview(ctx context.Context, input *ReviewIDInput) (*ReviewOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	review, err := s.services.Review.Get(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}

	return &ReviewOutput{Body: review}, nil
}

func (s *Server) handleUpdateReview(ctx context.Context, input *UpdateReviewInput) (*ReviewOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.validator.Validate(input.Body); err != nil {
		return nil, err
	}

	update := service.UpdateReviewInput{
		Rating:      input.Body.Rating,
		ClearRating: input.Body.ClearRating,
		Text:        input.Body.Text,
		Favorite:    input.Body.Favorite,
		ReadAt:      input.Body.ReadAt,
	}
	if input.Body.Status != nil {
		status := domain.ReviewStatus(*input.Body.Status)
		update.Status = &status
	}

	review, err := s.services.Review.Update(ctx, userID, input.ID, update)
	if err != nil {
		return nil, err
	}

	return &ReviewOutput{Body: review}, nil
}

func (s *Server) handleDeleteReview(ctx context.Context, input *ReviewIDInput) (*MessageOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Review.Delete(ctx, userID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{
		Body: MessageResponse{Message: "Review deleted"},
	}, nil
}
