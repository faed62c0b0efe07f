package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shelfmarkapp/shelfmark-server/internal/service"
)

func (s *Server) registerShelfRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getShelf",
		Method:      http.MethodGet,
		Path:        "/api/v1/shelf",
		Summary:     "Get my shelf",
		Description: "Returns the caller's shelf: status buckets, reading stats, and recent activity",
		Tags:        []string{"Shelf"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetShelf)
}

// === DTOs ===

// GetShelfInput carries the bearer token for the shelf view.
type GetShelfInput struct {
	Authorization string `header:"Authorization"`
}

// ShelfOutput wraps the shelf view for Huma.
type ShelfOutput struct {
	Body service.Shelf
}

// === Handlers ===

func (s *Server) handleGetShelf(ctx context.Context, _ *GetShelfInput) (*ShelfOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	shelf, err := s.services.Shelf.GetShelf(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ShelfOutput{Body: *shelf}, nil
}
