package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shelfmarkapp/shelfmark-server/internal/service"
)

func (s *Server) registerProfileRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getProfile",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{handle}",
		Summary:     "Get public profile",
		Description: "Returns a reader's public page by handle: profile and reviews, newest first",
		Tags:        []string{"Profiles"},
	}, s.handleGetProfile)
}

// GetProfileInput identifies a reader by handle.
type GetProfileInput struct {
	Handle string `path:"handle" doc:"Unique reader handle"`
}

// ProfileOutput wraps the public profile for Huma.
type ProfileOutput struct {
	Body service.Profile
}

func (s *Server) handleGetProfile(ctx context.Context, input *GetProfileInput) (*ProfileOutput, error) {
	profile, err := s.services.Profile.GetByHandle(ctx, input.Handle)
	if err != nil {
		return nil, err
	}

	return &ProfileOutput{Body: *profile}, nil
}
