package service

import (
	"context"
	"log/slog"

	"github.com/shelfmarkapp/shelfmark-server/internal/domain"
	"github.com/shelfmarkapp/shelfmark-server/internal/errors"
	"github.com/shelfmarkapp/shelfmark-server/internal/store/sqlite"
)

// Profile is a user's public page: their profile and their reviews.
type Profile struct {
	User    domain.PublicProfile `json:"user"`
	Reviews []*domain.Review     `json:"reviews"`
	Total   int                  `json:"total"`
}

// ProfileService serves public profile pages looked up by handle.
type ProfileService struct {
	store  *sqlite.Store
	logger *slog.Logger
}

// NewProfileService creates a new profile service.
func NewProfileService(store *sqlite.Store, logger *slog.Logger) *ProfileService {
	return &ProfileService{
		store:  store,
		logger: logger,
	}
}

// GetByHandle returns the public page for a handle, with the user's
// reviews newest first.
func (s *ProfileService) GetByHandle(ctx context.Context, handle string) (*Profile, error) {
	user, err := s.store.GetUserByHandle(ctx, handle)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.NotFoundf("no reader with handle %q", handle)
		}
		return nil, err
	}

	reviews, err := s.store.ListAllReviewsByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []*domain.Review{}
	}

	return &Profile{
		User:    user.Public(),
		Reviews: reviews,
		Total:   len(reviews),
	}, nil
}
