package domain

import (
	"math"
	"strconv"
	"time"

	"github.com/shelfmarkapp/shelfmark-server/internal/errors"
)

// ReviewStatus is the reading state a user has assigned to a book.
type ReviewStatus string

const (
	StatusWantToRead ReviewStatus = "want_to_read"
	StatusReading    ReviewStatus = "reading"
	StatusRead       ReviewStatus = "read"
	StatusDropped    ReviewStatus = "dropped"
)

// Valid reports whether s is a known reading status.
func (s ReviewStatus) Valid() bool {
	switch s {
	case StatusWantToRead, StatusReading, StatusRead, StatusDropped:
		return true
	}
	return false
}

// Review is a user's record for a single book: reading status plus an
// optional rating and free-form text. A user has at most one review per
// book; writing again updates the existing record.
type Review struct {
	ID        string       `json:"id"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
	UserID    string       `json:"userId"`
	BookID    string       `json:"bookId"`
	Rating    *float64     `json:"rating,omitempty"`
	Text      string       `json:"text,omitempty"`
	Status    ReviewStatus `json:"status"`
	Favorite  bool         `json:"favorite"`
	ReadAt    *time.Time   `json:"readAt,omitempty"`

	// Book is attached by list queries that join the catalog record.
	Book *Book `json:"book,omitempty"`
}

// HasContent reports whether the review carries a rating or text,
// i.e. whether it shows up on the book's public review list.
func (r *Review) HasContent() bool {
	return r.Rating != nil || r.Text != ""
}

// ValidateRating checks that a rating is between 1 and 5 in half-point
// steps. A nil rating is always valid.
func ValidateRating(rating *float64) error {
	if rating == nil {
		return nil
	}
	v := *rating
	if v < 1 || v > 5 {
		return errors.Validation("rating must be between 1 and 5")
	}
	if math.Mod(v*2, 1) != 0 {
		return errors.Validation("rating must be in half-point increments")
	}
	return nil
}

// FormatRating renders a rating without trailing zeros, so 4 stays "4"
// and 3.5 stays "3.5".
func FormatRating(rating float64) string {
	return strconv.FormatFloat(rating, 'f', -1, 64)
}

// ActivityDescription renders a review change as an activity feed
// phrase, e.g. "finished reading and rated 4.5 stars".
func ActivityDescription(r *Review) string {
	var phrase string
	switch r.Status {
	case StatusRead:
		phrase = "finished reading"
	case StatusReading:
		phrase = "started reading"
	case StatusWantToRead:
		phrase = "added to list"
	default:
		phrase = "updated"
	}
	if r.Rating != nil {
		phrase += " and rated " + FormatRating(*r.Rating) + " stars"
	}
	return phrase
}
