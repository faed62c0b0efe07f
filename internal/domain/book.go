// Package domain defines the core types for the reading tracker.
package domain

import "time"

// Book is a catalog work a user can track. Books are shared between
// users and keyed by their OpenLibrary work identifier, so the same
// edition never appears twice.
type Book struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	WorkID        string    `json:"workId"`
	Title         string    `json:"title"`
	Authors       []string  `json:"authors"`
	CoverURL      string    `json:"coverUrl,omitempty"`
	PageCount     int       `json:"pageCount,omitempty"`
	PublishedYear int       `json:"publishedYear,omitempty"`
	Description   string    `json:"description,omitempty"`
}

// HasDescription reports whether the book already carries catalog detail.
// Books created from search results start out without one and get
// enriched on first detail view.
func (b *Book) HasDescription() bool {
	return b.Description != ""
}

// PrimaryAuthor returns the first listed author, or "Unknown" when the
// catalog record carries none.
func (b *Book) PrimaryAuthor() string {
	if len(b.Authors) == 0 {
		return "Unknown"
	}
	return b.Authors[0]
}
