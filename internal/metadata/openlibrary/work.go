package openlibrary

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"strconv"
	"strings"
)

// GetWork fetches the detail record for a work ID such as "OL45804W".
func (c *Client) GetWork(ctx context.Context, workID string) (*Work, error) {
	if workID == "" {
		return nil, wrapError("getWork", workID, ErrBadRequest)
	}

	body, err := c.doRequest(ctx, "works", "/works/"+workID+".json", nil)
	if err != nil {
		return nil, wrapError("getWork", workID, err)
	}

	var raw rawWork
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, wrapError("getWork", workID, fmt.Errorf("%w: %v", ErrMalformed, err))
	}

	work := &Work{
		Key:              strings.TrimPrefix(raw.Key, "/works/"),
		Title:            raw.Title,
		Description:      string(raw.Description),
		CoverIDs:         raw.Covers,
		FirstPublishYear: publishYear(raw.FirstPublishDate),
	}
	for _, a := range raw.Authors {
		if a.Author.Key != "" {
			work.AuthorKeys = append(work.AuthorKeys, strings.TrimPrefix(a.Author.Key, "/authors/"))
		}
	}

	return work, nil
}

// publishYear extracts the four-digit year from a first_publish_date
// value. The field has no fixed format upstream: "1954", "July 1954",
// and "1954-07-29" all occur.
func publishYear(date string) int {
	i := 0
	for i < len(date) {
		if date[i] < '0' || date[i] > '9' {
			i++
			continue
		}
		j := i
		for j < len(date) && date[j] >= '0' && date[j] <= '9' {
			j++
		}
		if j-i == 4 {
			year, _ := strconv.Atoi(date[i:j])
			return year
		}
		i = j
	}
	return 0
}

// GetAuthor fetches an author record for a key such as "OL23919A".
func (c *Client) GetAuthor(ctx context.Context, authorKey string) (*Author, error) {
	if authorKey == "" {
		return nil, wrapError("getAuthor", authorKey, ErrBadRequest)
	}

	body, err := c.doRequest(ctx, "authors", "/authors/"+authorKey+".json", nil)
	if err != nil {
		return nil, wrapError("getAuthor", authorKey, err)
	}

	var raw rawAuthor
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, wrapError("getAuthor", authorKey, fmt.Errorf("%w: %v", ErrMalformed, err))
	}

	return &Author{
		Key:  strings.TrimPrefix(raw.Key, "/authors/"),
		Name: raw.Name,
	}, nil
}
