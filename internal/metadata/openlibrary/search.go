package openlibrary

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Search queries the catalog by title or author. Results are sorted by
// edition count upstream so popular printings surface first, and docs
// without a work key are dropped.
func (c *Client) Search(ctx context.Context, query string, mode SearchMode) ([]SearchResult, error) {
	if !mode.Valid() {
		return nil, wrapError("search", "", ErrBadRequest)
	}

	params := url.Values{}
	switch mode {
	case SearchByAuthor:
		params.Set("author", query)
	default:
		params.Set("title", query)
	}
	params.Set("sort", "editions")
	params.Set("limit", strconv.Itoa(searchLimit))
	params.Set("fields", "key,title,author_name,cover_i,first_publish_year,number_of_pages_median")

	body, err := c.doRequest(ctx, "search", "/search.json", params)
	if err != nil {
		return nil, wrapError("search", "", err)
	}

	var resp rawSearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, wrapError("search", "", fmt.Errorf("%w: %v", ErrMalformed, err))
	}

	results := make([]SearchResult, 0, len(resp.Docs))
	for i := range resp.Docs {
		doc := &resp.Docs[i]

		// Only work records are trackable; editions and authors
		// occasionally leak into search results.
		if !strings.HasPrefix(doc.Key, "/works/") {
			continue
		}

		title := doc.Title
		if title == "" {
			title = "No title"
		}

		var coverURL string
		if doc.CoverI > 0 {
			coverURL = c.CoverURL(doc.CoverI)
		}

		results = append(results, SearchResult{
			WorkID:           strings.TrimPrefix(doc.Key, "/works/"),
			Title:            title,
			Authors:          doc.AuthorName,
			CoverURL:         coverURL,
			FirstPublishYear: doc.FirstPublishYear,
			PageCount:        doc.NumberOfPagesMedian,
		})
	}

	return results, nil
}
