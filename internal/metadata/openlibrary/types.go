package openlibrary

import "encoding/json/v2"

// SearchMode selects which field the catalog search matches against.
type SearchMode string

const (
	SearchByTitle  SearchMode = "title"
	SearchByAuthor SearchMode = "author"
)

// Valid reports whether m is a supported search mode.
func (m SearchMode) Valid() bool {
	return m == SearchByTitle || m == SearchByAuthor
}

// SearchResult is a single catalog work returned from a search.
type SearchResult struct {
	WorkID           string
	Title            string
	Authors          []string
	CoverURL         string
	FirstPublishYear int
	PageCount        int
}

// Work is the detail record for a catalog work.
type Work struct {
	Key              string
	Title            string
	Description      string
	CoverIDs         []int64
	AuthorKeys       []string
	FirstPublishYear int
}

// Author is a catalog author record.
type Author struct {
	Key  string
	Name string
}

// Raw API response types (internal)

type rawSearchResponse struct {
	NumFound int      `json:"numFound"`
	Docs     []rawDoc `json:"docs"`
}

type rawDoc struct {
	Key                 string   `json:"key"`
	Title               string   `json:"title"`
	AuthorName          []string `json:"author_name"`
	CoverI              int64    `json:"cover_i"`
	FirstPublishYear    int      `json:"first_publish_year"`
	NumberOfPagesMedian int      `json:"number_of_pages_median"`
}

type rawWork struct {
	Key              string          `json:"key"`
	Title            string          `json:"title"`
	Description      workDescription `json:"description"`
	Covers           []int64         `json:"covers"`
	Authors          []rawWorkAuthor `json:"authors"`
	FirstPublishDate string          `json:"first_publish_date"`
}

type rawWorkAuthor struct {
	Author struct {
		Key string `json:"key"`
	} `json:"author"`
}

type rawAuthor struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// workDescription handles the two shapes OpenLibrary uses for work
// descriptions: a bare string or a {"type": ..., "value": ...} object.
type workDescription string

func (d *workDescription) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*d = workDescription(s)
		return nil
	}

	var obj struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*d = workDescription(obj.Value)
	return nil
}
