package openlibrary

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func loadFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("failed to load fixture %s: %v", name, err)
	}
	return data
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	client := New(Config{BaseURL: server.URL, CoversBaseURL: "https://covers.openlibrary.org"}, logger)
	client.http = server.Client()

	return client, server
}

func TestClient_Search(t *testing.T) {
	fixture := loadFixture(t, "search_response.json")

	tests := []struct {
		name       string
		response   []byte
		statusCode int
		wantCount  int
		wantErr    error
	}{
		{
			name:       "successful search",
			response:   fixture,
			statusCode: http.StatusOK,
			wantCount:  3, // author doc without /works/ key is dropped
		},
		{
			name:       "empty results",
			response:   []byte(`{"numFound": 0, "docs": []}`),
			statusCode: http.StatusOK,
			wantCount:  0,
		},
		{
			name:       "rate limited",
			statusCode: http.StatusTooManyRequests,
			wantErr:    ErrRateLimited,
		},
		{
			name:       "server error",
			statusCode: http.StatusInternalServerError,
			wantErr:    ErrServer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				if tt.response != nil {
					w.Write(tt.response)
				}
			}

			client, server := newTestClient(t, handler)
			defer server.Close()
			defer client.Close()

			results, err := client.Search(context.Background(), "lord of the rings", SearchByTitle)

			if tt.wantErr != nil {
				if err == nil {
					t.Errorf("expected error %v, got nil", tt.wantErr)
					return
				}
				var olErr *Error
				if errors.As(err, &olErr) {
					if !errors.Is(olErr.Err, tt.wantErr) {
						t.Errorf("expected wrapped error %v, got %v", tt.wantErr, olErr.Err)
					}
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}

			if len(results) != tt.wantCount {
				t.Errorf("got %d results, want %d", len(results), tt.wantCount)
			}
		})
	}
}

func TestClient_Search_MapsFields(t *testing.T) {
	fixture := loadFixture(t, "search_response.json")

	handler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write(fixture)
	}

	client, server := newTestClient(t, handler)
	defer server.Close()
	defer client.Close()

	results, err := client.Search(context.Background(), "lord of the rings", SearchByTitle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) < 1 {
		t.Fatal("expected at least 1 result")
	}

	first := results[0]
	if first.WorkID != "OL27448W" {
		t.Errorf("expected work ID 'OL27448W', got %q", first.WorkID)
	}
	if first.Title != "The Lord of the Rings" {
		t.Errorf("unexpected title %q", first.Title)
	}
	if len(first.Authors) != 1 || first.Authors[0] != "J.R.R. Tolkien" {
		t.Errorf("unexpected authors %v", first.Authors)
	}
	if first.CoverURL != "https://covers.openlibrary.org/b/id/9255566-L.jpg" {
		t.Errorf("unexpected cover URL %q", first.CoverURL)
	}
	if first.FirstPublishYear != 1954 {
		t.Errorf("expected first publish year 1954, got %d", first.FirstPublishYear)
	}
	if first.PageCount != 1193 {
		t.Errorf("expected page count 1193, got %d", first.PageCount)
	}
}

func TestClient_Search_SearchByAuthor(t *testing.T) {
	var gotQuery string
	handler := func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("author")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"numFound": 0, "docs": []}`))
	}

	client, server := newTestClient(t, handler)
	defer server.Close()
	defer client.Close()

	_, err := client.Search(context.Background(), "tolkien", SearchByAuthor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery != "tolkien" {
		t.Errorf("expected author query 'tolkien', got %q", gotQuery)
	}
}

func TestClient_Search_MissingTitle(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"numFound": 1, "docs": [{"key": "/works/OL1W"}]}`))
	}

	client, server := newTestClient(t, handler)
	defer server.Close()
	defer client.Close()

	results, err := client.Search(context.Background(), "x anonymous", SearchByTitle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Title != "No title" {
		t.Errorf("expected placeholder title, got %q", results[0].Title)
	}
}

func TestClient_GetWork(t *testing.T) {
	fixture := loadFixture(t, "work_response.json")

	handler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write(fixture)
	}

	client, server := newTestClient(t, handler)
	defer server.Close()
	defer client.Close()

	work, err := client.GetWork(context.Background(), "OL27448W")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if work.Key != "OL27448W" {
		t.Errorf("expected key 'OL27448W', got %q", work.Key)
	}
	if work.Description == "" {
		t.Error("description should not be empty")
	}
	if len(work.CoverIDs) != 2 || work.CoverIDs[0] != 9255566 {
		t.Errorf("unexpected cover IDs %v", work.CoverIDs)
	}
	if len(work.AuthorKeys) != 1 || work.AuthorKeys[0] != "OL26320A" {
		t.Errorf("unexpected author keys %v", work.AuthorKeys)
	}
	if work.FirstPublishYear != 1954 {
		t.Errorf("expected first publish year 1954, got %d", work.FirstPublishYear)
	}
}

func TestPublishYear(t *testing.T) {
	tests := []struct {
		date string
		want int
	}{
		{"1954", 1954},
		{"July 1954", 1954},
		{"July 29, 1954", 1954},
		{"1954-07-29", 1954},
		{"", 0},
		{"unknown", 0},
		{"29", 0},
	}

	for _, tt := range tests {
		if got := publishYear(tt.date); got != tt.want {
			t.Errorf("publishYear(%q) = %d, want %d", tt.date, got, tt.want)
		}
	}
}

func TestClient_Search_MalformedResponse(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{not json`))
	}

	client, server := newTestClient(t, handler)
	defer server.Close()
	defer client.Close()

	_, err := client.Search(context.Background(), "dune", SearchByTitle)
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("expected ErrMalformed, got %v", err)
	}
}

func TestClient_GetWork_MalformedResponse(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`<html>not json</html>`))
	}

	client, server := newTestClient(t, handler)
	defer server.Close()
	defer client.Close()

	_, err := client.GetWork(context.Background(), "OL1W")
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("expected ErrMalformed, got %v", err)
	}
}

func TestClient_GetWork_StringDescription(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"key": "/works/OL1W", "title": "Test", "description": "A plain string description."}`))
	}

	client, server := newTestClient(t, handler)
	defer server.Close()
	defer client.Close()

	work, err := client.GetWork(context.Background(), "OL1W")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if work.Description != "A plain string description." {
		t.Errorf("unexpected description %q", work.Description)
	}
}

func TestClient_GetWork_NotFound(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}

	client, server := newTestClient(t, handler)
	defer server.Close()
	defer client.Close()

	_, err := client.GetWork(context.Background(), "OL0W")
	if err == nil {
		t.Fatal("expected error for not found")
	}

	var olErr *Error
	if !errors.As(err, &olErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if !errors.Is(olErr.Err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", olErr.Err)
	}
}

func TestClient_GetAuthor(t *testing.T) {
	fixture := loadFixture(t, "author_response.json")

	handler := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write(fixture)
	}

	client, server := newTestClient(t, handler)
	defer server.Close()
	defer client.Close()

	author, err := client.GetAuthor(context.Background(), "OL26320A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if author.Name != "J.R.R. Tolkien" {
		t.Errorf("expected name 'J.R.R. Tolkien', got %q", author.Name)
	}
}

func TestClient_ContextCancellation(t *testing.T) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(5 * time.Second)
		w.WriteHeader(http.StatusOK)
	}

	client, server := newTestClient(t, handler)
	defer server.Close()
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := client.Search(ctx, "test query", SearchByTitle)
	if err == nil {
		t.Error("expected error due to context cancellation")
	}
}

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "with key",
			err:  &Error{Op: "getWork", Key: "OL27448W", Err: ErrNotFound},
			want: "openlibrary getWork [OL27448W]: openlibrary: not found",
		},
		{
			name: "without key",
			err:  &Error{Op: "search", Err: ErrRateLimited},
			want: "openlibrary search: openlibrary: rate limited by server",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}
