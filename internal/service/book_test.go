package service

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmarkapp/shelfmark-server/internal/domain"
	"github.com/shelfmarkapp/shelfmark-server/internal/errors"
)

const workStub = `{
	"key": "/works/OL1W",
	"title": "Dune",
	"description": {"type": "/type/text", "value": "Set on the desert planet Arrakis."},
	"covers": [111],
	"authors": [{"author": {"key": "/authors/OL10A"}}],
	"first_publish_date": "1965"
}`

const authorStub = `{"key": "/authors/OL10A", "name": "Frank Herbert"}`

// catalogStub routes work and author lookups to canned responses.
func catalogStub(t *testing.T) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/works/"):
			w.Write([]byte(workStub))
		case strings.HasPrefix(r.URL.Path, "/authors/"):
			w.Write([]byte(authorStub))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func TestGetByWorkID_EnrichesUntracked(t *testing.T) {
	store := newTestStore(t)
	svc := NewBookService(store, newTestCatalogClient(t, catalogStub(t)), testLogger())
	ctx := context.Background()

	detail, err := svc.GetByWorkID(ctx, "OL1W", "")
	require.NoError(t, err)

	book := detail.Book
	assert.Equal(t, "OL1W", book.WorkID)
	assert.Equal(t, "Dune", book.Title)
	assert.Equal(t, []string{"Frank Herbert"}, book.Authors)
	assert.Equal(t, "Set on the desert planet Arrakis.", book.Description)
	assert.Equal(t, "https://covers.openlibrary.org/b/id/111-L.jpg", book.CoverURL)
	assert.Equal(t, 1965, book.PublishedYear)

	// The enriched record was persisted.
	stored, err := store.GetBookByWorkID(ctx, "OL1W")
	require.NoError(t, err)
	assert.Equal(t, book.Description, stored.Description)
}

func TestGetByWorkID_EnrichesTrackedWithoutDescription(t *testing.T) {
	store := newTestStore(t)
	svc := NewBookService(store, newTestCatalogClient(t, catalogStub(t)), testLogger())
	ctx := context.Background()

	// Track via review first; search snapshots carry no description.
	reviews := NewReviewService(store, testLogger())
	createTestUser(t, store, "user-1", "alice")
	_, err := reviews.Upsert(ctx, "user-1", UpsertReviewInput{
		WorkID:    "OL1W",
		Title:     "Dune",
		Authors:   []string{"Frank Herbert"},
		PageCount: 412,
		Status:    domain.StatusReading,
	})
	require.NoError(t, err)

	detail, err := svc.GetByWorkID(ctx, "OL1W", "user-1")
	require.NoError(t, err)

	assert.Equal(t, "Set on the desert planet Arrakis.", detail.Book.Description)
	// Fields the work record lacks keep their search-derived values.
	assert.Equal(t, 412, detail.Book.PageCount)
	// A missing publish year is backfilled from the work record.
	assert.Equal(t, 1965, detail.Book.PublishedYear)
	// The viewer's own review rides along.
	require.NotNil(t, detail.MyReview)
	assert.Equal(t, domain.StatusReading, detail.MyReview.Status)
}

func TestGetByWorkID_SkipsEnrichmentWhenComplete(t *testing.T) {
	store := newTestStore(t)
	calls := 0
	svc := NewBookService(store, newTestCatalogClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		catalogStub(t)(w, r)
	}), testLogger())
	ctx := context.Background()

	_, err := svc.GetByWorkID(ctx, "OL1W", "")
	require.NoError(t, err)
	callsAfterFirst := calls

	_, err = svc.GetByWorkID(ctx, "OL1W", "")
	require.NoError(t, err)
	assert.Equal(t, callsAfterFirst, calls, "second view should not hit the catalog")
}

func TestGetByWorkID_DegradesToLocalOnCatalogFailure(t *testing.T) {
	store := newTestStore(t)
	svc := NewBookService(store, newTestCatalogClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}), testLogger())
	ctx := context.Background()

	reviews := NewReviewService(store, testLogger())
	createTestUser(t, store, "user-1", "alice")
	_, err := reviews.Upsert(ctx, "user-1", UpsertReviewInput{
		WorkID: "OL1W",
		Title:  "Dune",
		Status: domain.StatusReading,
	})
	require.NoError(t, err)

	detail, err := svc.GetByWorkID(ctx, "OL1W", "")
	require.NoError(t, err)
	assert.Equal(t, "Dune", detail.Book.Title)
	assert.Empty(t, detail.Book.Description)
}

func TestGetByWorkID_KeepsSearchPublishYear(t *testing.T) {
	store := newTestStore(t)
	svc := NewBookService(store, newTestCatalogClient(t, catalogStub(t)), testLogger())
	ctx := context.Background()

	reviews := NewReviewService(store, testLogger())
	createTestUser(t, store, "user-1", "alice")
	_, err := reviews.Upsert(ctx, "user-1", UpsertReviewInput{
		WorkID:        "OL1W",
		Title:         "Dune",
		PublishedYear: 1966,
		Status:        domain.StatusReading,
	})
	require.NoError(t, err)

	detail, err := svc.GetByWorkID(ctx, "OL1W", "")
	require.NoError(t, err)
	assert.Equal(t, 1966, detail.Book.PublishedYear)
}

func TestGetByWorkID_SkipsFailedAuthorLookup(t *testing.T) {
	store := newTestStore(t)
	svc := NewBookService(store, newTestCatalogClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/works/"):
			w.Write([]byte(`{
				"key": "/works/OL1W",
				"title": "Dune",
				"description": "Set on the desert planet Arrakis.",
				"authors": [{"author": {"key": "/authors/OL10A"}}, {"author": {"key": "/authors/OL11A"}}]
			}`))
		case r.URL.Path == "/authors/OL10A.json":
			w.WriteHeader(http.StatusInternalServerError)
		case r.URL.Path == "/authors/OL11A.json":
			w.Write([]byte(`{"key": "/authors/OL11A", "name": "Brian Herbert"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}), testLogger())
	ctx := context.Background()

	detail, err := svc.GetByWorkID(ctx, "OL1W", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Brian Herbert"}, detail.Book.Authors)

	// The partially resolved record was still persisted.
	stored, err := store.GetBookByWorkID(ctx, "OL1W")
	require.NoError(t, err)
	assert.Equal(t, []string{"Brian Herbert"}, stored.Authors)
}

func TestGetByWorkID_UntrackedAndMalformedResponse(t *testing.T) {
	svc := NewBookService(newTestStore(t), newTestCatalogClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	}), testLogger())

	_, err := svc.GetByWorkID(context.Background(), "OL1W", "")
	assert.True(t, errors.Is(err, errors.ErrProcessing))
}

func TestGetByWorkID_UntrackedAndCatalogMissing(t *testing.T) {
	svc := NewBookService(newTestStore(t), newTestCatalogClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}), testLogger())

	_, err := svc.GetByWorkID(context.Background(), "OL404W", "")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestListReviews(t *testing.T) {
	store := newTestStore(t)
	svc := NewBookService(store, newTestCatalogClient(t, catalogStub(t)), testLogger())
	reviews := NewReviewService(store, testLogger())
	ctx := context.Background()

	createTestUser(t, store, "user-1", "alice")
	createTestUser(t, store, "user-2", "bob")

	rating := 5.0
	_, err := reviews.Upsert(ctx, "user-1", UpsertReviewInput{
		WorkID: "OL1W", Title: "Dune", Status: domain.StatusRead, Rating: &rating,
	})
	require.NoError(t, err)
	// Status-only entry stays off the public list.
	_, err = reviews.Upsert(ctx, "user-2", UpsertReviewInput{
		WorkID: "OL1W", Title: "Dune", Status: domain.StatusWantToRead,
	})
	require.NoError(t, err)

	got, total, err := svc.ListReviews(ctx, "OL1W", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, got, 1)
	assert.Equal(t, "user-1", got[0].UserID)
}

func TestListReviews_UnknownWork(t *testing.T) {
	svc := NewBookService(newTestStore(t), newTestCatalogClient(t, catalogStub(t)), testLogger())

	_, _, err := svc.ListReviews(context.Background(), "OL404W", 1)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}
