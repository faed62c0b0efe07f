package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/shelfmarkapp/shelfmark-server/internal/auth"
	"github.com/shelfmarkapp/shelfmark-server/internal/config"
	"github.com/shelfmarkapp/shelfmark-server/internal/domain"
	"github.com/shelfmarkapp/shelfmark-server/internal/mail"
	"github.com/shelfmarkapp/shelfmark-server/internal/metadata/openlibrary"
	"github.com/shelfmarkapp/shelfmark-server/internal/service"
	"github.com/shelfmarkapp/shelfmark-server/internal/store/sqlite"
)

// testEnvelope mirrors the response envelope for decoding in tests.
type testEnvelope[T any] struct {
	V       int       `json:"v"`
	Success bool      `json:"success"`
	Data    T         `json:"data"`
	Error   *APIError `json:"error"`
}

// testServer wraps the API server for handler testing.
type testServer struct {
	*Server
	api humatest.TestAPI
}

// setupTestServer creates a full server over a temp database and a
// stubbed catalog.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	tmpDir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := sqlite.Open(filepath.Join(tmpDir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	authKey, err := auth.LoadOrGenerateKey(tmpDir)
	require.NoError(t, err)

	tokens, err := auth.NewTokenService(authKey, time.Hour)
	require.NoError(t, err)

	catalog := httptest.NewServer(http.HandlerFunc(serveCatalogStub))
	t.Cleanup(catalog.Close)

	client := openlibrary.New(openlibrary.Config{
		BaseURL:       catalog.URL,
		CoversBaseURL: "https://covers.example.com",
	}, logger)

	// No SMTP config: the mailer logs links instead of sending.
	mailer := mail.New(config.MailConfig{}, logger)

	authService := service.NewAuthService(st, tokens, mailer, "http://localhost:8080", 15*time.Minute, logger)

	services := &Services{
		Auth:    authService,
		Catalog: service.NewCatalogService(st, client, logger),
		Book:    service.NewBookService(st, client, logger),
		Review:  service.NewReviewService(st, logger),
		Shelf:   service.NewShelfService(st, logger),
		Profile: service.NewProfileService(st, logger),
	}

	srv := NewServer(st, services, logger)

	return &testServer{
		Server: srv,
		api:    humatest.Wrap(t, srv.api),
	}
}

// registerUser registers an account and logs it in by redeeming the
// generated magic link. Returns the bearer token and user info.
func (ts *testServer) registerUser(t *testing.T, name, email string) (string, UserResponse) {
	t.Helper()

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"name":  name,
		"email": email,
	})
	require.Equal(t, http.StatusOK, resp.Code, "Register failed: %s", resp.Body.String())

	var registered testEnvelope[RegisterResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &registered))

	link, err := ts.store.LatestMagicLink(context.Background(), registered.Data.UserID)
	require.NoError(t, err)

	resp = ts.api.Post("/api/v1/auth/magic/" + link.Token)
	require.Equal(t, http.StatusOK, resp.Code, "Redeem failed: %s", resp.Body.String())

	var authed testEnvelope[AuthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &authed))

	return authed.Data.AccessToken, authed.Data.User
}

// trackBook records a review for the user and returns it.
func (ts *testServer) trackBook(t *testing.T, token string, body map[string]any) *domain.Review {
	t.Helper()

	resp := ts.api.Post("/api/v1/reviews", "Authorization: Bearer "+token, body)
	require.Equal(t, http.StatusOK, resp.Code, "Upsert failed: %s", resp.Body.String())

	var review domain.Review
	decodeData(t, resp.Body.Bytes(), &review)
	return &review
}

// serveCatalogStub fakes the OpenLibrary endpoints the handlers hit.
func serveCatalogStub(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.URL.Path == "/search.json":
		w.Write([]byte(`{
			"numFound": 3,
			"docs": [
				{
					"key": "/works/OL27448W",
					"title": "The Lord of the Rings",
					"author_name": ["J.R.R. Tolkien"],
					"cover_i": 9255566,
					"first_publish_year": 1954,
					"number_of_pages_median": 1178
				},
				{
					"key": "/works/OL27448W-reprint",
					"title": "The Lord of the Rings",
					"author_name": ["J.R.R. Tolkien"],
					"first_publish_year": 1968
				},
				{
					"key": "/works/OL14933414W",
					"title": "The Fellowship of the Ring",
					"author_name": ["J.R.R. Tolkien"],
					"cover_i": 190703,
					"first_publish_year": 1954,
					"number_of_pages_median": 423
				}
			]
		}`))
	case r.URL.Path == "/works/OL27448W.json":
		w.Write([]byte(`{
			"key": "/works/OL27448W",
			"title": "The Lord of the Rings",
			"description": {"type": "/type/text", "value": "An epic high fantasy novel."},
			"covers": [9255566],
			"authors": [{"author": {"key": "/authors/OL26320A"}}]
		}`))
	case r.URL.Path == "/authors/OL26320A.json":
		w.Write([]byte(`{"key": "/authors/OL26320A", "name": "J.R.R. Tolkien"}`))
	default:
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error": "notfound"}`))
	}
}

// decodeData unmarshals the envelope's data field into out.
func decodeData(t *testing.T, body []byte, out any) {
	t.Helper()

	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &env))
	require.True(t, env.Success, "expected success envelope: %s", string(body))
	require.NoError(t, json.Unmarshal(env.Data, out))
}
