package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/shelfmarkapp/shelfmark-server/internal/domain"
	"github.com/shelfmarkapp/shelfmark-server/internal/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := sqlite.Open(dbPath, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func createTestUser(t *testing.T, s *sqlite.Store, id, handle string) *domain.User {
	t.Helper()
	now := time.Now()
	user := &domain.User{
		ID:          id,
		CreatedAt:   now,
		UpdatedAt:   now,
		Email:       id + "@example.com",
		DisplayName: "Reader " + handle,
		Handle:      handle,
	}
	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}
