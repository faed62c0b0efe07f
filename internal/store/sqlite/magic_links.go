package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/shelfmarkapp/shelfmark-server/internal/domain"
	"github.com/shelfmarkapp/shelfmark-server/internal/errors"
)

// magicLinkColumns is the ordered list of columns selected in magic link
// queries. Must match the scan order in scanMagicLink.
const magicLinkColumns = `id, created_at, user_id, token, expires_at, used_at`

// scanMagicLink scans a sql.Row (or sql.Rows via its Scan method) into a domain.MagicLink.
func scanMagicLink(scanner interface{ Scan(dest ...any) error }) (*domain.MagicLink, error) {
	var m domain.MagicLink

	var (
		createdAt string
		expiresAt string
		usedAt    sql.NullString
	)

	err := scanner.Scan(
		&m.ID,
		&createdAt,
		&m.UserID,
		&m.Token,
		&expiresAt,
		&usedAt,
	)
	if err != nil {
		return nil, err
	}

	m.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	m.ExpiresAt, err = parseTime(expiresAt)
	if err != nil {
		return nil, err
	}
	m.UsedAt, err = parseNullableTime(usedAt)
	if err != nil {
		return nil, err
	}

	return &m, nil
}

// CreateMagicLink inserts a new login link.
func (s *Store) CreateMagicLink(ctx context.Context, link *domain.MagicLink) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO magic_links (id, created_at, user_id, token, expires_at, used_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		link.ID,
		formatTime(link.CreatedAt),
		link.UserID,
		link.Token,
		formatTime(link.ExpiresAt),
		nullTimeString(link.UsedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetMagicLinkByToken retrieves a login link by its token value.
// Returns errors.ErrNotFound if no such link exists.
func (s *Store) GetMagicLinkByToken(ctx context.Context, token string) (*domain.MagicLink, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+magicLinkColumns+` FROM magic_links WHERE token = ?`, token)

	m, err := scanMagicLink(row)
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// LatestMagicLink retrieves a user's most recently issued login link.
// Returns errors.ErrNotFound if the user has none.
func (s *Store) LatestMagicLink(ctx context.Context, userID string) (*domain.MagicLink, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+magicLinkColumns+` FROM magic_links
		WHERE user_id = ? ORDER BY created_at DESC LIMIT 1`, userID)

	m, err := scanMagicLink(row)
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// RedeemMagicLink atomically marks a link used and returns it. The
// conditional UPDATE guarantees a link redeems at most once even under
// concurrent requests.
// Returns errors.ErrNotFound for unknown tokens and
// errors.ErrTokenExpired for links that are expired or already used.
func (s *Store) RedeemMagicLink(ctx context.Context, token string, now time.Time) (*domain.MagicLink, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE magic_links SET used_at = ?
		WHERE token = ? AND used_at IS NULL AND expires_at > ?`,
		formatTime(now), token, formatTime(now))
	if err != nil {
		return nil, err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// Distinguish unknown tokens from spent or expired ones.
		if _, err := s.GetMagicLinkByToken(ctx, token); err != nil {
			return nil, err
		}
		return nil, errors.ErrTokenExpired
	}

	return s.GetMagicLinkByToken(ctx, token)
}
