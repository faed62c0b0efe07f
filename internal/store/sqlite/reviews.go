package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/shelfmarkapp/shelfmark-server/internal/domain"
	"github.com/shelfmarkapp/shelfmark-server/internal/errors"
)

// reviewColumns is the ordered list of columns selected in review queries.
// Must match the scan order in scanReview.
const reviewColumns = `r.id, r.created_at, r.updated_at, r.user_id, r.book_id,
	r.rating, r.text, r.status, r.favorite, r.read_at`

// reviewWithBookColumns selects a review joined with its book record.
const reviewWithBookColumns = reviewColumns + `,
	b.id, b.created_at, b.updated_at, b.work_id, b.title, b.authors,
	b.cover_url, b.page_count, b.published_year, b.description`

// scanReview scans a sql.Row (or sql.Rows via its Scan method) into a domain.Review.
func scanReview(scanner interface{ Scan(dest ...any) error }) (*domain.Review, error) {
	var r domain.Review

	var (
		createdAt string
		updatedAt string
		rating    sql.NullFloat64
		status    string
		favorite  int
		readAt    sql.NullString
	)

	err := scanner.Scan(
		&r.ID,
		&createdAt,
		&updatedAt,
		&r.UserID,
		&r.BookID,
		&rating,
		&r.Text,
		&status,
		&favorite,
		&readAt,
	)
	if err != nil {
		return nil, err
	}

	r.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	r.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	if rating.Valid {
		r.Rating = &rating.Float64
	}
	r.Status = domain.ReviewStatus(status)
	r.Favorite = favorite != 0
	r.ReadAt, err = parseNullableTime(readAt)
	if err != nil {
		return nil, err
	}

	return &r, nil
}

// scanReviewWithBook scans a joined review+book row.
func scanReviewWithBook(rows *sql.Rows) (*domain.Review, error) {
	var r domain.Review
	var b domain.Book

	var (
		rCreatedAt  string
		rUpdatedAt  string
		rating      sql.NullFloat64
		status      string
		favorite    int
		readAt      sql.NullString
		bCreatedAt  string
		bUpdatedAt  string
		authorsJSON string
		coverURL    sql.NullString
		description sql.NullString
	)

	err := rows.Scan(
		&r.ID,
		&rCreatedAt,
		&rUpdatedAt,
		&r.UserID,
		&r.BookID,
		&rating,
		&r.Text,
		&status,
		&favorite,
		&readAt,
		&b.ID,
		&bCreatedAt,
		&bUpdatedAt,
		&b.WorkID,
		&b.Title,
		&authorsJSON,
		&coverURL,
		&b.PageCount,
		&b.PublishedYear,
		&description,
	)
	if err != nil {
		return nil, err
	}

	if r.CreatedAt, err = parseTime(rCreatedAt); err != nil {
		return nil, err
	}
	if r.UpdatedAt, err = parseTime(rUpdatedAt); err != nil {
		return nil, err
	}
	if rating.Valid {
		r.Rating = &rating.Float64
	}
	r.Status = domain.ReviewStatus(status)
	r.Favorite = favorite != 0
	if r.ReadAt, err = parseNullableTime(readAt); err != nil {
		return nil, err
	}

	if b.CreatedAt, err = parseTime(bCreatedAt); err != nil {
		return nil, err
	}
	if b.UpdatedAt, err = parseTime(bUpdatedAt); err != nil {
		return nil, err
	}
	if err := unmarshalAuthors(authorsJSON, &b.Authors); err != nil {
		return nil, err
	}
	if coverURL.Valid {
		b.CoverURL = coverURL.String
	}
	if description.Valid {
		b.Description = description.String
	}

	r.Book = &b
	return &r, nil
}

// UpsertReview inserts a review or, when the user already has one for
// the book, updates it in place. The original id and created_at are
// preserved on update. Returns the stored row.
func (s *Store) UpsertReview(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reviews (
			id, created_at, updated_at, user_id, book_id,
			rating, text, status, favorite, read_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, book_id) DO UPDATE SET
			updated_at = excluded.updated_at,
			rating = excluded.rating,
			text = excluded.text,
			status = excluded.status,
			favorite = excluded.favorite,
			read_at = excluded.read_at`,
		review.ID,
		formatTime(review.CreatedAt),
		formatTime(review.UpdatedAt),
		review.UserID,
		review.BookID,
		nullFloat64(review.Rating),
		review.Text,
		string(review.Status),
		boolToInt(review.Favorite),
		nullTimeString(review.ReadAt),
	)
	if err != nil {
		return nil, err
	}

	return s.GetReviewByUserAndBook(ctx, review.UserID, review.BookID)
}

// GetReview retrieves a review by ID.
// Returns errors.ErrNotFound if the review does not exist.
func (s *Store) GetReview(ctx context.Context, id string) (*domain.Review, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews r WHERE r.id = ?`, id)

	r, err := scanReview(row)
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// GetReviewByUserAndBook retrieves a user's review of a book.
// Returns errors.ErrNotFound if no review exists.
func (s *Store) GetReviewByUserAndBook(ctx context.Context, userID, bookID string) (*domain.Review, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+reviewColumns+` FROM reviews r WHERE r.user_id = ? AND r.book_id = ?`,
		userID, bookID)

	r, err := scanReview(row)
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// UpdateReview performs a full row update on an existing review.
// Returns errors.ErrNotFound if the review does not exist.
func (s *Store) UpdateReview(ctx context.Context, review *domain.Review) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE reviews SET
			updated_at = ?,
			rating = ?,
			text = ?,
			status = ?,
			favorite = ?,
			read_at = ?
		WHERE id = ?`,
		formatTime(review.UpdatedAt),
		nullFloat64(review.Rating),
		review.Text,
		string(review.Status),
		boolToInt(review.Favorite),
		nullTimeString(review.ReadAt),
		review.ID,
	)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.ErrNotFound
	}
	return nil
}

// DeleteReview removes a review by ID.
// Returns errors.ErrNotFound if the review does not exist.
func (s *Store) DeleteReview(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.ErrNotFound
	}
	return nil
}

// ListReviewsByUser returns a page of a user's reviews with their books
// attached, newest first, plus the total count.
func (s *Store) ListReviewsByUser(ctx context.Context, userID string, page, perPage int) ([]*domain.Review, int, error) {
	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM reviews WHERE user_id = ?`, userID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+reviewWithBookColumns+`
		FROM reviews r
		JOIN books b ON b.id = r.book_id
		WHERE r.user_id = ?
		ORDER BY r.created_at DESC
		LIMIT ? OFFSET ?`,
		userID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	reviews, err := collectReviewsWithBooks(rows)
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

// ListAllReviewsByUser returns every review a user has written with
// their books attached, newest first. Used for public profile pages,
// which are not paginated.
func (s *Store) ListAllReviewsByUser(ctx context.Context, userID string) ([]*domain.Review, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+reviewWithBookColumns+`
		FROM reviews r
		JOIN books b ON b.id = r.book_id
		WHERE r.user_id = ?
		ORDER BY r.created_at DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectReviewsWithBooks(rows)
}

// ListReviewsForBook returns a page of reviews for a book that carry a
// rating or text, newest first, plus the total count of such reviews.
func (s *Store) ListReviewsForBook(ctx context.Context, bookID string, page, perPage int) ([]*domain.Review, int, error) {
	const contentFilter = `book_id = ? AND (rating IS NOT NULL OR text != '')`

	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM reviews WHERE `+contentFilter, bookID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+reviewColumns+`
		FROM reviews r
		WHERE r.book_id = ? AND (r.rating IS NOT NULL OR r.text != '')
		ORDER BY r.created_at DESC
		LIMIT ? OFFSET ?`,
		bookID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var reviews []*domain.Review
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, 0, err
		}
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

// ListUserShelf returns all of a user's reviews with their books
// attached, most recently updated first. Used for shelf aggregation.
func (s *Store) ListUserShelf(ctx context.Context, userID string) ([]*domain.Review, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+reviewWithBookColumns+`
		FROM reviews r
		JOIN books b ON b.id = r.book_id
		WHERE r.user_id = ?
		ORDER BY r.updated_at DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectReviewsWithBooks(rows)
}

// ListRecentReviews returns a user's reviews updated at or after the
// given time, most recently updated first, capped at limit.
func (s *Store) ListRecentReviews(ctx context.Context, userID string, since time.Time, limit int) ([]*domain.Review, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+reviewWithBookColumns+`
		FROM reviews r
		JOIN books b ON b.id = r.book_id
		WHERE r.user_id = ? AND r.updated_at >= ?
		ORDER BY r.updated_at DESC
		LIMIT ?`,
		userID, formatTime(since), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectReviewsWithBooks(rows)
}

// LatestReviewUpdate returns the time of the user's most recent review
// change, or nil when the user has no reviews.
func (s *Store) LatestReviewUpdate(ctx context.Context, userID string) (*time.Time, error) {
	var latest sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT MAX(updated_at) FROM reviews WHERE user_id = ?`, userID).Scan(&latest)
	if err != nil {
		return nil, err
	}
	return parseNullableTime(latest)
}

// CountReviewsByWorkIDs returns, for each given work ID, how many
// reviews exist for the corresponding book. Works without a tracked
// book are absent from the result.
func (s *Store) CountReviewsByWorkIDs(ctx context.Context, workIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(workIDs))
	if len(workIDs) == 0 {
		return counts, nil
	}

	query := `
		SELECT b.work_id, COUNT(r.id)
		FROM books b
		JOIN reviews r ON r.book_id = b.id
		WHERE b.work_id IN (?` + repeatPlaceholder(len(workIDs)-1) + `)
		GROUP BY b.work_id`

	args := make([]any, len(workIDs))
	for i, id := range workIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var workID string
		var count int
		if err := rows.Scan(&workID, &count); err != nil {
			return nil, err
		}
		counts[workID] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

// collectReviewsWithBooks drains a joined review+book result set.
func collectReviewsWithBooks(rows *sql.Rows) ([]*domain.Review, error) {
	var reviews []*domain.Review
	for rows.Next() {
		r, err := scanReviewWithBook(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reviews, nil
}

// repeatPlaceholder returns ", ?" repeated n times.
func repeatPlaceholder(n int) string {
	out := make([]byte, 0, n*3)
	for i := 0; i < n; i++ {
		out = append(out, ", ?"...)
	}
	return string(out)
}
