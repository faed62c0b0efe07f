package sqlite

import (
	"context"
	"database/sql"
	"encoding/json/v2"

	"github.com/shelfmarkapp/shelfmark-server/internal/domain"
	"github.com/shelfmarkapp/shelfmark-server/internal/errors"
)

// bookColumns is the ordered list of columns selected in book queries.
// Must match the scan order in scanBook.
const bookColumns = `id, created_at, updated_at, work_id, title, authors,
	cover_url, page_count, published_year, description`

// scanBook scans a sql.Row (or sql.Rows via its Scan method) into a domain.Book.
func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var b domain.Book

	var (
		createdAt   string
		updatedAt   string
		authorsJSON string
		coverURL    sql.NullString
		description sql.NullString
	)

	err := scanner.Scan(
		&b.ID,
		&createdAt,
		&updatedAt,
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

	b.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	b.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(authorsJSON), &b.Authors); err != nil {
		return nil, err
	}
	if coverURL.Valid {
		b.CoverURL = coverURL.String
	}
	if description.Valid {
		b.Description = description.String
	}

	return &b, nil
}

// marshalAuthors encodes the author list for storage, never as JSON null.
func marshalAuthors(authors []string) (string, error) {
	if authors == nil {
		authors = []string{}
	}
	data, err := json.Marshal(authors)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// unmarshalAuthors decodes a stored author list.
func unmarshalAuthors(data string, dst *[]string) error {
	if data == "" {
		*dst = nil
		return nil
	}
	return json.Unmarshal([]byte(data), dst)
}

// CreateBook inserts a new book.
// Returns errors.ErrAlreadyExists if the work ID is already tracked.
func (s *Store) CreateBook(ctx context.Context, book *domain.Book) error {
	authorsJSON, err := marshalAuthors(book.Authors)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO books (
			id, created_at, updated_at, work_id, title, authors,
			cover_url, page_count, published_year, description
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		book.ID,
		formatTime(book.CreatedAt),
		formatTime(book.UpdatedAt),
		book.WorkID,
		book.Title,
		authorsJSON,
		nullString(book.CoverURL),
		book.PageCount,
		book.PublishedYear,
		nullString(book.Description),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return errors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// FindOrCreateBook returns the tracked book for a work ID, creating it
// from the given record when it is not yet known. Concurrent callers
// racing on the same work converge on a single row.
func (s *Store) FindOrCreateBook(ctx context.Context, book *domain.Book) (*domain.Book, error) {
	existing, err := s.GetBookByWorkID(ctx, book.WorkID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, errors.ErrNotFound) {
		return nil, err
	}

	if err := s.CreateBook(ctx, book); err != nil && !errors.Is(err, errors.ErrAlreadyExists) {
		return nil, err
	}
	return s.GetBookByWorkID(ctx, book.WorkID)
}

// GetBook retrieves a book by ID.
// Returns errors.ErrNotFound if the book does not exist.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = ?`, id)

	b, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// GetBookByWorkID retrieves a book by its catalog work ID.
// Returns errors.ErrNotFound if the book does not exist.
func (s *Store) GetBookByWorkID(ctx context.Context, workID string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE work_id = ?`, workID)

	b, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// UpdateBook performs a full row update on an existing book.
// Returns errors.ErrNotFound if the book does not exist.
func (s *Store) UpdateBook(ctx context.Context, book *domain.Book) error {
	authorsJSON, err := marshalAuthors(book.Authors)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE books SET
			updated_at = ?,
			title = ?,
			authors = ?,
			cover_url = ?,
			page_count = ?,
			published_year = ?,
			description = ?
		WHERE id = ?`,
		formatTime(book.UpdatedAt),
		book.Title,
		authorsJSON,
		nullString(book.CoverURL),
		book.PageCount,
		book.PublishedYear,
		nullString(book.Description),
		book.ID,
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
