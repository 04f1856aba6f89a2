// Package sqlite provides a SQLite-backed quote store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/EcMscS/Footnote/internal/adapters/storage"
	"github.com/EcMscS/Footnote/internal/adapters/storage/sqlite/migrations"
	"github.com/EcMscS/Footnote/internal/domain"
	"github.com/EcMscS/Footnote/internal/ports"
)

const listSQL = `SELECT id, text, title, author, media_type, date_created
FROM quotes
ORDER BY date_created IS NULL, date_created DESC, seq DESC`

// Store persists quotes in a single SQLite database file.
type Store struct {
	db      *sql.DB
	changes storage.Listeners
}

// Open opens the database at path, creating it if needed, and applies the
// embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}

	dsn := filepath.Clean(path) +
		"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// SQLite allows a single writer per database file.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if err := ApplyMigrations(ctx, db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string { return "quote-store" }

// Check implements ports.HealthChecker.
func (s *Store) Check(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return domain.NewUnavailableError("sqlite", err.Error())
	}

	return nil
}

// List returns every quote in display order.
func (s *Store) List(ctx context.Context) ([]domain.Quote, error) {
	rows, err := s.db.QueryContext(ctx, listSQL)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}
	defer rows.Close()

	var out []domain.Quote

	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}

		out = append(out, q)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quotes: %w", err)
	}

	return out, nil
}

// Get returns one quote by identity.
func (s *Store) Get(ctx context.Context, id string) (domain.Quote, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, text, title, author, media_type, date_created FROM quotes WHERE id = ?`, id)

	q, err := scanQuote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Quote{}, domain.NewNotFoundError("quote", id)
	}

	if err != nil {
		return domain.Quote{}, fmt.Errorf("get quote %s: %w", id, err)
	}

	return q, nil
}

// Create inserts q and notifies listeners once the insert has committed.
func (s *Store) Create(ctx context.Context, q domain.Quote) (domain.Quote, error) {
	if q.ID == "" {
		q.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO quotes (id, text, title, author, media_type, date_created)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		q.ID,
		nullString(q.Text),
		nullString(q.Title),
		nullString(q.Author),
		q.MediaType,
		nullMillis(q.DateCreated),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Quote{}, domain.NewConflictError("quote", "id "+q.ID+" already exists")
		}

		return domain.Quote{}, fmt.Errorf("insert quote: %w", err)
	}

	s.changes.Notify(ctx)

	return q, nil
}

// Delete removes a quote by identity and notifies listeners.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM quotes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete quote %s: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete quote %s: %w", id, err)
	}

	if n == 0 {
		return domain.NewNotFoundError("quote", id)
	}

	s.changes.Notify(ctx)

	return nil
}

// Subscribe registers a change listener.
func (s *Store) Subscribe(listener ports.ChangeListener) func() {
	return s.changes.Subscribe(listener)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanQuote(row scanner) (domain.Quote, error) {
	var (
		q                   domain.Quote
		text, title, author sql.NullString
		date                sql.NullInt64
	)

	if err := row.Scan(&q.ID, &text, &title, &author, &q.MediaType, &date); err != nil {
		return domain.Quote{}, err
	}

	q.Text = stringPtr(text)
	q.Title = stringPtr(title)
	q.Author = stringPtr(author)

	if date.Valid {
		q.DateCreated = fromMillis(date.Int64)
	}

	return q, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}

	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}

	return &s.String
}

func nullMillis(t time.Time) sql.NullInt64 {
	if t.IsZero() {
		return sql.NullInt64{}
	}

	return sql.NullInt64{Int64: t.UTC().UnixMilli(), Valid: true}
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}

	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
