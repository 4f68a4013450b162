// Package history keeps a local record of the short links created through the CLI.
//
// Entries live in SQLite (modernc.org/sqlite) by default, or in a remote
// libSQL database when the DSN is a libsql:// or wss:// URL.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"

	"github.com/s0up4200/elnk/elnk"
)

// ErrNotFound is returned when no entry exists for a link
var ErrNotFound = errors.New("history entry not found")

const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Entry is one recorded short link
type Entry struct {
	LinkID      elnk.ID   `json:"linkId"`
	ShortURL    string    `json:"shortUrl,omitempty"`
	OriginalURL string    `json:"originalUrl"`
	Alias       string    `json:"alias,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	RecordedAt  time.Time `json:"recordedAt"`
}

// Link converts the entry into the shape filters evaluate
func (e Entry) Link() elnk.Link {
	return elnk.Link{
		ID:          e.LinkID,
		Alias:       e.Alias,
		Destination: e.OriginalURL,
		CreatedAt:   elnk.Timestamp{Time: e.CreatedAt},
	}
}

// Store persists history entries
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

// driverName picks the database/sql driver for dsn
func driverName(dsn string) string {
	if strings.Contains(dsn, "libsql://") || strings.Contains(dsn, "wss://") {
		return "libsql"
	}
	return "sqlite"
}

// Open connects to dsn and creates the schema if needed. Parent directories of
// a local database file are created.
func Open(ctx context.Context, dsn string, logger zerolog.Logger) (*Store, error) {
	driver := driverName(dsn)

	if driver == "sqlite" {
		if err := ensureDir(dsn); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if driver == "sqlite" {
		// sqlite has a single writer and :memory: databases are per connection
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}

	s := &Store{
		db:     db,
		logger: logger.With().Str("component", "history").Str("driver", driver).Logger(),
	}

	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Debug().Msg("History store ready")
	return s, nil
}

func ensureDir(dsn string) error {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create history directory %s: %w", dir, err)
	}
	return nil
}

func (s *Store) migrate(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS links (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		link_id TEXT NOT NULL UNIQUE,
		short_url TEXT NOT NULL DEFAULT '',
		original_url TEXT NOT NULL,
		alias TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		recorded_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_links_recorded_at ON links(recorded_at);
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to migrate history database: %w", err)
	}
	return nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores a created link, replacing any earlier entry for the same id
func (s *Store) Record(ctx context.Context, short *elnk.ShortLink) error {
	if short == nil || short.ID == "" {
		return fmt.Errorf("cannot record a link without an id")
	}

	created := short.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	query := `INSERT INTO links (link_id, short_url, original_url, alias, created_at, recorded_at)
			  VALUES (?, ?, ?, ?, ?, ?)
			  ON CONFLICT(link_id) DO UPDATE SET
			  	short_url = excluded.short_url,
			  	original_url = excluded.original_url,
			  	alias = excluded.alias,
			  	recorded_at = excluded.recorded_at`

	_, err := s.db.ExecContext(ctx, query,
		short.ID.String(),
		short.ShortURL,
		short.OriginalURL,
		aliasOf(short),
		formatTime(created),
		formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("failed to record link %s: %w", short.ID, err)
	}

	s.logger.Debug().Str("link_id", short.ID.String()).Msg("Recorded link")
	return nil
}

// Remove deletes the entry for linkID. It reports whether an entry existed.
func (s *Store) Remove(ctx context.Context, linkID elnk.ID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM links WHERE link_id = ?`, linkID.String())
	if err != nil {
		return false, fmt.Errorf("failed to remove link %s: %w", linkID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Get returns the entry for linkID
func (s *Store) Get(ctx context.Context, linkID elnk.ID) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT link_id, short_url, original_url, alias, created_at, recorded_at
		FROM links WHERE link_id = ?`, linkID.String())

	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// List returns up to limit entries, most recently recorded first. A
// non-positive limit returns every entry.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT link_id, short_url, original_url, alias, created_at, recorded_at
		FROM links ORDER BY recorded_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	return entries, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*Entry, error) {
	var (
		entry               Entry
		linkID              string
		createdAt, recorded string
	)

	if err := row.Scan(&linkID, &entry.ShortURL, &entry.OriginalURL, &entry.Alias, &createdAt, &recorded); err != nil {
		return nil, err
	}

	entry.LinkID = elnk.ID(linkID)

	var err error
	if entry.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
	}
	if entry.RecordedAt, err = time.Parse(timeLayout, recorded); err != nil {
		return nil, fmt.Errorf("invalid recorded_at %q: %w", recorded, err)
	}
	return &entry, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// aliasOf returns the slug of short, taken from its short URL when no custom alias was given
func aliasOf(short *elnk.ShortLink) string {
	if short.CustomAlias != "" {
		return short.CustomAlias
	}
	if i := strings.LastIndexByte(short.ShortURL, '/'); i >= 0 {
		return short.ShortURL[i+1:]
	}
	return ""
}
