// Package calendar persists scheduled events in a SQLite database under the
// sandbox root.
package calendar

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Cyclone1070/nyx/internal/sandbox"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// DirName is the directory under the sandbox root holding assistant state.
const DirName = sandbox.StateDir

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	starts_at  INTEGER NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_starts_at ON events(starts_at);
`

// Event is one calendar entry. Times are stored with millisecond precision.
type Event struct {
	ID      string
	Title   string
	When    time.Time
	Created time.Time
}

// Store is safe for concurrent use.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// DefaultPath returns <root>/.nyx/calendar.db.
func DefaultPath(root string) string {
	return filepath.Join(root, DirName, "calendar.db")
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, &StoreError{Op: "open", Cause: err}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &StoreError{Op: "open", Cause: err}
	}
	// one writer at a time; sqlite serialises anyway
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, &StoreError{Op: "migrate", Cause: err}
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Add stores ev under a fresh id and returns the stored copy.
func (s *Store) Add(ctx context.Context, ev Event) (Event, error) {
	ev.Title = strings.TrimSpace(ev.Title)
	if ev.Title == "" {
		return Event{}, fmt.Errorf("%w: title is required", ErrInvalidEvent)
	}
	if ev.When.IsZero() {
		return Event{}, fmt.Errorf("%w: time is required", ErrInvalidEvent)
	}
	ev.ID = uuid.NewString()
	ev.When = fromMillis(ev.When.UnixMilli())
	ev.Created = fromMillis(s.now().UnixMilli())

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (id, title, starts_at, created_at) VALUES (?, ?, ?, ?)`,
		ev.ID, ev.Title, ev.When.UnixMilli(), ev.Created.UnixMilli())
	if err != nil {
		return Event{}, &StoreError{Op: "add", Cause: err}
	}
	return ev, nil
}

// Upcoming returns events in [from, from+days], earliest first.
func (s *Store) Upcoming(ctx context.Context, from time.Time, days int) ([]Event, error) {
	until := from.AddDate(0, 0, days)
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, starts_at, created_at FROM events
		 WHERE starts_at >= ? AND starts_at <= ?
		 ORDER BY starts_at, created_at, id`,
		from.UnixMilli(), until.UnixMilli())
	if err != nil {
		return nil, &StoreError{Op: "upcoming", Cause: err}
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			ev              Event
			starts, created int64
		)
		if err := rows.Scan(&ev.ID, &ev.Title, &starts, &created); err != nil {
			return nil, &StoreError{Op: "upcoming", Cause: err}
		}
		ev.When = fromMillis(starts)
		ev.Created = fromMillis(created)
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "upcoming", Cause: err}
	}
	return events, nil
}

// Delete removes the event with the given id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return &StoreError{Op: "delete", Cause: err}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return &StoreError{Op: "delete", Cause: err}
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrEventNotFound, id)
	}
	return nil
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
