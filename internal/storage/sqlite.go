// Package storage provides a SQLite-backed implementation of the
// reminders backing service.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"zombiezen.com/go/log"

	"remindkit/internal/reminder"

	_ "modernc.org/sqlite"
)

// AccessPolicy decides how the first access request resolves. Once a
// request has run, the recorded consent wins and the policy is ignored.
type AccessPolicy string

const (
	AccessGrant AccessPolicy = "grant"
	AccessDeny  AccessPolicy = "deny"
)

// Options configures a SQLite store.
type Options struct {
	// Path is the database file path.
	Path string
	// DefaultListName names the list created on first open and used
	// for new reminders. Empty means "Reminders".
	DefaultListName string
	// Policy decides the outcome of the first access request.
	Policy AccessPolicy
}

// SQLite stores reminders in a SQLite database. It implements
// reminder.Service. IDs are UUID strings assigned on insert; the
// manager above never generates them.
type SQLite struct {
	db     *sql.DB
	policy AccessPolicy
}

// Open opens (or creates) the database at opts.Path, ensures the
// schema exists and seeds the default list.
func Open(ctx context.Context, opts Options) (*SQLite, error) {
	db, err := sql.Open("sqlite", opts.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	name := opts.DefaultListName
	if name == "" {
		name = "Reminders"
	}
	if err := seedDefaultList(ctx, db, name); err != nil {
		db.Close()
		return nil, err
	}

	policy := opts.Policy
	if policy == "" {
		policy = AccessGrant
	}

	log.Debugf(ctx, "opened reminder database at %s", opts.Path)
	return &SQLite{db: db, policy: policy}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS lists (
			id         TEXT    PRIMARY KEY,
			name       TEXT    NOT NULL,
			is_default INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS reminders (
			id         TEXT    PRIMARY KEY,
			list_id    TEXT    NOT NULL REFERENCES lists(id),
			title      TEXT    NOT NULL,
			notes      TEXT    NOT NULL DEFAULT '',
			due_at     TEXT,
			priority   INTEGER NOT NULL DEFAULT 0,
			completed  INTEGER NOT NULL DEFAULT 0,
			created_at TEXT    NOT NULL,
			updated_at TEXT    NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS access (
			id     INTEGER PRIMARY KEY CHECK (id = 1),
			status TEXT    NOT NULL
		)`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

func seedDefaultList(ctx context.Context, db *sql.DB, name string) error {
	var id string
	err := db.QueryRowContext(ctx, `SELECT id FROM lists WHERE is_default = 1`).Scan(&id)
	if err == nil {
		return nil
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("failed to look up default list: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO lists (id, name, is_default) VALUES (?, ?, 1)
	`, uuid.NewString(), name)
	if err != nil {
		return fmt.Errorf("failed to create default list: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// AuthorizationStatus reads the recorded consent. A missing record or
// a read failure reports unknown.
func (s *SQLite) AuthorizationStatus(ctx context.Context) reminder.AccessState {
	var status string
	err := s.db.QueryRowContext(ctx, `SELECT status FROM access WHERE id = 1`).Scan(&status)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Warnf(ctx, "failed to read access status: %v", err)
		}
		return reminder.AccessUnknown
	}

	switch status {
	case reminder.AccessAuthorized.String():
		return reminder.AccessAuthorized
	case reminder.AccessDenied.String():
		return reminder.AccessDenied
	default:
		return reminder.AccessUnknown
	}
}

// RequestAccess resolves the first request per the configured policy
// and records the outcome. Later requests return the recorded consent.
func (s *SQLite) RequestAccess(ctx context.Context) (reminder.AccessState, error) {
	if state := s.AuthorizationStatus(ctx); state != reminder.AccessUnknown {
		return state, nil
	}

	state := reminder.AccessAuthorized
	if s.policy == AccessDeny {
		state = reminder.AccessDenied
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO access (id, status) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET status = excluded.status
	`, state.String())
	if err != nil {
		return reminder.AccessUnknown, fmt.Errorf("failed to record access status: %w", err)
	}

	log.Infof(ctx, "reminders access %s", state)
	return state, nil
}

// Fetch returns the stored reminders matching f.
func (s *SQLite) Fetch(ctx context.Context, f reminder.Filter) ([]reminder.Reminder, error) {
	query := `
		SELECT id, list_id, title, notes, due_at, priority, completed
		FROM reminders ORDER BY created_at ASC
	`
	if f == reminder.FilterIncomplete {
		query = `
			SELECT id, list_id, title, notes, due_at, priority, completed
			FROM reminders WHERE completed = 0 ORDER BY created_at ASC
		`
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reminders: %w", err)
	}
	defer rows.Close()

	var out []reminder.Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Save inserts r when its ID is empty, assigning a fresh UUID, and
// updates the existing record otherwise. The stored priority is the
// canonical raw value.
func (s *SQLite) Save(ctx context.Context, r reminder.Reminder) error {
	now := time.Now().UTC().Format(time.RFC3339)

	var due any
	if r.DueAt != nil {
		due = r.DueAt.UTC().Format(time.RFC3339)
	}

	if r.ID == "" {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO reminders (id, list_id, title, notes, due_at, priority, completed, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, uuid.NewString(), r.ListID, r.Title, r.Notes, due, r.Priority.Raw(), boolInt(r.Completed), now, now)
		if err != nil {
			return fmt.Errorf("failed to insert reminder: %w", err)
		}
		return nil
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE reminders
		SET list_id = ?, title = ?, notes = ?, due_at = ?, priority = ?, completed = ?, updated_at = ?
		WHERE id = ?
	`, r.ListID, r.Title, r.Notes, due, r.Priority.Raw(), boolInt(r.Completed), now, r.ID)
	if err != nil {
		return fmt.Errorf("failed to update reminder: %w", err)
	}

	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("reminder %s not found", r.ID)
	}
	return nil
}

// Remove deletes the record.
func (s *SQLite) Remove(ctx context.Context, r reminder.Reminder) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM reminders WHERE id = ?`, r.ID)
	if err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}

	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("reminder %s not found", r.ID)
	}
	return nil
}

// DefaultList returns the list new reminders are assigned to.
func (s *SQLite) DefaultList(ctx context.Context) (reminder.ListRef, error) {
	var ref reminder.ListRef
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name FROM lists WHERE is_default = 1 LIMIT 1
	`).Scan(&ref.ID, &ref.Name)
	if err != nil {
		return reminder.ListRef{}, fmt.Errorf("failed to look up default list: %w", err)
	}
	return ref, nil
}

func scanReminder(rows *sql.Rows) (reminder.Reminder, error) {
	var r reminder.Reminder
	var due sql.NullString
	var priority, completed int

	if err := rows.Scan(&r.ID, &r.ListID, &r.Title, &r.Notes,
		&due, &priority, &completed); err != nil {
		return reminder.Reminder{}, fmt.Errorf("failed to scan reminder: %w", err)
	}

	if due.Valid {
		t, err := time.Parse(time.RFC3339, due.String)
		if err == nil {
			r.DueAt = &t
		}
	}
	r.Priority = reminder.PriorityFromRaw(priority)
	r.Completed = completed != 0

	return r, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
