package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/parkzone-core/internal/zone"
)

// Action is the kind of change an Entry records.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete:
		return true
	}
	return false
}

const (
	defaultLimit = 50
	maxLimit     = 500
)

// ErrInvalidEntry is returned by Record for entries missing required fields.
var ErrInvalidEntry = errors.New("journal: invalid entry")

// Entry is one recorded change.
type Entry struct {
	ID       string  `json:"id"`
	CameraID int64   `json:"camera_id"`
	ZoneID   zone.ID `json:"zone_id"`
	// PreviousID is the placeholder a created zone replaced.
	PreviousID zone.ID         `json:"previous_id,omitzero"`
	Action     Action          `json:"action"`
	Payload    json.RawMessage `json:"payload,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Zone decodes the payload.
func (e Entry) Zone() (zone.Zone, error) {
	var z zone.Zone
	if len(e.Payload) == 0 {
		return z, fmt.Errorf("entry %s has no payload", e.ID)
	}
	if err := json.Unmarshal(e.Payload, &z); err != nil {
		return z, fmt.Errorf("decoding entry %s: %w", e.ID, err)
	}
	return z, nil
}

// Filter selects entries. Zero fields match everything.
type Filter struct {
	CameraID int64
	ZoneID   zone.ID
	Action   Action
	Limit    int // default 50, max 500
	Offset   int
}

// ListResult is one page of entries, newest first.
type ListResult struct {
	Entries []Entry `json:"entries"`
	Total   int     `json:"total"`
	Limit   int     `json:"limit"`
	Offset  int     `json:"offset"`
}

// Repository stores journal entries.
type Repository interface {
	Record(ctx context.Context, e *Entry) error
	List(ctx context.Context, f Filter) (*ListResult, error)
}

// SQLiteRepository stores entries in the zone_journal table.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteRepository creates a repository on an already migrated database.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

// Record inserts e, filling ID and CreatedAt when empty.
func (r *SQLiteRepository) Record(ctx context.Context, e *Entry) error {
	if !e.Action.Valid() || e.ZoneID.IsZero() {
		return fmt.Errorf("%w: action %q zone %q", ErrInvalidEntry, e.Action, e.ZoneID)
	}
	if e.ID == "" {
		e.ID = "jrn-" + uuid.NewString()[:8]
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = r.now().UTC()
	}

	var payload any
	if len(e.Payload) > 0 {
		payload = string(e.Payload)
	}
	var previous any
	if !e.PreviousID.IsZero() {
		previous = e.PreviousID.String()
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO zone_journal (id, camera_id, zone_id, previous_id, action, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.CameraID, e.ZoneID.String(), previous, string(e.Action), payload,
		e.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting journal entry: %w", err)
	}
	return nil
}

// List returns the entries matching f, most recent first.
func (r *SQLiteRepository) List(ctx context.Context, f Filter) (*ListResult, error) {
	if f.Limit <= 0 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	var conds []string
	var args []any
	if f.CameraID != 0 {
		conds = append(conds, "camera_id = ?")
		args = append(args, f.CameraID)
	}
	if !f.ZoneID.IsZero() {
		conds = append(conds, "(zone_id = ? OR previous_id = ?)")
		args = append(args, f.ZoneID.String(), f.ZoneID.String())
	}
	if f.Action != "" {
		conds = append(conds, "action = ?")
		args = append(args, string(f.Action))
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	//nolint:gosec // WHERE is built from fixed conditions with ? placeholders
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM zone_journal "+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("counting journal entries: %w", err)
	}

	//nolint:gosec // WHERE is built from fixed conditions with ? placeholders
	query := "SELECT id, camera_id, zone_id, previous_id, action, payload, created_at FROM zone_journal " +
		where + " ORDER BY seq DESC LIMIT ? OFFSET ?"
	rows, err := r.db.QueryContext(ctx, query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, fmt.Errorf("querying journal entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating journal entries: %w", err)
	}

	return &ListResult{Entries: entries, Total: total, Limit: f.Limit, Offset: f.Offset}, nil
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var (
		e                  Entry
		zoneID, action, at string
		previous, payload  sql.NullString
	)
	if err := rows.Scan(&e.ID, &e.CameraID, &zoneID, &previous, &action, &payload, &at); err != nil {
		return Entry{}, fmt.Errorf("scanning journal entry: %w", err)
	}

	id, err := zone.ParseID(zoneID)
	if err != nil {
		return Entry{}, fmt.Errorf("journal entry %s: %w", e.ID, err)
	}
	e.ZoneID = id
	if previous.Valid {
		if prev, err := zone.ParseID(previous.String); err == nil {
			e.PreviousID = prev
		}
	}
	e.Action = Action(action)
	if payload.Valid && payload.String != "" {
		e.Payload = json.RawMessage(payload.String)
	}
	e.CreatedAt, err = time.Parse(time.RFC3339Nano, at)
	if err != nil {
		return Entry{}, fmt.Errorf("parsing journal timestamp %q: %w", at, err)
	}
	return e, nil
}
