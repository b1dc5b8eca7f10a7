package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// EventKind identifies what happened during a session.
type EventKind string

const (
	// EventSelect records a palette colour being committed.
	EventSelect EventKind = "select"
	// EventClear records the canvas being wiped.
	EventClear EventKind = "clear"
)

// Session is one run of the drawing loop.
type Session struct {
	ID         string
	StartedAt  time.Time
	EndedAt    *time.Time
	Width      int
	Height     int
	Frames     int64
	HandFrames int64
	Strokes    int64
	Clears     int64
}

// Event is a journaled palette selection or canvas clear.
type Event struct {
	ID        int64
	SessionID string
	Kind      EventKind
	Detail    string
	Frame     int64
	CreatedAt time.Time
}

// SessionRepository reads and writes sessions and their events.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create inserts a new session. An empty ID is filled with a fresh UUID and
// a zero StartedAt with the current time.
func (r *SessionRepository) Create(s *Session) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.StartedAt.IsZero() {
		s.StartedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO sessions (id, started_at, width, height, frames, hand_frames, strokes, clears)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.StartedAt, s.Width, s.Height, s.Frames, s.HandFrames, s.Strokes, s.Clears,
	)
	return err
}

const sessionColumns = `id, started_at, ended_at, width, height, frames, hand_frames, strokes, clears`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	s := &Session{}
	var ended sql.NullTime

	err := row.Scan(&s.ID, &s.StartedAt, &ended, &s.Width, &s.Height,
		&s.Frames, &s.HandFrames, &s.Strokes, &s.Clears)
	if err != nil {
		return nil, err
	}

	if ended.Valid {
		t := ended.Time
		s.EndedAt = &t
	}
	return s, nil
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	s, err := scanSession(r.db.QueryRow(
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s, nil
}

// List retrieves all sessions, newest first.
func (r *SessionRepository) List() ([]*Session, error) {
	rows, err := r.db.Query(
		`SELECT ` + sessionColumns + ` FROM sessions ORDER BY started_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// UpdateTotals writes the running counters of s.
func (r *SessionRepository) UpdateTotals(s *Session) error {
	result, err := r.db.Exec(
		`UPDATE sessions SET frames = ?, hand_frames = ?, strokes = ?, clears = ?
		 WHERE id = ?`,
		s.Frames, s.HandFrames, s.Strokes, s.Clears, s.ID,
	)
	if err != nil {
		return err
	}
	return expectOne(result)
}

// End writes the final counters of s and stamps its end time.
func (r *SessionRepository) End(s *Session) error {
	now := time.Now()

	result, err := r.db.Exec(
		`UPDATE sessions SET ended_at = ?, frames = ?, hand_frames = ?, strokes = ?, clears = ?
		 WHERE id = ?`,
		now, s.Frames, s.HandFrames, s.Strokes, s.Clears, s.ID,
	)
	if err != nil {
		return err
	}
	if err := expectOne(result); err != nil {
		return err
	}

	s.EndedAt = &now
	return nil
}

// Delete removes a session and, through the foreign key, its events.
func (r *SessionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return expectOne(result)
}

// AddEvent appends an event to its session.
func (r *SessionRepository) AddEvent(e *Event) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}

	result, err := r.db.Exec(
		`INSERT INTO session_events (session_id, kind, detail, frame, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		e.SessionID, string(e.Kind), e.Detail, e.Frame, e.CreatedAt,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

// Events retrieves the events of a session in the order they happened.
func (r *SessionRepository) Events(sessionID string) ([]*Event, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, kind, detail, frame, created_at
		 FROM session_events WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		e := &Event{}
		var kind string
		if err := rows.Scan(&e.ID, &e.SessionID, &kind, &e.Detail, &e.Frame, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Kind = EventKind(kind)
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

func expectOne(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
