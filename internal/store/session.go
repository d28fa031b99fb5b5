package store

import (
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Session represents a recorded tracking session stored in the database.
type Session struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	Frames    int        `json:"frames"`
}

// SessionSample represents one recorded frame of tracking state.
type SessionSample struct {
	Seq         int     `json:"seq"`
	Detected    bool    `json:"detected"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Gesture     string  `json:"gesture"`
	Confidence  float64 `json:"confidence"`
	TimestampMs float64 `json:"timestamp_ms"`
}

// SessionRepository provides CRUD operations for tracking sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create inserts a new session into the database.
func (r *SessionRepository) Create(s *Session) error {
	s.StartedAt = time.Now()

	_, err := r.db.Exec(
		`INSERT INTO sessions (id, name, started_at, frames)
		 VALUES (?, ?, ?, ?)`,
		s.ID, s.Name, s.StartedAt, s.Frames,
	)
	return err
}

// End marks a session as finished and records its final frame count.
func (r *SessionRepository) End(id string, frames int) error {
	now := time.Now()

	result, err := r.db.Exec(
		`UPDATE sessions SET ended_at = ?, frames = ? WHERE id = ?`,
		now, frames, id,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	s := &Session{}
	var endedAt sql.NullTime

	err := r.db.QueryRow(
		`SELECT id, name, started_at, ended_at, frames
		 FROM sessions WHERE id = ?`,
		id,
	).Scan(&s.ID, &s.Name, &s.StartedAt, &endedAt, &s.Frames)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if endedAt.Valid {
		s.EndedAt = &endedAt.Time
	}
	return s, nil
}

// List retrieves all sessions, most recent first.
func (r *SessionRepository) List() ([]*Session, error) {
	rows, err := r.db.Query(
		`SELECT id, name, started_at, ended_at, frames
		 FROM sessions ORDER BY started_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		s := &Session{}
		var endedAt sql.NullTime

		if err := rows.Scan(&s.ID, &s.Name, &s.StartedAt, &endedAt, &s.Frames); err != nil {
			return nil, err
		}

		if endedAt.Valid {
			s.EndedAt = &endedAt.Time
		}
		sessions = append(sessions, s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// Delete removes a session and its samples by ID.
func (r *SessionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// AppendSamples inserts a batch of samples for a session in a single
// transaction and advances the session frame count.
func (r *SessionRepository) AppendSamples(sessionID string, samples []SessionSample) error {
	if len(samples) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO session_samples (session_id, seq, detected, x, y, gesture, confidence, timestamp_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, sm := range samples {
		detected := 0
		if sm.Detected {
			detected = 1
		}
		if _, err := stmt.Exec(sessionID, sm.Seq, detected, sm.X, sm.Y, sm.Gesture, sm.Confidence, sm.TimestampMs); err != nil {
			return err
		}
	}

	_, err = tx.Exec(`UPDATE sessions SET frames = frames + ? WHERE id = ?`,
		len(samples), sessionID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// GetSamples retrieves all samples for a session in sequence order.
func (r *SessionRepository) GetSamples(sessionID string) ([]SessionSample, error) {
	rows, err := r.db.Query(
		`SELECT seq, detected, x, y, gesture, confidence, timestamp_ms
		 FROM session_samples
		 WHERE session_id = ?
		 ORDER BY seq`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []SessionSample
	for rows.Next() {
		var sm SessionSample
		var detected int
		if err := rows.Scan(&sm.Seq, &detected, &sm.X, &sm.Y, &sm.Gesture, &sm.Confidence, &sm.TimestampMs); err != nil {
			return nil, err
		}
		sm.Detected = detected != 0
		samples = append(samples, sm)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return samples, nil
}
