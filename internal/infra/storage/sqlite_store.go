package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/MRamiBalles/PuzzleEspejos/internal/events"
)

const prefKeyInputMode = "input_mode"

// SQLiteStore implements Store on top of the local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) EnsureProfile() (Profile, error) {
	var p Profile
	err := s.db.QueryRow(`SELECT id, name FROM profile WHERE profile_key = 1`).Scan(&p.ID, &p.Name)
	if err == nil {
		return p, nil
	}
	if err != sql.ErrNoRows {
		return Profile{}, fmt.Errorf("failed to read profile: %w", err)
	}

	p = Profile{ID: newProfileID()}
	_, err = s.db.Exec(`INSERT INTO profile (profile_key, id, name) VALUES (1, ?, ?)`, p.ID, p.Name)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to create profile: %w", err)
	}
	return p, nil
}

func (s *SQLiteStore) SetName(name string) error {
	if _, err := s.EnsureProfile(); err != nil {
		return err
	}
	_, err := s.db.Exec(`UPDATE profile SET name = ? WHERE profile_key = 1`, name)
	return err
}

func (s *SQLiteStore) Digits() (map[int]string, error) {
	rows, err := s.db.Query(`SELECT day_id, digits FROM digits`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int]string)
	for rows.Next() {
		var dayID int
		var d string
		if err := rows.Scan(&dayID, &d); err != nil {
			return nil, err
		}
		out[dayID] = d
	}
	return out, rows.Err()
}

func (s *SQLiteStore) SetDigit(dayID int, digits string) error {
	query := `
		INSERT INTO digits (day_id, digits, granted_at) VALUES (?, ?, ?)
		ON CONFLICT(day_id) DO UPDATE SET digits=excluded.digits, granted_at=excluded.granted_at
	`
	_, err := s.db.Exec(query, dayID, digits, time.Now())
	return err
}

func (s *SQLiteStore) FinalCode(dayIDs []int) (string, error) {
	all, err := s.Digits()
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, id := range dayIDs {
		d, ok := all[id]
		if !ok || d == "" {
			return "", nil
		}
		sb.WriteString(d)
	}
	return sb.String(), nil
}

func (s *SQLiteStore) AddHistory(entry HistoryEntry) error {
	query := `
		INSERT INTO history (ts, day, accuracy, time_used_sec, user_id, name)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.Exec(query,
		entry.Timestamp, entry.Day, entry.Accuracy, entry.TimeUsedSec, entry.UserID, entry.Name,
	)
	return err
}

func (s *SQLiteStore) History() ([]HistoryEntry, error) {
	query := `SELECT ts, day, accuracy, time_used_sec, user_id, name FROM history ORDER BY seq DESC`
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.Timestamp, &e.Day, &e.Accuracy, &e.TimeUsedSec, &e.UserID, &e.Name); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) InputMode() (string, error) {
	var mode string
	err := s.db.QueryRow(`SELECT value FROM prefs WHERE key = ?`, prefKeyInputMode).Scan(&mode)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return mode, nil
}

func (s *SQLiteStore) SetInputMode(mode string) error {
	query := `
		INSERT INTO prefs (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value
	`
	_, err := s.db.Exec(query, prefKeyInputMode, mode)
	return err
}

func (s *SQLiteStore) ResetAll() error {
	for _, query := range []string{
		`DELETE FROM profile`,
		`DELETE FROM digits`,
		`DELETE FROM history`,
		`DELETE FROM prefs`,
	} {
		if _, err := s.db.Exec(query); err != nil {
			return err
		}
	}
	_, err := s.EnsureProfile()
	return err
}

// ---------------------------------------------------------
// SQLiteEventPersister
// ---------------------------------------------------------

// SQLiteEventPersister writes session events through to the audit table.
type SQLiteEventPersister struct {
	db *sql.DB
}

func NewSQLiteEventPersister(db *sql.DB) *SQLiteEventPersister {
	return &SQLiteEventPersister{db: db}
}

func (p *SQLiteEventPersister) Append(event events.GameEvent) error {
	payloadBytes, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	query := `
		INSERT INTO session_events (id, timestamp, event_type, user_id, day, payload)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = p.db.Exec(query,
		event.ID, event.Timestamp, string(event.Type), event.UserID, event.Day, string(payloadBytes),
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}
