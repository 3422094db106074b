// Package storage persists the player profile, granted reward digits and
// play history. The session core only depends on the narrow Store contract,
// never on the concrete medium behind it.
package storage

import "time"

// Profile identifies the local player. Created once if absent.
type Profile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// HistoryEntry is one finished session, most-recent-first in listings.
type HistoryEntry struct {
	Timestamp   time.Time `json:"ts"`
	Day         int       `json:"day"`
	Accuracy    int       `json:"accuracy"`
	TimeUsedSec int       `json:"time_used_sec"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
}

// Store is the key/value persistence contract consumed by the session core.
type Store interface {
	// EnsureProfile returns the stored profile, creating one with a fresh
	// ID if none exists yet.
	EnsureProfile() (Profile, error)
	SetName(name string) error

	// Digits maps day id -> granted reward string.
	Digits() (map[int]string, error)
	SetDigit(dayID int, digits string) error

	// FinalCode concatenates the digits of the given days in order.
	// It returns "" if any day's digit is still missing.
	FinalCode(dayIDs []int) (string, error)

	AddHistory(entry HistoryEntry) error
	History() ([]HistoryEntry, error)

	// InputMode stores the player's tap/drag preference ("" if unset).
	InputMode() (string, error)
	SetInputMode(mode string) error

	// ResetAll wipes profile, digits and history, then recreates a profile.
	ResetAll() error
}
