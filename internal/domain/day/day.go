// Package day defines the immutable event configuration: which calendar
// days exist, what picture and reward each one carries, and the global
// game parameters.
// This package is PURE and must NOT import any infrastructure packages.
package day

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"
)

// LockMode selects how the temporal gate treats a day's open date.
type LockMode string

const (
	// LockTodayOnly opens a day on its calendar date and re-closes it after.
	LockTodayOnly LockMode = "todayOnly"
	// LockCumulative opens a day at its midnight and keeps it open forever.
	LockCumulative LockMode = "cumulative"
)

// Config is a single event day. Immutable after load.
type Config struct {
	ID           int    `json:"id"`
	Title        string `json:"title"`
	ImageRef     string `json:"image"`
	RewardDigits string `json:"reward"` // "2" or zero-padded "02"
	OpenDate     Date   `json:"open_date"`
}

// Date is a calendar date with no time-of-day component.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate reads a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Before reports whether d is an earlier calendar date than other.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// Game holds the global difficulty and gating parameters shared by all days.
type Game struct {
	Cols                int      `json:"cols"`
	Rows                int      `json:"rows"`
	Seconds             int      `json:"seconds"`
	PassThreshold       int      `json:"pass_threshold"`
	LockMode            LockMode `json:"lock_mode"`
	EventTzOffsetMinute int      `json:"event_tz_offset_minutes"`
}

// Form configures the external submission channel. An empty URL means the
// channel is closed and no submission is offered.
type Form struct {
	URL     string            `json:"url"`
	Entries map[string]string `json:"entries"` // payload field -> entry.N key
}

// Event is the full loaded event configuration: days sorted by ID plus the
// game and form blocks.
type Event struct {
	Days []Config `json:"days"`
	Game Game     `json:"game"`
	Form Form     `json:"form"`
}

// ByID returns the configuration for a day, or false if the day does not
// exist. A missing day is fatal to the caller's session; there is no
// guessed fallback config.
func (e *Event) ByID(id int) (Config, bool) {
	for _, d := range e.Days {
		if d.ID == id {
			return d, true
		}
	}
	return Config{}, false
}

// Load reads and validates an event configuration file.
func Load(path string) (*Event, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read event config: %w", err)
	}
	var e Event
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, fmt.Errorf("failed to parse event config: %w", err)
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	sort.Slice(e.Days, func(i, j int) bool { return e.Days[i].ID < e.Days[j].ID })
	return &e, nil
}

// Validate checks the structural invariants the engine depends on.
func (e *Event) Validate() error {
	if len(e.Days) == 0 {
		return fmt.Errorf("event config has no days")
	}
	if e.Game.Cols < 1 || e.Game.Rows < 1 {
		return fmt.Errorf("invalid grid %dx%d", e.Game.Cols, e.Game.Rows)
	}
	if (e.Game.Cols*e.Game.Rows)%2 != 0 {
		return fmt.Errorf("grid %dx%d has odd cell count", e.Game.Cols, e.Game.Rows)
	}
	if e.Game.Seconds < 1 {
		return fmt.Errorf("invalid session length %d", e.Game.Seconds)
	}
	if e.Game.PassThreshold < 0 || e.Game.PassThreshold > 100 {
		return fmt.Errorf("invalid pass threshold %d", e.Game.PassThreshold)
	}
	switch e.Game.LockMode {
	case LockTodayOnly, LockCumulative:
	default:
		return fmt.Errorf("unknown lock mode %q", e.Game.LockMode)
	}
	seen := make(map[int]bool)
	for _, d := range e.Days {
		if seen[d.ID] {
			return fmt.Errorf("duplicate day id %d", d.ID)
		}
		seen[d.ID] = true
		if l := len(d.RewardDigits); l < 1 || l > 2 {
			return fmt.Errorf("day %d: reward %q must be 1 or 2 digits", d.ID, d.RewardDigits)
		}
		for _, r := range d.RewardDigits {
			if r < '0' || r > '9' {
				return fmt.Errorf("day %d: reward %q is not numeric", d.ID, d.RewardDigits)
			}
		}
	}
	return nil
}
