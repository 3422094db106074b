// Package gate decides, per calendar day, whether a puzzle session may
// start. All decisions are pure functions of the configured event and a
// caller-supplied instant, so the host can safely re-poll every second to
// animate a countdown.
//
// "Today" is always computed in the fixed event time zone, never in the
// viewer's local zone: the instant is shifted by the configured offset
// before calendar fields are read.
package gate

import (
	"time"

	"github.com/MRamiBalles/PuzzleEspejos/internal/domain/day"
)

// Reason explains why a gate is closed.
type Reason string

const (
	ReasonNoDay   Reason = "NO_DAY"
	ReasonNotYet  Reason = "NOT_YET"
	ReasonExpired Reason = "EXPIRED"
)

// Status is the result of a gate query. Never persisted; recomputed on
// demand from wall-clock time.
type Status struct {
	OK          bool   `json:"ok"`
	Reason      Reason `json:"reason,omitempty"`
	OpenEpochMs int64  `json:"open_epoch_ms,omitempty"`
}

// Scheduler evaluates gate status against a single event configuration.
type Scheduler struct {
	event *day.Event
	zone  *time.Location
}

// NewScheduler builds a scheduler for the event. The event time zone is
// fixed at construction from Game.EventTzOffsetMinute.
func NewScheduler(event *day.Event) *Scheduler {
	offset := event.Game.EventTzOffsetMinute
	return &Scheduler{
		event: event,
		zone:  time.FixedZone("event", offset*60),
	}
}

// eventDate reads the calendar date of an instant in the event zone.
func (s *Scheduler) eventDate(now time.Time) day.Date {
	t := now.In(s.zone)
	return day.Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// openInstant returns event-zone midnight of the day's open date as an
// absolute instant.
func (s *Scheduler) openInstant(d day.Config) time.Time {
	return time.Date(d.OpenDate.Year, d.OpenDate.Month, d.OpenDate.Day, 0, 0, 0, 0, s.zone)
}

// IsOpen reports whether the day's session may start at the given instant.
func (s *Scheduler) IsOpen(d day.Config, now time.Time) bool {
	return s.Status(d, now).OK
}

// Status evaluates the gate for one day.
//
// Under LockTodayOnly the day is open exactly on its calendar date: before
// it the status is NOT_YET with the opening instant attached, after it the
// day has re-closed and the status is EXPIRED. Under LockCumulative the day
// opens at its midnight and stays open forever.
func (s *Scheduler) Status(d day.Config, now time.Time) Status {
	open := s.openInstant(d)
	switch s.event.Game.LockMode {
	case day.LockCumulative:
		if now.Before(open) {
			return Status{Reason: ReasonNotYet, OpenEpochMs: open.UnixMilli()}
		}
		return Status{OK: true}
	default: // LockTodayOnly
		today := s.eventDate(now)
		if today.Before(d.OpenDate) {
			return Status{Reason: ReasonNotYet, OpenEpochMs: open.UnixMilli()}
		}
		if d.OpenDate.Before(today) {
			return Status{Reason: ReasonExpired}
		}
		return Status{OK: true}
	}
}

// StatusByID looks the day up first; an unknown id yields NO_DAY.
func (s *Scheduler) StatusByID(id int, now time.Time) Status {
	d, ok := s.event.ByID(id)
	if !ok {
		return Status{Reason: ReasonNoDay}
	}
	return s.Status(d, now)
}

// ApplicableDay picks the day the host should surface as "today's puzzle"
// without the caller knowing the lock policy. Under LockTodayOnly it is the
// day whose open date equals today; under LockCumulative it is the latest
// day whose open date has passed. Both fall back to the earliest configured
// day when nothing matches.
func (s *Scheduler) ApplicableDay(now time.Time) day.Config {
	days := s.event.Days // sorted by id at load
	switch s.event.Game.LockMode {
	case day.LockCumulative:
		latest := days[0]
		found := false
		for _, d := range days {
			if !now.Before(s.openInstant(d)) {
				latest = d
				found = true
			}
		}
		if !found {
			return days[0]
		}
		return latest
	default: // LockTodayOnly
		today := s.eventDate(now)
		for _, d := range days {
			if d.OpenDate == today {
				return d
			}
		}
		return days[0]
	}
}
