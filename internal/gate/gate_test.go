package gate

import (
	"testing"
	"time"

	"github.com/MRamiBalles/PuzzleEspejos/internal/domain/day"
)

// The event runs in UTC+7 (offset 420 minutes) in all tests here.
func testEvent(mode day.LockMode) *day.Event {
	return &day.Event{
		Days: []day.Config{
			{ID: 1, Title: "Day 1", RewardDigits: "2", OpenDate: day.Date{Year: 2026, Month: time.February, Day: 15}},
			{ID: 2, Title: "Day 2", RewardDigits: "2", OpenDate: day.Date{Year: 2026, Month: time.February, Day: 16}},
			{ID: 3, Title: "Day 3", RewardDigits: "02", OpenDate: day.Date{Year: 2026, Month: time.February, Day: 17}},
		},
		Game: day.Game{Cols: 4, Rows: 3, Seconds: 90, PassThreshold: 80, LockMode: mode, EventTzOffsetMinute: 420},
	}
}

func eventZone() *time.Location {
	return time.FixedZone("event", 420*60)
}

func TestTodayOnlyBoundaries(t *testing.T) {
	s := NewScheduler(testEvent(day.LockTodayOnly))
	d2, _ := testEvent(day.LockTodayOnly).ByID(2)

	// Event-zone midnight of the 16th as an absolute instant.
	wantOpen := time.Date(2026, time.February, 16, 0, 0, 0, 0, eventZone()).UnixMilli()

	// The day before: NOT_YET with the opening instant attached.
	before := time.Date(2026, time.February, 15, 12, 0, 0, 0, eventZone())
	st := s.Status(d2, before)
	if st.OK || st.Reason != ReasonNotYet {
		t.Fatalf("Expected NOT_YET on the 15th, got %+v", st)
	}
	if st.OpenEpochMs != wantOpen {
		t.Errorf("Expected open instant %d, got %d", wantOpen, st.OpenEpochMs)
	}

	// On the date: open, from midnight to the last second of the day.
	for _, now := range []time.Time{
		time.Date(2026, time.February, 16, 0, 0, 0, 0, eventZone()),
		time.Date(2026, time.February, 16, 23, 59, 59, 0, eventZone()),
	} {
		if st := s.Status(d2, now); !st.OK {
			t.Errorf("Expected open at %v, got %+v", now, st)
		}
	}

	// The day after: re-closed, not open forever.
	after := time.Date(2026, time.February, 17, 0, 0, 1, 0, eventZone())
	st = s.Status(d2, after)
	if st.OK || st.Reason != ReasonExpired {
		t.Errorf("Expected EXPIRED on the 17th, got %+v", st)
	}
}

func TestTodayOnlyUsesEventZoneNotViewerZone(t *testing.T) {
	s := NewScheduler(testEvent(day.LockTodayOnly))
	d2, _ := testEvent(day.LockTodayOnly).ByID(2)

	// 2026-02-15T18:30:00Z is already 01:30 on the 16th in UTC+7.
	now := time.Date(2026, time.February, 15, 18, 30, 0, 0, time.UTC)
	if st := s.Status(d2, now); !st.OK {
		t.Errorf("Expected open: event-zone date is the 16th, got %+v", st)
	}
}

func TestCumulativeNeverExpires(t *testing.T) {
	s := NewScheduler(testEvent(day.LockCumulative))
	d2, _ := testEvent(day.LockCumulative).ByID(2)

	// Still open the day after, and long after.
	for _, now := range []time.Time{
		time.Date(2026, time.February, 17, 12, 0, 0, 0, eventZone()),
		time.Date(2026, time.March, 1, 0, 0, 0, 0, eventZone()),
	} {
		if st := s.Status(d2, now); !st.OK {
			t.Errorf("Expected cumulative day open at %v, got %+v", now, st)
		}
	}

	// Before its midnight: NOT_YET.
	before := time.Date(2026, time.February, 15, 23, 59, 59, 0, eventZone())
	st := s.Status(d2, before)
	if st.OK || st.Reason != ReasonNotYet {
		t.Errorf("Expected NOT_YET before midnight, got %+v", st)
	}
}

func TestStatusByIDUnknownDay(t *testing.T) {
	s := NewScheduler(testEvent(day.LockTodayOnly))
	st := s.StatusByID(9, time.Now())
	if st.OK || st.Reason != ReasonNoDay {
		t.Errorf("Expected NO_DAY for unknown id, got %+v", st)
	}
}

func TestApplicableDayTodayOnly(t *testing.T) {
	s := NewScheduler(testEvent(day.LockTodayOnly))

	// On day 2's date it is day 2.
	now := time.Date(2026, time.February, 16, 9, 0, 0, 0, eventZone())
	if d := s.ApplicableDay(now); d.ID != 2 {
		t.Errorf("Expected day 2, got %d", d.ID)
	}

	// Outside the event: falls back to the earliest day.
	outside := time.Date(2026, time.March, 10, 9, 0, 0, 0, eventZone())
	if d := s.ApplicableDay(outside); d.ID != 1 {
		t.Errorf("Expected fallback to day 1, got %d", d.ID)
	}
}

func TestApplicableDayCumulative(t *testing.T) {
	s := NewScheduler(testEvent(day.LockCumulative))

	// On the 16th, days 1 and 2 have passed; the latest wins.
	now := time.Date(2026, time.February, 16, 9, 0, 0, 0, eventZone())
	if d := s.ApplicableDay(now); d.ID != 2 {
		t.Errorf("Expected day 2, got %d", d.ID)
	}

	// After the event the latest day stays applicable.
	after := time.Date(2026, time.March, 10, 9, 0, 0, 0, eventZone())
	if d := s.ApplicableDay(after); d.ID != 3 {
		t.Errorf("Expected day 3, got %d", d.ID)
	}

	// Before anything opened: earliest day.
	before := time.Date(2026, time.February, 10, 9, 0, 0, 0, eventZone())
	if d := s.ApplicableDay(before); d.ID != 1 {
		t.Errorf("Expected day 1, got %d", d.ID)
	}
}
