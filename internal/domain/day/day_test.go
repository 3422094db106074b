package day

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validEvent() *Event {
	return &Event{
		Days: []Config{
			{ID: 1, Title: "Day 1", ImageRef: "assets/day1.jpg", RewardDigits: "2", OpenDate: Date{2026, time.February, 15}},
			{ID: 2, Title: "Day 2", ImageRef: "assets/day2.jpg", RewardDigits: "2", OpenDate: Date{2026, time.February, 16}},
			{ID: 3, Title: "Day 3", ImageRef: "assets/day3.jpg", RewardDigits: "02", OpenDate: Date{2026, time.February, 17}},
		},
		Game: Game{Cols: 4, Rows: 3, Seconds: 90, PassThreshold: 80, LockMode: LockTodayOnly, EventTzOffsetMinute: 420},
	}
}

func TestValidateAcceptsGoodConfig(t *testing.T) {
	if err := validEvent().Validate(); err != nil {
		t.Fatalf("Expected valid config, got %v", err)
	}
}

func TestValidateRejectsOddGrid(t *testing.T) {
	e := validEvent()
	e.Game.Cols = 3
	e.Game.Rows = 3
	if err := e.Validate(); err == nil {
		t.Errorf("Expected error for odd cell count")
	}
}

func TestValidateRejectsBadReward(t *testing.T) {
	e := validEvent()
	e.Days[0].RewardDigits = "abc"
	if err := e.Validate(); err == nil {
		t.Errorf("Expected error for non-numeric reward")
	}

	e = validEvent()
	e.Days[0].RewardDigits = "123"
	if err := e.Validate(); err == nil {
		t.Errorf("Expected error for 3-digit reward")
	}
}

func TestValidateRejectsBadLockMode(t *testing.T) {
	e := validEvent()
	e.Game.LockMode = "forever"
	if err := e.Validate(); err == nil {
		t.Errorf("Expected error for unknown lock mode")
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-02-16")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if d.Year != 2026 || d.Month != time.February || d.Day != 16 {
		t.Errorf("Parsed wrong date: %v", d)
	}
	if d.String() != "2026-02-16" {
		t.Errorf("Round trip failed: %s", d.String())
	}

	if _, err := ParseDate("16/02/2026"); err == nil {
		t.Errorf("Expected error for bad format")
	}
}

func TestDateBefore(t *testing.T) {
	a := Date{2026, time.February, 15}
	b := Date{2026, time.February, 16}
	if !a.Before(b) {
		t.Errorf("Expected %v before %v", a, b)
	}
	if b.Before(a) {
		t.Errorf("Did not expect %v before %v", b, a)
	}
	if a.Before(a) {
		t.Errorf("A date is not before itself")
	}
}

func TestByID(t *testing.T) {
	e := validEvent()
	d, ok := e.ByID(3)
	if !ok || d.RewardDigits != "02" {
		t.Errorf("Expected day 3 with reward 02, got %v (ok=%v)", d, ok)
	}
	if _, ok := e.ByID(9); ok {
		t.Errorf("Expected missing day 9")
	}
}

func TestLoadFromFile(t *testing.T) {
	raw := `{
		"days": [
			{"id": 2, "title": "Day 2", "image": "assets/day2.jpg", "reward": "7", "open_date": "2026-02-16"},
			{"id": 1, "title": "Day 1", "image": "assets/day1.jpg", "reward": "2", "open_date": "2026-02-15"}
		],
		"game": {"cols": 4, "rows": 3, "seconds": 90, "pass_threshold": 80, "lock_mode": "cumulative", "event_tz_offset_minutes": 420},
		"form": {"url": "", "entries": {}}
	}`
	path := filepath.Join(t.TempDir(), "event.json")
	if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
		t.Fatal(err)
	}

	e, err := Load(path)
	if err != nil {
		t.Fatalf("Unexpected load error: %v", err)
	}
	if len(e.Days) != 2 || e.Days[0].ID != 1 {
		t.Errorf("Expected days sorted by id, got %v", e.Days)
	}
	if e.Game.LockMode != LockCumulative {
		t.Errorf("Expected cumulative lock mode, got %s", e.Game.LockMode)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Errorf("Expected error for missing config file")
	}
}
