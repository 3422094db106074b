package submit

import (
	"net/url"
	"strings"
	"testing"

	"github.com/MRamiBalles/PuzzleEspejos/internal/domain/day"
)

func testForm() day.Form {
	return day.Form{
		URL: "https://docs.google.com/forms/d/e/FORM/viewform?usp=pp_url",
		Entries: map[string]string{
			"id":        "entry.101",
			"name":      "entry.102",
			"code":      "entry.103",
			"d1":        "entry.201",
			"d2":        "entry.202",
			"accuracy":  "entry.301",
			"time_used": "entry.302",
		},
	}
}

func TestURLFillsConfiguredEntries(t *testing.T) {
	b := NewBuilder(testForm())

	raw := b.URL(Payload{
		ID:           "CGP-ABCD1234",
		Name:         "Rami",
		FinalCode:    "2702",
		PerDayDigits: map[int]string{1: "2", 2: "7"},
		Day:          2,
		Accuracy:     83,
		TimeUsedSec:  90,
	})
	if raw == "" {
		t.Fatal("Expected a non-empty url")
	}
	if !strings.HasPrefix(raw, "https://docs.google.com/forms/") {
		t.Fatalf("Unexpected url prefix: %s", raw)
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("Built an unparseable url: %v", err)
	}
	q := parsed.Query()
	checks := map[string]string{
		"entry.101": "CGP-ABCD1234",
		"entry.102": "Rami",
		"entry.103": "2702",
		"entry.201": "2",
		"entry.202": "7",
		"entry.301": "83",
		"entry.302": "90",
	}
	for entry, want := range checks {
		if got := q.Get(entry); got != want {
			t.Errorf("Expected %s=%q, got %q", entry, want, got)
		}
	}
}

func TestURLSkipsUnmappedFields(t *testing.T) {
	form := testForm()
	delete(form.Entries, "name")
	b := NewBuilder(form)

	raw := b.URL(Payload{ID: "CGP-X", Name: "Rami", FinalCode: "27"})
	parsed, _ := url.Parse(raw)
	if parsed.Query().Has("entry.102") {
		t.Errorf("Field without an entry mapping leaked into the url: %s", raw)
	}
	// The "day" field has no mapping in this form either; a day id in the
	// payload must not invent one.
	if strings.Contains(raw, "day=") {
		t.Errorf("Unmapped day field leaked: %s", raw)
	}
}

func TestURLEmptyWhenUnconfigured(t *testing.T) {
	if got := NewBuilder(day.Form{}).URL(Payload{ID: "CGP-X"}); got != "" {
		t.Errorf("Expected empty url with no form, got %q", got)
	}

	noEntries := day.Form{URL: "https://example.test/form?usp=pp_url"}
	if got := NewBuilder(noEntries).URL(Payload{ID: "CGP-X"}); got != "" {
		t.Errorf("Expected empty url with no entries, got %q", got)
	}
}
