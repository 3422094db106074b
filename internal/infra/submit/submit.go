// Package submit builds the outbound result-submission URL (a Google Form
// prefill link). The session core treats the result as opaque: an empty
// string means the submission channel is not configured and the host must
// not offer to submit.
package submit

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/MRamiBalles/PuzzleEspejos/internal/domain/day"
)

// Payload carries everything a submission needs.
type Payload struct {
	ID           string
	Name         string
	FinalCode    string
	PerDayDigits map[int]string
	Day          int
	Accuracy     int
	TimeUsedSec  int
}

// Builder maps payload fields onto the form's entry.N keys.
type Builder struct {
	form day.Form
}

func NewBuilder(form day.Form) *Builder {
	return &Builder{form: form}
}

// URL returns the prefill link, or "" when no form is configured.
func (b *Builder) URL(p Payload) string {
	if b.form.URL == "" || len(b.form.Entries) == 0 {
		return ""
	}

	values := url.Values{}
	set := func(field, value string) {
		if entry, ok := b.form.Entries[field]; ok && entry != "" {
			values.Set(entry, value)
		}
	}

	set("id", p.ID)
	set("name", p.Name)
	set("code", p.FinalCode)
	for dayID, digits := range p.PerDayDigits {
		set(fmt.Sprintf("d%d", dayID), digits)
	}
	if p.Day != 0 {
		set("day", strconv.Itoa(p.Day))
	}
	set("accuracy", strconv.Itoa(p.Accuracy))
	set("time_used", strconv.Itoa(p.TimeUsedSec))

	return b.form.URL + "&" + values.Encode()
}
