// Package main is a small operations helper that prints the gate status of
// every configured event day, as the scheduler would evaluate it right now.
// Useful when checking a deployment the night before a day opens.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/MRamiBalles/PuzzleEspejos/internal/domain/day"
	"github.com/MRamiBalles/PuzzleEspejos/internal/gate"
)

func main() {
	configPath := flag.String("config", "event.json", "path to the event config file")
	at := flag.String("at", "", "evaluate at this RFC3339 instant instead of now")
	flag.Parse()

	event, err := day.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "gate-probe:", err)
		os.Exit(1)
	}

	now := time.Now()
	if *at != "" {
		now, err = time.Parse(time.RFC3339, *at)
		if err != nil {
			fmt.Fprintln(os.Stderr, "gate-probe: invalid -at instant:", err)
			os.Exit(1)
		}
	}

	sched := gate.NewScheduler(event)
	applicable := sched.ApplicableDay(now)

	fmt.Printf("lock mode: %s, tz offset: %d min\n", event.Game.LockMode, event.Game.EventTzOffsetMinute)
	fmt.Printf("applicable day: %d (%s)\n\n", applicable.ID, applicable.Title)

	for _, d := range event.Days {
		st := sched.Status(d, now)
		switch {
		case st.OK:
			fmt.Printf("day %d  %s  OPEN\n", d.ID, d.OpenDate)
		case st.Reason == gate.ReasonNotYet:
			opens := time.UnixMilli(st.OpenEpochMs).UTC().Format(time.RFC3339)
			fmt.Printf("day %d  %s  NOT_YET (opens %s)\n", d.ID, d.OpenDate, opens)
		default:
			fmt.Printf("day %d  %s  %s\n", d.ID, d.OpenDate, st.Reason)
		}
	}
}
