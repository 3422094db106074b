// Package session - countdown.go
// The 1-second countdown runner. This is the only periodic operation in
// the engine; it must be cancelled before any timer reset so a stale tick
// can never fire into a new session.
package session

import "time"

// DefaultTickInterval is the real-time length of one countdown tick.
const DefaultTickInterval = 1 * time.Second

// startCountdown spawns the tick loop. With a non-positive interval the
// controller runs in manual mode and the host (or a test) drives Tick
// itself. Caller must hold c.mu.
func (c *Controller) startCountdown() {
	if c.tickInterval <= 0 {
		return
	}
	stop := make(chan struct{})
	c.countdownStop = stop

	go func() {
		ticker := time.NewTicker(c.tickInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				c.Tick()
			}
		}
	}()
}

// cancelCountdown stops a running tick loop. Safe to call when none is
// running. Caller must hold c.mu.
func (c *Controller) cancelCountdown() {
	if c.countdownStop != nil {
		close(c.countdownStop)
		c.countdownStop = nil
	}
}
