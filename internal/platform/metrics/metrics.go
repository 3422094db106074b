// Package metrics provides observability for the puzzle server.
package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// Collector gathers gameplay and transport metrics.
type Collector struct {
	// Session metrics
	SessionsStarted int64
	SessionsWon     int64
	SessionsFailed  int64
	RewardsGranted  int64
	SwapsApplied    int64
	GateBlocks      int64

	// WebSocket metrics
	WSConnectionsActive int64
	WSMessagesIn        int64
	WSMessagesOut       int64
	WSErrors            int64

	// System
	StartTime time.Time
	mu        sync.RWMutex
}

// Global collector instance
var collector = &Collector{
	StartTime: time.Now(),
}

// Get returns the global collector.
func Get() *Collector {
	return collector
}

// RecordSessionStarted records a Viewing -> Playing transition.
func (c *Collector) RecordSessionStarted() {
	atomic.AddInt64(&c.SessionsStarted, 1)
}

// RecordSessionWon records a finished session that granted a reward path.
func (c *Collector) RecordSessionWon() {
	atomic.AddInt64(&c.SessionsWon, 1)
}

// RecordSessionFailed records a timeout or mirror failure.
func (c *Collector) RecordSessionFailed() {
	atomic.AddInt64(&c.SessionsFailed, 1)
}

// RecordRewardGranted records an exactly-once reward grant.
func (c *Collector) RecordRewardGranted() {
	atomic.AddInt64(&c.RewardsGranted, 1)
}

// RecordSwap records one tile swap reaching the board.
func (c *Collector) RecordSwap() {
	atomic.AddInt64(&c.SwapsApplied, 1)
}

// RecordGateBlock records a session diverted to the locked state.
func (c *Collector) RecordGateBlock() {
	atomic.AddInt64(&c.GateBlocks, 1)
}

// RecordWSConnection records WebSocket connection changes.
func (c *Collector) RecordWSConnection(delta int64) {
	atomic.AddInt64(&c.WSConnectionsActive, delta)
}

// RecordWSMessage records WebSocket messages.
func (c *Collector) RecordWSMessage(incoming bool) {
	if incoming {
		atomic.AddInt64(&c.WSMessagesIn, 1)
	} else {
		atomic.AddInt64(&c.WSMessagesOut, 1)
	}
}

// RecordWSError records a WebSocket error.
func (c *Collector) RecordWSError() {
	atomic.AddInt64(&c.WSErrors, 1)
}

// Snapshot returns current metrics as a map.
func (c *Collector) Snapshot() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return map[string]interface{}{
		"uptime_seconds": time.Since(c.StartTime).Seconds(),

		"sessions": map[string]interface{}{
			"started":         atomic.LoadInt64(&c.SessionsStarted),
			"won":             atomic.LoadInt64(&c.SessionsWon),
			"failed":          atomic.LoadInt64(&c.SessionsFailed),
			"rewards_granted": atomic.LoadInt64(&c.RewardsGranted),
			"swaps_applied":   atomic.LoadInt64(&c.SwapsApplied),
			"gate_blocks":     atomic.LoadInt64(&c.GateBlocks),
		},

		"websocket": map[string]interface{}{
			"active_connections": atomic.LoadInt64(&c.WSConnectionsActive),
			"messages_in":        atomic.LoadInt64(&c.WSMessagesIn),
			"messages_out":       atomic.LoadInt64(&c.WSMessagesOut),
			"errors":             atomic.LoadInt64(&c.WSErrors),
		},
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-cache")

		snapshot := collector.Snapshot()
		json.NewEncoder(w).Encode(snapshot)
	}
}

// PrometheusHandler returns metrics in Prometheus format.
func PrometheusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")

		c := collector

		fmt.Fprintf(w, "# HELP puzzle_sessions_started Total sessions started\n")
		fmt.Fprintf(w, "# TYPE puzzle_sessions_started counter\n")
		fmt.Fprintf(w, "puzzle_sessions_started %d\n\n", atomic.LoadInt64(&c.SessionsStarted))

		fmt.Fprintf(w, "# HELP puzzle_sessions_won Total sessions ending in a win\n")
		fmt.Fprintf(w, "# TYPE puzzle_sessions_won counter\n")
		fmt.Fprintf(w, "puzzle_sessions_won %d\n\n", atomic.LoadInt64(&c.SessionsWon))

		fmt.Fprintf(w, "# HELP puzzle_sessions_failed Total sessions ending in a failure\n")
		fmt.Fprintf(w, "# TYPE puzzle_sessions_failed counter\n")
		fmt.Fprintf(w, "puzzle_sessions_failed %d\n\n", atomic.LoadInt64(&c.SessionsFailed))

		fmt.Fprintf(w, "# HELP puzzle_rewards_granted Total reward grants\n")
		fmt.Fprintf(w, "# TYPE puzzle_rewards_granted counter\n")
		fmt.Fprintf(w, "puzzle_rewards_granted %d\n\n", atomic.LoadInt64(&c.RewardsGranted))

		fmt.Fprintf(w, "# HELP puzzle_swaps_applied Total tile swaps\n")
		fmt.Fprintf(w, "# TYPE puzzle_swaps_applied counter\n")
		fmt.Fprintf(w, "puzzle_swaps_applied %d\n\n", atomic.LoadInt64(&c.SwapsApplied))

		fmt.Fprintf(w, "# HELP puzzle_gate_blocks Total gate violations\n")
		fmt.Fprintf(w, "# TYPE puzzle_gate_blocks counter\n")
		fmt.Fprintf(w, "puzzle_gate_blocks %d\n\n", atomic.LoadInt64(&c.GateBlocks))

		fmt.Fprintf(w, "# HELP puzzle_ws_connections Active WebSocket connections\n")
		fmt.Fprintf(w, "# TYPE puzzle_ws_connections gauge\n")
		fmt.Fprintf(w, "puzzle_ws_connections %d\n\n", atomic.LoadInt64(&c.WSConnectionsActive))

		fmt.Fprintf(w, "# HELP puzzle_ws_messages_total Total WebSocket messages\n")
		fmt.Fprintf(w, "# TYPE puzzle_ws_messages_total counter\n")
		fmt.Fprintf(w, "puzzle_ws_messages_total{direction=\"in\"} %d\n", atomic.LoadInt64(&c.WSMessagesIn))
		fmt.Fprintf(w, "puzzle_ws_messages_total{direction=\"out\"} %d\n", atomic.LoadInt64(&c.WSMessagesOut))
	}
}
