// Package session contains the puzzle session state machine.
// This is the heartbeat of the event mini-game: it ties the temporal gate,
// the tile board, the countdown and the reward flow together.
//
// ARCHITECTURAL RULE: only the Controller writes the session phase and the
// remaining time, and every board mutation goes through Board.Swap. All
// public methods serialize behind one mutex, so interleaved input events
// and timer ticks can never run simultaneously.
package session

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/MRamiBalles/PuzzleEspejos/internal/domain/board"
	"github.com/MRamiBalles/PuzzleEspejos/internal/domain/day"
	"github.com/MRamiBalles/PuzzleEspejos/internal/events"
	"github.com/MRamiBalles/PuzzleEspejos/internal/gate"
	"github.com/MRamiBalles/PuzzleEspejos/internal/infra/storage"
	"github.com/MRamiBalles/PuzzleEspejos/internal/platform/logger"
	"github.com/MRamiBalles/PuzzleEspejos/internal/platform/metrics"
)

// Phase is the top-level session state.
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseViewing  Phase = "viewing"
	PhaseLocked   Phase = "locked"
	PhasePlaying  Phase = "playing"
	PhaseFinished Phase = "finished"
)

// Outcome is the Finished substate.
type Outcome string

const (
	OutcomeWin           Outcome = "win"
	OutcomeMirrorPending Outcome = "mirror_pending"
	OutcomeMirrorFailed  Outcome = "mirror_failed"
	OutcomeTimeoutFailed Outcome = "timeout_failed"
)

var (
	// ErrLocked signals a gate violation. It is a normal user-visible
	// state, recoverable by waiting, not a fault.
	ErrLocked = errors.New("session: day gate is closed")
	// ErrBadPhase signals an operation that is not valid in the current
	// phase.
	ErrBadPhase = errors.New("session: operation not valid in current phase")
	// ErrOutOfRange signals a cell index outside the grid.
	ErrOutOfRange = errors.New("session: cell index out of range")
)

// RewardOutcome is produced at most once per session.
type RewardOutcome struct {
	GrantedDigits string `json:"granted_digits"`
	Accuracy      int    `json:"accuracy"`
	TimeUsedSec   int    `json:"time_used_sec"`
	ViaMirror     bool   `json:"via_mirror"`
	FinalCode     string `json:"final_code"`
}

// Options configures a Controller. Event, Store and Log are required.
type Options struct {
	Event *day.Event
	DayID int // 0 selects the applicable day for Now()
	Store storage.Store
	Log   *logger.Logger

	EventLog *events.EventLog // optional audit log
	Now      func() time.Time // optional clock, defaults to time.Now
	Rng      *rand.Rand       // optional deterministic source for tests

	// TickInterval is the real-time countdown tick. Non-positive runs the
	// controller in manual mode where the host drives Tick itself.
	TickInterval time.Duration
}

// Controller is the top-level session state machine. Exactly one exists
// per player session; it owns the board and the countdown.
type Controller struct {
	mu sync.Mutex

	event   *day.Event
	day     day.Config
	gate    *gate.Scheduler
	store   storage.Store
	logger  *logger.Logger
	elog    *events.EventLog
	now     func() time.Time
	rng     *rand.Rand
	profile storage.Profile

	tickInterval  time.Duration
	countdownStop chan struct{}

	board *board.Board
	input *interaction

	phase            Phase
	timeRemainingSec int
	accuracyAtFinish int
	outcome          Outcome
	doneReward       bool
	mirror           *MirrorChallenge
	reward           *RewardOutcome
	gateStatus       gate.Status
}

// NewController builds a session for one event day. A missing day config
// is a configuration error and fatal to the session; the controller never
// falls back to a guessed config.
func NewController(opts Options) (*Controller, error) {
	if opts.Event == nil {
		return nil, errors.New("session: event config is required")
	}
	if opts.Store == nil {
		return nil, errors.New("session: store is required")
	}
	if opts.Log == nil {
		opts.Log = logger.NewLogger()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	sched := gate.NewScheduler(opts.Event)

	var d day.Config
	if opts.DayID == 0 {
		d = sched.ApplicableDay(opts.Now())
	} else {
		var ok bool
		d, ok = opts.Event.ByID(opts.DayID)
		if !ok {
			return nil, errors.New("session: no config for requested day")
		}
	}

	profile, err := opts.Store.EnsureProfile()
	if err != nil {
		return nil, err
	}
	mode, err := opts.Store.InputMode()
	if err != nil {
		return nil, err
	}

	c := &Controller{
		event:        opts.Event,
		day:          d,
		gate:         sched,
		store:        opts.Store,
		logger:       opts.Log,
		elog:         opts.EventLog,
		now:          opts.Now,
		rng:          opts.Rng,
		profile:      profile,
		tickInterval: opts.TickInterval,
		input:        newInteraction(InputMode(mode)),
	}
	c.resetLocked()
	return c, nil
}

// resetLocked reinitializes to Idle: cancel-then-reset on the timer, fresh
// shuffle, cleared selection and drag. Caller must hold c.mu.
func (c *Controller) resetLocked() {
	c.cancelCountdown()

	n := c.event.Game.Cols * c.event.Game.Rows
	c.board = board.New(n, c.rng)
	c.board.Shuffle()

	c.phase = PhaseIdle
	c.timeRemainingSec = c.event.Game.Seconds
	c.accuracyAtFinish = 0
	c.outcome = ""
	c.doneReward = false
	c.mirror = nil
	c.reward = nil
	c.gateStatus = gate.Status{}
	c.input.reset()
}

// Day returns the day this session plays.
func (c *Controller) Day() day.Config {
	return c.day
}

// Profile returns the player identity bound at construction.
func (c *Controller) Profile() storage.Profile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.profile
}

// GateStatus re-evaluates the gate for this session's day right now.
func (c *Controller) GateStatus() gate.Status {
	return c.gate.Status(c.day, c.now())
}

// checkGateLocked re-evaluates the gate at a transition point. On a
// violation the session diverts to Locked and Playing stays unreachable.
// Caller must hold c.mu.
func (c *Controller) checkGateLocked() bool {
	st := c.gate.Status(c.day, c.now())
	if st.OK {
		return true
	}
	c.cancelCountdown()
	c.phase = PhaseLocked
	c.gateStatus = st
	metrics.Get().RecordGateBlock()
	c.logger.Event("GATE_BLOCKED", c.profile.ID, "day "+c.day.OpenDate.String()+" reason "+string(st.Reason))
	c.appendEvent(events.EventTypeGateBlocked, st)
	return false
}

// View opens the reference image. Allowed from Idle and Viewing, and from
// Locked to let the player re-check after waiting. Performs a live gate
// re-check.
func (c *Controller) View() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.phase {
	case PhaseIdle, PhaseViewing, PhaseLocked:
	default:
		return ErrBadPhase
	}
	if !c.checkGateLocked() {
		return ErrLocked
	}
	c.phase = PhaseViewing
	return nil
}

// Acknowledge is the player's "I remember" action: Viewing -> Playing.
// Idempotent while already Playing. Gated by the same live re-check as
// View, so a session left open across a day boundary is re-blocked here.
func (c *Controller) Acknowledge() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase == PhasePlaying {
		return nil
	}
	if c.phase != PhaseViewing {
		return ErrBadPhase
	}
	if !c.checkGateLocked() {
		return ErrLocked
	}

	c.phase = PhasePlaying
	c.startCountdown()
	metrics.Get().RecordSessionStarted()
	c.logger.Event("SESSION_STARTED", c.profile.ID, c.day.Title)
	c.appendEvent(events.EventTypeSessionStarted, nil)
	return nil
}

// Tick advances the countdown by one second. Ticks outside Playing are
// stale and ignored.
func (c *Controller) Tick() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhasePlaying {
		return
	}
	c.timeRemainingSec--
	if c.timeRemainingSec <= 0 {
		c.timeRemainingSec = 0
		c.finishTimeoutLocked()
	}
}

// SetInputMode switches between tap and drag and persists the preference.
// Any pending selection or drag is cleared; the modes are mutually
// exclusive at any instant.
func (c *Controller) SetInputMode(mode InputMode) error {
	if mode != ModeTap && mode != ModeDrag {
		return errors.New("session: unknown input mode")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.input.reset()
	c.input.mode = mode
	return c.store.SetInputMode(string(mode))
}

// InputMode returns the active input mode.
func (c *Controller) InputMode() InputMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input.mode
}

// Tap handles one tap-mode touch on a cell.
func (c *Controller) Tap(pos int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.inputAllowedLocked(ModeTap, pos); err != nil {
		return err
	}
	if origin, target, ok := c.input.tap(pos); ok {
		c.applySwapLocked(origin, target)
	}
	return nil
}

// DragStart lifts the tile at pos. A press while another drag is open is
// ignored without error; input is serialized and the drag is exclusive.
func (c *Controller) DragStart(pos int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.inputAllowedLocked(ModeDrag, pos); err != nil {
		return err
	}
	c.input.dragStart(pos)
	return nil
}

// DragEnd releases the current drag over a cell (the origin included).
func (c *Controller) DragEnd(pos int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.inputAllowedLocked(ModeDrag, pos); err != nil {
		return err
	}
	if origin, target, ok := c.input.dragEnd(pos); ok {
		c.applySwapLocked(origin, target)
	}
	return nil
}

// DragCancel abandons the current drag (release outside any cell). No
// board mutation happens.
func (c *Controller) DragCancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.input.dragCancel()
}

// inputAllowedLocked validates phase, mode and cell index before any swap
// can reach the board. Out-of-range indices never reach Board.Swap.
func (c *Controller) inputAllowedLocked(mode InputMode, pos int) error {
	if c.phase != PhasePlaying {
		return ErrBadPhase
	}
	if c.input.mode != mode {
		return ErrBadPhase
	}
	if pos < 0 || pos >= c.board.Size() {
		return ErrOutOfRange
	}
	return nil
}

// applySwapLocked is the single path from input to the board. After each
// swap the new progress is checked for the win transition.
func (c *Controller) applySwapLocked(a, b int) {
	c.board.Swap(a, b)
	metrics.Get().RecordSwap()
	if c.board.Solved() {
		c.finishWinLocked()
	}
}

// finishWinLocked handles Playing -> Finished(Win) the instant progress
// hits 100.
func (c *Controller) finishWinLocked() {
	if c.phase != PhasePlaying || c.doneReward {
		return
	}
	c.cancelCountdown()
	c.phase = PhaseFinished
	c.outcome = OutcomeWin
	c.accuracyAtFinish = 100
	timeUsed := c.event.Game.Seconds - c.timeRemainingSec

	c.recordHistoryLocked(100, timeUsed)
	c.appendEvent(events.EventTypeSessionFinished, events.SessionFinishedPayload{
		Outcome: string(OutcomeWin), Accuracy: 100, TimeUsedSec: timeUsed,
	})
	c.grantRewardLocked(false, 100, timeUsed)
	metrics.Get().RecordSessionWon()
	c.logger.Event("SESSION_WIN", c.profile.ID, c.day.Title)
}

// finishTimeoutLocked handles the countdown reaching zero: the mirror step
// for a qualifying accuracy, TimeoutFailed otherwise.
func (c *Controller) finishTimeoutLocked() {
	c.cancelCountdown()
	c.phase = PhaseFinished
	accuracy := c.board.Progress()
	c.accuracyAtFinish = accuracy
	timeUsed := c.event.Game.Seconds

	c.recordHistoryLocked(accuracy, timeUsed)

	if accuracy >= c.event.Game.PassThreshold {
		c.outcome = OutcomeMirrorPending
		c.mirror = PresentChoices(c.day.RewardDigits, c.rng)
		c.appendEvent(events.EventTypeMirrorPresented, c.mirror.Options)
		c.logger.Event("MIRROR_PRESENTED", c.profile.ID, c.day.Title)
	} else {
		c.outcome = OutcomeTimeoutFailed
		metrics.Get().RecordSessionFailed()
		c.logger.Event("SESSION_TIMEOUT", c.profile.ID, c.day.Title)
	}

	c.appendEvent(events.EventTypeSessionFinished, events.SessionFinishedPayload{
		Outcome: string(c.outcome), Accuracy: accuracy, TimeUsedSec: timeUsed,
	})
}

// PickMirror resolves the MirrorPending substate with the player's choice.
// The accuracy captured at timeout is preserved either way.
func (c *Controller) PickMirror(option string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.phase != PhaseFinished || c.outcome != OutcomeMirrorPending || c.mirror == nil {
		return ErrBadPhase
	}

	if c.mirror.Judge(option) {
		c.outcome = OutcomeWin
		c.grantRewardLocked(true, c.accuracyAtFinish, c.event.Game.Seconds)
		metrics.Get().RecordSessionWon()
		c.logger.Event("MIRROR_WIN", c.profile.ID, c.day.Title)
	} else {
		c.outcome = OutcomeMirrorFailed
		metrics.Get().RecordSessionFailed()
		c.logger.Event("MIRROR_FAIL", c.profile.ID, c.day.Title)
	}
	c.mirror = nil
	return nil
}

// grantRewardLocked grants the day's digits exactly once per session. Any
// later path (duplicate win detection, late event delivery) is a no-op.
func (c *Controller) grantRewardLocked(viaMirror bool, accuracy, timeUsed int) {
	if c.doneReward {
		return
	}
	c.doneReward = true

	if err := c.store.SetDigit(c.day.ID, c.day.RewardDigits); err != nil {
		c.logger.Error("Failed to persist reward digit: " + err.Error())
	}
	code, err := c.store.FinalCode(c.dayIDs())
	if err != nil {
		c.logger.Error("Failed to assemble final code: " + err.Error())
	}

	c.reward = &RewardOutcome{
		GrantedDigits: c.day.RewardDigits,
		Accuracy:      accuracy,
		TimeUsedSec:   timeUsed,
		ViaMirror:     viaMirror,
		FinalCode:     code,
	}
	metrics.Get().RecordRewardGranted()
	c.appendEvent(events.EventTypeRewardGranted, events.RewardGrantedPayload{
		Digits: c.day.RewardDigits, ViaMirror: viaMirror, FinalCode: code,
	})
}

// Restart reinitializes to Idle with a fresh permutation. Available from
// any Finished substate and from Locked; it never reuses a prior session's
// timer or board.
func (c *Controller) Restart() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.phase {
	case PhaseFinished, PhaseLocked:
	default:
		return ErrBadPhase
	}
	c.resetLocked()
	return nil
}

// ResetAll wipes the player's stored progress (profile, digits, history,
// preferences) and starts over with a fresh profile and a fresh Idle
// session. Unlike Restart it is valid from any phase.
func (c *Controller) ResetAll() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.ResetAll(); err != nil {
		return err
	}
	profile, err := c.store.EnsureProfile()
	if err != nil {
		return err
	}
	c.profile = profile
	c.input = newInteraction(ModeTap)
	c.resetLocked()
	return nil
}

// Reward returns the granted reward, or nil before any grant.
func (c *Controller) Reward() *RewardOutcome {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.reward == nil {
		return nil
	}
	out := *c.reward
	return &out
}

func (c *Controller) recordHistoryLocked(accuracy, timeUsed int) {
	entry := storage.HistoryEntry{
		Timestamp:   c.now(),
		Day:         c.day.ID,
		Accuracy:    accuracy,
		TimeUsedSec: timeUsed,
		UserID:      c.profile.ID,
		Name:        c.profile.Name,
	}
	if err := c.store.AddHistory(entry); err != nil {
		c.logger.Error("Failed to append history: " + err.Error())
	}
}

func (c *Controller) dayIDs() []int {
	ids := make([]int, len(c.event.Days))
	for i, d := range c.event.Days {
		ids[i] = d.ID
	}
	return ids
}

func (c *Controller) appendEvent(t events.EventType, payload interface{}) {
	if c.elog == nil {
		return
	}
	c.elog.Append(events.GameEvent{
		ID:        events.GenerateEventID(),
		Timestamp: c.now(),
		Type:      t,
		UserID:    c.profile.ID,
		Day:       c.day.ID,
		Payload:   payload,
	})
}

// Snapshot is the host-facing view of the session. The mirror's correct
// value is never included.
type Snapshot struct {
	Phase            Phase          `json:"phase"`
	Outcome          Outcome        `json:"outcome,omitempty"`
	Day              int            `json:"day"`
	Title            string         `json:"title"`
	ImageRef         string         `json:"image"`
	Cols             int            `json:"cols"`
	Rows             int            `json:"rows"`
	Tiles            []int          `json:"tiles"`
	Progress         int            `json:"progress"`
	TimeRemainingSec int            `json:"time_remaining_sec"`
	AccuracyAtFinish int            `json:"accuracy_at_finish,omitempty"`
	InputMode        InputMode      `json:"input_mode"`
	SelectedPos      int            `json:"selected_pos"`
	DragOrigin       int            `json:"drag_origin"`
	MirrorOptions    []string       `json:"mirror_options,omitempty"`
	Reward           *RewardOutcome `json:"reward,omitempty"`
	Gate             gate.Status    `json:"gate"`
}

// Snapshot captures the current state for rendering. The UI layer only
// dispatches events and renders this.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		Phase:            c.phase,
		Outcome:          c.outcome,
		Day:              c.day.ID,
		Title:            c.day.Title,
		ImageRef:         c.day.ImageRef,
		Cols:             c.event.Game.Cols,
		Rows:             c.event.Game.Rows,
		Tiles:            c.board.Tiles(),
		Progress:         c.board.Progress(),
		TimeRemainingSec: c.timeRemainingSec,
		AccuracyAtFinish: c.accuracyAtFinish,
		InputMode:        c.input.mode,
		SelectedPos:      c.input.selectedPos,
		DragOrigin:       c.input.dragOrigin,
		Gate:             gate.Status{OK: true},
	}
	if c.phase == PhaseLocked {
		snap.Gate = c.gateStatus
	}
	if c.mirror != nil {
		snap.MirrorOptions = append([]string(nil), c.mirror.Options...)
	}
	if c.reward != nil {
		r := *c.reward
		snap.Reward = &r
	}
	return snap
}
