// Package playback reconstructs the timing of a recorded trajectory.
package playback

import (
	"time"

	"github.com/verte-zerg/pursuit/internal/model"
	"github.com/verte-zerg/pursuit/internal/trajectory"
)

// DefaultDelayCap bounds the wait between two consecutive samples.
const DefaultDelayCap = 100 * time.Millisecond

// State is the playback lifecycle state.
type State int

// Playback states. A freshly loaded or restarted engine is paused.
const (
	StateLoaded State = iota
	StatePlaying
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateLoaded:
		return "paused"
	case StatePlaying:
		return "playing"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Segment is a drawn line between two consecutive samples.
type Segment struct {
	From model.Point
	To   model.Point
}

// Engine replays one record. It never blocks: Step advances the cursor only
// when the next sample is due.
type Engine struct {
	samples  []model.Sample
	delayCap time.Duration

	state    State
	cursor   int
	prev     model.Point
	hasPrev  bool
	segments []Segment
	markers  []model.Point

	nextWake  time.Time
	remaining time.Duration
}

// New creates a paused engine for rec. A non-positive cap uses DefaultDelayCap.
func New(rec trajectory.Record, delayCap time.Duration) *Engine {
	if delayCap <= 0 {
		delayCap = DefaultDelayCap
	}
	samples := make([]model.Sample, len(rec.Samples))
	copy(samples, rec.Samples)
	e := &Engine{
		samples:  samples,
		delayCap: delayCap,
	}
	e.reset()
	return e
}

// State returns the lifecycle state.
func (e *Engine) State() State { return e.state }

// Paused reports whether playback is waiting for a toggle.
func (e *Engine) Paused() bool { return e.state == StateLoaded }

// Cursor returns the index of the next sample to draw.
func (e *Engine) Cursor() int { return e.cursor }

// Len returns the number of samples in the record.
func (e *Engine) Len() int { return len(e.samples) }

// Segments returns the path drawn so far. Callers must not modify it.
func (e *Engine) Segments() []Segment { return e.segments }

// Markers returns the event positions seen so far. Callers must not modify it.
func (e *Engine) Markers() []model.Point { return e.markers }

// Current returns the last drawn position.
func (e *Engine) Current() (model.Point, bool) { return e.prev, e.hasPrev }

// Progress returns the fraction of samples drawn.
func (e *Engine) Progress() float64 {
	if len(e.samples) == 0 {
		return 0
	}
	return float64(e.cursor) / float64(len(e.samples))
}

// Delay returns the wait after drawing sample i: the gap to the next
// sample, capped and clamped at zero. The last sample has no delay.
func (e *Engine) Delay(i int) time.Duration {
	if i < 0 || i+1 >= len(e.samples) {
		return 0
	}
	gap := e.samples[i+1].Timestamp - e.samples[i].Timestamp
	if gap <= 0 {
		return 0
	}
	d := time.Duration(gap * float64(time.Second))
	if d > e.delayCap {
		return e.delayCap
	}
	return d
}

// Handle applies a playback command. It reports whether the state changed.
func (e *Engine) Handle(cmd model.Command, now time.Time) bool {
	switch cmd {
	case model.CommandTogglePause:
		return e.togglePause(now)
	case model.CommandRestart:
		e.reset()
		return true
	default:
		return false
	}
}

func (e *Engine) togglePause(now time.Time) bool {
	switch e.state {
	case StateLoaded:
		e.state = StatePlaying
		e.nextWake = now.Add(e.remaining)
		e.remaining = 0
		return true
	case StatePlaying:
		e.state = StateLoaded
		e.remaining = e.nextWake.Sub(now)
		if e.remaining < 0 {
			e.remaining = 0
		}
		return true
	default:
		return false
	}
}

func (e *Engine) reset() {
	e.state = StateLoaded
	e.cursor = 0
	e.prev = model.Point{}
	e.hasPrev = false
	e.segments = nil
	e.markers = nil
	e.nextWake = time.Time{}
	e.remaining = 0
	if len(e.samples) == 0 {
		e.state = StateCompleted
	}
}

// Step draws every sample that is due at now and returns how many were drawn.
func (e *Engine) Step(now time.Time) int {
	if e.state != StatePlaying {
		return 0
	}
	drawn := 0
	for e.cursor < len(e.samples) && !now.Before(e.nextWake) {
		e.nextWake = e.nextWake.Add(e.Delay(e.cursor))
		e.draw()
		drawn++
	}
	if e.cursor >= len(e.samples) {
		e.state = StateCompleted
	}
	return drawn
}

// SkipToEnd draws all remaining samples without waiting.
func (e *Engine) SkipToEnd() {
	for e.cursor < len(e.samples) {
		e.draw()
	}
	e.state = StateCompleted
}

func (e *Engine) draw() {
	s := e.samples[e.cursor]
	p := s.Point()
	if e.hasPrev {
		e.segments = append(e.segments, Segment{From: e.prev, To: p})
	}
	if s.Flagged() {
		e.markers = append(e.markers, p)
	}
	e.prev = p
	e.hasPrev = true
	e.cursor++
}
