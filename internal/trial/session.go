// Package trial implements the recorder's trial lifecycle.
package trial

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/pursuit/internal/clock"
	"github.com/verte-zerg/pursuit/internal/model"
	"github.com/verte-zerg/pursuit/internal/trajectory"
)

// State is the recorder's position in the trial lifecycle.
type State int

// Trial lifecycle states.
const (
	StateIdle State = iota
	StateTracking
	StateSavePrompt
	StateAdvancePrompt
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateTracking:
		return "tracking"
	case StateSavePrompt:
		return "save-prompt"
	case StateAdvancePrompt:
		return "advance-prompt"
	default:
		return "unknown"
	}
}

// Saver persists a finished trial.
type Saver interface {
	Save(rec trajectory.Record, participant, trial int) (string, error)
}

// Outcome reports what a command did.
type Outcome struct {
	Message string
	// Saved is the path of the record written by this command, if any.
	Saved string
	// Entry describes the saved trial when Saved is set.
	Entry model.TrialEntry
	Err   error
	Quit  bool
}

// Session holds the in-memory state of one recording run.
type Session struct {
	saver     Saver
	clock     clock.Clock
	maxTrials int
	runID     string

	participant int
	trial       int
	state       State
	record      trajectory.Record
	epoch       time.Time
}

// NewSession starts a session for participant at trial 1.
func NewSession(saver Saver, clk clock.Clock, participant, maxTrials int) *Session {
	if maxTrials <= 0 {
		maxTrials = model.MaxTrials
	}
	if participant <= 0 {
		participant = 1
	}
	return &Session{
		saver:       saver,
		clock:       clk,
		maxTrials:   maxTrials,
		runID:       uuid.NewString(),
		participant: participant,
		trial:       1,
	}
}

// RunID returns the identifier attached to every trial saved by this session.
func (s *Session) RunID() string { return s.runID }

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Participant returns the current participant id.
func (s *Session) Participant() int { return s.participant }

// Trial returns the current trial id.
func (s *Session) Trial() int { return s.trial }

// MaxTrials returns the number of trials per participant.
func (s *Session) MaxTrials() int { return s.maxTrials }

// Tracking reports whether motion is currently being recorded.
func (s *Session) Tracking() bool { return s.state == StateTracking }

// Record returns the in-progress record. Callers must not modify it.
func (s *Session) Record() trajectory.Record { return s.record }

// Motion samples a pointer position. It is a no-op unless tracking.
func (s *Session) Motion(x, y int, input model.InputState) bool {
	if s.state != StateTracking {
		return false
	}
	s.record.Append(model.Sample{
		Timestamp: s.clock.Since(s.epoch).Seconds(),
		X:         x,
		Y:         y,
		Event:     input.EventFlag(),
	})
	return true
}

// Handle applies a command to the lifecycle.
func (s *Session) Handle(cmd model.Command) Outcome {
	switch cmd {
	case model.CommandStart:
		return s.start()
	case model.CommandStop:
		return s.stop()
	case model.CommandConfirmYes:
		return s.confirm()
	case model.CommandConfirmNo:
		return s.cancel()
	case model.CommandQuit:
		return Outcome{Quit: true}
	default:
		return Outcome{}
	}
}

func (s *Session) start() Outcome {
	if s.state == StateAdvancePrompt {
		return Outcome{}
	}
	if s.trial > s.maxTrials {
		return Outcome{Message: fmt.Sprintf("All trials recorded for participant %d", s.participant)}
	}
	s.state = StateTracking
	s.record.Reset()
	s.epoch = s.clock.Now()
	return Outcome{Message: fmt.Sprintf("Started tracking - Participant %d, Trial %d", s.participant, s.trial)}
}

func (s *Session) stop() Outcome {
	if s.state != StateTracking {
		return Outcome{}
	}
	s.state = StateSavePrompt
	return Outcome{Message: "Tracking stopped - Save prompt displayed"}
}

func (s *Session) confirm() Outcome {
	switch s.state {
	case StateSavePrompt:
		return s.save()
	case StateAdvancePrompt:
		s.participant++
		s.trial = 1
		s.state = StateIdle
		return Outcome{Message: fmt.Sprintf("Moving to participant %d", s.participant)}
	default:
		return Outcome{}
	}
}

func (s *Session) cancel() Outcome {
	switch s.state {
	case StateSavePrompt:
		s.record.Reset()
		s.state = StateIdle
		return Outcome{Message: "Trial discarded"}
	case StateAdvancePrompt:
		// The trial counter stays past the last trial, so Start is refused
		// until the recorder is restarted.
		s.state = StateIdle
		return Outcome{Message: "Continuing with current participant"}
	default:
		return Outcome{}
	}
}

func (s *Session) save() Outcome {
	path, err := s.saver.Save(s.record, s.participant, s.trial)
	if err != nil {
		if errors.Is(err, trajectory.ErrEmptyRecord) {
			s.record.Reset()
			s.state = StateIdle
			return Outcome{Message: "No trajectory data to save", Err: err}
		}
		return Outcome{Message: fmt.Sprintf("Save failed: %v", err), Err: err}
	}
	msg := fmt.Sprintf("Saved trial data: %s", trajectory.FileName(s.participant, s.trial))
	entry := model.TrialEntry{
		Participant: s.participant,
		Trial:       s.trial,
		RunID:       s.runID,
		Path:        path,
		Samples:     s.record.Len(),
		Events:      s.record.EventCount(),
		DurationSec: s.record.Duration(),
		SavedAt:     s.clock.Now(),
	}
	s.record.Reset()
	s.trial++
	s.state = StateIdle
	if s.trial > s.maxTrials {
		s.state = StateAdvancePrompt
		msg = fmt.Sprintf("%s. All trials completed for participant %d", msg, s.participant)
	}
	return Outcome{Message: msg, Saved: path, Entry: entry}
}
