// Package model defines shared data structures.
package model

import "time"

// Soft bounds enforced where participants and trials are typed in.
const (
	MaxParticipants = 24
	MaxTrials       = 5
)

// Point is a position on the drawing surface.
type Point struct {
	X int
	Y int
}

// Sample is one timestamped pointer observation.
type Sample struct {
	// Timestamp is seconds since tracking started.
	Timestamp float64
	X         int
	Y         int
	Event     int
}

// Point returns the sample position.
func (s Sample) Point() Point {
	return Point{X: s.X, Y: s.Y}
}

// Flagged reports whether the event key was held when the sample was taken.
func (s Sample) Flagged() bool {
	return s.Event == 1
}

// Command is an input-independent action consumed by the state machines.
type Command int

// Commands produced by the key translation layer.
const (
	CommandNone Command = iota
	CommandStart
	CommandStop
	CommandConfirmYes
	CommandConfirmNo
	CommandEventDown
	CommandEventUp
	CommandQuit
	CommandRestart
	CommandTogglePause
	CommandLoad
	CommandUnload
)

var commandNames = map[Command]string{
	CommandNone:        "none",
	CommandStart:       "start",
	CommandStop:        "stop",
	CommandConfirmYes:  "yes",
	CommandConfirmNo:   "no",
	CommandEventDown:   "event-down",
	CommandEventUp:     "event-up",
	CommandQuit:        "quit",
	CommandRestart:     "restart",
	CommandTogglePause: "pause",
	CommandLoad:        "load",
	CommandUnload:      "stop-replay",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return "unknown"
}

// InputState carries input flags sampled into every motion event.
type InputState struct {
	EventHeld bool
}

// Apply returns the state after the given command.
func (s InputState) Apply(cmd Command) InputState {
	switch cmd {
	case CommandEventDown:
		s.EventHeld = true
	case CommandEventUp:
		s.EventHeld = false
	}
	return s
}

// EventFlag returns the value stored in a sample's event column.
func (s InputState) EventFlag() int {
	if s.EventHeld {
		return 1
	}
	return 0
}

// RecorderConfig defines recording settings.
type RecorderConfig struct {
	DataDir      string
	CatalogPath  string
	MaxTrials    int
	Surface      int
	EventRelease time.Duration
	FPS          int
}

// ReplayConfig defines replay settings.
type ReplayConfig struct {
	DataDir         string
	CatalogPath     string
	MaxParticipants int
	MaxTrials       int
	DelayCap        time.Duration
	Surface         int
	FPS             int
}

// TrialEntry is a catalog row describing a saved trial.
type TrialEntry struct {
	Participant int
	Trial       int
	// RunID identifies the recorder run that saved the trial.
	RunID       string
	Path        string
	Samples     int
	Events      int
	DurationSec float64
	SavedAt     time.Time
}
