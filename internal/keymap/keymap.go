// Package keymap translates terminal key presses into commands.
package keymap

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/pursuit/internal/model"
)

// DefaultEventRelease is how long the event key counts as held after the
// last press or autorepeat.
const DefaultEventRelease = 600 * time.Millisecond

// Bindings maps key names to commands.
type Bindings map[string]model.Command

// RecorderDefaults returns the recorder's default bindings.
func RecorderDefaults() Bindings {
	return Bindings{
		"s":      model.CommandStart,
		"q":      model.CommandStop,
		"y":      model.CommandConfirmYes,
		"n":      model.CommandConfirmNo,
		"space":  model.CommandEventDown,
		"esc":    model.CommandQuit,
		"ctrl+c": model.CommandQuit,
	}
}

// ReplayDefaults returns the replayer's default bindings.
func ReplayDefaults() Bindings {
	return Bindings{
		"l":      model.CommandLoad,
		"p":      model.CommandTogglePause,
		"q":      model.CommandUnload,
		"r":      model.CommandRestart,
		"esc":    model.CommandQuit,
		"ctrl+c": model.CommandQuit,
	}
}

// commandByName resolves config names, matching Command.String.
var commandByName = map[string]model.Command{
	model.CommandStart.String():       model.CommandStart,
	model.CommandStop.String():        model.CommandStop,
	model.CommandConfirmYes.String():  model.CommandConfirmYes,
	model.CommandConfirmNo.String():   model.CommandConfirmNo,
	"event":                           model.CommandEventDown,
	model.CommandQuit.String():        model.CommandQuit,
	model.CommandRestart.String():     model.CommandRestart,
	model.CommandTogglePause.String(): model.CommandTogglePause,
	model.CommandLoad.String():        model.CommandLoad,
	model.CommandUnload.String():      model.CommandUnload,
}

// Override rebinds commands from a command-name to key-name table. The
// previous key of each overridden command is dropped. ctrl+c stays bound
// to quit.
func (b Bindings) Override(keys map[string]string) (Bindings, error) {
	out := make(Bindings, len(b))
	for k, v := range b {
		out[k] = v
	}
	names := make([]string, 0, len(keys))
	for name := range keys {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		cmd, ok := commandByName[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("unknown command %q in [keys]", name)
		}
		key := normalizeName(keys[name])
		if key == "" {
			return nil, fmt.Errorf("empty key for command %q", name)
		}
		for k, v := range out {
			if v == cmd && k != "ctrl+c" {
				delete(out, k)
			}
		}
		out[key] = cmd
	}
	return out, nil
}

// KeyFor returns the key bound to cmd, for help text.
func (b Bindings) KeyFor(cmd model.Command) string {
	keys := make([]string, 0, 1)
	for k, v := range b {
		if v == cmd && k != "ctrl+c" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return ""
	}
	sort.Strings(keys)
	return strings.ToUpper(keys[0])
}

// KeyName returns a stable name for a key message.
func KeyName(msg tea.KeyMsg) string {
	switch msg.Type {
	case tea.KeySpace:
		return "space"
	case tea.KeyEsc:
		return "esc"
	case tea.KeyRunes:
		if len(msg.Runes) == 1 && msg.Runes[0] == ' ' {
			return "space"
		}
		return strings.ToLower(string(msg.Runes))
	}
	return normalizeName(msg.String())
}

func normalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	switch name {
	case " ":
		return "space"
	case "escape":
		return "esc"
	}
	return name
}

// Translator turns key presses into commands. Terminals do not report key
// releases, so the event key is held from its first press until no press or
// autorepeat arrives for the release timeout.
type Translator struct {
	bindings Bindings
	release  time.Duration

	held     bool
	deadline time.Time
}

// NewTranslator builds a translator. A non-positive release uses
// DefaultEventRelease.
func NewTranslator(b Bindings, release time.Duration) *Translator {
	if release <= 0 {
		release = DefaultEventRelease
	}
	return &Translator{bindings: b, release: release}
}

// Bindings returns the active bindings.
func (t *Translator) Bindings() Bindings { return t.bindings }

// Press translates a key press at now.
func (t *Translator) Press(msg tea.KeyMsg, now time.Time) model.Command {
	cmd, ok := t.bindings[KeyName(msg)]
	if !ok {
		return model.CommandNone
	}
	if cmd != model.CommandEventDown {
		return cmd
	}
	t.deadline = now.Add(t.release)
	if t.held {
		return model.CommandNone
	}
	t.held = true
	return model.CommandEventDown
}

// Expire releases the event key once its hold has lapsed.
func (t *Translator) Expire(now time.Time) model.Command {
	if !t.held || now.Before(t.deadline) {
		return model.CommandNone
	}
	t.held = false
	return model.CommandEventUp
}
