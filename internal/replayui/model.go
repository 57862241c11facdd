// Package replayui provides the Bubble Tea replay interface.
package replayui

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/pursuit/internal/canvas"
	"github.com/verte-zerg/pursuit/internal/clock"
	"github.com/verte-zerg/pursuit/internal/keymap"
	"github.com/verte-zerg/pursuit/internal/model"
	"github.com/verte-zerg/pursuit/internal/playback"
	"github.com/verte-zerg/pursuit/internal/trajectory"
)

const (
	headerRows   = 2
	defaultFPS   = 60
	markerRadius = 10
)

type tickMsg time.Time

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	paperStyle  = lipgloss.NewStyle().Background(lipgloss.Color(canvas.White.Hex()))
)

// Model implements the Bubble Tea replay UI.
type Model struct {
	cfg   model.ReplayConfig
	dir   *trajectory.Dir
	keys  *keymap.Translator
	clock clock.Clock

	selecting  bool
	inputs     []textinput.Model
	inputIndex int
	selectErr  string
	refs       []trajectory.Ref
	records    table.Model

	// resumeAfterSelect is set when opening the selection paused playback.
	resumeAfterSelect bool

	engine      *playback.Engine
	participant int
	trial       int
	canvas      *canvas.Canvas

	width  int
	height int

	message string
}

// NewModel constructs a replay model. It opens on the selection screen.
func NewModel(cfg model.ReplayConfig, dir *trajectory.Dir, keys *keymap.Translator, clk clock.Clock) *Model {
	if cfg.MaxParticipants <= 0 {
		cfg.MaxParticipants = model.MaxParticipants
	}
	if cfg.MaxTrials <= 0 {
		cfg.MaxTrials = model.MaxTrials
	}
	if cfg.Surface <= 0 {
		cfg.Surface = canvas.DefaultSurface
	}
	if cfg.FPS <= 0 {
		cfg.FPS = defaultFPS
	}
	m := &Model{
		cfg:   cfg,
		dir:   dir,
		keys:  keys,
		clock: clk,
		inputs: []textinput.Model{
			newSelectInput(fmt.Sprintf("Participant number (1-%d): ", cfg.MaxParticipants)),
			newSelectInput(fmt.Sprintf("Trial number (1-%d): ", cfg.MaxTrials)),
		},
	}
	m.startSelection()
	m.resize(0, 0)
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.tick(), textinput.Blink)
}

// Loaded reports whether a record is being replayed.
func (m *Model) Loaded() bool { return m.engine != nil }

// Selecting reports whether the selection screen is open.
func (m *Model) Selecting() bool { return m.selecting }

// Engine returns the active playback engine, or nil.
func (m *Model) Engine() *playback.Engine { return m.engine }

// Load replaces the current replay with the record for participant and
// trial. On failure the current state is kept and the error is returned.
func (m *Model) Load(participant, trial int) error {
	rec, warnings, err := m.dir.Load(participant, trial)
	if err != nil {
		switch {
		case errors.Is(err, trajectory.ErrRecordNotFound):
			logErrf("File not found: %s\n", m.dir.RecordPath(participant, trial))
			return fmt.Errorf("file not found: %s", trajectory.FileName(participant, trial))
		case errors.Is(err, trajectory.ErrInvalidRecord):
			logErrf("%v\n", err)
			return fmt.Errorf("%s: %w", trajectory.FileName(participant, trial), trajectory.ErrInvalidRecord)
		default:
			logErrf("failed to load record: %v\n", err)
			return err
		}
	}
	for _, w := range warnings {
		logErrf("Warning: %v\n", w)
	}
	m.engine = playback.New(rec, m.cfg.DelayCap)
	m.participant = participant
	m.trial = trial
	m.selecting = false
	m.resumeAfterSelect = false
	m.selectErr = ""
	m.message = fmt.Sprintf("Loaded %d data points from %s", rec.Len(), trajectory.FileName(participant, trial))
	if len(warnings) > 0 {
		m.message += fmt.Sprintf(" (%d warnings)", len(warnings))
	}
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tickMsg:
		if !m.selecting {
			m.step()
		}
		return m, m.tick()
	case tea.KeyMsg:
		if m.selecting {
			return m.updateSelection(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	now := m.clock.Now()
	cmd := m.keys.Press(msg, now)
	if cmd == model.CommandRestart && m.engine == nil {
		cmd = model.CommandLoad
	}
	switch cmd {
	case model.CommandQuit:
		return m, tea.Quit
	case model.CommandLoad:
		return m, m.startSelection()
	case model.CommandUnload:
		if m.engine != nil {
			m.engine = nil
			m.message = "Replay stopped"
		}
		return m, nil
	case model.CommandTogglePause, model.CommandRestart:
		if m.engine == nil {
			return m, nil
		}
		if m.engine.Handle(cmd, now) {
			m.message = ""
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) step() {
	if m.engine == nil {
		return
	}
	before := m.engine.State()
	m.engine.Step(m.clock.Now())
	if before != playback.StateCompleted && m.engine.State() == playback.StateCompleted {
		m.message = "Replay completed"
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.selecting {
		return m.renderSelection()
	}
	lines := []string{
		statusStyle.Render(canvas.StatusLine(m.statusText(), m.width)),
		helpStyle.Render(canvas.StatusLine(m.helpText(), m.width)),
		paperStyle.Render(m.renderSurface()),
	}
	if m.message != "" {
		lines = append(lines, mutedStyle.Render(canvas.StatusLine(m.message, m.width)))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) statusText() string {
	if m.engine == nil {
		return "No trial loaded"
	}
	var state string
	switch m.engine.State() {
	case playback.StateLoaded:
		state = "PAUSED"
	case playback.StatePlaying:
		state = "PLAYING"
	default:
		state = "COMPLETED"
	}
	return fmt.Sprintf("%s | %s | %d/%d (%.0f%%) | Events: %d",
		trajectory.FileName(m.participant, m.trial),
		state,
		m.engine.Cursor(), m.engine.Len(), m.engine.Progress()*100,
		len(m.engine.Markers()))
}

func (m *Model) helpText() string {
	b := m.keys.Bindings()
	if m.engine == nil {
		return fmt.Sprintf("%s: load trial  %s: quit", b.KeyFor(model.CommandLoad), b.KeyFor(model.CommandQuit))
	}
	return fmt.Sprintf("%s: play/pause  %s: restart  %s: stop replay  %s: load trial  %s: quit",
		b.KeyFor(model.CommandTogglePause),
		b.KeyFor(model.CommandRestart),
		b.KeyFor(model.CommandUnload),
		b.KeyFor(model.CommandLoad),
		b.KeyFor(model.CommandQuit))
}

func (m *Model) renderSurface() string {
	m.canvas.Clear()
	if m.engine != nil {
		DrawReplay(m.canvas, m.engine)
	}
	return m.canvas.Render()
}

// DrawReplay draws the path and event markers the engine has produced so far.
func DrawReplay(c *canvas.Canvas, e *playback.Engine) {
	for _, seg := range e.Segments() {
		c.Line(seg.From, seg.To, canvas.Red)
	}
	if p, ok := e.Current(); ok && len(e.Segments()) == 0 {
		c.Line(p, p, canvas.Red)
	}
	for _, p := range e.Markers() {
		c.Disc(p, markerRadius, canvas.Red)
	}
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.records.SetHeight(m.tableHeight())
	cols, rows := canvas.Fit(width, height-headerRows-1)
	if m.canvas != nil {
		if c, r := m.canvas.Size(); c == cols && r == rows {
			return
		}
	}
	m.canvas = canvas.New(m.cfg.Surface, cols, rows)
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.cfg.FPS), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
