// Package recordui provides the Bubble Tea recording interface.
package recordui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/pursuit/internal/canvas"
	"github.com/verte-zerg/pursuit/internal/clock"
	"github.com/verte-zerg/pursuit/internal/keymap"
	"github.com/verte-zerg/pursuit/internal/model"
	"github.com/verte-zerg/pursuit/internal/trial"
)

// headerRows is the number of terminal rows above the canvas.
const headerRows = 2

const defaultFPS = 60

// Catalog indexes saved trials.
type Catalog interface {
	UpsertTrial(ctx context.Context, entry model.TrialEntry) error
}

type tickMsg time.Time

var (
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	idleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0"))
	eventStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	surfaceStyle = lipgloss.NewStyle().Background(lipgloss.Color(canvas.Black.Hex()))
)

// Model implements the Bubble Tea recorder UI.
type Model struct {
	cfg     model.RecorderConfig
	session *trial.Session
	keys    *keymap.Translator
	clock   clock.Clock
	catalog Catalog

	input  model.InputState
	canvas *canvas.Canvas

	width  int
	height int

	message  string
	errMsg   string
	quitting bool
}

// NewModel constructs a recorder model. catalog may be nil.
func NewModel(cfg model.RecorderConfig, session *trial.Session, keys *keymap.Translator, clk clock.Clock, catalog Catalog) *Model {
	if cfg.Surface <= 0 {
		cfg.Surface = canvas.DefaultSurface
	}
	if cfg.FPS <= 0 {
		cfg.FPS = defaultFPS
	}
	m := &Model{
		cfg:     cfg,
		session: session,
		keys:    keys,
		clock:   clk,
		catalog: catalog,
	}
	m.resize(0, 0)
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.tick()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tickMsg:
		if cmd := m.keys.Expire(m.clock.Now()); cmd != model.CommandNone {
			m.input = m.input.Apply(cmd)
		}
		return m, m.tick()
	case tea.MouseMsg:
		if msg.Action != tea.MouseActionMotion {
			return m, nil
		}
		if p, ok := m.pointAt(msg.X, msg.Y); ok {
			m.session.Motion(p.X, p.Y, m.input)
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cmd := m.keys.Press(msg, m.clock.Now())
	switch cmd {
	case model.CommandNone:
		return m, nil
	case model.CommandEventDown, model.CommandEventUp:
		m.input = m.input.Apply(cmd)
		return m, nil
	}
	out := m.session.Handle(cmd)
	if out.Quit {
		m.quitting = true
		return m, tea.Quit
	}
	m.report(out)
	return m, nil
}

func (m *Model) report(out trial.Outcome) {
	if out.Message != "" {
		m.message = out.Message
	}
	m.errMsg = ""
	if out.Err != nil {
		m.errMsg = out.Err.Error()
		logErrf("%s\n", out.Message)
	}
	if out.Saved == "" {
		return
	}
	if m.catalog == nil {
		return
	}
	if err := m.catalog.UpsertTrial(context.Background(), out.Entry); err != nil {
		logErrf("failed to index trial: %v\n", err)
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	lines := []string{
		statusStyle.Render(canvas.StatusLine(m.statusText(), m.width)),
		m.renderPrompt(),
	}
	body := m.renderSurface()
	footer := m.renderFooter()
	out := strings.Join(lines, "\n") + "\n" + body
	if footer != "" {
		out += "\n" + footer
	}
	return out
}

func (m *Model) statusText() string {
	text := fmt.Sprintf("Participant: %d | Trial: %d/%d", m.session.Participant(), m.session.Trial(), m.session.MaxTrials())
	if m.session.Tracking() {
		text += fmt.Sprintf(" | Samples: %d", m.session.Record().Len())
	}
	return text
}

func (m *Model) renderPrompt() string {
	bindings := m.keys.Bindings()
	yes := bindings.KeyFor(model.CommandConfirmYes)
	no := bindings.KeyFor(model.CommandConfirmNo)
	switch m.session.State() {
	case trial.StateSavePrompt:
		return promptStyle.Render(fmt.Sprintf("Save this trial? (%s/%s)", yes, no))
	case trial.StateAdvancePrompt:
		return promptStyle.Render(fmt.Sprintf("Move to next participant? (%s/%s)", yes, no))
	case trial.StateTracking:
		if m.input.EventHeld {
			return eventStyle.Render("● EVENT")
		}
		return idleStyle.Render("Tracking")
	default:
		return idleStyle.Render(fmt.Sprintf("Press '%s' to start tracking | '%s' to stop | %s to quit",
			bindings.KeyFor(model.CommandStart),
			bindings.KeyFor(model.CommandStop),
			bindings.KeyFor(model.CommandQuit)))
	}
}

func (m *Model) renderSurface() string {
	m.canvas.Clear()
	if m.session.Tracking() {
		samples := m.session.Record().Samples
		points := make([]model.Point, 0, len(samples))
		for _, s := range samples {
			points = append(points, s.Point())
		}
		m.canvas.Polyline(points, canvas.Red)
	}
	return surfaceStyle.Render(m.canvas.Render())
}

func (m *Model) renderFooter() string {
	if m.errMsg != "" {
		return errorStyle.Render(canvas.StatusLine(m.message, m.width))
	}
	if m.message == "" {
		return ""
	}
	return footerStyle.Render(canvas.StatusLine(m.message, m.width))
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	cols, rows := canvas.Fit(width, height-headerRows-1)
	if m.canvas != nil {
		if c, r := m.canvas.Size(); c == cols && r == rows {
			return
		}
	}
	m.canvas = canvas.New(m.cfg.Surface, cols, rows)
}

// pointAt maps a terminal cell to the drawing surface. Cells outside the
// canvas are ignored.
func (m *Model) pointAt(col, row int) (model.Point, bool) {
	row -= headerRows
	cols, rows := m.canvas.Size()
	if col < 0 || row < 0 || col >= cols || row >= rows {
		return model.Point{}, false
	}
	return m.canvas.FromCell(col, row), true
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.cfg.FPS), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
