package replayui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/pursuit/internal/model"
	"github.com/verte-zerg/pursuit/internal/playback"
	"github.com/verte-zerg/pursuit/internal/trajectory"
)

// ErrInvalidSelection means the typed participant or trial is not usable.
var ErrInvalidSelection = errors.New("invalid selection")

// ParseSelection validates a typed participant and trial against their
// bounds.
func ParseSelection(participant, trial string, maxParticipants, maxTrials int) (int, int, error) {
	p, err := parseBounded("participant", participant, maxParticipants)
	if err != nil {
		return 0, 0, err
	}
	t, err := parseBounded("trial", trial, maxTrials)
	if err != nil {
		return 0, 0, err
	}
	return p, t, nil
}

func parseBounded(name, input string, limit int) (int, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, fmt.Errorf("%w: %s is required", ErrInvalidSelection, name)
	}
	v, err := strconv.Atoi(input)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number", ErrInvalidSelection, name)
	}
	if v < 1 || v > limit {
		return 0, fmt.Errorf("%w: %s must be between 1 and %d", ErrInvalidSelection, name, limit)
	}
	return v, nil
}

func newSelectInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 4
	input.Width = 6
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func buildRecordTable(refs []trajectory.Ref, height int) table.Model {
	columns := []table.Column{
		{Title: "Participant", Width: 11},
		{Title: "Trial", Width: 5},
		{Title: "File", Width: 18},
	}
	rows := make([]table.Row, 0, len(refs))
	for _, ref := range refs {
		rows = append(rows, table.Row{
			strconv.Itoa(ref.Participant),
			strconv.Itoa(ref.Trial),
			trajectory.FileName(ref.Participant, ref.Trial),
		})
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(maxInt(1, height)),
		table.WithFocused(true),
	)
	t.SetStyles(recordTableStyles())
	return t
}

func recordTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (m *Model) startSelection() tea.Cmd {
	m.selecting = true
	m.selectErr = ""
	if m.engine != nil && m.engine.State() == playback.StatePlaying {
		m.engine.Handle(model.CommandTogglePause, m.clock.Now())
		m.resumeAfterSelect = true
	}
	refs, err := m.dir.List()
	if err != nil {
		logErrf("failed to list records: %v\n", err)
		m.selectErr = err.Error()
	}
	m.refs = refs
	m.records = buildRecordTable(refs, m.tableHeight())
	if m.participant > 0 {
		m.inputs[0].SetValue(strconv.Itoa(m.participant))
		m.inputs[1].SetValue(strconv.Itoa(m.trial))
	}
	return m.setInputIndex(0)
}

func (m *Model) updateSelection(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.selecting = false
		m.selectErr = ""
		if m.resumeAfterSelect && m.engine != nil {
			m.engine.Handle(model.CommandTogglePause, m.clock.Now())
		}
		m.resumeAfterSelect = false
		return m, nil
	case tea.KeyEnter:
		p, t, err := ParseSelection(m.inputs[0].Value(), m.inputs[1].Value(), m.cfg.MaxParticipants, m.cfg.MaxTrials)
		if err != nil {
			m.selectErr = err.Error()
			return m, nil
		}
		if err := m.Load(p, t); err != nil {
			m.selectErr = err.Error()
			return m, nil
		}
		return m, nil
	case tea.KeyTab:
		return m, m.setInputIndex(m.inputIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setInputIndex(m.inputIndex - 1)
	case tea.KeyUp, tea.KeyDown:
		if msg.Type == tea.KeyUp {
			m.records.MoveUp(1)
		} else {
			m.records.MoveDown(1)
		}
		m.fillFromTable()
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.inputIndex], cmd = m.inputs[m.inputIndex].Update(msg)
	return m, cmd
}

func (m *Model) fillFromTable() {
	row := m.records.SelectedRow()
	if len(row) < 2 {
		return
	}
	m.inputs[0].SetValue(row[0])
	m.inputs[1].SetValue(row[1])
}

func (m *Model) setInputIndex(idx int) tea.Cmd {
	count := len(m.inputs)
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.inputIndex = idx
	var cmd tea.Cmd
	for i := range m.inputs {
		if i == m.inputIndex {
			cmd = m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) tableHeight() int {
	// Title, two inputs, error line, blank line and help.
	return maxInt(1, m.height-7)
}

func (m *Model) renderSelection() string {
	lines := []string{
		titleStyle.Render("TRIAL SELECTION"),
		m.inputs[0].View(),
		m.inputs[1].View(),
	}
	if m.selectErr != "" {
		lines = append(lines, errorStyle.Render(m.selectErr))
	} else {
		lines = append(lines, "")
	}
	if len(m.refs) == 0 {
		lines = append(lines, mutedStyle.Render("No records found in "+m.dir.Path()))
	} else {
		lines = append(lines, m.records.View())
	}
	lines = append(lines, helpStyle.Render("tab: switch field  ↑/↓: pick record  enter: load  esc: cancel"))
	return strings.Join(lines, "\n")
}
