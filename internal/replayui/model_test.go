package replayui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/pursuit/internal/clock"
	"github.com/verte-zerg/pursuit/internal/keymap"
	"github.com/verte-zerg/pursuit/internal/model"
	"github.com/verte-zerg/pursuit/internal/playback"
	"github.com/verte-zerg/pursuit/internal/trajectory"
)

func TestParseSelection(t *testing.T) {
	cases := []struct {
		name        string
		participant string
		trial       string
		wantP       int
		wantT       int
		wantErr     bool
	}{
		{name: "valid", participant: "3", trial: "2", wantP: 3, wantT: 2},
		{name: "spaces", participant: " 24 ", trial: "5", wantP: 24, wantT: 5},
		{name: "non numeric", participant: "abc", trial: "1", wantErr: true},
		{name: "zero", participant: "0", trial: "1", wantErr: true},
		{name: "participant too high", participant: "25", trial: "1", wantErr: true},
		{name: "trial too high", participant: "1", trial: "6", wantErr: true},
		{name: "empty", participant: "", trial: "1", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, tr, err := ParseSelection(tc.participant, tc.trial, 24, 5)
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidSelection) {
					t.Fatalf("expected ErrInvalidSelection, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p != tc.wantP || tr != tc.wantT {
				t.Fatalf("got %d/%d, want %d/%d", p, tr, tc.wantP, tc.wantT)
			}
		})
	}
}

func newTestModel(t *testing.T) (*Model, *trajectory.Dir, *clock.VirtualClock) {
	t.Helper()
	dir := trajectory.NewDir(t.TempDir())
	clk := clock.NewVirtualClock(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	keys := keymap.NewTranslator(keymap.ReplayDefaults(), 0)
	m := NewModel(model.ReplayConfig{DelayCap: 100 * time.Millisecond}, dir, keys, clk)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return m, dir, clk
}

func saveRecord(t *testing.T, dir *trajectory.Dir, participant, trial int) {
	t.Helper()
	var rec trajectory.Record
	rec.Append(model.Sample{Timestamp: 0, X: 100, Y: 100})
	rec.Append(model.Sample{Timestamp: 0.05, X: 200, Y: 150, Event: 1})
	rec.Append(model.Sample{Timestamp: 0.2, X: 300, Y: 300})
	if _, err := dir.Save(rec, participant, trial); err != nil {
		t.Fatalf("save record: %v", err)
	}
}

func typeKeys(m *Model, s string) {
	for _, r := range s {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestLoadMissingKeepsRunning(t *testing.T) {
	m, _, _ := newTestModel(t)
	typeKeys(m, "4")
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	typeKeys(m, "2")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatalf("expected no command after failed load")
	}
	if !m.Selecting() || m.Loaded() {
		t.Fatalf("expected to stay on the selection screen")
	}
	if !strings.Contains(m.View(), "file not found: SHSA_4_2.csv") {
		t.Fatalf("expected not-found message in view: %s", m.View())
	}
}

func TestInvalidSelectionReported(t *testing.T) {
	m, _, _ := newTestModel(t)
	typeKeys(m, "30")
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	typeKeys(m, "1")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !strings.Contains(m.selectErr, "between 1 and 24") {
		t.Fatalf("unexpected selection error %q", m.selectErr)
	}
}

func TestSelectFromTable(t *testing.T) {
	m, dir, _ := newTestModel(t)
	saveRecord(t, dir, 1, 1)
	saveRecord(t, dir, 2, 3)
	m.startSelection()
	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.inputs[0].Value() != "2" || m.inputs[1].Value() != "3" {
		t.Fatalf("expected inputs filled from table, got %q/%q", m.inputs[0].Value(), m.inputs[1].Value())
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.Loaded() || m.participant != 2 || m.trial != 3 {
		t.Fatalf("expected participant 2 trial 3 loaded")
	}
}

func TestPlaybackRunsOnTicks(t *testing.T) {
	m, dir, clk := newTestModel(t)
	saveRecord(t, dir, 1, 1)
	if err := m.Load(1, 1); err != nil {
		t.Fatalf("load: %v", err)
	}
	if m.Engine().State() != playback.StateLoaded {
		t.Fatalf("expected paused engine after load")
	}
	m.Update(tickMsg(clk.Now()))
	if m.Engine().Cursor() != 0 {
		t.Fatalf("paused engine should not advance")
	}

	typeKeys(m, "p")
	m.Update(tickMsg(clk.Now()))
	if m.Engine().Cursor() != 1 {
		t.Fatalf("expected first sample drawn, cursor %d", m.Engine().Cursor())
	}
	clk.Advance(50 * time.Millisecond)
	m.Update(tickMsg(clk.Now()))
	if m.Engine().Cursor() != 2 || len(m.Engine().Markers()) != 1 {
		t.Fatalf("expected second sample with marker, cursor %d markers %d", m.Engine().Cursor(), len(m.Engine().Markers()))
	}
	clk.Advance(100 * time.Millisecond)
	m.Update(tickMsg(clk.Now()))
	if m.Engine().State() != playback.StateCompleted {
		t.Fatalf("expected completed, got %s", m.Engine().State())
	}
	view := m.View()
	if !strings.Contains(view, "COMPLETED") || !strings.Contains(view, "Replay completed") {
		t.Fatalf("unexpected view: %s", view)
	}

	typeKeys(m, "r")
	if m.Engine().State() != playback.StateLoaded || len(m.Engine().Markers()) != 0 {
		t.Fatalf("expected restart to clear markers")
	}
}

func TestPlaybackHeldWhileSelecting(t *testing.T) {
	m, dir, clk := newTestModel(t)
	saveRecord(t, dir, 1, 1)
	if err := m.Load(1, 1); err != nil {
		t.Fatalf("load: %v", err)
	}
	typeKeys(m, "p")
	m.Update(tickMsg(clk.Now()))
	if m.Engine().Cursor() != 1 {
		t.Fatalf("expected first sample drawn, cursor %d", m.Engine().Cursor())
	}

	m.startSelection()
	if m.Engine().State() != playback.StateLoaded {
		t.Fatalf("expected playback paused while selecting, got %s", m.Engine().State())
	}
	clk.Advance(time.Second)
	m.Update(tickMsg(clk.Now()))
	if m.Engine().Cursor() != 1 {
		t.Fatalf("expected playback held while selecting, cursor %d", m.Engine().Cursor())
	}

	// Closing the selection resumes with the 50ms that were left, without catching up.
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.Engine().State() != playback.StatePlaying {
		t.Fatalf("expected playback resumed, got %s", m.Engine().State())
	}
	m.Update(tickMsg(clk.Now()))
	if m.Engine().Cursor() != 1 {
		t.Fatalf("expected no catch-up after closing selection, cursor %d", m.Engine().Cursor())
	}
	clk.Advance(50 * time.Millisecond)
	m.Update(tickMsg(clk.Now()))
	if m.Engine().Cursor() != 2 {
		t.Fatalf("expected playback to continue after closing selection, cursor %d", m.Engine().Cursor())
	}
}

func TestUnloadAndReload(t *testing.T) {
	m, dir, _ := newTestModel(t)
	saveRecord(t, dir, 1, 1)
	if err := m.Load(1, 1); err != nil {
		t.Fatalf("load: %v", err)
	}
	typeKeys(m, "q")
	if m.Loaded() {
		t.Fatalf("expected replay to stop")
	}
	if !strings.Contains(m.View(), "No trial loaded") {
		t.Fatalf("expected idle view")
	}
	typeKeys(m, "r")
	if !m.Selecting() {
		t.Fatalf("expected restart with nothing loaded to open selection")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}
