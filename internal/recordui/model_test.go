package recordui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/pursuit/internal/clock"
	"github.com/verte-zerg/pursuit/internal/keymap"
	"github.com/verte-zerg/pursuit/internal/model"
	"github.com/verte-zerg/pursuit/internal/trajectory"
	"github.com/verte-zerg/pursuit/internal/trial"
)

type fakeCatalog struct {
	entries []model.TrialEntry
	err     error
}

func (f *fakeCatalog) UpsertTrial(_ context.Context, entry model.TrialEntry) error {
	f.entries = append(f.entries, entry)
	return f.err
}

type failingSaver struct{}

func (failingSaver) Save(trajectory.Record, int, int) (string, error) {
	return "", trajectory.ErrStorageWrite
}

func newTestModel(t *testing.T, saver trial.Saver, catalog Catalog) (*Model, *clock.VirtualClock) {
	t.Helper()
	clk := clock.NewVirtualClock(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	session := trial.NewSession(saver, clk, 3, 5)
	keys := keymap.NewTranslator(keymap.RecorderDefaults(), 600*time.Millisecond)
	m := NewModel(model.RecorderConfig{Surface: 1000}, session, keys, clk, catalog)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return m, clk
}

func press(m *Model, key string) tea.Cmd {
	msg := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	if key == " " {
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	_, cmd := m.Update(msg)
	return cmd
}

func move(m *Model, x, y int) {
	m.Update(tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionMotion})
}

func TestRecordSaveCycle(t *testing.T) {
	dir := trajectory.NewDir(t.TempDir())
	catalog := &fakeCatalog{}
	m, clk := newTestModel(t, dir, catalog)

	press(m, "s")
	if !m.session.Tracking() {
		t.Fatalf("expected tracking after start")
	}
	move(m, 10, 5)
	clk.Advance(50 * time.Millisecond)
	press(m, " ")
	move(m, 11, 5)
	clk.Advance(700 * time.Millisecond)
	m.Update(tickMsg(clk.Now()))
	move(m, 12, 6)
	press(m, "q")
	if m.session.State() != trial.StateSavePrompt {
		t.Fatalf("expected save prompt, got %s", m.session.State())
	}
	press(m, "y")

	rec, warnings, err := dir.Load(3, 1)
	if err != nil {
		t.Fatalf("load saved record: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if rec.Len() != 3 {
		t.Fatalf("expected 3 samples, got %d", rec.Len())
	}
	events := []int{rec.Samples[0].Event, rec.Samples[1].Event, rec.Samples[2].Event}
	if events[0] != 0 || events[1] != 1 || events[2] != 0 {
		t.Fatalf("unexpected event flags %v", events)
	}
	if len(catalog.entries) != 1 {
		t.Fatalf("expected one catalog entry, got %d", len(catalog.entries))
	}
	entry := catalog.entries[0]
	if entry.Participant != 3 || entry.Trial != 1 || entry.Samples != 3 || entry.Events != 1 {
		t.Fatalf("unexpected catalog entry %+v", entry)
	}
	if filepath.Base(entry.Path) != "SHSA_3_1.csv" {
		t.Fatalf("unexpected entry path %s", entry.Path)
	}
	if m.session.Trial() != 2 {
		t.Fatalf("expected trial 2, got %d", m.session.Trial())
	}
}

func TestMotionIgnoredWhenIdle(t *testing.T) {
	m, _ := newTestModel(t, trajectory.NewDir(t.TempDir()), nil)
	move(m, 10, 5)
	if m.session.Record().Len() != 0 {
		t.Fatalf("expected no samples while idle")
	}
}

func TestMotionOutsideCanvasIgnored(t *testing.T) {
	m, _ := newTestModel(t, trajectory.NewDir(t.TempDir()), nil)
	press(m, "s")
	move(m, 10, 0)
	move(m, 79, 10)
	if m.session.Record().Len() != 0 {
		t.Fatalf("expected header and margin cells to be ignored")
	}
	move(m, 0, headerRows)
	if m.session.Record().Len() != 1 {
		t.Fatalf("expected canvas cell to be sampled")
	}
}

func TestCatalogFailureDoesNotFailSave(t *testing.T) {
	dir := trajectory.NewDir(t.TempDir())
	catalog := &fakeCatalog{err: errors.New("disk full")}
	m, _ := newTestModel(t, dir, catalog)
	press(m, "s")
	move(m, 10, 5)
	press(m, "q")
	press(m, "y")
	if _, _, err := dir.Load(3, 1); err != nil {
		t.Fatalf("expected saved record despite catalog failure: %v", err)
	}
	if m.errMsg != "" {
		t.Fatalf("unexpected error status %q", m.errMsg)
	}
}

func TestSaveFailureKeepsPrompt(t *testing.T) {
	m, _ := newTestModel(t, failingSaver{}, nil)
	press(m, "s")
	move(m, 10, 5)
	press(m, "q")
	press(m, "y")
	if m.session.State() != trial.StateSavePrompt {
		t.Fatalf("expected save prompt to remain, got %s", m.session.State())
	}
	if m.errMsg == "" {
		t.Fatalf("expected error status")
	}
	if !strings.Contains(m.View(), "Save failed") {
		t.Fatalf("expected failure in view")
	}
}

func TestQuitReturnsQuitCmd(t *testing.T) {
	m, _ := newTestModel(t, trajectory.NewDir(t.TempDir()), nil)
	cmd := press(m, "x")
	if cmd != nil {
		t.Fatalf("unbound key should not return a command")
	}
	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestViewShowsStatusAndPrompts(t *testing.T) {
	m, _ := newTestModel(t, trajectory.NewDir(t.TempDir()), nil)
	view := m.View()
	if !strings.Contains(view, "Participant: 3 | Trial: 1/5") {
		t.Fatalf("missing status line: %s", view)
	}
	if !strings.Contains(view, "Press 'S' to start tracking") {
		t.Fatalf("missing idle prompt: %s", view)
	}
	press(m, "s")
	move(m, 10, 5)
	press(m, "q")
	if !strings.Contains(m.View(), "Save this trial? (Y/N)") {
		t.Fatalf("missing save prompt")
	}
}
