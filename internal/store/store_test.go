package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/pursuit/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "catalog", "catalog.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestUpsertAndListTrials(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	entries := []model.TrialEntry{
		{Participant: 2, Trial: 1, Path: "SHSA_2_1.csv", Samples: 10, Events: 2, DurationSec: 1.5, SavedAt: base},
		{Participant: 1, Trial: 2, Path: "SHSA_1_2.csv", Samples: 20, Events: 0, DurationSec: 3, SavedAt: base.Add(time.Minute)},
		{Participant: 1, Trial: 1, Path: "SHSA_1_1.csv", Samples: 5, Events: 1, DurationSec: 0.5, SavedAt: base.Add(2 * time.Minute)},
	}
	for _, e := range entries {
		if err := st.UpsertTrial(ctx, e); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	all, err := st.ListTrials(ctx, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(all))
	}
	if all[0].Participant != 1 || all[0].Trial != 1 || all[2].Participant != 2 {
		t.Fatalf("unexpected order: %+v", all)
	}
	if !all[0].SavedAt.Equal(base.Add(2 * time.Minute)) {
		t.Fatalf("unexpected saved at %v", all[0].SavedAt)
	}

	only, err := st.ListTrials(ctx, 1)
	if err != nil {
		t.Fatalf("list participant: %v", err)
	}
	if len(only) != 2 {
		t.Fatalf("expected 2 entries for participant 1, got %d", len(only))
	}
}

func TestUpsertReplacesResave(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	first := model.TrialEntry{Participant: 3, Trial: 1, RunID: "run-a", Path: "a.csv", Samples: 1, SavedAt: time.Unix(0, 0)}
	second := model.TrialEntry{Participant: 3, Trial: 1, RunID: "run-b", Path: "b.csv", Samples: 9, Events: 4, SavedAt: time.Unix(60, 0)}
	if err := st.UpsertTrial(ctx, first); err != nil {
		t.Fatalf("upsert first: %v", err)
	}
	if err := st.UpsertTrial(ctx, second); err != nil {
		t.Fatalf("upsert second: %v", err)
	}
	got, err := st.ListTrials(ctx, 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].Path != "b.csv" || got[0].RunID != "run-b" || got[0].Samples != 9 || got[0].Events != 4 {
		t.Fatalf("expected replaced entry, got %+v", got)
	}
}
