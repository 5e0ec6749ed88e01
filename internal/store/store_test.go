package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/cryptology/internal/model"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
	})
	return st
}

func TestInsertAndGetRun(t *testing.T) {
	st := openTemp(t)
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 12, 0, 0, 500, time.UTC)
	id, err := st.InsertRun(ctx, model.Run{
		CreatedAt: created,
		Operation: model.OpCrack,
		Cipher:    model.CipherVigenere,
		Key:       "LEMON",
		KeyLength: 5,
		Score:     12.5,
		InputSize: 420,
		Output:    "attack at dawn",
	}, []model.Candidate{
		{Rank: 2, Label: "length 10", Score: 14},
		{Rank: 1, Label: "length 5", Score: 12.5},
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	run, candidates, err := st.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if run.Key != "LEMON" || run.Cipher != model.CipherVigenere || run.Operation != model.OpCrack {
		t.Fatalf("unexpected run: %+v", run)
	}
	if !run.CreatedAt.Equal(created) {
		t.Fatalf("expected created at %v, got %v", created, run.CreatedAt)
	}
	if len(candidates) != 2 || candidates[0].Label != "length 5" {
		t.Fatalf("expected candidates ordered by rank, got %+v", candidates)
	}
}

func TestGetRunNotFound(t *testing.T) {
	st := openTemp(t)
	if _, _, err := st.GetRun(context.Background(), 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListRunsFilters(t *testing.T) {
	st := openTemp(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ciphers := []model.Cipher{model.CipherCaesar, model.CipherVigenere, model.CipherCaesar, model.CipherCaesar}
	for i, c := range ciphers {
		run := model.Run{CreatedAt: base.Add(time.Duration(i) * time.Hour), Operation: model.OpCrack, Cipher: c, Key: string(rune('A' + i))}
		if _, err := st.InsertRun(ctx, run, nil); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	all, err := st.ListRuns(ctx, model.HistoryFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 4 || all[0].Key != "A" || all[3].Key != "D" {
		t.Fatalf("expected 4 runs oldest first, got %+v", all)
	}

	last, err := st.ListRuns(ctx, model.HistoryFilter{Cipher: model.CipherCaesar, Last: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(last) != 2 || last[0].Key != "C" || last[1].Key != "D" {
		t.Fatalf("expected last two caesar runs, got %+v", last)
	}

	since := base.Add(90 * time.Minute)
	recent, err := st.ListRuns(ctx, model.HistoryFilter{Since: &since})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 runs since %v, got %d", since, len(recent))
	}
}

func TestListRunsByInputDigest(t *testing.T) {
	st := openTemp(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	digests := []string{"aa", "bb", "aa"}
	for i, d := range digests {
		run := model.Run{CreatedAt: base.Add(time.Duration(i) * time.Minute), Operation: model.OpCrack, Cipher: model.CipherCaesar, InputDigest: d}
		if _, err := st.InsertRun(ctx, run, nil); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	same, err := st.ListRuns(ctx, model.HistoryFilter{InputDigest: "aa"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(same) != 2 || same[0].InputDigest != "aa" || same[1].InputDigest != "aa" {
		t.Fatalf("expected 2 runs over input aa, got %+v", same)
	}
}

func TestSummarizeAndDelete(t *testing.T) {
	st := openTemp(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	runs := []model.Run{
		{CreatedAt: base, Operation: model.OpCrack, Cipher: model.CipherCaesar, Score: 10},
		{CreatedAt: base.Add(time.Minute), Operation: model.OpCrack, Cipher: model.CipherCaesar, Score: 20},
		{CreatedAt: base.Add(2 * time.Minute), Operation: model.OpEncrypt, Cipher: model.CipherCaesar},
		{CreatedAt: base.Add(3 * time.Minute), Operation: model.OpEncrypt, Cipher: model.CipherOneTimePad},
	}
	for _, r := range runs {
		if _, err := st.InsertRun(ctx, r, []model.Candidate{{Rank: 1, Label: "x"}}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	sums, err := st.SummarizeCiphers(ctx)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if len(sums) != 2 || sums[0].Cipher != model.CipherCaesar {
		t.Fatalf("unexpected summaries: %+v", sums)
	}
	if sums[0].Runs != 3 || sums[0].Cracks != 2 || sums[0].AvgScore != 15 {
		t.Fatalf("unexpected caesar summary: %+v", sums[0])
	}
	if !sums[0].LastRun.Equal(base.Add(2 * time.Minute)) {
		t.Fatalf("unexpected last run: %v", sums[0].LastRun)
	}

	n, err := st.DeleteRuns(ctx, base.Add(90*time.Second))
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 deleted runs, got %d", n)
	}
	left, err := st.ListRuns(ctx, model.HistoryFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(left) != 2 {
		t.Fatalf("expected 2 runs left, got %d", len(left))
	}
}
