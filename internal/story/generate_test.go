package story

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/souffleinspire/bananaImgGenaration/internal/imagegen"
	"github.com/souffleinspire/bananaImgGenaration/internal/model"
	"github.com/souffleinspire/bananaImgGenaration/internal/runstore"
)

func TestGenerateAllSkipsFailuresAndKeepsOrder(t *testing.T) {
	dir, gen := newHarness(t)
	gen.failAt = map[int]bool{2: true}

	res, err := Generate(context.Background(), gen, runOpts(dir, ModeAll, 7))
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if !indexesEqual(gen.calls, []int{0, 1, 2, 3, 4, 5, 6}) {
		t.Fatalf("expected every index attempted, got %v", gen.calls)
	}
	if res.Generated != 6 || res.Failed != 1 || len(res.Paths) != 6 {
		t.Fatalf("unexpected result: %+v", res)
	}

	last := -1
	for _, p := range res.Paths {
		if !runstore.FileExists(p) {
			t.Fatalf("manifest path missing on disk: %s", p)
		}
		idx, ok := imagegen.ParseIndex(filepath.Base(p), "card")
		if !ok || idx <= last {
			t.Fatalf("manifest out of order at %s", p)
		}
		last = idx
	}

	table, err := LoadState(dir)
	if err != nil {
		t.Fatalf("load state failed: %v", err)
	}
	if table.Generated != 6 || table.Failed != 1 {
		t.Fatalf("state counts mismatch: %+v", table)
	}
	failed := table.Slot(2)
	if failed.Status != model.StatusFailed || failed.Reason != imagegen.ReasonBadStatus || failed.Attempts != 1 {
		t.Fatalf("failed slot mismatch: %+v", failed)
	}
	if !strings.Contains(failed.LastError, "404") {
		t.Fatalf("expected last error to carry status, got %q", failed.LastError)
	}
}

func TestGenerateRemainingTwiceMakesNoSecondCalls(t *testing.T) {
	dir, gen := newHarness(t)

	first, err := Generate(context.Background(), gen, runOpts(dir, ModeRemaining, 7))
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if len(gen.calls) != 7 || len(first.Paths) != 7 {
		t.Fatalf("first run: calls=%v paths=%d", gen.calls, len(first.Paths))
	}

	gen.calls = nil
	second, err := Generate(context.Background(), gen, runOpts(dir, ModeRemaining, 7))
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if len(gen.calls) != 0 {
		t.Fatalf("expected zero generator calls, got %v", gen.calls)
	}
	if second.Skipped != 7 || len(second.Paths) != 7 {
		t.Fatalf("second run result mismatch: %+v", second)
	}
	for i := range first.Paths {
		if first.Paths[i] != second.Paths[i] {
			t.Fatalf("manifest changed between runs at %d: %s vs %s", i, first.Paths[i], second.Paths[i])
		}
	}
}

func TestGenerateRemainingSkipsFilesOnDisk(t *testing.T) {
	dir, gen := newHarness(t)
	touch(t, dir, "card_00_20240101_000000.png")
	touch(t, dir, "card_02_20240101_000000.png")
	touch(t, dir, "card_05_20240101_000000.png")
	touch(t, dir, "notes.txt")

	opts := runOpts(dir, ModeRemaining, 7)
	progress := &bytes.Buffer{}
	opts.Progress = progress

	res, err := Generate(context.Background(), gen, opts)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if !indexesEqual(gen.calls, []int{1, 3, 4, 6}) {
		t.Fatalf("expected only the complement generated, got %v", gen.calls)
	}
	if res.Skipped != 3 || len(res.Paths) != 7 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if !strings.Contains(progress.String(), "skip 3/7 (exists)") {
		t.Fatalf("expected skip line for index 2:\n%s", progress.String())
	}
	if got := res.Paths[2]; got != filepath.Join(dir, "card_02_20240101_000000.png") {
		t.Fatalf("adopted path mismatch: %s", got)
	}
}

func TestGenerateRemainingManifestOmitsFailures(t *testing.T) {
	dir, gen := newHarness(t)
	gen.failAt = map[int]bool{1: true, 4: true}

	res, err := Generate(context.Background(), gen, runOpts(dir, ModeRemaining, 6))
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(res.Paths) != 4 || res.Failed != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}

	gen.calls = nil
	gen.failAt = nil
	res, err = Generate(context.Background(), gen, runOpts(dir, ModeRemaining, 6))
	if err != nil {
		t.Fatalf("retry run failed: %v", err)
	}
	if !indexesEqual(gen.calls, []int{1, 4}) {
		t.Fatalf("expected only failed slots retried, got %v", gen.calls)
	}
	if len(res.Paths) != 6 {
		t.Fatalf("expected full manifest after retry, got %d", len(res.Paths))
	}
}

func TestGenerateRemainingRegeneratesVanishedFiles(t *testing.T) {
	dir, gen := newHarness(t)
	if _, err := Generate(context.Background(), gen, runOpts(dir, ModeRemaining, 3)); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	table, err := LoadState(dir)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if err := removeFile(table.Slot(1).Path); err != nil {
		t.Fatalf("remove image: %v", err)
	}

	gen.calls = nil
	res, err := Generate(context.Background(), gen, runOpts(dir, ModeRemaining, 3))
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if !indexesEqual(gen.calls, []int{1}) {
		t.Fatalf("expected index 1 regenerated, got %v", gen.calls)
	}
	if len(res.Paths) != 3 {
		t.Fatalf("expected 3 manifest entries, got %d", len(res.Paths))
	}
}

func TestGenerateRemainingRecoversInterruptedSlot(t *testing.T) {
	dir, gen := newHarness(t)
	stale := model.StateTable{
		SchemaVersion: model.StateSchemaVersion,
		Prefix:        "card",
		Slots: []model.Slot{
			{Index: 0, Status: model.StatusRunning, Attempts: 1},
			{Index: 1, Status: model.StatusPending},
		},
	}
	if err := runstore.WriteJSON(StatePath(dir), stale); err != nil {
		t.Fatalf("write state: %v", err)
	}

	var seen string
	gen.onCall = func(index int) {
		if index != 0 {
			return
		}
		table, err := LoadState(dir)
		if err == nil {
			seen = table.Slot(0).Status
		}
	}

	if _, err := Generate(context.Background(), gen, runOpts(dir, ModeRemaining, 2)); err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if !indexesEqual(gen.calls, []int{0, 1}) {
		t.Fatalf("expected interrupted slot retried, got %v", gen.calls)
	}
	if seen != model.StatusRunning {
		t.Fatalf("expected slot checkpointed as running during call, got %q", seen)
	}
	table, err := LoadState(dir)
	if err != nil {
		t.Fatalf("load state: %v", err)
	}
	if table.Slot(0).Attempts != 2 || table.Slot(0).Status != model.StatusGenerated {
		t.Fatalf("slot 0 mismatch: %+v", table.Slot(0))
	}
}

func TestGenerateRemainingSelection(t *testing.T) {
	cases := []struct {
		sel  Selection
		want string
	}{
		{SelectNewest, "card_00_20240301_000000.png"},
		{SelectFirst, "card_00_20240101_000000.png"},
	}

	for _, tc := range cases {
		t.Run(string(tc.sel), func(t *testing.T) {
			dir, gen := newHarness(t)
			touch(t, dir, "card_00_20240101_000000.png")
			touch(t, dir, "card_00_20240301_000000.png")

			opts := runOpts(dir, ModeRemaining, 1)
			opts.Selection = tc.sel
			res, err := Generate(context.Background(), gen, opts)
			if err != nil {
				t.Fatalf("generate failed: %v", err)
			}
			if len(gen.calls) != 0 {
				t.Fatalf("expected no calls, got %v", gen.calls)
			}
			if len(res.Paths) != 1 || filepath.Base(res.Paths[0]) != tc.want {
				t.Fatalf("selection mismatch: %v", res.Paths)
			}
		})
	}
}

func TestGenerateFailsWhenOutputDirectoryIsLocked(t *testing.T) {
	dir, gen := newHarness(t)
	lock, err := runstore.AcquireLock(dir)
	if err != nil {
		t.Fatalf("acquire lock: %v", err)
	}
	defer func() {
		_ = lock.Release()
	}()

	_, err = Generate(context.Background(), gen, runOpts(dir, ModeAll, 2))
	if !errors.Is(err, runstore.ErrLocked) {
		t.Fatalf("expected lock error, got %v", err)
	}
	if len(gen.calls) != 0 {
		t.Fatalf("expected no generator calls, got %v", gen.calls)
	}
}

func TestGeneratePacesCalls(t *testing.T) {
	dir, gen := newHarness(t)
	opts := runOpts(dir, ModeAll, 3)
	opts.Delay = 40 * time.Millisecond

	start := time.Now()
	if _, err := Generate(context.Background(), gen, opts); err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 75*time.Millisecond {
		t.Fatalf("expected two paced gaps, elapsed %v", elapsed)
	}
}

func TestGeneratePausesAfterSlowCalls(t *testing.T) {
	dir, gen := newHarness(t)
	gen.latency = 60 * time.Millisecond
	opts := runOpts(dir, ModeAll, 3)
	opts.Delay = 40 * time.Millisecond

	if _, err := Generate(context.Background(), gen, opts); err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(gen.starts) != 3 || len(gen.ends) != 3 {
		t.Fatalf("expected 3 timed calls, got %d/%d", len(gen.starts), len(gen.ends))
	}
	for i := 1; i < 3; i++ {
		if gap := gen.starts[i].Sub(gen.ends[i-1]); gap < 35*time.Millisecond {
			t.Fatalf("expected pause before call %d, got %v", i, gap)
		}
	}
}

func TestGenerateDoesNotPauseAfterLastCall(t *testing.T) {
	dir, gen := newHarness(t)
	opts := runOpts(dir, ModeAll, 1)
	opts.Delay = 500 * time.Millisecond

	start := time.Now()
	if _, err := Generate(context.Background(), gen, opts); err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed >= 400*time.Millisecond {
		t.Fatalf("expected no trailing pause, elapsed %v", elapsed)
	}
}

func TestTruncateKeepsRunesWhole(t *testing.T) {
	got := truncate(strings.Repeat("é", 10), 4)
	if got != "éééé" {
		t.Fatalf("unexpected truncation %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("unexpected truncation %q", got)
	}
}

func TestGenerateStopsOnCancel(t *testing.T) {
	dir, gen := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	gen.onCall = func(index int) {
		if index == 1 {
			cancel()
		}
	}

	_, err := Generate(ctx, gen, runOpts(dir, ModeAll, 5))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !indexesEqual(gen.calls, []int{0, 1}) {
		t.Fatalf("expected stop after index 1, got %v", gen.calls)
	}
	if !runstore.FileExists(StatePath(dir)) {
		t.Fatal("expected state checkpoint on disk")
	}
}

func TestGenerateValidatesOptions(t *testing.T) {
	dir, gen := newHarness(t)
	cases := []Options{
		{Prompts: nil, OutputDir: dir},
		{Prompts: testPrompts(1)},
		{Prompts: testPrompts(1), OutputDir: dir, Mode: "bogus"},
	}
	for _, opts := range cases {
		if _, err := Generate(context.Background(), gen, opts); err == nil {
			t.Fatalf("expected validation error for %+v", opts)
		}
	}
}

func TestLoadStateMissing(t *testing.T) {
	_, err := LoadState(t.TempDir())
	if !errors.Is(err, ErrNoState) {
		t.Fatalf("expected ErrNoState, got %v", err)
	}
}
