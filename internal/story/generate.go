package story

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/souffleinspire/bananaImgGenaration/internal/imagegen"
	"github.com/souffleinspire/bananaImgGenaration/internal/model"
	"github.com/souffleinspire/bananaImgGenaration/internal/runstore"
)

const (
	DefaultPrefix = "card"
	DefaultDelay  = time.Second
)

type Mode string

const (
	// ModeAll regenerates every slot.
	ModeAll Mode = "all"
	// ModeRemaining generates only slots without an image on disk.
	ModeRemaining Mode = "remaining"
)

type Generator interface {
	Generate(ctx context.Context, prompt, prefix string, index int) imagegen.Outcome
}

type Options struct {
	Mode      Mode
	Prompts   []string
	Prefix    string
	OutputDir string
	// Delay is the minimum spacing between generation calls. Zero disables
	// pacing.
	Delay     time.Duration
	Selection Selection
	Progress  io.Writer
	Now       func() time.Time
}

type Result struct {
	Mode      Mode               `json:"mode"`
	Total     int                `json:"total"`
	Attempted int                `json:"attempted"`
	Generated int                `json:"generated"`
	Failed    int                `json:"failed"`
	Skipped   int                `json:"skipped"`
	Paths     []string           `json:"paths"`
	Outcomes  []imagegen.Outcome `json:"outcomes"`
	StatePath string             `json:"state_path"`
}

// Generate drives one batch over opts.Prompts. Per-image failures are
// recorded in the state table and the result; only bookkeeping failures,
// lock contention and cancellation are returned as errors.
func Generate(ctx context.Context, gen Generator, opts Options) (Result, error) {
	if gen == nil {
		return Result{}, errors.New("generator is required")
	}
	if len(opts.Prompts) == 0 {
		return Result{}, errors.New("prompt list is empty")
	}
	outputDir := strings.TrimSpace(opts.OutputDir)
	if outputDir == "" {
		return Result{}, errors.New("output directory is required")
	}
	mode := opts.Mode
	if mode == "" {
		mode = ModeAll
	}
	if mode != ModeAll && mode != ModeRemaining {
		return Result{}, fmt.Errorf("unknown mode %q", mode)
	}
	prefix := strings.TrimSpace(opts.Prefix)
	if prefix == "" {
		prefix = DefaultPrefix
	}
	sel := opts.Selection
	if sel == "" {
		sel = SelectNewest
	}
	progress := opts.Progress
	if progress == nil {
		progress = os.Stdout
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	lock, err := runstore.AcquireLock(outputDir)
	if err != nil {
		return Result{}, err
	}
	defer func() {
		_ = lock.Release()
	}()

	table, err := loadOrInitState(outputDir, prefix)
	if err != nil {
		return Result{}, err
	}
	total := len(opts.Prompts)
	table.EnsureSlots(total)
	if err := resetStaleRunningSlots(&table); err != nil {
		return Result{}, err
	}
	if mode == ModeRemaining {
		if err := reconcileWithDisk(&table, outputDir, prefix, sel); err != nil {
			return Result{}, err
		}
	}
	if err := saveState(outputDir, &table, now()); err != nil {
		return Result{}, err
	}

	res := Result{
		Mode:      mode,
		Total:     total,
		Outcomes:  make([]imagegen.Outcome, 0, total),
		StatePath: StatePath(outputDir),
	}

	if mode == ModeRemaining {
		fmt.Fprintf(progress, "existing indices: %v\n", generatedIndexes(table, total))
	}

	pace := newPacer(opts.Delay)

	for i := 0; i < total; i++ {
		slot := table.Slot(i)
		if mode == ModeRemaining && slot.Status == model.StatusGenerated {
			fmt.Fprintf(progress, "skip %d/%d (exists)\n", i+1, total)
			res.Skipped++
			continue
		}

		if err := pace.wait(ctx); err != nil {
			return res, fmt.Errorf("generation interrupted: %w", err)
		}
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("generation interrupted: %w", err)
		}

		fmt.Fprintf(progress, "[%d/%d] generating %s_%02d\n", i+1, total, prefix, i)
		if err := model.TransitionSlotStatus(slot, model.StatusRunning, ""); err != nil {
			return res, err
		}
		slot.Attempts++
		slot.LastAttemptAt = now().UTC().Format(time.RFC3339)
		if err := saveState(outputDir, &table, now()); err != nil {
			return res, err
		}

		out := gen.Generate(ctx, opts.Prompts[i], prefix, i)
		pace.done()
		out.Index = i
		res.Attempted++
		res.Outcomes = append(res.Outcomes, out)

		if out.OK() {
			if err := model.TransitionSlotStatus(slot, model.StatusGenerated, ""); err != nil {
				return res, err
			}
			slot.Path = out.Path
			slot.LastError = ""
			slot.GeneratedAt = now().UTC().Format(time.RFC3339)
			res.Generated++
		} else {
			if err := model.TransitionSlotStatus(slot, model.StatusFailed, out.Reason); err != nil {
				return res, err
			}
			slot.Path = ""
			slot.GeneratedAt = ""
			slot.LastError = truncate(out.ErrorText(), 500)
			res.Failed++
		}
		if err := saveState(outputDir, &table, now()); err != nil {
			return res, err
		}

		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("generation interrupted: %w", err)
		}
	}

	if mode == ModeAll {
		res.Paths = successfulPaths(res.Outcomes)
	} else {
		res.Paths = manifestFromState(table, total)
	}
	return res, nil
}

func successfulPaths(outcomes []imagegen.Outcome) []string {
	out := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		if o.OK() {
			out = append(out, o.Path)
		}
	}
	return out
}

// manifestFromState lists, in index order, the generated slots within range
// whose file is still present.
func manifestFromState(table model.StateTable, total int) []string {
	out := make([]string, 0, total)
	for _, s := range table.Slots {
		if s.Index >= total {
			continue
		}
		if s.Status != model.StatusGenerated || !runstore.FileExists(s.Path) {
			continue
		}
		out = append(out, s.Path)
	}
	return out
}

func generatedIndexes(table model.StateTable, total int) []int {
	out := make([]int, 0, total)
	for _, s := range table.Slots {
		if s.Index < total && s.Status == model.StatusGenerated {
			out = append(out, s.Index)
		}
	}
	return out
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

// pacer holds the next generation call until delay has passed since the
// previous call returned.
type pacer struct {
	delay   time.Duration
	limiter *rate.Limiter
}

func newPacer(delay time.Duration) *pacer {
	return &pacer{delay: delay}
}

// done starts the pause. The fresh limiter's only token is spent at once,
// so the next token arrives one delay after the call ended.
func (p *pacer) done() {
	if p.delay <= 0 {
		return
	}
	p.limiter = rate.NewLimiter(rate.Every(p.delay), 1)
	p.limiter.Allow()
}

func (p *pacer) wait(ctx context.Context) error {
	if p.limiter == nil {
		return nil
	}
	return p.limiter.Wait(ctx)
}
