package story

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/souffleinspire/bananaImgGenaration/internal/imagegen"
)

type fakeGenerator struct {
	outputDir string
	now       time.Time
	failAt    map[int]bool
	calls     []int
	onCall    func(index int)

	latency time.Duration
	starts  []time.Time
	ends    []time.Time
}

func (f *fakeGenerator) Generate(_ context.Context, prompt, prefix string, index int) imagegen.Outcome {
	f.calls = append(f.calls, index)
	f.starts = append(f.starts, time.Now())
	defer func() {
		f.ends = append(f.ends, time.Now())
	}()
	if f.latency > 0 {
		time.Sleep(f.latency)
	}
	if f.onCall != nil {
		f.onCall(index)
	}
	if f.failAt[index] {
		return imagegen.Outcome{
			Index:  index,
			Status: imagegen.StatusFailed,
			Reason: imagegen.ReasonBadStatus,
			Err:    errors.New("status 404: not found"),
		}
	}
	path := filepath.Join(f.outputDir, imagegen.FileName(prefix, index, f.now))
	if err := os.WriteFile(path, []byte("img:"+prompt), 0o644); err != nil {
		return imagegen.Outcome{Index: index, Status: imagegen.StatusFailed, Reason: imagegen.ReasonWriteError, Err: err}
	}
	return imagegen.Outcome{Index: index, Status: imagegen.StatusGenerated, Path: path}
}

func testPrompts(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("prompt %d", i)
	}
	return out
}

func newHarness(t *testing.T) (string, *fakeGenerator) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "images")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	return dir, &fakeGenerator{
		outputDir: dir,
		now:       time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("existing"), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func runOpts(dir string, mode Mode, n int) Options {
	return Options{
		Mode:      mode,
		Prompts:   testPrompts(n),
		Prefix:    "card",
		OutputDir: dir,
		Progress:  &bytes.Buffer{},
	}
}

func indexesEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func removeFile(path string) error {
	return os.Remove(path)
}
