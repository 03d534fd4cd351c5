package runstore

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAcquireLock_BlocksConcurrentAcquire(t *testing.T) {
	dir := t.TempDir()

	lock, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("acquire first lock: %v", err)
	}
	defer func() {
		_ = lock.Release()
	}()

	_, err = AcquireLock(dir)
	if err == nil {
		t.Fatalf("expected second acquire to fail")
	}
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if !strings.Contains(err.Error(), "pid=") {
		t.Fatalf("expected owner details in %q", err.Error())
	}

	if err := lock.Release(); err != nil {
		t.Fatalf("release lock: %v", err)
	}

	lock2, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	if err := lock2.Release(); err != nil {
		t.Fatalf("release second lock: %v", err)
	}
}

func TestAcquireLock_CreatesMissingDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "images")

	lock, err := AcquireLock(dir)
	if err != nil {
		t.Fatalf("acquire lock: %v", err)
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("release lock: %v", err)
	}
}

func TestAcquireLock_RequiresDirectory(t *testing.T) {
	if _, err := AcquireLock("  "); err == nil {
		t.Fatal("expected error for empty directory")
	}
}

func TestAcquireLock_OwnerlessLockStillBlocks(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, lockDirName), 0o755); err != nil {
		t.Fatalf("seed lock dir: %v", err)
	}

	_, err := AcquireLock(dir)
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if strings.Contains(err.Error(), "pid=") {
		t.Fatalf("unexpected owner details in %q", err.Error())
	}
}

func TestLockRelease_ZeroValue(t *testing.T) {
	if err := (Lock{}).Release(); err != nil {
		t.Fatalf("release zero lock: %v", err)
	}
}
