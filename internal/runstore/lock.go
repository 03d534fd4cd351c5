package runstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	lockDirName   = ".bananagen.lock"
	lockOwnerFile = "owner.json"
)

// ErrLocked reports that another run holds the output directory.
var ErrLocked = errors.New("output directory is locked")

type Lock struct {
	dir string
}

type lockOwner struct {
	PID       int    `json:"pid"`
	CreatedAt string `json:"created_at"`
	Hostname  string `json:"hostname,omitempty"`
}

func (o lockOwner) describe() string {
	if o.PID <= 0 || o.CreatedAt == "" {
		return ""
	}
	return fmt.Sprintf("pid=%d created_at=%s host=%s", o.PID, o.CreatedAt, o.Hostname)
}

// AcquireLock claims dir for a single generation run, creating dir if
// needed. A held lock yields an error wrapping ErrLocked.
func AcquireLock(dir string) (Lock, error) {
	target := strings.TrimSpace(dir)
	if target == "" {
		return Lock{}, fmt.Errorf("output directory is required")
	}
	if err := Mkdir(target); err != nil {
		return Lock{}, err
	}

	lockDir := filepath.Join(target, lockDirName)
	if err := os.Mkdir(lockDir, 0o755); err != nil {
		if !os.IsExist(err) {
			return Lock{}, fmt.Errorf("acquire lock for %s: %w", target, err)
		}
		var owner lockOwner
		_ = ReadJSON(filepath.Join(lockDir, lockOwnerFile), &owner)
		if who := owner.describe(); who != "" {
			return Lock{}, fmt.Errorf("%w: %s (%s)", ErrLocked, target, who)
		}
		return Lock{}, fmt.Errorf("%w: %s", ErrLocked, target)
	}

	owner := lockOwner{
		PID:       os.Getpid(),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Hostname:  hostname(),
	}
	if err := WriteJSON(filepath.Join(lockDir, lockOwnerFile), owner); err != nil {
		_ = os.RemoveAll(lockDir)
		return Lock{}, fmt.Errorf("record lock owner for %s: %w", target, err)
	}
	return Lock{dir: lockDir}, nil
}

// Release is safe on the zero Lock.
func (l Lock) Release() error {
	if l.dir == "" {
		return nil
	}
	if err := os.RemoveAll(l.dir); err != nil {
		return fmt.Errorf("release lock %s: %w", l.dir, err)
	}
	return nil
}

func hostname() string {
	host, err := os.Hostname()
	if err != nil || strings.TrimSpace(host) == "" {
		return "unknown"
	}
	return strings.TrimSpace(host)
}
