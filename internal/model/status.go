package model

import "fmt"

const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusGenerated = "generated"
	StatusFailed    = "failed"
)

var allowedTransitions = map[string]map[string]bool{
	"": {
		StatusPending:   true,
		StatusGenerated: true, // adopted from an existing file on disk
	},
	StatusPending: {
		StatusPending:   true,
		StatusRunning:   true,
		StatusGenerated: true,
	},
	StatusRunning: {
		StatusRunning:   true,
		StatusGenerated: true,
		StatusFailed:    true,
	},
	StatusGenerated: {
		StatusGenerated: true,
		StatusPending:   true, // image file missing locally
		StatusRunning:   true, // full regeneration
	},
	StatusFailed: {
		StatusFailed:    true,
		StatusRunning:   true,
		StatusPending:   true,
		StatusGenerated: true,
	},
}

func IsKnownStatus(status string) bool {
	if status == "" {
		return false
	}
	_, ok := allowedTransitions[status]
	return ok
}

func CanTransition(from, to string) bool {
	next, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	return next[to]
}

func TransitionSlotStatus(slot *Slot, toStatus string, reason string) error {
	from := slot.Status
	if !CanTransition(from, toStatus) {
		return fmt.Errorf("invalid slot status transition: %q -> %q (index=%d)", from, toStatus, slot.Index)
	}
	slot.Status = toStatus
	slot.Reason = reason
	return nil
}
