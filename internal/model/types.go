package model

const StateSchemaVersion = 1

// StateTable is the persisted index -> status record for one output
// directory and filename prefix.
type StateTable struct {
	SchemaVersion int    `json:"schema_version"`
	UpdatedAt     string `json:"updated_at"`
	Prefix        string `json:"prefix"`
	Total         int    `json:"total"`
	Pending       int    `json:"pending"`
	Running       int    `json:"running"`
	Generated     int    `json:"generated"`
	Failed        int    `json:"failed"`
	Slots         []Slot `json:"slots"`
}

type Slot struct {
	Index         int    `json:"index"`
	Status        string `json:"status"`
	Path          string `json:"path,omitempty"`
	Reason        string `json:"reason,omitempty"`
	Attempts      int    `json:"attempts,omitempty"`
	LastError     string `json:"last_error,omitempty"`
	LastAttemptAt string `json:"last_attempt_at,omitempty"`
	GeneratedAt   string `json:"generated_at,omitempty"`
}

// Recount refreshes the summary counters from Slots.
func (t *StateTable) Recount() {
	pending := 0
	running := 0
	generated := 0
	failed := 0

	for _, s := range t.Slots {
		switch s.Status {
		case StatusPending:
			pending++
		case StatusRunning:
			running++
		case StatusGenerated:
			generated++
		case StatusFailed:
			failed++
		}
	}

	t.Total = len(t.Slots)
	t.Pending = pending
	t.Running = running
	t.Generated = generated
	t.Failed = failed
}

// Slot returns the slot for index, or nil.
func (t *StateTable) Slot(index int) *Slot {
	for i := range t.Slots {
		if t.Slots[i].Index == index {
			return &t.Slots[i]
		}
	}
	return nil
}

// EnsureSlots makes sure slots 0..n-1 exist in index order. Slots beyond n
// are kept so a shorter prompt list does not erase history.
func (t *StateTable) EnsureSlots(n int) {
	byIndex := make(map[int]Slot, len(t.Slots))
	maxIndex := n - 1
	for _, s := range t.Slots {
		byIndex[s.Index] = s
		if s.Index > maxIndex {
			maxIndex = s.Index
		}
	}

	slots := make([]Slot, 0, maxIndex+1)
	for i := 0; i <= maxIndex; i++ {
		s, ok := byIndex[i]
		if !ok {
			if i >= n {
				continue
			}
			s = Slot{Index: i, Status: StatusPending}
		}
		slots = append(slots, s)
	}
	t.Slots = slots
}
