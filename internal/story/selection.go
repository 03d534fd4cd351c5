package story

import (
	"fmt"
	"strings"
)

// Selection chooses which of several files for one index is adopted.
type Selection string

const (
	// SelectNewest takes the lexicographically last name, which carries the
	// latest timestamp.
	SelectNewest Selection = "newest"
	SelectFirst  Selection = "first"
)

func ParseSelection(raw string) (Selection, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(SelectNewest):
		return SelectNewest, nil
	case string(SelectFirst):
		return SelectFirst, nil
	default:
		return "", fmt.Errorf("invalid selection %q (expected newest or first)", raw)
	}
}

func (s Selection) pick(sortedNames []string) string {
	if len(sortedNames) == 0 {
		return ""
	}
	if s == SelectFirst {
		return sortedNames[0]
	}
	return sortedNames[len(sortedNames)-1]
}
