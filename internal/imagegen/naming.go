package imagegen

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const timestampLayout = "20060102_150405"

// FileName builds <prefix>_<NN>_<YYYYMMDD_HHMMSS>.png.
func FileName(prefix string, index int, t time.Time) string {
	return fmt.Sprintf("%s_%02d_%s.png", prefix, index, t.Format(timestampLayout))
}

// ParseIndex reads the digits right after "<prefix>_".
func ParseIndex(name, prefix string) (int, bool) {
	rest, ok := strings.CutPrefix(name, prefix+"_")
	if !ok {
		return 0, false
	}
	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(rest[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
