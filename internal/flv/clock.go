package flv

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseClock parses a "mm:ss:ms" position into milliseconds. Fields are not
// range checked, so "0:90:0" is 90 seconds.
func ParseClock(s string) (uint32, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("parse time %q: want mm:ss:ms", s)
	}
	var vals [3]uint64
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("parse time %q: %w", s, err)
		}
		vals[i] = v
	}
	total := vals[0]*60_000 + vals[1]*1000 + vals[2]
	if total > 0xFFFFFFFF {
		return 0, fmt.Errorf("parse time %q: out of range", s)
	}
	return uint32(total), nil
}

// FormatClock renders milliseconds as "mm:ss:mmm".
func FormatClock(ms uint32) string {
	m := ms / 60_000
	s := (ms / 1000) % 60
	return fmt.Sprintf("%02d:%02d:%03d", m, s, ms%1000)
}
