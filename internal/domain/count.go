package domain

import (
	"strconv"
	"strings"
)

// ParseCount converts a platform counter into a non-negative integer.
// Absent, malformed or negative values count as zero.
func ParseCount(s string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
