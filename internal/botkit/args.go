package botkit

import (
	"strconv"
	"strings"
)

// ParseIndex reads a 1-based row number and returns it 0-based.
func ParseIndex(src string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(src))
	if err != nil || n < 1 {
		return 0, false
	}
	return n - 1, true
}
