package attendance

import (
	"strconv"
	"strings"

	"github.com/cmlabs-hris/hris-core-go/internal/pkg/validator"
)

const minutesPerDay = 24 * 60

// parseClock reads "HH:MM[:SS]" as seconds since 00:00. Hours past 23 are
// accepted so that overnight punches stay on their start date.
func parseClock(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if !validator.IsValidClock(s) {
		return 0, false
	}

	parts := strings.Split(s, ":")
	total := 0
	for i, unit := range []int{3600, 60, 1} {
		if i >= len(parts) {
			break
		}
		n, err := strconv.Atoi(parts[i])
		if err != nil {
			return 0, false
		}
		total += n * unit
	}
	return total, true
}

// parseClockMinutes is parseClock truncated to whole minutes.
func parseClockMinutes(s *string) (int, bool) {
	if s == nil {
		return 0, false
	}
	sec, ok := parseClock(*s)
	if !ok {
		return 0, false
	}
	return sec / 60, true
}
