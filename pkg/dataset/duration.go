package dataset

import (
	"strconv"
	"strings"
)

// ParseDurationMinutes converts a completion-time cell into fractional
// minutes. A bare number is taken as already being minutes; colon-delimited
// values are H:MM:SS or MM:SS. Returns false for blank or malformed input —
// a parsed zero is a valid duration and still returns true.
func ParseDurationMinutes(text string) (float64, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, false
	}

	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return v, true
	}

	parts := strings.Split(s, ":")
	nums := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return 0, false
		}
		nums[i] = v
	}

	switch len(nums) {
	case 3:
		return nums[0]*60 + nums[1] + nums[2]/60, true
	case 2:
		return nums[0] + nums[1]/60, true
	default:
		return 0, false
	}
}
