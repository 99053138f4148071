package utils

import (
	"strconv"
)

// ParseInt converts string to int with default value. Negative values
// fall back to the default.
func ParseInt(value string, defaultValue int) int {
	if value == "" {
		return defaultValue
	}

	result, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	if result < 0 {
		return defaultValue
	}

	return result
}

// ParseBoundedInt parses value and clamps it into [min, max].
func ParseBoundedInt(value string, defaultValue, min, max int) int {
	result := ParseInt(value, defaultValue)
	if result < min {
		return min
	}
	if result > max {
		return max
	}
	return result
}
