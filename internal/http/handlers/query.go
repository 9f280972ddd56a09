package handlers

import (
	"strconv"
	"strings"
)

// parseIntDefault returns fallback for an absent or non-numeric value.
func parseIntDefault(s string, fallback int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}

	return n
}
