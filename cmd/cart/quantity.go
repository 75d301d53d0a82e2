package main

import (
	"strconv"
	"strings"
)

// ParseQuantity reads the leading integer of s. Anything without digits,
// or a value below 1, yields 1.
func ParseQuantity(s string) int {
	s = strings.TrimSpace(s)

	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 1
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil || n < 1 {
		return 1
	}
	return n
}
