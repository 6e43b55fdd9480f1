package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	countPattern    = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*([KMBkmb])?`)
	followerPattern = regexp.MustCompile(`(?i)([\d,.]+\s*[KMB]?)\s*followers?`)
)

// ParseCount parses a lenient engagement count like "512", "3,456", "1.2K"
// or "10M" into an integer, rounding to nearest. Unparseable input yields 0:
// a missing metric never fails the record.
func ParseCount(text string) int64 {
	text = strings.ReplaceAll(strings.TrimSpace(text), ",", "")
	if text == "" {
		return 0
	}

	m := countPattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}

	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}

	switch strings.ToUpper(m[2]) {
	case "K":
		value *= 1_000
	case "M":
		value *= 1_000_000
	case "B":
		value *= 1_000_000_000
	}

	return int64(math.Round(value))
}

// ParseFollowers extracts a follower count from text like "229.8M Followers"
// or "1,234 Followers". The second return is false when no count is present.
func ParseFollowers(text string) (int64, bool) {
	m := followerPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	return ParseCount(m[1]), true
}
