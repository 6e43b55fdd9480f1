package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var relativePattern = regexp.MustCompile(`^(\d+)\s*([smhd])$`)

// absoluteFormats are the display forms the feed uses for older posts.
var absoluteFormats = []string{
	"Jan 2, 2006",
	"Jan 2",
	"2006/01/02",
	"01/02/2006",
}

// resolveTimestamp turns a rendered timestamp into UTC. datetimeAttr is the
// machine-readable attribute when present; display is the visible text, which
// may be relative ("2h") or absolute ("May 20"). Relative forms are resolved
// against now. The second return is false when neither form parses.
func resolveTimestamp(datetimeAttr, display string, now time.Time) (time.Time, bool) {
	if datetimeAttr != "" {
		if t, err := time.Parse(time.RFC3339, datetimeAttr); err == nil {
			return t.UTC(), true
		}
	}

	display = strings.TrimSpace(display)
	if display == "" {
		return time.Time{}, false
	}

	if m := relativePattern.FindStringSubmatch(display); m != nil {
		n, _ := strconv.Atoi(m[1])
		var d time.Duration
		switch m[2] {
		case "s":
			d = time.Duration(n) * time.Second
		case "m":
			d = time.Duration(n) * time.Minute
		case "h":
			d = time.Duration(n) * time.Hour
		case "d":
			d = time.Duration(n) * 24 * time.Hour
		}
		return now.UTC().Add(-d), true
	}

	for _, format := range absoluteFormats {
		t, err := time.ParseInLocation(format, display, time.UTC)
		if err != nil {
			continue
		}
		// Year-less forms are only shown for dates in the current year.
		if t.Year() == 0 {
			t = t.AddDate(now.UTC().Year(), 0, 0)
		}
		return t, true
	}

	return time.Time{}, false
}
