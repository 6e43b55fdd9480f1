// Package query normalizes user-facing search parameters into the canonical
// search string and feed URL used by the collection engine.
package query

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"xscraper/pkg/models"
)

const searchBase = "https://x.com/search"

// Params are the raw user-facing search inputs before normalization.
type Params struct {
	Keyword     string
	FromAccount string
	SinceDate   string // YYYY-MM-DD
	UntilDate   string // YYYY-MM-DD
	Limit       int
	// Latest requests the live-sorted feed. When no since date is given it
	// implies a window starting 24 hours before now.
	Latest bool
}

// Normalize converts Params into an immutable SearchSpec. now anchors the
// implied 24-hour window of Latest mode.
func Normalize(p Params, now time.Time) (models.SearchSpec, error) {
	spec := models.SearchSpec{
		SortOrder: models.SortTop,
		Limit:     p.Limit,
	}
	if p.Latest {
		spec.SortOrder = models.SortLatest
	}

	keyword := strings.TrimSpace(p.Keyword)
	account := strings.TrimPrefix(strings.TrimSpace(p.FromAccount), "@")

	switch {
	case account != "" && keyword == "":
		spec.Mode = models.ModeAccount
		spec.Query = account
	case keyword != "":
		// A keyword search optionally scoped away from an account: the
		// account handle joins the exclusion list built from the keyword.
		spec.Mode = models.ModeKeyword
		spec.Query = keyword
		if account != "" {
			spec.ExcludeAccount = strings.ToLower(account)
		}
	default:
		return models.SearchSpec{}, errors.New("either a keyword or an account is required")
	}

	var err error
	spec.Since, err = parseDate(p.SinceDate)
	if err != nil {
		return models.SearchSpec{}, fmt.Errorf("since date: %w", err)
	}
	spec.Until, err = parseDate(p.UntilDate)
	if err != nil {
		return models.SearchSpec{}, fmt.Errorf("until date: %w", err)
	}

	if p.Latest && spec.Since == nil {
		since := now.UTC().Add(-24 * time.Hour)
		spec.Since = &since
	}

	if err := spec.Validate(); err != nil {
		return models.SearchSpec{}, err
	}
	return spec, nil
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("expected YYYY-MM-DD, got %q", s)
	}
	return &t, nil
}

// Build renders the full search-operator string for a spec, including the
// best-effort server-side date operators. The engine still applies the date
// window client-side; the operators only reduce how much gets scrolled.
func Build(spec models.SearchSpec) string {
	var q string
	switch spec.Mode {
	case models.ModeAccount:
		q = fmt.Sprintf("(from:%s)", spec.Query)
	default:
		q = spec.Query
		exclusions := Exclusions(spec.Query)
		if spec.ExcludeAccount != "" {
			found := false
			for _, name := range exclusions {
				if name == spec.ExcludeAccount {
					found = true
					break
				}
			}
			if !found {
				exclusions = append(exclusions, spec.ExcludeAccount)
			}
		}
		if len(exclusions) > 0 {
			parts := make([]string, len(exclusions))
			for i, name := range exclusions {
				parts[i] = "-@" + name
			}
			q = q + " " + strings.Join(parts, " ")
		}
	}

	if spec.Until != nil {
		q += " until:" + spec.Until.Format("2006-01-02")
	}
	if spec.Since != nil {
		q += " since:" + spec.Since.Format("2006-01-02")
	}
	return q
}

// URL renders the feed URL for a spec
func URL(spec models.SearchSpec) string {
	u := fmt.Sprintf("%s?q=%s&src=typed_query", searchBase, url.QueryEscape(Build(spec)))
	if spec.SortOrder == models.SortLatest {
		u += "&f=live"
	}
	return u
}

var orGroupPattern = regexp.MustCompile(`\(([^)]+)\)`)

// Exclusions derives the account handles to exclude from a keyword query.
// Searching for a brand name tends to surface the brand's own account; the
// original feed query excludes @keyword variants so only third-party posts
// remain. Handles both a single keyword and "(a) OR (b)" compound queries.
func Exclusions(keyword string) []string {
	var candidates []string

	if strings.Contains(strings.ToUpper(keyword), " OR ") {
		for _, m := range orGroupPattern.FindAllStringSubmatch(keyword, -1) {
			candidates = append(candidates, m[1])
		}
	} else {
		candidates = append(candidates, keyword)
	}

	seen := make(map[string]bool)
	var out []string
	for _, c := range candidates {
		name := strings.TrimPrefix(strings.TrimSpace(c), "@")
		name = strings.ToLower(strings.TrimSpace(name))
		if !handlePattern.MatchString(name) {
			// Hashtags and multi-word terms are not account handles.
			continue
		}
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

var handlePattern = regexp.MustCompile(`^[a-z0-9_]{1,15}$`)
