// Package parser extracts structured post records from rendered feed entries.
//
// The feed's markup changes often and renders many unit types besides posts
// (promoted content, suggestion cards, dividers). Extraction is therefore
// lenient and returns a tagged outcome instead of failing: a full record, a
// silent skip for non-post units, or a malformed verdict when something that
// looked like a post was missing its required fields.
package parser

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"xscraper/pkg/models"
)

// Outcome tags the result of parsing one feed entry.
type Outcome int

const (
	// OutcomeRecord means a complete post record was extracted.
	OutcomeRecord Outcome = iota
	// OutcomeSkip means the entry is a non-post unit. Not an error.
	OutcomeSkip
	// OutcomeMalformed means the entry looked like a post but its required
	// fields (id, author) could not be extracted.
	OutcomeMalformed
)

// Result is the tagged outcome of parsing one entry.
type Result struct {
	Outcome Outcome
	Record  *models.PostRecord
	Reason  string
}

// Parser extracts PostRecords from entry HTML.
type Parser struct {
	baseURL string
	now     func() time.Time
}

// Option configures a Parser.
type Option func(*Parser)

// WithClock overrides the clock used to resolve relative timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) { p.now = now }
}

// New creates a Parser.
func New(opts ...Option) *Parser {
	p := &Parser{
		baseURL: "https://x.com",
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var statusPattern = regexp.MustCompile(`^/([A-Za-z0-9_]+)/status/(\d+)`)

// Parse extracts a record from the outer HTML of one rendered feed entry.
func (p *Parser) Parse(entryHTML string) Result {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(entryHTML))
	if err != nil {
		return Result{Outcome: OutcomeMalformed, Reason: fmt.Sprintf("unreadable entry markup: %v", err)}
	}

	if reason, promoted := promotedUnit(doc); promoted {
		return Result{Outcome: OutcomeSkip, Reason: reason}
	}

	username, id := p.statusRef(doc)
	body := strings.TrimSpace(doc.Find(`[data-testid="tweetText"]`).First().Text())

	if id == "" && body == "" {
		// Suggestion cards, "show more" dividers and similar furniture.
		return Result{Outcome: OutcomeSkip, Reason: "no post content"}
	}
	if id == "" {
		return Result{Outcome: OutcomeMalformed, Reason: "post id not found"}
	}
	if username == "" {
		return Result{Outcome: OutcomeMalformed, Reason: "author not found"}
	}

	record := &models.PostRecord{
		ID:          id,
		Username:    username,
		Author:      username,
		DisplayName: p.displayName(doc, username),
		Body:        body,
		URL:         fmt.Sprintf("%s/%s/status/%s", p.baseURL, username, id),
		Counts:      p.counts(doc),
		Images:      p.images(doc),
		Followers:   -1,
	}
	timeEl := doc.Find("time").First()
	datetimeAttr, _ := timeEl.Attr("datetime")
	if t, ok := resolveTimestamp(datetimeAttr, timeEl.Text(), p.now()); ok {
		record.PublishedAt = t
	}

	return Result{Outcome: OutcomeRecord, Record: record}
}

// promotedUnit detects ads and promoted entries.
func promotedUnit(doc *goquery.Document) (string, bool) {
	found := false
	doc.Find("span").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.TrimSpace(s.Text())
		if text == "Promoted" || text == "Ad" {
			found = true
			return false
		}
		return true
	})
	if found {
		return "promoted content", true
	}
	return "", false
}

// statusRef finds the canonical status link and splits it into author handle
// and post id.
func (p *Parser) statusRef(doc *goquery.Document) (username, id string) {
	doc.Find(`a[href*="/status/"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, ok := s.Attr("href")
		if !ok {
			return true
		}
		if m := statusPattern.FindStringSubmatch(href); m != nil {
			username, id = m[1], m[2]
			return false
		}
		return true
	})
	return username, id
}

// displayName extracts the author's display name from the user-name block,
// which renders as "Display Name @handle · 2h".
func (p *Parser) displayName(doc *goquery.Document, username string) string {
	block := doc.Find(`[data-testid="User-Name"]`).First().Text()
	if block == "" {
		return ""
	}

	name := block
	if idx := strings.Index(block, "@"+username); idx >= 0 {
		name = block[:idx]
	}
	if idx := strings.IndexByte(name, '\n'); idx >= 0 {
		name = name[:idx]
	}
	return strings.TrimSpace(name)
}

var (
	repliesPattern = regexp.MustCompile(`(?i)([\d,.]+\s*[KMB]?)\s*(?:replies|reply|replied)`)
	repostsPattern = regexp.MustCompile(`(?i)([\d,.]+\s*[KMB]?)\s*(?:reposts?|retweets?)`)
	likesPattern   = regexp.MustCompile(`(?i)([\d,.]+\s*[KMB]?)\s*(?:likes?|liked)`)
	viewsPattern   = regexp.MustCompile(`(?i)([\d,.]+\s*[KMB]?)\s*views?`)
)

// counts extracts the engagement metrics. The aria-label of the action group
// is the most stable source; the individual action buttons are the fallback.
// Anything unparseable stays at zero.
func (p *Parser) counts(doc *goquery.Document) models.EngagementCounts {
	var c models.EngagementCounts

	doc.Find("[aria-label]").Each(func(_ int, s *goquery.Selection) {
		label, _ := s.Attr("aria-label")
		if m := repliesPattern.FindStringSubmatch(label); m != nil && c.Replies == 0 {
			c.Replies = ParseCount(m[1])
		}
		if m := repostsPattern.FindStringSubmatch(label); m != nil && c.Reposts == 0 {
			c.Reposts = ParseCount(m[1])
		}
		if m := likesPattern.FindStringSubmatch(label); m != nil && c.Likes == 0 {
			c.Likes = ParseCount(m[1])
		}
		if m := viewsPattern.FindStringSubmatch(label); m != nil && c.Views == 0 {
			c.Views = ParseCount(m[1])
		}
	})

	if c.Replies == 0 {
		c.Replies = ParseCount(doc.Find(`[data-testid="reply"]`).First().Text())
	}
	if c.Reposts == 0 {
		c.Reposts = ParseCount(doc.Find(`[data-testid="retweet"]`).First().Text())
	}
	if c.Likes == 0 {
		c.Likes = ParseCount(doc.Find(`[data-testid="like"]`).First().Text())
	}

	return c
}

// images collects attached media, excluding avatars and emoji sprites.
func (p *Parser) images(doc *goquery.Document) []string {
	var urls []string
	doc.Find(`img[src^="https://pbs.twimg.com/"]`).Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		if strings.Contains(src, "/profile_images/") || strings.Contains(src, "/emoji/") {
			return
		}
		urls = append(urls, src)
	})
	return urls
}
