package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// SearchMode selects between keyword and account searches.
type SearchMode string

const (
	ModeKeyword SearchMode = "keyword"
	ModeAccount SearchMode = "account"
)

// SortOrder selects the result ordering of the feed.
type SortOrder string

const (
	SortLatest SortOrder = "latest"
	SortTop    SortOrder = "top"
)

// SearchSpec describes one collection run. It is built once by the query
// package and never mutated afterwards.
type SearchSpec struct {
	Mode  SearchMode
	Query string // boolean-operator string for keyword mode, handle for account mode
	// ExcludeAccount drops one account's own posts from a keyword search.
	// Empty unless a keyword and an account were both given.
	ExcludeAccount string
	SortOrder      SortOrder
	Since          *time.Time // inclusive lower bound, UTC midnight
	Until          *time.Time // exclusive upper bound, UTC midnight
	Limit          int
}

// Validate checks the spec invariants before a run starts.
func (s *SearchSpec) Validate() error {
	var errs []string

	if strings.TrimSpace(s.Query) == "" {
		errs = append(errs, "query must not be empty")
	}
	if s.Mode != ModeKeyword && s.Mode != ModeAccount {
		errs = append(errs, fmt.Sprintf("unknown search mode %q", s.Mode))
	}
	if s.SortOrder != SortLatest && s.SortOrder != SortTop {
		errs = append(errs, fmt.Sprintf("unknown sort order %q", s.SortOrder))
	}
	if s.Limit <= 0 {
		errs = append(errs, "limit must be positive")
	}
	if s.Since != nil && s.Until != nil && s.Since.After(*s.Until) {
		errs = append(errs, "since date must not be after until date")
	}

	if len(errs) > 0 {
		return errors.New("invalid search spec: " + strings.Join(errs, "; "))
	}
	return nil
}

// DateFiltered reports whether the run has an active date window.
func (s *SearchSpec) DateFiltered() bool {
	return s.Since != nil || s.Until != nil
}

// InWindow reports whether a publication time falls inside [Since, Until).
// An unset bound is open.
func (s *SearchSpec) InWindow(t time.Time) bool {
	if s.Since != nil && t.Before(*s.Since) {
		return false
	}
	if s.Until != nil && !t.Before(*s.Until) {
		return false
	}
	return true
}

// EngagementCounts holds the numeric engagement metrics of a post.
// Fields default to zero when the rendered markup could not be parsed.
type EngagementCounts struct {
	Views   int64
	Replies int64
	Reposts int64
	Likes   int64
}

// PostRecord is one collected post.
type PostRecord struct {
	ID          string
	Author      string // username, falls back to display name
	Username    string
	DisplayName string
	Body        string
	PublishedAt time.Time // UTC
	Counts      EngagementCounts
	URL         string
	Followers   int64 // author follower count, -1 when unknown
	Images      []string
}

// postJSON is the wire schema of one output record. body/text and url/link
// intentionally carry the same values for consumer convenience.
type postJSON struct {
	ID          string   `json:"id"`
	Views       int64    `json:"views"`
	Replies     int64    `json:"replies"`
	Reposts     int64    `json:"reposts"`
	Likes       int64    `json:"likes"`
	Body        string   `json:"body"`
	URL         string   `json:"url"`
	Date        string   `json:"date"`
	Author      string   `json:"author"`
	Followers   *int64   `json:"profile_followers"`
	Link        string   `json:"link"`
	Username    string   `json:"username"`
	DisplayName string   `json:"display_name"`
	Text        string   `json:"text"`
	Images      []string `json:"images"`
}

// MarshalJSON emits the output schema.
func (p PostRecord) MarshalJSON() ([]byte, error) {
	out := postJSON{
		ID:          p.ID,
		Views:       p.Counts.Views,
		Replies:     p.Counts.Replies,
		Reposts:     p.Counts.Reposts,
		Likes:       p.Counts.Likes,
		Body:        p.Body,
		URL:         p.URL,
		Date:        p.PublishedAt.UTC().Format(time.RFC3339),
		Author:      p.Author,
		Link:        p.URL,
		Username:    p.Username,
		DisplayName: p.DisplayName,
		Text:        p.Body,
		Images:      p.Images,
	}
	if out.Images == nil {
		out.Images = []string{}
	}
	if p.Followers >= 0 {
		f := p.Followers
		out.Followers = &f
	}
	return json.Marshal(out)
}

// UnmarshalJSON parses a previously written record. Used when merging an
// existing output file at the start of a run.
func (p *PostRecord) UnmarshalJSON(data []byte) error {
	var in postJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	p.ID = in.ID
	p.Author = in.Author
	p.Username = in.Username
	p.DisplayName = in.DisplayName
	p.Body = in.Body
	p.URL = in.URL
	p.Images = in.Images
	p.Counts = EngagementCounts{
		Views:   in.Views,
		Replies: in.Replies,
		Reposts: in.Reposts,
		Likes:   in.Likes,
	}
	p.Followers = -1
	if in.Followers != nil {
		p.Followers = *in.Followers
	}
	if in.Date != "" {
		t, err := time.Parse(time.RFC3339, in.Date)
		if err != nil {
			return fmt.Errorf("record %s: bad date %q: %w", in.ID, in.Date, err)
		}
		p.PublishedAt = t.UTC()
	}
	return nil
}
