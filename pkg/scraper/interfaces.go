// Package scraper contains the collection engine: it scrolls a rendered
// results feed, parses new entries, deduplicates by post id, enforces the
// record limit and date window, and classifies how the run ended.
package scraper

import (
	"context"

	"xscraper/pkg/models"
	"xscraper/pkg/parser"
)

// Feed abstracts the rendered, infinitely scrolling results page. The
// browser package provides the real implementation; tests provide scripted
// fakes. Implementations report a login wall through a typed
// errors.AuthRequired error from any method.
type Feed interface {
	// Navigate opens the results URL in the session's page.
	Navigate(ctx context.Context) error

	// AwaitContent blocks until the first entries render or the feed shows
	// its explicit empty-results marker. It returns false when the feed has
	// no results at all, which is a successful (empty) outcome.
	AwaitContent(ctx context.Context) (bool, error)

	// Entries returns the outer HTML of every currently rendered entry.
	Entries(ctx context.Context) ([]string, error)

	// Scroll advances the viewport to the bottom of the rendered content
	// and gives the feed a chance to load more.
	Scroll(ctx context.Context) error

	// Height reports the current scroll extent of the feed document.
	Height(ctx context.Context) (int, error)

	// VerifyLocation checks that the page is still on the results feed and
	// recovers (re-navigates) if the browser wandered off mid-run.
	VerifyLocation(ctx context.Context) error
}

// EntryParser turns one rendered entry into a tagged parse result.
type EntryParser interface {
	Parse(entryHTML string) parser.Result
}

// Sink receives finished records as they are committed. Implementations may
// persist incrementally; a sink error is logged and never aborts the run.
type Sink interface {
	Append(record models.PostRecord) error
}

// FollowerLookup resolves an author's follower count at collection time.
// The boolean is false when the count could not be determined.
type FollowerLookup func(ctx context.Context, username string) (int64, bool)
