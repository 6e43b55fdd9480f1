package scraper

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"xscraper/pkg/config"
	errs "xscraper/pkg/errors"
	"xscraper/pkg/logger"
	"xscraper/pkg/models"
	"xscraper/pkg/parser"
	"xscraper/pkg/retry"
)

// StopReason records how a collection run ended.
type StopReason string

const (
	// StopComplete means the feed ran out of matching content: the explicit
	// empty-results marker, a frozen scroll extent, or a Latest-sorted feed
	// that scrolled past the requested date window.
	StopComplete StopReason = "complete"
	// StopLimit means exactly the requested number of records was collected.
	StopLimit StopReason = "limit"
	// StopStall means the feed kept rendering but produced no new records
	// for the configured number of scroll attempts. Partial success, not an
	// error: the feed is exhausted or rate-limiting new content.
	StopStall StopReason = "stall"
	// StopAuthRequired means a login wall appeared mid-run.
	StopAuthRequired StopReason = "auth_required"
	// StopError means an unrecoverable fault exhausted the retry budget.
	StopError StopReason = "error"
	// StopCancelled means the run's context was cancelled.
	StopCancelled StopReason = "cancelled"
)

// Summary is the outcome of one collection run. Records is populated even
// when the run ends in failure: partial output is always preferable to
// silent data loss.
type Summary struct {
	Records      []models.PostRecord
	Reason       StopReason
	ScrollPasses int
	Duplicates   int
	Skipped      int
	Malformed    int
	PastWindow   int
}

// collectionState is the engine's mutable per-run state. Created at run
// start, discarded at run end, never shared across runs.
type collectionState struct {
	seenIDs          map[string]bool
	results          []models.PostRecord
	emptyScrolls     int // consecutive passes without a new record
	unchangedHeights int // consecutive scrolls without extent growth
	pastWindow       int // consecutive records outside the date window
	lastHeight       int
}

// Engine is the scroll-and-collect core: it drives the feed, parses newly
// rendered entries, deduplicates by post id, enforces the limit and date
// window, and decides when the run is over.
type Engine struct {
	feed      Feed
	parser    EntryParser
	sink      Sink
	followers FollowerLookup
	log       logger.Logger

	scrollCfg config.ScrollConfig
	retryCfg  config.RetryConfig

	// sleep and jitter are swappable for tests.
	sleep  func(ctx context.Context, d time.Duration) error
	jitter func() float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithSink attaches an incremental persistence sink.
func WithSink(sink Sink) Option {
	return func(e *Engine) { e.sink = sink }
}

// WithFollowerLookup attaches follower-count enrichment.
func WithFollowerLookup(lookup FollowerLookup) Option {
	return func(e *Engine) { e.followers = lookup }
}

// WithLogger overrides the logger.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) { e.log = log }
}

func withSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(e *Engine) { e.sleep = sleep }
}

// New creates an Engine over a feed and parser.
func New(feed Feed, entryParser EntryParser, scrollCfg config.ScrollConfig, retryCfg config.RetryConfig, opts ...Option) *Engine {
	e := &Engine{
		feed:      feed,
		parser:    entryParser,
		log:       logger.GetLogger(),
		scrollCfg: scrollCfg,
		retryCfg:  retryCfg,
		sleep:     retry.Wait,
		jitter:    rand.Float64,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Collect runs one collection. The returned Summary always carries whatever
// records were committed before the run ended; err is non-nil only for the
// failure reasons (auth_required, error, cancelled).
func (e *Engine) Collect(ctx context.Context, spec models.SearchSpec) (*Summary, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	state := &collectionState{seenIDs: make(map[string]bool)}
	summary := &Summary{}

	// Previously persisted ids (resume) never re-enter the result set.
	if seeder, ok := e.sink.(interface{ SeenIDs() []string }); ok {
		for _, id := range seeder.SeenIDs() {
			state.seenIDs[id] = true
		}
	}

	err := e.collect(ctx, spec, state, summary)
	summary.Records = state.results

	if err != nil {
		switch {
		case errs.IsAuthRequired(err):
			summary.Reason = StopAuthRequired
		case ctx.Err() != nil:
			summary.Reason = StopCancelled
		default:
			summary.Reason = StopError
		}
		e.log.WithError(err).WithFields(map[string]interface{}{
			"reason":    summary.Reason,
			"collected": len(state.results),
		}).Error("collection run failed")
		return summary, err
	}

	e.log.InfoWithFields("collection run finished", map[string]interface{}{
		"reason":     summary.Reason,
		"collected":  len(state.results),
		"passes":     summary.ScrollPasses,
		"duplicates": summary.Duplicates,
		"malformed":  summary.Malformed,
	})
	return summary, nil
}

func (e *Engine) collect(ctx context.Context, spec models.SearchSpec, state *collectionState, summary *Summary) error {
	if err := e.withRetry(ctx, "navigate", func() error {
		return e.feed.Navigate(ctx)
	}); err != nil {
		return err
	}

	hasResults, err := e.awaitContent(ctx)
	if err != nil {
		return err
	}
	if !hasResults {
		e.log.Info("feed reported no results")
		summary.Reason = StopComplete
		return nil
	}

	if h, err := e.feed.Height(ctx); err == nil {
		state.lastHeight = h
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		// Auth and navigation drift are only checked at scroll boundaries,
		// never mid-parse, so committed results stay consistent.
		if err := e.withRetry(ctx, "verify location", func() error {
			return e.feed.VerifyLocation(ctx)
		}); err != nil {
			return err
		}

		entries, err := e.entriesWithRetry(ctx)
		if err != nil {
			return err
		}

		newFound, pastSince := e.processPass(ctx, spec, entries, state, summary)
		summary.ScrollPasses++

		if len(state.results) >= spec.Limit {
			summary.Reason = StopLimit
			return nil
		}
		if pastSince {
			// Latest-sorted feeds are date-descending; a record older than
			// the window means everything below is older still.
			e.log.InfoWithFields("scrolled past the date window", map[string]interface{}{
				"since": spec.Since,
			})
			summary.Reason = StopComplete
			return nil
		}
		if spec.DateFiltered() && state.pastWindow >= e.scrollCfg.MaxPastWindow {
			e.log.InfoWithFields("too many consecutive records outside the date window", map[string]interface{}{
				"count": state.pastWindow,
			})
			summary.Reason = StopComplete
			return nil
		}

		if newFound == 0 {
			state.emptyScrolls++
			e.log.DebugWithFields("no new records in pass", map[string]interface{}{
				"empty_scrolls": state.emptyScrolls,
			})
		} else {
			state.emptyScrolls = 0
		}

		if state.emptyScrolls >= e.scrollCfg.MaxEmptyScrolls {
			if state.unchangedHeights >= e.scrollCfg.MaxEmptyScrolls {
				summary.Reason = StopComplete
			} else {
				summary.Reason = StopStall
			}
			return nil
		}

		if err := e.withRetry(ctx, "scroll", func() error {
			return e.feed.Scroll(ctx)
		}); err != nil {
			return err
		}
		if err := e.pause(ctx); err != nil {
			return err
		}

		if h, err := e.feed.Height(ctx); err == nil {
			if h == state.lastHeight {
				state.unchangedHeights++
			} else {
				state.unchangedHeights = 0
				state.lastHeight = h
			}
		}
	}
}

// processPass parses every currently rendered entry and filters the results
// into the collection state. Returns the number of newly committed records
// and whether a Latest-sorted feed has provably scrolled past the window.
func (e *Engine) processPass(ctx context.Context, spec models.SearchSpec, entries []string, state *collectionState, summary *Summary) (newFound int, pastSince bool) {
	for _, raw := range entries {
		if len(state.results) >= spec.Limit {
			return newFound, false
		}

		res := e.parser.Parse(raw)
		switch res.Outcome {
		case parser.OutcomeSkip:
			summary.Skipped++
			continue
		case parser.OutcomeMalformed:
			summary.Malformed++
			e.log.WarnWithFields("malformed entry skipped", map[string]interface{}{
				"reason": res.Reason,
			})
			continue
		}

		record := res.Record
		if state.seenIDs[record.ID] {
			// Re-rendered duplicate. Counts toward nothing.
			summary.Duplicates++
			continue
		}

		if spec.DateFiltered() && !record.PublishedAt.IsZero() && !spec.InWindow(record.PublishedAt) {
			state.seenIDs[record.ID] = true
			state.pastWindow++
			summary.PastWindow++
			// Only a date-descending feed supports the early-stop inference;
			// Top-sorted feeds are not monotonic in date.
			if spec.SortOrder == models.SortLatest && spec.Since != nil && record.PublishedAt.Before(*spec.Since) {
				return newFound, true
			}
			continue
		}
		state.pastWindow = 0

		if e.followers != nil && record.Followers < 0 {
			if count, ok := e.followers(ctx, record.Username); ok {
				record.Followers = count
			}
		}

		state.seenIDs[record.ID] = true
		state.results = append(state.results, *record)
		newFound++

		if e.sink != nil {
			if err := e.sink.Append(*record); err != nil {
				e.log.WithError(err).WithField("id", record.ID).Warn("incremental save failed")
			}
		}
	}
	return newFound, false
}

// awaitContent waits for the first entries with the bounded retry policy.
// A definitive "no results" marker is returned as (false, nil).
func (e *Engine) awaitContent(ctx context.Context) (bool, error) {
	var hasResults bool
	err := e.withRetry(ctx, "await content", func() error {
		var err error
		hasResults, err = e.feed.AwaitContent(ctx)
		return err
	})
	return hasResults, err
}

func (e *Engine) entriesWithRetry(ctx context.Context) ([]string, error) {
	var entries []string
	err := e.withRetry(ctx, "read entries", func() error {
		var err error
		entries, err = e.feed.Entries(ctx)
		return err
	})
	return entries, err
}

// withRetry applies the bounded-retry policy to one step. Auth errors stop
// immediately; transient errors back off and escalate to an infrastructure
// error once the budget is spent.
func (e *Engine) withRetry(ctx context.Context, step string, op func() error) error {
	err := retry.Do(op, e.retryConfig(ctx))
	if err == nil || errs.IsAuthRequired(err) || ctx.Err() != nil {
		return err
	}
	if errs.IsInfrastructure(err) {
		return err
	}
	return errs.Infrastructure(fmt.Sprintf("%s failed beyond retry budget", step), err)
}

func (e *Engine) retryConfig(ctx context.Context) *retry.Config {
	return &retry.Config{
		MaxAttempts: e.retryCfg.MaxAttempts,
		Backoff: &retry.ExponentialBackoff{
			BaseDelay:    e.retryCfg.BaseDelay,
			MaxDelay:     e.retryCfg.MaxDelay,
			Multiplier:   e.retryCfg.Multiplier,
			JitterFactor: 0.1,
		},
		RetryIf: retry.DefaultRetryIf,
		Context: ctx,
		Logger:  e.log,
	}
}

// pause waits the jittered inter-scroll delay, honoring cancellation.
func (e *Engine) pause(ctx context.Context) error {
	min, max := e.scrollCfg.PauseMin, e.scrollCfg.PauseMax
	d := min
	if max > min {
		d = min + time.Duration(e.jitter()*float64(max-min))
	}
	return e.sleep(ctx, d)
}
