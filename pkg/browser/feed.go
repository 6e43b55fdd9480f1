package browser

import (
	"context"
	"strings"
	"time"

	"xscraper/pkg/config"
	errs "xscraper/pkg/errors"
	"xscraper/pkg/logger"
	"xscraper/pkg/models"
	"xscraper/pkg/query"
)

// Feed exposes one search results page as a scrollable entry source. It
// satisfies the collection engine's Feed contract.
type Feed struct {
	session        *Session
	url            string
	contentTimeout time.Duration
	log            logger.Logger
}

// NewFeed builds a feed for one search run.
func NewFeed(session *Session, spec models.SearchSpec, cfg config.BrowserConfig, log logger.Logger) *Feed {
	return &Feed{
		session:        session,
		url:            query.URL(spec),
		contentTimeout: cfg.ContentTimeout,
		log:            log,
	}
}

// URL returns the search results URL the feed navigates to.
func (f *Feed) URL() string {
	return f.url
}

// Navigate opens the search results page and fails fast on a login redirect.
func (f *Feed) Navigate(ctx context.Context) error {
	f.log.InfoWithFields("opening search results", map[string]interface{}{
		"url": f.url,
	})
	if err := f.session.Navigate(ctx, f.url); err != nil {
		return err
	}
	return f.checkAuth(ctx)
}

// AwaitContent waits for the first article to render. A timeout is resolved
// against the page text: a login wall fails the run, a rate-limit notice is
// transient, and anything else means the query genuinely has no results.
func (f *Feed) AwaitContent(ctx context.Context) (bool, error) {
	err := f.session.WaitVisible(ctx, "article", f.contentTimeout)
	if err == nil {
		return true, nil
	}
	if ctx.Err() != nil {
		return false, ctx.Err()
	}

	text, textErr := f.session.BodyText(ctx)
	if textErr != nil {
		return false, err
	}
	switch {
	case loginWallBody(text):
		return false, errs.AuthRequired("login page shown instead of search results")
	case rateLimitedBody(text):
		return false, errs.Transient("rate limited while waiting for results", err)
	}
	return false, nil
}

// Entries returns the outer HTML of every currently rendered post.
func (f *Feed) Entries(ctx context.Context) ([]string, error) {
	return f.session.Articles(ctx)
}

// Scroll advances the viewport by one screen height.
func (f *Feed) Scroll(ctx context.Context) error {
	return f.session.ScrollBy(ctx)
}

// Height reports the document's scroll extent.
func (f *Feed) Height(ctx context.Context) (int, error) {
	return f.session.ScrollHeight(ctx)
}

// VerifyLocation confirms the browser is still on the search results page.
// A login redirect is fatal; any other drift (a stray click opened a post)
// is recovered by re-navigating.
func (f *Feed) VerifyLocation(ctx context.Context) error {
	loc, err := f.session.Location(ctx)
	if err != nil {
		return err
	}
	if loginWallURL(loc) {
		return errs.AuthRequired("session expired, redirected to " + loc)
	}
	if strings.Contains(loc, "/search") {
		return nil
	}

	f.log.WarnWithFields("navigated away from search results, going back", map[string]interface{}{
		"current_url": loc,
	})
	if err := f.session.Navigate(ctx, f.url); err != nil {
		return err
	}
	// Articles may take a moment to re-render after the reload.
	if err := f.session.WaitVisible(ctx, "article", 10*time.Second); err != nil {
		f.log.WithError(err).Debug("no articles after re-navigation")
	}
	return f.checkAuth(ctx)
}

func (f *Feed) checkAuth(ctx context.Context) error {
	loc, err := f.session.Location(ctx)
	if err != nil {
		return err
	}
	if loginWallURL(loc) {
		return errs.AuthRequired("session expired, redirected to " + loc)
	}
	return nil
}
