// Package browser drives a real Chrome instance through chromedp. A Session
// owns a persistent user profile so the authenticated cookies from a login
// run survive into later collection runs.
package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"xscraper/pkg/config"
	errs "xscraper/pkg/errors"
	"xscraper/pkg/logger"
	"xscraper/pkg/parser"
)

// Session is one running Chrome instance bound to a persistent profile
// directory. All page operations run in its single tab; FollowerCount opens
// short-lived extra tabs.
type Session struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	cfg         config.BrowserConfig
	log         logger.Logger
}

// NewSession launches Chrome with the profile at cfg.ProfileDir and installs
// the anti-detection script. The caller must Close the session.
func NewSession(cfg config.BrowserConfig, log logger.Logger) (*Session, error) {
	allocOpts := allocatorOptions(cfg)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	ctx, cancel := chromedp.NewContext(allocCtx)

	s := &Session{
		ctx:         ctx,
		cancel:      cancel,
		allocCancel: allocCancel,
		cfg:         cfg,
		log:         log,
	}

	err := chromedp.Run(ctx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(stealthScript).Do(ctx)
			return err
		}),
		network.SetExtraHTTPHeaders(network.Headers(map[string]interface{}{
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.9",
		})),
	)
	if err != nil {
		cancel()
		allocCancel()
		return nil, errs.Infrastructure("failed to launch browser", err)
	}

	log.DebugWithFields("browser session started", map[string]interface{}{
		"profile_dir": cfg.ProfileDir,
		"headless":    cfg.Headless,
	})
	return s, nil
}

func allocatorOptions(cfg config.BrowserConfig) []chromedp.ExecAllocatorOption {
	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoDefaultBrowserCheck,
		chromedp.NoFirstRun,
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("exclude-switches", "enable-automation"),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-component-update", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-service-autorun", true),
		chromedp.Flag("password-store", "basic"),
		chromedp.Flag("use-mock-keychain", true),
		chromedp.UserAgent(cfg.UserAgent),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserDataDir(cfg.ProfileDir),
	}
	if cfg.Headless {
		opts = append(opts, chromedp.Flag("headless", "new"))
	} else {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	if cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ChromePath))
	}
	return opts
}

// Close tears down the tab and the browser process. The profile directory
// survives for the next session.
func (s *Session) Close() {
	s.cancel()
	s.allocCancel()
}

// run executes chromedp actions with a timeout, honoring cancellation of the
// caller's context as well as the session's.
func (s *Session) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(runCtx, actions...)
	if cerr := ctx.Err(); cerr != nil {
		return cerr
	}
	return err
}

// Navigate loads a URL and waits for the document body.
func (s *Session) Navigate(ctx context.Context, url string) error {
	err := s.run(ctx, s.cfg.NavigationTimeout,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err != nil {
		return errs.Transient(fmt.Sprintf("failed to load %s", url), err)
	}
	return nil
}

// Location returns the page's current URL.
func (s *Session) Location(ctx context.Context) (string, error) {
	var loc string
	if err := s.run(ctx, 10*time.Second, chromedp.Location(&loc)); err != nil {
		return "", errs.Transient("failed to read page location", err)
	}
	return loc, nil
}

// BodyText returns the page's rendered text content.
func (s *Session) BodyText(ctx context.Context) (string, error) {
	var text string
	err := s.run(ctx, 10*time.Second,
		chromedp.Evaluate(`document.body ? document.body.innerText : ''`, &text),
	)
	if err != nil {
		return "", errs.Transient("failed to read page text", err)
	}
	return text, nil
}

// WaitVisible blocks until at least one element matching the selector is
// visible, or the timeout elapses.
func (s *Session) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	err := s.run(ctx, timeout, chromedp.WaitVisible(selector, chromedp.ByQuery))
	if err != nil {
		return errs.Transient(fmt.Sprintf("timed out waiting for %q", selector), err)
	}
	return nil
}

// Articles returns the outer HTML of every article element on the page, in
// document order.
func (s *Session) Articles(ctx context.Context) ([]string, error) {
	var entries []string
	err := s.run(ctx, 15*time.Second,
		chromedp.Evaluate(`Array.from(document.querySelectorAll('article')).map(el => el.outerHTML)`, &entries),
	)
	if err != nil {
		return nil, errs.Transient("failed to read rendered articles", err)
	}
	return entries, nil
}

// ScrollBy advances the viewport by one screen height.
func (s *Session) ScrollBy(ctx context.Context) error {
	err := s.run(ctx, 10*time.Second,
		chromedp.Evaluate(`window.scrollBy(0, window.innerHeight)`, nil),
	)
	if err != nil {
		return errs.Transient("scroll failed", err)
	}
	return nil
}

// ScrollHeight returns the document's current scroll extent.
func (s *Session) ScrollHeight(ctx context.Context) (int, error) {
	var height int
	err := s.run(ctx, 10*time.Second,
		chromedp.Evaluate(`document.body.scrollHeight`, &height),
	)
	if err != nil {
		return 0, errs.Transient("failed to read scroll height", err)
	}
	return height, nil
}

// FollowerCount opens the author's profile in a throwaway tab and extracts
// the follower count. The boolean is false when the count is not visible,
// which happens for protected or suspended accounts.
func (s *Session) FollowerCount(ctx context.Context, username string) (int64, bool) {
	tabCtx, cancel := chromedp.NewContext(s.ctx)
	defer cancel()

	runCtx, runCancel := context.WithTimeout(tabCtx, 30*time.Second)
	defer runCancel()
	stop := context.AfterFunc(ctx, runCancel)
	defer stop()

	profileURL := "https://x.com/" + username
	var text string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(profileURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			// Best effort; the count still parses from body text when the
			// followers link never renders.
			waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			_ = chromedp.WaitVisible(`a[href$="/followers"], a[href$="/verified_followers"]`, chromedp.ByQuery).Do(waitCtx)
			return nil
		}),
		chromedp.Evaluate(`document.body ? document.body.innerText : ''`, &text),
	)
	if err != nil {
		s.log.WithError(err).WithField("username", username).Debug("profile lookup failed")
		return 0, false
	}

	count, ok := parser.ParseFollowers(text)
	if !ok {
		s.log.WithField("username", username).Debug("follower count not found on profile")
	}
	return count, ok
}

// IsLoginURL reports whether a URL is part of the login or account
// verification flow.
func IsLoginURL(url string) bool {
	return loginWallURL(url)
}

// loginWallURL reports whether a URL is part of the login or account
// verification flow.
func loginWallURL(url string) bool {
	lower := strings.ToLower(url)
	for _, indicator := range []string{"login", "i/flow", "account/access", "authenticate", "signin"} {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

// loginWallBody reports whether rendered page text is a login prompt rather
// than a results page that merely carries a sign-in button.
func loginWallBody(text string) bool {
	lower := strings.ToLower(text)
	prompted := strings.Contains(lower, "sign in") ||
		strings.Contains(lower, "log in") ||
		strings.Contains(lower, "enter your phone")
	if !prompted {
		return false
	}
	head := lower
	if len(head) > 500 {
		head = head[:500]
	}
	return !strings.Contains(head, "search")
}

// rateLimitedBody reports whether the page text indicates server-side rate
// limiting.
func rateLimitedBody(text string) bool {
	lower := strings.ToLower(text)
	return strings.Contains(lower, "rate limit") || strings.Contains(lower, "too many requests")
}
