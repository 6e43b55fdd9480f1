package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"xscraper/internal/enrich"
	"xscraper/pkg/browser"
	"xscraper/pkg/config"
	errs "xscraper/pkg/errors"
	"xscraper/pkg/logger"
	"xscraper/pkg/models"
	"xscraper/pkg/parser"
	"xscraper/pkg/query"
	"xscraper/pkg/ratelimit"
	"xscraper/pkg/scraper"
	"xscraper/pkg/storage"
	"xscraper/pkg/ui"
)

var (
	searchKeyword string
	searchAccount string
	searchLimit   int
	searchSince   string
	searchUntil   string
	searchLatest  bool
	outputFile    string
	outputFormat  string
	noFollowers   bool
	headless      bool
	profileDir    string
	noIncremental bool
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Collect posts matching a search",
	Long: `Collect posts from X search results by keyword, account, or both.

The search runs in a headless browser using the persistent profile created
by 'xscraper login'. Results are written as a JSON array; re-running with
the same output file extends it instead of overwriting.

Date bounds are interpreted as UTC days: --since-date is inclusive,
--until-date is exclusive. --latest switches to the live-sorted feed and,
when --since-date is not given, restricts results to the past 24 hours.

Exit codes: 0 on success (including a stalled feed with partial results),
2 when the session needs a fresh login, 1 on any other failure.`,
	Example: `  # 100 posts matching a keyword
  xscraper search --keyword "golang generics"

  # Posts from one account within a date window
  xscraper search --from-account golang --since-date 2024-06-01 --until-date 2024-07-01

  # Keyword search excluding an account's own posts
  xscraper search --keyword kubernetes --from-account golang --limit 50

  # Most recent posts from the last 24 hours
  xscraper search --keyword golang --latest

  # CSV export without follower lookups
  xscraper search --keyword golang --format csv --output posts.csv --no-followers`,
	RunE: func(cmd *cobra.Command, args []string) error {
		runSearch(cmd)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().StringVarP(&searchKeyword, "keyword", "k", "", "keyword or phrase to search for")
	searchCmd.Flags().StringVarP(&searchAccount, "from-account", "a", "", "restrict results to posts from this account")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "l", 0, "maximum number of posts to collect")
	searchCmd.Flags().StringVarP(&searchSince, "since-date", "s", "", "earliest post date, inclusive (YYYY-MM-DD)")
	searchCmd.Flags().StringVarP(&searchUntil, "until-date", "u", "", "latest post date, exclusive (YYYY-MM-DD)")
	searchCmd.Flags().BoolVar(&searchLatest, "latest", false, "use the live-sorted feed (implies a 24h window unless --since-date is set)")
	searchCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output file (default: scraped_posts.json, or .csv for csv format)")
	searchCmd.Flags().StringVar(&outputFormat, "format", "", "output format: json or csv")
	searchCmd.Flags().BoolVar(&noFollowers, "no-followers", false, "skip follower-count lookups")
	searchCmd.Flags().BoolVar(&headless, "headless", true, "run the browser headless")
	searchCmd.Flags().StringVar(&profileDir, "profile-dir", "", "browser profile directory")
	searchCmd.Flags().BoolVar(&noIncremental, "no-incremental", false, "write output only at the end of the run")
}

func runSearch(cmd *cobra.Command) {
	flags := make(map[string]interface{})
	if outputFile != "" {
		flags["output"] = outputFile
	}
	if outputFormat != "" {
		flags["format"] = outputFormat
	}
	if noFollowers {
		flags["followers"] = false
	}
	if cmd.Flags().Changed("headless") {
		flags["headless"] = headless
	}
	if profileDir != "" {
		flags["profile-dir"] = profileDir
	}
	if logLevel != "info" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.Error("Failed to load configuration: " + err.Error())
		os.Exit(1)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.Error("Failed to initialize logging: " + err.Error())
		os.Exit(1)
	}
	log := logger.GetLogger()

	limit := searchLimit
	if limit <= 0 {
		limit = cfg.Search.DefaultLimit
	}
	spec, err := query.Normalize(query.Params{
		Keyword:     searchKeyword,
		FromAccount: searchAccount,
		SinceDate:   searchSince,
		UntilDate:   searchUntil,
		Limit:       limit,
		Latest:      searchLatest,
	}, time.Now())
	if err != nil {
		ui.Error(err.Error())
		os.Exit(1)
	}

	var store *storage.JSONStore
	if cfg.Output.Format == "json" {
		store, err = storage.NewJSONStore(cfg.Output.File, cfg.Output.Incremental && !noIncremental, log)
		if err != nil {
			ui.Error("Failed to open output file: " + err.Error())
			os.Exit(1)
		}
	}

	ui.Title("xscraper")
	ui.Info("Query", query.Build(spec))
	ui.Info("Limit", strconv.Itoa(spec.Limit))

	session, err := browser.NewSession(cfg.Browser, log)
	if err != nil {
		ui.Error("Failed to start browser: " + err.Error())
		os.Exit(1)
	}
	defer session.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []scraper.Option{scraper.WithLogger(log)}
	if store != nil {
		opts = append(opts, scraper.WithSink(store))
	}

	var followers *enrich.FollowerCache
	if cfg.Search.FetchFollowers {
		limiter := ratelimit.NewTokenBucket(cfg.RateLimit.ProfileLookupsPerMinute, time.Minute)
		followers = enrich.NewFollowerCache(session.FollowerCount, limiter, log)
		opts = append(opts, scraper.WithFollowerLookup(followers.Lookup))
	}

	// Account searches share one author, so resolve the count up front.
	if followers != nil && spec.Mode == models.ModeAccount {
		followers.Prefetch(ctx, spec.Query)
	}

	feed := browser.NewFeed(session, spec, cfg.Browser, log)
	engine := scraper.New(feed, parser.New(), cfg.Scroll, cfg.Retry, opts...)

	summary, runErr := engine.Collect(ctx, spec)
	if summary == nil {
		ui.Error(runErr.Error())
		os.Exit(1)
	}

	// Persist whatever was collected, whether or not the run succeeded.
	if store != nil {
		if err := store.Flush(); err != nil {
			log.WithError(err).Error("failed to write output file")
			ui.Error("Failed to write output: " + err.Error())
		}
	}
	if cfg.Output.Format == "csv" {
		if err := storage.WriteCSV(cfg.Output.File, summary.Records); err != nil {
			log.WithError(err).Error("failed to write CSV output")
			ui.Error("Failed to write output: " + err.Error())
		}
	}

	ui.Summary(summary, cfg.Output.File)

	if runErr != nil {
		if errs.IsAuthRequired(runErr) {
			ui.Error("Session expired. Run 'xscraper login' to re-authenticate.")
			os.Exit(2)
		}
		ui.Error(runErr.Error())
		os.Exit(1)
	}

	switch summary.Reason {
	case scraper.StopStall:
		ui.Warning("Feed stopped producing new posts before the limit was reached.")
	case scraper.StopComplete:
		if len(summary.Records) < spec.Limit {
			ui.Info("Note", "fewer matching posts exist than the requested limit")
		}
	}
	ui.Success("Collected " + strconv.Itoa(len(summary.Records)) + " posts")
}
