// Package retry provides exponential backoff and retry logic for handling
// transient failures in browser navigation and scroll operations.
//
// Features:
//   - Exponential and linear backoff strategies
//   - Jitter to avoid lockstep retry timing
//   - Context support for cancellation
//   - Configurable retry predicates
//   - Integration with the scraper's typed errors
//
// Basic usage:
//
//	// Simple retry with defaults
//	err := retry.Do(func() error {
//		return feed.Navigate(ctx)
//	}, nil)
//
//	// Custom configuration
//	cfg := &retry.Config{
//		MaxAttempts: 5,
//		Backoff: &retry.ExponentialBackoff{
//			BaseDelay:    2 * time.Second,
//			MaxDelay:     30 * time.Second,
//			Multiplier:   2.0,
//			JitterFactor: 0.1,
//		},
//		RetryIf: retry.DefaultRetryIf,
//		Context: ctx,
//		Logger:  logger.GetLogger(),
//	}
//	err := retry.Do(operation, cfg)
//
//	// Operations that return a value
//	entries, err := retry.DoWithResult(func() ([]string, error) {
//		return feed.Entries(ctx)
//	}, cfg)
//
// Error Type Handling:
//
// DefaultRetryIf consults the scraper's error taxonomy: transient errors
// (slow renders, flaky navigation) are retried with backoff, while auth,
// parsing, and infrastructure errors fail immediately because another
// attempt cannot change the outcome.
package retry
