// Package ratelimit provides rate limiting for the follower-count profile
// lookups.
//
// Each enrichment lookup opens a profile page in a new browser tab; pacing
// those visits keeps the session from looking like automated traffic.
//
// Token Bucket:
//   - Fixed capacity bucket that refills after a specified period
//   - Suitable for burst traffic followed by quiet periods
//   - The only implementation the scraper needs
//
// Interface:
//
// Rate limiters implement the Limiter interface:
//   - Allow() bool - Check if a request is allowed
//   - Wait() - Block until a request is allowed
//   - Reset() - Reset the limiter state
//
// Usage:
//
//	// Token bucket: 20 lookups per minute
//	limiter := ratelimit.NewTokenBucket(20, time.Minute)
//
//	if limiter.Allow() {
//	    // Proceed with the lookup
//	} else {
//	    // Block until the bucket refills
//	    limiter.Wait()
//	}
package ratelimit
