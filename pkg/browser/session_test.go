package browser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"xscraper/pkg/config"
)

func testBrowserConfig(t *testing.T, headless bool) config.BrowserConfig {
	return config.BrowserConfig{
		ProfileDir:        t.TempDir(),
		UserAgent:         "test-agent",
		Headless:          headless,
		NavigationTimeout: time.Minute,
		ContentTimeout:    time.Minute,
	}
}

func TestLoginWallURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"login path", "https://x.com/login", true},
		{"login flow", "https://x.com/i/flow/login", true},
		{"account access", "https://x.com/account/access", true},
		{"signin redirect", "https://x.com/signin?redirect=%2Fsearch", true},
		{"mixed case", "https://x.com/Login", true},
		{"search results", "https://x.com/search?q=golang&src=typed_query", false},
		{"profile", "https://x.com/some_user", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, loginWallURL(tt.url))
		})
	}
}

func TestLoginWallBody(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{
			name: "login prompt",
			text: "Sign in to X\nPhone, email, or username\nNext\nForgot password?",
			want: true,
		},
		{
			name: "phone verification",
			text: "Enter your phone number or username to continue",
			want: true,
		},
		{
			name: "results page with sign-in button",
			text: "Search results for golang\nTop Latest People\nSign in\nGreat post about golang",
			want: false,
		},
		{
			name: "plain results",
			text: "Top Latest People Media\npost text here",
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, loginWallBody(tt.text))
		})
	}
}

func TestRateLimitedBody(t *testing.T) {
	assert.True(t, rateLimitedBody("Rate limit exceeded. Please wait a few moments."))
	assert.True(t, rateLimitedBody("Too many requests"))
	assert.False(t, rateLimitedBody("Top Latest People"))
}

func TestAllocatorOptionsHeadlessToggle(t *testing.T) {
	headless := allocatorOptions(testBrowserConfig(t, true))
	visible := allocatorOptions(testBrowserConfig(t, false))

	// Both variants carry the full anti-detection flag set; only the
	// headless switch differs, so the lists stay the same length.
	assert.Equal(t, len(headless), len(visible))
	assert.NotEmpty(t, headless)
}
