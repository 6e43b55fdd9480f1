package parser

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testClock = func() time.Time {
	return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
}

func newTestParser() *Parser {
	return New(WithClock(testClock))
}

// entryHTML builds a minimal but structurally faithful feed entry.
func entryHTML(username, id, body, datetime string) string {
	return fmt.Sprintf(`
<article role="article">
  <div data-testid="User-Name">Display of %[1]s@%[1]s·2h</div>
  <a role="link" href="/%[1]s/status/%[2]s"><time datetime="%[4]s">2h</time></a>
  <div data-testid="tweetText">%[3]s</div>
  <div role="group" aria-label="12 replies, 34 reposts, 567 likes, 8.9K views"></div>
</article>`, username, id, body, datetime)
}

func TestParseCompleteEntry(t *testing.T) {
	html := entryHTML("spacewatcher", "1801234567890123456", "Launch window opens tonight.", "2024-06-14T22:15:00.000Z")

	res := newTestParser().Parse(html)
	require.Equal(t, OutcomeRecord, res.Outcome, res.Reason)

	rec := res.Record
	assert.Equal(t, "1801234567890123456", rec.ID)
	assert.Equal(t, "spacewatcher", rec.Username)
	assert.Equal(t, "spacewatcher", rec.Author)
	assert.Equal(t, "Display of spacewatcher", rec.DisplayName)
	assert.Equal(t, "Launch window opens tonight.", rec.Body)
	assert.Equal(t, "https://x.com/spacewatcher/status/1801234567890123456", rec.URL)
	assert.Equal(t, time.Date(2024, 6, 14, 22, 15, 0, 0, time.UTC), rec.PublishedAt)
	assert.Equal(t, int64(12), rec.Counts.Replies)
	assert.Equal(t, int64(34), rec.Counts.Reposts)
	assert.Equal(t, int64(567), rec.Counts.Likes)
	assert.Equal(t, int64(8900), rec.Counts.Views)
	assert.Equal(t, int64(-1), rec.Followers)
}

func TestParseRelativeTimestamp(t *testing.T) {
	html := entryHTML("someone", "42", "hello", "")

	res := newTestParser().Parse(html)
	require.Equal(t, OutcomeRecord, res.Outcome)
	// "2h" resolved against the test clock.
	assert.Equal(t, testClock().Add(-2*time.Hour), res.Record.PublishedAt)
}

func TestParseImagesExcludeAvatars(t *testing.T) {
	html := `
<article>
  <a href="/u/status/7"><time datetime="2024-06-01T00:00:00Z">Jun 1</time></a>
  <div data-testid="tweetText">pics</div>
  <img src="https://pbs.twimg.com/profile_images/123/avatar.jpg">
  <img src="https://pbs.twimg.com/media/AAA.jpg">
  <img src="https://pbs.twimg.com/media/BBB.jpg">
</article>`

	res := newTestParser().Parse(html)
	require.Equal(t, OutcomeRecord, res.Outcome)
	assert.Equal(t, []string{
		"https://pbs.twimg.com/media/AAA.jpg",
		"https://pbs.twimg.com/media/BBB.jpg",
	}, res.Record.Images)
}

func TestParseCountsFromActionButtons(t *testing.T) {
	html := `
<article>
  <a href="/u/status/9"><time datetime="2024-06-01T00:00:00Z">Jun 1</time></a>
  <div data-testid="tweetText">fallback counts</div>
  <div data-testid="reply">3</div>
  <div data-testid="retweet">1.2K</div>
  <div data-testid="like">45</div>
</article>`

	res := newTestParser().Parse(html)
	require.Equal(t, OutcomeRecord, res.Outcome)
	assert.Equal(t, int64(3), res.Record.Counts.Replies)
	assert.Equal(t, int64(1200), res.Record.Counts.Reposts)
	assert.Equal(t, int64(45), res.Record.Counts.Likes)
	assert.Equal(t, int64(0), res.Record.Counts.Views, "missing views default to zero")
}

func TestParseSkipsNonPostUnits(t *testing.T) {
	tests := []struct {
		name string
		html string
	}{
		{
			name: "promoted entry",
			html: `<article><span>Promoted</span><a href="/ad/status/1"></a><div data-testid="tweetText">buy</div></article>`,
		},
		{
			name: "suggestion card",
			html: `<article><div>Who to follow</div><span>Follow</span></article>`,
		},
		{
			name: "show more divider",
			html: `<article><span>Show more replies</span></article>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := newTestParser().Parse(tt.html)
			assert.Equal(t, OutcomeSkip, res.Outcome)
		})
	}
}

func TestParseMalformedEntries(t *testing.T) {
	// Post text without any status link: looks like content, id missing.
	res := newTestParser().Parse(`<article><div data-testid="tweetText">orphan text</div></article>`)
	assert.Equal(t, OutcomeMalformed, res.Outcome)
	assert.Contains(t, res.Reason, "id")
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"512", 512},
		{"3,456", 3456},
		{"1.2K", 1200},
		{"1.25K", 1250},
		{"10K", 10000},
		{"1.5M", 1500000},
		{"2B", 2000000000},
		{"1.2k", 1200},
		{"", 0},
		{"N/A", 0},
		{"views", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCount(tt.input))
		})
	}
}

func TestParseFollowers(t *testing.T) {
	n, ok := ParseFollowers("229.8M Followers")
	require.True(t, ok)
	assert.Equal(t, int64(229800000), n)

	n, ok = ParseFollowers("1,234 Followers")
	require.True(t, ok)
	assert.Equal(t, int64(1234), n)

	_, ok = ParseFollowers("Following")
	assert.False(t, ok)
}

func TestResolveTimestamp(t *testing.T) {
	now := testClock()

	tests := []struct {
		name     string
		datetime string
		display  string
		want     time.Time
		ok       bool
	}{
		{"iso attribute wins", "2024-05-20T08:00:00.000Z", "May 20", time.Date(2024, 5, 20, 8, 0, 0, 0, time.UTC), true},
		{"relative minutes", "", "45m", now.Add(-45 * time.Minute), true},
		{"relative days", "", "3d", now.Add(-72 * time.Hour), true},
		{"relative seconds", "", "30s", now.Add(-30 * time.Second), true},
		{"month day current year", "", "May 20", time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC), true},
		{"month day with year", "", "May 20, 2023", time.Date(2023, 5, 20, 0, 0, 0, 0, time.UTC), true},
		{"garbage", "", "someday", time.Time{}, false},
		{"empty", "", "", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := resolveTimestamp(tt.datetime, tt.display, now)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
