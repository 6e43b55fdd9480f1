package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xscraper/pkg/models"
)

var anchor = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func TestNormalizeKeyword(t *testing.T) {
	spec, err := Normalize(Params{Keyword: "#golang", Limit: 50}, anchor)
	require.NoError(t, err)

	assert.Equal(t, models.ModeKeyword, spec.Mode)
	assert.Equal(t, "#golang", spec.Query)
	assert.Equal(t, models.SortTop, spec.SortOrder)
	assert.Nil(t, spec.Since)
	assert.Nil(t, spec.Until)
}

func TestNormalizeAccount(t *testing.T) {
	spec, err := Normalize(Params{FromAccount: "@NASA", Limit: 10}, anchor)
	require.NoError(t, err)

	assert.Equal(t, models.ModeAccount, spec.Mode)
	assert.Equal(t, "NASA", spec.Query, "leading @ is stripped")
}

func TestNormalizeKeywordWithAccountExclusion(t *testing.T) {
	spec, err := Normalize(Params{Keyword: "rockets", FromAccount: "NASA", Limit: 10}, anchor)
	require.NoError(t, err)

	assert.Equal(t, models.ModeKeyword, spec.Mode)
	assert.Equal(t, "rockets", spec.Query)
	assert.Equal(t, "nasa", spec.ExcludeAccount)
}

func TestNormalizeLatestImpliesWindow(t *testing.T) {
	spec, err := Normalize(Params{Keyword: "news", Latest: true, Limit: 10}, anchor)
	require.NoError(t, err)

	assert.Equal(t, models.SortLatest, spec.SortOrder)
	require.NotNil(t, spec.Since)
	assert.Equal(t, anchor.Add(-24*time.Hour), *spec.Since)

	// An explicit since date is not overridden.
	spec, err = Normalize(Params{Keyword: "news", Latest: true, SinceDate: "2024-06-01", Limit: 10}, anchor)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), *spec.Since)
}

func TestNormalizeErrors(t *testing.T) {
	_, err := Normalize(Params{Limit: 10}, anchor)
	assert.Error(t, err, "keyword or account required")

	_, err = Normalize(Params{Keyword: "x", SinceDate: "15-06-2024", Limit: 10}, anchor)
	assert.Error(t, err, "bad date format")

	_, err = Normalize(Params{Keyword: "x", SinceDate: "2024-06-10", UntilDate: "2024-06-01", Limit: 10}, anchor)
	assert.Error(t, err, "inverted window")

	_, err = Normalize(Params{Keyword: "x"}, anchor)
	assert.Error(t, err, "limit required")
}

func TestBuild(t *testing.T) {
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		spec models.SearchSpec
		want string
	}{
		{
			name: "account",
			spec: models.SearchSpec{Mode: models.ModeAccount, Query: "nasa"},
			want: "(from:nasa)",
		},
		{
			name: "keyword excludes own handle",
			spec: models.SearchSpec{Mode: models.ModeKeyword, Query: "PokerStars"},
			want: "PokerStars -@pokerstars",
		},
		{
			name: "multi-word keyword has no handle exclusion",
			spec: models.SearchSpec{Mode: models.ModeKeyword, Query: "python programming"},
			want: "python programming",
		},
		{
			name: "excluded account merges with keyword exclusions",
			spec: models.SearchSpec{Mode: models.ModeKeyword, Query: "PokerStars", ExcludeAccount: "ggpoker"},
			want: "PokerStars -@pokerstars -@ggpoker",
		},
		{
			name: "excluded account deduplicates against keyword handle",
			spec: models.SearchSpec{Mode: models.ModeKeyword, Query: "PokerStars", ExcludeAccount: "pokerstars"},
			want: "PokerStars -@pokerstars",
		},
		{
			name: "date operators append until then since",
			spec: models.SearchSpec{Mode: models.ModeAccount, Query: "nasa", Since: &since, Until: &until},
			want: "(from:nasa) until:2024-02-01 since:2024-01-01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Build(tt.spec))
		})
	}
}

func TestExclusionsFromOrQuery(t *testing.T) {
	got := Exclusions("(PokerStars) OR (pokerstars) OR (@GGPoker)")
	assert.Equal(t, []string{"pokerstars", "ggpoker"}, got)
}

func TestURL(t *testing.T) {
	spec := models.SearchSpec{Mode: models.ModeKeyword, Query: "#test", SortOrder: models.SortLatest}
	u := URL(spec)

	assert.Contains(t, u, "https://x.com/search?q=")
	assert.Contains(t, u, "%23test")
	assert.Contains(t, u, "src=typed_query")
	assert.Contains(t, u, "f=live")

	top := models.SearchSpec{Mode: models.ModeKeyword, Query: "#test", SortOrder: models.SortTop}
	assert.NotContains(t, URL(top), "f=live")
}
