package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func datePtr(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestSearchSpecValidate(t *testing.T) {
	tests := []struct {
		name    string
		spec    SearchSpec
		wantErr bool
	}{
		{
			name: "valid keyword spec",
			spec: SearchSpec{Mode: ModeKeyword, Query: "#golang", SortOrder: SortLatest, Limit: 10},
		},
		{
			name: "valid account spec with window",
			spec: SearchSpec{
				Mode: ModeAccount, Query: "nasa", SortOrder: SortTop, Limit: 1,
				Since: datePtr(2024, 1, 1), Until: datePtr(2024, 2, 1),
			},
		},
		{
			name:    "empty query",
			spec:    SearchSpec{Mode: ModeKeyword, Query: "  ", SortOrder: SortLatest, Limit: 10},
			wantErr: true,
		},
		{
			name:    "zero limit",
			spec:    SearchSpec{Mode: ModeKeyword, Query: "x", SortOrder: SortLatest, Limit: 0},
			wantErr: true,
		},
		{
			name: "inverted date window",
			spec: SearchSpec{
				Mode: ModeKeyword, Query: "x", SortOrder: SortLatest, Limit: 5,
				Since: datePtr(2024, 3, 1), Until: datePtr(2024, 1, 1),
			},
			wantErr: true,
		},
		{
			name:    "unknown mode",
			spec:    SearchSpec{Mode: "fuzzy", Query: "x", SortOrder: SortLatest, Limit: 5},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSearchSpecInWindow(t *testing.T) {
	spec := SearchSpec{
		Since: datePtr(2024, 1, 1),
		Until: datePtr(2024, 2, 1),
	}

	assert.True(t, spec.InWindow(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)), "since is inclusive")
	assert.True(t, spec.InWindow(time.Date(2024, 1, 15, 12, 30, 0, 0, time.UTC)))
	assert.False(t, spec.InWindow(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)), "until is exclusive")
	assert.False(t, spec.InWindow(time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC)))

	open := SearchSpec{}
	assert.True(t, open.InWindow(time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, open.DateFiltered())
	assert.True(t, spec.DateFiltered())
}

func TestPostRecordJSONRoundTrip(t *testing.T) {
	rec := PostRecord{
		ID:          "1790000000000000001",
		Author:      "nasa",
		Username:    "nasa",
		DisplayName: "NASA",
		Body:        "Liftoff!",
		PublishedAt: time.Date(2024, 5, 14, 9, 30, 0, 0, time.UTC),
		Counts:      EngagementCounts{Views: 1200000, Replies: 340, Reposts: 5600, Likes: 48000},
		URL:         "https://x.com/nasa/status/1790000000000000001",
		Followers:   229800000,
		Images:      []string{"https://pbs.twimg.com/media/abc.jpg"},
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	// Duplicated convenience fields must always match.
	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, raw["body"], raw["text"])
	assert.Equal(t, raw["url"], raw["link"])
	assert.Equal(t, "2024-05-14T09:30:00Z", raw["date"])

	var back PostRecord
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, rec, back)
}

func TestPostRecordJSONUnknownFollowers(t *testing.T) {
	rec := PostRecord{
		ID:          "1",
		Username:    "someone",
		Author:      "someone",
		PublishedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Followers:   -1,
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Nil(t, raw["profile_followers"])
	assert.Equal(t, []any{}, raw["images"], "images serializes as an empty array, never null")

	var back PostRecord
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, int64(-1), back.Followers)
}
