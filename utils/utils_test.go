package utils

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khajiev13/amazon-crawler/config"
	"github.com/khajiev13/amazon-crawler/models"
)

func review(rating string, helpful int, verified bool) models.Review {
	r := models.NewReview()
	r.Rating = rating
	r.HelpfulCount = helpful
	r.VerifiedPurchase = verified
	return r
}

func TestBuildSummaryStats(t *testing.T) {
	results := []models.ProductResult{
		{Product: models.Product{ASIN: "A1", Title: "one"}, Reviews: 2, OutputFile: "r1.csv"},
		{Product: models.Product{ASIN: "A2", Title: "two"}, Err: errors.New("login failed")},
		{Product: models.Product{ASIN: "A3", Title: "three"}, Reviews: 4},
	}
	reviews := []models.Review{
		review("5", 10, true),
		review("4", 0, false),
		review(models.Unknown, 3, true),
		review("3.0", 7, true),
	}

	stats := BuildSummaryStats(10, 3, results, reviews)
	assert.Equal(t, 10, stats.TotalProducts)
	assert.Equal(t, 3, stats.FilteredProducts)
	assert.Equal(t, 2, stats.ProductsReviewed)
	assert.Equal(t, 1, stats.ProductsFailed)
	assert.Equal(t, 4, stats.TotalReviews)
	assert.InDelta(t, 4.0, stats.AverageRating, 0.001)
	assert.InDelta(t, 0.75, stats.VerifiedShare, 0.001)
	require.Len(t, stats.ReviewsPerProduct, 3)
	assert.Equal(t, "A3", stats.ReviewsPerProduct[0].ASIN)
	assert.Equal(t, "login failed", stats.ReviewsPerProduct[2].Error)
	require.Len(t, stats.MostHelpful, 4)
	assert.Equal(t, 10, stats.MostHelpful[0].HelpfulCount)
}

func TestBuildSummaryStatsEmpty(t *testing.T) {
	stats := BuildSummaryStats(0, 0, nil, nil)
	assert.Zero(t, stats.TotalReviews)
	assert.Zero(t, stats.AverageRating)
	assert.Empty(t, stats.MostHelpful)
}

func TestParseRatingValue(t *testing.T) {
	v, ok := ParseRatingValue("4,5")
	assert.True(t, ok)
	assert.InDelta(t, 4.5, v, 0.001)

	for _, bad := range []string{"", models.Unknown, "great", "7"} {
		_, ok := ParseRatingValue(bad)
		assert.False(t, ok, bad)
	}
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.json")
	summary := RunSummary{
		RunID:      "run-1",
		SearchTerm: "smart tvs",
		StartedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		FinishedAt: time.Date(2026, 1, 2, 4, 4, 5, 0, time.UTC),
		Stats:      SummaryStats{TotalProducts: 7},
	}
	require.NoError(t, WriteJSON(path, summary))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "run-1", decoded["run_id"])
	assert.EqualValues(t, 7, decoded["stats"].(map[string]any)["total_products"])
}

func TestPauseHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Pause(ctx, config.Delay{Min: time.Hour, Max: 2 * time.Hour})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "ab…", Truncate("abcdef", 2))
}

func TestProfileDir(t *testing.T) {
	cfg := config.Default()
	assert.Empty(t, ProfileDir(cfg))

	cfg.UseProfile = true
	cfg.ProfileDir = "/tmp/chrome-profile"
	assert.Equal(t, "/tmp/chrome-profile", ProfileDir(cfg))
}
