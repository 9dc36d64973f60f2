package commands

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khajiev13/amazon-crawler/config"
	"github.com/khajiev13/amazon-crawler/utils"
)

func parseFlags(t *testing.T, args ...string) (flagValues, *pflag.FlagSet) {
	t.Helper()
	flags = flagValues{}
	rootCmd.ResetFlags()
	initFlags()
	fs := rootCmd.Flags()
	require.NoError(t, fs.Parse(args))
	return flags, fs
}

func TestFlagsOverrideOnlyWhenSet(t *testing.T) {
	cfg := config.Default()
	cfg.SearchTerm = "from config file"
	cfg.MaxProducts = 9

	v, fs := parseFlags(t,
		"--max-products", "3",
		"--reviews",
		"--filter", "tizen",
		"--domains", "amazon.co.uk,amazon.com",
		"--comments-in-last-n-days", "30",
		"--profile-dir", "/tmp/chrome",
	)
	v.apply(fs, &cfg)

	assert.Equal(t, "from config file", cfg.SearchTerm, "unset flag keeps the loaded value")
	assert.Equal(t, 3, cfg.MaxProducts)
	assert.True(t, cfg.ScrapeReview)
	assert.Equal(t, "tizen", cfg.FilterKeyword)
	assert.Equal(t, []string{"amazon.co.uk", "amazon.com"}, cfg.Domains)
	assert.Equal(t, 30, cfg.RecentDays)
	assert.Equal(t, "/tmp/chrome", cfg.ProfileDir)
	assert.True(t, cfg.UseProfile)
}

func TestFlagDefaults(t *testing.T) {
	_, fs := parseFlags(t)

	search, err := fs.GetString("search")
	require.NoError(t, err)
	assert.Equal(t, "smart tvs", search)

	output, err := fs.GetString("output")
	require.NoError(t, err)
	assert.Equal(t, "amazon_smarttvs.csv", output)

	maxProducts, err := fs.GetInt("max-products")
	require.NoError(t, err)
	assert.Equal(t, 5, maxProducts)

	reviewsDir, err := fs.GetString("reviews-dir")
	require.NoError(t, err)
	assert.Equal(t, "reviews", reviewsDir)
}

func TestPrintSummary(t *testing.T) {
	var out strings.Builder
	printSummary(&out, utils.SummaryStats{
		TotalProducts:    12,
		ProductsReviewed: 1,
		ProductsFailed:   1,
		TotalReviews:     7,
		AverageRating:    4.25,
		VerifiedShare:    0.5,
		ReviewsPerProduct: []utils.ProductReviewCount{
			{ASIN: "B0CVS5XZGB", Title: "Samsung QLED", Count: 7, File: "reviews/reviews_product_1_Samsung_QLED.csv"},
			{ASIN: "B0BXYZ1234", Title: "TCL", Error: "login failed: mfa"},
		},
	})

	s := out.String()
	assert.Contains(t, s, "Crawl summary")
	assert.Contains(t, s, "4.25")
	assert.Contains(t, s, "50%")
	assert.Contains(t, s, "B0CVS5XZGB")
	assert.Contains(t, s, "ERROR: login failed: mfa")
}

func TestPrepareLogsConfigLoadingWithRunID(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	dir := t.TempDir()
	base := filepath.Join(dir, "crawler.json5")
	require.NoError(t, os.WriteFile(base, []byte(`{search_term: "oled tv"}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "crawler.local.json5"), []byte(`{max_pages: 2}`), 0o644))

	_, fs := parseFlags(t, "--config", base, "--max-products", "4")
	var logs bytes.Buffer
	cfg, err := prepare(&logs, fs, "run-1234")
	require.NoError(t, err)

	assert.Equal(t, "oled tv", cfg.SearchTerm)
	assert.Equal(t, 2, cfg.MaxPages)
	assert.Equal(t, 4, cfg.MaxProducts)
	assert.Contains(t, logs.String(), "merging config with local overrides")
	assert.Contains(t, logs.String(), "run=run-1234")
}

func TestPrepareHonoursVerbose(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	missing := filepath.Join(t.TempDir(), "absent.json5")

	_, fs := parseFlags(t, "--config", missing)
	var quiet bytes.Buffer
	_, err := prepare(&quiet, fs, "run-quiet")
	require.NoError(t, err)
	assert.NotContains(t, quiet.String(), "no config file found")

	_, fs = parseFlags(t, "--config", missing, "-v")
	var verbose bytes.Buffer
	cfg, err := prepare(&verbose, fs, "run-verbose")
	require.NoError(t, err)
	assert.True(t, cfg.Verbose)
	assert.Contains(t, verbose.String(), "no config file found")
	assert.Contains(t, verbose.String(), "run=run-verbose")
}
