package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/khajiev13/amazon-crawler/config"
)

var rootCmd = &cobra.Command{
	Use:   "amazon-crawler",
	Short: "amazon-crawler searches the marketplace and saves products and their reviews as CSV.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		runID := uuid.NewString()
		cfg, err := prepare(os.Stderr, cmd.Flags(), runID)
		if err != nil {
			return err
		}
		return run(cmd.Context(), cfg, runID)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

type flagValues struct {
	configPath  string
	search      string
	output      string
	reviews     bool
	maxProducts int
	maxReviews  int
	maxPages    int
	inputFile   string
	asinFile    string
	useProfile  bool
	profileDir  string
	recentDays  int
	filter      string
	filterAttr  string
	reviewsDir  string
	headless    bool
	domains     []string
	metricsFile string
	summaryFile string
	verbose     bool
}

var flags flagValues

func init() {
	initFlags()
}

func initFlags() {
	d := config.Default()
	f := rootCmd.Flags()
	f.StringVar(&flags.configPath, "config", "crawler.json5", "Optional json5 config file; a .local sibling overrides it.")
	f.StringVar(&flags.search, "search", d.SearchTerm, "Search term to use.")
	f.StringVar(&flags.output, "output", d.OutFile, "Output CSV filename.")
	f.BoolVar(&flags.reviews, "reviews", false, "Scrape product reviews.")
	f.IntVar(&flags.maxProducts, "max-products", d.MaxProducts, "Maximum number of products to process for reviews.")
	f.IntVar(&flags.maxReviews, "max-reviews", 0, "Maximum number of reviews per product (0 collects all).")
	f.IntVar(&flags.maxPages, "max-pages", d.MaxPages, "Maximum number of search result pages to walk.")
	f.StringVar(&flags.inputFile, "input-file", "", "CSV file with already scraped products.")
	f.StringVar(&flags.asinFile, "asin-file", "", "File with one ASIN per line; collects reviews for these only.")
	f.BoolVar(&flags.useProfile, "use-profile", false, "Use your existing Chrome profile with saved logins.")
	f.StringVar(&flags.profileDir, "profile-dir", "", "Chrome user-data directory for --use-profile.")
	f.IntVar(&flags.recentDays, "comments-in-last-n-days", 0, "Only keep reviews from the last N days (0 keeps all).")
	f.StringVar(&flags.filter, "filter", "", "Keep only products whose filter attribute contains this keyword.")
	f.StringVar(&flags.filterAttr, "filter-attribute", d.FilterAttribute, "Detail page attribute the filter keyword is matched against.")
	f.StringVar(&flags.reviewsDir, "reviews-dir", d.ReviewsDir, "Directory review files are written to.")
	f.BoolVar(&flags.headless, "headless", d.Headless, "Run Chrome without a window.")
	f.StringSliceVar(&flags.domains, "domains", d.Domains, "Marketplace domains to try for reviews, in order.")
	f.StringVar(&flags.metricsFile, "metrics-file", "", "Write run counters in Prometheus text format to this file.")
	f.StringVar(&flags.summaryFile, "summary-file", "", "Write a JSON run summary to this file.")
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging.")
}

// apply copies every flag the user set over cfg, so flags win over the
// config file and the environment.
func (v flagValues) apply(fs *pflag.FlagSet, cfg *config.Config) {
	set := func(name string, fn func()) {
		if fs.Changed(name) {
			fn()
		}
	}
	set("search", func() { cfg.SearchTerm = v.search })
	set("output", func() { cfg.OutFile = v.output })
	set("reviews", func() { cfg.ScrapeReview = v.reviews })
	set("max-products", func() { cfg.MaxProducts = v.maxProducts })
	set("max-reviews", func() { cfg.MaxReviews = v.maxReviews })
	set("max-pages", func() { cfg.MaxPages = v.maxPages })
	set("input-file", func() { cfg.InputFile = v.inputFile })
	set("asin-file", func() { cfg.ASINFile = v.asinFile })
	set("use-profile", func() { cfg.UseProfile = v.useProfile })
	set("profile-dir", func() { cfg.ProfileDir = v.profileDir })
	set("comments-in-last-n-days", func() { cfg.RecentDays = v.recentDays })
	set("filter", func() { cfg.FilterKeyword = v.filter })
	set("filter-attribute", func() { cfg.FilterAttribute = v.filterAttr })
	set("reviews-dir", func() { cfg.ReviewsDir = v.reviewsDir })
	set("headless", func() { cfg.Headless = v.headless })
	set("domains", func() { cfg.Domains = v.domains })
	set("metrics-file", func() { cfg.MetricsFile = v.metricsFile })
	set("summary-file", func() { cfg.SummaryFile = v.summaryFile })
	set("verbose", func() { cfg.Verbose = v.verbose })

	// A profile directory only makes sense with the profile turned on.
	if cfg.ProfileDir != "" && fs.Changed("profile-dir") {
		cfg.UseProfile = true
	}
}

// prepare installs the run logger, then loads the config and applies flags,
// so config loading already logs with the run id at the requested level.
func prepare(w io.Writer, fs *pflag.FlagSet, runID string) (config.Config, error) {
	setupLogging(w, flags.verbose, runID)
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return cfg, err
	}
	flags.apply(fs, &cfg)
	return cfg, nil
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
