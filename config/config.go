package config

import (
	"math/rand"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration for the crawler.
type Config struct {
	SearchTerm   string
	OutFile      string
	ReviewsDir   string
	InputFile    string
	ASINFile     string
	Domains      []string
	ScrapeReview bool
	MaxProducts  int
	MaxReviews   int
	MaxPages     int
	RecentDays   int

	// Attribute filter; an empty keyword disables it.
	FilterKeyword   string
	FilterAttribute string

	// Browser
	Headless   bool
	UseProfile bool
	ProfileDir string
	UserAgent  string
	Language   string

	// Timing
	SearchRetries  int
	SearchBackoff  time.Duration
	WaitTimeout    time.Duration
	LoginTimeout   time.Duration
	PageTimeout    time.Duration
	GlobalTimeout  time.Duration
	PageDelay      Delay
	ProductDelay   Delay
	KeystrokeDelay Delay

	// Credentials are only ever read from the environment or a local config file.
	Email    string
	Password string

	MetricsFile string
	SummaryFile string
	Verbose     bool
}

// Delay is a closed interval that pacing sleeps are drawn from.
type Delay struct {
	Min time.Duration
	Max time.Duration
}

// Random draws a duration uniformly from the interval.
func (d Delay) Random() time.Duration {
	if d.Max <= d.Min {
		return d.Min
	}
	return d.Min + time.Duration(rand.Int63n(int64(d.Max-d.Min)))
}

// Default returns a Config populated with sensible defaults.
func Default() Config {
	return Config{
		SearchTerm:      "smart tvs",
		OutFile:         "amazon_smarttvs.csv",
		ReviewsDir:      "reviews",
		Domains:         []string{"amazon.com"},
		MaxProducts:     5,
		MaxPages:        20,
		FilterAttribute: "Operating System",
		Headless:        false,
		UserAgent: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
			"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
		Language: "en-US,en;q=0.9",

		SearchRetries:  3,
		SearchBackoff:  2 * time.Second,
		WaitTimeout:    10 * time.Second,
		LoginTimeout:   15 * time.Second,
		PageTimeout:    45 * time.Second,
		GlobalTimeout:  3 * time.Hour,
		PageDelay:      Delay{Min: 2 * time.Second, Max: 4 * time.Second},
		ProductDelay:   Delay{Min: 3 * time.Second, Max: 6 * time.Second},
		KeystrokeDelay: Delay{Min: 50 * time.Millisecond, Max: 200 * time.Millisecond},
	}
}

// PrimaryDomain is the marketplace host searches run against.
func (c Config) PrimaryDomain() string {
	if len(c.Domains) == 0 {
		return "amazon.com"
	}
	return c.Domains[0]
}

// HasCredentials reports whether a scripted login can be attempted.
func (c Config) HasCredentials() bool {
	return c.Email != "" && c.Password != ""
}

// applyEnv overlays environment variables onto cfg.
func applyEnv(cfg *Config) {
	cfg.Email = getEnv("AMAZON_EMAIL", cfg.Email)
	cfg.Password = getEnv("AMAZON_PASSWORD", cfg.Password)
	cfg.ProfileDir = getEnv("CHROME_PROFILE_DIR", cfg.ProfileDir)
	cfg.Headless = getEnvBool("CRAWLER_HEADLESS", cfg.Headless)
	if v := getEnv("AMAZON_DOMAINS", ""); v != "" {
		cfg.Domains = SplitTrim(v, ",")
	}
}

// SplitTrim splits s on sep and drops blank parts.
func SplitTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func getEnv(key string, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
