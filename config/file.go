package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/joho/godotenv"
	"github.com/titanous/json5"
)

// File is the on-disk shape of a crawler config file. Durations are strings
// such as "10s" or "1m30s".
type File struct {
	SearchTerm      string   `json:"search_term"`
	OutFile         string   `json:"out_file"`
	ReviewsDir      string   `json:"reviews_dir"`
	Domains         []string `json:"domains"`
	MaxProducts     int      `json:"max_products"`
	MaxReviews      int      `json:"max_reviews"`
	MaxPages        int      `json:"max_pages"`
	RecentDays      int      `json:"comments_in_last_n_days"`
	FilterKeyword   string   `json:"filter_keyword"`
	FilterAttribute string   `json:"filter_attribute"`
	Headless        *bool    `json:"headless"`
	ProfileDir      string   `json:"profile_dir"`
	UserAgent       string   `json:"user_agent"`
	Language        string   `json:"language"`
	WaitTimeout     string   `json:"wait_timeout"`
	LoginTimeout    string   `json:"login_timeout"`
	PageTimeout     string   `json:"page_timeout"`
	GlobalTimeout   string   `json:"global_timeout"`
	SearchBackoff   string   `json:"search_backoff"`
	Email           string   `json:"email"`
	Password        string   `json:"password"`
}

// Load builds a Config from the defaults, an optional json5 file (merged with
// its ".local" sibling), a .env file and the environment, in that order.
// A missing config file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		f, err := ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			slog.Debug("no config file found", "path", path)
		case err != nil:
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := f.apply(&cfg); err != nil {
				return cfg, fmt.Errorf("apply config %s: %w", path, err)
			}
		}
	}

	_ = godotenv.Load()
	applyEnv(&cfg)
	return cfg, nil
}

// ReadFile reads <name>.<ext> and merges <name>.local.<ext> over it.
// It returns os.ErrNotExist when neither exists.
func ReadFile(name string) (File, error) {
	var out File
	found := false

	base, err := os.ReadFile(name)
	if err != nil && !os.IsNotExist(err) {
		return out, err
	}
	if len(base) > 0 {
		if err := json5.Unmarshal(base, &out); err != nil {
			return out, err
		}
		found = true
	}

	localPath := localName(name)
	local, err := os.ReadFile(localPath)
	if err != nil && !os.IsNotExist(err) {
		return out, err
	}
	if len(local) > 0 {
		var override File
		if err := json5.Unmarshal(local, &override); err != nil {
			return out, err
		}
		if err := mergo.Merge(&out, override, mergo.WithOverride); err != nil {
			return out, err
		}
		slog.Info("merging config with local overrides", "local", localPath)
		found = true
	}

	if !found {
		return out, os.ErrNotExist
	}
	return out, nil
}

func localName(name string) string {
	dir := filepath.Dir(name)
	ext := filepath.Ext(name)
	prefix := strings.TrimSuffix(filepath.Base(name), ext)
	return filepath.Join(dir, prefix+".local"+ext)
}

func (f File) apply(cfg *Config) error {
	setString(&cfg.SearchTerm, f.SearchTerm)
	setString(&cfg.OutFile, f.OutFile)
	setString(&cfg.ReviewsDir, f.ReviewsDir)
	setString(&cfg.FilterKeyword, f.FilterKeyword)
	setString(&cfg.FilterAttribute, f.FilterAttribute)
	setString(&cfg.ProfileDir, f.ProfileDir)
	setString(&cfg.UserAgent, f.UserAgent)
	setString(&cfg.Language, f.Language)
	setString(&cfg.Email, f.Email)
	setString(&cfg.Password, f.Password)

	if len(f.Domains) > 0 {
		cfg.Domains = f.Domains
	}
	if f.MaxProducts > 0 {
		cfg.MaxProducts = f.MaxProducts
	}
	if f.MaxReviews > 0 {
		cfg.MaxReviews = f.MaxReviews
	}
	if f.MaxPages > 0 {
		cfg.MaxPages = f.MaxPages
	}
	if f.RecentDays > 0 {
		cfg.RecentDays = f.RecentDays
	}
	if f.Headless != nil {
		cfg.Headless = *f.Headless
	}

	for _, d := range []struct {
		raw string
		dst *time.Duration
	}{
		{f.WaitTimeout, &cfg.WaitTimeout},
		{f.LoginTimeout, &cfg.LoginTimeout},
		{f.PageTimeout, &cfg.PageTimeout},
		{f.GlobalTimeout, &cfg.GlobalTimeout},
		{f.SearchBackoff, &cfg.SearchBackoff},
	} {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("parse duration %q: %w", d.raw, err)
		}
		*d.dst = parsed
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
