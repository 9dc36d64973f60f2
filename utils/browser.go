package utils

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/go-rod/stealth"

	"github.com/khajiev13/amazon-crawler/config"
)

// Session is the single browser tab the whole workflow drives.
type Session struct {
	ctx         context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
}

// NewAllocator creates a Chrome exec allocator context from the given Config.
func NewAllocator(parent context.Context, cfg config.Config) (context.Context, context.CancelFunc) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("enable-automation", false),
		chromedp.Flag("lang", "en-US"),
		chromedp.UserAgent(cfg.UserAgent),
		chromedp.WindowSize(1366, 768),
	)
	if dir := ProfileDir(cfg); dir != "" {
		opts = append(opts, chromedp.UserDataDir(dir))
	}
	return chromedp.NewExecAllocator(parent, opts...)
}

// ProfileDir resolves the Chrome user-data directory to reuse, or "" for a
// throwaway profile.
func ProfileDir(cfg config.Config) string {
	if !cfg.UseProfile {
		return ""
	}
	if cfg.ProfileDir != "" {
		return cfg.ProfileDir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "google-chrome")
}

// NewSession launches Chrome, opens a tab and installs the evasion script so
// it runs before any page script on every navigation.
func NewSession(parent context.Context, cfg config.Config) (*Session, error) {
	allocCtx, cancelAlloc := NewAllocator(parent, cfg)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			slog.Debug(fmt.Sprintf(format, args...), "component", "chromedp")
		}),
	)

	s := &Session{ctx: tabCtx, cancelTab: cancelTab, cancelAlloc: cancelAlloc}

	err := chromedp.Run(tabCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": cfg.Language}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(stealth.JS).Do(ctx)
			return err
		}),
	)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	slog.Info("browser session started",
		"headless", cfg.Headless,
		"profile", ProfileDir(cfg),
	)
	return s, nil
}

// Context is the tab context every chromedp action must run against.
func (s *Session) Context() context.Context { return s.ctx }

// Close shuts the tab and the Chrome process. Safe to call more than once.
func (s *Session) Close() {
	if s.cancelTab != nil {
		s.cancelTab()
		s.cancelTab = nil
	}
	if s.cancelAlloc != nil {
		s.cancelAlloc()
		s.cancelAlloc = nil
	}
}
