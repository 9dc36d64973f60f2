package scraper

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/khajiev13/amazon-crawler/observability"
)

// Resolver is whoever clears a security challenge the crawler cannot.
// Resolve blocks until the challenge is dealt with or ctx is cancelled.
type Resolver interface {
	Resolve(ctx context.Context, reason string) error
}

// ConsoleResolver asks a human at the terminal to solve the challenge in the
// visible browser window and press Enter. A single goroutine reads the
// terminal for the resolver's lifetime; a cancelled prompt leaves the next
// line for the next prompt.
type ConsoleResolver struct {
	in  *bufio.Reader
	out io.Writer

	once  sync.Once
	lines chan error
}

func NewConsoleResolver(in io.Reader, out io.Writer) *ConsoleResolver {
	return &ConsoleResolver{in: bufio.NewReader(in), out: out}
}

// readLines feeds one value per line read. At EOF the channel is closed;
// any other read error is sent first.
func (c *ConsoleResolver) readLines() {
	c.lines = make(chan error)
	go func() {
		defer close(c.lines)
		for {
			_, err := c.in.ReadString('\n')
			if errors.Is(err, io.EOF) {
				return
			}
			c.lines <- err
			if err != nil {
				return
			}
		}
	}()
}

func (c *ConsoleResolver) Resolve(ctx context.Context, reason string) error {
	c.once.Do(c.readLines)

	fmt.Fprintf(c.out, "Security challenge detected (%s)! Please solve it manually.\n", reason)
	fmt.Fprint(c.out, "Press Enter once you've solved the challenge...")

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err, ok := <-c.lines:
		if !ok {
			// No more input; carry on as if Enter was pressed.
			return nil
		}
		return err
	}
}

// DetectChallenge inspects a page snapshot for interstitial markers and
// returns a short reason when one is found. The structural markers are always
// checked; the wording is only checked on pages without reviews, result cards
// or a product title.
func DetectChallenge(doc *goquery.Document) (string, bool) {
	if doc.Find(CaptchaInputSelector).Length() > 0 {
		return "captcha input", true
	}
	if doc.Find(CaptchaFormSelector).Length() > 0 {
		return "captcha form", true
	}

	if doc.Find(ContentPageSelector).Length() > 0 {
		return "", false
	}

	body := doc.Find("body").Clone()
	body.Find("script, style, noscript, template").Remove()
	text := body.Text()
	for _, kw := range ChallengeKeywords {
		if strings.Contains(text, kw) {
			return fmt.Sprintf("page mentions %q", kw), true
		}
	}
	return "", false
}

// ChallengeHandler checks the current page after navigations that may be
// interrupted and hands detected challenges to its Resolver.
type ChallengeHandler struct {
	Resolver Resolver

	// snapshot replaces Snapshot in tests.
	snapshot func(context.Context) (*goquery.Document, error)
}

// Handle reports whether a challenge was found and resolved. Snapshot
// failures are treated as "no challenge".
func (h ChallengeHandler) Handle(ctx context.Context) (bool, error) {
	snap := h.snapshot
	if snap == nil {
		snap = Snapshot
	}
	doc, err := snap(ctx)
	if err != nil {
		slog.WarnContext(ctx, "error checking for security challenges", "err", err)
		return false, nil
	}
	return h.handleDoc(ctx, doc)
}

func (h ChallengeHandler) handleDoc(ctx context.Context, doc *goquery.Document) (bool, error) {
	reason, found := DetectChallenge(doc)
	if !found {
		return false, nil
	}
	observability.Challenges.Inc()
	slog.WarnContext(ctx, "security challenge detected", "reason", reason)
	if h.Resolver == nil {
		return true, fmt.Errorf("challenge %q: no resolver configured", reason)
	}
	if err := h.Resolver.Resolve(ctx, reason); err != nil {
		return true, fmt.Errorf("resolve challenge: %w", err)
	}
	slog.InfoContext(ctx, "security challenge handled, continuing")
	return true, nil
}
