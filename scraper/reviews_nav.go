package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"github.com/khajiev13/amazon-crawler/config"
	"github.com/khajiev13/amazon-crawler/observability"
	"github.com/khajiev13/amazon-crawler/utils"
)

// State is where the review navigator stands for one product.
type State int

const (
	StateNavigating State = iota
	StateAwaitingPage
	StateLoginRequired
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNavigating:
		return "NAVIGATING"
	case StateAwaitingPage:
		return "AWAITING_PAGE"
	case StateLoginRequired:
		return "LOGIN_REQUIRED"
	case StateReady:
		return "READY"
	case StateFailed:
		return "FAILED"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// LoginOutcome is what the sign-in page showed after the password was submitted.
type LoginOutcome int

const (
	LoginNotAttempted LoginOutcome = iota
	LoginSuccess
	LoginCredentialError
	LoginCaptcha
	LoginMFA
	LoginVerification
	LoginUnknown
)

func (o LoginOutcome) String() string {
	switch o {
	case LoginNotAttempted:
		return "not_attempted"
	case LoginSuccess:
		return "success"
	case LoginCredentialError:
		return "credential_error"
	case LoginCaptcha:
		return "captcha"
	case LoginMFA:
		return "mfa"
	case LoginVerification:
		return "verification"
	case LoginUnknown:
		return "unknown"
	}
	return fmt.Sprintf("LoginOutcome(%d)", int(o))
}

// loginMarkers pairs each post-submit marker with the outcome it signals.
// Order matters: the review list wins over anything else still on the page.
var loginMarkers = []struct {
	selector string
	outcome  LoginOutcome
}{
	{ReviewListSelector, LoginSuccess},
	{LoginErrorSelector, LoginCredentialError},
	{LoginCaptchaSelector, LoginCaptcha},
	{LoginMFASelector, LoginMFA},
	{LoginVerifySelector, LoginVerification},
}

// ClassifyLoginOutcome inspects the page shown after a sign-in attempt.
func ClassifyLoginOutcome(doc *goquery.Document) LoginOutcome {
	for _, m := range loginMarkers {
		if doc.Find(m.selector).Length() > 0 {
			return m.outcome
		}
	}
	return LoginUnknown
}

// ReviewsURL is the first page of a product's reviews on domain.
func ReviewsURL(domain, asin string) string {
	return fmt.Sprintf("https://www.%s/product-reviews/%s", domain, asin)
}

// ReviewNavigator brings the tab to a product's reviews page, signing in
// when the marketplace asks for it.
type ReviewNavigator struct {
	cfg        config.Config
	challenges ChallengeHandler

	// openDomain is one domain attempt; openOn unless a test swaps it.
	openDomain func(ctx context.Context, domain, asin string) (State, LoginOutcome, error)
}

func NewReviewNavigator(cfg config.Config, challenges ChallengeHandler) *ReviewNavigator {
	n := &ReviewNavigator{cfg: cfg, challenges: challenges}
	n.openDomain = n.openOn
	return n
}

// Open tries each configured domain in turn. It returns StateReady once the
// review list is on screen. Any failed login ends the attempt without trying
// other domains.
func (n *ReviewNavigator) Open(ctx context.Context, asin string) (State, LoginOutcome, error) {
	domains := n.cfg.Domains
	if len(domains) == 0 {
		domains = []string{n.cfg.PrimaryDomain()}
	}

	var lastErr error
	for _, domain := range domains {
		state, outcome, err := n.openDomain(ctx, domain, asin)
		if state == StateReady {
			return state, outcome, nil
		}
		if (state == StateFailed && outcome != LoginNotAttempted) || errors.Is(err, ErrNoCredentials) {
			return StateFailed, outcome, err
		}
		if ctx.Err() != nil {
			return StateFailed, outcome, fmt.Errorf("%w: %w", ErrReviewsUnavailable, ctx.Err())
		}
		slog.WarnContext(ctx, "reviews not reachable on domain", "domain", domain, "asin", asin, "err", err)
		lastErr = err
	}
	return StateFailed, LoginNotAttempted, fmt.Errorf("%w for %s on all domains: %w", ErrReviewsUnavailable, asin, lastErr)
}

func (n *ReviewNavigator) openOn(ctx context.Context, domain, asin string) (State, LoginOutcome, error) {
	state := StateNavigating
	link := ReviewsURL(domain, asin)
	slog.InfoContext(ctx, "opening reviews", "url", link, "state", state)

	load := func(ctx context.Context) error {
		if err := chromedp.Run(ctx, chromedp.Navigate(link)); err != nil {
			return fmt.Errorf("navigate %s: %w", link, err)
		}
		observability.PagesVisited.WithLabelValues("reviews").Inc()
		return utils.Pause(ctx, n.cfg.PageDelay)
	}
	listOrLogin := func(ctx context.Context) (int, error) {
		slog.DebugContext(ctx, "waiting for reviews or sign-in", "state", StateAwaitingPage)
		return WaitAny(ctx, n.cfg.WaitTimeout, ReviewListSelector, LoginEmailSelector)
	}
	idx, err := landPage(ctx, n.cfg.PageTimeout, n.challenges, load, listOrLogin)
	if err != nil {
		return StateFailed, LoginNotAttempted, err
	}
	if idx == 0 {
		slog.InfoContext(ctx, "review list found", "asin", asin, "state", StateReady)
		return StateReady, LoginNotAttempted, nil
	}

	state = StateLoginRequired
	slog.InfoContext(ctx, "login required to view reviews", "asin", asin, "state", state)
	outcome, err := n.login(ctx)
	observability.LoginOutcomes.WithLabelValues(outcome.String()).Inc()
	if err != nil {
		return StateFailed, outcome, err
	}
	return StateReady, outcome, nil
}

func (n *ReviewNavigator) login(ctx context.Context) (LoginOutcome, error) {
	if !n.cfg.HasCredentials() {
		return LoginNotAttempted, fmt.Errorf("%w: %w", ErrLoginFailed, ErrNoCredentials)
	}

	loginCtx, cancel := context.WithTimeout(ctx, n.cfg.PageTimeout)
	defer cancel()

	if err := TypeHuman(loginCtx, LoginEmailSelector, n.cfg.Email, n.cfg.KeystrokeDelay); err != nil {
		return LoginUnknown, fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}
	if err := chromedp.Run(loginCtx, chromedp.Click(LoginContinueSelector, chromedp.ByQuery)); err != nil {
		return LoginUnknown, fmt.Errorf("%w: continue: %w", ErrLoginFailed, err)
	}
	if err := TypeHuman(loginCtx, LoginPasswordSelector, n.cfg.Password, n.cfg.KeystrokeDelay); err != nil {
		return LoginUnknown, fmt.Errorf("%w: %w", ErrLoginFailed, err)
	}
	if err := chromedp.Run(loginCtx, chromedp.Click(LoginSubmitSelector, chromedp.ByQuery)); err != nil {
		return LoginUnknown, fmt.Errorf("%w: submit: %w", ErrLoginFailed, err)
	}

	selectors := make([]string, len(loginMarkers))
	for i, m := range loginMarkers {
		selectors[i] = m.selector
	}
	outcome := LoginUnknown
	if _, err := WaitAny(loginCtx, n.cfg.LoginTimeout, selectors...); err == nil {
		if doc, err := Snapshot(loginCtx); err == nil {
			outcome = ClassifyLoginOutcome(doc)
		}
	}

	if outcome != LoginSuccess {
		slog.ErrorContext(ctx, "login failed", "outcome", outcome)
		return outcome, fmt.Errorf("%w: %s", ErrLoginFailed, outcome)
	}
	slog.InfoContext(ctx, "login successful")
	return outcome, nil
}
