package fetcher

import (
	"context"
	"log/slog"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/priceduck/pricewatch/internal/browser"
	"github.com/priceduck/pricewatch/internal/models"
	"github.com/priceduck/pricewatch/internal/region"
	"github.com/priceduck/pricewatch/internal/scrape"
)

const readinessPollInterval = 500 * time.Millisecond

// ScriptedFetcher renders pages in a real browser. Each fetch owns exactly
// one browser context and tears it down on completion, failure, or
// cancellation; sessions are never reused across attempts.
type ScriptedFetcher struct {
	browser   *browser.Browser
	challenge *browser.ChallengeResolver
	navigator *region.Navigator
	logger    *slog.Logger
}

func NewScriptedFetcher(b *browser.Browser, challenge *browser.ChallengeResolver, navigator *region.Navigator, logger *slog.Logger) *ScriptedFetcher {
	return &ScriptedFetcher{
		browser:   b,
		challenge: challenge,
		navigator: navigator,
		logger:    logger.With("component", "scripted_fetcher"),
	}
}

func (f *ScriptedFetcher) Fetch(ctx context.Context, req Request) (*models.FetchResult, error) {
	start := time.Now()

	bctx, err := f.browser.NewContext(req.Proxy)
	if err != nil {
		return nil, scrape.Wrap(scrape.ReasonNetworkError, err)
	}
	defer bctx.Close()

	// Close the context as soon as the attempt is cancelled so a timed-out
	// session is torn down rather than leaked.
	watchdogDone := make(chan struct{})
	defer close(watchdogDone)
	go func() {
		select {
		case <-ctx.Done():
			bctx.Close()
		case <-watchdogDone:
		}
	}()

	page, err := bctx.NewPage()
	if err != nil {
		return nil, scrape.Wrap(scrape.ReasonNetworkError, err)
	}

	_, err = page.Goto(req.URL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(req.renderTimeout().Milliseconds())),
	})
	if err != nil {
		return nil, scrape.Wrap(scrape.ReasonNetworkError, err)
	}

	content, err := page.Content()
	if err != nil {
		return nil, scrape.Wrap(scrape.ReasonNetworkError, err)
	}
	title, _ := page.Title()

	if browser.ContainsChallenge(content, title) {
		f.logger.Info("challenge detected", "url", req.URL)
		if err := f.challenge.Resolve(ctx, page, req.challengeTimeout()); err != nil {
			return nil, err
		}
		f.logger.Info("challenge resolved", "url", req.URL, "elapsed", time.Since(start))
	}

	if req.needsUISwitch() {
		if err := f.navigator.ApplyRegion(page, req.RegionConfig, req.RegionCode); err != nil {
			return nil, err
		}
	}

	ready := f.waitForContent(ctx, page, req.ReadySelector, start.Add(req.renderTimeout()))

	content, err = page.Content()
	if err != nil {
		return nil, scrape.Wrap(scrape.ReasonNetworkError, err)
	}

	result := &models.FetchResult{
		Content:           content,
		FinalURL:          page.URL(),
		RenderingModeUsed: models.RenderingScripted,
		ChallengeResolved: ready,
		Elapsed:           time.Since(start),
	}

	if !ready {
		// Partial content still attached: a degraded capture is sometimes
		// usable downstream.
		return result, scrape.Errorf(scrape.ReasonRenderTimeout, "target content %q not present after %s", req.ReadySelector, req.renderTimeout())
	}

	return result, nil
}

// waitForContent polls for the price-bearing DOM region instead of sleeping
// a fixed interval. Returns false when the deadline passes first.
func (f *ScriptedFetcher) waitForContent(ctx context.Context, page playwright.Page, selector string, deadline time.Time) bool {
	if selector == "" {
		return true
	}

	for {
		count, err := page.Locator(selector).Count()
		if err == nil && count > 0 {
			return true
		}

		if time.Now().After(deadline) {
			return false
		}

		select {
		case <-ctx.Done():
			return false
		case <-time.After(readinessPollInterval):
		}
	}
}
