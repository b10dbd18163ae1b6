// Package orchestrator drives a scrape run: it turns the product catalog into
// attempt tasks, fans them out over a bounded worker pool, and aggregates the
// outcomes. One run makes exactly one attempt per (product, region) pair;
// failed attempts are recorded and emitted, never retried within the run.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/priceduck/pricewatch/internal/capture"
	"github.com/priceduck/pricewatch/internal/extractor"
	"github.com/priceduck/pricewatch/internal/fetcher"
	"github.com/priceduck/pricewatch/internal/models"
	"github.com/priceduck/pricewatch/internal/normalizer"
	"github.com/priceduck/pricewatch/internal/proxy"
	"github.com/priceduck/pricewatch/internal/queue"
	"github.com/priceduck/pricewatch/internal/ratelimit"
	"github.com/priceduck/pricewatch/internal/region"
	"github.com/priceduck/pricewatch/internal/scrape"
	"github.com/priceduck/pricewatch/internal/sink"
)

// DefaultURLRewrites redirects hosts that moved their pricing page. Keys are
// bare hostnames, values the replacement URL.
var DefaultURLRewrites = map[string]string{
	"chatgpt.com": "https://openai.com/chatgpt/pricing",
}

// Options tune one run.
type Options struct {
	// Concurrency is the worker count. At the default of 1 attempts run
	// strictly sequentially.
	Concurrency int

	// ProductID and RegionCode restrict the run to matching attempts.
	ProductID  string
	RegionCode string

	ChallengeTimeout time.Duration
	RenderTimeout    time.Duration

	// URLRewrites overrides DefaultURLRewrites when non-nil.
	URLRewrites map[string]string
}

func (o Options) concurrency() int {
	if o.Concurrency > 0 {
		return o.Concurrency
	}
	return 1
}

func (o Options) rewrites() map[string]string {
	if o.URLRewrites != nil {
		return o.URLRewrites
	}
	return DefaultURLRewrites
}

// Orchestrator wires the attempt pipeline. Build one per run.
type Orchestrator struct {
	fetcher    fetcher.Fetcher
	extractor  *extractor.Extractor
	normalizer *normalizer.Normalizer
	sink       sink.Sink
	limiter    ratelimit.Limiter
	pool       *proxy.Pool
	captures   *capture.Store
	logger     *slog.Logger
	opts       Options
	summary    *Summary
}

func New(f fetcher.Fetcher, s sink.Sink, limiter ratelimit.Limiter, logger *slog.Logger, opts Options) *Orchestrator {
	return &Orchestrator{
		fetcher:    f,
		extractor:  extractor.New(),
		normalizer: normalizer.New(),
		sink:       s,
		limiter:    limiter,
		logger:     logger.With("component", "orchestrator"),
		opts:       opts,
		summary:    newSummary(),
	}
}

// WithProxyPool routes attempts through geo-targeted egress identities.
func (o *Orchestrator) WithProxyPool(pool *proxy.Pool) *Orchestrator {
	o.pool = pool
	return o
}

// WithCaptureStore persists every fetched document for offline inspection.
func (o *Orchestrator) WithCaptureStore(store *capture.Store) *Orchestrator {
	o.captures = store
	return o
}

// Summary exposes live run counters, for the status API.
func (o *Orchestrator) Summary() *Summary {
	return o.summary
}

// Run executes every scheduled attempt and returns the final summary. The
// returned error reflects run-level problems only; individual attempt
// failures land in the summary.
func (o *Orchestrator) Run(ctx context.Context, products []models.ProductSpec) (Snapshot, error) {
	tasks := o.buildTasks(products)
	if len(tasks) == 0 {
		o.summary.finish()
		return o.summary.Snapshot(), fmt.Errorf("no scrapable attempts scheduled")
	}

	q := queue.NewInMemoryQueue(len(tasks))
	for _, task := range tasks {
		q.Push(task)
	}
	q.Close()

	workers := o.opts.concurrency()
	o.logger.Info("run started", "attempts", len(tasks), "workers", workers)

	done := make(chan struct{})
	for i := 0; i < workers; i++ {
		go func(id int) {
			defer func() { done <- struct{}{} }()
			o.worker(ctx, id, q)
		}(i)
	}
	for i := 0; i < workers; i++ {
		<-done
	}

	o.summary.finish()
	snap := o.summary.Snapshot()
	o.logger.Info("run finished",
		"attempts", snap.Attempts,
		"succeeded", snap.Succeeded,
		"failed", snap.Failed,
	)
	return snap, ctx.Err()
}

// buildTasks expands the catalog into attempt tasks in catalog order:
// products as listed, regions in each product's configured order. Products
// without a price selector are skipped up front.
func (o *Orchestrator) buildTasks(products []models.ProductSpec) []queue.Task {
	var tasks []queue.Task
	for _, product := range products {
		if o.opts.ProductID != "" && product.ID != o.opts.ProductID {
			continue
		}
		if !product.Scrapable() {
			o.logger.Warn("skipping product without price selector", "product", product.ID, "name", product.Name)
			continue
		}

		baseURL := o.rewriteURL(product.URL)

		if !product.RegionConfig.HasRegions() {
			if o.opts.RegionCode != "" {
				continue
			}
			tasks = append(tasks, queue.Task{
				ID:      product.ID,
				Product: product,
				URL:     baseURL,
			})
			continue
		}

		for _, code := range product.RegionConfig.AvailableRegions {
			if o.opts.RegionCode != "" && !strings.EqualFold(code, o.opts.RegionCode) {
				continue
			}
			taskURL := baseURL
			if product.RegionConfig.SwitchType == models.SwitchURLParam {
				taskURL = region.BuildRegionURL(baseURL, product.RegionConfig.URLPattern, code)
			}
			tasks = append(tasks, queue.Task{
				ID:         product.ID + ":" + code,
				Product:    product,
				RegionCode: code,
				URL:        taskURL,
			})
		}
	}
	return tasks
}

// rewriteURL swaps hosts that have moved. Unparseable URLs pass through and
// fail later in the fetch stage with a proper reason code.
func (o *Orchestrator) rewriteURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if replacement, ok := o.opts.rewrites()[strings.ToLower(u.Hostname())]; ok {
		o.logger.Debug("rewrote moved pricing URL", "from", raw, "to", replacement)
		return replacement
	}
	return raw
}

func (o *Orchestrator) worker(ctx context.Context, id int, q queue.Queue) {
	for {
		task, ok := q.Pop(ctx)
		if !ok {
			return
		}

		o.attempt(ctx, task)

		// Delay applies after every attempt, success or failure, so the
		// outbound request rate stays bounded.
		if err := o.limiter.Wait(ctx); err != nil {
			return
		}
	}
}

// attempt runs the fetch/extract/normalize pipeline for one task and emits
// its result. Every attempt produces exactly one emitted ScrapeResult.
func (o *Orchestrator) attempt(ctx context.Context, task queue.Task) {
	log := o.logger.With("product", task.Product.ID, "region", task.RegionCode)
	result := models.NewScrapeResult(task.Product.ID, task.Product.Name, task.RegionCode, task.URL)

	var egress *proxy.Endpoint
	if o.pool.Enabled() {
		endpoint, release, err := o.pool.Checkout(ctx, task.RegionCode)
		if err != nil {
			o.fail(ctx, log, result, scrape.Wrap(scrape.ReasonNetworkError, fmt.Errorf("egress checkout: %w", err)))
			return
		}
		defer release()
		egress = endpoint
	}

	attemptCtx, cancel := context.WithTimeout(ctx, o.attemptTimeout())
	defer cancel()

	req := fetcher.Request{
		URL:              task.URL,
		Mode:             task.Product.RenderingMode,
		Proxy:            egress,
		RegionConfig:     task.Product.RegionConfig,
		RegionCode:       task.RegionCode,
		ReadySelector:    task.Product.Selectors.Price,
		ChallengeTimeout: o.opts.ChallengeTimeout,
		RenderTimeout:    o.opts.RenderTimeout,
	}

	fetched, err := o.fetcher.Fetch(attemptCtx, req)
	degraded := false
	if err != nil {
		// A render timeout can still deliver partial content worth trying;
		// anything else ends the attempt here.
		if scrape.ReasonOf(err) != scrape.ReasonRenderTimeout || fetched == nil || fetched.Content == "" {
			o.fail(ctx, log, result, err)
			return
		}
		degraded = true
	}

	result.SourceURL = fetched.FinalURL
	o.saveCapture(task, fetched)

	raw, err := o.extractor.Extract(fetched.Content, task.Product.Selectors)
	if err != nil {
		if degraded {
			err = scrape.Wrap(scrape.ReasonRenderTimeout, err)
		}
		o.fail(ctx, log, result, err)
		return
	}

	norm, err := o.normalizer.Normalize(*raw, task.Product.Selectors.Period == "")
	if err != nil {
		o.fail(ctx, log, result, err)
		return
	}

	result.Amount = &norm.Amount
	result.CurrencyCode = norm.CurrencyCode
	result.Period = norm.Period
	result.PlanName = raw.PlanName
	result.Succeeded = true

	notes := norm.Notes
	if degraded {
		notes = append([]string{string(scrape.ReasonRenderTimeout)}, notes...)
	}
	result.Notes = strings.Join(notes, "; ")

	o.summary.recordSuccess()
	o.emit(ctx, log, result)

	log.Info("attempt succeeded",
		"amount", norm.Amount,
		"currency", norm.CurrencyCode,
		"period", norm.Period,
		"mode", fetched.RenderingModeUsed,
		"elapsed", fetched.Elapsed,
	)
}

func (o *Orchestrator) fail(ctx context.Context, log *slog.Logger, result *models.ScrapeResult, err error) {
	reason := scrape.ReasonOf(err)
	if reason == "" {
		reason = scrape.ReasonNetworkError
	}
	result.Notes = err.Error()

	o.summary.recordFailure(AttemptFailure{
		ProductID:   result.ProductID,
		ProductName: result.ProductName,
		RegionCode:  result.RegionCode,
		Reason:      reason,
		Notes:       result.Notes,
	})
	o.emit(ctx, log, result)

	log.Warn("attempt failed", "reason", reason, "error", err)
}

func (o *Orchestrator) emit(ctx context.Context, log *slog.Logger, result *models.ScrapeResult) {
	if err := o.sink.Emit(ctx, result); err != nil {
		log.Error("failed to emit result", "error", err)
	}
}

func (o *Orchestrator) saveCapture(task queue.Task, fetched *models.FetchResult) {
	if o.captures == nil {
		return
	}
	if err := o.captures.Save(task.Product.ID, task.RegionCode, fetched.FinalURL, fetched.Content); err != nil {
		o.logger.Warn("failed to save capture", "product", task.Product.ID, "error", err)
	}
}

func (o *Orchestrator) attemptTimeout() time.Duration {
	challenge := o.opts.ChallengeTimeout
	if challenge <= 0 {
		challenge = fetcher.DefaultChallengeTimeout
	}
	render := o.opts.RenderTimeout
	if render <= 0 {
		render = fetcher.DefaultRenderTimeout
	}
	return challenge + render + 30*time.Second
}
