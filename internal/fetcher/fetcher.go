// Package fetcher retrieves rendered HTML for pricing pages. Static pages go
// through a plain HTTP client; scripted pages go through a real browser
// context with challenge resolution. Region UI switching forces the scripted
// path regardless of the product's declared rendering mode.
package fetcher

import (
	"context"
	"time"

	"github.com/priceduck/pricewatch/internal/models"
	"github.com/priceduck/pricewatch/internal/proxy"
)

const (
	DefaultRenderTimeout    = 60 * time.Second
	DefaultChallengeTimeout = 30 * time.Second
)

// Request describes one page fetch for one (product, region) attempt.
type Request struct {
	URL  string
	Mode models.RenderingMode

	// Proxy is the egress identity for this attempt, nil for direct egress.
	Proxy *proxy.Endpoint

	// RegionConfig and RegionCode drive UI region switching on the live
	// page. Left zero for the default view and for url-param regions, whose
	// templated URL is already in URL.
	RegionConfig *models.RegionConfig
	RegionCode   string

	// ReadySelector is the price-bearing DOM region polled for readiness
	// after render; empty skips the readiness check.
	ReadySelector string

	ChallengeTimeout time.Duration
	RenderTimeout    time.Duration
}

func (r *Request) renderTimeout() time.Duration {
	if r.RenderTimeout > 0 {
		return r.RenderTimeout
	}
	return DefaultRenderTimeout
}

func (r *Request) challengeTimeout() time.Duration {
	if r.ChallengeTimeout > 0 {
		return r.ChallengeTimeout
	}
	return DefaultChallengeTimeout
}

// needsUISwitch reports whether the request must interact with the page to
// reach its region view.
func (r *Request) needsUISwitch() bool {
	if r.RegionCode == "" || r.RegionConfig == nil {
		return false
	}
	return r.RegionConfig.SwitchType == models.SwitchDropdown || r.RegionConfig.SwitchType == models.SwitchButton
}

// Fetcher retrieves the rendered document for a request. A RenderTimeout
// error may still carry a partial FetchResult; every other error returns a
// nil result.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) (*models.FetchResult, error)
}

// PageFetcher routes requests to the static or scripted path.
type PageFetcher struct {
	static   Fetcher
	scripted Fetcher
}

func NewPageFetcher(static, scripted Fetcher) *PageFetcher {
	return &PageFetcher{static: static, scripted: scripted}
}

func (p *PageFetcher) Fetch(ctx context.Context, req Request) (*models.FetchResult, error) {
	if req.Mode == models.RenderingScripted || req.needsUISwitch() {
		return p.scripted.Fetch(ctx, req)
	}
	return p.static.Fetch(ctx, req)
}
