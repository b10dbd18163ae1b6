package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RenderingMode says how a pricing page gets its price content.
type RenderingMode string

const (
	// RenderingStatic means the price is present in the initial HTTP response.
	RenderingStatic RenderingMode = "static"
	// RenderingScripted means the page needs a real browser to render.
	RenderingScripted RenderingMode = "scripted"
)

// SwitchType is the mechanism used to show region-specific pricing.
type SwitchType string

const (
	SwitchNone     SwitchType = "none"
	SwitchDropdown SwitchType = "dropdown"
	SwitchButton   SwitchType = "button"
	SwitchURLParam SwitchType = "url-param"
)

// Region placeholder tokens accepted in URL patterns. Both forms appear in
// catalogs in the wild; every occurrence is substituted.
const (
	RegionPlaceholder    = "{{REGION}}"
	RegionPlaceholderAlt = "{REGION}"
)

// FieldSelectors maps the extracted fields to CSS selectors. Price is the
// only mandatory one; a product without it is never scraped.
type FieldSelectors struct {
	Price    string `json:"price"`
	Currency string `json:"currency,omitempty"`
	Period   string `json:"period,omitempty"`
	PlanName string `json:"plan_name,omitempty"`
}

// RegionConfig describes how to reach region-specific views of a page.
type RegionConfig struct {
	SwitchType       SwitchType `json:"switch_type"`
	SwitchSelector   string     `json:"switch_selector,omitempty"`
	URLPattern       string     `json:"url_pattern,omitempty"`
	AvailableRegions []string   `json:"available_regions,omitempty"`
}

// HasRegions reports whether region scraping is configured at all.
func (rc *RegionConfig) HasRegions() bool {
	return rc != nil && rc.SwitchType != "" && rc.SwitchType != SwitchNone && len(rc.AvailableRegions) > 0
}

// ProductSpec is one scrape target from the external catalog. It is a
// read-only view: fields owned by other processes are never round-tripped
// through the engine.
type ProductSpec struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	URL           string         `json:"url"`
	RenderingMode RenderingMode  `json:"rendering_mode"`
	Selectors     FieldSelectors `json:"selectors"`
	RegionConfig  *RegionConfig  `json:"region_config,omitempty"`
}

// Scrapable reports whether the product carries the mandatory price selector.
func (p *ProductSpec) Scrapable() bool {
	return strings.TrimSpace(p.Selectors.Price) != ""
}

// Validate enforces the configuration invariants at load time so that broken
// catalog entries surface before any fetch is attempted.
func (p *ProductSpec) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("product %q: missing id", p.Name)
	}
	if p.URL == "" {
		return fmt.Errorf("product %s: missing url", p.ID)
	}
	switch p.RenderingMode {
	case RenderingStatic, RenderingScripted:
	case "":
		return fmt.Errorf("product %s: missing rendering mode", p.ID)
	default:
		return fmt.Errorf("product %s: unknown rendering mode %q", p.ID, p.RenderingMode)
	}

	rc := p.RegionConfig
	if rc == nil {
		return nil
	}
	switch rc.SwitchType {
	case "", SwitchNone:
		return nil
	case SwitchDropdown, SwitchButton:
		if rc.SwitchSelector == "" {
			return fmt.Errorf("product %s: %s region switch requires switch_selector", p.ID, rc.SwitchType)
		}
	case SwitchURLParam:
		if !strings.Contains(rc.URLPattern, RegionPlaceholder) && !strings.Contains(rc.URLPattern, RegionPlaceholderAlt) {
			return fmt.Errorf("product %s: url-param region switch requires a region placeholder in url_pattern", p.ID)
		}
	default:
		return fmt.Errorf("product %s: unknown switch type %q", p.ID, rc.SwitchType)
	}
	if len(rc.AvailableRegions) == 0 {
		return fmt.Errorf("product %s: region switch %s configured with no regions", p.ID, rc.SwitchType)
	}
	return nil
}

// RegionDescriptor is a canonical region from the catalog.
type RegionDescriptor struct {
	Code        string   `json:"code"`
	DisplayName string   `json:"display_name"`
	Aliases     []string `json:"aliases,omitempty"`
}

// FetchResult is the rendered document for one attempt. It lives only for
// the duration of the attempt and is never persisted.
type FetchResult struct {
	Content           string
	FinalURL          string
	RenderingModeUsed RenderingMode
	ChallengeResolved bool
	Elapsed           time.Duration
}

// RawFieldCapture holds the raw selector text for one attempt. Empty string
// means the field was absent; an absent price fails the attempt, the rest
// degrade to null on the emitted result.
type RawFieldCapture struct {
	Price    string
	Currency string
	Period   string
	PlanName string
}

// Period is the normalized billing period of an observed price.
type Period string

const (
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
	PeriodOneTime Period = "one-time"
	PeriodUnknown Period = "unknown"
)

// ScrapeResult is the engine's output of record, one per (product, region)
// attempt. Immutable once emitted; ownership transfers to the sink.
type ScrapeResult struct {
	ID           uuid.UUID `json:"id"`
	ProductID    string    `json:"product_id"`
	ProductName  string    `json:"product_name"`
	RegionCode   string    `json:"region_code,omitempty"`
	Amount       *float64  `json:"amount,omitempty"`
	CurrencyCode string    `json:"currency_code,omitempty"`
	Period       Period    `json:"period"`
	PlanName     string    `json:"plan_name,omitempty"`
	Succeeded    bool      `json:"succeeded"`
	SourceURL    string    `json:"source_url"`
	Notes        string    `json:"notes,omitempty"`
	ScrapedAt    time.Time `json:"scraped_at"`
}

// NewScrapeResult stamps identity and time for an attempt's result.
func NewScrapeResult(productID, productName, regionCode, sourceURL string) *ScrapeResult {
	return &ScrapeResult{
		ID:          uuid.New(),
		ProductID:   productID,
		ProductName: productName,
		RegionCode:  regionCode,
		Period:      PeriodUnknown,
		SourceURL:   sourceURL,
		ScrapedAt:   time.Now().UTC(),
	}
}
