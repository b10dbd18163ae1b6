package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validProduct() ProductSpec {
	return ProductSpec{
		ID:            "p1",
		Name:          "Plus",
		URL:           "https://example.com/pricing",
		RenderingMode: RenderingStatic,
		Selectors:     FieldSelectors{Price: "#price"},
	}
}

func TestProductSpecValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ProductSpec)
		wantErr bool
	}{
		{"valid", func(p *ProductSpec) {}, false},
		{"missing id", func(p *ProductSpec) { p.ID = "" }, true},
		{"missing url", func(p *ProductSpec) { p.URL = "" }, true},
		{"missing rendering mode", func(p *ProductSpec) { p.RenderingMode = "" }, true},
		{"unknown rendering mode", func(p *ProductSpec) { p.RenderingMode = "spa" }, true},
		{"no price selector is valid but unscrapable", func(p *ProductSpec) { p.Selectors.Price = "" }, false},
		{"region config none", func(p *ProductSpec) {
			p.RegionConfig = &RegionConfig{SwitchType: SwitchNone}
		}, false},
		{"dropdown without switch selector", func(p *ProductSpec) {
			p.RegionConfig = &RegionConfig{SwitchType: SwitchDropdown, AvailableRegions: []string{"US"}}
		}, true},
		{"dropdown with switch selector", func(p *ProductSpec) {
			p.RegionConfig = &RegionConfig{SwitchType: SwitchDropdown, SwitchSelector: "#switcher", AvailableRegions: []string{"US"}}
		}, false},
		{"url-param without placeholder", func(p *ProductSpec) {
			p.RegionConfig = &RegionConfig{SwitchType: SwitchURLParam, URLPattern: "?country=US", AvailableRegions: []string{"US"}}
		}, true},
		{"url-param with placeholder", func(p *ProductSpec) {
			p.RegionConfig = &RegionConfig{SwitchType: SwitchURLParam, URLPattern: "?country={{REGION}}", AvailableRegions: []string{"US"}}
		}, false},
		{"url-param with alternate placeholder", func(p *ProductSpec) {
			p.RegionConfig = &RegionConfig{SwitchType: SwitchURLParam, URLPattern: "?country={REGION}", AvailableRegions: []string{"US"}}
		}, false},
		{"switch configured with no regions", func(p *ProductSpec) {
			p.RegionConfig = &RegionConfig{SwitchType: SwitchButton, SwitchSelector: "#switcher"}
		}, true},
		{"unknown switch type", func(p *ProductSpec) {
			p.RegionConfig = &RegionConfig{SwitchType: "popup", AvailableRegions: []string{"US"}}
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProduct()
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestScrapable(t *testing.T) {
	p := validProduct()
	assert.True(t, p.Scrapable())

	p.Selectors.Price = "   "
	assert.False(t, p.Scrapable())
}

func TestHasRegions(t *testing.T) {
	var rc *RegionConfig
	assert.False(t, rc.HasRegions())

	assert.False(t, (&RegionConfig{SwitchType: SwitchNone}).HasRegions())
	assert.False(t, (&RegionConfig{SwitchType: SwitchDropdown}).HasRegions())
	assert.True(t, (&RegionConfig{SwitchType: SwitchDropdown, AvailableRegions: []string{"US"}}).HasRegions())
}

func TestNewScrapeResult(t *testing.T) {
	r := NewScrapeResult("p1", "Plus", "US", "https://example.com")

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, PeriodUnknown, r.Period)
	assert.False(t, r.Succeeded)
	assert.Nil(t, r.Amount)
	assert.False(t, r.ScrapedAt.IsZero())
}
