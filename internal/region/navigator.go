// Package region applies region-switching strategies: URL templating for
// url-param products and live UI interaction for dropdown/button products.
package region

import (
	"fmt"
	"log/slog"

	"github.com/playwright-community/playwright-go"

	"github.com/priceduck/pricewatch/internal/models"
	"github.com/priceduck/pricewatch/internal/scrape"
)

const (
	menuSettleMs  = 1000
	priceSettleMs = 3000
	optionClickMs = 3000
)

// Navigator drives an already-live scripted session to a region-specific
// view of the page. URL templating never goes through here; the fetcher
// loads the templated URL directly.
type Navigator struct {
	logger *slog.Logger
}

func NewNavigator(logger *slog.Logger) *Navigator {
	return &Navigator{logger: logger.With("component", "region_navigator")}
}

// ApplyRegion opens the region switcher and activates the option matching
// regionCode. When several elements match the switch selector only the first
// is used; that ambiguity is a documented limitation, not an error.
func (n *Navigator) ApplyRegion(page playwright.Page, rc *models.RegionConfig, regionCode string) error {
	if rc == nil || rc.SwitchType == models.SwitchNone || rc.SwitchType == "" {
		return nil
	}
	if rc.SwitchType != models.SwitchDropdown && rc.SwitchType != models.SwitchButton {
		return scrape.Errorf(scrape.ReasonSwitcherNotFound, "switch type %q cannot be driven through the page", rc.SwitchType)
	}

	switcher := page.Locator(rc.SwitchSelector).First()
	count, err := switcher.Count()
	if err != nil {
		return scrape.Wrap(scrape.ReasonSwitcherNotFound, err)
	}
	if count == 0 {
		return scrape.Errorf(scrape.ReasonSwitcherNotFound, "switch selector %q matched no element", rc.SwitchSelector)
	}

	if err := switcher.Click(); err != nil {
		return scrape.Wrap(scrape.ReasonSwitcherNotFound, err)
	}
	page.WaitForTimeout(menuSettleMs)

	// Options are matched by visible text first, then by the data attributes
	// region switchers commonly carry.
	optionSelectors := []string{
		fmt.Sprintf("text=%s", regionCode),
		fmt.Sprintf("[data-region='%s'], [data-value='%s'], [data-country='%s']", regionCode, regionCode, regionCode),
	}

	for _, selector := range optionSelectors {
		option := page.Locator(selector).First()
		optCount, err := option.Count()
		if err != nil || optCount == 0 {
			continue
		}

		if err := option.Click(playwright.LocatorClickOptions{Timeout: playwright.Float(optionClickMs)}); err != nil {
			n.logger.Debug("region option click failed", "selector", selector, "region", regionCode, "error", err)
			continue
		}

		page.WaitForTimeout(priceSettleMs)
		n.logger.Debug("region applied", "region", regionCode, "selector", selector)
		return nil
	}

	return scrape.Errorf(scrape.ReasonRegionOptionNotFound, "no option matching region %q after opening switcher", regionCode)
}
