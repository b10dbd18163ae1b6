package region

import (
	"strings"

	"github.com/priceduck/pricewatch/internal/models"
)

// BuildRegionURL substitutes the region code into a url-param pattern and
// resolves the result against the product's base URL. Every occurrence of
// either placeholder form is replaced. Patterns may be a full URL, an
// absolute path, or a bare query fragment ("?country={{REGION}}").
func BuildRegionURL(baseURL, pattern, regionCode string) string {
	url := strings.ReplaceAll(pattern, models.RegionPlaceholder, regionCode)
	url = strings.ReplaceAll(url, models.RegionPlaceholderAlt, regionCode)

	switch {
	case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
		return url
	case strings.HasPrefix(url, "?"), strings.HasPrefix(url, "&"):
		sep := "?"
		if strings.Contains(baseURL, "?") {
			sep = "&"
		}
		return baseURL + sep + url[1:]
	case strings.HasPrefix(url, "/"):
		return strings.TrimRight(baseURL, "/") + url
	default:
		return strings.TrimRight(baseURL, "/") + "/" + url
	}
}
