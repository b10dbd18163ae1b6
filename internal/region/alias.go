package region

import (
	"strings"

	"github.com/priceduck/pricewatch/internal/models"
)

// Vendor strings whose first-two-letters heuristic would resolve to the
// wrong country, pinned to their canonical codes instead.
var canonicalOverrides = map[string]string{
	"uk":      "GB",
	"africa":  "XF", // regional aggregate, not Afghanistan
	"la":      "XL", // Latin America, not Laos
	"cis_en":  "CIS",
	"cis_ru":  "CIS",
	"mena_ar": "MENA",
	"mena_en": "MENA",
}

// AliasResolver maps historical and vendor-specific region strings to
// canonical region codes. Used when reconciling legacy data, not during
// live scraping.
type AliasResolver struct {
	codes   map[string]string
	aliases map[string]string
}

// NewAliasResolver indexes the region catalog. Codes are unique across the
// catalog and alias strings must not be shared between regions; a duplicate
// alias keeps its first owner.
func NewAliasResolver(regions []models.RegionDescriptor) *AliasResolver {
	r := &AliasResolver{
		codes:   make(map[string]string, len(regions)),
		aliases: make(map[string]string),
	}
	for _, reg := range regions {
		code := strings.ToUpper(strings.TrimSpace(reg.Code))
		if code == "" {
			continue
		}
		r.codes[code] = code
		if _, taken := r.aliases[strings.ToLower(code)]; !taken {
			r.aliases[strings.ToLower(code)] = code
		}
		for _, alias := range reg.Aliases {
			key := strings.ToLower(strings.TrimSpace(alias))
			if key == "" {
				continue
			}
			if _, taken := r.aliases[key]; !taken {
				r.aliases[key] = code
			}
		}
	}
	return r
}

// Resolve maps a region value to its canonical code. Accepts canonical codes
// ("US", "MENA"), vendor locale codes ("sa_en"), or display aliases
// ("Saudi Arabia - English").
func (r *AliasResolver) Resolve(value string) (string, bool) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return "", false
	}
	lower := strings.ToLower(raw)

	if override, ok := canonicalOverrides[lower]; ok {
		if code, known := r.codes[override]; known {
			return code, true
		}
		return "", false
	}

	if code, ok := r.codes[strings.ToUpper(raw)]; ok {
		return code, true
	}

	if code, ok := r.aliases[lower]; ok {
		return code, true
	}

	// Vendor locale codes like "sa_en" collapse to their country prefix.
	if idx := strings.Index(lower, "_"); idx >= 2 {
		if code, ok := r.codes[strings.ToUpper(lower[:2])]; ok {
			return code, true
		}
	}

	return "", false
}
