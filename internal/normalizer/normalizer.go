// Package normalizer turns raw selector text into typed, currency-coded,
// period-coded price observations. Normalization is a pure function: the same
// capture always yields the same result.
package normalizer

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/priceduck/pricewatch/internal/models"
	"github.com/priceduck/pricewatch/internal/scrape"
)

// symbolTable maps currency symbols to ISO codes. Multi-character symbols
// are listed first so "R$" wins over "$". Matching is case-sensitive.
var symbolTable = []struct {
	symbol string
	code   string
}{
	{"R$", "BRL"},
	{"$", "USD"},
	{"€", "EUR"},
	{"£", "GBP"},
	{"₹", "INR"},
	{"¥", "JPY"},
	{"₩", "KRW"},
	{"₺", "TRY"},
	{"zł", "PLN"},
}

var isoCodePattern = regexp.MustCompile(`\b(USD|EUR|GBP|INR|BRL|JPY|CAD|AUD|CHF|KRW|MXN|SEK|NOK|DKK|PLN|ZAR|AED|SAR|TRY|SGD|HKD|NZD)\b`)

var digitPattern = regexp.MustCompile(`[0-9]`)

// periodSynonyms maps lower-cased period markers to billing periods. Longer
// markers are matched by substring against the whole lower-cased text.
var periodSynonyms = []struct {
	marker string
	period models.Period
}{
	{"per year", models.PeriodYearly},
	{"per annum", models.PeriodYearly},
	{"annually", models.PeriodYearly},
	{"annual", models.PeriodYearly},
	{"yearly", models.PeriodYearly},
	{"/year", models.PeriodYearly},
	{"/yr", models.PeriodYearly},
	{"year", models.PeriodYearly},
	{"per month", models.PeriodMonthly},
	{"monthly", models.PeriodMonthly},
	{"/month", models.PeriodMonthly},
	{"/mo", models.PeriodMonthly},
	{"month", models.PeriodMonthly},
	{"one-time", models.PeriodOneTime},
	{"one time", models.PeriodOneTime},
	{"lifetime", models.PeriodOneTime},
	{"once", models.PeriodOneTime},
}

// Result is a normalized price observation. CurrencyCode is empty when the
// currency could not be resolved; that is a soft failure carried in Notes.
type Result struct {
	Amount       float64
	CurrencyCode string
	Period       models.Period
	Notes        []string
}

// Normalizer parses raw field captures. Stateless and safe for concurrent use.
type Normalizer struct{}

func New() *Normalizer {
	return &Normalizer{}
}

// Normalize parses the capture into a typed observation. A price text with no
// digits is a hard ParseError. periodFromPrice enables the composite-text
// fallback (suffixes like "/mo" inside the price node) and should only be set
// when the product has no explicit period selector configured.
func (n *Normalizer) Normalize(raw models.RawFieldCapture, periodFromPrice bool) (*Result, error) {
	amount, err := ParseAmount(raw.Price)
	if err != nil {
		return nil, err
	}

	res := &Result{Amount: amount, Period: models.PeriodUnknown}

	res.CurrencyCode = ResolveCurrency(raw.Currency)
	if res.CurrencyCode == "" {
		res.CurrencyCode = ResolveCurrency(raw.Price)
	}
	if res.CurrencyCode == "" {
		res.Notes = append(res.Notes, string(scrape.ReasonCurrencyUnresolved))
	}

	if raw.Period != "" {
		res.Period = ClassifyPeriod(raw.Period)
	} else if periodFromPrice {
		res.Period = ClassifyPeriod(raw.Price)
	}

	return res, nil
}

// ParseAmount strips everything but digits and separators, then picks the
// decimal separator by locale heuristic: with both "." and "," present the
// right-most one is decimal; a lone "," followed by exactly two digits is
// decimal, otherwise it is a thousands separator.
func ParseAmount(text string) (float64, error) {
	if !digitPattern.MatchString(text) {
		return 0, scrape.Errorf(scrape.ReasonParseError, "no digits in price text %q", text)
	}

	var b strings.Builder
	for _, r := range text {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	cleaned := strings.Trim(b.String(), ".,")

	lastDot := strings.LastIndex(cleaned, ".")
	lastComma := strings.LastIndex(cleaned, ",")

	var normalized string
	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastDot > lastComma {
			normalized = rebuild(cleaned, lastDot)
		} else {
			normalized = rebuild(cleaned, lastComma)
		}
	case lastComma >= 0:
		if len(cleaned)-lastComma-1 == 2 {
			normalized = rebuild(cleaned, lastComma)
		} else {
			normalized = rebuild(cleaned, -1)
		}
	case lastDot >= 0:
		normalized = rebuild(cleaned, lastDot)
	default:
		normalized = cleaned
	}

	amount, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, scrape.Errorf(scrape.ReasonParseError, "unparseable price text %q", text)
	}
	return amount, nil
}

// rebuild drops every separator except the one at decimalIdx, which becomes
// a dot. decimalIdx < 0 drops all separators.
func rebuild(s string, decimalIdx int) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case i == decimalIdx:
			b.WriteRune('.')
		}
	}
	return b.String()
}

// ResolveCurrency maps text to a 3-letter currency code via the symbol table
// or an explicit ISO code substring. Empty result means unresolved.
func ResolveCurrency(text string) string {
	if text == "" {
		return ""
	}
	if m := isoCodePattern.FindString(text); m != "" {
		return m
	}
	for _, entry := range symbolTable {
		if strings.Contains(text, entry.symbol) {
			return entry.code
		}
	}
	return ""
}

// ClassifyPeriod pattern-matches period text against the synonym table.
// Unmatched text maps to Unknown, which is not a failure.
func ClassifyPeriod(text string) models.Period {
	lower := strings.ToLower(text)
	for _, entry := range periodSynonyms {
		if strings.Contains(lower, entry.marker) {
			return entry.period
		}
	}
	return models.PeriodUnknown
}
