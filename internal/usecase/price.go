package usecase

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/savetide/backend/internal/domain"
)

// CurrencyMode selects price formatting and the preferred decimal separator.
// It is chosen once per deployment.
type CurrencyMode string

const (
	CurrencyUSD CurrencyMode = "USD"
	CurrencyEUR CurrencyMode = "EUR"
)

// DefaultMaxPrice rejects prices above this value as parsing corruption
const DefaultMaxPrice = 100000.0

// ParseCurrencyMode validates a configured currency mode
func ParseCurrencyMode(s string) (CurrencyMode, error) {
	switch mode := CurrencyMode(strings.ToUpper(strings.TrimSpace(s))); mode {
	case CurrencyUSD, CurrencyEUR:
		return mode, nil
	case "":
		return CurrencyUSD, nil
	default:
		return "", fmt.Errorf("unsupported currency mode %q (want USD or EUR)", s)
	}
}

// decimalSeparator is the separator the mode writes before cents
func (m CurrencyMode) decimalSeparator() byte {
	if m == CurrencyEUR {
		return ','
	}
	return '.'
}

// FormatPrice renders a price with two decimals in the given currency mode.
// USD: "$1299.00", EUR: "1299,00 €".
func FormatPrice(price float64, mode CurrencyMode) string {
	s := strconv.FormatFloat(price, 'f', 2, 64)
	if mode == CurrencyEUR {
		return strings.Replace(s, ".", ",", 1) + " €"
	}
	return "$" + s
}

// PriceExtractor pulls a usable price out of a raw offer
type PriceExtractor struct {
	mode     CurrencyMode
	maxPrice float64
}

// NewPriceExtractor creates an extractor; a non-positive maxPrice falls back to DefaultMaxPrice
func NewPriceExtractor(mode CurrencyMode, maxPrice float64) *PriceExtractor {
	if maxPrice <= 0 {
		maxPrice = DefaultMaxPrice
	}
	if mode == "" {
		mode = CurrencyUSD
	}
	return &PriceExtractor{mode: mode, maxPrice: maxPrice}
}

// Extract returns the offer price rounded to cents.
// The numeric extracted_price wins when positive; otherwise the price field is
// used, either as a number or as locale-formatted text.
func (p *PriceExtractor) Extract(offer domain.RawOffer) (float64, error) {
	price, ok := p.candidate(offer)
	if !ok {
		return 0, domain.ErrNoUsablePrice
	}
	return p.validate(price)
}

func (p *PriceExtractor) candidate(offer domain.RawOffer) (float64, bool) {
	if n, ok := offer.Number("extracted_price"); ok && n > 0 {
		return n, true
	}
	if n, ok := offer.Number("price"); ok {
		return n, true
	}
	if text := offer.String("price"); text != "" {
		return p.ParsePriceText(text)
	}
	return 0, false
}

func (p *PriceExtractor) validate(price float64) (float64, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, fmt.Errorf("%w: not a finite number", domain.ErrNoUsablePrice)
	}
	price = math.Round(price*100) / 100
	if price <= 0 {
		return 0, fmt.Errorf("%w: %.2f is not positive", domain.ErrNoUsablePrice, price)
	}
	if price > p.maxPrice {
		return 0, fmt.Errorf("%w: %.2f exceeds %.2f", domain.ErrNoUsablePrice, price, p.maxPrice)
	}
	return price, nil
}

// ParsePriceText parses a locale-formatted price such as "$1,299.99" or "1.299,00 €".
//
// Everything but digits, commas and periods is stripped. When both separators
// occur the last one is the decimal point. A separator repeated several times
// is grouping. A lone separator followed by exactly three digits is ambiguous
// and is read as a decimal point only if it is the currency mode's own.
func (p *PriceExtractor) ParsePriceText(text string) (float64, bool) {
	var b strings.Builder
	for i := 0; i < len(text); i++ {
		c := text[i]
		if (c >= '0' && c <= '9') || c == ',' || c == '.' {
			b.WriteByte(c)
		}
	}
	cleaned := strings.Trim(b.String(), ".,")
	if cleaned == "" {
		return 0, false
	}

	decimal := p.decimalSeparatorFor(cleaned)
	lastDecimal := -1
	if decimal != 0 {
		lastDecimal = strings.LastIndexByte(cleaned, decimal)
	}

	var normalized strings.Builder
	for i := 0; i < len(cleaned); i++ {
		c := cleaned[i]
		switch {
		case c >= '0' && c <= '9':
			normalized.WriteByte(c)
		case i == lastDecimal:
			normalized.WriteByte('.')
		}
	}

	value, err := strconv.ParseFloat(normalized.String(), 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// decimalSeparatorFor returns ',' or '.' or 0 when s has no decimal part
func (p *PriceExtractor) decimalSeparatorFor(s string) byte {
	lastComma := strings.LastIndexByte(s, ',')
	lastDot := strings.LastIndexByte(s, '.')

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			return ','
		}
		return '.'
	case lastComma >= 0:
		return p.loneSeparator(s, ',')
	case lastDot >= 0:
		return p.loneSeparator(s, '.')
	default:
		return 0
	}
}

func (p *PriceExtractor) loneSeparator(s string, sep byte) byte {
	if strings.Count(s, string(sep)) > 1 {
		return 0
	}
	digitsAfter := len(s) - strings.IndexByte(s, sep) - 1
	if digitsAfter == 3 && sep != p.mode.decimalSeparator() {
		return 0
	}
	return sep
}
