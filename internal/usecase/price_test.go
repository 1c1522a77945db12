package usecase

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/savetide/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceExtractor_Extract(t *testing.T) {
	usd := NewPriceExtractor(CurrencyUSD, 0)

	tests := []struct {
		name    string
		offer   domain.RawOffer
		want    float64
		wantErr bool
	}{
		{name: "numeric extracted price", offer: domain.RawOffer{"extracted_price": 199.99}, want: 199.99},
		{name: "extracted price preferred over text", offer: domain.RawOffer{"extracted_price": 10.0, "price": "$12.00"}, want: 10},
		{name: "zero extracted price falls back to text", offer: domain.RawOffer{"extracted_price": 0.0, "price": "$12.50"}, want: 12.5},
		{name: "json number", offer: domain.RawOffer{"extracted_price": json.Number("49.5")}, want: 49.5},
		{name: "numeric price field", offer: domain.RawOffer{"price": 15.0}, want: 15},
		{name: "us text with grouping", offer: domain.RawOffer{"price": "$1,299.99"}, want: 1299.99},
		{name: "comma decimal text", offer: domain.RawOffer{"price": "1.299,00 €"}, want: 1299},
		{name: "us lone dot rounds to cents", offer: domain.RawOffer{"price": "$1.299"}, want: 1.30},
		{name: "rounded to cents", offer: domain.RawOffer{"extracted_price": 19.999}, want: 20},
		{name: "at ceiling", offer: domain.RawOffer{"extracted_price": 100000.0}, want: 100000},
		{name: "above ceiling", offer: domain.RawOffer{"extracted_price": 100000.01}, wantErr: true},
		{name: "negative numeric price", offer: domain.RawOffer{"price": -3.0}, wantErr: true},
		{name: "rounds to zero", offer: domain.RawOffer{"extracted_price": 0.001}, wantErr: true},
		{name: "text without digits", offer: domain.RawOffer{"price": "Free"}, wantErr: true},
		{name: "string extracted price ignored", offer: domain.RawOffer{"extracted_price": "12.00"}, wantErr: true},
		{name: "no price fields", offer: domain.RawOffer{"title": "x"}, wantErr: true},
		{name: "wrong type", offer: domain.RawOffer{"price": []interface{}{1}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := usd.Extract(tt.offer)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrNoUsablePrice)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestPriceExtractor_CustomCeiling(t *testing.T) {
	p := NewPriceExtractor(CurrencyUSD, 500)

	_, err := p.Extract(domain.RawOffer{"extracted_price": 501.0})
	assert.ErrorIs(t, err, domain.ErrNoUsablePrice)

	got, err := p.Extract(domain.RawOffer{"extracted_price": 499.0})
	require.NoError(t, err)
	assert.Equal(t, 499.0, got)
}

func TestPriceExtractor_ParsePriceText(t *testing.T) {
	usd := NewPriceExtractor(CurrencyUSD, 0)
	eur := NewPriceExtractor(CurrencyEUR, 0)

	tests := []struct {
		name   string
		p      *PriceExtractor
		text   string
		want   float64
		wantOK bool
	}{
		{"plain dollars", usd, "$199.99", 199.99, true},
		{"us grouping and decimal", usd, "$1,299.99", 1299.99, true},
		{"us lone comma grouping", usd, "$1,299", 1299, true},
		{"us lone dot stays decimal", usd, "$1.299", 1.299, true},
		{"us repeated grouping", usd, "1,299,000", 1299000, true},
		{"eu grouping and decimal", eur, "1.299,00 €", 1299, true},
		{"eu decimal comma", eur, "12,99 €", 12.99, true},
		{"eu lone dot grouping", eur, "1.299 €", 1299, true},
		{"eu text in usd mode", usd, "1.299,00 €", 1299, true},
		{"two decimal comma in usd mode", usd, "12,99", 12.99, true},
		{"space grouping", eur, "1 299,90 €", 1299.9, true},
		{"trailing separator", usd, "USD 45.", 45, true},
		{"prefix abbreviation", usd, "Rs. 450", 450, true},
		{"no digits", usd, "N/A", 0, false},
		{"only separators", usd, ".,.", 0, false},
		{"empty", usd, "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.p.ParsePriceText(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "$199.99", FormatPrice(199.99, CurrencyUSD))
	assert.Equal(t, "$1299.00", FormatPrice(1299, CurrencyUSD))
	assert.Equal(t, "1299,00 €", FormatPrice(1299, CurrencyEUR))
	assert.Equal(t, "0,50 €", FormatPrice(0.5, CurrencyEUR))
}

func TestFormatPrice_RoundTrips(t *testing.T) {
	prices := []float64{0.01, 0.5, 9.99, 99.5, 199.99, 1000, 1299, 45678.9, 100000}

	for _, mode := range []CurrencyMode{CurrencyUSD, CurrencyEUR} {
		p := NewPriceExtractor(mode, 0)
		for _, price := range prices {
			formatted := FormatPrice(price, mode)
			parsed, ok := p.ParsePriceText(formatted)
			require.True(t, ok, "%s did not parse", formatted)
			assert.True(t, math.Abs(parsed-price) < 1e-9, "%s parsed to %v, want %v", formatted, parsed, price)
		}
	}
}

func TestParseCurrencyMode(t *testing.T) {
	mode, err := ParseCurrencyMode("eur")
	require.NoError(t, err)
	assert.Equal(t, CurrencyEUR, mode)

	mode, err = ParseCurrencyMode("")
	require.NoError(t, err)
	assert.Equal(t, CurrencyUSD, mode)

	_, err = ParseCurrencyMode("GBP")
	assert.Error(t, err)
}
