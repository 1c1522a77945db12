package usecase

import (
	"testing"

	"github.com/savetide/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testCatalog is a small US catalog shared by the usecase tests
func testCatalog() []domain.Merchant {
	return []domain.Merchant{
		{
			Key:               "amazon",
			Name:              "Amazon",
			Domain:            "amazon.com",
			Patterns:          []string{"amazon"},
			SearchURLTemplate: "https://www.amazon.com/s?k={query}",
			AffiliateParam:    "tag",
		},
		{
			Key:               "bestbuy",
			Name:              "Best Buy",
			Domain:            "bestbuy.com",
			Patterns:          []string{"best buy", "bestbuy"},
			SearchURLTemplate: "https://www.bestbuy.com/site/searchpage.jsp?st={query}",
		},
		{
			Key:               "walmart",
			Name:              "Walmart",
			Domain:            "walmart.com",
			Patterns:          []string{"walmart"},
			SearchURLTemplate: "https://www.walmart.com/search?q=",
		},
		{
			Key:      "ebay",
			Name:     "eBay",
			Domain:   "ebay.com",
			Patterns: []string{"ebay"},
		},
	}
}

func TestMerchantResolver_Resolve(t *testing.T) {
	resolver := NewMerchantResolver(testCatalog())

	tests := []struct {
		name    string
		label   string
		wantKey string
	}{
		{name: "exact label", label: "Amazon", wantKey: "amazon"},
		{name: "case insensitive", label: "BEST BUY", wantKey: "bestbuy"},
		{name: "second pattern", label: "BestBuy", wantKey: "bestbuy"},
		{name: "substring without word boundary", label: "BestBuyOutlet", wantKey: "bestbuy"},
		{name: "domain-style label", label: "Walmart.com", wantKey: "walmart"},
		{name: "marketplace seller label", label: "eBay - gadgets4less", wantKey: "ebay"},
		{name: "untrusted label", label: "Unknown Shop", wantKey: ""},
		{name: "empty label", label: "", wantKey: ""},
		{name: "whitespace label", label: "   ", wantKey: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolver.Resolve(tt.label)
			if tt.wantKey == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantKey, got.Key)
		})
	}
}

func TestMerchantResolver_FirstMatchWins(t *testing.T) {
	resolver := NewMerchantResolver([]domain.Merchant{
		{Key: "amazon", Name: "Amazon", Patterns: []string{"amazon"}},
		{Key: "amazon-warehouse", Name: "Amazon Warehouse", Patterns: []string{"amazon warehouse"}},
	})

	got := resolver.Resolve("Amazon Warehouse Deals")
	require.NotNil(t, got)
	assert.Equal(t, "amazon", got.Key, "catalog order decides, not match length")
}

func TestMerchantResolver_ResolveHost(t *testing.T) {
	resolver := NewMerchantResolver(testCatalog())

	tests := []struct {
		name    string
		url     string
		wantKey string
	}{
		{name: "pattern in host", url: "https://www.bestbuy.com/site/123.p", wantKey: "bestbuy"},
		{name: "subdomain", url: "https://m.walmart.com/ip/42", wantKey: "walmart"},
		{name: "uppercase host", url: "HTTPS://WWW.AMAZON.COM/dp/B0", wantKey: "amazon"},
		{name: "unknown host", url: "https://unknownshop.com", wantKey: ""},
		{name: "relative url", url: "/dp/B0", wantKey: ""},
		{name: "garbage", url: "::not a url::", wantKey: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolver.ResolveHost(tt.url)
			if tt.wantKey == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantKey, got.Key)
		})
	}
}

func TestMerchantResolver_DomainOnlyMatchesHosts(t *testing.T) {
	resolver := NewMerchantResolver([]domain.Merchant{
		{Key: "bh", Name: "B&H Photo", Domain: "bhphotovideo.com", Patterns: []string{"b&h"}},
	})

	assert.Nil(t, resolver.Resolve("bhphotovideo.com"), "domain is not a label pattern")
	got := resolver.ResolveHost("https://www.bhphotovideo.com/c/product/1")
	require.NotNil(t, got)
	assert.Equal(t, "bh", got.Key)
}

func TestNewMerchantResolver_NormalizesCatalog(t *testing.T) {
	resolver := NewMerchantResolver([]domain.Merchant{
		{Key: "fnac", Name: "Fnac", Domain: "WWW.Fnac.com", Patterns: []string{"  FNAC ", ""}},
		{Key: "fnac", Name: "Duplicate", Patterns: []string{"dup"}},
	})

	merchants := resolver.Merchants()
	require.Len(t, merchants, 1)
	assert.Equal(t, []string{"fnac"}, merchants[0].Patterns)
	assert.Equal(t, "fnac.com", merchants[0].Domain)

	m, ok := resolver.Merchant("fnac")
	require.True(t, ok)
	assert.Equal(t, "Fnac", m.Name)

	_, ok = resolver.Merchant("missing")
	assert.False(t, ok)
}
