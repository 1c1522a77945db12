package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMerchants_EmbeddedCatalogs(t *testing.T) {
	for _, name := range CatalogNames() {
		t.Run(name, func(t *testing.T) {
			cfg := &Config{Merchants: MerchantsConfig{Catalog: name}}

			merchants, err := cfg.LoadMerchants()
			require.NoError(t, err)
			require.NotEmpty(t, merchants)

			for _, m := range merchants {
				assert.NotEmpty(t, m.Key)
				assert.NotEmpty(t, m.Name)
				assert.NotEmpty(t, m.Domain, "merchant %s", m.Key)
				assert.NotEmpty(t, m.Patterns, "merchant %s", m.Key)
				assert.Contains(t, m.SearchURLTemplate, "{query}", "merchant %s", m.Key)
			}
			assert.Equal(t, "amazon", merchants[0].Key)
			assert.Equal(t, "tag", merchants[0].AffiliateParam)
		})
	}
}

func TestLoadMerchants_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "merchants.yaml")
	content := `
merchants:
  - key: micro
    name: Micro Center
    domain: microcenter.com
    patterns: [micro center, microcenter]
    search_url: "https://www.microcenter.com/search/search_results.aspx?Ntt={query}"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg := &Config{Merchants: MerchantsConfig{File: path, Catalog: "ignored"}}
	merchants, err := cfg.LoadMerchants()

	require.NoError(t, err)
	require.Len(t, merchants, 1)
	assert.Equal(t, "Micro Center", merchants[0].Name)
	assert.Equal(t, []string{"micro center", "microcenter"}, merchants[0].Patterns)

	cfg.Merchants.File = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = cfg.LoadMerchants()
	assert.Error(t, err)
}

func TestParseMerchants_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"empty catalog", "merchants: []", "empty"},
		{"missing key", "merchants:\n  - name: X\n    patterns: [x]", "key is required"},
		{"missing name", "merchants:\n  - key: x\n    patterns: [x]", "name is required"},
		{"duplicate key", "merchants:\n  - {key: x, name: X, patterns: [x]}\n  - {key: x, name: Y, patterns: [y]}", "duplicate key"},
		{"no patterns", "merchants:\n  - {key: x, name: X}", "at least one pattern"},
		{"relative search url", "merchants:\n  - key: x\n    name: X\n    patterns: [x]\n    search_url: \"/s?q={query}\"", "absolute http(s)"},
		{"unknown field", "merchants:\n  - {key: x, name: X, patterns: [x], colour: red}", "decode merchant catalog"},
		{"not yaml", "merchants: [", "decode merchant catalog"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMerchants([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestCatalogNames(t *testing.T) {
	assert.Equal(t, []string{"fr", "us"}, CatalogNames())
}
