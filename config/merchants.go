package config

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"

	"github.com/savetide/backend/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed merchants_us.yaml merchants_fr.yaml
var catalogFS embed.FS

// embeddedCatalogs maps catalog names to their embedded file
var embeddedCatalogs = map[string]string{
	"us": "merchants_us.yaml",
	"fr": "merchants_fr.yaml",
}

// merchantFile is the on-disk catalog layout
type merchantFile struct {
	Merchants []merchantRecord `yaml:"merchants"`
}

type merchantRecord struct {
	Key            string   `yaml:"key"`
	Name           string   `yaml:"name"`
	Domain         string   `yaml:"domain"`
	Patterns       []string `yaml:"patterns"`
	SearchURL      string   `yaml:"search_url"`
	AffiliateParam string   `yaml:"affiliate_param"`
}

// CatalogNames lists the embedded catalogs
func CatalogNames() []string {
	names := make([]string, 0, len(embeddedCatalogs))
	for name := range embeddedCatalogs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadMerchants returns the trusted merchant catalog selected by the configuration
func (c *Config) LoadMerchants() ([]domain.Merchant, error) {
	if c.Merchants.File != "" {
		data, err := os.ReadFile(c.Merchants.File)
		if err != nil {
			return nil, fmt.Errorf("read merchant catalog: %w", err)
		}
		return ParseMerchants(data)
	}

	name, ok := embeddedCatalogs[c.Merchants.Catalog]
	if !ok {
		return nil, fmt.Errorf("unknown merchant catalog %q", c.Merchants.Catalog)
	}
	data, err := catalogFS.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read embedded catalog %s: %w", name, err)
	}
	return ParseMerchants(data)
}

// ParseMerchants decodes and validates a YAML merchant catalog.
// Catalog order is preserved; it decides which merchant wins overlapping patterns.
func ParseMerchants(data []byte) ([]domain.Merchant, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var file merchantFile
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode merchant catalog: %w", err)
	}
	if len(file.Merchants) == 0 {
		return nil, errors.New("merchant catalog is empty")
	}

	seen := make(map[string]bool, len(file.Merchants))
	merchants := make([]domain.Merchant, 0, len(file.Merchants))
	for i, r := range file.Merchants {
		key := strings.TrimSpace(r.Key)
		if key == "" {
			return nil, fmt.Errorf("merchant #%d: key is required", i+1)
		}
		if seen[key] {
			return nil, fmt.Errorf("merchant %s: duplicate key", key)
		}
		seen[key] = true

		if strings.TrimSpace(r.Name) == "" {
			return nil, fmt.Errorf("merchant %s: name is required", key)
		}
		if len(r.Patterns) == 0 {
			return nil, fmt.Errorf("merchant %s: at least one pattern is required", key)
		}
		if r.SearchURL != "" {
			u, err := url.Parse(strings.ReplaceAll(r.SearchURL, "{query}", "q"))
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return nil, fmt.Errorf("merchant %s: search_url must be an absolute http(s) URL", key)
			}
		}

		merchants = append(merchants, domain.Merchant{
			Key:               key,
			Name:              strings.TrimSpace(r.Name),
			Domain:            strings.TrimSpace(r.Domain),
			Patterns:          r.Patterns,
			SearchURLTemplate: r.SearchURL,
			AffiliateParam:    r.AffiliateParam,
		})
	}
	return merchants, nil
}
