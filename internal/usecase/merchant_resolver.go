package usecase

import (
	"net/url"
	"strings"

	"github.com/savetide/backend/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// MerchantResolver maps free-text merchant labels to trusted merchant identities.
// Matching is case-insensitive substring containment over the catalog in order;
// the first merchant with any matching pattern wins.
type MerchantResolver struct {
	merchants []domain.Merchant
	byKey     map[string]int
}

// NewMerchantResolver creates a resolver over an ordered merchant catalog.
// Patterns and domains are lowercased once; empty patterns are dropped.
func NewMerchantResolver(catalog []domain.Merchant) *MerchantResolver {
	r := &MerchantResolver{
		merchants: make([]domain.Merchant, 0, len(catalog)),
		byKey:     make(map[string]int, len(catalog)),
	}

	for _, m := range catalog {
		patterns := make([]string, 0, len(m.Patterns))
		for _, p := range m.Patterns {
			if p = lowerText(strings.TrimSpace(p)); p != "" {
				patterns = append(patterns, p)
			}
		}
		m.Patterns = patterns
		m.Domain = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(m.Domain)), "www.")

		if _, dup := r.byKey[m.Key]; dup {
			continue
		}
		r.byKey[m.Key] = len(r.merchants)
		r.merchants = append(r.merchants, m)
	}

	return r
}

// Resolve returns the identity of the first merchant whose patterns appear in label.
// Returns nil for empty labels and labels matching nothing.
func (r *MerchantResolver) Resolve(label string) *domain.MerchantIdentity {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil
	}
	return r.match(lowerText(label), false)
}

// ResolveHost applies the same matching to the hostname of rawURL.
// The merchant domain counts as an extra pattern here, so "m.bestbuy.com"
// resolves even when only "best buy" is configured.
func (r *MerchantResolver) ResolveHost(rawURL string) *domain.MerchantIdentity {
	host := hostnameOf(rawURL)
	if host == "" {
		return nil
	}
	return r.match(host, true)
}

// Merchant looks up a catalog entry by key
func (r *MerchantResolver) Merchant(key string) (domain.Merchant, bool) {
	idx, ok := r.byKey[key]
	if !ok {
		return domain.Merchant{}, false
	}
	return r.merchants[idx], true
}

// Merchants returns the catalog in priority order
func (r *MerchantResolver) Merchants() []domain.Merchant {
	out := make([]domain.Merchant, len(r.merchants))
	copy(out, r.merchants)
	return out
}

func (r *MerchantResolver) match(text string, withDomain bool) *domain.MerchantIdentity {
	for _, m := range r.merchants {
		for _, p := range m.Patterns {
			if strings.Contains(text, p) {
				return m.Identity()
			}
		}
		if withDomain && m.Domain != "" && strings.Contains(text, m.Domain) {
			return m.Identity()
		}
	}
	return nil
}

// lowerText lowercases with Unicode case mapping.
// A Caser is stateful, so one is created per call.
func lowerText(s string) string {
	return cases.Lower(language.Und).String(s)
}

// hostnameOf returns the lowercased hostname of rawURL without a leading "www.".
// Returns "" when rawURL is not an absolute URL.
func hostnameOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
