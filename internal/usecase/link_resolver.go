package usecase

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/savetide/backend/internal/domain"
)

// DefaultAggregatorDomains are hosts that belong to the search provider or its
// ad-redirect service rather than to a merchant
var DefaultAggregatorDomains = []string{
	"google.com",
	"googleadservices.com",
	"serpapi.com",
}

// queryPlaceholder is replaced by the encoded product title in search URL templates
const queryPlaceholder = "{query}"

// LinkResolver picks the "buy" link of an offer.
// Order: product_link, link, then a synthesized merchant search URL.
type LinkResolver struct {
	aggregatorDomains []string
	affiliateIDs      map[string]string
}

// NewLinkResolver creates a link resolver.
// affiliateIDs maps merchant keys to the affiliate id appended to their links.
func NewLinkResolver(aggregatorDomains []string, affiliateIDs map[string]string) *LinkResolver {
	if len(aggregatorDomains) == 0 {
		aggregatorDomains = DefaultAggregatorDomains
	}
	domains := make([]string, 0, len(aggregatorDomains))
	for _, d := range aggregatorDomains {
		if d = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(d)), "www."); d != "" {
			domains = append(domains, d)
		}
	}
	return &LinkResolver{
		aggregatorDomains: domains,
		affiliateIDs:      affiliateIDs,
	}
}

// DirectLink returns the first merchant-hosted URL among product_link and link
func (l *LinkResolver) DirectLink(offer domain.RawOffer) (string, bool) {
	for _, field := range []string{"product_link", "link"} {
		if candidate := offer.String(field); l.isDirectURL(candidate) {
			return candidate, true
		}
	}
	return "", false
}

// Resolve returns the destination link for an offer.
// merchant may be nil when the offer's merchant has no catalog entry.
func (l *LinkResolver) Resolve(offer domain.RawOffer, merchant *domain.Merchant) (string, error) {
	link, ok := l.DirectLink(offer)
	if !ok {
		title := offer.String("title")
		if merchant == nil || title == "" {
			return "", domain.ErrNoUsableLink
		}
		link, ok = BuildSearchURL(merchant.SearchURLTemplate, title)
		if !ok {
			return "", fmt.Errorf("%w: no search template for %s", domain.ErrNoUsableLink, merchant.Key)
		}
	}

	if merchant != nil {
		link = l.withAffiliateTag(link, *merchant)
	}
	return link, nil
}

// BuildSearchURL substitutes the encoded title into a merchant search template.
// Templates without a {query} placeholder get the title appended.
func BuildSearchURL(template, title string) (string, bool) {
	template = strings.TrimSpace(template)
	if template == "" || strings.TrimSpace(title) == "" {
		return "", false
	}

	encoded := encodeURIComponent(strings.TrimSpace(title))
	var out string
	if strings.Contains(template, queryPlaceholder) {
		out = strings.ReplaceAll(template, queryPlaceholder, encoded)
	} else {
		out = template + encoded
	}

	if !isAbsoluteHTTPURL(out) {
		return "", false
	}
	return out, true
}

// isDirectURL reports whether raw is an absolute http(s) URL not hosted by an aggregator
func (l *LinkResolver) isDirectURL(raw string) bool {
	if !isAbsoluteHTTPURL(raw) {
		return false
	}
	return !l.isAggregatorHost(hostnameOf(raw))
}

// isAggregatorHost matches configured domains and their subdomains, plus
// country Google hosts such as google.fr or www.google.co.uk
func (l *LinkResolver) isAggregatorHost(host string) bool {
	for _, d := range l.aggregatorDomains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return strings.HasPrefix(host, "google.") || strings.Contains(host, ".google.")
}

func (l *LinkResolver) withAffiliateTag(link string, merchant domain.Merchant) string {
	id := l.affiliateIDs[merchant.Key]
	if id == "" || merchant.AffiliateParam == "" {
		return link
	}

	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if merchant.Domain != "" && host != merchant.Domain && !strings.HasSuffix(host, "."+merchant.Domain) {
		return link
	}

	q := u.Query()
	q.Set(merchant.AffiliateParam, id)
	u.RawQuery = q.Encode()
	return u.String()
}

func isAbsoluteHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// encodeURIComponent escapes s for use anywhere in a URL, spaces as %20
func encodeURIComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
