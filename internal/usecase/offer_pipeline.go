package usecase

import (
	"errors"
	"math"
	"sort"
	"strings"

	"github.com/savetide/backend/internal/domain"
)

// DefaultMaxResults caps the ranked result list
const DefaultMaxResults = 10

// PipelineConfig holds the static settings of the offer pipeline
type PipelineConfig struct {
	MaxResults        int
	MaxPrice          float64
	Currency          CurrencyMode
	AggregatorDomains []string
	AffiliateIDs      map[string]string
}

// OfferPipeline turns raw provider results into a deduplicated, ranked ResultSet.
// It holds only immutable configuration and is safe for concurrent use.
type OfferPipeline struct {
	resolver   *MerchantResolver
	prices     *PriceExtractor
	links      *LinkResolver
	currency   CurrencyMode
	maxResults int
}

// NewOfferPipeline creates a pipeline over the given resolver
func NewOfferPipeline(resolver *MerchantResolver, config PipelineConfig) *OfferPipeline {
	maxResults := config.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	currency := config.Currency
	if currency == "" {
		currency = CurrencyUSD
	}

	return &OfferPipeline{
		resolver:   resolver,
		prices:     NewPriceExtractor(currency, config.MaxPrice),
		links:      NewLinkResolver(config.AggregatorDomains, config.AffiliateIDs),
		currency:   currency,
		maxResults: maxResults,
	}
}

// Resolver returns the merchant resolver used by the pipeline
func (p *OfferPipeline) Resolver() *MerchantResolver {
	return p.resolver
}

// Build runs the pipeline and returns only the ResultSet
func (p *OfferPipeline) Build(query string, raw []domain.RawOffer) *domain.ResultSet {
	rs, _ := p.BuildReport(query, raw)
	return rs
}

// BuildReport canonicalizes every raw offer, keeps the cheapest offer per
// merchant, sorts ascending by price and truncates to the configured maximum.
// Rejected offers are counted per reason; nothing here is fatal.
func (p *OfferPipeline) BuildReport(query string, raw []domain.RawOffer) (*domain.ResultSet, domain.PipelineReport) {
	report := domain.PipelineReport{
		Received: len(raw),
		Rejected: make(map[domain.RejectReason]int),
	}

	// best holds one offer per merchant key in first-seen order
	best := make([]domain.CanonicalOffer, 0, len(raw))
	index := make(map[string]int, len(raw))

	for _, item := range raw {
		offer, err := p.Canonicalize(query, item)
		if err != nil {
			report.Rejected[rejectReason(err)]++
			continue
		}
		report.Accepted++

		if i, seen := index[offer.MerchantKey]; seen {
			report.Duplicates++
			if offer.Price < best[i].Price {
				best[i] = *offer
			}
			continue
		}
		index[offer.MerchantKey] = len(best)
		best = append(best, *offer)
	}

	sort.SliceStable(best, func(i, j int) bool {
		return best[i].Price < best[j].Price
	})
	if len(best) > p.maxResults {
		best = best[:p.maxResults]
	}

	report.Returned = len(best)
	return &domain.ResultSet{
		Query:   query,
		Total:   len(best),
		Results: best,
	}, report
}

// Canonicalize validates one raw offer: trusted merchant, usable price, usable link.
// Returns a wrapped ErrUntrustedMerchant, ErrNoUsablePrice or ErrNoUsableLink on rejection.
func (p *OfferPipeline) Canonicalize(query string, item domain.RawOffer) (*domain.CanonicalOffer, error) {
	if item == nil {
		return nil, domain.ErrUntrustedMerchant
	}

	label := item.String("source")
	identity := p.resolver.Resolve(label)
	if identity == nil {
		if direct, ok := p.links.DirectLink(item); ok {
			identity = p.resolver.ResolveHost(direct)
		}
	}
	if identity == nil {
		return nil, domain.ErrUntrustedMerchant
	}

	price, err := p.prices.Extract(item)
	if err != nil {
		return nil, err
	}

	var merchant *domain.Merchant
	if m, ok := p.resolver.Merchant(identity.Key); ok {
		merchant = &m
	}
	link, err := p.links.Resolve(item, merchant)
	if err != nil {
		return nil, err
	}

	return &domain.CanonicalOffer{
		Title:          displayTitle(item, query),
		Price:          price,
		PriceFormatted: FormatPrice(price, p.currency),
		Source:         identity.Name,
		Link:           link,
		Image:          optionalString(item, "thumbnail"),
		Rating:         optionalRating(item),
		Reviews:        optionalReviews(item),
		MerchantKey:    merchantKey(identity, label),
	}, nil
}

// merchantKey prefers the canonical key and falls back to the lowercased raw label
func merchantKey(identity *domain.MerchantIdentity, label string) string {
	if identity.Key != "" {
		return identity.Key
	}
	if key := strings.ToLower(strings.TrimSpace(label)); key != "" {
		return key
	}
	return strings.ToLower(identity.Name)
}

func displayTitle(item domain.RawOffer, query string) string {
	if title := item.String("title"); title != "" {
		return title
	}
	return query
}

func optionalString(item domain.RawOffer, key string) *string {
	if v := item.String(key); v != "" {
		return &v
	}
	return nil
}

func optionalRating(item domain.RawOffer) *float64 {
	if v, ok := item.Number("rating"); ok && v >= 0 {
		return &v
	}
	return nil
}

// optionalReviews accepts only whole counts that fit in an int32
func optionalReviews(item domain.RawOffer) *int {
	v, ok := item.Number("reviews")
	if !ok || v < 0 || v > math.MaxInt32 || v != math.Trunc(v) {
		return nil
	}
	n := int(v)
	return &n
}

func rejectReason(err error) domain.RejectReason {
	switch {
	case errors.Is(err, domain.ErrNoUsablePrice):
		return domain.ReasonNoUsablePrice
	case errors.Is(err, domain.ErrNoUsableLink):
		return domain.ReasonNoUsableLink
	default:
		return domain.ReasonUntrustedMerchant
	}
}
