package domain

// Merchant is one entry of the trusted merchant catalog.
// Patterns are lowercase substrings identifying the merchant in free text;
// SearchURLTemplate builds a same-site search link, with {query} replaced by
// the URL-encoded product title (appended when the placeholder is absent).
type Merchant struct {
	Key               string   `json:"key"`
	Name              string   `json:"name"`
	Domain            string   `json:"domain,omitempty"`
	Patterns          []string `json:"-"`
	SearchURLTemplate string   `json:"-"`
	AffiliateParam    string   `json:"-"` // query parameter carrying an affiliate id, e.g. "tag"
}

// Identity returns the canonical identity of the merchant
func (m Merchant) Identity() *MerchantIdentity {
	return &MerchantIdentity{
		Key:    m.Key,
		Name:   m.Name,
		Domain: m.Domain,
	}
}

// MerchantIdentity is the canonical merchant a trust pattern resolves to
type MerchantIdentity struct {
	Key    string `json:"key"`
	Name   string `json:"name"`
	Domain string `json:"domain,omitempty"`
}
