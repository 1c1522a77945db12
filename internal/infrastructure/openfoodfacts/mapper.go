package openfoodfacts

import (
	"strings"

	"github.com/savetide/backend/internal/domain"
)

// productResponse is the subset of /api/v2/product/{code}.json the lookup reads
type productResponse struct {
	Status  int         `json:"status"`
	Product *offProduct `json:"product"`
}

type offProduct struct {
	ProductNameFR string `json:"product_name_fr"`
	ProductName   string `json:"product_name"`
	Brands        string `json:"brands"`
	Quantity      string `json:"quantity"`
	ImageURL      string `json:"image_url"`
	ImageFrontURL string `json:"image_front_url"`
}

// mapProduct converts an Open Food Facts payload into a BarcodeProduct.
// Returns false when the payload has no product or no name.
func mapProduct(code string, resp *productResponse) (*domain.BarcodeProduct, bool) {
	if resp == nil || resp.Status != 1 || resp.Product == nil {
		return nil, false
	}
	p := resp.Product

	name := firstNonEmpty(p.ProductNameFR, p.ProductName)
	if name == "" {
		return nil, false
	}
	brand := firstBrand(p.Brands)

	parts := make([]string, 0, 3)
	for _, s := range []string{brand, name, strings.TrimSpace(p.Quantity)} {
		if s != "" {
			parts = append(parts, s)
		}
	}

	product := &domain.BarcodeProduct{
		Code:  code,
		Title: strings.Join(parts, " "),
		Brand: brand,
	}
	if image := firstNonEmpty(p.ImageURL, p.ImageFrontURL); image != "" {
		product.Image = &image
	}
	return product, true
}

// firstBrand returns the first entry of a comma-separated brands field
func firstBrand(brands string) string {
	first, _, _ := strings.Cut(brands, ",")
	return strings.TrimSpace(first)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
