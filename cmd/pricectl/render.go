package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/savetide/backend/internal/domain"
)

// renderer prints command results as tables or indented JSON
type renderer struct {
	out  io.Writer
	json bool
}

func (r *renderer) writeJSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func (r *renderer) newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)
	return t
}

func (r *renderer) resultSet(rs *domain.ResultSet) error {
	if r.json {
		return r.writeJSON(rs)
	}

	t := r.newTable()
	t.SetTitle(fmt.Sprintf("%q: %d offers", rs.Query, rs.Total))
	t.AppendHeader(table.Row{"#", "Merchant", "Price", "Title", "Rating", "Link"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, WidthMax: 48},
	})
	for i, offer := range rs.Results {
		t.AppendRow(table.Row{
			i + 1,
			offer.Source,
			offer.PriceFormatted,
			offer.Title,
			formatRating(offer.Rating, offer.Reviews),
			offer.Link,
		})
	}
	if rs.Source != "" {
		t.AppendFooter(table.Row{"", "source", rs.Source})
	}
	t.Render()
	return nil
}

func (r *renderer) ranked(rs *domain.ResultSet, report domain.PipelineReport) error {
	if r.json {
		return r.writeJSON(struct {
			Result *domain.ResultSet     `json:"result"`
			Report domain.PipelineReport `json:"report"`
		}{rs, report})
	}

	if err := r.resultSet(rs); err != nil {
		return err
	}

	t := r.newTable()
	t.SetTitle("pipeline")
	t.AppendHeader(table.Row{"Received", "Accepted", "Duplicates", "Returned", "Untrusted", "No price", "No link"})
	t.AppendRow(table.Row{
		report.Received,
		report.Accepted,
		report.Duplicates,
		report.Returned,
		report.Rejected[domain.ReasonUntrustedMerchant],
		report.Rejected[domain.ReasonNoUsablePrice],
		report.Rejected[domain.ReasonNoUsableLink],
	})
	t.Render()
	return nil
}

func (r *renderer) product(p *domain.BarcodeProduct) error {
	if r.json {
		return r.writeJSON(p)
	}

	t := r.newTable()
	t.AppendRows([]table.Row{
		{"Code", p.Code},
		{"Title", p.Title},
		{"Brand", p.Brand},
	})
	if p.Image != nil {
		t.AppendRow(table.Row{"Image", *p.Image})
	}
	t.Render()
	return nil
}

func (r *renderer) merchants(merchants []domain.Merchant) error {
	if r.json {
		identities := make([]*domain.MerchantIdentity, 0, len(merchants))
		for _, m := range merchants {
			identities = append(identities, m.Identity())
		}
		return r.writeJSON(identities)
	}

	t := r.newTable()
	t.AppendHeader(table.Row{"Key", "Name", "Domain", "Patterns", "Affiliate"})
	for _, m := range merchants {
		t.AppendRow(table.Row{m.Key, m.Name, m.Domain, strings.Join(m.Patterns, ", "), m.AffiliateParam})
	}
	t.AppendFooter(table.Row{"", "total", len(merchants)})
	t.Render()
	return nil
}

func formatRating(rating *float64, reviews *int) string {
	if rating == nil {
		return "-"
	}
	if reviews == nil {
		return fmt.Sprintf("%.1f", *rating)
	}
	return fmt.Sprintf("%.1f (%d)", *rating, *reviews)
}
