package ledger

import "math"

// Authority is the financial authority a line item is routed to.
type Authority string

const (
	AuthorityDGI   Authority = "DGI"
	AuthorityDGDA  Authority = "DGDA"
	AuthorityDGRAD Authority = "DGRAD"
)

var validAuthorities = map[Authority]bool{
	AuthorityDGI:   true,
	AuthorityDGDA:  true,
	AuthorityDGRAD: true,
}

// IsValid returns true if the authority is one of the known set
func (a Authority) IsValid() bool {
	return validAuthorities[a]
}

// String returns the string representation of the authority
func (a Authority) String() string {
	return string(a)
}

// Item represents one billable line in a financial request.
// Total, TaxAmount and VATIncluded are derived and recomputed on every
// mutation; they are never set independently.
type Item struct {
	ID             string    `json:"id"`
	Label          string    `json:"label"`
	Quantity       int       `json:"quantity"`
	UnitPrice      float64   `json:"unit_price"`
	TaxRatePercent float64   `json:"tax_rate_percent"`
	Authority      Authority `json:"financial_authority"`

	Total       float64 `json:"total"`
	TaxAmount   float64 `json:"tax_amount"`
	VATIncluded float64 `json:"vat_included"`
}

// recompute refreshes the three derived fields from the independent ones.
// taxAmount rounds to 2 decimal places; total stays the raw product.
func (it *Item) recompute() {
	it.Total = float64(it.Quantity) * it.UnitPrice
	it.TaxAmount = round2(it.Total * it.TaxRatePercent / 100)
	it.VATIncluded = it.Total + it.TaxAmount
}

// round2 rounds to 2 decimal places, half away from zero
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Totals aggregates the committed collection for summary cards.
type Totals struct {
	Count       int     `json:"count"`
	Total       float64 `json:"total"`
	TaxAmount   float64 `json:"tax_amount"`
	VATIncluded float64 `json:"vat_included"`
}
