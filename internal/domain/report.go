package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// POSLine is a single revenue line within a Z report. Lines are immutable
// once constructed by a parser.
type POSLine struct {
	SourceCode  string          `json:"source_code"`
	Description string          `json:"description"`
	NetAmount   decimal.Decimal `json:"net_amount"`
	TaxRate     decimal.Decimal `json:"tax_rate"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
	GrossAmount decimal.Decimal `json:"gross_amount"`
}

// POSPayment is a payment-method entry within a Z report.
type POSPayment struct {
	SourceCode string          `json:"source_code"`
	SourceName string          `json:"source_name"`
	Amount     decimal.Decimal `json:"amount"`
}

// POSReport is one complete Z closing: revenue lines, payments, and (when the
// source format supplies it) the authoritative VAT breakdown by rate.
//
// A report's identity is its ReportNumber combined with the owning import
// batch; numbers are not globally unique.
type POSReport struct {
	ReportNumber string       `json:"report_number"`
	ReportDate   time.Time    `json:"report_date"`
	Lines        []POSLine    `json:"lines"`
	Payments     []POSPayment `json:"payments"`

	// VATByRate maps a tax rate (keyed via RateKey) to the aggregated actual
	// VAT amount reported by the POS system. When populated it is trusted as
	// ground truth over per-line tax amounts.
	VATByRate map[string]decimal.Decimal `json:"vat_by_rate,omitempty"`
}

// RateKey formats a tax rate as the canonical VATByRate map key.
func RateKey(rate decimal.Decimal) string {
	return rate.StringFixed(2)
}

// AddVAT accumulates an actual VAT amount under the given rate.
func (r *POSReport) AddVAT(rate, amount decimal.Decimal) {
	if r.VATByRate == nil {
		r.VATByRate = make(map[string]decimal.Decimal)
	}
	key := RateKey(rate)
	r.VATByRate[key] = r.VATByRate[key].Add(amount)
}

// Derived totals are recomputed on every call, never cached, so they cannot
// go stale if a report is mutated between parse and import.

// TotalNet sums the net amounts of all revenue lines.
func (r *POSReport) TotalNet() decimal.Decimal {
	total := decimal.Zero
	for _, line := range r.Lines {
		total = total.Add(line.NetAmount)
	}
	return total
}

// TotalTax returns the authoritative VAT total when VATByRate is populated,
// otherwise the sum of per-line tax amounts.
func (r *POSReport) TotalTax() decimal.Decimal {
	total := decimal.Zero
	if len(r.VATByRate) > 0 {
		for _, amount := range r.VATByRate {
			total = total.Add(amount)
		}
		return total
	}
	for _, line := range r.Lines {
		total = total.Add(line.TaxAmount)
	}
	return total
}

// TotalGross is net + actual VAT when VATByRate is populated, otherwise the
// sum of per-line gross amounts.
func (r *POSReport) TotalGross() decimal.Decimal {
	if len(r.VATByRate) > 0 {
		return r.TotalNet().Add(r.TotalTax())
	}
	total := decimal.Zero
	for _, line := range r.Lines {
		total = total.Add(line.GrossAmount)
	}
	return total
}

// TotalPayments sums all payment amounts.
func (r *POSReport) TotalPayments() decimal.Decimal {
	total := decimal.Zero
	for _, p := range r.Payments {
		total = total.Add(p.Amount)
	}
	return total
}
