// Package reconcile cross-checks monetary totals: first within a parsed
// report, then between a report and the accounting document generated from
// it. Money must never silently drift between the two.
package reconcile

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/maasanto/pos-import/internal/docstore"
	"github.com/maasanto/pos-import/internal/domain"
)

var (
	// hardTolerance is the absolute difference above which a check fails.
	hardTolerance = decimal.NewFromInt(1)
	// softTolerance is the absolute difference above which a non-fatal
	// warning is raised.
	softTolerance = decimal.New(1, -2)

	oneHundred = decimal.NewFromInt(100)
)

// TaxIssue describes one line whose reported tax deviates from the amount
// implied by its rate.
type TaxIssue struct {
	Line       string          `json:"line"`
	Expected   decimal.Decimal `json:"expected"`
	Actual     decimal.Decimal `json:"actual"`
	Difference decimal.Decimal `json:"difference"`
}

func (i TaxIssue) String() string {
	return fmt.Sprintf("tax discrepancy for %s: expected %s, got %s (difference: %s)",
		i.Line, i.Expected.StringFixed(2), i.Actual.StringFixed(2), i.Difference.StringFixed(2))
}

// TaxError is a tax discrepancy beyond the hard tolerance.
type TaxError struct {
	Issue TaxIssue
}

func (e *TaxError) Error() string {
	return e.Issue.String()
}

// CheckReportTaxes verifies that each line's tax amount is consistent with
// its rate. Reports carrying an authoritative VAT breakdown are trusted as
// ground truth and skipped entirely.
//
// Differences above 1.00 fail; differences in (0.01, 1.00] are returned as
// warnings. A difference of exactly 1.00 passes and exactly 0.01 is silent.
func CheckReportTaxes(r *domain.POSReport) ([]TaxIssue, error) {
	if len(r.VATByRate) > 0 {
		return nil, nil
	}

	var warnings []TaxIssue
	for _, line := range r.Lines {
		if line.TaxRate.Sign() <= 0 {
			continue
		}

		expected := line.NetAmount.Mul(line.TaxRate).Div(oneHundred)
		diff := expected.Sub(line.TaxAmount).Abs()

		issue := TaxIssue{
			Line:       line.Description,
			Expected:   expected,
			Actual:     line.TaxAmount,
			Difference: diff,
		}

		switch {
		case diff.GreaterThan(hardTolerance):
			return warnings, &TaxError{Issue: issue}
		case diff.GreaterThan(softTolerance):
			warnings = append(warnings, issue)
		}
	}

	return warnings, nil
}

// TotalsError is a report-vs-document mismatch. All four totals are always
// checked so the message lists every discrepancy at once.
type TotalsError struct {
	ReportNumber string
	Mismatches   []string
}

func (e *TotalsError) Error() string {
	return fmt.Sprintf("Z-%s: invoice amounts do not match the Z-ticket: %s",
		e.ReportNumber, strings.Join(e.Mismatches, "; "))
}

// CompareInvoice checks the generated invoice's totals against the report's:
// net (HT), tax (TVA), grand total (TTC), and the payments sum, each at
// 2-decimal rounding with tolerance 1.00.
func CompareInvoice(r *domain.POSReport, inv *docstore.Invoice) error {
	checks := []struct {
		label   string
		report  decimal.Decimal
		invoice decimal.Decimal
	}{
		{"net total (HT)", r.TotalNet(), inv.NetTotal},
		{"tax total (TVA)", r.TotalTax(), inv.TaxTotal},
		{"grand total (TTC)", r.TotalGross(), inv.GrandTotal},
		{"payments", r.TotalPayments(), inv.TotalPayments()},
	}

	var mismatches []string
	for _, c := range checks {
		reportValue := c.report.Round(2)
		invoiceValue := c.invoice.Round(2)
		diff := reportValue.Sub(invoiceValue).Abs()
		if diff.GreaterThan(hardTolerance) {
			mismatches = append(mismatches, fmt.Sprintf("%s: Z-ticket=%s, invoice=%s, diff=%s",
				c.label, reportValue.StringFixed(2), invoiceValue.StringFixed(2), diff.StringFixed(2)))
		}
	}

	if len(mismatches) > 0 {
		return &TotalsError{ReportNumber: r.ReportNumber, Mismatches: mismatches}
	}
	return nil
}
