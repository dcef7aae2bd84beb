package importer

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/maasanto/pos-import/internal/docstore"
	"github.com/maasanto/pos-import/internal/domain"
)

// MappingError reports a source code the connector cannot resolve. It is a
// hard failure scoped to the single report being built.
type MappingError struct {
	Kind       string // "item" or "payment"
	SourceCode string
}

func (e *MappingError) Error() string {
	if e.Kind == "payment" {
		return fmt.Sprintf("no payment mapping found for source code %q", e.SourceCode)
	}
	return fmt.Sprintf("no item mapping found for source code %q and no default unmapped item is configured", e.SourceCode)
}

// reference is the idempotency key for a report within a company.
func reference(r *domain.POSReport) string {
	return "Z-" + r.ReportNumber
}

// buildDraft turns a report into a document-store request, resolving every
// source code through the connector.
func buildDraft(r *domain.POSReport, conn *domain.Connector) (*docstore.DraftInvoice, error) {
	draft := &docstore.DraftInvoice{
		Company:     conn.Company,
		Customer:    conn.Customer,
		Currency:    conn.Currency,
		Reference:   reference(r),
		PostingDate: r.ReportDate,
	}

	for _, line := range r.Lines {
		mapping := conn.ItemMappingFor(line.SourceCode)
		itemCode := conn.DefaultUnmappedItem
		uom := ""
		if mapping != nil {
			itemCode = mapping.Item
			uom = mapping.UOM
		}
		if itemCode == "" {
			return nil, &MappingError{Kind: "item", SourceCode: line.SourceCode}
		}

		draft.Items = append(draft.Items, docstore.DraftItem{
			ItemCode:      itemCode,
			Description:   line.Description,
			Qty:           1,
			Rate:          line.NetAmount,
			UOM:           uom,
			IncomeAccount: conn.IncomeAccount,
			CostCenter:    conn.CostCenter,
		})
	}

	draft.Taxes = buildTaxRows(r, conn)

	for _, payment := range r.Payments {
		mode := conn.ResolvePayment(payment.SourceCode)
		if mode == "" {
			return nil, &MappingError{Kind: "payment", SourceCode: payment.SourceCode}
		}
		draft.Payments = append(draft.Payments, docstore.DraftPayment{
			ModeOfPayment: mode,
			Amount:        payment.Amount,
		})
	}

	return draft, nil
}

// buildTaxRows prefers the authoritative VAT breakdown when the source
// supplied one; otherwise per-line tax amounts are aggregated by rate.
func buildTaxRows(r *domain.POSReport, conn *domain.Connector) []docstore.DraftTax {
	if conn.TaxAccount == "" {
		return nil
	}

	byRate := r.VATByRate
	if len(byRate) == 0 {
		byRate = make(map[string]decimal.Decimal)
		for _, line := range r.Lines {
			if line.TaxAmount.IsZero() {
				continue
			}
			key := domain.RateKey(line.TaxRate)
			byRate[key] = byRate[key].Add(line.TaxAmount)
		}
	}
	if len(byRate) == 0 {
		return nil
	}

	rates := make([]string, 0, len(byRate))
	for rate := range byRate {
		rates = append(rates, rate)
	}
	sort.Slice(rates, func(i, j int) bool {
		di, erri := decimal.NewFromString(rates[i])
		dj, errj := decimal.NewFromString(rates[j])
		if erri != nil || errj != nil {
			return rates[i] < rates[j]
		}
		return di.LessThan(dj)
	})

	taxes := make([]docstore.DraftTax, 0, len(rates))
	for _, rate := range rates {
		taxes = append(taxes, docstore.DraftTax{
			Account:     conn.TaxAccount,
			Description: fmt.Sprintf("TVA %s%%", rate),
			Amount:      byRate[rate].Round(2),
		})
	}
	return taxes
}
