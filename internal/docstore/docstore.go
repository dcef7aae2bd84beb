// Package docstore is the boundary to the host accounting system's document
// lifecycle. The import core builds explicit request structs and hands them
// to a Store; it never depends on the host document model's shape.
package docstore

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status of a stored sales invoice.
type Status string

const (
	StatusDraft     Status = "Draft"
	StatusSubmitted Status = "Submitted"
	StatusCancelled Status = "Cancelled"
)

// DraftItem is one invoice line in a build request.
type DraftItem struct {
	ItemCode      string          `json:"item_code"`
	Description   string          `json:"description"`
	Qty           int             `json:"qty"`
	Rate          decimal.Decimal `json:"rate"`
	UOM           string          `json:"uom,omitempty"`
	IncomeAccount string          `json:"income_account,omitempty"`
	CostCenter    string          `json:"cost_center,omitempty"`
}

// DraftTax is one actual-amount tax row in a build request.
type DraftTax struct {
	Account     string          `json:"account"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// DraftPayment is one payment entry in a build request.
type DraftPayment struct {
	ModeOfPayment string          `json:"mode_of_payment"`
	Amount        decimal.Decimal `json:"amount"`
}

// DraftInvoice is the request the core hands to the store. Reference carries
// the Z-ticket identifier ("Z-<number>") and anchors idempotency together
// with Company.
type DraftInvoice struct {
	Company     string         `json:"company"`
	Customer    string         `json:"customer"`
	Currency    string         `json:"currency"`
	Reference   string         `json:"reference"`
	PostingDate time.Time      `json:"posting_date"`
	Items       []DraftItem    `json:"items"`
	Taxes       []DraftTax     `json:"taxes,omitempty"`
	Payments    []DraftPayment `json:"payments"`
}

// Invoice is a persisted document with the totals the host computed on
// insert.
type Invoice struct {
	ID string `json:"id"`
	DraftInvoice
	NetTotal   decimal.Decimal `json:"net_total"`
	TaxTotal   decimal.Decimal `json:"tax_total"`
	GrandTotal decimal.Decimal `json:"grand_total"`
	Status     Status          `json:"status"`
}

// TotalPayments sums the invoice's payment amounts.
func (inv *Invoice) TotalPayments() decimal.Decimal {
	total := decimal.Zero
	for _, p := range inv.Payments {
		total = total.Add(p.Amount)
	}
	return total
}

// Store is the document lifecycle consumed by the import core. Insert is
// guaranteed to return (with computed totals) before reconciliation runs;
// beyond that, no persistence timing is assumed.
type Store interface {
	// FindByReference returns the newest non-cancelled invoice for the
	// (company, reference) pair, or nil when none exists.
	FindByReference(company, reference string) (*Invoice, error)

	// Insert persists a draft and returns it with computed totals.
	Insert(draft *DraftInvoice) (*Invoice, error)

	// Submit finalizes a draft invoice.
	Submit(id string) error

	// Cancel cancels a submitted invoice.
	Cancel(id string) error

	// Delete removes a draft invoice. Submitted invoices cannot be deleted.
	Delete(id string) error
}
