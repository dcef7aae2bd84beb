package docstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SQLiteStore is the reference Store implementation, backed by the same
// SQLite database as the import repositories. Line items, taxes and payments
// are stored as JSON documents; totals are computed once at insert time the
// way the host system would.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates the store and ensures its schema exists.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sales_invoices (
			id TEXT PRIMARY KEY,
			company TEXT NOT NULL,
			customer TEXT NOT NULL,
			currency TEXT NOT NULL,
			reference TEXT NOT NULL,
			posting_date DATETIME NOT NULL,
			items TEXT NOT NULL,
			taxes TEXT NOT NULL,
			payments TEXT NOT NULL,
			net_total TEXT NOT NULL,
			tax_total TEXT NOT NULL,
			grand_total TEXT NOT NULL,
			status TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sales_invoices_reference
			ON sales_invoices(company, reference)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("create invoice tables: %w", err)
		}
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) FindByReference(company, reference string) (*Invoice, error) {
	row := s.db.QueryRow(
		`SELECT id, company, customer, currency, reference, posting_date,
			items, taxes, payments, net_total, tax_total, grand_total, status
		FROM sales_invoices
		WHERE company = ? AND reference = ? AND status != ?
		ORDER BY created_at DESC LIMIT 1`,
		company, reference, string(StatusCancelled),
	)

	inv, err := scanInvoice(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *SQLiteStore) Insert(draft *DraftInvoice) (*Invoice, error) {
	inv := &Invoice{
		ID:           "SINV-" + uuid.NewString(),
		DraftInvoice: *draft,
		Status:       StatusDraft,
	}

	net := decimal.Zero
	for _, item := range draft.Items {
		net = net.Add(item.Rate.Mul(decimal.NewFromInt(int64(item.Qty))))
	}
	tax := decimal.Zero
	for _, t := range draft.Taxes {
		tax = tax.Add(t.Amount)
	}
	inv.NetTotal = net.Round(2)
	inv.TaxTotal = tax.Round(2)
	inv.GrandTotal = net.Add(tax).Round(2)

	items, err := json.Marshal(draft.Items)
	if err != nil {
		return nil, fmt.Errorf("marshal items: %w", err)
	}
	taxes, err := json.Marshal(draft.Taxes)
	if err != nil {
		return nil, fmt.Errorf("marshal taxes: %w", err)
	}
	payments, err := json.Marshal(draft.Payments)
	if err != nil {
		return nil, fmt.Errorf("marshal payments: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO sales_invoices
		(id, company, customer, currency, reference, posting_date,
		 items, taxes, payments, net_total, tax_total, grand_total, status, created_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		inv.ID, inv.Company, inv.Customer, inv.Currency, inv.Reference,
		inv.PostingDate.Format(time.RFC3339),
		string(items), string(taxes), string(payments),
		inv.NetTotal.String(), inv.TaxTotal.String(), inv.GrandTotal.String(),
		string(inv.Status), time.Now().Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert invoice: %w", err)
	}

	return inv, nil
}

func (s *SQLiteStore) Submit(id string) error {
	return s.transition(id, StatusDraft, StatusSubmitted)
}

func (s *SQLiteStore) Cancel(id string) error {
	return s.transition(id, StatusSubmitted, StatusCancelled)
}

func (s *SQLiteStore) transition(id string, from, to Status) error {
	res, err := s.db.Exec(
		"UPDATE sales_invoices SET status = ? WHERE id = ? AND status = ?",
		string(to), id, string(from),
	)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("invoice %s is not in status %s", id, from)
	}
	return nil
}

func (s *SQLiteStore) Delete(id string) error {
	res, err := s.db.Exec(
		"DELETE FROM sales_invoices WHERE id = ? AND status = ?",
		id, string(StatusDraft),
	)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return fmt.Errorf("invoice %s is not a deletable draft", id)
	}
	return nil
}

func scanInvoice(row *sql.Row) (*Invoice, error) {
	var inv Invoice
	var postingDateStr, itemsJSON, taxesJSON, paymentsJSON string
	var netStr, taxStr, grandStr, status string

	err := row.Scan(
		&inv.ID, &inv.Company, &inv.Customer, &inv.Currency, &inv.Reference,
		&postingDateStr, &itemsJSON, &taxesJSON, &paymentsJSON,
		&netStr, &taxStr, &grandStr, &status,
	)
	if err != nil {
		return nil, err
	}

	inv.PostingDate, _ = time.Parse(time.RFC3339, postingDateStr)
	inv.Status = Status(status)

	if err := json.Unmarshal([]byte(itemsJSON), &inv.Items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	if err := json.Unmarshal([]byte(taxesJSON), &inv.Taxes); err != nil {
		return nil, fmt.Errorf("unmarshal taxes: %w", err)
	}
	if err := json.Unmarshal([]byte(paymentsJSON), &inv.Payments); err != nil {
		return nil, fmt.Errorf("unmarshal payments: %w", err)
	}

	if inv.NetTotal, err = decimal.NewFromString(netStr); err != nil {
		return nil, fmt.Errorf("parse net total: %w", err)
	}
	if inv.TaxTotal, err = decimal.NewFromString(taxStr); err != nil {
		return nil, fmt.Errorf("parse tax total: %w", err)
	}
	if inv.GrandTotal, err = decimal.NewFromString(grandStr); err != nil {
		return nil, fmt.Errorf("parse grand total: %w", err)
	}

	return &inv, nil
}
