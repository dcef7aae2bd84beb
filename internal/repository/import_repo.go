package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/maasanto/pos-import/internal/domain"
)

// ImportRepo persists import batches and their per-report rows. Rows are the
// audit trail: they are inserted once and updated in place, never deleted.
type ImportRepo struct {
	db *sql.DB
}

func NewImportRepo(db *sql.DB) *ImportRepo {
	return &ImportRepo{db: db}
}

func (r *ImportRepo) InsertBatch(b *domain.ImportBatch) error {
	_, err := r.db.Exec(
		`INSERT INTO import_batches
		(id, connector_code, file_name, file_hash, status, log, created_at)
		VALUES (?,?,?,?,?,?,?)`,
		b.ID, b.ConnectorCode, b.FileName, b.FileHash,
		string(b.Status), b.Log, b.CreatedAt.Format(time.RFC3339),
	)
	return err
}

// UpdateBatch persists the derived status and the accumulated log.
func (r *ImportRepo) UpdateBatch(b *domain.ImportBatch) error {
	_, err := r.db.Exec(
		"UPDATE import_batches SET status = ?, log = ? WHERE id = ?",
		string(b.Status), b.Log, b.ID,
	)
	return err
}

// GetBatch returns a batch together with its rows, or nil when not found.
func (r *ImportRepo) GetBatch(id string) (*domain.ImportBatch, error) {
	row := r.db.QueryRow(
		`SELECT id, connector_code, file_name, file_hash, status, log, created_at
		FROM import_batches WHERE id = ?`, id,
	)

	b, err := scanBatch(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.RowsForBatch(id)
	if err != nil {
		return nil, fmt.Errorf("load rows: %w", err)
	}
	b.Rows = rows
	return b, nil
}

// FindPendingBatch returns the newest still-pending batch for the same file
// content and connector, with its rows, or nil when none exists. This is the
// bridge between preview and import: the preview's snapshot batch is picked
// up here instead of creating a second one.
func (r *ImportRepo) FindPendingBatch(fileHash, connectorCode string) (*domain.ImportBatch, error) {
	row := r.db.QueryRow(
		`SELECT id, connector_code, file_name, file_hash, status, log, created_at
		FROM import_batches
		WHERE file_hash = ? AND connector_code = ? AND status = ?
		ORDER BY created_at DESC LIMIT 1`,
		fileHash, connectorCode, string(domain.BatchPending),
	)

	b, err := scanBatch(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.RowsForBatch(b.ID)
	if err != nil {
		return nil, fmt.Errorf("load rows: %w", err)
	}
	b.Rows = rows
	return b, nil
}

// ListBatches returns all batches, newest first, without their rows.
func (r *ImportRepo) ListBatches() ([]domain.ImportBatch, error) {
	rows, err := r.db.Query(
		`SELECT id, connector_code, file_name, file_hash, status, log, created_at
		FROM import_batches ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var batches []domain.ImportBatch
	for rows.Next() {
		var b domain.ImportBatch
		var status, createdAtStr string
		if err := rows.Scan(&b.ID, &b.ConnectorCode, &b.FileName, &b.FileHash,
			&status, &b.Log, &createdAtStr); err != nil {
			return nil, err
		}
		b.Status = domain.BatchStatus(status)
		b.CreatedAt, _ = time.Parse(time.RFC3339, createdAtStr)
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

// InsertRow appends a report row and fills in its generated ID.
func (r *ImportRepo) InsertRow(row *domain.ReportRow) error {
	res, err := r.db.Exec(
		`INSERT INTO import_rows
		(batch_id, report_number, report_date, total_amount, status, error_message, invoice_id)
		VALUES (?,?,?,?,?,?,?)`,
		row.BatchID, row.ReportNumber, row.ReportDate.Format(time.RFC3339),
		row.TotalAmount.String(), string(row.Status),
		nullable(row.ErrorMessage), nullable(row.InvoiceID),
	)
	if err != nil {
		return err
	}
	row.ID, err = res.LastInsertId()
	return err
}

// UpdateRow updates a row's status, error message, and invoice link in place.
func (r *ImportRepo) UpdateRow(row *domain.ReportRow) error {
	_, err := r.db.Exec(
		"UPDATE import_rows SET status = ?, error_message = ?, invoice_id = ? WHERE id = ?",
		string(row.Status), nullable(row.ErrorMessage), nullable(row.InvoiceID), row.ID,
	)
	return err
}

// RowsForBatch returns a batch's rows in insertion order.
func (r *ImportRepo) RowsForBatch(batchID string) ([]domain.ReportRow, error) {
	rows, err := r.db.Query(
		`SELECT id, batch_id, report_number, report_date, total_amount, status,
			error_message, invoice_id
		FROM import_rows WHERE batch_id = ? ORDER BY id`, batchID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ReportRow
	for rows.Next() {
		var row domain.ReportRow
		var dateStr, amountStr, status string
		var errMsg, invoiceID sql.NullString

		if err := rows.Scan(&row.ID, &row.BatchID, &row.ReportNumber, &dateStr,
			&amountStr, &status, &errMsg, &invoiceID); err != nil {
			return nil, err
		}

		row.ReportDate, _ = time.Parse(time.RFC3339, dateStr)
		row.TotalAmount, err = decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("parse total amount for row %d: %w", row.ID, err)
		}
		row.Status = domain.RowStatus(status)
		if errMsg.Valid {
			row.ErrorMessage = errMsg.String
		}
		if invoiceID.Valid {
			row.InvoiceID = invoiceID.String
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func scanBatch(row *sql.Row) (*domain.ImportBatch, error) {
	var b domain.ImportBatch
	var status, createdAtStr string

	err := row.Scan(&b.ID, &b.ConnectorCode, &b.FileName, &b.FileHash,
		&status, &b.Log, &createdAtStr)
	if err != nil {
		return nil, err
	}

	b.Status = domain.BatchStatus(status)
	b.CreatedAt, _ = time.Parse(time.RFC3339, createdAtStr)
	return &b, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
