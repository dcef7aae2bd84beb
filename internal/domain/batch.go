package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RowStatus is the lifecycle state of a single report within an import batch.
type RowStatus string

const (
	RowPending RowStatus = "Pending"
	RowCreated RowStatus = "Created"
	RowSkipped RowStatus = "Skipped"
	RowError   RowStatus = "Error"
)

// BatchStatus is derived from the row statuses, never stored independently.
type BatchStatus string

const (
	BatchPending BatchStatus = "Pending"
	BatchSuccess BatchStatus = "Success"
	BatchPartial BatchStatus = "Partial Success"
	BatchError   BatchStatus = "Error"
)

// ReportRow is the audit trail and idempotency anchor for one report within
// an import. Rows are appended or updated in place, never deleted.
type ReportRow struct {
	ID           int64           `json:"id"`
	BatchID      string          `json:"batch_id"`
	ReportNumber string          `json:"report_number"`
	ReportDate   time.Time       `json:"report_date"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	Status       RowStatus       `json:"status"`
	ErrorMessage string          `json:"error_message,omitempty"`
	InvoiceID    string          `json:"invoice_id,omitempty"`
}

// ImportBatch records one processed source file and the per-report outcomes.
type ImportBatch struct {
	ID            string      `json:"id"`
	ConnectorCode string      `json:"connector_code"`
	FileName      string      `json:"file_name"`
	FileHash      string      `json:"file_hash"`
	Status        BatchStatus `json:"status"`
	Log           string      `json:"log"`
	CreatedAt     time.Time   `json:"created_at"`
	Rows          []ReportRow `json:"rows,omitempty"`
}

// DeriveBatchStatus computes the overall batch status from its rows. Skipped
// rows are not attempts: a batch where every report was skipped has nothing
// to show for itself and counts as an error.
func DeriveBatchStatus(rows []ReportRow) BatchStatus {
	created := 0
	failed := 0
	for _, row := range rows {
		switch row.Status {
		case RowCreated:
			created++
		case RowError, RowPending:
			failed++
		}
	}

	switch {
	case created+failed == 0:
		return BatchError
	case failed == 0:
		return BatchSuccess
	case created == 0:
		return BatchError
	default:
		return BatchPartial
	}
}
