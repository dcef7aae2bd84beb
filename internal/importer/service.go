// Package importer drives the import pipeline: parse, map, build a draft
// invoice per report, reconcile, then commit or record the failure — one
// report at a time, never aborting the batch for a single report's error.
package importer

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/maasanto/pos-import/internal/docstore"
	"github.com/maasanto/pos-import/internal/domain"
	"github.com/maasanto/pos-import/internal/logger"
	"github.com/maasanto/pos-import/internal/parser"
	"github.com/maasanto/pos-import/internal/reconcile"
	"github.com/maasanto/pos-import/internal/repository"
)

// ErrBatchNotFound reports a batch ID with no stored batch behind it.
var ErrBatchNotFound = errors.New("import batch not found")

// Service is the import orchestrator.
type Service struct {
	repo  *repository.ImportRepo
	store docstore.Store
	log   zerolog.Logger
}

func NewService(repo *repository.ImportRepo, store docstore.Store) *Service {
	return &Service{
		repo:  repo,
		store: store,
		log:   logger.WithComponent("importer"),
	}
}

// PreviewRow summarises one parsed report for display.
type PreviewRow struct {
	ReportNumber string          `json:"report_number"`
	ReportDate   time.Time       `json:"report_date"`
	LineCount    int             `json:"line_count"`
	PaymentCount int             `json:"payment_count"`
	TotalNet     decimal.Decimal `json:"total_net"`
	TotalTax     decimal.Decimal `json:"total_tax"`
	TotalGross   decimal.Decimal `json:"total_gross"`
}

// Preview summarises a parsed file before any invoice is committed.
type Preview struct {
	BatchID       string          `json:"batch_id"`
	ReportCount   int             `json:"report_count"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalTax      decimal.Decimal `json:"total_tax"`
	TotalPayments decimal.Decimal `json:"total_payments"`
	Reports       []PreviewRow    `json:"reports"`
}

// Validate runs the parser variant's cheap structural check.
func (s *Service) Validate(data []byte, conn *domain.Connector) (bool, string) {
	p, err := parser.New(conn.Parser, conn)
	if err != nil {
		return false, err.Error()
	}
	return p.Validate(data)
}

// Preview parses the file and records a Pending snapshot of it: one batch
// plus one Pending row per report. Running the same file afterwards picks
// the snapshot up instead of creating a second batch.
func (s *Service) Preview(data []byte, fileName string, conn *domain.Connector) (*Preview, error) {
	reports, err := s.parse(data, conn)
	if err != nil {
		return nil, err
	}

	batch, err := s.pendingBatch(data, fileName, conn, reports)
	if err != nil {
		return nil, err
	}

	preview := &Preview{
		BatchID:       batch.ID,
		ReportCount:   len(reports),
		TotalRevenue:  decimal.Zero,
		TotalTax:      decimal.Zero,
		TotalPayments: decimal.Zero,
	}
	for i := range reports {
		r := &reports[i]
		preview.TotalRevenue = preview.TotalRevenue.Add(r.TotalGross())
		preview.TotalTax = preview.TotalTax.Add(r.TotalTax())
		preview.TotalPayments = preview.TotalPayments.Add(r.TotalPayments())
		preview.Reports = append(preview.Reports, PreviewRow{
			ReportNumber: r.ReportNumber,
			ReportDate:   r.ReportDate,
			LineCount:    len(r.Lines),
			PaymentCount: len(r.Payments),
			TotalNet:     r.TotalNet(),
			TotalTax:     r.TotalTax(),
			TotalGross:   r.TotalGross(),
		})
	}
	return preview, nil
}

// parse validates then fully parses the file. A structural failure aborts
// the whole batch before any report is processed.
func (s *Service) parse(data []byte, conn *domain.Connector) ([]domain.POSReport, error) {
	p, err := parser.New(conn.Parser, conn)
	if err != nil {
		return nil, err
	}

	if ok, message := p.Validate(data); !ok {
		return nil, &parser.FormatError{Reason: message}
	}

	reports, err := p.Parse(data)
	if err != nil {
		return nil, &parser.FormatError{Reason: err.Error()}
	}
	return reports, nil
}

// Run imports a file end to end: one batch, one row per report, each report
// either fully succeeding or fully failing on its own.
func (s *Service) Run(data []byte, fileName string, conn *domain.Connector) (*domain.ImportBatch, error) {
	reports, err := s.parse(data, conn)
	if err != nil {
		return nil, err
	}

	batch, err := s.pendingBatch(data, fileName, conn, reports)
	if err != nil {
		return nil, err
	}

	var logLines []string
	for i := range reports {
		logLines = append(logLines, s.processReport(batch, &batch.Rows[i], &reports[i], conn))
	}

	batch.Status = domain.DeriveBatchStatus(batch.Rows)
	batch.Log = strings.Join(logLines, "\n")
	if err := s.repo.UpdateBatch(batch); err != nil {
		return nil, fmt.Errorf("update batch: %w", err)
	}

	return batch, nil
}

// pendingBatch reuses the still-pending snapshot batch for this exact file
// and connector, or creates one with a Pending audit row per report, in
// report order.
func (s *Service) pendingBatch(data []byte, fileName string, conn *domain.Connector, reports []domain.POSReport) (*domain.ImportBatch, error) {
	fileHash := fmt.Sprintf("%x", sha256.Sum256(data))

	batch, err := s.repo.FindPendingBatch(fileHash, conn.Code)
	if err != nil {
		return nil, fmt.Errorf("look up pending batch: %w", err)
	}
	if batch != nil && len(batch.Rows) == len(reports) {
		return batch, nil
	}

	batch = &domain.ImportBatch{
		ID:            uuid.NewString(),
		ConnectorCode: conn.Code,
		FileName:      fileName,
		FileHash:      fileHash,
		Status:        domain.BatchPending,
		CreatedAt:     time.Now(),
	}
	if err := s.repo.InsertBatch(batch); err != nil {
		return nil, fmt.Errorf("insert batch: %w", err)
	}

	batch.Rows = make([]domain.ReportRow, len(reports))
	for i := range reports {
		batch.Rows[i] = domain.ReportRow{
			BatchID:      batch.ID,
			ReportNumber: reports[i].ReportNumber,
			ReportDate:   reports[i].ReportDate,
			TotalAmount:  reports[i].TotalGross().Round(2),
			Status:       domain.RowPending,
		}
		if err := s.repo.InsertRow(&batch.Rows[i]); err != nil {
			return nil, fmt.Errorf("insert row: %w", err)
		}
	}
	return batch, nil
}

// Reprocess re-parses the source file and retries only rows currently in
// Error or Pending state, leaving Created rows untouched.
func (s *Service) Reprocess(data []byte, conn *domain.Connector, batchID string) (*domain.ImportBatch, error) {
	batch, err := s.repo.GetBatch(batchID)
	if err != nil {
		return nil, fmt.Errorf("load batch: %w", err)
	}
	if batch == nil {
		return nil, fmt.Errorf("batch %s: %w", batchID, ErrBatchNotFound)
	}

	reports, err := s.parse(data, conn)
	if err != nil {
		return nil, err
	}

	byNumber := make(map[string]*domain.POSReport, len(reports))
	for i := range reports {
		byNumber[reports[i].ReportNumber] = &reports[i]
	}

	var logLines []string
	for i := range batch.Rows {
		row := &batch.Rows[i]
		if row.Status != domain.RowError && row.Status != domain.RowPending {
			continue
		}
		report, ok := byNumber[row.ReportNumber]
		if !ok {
			continue
		}
		logLines = append(logLines, s.processReport(batch, row, report, conn))
	}

	batch.Status = domain.DeriveBatchStatus(batch.Rows)
	if len(logLines) > 0 {
		if batch.Log != "" {
			batch.Log += "\n\n"
		}
		batch.Log += strings.Join(logLines, "\n")
	}
	if err := s.repo.UpdateBatch(batch); err != nil {
		return nil, fmt.Errorf("update batch: %w", err)
	}

	return batch, nil
}

// Cancel cancels every invoice a batch created. Rows keep their invoice ID
// so the audit trail survives the cancellation.
func (s *Service) Cancel(batchID string) (*domain.ImportBatch, error) {
	batch, err := s.repo.GetBatch(batchID)
	if err != nil {
		return nil, fmt.Errorf("load batch: %w", err)
	}
	if batch == nil {
		return nil, fmt.Errorf("batch %s: %w", batchID, ErrBatchNotFound)
	}

	var logLines []string
	for i := range batch.Rows {
		row := &batch.Rows[i]
		if row.Status != domain.RowCreated || row.InvoiceID == "" {
			continue
		}
		if err := s.store.Cancel(row.InvoiceID); err != nil {
			// Drafts cannot be cancelled, only submitted invoices; drop
			// leftover drafts instead.
			if delErr := s.store.Delete(row.InvoiceID); delErr != nil {
				s.log.Error().
					Str("batch_id", batch.ID).
					Str("invoice_id", row.InvoiceID).
					Err(err).
					Msg("failed to cancel invoice")
				logLines = append(logLines, fmt.Sprintf("Z-%s: cancel failed - %s", row.ReportNumber, err))
				continue
			}
			logLines = append(logLines, fmt.Sprintf("Z-%s: draft %s deleted", row.ReportNumber, row.InvoiceID))
			continue
		}
		logLines = append(logLines, fmt.Sprintf("Z-%s: invoice %s cancelled", row.ReportNumber, row.InvoiceID))
	}

	if len(logLines) > 0 {
		if batch.Log != "" {
			batch.Log += "\n\n"
		}
		batch.Log += strings.Join(logLines, "\n")
		if err := s.repo.UpdateBatch(batch); err != nil {
			return nil, fmt.Errorf("update batch: %w", err)
		}
	}
	return batch, nil
}

// processReport runs one report's unit of work and returns its log line.
// Failures are converted into row status plus message; nothing propagates.
func (s *Service) processReport(batch *domain.ImportBatch, row *domain.ReportRow, report *domain.POSReport, conn *domain.Connector) string {
	if len(report.Lines) == 0 {
		row.Status = domain.RowSkipped
		row.ErrorMessage = "no revenue lines found (only summary lines)"
		s.updateRow(row)
		return fmt.Sprintf("Z-%s: skipped - no revenue lines", report.ReportNumber)
	}

	invoice, err := s.buildAndReconcile(batch, report, conn)
	if err != nil {
		row.Status = domain.RowError
		row.ErrorMessage = err.Error()
		s.updateRow(row)
		// Diagnostic log with full context; the batch log line stays terse.
		s.log.Error().
			Str("batch_id", batch.ID).
			Str("report_number", report.ReportNumber).
			Err(err).
			Msg("report import failed")
		return fmt.Sprintf("Z-%s: error - %s", report.ReportNumber, err)
	}

	row.Status = domain.RowCreated
	row.InvoiceID = invoice.ID
	row.ErrorMessage = ""
	s.updateRow(row)
	return fmt.Sprintf("Z-%s: invoice %s created", report.ReportNumber, invoice.ID)
}

// buildAndReconcile performs the per-report pipeline: internal tax check,
// draft build, idempotency check, insert, totals check, optional submit.
func (s *Service) buildAndReconcile(batch *domain.ImportBatch, report *domain.POSReport, conn *domain.Connector) (*docstore.Invoice, error) {
	warnings, err := reconcile.CheckReportTaxes(report)
	for _, w := range warnings {
		s.log.Warn().
			Str("batch_id", batch.ID).
			Str("report_number", report.ReportNumber).
			Msg(w.String())
	}
	if err != nil {
		return nil, err
	}

	draft, err := buildDraft(report, conn)
	if err != nil {
		return nil, err
	}

	// Idempotency: reuse a finalized invoice, rebuild over a stale draft.
	existing, err := s.store.FindByReference(conn.Company, draft.Reference)
	if err != nil {
		return nil, fmt.Errorf("look up existing invoice: %w", err)
	}
	if existing != nil {
		if existing.Status == docstore.StatusSubmitted {
			s.log.Warn().
				Str("batch_id", batch.ID).
				Str("report_number", report.ReportNumber).
				Str("invoice_id", existing.ID).
				Msg("invoice already exists, reusing")
			return existing, nil
		}
		if err := s.store.Delete(existing.ID); err != nil {
			return nil, fmt.Errorf("replace draft invoice %s: %w", existing.ID, err)
		}
	}

	invoice, err := s.store.Insert(draft)
	if err != nil {
		return nil, fmt.Errorf("insert invoice: %w", err)
	}

	// On mismatch the inserted draft is left in place for manual inspection.
	if err := reconcile.CompareInvoice(report, invoice); err != nil {
		return nil, err
	}

	if !conn.CreateDraftInvoices {
		if err := s.store.Submit(invoice.ID); err != nil {
			return nil, fmt.Errorf("submit invoice %s: %w", invoice.ID, err)
		}
		invoice.Status = docstore.StatusSubmitted
	}

	return invoice, nil
}

func (s *Service) updateRow(row *domain.ReportRow) {
	if err := s.repo.UpdateRow(row); err != nil {
		s.log.Error().Int64("row_id", row.ID).Err(err).Msg("failed to persist row update")
	}
}
