package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/maasanto/pos-import/internal/domain"
	"github.com/maasanto/pos-import/internal/numparse"
)

// RestomaxParser handles Restomax accounting exports (CSV or XLSX).
//
// Expected columns: N° Z, Date clôture, ID Restomax, Compte général,
// Description, TVA, DEBIT, CREDIT. Rows are classified by account prefix:
// 700xxx = revenue (credit side), 451xxx = VAT collected, 580xxx = payments
// (debit side). The export duplicates every row verbatim and doubles every
// amount; both quirks are specific to this format and are not generalized to
// other variants.
type RestomaxParser struct {
	conn *domain.Connector
}

func NewRestomaxParser(conn *domain.Connector) *RestomaxParser {
	return &RestomaxParser{conn: conn}
}

const (
	revenueAccountPrefix = "700"
	vatAccountPrefix     = "451"
	paymentAccountPrefix = "580"

	colReportNumber = "N° Z"
	colClosingDate  = "Date clôture"
	colAccount      = "Compte général"
	colSourceCode   = "ID Restomax"
	colDescription  = "Description"
	colTaxRate      = "TVA"
	colDebit        = "DEBIT"
	colCredit       = "CREDIT"
)

var requiredColumns = []string{
	colReportNumber, colClosingDate, colAccount, colDebit, colCredit, colSourceCode,
}

// summaryKeywords marks revenue rows that are subtotals rather than sales.
var summaryKeywords = []string{
	"total", "sous-total", "subtotal", "ca global", "ca tvac", "ca hors",
}

var two = decimal.NewFromInt(2)

// Validate checks that the file is readable and carries the required columns.
func (p *RestomaxParser) Validate(data []byte) (bool, string) {
	rows, err := p.readRows(data)
	if err != nil {
		return false, fmt.Sprintf("unable to read file: %v", err)
	}
	if len(rows) == 0 {
		return false, "empty file"
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := rows[0][col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return false, "missing required columns: " + strings.Join(missing, ", ")
	}

	return true, ""
}

// Parse extracts one POSReport per Z number found in the file.
func (p *RestomaxParser) Parse(data []byte) ([]domain.POSReport, error) {
	rows, err := p.readRows(data)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	type revenueRow struct {
		sourceCode  string
		description string
		amount      decimal.Decimal
		taxRate     decimal.Decimal
	}
	type vatRow struct {
		amount  decimal.Decimal
		taxRate decimal.Decimal
	}
	type paymentRow struct {
		sourceCode  string
		description string
		amount      decimal.Decimal
	}
	type reportAccum struct {
		date     string
		revenues []revenueRow
		vats     []vatRow
		payments []paymentRow
	}

	accums := make(map[string]*reportAccum)
	var order []string
	seen := make(map[string]struct{})

	for _, row := range rows {
		reportNum := strings.TrimSpace(row[colReportNumber])
		if reportNum == "" {
			continue
		}

		account := strings.TrimSpace(row[colAccount])
		sourceCode := strings.TrimSpace(row[colSourceCode])
		description := strings.TrimSpace(row[colDescription])
		debitText := strings.TrimSpace(row[colDebit])
		creditText := strings.TrimSpace(row[colCredit])

		// The export duplicates every row verbatim; drop exact repeats.
		key := strings.Join([]string{reportNum, account, description, debitText, creditText}, "\x1f")
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		accum, ok := accums[reportNum]
		if !ok {
			accum = &reportAccum{date: row[colClosingDate]}
			accums[reportNum] = accum
			order = append(order, reportNum)
		}

		debit := numparse.Amount(debitText)
		credit := numparse.Amount(creditText)
		taxRate := numparse.Amount(row[colTaxRate])

		switch {
		case strings.HasPrefix(account, revenueAccountPrefix):
			if isSummaryDescription(description) {
				continue
			}
			// Amounts are doubled in the export; halve to recover the truth.
			amount := credit.Sub(debit).Div(two)
			if amount.Sign() <= 0 {
				continue
			}
			label := description
			if label == "" {
				label = "Others"
			}
			accum.revenues = append(accum.revenues, revenueRow{
				sourceCode:  sourceCode,
				description: label,
				amount:      amount,
				taxRate:     taxRate,
			})

		case strings.HasPrefix(account, vatAccountPrefix):
			if strings.Contains(strings.ToLower(description), "total") {
				continue
			}
			// Rows without a source code are summary lines.
			if sourceCode == "" {
				continue
			}
			amount := credit.Sub(debit).Div(two)
			if amount.IsZero() {
				continue
			}
			accum.vats = append(accum.vats, vatRow{amount: amount, taxRate: taxRate})

		case strings.HasPrefix(account, paymentAccountPrefix):
			if strings.HasPrefix(description, "Total CA") || strings.HasPrefix(description, "Total PAIEMENT") {
				continue
			}
			amount := debit.Sub(credit).Div(two)
			if amount.Sign() <= 0 {
				continue
			}
			accum.payments = append(accum.payments, paymentRow{
				sourceCode:  sourceCode,
				description: description,
				amount:      amount,
			})
		}
	}

	reports := make([]domain.POSReport, 0, len(order))
	for _, reportNum := range order {
		accum := accums[reportNum]
		report := domain.POSReport{
			ReportNumber: reportNum,
			ReportDate:   numparse.Date(accum.date),
		}

		for _, v := range accum.vats {
			report.AddVAT(v.taxRate, v.amount)
		}

		for _, rev := range accum.revenues {
			sourceCode := rev.sourceCode
			if sourceCode == "" {
				sourceCode = rev.description
			}
			net := rev.amount.Round(2)
			report.Lines = append(report.Lines, domain.POSLine{
				SourceCode:  sourceCode,
				Description: rev.description,
				NetAmount:   net,
				TaxRate:     rev.taxRate,
				// Authoritative VAT lives in VATByRate; line tax stays zero.
				TaxAmount:   decimal.Zero,
				GrossAmount: net,
			})
		}

		for _, pay := range accum.payments {
			name := pay.description
			if name == "" {
				name = "Others"
			}
			sourceCode := pay.sourceCode
			if sourceCode == "" {
				sourceCode = name
			}
			report.Payments = append(report.Payments, domain.POSPayment{
				SourceCode: sourceCode,
				SourceName: name,
				Amount:     pay.amount.Round(2),
			})
		}

		reports = append(reports, report)
	}

	sortReports(reports)
	return reports, nil
}

func isSummaryDescription(description string) bool {
	lower := strings.ToLower(description)
	for _, keyword := range summaryKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// sortReports orders reports by (date, report number) ascending.
func sortReports(reports []domain.POSReport) {
	sort.SliceStable(reports, func(i, j int) bool {
		di, dj := reports[i].ReportDate, reports[j].ReportDate
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return reports[i].ReportNumber < reports[j].ReportNumber
	})
}

var xlsxMagic = []byte("PK\x03\x04")

// readRows reads the file as XLSX or delimited text and returns one
// header-keyed map per data row.
func (p *RestomaxParser) readRows(data []byte) ([]map[string]string, error) {
	if bytes.HasPrefix(data, xlsxMagic) {
		return readSpreadsheetRows(data)
	}
	return readDelimitedRows(data)
}

func readSpreadsheetRows(data []byte) ([]map[string]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("spreadsheet has no sheets")
	}

	rawRows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rawRows) == 0 {
		return nil, nil
	}

	headers := rawRows[0]
	rows := make([]map[string]string, 0, len(rawRows)-1)
	for _, raw := range rawRows[1:] {
		row := make(map[string]string, len(headers))
		for i, header := range headers {
			if i < len(raw) {
				row[header] = raw[i]
			} else {
				row[header] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func readDelimitedRows(data []byte) ([]map[string]string, error) {
	text, err := decodeText(data)
	if err != nil {
		return nil, err
	}

	// Delimiter is detected from the header line: exports use either
	// semicolons or commas.
	firstLine, _, _ := strings.Cut(text, "\n")
	delimiter := ','
	if strings.Contains(firstLine, ";") {
		delimiter = ';'
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	headers := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]string, len(headers))
		for i, header := range headers {
			if i < len(record) {
				row[header] = record[i]
			} else {
				row[header] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
