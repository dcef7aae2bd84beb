package parser

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/maasanto/pos-import/internal/domain"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

const restomaxHeader = "N° Z;Date clôture;ID Restomax;Compte général;Description;TVA;DEBIT;CREDIT"

// The export duplicates every row and doubles every amount, so a single sale
// of 10.00 appears as two identical rows of 20.00.
const restomaxSingleReport = restomaxHeader + "\n" +
	"1;01/06/2025;PLAT;700100;Plat du jour;10;0,00;20,00\n" +
	"1;01/06/2025;PLAT;700100;Plat du jour;10;0,00;20,00\n" +
	"1;01/06/2025;TVA10;451000;TVA sur ventes;10;0,00;2,00\n" +
	"1;01/06/2025;TVA10;451000;TVA sur ventes;10;0,00;2,00\n" +
	"1;01/06/2025;CASH;580000;Espèces;0;22,00;0,00\n" +
	"1;01/06/2025;CASH;580000;Espèces;0;22,00;0,00\n" +
	"1;01/06/2025;;700100;Total CA TVAC;0;0,00;80,00\n" +
	"1;01/06/2025;;451000;Total TVA;10;0,00;4,00\n" +
	"1;01/06/2025;;580000;Total PAIEMENT;0;44,00;0,00\n"

func newTestParser() *RestomaxParser {
	return NewRestomaxParser(&domain.Connector{Code: "test", Parser: "restomax"})
}

func TestRestomaxParser_Validate(t *testing.T) {
	p := newTestParser()

	if ok, msg := p.Validate([]byte(restomaxSingleReport)); !ok {
		t.Fatalf("valid file rejected: %s", msg)
	}

	if ok, _ := p.Validate(nil); ok {
		t.Error("empty file accepted")
	}

	missing := "N° Z;Date clôture;Description\n1;01/06/2025;x\n"
	ok, msg := p.Validate([]byte(missing))
	if ok {
		t.Fatal("file with missing columns accepted")
	}
	if !strings.Contains(msg, "Compte général") || !strings.Contains(msg, "DEBIT") {
		t.Errorf("message should name the missing columns, got %q", msg)
	}
}

func TestRestomaxParser_ParseSingleReport(t *testing.T) {
	p := newTestParser()

	reports, err := p.Parse([]byte(restomaxSingleReport))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("expected 1 report, got %d", len(reports))
	}

	r := reports[0]
	if r.ReportNumber != "1" {
		t.Errorf("report number = %q", r.ReportNumber)
	}
	expectedDate := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	if !r.ReportDate.Equal(expectedDate) {
		t.Errorf("report date = %s, expected %s", r.ReportDate, expectedDate)
	}

	// Duplicated rows collapse to one line, halved back to the true amount.
	if len(r.Lines) != 1 {
		t.Fatalf("expected 1 revenue line, got %d", len(r.Lines))
	}
	line := r.Lines[0]
	if line.SourceCode != "PLAT" || !line.NetAmount.Equal(dec("10.00")) {
		t.Errorf("line = %+v, expected PLAT net 10.00", line)
	}

	// VAT rows with a source code accumulate into the breakdown; the line's
	// own tax amount stays zero.
	if !line.TaxAmount.IsZero() {
		t.Errorf("line tax amount = %s, expected zero", line.TaxAmount)
	}
	vat := r.VATByRate[domain.RateKey(dec("10"))]
	if !vat.Equal(dec("1.00")) {
		t.Errorf("VAT at 10%% = %s, expected 1.00", vat)
	}

	if len(r.Payments) != 1 {
		t.Fatalf("expected 1 payment, got %d", len(r.Payments))
	}
	if r.Payments[0].SourceCode != "CASH" || !r.Payments[0].Amount.Equal(dec("11.00")) {
		t.Errorf("payment = %+v, expected CASH 11.00", r.Payments[0])
	}

	if got := r.TotalGross(); !got.Equal(dec("11.00")) {
		t.Errorf("TotalGross = %s, expected 11.00", got)
	}
}

func TestRestomaxParser_SummaryRowsAreDropped(t *testing.T) {
	p := newTestParser()

	data := restomaxHeader + "\n" +
		"1;01/06/2025;A1;700100;Sous-total boissons;21;0,00;30,00\n" +
		"1;01/06/2025;A2;700100;CA GLOBAL;21;0,00;60,00\n" +
		"1;01/06/2025;A3;700100;Bière;21;0,00;12,00\n"

	reports, err := p.Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(reports) != 1 || len(reports[0].Lines) != 1 {
		t.Fatalf("expected exactly the non-summary line to survive, got %+v", reports)
	}
	if reports[0].Lines[0].Description != "Bière" {
		t.Errorf("surviving line = %q", reports[0].Lines[0].Description)
	}
}

func TestRestomaxParser_NegativeAndEmptyLines(t *testing.T) {
	p := newTestParser()

	data := restomaxHeader + "\n" +
		// Refund: debit exceeds credit, dropped.
		"1;01/06/2025;REF;700100;Remboursement;21;10,00;0,00\n" +
		// No description: kept under the fallback label.
		"1;01/06/2025;MISC;700200;;21;0,00;8,00\n"

	reports, err := p.Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(reports) != 1 || len(reports[0].Lines) != 1 {
		t.Fatalf("expected 1 surviving line, got %+v", reports)
	}
	if reports[0].Lines[0].Description != "Others" {
		t.Errorf("fallback label = %q, expected Others", reports[0].Lines[0].Description)
	}
}

func TestRestomaxParser_PaymentWithoutCodeOrDescription(t *testing.T) {
	p := newTestParser()

	// Payment row with neither a Restomax ID nor a description still gets
	// the fallback label as its source code.
	data := restomaxHeader + "\n" +
		"1;01/06/2025;PLAT;700100;Plat;21;0,00;20,00\n" +
		"1;01/06/2025;;580000;;;20,00;0,00\n"

	reports, err := p.Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(reports) != 1 || len(reports[0].Payments) != 1 {
		t.Fatalf("expected 1 payment, got %+v", reports)
	}
	pay := reports[0].Payments[0]
	if pay.SourceCode != "Others" {
		t.Errorf("SourceCode = %q, expected Others", pay.SourceCode)
	}
	if pay.SourceName != "Others" {
		t.Errorf("SourceName = %q, expected Others", pay.SourceName)
	}
	if !pay.Amount.Equal(dec("10.00")) {
		t.Errorf("Amount = %s, expected 10.00", pay.Amount)
	}
}

func TestRestomaxParser_ReportsSortedByDateThenNumber(t *testing.T) {
	p := newTestParser()

	// Rows for the later report come first in the file.
	data := restomaxHeader + "\n" +
		"2;02/06/2025;A;700100;Plat;10;0,00;20,00\n" +
		"5;01/06/2025;A;700100;Plat;10;0,00;20,00\n" +
		"2;02/06/2025;B;700100;Dessert;10;0,00;10,00\n"

	reports, err := p.Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(reports) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(reports))
	}
	if reports[0].ReportNumber != "5" || reports[1].ReportNumber != "2" {
		t.Errorf("order = %s, %s; expected 5 then 2 (by closing date)",
			reports[0].ReportNumber, reports[1].ReportNumber)
	}
}

func TestRestomaxParser_CommaDelimiter(t *testing.T) {
	p := newTestParser()

	data := "N° Z,Date clôture,ID Restomax,Compte général,Description,TVA,DEBIT,CREDIT\n" +
		"3,01/06/2025,A,700100,Plat,10,\"0,00\",\"20,00\"\n"

	reports, err := p.Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(reports) != 1 || len(reports[0].Lines) != 1 {
		t.Fatalf("expected 1 report with 1 line, got %+v", reports)
	}
	if !reports[0].Lines[0].NetAmount.Equal(dec("10.00")) {
		t.Errorf("net = %s, expected 10.00", reports[0].Lines[0].NetAmount)
	}
}

func TestRestomaxParser_XLSX(t *testing.T) {
	f := excelize.NewFile()
	rows := [][]any{
		{"N° Z", "Date clôture", "ID Restomax", "Compte général", "Description", "TVA", "DEBIT", "CREDIT"},
		{"7", "01/06/2025", "PLAT", "700100", "Plat du jour", "10", "0,00", "20,00"},
		{"7", "01/06/2025", "CASH", "580000", "Espèces", "0", "20,00", "0,00"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	p := newTestParser()
	if ok, msg := p.Validate(buf.Bytes()); !ok {
		t.Fatalf("valid spreadsheet rejected: %s", msg)
	}

	reports, err := p.Parse(buf.Bytes())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(reports) != 1 || reports[0].ReportNumber != "7" {
		t.Fatalf("expected report 7, got %+v", reports)
	}
	if !reports[0].Lines[0].NetAmount.Equal(dec("10.00")) {
		t.Errorf("net = %s, expected 10.00", reports[0].Lines[0].NetAmount)
	}
	if !reports[0].Payments[0].Amount.Equal(dec("10.00")) {
		t.Errorf("payment = %s, expected 10.00", reports[0].Payments[0].Amount)
	}
}
