package parser

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/maasanto/pos-import/internal/domain"
	"github.com/maasanto/pos-import/internal/numparse"
)

// TextExtractor turns PDF bytes into page-ordered text. Extraction itself is
// an external capability; the parser only consumes its output.
type TextExtractor interface {
	ExtractText(data []byte) (string, error)
}

// PlainTextExtractor passes already-extracted text through unchanged. It
// refuses raw PDF bytes, for which a real extractor must be configured.
type PlainTextExtractor struct{}

func (PlainTextExtractor) ExtractText(data []byte) (string, error) {
	if bytes.HasPrefix(data, []byte("%PDF")) {
		return "", errors.New("raw PDF input requires a configured text extractor")
	}
	return decodeText(data)
}

// RestomaxPDFParser handles Restomax Z-ticket PDFs: the "Z financier" header
// per closing, a TVA breakdown table, and payment lines.
//
// Numeric tokens here use the opposite separator convention from the tabular
// export (dot = thousands, comma = decimal), so this parser must keep using
// numparse.PDFAmount and never share the tabular number parser.
type RestomaxPDFParser struct {
	conn      *domain.Connector
	extractor TextExtractor
}

func NewRestomaxPDFParser(conn *domain.Connector, extractor TextExtractor) *RestomaxPDFParser {
	return &RestomaxPDFParser{conn: conn, extractor: extractor}
}

const zTicketMarker = "Z financier"

var (
	zHeaderPattern = regexp.MustCompile(`Z financier (\d+)`)

	// Labeled closing-date patterns, tried in order.
	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`Date\s*:\s*(\d{2}/\d{2}/\d{4})`),
		regexp.MustCompile(`Fermeture\s*:\s*(\d{2}/\d{2}/\d{4})`),
	}

	// TVA table row: one letter code plus rate, base (HTVA), tax (TVA) and
	// gross (TVAC) tokens.
	vatRowPattern = regexp.MustCompile(`^([A-Z])\s+([\d,\.]+)\s+([\d\.\s,]+)\s+([\d\.\s,]+)\s+([\d\.\s,]+)$`)

	// Payment line: known payment keyword, transaction count, trailing
	// "amount EUR" token. E.g. "eft - 822x : 8.152,50 EUR".
	paymentPattern = regexp.MustCompile(`(?i)(eft|cash|carte|cb|especes|cheque|ticket)\s*[-–]\s*\d+x?[^:]*:\s*([\d\.\s,]+)\s*EUR`)
)

// Validate checks that the extracted text carries the Z-ticket title marker.
func (p *RestomaxPDFParser) Validate(data []byte) (bool, string) {
	text, err := p.extractor.ExtractText(data)
	if err != nil {
		return false, fmt.Sprintf("unable to read PDF: %v", err)
	}
	if strings.TrimSpace(text) == "" {
		return false, "no text could be extracted from the PDF"
	}
	if !strings.Contains(text, zTicketMarker) {
		return false, "file does not look like a Restomax Z-ticket"
	}
	return true, ""
}

// Parse splits the extracted text into per-ticket segments and parses each.
func (p *RestomaxPDFParser) Parse(data []byte) ([]domain.POSReport, error) {
	text, err := p.extractor.ExtractText(data)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}

	matches := zHeaderPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil, nil
	}

	reports := make([]domain.POSReport, 0, len(matches))
	for i, match := range matches {
		start := match[0]
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		segment := text[start:end]
		zNumber := text[match[2]:match[3]]

		reports = append(reports, p.parseSegment(zNumber, segment))
	}

	sortReports(reports)
	return reports, nil
}

func (p *RestomaxPDFParser) parseSegment(zNumber, segment string) domain.POSReport {
	report := domain.POSReport{
		ReportNumber: zNumber,
		ReportDate:   extractClosingDate(segment),
	}
	report.Lines = extractVATBreakdown(segment)
	report.Payments = extractPayments(segment)
	return report
}

func extractClosingDate(segment string) time.Time {
	for _, pattern := range datePatterns {
		if m := pattern.FindStringSubmatch(segment); m != nil {
			return numparse.Date(m[1])
		}
	}
	return numparse.Date("")
}

// extractVATBreakdown reads the per-rate tax table. Each surviving row
// becomes one line with source code "TVA-<code>".
func extractVATBreakdown(segment string) []domain.POSLine {
	var lines []domain.POSLine

	for _, raw := range strings.Split(segment, "\n") {
		m := vatRowPattern.FindStringSubmatch(strings.TrimSpace(raw))
		if m == nil {
			continue
		}

		code := m[1]
		rate := numparse.Rate(m[2])
		base := numparse.PDFAmount(m[3])
		tax := numparse.PDFAmount(m[4])
		gross := numparse.PDFAmount(m[5])

		if base.IsZero() && gross.IsZero() {
			continue
		}

		description := "Exonéré TVA"
		if rate.Sign() > 0 {
			description = fmt.Sprintf("TVA %s%%", rate.StringFixed(2))
		}

		lines = append(lines, domain.POSLine{
			SourceCode:  "TVA-" + code,
			Description: description,
			NetAmount:   base,
			TaxRate:     rate,
			TaxAmount:   tax,
			GrossAmount: gross,
		})
	}

	return lines
}

// extractPayments reads payment lines, normalizing the keyword variants into
// a small set of canonical payment codes.
func extractPayments(segment string) []domain.POSPayment {
	var payments []domain.POSPayment

	for _, m := range paymentPattern.FindAllStringSubmatch(segment, -1) {
		keyword := strings.ToLower(m[1])
		amount := numparse.PDFAmount(m[2])
		if amount.Sign() <= 0 {
			continue
		}

		var sourceCode, sourceName string
		switch keyword {
		case "eft", "carte", "cb":
			sourceCode, sourceName = "eft", "Carte bancaire"
		case "cash", "especes":
			sourceCode, sourceName = "cash", "Espèces"
		case "cheque":
			sourceCode, sourceName = "cheque", "Chèque"
		case "ticket":
			sourceCode, sourceName = "ticket", "Ticket Restaurant"
		default:
			sourceCode = keyword
			sourceName = keyword
		}

		payments = append(payments, domain.POSPayment{
			SourceCode: sourceCode,
			SourceName: sourceName,
			Amount:     amount,
		})
	}

	return payments
}
