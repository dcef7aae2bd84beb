// Package numparse normalizes locale-specific number and date tokens from POS
// exports into exact decimal and calendar values.
//
// The two source formats use opposite separator conventions: the tabular
// export writes "1 234,56" (space thousands, comma decimal) while the PDF
// ticket writes "6.395,04" (dot thousands, comma decimal). Amount and
// PDFAmount must therefore stay separate; applying one to the other's input
// silently corrupts amounts by orders of magnitude.
package numparse

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// separatorCleaner strips regular, non-breaking, and narrow non-breaking
// spaces used as thousands separators.
var separatorCleaner = strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "")

// Amount parses the tabular export's number format: comma as the decimal
// separator, spaces as thousands separators. Empty or malformed input
// normalizes to zero; this function never fails.
func Amount(raw string) decimal.Decimal {
	text := strings.TrimSpace(raw)
	if text == "" {
		return decimal.Zero
	}

	text = separatorCleaner.Replace(text)
	text = strings.ReplaceAll(text, ",", ".")

	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// PDFAmount parses the Z-ticket PDF number format: dot as the thousands
// separator, comma as the decimal separator. Empty or malformed input
// normalizes to zero; this function never fails.
func PDFAmount(raw string) decimal.Decimal {
	text := strings.TrimSpace(raw)
	if text == "" {
		return decimal.Zero
	}

	text = separatorCleaner.Replace(text)
	text = strings.ReplaceAll(text, ".", "")
	text = strings.ReplaceAll(text, ",", ".")

	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero
	}
	return d.Round(2)
}

// Rate parses a tax rate written in plain dot-decimal notation ("21.0"),
// quantized to two decimal places. Malformed input normalizes to zero.
func Rate(raw string) decimal.Decimal {
	text := strings.TrimSpace(raw)
	if text == "" {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Zero
	}
	return d.Round(2)
}

// dateFormats is tried in order: day-first European formats, then ISO, then
// date-time.
var dateFormats = []string{
	"02/01/2006",
	"2006-01-02",
	"02-01-2006",
	"2006-01-02 15:04:05",
}

// Date parses a report date, trying each known format in order. When nothing
// matches it falls back to today: downstream reconciliation keys off the
// report number, so a fallback date is a soft signal rather than a hard
// error.
func Date(raw string) time.Time {
	text := strings.TrimSpace(raw)
	for _, format := range dateFormats {
		if t, err := time.Parse(format, text); err == nil {
			return truncateToDay(t)
		}
	}
	return truncateToDay(time.Now())
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
