// Package parser turns raw POS export files into canonical reports.
//
// Each supported export format has one parser variant. Variants share the
// Parser contract and are looked up by connector code through a registry, so
// an unknown code is rejected when the connector is loaded rather than at
// import time.
package parser

import (
	"fmt"
	"sort"

	"github.com/maasanto/pos-import/internal/domain"
)

// Parser is the contract shared by all format variants.
type Parser interface {
	// Validate performs a cheap structural check (required columns present,
	// required marker text present) without a full parse. It never fails;
	// the reason is returned as data.
	Validate(data []byte) (ok bool, message string)

	// Parse extracts all reports from the file. It returns an error only for
	// unreadable or undecodable input; a readable file with no reports yields
	// an empty slice. Results are sorted by (date, report number) ascending
	// so preview and import logs are deterministic regardless of source row
	// order.
	Parse(data []byte) ([]domain.POSReport, error)
}

// FormatError reports a structurally invalid source file: unreadable bytes,
// missing required columns, or a missing format marker. It aborts the whole
// batch before any report is processed.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "invalid file format: " + e.Reason
}

// Factory builds a parser instance bound to a connector.
type Factory func(conn *domain.Connector) Parser

var registry = map[string]Factory{}

// Register makes a parser variant available under the given connector code.
func Register(code string, factory Factory) {
	registry[code] = factory
}

// Registered reports whether a parser code is known.
func Registered(code string) bool {
	_, ok := registry[code]
	return ok
}

// Codes returns all registered parser codes, sorted.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// New builds the parser registered under code for the given connector.
func New(code string, conn *domain.Connector) (Parser, error) {
	factory, ok := registry[code]
	if !ok {
		return nil, fmt.Errorf("unknown parser code %q (registered: %v)", code, Codes())
	}
	return factory(conn), nil
}

func init() {
	Register("restomax", func(conn *domain.Connector) Parser {
		return NewRestomaxParser(conn)
	})
	Register("restomax_pdf", func(conn *domain.Connector) Parser {
		return NewRestomaxPDFParser(conn, PlainTextExtractor{})
	})
}
