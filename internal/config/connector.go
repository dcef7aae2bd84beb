package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/maasanto/pos-import/internal/domain"
	"github.com/maasanto/pos-import/internal/parser"
)

// LoadConnector reads and validates one connector definition from a YAML
// file. The parser code is checked against the registry here, at
// configuration time, so an unknown code never reaches an import run.
func LoadConnector(path string) (*domain.Connector, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read connector file: %w", err)
	}

	var conn domain.Connector
	if err := yaml.Unmarshal(data, &conn); err != nil {
		return nil, fmt.Errorf("parse connector file %s: %w", path, err)
	}

	if err := ValidateConnector(&conn); err != nil {
		return nil, fmt.Errorf("connector %s: %w", path, err)
	}
	return &conn, nil
}

// LoadConnectorDir loads every *.yaml / *.yml connector in a directory,
// keyed by connector code.
func LoadConnectorDir(dir string) (map[string]*domain.Connector, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read connector dir: %w", err)
	}

	connectors := make(map[string]*domain.Connector)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		conn, err := LoadConnector(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		if _, dup := connectors[conn.Code]; dup {
			return nil, fmt.Errorf("duplicate connector code %q", conn.Code)
		}
		connectors[conn.Code] = conn
	}
	return connectors, nil
}

// ValidateConnector checks the fields the import core cannot run without.
func ValidateConnector(conn *domain.Connector) error {
	if conn.Code == "" {
		return fmt.Errorf("code is required")
	}
	if conn.Parser == "" {
		return fmt.Errorf("parser is required")
	}
	if !parser.Registered(conn.Parser) {
		return fmt.Errorf("parser %q is not registered (available: %s)",
			conn.Parser, strings.Join(parser.Codes(), ", "))
	}
	if conn.Company == "" {
		return fmt.Errorf("company is required")
	}
	if conn.Customer == "" {
		return fmt.Errorf("customer is required")
	}
	return nil
}
