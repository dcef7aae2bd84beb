package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const connectorYAML = `code: resto-brussels
parser: restomax
company: Acme SA
customer: Walk-in
currency: EUR
income_account: 700000 - Sales
tax_account: 451000 - VAT
default_unmapped_item: Misc Sales
item_mappings:
  - source_code: PLAT
    item: Dish of the Day
    uom: Unit
payment_mappings:
  - source_code: CASH
    mode_of_payment: Cash
`

func writeConnector(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConnector(t *testing.T) {
	path := writeConnector(t, t.TempDir(), "resto.yaml", connectorYAML)

	conn, err := LoadConnector(path)
	if err != nil {
		t.Fatalf("LoadConnector: %v", err)
	}

	if conn.Code != "resto-brussels" || conn.Parser != "restomax" {
		t.Errorf("connector = %+v", conn)
	}
	if len(conn.ItemMappings) != 1 || conn.ItemMappings[0].Item != "Dish of the Day" {
		t.Errorf("item mappings = %+v", conn.ItemMappings)
	}
	if conn.ResolvePayment("CASH") != "Cash" {
		t.Errorf("payment mappings = %+v", conn.PaymentMappings)
	}
}

func TestLoadConnector_UnregisteredParser(t *testing.T) {
	yaml := strings.Replace(connectorYAML, "parser: restomax", "parser: no_such_parser", 1)
	path := writeConnector(t, t.TempDir(), "bad.yaml", yaml)

	_, err := LoadConnector(path)
	if err == nil {
		t.Fatal("connector with an unregistered parser accepted")
	}
	// The error names the available parser codes.
	if !strings.Contains(err.Error(), "restomax") {
		t.Errorf("error should list registered parsers: %v", err)
	}
}

func TestLoadConnector_MissingRequiredFields(t *testing.T) {
	cases := []struct {
		name   string
		remove string
	}{
		{"no code", "code: resto-brussels"},
		{"no parser", "parser: restomax"},
		{"no company", "company: Acme SA"},
		{"no customer", "customer: Walk-in"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			yaml := strings.Replace(connectorYAML, tc.remove, "", 1)
			path := writeConnector(t, t.TempDir(), "bad.yaml", yaml)
			if _, err := LoadConnector(path); err == nil {
				t.Error("invalid connector accepted")
			}
		})
	}
}

func TestLoadConnectorDir(t *testing.T) {
	dir := t.TempDir()
	writeConnector(t, dir, "resto.yaml", connectorYAML)
	writeConnector(t, dir, "other.yml",
		strings.Replace(connectorYAML, "code: resto-brussels", "code: resto-liege", 1))
	// Non-YAML files are ignored.
	writeConnector(t, dir, "README.md", "not a connector")

	connectors, err := LoadConnectorDir(dir)
	if err != nil {
		t.Fatalf("LoadConnectorDir: %v", err)
	}
	if len(connectors) != 2 {
		t.Fatalf("connectors = %v", connectors)
	}
	if connectors["resto-brussels"] == nil || connectors["resto-liege"] == nil {
		t.Errorf("missing codes: %v", connectors)
	}
}

func TestLoadConnectorDir_DuplicateCode(t *testing.T) {
	dir := t.TempDir()
	writeConnector(t, dir, "a.yaml", connectorYAML)
	writeConnector(t, dir, "b.yaml", connectorYAML)

	if _, err := LoadConnectorDir(dir); err == nil {
		t.Fatal("duplicate connector code accepted")
	}
}
