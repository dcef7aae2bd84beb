package domain

// ItemMapping links a POS source code to a destination item.
type ItemMapping struct {
	SourceCode string `json:"source_code" yaml:"source_code"`
	Item       string `json:"item" yaml:"item"`
	UOM        string `json:"uom,omitempty" yaml:"uom,omitempty"`
}

// PaymentMapping links a POS source code to a mode of payment.
type PaymentMapping struct {
	SourceCode    string `json:"source_code" yaml:"source_code"`
	ModeOfPayment string `json:"mode_of_payment" yaml:"mode_of_payment"`
}

// Connector is the read-only configuration for one POS integration: which
// parser handles its files and how source codes map onto accounting entities.
type Connector struct {
	Code     string `json:"code" yaml:"code"`
	Parser   string `json:"parser" yaml:"parser"`
	Company  string `json:"company" yaml:"company"`
	Customer string `json:"customer" yaml:"customer"`
	Currency string `json:"currency" yaml:"currency"`

	IncomeAccount string `json:"income_account" yaml:"income_account"`
	TaxAccount    string `json:"tax_account" yaml:"tax_account"`
	CostCenter    string `json:"cost_center,omitempty" yaml:"cost_center,omitempty"`

	// DefaultUnmappedItem is the fallback item for revenue source codes with
	// no explicit mapping. Payments have no fallback on purpose: silently
	// dropping a payment method would misstate cash reconciliation.
	DefaultUnmappedItem string `json:"default_unmapped_item,omitempty" yaml:"default_unmapped_item,omitempty"`

	// CreateDraftInvoices leaves generated invoices as drafts instead of
	// submitting them.
	CreateDraftInvoices bool `json:"create_draft_invoices" yaml:"create_draft_invoices"`

	ItemMappings    []ItemMapping    `json:"item_mappings" yaml:"item_mappings"`
	PaymentMappings []PaymentMapping `json:"payment_mappings" yaml:"payment_mappings"`
}

// ItemMappingFor returns the full item mapping for a source code, or nil.
func (c *Connector) ItemMappingFor(sourceCode string) *ItemMapping {
	for i := range c.ItemMappings {
		if c.ItemMappings[i].SourceCode == sourceCode {
			return &c.ItemMappings[i]
		}
	}
	return nil
}

// ResolveItem returns the destination item for a source code, falling back to
// the default unmapped item. Empty string means no destination is available.
func (c *Connector) ResolveItem(sourceCode string) string {
	if m := c.ItemMappingFor(sourceCode); m != nil {
		return m.Item
	}
	return c.DefaultUnmappedItem
}

// ResolvePayment returns the mode of payment for a source code. There is no
// fallback; empty string means the code is unmapped.
func (c *Connector) ResolvePayment(sourceCode string) string {
	for i := range c.PaymentMappings {
		if c.PaymentMappings[i].SourceCode == sourceCode {
			return c.PaymentMappings[i].ModeOfPayment
		}
	}
	return ""
}
