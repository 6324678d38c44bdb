package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice states
const (
	InvoiceDraft     = "draft"
	InvoicePosted    = "posted"
	InvoicePaid      = "paid"
	InvoiceCancelled = "cancelled"
)

// Invoice is the billing document raised for an application fee. Exactly one
// per admission; the unique constraint on admission_id backs the invariant.
type Invoice struct {
	ID            int64           `json:"id" db:"id"`
	Number        string          `json:"number" db:"number"`
	AdmissionID   int64           `json:"admissionId" db:"admission_id"`
	PersonID      int64           `json:"personId" db:"person_id"`
	InvoiceDate   time.Time       `json:"invoiceDate" db:"invoice_date"`
	Currency      string          `json:"currency" db:"currency"`
	AmountUntaxed decimal.Decimal `json:"amountUntaxed" db:"amount_untaxed"`
	AmountTax     decimal.Decimal `json:"amountTax" db:"amount_tax"`
	AmountTotal   decimal.Decimal `json:"amountTotal" db:"amount_total"`
	State         string          `json:"state" db:"state"`

	Lines []InvoiceLine `json:"lines,omitempty"`
}

// InvoiceLine is a single billed item. Application fee invoices carry exactly
// one line at quantity 1.
type InvoiceLine struct {
	ID          int64           `json:"id" db:"id"`
	InvoiceID   int64           `json:"invoiceId" db:"invoice_id"`
	ProductID   int64           `json:"productId" db:"product_id"`
	Description string          `json:"description" db:"description"`
	AccountID   int64           `json:"accountId" db:"account_id"`
	Quantity    decimal.Decimal `json:"quantity" db:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice" db:"unit_price"`
	TaxRate     decimal.Decimal `json:"taxRate" db:"tax_rate"`
}

// ComputeTaxTotals recalculates the invoice amount fields from its lines.
func (inv *Invoice) ComputeTaxTotals() {
	untaxed := decimal.Zero
	tax := decimal.Zero
	hundred := decimal.NewFromInt(100)
	for _, line := range inv.Lines {
		lineAmount := line.UnitPrice.Mul(line.Quantity)
		untaxed = untaxed.Add(lineAmount)
		tax = tax.Add(lineAmount.Mul(line.TaxRate).Div(hundred))
	}
	inv.AmountUntaxed = untaxed
	inv.AmountTax = tax.Round(2)
	inv.AmountTotal = untaxed.Add(inv.AmountTax)
}

// Product is a priced item used as a fee source and invoice line subject.
// Income account resolution falls back from the product's own account to its
// category's default.
type Product struct {
	ID              int64           `json:"id" db:"id"`
	Name            string          `json:"name" db:"name"`
	Type            string          `json:"type" db:"type"`
	ListPrice       decimal.Decimal `json:"listPrice" db:"list_price"`
	TaxRate         decimal.Decimal `json:"taxRate" db:"tax_rate"`
	IncomeAccountID *int64          `json:"incomeAccountId,omitempty" db:"income_account_id"`
	CategoryID      *int64          `json:"categoryId,omitempty" db:"category_id"`
	Active          bool            `json:"active" db:"active"`

	Category *ProductCategory `json:"category,omitempty"`
}

// ProductCategory groups products and holds the default income account.
type ProductCategory struct {
	ID              int64  `json:"id" db:"id"`
	Name            string `json:"name" db:"name"`
	IncomeAccountID *int64 `json:"incomeAccountId,omitempty" db:"income_account_id"`
}
