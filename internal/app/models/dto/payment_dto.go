package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/edafa/admissions/internal/app/models"
)

// CreateTransactionRequest starts a payment attempt with a provider
type CreateTransactionRequest struct {
	ProviderID int64 `json:"providerId" binding:"required,gt=0"`
}

// ProviderCallbackRequest carries a state notification from the payment
// provider for a transaction. The reference was issued to the provider when
// the transaction was opened and authenticates the callback.
type ProviderCallbackRequest struct {
	Reference string `json:"reference" binding:"required"`
	State     string `json:"state" binding:"required,oneof=pending authorized done cancelled error"`
}

// TransactionResponse represents a payment transaction as seen by the applicant
type TransactionResponse struct {
	ID          int64                   `json:"id"`
	Reference   string                  `json:"reference"`
	Amount      decimal.Decimal         `json:"amount"`
	Currency    string                  `json:"currency"`
	State       models.TransactionState `json:"state"`
	RedirectURL string                  `json:"redirectUrl,omitempty"`
	CreatedAt   time.Time               `json:"createdAt"`
}

// ReconcileResponse reports the payment status after reconciliation
type ReconcileResponse struct {
	AdmissionID      int64                 `json:"admissionId"`
	Status           models.AdmissionState `json:"status"`
	PaymentStatus    models.PaymentStatus  `json:"paymentStatus"`
	PaymentDate      *time.Time            `json:"paymentDate,omitempty"`
	PaymentReference string                `json:"paymentReference,omitempty"`
}

// InvoiceResponse represents an issued application fee invoice
type InvoiceResponse struct {
	ID            int64                 `json:"id"`
	Number        string                `json:"number"`
	AdmissionID   int64                 `json:"admissionId"`
	State         string                `json:"state"`
	AmountUntaxed decimal.Decimal       `json:"amountUntaxed"`
	AmountTax     decimal.Decimal       `json:"amountTax"`
	AmountTotal   decimal.Decimal       `json:"amountTotal"`
	Currency      string                `json:"currency"`
	Lines         []InvoiceLineResponse `json:"lines"`
}

// InvoiceLineResponse represents a single invoice line
type InvoiceLineResponse struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TaxRate     decimal.Decimal `json:"taxRate"`
}

// ToInvoiceResponse maps an invoice model to its API representation
func ToInvoiceResponse(inv *models.Invoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:            inv.ID,
		Number:        inv.Number,
		AdmissionID:   inv.AdmissionID,
		State:         inv.State,
		AmountUntaxed: inv.AmountUntaxed,
		AmountTax:     inv.AmountTax,
		AmountTotal:   inv.AmountTotal,
		Currency:      inv.Currency,
	}
	for _, line := range inv.Lines {
		resp.Lines = append(resp.Lines, InvoiceLineResponse{
			Description: line.Description,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			TaxRate:     line.TaxRate,
		})
	}
	return resp
}
