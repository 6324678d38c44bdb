package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionState is the payment subsystem's own lifecycle for one payment
// attempt. It is produced by the external provider and may be re-delivered or
// arrive out of order; the reconciler treats it as the source of truth.
type TransactionState string

const (
	TxPending    TransactionState = "pending"
	TxAuthorized TransactionState = "authorized"
	TxDone       TransactionState = "done"
	TxCancelled  TransactionState = "cancelled"
	TxError      TransactionState = "error"
)

// PaymentTransaction is an external, eventually-consistent record of a
// payment attempt. Owned by the payment subsystem; admissions only reference
// it.
type PaymentTransaction struct {
	ID              int64            `json:"id" db:"id"`
	Reference       string           `json:"reference" db:"reference"`
	ProviderID      int64            `json:"providerId" db:"provider_id"`
	AdmissionID     int64            `json:"admissionId" db:"admission_id"`
	PersonID        int64            `json:"personId" db:"person_id"`
	Amount          decimal.Decimal  `json:"amount" db:"amount"`
	Currency        string           `json:"currency" db:"currency"`
	State           TransactionState `json:"state" db:"state"`
	LastStateChange *time.Time       `json:"lastStateChange,omitempty" db:"last_state_change"`
	CreatedAt       time.Time        `json:"createdAt" db:"created_at"`
}

// PaymentProvider is an enabled payment gateway the applicant can pay through.
type PaymentProvider struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Code        string `json:"code" db:"code"`
	RedirectURL string `json:"redirectUrl" db:"redirect_url"`
	Enabled     bool   `json:"enabled" db:"enabled"`
}
