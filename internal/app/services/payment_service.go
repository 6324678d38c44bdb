package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/edafa/admissions/internal/app/models"
	"github.com/edafa/admissions/internal/app/repositories"
	"github.com/edafa/admissions/internal/pkg/apperrors"
	"github.com/edafa/admissions/internal/pkg/token"
)

// PaymentService starts payment transactions for application fees and
// reconciles their outcomes back onto the admission.
type PaymentService struct {
	paymentStore   PaymentStore
	admissionStore AdmissionStore
	invoiceStore   InvoiceStore
	tx             TxRunner
	logger         zerolog.Logger
	now            func() time.Time
}

// NewPaymentService creates a new payment service instance
func NewPaymentService(
	paymentStore PaymentStore,
	admissionStore AdmissionStore,
	invoiceStore InvoiceStore,
	tx TxRunner,
	logger zerolog.Logger,
) *PaymentService {
	return &PaymentService{
		paymentStore:   paymentStore,
		admissionStore: admissionStore,
		invoiceStore:   invoiceStore,
		tx:             tx,
		logger:         logger,
		now:            time.Now,
	}
}

// CreateTransaction opens a pending payment transaction with the chosen
// provider for the admission's fee. The transaction amount is the invoice
// total when an invoice exists, otherwise the frozen fee.
func (s *PaymentService) CreateTransaction(ctx context.Context, admissionID, providerID int64) (*models.PaymentTransaction, *models.PaymentProvider, error) {
	admission, err := s.admissionStore.GetByID(ctx, admissionID)
	if err != nil {
		if errors.Is(err, repositories.ErrAdmissionNotFound) {
			return nil, nil, apperrors.ErrAdmissionNotFound
		}
		return nil, nil, err
	}
	return s.createTransaction(ctx, admission, providerID)
}

// CreateTransactionForApplicant lets the applicant start paying their own fee.
// Ownership is proven with the access token issued at submission.
func (s *PaymentService) CreateTransactionForApplicant(ctx context.Context, admissionID, providerID int64, accessToken string) (*models.PaymentTransaction, *models.PaymentProvider, error) {
	admission, err := s.admissionStore.GetByID(ctx, admissionID)
	if err != nil {
		if errors.Is(err, repositories.ErrAdmissionNotFound) {
			return nil, nil, apperrors.ErrAdmissionNotFound
		}
		return nil, nil, err
	}
	if !token.Equal(admission.AccessToken, accessToken) {
		return nil, nil, apperrors.ErrAccessDenied
	}
	return s.createTransaction(ctx, admission, providerID)
}

func (s *PaymentService) createTransaction(ctx context.Context, admission *models.Admission, providerID int64) (*models.PaymentTransaction, *models.PaymentProvider, error) {
	if admission.PersonID == nil {
		return nil, nil, apperrors.NewCustomError(apperrors.ErrConfiguration,
			"admission has no person record to charge")
	}

	provider, err := s.paymentStore.GetProvider(ctx, providerID)
	if err != nil {
		if errors.Is(err, repositories.ErrProviderNotFound) {
			return nil, nil, apperrors.ErrProviderNotFound
		}
		return nil, nil, err
	}

	amount := admission.Fee
	currency := admission.Currency
	if admission.InvoiceID != nil {
		invoice, err := s.invoiceStore.GetByID(ctx, *admission.InvoiceID)
		if err != nil {
			return nil, nil, fmt.Errorf("error loading invoice for payment: %w", err)
		}
		amount = invoice.AmountTotal
		currency = invoice.Currency
	}

	transaction := &models.PaymentTransaction{
		Reference:   "TX-" + uuid.New().String(),
		ProviderID:  provider.ID,
		AdmissionID: admission.ID,
		PersonID:    *admission.PersonID,
		Amount:      amount,
		Currency:    currency,
		State:       models.TxPending,
		CreatedAt:   s.now(),
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.paymentStore.CreateTransaction(ctx, transaction); err != nil {
			return err
		}
		return s.admissionStore.SetTransaction(ctx, admission.ID, transaction.ID)
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info().Int64("admissionId", admission.ID).Str("reference", transaction.Reference).
		Str("provider", provider.Code).Msg("Payment transaction created")
	return transaction, provider, nil
}

// RecordProviderState applies a state notification from the payment provider
// to the transaction, then reconciles the admission. The supplied reference
// must match the one issued to the provider; transaction ids are sequential
// and cannot authenticate a callback on their own.
func (s *PaymentService) RecordProviderState(ctx context.Context, transactionID int64, reference string, state models.TransactionState) (*models.Admission, error) {
	transaction, err := s.paymentStore.GetTransaction(ctx, transactionID)
	if err != nil {
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			return nil, apperrors.NewResourceNotFoundError("payment transaction not found")
		}
		return nil, err
	}
	if !token.Equal(transaction.Reference, reference) {
		return nil, apperrors.ErrAccessDenied
	}

	if err := s.paymentStore.UpdateTransactionState(ctx, transactionID, state, s.now()); err != nil {
		return nil, err
	}
	return s.Reconcile(ctx, transaction.AdmissionID)
}

// Reconcile folds the latest transaction state into the admission. A done
// transaction marks the fee paid and confirms the application; a cancelled
// one reopens the fee as unpaid. Anything else leaves the admission alone.
// Reconciling twice with the same state is a no-op.
func (s *PaymentService) Reconcile(ctx context.Context, admissionID int64) (*models.Admission, error) {
	var admission *models.Admission

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		admission, err = s.admissionStore.GetByID(ctx, admissionID)
		if err != nil {
			if errors.Is(err, repositories.ErrAdmissionNotFound) {
				return apperrors.ErrAdmissionNotFound
			}
			return err
		}
		if admission.TransactionID == nil {
			return apperrors.ErrTransactionPending
		}

		transaction, err := s.paymentStore.GetTransaction(ctx, *admission.TransactionID)
		if err != nil {
			return err
		}

		switch transaction.State {
		case models.TxDone:
			return s.applyPayment(ctx, admission, transaction)
		case models.TxCancelled:
			return s.applyCancellation(ctx, admission, transaction)
		default:
			// pending, authorized and error states leave the admission as-is
			return nil
		}
	})
	if err != nil {
		return nil, err
	}
	return admission, nil
}

func (s *PaymentService) applyPayment(ctx context.Context, admission *models.Admission, transaction *models.PaymentTransaction) error {
	if !admission.PaymentStatus.CanAdvanceTo(models.PaymentPaid, false) {
		return nil
	}
	if admission.PaymentStatus == models.PaymentPaid {
		return nil
	}

	paidAt := s.now()
	if transaction.LastStateChange != nil {
		paidAt = *transaction.LastStateChange
	}

	admission.PaymentStatus = models.PaymentPaid
	admission.PaymentDate = &paidAt
	admission.PaymentReference = transaction.Reference
	if admission.Status.CanTransitionTo(models.StateConfirm) {
		admission.Status = models.StateConfirm
	}

	if err := s.admissionStore.SetPaymentResult(ctx, admission); err != nil {
		return err
	}

	if admission.InvoiceID != nil {
		if err := s.invoiceStore.UpdateState(ctx, *admission.InvoiceID, models.InvoicePaid); err != nil {
			return err
		}
	}

	s.logger.Info().Int64("admissionId", admission.ID).Str("reference", transaction.Reference).
		Msg("Payment reconciled, admission confirmed")
	return nil
}

func (s *PaymentService) applyCancellation(ctx context.Context, admission *models.Admission, transaction *models.PaymentTransaction) error {
	if admission.PaymentStatus == models.PaymentUnpaid || admission.PaymentStatus == models.PaymentNone {
		return nil
	}
	if !admission.PaymentStatus.CanAdvanceTo(models.PaymentUnpaid, true) {
		return nil
	}

	admission.PaymentStatus = models.PaymentUnpaid
	admission.PaymentDate = nil
	admission.PaymentReference = ""

	if err := s.admissionStore.SetPaymentResult(ctx, admission); err != nil {
		return err
	}

	s.logger.Info().Int64("admissionId", admission.ID).Str("reference", transaction.Reference).
		Msg("Cancelled payment reconciled, fee reopened as unpaid")
	return nil
}
