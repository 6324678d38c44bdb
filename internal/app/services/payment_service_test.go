package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edafa/admissions/internal/app/models"
	"github.com/edafa/admissions/internal/pkg/apperrors"
)

type paymentFixture struct {
	svc        *PaymentService
	admissions *fakeAdmissionStore
	payments   *fakePaymentStore
	invoices   *fakeInvoiceStore
	now        time.Time
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()

	now := time.Date(2026, 9, 15, 14, 0, 0, 0, time.UTC)
	f := &paymentFixture{
		admissions: &fakeAdmissionStore{},
		payments: &fakePaymentStore{providers: []*models.PaymentProvider{
			{ID: 1, Name: "Manual Transfer", Code: "manual", Enabled: true},
			{ID: 2, Name: "Legacy Gateway", Code: "legacy", Enabled: false},
		}},
		invoices: &fakeInvoiceStore{},
		now:      now,
	}
	f.svc = NewPaymentService(f.payments, f.admissions, f.invoices, &fakeTx{}, zerolog.Nop())
	f.svc.now = func() time.Time { return now }
	return f
}

func (f *paymentFixture) seedAdmission(t *testing.T, mutate func(a *models.Admission)) *models.Admission {
	t.Helper()
	personID := int64(1)
	a := &models.Admission{
		ApplicationNumber: "ADM00001",
		Name:              "Lina Haddad",
		Email:             "lina@example.com",
		CycleID:           1,
		PersonID:          &personID,
		Fee:               decimal.NewFromInt(150),
		Currency:          "USD",
		Status:            models.StateSubmit,
		PaymentStatus:     models.PaymentUnpaid,
		Active:            true,
	}
	if mutate != nil {
		mutate(a)
	}
	require.NoError(t, f.admissions.Create(context.Background(), a))
	return a
}

func TestCreateTransactionUsesFrozenFee(t *testing.T) {
	f := newPaymentFixture(t)
	a := f.seedAdmission(t, nil)

	transaction, provider, err := f.svc.CreateTransaction(context.Background(), a.ID, 1)
	require.NoError(t, err)

	assert.Equal(t, "manual", provider.Code)
	assert.Equal(t, models.TxPending, transaction.State)
	assert.True(t, decimal.NewFromInt(150).Equal(transaction.Amount))
	assert.Equal(t, "USD", transaction.Currency)
	assert.NotEmpty(t, transaction.Reference)

	stored, err := f.admissions.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.TransactionID)
	assert.Equal(t, transaction.ID, *stored.TransactionID)
}

func TestCreateTransactionUsesInvoiceTotal(t *testing.T) {
	f := newPaymentFixture(t)
	invoice := &models.Invoice{
		Number:      "INV00001",
		AdmissionID: 1,
		PersonID:    1,
		Currency:    "USD",
		AmountTotal: decimal.NewFromFloat(161.25),
		State:       models.InvoicePosted,
	}
	require.NoError(t, f.invoices.Create(context.Background(), invoice))
	a := f.seedAdmission(t, func(a *models.Admission) { a.InvoiceID = &invoice.ID })

	transaction, _, err := f.svc.CreateTransaction(context.Background(), a.ID, 1)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromFloat(161.25).Equal(transaction.Amount), "taxed invoice total takes precedence over the bare fee")
}

func TestCreateTransactionGuards(t *testing.T) {
	f := newPaymentFixture(t)
	a := f.seedAdmission(t, nil)

	_, _, err := f.svc.CreateTransaction(context.Background(), 404, 1)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrAdmissionNotFound))

	_, _, err = f.svc.CreateTransaction(context.Background(), a.ID, 2)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrProviderNotFound), "disabled providers must not accept transactions")

	noPerson := f.seedAdmission(t, func(a *models.Admission) { a.PersonID = nil })
	_, _, err = f.svc.CreateTransaction(context.Background(), noPerson.ID, 1)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrConfiguration))
}

func TestReconcileWithoutTransaction(t *testing.T) {
	f := newPaymentFixture(t)
	a := f.seedAdmission(t, nil)

	_, err := f.svc.Reconcile(context.Background(), a.ID)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrTransactionPending))
}

func TestRecordProviderStateDone(t *testing.T) {
	f := newPaymentFixture(t)
	invoice := &models.Invoice{
		Number:      "INV00001",
		AdmissionID: 1,
		PersonID:    1,
		Currency:    "USD",
		AmountTotal: decimal.NewFromFloat(161.25),
		State:       models.InvoicePosted,
	}
	require.NoError(t, f.invoices.Create(context.Background(), invoice))
	a := f.seedAdmission(t, func(a *models.Admission) { a.InvoiceID = &invoice.ID })

	transaction, _, err := f.svc.CreateTransaction(context.Background(), a.ID, 1)
	require.NoError(t, err)

	got, err := f.svc.RecordProviderState(context.Background(), transaction.ID, transaction.Reference, models.TxDone)
	require.NoError(t, err)

	assert.Equal(t, models.PaymentPaid, got.PaymentStatus)
	assert.Equal(t, models.StateConfirm, got.Status, "a completed payment confirms the application")
	assert.Equal(t, transaction.Reference, got.PaymentReference)
	require.NotNil(t, got.PaymentDate)
	assert.Equal(t, f.now, *got.PaymentDate, "payment date comes from the provider state change")

	paidInvoice, err := f.invoices.GetByID(context.Background(), invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoicePaid, paidInvoice.State)
}

func TestReconcileDoneIsIdempotent(t *testing.T) {
	f := newPaymentFixture(t)
	a := f.seedAdmission(t, nil)

	transaction, _, err := f.svc.CreateTransaction(context.Background(), a.ID, 1)
	require.NoError(t, err)

	first, err := f.svc.RecordProviderState(context.Background(), transaction.ID, transaction.Reference, models.TxDone)
	require.NoError(t, err)
	require.NotNil(t, first.PaymentDate)

	second, err := f.svc.Reconcile(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, second.PaymentStatus)
	assert.Equal(t, first.PaymentDate, second.PaymentDate)
	assert.Equal(t, first.PaymentReference, second.PaymentReference)
}

func TestRecordProviderStateCancelledReopensFee(t *testing.T) {
	f := newPaymentFixture(t)
	a := f.seedAdmission(t, nil)

	transaction, _, err := f.svc.CreateTransaction(context.Background(), a.ID, 1)
	require.NoError(t, err)

	paid, err := f.svc.RecordProviderState(context.Background(), transaction.ID, transaction.Reference, models.TxDone)
	require.NoError(t, err)
	require.Equal(t, models.PaymentPaid, paid.PaymentStatus)

	reopened, err := f.svc.RecordProviderState(context.Background(), transaction.ID, transaction.Reference, models.TxCancelled)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentUnpaid, reopened.PaymentStatus)
	assert.Nil(t, reopened.PaymentDate)
	assert.Empty(t, reopened.PaymentReference)
}

func TestReconcileLeavesAdmissionAloneForOpenStates(t *testing.T) {
	for _, state := range []models.TransactionState{models.TxPending, models.TxAuthorized, models.TxError} {
		t.Run(string(state), func(t *testing.T) {
			f := newPaymentFixture(t)
			a := f.seedAdmission(t, nil)

			transaction, _, err := f.svc.CreateTransaction(context.Background(), a.ID, 1)
			require.NoError(t, err)

			got, err := f.svc.RecordProviderState(context.Background(), transaction.ID, transaction.Reference, state)
			require.NoError(t, err)
			assert.Equal(t, models.PaymentUnpaid, got.PaymentStatus)
			assert.Equal(t, models.StateSubmit, got.Status)
			assert.Nil(t, got.PaymentDate)
		})
	}
}

func TestRecordProviderStateUnknownTransaction(t *testing.T) {
	f := newPaymentFixture(t)

	_, err := f.svc.RecordProviderState(context.Background(), 404, "TX-unknown", models.TxDone)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrResourceNotFound))
}

func TestRecordProviderStateRejectsWrongReference(t *testing.T) {
	f := newPaymentFixture(t)
	a := f.seedAdmission(t, nil)

	transaction, _, err := f.svc.CreateTransaction(context.Background(), a.ID, 1)
	require.NoError(t, err)

	_, err = f.svc.RecordProviderState(context.Background(), transaction.ID, "TX-guessed", models.TxDone)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrAccessDenied))

	stored, err := f.admissions.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentUnpaid, stored.PaymentStatus, "a forged callback must not mark the fee paid")
	assert.Equal(t, models.StateSubmit, stored.Status)
}

func TestCreateTransactionForApplicant(t *testing.T) {
	f := newPaymentFixture(t)
	a := f.seedAdmission(t, func(a *models.Admission) { a.AccessToken = "applicant-token" })

	transaction, provider, err := f.svc.CreateTransactionForApplicant(context.Background(), a.ID, 1, "applicant-token")
	require.NoError(t, err)
	assert.Equal(t, "manual", provider.Code)
	assert.True(t, decimal.NewFromInt(150).Equal(transaction.Amount))

	_, _, err = f.svc.CreateTransactionForApplicant(context.Background(), a.ID, 1, "wrong-token")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrAccessDenied))
}
