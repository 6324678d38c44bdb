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

type invoiceFixture struct {
	svc        *InvoiceService
	admissions *fakeAdmissionStore
	cycles     *fakeCycleStore
	products   *fakeProductStore
	invoices   *fakeInvoiceStore
	now        time.Time
}

func newInvoiceFixture(t *testing.T) *invoiceFixture {
	t.Helper()

	now := time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC)
	incomeAccount := int64(4000)
	productID := int64(1)

	f := &invoiceFixture{
		admissions: &fakeAdmissionStore{},
		cycles: &fakeCycleStore{cycles: []*models.AdmissionCycle{{
			ID:        1,
			Name:      "Fall 2026",
			Scope:     models.ScopeCourse,
			ProductID: &productID,
			State:     models.CycleApplication,
			Active:    true,
		}}},
		products: &fakeProductStore{products: []*models.Product{{
			ID:              1,
			Name:            "Fall Application Fee",
			Type:            "service",
			ListPrice:       decimal.NewFromInt(150),
			TaxRate:         decimal.NewFromFloat(7.5),
			IncomeAccountID: &incomeAccount,
			Active:          true,
		}}},
		invoices: &fakeInvoiceStore{},
		now:      now,
	}

	academic := &fakeAcademicStore{}
	fees := NewFeeService(f.products, academic, decimal.NewFromInt(50), "USD")
	f.svc = NewInvoiceService(
		f.invoices, f.admissions, f.cycles, f.products, &fakeSequenceStore{},
		fees, &fakeTx{}, zerolog.Nop(),
	)
	f.svc.now = func() time.Time { return now }
	return f
}

func (f *invoiceFixture) seedAdmission(t *testing.T, mutate func(a *models.Admission)) *models.Admission {
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
		PaymentStatus:     models.PaymentNone,
		Active:            true,
	}
	if mutate != nil {
		mutate(a)
	}
	require.NoError(t, f.admissions.Create(context.Background(), a))
	return a
}

func TestIssueInvoice(t *testing.T) {
	f := newInvoiceFixture(t)
	a := f.seedAdmission(t, nil)

	inv, err := f.svc.IssueInvoice(context.Background(), a.ID)
	require.NoError(t, err)

	assert.Equal(t, "INV00001", inv.Number)
	assert.Equal(t, models.InvoicePosted, inv.State)
	assert.Equal(t, a.ID, inv.AdmissionID)
	assert.Equal(t, "USD", inv.Currency)
	require.Len(t, inv.Lines, 1)

	line := inv.Lines[0]
	assert.Equal(t, int64(1), line.ProductID)
	assert.Equal(t, int64(4000), line.AccountID)
	assert.Equal(t, "Fall Application Fee: ADM00001", line.Description)
	assert.True(t, decimal.NewFromInt(1).Equal(line.Quantity))
	assert.True(t, decimal.NewFromInt(150).Equal(line.UnitPrice), "line bills the frozen fee, not the list price")

	assert.True(t, decimal.NewFromInt(150).Equal(inv.AmountUntaxed))
	assert.True(t, decimal.NewFromFloat(11.25).Equal(inv.AmountTax))
	assert.True(t, decimal.NewFromFloat(161.25).Equal(inv.AmountTotal))

	stored, err := f.admissions.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.InvoiceID)
	assert.Equal(t, inv.ID, *stored.InvoiceID)
	assert.Equal(t, models.PaymentUnpaid, stored.PaymentStatus, "issuing opens the fee as unpaid")
}

func TestIssueInvoiceGuards(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(a *models.Admission)
		wantErr error
	}{
		{
			name: "invoice already exists",
			mutate: func(a *models.Admission) {
				existing := int64(9)
				a.InvoiceID = &existing
			},
			wantErr: apperrors.ErrInvoiceExists,
		},
		{
			name:    "no person to bill",
			mutate:  func(a *models.Admission) { a.PersonID = nil },
			wantErr: apperrors.ErrConfiguration,
		},
		{
			name:    "zero fee",
			mutate:  func(a *models.Admission) { a.Fee = decimal.Zero },
			wantErr: apperrors.ErrNonPositiveFee,
		},
		{
			name:    "negative fee",
			mutate:  func(a *models.Admission) { a.Fee = decimal.NewFromInt(-10) },
			wantErr: apperrors.ErrNonPositiveFee,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newInvoiceFixture(t)
			a := f.seedAdmission(t, tt.mutate)

			_, err := f.svc.IssueInvoice(context.Background(), a.ID)
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, tt.wantErr), "want %v, got %v", tt.wantErr, err)
			assert.Empty(t, f.invoices.invoices)
		})
	}
}

func TestIssueInvoiceUnknownAdmission(t *testing.T) {
	f := newInvoiceFixture(t)

	_, err := f.svc.IssueInvoice(context.Background(), 404)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrAdmissionNotFound))
}

func TestIssueInvoiceIncomeAccountFromCategory(t *testing.T) {
	f := newInvoiceFixture(t)
	categoryAccount := int64(4100)
	f.products.products[0].IncomeAccountID = nil
	f.products.products[0].Category = &models.ProductCategory{ID: 1, Name: "Fees", IncomeAccountID: &categoryAccount}
	a := f.seedAdmission(t, nil)

	inv, err := f.svc.IssueInvoice(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, categoryAccount, inv.Lines[0].AccountID)
}

func TestIssueInvoiceNoIncomeAccountAnywhere(t *testing.T) {
	f := newInvoiceFixture(t)
	f.products.products[0].IncomeAccountID = nil
	a := f.seedAdmission(t, nil)

	_, err := f.svc.IssueInvoice(context.Background(), a.ID)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrConfiguration))
}

func TestIssueInvoiceFallbackProduct(t *testing.T) {
	f := newInvoiceFixture(t)
	f.cycles.cycles[0].ProductID = nil
	incomeAccount := int64(4200)
	require.NoError(t, f.products.Create(context.Background(), &models.Product{
		Name:            fallbackFeeProductName,
		Type:            fallbackFeeProductType,
		ListPrice:       fallbackFeeProductPrice,
		IncomeAccountID: &incomeAccount,
		Active:          true,
	}))
	a := f.seedAdmission(t, nil)

	inv, err := f.svc.IssueInvoice(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Application Processing Fee: ADM00001", inv.Lines[0].Description)
	assert.True(t, decimal.NewFromInt(150).Equal(inv.Lines[0].UnitPrice), "fallback product never changes the frozen fee")
}

func TestIssueInvoiceCreatesFallbackProduct(t *testing.T) {
	f := newInvoiceFixture(t)
	f.cycles.cycles[0].ProductID = nil
	f.products.products = nil
	a := f.seedAdmission(t, nil)

	// The freshly created fallback product carries no income account yet, so
	// issuing stops with a configuration error until one is assigned.
	_, err := f.svc.IssueInvoice(context.Background(), a.ID)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrConfiguration))

	created, err := f.products.FindByName(context.Background(), fallbackFeeProductName)
	require.NoError(t, err)
	assert.Equal(t, fallbackFeeProductType, created.Type)
	assert.True(t, fallbackFeeProductPrice.Equal(created.ListPrice))
}

func TestGetInvoiceByAdmissionID(t *testing.T) {
	f := newInvoiceFixture(t)
	a := f.seedAdmission(t, nil)

	issued, err := f.svc.IssueInvoice(context.Background(), a.ID)
	require.NoError(t, err)

	got, err := f.svc.GetByAdmissionID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, issued.ID, got.ID)

	_, err = f.svc.GetByAdmissionID(context.Background(), 404)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrResourceNotFound))
}
