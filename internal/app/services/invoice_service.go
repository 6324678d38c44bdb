package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/edafa/admissions/internal/app/models"
	"github.com/edafa/admissions/internal/app/repositories"
	"github.com/edafa/admissions/internal/pkg/apperrors"
)

// Fallback product used when neither the cycle nor its fee lines name one
const (
	fallbackFeeProductName = "Application Processing Fee"
	fallbackFeeProductType = "service"
)

var fallbackFeeProductPrice = decimal.NewFromInt(50)

// InvoiceService issues the application fee invoice for an admission.
type InvoiceService struct {
	invoiceStore   InvoiceStore
	admissionStore AdmissionStore
	cycleStore     CycleStore
	productStore   ProductStore
	sequences      SequenceStore
	fees           *FeeService
	tx             TxRunner
	logger         zerolog.Logger
	now            func() time.Time
}

// NewInvoiceService creates a new invoice service instance
func NewInvoiceService(
	invoiceStore InvoiceStore,
	admissionStore AdmissionStore,
	cycleStore CycleStore,
	productStore ProductStore,
	sequences SequenceStore,
	fees *FeeService,
	tx TxRunner,
	logger zerolog.Logger,
) *InvoiceService {
	return &InvoiceService{
		invoiceStore:   invoiceStore,
		admissionStore: admissionStore,
		cycleStore:     cycleStore,
		productStore:   productStore,
		sequences:      sequences,
		fees:           fees,
		tx:             tx,
		logger:         logger,
		now:            time.Now,
	}
}

// IssueInvoice raises the fee invoice for an admission. At most one invoice
// ever exists per admission; issuing moves the payment status to unpaid.
func (s *InvoiceService) IssueInvoice(ctx context.Context, admissionID int64) (*models.Invoice, error) {
	admission, err := s.admissionStore.GetByID(ctx, admissionID)
	if err != nil {
		if errors.Is(err, repositories.ErrAdmissionNotFound) {
			return nil, apperrors.ErrAdmissionNotFound
		}
		return nil, err
	}

	if admission.InvoiceID != nil {
		return nil, apperrors.ErrInvoiceExists
	}
	if admission.PersonID == nil {
		return nil, apperrors.NewCustomError(apperrors.ErrConfiguration,
			"admission has no person record to bill")
	}
	if !admission.Fee.IsPositive() {
		return nil, apperrors.ErrNonPositiveFee
	}

	cycle, err := s.cycleStore.GetByID(ctx, admission.CycleID)
	if err != nil {
		return nil, fmt.Errorf("error loading admission cycle: %w", err)
	}

	product, err := s.resolveFeeProduct(ctx, cycle, admission.CourseID)
	if err != nil {
		return nil, err
	}

	accountID, err := resolveIncomeAccount(product)
	if err != nil {
		return nil, err
	}

	invoice := &models.Invoice{
		AdmissionID: admission.ID,
		PersonID:    *admission.PersonID,
		InvoiceDate: s.now(),
		Currency:    admission.Currency,
		State:       models.InvoicePosted,
		Lines: []models.InvoiceLine{{
			ProductID:   product.ID,
			Description: fmt.Sprintf("%s: %s", product.Name, admission.ApplicationNumber),
			AccountID:   accountID,
			Quantity:    decimal.NewFromInt(1),
			UnitPrice:   admission.Fee,
			TaxRate:     product.TaxRate,
		}},
	}
	invoice.ComputeTaxTotals()

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		number, err := s.sequences.NextNumber(ctx, repositories.SequenceInvoice)
		if err != nil {
			return fmt.Errorf("error assigning invoice number: %w", err)
		}
		invoice.Number = number

		if err := s.invoiceStore.Create(ctx, invoice); err != nil {
			if errors.Is(err, repositories.ErrInvoiceAlreadyExists) {
				return apperrors.ErrInvoiceExists
			}
			return err
		}
		if err := s.admissionStore.SetInvoice(ctx, admission.ID, invoice.ID); err != nil {
			return err
		}

		if admission.PaymentStatus.CanAdvanceTo(models.PaymentUnpaid, false) {
			admission.PaymentStatus = models.PaymentUnpaid
			if err := s.admissionStore.SetPaymentResult(ctx, admission); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("admissionId", admission.ID).Str("invoiceNumber", invoice.Number).
		Str("amount", invoice.AmountTotal.String()).Msg("Application fee invoice issued")
	return invoice, nil
}

// GetByAdmissionID returns the invoice raised for an admission
func (s *InvoiceService) GetByAdmissionID(ctx context.Context, admissionID int64) (*models.Invoice, error) {
	inv, err := s.invoiceStore.GetByAdmissionID(ctx, admissionID)
	if err != nil {
		if errors.Is(err, repositories.ErrInvoiceNotFound) {
			return nil, apperrors.NewResourceNotFoundError("no invoice exists for this admission")
		}
		return nil, err
	}
	return inv, nil
}

// resolveFeeProduct picks the product the invoice line bills against. When
// no product is configured anywhere, a shared fallback service product is
// found or created by name.
func (s *InvoiceService) resolveFeeProduct(ctx context.Context, cycle *models.AdmissionCycle, courseID *int64) (*models.Product, error) {
	if productID := s.fees.FeeProductID(cycle, courseID); productID != nil {
		product, err := s.productStore.GetByID(ctx, *productID)
		if err != nil {
			return nil, fmt.Errorf("error loading fee product: %w", err)
		}
		return product, nil
	}

	product, err := s.productStore.FindByName(ctx, fallbackFeeProductName)
	if err == nil {
		return product, nil
	}
	if !errors.Is(err, repositories.ErrProductNotFound) {
		return nil, fmt.Errorf("error looking up fallback fee product: %w", err)
	}

	product = &models.Product{
		Name:      fallbackFeeProductName,
		Type:      fallbackFeeProductType,
		ListPrice: fallbackFeeProductPrice,
		Active:    true,
	}
	if err := s.productStore.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("error creating fallback fee product: %w", err)
	}
	s.logger.Info().Int64("productId", product.ID).Msg("Created fallback application fee product")
	return product, nil
}

// resolveIncomeAccount falls back from the product's own income account to
// its category's default. No account anywhere is a configuration error.
func resolveIncomeAccount(product *models.Product) (int64, error) {
	if product.IncomeAccountID != nil {
		return *product.IncomeAccountID, nil
	}
	if product.Category != nil && product.Category.IncomeAccountID != nil {
		return *product.Category.IncomeAccountID, nil
	}
	return 0, apperrors.NewCustomError(apperrors.ErrConfiguration,
		fmt.Sprintf("product %q has no income account configured", product.Name))
}
