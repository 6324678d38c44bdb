package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/edafa/admissions/internal/app/models"
	"github.com/edafa/admissions/internal/app/repositories"
)

// FeeService computes the application fee for a cycle and course selection.
// The computed fee is frozen onto the admission at submission time; later
// price changes never affect an existing application.
type FeeService struct {
	productStore ProductStore
	academic     AcademicStore
	defaultFee   decimal.Decimal
	currency     string
}

// NewFeeService creates a new fee service instance. defaultFee is the
// configured fallback used when neither the cycle nor the course carries fee
// configuration.
func NewFeeService(productStore ProductStore, academic AcademicStore, defaultFee decimal.Decimal, currency string) *FeeService {
	return &FeeService{
		productStore: productStore,
		academic:     academic,
		defaultFee:   defaultFee,
		currency:     currency,
	}
}

// Currency returns the configured fee currency
func (s *FeeService) Currency() string {
	return s.currency
}

// ComputeFee resolves the application fee for courseID under the given cycle.
// Precedence: the cycle's per-course fee line product, then the cycle's own
// product, then the course's application fee, then the configured default.
func (s *FeeService) ComputeFee(ctx context.Context, cycle *models.AdmissionCycle, courseID *int64) (decimal.Decimal, error) {
	// Program-scoped cycles price per course through fee lines
	if cycle.Scope == models.ScopeProgram && courseID != nil {
		for _, line := range cycle.FeeLines {
			if line.CourseID == *courseID && line.ProductID != nil {
				price, err := s.productPrice(ctx, *line.ProductID)
				if err != nil {
					return decimal.Zero, err
				}
				return price, nil
			}
		}
	}

	if cycle.ProductID != nil {
		price, err := s.productPrice(ctx, *cycle.ProductID)
		if err != nil {
			return decimal.Zero, err
		}
		return price, nil
	}

	if courseID != nil {
		course, err := s.academic.GetCourseByID(ctx, *courseID)
		if err != nil {
			if errors.Is(err, repositories.ErrCourseNotFound) {
				return s.defaultFee, nil
			}
			return decimal.Zero, fmt.Errorf("error loading course for fee: %w", err)
		}
		if course.ApplicationFee != nil {
			return *course.ApplicationFee, nil
		}
	}

	return s.defaultFee, nil
}

func (s *FeeService) productPrice(ctx context.Context, productID int64) (decimal.Decimal, error) {
	product, err := s.productStore.GetByID(ctx, productID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("error loading fee product: %w", err)
	}
	return product.ListPrice, nil
}

// FeeProductID resolves the product the invoice line should bill against,
// using the same precedence as ComputeFee. Returns nil when neither the
// cycle's fee lines nor the cycle itself names a product.
func (s *FeeService) FeeProductID(cycle *models.AdmissionCycle, courseID *int64) *int64 {
	if cycle.Scope == models.ScopeProgram && courseID != nil {
		for _, line := range cycle.FeeLines {
			if line.CourseID == *courseID && line.ProductID != nil {
				return line.ProductID
			}
		}
	}
	return cycle.ProductID
}
