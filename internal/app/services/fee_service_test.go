package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edafa/admissions/internal/app/models"
)

func feeFixtures() (*fakeProductStore, *fakeAcademicStore, *FeeService) {
	products := &fakeProductStore{products: []*models.Product{
		{ID: 1, Name: "CS Application Fee", ListPrice: decimal.NewFromInt(200), Active: true},
		{ID: 2, Name: "Cycle Fee", ListPrice: decimal.NewFromInt(120), Active: true},
	}}
	courseFee := decimal.NewFromInt(75)
	academic := &fakeAcademicStore{courses: []*models.Course{
		{ID: 10, DepartmentID: 1, Name: "Computer Science", ApplicationFee: &courseFee, Active: true},
		{ID: 11, DepartmentID: 1, Name: "Mathematics", Active: true},
	}}
	svc := NewFeeService(products, academic, decimal.NewFromInt(50), "USD")
	return products, academic, svc
}

func TestComputeFeePrecedence(t *testing.T) {
	_, _, svc := feeFixtures()

	lineProduct := int64(1)
	cycleProduct := int64(2)
	course := int64(10)
	bareCourse := int64(11)

	tests := []struct {
		name     string
		cycle    *models.AdmissionCycle
		courseID *int64
		want     decimal.Decimal
	}{
		{
			name: "program cycle fee line product wins",
			cycle: &models.AdmissionCycle{
				Scope:     models.ScopeProgram,
				ProductID: &cycleProduct,
				FeeLines:  []models.CycleFeeLine{{CourseID: course, ProductID: &lineProduct}},
			},
			courseID: &course,
			want:     decimal.NewFromInt(200),
		},
		{
			name: "cycle product used when no fee line matches",
			cycle: &models.AdmissionCycle{
				Scope:     models.ScopeProgram,
				ProductID: &cycleProduct,
				FeeLines:  []models.CycleFeeLine{{CourseID: 99, ProductID: &lineProduct}},
			},
			courseID: &course,
			want:     decimal.NewFromInt(120),
		},
		{
			name:     "course application fee when cycle has no product",
			cycle:    &models.AdmissionCycle{Scope: models.ScopeCourse},
			courseID: &course,
			want:     decimal.NewFromInt(75),
		},
		{
			name:     "configured default when course has no fee",
			cycle:    &models.AdmissionCycle{Scope: models.ScopeCourse},
			courseID: &bareCourse,
			want:     decimal.NewFromInt(50),
		},
		{
			name:  "configured default when nothing is selected",
			cycle: &models.AdmissionCycle{Scope: models.ScopeProgram},
			want:  decimal.NewFromInt(50),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fee, err := svc.ComputeFee(context.Background(), tt.cycle, tt.courseID)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(fee), "want %s, got %s", tt.want, fee)
		})
	}
}

func TestComputeFeeUnknownCourseFallsBackToDefault(t *testing.T) {
	_, _, svc := feeFixtures()

	missing := int64(404)
	fee, err := svc.ComputeFee(context.Background(), &models.AdmissionCycle{Scope: models.ScopeCourse}, &missing)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(50).Equal(fee))
}

func TestFeeProductID(t *testing.T) {
	_, _, svc := feeFixtures()

	lineProduct := int64(1)
	cycleProduct := int64(2)
	course := int64(10)

	programCycle := &models.AdmissionCycle{
		Scope:     models.ScopeProgram,
		ProductID: &cycleProduct,
		FeeLines:  []models.CycleFeeLine{{CourseID: course, ProductID: &lineProduct}},
	}
	got := svc.FeeProductID(programCycle, &course)
	require.NotNil(t, got)
	assert.Equal(t, lineProduct, *got)

	courseCycle := &models.AdmissionCycle{Scope: models.ScopeCourse, ProductID: &cycleProduct}
	got = svc.FeeProductID(courseCycle, &course)
	require.NotNil(t, got)
	assert.Equal(t, cycleProduct, *got)

	assert.Nil(t, svc.FeeProductID(&models.AdmissionCycle{Scope: models.ScopeCourse}, &course))
}
