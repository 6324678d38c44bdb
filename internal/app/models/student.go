package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Student is the enrolled-learner record produced by a successful admission.
// The person reference carries contact data; course details accumulate one
// entry per enrollment event.
type Student struct {
	ID                 int64      `json:"id" db:"id"`
	PersonID           int64      `json:"personId" db:"person_id"`
	UserID             *int64     `json:"userId,omitempty" db:"user_id"`
	RegistrationNumber string     `json:"registrationNumber" db:"registration_number"`
	FirstName          string     `json:"firstName" db:"first_name"`
	MiddleName         string     `json:"middleName,omitempty" db:"middle_name"`
	LastName           string     `json:"lastName" db:"last_name"`
	BirthDate          *time.Time `json:"birthDate,omitempty" db:"birth_date"`
	Gender             string     `json:"gender,omitempty" db:"gender"`
	Active             bool       `json:"active" db:"active"`

	Person        *Person         `json:"person,omitempty"`
	CourseDetails []CourseDetail  `json:"courseDetails,omitempty"`
	FeeDues       []StudentFeeDue `json:"feeDues,omitempty"`
}

// CourseDetail is one course/batch assignment of a student, created at
// enrollment time and ordered by creation.
type CourseDetail struct {
	ID             int64      `json:"id" db:"id"`
	StudentID      int64      `json:"studentId" db:"student_id"`
	CourseID       int64      `json:"courseId" db:"course_id"`
	BatchID        *int64     `json:"batchId,omitempty" db:"batch_id"`
	AcademicYearID *int64     `json:"academicYearId,omitempty" db:"academic_year_id"`
	AcademicTermID *int64     `json:"academicTermId,omitempty" db:"academic_term_id"`
	FeesTermID     *int64     `json:"feesTermId,omitempty" db:"fees_term_id"`
	FeesStartDate  *time.Time `json:"feesStartDate,omitempty" db:"fees_start_date"`
	ProductID      *int64     `json:"productId,omitempty" db:"product_id"`
	State          string     `json:"state" db:"state"`
}

// Course detail states
const (
	CourseDetailRunning  = "running"
	CourseDetailFinished = "finished"
)

// StudentFeeDue is one scheduled fee installment generated from a fee term.
type StudentFeeDue struct {
	ID         int64           `json:"id" db:"id"`
	StudentID  int64           `json:"studentId" db:"student_id"`
	FeeLineID  int64           `json:"feeLineId" db:"fee_line_id"`
	Amount     decimal.Decimal `json:"amount" db:"amount"`
	Percentage decimal.Decimal `json:"percentage" db:"percentage"`
	DueDate    time.Time       `json:"dueDate" db:"due_date"`
	ProductID  *int64          `json:"productId,omitempty" db:"product_id"`
	CourseID   *int64          `json:"courseId,omitempty" db:"course_id"`
	BatchID    *int64          `json:"batchId,omitempty" db:"batch_id"`
	Discount   decimal.Decimal `json:"discount" db:"discount"`
	State      string          `json:"state" db:"state"`
}

// Fee due states
const (
	FeeDueDraft     = "draft"
	FeeDueInvoiced  = "invoiced"
	FeeDueCancelled = "cancel"
)

// SubjectRegistration records a student's registration window for a
// course/batch with the credit-load bounds copied from the course.
type SubjectRegistration struct {
	ID          int64           `json:"id" db:"id"`
	StudentID   int64           `json:"studentId" db:"student_id"`
	CourseID    int64           `json:"courseId" db:"course_id"`
	BatchID     *int64          `json:"batchId,omitempty" db:"batch_id"`
	MinUnitLoad decimal.Decimal `json:"minUnitLoad" db:"min_unit_load"`
	MaxUnitLoad decimal.Decimal `json:"maxUnitLoad" db:"max_unit_load"`
	State       string          `json:"state" db:"state"`
}
