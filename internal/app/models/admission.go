package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdmissionState represents the lifecycle state of an application
type AdmissionState string

const (
	StateDraft     AdmissionState = "draft"
	StateSubmit    AdmissionState = "submit"
	StateConfirm   AdmissionState = "confirm"
	StateAdmission AdmissionState = "admission"
	StateReject    AdmissionState = "reject"
	StatePending   AdmissionState = "pending"
	StateCancel    AdmissionState = "cancel"
	StateDone      AdmissionState = "done"
	// StateFeesPaid is a legacy marker kept for records migrated from the
	// old fee workflow.
	StateFeesPaid AdmissionState = "fees_paid"
)

// stateTransitions lists the legal target states for each source state.
// Terminal states (done, reject, cancel) have no outgoing transitions.
var stateTransitions = map[AdmissionState][]AdmissionState{
	StateDraft:     {StateSubmit, StateCancel},
	StateSubmit:    {StateConfirm, StateReject, StatePending, StateCancel, StateDraft, StateFeesPaid},
	StateConfirm:   {StateAdmission, StateDone, StateReject, StatePending, StateCancel},
	StateAdmission: {StateDone, StateReject, StatePending, StateCancel},
	StatePending:   {StateConfirm, StateReject, StateCancel, StateDraft},
	StateFeesPaid:  {StateConfirm, StateAdmission, StateDone, StateCancel},
}

// CanTransitionTo reports whether moving from s to target is a legal transition.
func (s AdmissionState) CanTransitionTo(target AdmissionState) bool {
	for _, t := range stateTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed from s.
func (s AdmissionState) IsTerminal() bool {
	return len(stateTransitions[s]) == 0
}

// PaymentStatus represents how far fee collection has progressed.
type PaymentStatus string

const (
	PaymentNone     PaymentStatus = "none"
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPartial  PaymentStatus = "partial"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

// paymentOrder defines the forward-only progression of payment statuses.
var paymentOrder = map[PaymentStatus]int{
	PaymentNone:     0,
	PaymentUnpaid:   1,
	PaymentPartial:  2,
	PaymentPaid:     3,
	PaymentRefunded: 4,
}

// CanAdvanceTo reports whether the payment status may move from p to target.
// Statuses only progress forward; the single sanctioned regression is
// paid -> unpaid when a payment transaction is cancelled.
func (p PaymentStatus) CanAdvanceTo(target PaymentStatus, viaCancellation bool) bool {
	if p == target {
		return true
	}
	if paymentOrder[target] > paymentOrder[p] {
		return true
	}
	return viaCancellation && p == PaymentPaid && target == PaymentUnpaid
}

// Gender values accepted on an application
const (
	GenderMale   = "m"
	GenderFemale = "f"
	GenderOther  = "o"
)

// Admission is an applicant's in-progress application. One row per submitted
// form; it owns all application fields explicitly rather than spreading them
// over partial extension records.
type Admission struct {
	ID                int64           `json:"id" db:"id"`
	ApplicationNumber string          `json:"applicationNumber" db:"application_number"`
	FirstName         string          `json:"firstName" db:"first_name"`
	MiddleName        string          `json:"middleName,omitempty" db:"middle_name"`
	LastName          string          `json:"lastName" db:"last_name"`
	Name              string          `json:"name" db:"name"`
	Title             string          `json:"title,omitempty" db:"title"`
	BirthDate         time.Time       `json:"birthDate" db:"birth_date"`
	Gender            string          `json:"gender" db:"gender"`
	Email             string          `json:"email" db:"email"`
	Phone             string          `json:"phone,omitempty" db:"phone"`
	Mobile            string          `json:"mobile,omitempty" db:"mobile"`
	Street            string          `json:"street,omitempty" db:"street"`
	Street2           string          `json:"street2,omitempty" db:"street2"`
	City              string          `json:"city,omitempty" db:"city"`
	Zip               string          `json:"zip,omitempty" db:"zip"`
	Country           string          `json:"country,omitempty" db:"country"`
	PhotoPath         string          `json:"photoPath,omitempty" db:"photo_path"`
	PrevInstitute     string          `json:"prevInstitute,omitempty" db:"prev_institute"`
	PrevCourse        string          `json:"prevCourse,omitempty" db:"prev_course"`
	PrevResult        string          `json:"prevResult,omitempty" db:"prev_result"`
	FamilyBusiness    string          `json:"familyBusiness,omitempty" db:"family_business"`
	FamilyIncome      decimal.Decimal `json:"familyIncome" db:"family_income"`
	DepartmentID      *int64          `json:"departmentId,omitempty" db:"department_id"`
	ProgramID         *int64          `json:"programId,omitempty" db:"program_id"`
	CourseID          *int64          `json:"courseId,omitempty" db:"course_id"`
	BatchID           *int64          `json:"batchId,omitempty" db:"batch_id"`
	CycleID           int64           `json:"cycleId" db:"cycle_id"`
	PersonID          *int64          `json:"personId,omitempty" db:"person_id"`
	StudentID         *int64          `json:"studentId,omitempty" db:"student_id"`
	InvoiceID         *int64          `json:"invoiceId,omitempty" db:"invoice_id"`
	TransactionID     *int64          `json:"transactionId,omitempty" db:"transaction_id"`
	FeesTermID        *int64          `json:"feesTermId,omitempty" db:"fees_term_id"`
	FeesStartDate     *time.Time      `json:"feesStartDate,omitempty" db:"fees_start_date"`
	Fee               decimal.Decimal `json:"fee" db:"fee"`
	Currency          string          `json:"currency" db:"currency"`
	Discount          decimal.Decimal `json:"discount" db:"discount"`
	PaymentStatus     PaymentStatus   `json:"paymentStatus" db:"payment_status"`
	PaymentDate       *time.Time      `json:"paymentDate,omitempty" db:"payment_date"`
	PaymentReference  string          `json:"paymentReference,omitempty" db:"payment_reference"`
	Status            AdmissionState  `json:"status" db:"status"`
	AccessToken       string          `json:"-" db:"access_token"`
	ApplicationDate   time.Time       `json:"applicationDate" db:"application_date"`
	AdmissionDate     *time.Time      `json:"admissionDate,omitempty" db:"admission_date"`
	IsStudent         bool            `json:"isStudent" db:"is_student"`
	Active            bool            `json:"active" db:"active"`

	// Relations (populated when needed)
	Cycle       *AdmissionCycle     `json:"cycle,omitempty"`
	Course      *Course             `json:"course,omitempty"`
	Person      *Person             `json:"person,omitempty"`
	Invoice     *Invoice            `json:"invoice,omitempty"`
	Transaction *PaymentTransaction `json:"transaction,omitempty"`
}

// FullName assembles the display name from the name parts, skipping an
// absent middle name.
func FullName(first, middle, last string) string {
	if middle == "" {
		return first + " " + last
	}
	return first + " " + middle + " " + last
}

// AgeInYears computes the applicant age as whole years using the day-count
// convention (days since birth divided by 365).
func AgeInYears(birthDate, at time.Time) int {
	days := int(at.Sub(birthDate).Hours() / 24)
	return days / 365
}
