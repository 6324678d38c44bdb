package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Department groups programs and courses. The top of the selection cascade
// on the application form.
type Department struct {
	ID     int64  `json:"id" db:"id"`
	Name   string `json:"name" db:"name"`
	Code   string `json:"code" db:"code"`
	Active bool   `json:"active" db:"active"`
}

// Program is an academic program inside a department.
type Program struct {
	ID           int64  `json:"id" db:"id"`
	DepartmentID int64  `json:"departmentId" db:"department_id"`
	Name         string `json:"name" db:"name"`
	Code         string `json:"code" db:"code"`
	Active       bool   `json:"active" db:"active"`
}

// Course is a sellable course. ApplicationFee, when set, is the course-level
// fallback used by the fee calculator; the unit-load bounds are copied onto
// subject registrations at enrollment.
type Course struct {
	ID             int64            `json:"id" db:"id"`
	DepartmentID   int64            `json:"departmentId" db:"department_id"`
	ProgramID      *int64           `json:"programId,omitempty" db:"program_id"`
	Name           string           `json:"name" db:"name"`
	Code           string           `json:"code" db:"code"`
	FeesTermID     *int64           `json:"feesTermId,omitempty" db:"fees_term_id"`
	ApplicationFee *decimal.Decimal `json:"applicationFee,omitempty" db:"application_fee"`
	MinUnitLoad    decimal.Decimal  `json:"minUnitLoad" db:"min_unit_load"`
	MaxUnitLoad    decimal.Decimal  `json:"maxUnitLoad" db:"max_unit_load"`
	Active         bool             `json:"active" db:"active"`
}

// Batch is a scheduled run of a course.
type Batch struct {
	ID        int64      `json:"id" db:"id"`
	CourseID  int64      `json:"courseId" db:"course_id"`
	Name      string     `json:"name" db:"name"`
	StartDate time.Time  `json:"startDate" db:"start_date"`
	EndDate   *time.Time `json:"endDate,omitempty" db:"end_date"`
	Active    bool       `json:"active" db:"active"`
}
