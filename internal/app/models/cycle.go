package models

import "time"

// CycleScope distinguishes course-based cycles (one course, one fee) from
// program-based cycles (a fee line per course).
type CycleScope string

const (
	ScopeCourse  CycleScope = "course"
	ScopeProgram CycleScope = "program"
)

// CycleState tracks where an admissions window is in its own lifecycle.
type CycleState string

const (
	CycleApplication CycleState = "application"
	CycleConfirm     CycleState = "confirm"
	CycleDone        CycleState = "done"
)

// AdmissionCycle is a time-boxed admissions window with capacity bounds and
// fee configuration. Applications must be dated inside [StartDate, EndDate];
// a nil EndDate leaves the window open-ended.
type AdmissionCycle struct {
	ID             int64      `json:"id" db:"id"`
	Name           string     `json:"name" db:"name"`
	StartDate      time.Time  `json:"startDate" db:"start_date"`
	EndDate        *time.Time `json:"endDate,omitempty" db:"end_date"`
	MinCount       int        `json:"minCount" db:"min_count"`
	MaxCount       int        `json:"maxCount" db:"max_count"`
	MinimumAge     int        `json:"minimumAge" db:"minimum_age"`
	Scope          CycleScope `json:"scope" db:"scope"`
	ProductID      *int64     `json:"productId,omitempty" db:"product_id"`
	CourseID       *int64     `json:"courseId,omitempty" db:"course_id"`
	ProgramID      *int64     `json:"programId,omitempty" db:"program_id"`
	AcademicYearID *int64     `json:"academicYearId,omitempty" db:"academic_year_id"`
	AcademicTermID *int64     `json:"academicTermId,omitempty" db:"academic_term_id"`
	State          CycleState `json:"state" db:"state"`
	Active         bool       `json:"active" db:"active"`

	// FeeLines carries the per-course fee configuration of a program-scoped
	// cycle. Empty for course-scoped cycles.
	FeeLines []CycleFeeLine `json:"feeLines,omitempty"`

	Product *Product `json:"product,omitempty"`
}

// CycleFeeLine maps one course of a program-scoped cycle to its fee product.
type CycleFeeLine struct {
	ID        int64  `json:"id" db:"id"`
	CycleID   int64  `json:"cycleId" db:"cycle_id"`
	CourseID  int64  `json:"courseId" db:"course_id"`
	ProductID *int64 `json:"productId,omitempty" db:"product_id"`

	Product *Product `json:"product,omitempty"`
}

// IsOpenAt reports whether the cycle accepts applications dated at t.
func (c *AdmissionCycle) IsOpenAt(t time.Time) bool {
	if t.Before(c.StartDate) {
		return false
	}
	if c.EndDate != nil && t.After(*c.EndDate) {
		return false
	}
	return true
}

// CourseIDs derives the selectable courses for this cycle: all distinct
// courses referenced by the fee lines when program-scoped, or the cycle's
// single course when course-scoped.
func (c *AdmissionCycle) CourseIDs() []int64 {
	if c.Scope == ScopeProgram {
		seen := make(map[int64]bool)
		var ids []int64
		for _, line := range c.FeeLines {
			if !seen[line.CourseID] {
				seen[line.CourseID] = true
				ids = append(ids, line.CourseID)
			}
		}
		return ids
	}
	if c.CourseID != nil {
		return []int64{*c.CourseID}
	}
	return nil
}
