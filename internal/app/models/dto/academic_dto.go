package dto

import (
	"time"

	"github.com/edafa/admissions/internal/app/models"
)

// CycleResponse represents an open admissions window on the public catalog
type CycleResponse struct {
	ID         int64             `json:"id"`
	Name       string            `json:"name"`
	StartDate  time.Time         `json:"startDate"`
	EndDate    *time.Time        `json:"endDate,omitempty"`
	MinimumAge int               `json:"minimumAge"`
	Scope      models.CycleScope `json:"scope"`
	CourseIDs  []int64           `json:"courseIds,omitempty"`
}

// ToCycleResponse maps a cycle model to its public representation
func ToCycleResponse(c *models.AdmissionCycle) CycleResponse {
	return CycleResponse{
		ID:         c.ID,
		Name:       c.Name,
		StartDate:  c.StartDate,
		EndDate:    c.EndDate,
		MinimumAge: c.MinimumAge,
		Scope:      c.Scope,
		CourseIDs:  c.CourseIDs(),
	}
}

// CycleListResponse represents a list of admission cycles
type CycleListResponse struct {
	Cycles []CycleResponse `json:"cycles"`
}

// DepartmentResponse represents basic department information
type DepartmentResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// ToDepartmentResponse maps a department model to its API representation
func ToDepartmentResponse(d *models.Department) DepartmentResponse {
	return DepartmentResponse{ID: d.ID, Name: d.Name, Code: d.Code}
}

// DepartmentListResponse represents a list of departments
type DepartmentListResponse struct {
	Departments []DepartmentResponse `json:"departments"`
}

// ProgramResponse represents basic program information
type ProgramResponse struct {
	ID           int64  `json:"id"`
	DepartmentID int64  `json:"departmentId"`
	Name         string `json:"name"`
	Code         string `json:"code"`
}

// ToProgramResponse maps a program model to its API representation
func ToProgramResponse(p *models.Program) ProgramResponse {
	return ProgramResponse{ID: p.ID, DepartmentID: p.DepartmentID, Name: p.Name, Code: p.Code}
}

// ProgramListResponse represents a list of programs
type ProgramListResponse struct {
	Programs []ProgramResponse `json:"programs"`
}

// CourseResponse represents basic course information
type CourseResponse struct {
	ID           int64  `json:"id"`
	DepartmentID int64  `json:"departmentId"`
	ProgramID    *int64 `json:"programId,omitempty"`
	Name         string `json:"name"`
	Code         string `json:"code"`
}

// ToCourseResponse maps a course model to its API representation
func ToCourseResponse(c *models.Course) CourseResponse {
	return CourseResponse{ID: c.ID, DepartmentID: c.DepartmentID, ProgramID: c.ProgramID, Name: c.Name, Code: c.Code}
}

// CourseListResponse represents a list of courses
type CourseListResponse struct {
	Courses []CourseResponse `json:"courses"`
}

// BatchResponse represents basic batch information
type BatchResponse struct {
	ID        int64      `json:"id"`
	CourseID  int64      `json:"courseId"`
	Name      string     `json:"name"`
	StartDate time.Time  `json:"startDate"`
	EndDate   *time.Time `json:"endDate,omitempty"`
}

// ToBatchResponse maps a batch model to its API representation
func ToBatchResponse(b *models.Batch) BatchResponse {
	return BatchResponse{ID: b.ID, CourseID: b.CourseID, Name: b.Name, StartDate: b.StartDate, EndDate: b.EndDate}
}

// BatchListResponse represents a list of batches
type BatchListResponse struct {
	Batches []BatchResponse `json:"batches"`
}
