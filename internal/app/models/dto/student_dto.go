package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/edafa/admissions/internal/app/models"
)

// StudentResponse represents an enrolled student with their course
// assignments and fee schedule
type StudentResponse struct {
	ID                 int64                  `json:"id"`
	RegistrationNumber string                 `json:"registrationNumber"`
	FirstName          string                 `json:"firstName"`
	MiddleName         string                 `json:"middleName,omitempty"`
	LastName           string                 `json:"lastName"`
	Gender             string                 `json:"gender,omitempty"`
	BirthDate          string                 `json:"birthDate,omitempty"`
	Active             bool                   `json:"active"`
	CourseDetails      []CourseDetailResponse `json:"courseDetails"`
	FeeDues            []FeeDueResponse       `json:"feeDues"`
}

// CourseDetailResponse is one course/batch assignment of a student
type CourseDetailResponse struct {
	ID            int64      `json:"id"`
	CourseID      int64      `json:"courseId"`
	BatchID       *int64     `json:"batchId,omitempty"`
	FeesTermID    *int64     `json:"feesTermId,omitempty"`
	FeesStartDate *time.Time `json:"feesStartDate,omitempty"`
	State         string     `json:"state"`
}

// FeeDueResponse is one scheduled fee installment
type FeeDueResponse struct {
	ID         int64           `json:"id"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage decimal.Decimal `json:"percentage"`
	DueDate    time.Time       `json:"dueDate"`
	Discount   decimal.Decimal `json:"discount"`
	State      string          `json:"state"`
}

// ToStudentResponse maps a student model to its API representation
func ToStudentResponse(s *models.Student) StudentResponse {
	resp := StudentResponse{
		ID:                 s.ID,
		RegistrationNumber: s.RegistrationNumber,
		FirstName:          s.FirstName,
		MiddleName:         s.MiddleName,
		LastName:           s.LastName,
		Gender:             s.Gender,
		Active:             s.Active,
		CourseDetails:      make([]CourseDetailResponse, 0, len(s.CourseDetails)),
		FeeDues:            make([]FeeDueResponse, 0, len(s.FeeDues)),
	}
	if s.BirthDate != nil {
		resp.BirthDate = s.BirthDate.Format("2006-01-02")
	}
	for _, d := range s.CourseDetails {
		resp.CourseDetails = append(resp.CourseDetails, CourseDetailResponse{
			ID:            d.ID,
			CourseID:      d.CourseID,
			BatchID:       d.BatchID,
			FeesTermID:    d.FeesTermID,
			FeesStartDate: d.FeesStartDate,
			State:         d.State,
		})
	}
	for _, due := range s.FeeDues {
		resp.FeeDues = append(resp.FeeDues, FeeDueResponse{
			ID:         due.ID,
			Amount:     due.Amount,
			Percentage: due.Percentage,
			DueDate:    due.DueDate,
			Discount:   due.Discount,
			State:      due.State,
		})
	}
	return resp
}
