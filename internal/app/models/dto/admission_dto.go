package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/edafa/admissions/internal/app/models"
)

// SubmitApplicationRequest represents the public application form payload
type SubmitApplicationRequest struct {
	FirstName      string `json:"firstName" binding:"required"`
	MiddleName     string `json:"middleName"`
	LastName       string `json:"lastName" binding:"required"`
	Title          string `json:"title"`
	BirthDate      string `json:"birthDate" binding:"required" example:"2004-07-15"`
	Gender         string `json:"gender" binding:"required,oneof=m f o"`
	Email          string `json:"email" binding:"required,email"`
	Phone          string `json:"phone"`
	Mobile         string `json:"mobile" binding:"required"`
	Street         string `json:"street"`
	Street2        string `json:"street2"`
	City           string `json:"city"`
	Zip            string `json:"zip"`
	Country        string `json:"country"`
	PrevInstitute  string `json:"prevInstitute"`
	PrevCourse     string `json:"prevCourse"`
	PrevResult     string `json:"prevResult"`
	FamilyBusiness string `json:"familyBusiness"`
	FamilyIncome   string `json:"familyIncome" example:"42000.00"`
	CycleID        int64  `json:"cycleId" binding:"required,gt=0"`
	CourseID       *int64 `json:"courseId" binding:"omitempty,gt=0"`
	BatchID        *int64 `json:"batchId" binding:"omitempty,gt=0"`
}

// UpdateSelectionRequest changes the course/batch selection of an application.
// Clearing the course also clears the batch.
type UpdateSelectionRequest struct {
	CourseID *int64 `json:"courseId" binding:"omitempty,gt=0"`
	BatchID  *int64 `json:"batchId" binding:"omitempty,gt=0"`
}

// StatusCheckRequest looks up an application by number and email
type StatusCheckRequest struct {
	ApplicationNumber string `form:"applicationNumber" binding:"required"`
	Email             string `form:"email" binding:"required,email"`
}

// AdmissionResponse represents an application returned to the applicant
type AdmissionResponse struct {
	ID                int64                 `json:"id"`
	ApplicationNumber string                `json:"applicationNumber"`
	Name              string                `json:"name"`
	Email             string                `json:"email"`
	BirthDate         string                `json:"birthDate"`
	Gender            string                `json:"gender"`
	Status            models.AdmissionState `json:"status"`
	PaymentStatus     models.PaymentStatus  `json:"paymentStatus"`
	Fee               decimal.Decimal       `json:"fee"`
	Currency          string                `json:"currency"`
	CycleID           int64                 `json:"cycleId"`
	CourseID          *int64                `json:"courseId,omitempty"`
	BatchID           *int64                `json:"batchId,omitempty"`
	ApplicationDate   time.Time             `json:"applicationDate"`
	AdmissionDate     *time.Time            `json:"admissionDate,omitempty"`
	IsStudent         bool                  `json:"isStudent"`
}

// SubmitApplicationResponse is returned after a successful submission. The
// access token is shown exactly once, at creation.
type SubmitApplicationResponse struct {
	AdmissionResponse
	AccessToken string `json:"accessToken"`
}

// ToAdmissionResponse maps a model to its public representation
func ToAdmissionResponse(a *models.Admission) AdmissionResponse {
	return AdmissionResponse{
		ID:                a.ID,
		ApplicationNumber: a.ApplicationNumber,
		Name:              a.Name,
		Email:             a.Email,
		BirthDate:         a.BirthDate.Format("2006-01-02"),
		Gender:            a.Gender,
		Status:            a.Status,
		PaymentStatus:     a.PaymentStatus,
		Fee:               a.Fee,
		Currency:          a.Currency,
		CycleID:           a.CycleID,
		CourseID:          a.CourseID,
		BatchID:           a.BatchID,
		ApplicationDate:   a.ApplicationDate,
		AdmissionDate:     a.AdmissionDate,
		IsStudent:         a.IsStudent,
	}
}

// StatusCheckResponse is the reduced view returned by the status endpoint
type StatusCheckResponse struct {
	ApplicationNumber string                `json:"applicationNumber"`
	Status            models.AdmissionState `json:"status"`
	PaymentStatus     models.PaymentStatus  `json:"paymentStatus"`
}

// RejectRequest carries an optional staff note recorded with the rejection
type RejectRequest struct {
	Reason string `json:"reason"`
}

// AdmissionListResponse represents a paginated staff listing
type AdmissionListResponse struct {
	Admissions []AdmissionResponse `json:"admissions"`
	PaginationInfo
}

// EnrollmentResponse summarizes the student record created by enrollment
type EnrollmentResponse struct {
	StudentID          int64  `json:"studentId"`
	RegistrationNumber string `json:"registrationNumber"`
	AdmissionID        int64  `json:"admissionId"`
	CourseDetailID     int64  `json:"courseDetailId"`
	FeeDueCount        int    `json:"feeDueCount"`
	PortalUserID       *int64 `json:"portalUserId,omitempty"`
}
