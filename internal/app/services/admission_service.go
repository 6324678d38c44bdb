package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/edafa/admissions/internal/app/models"
	"github.com/edafa/admissions/internal/app/models/dto"
	"github.com/edafa/admissions/internal/app/repositories"
	"github.com/edafa/admissions/internal/pkg/apperrors"
	"github.com/edafa/admissions/internal/pkg/email"
	"github.com/edafa/admissions/internal/pkg/token"
	"github.com/edafa/admissions/internal/pkg/validation"
)

// AdmissionService handles application intake and the admission lifecycle.
type AdmissionService struct {
	admissionStore AdmissionStore
	cycleStore     CycleStore
	academic       AcademicStore
	sequences      SequenceStore
	identity       *IdentityService
	fees           *FeeService
	tx             TxRunner
	mailer         email.EmailService
	logger         zerolog.Logger
	now            func() time.Time
}

// NewAdmissionService creates a new admission service instance
func NewAdmissionService(
	admissionStore AdmissionStore,
	cycleStore CycleStore,
	academic AcademicStore,
	sequences SequenceStore,
	identity *IdentityService,
	fees *FeeService,
	tx TxRunner,
	mailer email.EmailService,
	logger zerolog.Logger,
) *AdmissionService {
	return &AdmissionService{
		admissionStore: admissionStore,
		cycleStore:     cycleStore,
		academic:       academic,
		sequences:      sequences,
		identity:       identity,
		fees:           fees,
		tx:             tx,
		mailer:         mailer,
		logger:         logger,
		now:            time.Now,
	}
}

const birthDateLayout = "2006-01-02"

// SubmitApplication validates and records a new application. On success the
// admission is in submit status with a frozen fee, a fresh application
// number, and a one-time access token the applicant uses for later calls.
func (s *AdmissionService) SubmitApplication(ctx context.Context, req *dto.SubmitApplicationRequest) (*models.Admission, error) {
	if !validation.NewStringValidation(req.Email).WithPattern(validation.CompiledPatterns.Email).Validate() {
		return nil, apperrors.NewValidationError("email format is invalid")
	}

	birthDate, err := time.Parse(birthDateLayout, req.BirthDate)
	if err != nil {
		return nil, apperrors.NewValidationError("birth date must be formatted as YYYY-MM-DD")
	}

	now := s.now()
	if !birthDate.Before(now) {
		return nil, apperrors.NewValidationError("birth date must be in the past")
	}

	cycle, err := s.cycleStore.GetByID(ctx, req.CycleID)
	if err != nil {
		if errors.Is(err, repositories.ErrCycleNotFound) {
			return nil, apperrors.ErrCycleNotFound
		}
		return nil, fmt.Errorf("error loading admission cycle: %w", err)
	}

	if !cycle.Active || cycle.State != models.CycleApplication || !cycle.IsOpenAt(now) {
		return nil, apperrors.ErrRegisterClosed
	}

	if cycle.MinimumAge > 0 && models.AgeInYears(birthDate, now) < cycle.MinimumAge {
		return nil, apperrors.NewCustomError(apperrors.ErrBelowMinimumAge,
			fmt.Sprintf("applicants must be at least %d years old", cycle.MinimumAge))
	}

	courseID := req.CourseID
	if courseID == nil && cycle.Scope == models.ScopeCourse {
		courseID = cycle.CourseID
	}
	if req.BatchID != nil && courseID == nil {
		return nil, apperrors.NewValidationError("a batch cannot be selected without a course")
	}

	var course *models.Course
	if courseID != nil {
		if !cycleOffersCourse(cycle, *courseID) {
			return nil, apperrors.ErrCourseNotInCycle
		}
		course, err = s.academic.GetCourseByID(ctx, *courseID)
		if err != nil {
			if errors.Is(err, repositories.ErrCourseNotFound) {
				return nil, apperrors.ErrCourseNotFound
			}
			return nil, fmt.Errorf("error loading course: %w", err)
		}
	}

	if req.BatchID != nil {
		batch, err := s.academic.GetBatchByID(ctx, *req.BatchID)
		if err != nil {
			if errors.Is(err, repositories.ErrBatchNotFound) {
				return nil, apperrors.ErrBatchNotFound
			}
			return nil, fmt.Errorf("error loading batch: %w", err)
		}
		if batch.CourseID != *courseID {
			return nil, apperrors.NewValidationError("batch does not belong to the selected course")
		}
	}

	fee, err := s.fees.ComputeFee(ctx, cycle, courseID)
	if err != nil {
		return nil, err
	}

	accessToken, err := token.NewAccessToken()
	if err != nil {
		return nil, fmt.Errorf("error generating access token: %w", err)
	}

	admission := &models.Admission{
		FirstName:       req.FirstName,
		MiddleName:      req.MiddleName,
		LastName:        req.LastName,
		Name:            models.FullName(req.FirstName, req.MiddleName, req.LastName),
		Title:           req.Title,
		BirthDate:       birthDate,
		Gender:          req.Gender,
		Email:           req.Email,
		Phone:           req.Phone,
		Mobile:          req.Mobile,
		Street:          req.Street,
		Street2:         req.Street2,
		City:            req.City,
		Zip:             req.Zip,
		Country:         req.Country,
		PrevInstitute:   req.PrevInstitute,
		PrevCourse:      req.PrevCourse,
		PrevResult:      req.PrevResult,
		FamilyBusiness:  req.FamilyBusiness,
		CycleID:         cycle.ID,
		CourseID:        courseID,
		BatchID:         req.BatchID,
		Fee:             fee,
		Currency:        s.fees.Currency(),
		PaymentStatus:   models.PaymentNone,
		Status:          models.StateSubmit,
		AccessToken:     accessToken,
		ApplicationDate: now,
		Active:          true,
	}
	if req.FamilyIncome != "" {
		income, err := decimal.NewFromString(req.FamilyIncome)
		if err != nil {
			return nil, apperrors.NewValidationError("family income must be a decimal number")
		}
		admission.FamilyIncome = income
	}
	if course != nil {
		admission.DepartmentID = &course.DepartmentID
		admission.ProgramID = course.ProgramID
		admission.FeesTermID = course.FeesTermID
	}

	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		person, err := s.identity.ResolvePerson(ctx, admission.Name, admission.Email, models.ContactFields{
			Phone:   admission.Phone,
			Mobile:  admission.Mobile,
			Street:  admission.Street,
			Street2: admission.Street2,
			City:    admission.City,
			Zip:     admission.Zip,
			Country: admission.Country,
		})
		if err != nil {
			return err
		}
		admission.PersonID = &person.ID

		number, err := s.sequences.NextNumber(ctx, repositories.SequenceAdmission)
		if err != nil {
			return fmt.Errorf("error assigning application number: %w", err)
		}
		admission.ApplicationNumber = number

		return s.admissionStore.Create(ctx, admission)
	})
	if err != nil {
		return nil, err
	}

	// Notification failures never fail the submission
	if mailErr := s.mailer.SendApplicationReceivedEmail(admission.Email, admission.Name, admission.ApplicationNumber); mailErr != nil {
		s.logger.Error().Err(mailErr).Str("applicationNumber", admission.ApplicationNumber).
			Msg("Failed to send application confirmation email")
	}

	return admission, nil
}

func cycleOffersCourse(cycle *models.AdmissionCycle, courseID int64) bool {
	for _, id := range cycle.CourseIDs() {
		if id == courseID {
			return true
		}
	}
	return false
}

// GetByID returns an admission by ID
func (s *AdmissionService) GetByID(ctx context.Context, id int64) (*models.Admission, error) {
	a, err := s.admissionStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrAdmissionNotFound) {
			return nil, apperrors.ErrAdmissionNotFound
		}
		return nil, err
	}
	return a, nil
}

// GetForApplicant returns an admission only when the supplied access token
// matches. Token mismatches are access errors, not lookup failures.
func (s *AdmissionService) GetForApplicant(ctx context.Context, id int64, accessToken string) (*models.Admission, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !token.Equal(a.AccessToken, accessToken) {
		return nil, apperrors.ErrAccessDenied
	}
	return a, nil
}

// CheckStatus returns the reduced status view for the public status endpoint
func (s *AdmissionService) CheckStatus(ctx context.Context, applicationNumber, applicantEmail string) (*models.Admission, error) {
	a, err := s.admissionStore.GetByApplicationNumber(ctx, applicationNumber, applicantEmail)
	if err != nil {
		if errors.Is(err, repositories.ErrAdmissionNotFound) {
			return nil, apperrors.ErrAdmissionNotFound
		}
		return nil, err
	}
	return a, nil
}

// Transition moves an admission to the target lifecycle state, enforcing the
// legal transition table.
func (s *AdmissionService) Transition(ctx context.Context, id int64, target models.AdmissionState) (*models.Admission, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !a.Status.CanTransitionTo(target) {
		return nil, apperrors.NewCustomError(apperrors.ErrInvalidTransition,
			fmt.Sprintf("cannot move application from %s to %s", a.Status, target))
	}

	if err := s.admissionStore.UpdateStatus(ctx, id, target); err != nil {
		return nil, err
	}
	a.Status = target

	s.logger.Info().Int64("admissionId", id).Str("status", string(target)).
		Msg("Admission status changed")
	return a, nil
}

// Confirm moves an application to confirm
func (s *AdmissionService) Confirm(ctx context.Context, id int64) (*models.Admission, error) {
	return s.Transition(ctx, id, models.StateConfirm)
}

// Reject declines an application. The optional staff reason goes to the audit
// log; applicants only see the status.
func (s *AdmissionService) Reject(ctx context.Context, id int64, reason string) (*models.Admission, error) {
	a, err := s.Transition(ctx, id, models.StateReject)
	if err != nil {
		return nil, err
	}
	if reason != "" {
		s.logger.Info().Int64("admissionId", id).Str("reason", reason).Msg("Admission rejected")
	}
	return a, nil
}

// Pend parks an application for later review
func (s *AdmissionService) Pend(ctx context.Context, id int64) (*models.Admission, error) {
	return s.Transition(ctx, id, models.StatePending)
}

// Cancel withdraws an application
func (s *AdmissionService) Cancel(ctx context.Context, id int64) (*models.Admission, error) {
	return s.Transition(ctx, id, models.StateCancel)
}

// BackToDraft returns an application to the applicant for editing
func (s *AdmissionService) BackToDraft(ctx context.Context, id int64) (*models.Admission, error) {
	return s.Transition(ctx, id, models.StateDraft)
}

// UpdateSelection changes the course/batch of an application before it is
// decided, recomputing the fee for the new selection. Once an invoice has
// been raised the fee is frozen and no longer follows the selection.
func (s *AdmissionService) UpdateSelection(ctx context.Context, id int64, req *dto.UpdateSelectionRequest) (*models.Admission, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	switch a.Status {
	case models.StateDraft, models.StateSubmit, models.StatePending:
	default:
		return nil, apperrors.NewCustomError(apperrors.ErrInvalidTransition,
			fmt.Sprintf("selection cannot change once the application is %s", a.Status))
	}

	cycle, err := s.cycleStore.GetByID(ctx, a.CycleID)
	if err != nil {
		return nil, fmt.Errorf("error loading admission cycle: %w", err)
	}

	if req.BatchID != nil && req.CourseID == nil {
		return nil, apperrors.NewValidationError("a batch cannot be selected without a course")
	}

	var course *models.Course
	if req.CourseID != nil {
		if !cycleOffersCourse(cycle, *req.CourseID) {
			return nil, apperrors.ErrCourseNotInCycle
		}
		course, err = s.academic.GetCourseByID(ctx, *req.CourseID)
		if err != nil {
			if errors.Is(err, repositories.ErrCourseNotFound) {
				return nil, apperrors.ErrCourseNotFound
			}
			return nil, fmt.Errorf("error loading course: %w", err)
		}
	}

	if req.BatchID != nil {
		batch, err := s.academic.GetBatchByID(ctx, *req.BatchID)
		if err != nil {
			if errors.Is(err, repositories.ErrBatchNotFound) {
				return nil, apperrors.ErrBatchNotFound
			}
			return nil, fmt.Errorf("error loading batch: %w", err)
		}
		if batch.CourseID != *req.CourseID {
			return nil, apperrors.NewValidationError("batch does not belong to the selected course")
		}
	}

	// Selection cascades: the course implies department, program and fee
	// term, and clearing the course clears everything downstream of it.
	a.CourseID = req.CourseID
	a.BatchID = req.BatchID
	if course != nil {
		a.DepartmentID = &course.DepartmentID
		a.ProgramID = course.ProgramID
		a.FeesTermID = course.FeesTermID
	} else {
		a.BatchID = nil
		a.DepartmentID = nil
		a.ProgramID = nil
		a.FeesTermID = nil
	}

	if a.InvoiceID == nil {
		fee, err := s.fees.ComputeFee(ctx, cycle, a.CourseID)
		if err != nil {
			return nil, err
		}
		a.Fee = fee
		a.Currency = s.fees.Currency()
	}

	if err := s.admissionStore.UpdateSelection(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// AttachPhoto stores the uploaded photo path on the admission after the
// caller validated and saved the file.
func (s *AdmissionService) AttachPhoto(ctx context.Context, id int64, accessToken, path string) error {
	if _, err := s.GetForApplicant(ctx, id, accessToken); err != nil {
		return err
	}
	return s.admissionStore.SetPhotoPath(ctx, id, path)
}

// List returns a page of admissions for the staff listing
func (s *AdmissionService) List(ctx context.Context, filter repositories.AdmissionFilter, offset uint64, limit int) ([]*models.Admission, int64, error) {
	return s.admissionStore.List(ctx, filter, offset, limit)
}
