package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/edafa/admissions/internal/app/models"
	"github.com/edafa/admissions/internal/app/repositories"
	"github.com/edafa/admissions/internal/pkg/apperrors"
	"github.com/edafa/admissions/internal/pkg/auth"
	"github.com/edafa/admissions/internal/pkg/email"
)

// EnrollmentResult summarizes what enrollment created for one admission.
type EnrollmentResult struct {
	Student        *models.Student
	CourseDetailID int64
	FeeDueCount    int
	PortalUserID   *int64
}

// EnrollmentService converts an admitted application into a student record
// with its course assignment, fee schedule and portal account.
type EnrollmentService struct {
	admissionStore AdmissionStore
	cycleStore     CycleStore
	studentStore   StudentStore
	personStore    PersonStore
	academic       AcademicStore
	feeTermStore   FeeTermStore
	userStore      UserStore
	tx             TxRunner
	mailer         email.EmailService
	logger         zerolog.Logger
	now            func() time.Time
}

// NewEnrollmentService creates a new enrollment service instance
func NewEnrollmentService(
	admissionStore AdmissionStore,
	cycleStore CycleStore,
	studentStore StudentStore,
	personStore PersonStore,
	academic AcademicStore,
	feeTermStore FeeTermStore,
	userStore UserStore,
	tx TxRunner,
	mailer email.EmailService,
	logger zerolog.Logger,
) *EnrollmentService {
	return &EnrollmentService{
		admissionStore: admissionStore,
		cycleStore:     cycleStore,
		studentStore:   studentStore,
		personStore:    personStore,
		academic:       academic,
		feeTermStore:   feeTermStore,
		userStore:      userStore,
		tx:             tx,
		mailer:         mailer,
		logger:         logger,
		now:            time.Now,
	}
}

// Enroll finalizes an admission into an enrolled student. The whole sequence
// runs in one transaction under a row lock on the cycle so the capacity check
// and the status flip are atomic against concurrent enrollments.
func (s *EnrollmentService) Enroll(ctx context.Context, admissionID int64) (*EnrollmentResult, error) {
	var (
		result    *EnrollmentResult
		admission *models.Admission
	)

	err := s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		admission, err = s.admissionStore.GetByID(ctx, admissionID)
		if err != nil {
			if errors.Is(err, repositories.ErrAdmissionNotFound) {
				return apperrors.ErrAdmissionNotFound
			}
			return err
		}

		if admission.IsStudent || admission.StudentID != nil {
			return apperrors.ErrAlreadyEnrolled
		}
		if admission.CourseID == nil {
			return apperrors.ErrCourseNotSelected
		}
		if admission.PersonID == nil {
			return apperrors.NewCustomError(apperrors.ErrConfiguration,
				"admission has no person record to enroll")
		}
		if !admission.Status.CanTransitionTo(models.StateDone) {
			return apperrors.NewCustomError(apperrors.ErrInvalidTransition,
				fmt.Sprintf("cannot enroll an application in %s status", admission.Status))
		}

		if err := s.cycleStore.LockForUpdate(ctx, admission.CycleID); err != nil {
			return fmt.Errorf("error locking admission cycle: %w", err)
		}
		cycle, err := s.cycleStore.GetByID(ctx, admission.CycleID)
		if err != nil {
			return fmt.Errorf("error loading admission cycle: %w", err)
		}
		if cycle.MaxCount > 0 {
			enrolled, err := s.admissionStore.CountInStatus(ctx, cycle.ID, models.StateDone)
			if err != nil {
				return fmt.Errorf("error counting enrolled admissions: %w", err)
			}
			if enrolled >= cycle.MaxCount {
				return apperrors.ErrCapacityReached
			}
		}

		student, err := s.resolveStudent(ctx, admission)
		if err != nil {
			return err
		}

		course, err := s.academic.GetCourseByID(ctx, *admission.CourseID)
		if err != nil {
			if errors.Is(err, repositories.ErrCourseNotFound) {
				return apperrors.ErrCourseNotFound
			}
			return fmt.Errorf("error loading course: %w", err)
		}

		detail := &models.CourseDetail{
			StudentID:      student.ID,
			CourseID:       course.ID,
			BatchID:        admission.BatchID,
			AcademicYearID: cycle.AcademicYearID,
			AcademicTermID: cycle.AcademicTermID,
			FeesTermID:     admission.FeesTermID,
			FeesStartDate:  admission.FeesStartDate,
			State:          models.CourseDetailRunning,
		}
		if err := s.studentStore.AddCourseDetail(ctx, detail); err != nil {
			return fmt.Errorf("error recording course assignment: %w", err)
		}

		feeDueCount, err := s.scheduleFeeDues(ctx, admission, student)
		if err != nil {
			return err
		}

		registration := &models.SubjectRegistration{
			StudentID:   student.ID,
			CourseID:    course.ID,
			BatchID:     admission.BatchID,
			MinUnitLoad: course.MinUnitLoad,
			MaxUnitLoad: course.MaxUnitLoad,
			State:       "draft",
		}
		if err := s.studentStore.AddSubjectRegistration(ctx, registration); err != nil {
			return fmt.Errorf("error opening subject registration: %w", err)
		}

		portalUserID, err := s.provisionPortalUser(ctx, admission, student)
		if err != nil {
			return err
		}

		if err := s.admissionStore.SetEnrollment(ctx, admission.ID, student.ID, s.now()); err != nil {
			return err
		}
		if err := s.personStore.MarkStudent(ctx, *admission.PersonID); err != nil {
			return err
		}

		result = &EnrollmentResult{
			Student:        student,
			CourseDetailID: detail.ID,
			FeeDueCount:    feeDueCount,
			PortalUserID:   portalUserID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Notification failures never fail the enrollment
	if admission.Email != "" {
		if mailErr := s.mailer.SendEnrollmentEmail(admission.Email, admission.Name, result.Student.RegistrationNumber); mailErr != nil {
			s.logger.Error().Err(mailErr).Int64("admissionId", admission.ID).
				Msg("Failed to send enrollment email")
		}
	}

	s.logger.Info().Int64("admissionId", admission.ID).Int64("studentId", result.Student.ID).
		Str("registrationNumber", result.Student.RegistrationNumber).Msg("Admission enrolled")
	return result, nil
}

// GetStudent returns a student with their course assignments and fee schedule
func (s *EnrollmentService) GetStudent(ctx context.Context, id int64) (*models.Student, error) {
	student, err := s.studentStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrStudentNotFound) {
			return nil, apperrors.NewResourceNotFoundError("student not found")
		}
		return nil, err
	}

	details, err := s.studentStore.GetCourseDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	student.CourseDetails = details

	dues, err := s.studentStore.GetFeeDues(ctx, id)
	if err != nil {
		return nil, err
	}
	student.FeeDues = dues
	return student, nil
}

// resolveStudent reuses the person's existing student record if one exists,
// otherwise creates a new one numbered by the application.
func (s *EnrollmentService) resolveStudent(ctx context.Context, admission *models.Admission) (*models.Student, error) {
	student, err := s.studentStore.FindByPersonID(ctx, *admission.PersonID)
	if err == nil {
		return student, nil
	}
	if !errors.Is(err, repositories.ErrStudentNotFound) {
		return nil, fmt.Errorf("error looking up student: %w", err)
	}

	birthDate := admission.BirthDate
	student = &models.Student{
		PersonID:           *admission.PersonID,
		RegistrationNumber: admission.ApplicationNumber,
		FirstName:          admission.FirstName,
		MiddleName:         admission.MiddleName,
		LastName:           admission.LastName,
		BirthDate:          &birthDate,
		Gender:             admission.Gender,
		Active:             true,
	}
	if err := s.studentStore.Create(ctx, student); err != nil {
		return nil, fmt.Errorf("error creating student: %w", err)
	}
	return student, nil
}

// scheduleFeeDues generates the installment schedule from the admission's fee
// term. Only scheduled plans produce dues; each line takes its percentage of
// the frozen fee and its own due date.
func (s *EnrollmentService) scheduleFeeDues(ctx context.Context, admission *models.Admission, student *models.Student) (int, error) {
	if admission.FeesTermID == nil {
		return 0, nil
	}

	term, err := s.feeTermStore.GetByID(ctx, *admission.FeesTermID)
	if err != nil {
		if errors.Is(err, repositories.ErrFeeTermNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("error loading fee term: %w", err)
	}
	if !term.IsScheduled() {
		return 0, nil
	}

	// A discount granted on the application itself wins over the term default
	discount := term.Discount
	if admission.Discount.IsPositive() {
		discount = admission.Discount
	}

	hundred := decimal.NewFromInt(100)
	count := 0
	for _, line := range term.Lines {
		due := &models.StudentFeeDue{
			StudentID:  student.ID,
			FeeLineID:  line.ID,
			Amount:     line.Value.Mul(admission.Fee).Div(hundred).Round(2),
			Percentage: line.Value,
			DueDate:    s.lineDueDate(line, admission),
			CourseID:   admission.CourseID,
			BatchID:    admission.BatchID,
			Discount:   discount,
			State:      models.FeeDueDraft,
		}
		if err := s.studentStore.AddFeeDue(ctx, due); err != nil {
			return 0, fmt.Errorf("error scheduling fee due: %w", err)
		}
		count++
	}
	return count, nil
}

// lineDueDate picks an explicit line date first, then offsets from the fees
// start date, then from today.
func (s *EnrollmentService) lineDueDate(line models.FeeTermLine, admission *models.Admission) time.Time {
	if line.DueDate != nil {
		return *line.DueDate
	}
	if admission.FeesStartDate != nil {
		return admission.FeesStartDate.AddDate(0, 0, line.DueDays)
	}
	return s.now().AddDate(0, 0, line.DueDays)
}

// provisionPortalUser creates a portal login for the student when the
// admission carries an email. An email already taken by another account is
// tolerated; the student simply keeps no portal link.
func (s *EnrollmentService) provisionPortalUser(ctx context.Context, admission *models.Admission, student *models.Student) (*int64, error) {
	if admission.Email == "" {
		return nil, nil
	}
	if student.UserID != nil {
		return student.UserID, nil
	}

	password, err := randomPassword()
	if err != nil {
		return nil, fmt.Errorf("error generating portal password: %w", err)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing portal password: %w", err)
	}

	user := &models.User{
		Email:        admission.Email,
		PasswordHash: hash,
		Name:         admission.Name,
		RoleType:     models.RolePortal,
		PersonID:     admission.PersonID,
		Active:       true,
	}
	if err := s.userStore.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserEmailExists) {
			s.logger.Warn().Str("email", admission.Email).
				Msg("Portal account email already taken, skipping provisioning")
			return nil, nil
		}
		return nil, fmt.Errorf("error creating portal account: %w", err)
	}

	if err := s.studentStore.SetUser(ctx, student.ID, user.ID); err != nil {
		return nil, err
	}
	student.UserID = &user.ID
	return &user.ID, nil
}

func randomPassword() (string, error) {
	raw := make([]byte, 18)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
