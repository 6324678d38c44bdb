package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edafa/admissions/internal/app/models"
	"github.com/edafa/admissions/internal/app/models/dto"
	"github.com/edafa/admissions/internal/pkg/apperrors"
)

type admissionFixture struct {
	svc        *AdmissionService
	admissions *fakeAdmissionStore
	cycles     *fakeCycleStore
	academic   *fakeAcademicStore
	people     *fakePersonStore
	products   *fakeProductStore
	mailer     *fakeMailer
	tx         *fakeTx
	now        time.Time
}

func newAdmissionFixture(t *testing.T) *admissionFixture {
	t.Helper()

	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	end := now.AddDate(0, 2, 0)

	courseID := int64(10)
	programID := int64(5)
	feesTermID := int64(7)
	courseFee := decimal.NewFromInt(75)

	f := &admissionFixture{
		admissions: &fakeAdmissionStore{},
		cycles: &fakeCycleStore{cycles: []*models.AdmissionCycle{{
			ID:         1,
			Name:       "Fall 2026",
			StartDate:  now.AddDate(0, -1, 0),
			EndDate:    &end,
			MinimumAge: 17,
			Scope:      models.ScopeCourse,
			CourseID:   &courseID,
			State:      models.CycleApplication,
			Active:     true,
		}}},
		academic: &fakeAcademicStore{
			courses: []*models.Course{
				{ID: 10, DepartmentID: 1, ProgramID: &programID, FeesTermID: &feesTermID, Name: "Computer Science", ApplicationFee: &courseFee, Active: true},
				{ID: 11, DepartmentID: 1, Name: "Mathematics", Active: true},
			},
			batches: []*models.Batch{
				{ID: 20, CourseID: 10, Name: "CS Morning", Active: true},
				{ID: 21, CourseID: 11, Name: "Math Morning", Active: true},
			},
		},
		people:   &fakePersonStore{},
		products: &fakeProductStore{},
		mailer:   &fakeMailer{},
		tx:       &fakeTx{},
		now:      now,
	}

	fees := NewFeeService(f.products, f.academic, decimal.NewFromInt(50), "USD")
	f.svc = NewAdmissionService(
		f.admissions, f.cycles, f.academic, &fakeSequenceStore{},
		NewIdentityService(f.people), fees, f.tx, f.mailer, zerolog.Nop(),
	)
	f.svc.now = func() time.Time { return now }
	return f
}

func validSubmitRequest() *dto.SubmitApplicationRequest {
	return &dto.SubmitApplicationRequest{
		FirstName: "Lina",
		LastName:  "Haddad",
		BirthDate: "2004-07-15",
		Gender:    "f",
		Email:     "lina@example.com",
		Mobile:    "+966500000001",
		City:      "Jeddah",
		CycleID:   1,
	}
}

func TestSubmitApplication(t *testing.T) {
	f := newAdmissionFixture(t)

	a, err := f.svc.SubmitApplication(context.Background(), validSubmitRequest())
	require.NoError(t, err)

	assert.Equal(t, models.StateSubmit, a.Status)
	assert.Equal(t, models.PaymentNone, a.PaymentStatus)
	assert.Equal(t, "ADM00001", a.ApplicationNumber)
	assert.NotEmpty(t, a.AccessToken)
	assert.Equal(t, "Lina Haddad", a.Name)
	assert.True(t, decimal.NewFromInt(75).Equal(a.Fee), "course application fee should be frozen")
	assert.Equal(t, "USD", a.Currency)

	// Course-scoped cycles default the selection to the cycle's course and
	// cascade its academic links
	require.NotNil(t, a.CourseID)
	assert.Equal(t, int64(10), *a.CourseID)
	require.NotNil(t, a.DepartmentID)
	assert.Equal(t, int64(1), *a.DepartmentID)
	require.NotNil(t, a.ProgramID)
	assert.Equal(t, int64(5), *a.ProgramID)
	require.NotNil(t, a.FeesTermID)
	assert.Equal(t, int64(7), *a.FeesTermID)

	require.NotNil(t, a.PersonID)
	person, err := f.people.GetByID(context.Background(), *a.PersonID)
	require.NoError(t, err)
	assert.Equal(t, "lina@example.com", person.Email)

	assert.Equal(t, 1, f.tx.calls)
	assert.Equal(t, []string{"lina@example.com"}, f.mailer.applicationEmails)
}

func TestSubmitApplicationMailFailureDoesNotFailSubmission(t *testing.T) {
	f := newAdmissionFixture(t)
	f.mailer.failSend = true

	a, err := f.svc.SubmitApplication(context.Background(), validSubmitRequest())
	require.NoError(t, err)
	assert.Equal(t, models.StateSubmit, a.Status)
}

func TestSubmitApplicationValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *admissionFixture, req *dto.SubmitApplicationRequest)
		wantErr error
	}{
		{
			name:    "malformed email",
			mutate:  func(f *admissionFixture, req *dto.SubmitApplicationRequest) { req.Email = "not-an-email" },
			wantErr: apperrors.ErrValidationFailed,
		},
		{
			name:    "malformed birth date",
			mutate:  func(f *admissionFixture, req *dto.SubmitApplicationRequest) { req.BirthDate = "15/07/2004" },
			wantErr: apperrors.ErrValidationFailed,
		},
		{
			name:    "birth date in the future",
			mutate:  func(f *admissionFixture, req *dto.SubmitApplicationRequest) { req.BirthDate = "2030-01-01" },
			wantErr: apperrors.ErrValidationFailed,
		},
		{
			name:    "unknown cycle",
			mutate:  func(f *admissionFixture, req *dto.SubmitApplicationRequest) { req.CycleID = 404 },
			wantErr: apperrors.ErrCycleNotFound,
		},
		{
			name: "inactive cycle",
			mutate: func(f *admissionFixture, req *dto.SubmitApplicationRequest) {
				f.cycles.cycles[0].Active = false
			},
			wantErr: apperrors.ErrRegisterClosed,
		},
		{
			name: "cycle past the application phase",
			mutate: func(f *admissionFixture, req *dto.SubmitApplicationRequest) {
				f.cycles.cycles[0].State = models.CycleConfirm
			},
			wantErr: apperrors.ErrRegisterClosed,
		},
		{
			name: "cycle window already closed",
			mutate: func(f *admissionFixture, req *dto.SubmitApplicationRequest) {
				closed := f.now.AddDate(0, 0, -1)
				f.cycles.cycles[0].EndDate = &closed
			},
			wantErr: apperrors.ErrRegisterClosed,
		},
		{
			name: "course outside the cycle",
			mutate: func(f *admissionFixture, req *dto.SubmitApplicationRequest) {
				other := int64(11)
				req.CourseID = &other
			},
			wantErr: apperrors.ErrCourseNotInCycle,
		},
		{
			name: "batch of a different course",
			mutate: func(f *admissionFixture, req *dto.SubmitApplicationRequest) {
				batch := int64(21)
				req.BatchID = &batch
			},
			wantErr: apperrors.ErrValidationFailed,
		},
		{
			name: "unknown batch",
			mutate: func(f *admissionFixture, req *dto.SubmitApplicationRequest) {
				batch := int64(404)
				req.BatchID = &batch
			},
			wantErr: apperrors.ErrBatchNotFound,
		},
		{
			name: "family income not a number",
			mutate: func(f *admissionFixture, req *dto.SubmitApplicationRequest) {
				req.FamilyIncome = "a lot"
			},
			wantErr: apperrors.ErrValidationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAdmissionFixture(t)
			req := validSubmitRequest()
			tt.mutate(f, req)

			_, err := f.svc.SubmitApplication(context.Background(), req)
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, tt.wantErr), "want %v, got %v", tt.wantErr, err)
			assert.Empty(t, f.admissions.admissions, "nothing should be persisted on rejection")
		})
	}
}

func TestSubmitApplicationMinimumAgeBoundary(t *testing.T) {
	// Age counts whole 365-day years, so exactly 17*365 days old passes a
	// minimum age of 17 and one day younger does not.
	f := newAdmissionFixture(t)
	req := validSubmitRequest()
	req.BirthDate = f.now.AddDate(0, 0, -17*365).Format("2006-01-02")

	_, err := f.svc.SubmitApplication(context.Background(), req)
	require.NoError(t, err)

	f = newAdmissionFixture(t)
	req = validSubmitRequest()
	req.BirthDate = f.now.AddDate(0, 0, -17*365+1).Format("2006-01-02")

	_, err = f.svc.SubmitApplication(context.Background(), req)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrBelowMinimumAge))
}

func TestSubmitApplicationReusesExistingPerson(t *testing.T) {
	f := newAdmissionFixture(t)
	require.NoError(t, f.people.Create(context.Background(), &models.Person{
		Name:  "Lina Haddad",
		Email: "lina@example.com",
	}))

	a, err := f.svc.SubmitApplication(context.Background(), validSubmitRequest())
	require.NoError(t, err)

	require.NotNil(t, a.PersonID)
	assert.Equal(t, int64(1), *a.PersonID)
	assert.Len(t, f.people.people, 1, "no duplicate person for a known email")
}

func submitted(t *testing.T, f *admissionFixture) *models.Admission {
	t.Helper()
	a, err := f.svc.SubmitApplication(context.Background(), validSubmitRequest())
	require.NoError(t, err)
	return a
}

func TestTransitionGuards(t *testing.T) {
	tests := []struct {
		name   string
		from   models.AdmissionState
		target models.AdmissionState
		ok     bool
	}{
		{"submit to confirm", models.StateSubmit, models.StateConfirm, true},
		{"submit to reject", models.StateSubmit, models.StateReject, true},
		{"submit to pending", models.StateSubmit, models.StatePending, true},
		{"pending back to draft", models.StatePending, models.StateDraft, true},
		{"confirm to cancel", models.StateConfirm, models.StateCancel, true},
		{"reject is terminal", models.StateReject, models.StateConfirm, false},
		{"done is terminal", models.StateDone, models.StateCancel, false},
		{"draft cannot confirm directly", models.StateDraft, models.StateConfirm, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAdmissionFixture(t)
			a := submitted(t, f)
			f.admissions.find(a.ID).Status = tt.from

			got, err := f.svc.Transition(context.Background(), a.ID, tt.target)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.target, got.Status)
				stored, err := f.admissions.GetByID(context.Background(), a.ID)
				require.NoError(t, err)
				assert.Equal(t, tt.target, stored.Status)
			} else {
				require.Error(t, err)
				assert.True(t, apperrors.Is(err, apperrors.ErrInvalidTransition))
			}
		})
	}
}

func TestRejectRecordsReason(t *testing.T) {
	f := newAdmissionFixture(t)
	a := submitted(t, f)

	got, err := f.svc.Reject(context.Background(), a.ID, "incomplete transcripts")
	require.NoError(t, err)
	assert.Equal(t, models.StateReject, got.Status)
}

func TestGetForApplicant(t *testing.T) {
	f := newAdmissionFixture(t)
	a := submitted(t, f)

	got, err := f.svc.GetForApplicant(context.Background(), a.ID, a.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = f.svc.GetForApplicant(context.Background(), a.ID, "wrong-token")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrAccessDenied), "token mismatch is an access error, not a lookup failure")

	_, err = f.svc.GetForApplicant(context.Background(), 404, a.AccessToken)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrAdmissionNotFound))
}

func TestCheckStatus(t *testing.T) {
	f := newAdmissionFixture(t)
	a := submitted(t, f)

	got, err := f.svc.CheckStatus(context.Background(), a.ApplicationNumber, a.Email)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = f.svc.CheckStatus(context.Background(), a.ApplicationNumber, "someone-else@example.com")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrAdmissionNotFound), "number and email must match together")
}

func TestUpdateSelection(t *testing.T) {
	f := newAdmissionFixture(t)
	// Make the cycle program-scoped so two courses are selectable
	f.cycles.cycles[0].Scope = models.ScopeProgram
	f.cycles.cycles[0].FeeLines = []models.CycleFeeLine{
		{CycleID: 1, CourseID: 10},
		{CycleID: 1, CourseID: 11},
	}
	req := validSubmitRequest()
	course := int64(10)
	req.CourseID = &course
	a, err := f.svc.SubmitApplication(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(75).Equal(a.Fee))

	// Switching to the mathematics course drops the program links it lacks and
	// reprices to the configured default
	other := int64(11)
	updated, err := f.svc.UpdateSelection(context.Background(), a.ID, &dto.UpdateSelectionRequest{CourseID: &other})
	require.NoError(t, err)
	require.NotNil(t, updated.CourseID)
	assert.Equal(t, other, *updated.CourseID)
	assert.Nil(t, updated.ProgramID)
	assert.Nil(t, updated.FeesTermID)
	assert.True(t, decimal.NewFromInt(50).Equal(updated.Fee), "fee must be recomputed for the new selection")

	// Clearing the course clears everything downstream
	updated, err = f.svc.UpdateSelection(context.Background(), a.ID, &dto.UpdateSelectionRequest{})
	require.NoError(t, err)
	assert.Nil(t, updated.CourseID)
	assert.Nil(t, updated.BatchID)
	assert.Nil(t, updated.DepartmentID)
	assert.Nil(t, updated.ProgramID)
	assert.Nil(t, updated.FeesTermID)
}

func TestUpdateSelectionKeepsFeeOnceInvoiced(t *testing.T) {
	f := newAdmissionFixture(t)
	f.cycles.cycles[0].Scope = models.ScopeProgram
	f.cycles.cycles[0].FeeLines = []models.CycleFeeLine{
		{CycleID: 1, CourseID: 10},
		{CycleID: 1, CourseID: 11},
	}
	req := validSubmitRequest()
	course := int64(10)
	req.CourseID = &course
	a, err := f.svc.SubmitApplication(context.Background(), req)
	require.NoError(t, err)
	require.True(t, decimal.NewFromInt(75).Equal(a.Fee))

	invoiceID := int64(1)
	f.admissions.find(a.ID).InvoiceID = &invoiceID

	// An invoice has been raised for 75, so switching to the cheaper course
	// must not reprice the application
	other := int64(11)
	updated, err := f.svc.UpdateSelection(context.Background(), a.ID, &dto.UpdateSelectionRequest{CourseID: &other})
	require.NoError(t, err)
	assert.Equal(t, other, *updated.CourseID)
	assert.True(t, decimal.NewFromInt(75).Equal(updated.Fee), "invoiced fee must stay frozen")

	stored, err := f.admissions.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(75).Equal(stored.Fee))
}

func TestUpdateSelectionRejectedOnceDecided(t *testing.T) {
	for _, status := range []models.AdmissionState{
		models.StateConfirm, models.StateReject, models.StateCancel, models.StateDone,
	} {
		t.Run(string(status), func(t *testing.T) {
			f := newAdmissionFixture(t)
			a := submitted(t, f)
			f.admissions.find(a.ID).Status = status

			course := int64(10)
			_, err := f.svc.UpdateSelection(context.Background(), a.ID, &dto.UpdateSelectionRequest{CourseID: &course})
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.ErrInvalidTransition))
		})
	}
}

func TestAttachPhoto(t *testing.T) {
	f := newAdmissionFixture(t)
	a := submitted(t, f)

	require.NoError(t, f.svc.AttachPhoto(context.Background(), a.ID, a.AccessToken, "admissions/photo.jpg"))
	stored, err := f.admissions.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, "admissions/photo.jpg", stored.PhotoPath)

	err = f.svc.AttachPhoto(context.Background(), a.ID, "wrong-token", "admissions/other.jpg")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrAccessDenied))
}
