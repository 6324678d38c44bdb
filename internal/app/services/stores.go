package services

import (
	"context"
	"time"

	"github.com/edafa/admissions/internal/app/models"
	"github.com/edafa/admissions/internal/app/repositories"
)

// The store interfaces below are the slices of the repository layer each
// service actually touches. The pgx repositories satisfy them; tests swap in
// in-memory fakes.

// TxRunner runs a function inside a database transaction
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// AdmissionStore is the admission persistence surface
type AdmissionStore interface {
	Create(ctx context.Context, a *models.Admission) error
	GetByID(ctx context.Context, id int64) (*models.Admission, error)
	GetByApplicationNumber(ctx context.Context, number, email string) (*models.Admission, error)
	UpdateStatus(ctx context.Context, id int64, status models.AdmissionState) error
	UpdateSelection(ctx context.Context, a *models.Admission) error
	SetPerson(ctx context.Context, id, personID int64) error
	SetPhotoPath(ctx context.Context, id int64, path string) error
	SetInvoice(ctx context.Context, id, invoiceID int64) error
	SetTransaction(ctx context.Context, id, transactionID int64) error
	SetPaymentResult(ctx context.Context, a *models.Admission) error
	SetEnrollment(ctx context.Context, id, studentID int64, admissionDate time.Time) error
	List(ctx context.Context, filter repositories.AdmissionFilter, offset uint64, limit int) ([]*models.Admission, int64, error)
	CountInStatus(ctx context.Context, cycleID int64, status models.AdmissionState) (int, error)
}

// CycleStore is the admission cycle persistence surface
type CycleStore interface {
	GetByID(ctx context.Context, id int64) (*models.AdmissionCycle, error)
	ListOpen(ctx context.Context, now time.Time) ([]*models.AdmissionCycle, error)
	LockForUpdate(ctx context.Context, id int64) error
}

// PersonStore is the person persistence surface
type PersonStore interface {
	FindByEmail(ctx context.Context, email string) (*models.Person, error)
	FindByNameAndEmail(ctx context.Context, name, email string) (*models.Person, error)
	GetByID(ctx context.Context, id int64) (*models.Person, error)
	Create(ctx context.Context, p *models.Person) error
	Update(ctx context.Context, p *models.Person) error
	MarkStudent(ctx context.Context, id int64) error
}

// StudentStore is the student persistence surface
type StudentStore interface {
	FindByPersonID(ctx context.Context, personID int64) (*models.Student, error)
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	Create(ctx context.Context, s *models.Student) error
	SetUser(ctx context.Context, studentID, userID int64) error
	AddCourseDetail(ctx context.Context, d *models.CourseDetail) error
	AddFeeDue(ctx context.Context, due *models.StudentFeeDue) error
	AddSubjectRegistration(ctx context.Context, reg *models.SubjectRegistration) error
	GetCourseDetails(ctx context.Context, studentID int64) ([]models.CourseDetail, error)
	GetFeeDues(ctx context.Context, studentID int64) ([]models.StudentFeeDue, error)
}

// InvoiceStore is the invoice persistence surface
type InvoiceStore interface {
	Create(ctx context.Context, inv *models.Invoice) error
	GetByID(ctx context.Context, id int64) (*models.Invoice, error)
	GetByAdmissionID(ctx context.Context, admissionID int64) (*models.Invoice, error)
	UpdateState(ctx context.Context, id int64, state string) error
}

// ProductStore is the product persistence surface
type ProductStore interface {
	GetByID(ctx context.Context, id int64) (*models.Product, error)
	FindByName(ctx context.Context, name string) (*models.Product, error)
	Create(ctx context.Context, p *models.Product) error
}

// PaymentStore is the payment persistence surface
type PaymentStore interface {
	GetProvider(ctx context.Context, id int64) (*models.PaymentProvider, error)
	CreateTransaction(ctx context.Context, tx *models.PaymentTransaction) error
	GetTransaction(ctx context.Context, id int64) (*models.PaymentTransaction, error)
	UpdateTransactionState(ctx context.Context, id int64, state models.TransactionState, at time.Time) error
}

// AcademicStore is the academic catalog persistence surface
type AcademicStore interface {
	GetDepartments(ctx context.Context) ([]*models.Department, error)
	GetDepartmentByID(ctx context.Context, id int64) (*models.Department, error)
	GetProgramsByDepartment(ctx context.Context, departmentID int64) ([]*models.Program, error)
	GetProgramByID(ctx context.Context, id int64) (*models.Program, error)
	GetCourseByID(ctx context.Context, id int64) (*models.Course, error)
	GetCoursesByProgram(ctx context.Context, programID int64) ([]*models.Course, error)
	GetBatchesByCourse(ctx context.Context, courseID int64) ([]*models.Batch, error)
	GetBatchByID(ctx context.Context, id int64) (*models.Batch, error)
}

// FeeTermStore is the fee term persistence surface
type FeeTermStore interface {
	GetByID(ctx context.Context, id int64) (*models.FeeTerm, error)
}

// SequenceStore hands out formatted document numbers
type SequenceStore interface {
	NextNumber(ctx context.Context, code string) (string, error)
}

// UserStore is the login account persistence surface
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
}
