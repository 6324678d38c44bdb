package repositories

import (
	"errors"

	"github.com/Masterminds/squirrel"

	"github.com/edafa/admissions/internal/db"
)

// ErrNotFound is the shared sentinel for missing rows. Repositories wrap it
// in their own named errors so callers can match either.
var ErrNotFound = errors.New("record not found")

// psql is the shared statement builder with PostgreSQL placeholders
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repositories holds all the repository instances
type Repositories struct {
	AdmissionRepository *AdmissionRepository
	CycleRepository     *CycleRepository
	PersonRepository    *PersonRepository
	StudentRepository   *StudentRepository
	InvoiceRepository   *InvoiceRepository
	ProductRepository   *ProductRepository
	PaymentRepository   *PaymentRepository
	AcademicRepository  *AcademicRepository
	FeeTermRepository   *FeeTermRepository
	SequenceRepository  *SequenceRepository
	UserRepository      *UserRepository
}

// NewRepositories initializes all repositories
func NewRepositories(database *db.PostgresDB) *Repositories {
	return &Repositories{
		AdmissionRepository: NewAdmissionRepository(database),
		CycleRepository:     NewCycleRepository(database),
		PersonRepository:    NewPersonRepository(database),
		StudentRepository:   NewStudentRepository(database),
		InvoiceRepository:   NewInvoiceRepository(database),
		ProductRepository:   NewProductRepository(database),
		PaymentRepository:   NewPaymentRepository(database),
		AcademicRepository:  NewAcademicRepository(database),
		FeeTermRepository:   NewFeeTermRepository(database),
		SequenceRepository:  NewSequenceRepository(database),
		UserRepository:      NewUserRepository(database),
	}
}
