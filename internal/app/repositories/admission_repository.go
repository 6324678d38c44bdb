package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/edafa/admissions/internal/app/models"
	"github.com/edafa/admissions/internal/db"
	"github.com/edafa/admissions/internal/pkg/logger"
)

// Admission error types
var (
	ErrAdmissionNotFound      = errors.New("admission not found")
	ErrAdmissionNumberTaken   = errors.New("application number already in use")
	ErrAdmissionInvoiceExists = errors.New("admission already has an invoice")
)

// admissionColumns lists the full column set scanned by scanAdmission, in order.
var admissionColumns = []string{
	"id", "application_number", "first_name", "middle_name", "last_name", "name",
	"title", "birth_date", "gender", "email", "phone", "mobile",
	"street", "street2", "city", "zip", "country", "photo_path",
	"prev_institute", "prev_course", "prev_result", "family_business", "family_income",
	"department_id", "program_id", "course_id", "batch_id", "cycle_id",
	"person_id", "student_id", "invoice_id", "transaction_id",
	"fees_term_id", "fees_start_date", "fee", "currency", "discount",
	"payment_status", "payment_date", "payment_reference",
	"status", "access_token", "application_date", "admission_date", "is_student", "active",
}

// AdmissionRepository handles admission database operations
type AdmissionRepository struct {
	db *db.PostgresDB
}

// NewAdmissionRepository creates a new AdmissionRepository
func NewAdmissionRepository(database *db.PostgresDB) *AdmissionRepository {
	return &AdmissionRepository{db: database}
}

func scanAdmission(row pgx.Row) (*models.Admission, error) {
	a := &models.Admission{}
	err := row.Scan(
		&a.ID, &a.ApplicationNumber, &a.FirstName, &a.MiddleName, &a.LastName, &a.Name,
		&a.Title, &a.BirthDate, &a.Gender, &a.Email, &a.Phone, &a.Mobile,
		&a.Street, &a.Street2, &a.City, &a.Zip, &a.Country, &a.PhotoPath,
		&a.PrevInstitute, &a.PrevCourse, &a.PrevResult, &a.FamilyBusiness, &a.FamilyIncome,
		&a.DepartmentID, &a.ProgramID, &a.CourseID, &a.BatchID, &a.CycleID,
		&a.PersonID, &a.StudentID, &a.InvoiceID, &a.TransactionID,
		&a.FeesTermID, &a.FeesStartDate, &a.Fee, &a.Currency, &a.Discount,
		&a.PaymentStatus, &a.PaymentDate, &a.PaymentReference,
		&a.Status, &a.AccessToken, &a.ApplicationDate, &a.AdmissionDate, &a.IsStudent, &a.Active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAdmissionNotFound
		}
		return nil, fmt.Errorf("error scanning admission: %w", err)
	}
	return a, nil
}

// Create inserts a new admission and sets its generated ID
func (r *AdmissionRepository) Create(ctx context.Context, a *models.Admission) error {
	q := r.db.QuerierFromContext(ctx)

	sql, args, err := psql.Insert("admissions").
		Columns(
			"application_number", "first_name", "middle_name", "last_name", "name",
			"title", "birth_date", "gender", "email", "phone", "mobile",
			"street", "street2", "city", "zip", "country",
			"prev_institute", "prev_course", "prev_result", "family_business", "family_income",
			"department_id", "program_id", "course_id", "batch_id", "cycle_id",
			"person_id", "fees_term_id", "fees_start_date", "fee", "currency", "discount",
			"payment_status", "status", "access_token", "application_date", "active",
		).
		Values(
			a.ApplicationNumber, a.FirstName, a.MiddleName, a.LastName, a.Name,
			a.Title, a.BirthDate, a.Gender, a.Email, a.Phone, a.Mobile,
			a.Street, a.Street2, a.City, a.Zip, a.Country,
			a.PrevInstitute, a.PrevCourse, a.PrevResult, a.FamilyBusiness, a.FamilyIncome,
			a.DepartmentID, a.ProgramID, a.CourseID, a.BatchID, a.CycleID,
			a.PersonID, a.FeesTermID, a.FeesStartDate, a.Fee, a.Currency, a.Discount,
			a.PaymentStatus, a.Status, a.AccessToken, a.ApplicationDate, a.Active,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create admission SQL")
		return fmt.Errorf("failed to build create admission query: %w", err)
	}

	err = q.QueryRow(ctx, sql, args...).Scan(&a.ID)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing create admission query")
		return fmt.Errorf("error creating admission: %w", err)
	}
	return nil
}

// GetByID retrieves an admission by ID
func (r *AdmissionRepository) GetByID(ctx context.Context, id int64) (*models.Admission, error) {
	q := r.db.QuerierFromContext(ctx)

	sql, args, err := psql.Select(admissionColumns...).
		From("admissions").
		Where(squirrel.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get admission query: %w", err)
	}

	return scanAdmission(q.QueryRow(ctx, sql, args...))
}

// GetByApplicationNumber retrieves an admission by its application number and
// applicant email. Both must match; the pair is what the public status
// endpoint accepts.
func (r *AdmissionRepository) GetByApplicationNumber(ctx context.Context, number, email string) (*models.Admission, error) {
	q := r.db.QuerierFromContext(ctx)

	sql, args, err := psql.Select(admissionColumns...).
		From("admissions").
		Where(squirrel.Eq{"application_number": number, "email": email}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get admission query: %w", err)
	}

	return scanAdmission(q.QueryRow(ctx, sql, args...))
}

// UpdateStatus changes the lifecycle status of an admission
func (r *AdmissionRepository) UpdateStatus(ctx context.Context, id int64, status models.AdmissionState) error {
	q := r.db.QuerierFromContext(ctx)

	tag, err := q.Exec(ctx, `UPDATE admissions SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("error updating admission status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAdmissionNotFound
	}
	return nil
}

// UpdateSelection updates the course/batch selection and the fee fields that
// were recomputed for the new selection.
func (r *AdmissionRepository) UpdateSelection(ctx context.Context, a *models.Admission) error {
	q := r.db.QuerierFromContext(ctx)

	tag, err := q.Exec(ctx, `
		UPDATE admissions
		SET course_id = $1, batch_id = $2, department_id = $3, program_id = $4,
		    fees_term_id = $5, fee = $6, currency = $7
		WHERE id = $8`,
		a.CourseID, a.BatchID, a.DepartmentID, a.ProgramID,
		a.FeesTermID, a.Fee, a.Currency, a.ID)
	if err != nil {
		return fmt.Errorf("error updating admission selection: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAdmissionNotFound
	}
	return nil
}

// SetPerson links the resolved person record
func (r *AdmissionRepository) SetPerson(ctx context.Context, id, personID int64) error {
	q := r.db.QuerierFromContext(ctx)
	_, err := q.Exec(ctx, `UPDATE admissions SET person_id = $1 WHERE id = $2`, personID, id)
	if err != nil {
		return fmt.Errorf("error linking person to admission: %w", err)
	}
	return nil
}

// SetPhotoPath stores the uploaded photo path
func (r *AdmissionRepository) SetPhotoPath(ctx context.Context, id int64, path string) error {
	q := r.db.QuerierFromContext(ctx)
	tag, err := q.Exec(ctx, `UPDATE admissions SET photo_path = $1 WHERE id = $2`, path, id)
	if err != nil {
		return fmt.Errorf("error updating admission photo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAdmissionNotFound
	}
	return nil
}

// SetInvoice links the issued invoice
func (r *AdmissionRepository) SetInvoice(ctx context.Context, id, invoiceID int64) error {
	q := r.db.QuerierFromContext(ctx)
	_, err := q.Exec(ctx, `UPDATE admissions SET invoice_id = $1 WHERE id = $2`, invoiceID, id)
	if err != nil {
		return fmt.Errorf("error linking invoice to admission: %w", err)
	}
	return nil
}

// SetTransaction links the active payment transaction
func (r *AdmissionRepository) SetTransaction(ctx context.Context, id, transactionID int64) error {
	q := r.db.QuerierFromContext(ctx)
	_, err := q.Exec(ctx, `UPDATE admissions SET transaction_id = $1 WHERE id = $2`, transactionID, id)
	if err != nil {
		return fmt.Errorf("error linking transaction to admission: %w", err)
	}
	return nil
}

// SetPaymentResult records the outcome of payment reconciliation in one
// statement so status and payment fields move together.
func (r *AdmissionRepository) SetPaymentResult(ctx context.Context, a *models.Admission) error {
	q := r.db.QuerierFromContext(ctx)

	tag, err := q.Exec(ctx, `
		UPDATE admissions
		SET payment_status = $1, payment_date = $2, payment_reference = $3, status = $4
		WHERE id = $5`,
		a.PaymentStatus, a.PaymentDate, a.PaymentReference, a.Status, a.ID)
	if err != nil {
		return fmt.Errorf("error recording payment result: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAdmissionNotFound
	}
	return nil
}

// SetEnrollment marks the admission done and links the created student
func (r *AdmissionRepository) SetEnrollment(ctx context.Context, id, studentID int64, admissionDate time.Time) error {
	q := r.db.QuerierFromContext(ctx)

	tag, err := q.Exec(ctx, `
		UPDATE admissions
		SET student_id = $1, admission_date = $2, is_student = TRUE, status = $3
		WHERE id = $4`,
		studentID, admissionDate, models.StateDone, id)
	if err != nil {
		return fmt.Errorf("error recording enrollment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAdmissionNotFound
	}
	return nil
}

// AdmissionFilter narrows the staff listing
type AdmissionFilter struct {
	CycleID *int64
	Status  *models.AdmissionState
	Email   string
}

// List returns a page of admissions plus the total match count
func (r *AdmissionRepository) List(ctx context.Context, filter AdmissionFilter, offset uint64, limit int) ([]*models.Admission, int64, error) {
	q := r.db.QuerierFromContext(ctx)

	where := squirrel.And{squirrel.Eq{"active": true}}
	if filter.CycleID != nil {
		where = append(where, squirrel.Eq{"cycle_id": *filter.CycleID})
	}
	if filter.Status != nil {
		where = append(where, squirrel.Eq{"status": *filter.Status})
	}
	if filter.Email != "" {
		where = append(where, squirrel.Eq{"email": filter.Email})
	}

	countSQL, countArgs, err := psql.Select("COUNT(*)").From("admissions").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count admissions query: %w", err)
	}

	var total int64
	if err := q.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting admissions: %w", err)
	}

	sql, args, err := psql.Select(admissionColumns...).
		From("admissions").
		Where(where).
		OrderBy("application_date DESC", "id DESC").
		Offset(offset).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build list admissions query: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error listing admissions: %w", err)
	}
	defer rows.Close()

	var admissions []*models.Admission
	for rows.Next() {
		a, err := scanAdmission(rows)
		if err != nil {
			return nil, 0, err
		}
		admissions = append(admissions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating admissions: %w", err)
	}

	return admissions, total, nil
}

// CountInStatus counts admissions of a cycle in a given status. Used for the
// capacity check; call it inside a transaction that holds the cycle row lock.
func (r *AdmissionRepository) CountInStatus(ctx context.Context, cycleID int64, status models.AdmissionState) (int, error) {
	q := r.db.QuerierFromContext(ctx)

	var count int
	err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM admissions WHERE cycle_id = $1 AND status = $2 AND active`,
		cycleID, status).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting admissions in status: %w", err)
	}
	return count, nil
}
