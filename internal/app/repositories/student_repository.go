package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/edafa/admissions/internal/app/models"
	"github.com/edafa/admissions/internal/db"
)

// Student error types
var (
	ErrStudentNotFound = errors.New("student not found")
)

// StudentRepository handles student database operations
type StudentRepository struct {
	db *db.PostgresDB
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(database *db.PostgresDB) *StudentRepository {
	return &StudentRepository{db: database}
}

const studentSelect = `
	SELECT id, person_id, user_id, registration_number, first_name, middle_name,
	       last_name, birth_date, gender, active
	FROM students
`

func scanStudent(row pgx.Row) (*models.Student, error) {
	s := &models.Student{}
	err := row.Scan(
		&s.ID, &s.PersonID, &s.UserID, &s.RegistrationNumber, &s.FirstName,
		&s.MiddleName, &s.LastName, &s.BirthDate, &s.Gender, &s.Active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("error scanning student: %w", err)
	}
	return s, nil
}

// FindByPersonID returns the student record linked to a person, if any
func (r *StudentRepository) FindByPersonID(ctx context.Context, personID int64) (*models.Student, error) {
	q := r.db.QuerierFromContext(ctx)
	return scanStudent(q.QueryRow(ctx, studentSelect+` WHERE person_id = $1 AND active LIMIT 1`, personID))
}

// GetByID retrieves a student by ID
func (r *StudentRepository) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	q := r.db.QuerierFromContext(ctx)
	return scanStudent(q.QueryRow(ctx, studentSelect+` WHERE id = $1`, id))
}

// Create inserts a new student and sets its generated ID
func (r *StudentRepository) Create(ctx context.Context, s *models.Student) error {
	q := r.db.QuerierFromContext(ctx)

	err := q.QueryRow(ctx, `
		INSERT INTO students (person_id, user_id, registration_number, first_name,
		                      middle_name, last_name, birth_date, gender, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE)
		RETURNING id`,
		s.PersonID, s.UserID, s.RegistrationNumber, s.FirstName,
		s.MiddleName, s.LastName, s.BirthDate, s.Gender).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("error creating student: %w", err)
	}
	return nil
}

// SetUser links a provisioned portal account
func (r *StudentRepository) SetUser(ctx context.Context, studentID, userID int64) error {
	q := r.db.QuerierFromContext(ctx)
	_, err := q.Exec(ctx, `UPDATE students SET user_id = $1 WHERE id = $2`, userID, studentID)
	if err != nil {
		return fmt.Errorf("error linking portal user to student: %w", err)
	}
	return nil
}

// AddCourseDetail appends a course assignment to a student
func (r *StudentRepository) AddCourseDetail(ctx context.Context, d *models.CourseDetail) error {
	q := r.db.QuerierFromContext(ctx)

	err := q.QueryRow(ctx, `
		INSERT INTO student_course_details (student_id, course_id, batch_id, academic_year_id,
		                                    academic_term_id, fees_term_id, fees_start_date,
		                                    product_id, state)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		d.StudentID, d.CourseID, d.BatchID, d.AcademicYearID,
		d.AcademicTermID, d.FeesTermID, d.FeesStartDate, d.ProductID, d.State).Scan(&d.ID)
	if err != nil {
		return fmt.Errorf("error creating course detail: %w", err)
	}
	return nil
}

// GetCourseDetails returns the course assignments of a student, oldest first
func (r *StudentRepository) GetCourseDetails(ctx context.Context, studentID int64) ([]models.CourseDetail, error) {
	q := r.db.QuerierFromContext(ctx)

	rows, err := q.Query(ctx, `
		SELECT id, student_id, course_id, batch_id, academic_year_id, academic_term_id,
		       fees_term_id, fees_start_date, product_id, state
		FROM student_course_details
		WHERE student_id = $1
		ORDER BY id`, studentID)
	if err != nil {
		return nil, fmt.Errorf("error loading course details: %w", err)
	}
	defer rows.Close()

	var details []models.CourseDetail
	for rows.Next() {
		var d models.CourseDetail
		if err := rows.Scan(&d.ID, &d.StudentID, &d.CourseID, &d.BatchID, &d.AcademicYearID,
			&d.AcademicTermID, &d.FeesTermID, &d.FeesStartDate, &d.ProductID, &d.State); err != nil {
			return nil, fmt.Errorf("error scanning course detail: %w", err)
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

// AddFeeDue inserts one scheduled fee installment
func (r *StudentRepository) AddFeeDue(ctx context.Context, due *models.StudentFeeDue) error {
	q := r.db.QuerierFromContext(ctx)

	err := q.QueryRow(ctx, `
		INSERT INTO student_fee_dues (student_id, fee_line_id, amount, percentage, due_date,
		                              product_id, course_id, batch_id, discount, state)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		due.StudentID, due.FeeLineID, due.Amount, due.Percentage, due.DueDate,
		due.ProductID, due.CourseID, due.BatchID, due.Discount, due.State).Scan(&due.ID)
	if err != nil {
		return fmt.Errorf("error creating fee due: %w", err)
	}
	return nil
}

// GetFeeDues returns the fee installments of a student ordered by due date
func (r *StudentRepository) GetFeeDues(ctx context.Context, studentID int64) ([]models.StudentFeeDue, error) {
	q := r.db.QuerierFromContext(ctx)

	rows, err := q.Query(ctx, `
		SELECT id, student_id, fee_line_id, amount, percentage, due_date,
		       product_id, course_id, batch_id, discount, state
		FROM student_fee_dues
		WHERE student_id = $1
		ORDER BY due_date, id`, studentID)
	if err != nil {
		return nil, fmt.Errorf("error loading fee dues: %w", err)
	}
	defer rows.Close()

	var dues []models.StudentFeeDue
	for rows.Next() {
		var d models.StudentFeeDue
		if err := rows.Scan(&d.ID, &d.StudentID, &d.FeeLineID, &d.Amount, &d.Percentage,
			&d.DueDate, &d.ProductID, &d.CourseID, &d.BatchID, &d.Discount, &d.State); err != nil {
			return nil, fmt.Errorf("error scanning fee due: %w", err)
		}
		dues = append(dues, d)
	}
	return dues, rows.Err()
}

// AddSubjectRegistration opens a subject registration window for a student
func (r *StudentRepository) AddSubjectRegistration(ctx context.Context, reg *models.SubjectRegistration) error {
	q := r.db.QuerierFromContext(ctx)

	err := q.QueryRow(ctx, `
		INSERT INTO subject_registrations (student_id, course_id, batch_id,
		                                   min_unit_load, max_unit_load, state)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		reg.StudentID, reg.CourseID, reg.BatchID,
		reg.MinUnitLoad, reg.MaxUnitLoad, reg.State).Scan(&reg.ID)
	if err != nil {
		return fmt.Errorf("error creating subject registration: %w", err)
	}
	return nil
}
