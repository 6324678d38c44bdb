package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/edafa/admissions/internal/app/models"
	"github.com/edafa/admissions/internal/db"
)

// Academic catalog error types
var (
	ErrDepartmentNotFound = errors.New("department not found")
	ErrProgramNotFound    = errors.New("program not found")
	ErrCourseNotFound     = errors.New("course not found")
	ErrBatchNotFound      = errors.New("batch not found")
)

// AcademicRepository handles the read-mostly academic catalog: departments,
// programs, courses and batches.
type AcademicRepository struct {
	db *db.PostgresDB
}

// NewAcademicRepository creates a new AcademicRepository
func NewAcademicRepository(database *db.PostgresDB) *AcademicRepository {
	return &AcademicRepository{db: database}
}

// GetDepartments retrieves all active departments
func (r *AcademicRepository) GetDepartments(ctx context.Context) ([]*models.Department, error) {
	q := r.db.QuerierFromContext(ctx)

	rows, err := q.Query(ctx, `SELECT id, name, code, active FROM departments WHERE active ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("error listing departments: %w", err)
	}
	defer rows.Close()

	var departments []*models.Department
	for rows.Next() {
		d := &models.Department{}
		if err := rows.Scan(&d.ID, &d.Name, &d.Code, &d.Active); err != nil {
			return nil, fmt.Errorf("error scanning department: %w", err)
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

// GetDepartmentByID retrieves a department by ID
func (r *AcademicRepository) GetDepartmentByID(ctx context.Context, id int64) (*models.Department, error) {
	q := r.db.QuerierFromContext(ctx)

	d := &models.Department{}
	err := q.QueryRow(ctx, `SELECT id, name, code, active FROM departments WHERE id = $1`, id).
		Scan(&d.ID, &d.Name, &d.Code, &d.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDepartmentNotFound
		}
		return nil, fmt.Errorf("error retrieving department: %w", err)
	}
	return d, nil
}

// GetProgramsByDepartment retrieves the active programs of a department
func (r *AcademicRepository) GetProgramsByDepartment(ctx context.Context, departmentID int64) ([]*models.Program, error) {
	q := r.db.QuerierFromContext(ctx)

	rows, err := q.Query(ctx, `
		SELECT id, department_id, name, code, active
		FROM programs
		WHERE department_id = $1 AND active
		ORDER BY name`, departmentID)
	if err != nil {
		return nil, fmt.Errorf("error listing programs: %w", err)
	}
	defer rows.Close()

	var programs []*models.Program
	for rows.Next() {
		p := &models.Program{}
		if err := rows.Scan(&p.ID, &p.DepartmentID, &p.Name, &p.Code, &p.Active); err != nil {
			return nil, fmt.Errorf("error scanning program: %w", err)
		}
		programs = append(programs, p)
	}
	return programs, rows.Err()
}

// GetProgramByID retrieves a program by ID
func (r *AcademicRepository) GetProgramByID(ctx context.Context, id int64) (*models.Program, error) {
	q := r.db.QuerierFromContext(ctx)

	p := &models.Program{}
	err := q.QueryRow(ctx, `SELECT id, department_id, name, code, active FROM programs WHERE id = $1`, id).
		Scan(&p.ID, &p.DepartmentID, &p.Name, &p.Code, &p.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProgramNotFound
		}
		return nil, fmt.Errorf("error retrieving program: %w", err)
	}
	return p, nil
}

const courseSelect = `
	SELECT id, department_id, program_id, name, code, fees_term_id, application_fee,
	       min_unit_load, max_unit_load, active
	FROM courses
`

func scanCourse(row pgx.Row) (*models.Course, error) {
	c := &models.Course{}
	err := row.Scan(&c.ID, &c.DepartmentID, &c.ProgramID, &c.Name, &c.Code,
		&c.FeesTermID, &c.ApplicationFee, &c.MinUnitLoad, &c.MaxUnitLoad, &c.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("error scanning course: %w", err)
	}
	return c, nil
}

// GetCourseByID retrieves a course by ID
func (r *AcademicRepository) GetCourseByID(ctx context.Context, id int64) (*models.Course, error) {
	q := r.db.QuerierFromContext(ctx)
	return scanCourse(q.QueryRow(ctx, courseSelect+` WHERE id = $1`, id))
}

// GetCoursesByProgram retrieves the active courses of a program
func (r *AcademicRepository) GetCoursesByProgram(ctx context.Context, programID int64) ([]*models.Course, error) {
	q := r.db.QuerierFromContext(ctx)

	rows, err := q.Query(ctx, courseSelect+` WHERE program_id = $1 AND active ORDER BY name`, programID)
	if err != nil {
		return nil, fmt.Errorf("error listing courses: %w", err)
	}
	defer rows.Close()

	var courses []*models.Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		courses = append(courses, c)
	}
	return courses, rows.Err()
}

// GetBatchesByCourse retrieves the active batches of a course
func (r *AcademicRepository) GetBatchesByCourse(ctx context.Context, courseID int64) ([]*models.Batch, error) {
	q := r.db.QuerierFromContext(ctx)

	rows, err := q.Query(ctx, `
		SELECT id, course_id, name, start_date, end_date, active
		FROM batches
		WHERE course_id = $1 AND active
		ORDER BY start_date, id`, courseID)
	if err != nil {
		return nil, fmt.Errorf("error listing batches: %w", err)
	}
	defer rows.Close()

	var batches []*models.Batch
	for rows.Next() {
		b := &models.Batch{}
		if err := rows.Scan(&b.ID, &b.CourseID, &b.Name, &b.StartDate, &b.EndDate, &b.Active); err != nil {
			return nil, fmt.Errorf("error scanning batch: %w", err)
		}
		batches = append(batches, b)
	}
	return batches, rows.Err()
}

// GetBatchByID retrieves a batch by ID
func (r *AcademicRepository) GetBatchByID(ctx context.Context, id int64) (*models.Batch, error) {
	q := r.db.QuerierFromContext(ctx)

	b := &models.Batch{}
	err := q.QueryRow(ctx, `SELECT id, course_id, name, start_date, end_date, active FROM batches WHERE id = $1`, id).
		Scan(&b.ID, &b.CourseID, &b.Name, &b.StartDate, &b.EndDate, &b.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBatchNotFound
		}
		return nil, fmt.Errorf("error retrieving batch: %w", err)
	}
	return b, nil
}
