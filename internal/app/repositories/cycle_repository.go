package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/edafa/admissions/internal/app/models"
	"github.com/edafa/admissions/internal/db"
)

// Cycle error types
var (
	ErrCycleNotFound = errors.New("admission cycle not found")
)

// CycleRepository handles admission cycle database operations
type CycleRepository struct {
	db *db.PostgresDB
}

// NewCycleRepository creates a new CycleRepository
func NewCycleRepository(database *db.PostgresDB) *CycleRepository {
	return &CycleRepository{db: database}
}

const cycleSelect = `
	SELECT id, name, start_date, end_date, min_count, max_count, minimum_age,
	       scope, product_id, course_id, program_id, academic_year_id,
	       academic_term_id, state, active
	FROM admission_cycles
`

func (r *CycleRepository) scanCycle(row pgx.Row) (*models.AdmissionCycle, error) {
	c := &models.AdmissionCycle{}
	err := row.Scan(
		&c.ID, &c.Name, &c.StartDate, &c.EndDate, &c.MinCount, &c.MaxCount, &c.MinimumAge,
		&c.Scope, &c.ProductID, &c.CourseID, &c.ProgramID, &c.AcademicYearID,
		&c.AcademicTermID, &c.State, &c.Active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCycleNotFound
		}
		return nil, fmt.Errorf("error scanning admission cycle: %w", err)
	}
	return c, nil
}

// GetByID retrieves a cycle together with its fee lines
func (r *CycleRepository) GetByID(ctx context.Context, id int64) (*models.AdmissionCycle, error) {
	q := r.db.QuerierFromContext(ctx)

	cycle, err := r.scanCycle(q.QueryRow(ctx, cycleSelect+` WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}

	if err := r.loadFeeLines(ctx, cycle); err != nil {
		return nil, err
	}
	return cycle, nil
}

func (r *CycleRepository) loadFeeLines(ctx context.Context, cycle *models.AdmissionCycle) error {
	q := r.db.QuerierFromContext(ctx)

	rows, err := q.Query(ctx, `
		SELECT id, cycle_id, course_id, product_id
		FROM admission_cycle_fee_lines
		WHERE cycle_id = $1
		ORDER BY id`, cycle.ID)
	if err != nil {
		return fmt.Errorf("error loading cycle fee lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line models.CycleFeeLine
		if err := rows.Scan(&line.ID, &line.CycleID, &line.CourseID, &line.ProductID); err != nil {
			return fmt.Errorf("error scanning cycle fee line: %w", err)
		}
		cycle.FeeLines = append(cycle.FeeLines, line)
	}
	return rows.Err()
}

// ListOpen returns active cycles whose application window contains now
func (r *CycleRepository) ListOpen(ctx context.Context, now time.Time) ([]*models.AdmissionCycle, error) {
	q := r.db.QuerierFromContext(ctx)

	rows, err := q.Query(ctx, cycleSelect+`
		WHERE active AND state = $1 AND start_date <= $2 AND (end_date IS NULL OR end_date >= $2)
		ORDER BY start_date, id`, models.CycleApplication, now)
	if err != nil {
		return nil, fmt.Errorf("error listing open cycles: %w", err)
	}
	defer rows.Close()

	var cycles []*models.AdmissionCycle
	for rows.Next() {
		c, err := r.scanCycle(rows)
		if err != nil {
			return nil, err
		}
		cycles = append(cycles, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cycles: %w", err)
	}

	for _, c := range cycles {
		if err := r.loadFeeLines(ctx, c); err != nil {
			return nil, err
		}
	}
	return cycles, nil
}

// LockForUpdate takes a row lock on the cycle for the rest of the current
// transaction. Capacity checks count admissions while this lock is held so
// two concurrent enrollments cannot both pass the check.
func (r *CycleRepository) LockForUpdate(ctx context.Context, id int64) error {
	q := r.db.QuerierFromContext(ctx)

	var locked int64
	err := q.QueryRow(ctx, `SELECT id FROM admission_cycles WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCycleNotFound
		}
		return fmt.Errorf("error locking admission cycle: %w", err)
	}
	return nil
}
