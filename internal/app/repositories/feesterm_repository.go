package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/edafa/admissions/internal/app/models"
	"github.com/edafa/admissions/internal/db"
)

// Fee term error types
var (
	ErrFeeTermNotFound = errors.New("fee term not found")
)

// FeeTermRepository handles fee term database operations
type FeeTermRepository struct {
	db *db.PostgresDB
}

// NewFeeTermRepository creates a new FeeTermRepository
func NewFeeTermRepository(database *db.PostgresDB) *FeeTermRepository {
	return &FeeTermRepository{db: database}
}

// GetByID retrieves a fee term together with its installment lines
func (r *FeeTermRepository) GetByID(ctx context.Context, id int64) (*models.FeeTerm, error) {
	q := r.db.QuerierFromContext(ctx)

	term := &models.FeeTerm{}
	err := q.QueryRow(ctx, `
		SELECT id, name, plan, discount, active
		FROM fee_terms
		WHERE id = $1`, id).Scan(&term.ID, &term.Name, &term.Plan, &term.Discount, &term.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrFeeTermNotFound
		}
		return nil, fmt.Errorf("error retrieving fee term: %w", err)
	}

	rows, err := q.Query(ctx, `
		SELECT id, term_id, name, value, due_days, due_date
		FROM fee_term_lines
		WHERE term_id = $1
		ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("error loading fee term lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line models.FeeTermLine
		if err := rows.Scan(&line.ID, &line.TermID, &line.Name, &line.Value,
			&line.DueDays, &line.DueDate); err != nil {
			return nil, fmt.Errorf("error scanning fee term line: %w", err)
		}
		term.Lines = append(term.Lines, line)
	}
	return term, rows.Err()
}
