package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/edafa/admissions/internal/db"
)

// Sequence error types
var (
	ErrSequenceNotFound = errors.New("sequence not found")
)

// Sequence codes
const (
	SequenceAdmission = "admission"
	SequenceInvoice   = "invoice"
)

// SequenceRepository hands out gapless formatted numbers. Each sequence row
// carries a prefix, zero-padding width, and the next value; the UPDATE with
// RETURNING makes concurrent takers serialize on the row lock.
type SequenceRepository struct {
	db *db.PostgresDB
}

// NewSequenceRepository creates a new SequenceRepository
func NewSequenceRepository(database *db.PostgresDB) *SequenceRepository {
	return &SequenceRepository{db: database}
}

// NextNumber consumes and returns the next formatted number of a sequence
func (r *SequenceRepository) NextNumber(ctx context.Context, code string) (string, error) {
	q := r.db.QuerierFromContext(ctx)

	var (
		prefix  string
		padding int
		value   int64
	)
	err := q.QueryRow(ctx, `
		UPDATE sequences
		SET next_value = next_value + 1
		WHERE code = $1
		RETURNING prefix, padding, next_value - 1`, code).Scan(&prefix, &padding, &value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrSequenceNotFound
		}
		return "", fmt.Errorf("error advancing sequence %s: %w", code, err)
	}

	return fmt.Sprintf("%s%0*d", prefix, padding, value), nil
}
