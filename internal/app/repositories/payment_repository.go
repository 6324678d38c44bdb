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

// Payment error types
var (
	ErrTransactionNotFound = errors.New("payment transaction not found")
	ErrProviderNotFound    = errors.New("payment provider not found")
)

// PaymentRepository handles payment provider and transaction database operations
type PaymentRepository struct {
	db *db.PostgresDB
}

// NewPaymentRepository creates a new PaymentRepository
func NewPaymentRepository(database *db.PostgresDB) *PaymentRepository {
	return &PaymentRepository{db: database}
}

// GetProvider retrieves an enabled payment provider
func (r *PaymentRepository) GetProvider(ctx context.Context, id int64) (*models.PaymentProvider, error) {
	q := r.db.QuerierFromContext(ctx)

	p := &models.PaymentProvider{}
	err := q.QueryRow(ctx, `
		SELECT id, name, code, redirect_url, enabled
		FROM payment_providers
		WHERE id = $1 AND enabled`, id).Scan(&p.ID, &p.Name, &p.Code, &p.RedirectURL, &p.Enabled)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProviderNotFound
		}
		return nil, fmt.Errorf("error retrieving payment provider: %w", err)
	}
	return p, nil
}

const transactionSelect = `
	SELECT id, reference, provider_id, admission_id, person_id, amount, currency,
	       state, last_state_change, created_at
	FROM payment_transactions
`

func scanTransaction(row pgx.Row) (*models.PaymentTransaction, error) {
	tx := &models.PaymentTransaction{}
	err := row.Scan(
		&tx.ID, &tx.Reference, &tx.ProviderID, &tx.AdmissionID, &tx.PersonID,
		&tx.Amount, &tx.Currency, &tx.State, &tx.LastStateChange, &tx.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("error scanning payment transaction: %w", err)
	}
	return tx, nil
}

// CreateTransaction inserts a new payment transaction
func (r *PaymentRepository) CreateTransaction(ctx context.Context, tx *models.PaymentTransaction) error {
	q := r.db.QuerierFromContext(ctx)

	err := q.QueryRow(ctx, `
		INSERT INTO payment_transactions (reference, provider_id, admission_id, person_id,
		                                  amount, currency, state, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		tx.Reference, tx.ProviderID, tx.AdmissionID, tx.PersonID,
		tx.Amount, tx.Currency, tx.State, tx.CreatedAt).Scan(&tx.ID)
	if err != nil {
		return fmt.Errorf("error creating payment transaction: %w", err)
	}
	return nil
}

// GetTransaction retrieves a transaction by ID
func (r *PaymentRepository) GetTransaction(ctx context.Context, id int64) (*models.PaymentTransaction, error) {
	q := r.db.QuerierFromContext(ctx)
	return scanTransaction(q.QueryRow(ctx, transactionSelect+` WHERE id = $1`, id))
}

// UpdateTransactionState updates the provider-reported state of a transaction
func (r *PaymentRepository) UpdateTransactionState(ctx context.Context, id int64, state models.TransactionState, at time.Time) error {
	q := r.db.QuerierFromContext(ctx)

	tag, err := q.Exec(ctx, `
		UPDATE payment_transactions
		SET state = $1, last_state_change = $2
		WHERE id = $3`, state, at, id)
	if err != nil {
		return fmt.Errorf("error updating transaction state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTransactionNotFound
	}
	return nil
}
