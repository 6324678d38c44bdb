package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/edafa/admissions/internal/app/models"
	"github.com/edafa/admissions/internal/db"
	"github.com/edafa/admissions/internal/pkg/dberrors"
)

// Invoice error types
var (
	ErrInvoiceNotFound      = errors.New("invoice not found")
	ErrInvoiceAlreadyExists = errors.New("invoice already exists for this admission")
)

// InvoiceRepository handles invoice database operations
type InvoiceRepository struct {
	db *db.PostgresDB
}

// NewInvoiceRepository creates a new InvoiceRepository
func NewInvoiceRepository(database *db.PostgresDB) *InvoiceRepository {
	return &InvoiceRepository{db: database}
}

const invoiceSelect = `
	SELECT id, number, admission_id, person_id, invoice_date, currency,
	       amount_untaxed, amount_tax, amount_total, state
	FROM invoices
`

func scanInvoice(row pgx.Row) (*models.Invoice, error) {
	inv := &models.Invoice{}
	err := row.Scan(
		&inv.ID, &inv.Number, &inv.AdmissionID, &inv.PersonID, &inv.InvoiceDate,
		&inv.Currency, &inv.AmountUntaxed, &inv.AmountTax, &inv.AmountTotal, &inv.State,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvoiceNotFound
		}
		return nil, fmt.Errorf("error scanning invoice: %w", err)
	}
	return inv, nil
}

// Create inserts an invoice with its lines. The unique constraint on
// admission_id turns a concurrent double-issue into ErrInvoiceAlreadyExists.
func (r *InvoiceRepository) Create(ctx context.Context, inv *models.Invoice) error {
	q := r.db.QuerierFromContext(ctx)

	err := q.QueryRow(ctx, `
		INSERT INTO invoices (number, admission_id, person_id, invoice_date, currency,
		                      amount_untaxed, amount_tax, amount_total, state)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		inv.Number, inv.AdmissionID, inv.PersonID, inv.InvoiceDate, inv.Currency,
		inv.AmountUntaxed, inv.AmountTax, inv.AmountTotal, inv.State).Scan(&inv.ID)
	if err != nil {
		if dberrors.IsDuplicateConstraintError(err, "invoices_admission_id_unique") {
			return ErrInvoiceAlreadyExists
		}
		return fmt.Errorf("error creating invoice: %w", err)
	}

	for i := range inv.Lines {
		line := &inv.Lines[i]
		line.InvoiceID = inv.ID
		err := q.QueryRow(ctx, `
			INSERT INTO invoice_lines (invoice_id, product_id, description, account_id,
			                           quantity, unit_price, tax_rate)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`,
			line.InvoiceID, line.ProductID, line.Description, line.AccountID,
			line.Quantity, line.UnitPrice, line.TaxRate).Scan(&line.ID)
		if err != nil {
			return fmt.Errorf("error creating invoice line: %w", err)
		}
	}
	return nil
}

// GetByID retrieves an invoice with its lines
func (r *InvoiceRepository) GetByID(ctx context.Context, id int64) (*models.Invoice, error) {
	q := r.db.QuerierFromContext(ctx)

	inv, err := scanInvoice(q.QueryRow(ctx, invoiceSelect+` WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}
	if err := r.loadLines(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// GetByAdmissionID retrieves the invoice of an admission
func (r *InvoiceRepository) GetByAdmissionID(ctx context.Context, admissionID int64) (*models.Invoice, error) {
	q := r.db.QuerierFromContext(ctx)

	inv, err := scanInvoice(q.QueryRow(ctx, invoiceSelect+` WHERE admission_id = $1`, admissionID))
	if err != nil {
		return nil, err
	}
	if err := r.loadLines(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *InvoiceRepository) loadLines(ctx context.Context, inv *models.Invoice) error {
	q := r.db.QuerierFromContext(ctx)

	rows, err := q.Query(ctx, `
		SELECT id, invoice_id, product_id, description, account_id, quantity, unit_price, tax_rate
		FROM invoice_lines
		WHERE invoice_id = $1
		ORDER BY id`, inv.ID)
	if err != nil {
		return fmt.Errorf("error loading invoice lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line models.InvoiceLine
		if err := rows.Scan(&line.ID, &line.InvoiceID, &line.ProductID, &line.Description,
			&line.AccountID, &line.Quantity, &line.UnitPrice, &line.TaxRate); err != nil {
			return fmt.Errorf("error scanning invoice line: %w", err)
		}
		inv.Lines = append(inv.Lines, line)
	}
	return rows.Err()
}

// UpdateState changes the invoice state
func (r *InvoiceRepository) UpdateState(ctx context.Context, id int64, state string) error {
	q := r.db.QuerierFromContext(ctx)

	tag, err := q.Exec(ctx, `UPDATE invoices SET state = $1 WHERE id = $2`, state, id)
	if err != nil {
		return fmt.Errorf("error updating invoice state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrInvoiceNotFound
	}
	return nil
}
