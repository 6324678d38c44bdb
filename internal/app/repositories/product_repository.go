package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/edafa/admissions/internal/app/models"
	"github.com/edafa/admissions/internal/db"
)

// Product error types
var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository handles product and product category database operations
type ProductRepository struct {
	db *db.PostgresDB
}

// NewProductRepository creates a new ProductRepository
func NewProductRepository(database *db.PostgresDB) *ProductRepository {
	return &ProductRepository{db: database}
}

const productSelect = `
	SELECT id, name, type, list_price, tax_rate, income_account_id, category_id, active
	FROM products
`

func scanProduct(row pgx.Row) (*models.Product, error) {
	p := &models.Product{}
	err := row.Scan(&p.ID, &p.Name, &p.Type, &p.ListPrice, &p.TaxRate,
		&p.IncomeAccountID, &p.CategoryID, &p.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("error scanning product: %w", err)
	}
	return p, nil
}

// GetByID retrieves a product, loading its category when one is set so the
// income account fallback can be resolved without another round trip.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	q := r.db.QuerierFromContext(ctx)

	p, err := scanProduct(q.QueryRow(ctx, productSelect+` WHERE id = $1`, id))
	if err != nil {
		return nil, err
	}

	if p.CategoryID != nil {
		cat := &models.ProductCategory{}
		err = q.QueryRow(ctx,
			`SELECT id, name, income_account_id FROM product_categories WHERE id = $1`,
			*p.CategoryID).Scan(&cat.ID, &cat.Name, &cat.IncomeAccountID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("error loading product category: %w", err)
		}
		if err == nil {
			p.Category = cat
		}
	}
	return p, nil
}

// FindByName returns the active product with the given name, if any
func (r *ProductRepository) FindByName(ctx context.Context, name string) (*models.Product, error) {
	q := r.db.QuerierFromContext(ctx)
	return scanProduct(q.QueryRow(ctx, productSelect+` WHERE name = $1 AND active LIMIT 1`, name))
}

// Create inserts a new product and sets its generated ID
func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	q := r.db.QuerierFromContext(ctx)

	err := q.QueryRow(ctx, `
		INSERT INTO products (name, type, list_price, tax_rate, income_account_id, category_id, active)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		RETURNING id`,
		p.Name, p.Type, p.ListPrice, p.TaxRate, p.IncomeAccountID, p.CategoryID).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("error creating product: %w", err)
	}
	return nil
}
