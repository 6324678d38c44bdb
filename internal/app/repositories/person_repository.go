package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/edafa/admissions/internal/app/models"
	"github.com/edafa/admissions/internal/db"
)

// Person error types
var (
	ErrPersonNotFound = errors.New("person not found")
)

// PersonRepository handles person (contact) database operations
type PersonRepository struct {
	db *db.PostgresDB
}

// NewPersonRepository creates a new PersonRepository
func NewPersonRepository(database *db.PostgresDB) *PersonRepository {
	return &PersonRepository{db: database}
}

const personSelect = `
	SELECT id, name, email, phone, mobile, street, street2, city, zip, country,
	       is_student, active
	FROM people
`

func scanPerson(row pgx.Row) (*models.Person, error) {
	p := &models.Person{}
	err := row.Scan(
		&p.ID, &p.Name, &p.Email, &p.Phone, &p.Mobile, &p.Street, &p.Street2,
		&p.City, &p.Zip, &p.Country, &p.IsStudent, &p.Active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPersonNotFound
		}
		return nil, fmt.Errorf("error scanning person: %w", err)
	}
	return p, nil
}

// FindByEmail returns the person with the given email, if any
func (r *PersonRepository) FindByEmail(ctx context.Context, email string) (*models.Person, error) {
	q := r.db.QuerierFromContext(ctx)
	return scanPerson(q.QueryRow(ctx, personSelect+` WHERE email = $1 AND active LIMIT 1`, email))
}

// FindByNameAndEmail returns the person matching both name and email
func (r *PersonRepository) FindByNameAndEmail(ctx context.Context, name, email string) (*models.Person, error) {
	q := r.db.QuerierFromContext(ctx)
	return scanPerson(q.QueryRow(ctx,
		personSelect+` WHERE name = $1 AND email = $2 AND active LIMIT 1`, name, email))
}

// Create inserts a new person. A concurrent insert of the same email loses
// the race against the partial unique index; ON CONFLICT DO NOTHING keeps the
// surrounding transaction usable, and the existing row is returned instead of
// an error.
func (r *PersonRepository) Create(ctx context.Context, p *models.Person) error {
	q := r.db.QuerierFromContext(ctx)

	err := q.QueryRow(ctx, `
		INSERT INTO people (name, email, phone, mobile, street, street2, city, zip, country,
		                    is_student, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, TRUE)
		ON CONFLICT (email) WHERE email <> '' AND active DO NOTHING
		RETURNING id`,
		p.Name, p.Email, p.Phone, p.Mobile, p.Street, p.Street2, p.City, p.Zip, p.Country,
		p.IsStudent).Scan(&p.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			existing, ferr := r.FindByEmail(ctx, p.Email)
			if ferr != nil {
				return fmt.Errorf("error resolving duplicate person: %w", ferr)
			}
			*p = *existing
			return nil
		}
		return fmt.Errorf("error creating person: %w", err)
	}
	return nil
}

// Update persists changes to a person record
func (r *PersonRepository) Update(ctx context.Context, p *models.Person) error {
	q := r.db.QuerierFromContext(ctx)

	tag, err := q.Exec(ctx, `
		UPDATE people
		SET name = $1, email = $2, phone = $3, mobile = $4, street = $5, street2 = $6,
		    city = $7, zip = $8, country = $9, is_student = $10
		WHERE id = $11`,
		p.Name, p.Email, p.Phone, p.Mobile, p.Street, p.Street2,
		p.City, p.Zip, p.Country, p.IsStudent, p.ID)
	if err != nil {
		return fmt.Errorf("error updating person: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPersonNotFound
	}
	return nil
}

// GetByID retrieves a person by ID
func (r *PersonRepository) GetByID(ctx context.Context, id int64) (*models.Person, error) {
	q := r.db.QuerierFromContext(ctx)
	return scanPerson(q.QueryRow(ctx, personSelect+` WHERE id = $1`, id))
}

// MarkStudent flags the person as a student
func (r *PersonRepository) MarkStudent(ctx context.Context, id int64) error {
	q := r.db.QuerierFromContext(ctx)
	_, err := q.Exec(ctx, `UPDATE people SET is_student = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error marking person as student: %w", err)
	}
	return nil
}
