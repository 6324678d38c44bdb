package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/edafa/admissions/internal/app/models"
	"github.com/edafa/admissions/internal/db"
)

// User error types
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUserEmailExists = errors.New("user with this email already exists")
)

// UserRepository handles login account database operations
type UserRepository struct {
	db *db.PostgresDB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(database *db.PostgresDB) *UserRepository {
	return &UserRepository{db: database}
}

const userSelect = `
	SELECT id, email, password_hash, name, role_type, person_id, active, created_at
	FROM users
`

func scanUser(row pgx.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.RoleType,
		&u.PersonID, &u.Active, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("error scanning user: %w", err)
	}
	return u, nil
}

// GetByEmail retrieves a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	q := r.db.QuerierFromContext(ctx)
	return scanUser(q.QueryRow(ctx, userSelect+` WHERE email = $1 LIMIT 1`, email))
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	q := r.db.QuerierFromContext(ctx)
	return scanUser(q.QueryRow(ctx, userSelect+` WHERE id = $1`, id))
}

// Create inserts a new user account. A taken email surfaces as
// ErrUserEmailExists without poisoning the surrounding transaction, so
// callers inside one can carry on.
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	q := r.db.QuerierFromContext(ctx)

	err := q.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, name, role_type, person_id, active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		ON CONFLICT (email) DO NOTHING
		RETURNING id, created_at`,
		u.Email, u.PasswordHash, u.Name, u.RoleType, u.PersonID).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserEmailExists
		}
		return fmt.Errorf("error creating user: %w", err)
	}
	return nil
}
