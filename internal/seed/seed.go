// Package seed creates the default data the application needs on first start.
package seed

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const defaultAdminEmail = "admissions@edafa.sa"

// CreateDefaultData seeds the document number sequences, a default staff
// account and a demo payment provider. Every statement is idempotent so the
// seed can run on every startup.
func CreateDefaultData(ctx context.Context, dbPool *pgxpool.Pool, lgr zerolog.Logger) error {
	var finalErr error

	// Document number sequences
	_, err := dbPool.Exec(ctx, `
		INSERT INTO sequences (code, prefix, padding, next_value)
		VALUES
			('admission', 'ADM', 5, 1),
			('invoice', 'INV', 5, 1)
		ON CONFLICT (code) DO NOTHING`)
	if err != nil {
		lgr.Error().Err(err).Msg("Error seeding sequences")
		finalErr = errors.Join(finalErr, err)
	}

	// Default staff account
	var adminExists bool
	err = dbPool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, defaultAdminEmail).Scan(&adminExists)
	if err != nil {
		lgr.Error().Err(err).Msg("Error checking for default staff account")
		finalErr = errors.Join(finalErr, err)
	} else if !adminExists {
		// A known development password. Production deployments must change it.
		hash, err := bcrypt.GenerateFromPassword([]byte("Admissions.2024!"), bcrypt.DefaultCost)
		if err != nil {
			lgr.Error().Err(err).Msg("Error hashing default staff password")
			finalErr = errors.Join(finalErr, err)
		} else {
			_, err = dbPool.Exec(ctx, `
				INSERT INTO users (email, password_hash, name, role_type, active)
				VALUES ($1, $2, 'Admissions Officer', 'STAFF', TRUE)
				ON CONFLICT (email) DO NOTHING`, defaultAdminEmail, string(hash))
			if err != nil {
				lgr.Error().Err(err).Msg("Error creating default staff account")
				finalErr = errors.Join(finalErr, err)
			} else {
				lgr.Info().Str("email", defaultAdminEmail).Msg("Default staff account created")
			}
		}
	}

	// Demo payment provider for development environments
	_, err = dbPool.Exec(ctx, `
		INSERT INTO payment_providers (name, code, redirect_url, enabled)
		VALUES ('Manual Transfer', 'manual', '', TRUE)
		ON CONFLICT (code) DO NOTHING`)
	if err != nil {
		lgr.Error().Err(err).Msg("Error seeding payment provider")
		finalErr = errors.Join(finalErr, err)
	}

	if finalErr == nil {
		lgr.Info().Msg("Default data check complete")
	}
	return finalErr
}
