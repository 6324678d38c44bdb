package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/edafa/admissions/internal/app/models"
	"github.com/edafa/admissions/internal/app/repositories"
	"github.com/edafa/admissions/internal/pkg/apperrors"
)

// IdentityService resolves applicants to canonical person records. The same
// email always resolves to the same person, and resolution never overwrites
// contact data that is already present.
type IdentityService struct {
	personStore PersonStore
}

// NewIdentityService creates a new identity service instance
func NewIdentityService(personStore PersonStore) *IdentityService {
	return &IdentityService{personStore: personStore}
}

// ResolvePerson finds or creates the person for the given identity. Lookup
// tries email first, then the name/email pair; on a hit, empty fields are
// filled from the supplied data and populated fields are left untouched.
func (s *IdentityService) ResolvePerson(ctx context.Context, name, email string, contact models.ContactFields) (*models.Person, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(strings.ToLower(email))

	if name == "" {
		return nil, apperrors.NewValidationError("person name is required")
	}

	var person *models.Person
	if email != "" {
		p, err := s.personStore.FindByEmail(ctx, email)
		if err != nil && !errors.Is(err, repositories.ErrPersonNotFound) {
			return nil, fmt.Errorf("error looking up person by email: %w", err)
		}
		person = p
	}

	if person == nil {
		p, err := s.personStore.FindByNameAndEmail(ctx, name, email)
		if err != nil && !errors.Is(err, repositories.ErrPersonNotFound) {
			return nil, fmt.Errorf("error looking up person by name and email: %w", err)
		}
		person = p
	}

	if person == nil {
		person = &models.Person{
			Name:    name,
			Email:   email,
			Phone:   contact.Phone,
			Mobile:  contact.Mobile,
			Street:  contact.Street,
			Street2: contact.Street2,
			City:    contact.City,
			Zip:     contact.Zip,
			Country: contact.Country,
		}
		if err := s.personStore.Create(ctx, person); err != nil {
			return nil, fmt.Errorf("error creating person: %w", err)
		}
		return person, nil
	}

	if person.MergeMissing(name, contact) {
		if err := s.personStore.Update(ctx, person); err != nil {
			return nil, fmt.Errorf("error updating person: %w", err)
		}
	}
	return person, nil
}
