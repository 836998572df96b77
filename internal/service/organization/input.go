package organization

import (
	"strings"

	"github.com/google/uuid"
	"github.com/kbmproject/kbm-backend/internal/domain"
)

const (
	maxNameLength    = 255
	maxAddressLength = 512
)

// CreateOrganizationInput holds parameters for organization creation.
type CreateOrganizationInput struct {
	Name    string
	Address *string
}

// Validate validates the create organization input.
func (i CreateOrganizationInput) Validate() error {
	errs := validateFields(nil, i.Name, i.Address)
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// UpdateOrganizationInput holds parameters for organization update.
// Address is optional (nil = don't change).
type UpdateOrganizationInput struct {
	ID      uuid.UUID
	Name    string
	Address *string
}

// Validate validates the update organization input.
func (i UpdateOrganizationInput) Validate() error {
	var errs []domain.FieldError
	if i.ID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "id", Message: "required"})
	}
	errs = validateFields(errs, i.Name, i.Address)
	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

func validateFields(errs []domain.FieldError, name string, address *string) []domain.FieldError {
	if strings.TrimSpace(name) == "" {
		errs = append(errs, domain.FieldError{Field: "name", Message: "required"})
	} else if len(name) > maxNameLength {
		errs = append(errs, domain.FieldError{Field: "name", Message: "too long"})
	}
	if address != nil && len(*address) > maxAddressLength {
		errs = append(errs, domain.FieldError{Field: "address", Message: "too long"})
	}
	return errs
}
