package user

import (
	"strings"

	"github.com/google/uuid"
	"github.com/kbmproject/kbm-backend/internal/domain"
)

const (
	maxNameLength     = 255
	maxUsernameLength = 100
	maxEmailLength    = 320
)

// CreateUserInput holds parameters for user creation.
type CreateUserInput struct {
	Name     string
	Username string
	Email    string
}

// Validate validates the create user input.
func (i CreateUserInput) Validate() error {
	var errs []domain.FieldError

	if strings.TrimSpace(i.Username) == "" {
		errs = append(errs, domain.FieldError{Field: "username", Message: "required"})
	} else if len(i.Username) > maxUsernameLength {
		errs = append(errs, domain.FieldError{Field: "username", Message: "too long"})
	}

	errs = appendEmailErrors(errs, i.Email)

	if len(i.Name) > maxNameLength {
		errs = append(errs, domain.FieldError{Field: "name", Message: "too long"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// UpdateUserInput holds parameters for user update.
// Name and Username are optional (nil = don't change); Email is required.
type UpdateUserInput struct {
	ID       uuid.UUID
	Name     *string
	Username *string
	Email    string
}

// Validate validates the update user input.
func (i UpdateUserInput) Validate() error {
	var errs []domain.FieldError

	if i.ID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "id", Message: "required"})
	}

	errs = appendEmailErrors(errs, i.Email)

	if i.Username != nil {
		if strings.TrimSpace(*i.Username) == "" {
			errs = append(errs, domain.FieldError{Field: "username", Message: "must not be blank"})
		} else if len(*i.Username) > maxUsernameLength {
			errs = append(errs, domain.FieldError{Field: "username", Message: "too long"})
		}
	}

	if i.Name != nil && len(*i.Name) > maxNameLength {
		errs = append(errs, domain.FieldError{Field: "name", Message: "too long"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

func appendEmailErrors(errs []domain.FieldError, email string) []domain.FieldError {
	switch {
	case strings.TrimSpace(email) == "":
		return append(errs, domain.FieldError{Field: "email", Message: "required"})
	case !strings.Contains(email, "@"):
		return append(errs, domain.FieldError{Field: "email", Message: "invalid format"})
	case len(email) > maxEmailLength:
		return append(errs, domain.FieldError{Field: "email", Message: "too long"})
	}
	return errs
}
