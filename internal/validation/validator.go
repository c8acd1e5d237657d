// Package validation wraps the validator/v10 library and converts its errors
// into domain validation errors with per-field details.
package validation

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/threadkeep/threadkeep-server/internal/domain"
	domainerrors "github.com/threadkeep/threadkeep-server/internal/errors"
)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator configured for our domain. Registers the custom
// tags `slug` (lowercase-hyphen slug format), `viewcolumn` (allowed view
// column key), and `platform` (supported blogging platform).
func New() *Validator {
	v := validator.New()

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("json")
		if name == "" {
			return fld.Name
		}
		// Remove options like omitempty
		for i := range len(name) {
			if name[i] == ',' {
				return name[:i]
			}
		}
		return name
	})

	// Registration only fails for empty tag names, which these are not.
	//nolint:errcheck
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return domain.IsValidSlugFormat(fl.Field().String())
	})
	//nolint:errcheck
	_ = v.RegisterValidation("viewcolumn", func(fl validator.FieldLevel) bool {
		return domain.IsAllowedViewColumn(fl.Field().String())
	})
	//nolint:errcheck
	_ = v.RegisterValidation("platform", func(fl validator.FieldLevel) bool {
		return domain.Platform(fl.Field().String()).IsValid()
	})

	return &Validator{v: v}
}

// Validate validates a struct and returns a domain error.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return v.formatError(err)
	}
	return nil
}

// formatError converts validator errors to domain errors.
func (v *Validator) formatError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	fieldErrors := make(map[string]string)
	for _, e := range validationErrs {
		fieldErrors[e.Field()] = v.friendlyMessage(e)
	}

	return domainerrors.ValidationWithDetails("validation failed", fieldErrors)
}

func (v *Validator) friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of: " + e.Param()
	case "slug":
		return "must be lowercase letters, digits, and single hyphens"
	case "viewcolumn":
		return "is not a displayable column"
	case "platform":
		return "is not a supported platform"
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	default:
		return "is invalid"
	}
}
