package validator

import (
	"errors"
	"regexp"
	"strings"

	"socialite/internal/apperror"

	"github.com/go-playground/validator/v10"
)

var groupNamePattern = regexp.MustCompile(`^[\p{L}\p{N}][\p{L}\p{N} _.-]*$`)

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New()

	// Custom validators
	v.RegisterValidation("group_name", validateGroupName)

	return &Validator{validate: v}
}

// Validate checks the struct's validate tags and returns a flat,
// human-readable message for the first failing field.
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		fe := validationErrors[0]
		return apperror.Validation("field %s failed validation on %s", strings.ToLower(fe.Field()), fe.Tag())
	}
	return err
}

// ValidateField checks a single value against a validation tag. Used for
// patch requests whose optional fields cannot carry struct tags.
func (v *Validator) ValidateField(name string, value any, tag string) error {
	err := v.validate.Var(value, tag)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		return apperror.Validation("field %s failed validation on %s", name, validationErrors[0].Tag())
	}
	return err
}

func validateGroupName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if len(name) < 3 || len(name) > 100 {
		return false
	}
	return groupNamePattern.MatchString(name)
}
