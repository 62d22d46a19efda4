package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"customer-registry/internal/pkg/apperrors"
	"customer-registry/internal/pkg/optional"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports fields by their JSON key rather than the Go field name.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateStruct returns the first failing field as an apperrors.ValidationError.
func validateStruct(s any) error {
	if err := validate.Struct(s); err != nil {
		return toValidationError("", err)
	}
	return nil
}

func validateField(field string, value any, tag string) error {
	if err := validate.Var(value, tag); err != nil {
		return toValidationError(field, err)
	}
	return nil
}

// validatePresent checks a non-nullable optional field: absent is fine,
// explicit null is rejected, anything else must satisfy tag.
func validatePresent(field string, v optional.Value[string], tag string) error {
	if v.IsNull() {
		return apperrors.NewValidationError(field, "cannot be null")
	}
	value, ok := v.Get()
	if !ok {
		return nil
	}
	return validateField(field, value, tag)
}

// validateNullable checks a nullable optional field: absent and null are fine.
func validateNullable(field string, v optional.Value[*string], tag string) error {
	value, ok := v.Get()
	if !ok || value == nil {
		return nil
	}
	return validateField(field, *value, tag)
}

func toValidationError(field string, err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}

	fe := fieldErrs[0]
	if field == "" {
		field = fe.Field()
	}
	return apperrors.NewValidationError(field, describe(fe))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed the '%s' check", fe.Tag())
	}
}
