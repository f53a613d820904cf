package utils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/limistah/bank-reconciliation/internal/apperrors"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// ValidateStruct validates a struct using validator tags. Failures come back as
// an *apperrors.ValidationError with one detail per field.
func ValidateStruct(s interface{}) error {
	if err := validate.Struct(s); err != nil {
		return FormatValidationError(err)
	}
	return nil
}

// FieldErrors returns the validator failures of s as field errors
func FieldErrors(s interface{}) []apperrors.FieldError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []apperrors.FieldError{{Message: err.Error()}}
	}
	out := make([]apperrors.FieldError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		out = append(out, apperrors.FieldError{
			Field:   toSnake(fe.Field()),
			Message: getErrorMessage(fe),
		})
	}
	return out
}

// FormatValidationError converts validator errors to user-friendly messages
func FormatValidationError(err error) error {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	details := make([]apperrors.FieldError, 0, len(validationErrors))
	for _, fe := range validationErrors {
		details = append(details, apperrors.FieldError{
			Field:   toSnake(fe.Field()),
			Message: getErrorMessage(fe),
		})
	}
	return apperrors.NewValidationError("invalid request", details...)
}

func getErrorMessage(fe validator.FieldError) string {
	field := toSnake(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "gtfield":
		return fmt.Sprintf("%s must be after %s", field, toSnake(fe.Param()))
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// toSnake turns a Go field name like FileFormat into file_format
func toSnake(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 && !(name[i-1] >= 'A' && name[i-1] <= 'Z') {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
