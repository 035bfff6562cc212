package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"shop-crud/internal/apperror"

	"github.com/go-playground/validator/v10"
)

// Validator checks `validate` struct tags and reports only the first failing field,
// in struct declaration order, using its JSON name.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.Split(f.Tag.Get("json"), ",")[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return &Validator{validate: v}
}

func (v *Validator) Struct(s any) error {
	return v.first(v.validate.Struct(s))
}

// StructPartial validates only the named Go struct fields of s.
func (v *Validator) StructPartial(s any, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	return v.first(v.validate.StructPartial(s, fields...))
}

func (v *Validator) first(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return apperror.Validation(fe.Field(), Message(fe))
	}
	return apperror.Internal(fmt.Errorf("validate: %w", err))
}

// Message renders a human readable message for a single field failure.
func Message(fe validator.FieldError) string {
	field := fe.Field()
	isText := fe.Kind() == reflect.String

	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		if isText {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if isText {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "email":
		return field + " must be a valid email address"
	case "url":
		return field + " must be a valid URL"
	case "alphanum":
		return field + " may only contain letters and digits"
	default:
		return field + " is invalid"
	}
}

// TypeMismatch is the message for a JSON value of the wrong type, e.g. a string sent for price.
// want carries its article: "a number", "an integer".
func TypeMismatch(field, want string) string {
	return fmt.Sprintf("%s must be %s", field, want)
}
