package models

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/basher83/zammad-mcp/internal/output"
)

var paramValidator = newParamValidator()

func newParamValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// normalizer is implemented by params that fill defaults before the
// constraint checks run.
type normalizer interface {
	Normalize()
}

// CheckParams normalizes and validates a tool input struct, returning
// a field-scoped validation error on the first violated constraint.
func CheckParams(p any) error {
	if n, ok := p.(normalizer); ok {
		n.Normalize()
	}
	err := paramValidator.Struct(p)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return output.ErrValidation("", err.Error())
	}
	fe := verrs[0]
	return output.ErrValidation(fe.Field(), constraintMessage(fe))
}

func constraintMessage(fe validator.FieldError) string {
	val := fe.Value()
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return fmt.Sprintf("must be greater than %s, got %v", fe.Param(), val)
	case "gte":
		return fmt.Sprintf("must be >= %s, got %v", fe.Param(), val)
	case "lte":
		return fmt.Sprintf("must be <= %s, got %v", fe.Param(), val)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters, got %d",
				fe.Param(), length(val))
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	}
	return fmt.Sprintf("failed constraint %q", fe.Tag())
}

func length(v any) int {
	if s, ok := v.(string); ok {
		return len(s)
	}
	return 0
}
