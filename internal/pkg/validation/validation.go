package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"idle-resource-hub/internal/core/domain"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

func init() {
	// report json field names instead of Go field names
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Struct validates a request DTO and converts failures to a domain.ValidationError.
func Struct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := domain.NewValidationError("Invalid request payload")
	for _, fe := range verrs {
		out.Add(fieldPath(fe), codeFor(fe.Tag()), messageFor(fe))
	}
	return out
}

// fieldPath strips the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func codeFor(tag string) string {
	switch tag {
	case "required", "required_if", "required_without":
		return domain.CodeRequired
	case "oneof":
		return domain.CodeInvalidChoice
	case "min", "max", "gte", "lte", "gt", "lt":
		return domain.CodeOutOfRange
	default:
		return domain.CodeInvalidFormat
	}
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if", "required_without":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email address"
	case "uuid", "uuid4":
		return "must be a valid UUID"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
