package model

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/teresa-solution/firm-management-service/internal/apperr"
)

var validate = newValidator()

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

// check runs the struct tags of v and merges any extra field errors into a
// single validation error.
func check(v any, extra ...apperr.FieldError) error {
	var fields []apperr.FieldError
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return apperr.Validation("request", err.Error())
		}
		for _, fe := range verrs {
			// Namespace is "TypeName.items[0].description"; drop the type.
			name := fe.Namespace()
			if i := strings.Index(name, "."); i >= 0 {
				name = name[i+1:]
			}
			fields = append(fields, fieldErr(name, tagMessage(fe)))
		}
	}
	fields = append(fields, extra...)
	if len(fields) == 0 {
		return nil
	}
	return apperr.ValidationFields(fields)
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "url":
		return "must be a valid URL"
	default:
		return "is invalid"
	}
}

func fieldErr(field, message string) apperr.FieldError {
	return apperr.FieldError{Field: field, Code: "invalid_" + field, Message: message}
}

type amount struct {
	field string
	value decimal.Decimal
}

// nonNegative collects a field error for every negative amount.
func nonNegative(amounts ...amount) []apperr.FieldError {
	var out []apperr.FieldError
	for _, a := range amounts {
		if a.value.IsNegative() {
			out = append(out, fieldErr(a.field, "must not be negative"))
		}
	}
	return out
}
