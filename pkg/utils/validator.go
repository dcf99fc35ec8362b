package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
)

// FormatValidationError turns a binding error into the detail of the error envelope.
// Field names are reported in snake_case, the way clients send them.
func FormatValidationError(err error) string {
	var fieldErrs validator.ValidationErrors
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError

	switch {
	case err == nil:
		return ""
	case errors.As(err, &fieldErrs):
		return strings.Join(lo.Map(fieldErrs, func(e validator.FieldError, _ int) string {
			return describeFieldError(e)
		}), "; ")
	case errors.As(err, &typeErr):
		return fmt.Sprintf("%s: expected %s", typeErr.Field, typeErr.Type)
	case errors.As(err, &syntaxErr):
		return "malformed JSON body"
	case errors.Is(err, io.EOF):
		return "request body is empty"
	default:
		return err.Error()
	}
}

func describeFieldError(e validator.FieldError) string {
	field := SnakeCase(e.Field())

	switch e.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email"
	case "eqfield":
		return fmt.Sprintf("%s must match %s", field, SnakeCase(e.Param()))
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, strings.Join(strings.Fields(e.Param()), ", "))
	case "min", "max":
		bound := "at least"
		if e.Tag() == "max" {
			bound = "at most"
		}
		switch e.Kind() {
		case reflect.String:
			return fmt.Sprintf("%s must be %s %s characters", field, bound, e.Param())
		case reflect.Slice, reflect.Map:
			return fmt.Sprintf("%s must have %s %s items", field, bound, e.Param())
		default:
			return fmt.Sprintf("%s must be %s %s", field, bound, e.Param())
		}
	case "gt", "gte", "lt", "lte":
		ops := map[string]string{"gt": ">", "gte": ">=", "lt": "<", "lte": "<="}
		return fmt.Sprintf("%s must be %s %s", field, ops[e.Tag()], e.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, e.Tag())
	}
}

// SnakeCase converts a Go field name such as SQLQuery or ProjectID to sql_query or project_id
func SnakeCase(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prevLower := unicode.IsLower(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || (unicode.IsUpper(runes[i-1]) && nextLower) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
