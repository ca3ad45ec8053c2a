package binder

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/bookcross/bookcross/pkg/models"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"
	"github.com/segmentio/encoding/json"
)

// Validation tags with a dedicated message.
const (
	bookstatus = "bookstatus"
	date       = "date"
	email      = "email"
	isbn       = "isbn"
	objectkey  = "objectkey"
	gt         = "gt"
	gte        = "gte"
	mx         = "max"
	mn         = "min"
	ne         = "ne"
	oneof      = "oneof"
	required   = "required"
)

func formatUnmarshalTypeError(err *json.UnmarshalTypeError) string {
	return fmt.Sprintf("%q should be of type %s", strings.Trim(err.Field, "."), err.Type)
}

func formatSchemaConversionError(err schema.ConversionError) string {
	return fmt.Sprintf("%q should be of type %s", err.Key, err.Type)
}

func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	param := err.Param()

	switch err.Tag() {
	case bookstatus:
		return fmt.Sprintf("%q must be one of the following: %s", field, quoteAll(models.BookStatuses))
	case date:
		return fmt.Sprintf("%q should be in the format of YYYY-MM-DD", field)
	case isbn:
		return fmt.Sprintf("%q should be an ISBN-10 or ISBN-13 without dashes", field)
	case objectkey:
		return fmt.Sprintf("%q should be a relative object key", field)
	case email:
		return fmt.Sprintf("%q is not a valid email", field)
	case gt:
		return fmt.Sprintf("%q must be greater than %s", field, param)
	case gte:
		return fmt.Sprintf("%q must be greater than or equal to %s", field, param)
	case mx:
		return boundMessage(field, err.Kind(), param, "less")
	case mn:
		return boundMessage(field, err.Kind(), param, "greater")
	case ne:
		return fmt.Sprintf("%q can't be %q", field, param)
	case oneof:
		return fmt.Sprintf("%q must be one of the following: %s", field, quoteAll(strings.Fields(param)))
	case required:
		return fmt.Sprintf("%q is required", field)
	default:
		return fmt.Sprintf("%q is invalid", field)
	}
}

// boundMessage words min/max failures. Numbers are compared by value, strings
// and slices by length.
func boundMessage(field string, kind reflect.Kind, param, direction string) string {
	//exhaustive:ignore
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return fmt.Sprintf("%q must be %s than or equal to %s", field, direction, param)
	case reflect.Slice:
		return fmt.Sprintf("%q length must be %s than or equal to %s %s", field, direction, param, plural("element", param))
	default:
		return fmt.Sprintf("%q length must be %s than or equal to %s %s", field, direction, param, plural("character", param))
	}
}

func plural(noun, count string) string {
	if count == "1" {
		return noun
	}
	return noun + "s"
}

func quoteAll(values []string) string {
	quoted := make([]string, 0, len(values))
	for _, v := range values {
		quoted = append(quoted, fmt.Sprintf("%q", v))
	}
	return strings.Join(quoted, ", ")
}
