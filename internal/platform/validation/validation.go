// Package validation checks request structs with go-playground/validator and reports the first
// violated field using the message carried in the field's `msg` tag.
package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Error is a field-schema failure. Message is safe to show to the caller.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string { return e.Message }

// New returns a validation Error for field.
func New(field, message string) *Error {
	return &Error{Field: field, Message: message}
}

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
	})
	return validate
}

// Struct validates v (a struct or pointer to struct). It returns nil, or an *Error for the first
// violated field in declaration order.
func Struct(v any) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	first := verrs[0]
	return &Error{Field: first.Field(), Message: messageFor(v, first)}
}

func messageFor(v any, fe validator.FieldError) string {
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() == reflect.Struct {
		if f, ok := t.FieldByName(fe.StructField()); ok {
			if msg := f.Tag.Get("msg"); msg != "" {
				return msg
			}
		}
	}
	return "Invalid " + fe.Field()
}
