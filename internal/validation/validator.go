// Package validation wraps go-playground/validator with a shared instance.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Error lists the fields that failed validation.
type Error struct {
	Fields []FieldError
}

// FieldError describes one failed rule.
type FieldError struct {
	Field string
	Tag   string
	Param string
}

func (e *Error) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		if f.Param != "" {
			parts[i] = fmt.Sprintf("%s: %s=%s", f.Field, f.Tag, f.Param)
		} else {
			parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Tag)
		}
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Has reports whether the named field (JSON or koanf name, dotted for nesting)
// failed. A failed element of a slice field counts as the field failing.
func (e *Error) Has(field string) bool {
	for _, f := range e.Fields {
		name := f.Field
		if i := strings.IndexByte(name, '['); i >= 0 {
			name = name[:i]
		}
		if name == field || strings.HasSuffix(name, "."+field) {
			return true
		}
	}
	return false
}

// Validator returns the shared validator. Field names in errors come from the
// json tag, falling back to the koanf tag, then the Go name.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "koanf"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return fld.Name
		})
	})
	return validate
}

// Struct validates s. It returns nil or an *Error.
func Struct(s any) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validating: %w", err)
	}

	out := &Error{Fields: make([]FieldError, len(verrs))}
	for i, fe := range verrs {
		out.Fields[i] = FieldError{
			Field: trimRoot(fe.Namespace()),
			Tag:   fe.Tag(),
			Param: fe.Param(),
		}
	}
	return out
}

// trimRoot drops the leading struct type name from a validator namespace.
func trimRoot(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
