// Package validate wraps validator/v10 and turns its field errors into one
// client-facing message.
package validate

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var v = validator.New(validator.WithRequiredStructEnabled())

type ErrField struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

type Errs []ErrField

func (e Errs) Error() string {
	var b strings.Builder
	for i, ef := range e {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(ef.Field + ": " + ef.Msg)
	}
	return b.String()
}

// Struct validates s against its `validate` tags. It returns nil or Errs.
func Struct(s any) error {
	return collect(v.Struct(s))
}

// Partial is Struct restricted to the named top-level fields.
func Partial(s any, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	return collect(v.StructPartial(s, fields...))
}

func collect(err error) error {
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	out := make(Errs, 0, len(ve))
	for _, fe := range ve {
		out = append(out, ErrField{Field: lowerFirst(fe.Field()), Msg: describe(fe)})
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "email":
		return "must be a valid email"
	default:
		return "is invalid"
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
