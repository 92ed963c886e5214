package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"equiprental/util/apperr"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Validator struct {
	v *validator.Validate
}

// New returns a validator that reports fields by their json names.
func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{v: v}
}

// Engine exposes the underlying validator for controllers that call Struct directly.
func (v *Validator) Engine() *validator.Validate { return v.v }

func (v *Validator) Validate(i interface{}) error {
	return v.v.Struct(i)
}

// Describe flattens validator errors into "field: rule" pairs for the
// error detail.
func Describe(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err.Error()
	}
	parts := make([]string, 0, len(ve))
	for _, fe := range ve {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field(), rule))
	}
	return strings.Join(parts, ", ")
}

// Bind decodes the request into req and validates it. Both failures come
// back as VALIDATION errors.
func Bind(c echo.Context, v *validator.Validate, req any) error {
	if err := c.Bind(req); err != nil {
		return apperr.Newf(apperr.ErrValidation, "invalid body")
	}
	if err := v.Struct(req); err != nil {
		return apperr.Newf(apperr.ErrValidation, "%s", Describe(err))
	}
	return nil
}
