package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/courierpwa/courier-ops/internal/core/domain"
	"github.com/courierpwa/courier-ops/pkg/phone"
)

// inputValidator checks service inputs. Field names in errors come from the
// `field` struct tag so they match the JSON names clients send.
var inputValidator = newInputValidator()

func newInputValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("field"); name != "" {
			return name
		}
		return f.Name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phone.Validate(fl.Field().String())
	})
	return v
}

// validateInput runs struct validation and converts failures into a
// *domain.ValidationError. It returns nil when s is valid.
func validateInput(s any) error {
	ve := domain.NewValidationError()
	collectInput(ve, s)
	return ve.OrNil()
}

// collectInput adds struct validation failures to ve.
func collectInput(ve *domain.ValidationError, s any) {
	err := inputValidator.Struct(s)
	if err == nil {
		return
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		ve.Add("input", err.Error())
		return
	}
	for _, fe := range fieldErrs {
		ve.Add(fe.Field(), fieldMessage(fe))
	}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "phone":
		return "must be a valid phone number"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return fmt.Sprintf("failed validation (%s)", fe.Tag())
	}
}
