package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// requiredMessages holds the human readable message per JSON field name.
var requiredMessages = map[string]string{
	"name":   "Name is required",
	"email":  "Email is required",
	"phone":  "Phone number is required",
	"date":   "Reservation date is required",
	"time":   "Reservation time is required",
	"guests": "Number of guests is required",
}

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names so clients can match them to inputs.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateInput runs struct validation and converts failures into a
// *ValidationError.
func validateInput(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		msg, ok := requiredMessages[fe.Field()]
		if !ok || fe.Tag() != "required" {
			msg = fe.Field() + " is invalid"
		}
		out.Fields = append(out.Fields, FieldError{Field: fe.Field(), Message: msg, Type: fe.Tag()})
	}
	return out
}
