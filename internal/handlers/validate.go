package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// bytesmax bounds the byte length of a string; max counts runes.
	_ = v.RegisterValidation("bytesmax", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) <= limit
	})
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		switch name {
		case "-":
			return ""
		case "":
			return field.Name
		}
		return name
	})
	return v
}

// validateStruct returns a human-readable message for the first failures
// of v, or "" when v is valid.
func validateStruct(v any) string {
	err := validate.Struct(v)
	if err == nil {
		return ""
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return err.Error()
	}

	messages := make([]string, 0, len(errs))
	for _, e := range errs {
		switch e.ActualTag() {
		case "required":
			messages = append(messages, fmt.Sprintf("field %s is required", e.Field()))
		case "email":
			messages = append(messages, fmt.Sprintf("field %s must be a valid email address", e.Field()))
		case "min":
			if e.Kind() == reflect.String {
				messages = append(messages, fmt.Sprintf("field %s must be at least %s characters", e.Field(), e.Param()))
			} else {
				messages = append(messages, fmt.Sprintf("field %s must be at least %s", e.Field(), e.Param()))
			}
		case "max":
			if e.Kind() == reflect.String {
				messages = append(messages, fmt.Sprintf("field %s must be at most %s characters", e.Field(), e.Param()))
			} else {
				messages = append(messages, fmt.Sprintf("field %s must be at most %s", e.Field(), e.Param()))
			}
		case "bytesmax":
			messages = append(messages, fmt.Sprintf("field %s must be at most %s bytes", e.Field(), e.Param()))
		case "oneof":
			messages = append(messages, fmt.Sprintf("field %s must be one of: %s", e.Field(), e.Param()))
		default:
			messages = append(messages, fmt.Sprintf("field %s is invalid", e.Field()))
		}
	}
	return strings.Join(messages, ", ")
}
