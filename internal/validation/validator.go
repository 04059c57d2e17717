// Package validation provides request struct validation using
// go-playground/validator v10. A single validator instance is shared and
// reports fields by their JSON names so messages match the wire format.
//
// Example:
//
//	type Request struct {
//	    UserID     string `json:"user_id" validate:"required"`
//	    RewardType string `json:"reward_type" validate:"required,rewardcategory"`
//	}
//
//	if err := validation.ValidateStruct(&req); err != nil {
//	    // errors.Is(err, domain.ErrInvalidInput) == true
//	}
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/dopamind/dopamind/internal/domain"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// FieldError is one failed field.
type FieldError struct {
	Field   string
	Tag     string
	Message string
}

// RequestValidationError collects every failed field, in struct order.
type RequestValidationError struct {
	errors []FieldError
}

// Errors returns the failed fields.
func (ve *RequestValidationError) Errors() []FieldError { return ve.errors }

// Error joins the field messages.
func (ve *RequestValidationError) Error() string {
	if len(ve.errors) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(ve.errors))
	for i, e := range ve.errors {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// Unwrap maps the first failure onto a domain sentinel so callers can
// use errors.Is without importing the validator.
func (ve *RequestValidationError) Unwrap() error {
	if len(ve.errors) == 0 {
		return domain.ErrInvalidInput
	}
	switch ve.errors[0].Tag {
	case "required":
		return domain.ErrMissingField
	case "rewardcategory":
		return domain.ErrInvalidRewardCategory
	}
	return domain.ErrInvalidInput
}

// GetValidator returns the shared validator, building it on first use.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" || name == "" {
				return f.Name
			}
			return name
		})

		_ = validate.RegisterValidation("rewardcategory", func(fl validator.FieldLevel) bool {
			return domain.RewardCategory(fl.Field().String()).Valid()
		})
	})
	return validate
}

// ValidateStruct validates s. Returns nil or a *RequestValidationError.
func ValidateStruct(s any) error {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &RequestValidationError{errors: []FieldError{{
			Field: "unknown", Tag: "unknown", Message: err.Error(),
		}}}
	}

	out := make([]FieldError, len(fieldErrs))
	for i, fe := range fieldErrs {
		out[i] = FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Message: translate(fe),
		}
	}
	return &RequestValidationError{errors: out}
}

func translate(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Missing required field: " + fe.Field()
	case "rewardcategory":
		return domain.InvalidRewardMessage()
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
}
