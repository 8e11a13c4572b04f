package validate

// This package adds struct and field validation as a thin wrapper around the go-playground/validator package.
//
// e.g. internal/storage/storage.go
//   type Data struct {
//       SessionID string `json:"session_id" validate:"required,uuid4"`
//       Deadline  string `json:"deadline,omitempty" validate:"omitempty,datetime_like"`
//   }
//
// datetime_like accepts anything the countdown date parser understands.

import (
	"sync"

	"github.com/araddon/dateparse"
	"github.com/go-playground/validator/v10"
)

// DatetimeLikeTag validates strings parseable as a deadline or start.
const DatetimeLikeTag = "datetime_like"

// validatorInstance is a shared validator for the application.
// It is initialized once and reused to avoid repeated allocations.
//
//nolint:gochecknoglobals // Shared validator singleton.
var (
	validatorOnce sync.Once
	validatorInst *validator.Validate
)

// get returns a process-wide singleton of the validator.
func get() *validator.Validate {
	validatorOnce.Do(func() {
		validatorInst = validator.New(validator.WithRequiredStructEnabled())
		// Registration only fails for an empty tag or nil func.
		_ = validatorInst.RegisterValidation(DatetimeLikeTag, datetimeLike)
	})
	return validatorInst
}

func datetimeLike(fl validator.FieldLevel) bool {
	_, err := dateparse.ParseAny(fl.Field().String())
	return err == nil
}

// Struct validates a struct using the shared validator instance.
func Struct(v any) error {
	return get().Struct(v)
}

// Var validates a single variable against the provided tag constraints.
func Var(field any, tag string) error {
	return get().Var(field, tag)
}
