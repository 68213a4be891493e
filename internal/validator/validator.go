package validator

import (
	"regexp"
	"sync"

	ierr "github.com/feesync/feesync/internal/errors"
	"github.com/go-playground/validator/v10"
)

var (
	validate *validator.Validate
	initOnce sync.Once
)

var monthPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

func NewValidator() *validator.Validate {
	validate = validator.New()
	// yyyymm validates the YYYY-MM month format used by filters and reminders
	_ = validate.RegisterValidation("yyyymm", func(fl validator.FieldLevel) bool {
		return monthPattern.MatchString(fl.Field().String())
	})
	return validate
}

func ValidateRequest(req interface{}) error {
	initOnce.Do(func() {
		if validate == nil {
			NewValidator()
		}
	})

	if err := validate.Struct(req); err != nil {
		details := make(map[string]any)
		var validateErrs validator.ValidationErrors
		if ierr.As(err, &validateErrs) {
			for _, err := range validateErrs {
				details[err.Field()] = err.Error()
			}
		}
		return ierr.WithError(err).
			WithHint("Request validation failed").
			WithReportableDetails(details).
			Mark(ierr.ErrValidation)
	}
	return nil
}
