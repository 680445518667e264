package service

import (
	"errors"
	"reflect"
	"strings"

	"github.com/boddenberg/taskflow-bfa-go/internal/domain"
	"github.com/boddenberg/taskflow-bfa-go/internal/timewindow"

	"github.com/go-playground/validator/v10"
)

// NewValidator returns a validator that reports JSON field names and knows
// the activity form rules:
//
//	activitystatus  a funnel or personal activity status
//	timestamp       a date/datetime the dashboard forms produce
//	durationlabel   one of the activity timer labels
//	amount          a decimal amount, thousands separators allowed
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("activitystatus", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return domain.IsFunnelStatus(s) || domain.IsPersonalStatus(s)
	})
	_ = v.RegisterValidation("timestamp", func(fl validator.FieldLevel) bool {
		return domain.ParseTimestamp(fl.Field().String(), nil).Valid
	})
	_ = v.RegisterValidation("amount", func(fl validator.FieldLevel) bool {
		_, ok := domain.ParseAmount(fl.Field().String())
		return ok
	})
	_ = v.RegisterValidation("durationlabel", func(fl validator.FieldLevel) bool {
		_, ok := timewindow.LookupDuration(fl.Field().String())
		return ok
	})
	return v
}

// validationError converts the first validator failure into
// *domain.ErrValidation.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &domain.ErrValidation{Field: "body", Message: err.Error()}
	}
	fe := verrs[0]
	return &domain.ErrValidation{Field: fe.Field(), Message: describe(fe)}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "amount":
		return "must be a number"
	case "activitystatus":
		return "unknown activity status"
	case "timestamp":
		return "must be a date or datetime"
	case "durationlabel":
		return "must be one of " + strings.Join(timewindow.DurationLabels, ", ")
	}
	return "failed " + fe.Tag() + " check"
}
