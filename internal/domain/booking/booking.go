// Package booking holds the one schema per booking kind that every create
// and edit path validates against.
package booking

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/BruksfildServices01/petcare-scheduler/internal/civildate"
	domain "github.com/BruksfildServices01/petcare-scheduler/internal/domain/appointment"
	"github.com/BruksfildServices01/petcare-scheduler/internal/httperr"
	"github.com/BruksfildServices01/petcare-scheduler/internal/validators"
)

var validate = validators.New()

// Form is a booking request for one service.
type Form interface {
	Service() domain.Service
	Normalize()
	Validate(now time.Time) error
	Payload() map[string]any
	Day() string
}

// Decode picks the schema for svc and unmarshals raw into it, normalised.
func Decode(svc domain.Service, raw []byte) (Form, error) {
	var f Form
	switch svc {
	case domain.ServiceVet:
		f = &VetBooking{}
	case domain.ServiceGrooming:
		f = &GroomingBooking{}
	case domain.ServiceDaycare:
		f = &DaycareBooking{}
	default:
		return nil, httperr.ErrBusiness("unknown_service")
	}

	if err := json.Unmarshal(raw, f); err != nil {
		return nil, httperr.ErrBusiness("invalid_payload")
	}
	f.Normalize()
	return f, nil
}

// ===============================
// Messages
// ===============================

const phoneMessage = "Enter 9 digits after +94 (e.g., 711234567 or 112345678)."

var messages = map[string]string{
	"required":       "This field is required.",
	"email":          "Enter a valid email (e.g., aaisha@example.com).",
	"not_disposable": "Please use a real (non-disposable) email.",
	"lk_phone":       phoneMessage,
	"person_name":    "Only letters and spaces are allowed.",
	"oneof":          "Select a valid option.",
	"datetime":       "Choose a valid date.",
	"gtfield":        "Pick-up must be after drop-off.",
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min":
		if fe.Kind().String() == "string" {
			return "Too short."
		}
		return "Select a time between 08:00 AM and 08:00 PM."
	case "max":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("Keep it under %s characters.", fe.Param())
		}
		return "Select a time between 08:00 AM and 08:00 PM."
	}
	if m, ok := messages[fe.Tag()]; ok {
		return m
	}
	return "Invalid value."
}

// check runs the struct rules, then the date-not-in-past rule against now's
// civil day.
func check(form any, ymd string, now time.Time) error {
	fields := map[string]string{}

	if err := validate.Struct(form); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			if _, seen := fields[fe.Field()]; !seen {
				fields[fe.Field()] = message(fe)
			}
		}
	}

	if _, bad := fields["date"]; !bad {
		day, err := civildate.Parse(ymd, now.Location())
		if err != nil {
			fields["date"] = messages["datetime"]
		} else if civildate.Before(day, now) {
			fields["date"] = "Date cannot be in the past."
		}
	}

	if len(fields) == 0 {
		return nil
	}
	return httperr.ValidationError{Fields: fields}
}

func trim(s string) string {
	return strings.TrimSpace(s)
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}
