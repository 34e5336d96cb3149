package validators

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var personName = regexp.MustCompile(`^[A-Za-z\s]+$`)

// New returns a validator with the booking rules registered and field
// names reported by their json tag.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	Register(v)
	return v
}

// Register adds lk_phone, person_name and not_disposable to v. It is also
// applied to gin's binding engine.
func Register(v *validator.Validate) {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("lk_phone", func(fl validator.FieldLevel) bool {
		return IsLKPhone(fl.Field().String())
	})
	_ = v.RegisterValidation("person_name", func(fl validator.FieldLevel) bool {
		return personName.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("not_disposable", func(fl validator.FieldLevel) bool {
		return !IsDisposableEmail(fl.Field().String())
	})
}
