package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		// Report fields by their JSON names.
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("siren", func(fl validator.FieldLevel) bool {
			return IsValidSiren(fl.Field().String())
		})
		_ = v.RegisterValidation("siret", func(fl validator.FieldLevel) bool {
			return IsValidSiret(fl.Field().String())
		})
		_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return IsValidPhone(fl.Field().String())
		})
		_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
			ok, _ := IsValidPassword(fl.Field().String())
			return ok
		})
		validate = v
	})
	return validate
}

// Struct validates s against its `validate` tags and returns field→message
// pairs keyed by JSON path. An empty map means s is valid.
func Struct(s interface{}) map[string]string {
	details := make(map[string]string)
	err := instance().Struct(s)
	if err == nil {
		return details
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		details["_"] = err.Error()
		return details
	}
	for _, fe := range verrs {
		details[fieldPath(fe.Namespace())] = message(fe)
	}
	return details
}

// fieldPath drops the root struct name from a namespace like
// "CreateUserInput.company.siren".
func fieldPath(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "siren":
		return "Invalid SIREN"
	case "siret":
		return "Invalid SIRET"
	case "phone":
		return "Invalid phone number"
	case "password":
		_, msg := IsValidPassword(fe.Value().(string))
		return msg
	case "oneof":
		return "Must be one of: " + fe.Param()
	case "max":
		return "Must be at most " + fe.Param() + " characters"
	case "min":
		return "Must be at least " + fe.Param()
	case "gte":
		return "Must be greater than or equal to " + fe.Param()
	case "uuid":
		return "Invalid ID format"
	}
	return "Invalid value"
}
