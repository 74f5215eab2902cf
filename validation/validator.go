package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	validatorv10 "github.com/go-playground/validator/v10"
)

var (
	phonePattern      = regexp.MustCompile(`^\+?[0-9][0-9 \-]{5,18}[0-9]$`)
	postalCodePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 \-]{1,8}[A-Za-z0-9]$`)
	orderNumberPrefix = regexp.MustCompile(`^(ORD-|TS)`)
)

// New returns a validator with the storefront's custom tags registered:
// phone, postalcode and ordernumber. Field errors are keyed by json name.
func New() *validatorv10.Validate {
	v := validatorv10.New(validatorv10.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	mustRegister(v, "phone", func(fl validatorv10.FieldLevel) bool {
		return IsPhone(fl.Field().String())
	})
	mustRegister(v, "postalcode", func(fl validatorv10.FieldLevel) bool {
		return postalCodePattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "ordernumber", func(fl validatorv10.FieldLevel) bool {
		return orderNumberPrefix.MatchString(strings.TrimSpace(fl.Field().String()))
	})
	return v
}

func mustRegister(v *validatorv10.Validate, tag string, fn validatorv10.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// IsPhone reports whether s looks like a phone number: an optional leading
// plus and 7 to 15 digits, optionally separated by spaces or dashes.
func IsPhone(s string) bool {
	if !phonePattern.MatchString(s) {
		return false
	}
	digits := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 7 && digits <= 15
}

// Fields flattens a validation error into field -> message.
func Fields(err error) map[string]string {
	out := map[string]string{}
	var ve validatorv10.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			out[fe.Field()] = message(fe)
		}
		return out
	}
	if err != nil {
		out["error"] = err.Error()
	}
	return out
}

func message(fe validatorv10.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Please enter a valid email address"
	case "phone":
		return "Please enter a valid phone number"
	case "postalcode":
		return "Please enter a valid postal code"
	case "credit_card":
		return "Please enter a valid card number"
	case "ordernumber":
		return "Please enter a valid order number"
	case "oneof":
		return fmt.Sprintf("Must be one of: %s", fe.Param())
	case "min", "gte":
		return fmt.Sprintf("Must be at least %s", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("Must be at most %s", fe.Param())
	case "len":
		return fmt.Sprintf("Must be exactly %s characters", fe.Param())
	case "numeric":
		return "Must contain only digits"
	default:
		return fmt.Sprintf("Failed %s validation", fe.Tag())
	}
}
