package validation

import (
	"errors"
	"regexp"
	"strings"

	"go-org/internal/errs"

	"github.com/go-playground/validator/v10"
)

var personIDPattern = regexp.MustCompile(`^\d{7}$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// personid: externally supplied identifier, exactly 7 digits.
	v.RegisterValidation("personid", func(fl validator.FieldLevel) bool {
		return personIDPattern.MatchString(fl.Field().String())
	})

	// notblank: required strings must survive trimming.
	v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	return v
}

// Struct runs tag-based validation and converts the first failure into a
// domain validation error naming the offending field.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return errs.Validation(fieldName(fe), messageFor(fe))
	}
	return errs.Validation("", err.Error())
}

// NonBlank validates a single field outside of struct tags, used by
// partial-update paths where only provided fields are checked.
func NonBlank(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return errs.Validation(field, "must not be empty")
	}
	return nil
}

// PersonID validates the 7-digit person identifier format.
func PersonID(id string) error {
	if !personIDPattern.MatchString(id) {
		return errs.Validation("id", "must be exactly 7 digits")
	}
	return nil
}

// NonNegative validates clearance-style counters.
func NonNegative(field string, value int) error {
	if value < 0 {
		return errs.Validation(field, "must not be negative")
	}
	return nil
}

func fieldName(fe validator.FieldError) string {
	// Struct field name, lowered to the wire casing used in payloads.
	name := fe.Field()
	if name == "" {
		return ""
	}
	return strings.ToLower(name[:1]) + name[1:]
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "personid":
		return "must be exactly 7 digits"
	case "notblank", "required":
		return "must not be empty"
	case "email":
		return "must be a valid mail address"
	case "gte":
		return "must not be negative"
	default:
		return "failed " + fe.Tag() + " validation"
	}
}
