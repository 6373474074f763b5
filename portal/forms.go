package portal

import (
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jrsteele09/ttb-portal/internal/errors"
)

type LoginForm struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

type PhoneForm struct {
	Phone string `validate:"required,len=10,number"`
}

type OTPForm struct {
	OTP        string `validate:"required,len=6,number"`
	RememberMe bool
}

// FieldErrors maps a form field to the message shown next to it.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for f := range fe {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, fe[f])
	}
	return strings.Join(msgs, "; ")
}

func (fe FieldErrors) Unwrap() error {
	return errors.ErrInvalidForm
}

// fieldMessages holds the message per field and failed tag. "*" covers every other tag.
var fieldMessages = map[string]map[string]string{
	"Email": {
		"required": "Email is required",
		"*":        "Please enter a valid email address",
	},
	"Password": {
		"required": "Password is required",
		"*":        "Password must be at least 6 characters",
	},
	"Phone": {
		"required": "Phone number is required",
		"*":        "Phone should be exactly 10 digits",
	},
	"OTP": {
		"required": "Verification code is required",
		"*":        "Verification code must be 6 digits",
	},
}

type FormValidator struct {
	validate *validator.Validate
}

func NewFormValidator() *FormValidator {
	return &FormValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Validate returns nil or a FieldErrors describing every invalid field.
func (v *FormValidator) Validate(form any) error {
	err := v.validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fe := FieldErrors{}
	for _, ve := range verrs {
		if _, seen := fe[ve.Field()]; seen {
			continue
		}
		fe[ve.Field()] = messageFor(ve.Field(), ve.Tag())
	}
	return fe
}

func messageFor(field, tag string) string {
	msgs, ok := fieldMessages[field]
	if !ok {
		return field + " is invalid"
	}
	if msg, ok := msgs[tag]; ok {
		return msg
	}
	return msgs["*"]
}
