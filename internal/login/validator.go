package login

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/shindakun/loginpage/internal/models"
)

// Field names as they appear in the HTML form and in FieldErrors
const (
	FieldUsername = "username"
	FieldPassword = "password"
)

// fieldLabels maps form field names to the label used in messages
var fieldLabels = map[string]string{
	FieldUsername: "Username",
	FieldPassword: "Password",
}

// Values are the raw field values of the login form at submit time
type Values struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// Credentials converts validated values into credentials
func (v Values) Credentials() models.Credentials {
	return models.Credentials{Username: v.Username, Password: v.Password}
}

// Validator checks login form values against the form schema and turns failures
// into per-field messages
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

// NewValidator creates a validator with English messages for the login schema
func NewValidator() *Validator {
	v := &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}

	// Report fields by their form names
	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	v.trans, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v.validate, v.trans)

	// "Username is required." rather than the library default
	_ = v.validate.RegisterTranslation("required", v.trans,
		func(ut ut.Translator) error {
			return ut.Add("required", "{0} is required.", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			label, ok := fieldLabels[fe.Field()]
			if !ok {
				label = fe.Field()
			}
			msg, err := ut.T("required", label)
			if err != nil {
				return fe.Error()
			}
			return msg
		},
	)

	return v
}

// Validate runs the schema against values. It returns nil when every field passes.
func (v *Validator) Validate(values Values) models.FieldErrors {
	err := v.validate.Struct(values)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return models.FieldErrors{"form": err.Error()}
	}

	fieldErrors := make(models.FieldErrors, len(validationErrors))
	for _, fe := range validationErrors {
		// Keep the first failing rule per field
		if _, exists := fieldErrors[fe.Field()]; exists {
			continue
		}
		fieldErrors[fe.Field()] = fe.Translate(v.trans)
	}
	return fieldErrors
}
