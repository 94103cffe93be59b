package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"

	"github.com/ademolaidowu/gezapay/internal/pkg/strcase"
)

var (
	// Length-only rule per NIST 800-63B; 72 is the bcrypt input ceiling.
	rePassword = regexp.MustCompile(`^.{8,72}$`)

	reAlphaSpace = regexp.MustCompile(`^[a-zA-Z ]+$`)
)

// ErrTranslatorNotFound indicates the requested translator is unavailable.
var ErrTranslatorNotFound = errors.New("translator not found")

// V10Validator implements Validator with go-playground/validator v10, English
// translations, and the service's custom rules (password, alphaspace).
type V10Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

// FieldErrors maps snake_case field names to messages when validation fails.
type FieldErrors map[string]string

// Error implements the error interface.
func (fe FieldErrors) Error() string {
	if len(fe) == 0 {
		return "validation error"
	}
	b, err := json.Marshal(fe)
	if err != nil {
		return fmt.Sprintf("validation error (marshal: %v)", err)
	}
	return string(b)
}

// Values returns the field error map.
func (fe FieldErrors) Values() map[string]string { return fe }

// NewV10Validator constructs a V10Validator.
func NewV10Validator() (*V10Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	enLang := en.New()
	trans, ok := ut.New(enLang, enLang).GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorNotFound
	}
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}
	if err := registerCustomRules(validate, trans); err != nil {
		return nil, err
	}

	return &V10Validator{validate: validate, translator: trans}, nil
}

// Validate validates a struct and returns FieldErrors on failure.
func (v *V10Validator) Validate(data any) error {
	err := v.validate.Struct(data)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := make(FieldErrors, len(verrs))
	for _, fe := range verrs {
		out[strcase.ToLowerSnake(fe.Field())] = fe.Translate(v.translator)
	}
	return out
}

func registerCustomRules(validate *validator.Validate, trans ut.Translator) error {
	rules := []struct {
		tag     string
		fn      validator.Func
		message string
	}{
		{
			tag:     "password",
			fn:      matchString(rePassword),
			message: "{0} must be 8-72 characters",
		},
		{
			tag:     "alphaspace",
			fn:      matchString(reAlphaSpace),
			message: "{0} can contain only letters and spaces",
		},
	}

	for _, r := range rules {
		if err := validate.RegisterValidation(r.tag, r.fn); err != nil {
			return err
		}

		msg := r.message
		err := validate.RegisterTranslation(r.tag, trans,
			func(ut ut.Translator) error {
				// Override: the default translations already claim some of
				// these keys (alphaspace is a built-in tag).
				return ut.Add(r.tag, msg, true)
			},
			func(ut ut.Translator, fe validator.FieldError) string {
				t, err := ut.T(fe.Tag(), fe.Field())
				if err != nil {
					return fe.Tag()
				}
				return t
			},
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func matchString(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		return ok && re.MatchString(s)
	}
}
