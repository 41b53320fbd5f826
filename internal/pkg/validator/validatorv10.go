package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/samber/lo"

	"github.com/shandysiswandi/gomarket/internal/pkg/strcase"
)

var (
	// Based on NIST 800-63B Guidelines
	rePassword = regexp.MustCompile(`^.{8,72}$`)

	// E.164: leading +, no leading zero, 8 to 15 digits total.
	reE164 = regexp.MustCompile(`^\+[1-9][0-9]{7,14}$`)
)

// ErrTranslatorNotFound indicates the requested translator is unavailable.
var ErrTranslatorNotFound = errors.New("translator not found")

// V10Validator implements Validator using go-playground/validator v10.
type V10Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

var _ Validator = (*V10Validator)(nil)

// V10ValidationError is a field-to-message map returned when validation fails.
//
// Keys are field names in snake_case to match the JSON bodies.
type V10ValidationError map[string]string

// Error implements the error interface.
func (vs V10ValidationError) Error() string {
	if len(vs) == 0 {
		return "validation error"
	}

	b, err := json.Marshal(vs)
	if err != nil {
		return fmt.Sprintf("validation error (failed to marshal: %v)", err)
	}
	return string(b)
}

// Values returns the field error map.
func (vs V10ValidationError) Values() map[string]string {
	return vs
}

type enum struct {
	tag    string
	values []string
}

// Option customizes NewV10Validator.
type Option func(*[]enum)

// WithEnum registers tag as "value must be one of values".
func WithEnum(tag string, values ...string) Option {
	return func(e *[]enum) {
		*e = append(*e, enum{tag: tag, values: values})
	}
}

// NewV10Validator constructs a V10Validator with English translations and custom rules.
func NewV10Validator(opts ...Option) (*V10Validator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	enLang := en.New()
	uni := ut.New(enLang, enLang)
	enTrans, ok := uni.GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorNotFound
	}

	if err := enTranslations.RegisterDefaultTranslations(validate, enTrans); err != nil {
		return nil, err
	}

	var enums []enum
	for _, opt := range opts {
		opt(&enums)
	}

	if err := registerCustom(validate, enTrans, enums); err != nil {
		return nil, err
	}

	return &V10Validator{
		validate:   validate,
		translator: enTrans,
	}, nil
}

// Validate validates a struct and returns a V10ValidationError on failure.
func (v *V10Validator) Validate(data any) error {
	if err := v.validate.Struct(data); err != nil {
		var validateErrs validator.ValidationErrors
		if !errors.As(err, &validateErrs) {
			return err
		}

		errV10 := make(V10ValidationError)
		for _, fe := range validateErrs {
			errV10[strcase.ToLowerSnake(fe.Field())] = fe.Translate(v.translator)
		}

		return errV10
	}

	return nil
}

// IsE164 reports whether s is an E.164 phone number.
func IsE164(s string) bool {
	return reE164.MatchString(s)
}

func registerCustom(validate *validator.Validate, enTrans ut.Translator, enums []enum) error {
	rules := []struct {
		tag string
		msg string
		fn  validator.Func
	}{
		{
			tag: "password",
			msg: "{0} must be 8-72 characters",
			fn: func(fl validator.FieldLevel) bool {
				return rePassword.MatchString(fl.Field().String())
			},
		},
		{
			tag: "identifier",
			msg: "{0} must be a valid email address or E.164 phone number",
			fn: func(fl validator.FieldLevel) bool {
				s := fl.Field().String()
				if strings.HasPrefix(s, "+") {
					return IsE164(s)
				}
				return validate.Var(s, "email") == nil
			},
		},
	}

	for _, e := range enums {
		allowed := lo.Uniq(e.values)
		rules = append(rules, struct {
			tag string
			msg string
			fn  validator.Func
		}{
			tag: e.tag,
			msg: "{0} must be one of " + strings.Join(allowed, ", "),
			fn: func(fl validator.FieldLevel) bool {
				return lo.Contains(allowed, fl.Field().String())
			},
		})
	}

	for _, r := range rules {
		if err := validate.RegisterValidation(r.tag, r.fn); err != nil {
			return err
		}
		if err := validate.RegisterTranslation(r.tag, enTrans, addMessage(r.tag, r.msg), translate); err != nil {
			return err
		}
	}

	return nil
}

func addMessage(tag, msg string) validator.RegisterTranslationsFunc {
	return func(t ut.Translator) error {
		return t.Add(tag, msg, true)
	}
}

func translate(t ut.Translator, fe validator.FieldError) string {
	msg, err := t.T(fe.Tag(), strcase.ToLowerSnake(fe.Field()))
	if err != nil {
		slog.Warn("failed to translate validation error", "tag", fe.Tag(), "error", err)
		return fe.Error()
	}

	return msg
}
