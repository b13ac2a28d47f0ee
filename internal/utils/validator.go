package utils

import (
	"errors"
	"reflect"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/truemail-rb/truemail-go"
)

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

type Validator struct {
	Validate    *validator.Validate
	VerifyEmail func(email string) bool
	policy      *bluemonday.Policy
}

var (
	instance      *Validator
	once          sync.Once
	configuration *truemail.Configuration
)

// GetValidator returns the shared validator. Its MX verification is a no-op until
// EnableEmailVerification is called.
func GetValidator() *Validator {
	once.Do(func() {
		validate := validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("bcrypt_len", validateBcryptLength)

		instance = &Validator{
			Validate:    validate,
			VerifyEmail: func(string) bool { return true },
			policy:      bluemonday.StrictPolicy(),
		}
	})

	return instance
}

// EnableEmailVerification switches the validator to MX based email verification.
func EnableEmailVerification(verifierEmail string) error {
	v := GetValidator()

	cfg, err := truemail.NewConfiguration(truemail.ConfigurationAttr{
		VerifierEmail:         verifierEmail,
		ValidationTypeDefault: "mx",
		SmtpFailFast:          true,
	})
	if err != nil {
		return err
	}
	configuration = cfg
	v.VerifyEmail = validateEmail
	return nil
}

// validateBcryptLength rejects passwords bcrypt cannot hash. The limit is in bytes, so
// multibyte passwords hit it with fewer characters than max=72 would allow.
func validateBcryptLength(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= MaxPasswordBytes
}

func validateEmail(email string) bool {
	return truemail.IsValid(email, configuration)
}

// SanitizeData strips markup from every string field of the struct obj points to.
// Fields tagged `sanitize:"-"` are left untouched.
func (v *Validator) SanitizeData(obj interface{}) error {
	value := reflect.ValueOf(obj)
	if value.Kind() != reflect.Ptr || value.Elem().Kind() != reflect.Struct {
		return errors.New("sanitize: expected pointer to struct")
	}

	elem := value.Elem()
	for i := 0; i < elem.NumField(); i++ {
		if elem.Type().Field(i).Tag.Get("sanitize") == "-" {
			continue
		}

		field := elem.Field(i)
		if !field.CanSet() {
			continue
		}

		switch {
		case field.Kind() == reflect.String:
			field.SetString(v.policy.Sanitize(field.String()))
		case field.Kind() == reflect.Ptr && !field.IsNil() && field.Elem().Kind() == reflect.String:
			sanitized := v.policy.Sanitize(field.Elem().String())
			field.Set(reflect.ValueOf(&sanitized))
		}
	}

	return nil
}
