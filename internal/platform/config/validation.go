package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// ErrInvalid is wrapped by every error Validate returns.
var ErrInvalid = errors.New("config validation failed")

var validate = newValidator()

// newValidator names fields by their koanf key so messages read like the
// YAML a user has to fix.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("koanf"), ",")
		if name == "" {
			return toSnake(fld.Name)
		}

		return name
	})

	return v
}

// Validate reports every invalid field at once. The service refuses to
// start on an invalid config.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	lines := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		lines = append(lines, describe(fe))
	}

	return fmt.Errorf("%w:\n  %s", ErrInvalid, strings.Join(lines, "\n  "))
}

func describe(fe validator.FieldError) string {
	key := configKey(fe.Namespace())
	param := fe.Param()

	switch fe.Tag() {
	case "required":
		return key + " is required"
	case "required_if":
		cond := strings.Fields(param)
		if len(cond) == 2 {
			return fmt.Sprintf("%s is required when %s is %s", key, toSnake(cond[0]), cond[1])
		}

		return key + " is required"
	case "min":
		return key + " must be at least " + param
	case "max":
		return key + " must be at most " + param
	case "oneof":
		return key + " must be one of: " + param
	case "ltfield":
		return key + " must be less than " + toSnake(param)
	case "excludesall":
		return key + " must not contain any of: " + param
	default:
		return key + " failed validation: " + fe.Tag()
	}
}

// configKey turns a namespace like "Config.log.file.max_size" into the
// config key "log.file.max_size".
func configKey(namespace string) string {
	_, key, found := strings.Cut(namespace, ".")
	if !found {
		return toSnake(namespace)
	}

	return key
}

// toSnake converts a Go field name such as "WriteTimeout" to "write_timeout".
func toSnake(name string) string {
	var b strings.Builder

	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}

			r = unicode.ToLower(r)
		}

		b.WriteRune(r)
	}

	return b.String()
}
