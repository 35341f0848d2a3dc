package config

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/G-Research/rainbow/internal/common/rainbowerrors"
)

// Validate checks the validate struct tags of config. Failing fields are reported as one
// rainbowerrors.ErrInvalidArgument each, combined into a multierror.
func Validate(config interface{}) error {
	err := validator.New().Struct(config)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return errors.WithStack(err)
	}
	var result *multierror.Error
	for _, fieldErr := range validationErrors {
		result = multierror.Append(result, errors.WithStack(&rainbowerrors.ErrInvalidArgument{
			Name:    stripPrefix(fieldErr.Namespace()),
			Value:   fieldErr.Value(),
			Message: describe(fieldErr),
		}))
	}
	return result.ErrorOrNil()
}

func describe(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required but was not found"
	case "oneof":
		return "must be one of " + err.Param()
	case "gte", "min":
		return "must be at least " + err.Param()
	case "lte", "max":
		return "must be at most " + err.Param()
	default:
		return "failed " + err.Tag() + " check"
	}
}

func stripPrefix(s string) string {
	if idx := strings.Index(s, "."); idx != -1 {
		return s[idx+1:]
	}
	return s
}
