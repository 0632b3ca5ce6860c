package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidateConfig checks the whole configuration against its validate tags
// and reports every failing field in one error.
func ValidateConfig(cfg *Config) error {
	err := validator.New().Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	lines := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		lines = append(lines, fmt.Sprintf("field '%s' failed '%s' (value: '%v')",
			fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("validation failed:\n  %s", strings.Join(lines, "\n  "))
}
