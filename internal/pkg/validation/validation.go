// Package validation holds the form rules shared by every HTTP module.
// Rules are registered on gin's validator so DTOs can use them in binding tags.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

var (
	registerOnce sync.Once
	registerErr  error
)

// Enum registers a tag that accepts only the given values.
type Enum struct {
	Tag    string
	Values []string
}

// Register installs the custom rules on gin's default validator.
// Only the first call has an effect.
func Register(enums ...Enum) error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		registerErr = RegisterOn(v, enums...)
	})
	return registerErr
}

// Values converts a typed string enumeration for use in an Enum.
func Values[T ~string](vs []T) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = string(v)
	}
	return out
}

// RegisterOn installs the custom rules on the given validator instance.
func RegisterOn(v *validator.Validate, enums ...Enum) error {
	if err := v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return IsPhone(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("register phone validation: %w", err)
	}

	if err := v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}); err != nil {
		return fmt.Errorf("register notblank validation: %w", err)
	}

	for _, e := range enums {
		allowed := make(map[string]struct{}, len(e.Values))
		for _, val := range e.Values {
			allowed[val] = struct{}{}
		}
		if err := v.RegisterValidation(e.Tag, func(fl validator.FieldLevel) bool {
			s := fl.Field().String()
			if s == "" {
				return true
			}
			_, ok := allowed[s]
			return ok
		}); err != nil {
			return fmt.Errorf("register %s validation: %w", e.Tag, err)
		}
	}
	return nil
}

// NormalizePhone removes spaces, dashes, dots and parentheses.
func NormalizePhone(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '.', '(', ')':
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}

// IsPhone reports whether s looks like a phone number once separators are removed.
func IsPhone(s string) bool {
	return phonePattern.MatchString(NormalizePhone(s))
}
