// Package validation implements the authoritative server-side checks for
// user-submitted values: registration fields and the six prediction
// attributes. Each rule reports a failure as a FieldError naming the field,
// so transports can render errors inline per field.
package validation

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/dmitrijs2005/premio/internal/common"
	"github.com/dmitrijs2005/premio/internal/server/models"
)

const (
	MinAge      = 18
	MaxAge      = 100
	MinBMI      = 10.0
	MaxBMI      = 50.0
	MinChildren = 0
	MaxChildren = 10

	MinUsernameLength = 3
	MinPasswordLength = 6
)

var (
	emailRegexp    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernameRegexp = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

	genders = []string{"male", "female"}
	smokers = []string{"yes", "no"}
	regions = []string{"northeast", "southeast", "southwest", "northwest"}
)

// FieldError is a validation failure attributed to a single input field.
// It wraps common.ErrorValidation so callers can classify it with errors.Is.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *FieldError) Unwrap() error {
	return common.ErrorValidation
}

func fieldErr(field, format string, args ...any) *FieldError {
	return &FieldError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func oneOf(field, value string, allowed []string) *FieldError {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fieldErr(field, "must be one of: %s", strings.Join(allowed, ", "))
}

// Age checks the subject age range.
func Age(v int) error {
	if v < MinAge || v > MaxAge {
		return fieldErr("age", "must be between %d and %d", MinAge, MaxAge)
	}
	return nil
}

// BMI checks the body-mass-index range.
func BMI(v float64) error {
	if v < MinBMI || v > MaxBMI {
		return fieldErr("bmi", "must be between %.0f and %.0f", MinBMI, MaxBMI)
	}
	return nil
}

// Children checks the dependent count range.
func Children(v int) error {
	if v < MinChildren || v > MaxChildren {
		return fieldErr("children", "must be between %d and %d", MinChildren, MaxChildren)
	}
	return nil
}

func Gender(v string) error {
	if e := oneOf("gender", v, genders); e != nil {
		return e
	}
	return nil
}

func Smoker(v string) error {
	if e := oneOf("smoker", v, smokers); e != nil {
		return e
	}
	return nil
}

func Region(v string) error {
	if e := oneOf("region", v, regions); e != nil {
		return e
	}
	return nil
}

// Email validates the local@domain.tld shape and returns the normalized
// (lowercased, trimmed) address.
func Email(v string) (string, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	if !emailRegexp.MatchString(v) {
		return "", fieldErr("email", "invalid email address")
	}
	return v, nil
}

func Username(v string) error {
	if len(v) < MinUsernameLength {
		return fieldErr("username", "must be at least %d characters long", MinUsernameLength)
	}
	if !usernameRegexp.MatchString(v) {
		return fieldErr("username", "can only contain letters, numbers, and underscores")
	}
	return nil
}

func Password(v string) error {
	if len(v) < MinPasswordLength {
		return fieldErr("password", "must be at least %d characters long", MinPasswordLength)
	}
	return nil
}

// attributeRules is the validation table for the prediction attribute set,
// keyed by field identity. Rules run in declaration order; the first failure
// per field wins.
var attributeRules = []struct {
	field string
	check func(a models.AttributeSet) error
}{
	{"age", func(a models.AttributeSet) error { return Age(a.Age) }},
	{"gender", func(a models.AttributeSet) error { return Gender(a.Gender) }},
	{"bmi", func(a models.AttributeSet) error { return BMI(a.BMI) }},
	{"children", func(a models.AttributeSet) error { return Children(a.Children) }},
	{"smoker", func(a models.AttributeSet) error { return Smoker(a.Smoker) }},
	{"region", func(a models.AttributeSet) error { return Region(a.Region) }},
}

// Attributes runs every rule and returns all failures, or nil when the set
// is valid.
func Attributes(a models.AttributeSet) []*FieldError {
	var errs []*FieldError
	for _, r := range attributeRules {
		if err := r.check(a); err != nil {
			errs = append(errs, err.(*FieldError))
		}
	}
	return errs
}

// BMICategory returns the categorical label for a BMI value at the standard
// 18.5/25/30 thresholds.
func BMICategory(bmi float64) string {
	switch {
	case bmi < 18.5:
		return "Underweight"
	case bmi < 25:
		return "Normal weight"
	case bmi < 30:
		return "Overweight"
	default:
		return "Obese"
	}
}

// CalculateBMI computes weight(kg)/height(m)² rounded to one decimal.
func CalculateBMI(heightCm, weightKg float64) (float64, error) {
	if heightCm <= 0 {
		return 0, fieldErr("height_cm", "must be positive")
	}
	if weightKg <= 0 {
		return 0, fieldErr("weight_kg", "must be positive")
	}
	m := heightCm / 100
	return math.Round(weightKg/(m*m)*10) / 10, nil
}
