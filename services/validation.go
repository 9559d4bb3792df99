package services

import (
	"regexp"
	"strings"

	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/models"
	"github.com/go-playground/validator/v10"
)

// Validation rules, checked in this order.
const (
	RuleRequired = "required"
	RuleEmail    = "email"
	RulePhone    = "phone"
)

var (
	formValidator = validator.New()
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneStripper = strings.NewReplacer("+", "", " ", "", "-", "")
)

// ValidationError reports the first shipping form rule that failed.
type ValidationError struct {
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NormalizeShippingForm trims surrounding whitespace from every field.
func NormalizeShippingForm(form models.ShippingForm) models.ShippingForm {
	form.FullName = strings.TrimSpace(form.FullName)
	form.Email = strings.TrimSpace(form.Email)
	form.Phone = strings.TrimSpace(form.Phone)
	form.Country = strings.TrimSpace(form.Country)
	form.City = strings.TrimSpace(form.City)
	form.District = strings.TrimSpace(form.District)
	form.Street = strings.TrimSpace(form.Street)
	form.PostalCode = strings.TrimSpace(form.PostalCode)
	form.Notes = strings.TrimSpace(form.Notes)
	return form
}

// ValidateShippingForm returns nil when the form may leave the shipping step.
func ValidateShippingForm(form models.ShippingForm) error {
	form = NormalizeShippingForm(form)

	if err := formValidator.Struct(form); err != nil {
		return &ValidationError{Rule: RuleRequired, Message: "Please fill in all required fields"}
	}
	if !emailPattern.MatchString(form.Email) {
		return &ValidationError{Rule: RuleEmail, Message: "Please enter a valid email address"}
	}
	if !validPhone(form.Phone) {
		return &ValidationError{Rule: RulePhone, Message: "Please enter a valid phone number"}
	}
	return nil
}

func validPhone(phone string) bool {
	digits := phoneStripper.Replace(phone)
	if len(digits) < 9 || len(digits) > 15 {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
