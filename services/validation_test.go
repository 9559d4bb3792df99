package services_test

import (
	"testing"

	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/models"
	"github.com/YoussefMohammed93/TheBrothers-Store-sub000/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateShippingForm_Valid(t *testing.T) {
	assert.NoError(t, services.ValidateShippingForm(validForm()))

	form := validForm()
	form.Phone = "0100-123-4567"
	form.PostalCode = ""
	assert.NoError(t, services.ValidateShippingForm(form))
}

func TestValidateShippingForm_Rules(t *testing.T) {
	tests := []struct {
		name    string
		edit    func(*models.ShippingForm)
		rule    string
		message string
	}{
		{"blank name", func(f *models.ShippingForm) { f.FullName = "  " }, services.RuleRequired, "Please fill in all required fields"},
		{"missing street", func(f *models.ShippingForm) { f.Street = "" }, services.RuleRequired, "Please fill in all required fields"},
		// Required fields are reported before a bad email.
		{"missing district and bad email", func(f *models.ShippingForm) { f.District = ""; f.Email = "x" }, services.RuleRequired, "Please fill in all required fields"},
		{"email without at", func(f *models.ShippingForm) { f.Email = "mona.example.com" }, services.RuleEmail, "Please enter a valid email address"},
		{"email with space", func(f *models.ShippingForm) { f.Email = "mona adel@example.com" }, services.RuleEmail, "Please enter a valid email address"},
		{"phone letters", func(f *models.ShippingForm) { f.Phone = "0100abc4567" }, services.RulePhone, "Please enter a valid phone number"},
		{"phone too long", func(f *models.ShippingForm) { f.Phone = "1234567890123456" }, services.RulePhone, "Please enter a valid phone number"},
		{"phone too short", func(f *models.ShippingForm) { f.Phone = "+20 1234" }, services.RulePhone, "Please enter a valid phone number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.edit(&form)

			err := services.ValidateShippingForm(form)

			var validationErr *services.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.rule, validationErr.Rule)
			assert.Equal(t, tt.message, validationErr.Error())
		})
	}
}

func TestNormalizeShippingForm(t *testing.T) {
	form := services.NormalizeShippingForm(models.ShippingForm{FullName: "  Mona ", Notes: " ring twice \n"})
	assert.Equal(t, "Mona", form.FullName)
	assert.Equal(t, "ring twice", form.Notes)
}
