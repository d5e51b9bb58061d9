package forms

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/legendmotors/skywell-leads/internal/leads"
)

func TestFormatDate(t *testing.T) {
	cases := map[string]string{
		"2025-03-07":           "2025-03-07",
		"07/03/2025":           "2025-03-07",
		"7/3/2025":             "2025-03-07",
		"2025-03-07T10:00:00Z": "2025-03-07",
		"March 7, 2025":        "2025-03-07",
		"  ":                   "",
	}
	for in, want := range cases {
		got, err := FormatDate(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := FormatDate("next tuesday")
	assert.Error(t, err)
}

func TestTo24Hour(t *testing.T) {
	cases := map[string]string{
		"2:30 PM":   "14:30:00",
		"2:30pm":    "14:30:00",
		"12:05 AM":  "00:05:00",
		"12:00 PM":  "12:00:00",
		"9 am":      "09:00:00",
		"10:15 p.m": "22:15:00",
		"16:45":     "16:45:00",
		"08:00:30":  "08:00:30",
		"":          "",
	}
	for in, want := range cases {
		got, err := To24Hour(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := To24Hour("teatime")
	assert.True(t, errors.Is(err, errInvalidTime))
}

func TestCombineNotes(t *testing.T) {
	got := CombineNotes("  Call me\nafter 5 ", UTM{Source: "google", Campaign: "ramadan"})
	assert.Equal(t, "Call me after 5 | utm_source=google, utm_campaign=ramadan", got)
	assert.Equal(t, "utm_medium=cpc", CombineNotes("", UTM{Medium: "cpc"}))
	assert.Equal(t, "", CombineNotes(" ", UTM{}))
}

func TestFormatPhone(t *testing.T) {
	assert.Equal(t, "+971501234567", FormatPhone("971", "50 123 4567"))
	assert.Equal(t, "+971501234567", FormatPhone(" +971 ", "501234567"))
	assert.Equal(t, "+447700900123", FormatPhone("971", "+44 7700 900123"))
	assert.Equal(t, "", FormatPhone("971", "  "))
}

func validForm() *Form {
	return &Form{
		Name:        "Jane Doe",
		Email:       "jane@example.com",
		CountryCode: "971",
		Phone:       "50 123 4567",
		Date:        "07/03/2025",
		Time:        "2:30 PM",
		Model:       "Skywell ET5",
		Message:     "Weekend please",
		UTM:         UTM{Source: "instagram", Campaign: "launch"},
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validForm().Validate(leads.KindTestDrive))

	f := validForm()
	f.Name = " "
	f.Email = "not-an-email"
	f.Phone = "123"
	f.Model = ""
	f.Date = ""
	f.Time = "later"

	err := f.Validate(leads.KindTestDrive)
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Contains(t, vErr.Fields, "name")
	assert.Contains(t, vErr.Fields, "email")
	assert.Contains(t, vErr.Fields, "phone")
	assert.Contains(t, vErr.Fields, "model")
	assert.Contains(t, vErr.Fields, "date")
	assert.Equal(t, "time is invalid", vErr.Fields["time"])
}

func TestValidateContactRules(t *testing.T) {
	f := &Form{Name: "Ali", Phone: "+971501234567"}
	err := f.Validate(leads.KindContact)
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, map[string]string{"email": "email is required"}, vErr.Fields)

	f.Email = "ali@example.ae"
	assert.NoError(t, f.Validate(leads.KindContact))
}

func TestValidatePhoneTooLong(t *testing.T) {
	f := validForm()
	f.Phone = "1234567890123456"
	err := f.Validate(leads.KindQuote)
	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Contains(t, vErr.Fields["phone"], "7 to 15")
}

func TestToPayload(t *testing.T) {
	dealer := Dealer{
		CompanyCode:        "Skywell",
		CompanyID:          "7",
		DealershipID:       "12",
		LeadSourceID:       "Website",
		DefaultCountryCode: "+971",
	}
	f := validForm()
	f.CountryCode = ""

	payload, err := f.ToPayload(dealer)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", payload[leads.FieldCustomerName])
	assert.Equal(t, "+971501234567", payload[leads.FieldMobileNumber])
	assert.Equal(t, "+971", payload[leads.FieldCountryCode])
	assert.Equal(t, "Skywell ET5", payload[leads.FieldCarModal])
	assert.Equal(t, "12", payload[leads.FieldDearlerShipID])
	assert.Equal(t, "2025-03-07", payload[leads.FieldDate])
	assert.Equal(t, "14:30:00", payload[leads.FieldTime])
	assert.Equal(t, "launch", payload[leads.FieldCampaignName])
	assert.Equal(t, "Weekend please | utm_source=instagram, utm_campaign=launch", payload[leads.FieldAdditionalInformation])
	assert.Empty(t, payload.Missing(leads.RequiredFields))
}

func TestToPayloadContactFallsBackToDefaultModel(t *testing.T) {
	f := &Form{Name: "Omar", Email: "omar@example.ae", Phone: "501234567"}
	require.NoError(t, f.Validate(leads.KindContact))

	payload, err := f.ToPayload(Dealer{
		CompanyCode:  "Skywell",
		CompanyID:    "7",
		DealershipID: "12",
		LeadSourceID: "Website",
		DefaultModel: "General Enquiry",
	})
	require.NoError(t, err)
	assert.Equal(t, "General Enquiry", payload[leads.FieldCarModal])
	assert.Empty(t, payload.Missing(leads.RequiredFields))
}
