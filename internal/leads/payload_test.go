package leads

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePayloadKeepsNumbersVerbatim(t *testing.T) {
	p, err := DecodePayload(strings.NewReader(`{"CompanyID": 1001, "Price": 12.50, "Flag": true}`))
	require.NoError(t, err)

	assert.Equal(t, json.Number("1001"), p["CompanyID"])
	assert.Equal(t, "12.50", p.String("Price"))
	assert.Equal(t, "true", p.String("Flag"))
}

func TestDecodePayloadRejectsNonObjects(t *testing.T) {
	for _, body := range []string{"", "{", "null", `"text"`, "[1,2]"} {
		_, err := DecodePayload(strings.NewReader(body))
		assert.Truef(t, errors.Is(err, ErrInvalidBody), "body %q: expected ErrInvalidBody, got %v", body, err)
	}
}

func TestMissingFollowsTruthiness(t *testing.T) {
	p := Payload{
		FieldCustomerName:  "Jane Doe",
		FieldMobileNumber:  "",
		FieldCarModal:      nil,
		FieldCompanyCode:   false,
		FieldCompanyID:     json.Number("0"),
		FieldDearlerShipID: json.Number("12"),
	}

	missing := p.Missing(RequiredFields)

	assert.Equal(t, []string{
		FieldMobileNumber,
		FieldCarModal,
		FieldCompanyCode,
		FieldCompanyID,
		FieldLeadSourceID,
	}, missing)
}

func TestMissingEmptyWhenComplete(t *testing.T) {
	assert.Empty(t, completePayload().Missing(RequiredFields))
}

func TestStringsSkipsFalsyAndEncodesObjects(t *testing.T) {
	p := Payload{
		"Name":   "Jane",
		"Empty":  "",
		"Zero":   json.Number("0"),
		"Nested": map[string]any{"utm": "google"},
		"List":   []any{},
	}

	got := p.Strings()

	assert.Equal(t, map[string]string{
		"Name":   "Jane",
		"Nested": `{"utm":"google"}`,
		"List":   "[]",
	}, got)
}

func completePayload() Payload {
	return Payload{
		FieldCustomerName:  "Jane Doe",
		FieldMobileNumber:  "501234567",
		FieldCountryCode:   "+971",
		FieldCarModal:      "ET5",
		FieldCompanyCode:   "Skywell",
		FieldCompanyID:     "Skywell-01",
		FieldDearlerShipID: "7",
		FieldLeadSourceID:  "Website",
	}
}
