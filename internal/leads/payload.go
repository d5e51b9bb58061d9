package leads

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// CRM field names. The spelling is fixed by the external contract,
// including CarModal and DearlerShipId.
const (
	FieldCustomerName          = "CustomerName"
	FieldMobileNumber          = "MobileNumber"
	FieldCountryCode           = "CountryCode"
	FieldCarModal              = "CarModal"
	FieldCompanyCode           = "CompanyCode"
	FieldCompanyID             = "CompanyID"
	FieldDearlerShipID         = "DearlerShipId"
	FieldDealerShipID          = "DealerShipId"
	FieldLeadSourceID          = "LeadSourceId"
	FieldEmail                 = "Email"
	FieldDate                  = "Date"
	FieldTime                  = "Time"
	FieldAdditionalInformation = "AdditionalInformation"
	FieldCampaignName          = "CampaignName"
	FieldLocation              = "Location"
)

// RequiredFields must be truthy before a submission is forwarded.
var RequiredFields = []string{
	FieldCustomerName,
	FieldMobileNumber,
	FieldCarModal,
	FieldCompanyCode,
	FieldCompanyID,
	FieldDearlerShipID,
	FieldLeadSourceID,
}

// Payload is a decoded submission body. Values keep their JSON types;
// numbers are json.Number so they render exactly as sent.
type Payload map[string]any

// DecodePayload reads a single JSON object.
func DecodePayload(r io.Reader) (Payload, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var p Payload
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	if p == nil {
		return nil, ErrInvalidBody
	}
	return p, nil
}

// Missing returns the required keys whose values are absent or falsy, in
// the order given.
func (p Payload) Missing(required []string) []string {
	var missing []string
	for _, key := range required {
		if !truthy(p[key]) {
			missing = append(missing, key)
		}
	}
	return missing
}

// String returns the stringified value of key, or "" when it is falsy.
func (p Payload) String(key string) string {
	v, ok := p[key]
	if !ok || !truthy(v) {
		return ""
	}
	return stringify(v)
}

// Strings returns every truthy field stringified.
func (p Payload) Strings() map[string]string {
	out := make(map[string]string, len(p))
	for k, v := range p {
		if truthy(v) {
			out[k] = stringify(v)
		}
	}
	return out
}

// Clone returns a shallow copy.
func (p Payload) Clone() Payload {
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// truthy follows JavaScript truthiness for decoded JSON values: null, false,
// 0 and "" are falsy; objects and arrays are always truthy.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := strconv.ParseFloat(t.String(), 64)
		return err != nil || f != 0
	case float64:
		return t != 0
	case int:
		return t != 0
	default:
		return true
	}
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	default:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(t); err != nil {
			return fmt.Sprint(t)
		}
		return string(bytes.TrimRight(buf.Bytes(), "\n"))
	}
}
