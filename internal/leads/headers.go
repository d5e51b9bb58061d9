package leads

import (
	"net/http"
	"strings"

	"golang.org/x/net/http/httpguts"
)

var newlineReplacer = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// Headers is the CRM wire shape: every field travels as an HTTP header whose
// name is used verbatim.
type Headers map[string]string

// BuildHeaders converts every truthy payload field into a header value.
// DearlerShipId is mirrored to DealerShipId so both spellings reach the CRM.
func BuildHeaders(p Payload) Headers {
	h := make(Headers, len(p)+1)
	for key, value := range p {
		if !truthy(value) || !httpguts.ValidHeaderFieldName(key) {
			continue
		}
		h[key] = SanitizeHeaderValue(stringify(value))
	}
	if v, ok := h[FieldDearlerShipID]; ok {
		if _, exists := h[FieldDealerShipID]; !exists {
			h[FieldDealerShipID] = v
		}
	}
	return h
}

// SanitizeHeaderValue replaces line breaks with spaces and drops any other
// byte a header value cannot carry.
func SanitizeHeaderValue(v string) string {
	v = newlineReplacer.Replace(v)
	if httpguts.ValidHeaderFieldValue(v) {
		return v
	}
	return strings.Map(func(r rune) rune {
		if r == '\t' {
			return r
		}
		if r < ' ' || r == 0x7f {
			return -1
		}
		return r
	}, v)
}

// Apply copies the headers onto h without canonicalising the names.
func (hs Headers) Apply(h http.Header) {
	for k, v := range hs {
		h[k] = []string{v}
	}
}
