// Package forms turns raw website form input (test drive, quote, contact,
// service) into the fixed CRM payload shape.
package forms

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/legendmotors/skywell-leads/internal/leads"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	minPhoneDigits = 7
	maxPhoneDigits = 15
)

// UTM carries marketing attribution captured from the landing URL.
type UTM struct {
	Source   string `json:"utm_source"`
	Medium   string `json:"utm_medium"`
	Campaign string `json:"utm_campaign"`
	Content  string `json:"utm_content"`
}

// Form is the raw input of any lead form.
type Form struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	CountryCode  string `json:"country_code"`
	Phone        string `json:"phone"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	Model        string `json:"model"`
	Location     string `json:"location"`
	Message      string `json:"message"`
	CampaignName string `json:"campaign_name"`
	UTM
}

// Dealer holds the fixed identifiers the CRM needs to route a lead.
type Dealer struct {
	CompanyCode        string
	CompanyID          string
	DealershipID       string
	LeadSourceID       string
	DefaultCountryCode string
	// DefaultModel stands in for the car model on enquiries that name none.
	DefaultModel       string
}

// ValidationError maps form field names to messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

// Validate applies the per-kind required and pattern rules.
func (f *Form) Validate(kind leads.Kind) error {
	fields := map[string]string{}

	if strings.TrimSpace(f.Name) == "" {
		fields["name"] = "name is required"
	}

	email := strings.TrimSpace(f.Email)
	switch {
	case email == "" && kind == leads.KindContact:
		fields["email"] = "email is required"
	case email != "" && !emailPattern.MatchString(email):
		fields["email"] = "email is invalid"
	}

	switch n := countDigits(f.Phone); {
	case strings.TrimSpace(f.Phone) == "":
		fields["phone"] = "phone is required"
	case n < minPhoneDigits || n > maxPhoneDigits:
		fields["phone"] = fmt.Sprintf("phone must have %d to %d digits", minPhoneDigits, maxPhoneDigits)
	}

	if kind != leads.KindContact && strings.TrimSpace(f.Model) == "" {
		fields["model"] = "model is required"
	}

	if kind == leads.KindTestDrive || kind == leads.KindService {
		if strings.TrimSpace(f.Date) == "" {
			fields["date"] = "date is required"
		}
		if strings.TrimSpace(f.Time) == "" {
			fields["time"] = "time is required"
		}
	}
	if strings.TrimSpace(f.Date) != "" {
		if _, err := FormatDate(f.Date); err != nil {
			fields["date"] = "date is invalid"
		}
	}
	if strings.TrimSpace(f.Time) != "" {
		if _, err := To24Hour(f.Time); err != nil {
			fields["time"] = "time is invalid"
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// ToPayload builds the fixed-shape CRM payload. Validate should pass first.
func (f *Form) ToPayload(dealer Dealer) (leads.Payload, error) {
	date, err := FormatDate(f.Date)
	if err != nil {
		return nil, err
	}
	clock, err := To24Hour(f.Time)
	if err != nil {
		return nil, err
	}

	countryCode := f.CountryCode
	if strings.TrimSpace(countryCode) == "" {
		countryCode = dealer.DefaultCountryCode
	}
	model := strings.TrimSpace(f.Model)
	if model == "" {
		model = strings.TrimSpace(dealer.DefaultModel)
	}
	campaign := strings.TrimSpace(f.CampaignName)
	if campaign == "" {
		campaign = strings.TrimSpace(f.UTM.Campaign)
	}

	return leads.Payload{
		leads.FieldCustomerName:          strings.TrimSpace(f.Name),
		leads.FieldMobileNumber:          FormatPhone(countryCode, f.Phone),
		leads.FieldCountryCode:           normalizeCountryCode(countryCode),
		leads.FieldCarModal:              model,
		leads.FieldCompanyCode:           dealer.CompanyCode,
		leads.FieldCompanyID:             dealer.CompanyID,
		leads.FieldDearlerShipID:         dealer.DealershipID,
		leads.FieldLeadSourceID:          dealer.LeadSourceID,
		leads.FieldEmail:                 strings.TrimSpace(f.Email),
		leads.FieldDate:                  date,
		leads.FieldTime:                  clock,
		leads.FieldAdditionalInformation: CombineNotes(f.Message, f.UTM),
		leads.FieldCampaignName:          campaign,
		leads.FieldLocation:              strings.TrimSpace(f.Location),
	}, nil
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04",
	"02/01/2006",
	"2/1/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
}

// FormatDate normalises a date to yyyy-MM-dd. Slash dates are read
// day-first. An empty input yields "".
func FormatDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", fmt.Errorf("forms: unrecognised date %q", raw)
}

var timeLayouts = []string{
	"3:04 PM",
	"3:04:05 PM",
	"3 PM",
	"15:04",
	"15:04:05",
}

var errInvalidTime = errors.New("forms: unrecognised time")

// To24Hour converts "2:30 PM" style input (or 24-hour input) to HH:MM:SS.
// An empty input yields "".
func To24Hour(raw string) (string, error) {
	s := strings.ToUpper(strings.Join(strings.Fields(raw), " "))
	if s == "" {
		return "", nil
	}
	s = strings.ReplaceAll(s, ".", "")
	for _, suffix := range []string{"AM", "PM"} {
		if strings.HasSuffix(s, suffix) && !strings.HasSuffix(s, " "+suffix) {
			s = strings.TrimSuffix(s, suffix) + " " + suffix
		}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04:05"), nil
		}
	}
	return "", fmt.Errorf("%w %q", errInvalidTime, raw)
}

// CombineNotes folds the free-text message and the UTM attribution into one
// line, since the CRM cannot carry structured metadata.
func CombineNotes(message string, utm UTM) string {
	var parts []string
	if m := strings.Join(strings.Fields(message), " "); m != "" {
		parts = append(parts, m)
	}
	var attribution []string
	for _, kv := range [][2]string{
		{"utm_source", utm.Source},
		{"utm_medium", utm.Medium},
		{"utm_campaign", utm.Campaign},
		{"utm_content", utm.Content},
	} {
		if v := strings.Join(strings.Fields(kv[1]), " "); v != "" {
			attribution = append(attribution, kv[0]+"="+v)
		}
	}
	if len(attribution) > 0 {
		parts = append(parts, strings.Join(attribution, ", "))
	}
	return strings.Join(parts, " | ")
}

// FormatPhone joins a country code and a local number into +<digits>. A
// number that already starts with + is used as is.
func FormatPhone(countryCode, phone string) string {
	phone = stripSpace(phone)
	if phone == "" {
		return ""
	}
	if strings.HasPrefix(phone, "+") {
		return leads.NormalizePhone(phone)
	}
	return normalizeCountryCode(countryCode) + phone
}

func normalizeCountryCode(cc string) string {
	cc = strings.TrimLeft(stripSpace(cc), "+")
	if cc == "" {
		return ""
	}
	return "+" + cc
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
