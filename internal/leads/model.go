package leads

import (
	"strings"
	"time"
)

// Kind identifies which website form produced a lead.
type Kind string

const (
	KindTestDrive Kind = "test_drive"
	KindQuote     Kind = "quote"
	KindContact   Kind = "contact"
	KindService   Kind = "service"
)

// Kinds lists every kind in display order.
var Kinds = []Kind{KindTestDrive, KindQuote, KindContact, KindService}

// ParseKind accepts the route spellings (test-drive, test_drive) as well as
// the stored values.
func ParseKind(raw string) (Kind, bool) {
	k := Kind(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "-", "_"))
	for _, known := range Kinds {
		if k == known {
			return k, true
		}
	}
	return "", false
}

// Lead is the local copy of a submission. It is written once per attempt and
// never updated by the submission pipeline.
type Lead struct {
	ID         string            `json:"id"`
	Kind       Kind              `json:"kind"`
	Name       string            `json:"name"`
	Email      string            `json:"email,omitempty"`
	Phone      string            `json:"phone"`
	Model      string            `json:"model,omitempty"`
	Date       string            `json:"date,omitempty"`
	Time       string            `json:"time,omitempty"`
	Notes      string            `json:"notes,omitempty"`
	Location   string            `json:"location,omitempty"`
	Campaign   string            `json:"campaign,omitempty"`
	LeadSource string            `json:"lead_source,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

// NewLead maps a submission payload onto the local record shape.
func NewLead(kind Kind, p Payload) *Lead {
	return &Lead{
		Kind:       kind,
		Name:       p.String(FieldCustomerName),
		Email:      p.String(FieldEmail),
		Phone:      NormalizePhone(p.String(FieldMobileNumber)),
		Model:      p.String(FieldCarModal),
		Date:       p.String(FieldDate),
		Time:       p.String(FieldTime),
		Notes:      p.String(FieldAdditionalInformation),
		Location:   p.String(FieldLocation),
		Campaign:   p.String(FieldCampaignName),
		LeadSource: p.String(FieldLeadSourceID),
		Fields:     p.Strings(),
	}
}

// matches reports whether the lead contains search in any listed column.
func (l *Lead) matches(search string) bool {
	if search == "" {
		return true
	}
	search = strings.ToLower(search)
	for _, v := range []string{l.Name, l.Email, l.Phone, l.Model} {
		if strings.Contains(strings.ToLower(v), search) {
			return true
		}
	}
	return false
}

// ListFilter narrows admin lead listings.
type ListFilter struct {
	Kind      Kind
	Search    string
	SortBy    string
	Ascending bool
	Limit     int
	Offset    int
}

// SortColumns are the admin-sortable lead columns.
var SortColumns = []string{"created_at", "name", "model"}
