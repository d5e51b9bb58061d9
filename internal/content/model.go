// Package content manages the dealership blog posts and offers edited from
// the admin panel.
package content

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"go.mongodb.org/mongo-driver/v2/bson"
)

var (
	// ErrNotFound is returned when a document does not exist.
	ErrNotFound = errors.New("content: not found")
)

// InvalidError reports a document rejected by its own validation.
type InvalidError struct {
	Reason string
}

func (e *InvalidError) Error() string {
	return "content: " + e.Reason
}

// Meta is embedded in every stored document.
type Meta struct {
	ID        string    `json:"id" bson:"_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

func (m *Meta) meta() *Meta { return m }

// Query narrows a listing.
type Query struct {
	Search    string
	SortBy    string
	Ascending bool
	Limit     int
	Offset    int
	// Public hides drafts, inactive and expired documents as of Now.
	Public bool
	Now    time.Time
}

// Document is implemented by pointers to the stored types.
type Document[T any] interface {
	*T
	meta() *Meta
	normalize(now time.Time) error
	visible(q Query) bool
	matches(search string) bool
	sortValue(field string) string
	scope(q Query) bson.D
	searchFields() []string
}

// Blog is a news or editorial post.
type Blog struct {
	Meta        `bson:",inline"`
	Title       string     `json:"title" bson:"title"`
	Slug        string     `json:"slug" bson:"slug"`
	Excerpt     string     `json:"excerpt,omitempty" bson:"excerpt,omitempty"`
	Body        string     `json:"content" bson:"content"`
	CoverImage  string     `json:"cover_image,omitempty" bson:"cover_image,omitempty"`
	Author      string     `json:"author,omitempty" bson:"author,omitempty"`
	Tags        []string   `json:"tags,omitempty" bson:"tags,omitempty"`
	Published   bool       `json:"published" bson:"published"`
	PublishedAt *time.Time `json:"published_at,omitempty" bson:"published_at,omitempty"`
}

// BlogSorts are the sort_by values accepted for blogs; the first is the default.
var BlogSorts = []string{"created_at", "published_at", "title"}

func (b *Blog) normalize(now time.Time) error {
	b.Title = strings.TrimSpace(b.Title)
	if b.Title == "" {
		return &InvalidError{Reason: "title is required"}
	}
	b.Slug = Slugify(b.Slug)
	if b.Slug == "" {
		b.Slug = Slugify(b.Title)
	}
	if b.Published && b.PublishedAt == nil {
		at := now
		b.PublishedAt = &at
	}
	return nil
}

func (b *Blog) visible(q Query) bool {
	return !q.Public || b.Published
}

func (b *Blog) matches(search string) bool {
	if search == "" {
		return true
	}
	return containsFold(search, b.Title, b.Excerpt, b.Author, strings.Join(b.Tags, " "))
}

func (b *Blog) sortValue(field string) string {
	switch field {
	case "title":
		return strings.ToLower(b.Title)
	case "published_at":
		return sortableTime(b.PublishedAt)
	default:
		return sortableTime(&b.CreatedAt)
	}
}

func (b *Blog) scope(q Query) bson.D {
	if !q.Public {
		return bson.D{}
	}
	return bson.D{{Key: "published", Value: true}}
}

func (b *Blog) searchFields() []string {
	return []string{"title", "excerpt", "author", "tags"}
}

// Offer is a time-boxed promotion on one or more models.
type Offer struct {
	Meta        `bson:",inline"`
	Title       string     `json:"title" bson:"title"`
	Description string     `json:"description,omitempty" bson:"description,omitempty"`
	Model       string     `json:"model,omitempty" bson:"model,omitempty"`
	Price       float64    `json:"price,omitempty" bson:"price,omitempty"`
	Image       string     `json:"image,omitempty" bson:"image,omitempty"`
	Terms       string     `json:"terms,omitempty" bson:"terms,omitempty"`
	Active      bool       `json:"active" bson:"active"`
	ValidFrom   *time.Time `json:"valid_from,omitempty" bson:"valid_from,omitempty"`
	ValidUntil  *time.Time `json:"valid_until,omitempty" bson:"valid_until,omitempty"`
}

// OfferSorts are the sort_by values accepted for offers; the first is the default.
var OfferSorts = []string{"created_at", "valid_until", "title"}

func (o *Offer) normalize(time.Time) error {
	o.Title = strings.TrimSpace(o.Title)
	if o.Title == "" {
		return &InvalidError{Reason: "title is required"}
	}
	if o.Price < 0 {
		return &InvalidError{Reason: "price must not be negative"}
	}
	if o.ValidFrom != nil && o.ValidUntil != nil && !o.ValidUntil.After(*o.ValidFrom) {
		return &InvalidError{Reason: fmt.Sprintf("valid_until must be after valid_from (%s)", o.ValidFrom.Format(time.RFC3339))}
	}
	return nil
}

func (o *Offer) visible(q Query) bool {
	if !q.Public {
		return true
	}
	if !o.Active {
		return false
	}
	if o.ValidFrom != nil && o.ValidFrom.After(q.Now) {
		return false
	}
	return o.ValidUntil == nil || o.ValidUntil.After(q.Now)
}

func (o *Offer) matches(search string) bool {
	if search == "" {
		return true
	}
	return containsFold(search, o.Title, o.Description, o.Model)
}

func (o *Offer) sortValue(field string) string {
	switch field {
	case "title":
		return strings.ToLower(o.Title)
	case "valid_until":
		return sortableTime(o.ValidUntil)
	default:
		return sortableTime(&o.CreatedAt)
	}
}

func (o *Offer) scope(q Query) bson.D {
	if !q.Public {
		return bson.D{}
	}
	return bson.D{
		{Key: "active", Value: true},
		{Key: "$and", Value: bson.A{
			bson.D{{Key: "$or", Value: bson.A{
				bson.D{{Key: "valid_from", Value: nil}},
				bson.D{{Key: "valid_from", Value: bson.D{{Key: "$lte", Value: q.Now}}}},
			}}},
			bson.D{{Key: "$or", Value: bson.A{
				bson.D{{Key: "valid_until", Value: nil}},
				bson.D{{Key: "valid_until", Value: bson.D{{Key: "$gt", Value: q.Now}}}},
			}}},
		}},
	}
}

func (o *Offer) searchFields() []string {
	return []string{"title", "description", "model"}
}

// Slugify lower-cases s and joins its alphanumeric runs with hyphens.
func Slugify(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}

func containsFold(search string, fields ...string) bool {
	needle := strings.ToLower(search)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// sortableTime renders t so that string order matches time order; nil sorts first.
func sortableTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("2006-01-02T15:04:05.000000000")
}
