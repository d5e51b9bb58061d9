// Package respond holds the JSON response and pagination helpers shared by
// the public and admin handlers.
package respond

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"strings"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxPage keeps (page-1)*page_size inside a Postgres-safe int32 offset.
	MaxPage         = math.MaxInt32 / MaxPageSize
)

// JSON writes payload with the given status.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// Error writes {"error": message}.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// Page is a parsed page request.
type Page struct {
	Page      int
	PageSize  int
	Search    string
	SortBy    string
	SortOrder string
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int {
	if p.Page < 1 || p.PageSize < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// Descending reports whether the sort order is descending.
func (p Page) Descending() bool {
	return p.SortOrder != "asc"
}

// ParsePage reads page, page_size, search, sort_by and sort_order. sort_by is
// kept only when it appears in allowedSorts; the first allowed sort is the
// default.
func ParsePage(r *http.Request, allowedSorts ...string) Page {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	pageSize, _ := strconv.Atoi(q.Get("page_size"))
	if pageSize < 1 || pageSize > MaxPageSize {
		pageSize = DefaultPageSize
	}
	sortOrder := strings.ToLower(q.Get("sort_order"))
	if sortOrder != "asc" {
		sortOrder = "desc"
	}
	sortBy := ""
	if len(allowedSorts) > 0 {
		sortBy = allowedSorts[0]
		requested := q.Get("sort_by")
		for _, allowed := range allowedSorts {
			if requested == allowed {
				sortBy = requested
				break
			}
		}
	}
	return Page{
		Page:      page,
		PageSize:  pageSize,
		Search:    strings.TrimSpace(q.Get("search")),
		SortBy:    sortBy,
		SortOrder: sortOrder,
	}
}

// List is the envelope for paginated admin lists.
type List[T any] struct {
	Items      []T `json:"items"`
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

// NewList builds the envelope; a nil slice is rendered as [].
func NewList[T any](items []T, total int, p Page) List[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if p.PageSize > 0 {
		totalPages = (total + p.PageSize - 1) / p.PageSize
	}
	return List[T]{
		Items:      items,
		Total:      total,
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalPages: totalPages,
	}
}

// Window returns the slice bounds for an in-memory page over n items.
func Window(n int, p Page) (int, int) {
	start := p.Offset()
	if start < 0 {
		start = 0
	}
	if start > n {
		start = n
	}
	end := start + p.PageSize
	if end > n {
		end = n
	}
	return start, end
}
