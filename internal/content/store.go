package content

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store persists one document type.
type Store[T any] interface {
	Create(ctx context.Context, doc *T) error
	Get(ctx context.Context, id string) (*T, error)
	Update(ctx context.Context, doc *T) error
	List(ctx context.Context, q Query) ([]*T, int, error)
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps documents in process memory.
type MemoryStore[T any, P Document[T]] struct {
	mu    sync.RWMutex
	items map[string]*T
	now   func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore[T any, P Document[T]]() *MemoryStore[T, P] {
	return &MemoryStore[T, P]{
		items: make(map[string]*T),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Create assigns the ID and timestamps and stores a copy.
func (s *MemoryStore[T, P]) Create(ctx context.Context, doc *T) error {
	m := P(doc).meta()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	now := s.now()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now

	stored := *doc
	s.mu.Lock()
	s.items[m.ID] = &stored
	s.mu.Unlock()
	return nil
}

// Get returns a copy of the document.
func (s *MemoryStore[T, P]) Get(ctx context.Context, id string) (*T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *doc
	return &out, nil
}

// Update replaces an existing document, keeping its creation time.
func (s *MemoryStore[T, P]) Update(ctx context.Context, doc *T) error {
	m := P(doc).meta()

	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.items[m.ID]
	if !ok {
		return ErrNotFound
	}
	m.CreatedAt = P(existing).meta().CreatedAt
	m.UpdatedAt = s.now()
	stored := *doc
	s.items[m.ID] = &stored
	return nil
}

// List filters, sorts and pages the stored documents.
func (s *MemoryStore[T, P]) List(ctx context.Context, q Query) ([]*T, int, error) {
	s.mu.RLock()
	matched := make([]*T, 0, len(s.items))
	for _, doc := range s.items {
		p := P(doc)
		if !p.visible(q) || !p.matches(q.Search) {
			continue
		}
		out := *doc
		matched = append(matched, &out)
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		a, b := P(matched[i]).sortValue(q.SortBy), P(matched[j]).sortValue(q.SortBy)
		if a == b {
			return P(matched[i]).meta().ID < P(matched[j]).meta().ID
		}
		if q.Ascending {
			return a < b
		}
		return a > b
	})

	total := len(matched)
	start := q.Offset
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := total
	if q.Limit > 0 && start+q.Limit < total {
		end = start + q.Limit
	}
	return matched[start:end], total, nil
}

// Delete removes a document.
func (s *MemoryStore[T, P]) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return ErrNotFound
	}
	delete(s.items, id)
	return nil
}
