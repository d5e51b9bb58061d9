package leads

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store persists local lead records.
type Store interface {
	Create(ctx context.Context, lead *Lead) error
	Get(ctx context.Context, id string) (*Lead, error)
	List(ctx context.Context, filter ListFilter) ([]*Lead, int, error)
	Delete(ctx context.Context, id string) error
}

// InMemoryStore keeps leads in process memory.
type InMemoryStore struct {
	mu    sync.RWMutex
	leads map[string]*Lead
	now   func() time.Time
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		leads: make(map[string]*Lead),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Create assigns an ID and timestamp when missing and stores a copy.
func (s *InMemoryStore) Create(ctx context.Context, lead *Lead) error {
	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = s.now()
	}
	stored := *lead

	s.mu.Lock()
	s.leads[lead.ID] = &stored
	s.mu.Unlock()
	return nil
}

// Get retrieves a lead by ID
func (s *InMemoryStore) Get(ctx context.Context, id string) (*Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lead, ok := s.leads[id]
	if !ok {
		return nil, ErrLeadNotFound
	}
	out := *lead
	return &out, nil
}

// List filters, sorts and pages the stored leads.
func (s *InMemoryStore) List(ctx context.Context, filter ListFilter) ([]*Lead, int, error) {
	s.mu.RLock()
	matched := make([]*Lead, 0, len(s.leads))
	for _, lead := range s.leads {
		if filter.Kind != "" && lead.Kind != filter.Kind {
			continue
		}
		if !lead.matches(filter.Search) {
			continue
		}
		out := *lead
		matched = append(matched, &out)
	}
	s.mu.RUnlock()

	less := func(a, b *Lead) bool {
		ka, kb := sortKey(a, filter.SortBy), sortKey(b, filter.SortBy)
		if ka != kb {
			return ka < kb
		}
		return a.ID < b.ID
	}
	sort.Slice(matched, func(i, j int) bool {
		if filter.Ascending {
			return less(matched[i], matched[j])
		}
		return less(matched[j], matched[i])
	})

	total := len(matched)
	start := filter.Offset
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := total
	if filter.Limit > 0 && start+filter.Limit < total {
		end = start + filter.Limit
	}
	return matched[start:end], total, nil
}

func sortKey(l *Lead, sortBy string) string {
	switch sortBy {
	case "name":
		return strings.ToLower(l.Name)
	case "model":
		return strings.ToLower(l.Model)
	default:
		return l.CreatedAt.UTC().Format("2006-01-02T15:04:05.000000000Z")
	}
}

// Delete removes a lead.
func (s *InMemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.leads[id]; !ok {
		return ErrLeadNotFound
	}
	delete(s.leads, id)
	return nil
}
