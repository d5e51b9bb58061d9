// Package newsletter stores website newsletter sign-ups.
package newsletter

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrDuplicate    = errors.New("newsletter: already subscribed")
	ErrNotFound     = errors.New("newsletter: subscriber not found")
	ErrInvalidEmail = errors.New("newsletter: invalid email")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Subscriber is one newsletter sign-up.
type Subscriber struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Source    string    `json:"source,omitempty"`
	Interests []string  `json:"interests"`
	CreatedAt time.Time `json:"created_at"`
}

// NormalizeEmail trims and lower-cases email and checks its shape.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(email) {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// ListFilter narrows an admin listing.
type ListFilter struct {
	Search    string
	SortBy    string
	Ascending bool
	Limit     int
	Offset    int
}

// SortColumns are the accepted sort_by values; the first is the default.
var SortColumns = []string{"created_at", "email"}

// Store persists subscribers. Subscribe returns ErrDuplicate for a known email.
type Store interface {
	Subscribe(ctx context.Context, sub *Subscriber) error
	List(ctx context.Context, filter ListFilter) ([]*Subscriber, int, error)
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps subscribers in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]*Subscriber
	byEmail map[string]string
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]*Subscriber),
		byEmail: make(map[string]string),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) Subscribe(ctx context.Context, sub *Subscriber) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[sub.Email]; ok {
		return ErrDuplicate
	}
	sub.ID = uuid.NewString()
	sub.CreatedAt = s.now()
	stored := *sub
	s.byID[sub.ID] = &stored
	s.byEmail[sub.Email] = sub.ID
	return nil
}

func (s *MemoryStore) List(ctx context.Context, filter ListFilter) ([]*Subscriber, int, error) {
	search := strings.ToLower(filter.Search)
	s.mu.RLock()
	matched := make([]*Subscriber, 0, len(s.byID))
	for _, sub := range s.byID {
		if search != "" && !strings.Contains(sub.Email, search) {
			continue
		}
		out := *sub
		matched = append(matched, &out)
	}
	s.mu.RUnlock()

	less := func(a, b *Subscriber) bool {
		if filter.SortBy == "email" {
			return a.Email < b.Email
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.Email < b.Email
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

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sub, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.byEmail, sub.Email)
	delete(s.byID, id)
	return nil
}
