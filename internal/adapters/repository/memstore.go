package repository

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/okian/mergington/pkg/metrics"
)

// MemoryStore is an in-process Store. One RWMutex guards the whole registry,
// so every check-then-mutate step is atomic with respect to other requests.
type MemoryStore struct {
	mu              sync.RWMutex
	activities      map[string]*Record
	participants    int
	enforceCapacity bool
}

// NewMemoryStore creates a store holding copies of records. Activities are
// fixed from here on; only rosters change.
func NewMemoryStore(records []Record, opts ...Option) *MemoryStore {
	s := &MemoryStore{activities: make(map[string]*Record, len(records))}
	for _, opt := range opts {
		opt(s)
	}

	for _, r := range records {
		rec := cloneRecord(r)
		s.activities[rec.Name] = &rec
		s.participants += len(rec.Participants)
		metrics.UpdateEnrollment(rec.Name, len(rec.Participants))
	}
	metrics.UpdateRegistryTotals(len(s.activities), s.participants)
	return s
}

// List returns every activity ordered by name.
func (s *MemoryStore) List(_ context.Context) []Record {
	defer observe("list", time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, 0, len(s.activities))
	for _, r := range s.activities {
		out = append(out, cloneRecord(*r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Get returns one activity by name.
func (s *MemoryStore) Get(_ context.Context, name string) (Record, error) {
	defer observe("get", time.Now())

	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.activities[name]
	if !ok {
		return Record{}, ErrActivityNotFound
	}
	return cloneRecord(*r), nil
}

// Signup appends email to the roster of name.
func (s *MemoryStore) Signup(_ context.Context, name, email string) (int, error) {
	defer observe("signup", time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.activities[name]
	if !ok {
		return 0, ErrActivityNotFound
	}
	if slices.Contains(r.Participants, email) {
		return len(r.Participants), ErrAlreadySignedUp
	}
	if s.enforceCapacity && len(r.Participants) >= r.MaxParticipants {
		return len(r.Participants), ErrActivityFull
	}

	r.Participants = append(r.Participants, email)
	s.participants++
	s.publishLocked(r)
	return len(r.Participants), nil
}

// Remove deletes email from the roster of name, keeping the order of the rest.
func (s *MemoryStore) Remove(_ context.Context, name, email string) (int, error) {
	defer observe("remove", time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.activities[name]
	if !ok {
		return 0, ErrActivityNotFound
	}
	idx := slices.Index(r.Participants, email)
	if idx < 0 {
		return len(r.Participants), ErrNotSignedUp
	}

	r.Participants = slices.Delete(r.Participants, idx, idx+1)
	s.participants--
	s.publishLocked(r)
	return len(r.Participants), nil
}

// Count returns the number of activities.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.activities)
}

// Participants returns the number of enrollments across all activities.
func (s *MemoryStore) Participants(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.participants
}

// publishLocked refreshes registry gauges. Caller holds s.mu.
func (s *MemoryStore) publishLocked(r *Record) {
	metrics.UpdateEnrollment(r.Name, len(r.Participants))
	metrics.UpdateRegistryTotals(len(s.activities), s.participants)
}

func observe(op string, start time.Time) {
	metrics.RecordStoreLatency(op, float64(time.Since(start).Microseconds())/1000)
}

func cloneRecord(r Record) Record {
	r.Participants = append(make([]string, 0, len(r.Participants)), r.Participants...)
	return r
}
