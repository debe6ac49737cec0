package mastery

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/abhisek/hanzo/internal/store"
)

// Service owns the per-word mastery mapping. Every mutation persists the
// whole mapping before it becomes visible; a failed write leaves the
// in-memory state untouched.
type Service struct {
	mu        sync.Mutex
	kv        store.KeyValueStore
	records   map[string]Record
	listeners []func(Record)
	now       func() time.Time
}

// NewService creates a mastery service, loading any persisted state.
func NewService(ctx context.Context, kv store.KeyValueStore) (*Service, error) {
	s := &Service{
		kv:      kv,
		records: make(map[string]Record),
		now:     time.Now,
	}

	var raw map[string]json.RawMessage
	found, err := kv.Get(ctx, StorageKey, &raw)
	if err != nil {
		return nil, fmt.Errorf("load mastery: %w", err)
	}
	if found {
		s.records = decodeRecords(raw)
	}
	return s, nil
}

// Get returns the mastery score for a word, 0 if it has never been scored.
func (s *Service) Get(wordID string) float64 {
	return s.Record(wordID).Mastery
}

// Record returns the record for a word, or a zero-valued default record if
// none exists yet. It never inserts.
func (s *Service) Record(wordID string) Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.records[wordID]; ok {
		return r
	}
	return Record{WordID: wordID}
}

// Apply adds delta to the word's score and clamps the result to [0, 1].
// When lockedTo1 is set the score is forced to 1.0 regardless of delta.
func (s *Service) Apply(ctx context.Context, wordID string, delta float64, lockedTo1 bool) (float64, error) {
	var updated Record
	err := s.mutate(ctx, wordID, func(r *Record) {
		if lockedTo1 {
			r.Mastery = MasteredThreshold
		} else {
			r.Mastery = Clamp(r.Mastery + delta)
		}
		now := s.now()
		r.LastPracticed = &now
		updated = *r
	})
	if err != nil {
		return s.Get(wordID), err
	}
	return updated.Mastery, nil
}

// SetMastery overwrites a word's score. Used by admin and testing helpers.
func (s *Service) SetMastery(ctx context.Context, wordID string, value float64) error {
	return s.mutate(ctx, wordID, func(r *Record) {
		r.Mastery = Clamp(value)
	})
}

// ToggleBookmark flips the bookmark flag and returns the new value.
func (s *Service) ToggleBookmark(ctx context.Context, wordID string) (bool, error) {
	var marked bool
	err := s.mutate(ctx, wordID, func(r *Record) {
		r.Bookmarked = !r.Bookmarked
		marked = r.Bookmarked
	})
	if err != nil {
		return s.Record(wordID).Bookmarked, err
	}
	return marked, nil
}

// Bookmarked returns the ids of all bookmarked words, sorted.
func (s *Service) Bookmarked() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	for id, r := range s.records {
		if r.Bookmarked {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Snapshot returns a copy of every stored record.
func (s *Service) Snapshot() map[string]Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.records)
}

// Reset deletes all mastery data.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(ctx, StorageKey); err != nil {
		return fmt.Errorf("reset mastery: %w", err)
	}
	s.records = make(map[string]Record)
	return nil
}

// Subscribe registers fn to be called with the new record after every
// successful mutation.
func (s *Service) Subscribe(fn func(Record)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// mutate applies fn to a copy of the word's record, persists the resulting
// mapping, and only then swaps it in.
func (s *Service) mutate(ctx context.Context, wordID string, fn func(*Record)) error {
	s.mu.Lock()

	r, ok := s.records[wordID]
	if !ok {
		r = Record{WordID: wordID}
	}
	fn(&r)

	next := maps.Clone(s.records)
	if next == nil {
		next = make(map[string]Record)
	}
	next[wordID] = r

	if err := s.kv.Set(ctx, StorageKey, encodeRecords(next)); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("persist mastery for %q: %w", wordID, err)
	}
	s.records = next
	listeners := append([]func(Record){}, s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(r)
	}
	return nil
}
