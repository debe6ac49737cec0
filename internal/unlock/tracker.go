package unlock

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/abhisek/hanzo/internal/store"
)

// SessionCountKey is the key-value entry holding completed-session counts.
const SessionCountKey = "deck_session_counts"

// Tracker counts completed practice sessions per deck. Counts only grow,
// except through an explicit reset.
type Tracker struct {
	mu     sync.Mutex
	kv     store.KeyValueStore
	counts map[string]int
}

// NewTracker creates a tracker, loading any persisted counts.
func NewTracker(ctx context.Context, kv store.KeyValueStore) (*Tracker, error) {
	t := &Tracker{kv: kv, counts: make(map[string]int)}
	if _, err := kv.Get(ctx, SessionCountKey, &t.counts); err != nil {
		return nil, fmt.Errorf("load session counts: %w", err)
	}
	if t.counts == nil {
		t.counts = make(map[string]int)
	}
	return t, nil
}

// Completed returns the number of completed sessions for a deck.
func (t *Tracker) Completed(deckID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[deckID]
}

// Increment records one more completed session and returns the new count.
func (t *Tracker) Increment(ctx context.Context, deckID string) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	next := maps.Clone(t.counts)
	next[deckID]++
	if err := t.kv.Set(ctx, SessionCountKey, next); err != nil {
		return t.counts[deckID], fmt.Errorf("persist session count for %q: %w", deckID, err)
	}
	t.counts = next
	return next[deckID], nil
}

// ResetDeck clears the count for a single deck.
func (t *Tracker) ResetDeck(ctx context.Context, deckID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.counts[deckID]; !ok {
		return nil
	}
	next := maps.Clone(t.counts)
	delete(next, deckID)
	if err := t.kv.Set(ctx, SessionCountKey, next); err != nil {
		return fmt.Errorf("reset session count for %q: %w", deckID, err)
	}
	t.counts = next
	return nil
}

// Reset clears every count.
func (t *Tracker) Reset(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.kv.Delete(ctx, SessionCountKey); err != nil {
		return fmt.Errorf("reset session counts: %w", err)
	}
	t.counts = make(map[string]int)
	return nil
}
