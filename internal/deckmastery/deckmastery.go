package deckmastery

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/abhisek/hanzo/internal/catalog"
	"github.com/abhisek/hanzo/internal/mastery"
	"github.com/abhisek/hanzo/internal/store"
)

// StorageKey is the key-value entry holding deck exam results.
const StorageKey = "deck_mastery"

// DefaultPassRatio is the share of exam answers that must be correct.
const DefaultPassRatio = 0.8

// ErrExamLocked is returned when an exam is attempted before every word of
// the deck is mastered.
var ErrExamLocked = errors.New("exam locked: not every word is mastered")

// State is a deck's exam result. Once Mastered it stays mastered unless
// explicitly reset.
type State struct {
	DeckID     string
	Mastered   bool
	MasteredAt *time.Time
}

// Stage is a deck's position in its lifecycle.
type Stage int

const (
	Unseen Stage = iota
	InProgress
	AllWordsMastered
	ExamPassed
)

func (s Stage) String() string {
	switch s {
	case InProgress:
		return "in progress"
	case AllWordsMastered:
		return "exam unlocked"
	case ExamPassed:
		return "mastered"
	default:
		return "unseen"
	}
}

// MasteryReader returns a word's current mastery.
type MasteryReader interface {
	Get(wordID string) float64
}

type stateData struct {
	Mastered   bool    `json:"mastered"`
	MasteredAt *string `json:"mastered_at,omitempty"`
}

// Manager tracks which decks have passed their exam.
type Manager struct {
	mu      sync.Mutex
	kv      store.KeyValueStore
	catalog catalog.Service
	mastery MasteryReader
	states  map[string]State
	now     func() time.Time
}

// NewManager creates a manager, loading persisted exam results.
func NewManager(ctx context.Context, kv store.KeyValueStore, cat catalog.Service, m MasteryReader) (*Manager, error) {
	mgr := &Manager{
		kv:      kv,
		catalog: cat,
		mastery: m,
		states:  make(map[string]State),
		now:     time.Now,
	}

	var raw map[string]stateData
	if _, err := kv.Get(ctx, StorageKey, &raw); err != nil {
		return nil, fmt.Errorf("load deck mastery: %w", err)
	}
	for id, sd := range raw {
		st := State{DeckID: id, Mastered: sd.Mastered}
		if sd.MasteredAt != nil {
			if t, err := time.Parse(time.RFC3339Nano, *sd.MasteredAt); err == nil {
				st.MasteredAt = &t
			}
		}
		mgr.states[id] = st
	}
	return mgr, nil
}

// IsDeckMastered reports whether the deck's exam has been passed.
func (m *Manager) IsDeckMastered(deckID string) bool {
	return m.State(deckID).Mastered
}

// State returns the deck's exam state, zero-valued if never examined.
func (m *Manager) State(deckID string) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st, ok := m.states[deckID]; ok {
		return st
	}
	return State{DeckID: deckID}
}

// MasteredDecks returns the ids of every exam-passed deck, sorted.
func (m *Manager) MasteredDecks() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for id, st := range m.states {
		if st.Mastered {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}

// AllWordsMastered reports whether every word in the deck is at full
// mastery. A deck without words has nothing to examine and reports false.
func (m *Manager) AllWordsMastered(deckID string) (bool, error) {
	words, err := m.catalog.LoadDeckWords(deckID)
	if err != nil {
		return false, err
	}
	if len(words) == 0 {
		return false, nil
	}
	for _, w := range words {
		if m.mastery.Get(w.ID) < mastery.MasteredThreshold {
			return false, nil
		}
	}
	return true, nil
}

// Stage derives the deck's lifecycle stage.
func (m *Manager) Stage(deckID string) (Stage, error) {
	if m.IsDeckMastered(deckID) {
		return ExamPassed, nil
	}
	words, err := m.catalog.LoadDeckWords(deckID)
	if err != nil {
		return Unseen, err
	}

	seen, all := false, len(words) > 0
	for _, w := range words {
		v := m.mastery.Get(w.ID)
		if v > 0 {
			seen = true
		}
		if v < mastery.MasteredThreshold {
			all = false
		}
	}
	switch {
	case all:
		return AllWordsMastered, nil
	case seen:
		return InProgress, nil
	default:
		return Unseen, nil
	}
}

// MasterDeck records a passed exam.
func (m *Manager) MasterDeck(ctx context.Context, deckID string) (State, error) {
	now := m.now()
	st := State{DeckID: deckID, Mastered: true, MasteredAt: &now}
	if err := m.update(ctx, func(states map[string]State) { states[deckID] = st }); err != nil {
		return m.State(deckID), fmt.Errorf("master deck %q: %w", deckID, err)
	}
	return st, nil
}

// ResetDeck clears a deck's exam result.
func (m *Manager) ResetDeck(ctx context.Context, deckID string) error {
	if err := m.update(ctx, func(states map[string]State) { delete(states, deckID) }); err != nil {
		return fmt.Errorf("reset deck %q: %w", deckID, err)
	}
	return nil
}

// Reset clears every exam result.
func (m *Manager) Reset(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.kv.Delete(ctx, StorageKey); err != nil {
		return fmt.Errorf("reset deck mastery: %w", err)
	}
	m.states = make(map[string]State)
	return nil
}

func (m *Manager) update(ctx context.Context, fn func(map[string]State)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := maps.Clone(m.states)
	fn(next)

	raw := make(map[string]stateData, len(next))
	for id, st := range next {
		sd := stateData{Mastered: st.Mastered}
		if st.MasteredAt != nil {
			s := st.MasteredAt.UTC().Format(time.RFC3339Nano)
			sd.MasteredAt = &s
		}
		raw[id] = sd
	}
	if err := m.kv.Set(ctx, StorageKey, raw); err != nil {
		return err
	}
	m.states = next
	return nil
}

// GradeExam reports whether correct out of total meets passRatio.
// A non-positive ratio uses DefaultPassRatio; an empty exam never passes.
func GradeExam(correct, total int, passRatio float64) bool {
	if total <= 0 {
		return false
	}
	if passRatio <= 0 || passRatio > 1 {
		passRatio = DefaultPassRatio
	}
	return float64(correct)/float64(total) >= passRatio
}
