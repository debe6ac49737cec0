package session

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/abhisek/hanzo/internal/catalog"
	"github.com/abhisek/hanzo/internal/journey"
)

// MasteryReader returns a word's current mastery.
type MasteryReader interface {
	Get(wordID string) float64
}

// UnlockGate returns the visible word indices of a deck.
type UnlockGate interface {
	UnlockedIndices(deckID string, totalWords int) []int
}

// TypeResolver draws a question type for a mastery score.
type TypeResolver interface {
	Resolve(mastery float64, rng *rand.Rand) journey.QuestionType
}

// Generator assembles practice and exam sessions.
type Generator struct {
	mastery  MasteryReader
	gate     UnlockGate
	resolver TypeResolver

	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator creates a generator. A nil rng seeds a fresh one.
func NewGenerator(mastery MasteryReader, gate UnlockGate, resolver TypeResolver, rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{mastery: mastery, gate: gate, resolver: resolver, rng: rng}
}

// Build assembles a practice session for a deck.
//
// Indices are drawn uniformly from the unlocked words, skipping any that
// already reached the repetition cap. When the unlocked pool is too small to
// fill the requested length under the cap, the session shrinks to
// unlocked*maxRepetitions items. An empty pool yields an empty session.
func (g *Generator) Build(deckID string, words []catalog.WordItem, opts Options) (*PracticeSession, error) {
	if opts.Length <= 0 || opts.MaxRepetitions <= 0 {
		return nil, fmt.Errorf("%w: length=%d max_repetitions=%d", ErrInvalidOptions, opts.Length, opts.MaxRepetitions)
	}

	s := &PracticeSession{
		ID:              uuid.NewString(),
		DeckID:          deckID,
		Kind:            KindPractice,
		RequestedLength: opts.Length,
		MaxRepetitions:  opts.MaxRepetitions,
	}

	unlocked := slices.DeleteFunc(g.gate.UnlockedIndices(deckID, len(words)), func(i int) bool {
		return i < 0 || i >= len(words)
	})
	if len(unlocked) == 0 {
		return s, nil
	}

	s.TargetLength = min(opts.Length, len(unlocked)*opts.MaxRepetitions)
	s.Items = make([]Item, 0, s.TargetLength)

	g.mu.Lock()
	defer g.mu.Unlock()

	// Drawing only among indices still under the cap is the same
	// distribution as drawing from all and rejecting capped ones, and it
	// always terminates.
	open := slices.Clone(unlocked)
	counts := make(map[int]int, len(unlocked))
	for len(s.Items) < s.TargetLength {
		k := g.rng.IntN(len(open))
		idx := open[k]
		counts[idx]++
		if counts[idx] >= opts.MaxRepetitions {
			open = slices.Delete(open, k, k+1)
		}

		w := words[idx]
		s.Items = append(s.Items, Item{
			WordIndex:    idx,
			WordID:       w.ID,
			QuestionType: g.resolver.Resolve(g.mastery.Get(w.ID), g.rng),
		})
	}
	return s, nil
}

// BuildExam assembles an exam: every word of the deck exactly once, as a
// multiple choice question, in random order.
func (g *Generator) BuildExam(deckID string, words []catalog.WordItem) *PracticeSession {
	s := &PracticeSession{
		ID:              uuid.NewString(),
		DeckID:          deckID,
		Kind:            KindExam,
		RequestedLength: len(words),
		TargetLength:    len(words),
		MaxRepetitions:  1,
		Items:           make([]Item, len(words)),
	}
	for i, w := range words {
		s.Items[i] = Item{WordIndex: i, WordID: w.ID, QuestionType: journey.MultipleChoice}
	}

	g.mu.Lock()
	g.rng.Shuffle(len(s.Items), func(i, j int) { s.Items[i], s.Items[j] = s.Items[j], s.Items[i] })
	g.mu.Unlock()
	return s
}
