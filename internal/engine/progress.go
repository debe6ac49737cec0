package engine

import (
	"context"
	"errors"

	"github.com/abhisek/hanzo/internal/catalog"
	"github.com/abhisek/hanzo/internal/deckmastery"
	"github.com/abhisek/hanzo/internal/mastery"
)

// WordStatus is a word's progress within its deck.
type WordStatus struct {
	Word       catalog.WordItem
	Record     mastery.Record
	Unlocked   bool
	Stage      int // journey stage number, 0 if none
	Mastered   bool
	Bookmarked bool
}

// DeckStatus summarizes a deck for pickers and reports.
type DeckStatus struct {
	Deck              catalog.Deck
	Stage             deckmastery.Stage
	Words             int
	Unlocked          int
	Mastered          int
	AverageMastery    float64
	SessionsCompleted int
	ExamUnlocked      bool
	ExamPassed        bool
}

// DeckStatus reports progress for one deck.
func (e *Engine) DeckStatus(deckID string) (DeckStatus, error) {
	deck, err := e.catalog.Deck(deckID)
	if err != nil {
		return DeckStatus{}, err
	}
	stage, err := e.decks.Stage(deckID)
	if err != nil {
		return DeckStatus{}, err
	}

	st := DeckStatus{
		Deck:              deck,
		Stage:             stage,
		Words:             len(deck.Words),
		Unlocked:          e.gate.UnlockedCount(deckID, len(deck.Words)),
		SessionsCompleted: e.tracker.Completed(deckID),
		ExamPassed:        stage == deckmastery.ExamPassed,
		ExamUnlocked:      stage >= deckmastery.AllWordsMastered,
	}
	var sum float64
	for _, w := range deck.Words {
		r := e.mastery.Record(w.ID)
		sum += r.Mastery
		if r.IsMastered() {
			st.Mastered++
		}
	}
	if st.Words > 0 {
		st.AverageMastery = sum / float64(st.Words)
	}
	return st, nil
}

// Decks reports progress for every deck in catalog order.
func (e *Engine) Decks() ([]DeckStatus, error) {
	decks := e.catalog.Decks()
	out := make([]DeckStatus, 0, len(decks))
	for _, d := range decks {
		st, err := e.DeckStatus(d.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

// Words reports per-word progress for a deck in deck order.
func (e *Engine) Words(deckID string) ([]WordStatus, error) {
	words, err := e.catalog.LoadDeckWords(deckID)
	if err != nil {
		return nil, err
	}
	out := make([]WordStatus, len(words))
	for i, w := range words {
		r := e.mastery.Record(w.ID)
		ws := WordStatus{
			Word:       w,
			Record:     r,
			Unlocked:   e.gate.IsUnlocked(deckID, i, len(words)),
			Mastered:   r.IsMastered(),
			Bookmarked: r.Bookmarked,
		}
		if s, ok := e.journey.StageFor(r.Mastery); ok {
			ws.Stage = s.Number
		}
		out[i] = ws
	}
	return out, nil
}

// ToggleBookmark flips a word's bookmark and returns the new value.
func (e *Engine) ToggleBookmark(ctx context.Context, wordID string) (bool, error) {
	return e.mastery.ToggleBookmark(ctx, wordID)
}

// Bookmarked returns the ids of bookmarked words.
func (e *Engine) Bookmarked() []string {
	return e.mastery.Bookmarked()
}

// SetMastery overwrites a word's mastery. Admin and testing helper.
func (e *Engine) SetMastery(ctx context.Context, wordID string, value float64) error {
	return e.mastery.SetMastery(ctx, wordID, value)
}

// ResetAll clears every piece of progress: mastery, session counts, deck
// exams and badges. Event history is kept.
func (e *Engine) ResetAll(ctx context.Context) error {
	return errors.Join(
		e.mastery.Reset(ctx),
		e.tracker.Reset(ctx),
		e.decks.Reset(ctx),
		e.badges.Reset(ctx),
	)
}

// MasteredWordCount counts words at full mastery across all decks.
func (e *Engine) MasteredWordCount() int {
	n := 0
	for _, r := range e.mastery.Snapshot() {
		if r.IsMastered() {
			n++
		}
	}
	return n
}
