package scoring

import (
	"context"
	"fmt"

	"github.com/abhisek/hanzo/internal/catalog"
	"github.com/abhisek/hanzo/internal/journey"
)

// Anchors are the correct-answer deltas at word levels 1 and 5. Levels in
// between are interpolated linearly.
type Anchors struct {
	Level1 float64
	Level5 float64
}

// Anchor tables for the two scoring families.
var (
	FlashcardAnchors = Anchors{Level1: 0.10, Level5: 0.05}
	QuizAnchors      = Anchors{Level1: 0.30, Level5: 0.15}
)

// At returns the delta for a level, clamping the level to [1, 5].
func (a Anchors) At(level int) float64 {
	level = min(max(level, 1), 5)
	step := (a.Level1 - a.Level5) / 4
	return a.Level1 - float64(level-1)*step
}

// AnchorsFor returns the anchor table for a question type.
func AnchorsFor(qt journey.QuestionType) Anchors {
	if qt.IsQuizFamily() {
		return QuizAnchors
	}
	return FlashcardAnchors
}

// Delta is the positive mastery gain for a correct answer.
func Delta(level int, qt journey.QuestionType) float64 {
	return AnchorsFor(qt).At(level)
}

// Penalty is the negative change for a wrong answer: half the delta for
// quiz types and a quarter for flashcards.
func Penalty(level int, qt journey.QuestionType) float64 {
	d := Delta(level, qt)
	if qt.IsQuizFamily() {
		return -d / 2
	}
	return -d / 4
}

// Change returns the signed mastery change for an answer.
func Change(level int, qt journey.QuestionType, correct bool) float64 {
	if correct {
		return Delta(level, qt)
	}
	return Penalty(level, qt)
}

// MasteryApplier applies a change to a word's stored mastery.
type MasteryApplier interface {
	Get(wordID string) float64
	Apply(ctx context.Context, wordID string, delta float64, lockedTo1 bool) (float64, error)
}

// Result describes the effect of one answer.
type Result struct {
	Delta    float64
	Previous float64
	Mastery  float64
}

// Engine scores answers against the mastery store.
type Engine struct {
	mastery MasteryApplier
}

// NewEngine creates a scoring engine.
func NewEngine(mastery MasteryApplier) *Engine {
	return &Engine{mastery: mastery}
}

// ApplyAnswer computes the change for an answer and applies it. When the
// word's deck has passed its exam, the word stays pinned at 1.0.
func (e *Engine) ApplyAnswer(ctx context.Context, word catalog.WordItem, qt journey.QuestionType, correct, deckLockedFully bool) (Result, error) {
	res := Result{
		Delta:    Change(word.Level, qt, correct),
		Previous: e.mastery.Get(word.ID),
	}

	m, err := e.mastery.Apply(ctx, word.ID, res.Delta, deckLockedFully)
	if err != nil {
		return res, fmt.Errorf("score %q: %w", word.ID, err)
	}
	res.Mastery = m
	return res, nil
}
