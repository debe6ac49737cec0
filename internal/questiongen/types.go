package questiongen

import "github.com/abhisek/hanzo/internal/journey"

// Question is a session item ready for display.
type Question struct {
	WordID string
	Type   journey.QuestionType

	// Prompt is what the learner sees: the hanzi for recognition types,
	// the translation for construction.
	Prompt string

	// Answer is the canonical correct answer: the translation for multiple
	// choice, the reading for pinyin, the hanzi for construction, and the
	// full reveal for a flashcard.
	Answer string

	// Choices holds the options for multiple choice and pinyin questions.
	// Exactly one of them equals Answer.
	Choices []string

	// Tiles holds shuffled characters for construction questions, the
	// word's own characters mixed with distractors.
	Tiles []string

	// Reveal is shown after answering.
	Reveal string
}

// SelfGraded reports whether the learner grades the answer themselves.
func (q *Question) SelfGraded() bool {
	return q.Type == journey.Flashcard
}

// CorrectIndex returns the position of Answer in Choices, or -1.
func (q *Question) CorrectIndex() int {
	for i, c := range q.Choices {
		if c == q.Answer {
			return i
		}
	}
	return -1
}
