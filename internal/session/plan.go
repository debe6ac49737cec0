package session

import (
	"errors"

	"github.com/abhisek/hanzo/internal/journey"
)

// Session kinds.
const (
	KindPractice = "practice"
	KindExam     = "exam"
)

// Defaults for practice sessions.
const (
	DefaultLength         = 15
	DefaultMaxRepetitions = 3
)

var (
	// ErrInvalidOptions is returned for non-positive length or repetition cap.
	ErrInvalidOptions = errors.New("invalid session options")

	// ErrSessionFinished is returned when answering past the last item.
	ErrSessionFinished = errors.New("session already finished")

	// ErrSessionNotFinished is returned when completing a session that still
	// has unanswered items.
	ErrSessionNotFinished = errors.New("session not finished")

	// ErrSessionAlreadyCompleted is returned when completing a run twice.
	ErrSessionAlreadyCompleted = errors.New("session already completed")
)

// Options controls session assembly.
type Options struct {
	Length         int
	MaxRepetitions int
}

// DefaultOptions returns a 15-item session with at most 3 repetitions per word.
func DefaultOptions() Options {
	return Options{Length: DefaultLength, MaxRepetitions: DefaultMaxRepetitions}
}

// Item is one question slot. Its type is fixed when the session is built.
type Item struct {
	WordIndex    int
	WordID       string
	QuestionType journey.QuestionType
}

// PracticeSession is an ordered, immutable list of items for one deck.
type PracticeSession struct {
	ID     string
	DeckID string
	Kind   string
	Items  []Item

	// RequestedLength is the length asked for; TargetLength is what the
	// unlocked pool could support under the repetition cap.
	RequestedLength int
	TargetLength    int
	MaxRepetitions  int
}

// Empty reports whether there is nothing to practice.
func (s *PracticeSession) Empty() bool {
	return len(s.Items) == 0
}

// Repetitions counts how often each word index occurs.
func (s *PracticeSession) Repetitions() map[int]int {
	counts := make(map[int]int)
	for _, it := range s.Items {
		counts[it.WordIndex]++
	}
	return counts
}
