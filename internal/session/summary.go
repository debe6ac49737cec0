package session

import (
	"time"

	"github.com/abhisek/hanzo/internal/journey"
)

// TypeResult aggregates answers for one question type.
type TypeResult struct {
	Type      journey.QuestionType
	Attempted int
	Correct   int
}

// Summary holds the data shown when a session ends.
type Summary struct {
	SessionID     string
	DeckID        string
	Kind          string
	Duration      time.Duration
	Planned       int
	Answered      int
	Correct       int
	Accuracy      float64
	Completed     bool
	MasteredWords []string
	ByType        []TypeResult
}

// BuildSummary summarizes a run. Types are listed in their display order.
func BuildSummary(r *Run) *Summary {
	answered, planned := r.Progress()
	sum := &Summary{
		SessionID:     r.Session.ID,
		DeckID:        r.Session.DeckID,
		Kind:          r.Session.Kind,
		Duration:      time.Since(r.started),
		Planned:       planned,
		Answered:      answered,
		Completed:     r.Done() && !r.abandoned,
		MasteredWords: r.MasteredThisSession(),
	}

	byType := make(map[journey.QuestionType]*TypeResult)
	for _, a := range r.answers {
		if a.Correct {
			sum.Correct++
		}
		tr, ok := byType[a.Item.QuestionType]
		if !ok {
			tr = &TypeResult{Type: a.Item.QuestionType}
			byType[a.Item.QuestionType] = tr
		}
		tr.Attempted++
		if a.Correct {
			tr.Correct++
		}
	}
	for _, qt := range journey.VisibleTypes {
		if tr, ok := byType[qt]; ok {
			sum.ByType = append(sum.ByType, *tr)
		}
	}

	if answered > 0 {
		sum.Accuracy = float64(sum.Correct) / float64(answered)
	}
	return sum
}
