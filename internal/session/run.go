package session

import (
	"slices"
	"time"

	"github.com/abhisek/hanzo/internal/mastery"
)

// Answer is the scored result of one item.
type Answer struct {
	Item    Item
	Correct bool
	Delta   float64 // signed change requested by scoring
	Mastery float64 // mastery after the change
}

// Run tracks a learner's progress through a session.
type Run struct {
	Session *PracticeSession

	cursor    int
	answers   []Answer
	mastered  map[string]bool
	abandoned bool
	completed bool
	started   time.Time
}

// NewRun starts a run over s.
func NewRun(s *PracticeSession) *Run {
	return &Run{
		Session:  s,
		mastered: make(map[string]bool),
		started:  time.Now(),
	}
}

// Current returns the item awaiting an answer.
func (r *Run) Current() (Item, bool) {
	if r.Done() || r.abandoned {
		return Item{}, false
	}
	return r.Session.Items[r.cursor], true
}

// Record stores the result for the current item and advances. A word whose
// mastery crosses from below 1.0 to full mastery joins the
// mastered-this-session set; one that falls back below it leaves the set.
// Words already at full mastery before the answer are not added.
func (r *Run) Record(correct bool, delta, prevMastery, newMastery float64) (Answer, error) {
	item, ok := r.Current()
	if !ok {
		return Answer{}, ErrSessionFinished
	}

	a := Answer{Item: item, Correct: correct, Delta: delta, Mastery: newMastery}
	r.answers = append(r.answers, a)
	r.cursor++

	switch {
	case newMastery < mastery.MasteredThreshold:
		delete(r.mastered, item.WordID)
	case prevMastery < mastery.MasteredThreshold:
		r.mastered[item.WordID] = true
	}
	return a, nil
}

// Done reports whether every item has been answered.
func (r *Run) Done() bool {
	return r.cursor >= len(r.Session.Items)
}

// Abandon stops the run early. Answers already recorded stand.
func (r *Run) Abandon() {
	r.abandoned = true
}

// Abandoned reports whether the run was stopped early.
func (r *Run) Abandoned() bool {
	return r.abandoned
}

// MarkCompleted flags the run as completed. It fails for a run that is
// abandoned, empty, still has unanswered items, or was already completed.
func (r *Run) MarkCompleted() error {
	switch {
	case r.completed:
		return ErrSessionAlreadyCompleted
	case r.abandoned || r.Session.Empty() || !r.Done():
		return ErrSessionNotFinished
	}
	r.completed = true
	return nil
}

// Completed reports whether the run was completed.
func (r *Run) Completed() bool {
	return r.completed
}

// Answers returns the recorded answers in order.
func (r *Run) Answers() []Answer {
	return slices.Clone(r.answers)
}

// Progress returns answered and total item counts.
func (r *Run) Progress() (int, int) {
	return r.cursor, len(r.Session.Items)
}

// MasteredThisSession returns the words that are at full mastery after being
// answered in this run, sorted.
func (r *Run) MasteredThisSession() []string {
	ids := make([]string, 0, len(r.mastered))
	for id := range r.mastered {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Started returns when the run began.
func (r *Run) Started() time.Time {
	return r.started
}
