package engine

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/hanzo/internal/badges"
	"github.com/abhisek/hanzo/internal/deckmastery"
	"github.com/abhisek/hanzo/internal/session"
	"github.com/abhisek/hanzo/internal/store"
)

// ExamResult reports a graded exam and what it unlocked.
type ExamResult struct {
	DeckID       string
	Correct      int
	Total        int
	Passed       bool
	Category     string
	BadgeAwarded bool
}

// AttemptExam reports whether the deck's exam may be taken: every word of
// the deck must be fully mastered.
func (e *Engine) AttemptExam(deckID string) (bool, error) {
	return e.decks.AllWordsMastered(deckID)
}

// StartExam builds an exam run over every word of the deck.
func (e *Engine) StartExam(ctx context.Context, deckID string) (*session.Run, error) {
	allowed, err := e.AttemptExam(deckID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("%w: %s", deckmastery.ErrExamLocked, deckID)
	}
	words, err := e.catalog.LoadDeckWords(deckID)
	if err != nil {
		return nil, err
	}
	ps := e.generator.BuildExam(deckID, words)
	e.appendSession(ctx, ps, store.SessionStart, nil)
	return session.NewRun(ps), nil
}

// PassExam marks the deck mastered and awards its category's badge when
// every deck in the category is now mastered. The exam must be unlocked,
// unless the deck already passed before.
func (e *Engine) PassExam(ctx context.Context, deckID string) (*ExamResult, error) {
	deck, err := e.catalog.Deck(deckID)
	if err != nil {
		return nil, err
	}
	if !e.decks.IsDeckMastered(deckID) {
		allowed, err := e.decks.AllWordsMastered(deckID)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, fmt.Errorf("%w: %s", deckmastery.ErrExamLocked, deckID)
		}
	}

	if _, err := e.decks.MasterDeck(ctx, deckID); err != nil {
		return nil, err
	}
	e.milestone(ctx, store.MilestoneDeckMastered, deckID, deck.Name)

	awarded, err := e.badges.CheckAndAward(ctx, deck.Category)
	if err != nil {
		return nil, err
	}
	e.log.WithFields(logrus.Fields{
		"deck_id":  deckID,
		"category": deck.Category,
		"badge":    awarded,
	}).Info("deck mastered")

	return &ExamResult{
		DeckID:       deckID,
		Passed:       true,
		Category:     deck.Category,
		BadgeAwarded: awarded,
	}, nil
}

func (e *Engine) gradeExam(ctx context.Context, run *session.Run, sum *session.Summary) (*ExamResult, error) {
	deckID := run.Session.DeckID
	res := &ExamResult{DeckID: deckID, Correct: sum.Correct, Total: sum.Planned}

	if !deckmastery.GradeExam(sum.Correct, sum.Planned, e.opts.PassRatio) {
		e.milestone(ctx, store.MilestoneExamFailed, deckID, fmt.Sprintf("%d/%d", sum.Correct, sum.Planned))
		e.log.WithFields(logrus.Fields{
			"deck_id": deckID,
			"correct": sum.Correct,
			"total":   sum.Planned,
		}).Info("exam failed")
		return res, nil
	}

	passed, err := e.PassExam(ctx, deckID)
	if err != nil {
		return nil, err
	}
	passed.Correct, passed.Total = res.Correct, res.Total
	return passed, nil
}

// IsDeckMastered reports whether the deck's exam has been passed.
func (e *Engine) IsDeckMastered(deckID string) bool {
	return e.decks.IsDeckMastered(deckID)
}

// IsBadgeEarned reports whether the category's badge has been awarded.
func (e *Engine) IsBadgeEarned(category string) bool {
	return e.badges.IsEarned(category)
}

// Badges returns every earned badge.
func (e *Engine) Badges() []badges.Badge {
	return e.badges.All()
}

// ResetDeckExam clears a deck's exam result. Words keep their mastery and
// badges already earned stay earned.
func (e *Engine) ResetDeckExam(ctx context.Context, deckID string) error {
	if _, err := e.catalog.Deck(deckID); err != nil {
		return err
	}
	if err := e.decks.ResetDeck(ctx, deckID); err != nil {
		return err
	}
	e.milestone(ctx, store.MilestoneDeckReset, deckID, "")
	return nil
}

func (e *Engine) milestone(ctx context.Context, kind, subject, detail string) {
	if e.events == nil {
		return
	}
	if err := e.events.AppendMilestoneEvent(ctx, store.MilestoneEventData{
		Kind:    kind,
		Subject: subject,
		Detail:  detail,
	}); err != nil {
		e.log.WithError(err).WithField("milestone", kind).Warn("record milestone")
	}
}
