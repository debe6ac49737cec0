// Package engine wires the progression services together behind the
// operations the UI and CLI use.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/hanzo/internal/badges"
	"github.com/abhisek/hanzo/internal/catalog"
	"github.com/abhisek/hanzo/internal/deckmastery"
	"github.com/abhisek/hanzo/internal/distractor"
	"github.com/abhisek/hanzo/internal/journey"
	"github.com/abhisek/hanzo/internal/mastery"
	"github.com/abhisek/hanzo/internal/questiongen"
	"github.com/abhisek/hanzo/internal/scoring"
	"github.com/abhisek/hanzo/internal/session"
	"github.com/abhisek/hanzo/internal/store"
	"github.com/abhisek/hanzo/internal/unlock"
)

// ErrWrongSession is returned when an answer is submitted for a run whose
// current item is a different word.
var ErrWrongSession = errors.New("item does not belong to this session")

// Deps are the collaborators the engine is built from. Only Catalog and KV
// are required.
type Deps struct {
	Catalog     catalog.Service
	KV          store.KeyValueStore
	Events      store.EventRepo
	Distractors distractor.Generator
	Journey     *journey.Journey
	Rand        *rand.Rand
	Log         logrus.FieldLogger
}

// Options tunes session assembly and exams.
type Options struct {
	Session   session.Options
	Unlock    unlock.Policy
	PassRatio float64
}

// DefaultOptions returns the built-in defaults.
func DefaultOptions() Options {
	return Options{
		Session:   session.DefaultOptions(),
		Unlock:    unlock.DefaultPolicy,
		PassRatio: deckmastery.DefaultPassRatio,
	}
}

// Engine is the progression core.
type Engine struct {
	catalog   catalog.Service
	mastery   *mastery.Service
	tracker   *unlock.Tracker
	gate      *unlock.Gate
	journey   *journey.Journey
	generator *session.Generator
	scorer    *scoring.Engine
	questions *questiongen.Builder
	decks     *deckmastery.Manager
	badges    *badges.Manager
	events    store.EventRepo
	log       logrus.FieldLogger
	opts      Options
}

// New loads persisted progress and assembles the engine.
func New(ctx context.Context, deps Deps, opts Options) (*Engine, error) {
	if deps.Catalog == nil || deps.KV == nil {
		return nil, errors.New("engine: catalog and key-value store are required")
	}
	if deps.Log == nil {
		deps.Log = logrus.StandardLogger()
	}
	if deps.Journey == nil {
		deps.Journey = journey.Default()
	}
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	// Each consumer gets its own source split from deps.Rand; a *rand.Rand
	// is not safe for concurrent use.
	genRand, questionRand := split(deps.Rand), split(deps.Rand)
	if deps.Distractors == nil {
		deps.Distractors = distractor.NewCatalogGenerator(split(deps.Rand))
	}
	if opts.PassRatio <= 0 {
		opts.PassRatio = deckmastery.DefaultPassRatio
	}

	ms, err := mastery.NewService(ctx, deps.KV)
	if err != nil {
		return nil, err
	}
	tracker, err := unlock.NewTracker(ctx, deps.KV)
	if err != nil {
		return nil, err
	}
	decks, err := deckmastery.NewManager(ctx, deps.KV, deps.Catalog, ms)
	if err != nil {
		return nil, err
	}
	bm, err := badges.NewManager(ctx, deps.KV, deps.Catalog, decks, deps.Events, deps.Log)
	if err != nil {
		return nil, err
	}

	gate := unlock.NewGate(opts.Unlock, tracker)
	return &Engine{
		catalog:   deps.Catalog,
		mastery:   ms,
		tracker:   tracker,
		gate:      gate,
		journey:   deps.Journey,
		generator: session.NewGenerator(ms, gate, deps.Journey, genRand),
		scorer:    scoring.NewEngine(ms),
		questions: questiongen.NewBuilder(deps.Distractors, questionRand),
		decks:     decks,
		badges:    bm,
		events:    deps.Events,
		log:       deps.Log,
		opts:      opts,
	}, nil
}

func split(r *rand.Rand) *rand.Rand {
	return rand.New(rand.NewPCG(r.Uint64(), r.Uint64()))
}

// CurrentMastery returns a word's mastery, 0 if never practiced.
func (e *Engine) CurrentMastery(wordID string) float64 {
	return e.mastery.Get(wordID)
}

// Subscribe registers fn to be called after every mastery change.
func (e *Engine) Subscribe(fn func(mastery.Record)) {
	e.mastery.Subscribe(fn)
}

// Catalog returns the catalog the engine was built with.
func (e *Engine) Catalog() catalog.Service {
	return e.catalog
}

// Journey returns the stage table used to pick question types.
func (e *Engine) Journey() *journey.Journey {
	return e.journey
}

// BuildSession assembles a practice session over the deck's unlocked words.
// An empty deck yields a run with no items.
func (e *Engine) BuildSession(ctx context.Context, deckID string) (*session.Run, error) {
	words, err := e.catalog.LoadDeckWords(deckID)
	if err != nil {
		return nil, err
	}
	ps, err := e.generator.Build(deckID, words, e.opts.Session)
	if err != nil {
		return nil, fmt.Errorf("build session for %q: %w", deckID, err)
	}

	e.log.WithFields(logrus.Fields{
		"deck_id":    deckID,
		"session_id": ps.ID,
		"items":      len(ps.Items),
		"unlocked":   e.gate.UnlockedCount(deckID, len(words)),
	}).Info("session built")
	e.appendSession(ctx, ps, store.SessionStart, nil)
	return session.NewRun(ps), nil
}

// Question builds the presentable question for the run's current item.
func (e *Engine) Question(ctx context.Context, run *session.Run) (*questiongen.Question, error) {
	item, ok := run.Current()
	if !ok {
		return nil, session.ErrSessionFinished
	}
	words, err := e.catalog.LoadDeckWords(run.Session.DeckID)
	if err != nil {
		return nil, err
	}
	if item.WordIndex < 0 || item.WordIndex >= len(words) {
		return nil, fmt.Errorf("%w: word index %d", ErrWrongSession, item.WordIndex)
	}
	chars, err := e.catalog.LoadCharacters()
	if err != nil {
		return nil, err
	}
	return e.questions.Build(ctx, words[item.WordIndex], item.QuestionType, words, chars)
}

// SubmitAnswer scores the run's current item and advances the run.
//
// Practice answers change the word's mastery; words of an exam-passed deck
// stay pinned at 1.0. Exam answers are graded only.
func (e *Engine) SubmitAnswer(ctx context.Context, run *session.Run, correct bool) (session.Answer, error) {
	item, ok := run.Current()
	if !ok {
		return session.Answer{}, session.ErrSessionFinished
	}
	deckID := run.Session.DeckID
	log := e.log.WithFields(logrus.Fields{
		"deck_id":    deckID,
		"session_id": run.Session.ID,
		"word_id":    item.WordID,
	})

	if run.Session.Kind == session.KindExam {
		m := e.mastery.Get(item.WordID)
		return run.Record(correct, 0, m, m)
	}

	word, err := e.word(deckID, item)
	if err != nil {
		return session.Answer{}, err
	}
	res, err := e.scorer.ApplyAnswer(ctx, word, item.QuestionType, correct, e.decks.IsDeckMastered(deckID))
	if err != nil {
		log.WithError(err).Error("apply answer")
		return session.Answer{}, err
	}

	ans, err := run.Record(correct, res.Delta, res.Previous, res.Mastery)
	if err != nil {
		return ans, err
	}
	log.WithFields(logrus.Fields{
		"type":    item.QuestionType,
		"correct": correct,
		"mastery": res.Mastery,
	}).Debug("answer scored")

	if e.events != nil {
		if err := e.events.AppendAnswerEvent(ctx, store.AnswerEventData{
			SessionID:    run.Session.ID,
			DeckID:       deckID,
			WordID:       item.WordID,
			QuestionType: string(item.QuestionType),
			Correct:      correct,
			Delta:        res.Delta,
			Mastery:      res.Mastery,
		}); err != nil {
			log.WithError(err).Warn("record answer event")
		}
	}
	return ans, nil
}

// Outcome is the result of finishing a run.
type Outcome struct {
	Summary *session.Summary

	// SessionsCompleted is the deck's completed practice count afterwards.
	SessionsCompleted int

	// Exam is set for exam runs.
	Exam *ExamResult
}

// CompleteSession finishes a run whose items are all answered. A practice
// run increments the deck's completed-session count exactly once; an exam
// run is graded and, when passed, masters the deck. Empty runs cannot be
// completed and a second call returns session.ErrSessionAlreadyCompleted.
func (e *Engine) CompleteSession(ctx context.Context, run *session.Run) (*Outcome, error) {
	if err := run.MarkCompleted(); err != nil {
		return nil, err
	}
	deckID := run.Session.DeckID
	out := &Outcome{Summary: session.BuildSummary(run)}

	if run.Session.Kind == session.KindExam {
		res, err := e.gradeExam(ctx, run, out.Summary)
		if err != nil {
			return nil, err
		}
		out.Exam = res
		out.SessionsCompleted = e.tracker.Completed(deckID)
		e.appendSession(ctx, run.Session, store.SessionComplete, out.Summary)
		return out, nil
	}

	n, err := e.tracker.Increment(ctx, deckID)
	if err != nil {
		return nil, err
	}
	out.SessionsCompleted = n
	e.log.WithFields(logrus.Fields{
		"deck_id":    deckID,
		"session_id": run.Session.ID,
		"sessions":   n,
		"accuracy":   out.Summary.Accuracy,
	}).Info("session completed")
	e.appendSession(ctx, run.Session, store.SessionComplete, out.Summary)
	return out, nil
}

// AbandonSession stops a run early. Applied answers stand and the deck's
// session count is not incremented.
func (e *Engine) AbandonSession(ctx context.Context, run *session.Run) *session.Summary {
	run.Abandon()
	sum := session.BuildSummary(run)
	e.log.WithFields(logrus.Fields{
		"deck_id":    run.Session.DeckID,
		"session_id": run.Session.ID,
		"answered":   sum.Answered,
	}).Info("session abandoned")
	e.appendSession(ctx, run.Session, store.SessionAbandoned, sum)
	return sum
}

func (e *Engine) word(deckID string, item session.Item) (catalog.WordItem, error) {
	words, err := e.catalog.LoadDeckWords(deckID)
	if err != nil {
		return catalog.WordItem{}, err
	}
	if item.WordIndex < 0 || item.WordIndex >= len(words) || words[item.WordIndex].ID != item.WordID {
		return catalog.WordItem{}, fmt.Errorf("%w: %q", ErrWrongSession, item.WordID)
	}
	return words[item.WordIndex], nil
}

func (e *Engine) appendSession(ctx context.Context, ps *session.PracticeSession, action string, sum *session.Summary) {
	if e.events == nil {
		return
	}
	data := store.SessionEventData{
		SessionID:    ps.ID,
		DeckID:       ps.DeckID,
		Action:       action,
		Kind:         ps.Kind,
		ItemsPlanned: len(ps.Items),
	}
	if sum != nil {
		data.ItemsAnswered = sum.Answered
		data.CorrectAnswers = sum.Correct
		data.WordsMastered = len(sum.MasteredWords)
	}
	if err := e.events.AppendSessionEvent(ctx, data); err != nil {
		e.log.WithError(err).WithField("session_id", ps.ID).Warn("record session event")
	}
}
