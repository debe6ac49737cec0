package engine

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/hanzo/internal/catalog"
	"github.com/abhisek/hanzo/internal/deckmastery"
	"github.com/abhisek/hanzo/internal/journey"
	"github.com/abhisek/hanzo/internal/mastery"
	"github.com/abhisek/hanzo/internal/session"
	"github.com/abhisek/hanzo/internal/store"
)

const testCatalog = `{"decks":[
	{"id":"d1","name":"Greetings","category":"basics","words":[
		{"hanzi":"你好","pinyin":"nǐ hǎo","translations":["hello"]},
		{"hanzi":"谢谢","pinyin":"xiè xie","translations":["thank you"]},
		{"hanzi":"再见","pinyin":"zài jiàn","translations":["goodbye"]},
		{"hanzi":"早上好","pinyin":"zǎo shang hǎo","translations":["good morning"]},
		{"hanzi":"晚安","pinyin":"wǎn ān","translations":["good night"]}]},
	{"id":"d2","name":"Numbers","category":"basics","words":[
		{"hanzi":"一","pinyin":"yī","translations":["one"]},
		{"hanzi":"二","pinyin":"èr","translations":["two"]}]},
	{"id":"empty","name":"Empty","category":"misc"}]}`

// flashcardOnly keeps every item a flashcard so deltas are predictable.
const flashcardOnly = `{"version":"v1.0.0","stages":[
	{"stage":1,"masteryMin":0,"masteryMax":1,"questionTypes":[{"type":"flashcard","weight":1}]}]}`

type fixture struct {
	engine *Engine
	store  *store.Store
}

func newFixture(t *testing.T, table string) fixture {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	st, err := store.Open(fmt.Sprintf("file:engine_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	cat, err := catalog.Parse([]byte(testCatalog))
	require.NoError(t, err)

	deps := Deps{
		Catalog: cat,
		KV:      st.KV(),
		Events:  st.EventRepo(),
		Rand:    rand.New(rand.NewPCG(7, 11)),
	}
	if table != "" {
		j, err := journey.Load([]byte(table))
		require.NoError(t, err)
		deps.Journey = j
	}
	deps.Log, _ = test.NewNullLogger()

	e, err := New(context.Background(), deps, DefaultOptions())
	require.NoError(t, err)
	return fixture{engine: e, store: st}
}

func answerAll(t *testing.T, e *Engine, run *session.Run, correct func(i int) bool) {
	t.Helper()
	ctx := context.Background()
	for i := 0; !run.Done(); i++ {
		_, err := e.SubmitAnswer(ctx, run, correct(i))
		require.NoError(t, err)
	}
}

func allCorrect(int) bool { return true }

func TestEndToEnd_FirstSessionOnFreshDeck(t *testing.T) {
	f := newFixture(t, flashcardOnly)
	e := f.engine
	ctx := context.Background()

	run, err := e.BuildSession(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, run.Session.Items, 15)
	reps := run.Session.Repetitions()
	require.Len(t, reps, 5)
	for idx, n := range reps {
		assert.Equal(t, 3, n, "word %d", idx)
	}

	answerAll(t, e, run, allCorrect)

	words, err := e.Catalog().LoadDeckWords("d1")
	require.NoError(t, err)
	for _, w := range words {
		assert.InDelta(t, 0.30, e.CurrentMastery(w.ID), 1e-9, w.ID)
	}

	out, err := e.CompleteSession(ctx, run)
	require.NoError(t, err)
	assert.Equal(t, 1, out.SessionsCompleted)
	assert.True(t, out.Summary.Completed)
	assert.Equal(t, 15, out.Summary.Correct)
	assert.Nil(t, out.Exam)

	answers, err := f.store.EventRepo().QueryAnswerEvents(ctx, store.QueryOpts{})
	require.NoError(t, err)
	assert.Len(t, answers, 15)

	sessions, err := f.store.EventRepo().QuerySessionSummaries(ctx, store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, store.SessionComplete, sessions[0].Action)
	assert.Equal(t, 15, sessions[0].CorrectAnswers)
}

func TestSmallDeckShrinksSession(t *testing.T) {
	e := newFixture(t, flashcardOnly).engine

	run, err := e.BuildSession(context.Background(), "d2")
	require.NoError(t, err)
	assert.Len(t, run.Session.Items, 6, "two words at three repetitions each")
	assert.Equal(t, 15, run.Session.RequestedLength)
}

func TestEmptyDeckYieldsEmptySession(t *testing.T) {
	e := newFixture(t, "").engine
	ctx := context.Background()

	run, err := e.BuildSession(ctx, "empty")
	require.NoError(t, err)
	assert.True(t, run.Session.Empty())
	assert.True(t, run.Done())

	_, err = e.BuildSession(ctx, "missing")
	assert.ErrorIs(t, err, catalog.ErrUnknownDeck)
}

func TestCompleteSession_OnlyOnNaturalEnd(t *testing.T) {
	e := newFixture(t, flashcardOnly).engine
	ctx := context.Background()

	run, err := e.BuildSession(ctx, "d1")
	require.NoError(t, err)

	_, err = e.CompleteSession(ctx, run)
	assert.ErrorIs(t, err, session.ErrSessionNotFinished)

	first, _ := run.Current()
	_, err = e.SubmitAnswer(ctx, run, true)
	require.NoError(t, err)

	sum := e.AbandonSession(ctx, run)
	assert.False(t, sum.Completed)
	assert.Equal(t, 1, sum.Answered)

	_, err = e.CompleteSession(ctx, run)
	assert.ErrorIs(t, err, session.ErrSessionNotFinished)

	st, err := e.DeckStatus("d1")
	require.NoError(t, err)
	assert.Equal(t, 0, st.SessionsCompleted, "abandoning never counts")
	assert.InDelta(t, 0.10, e.CurrentMastery(first.WordID), 1e-9, "applied answers stand")
}

func TestCompleteSession_CountsOnce(t *testing.T) {
	f := newFixture(t, flashcardOnly)
	e := f.engine
	ctx := context.Background()

	run, err := e.BuildSession(ctx, "d1")
	require.NoError(t, err)
	answerAll(t, e, run, allCorrect)

	out, err := e.CompleteSession(ctx, run)
	require.NoError(t, err)
	assert.Equal(t, 1, out.SessionsCompleted)

	_, err = e.CompleteSession(ctx, run)
	assert.ErrorIs(t, err, session.ErrSessionAlreadyCompleted)

	st, err := e.DeckStatus("d1")
	require.NoError(t, err)
	assert.Equal(t, 1, st.SessionsCompleted)

	sessions, err := f.store.EventRepo().QuerySessionSummaries(ctx, store.QueryOpts{})
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestCompleteSession_EmptyRunDoesNotCount(t *testing.T) {
	e := newFixture(t, "").engine
	ctx := context.Background()

	run, err := e.BuildSession(ctx, "empty")
	require.NoError(t, err)
	require.True(t, run.Session.Empty())

	_, err = e.CompleteSession(ctx, run)
	assert.ErrorIs(t, err, session.ErrSessionNotFinished)

	st, err := e.DeckStatus("empty")
	require.NoError(t, err)
	assert.Equal(t, 0, st.SessionsCompleted)
}

func TestMasteredWords_OnlyOnCrossing(t *testing.T) {
	e := newFixture(t, flashcardOnly).engine
	ctx := context.Background()

	words, err := e.Catalog().LoadDeckWords("d2")
	require.NoError(t, err)
	for _, w := range words {
		require.NoError(t, e.SetMastery(ctx, w.ID, 0.95))
	}
	run, err := e.BuildSession(ctx, "d2")
	require.NoError(t, err)
	answerAll(t, e, run, allCorrect)
	out, err := e.CompleteSession(ctx, run)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{words[0].ID, words[1].ID}, out.Summary.MasteredWords)

	// Words pinned at 1.0 by a passed exam never cross the threshold.
	masterWords(t, e, "d1")
	_, err = e.PassExam(ctx, "d1")
	require.NoError(t, err)
	run, err = e.BuildSession(ctx, "d1")
	require.NoError(t, err)
	answerAll(t, e, run, func(int) bool { return false })
	out, err = e.CompleteSession(ctx, run)
	require.NoError(t, err)
	assert.Empty(t, out.Summary.MasteredWords)
	assert.Equal(t, 0, out.Summary.Correct)
}

func TestSessionsAndQuestionsConcurrently(t *testing.T) {
	cat, err := catalog.Parse([]byte(testCatalog))
	require.NoError(t, err)
	log, _ := test.NewNullLogger()
	e, err := New(context.Background(), Deps{
		Catalog: cat,
		KV:      store.NewMemoryKV(),
		Rand:    rand.New(rand.NewPCG(3, 9)),
		Log:     log,
	}, DefaultOptions())
	require.NoError(t, err)
	ctx := context.Background()

	run, err := e.BuildSession(ctx, "d1")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 100)
	for range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := e.BuildSession(ctx, "d1"); err != nil {
				errs <- err
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := e.Question(ctx, run); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestSameSeedSameSession(t *testing.T) {
	build := func() []session.Item {
		cat, err := catalog.Parse([]byte(testCatalog))
		require.NoError(t, err)
		log, _ := test.NewNullLogger()
		e, err := New(context.Background(), Deps{
			Catalog: cat,
			KV:      store.NewMemoryKV(),
			Rand:    rand.New(rand.NewPCG(42, 42)),
			Log:     log,
		}, DefaultOptions())
		require.NoError(t, err)
		run, err := e.BuildSession(context.Background(), "d1")
		require.NoError(t, err)
		return run.Session.Items
	}
	assert.Equal(t, build(), build())
}

func TestSubmitAnswer_PastEnd(t *testing.T) {
	e := newFixture(t, flashcardOnly).engine
	ctx := context.Background()

	run, err := e.BuildSession(ctx, "d2")
	require.NoError(t, err)
	answerAll(t, e, run, allCorrect)

	_, err = e.SubmitAnswer(ctx, run, true)
	assert.ErrorIs(t, err, session.ErrSessionFinished)
}

func masterWords(t *testing.T, e *Engine, deckID string) {
	t.Helper()
	words, err := e.Catalog().LoadDeckWords(deckID)
	require.NoError(t, err)
	for _, w := range words {
		require.NoError(t, e.SetMastery(context.Background(), w.ID, 1))
	}
}

func TestExamFlow_CascadesToBadge(t *testing.T) {
	f := newFixture(t, flashcardOnly)
	e := f.engine
	ctx := context.Background()

	allowed, err := e.AttemptExam("d1")
	require.NoError(t, err)
	assert.False(t, allowed)
	_, err = e.StartExam(ctx, "d1")
	assert.ErrorIs(t, err, deckmastery.ErrExamLocked)
	_, err = e.PassExam(ctx, "d1")
	assert.ErrorIs(t, err, deckmastery.ErrExamLocked)

	masterWords(t, e, "d1")
	allowed, err = e.AttemptExam("d1")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.False(t, e.IsDeckMastered("d1"), "mastered words alone do not pass the exam")

	exam, err := e.StartExam(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, exam.Session.Items, 5)
	for _, it := range exam.Session.Items {
		assert.Equal(t, journey.MultipleChoice, it.QuestionType)
	}
	answerAll(t, e, exam, allCorrect)

	out, err := e.CompleteSession(ctx, exam)
	require.NoError(t, err)
	require.NotNil(t, out.Exam)
	assert.True(t, out.Exam.Passed)
	assert.Equal(t, 5, out.Exam.Correct)
	assert.False(t, out.Exam.BadgeAwarded, "d2 is not mastered yet")
	assert.True(t, e.IsDeckMastered("d1"))
	assert.Equal(t, 0, out.SessionsCompleted, "exams do not count as practice")

	// Wrong answers on an exam-passed deck keep words at 1.0.
	run, err := e.BuildSession(ctx, "d1")
	require.NoError(t, err)
	answerAll(t, e, run, func(int) bool { return false })
	words, _ := e.Catalog().LoadDeckWords("d1")
	for _, w := range words {
		assert.Equal(t, 1.0, e.CurrentMastery(w.ID))
	}

	masterWords(t, e, "d2")
	res, err := e.PassExam(ctx, "d2")
	require.NoError(t, err)
	assert.True(t, res.BadgeAwarded)
	assert.Equal(t, "basics", res.Category)
	assert.True(t, e.IsBadgeEarned("basics"))

	again, err := e.PassExam(ctx, "d2")
	require.NoError(t, err)
	assert.False(t, again.BadgeAwarded, "badge is awarded once")
	assert.Len(t, e.Badges(), 1)

	ms, err := f.store.EventRepo().QueryMilestones(ctx, store.QueryOpts{})
	require.NoError(t, err)
	var kinds []string
	for _, m := range ms {
		kinds = append(kinds, m.Kind)
	}
	assert.Contains(t, kinds, store.MilestoneDeckMastered)
	assert.Contains(t, kinds, store.MilestoneBadgeAwarded)
}

func TestExamFlow_Failing(t *testing.T) {
	f := newFixture(t, "")
	e := f.engine
	ctx := context.Background()

	masterWords(t, e, "d1")
	exam, err := e.StartExam(ctx, "d1")
	require.NoError(t, err)

	// 3 of 5 is below the 0.8 pass ratio.
	answerAll(t, e, exam, func(i int) bool { return i < 3 })
	out, err := e.CompleteSession(ctx, exam)
	require.NoError(t, err)
	assert.False(t, out.Exam.Passed)
	assert.False(t, e.IsDeckMastered("d1"))

	words, _ := e.Catalog().LoadDeckWords("d1")
	for _, w := range words {
		assert.Equal(t, 1.0, e.CurrentMastery(w.ID), "exam answers do not change mastery")
	}

	ms, err := f.store.EventRepo().QueryMilestones(ctx, store.QueryOpts{})
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.Equal(t, store.MilestoneExamFailed, ms[0].Kind)
	assert.Equal(t, "3/5", ms[0].Detail)
}

func TestResetDeckExam(t *testing.T) {
	e := newFixture(t, "").engine
	ctx := context.Background()

	masterWords(t, e, "d2")
	_, err := e.PassExam(ctx, "d2")
	require.NoError(t, err)
	require.NoError(t, e.ResetDeckExam(ctx, "d2"))
	assert.False(t, e.IsDeckMastered("d2"))

	st, err := e.DeckStatus("d2")
	require.NoError(t, err)
	assert.Equal(t, deckmastery.AllWordsMastered, st.Stage)
	assert.True(t, st.ExamUnlocked)

	assert.ErrorIs(t, e.ResetDeckExam(ctx, "nope"), catalog.ErrUnknownDeck)
}

func TestQuestionForCurrentItem(t *testing.T) {
	e := newFixture(t, "").engine
	ctx := context.Background()

	run, err := e.BuildSession(ctx, "d1")
	require.NoError(t, err)
	item, ok := run.Current()
	require.True(t, ok)

	q, err := e.Question(ctx, run)
	require.NoError(t, err)
	assert.Equal(t, item.WordID, q.WordID)
	assert.Equal(t, item.QuestionType.Visible(), q.Type)
}

func TestDeckStatusAndWords(t *testing.T) {
	e := newFixture(t, flashcardOnly).engine
	ctx := context.Background()

	st, err := e.DeckStatus("d1")
	require.NoError(t, err)
	assert.Equal(t, deckmastery.Unseen, st.Stage)
	assert.Equal(t, 5, st.Unlocked)

	require.NoError(t, e.SetMastery(ctx, "你好", 1))
	require.NoError(t, e.SetMastery(ctx, "谢谢", 0.5))
	st, err = e.DeckStatus("d1")
	require.NoError(t, err)
	assert.Equal(t, deckmastery.InProgress, st.Stage)
	assert.Equal(t, 1, st.Mastered)
	assert.InDelta(t, 0.3, st.AverageMastery, 1e-9)

	on, err := e.ToggleBookmark(ctx, "再见")
	require.NoError(t, err)
	assert.True(t, on)

	words, err := e.Words("d1")
	require.NoError(t, err)
	require.Len(t, words, 5)
	assert.True(t, words[0].Mastered)
	assert.Equal(t, 1, words[0].Stage)
	assert.True(t, words[2].Bookmarked)
	assert.Equal(t, []string{"再见"}, e.Bookmarked())

	all, err := e.Decks()
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestSubscribeAndResetAll(t *testing.T) {
	e := newFixture(t, flashcardOnly).engine
	ctx := context.Background()

	var changed []string
	e.Subscribe(func(r mastery.Record) { changed = append(changed, r.WordID) })

	masterWords(t, e, "d2")
	_, err := e.PassExam(ctx, "d2")
	require.NoError(t, err)
	assert.Equal(t, []string{"一", "二"}, changed)

	require.NoError(t, e.ResetAll(ctx))
	assert.Zero(t, e.CurrentMastery("一"))
	assert.False(t, e.IsDeckMastered("d2"))
	assert.Empty(t, e.Badges())
}
