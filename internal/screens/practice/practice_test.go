package practice

import (
	"context"
	"math/rand/v2"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/hanzo/internal/catalog"
	"github.com/abhisek/hanzo/internal/engine"
	"github.com/abhisek/hanzo/internal/journey"
	"github.com/abhisek/hanzo/internal/router"
	"github.com/abhisek/hanzo/internal/screen"
	"github.com/abhisek/hanzo/internal/screens/summary"
	"github.com/abhisek/hanzo/internal/store"
)

const testCatalog = `{"decks":[
	{"id":"one","name":"One Word","category":"basics","words":[
		{"hanzi":"你好","pinyin":"nǐ hǎo","translations":["hello"]}]},
	{"id":"five","name":"Five Words","category":"basics","words":[
		{"hanzi":"你好","pinyin":"nǐ hǎo","translations":["hello"]},
		{"hanzi":"谢谢","pinyin":"xiè xie","translations":["thank you"]},
		{"hanzi":"再见","pinyin":"zài jiàn","translations":["goodbye"]},
		{"hanzi":"早上好","pinyin":"zǎo shang hǎo","translations":["good morning"]},
		{"hanzi":"晚安","pinyin":"wǎn ān","translations":["good night"]}]},
	{"id":"empty","name":"Empty","category":"misc"}]}`

const flashcardOnly = `{"version":"v1.0.0","stages":[
	{"stage":1,"masteryMin":0,"masteryMax":1,"questionTypes":[{"type":"flashcard","weight":1}]}]}`

const choiceOnly = `{"version":"v1.0.0","stages":[
	{"stage":1,"masteryMin":0,"masteryMax":1,"questionTypes":[{"type":"multipleChoice","weight":1}]}]}`

func newEngine(t *testing.T, table string) *engine.Engine {
	t.Helper()
	cat, err := catalog.Parse([]byte(testCatalog))
	require.NoError(t, err)
	j, err := journey.Load([]byte(table))
	require.NoError(t, err)
	log, _ := test.NewNullLogger()

	e, err := engine.New(context.Background(), engine.Deps{
		Catalog: cat,
		KV:      store.NewMemoryKV(),
		Journey: j,
		Rand:    rand.New(rand.NewPCG(3, 5)),
		Log:     log,
	}, engine.DefaultOptions())
	require.NoError(t, err)
	return e
}

func key(s string) tea.KeyPressMsg {
	switch s {
	case "space":
		return tea.KeyPressMsg{Code: tea.KeySpace, Text: " "}
	case "enter":
		return tea.KeyPressMsg{Code: tea.KeyEnter}
	case "esc":
		return tea.KeyPressMsg{Code: tea.KeyEscape}
	}
	r := []rune(s)[0]
	return tea.KeyPressMsg{Code: r, Text: s}
}

// pump runs cmd and feeds its message back into the screen until a
// navigation message comes out or there is nothing left to run.
func pump(t *testing.T, s *PracticeScreen, cmd tea.Cmd) tea.Msg {
	t.Helper()
	for cmd != nil {
		msg := cmd()
		switch msg.(type) {
		case router.ReplaceScreenMsg, router.PopScreenMsg, router.PushScreenMsg:
			return msg
		}
		var next screen.Screen
		next, cmd = s.Update(msg)
		require.Same(t, s, next)
	}
	return nil
}

func start(t *testing.T, s *PracticeScreen) {
	t.Helper()
	require.Nil(t, pump(t, s, s.Init()))
	require.NotNil(t, s.run)
}

func press(t *testing.T, s *PracticeScreen, k string) tea.Msg {
	t.Helper()
	_, cmd := s.Update(key(k))
	return pump(t, s, cmd)
}

func TestPractice_FlashcardRunToSummary(t *testing.T) {
	e := newEngine(t, flashcardOnly)
	s := New(e, "one")
	start(t, s)

	// One unlocked word, three repetitions at most.
	require.Len(t, s.run.Session.Items, 3)
	assert.True(t, s.InterceptsBack())

	var nav tea.Msg
	for i := 0; i < 3; i++ {
		require.NotNil(t, s.question, "question %d", i)
		assert.Equal(t, journey.Flashcard, s.question.Type)

		require.Nil(t, press(t, s, "y"), "answering before reveal is ignored")
		assert.False(t, s.showingFeedback)

		require.Nil(t, press(t, s, "space"))
		assert.True(t, s.revealed)
		assert.Contains(t, s.View(100, 30), "Did you know it?")

		require.Nil(t, press(t, s, "y"))
		require.True(t, s.showingFeedback)
		assert.Contains(t, s.View(100, 30), "Correct!")

		nav = press(t, s, "enter")
	}

	replace, ok := nav.(router.ReplaceScreenMsg)
	require.True(t, ok, "expected summary replace, got %T", nav)
	sum, ok := replace.Screen.(*summary.SummaryScreen)
	require.True(t, ok)
	assert.Equal(t, "Session Summary", sum.Title())

	assert.InDelta(t, 0.30, e.CurrentMastery("你好"), 1e-9)
	st, err := e.DeckStatus("one")
	require.NoError(t, err)
	assert.Equal(t, 1, st.SessionsCompleted)
}

func TestPractice_FlashcardMissAtZeroStaysZero(t *testing.T) {
	e := newEngine(t, flashcardOnly)
	s := New(e, "one")
	start(t, s)

	press(t, s, "space")
	press(t, s, "n")
	require.NotNil(t, s.last)
	assert.False(t, s.last.Correct)
	assert.Equal(t, 0.0, e.CurrentMastery("你好"))
	assert.Contains(t, s.View(100, 30), "Not quite")
}

func TestPractice_MultipleChoiceByNumber(t *testing.T) {
	e := newEngine(t, choiceOnly)
	s := New(e, "five")
	start(t, s)

	q := s.question
	require.NotNil(t, q)
	require.Equal(t, journey.MultipleChoice, q.Type)
	idx := q.CorrectIndex()
	require.GreaterOrEqual(t, idx, 0)

	press(t, s, string(rune('1'+idx)))
	require.True(t, s.showingFeedback)
	assert.True(t, s.last.Correct)
	assert.Greater(t, e.CurrentMastery(q.WordID), 0.0)
}

func TestPractice_QuitConfirmAbandons(t *testing.T) {
	e := newEngine(t, flashcardOnly)
	s := New(e, "one")
	start(t, s)

	press(t, s, "esc")
	require.True(t, s.showingQuitConfirm)
	assert.Contains(t, s.View(100, 30), "End session early?")

	press(t, s, "n")
	require.False(t, s.showingQuitConfirm)

	press(t, s, "esc")
	nav := press(t, s, "y")
	replace, ok := nav.(router.ReplaceScreenMsg)
	require.True(t, ok, "expected summary replace, got %T", nav)
	assert.Contains(t, replace.Screen.View(100, 30), "Session ended early")

	st, err := e.DeckStatus("one")
	require.NoError(t, err)
	assert.Equal(t, 0, st.SessionsCompleted, "abandoning must not count the session")
}

func TestPractice_EmptyDeck(t *testing.T) {
	e := newEngine(t, flashcardOnly)
	s := New(e, "empty")
	start(t, s)

	assert.False(t, s.InterceptsBack())
	assert.Contains(t, s.View(100, 30), "no words to practice")
	_, ok := press(t, s, "x").(router.PopScreenMsg)
	assert.True(t, ok)
}

func TestPractice_LockedExamShowsError(t *testing.T) {
	e := newEngine(t, flashcardOnly)
	s := NewExam(e, "one")
	require.Nil(t, pump(t, s, s.Init()))

	assert.NotEmpty(t, s.errMsg)
	assert.True(t, strings.Contains(s.View(100, 30), "Error"))
	_, ok := press(t, s, "enter").(router.PopScreenMsg)
	assert.True(t, ok)
}

func TestPractice_ExamPassMastersDeck(t *testing.T) {
	e := newEngine(t, flashcardOnly)
	ctx := context.Background()
	require.NoError(t, e.SetMastery(ctx, "你好", 1))

	s := NewExam(e, "one")
	start(t, s)
	assert.Equal(t, "Exam", s.Title())
	require.Equal(t, journey.MultipleChoice, s.question.Type)

	nav := press(t, s, string(rune('1'+s.question.CorrectIndex())))
	require.Nil(t, nav)
	nav = press(t, s, "enter")

	replace, ok := nav.(router.ReplaceScreenMsg)
	require.True(t, ok, "expected summary replace, got %T", nav)
	assert.Contains(t, replace.Screen.View(100, 30), "Exam passed!")
	assert.True(t, e.IsDeckMastered("one"))
}

func TestPractice_KeyHintsFollowState(t *testing.T) {
	e := newEngine(t, flashcardOnly)
	s := New(e, "one")
	start(t, s)

	assert.Equal(t, "Space", s.KeyHints()[0].Key)
	press(t, s, "space")
	assert.Equal(t, "Y", s.KeyHints()[0].Key)
	press(t, s, "esc")
	assert.Equal(t, "End session", s.KeyHints()[0].Description)
}
