package questiongen

import (
	"context"
	"math/rand/v2"
	"slices"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/hanzo/internal/catalog"
	"github.com/abhisek/hanzo/internal/distractor"
	"github.com/abhisek/hanzo/internal/journey"
)

func newTestBuilder() *Builder {
	gen := distractor.NewCatalogGenerator(rand.New(rand.NewPCG(1, 1)))
	return NewBuilder(gen, rand.New(rand.NewPCG(2, 2)))
}

func deck(t *testing.T) ([]catalog.WordItem, map[string]catalog.CharacterMeta) {
	t.Helper()
	c := catalog.Builtin()
	words, err := c.LoadDeckWords("greetings")
	require.NoError(t, err)
	chars, err := c.LoadCharacters()
	require.NoError(t, err)
	return words, chars
}

func TestBuild_MultipleChoice(t *testing.T) {
	words, chars := deck(t)
	q, err := newTestBuilder().Build(context.Background(), words[0], journey.MultipleChoice, words, chars)
	require.NoError(t, err)

	assert.Equal(t, "你好", q.Prompt)
	assert.Equal(t, "hello", q.Answer)
	assert.Len(t, q.Choices, DefaultChoices)
	idx := q.CorrectIndex()
	require.GreaterOrEqual(t, idx, 0)
	assert.True(t, CheckAnswer(strconv.Itoa(idx+1), q))
	assert.True(t, CheckAnswer("HELLO", q))
	assert.False(t, q.SelfGraded())
}

func TestBuild_Pinyin(t *testing.T) {
	words, chars := deck(t)
	q, err := newTestBuilder().Build(context.Background(), words[0], journey.Pinyin, words, chars)
	require.NoError(t, err)

	assert.Equal(t, "nǐ hǎo", q.Answer)
	assert.Len(t, q.Choices, DefaultChoices)
	assert.Equal(t, 1, countOf(q.Choices, q.Answer))
}

func TestBuild_Construction(t *testing.T) {
	words, chars := deck(t)
	q, err := newTestBuilder().Build(context.Background(), words[3], journey.Construction, words, chars)
	require.NoError(t, err)

	assert.Equal(t, "sorry", q.Prompt)
	assert.Equal(t, "对不起", q.Answer)
	assert.Len(t, q.Tiles, 3+DefaultExtraTiles)
	for _, r := range "对不起" {
		assert.Contains(t, q.Tiles, string(r))
	}
	assert.True(t, CheckAnswer("对 不 起", q))
	assert.False(t, CheckAnswer("对起不", q))
}

func TestBuild_FlashcardAndLogicalTypes(t *testing.T) {
	words, chars := deck(t)
	b := newTestBuilder()

	q, err := b.Build(context.Background(), words[1], journey.Flashcard, words, chars)
	require.NoError(t, err)
	assert.True(t, q.SelfGraded())
	assert.Empty(t, q.Choices)
	assert.True(t, CheckAnswer("y", q))
	assert.False(t, CheckAnswer("n", q))

	q, err = b.Build(context.Background(), words[1], journey.TrueOrFalse, words, chars)
	require.NoError(t, err)
	assert.Equal(t, journey.MultipleChoice, q.Type)
}

func TestBuild_RejectsEmptyWord(t *testing.T) {
	_, err := newTestBuilder().Build(context.Background(), catalog.WordItem{ID: "x"}, journey.Flashcard, nil, nil)
	assert.Error(t, err)
}

func TestCheckAnswer_Empty(t *testing.T) {
	q := &Question{Type: journey.MultipleChoice, Answer: "a", Choices: []string{"a", "b"}}
	assert.False(t, CheckAnswer("  ", q))
	assert.False(t, CheckAnswer("3", q))
	assert.False(t, CheckAnswer("2", q))
	assert.True(t, CheckAnswer("1", q))
}

func countOf(list []string, s string) int {
	return len(slices.DeleteFunc(slices.Clone(list), func(x string) bool { return x != s }))
}
