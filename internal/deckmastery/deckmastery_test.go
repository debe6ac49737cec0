package deckmastery

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/hanzo/internal/catalog"
	"github.com/abhisek/hanzo/internal/store"
)

type stubMastery map[string]float64

func (m stubMastery) Get(id string) float64 { return m[id] }

func testCatalog(t *testing.T) *catalog.FileCatalog {
	t.Helper()
	c, err := catalog.Parse([]byte(`{"decks":[
		{"id":"d1","name":"D1","category":"c","words":[
			{"hanzi":"一","pinyin":"yī","translations":["one"]},
			{"hanzi":"二","pinyin":"èr","translations":["two"]}]},
		{"id":"empty","name":"Empty","category":"c"}]}`))
	require.NoError(t, err)
	return c
}

func newManager(t *testing.T, m stubMastery) (*Manager, *store.MemoryKV) {
	t.Helper()
	kv := store.NewMemoryKV()
	mgr, err := NewManager(context.Background(), kv, testCatalog(t), m)
	require.NoError(t, err)
	return mgr, kv
}

func TestStageProgression(t *testing.T) {
	m := stubMastery{}
	mgr, _ := newManager(t, m)
	ctx := context.Background()

	stage := func() Stage {
		s, err := mgr.Stage("d1")
		require.NoError(t, err)
		return s
	}

	assert.Equal(t, Unseen, stage())

	m["一"] = 0.3
	assert.Equal(t, InProgress, stage())

	m["一"], m["二"] = 1, 1
	assert.Equal(t, AllWordsMastered, stage())
	ok, err := mgr.AllWordsMastered("d1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, mgr.IsDeckMastered("d1"), "mastered words alone do not master the deck")

	_, err = mgr.MasterDeck(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, ExamPassed, stage())

	// Later mistakes do not revoke the exam.
	m["一"] = 0.5
	assert.True(t, mgr.IsDeckMastered("d1"))
	assert.Equal(t, ExamPassed, stage())
}

func TestAllWordsMastered_EmptyAndUnknown(t *testing.T) {
	mgr, _ := newManager(t, stubMastery{})

	ok, err := mgr.AllWordsMastered("empty")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = mgr.AllWordsMastered("missing")
	assert.ErrorIs(t, err, catalog.ErrUnknownDeck)
}

func TestMasterDeck_PersistsAndReloads(t *testing.T) {
	mgr, kv := newManager(t, stubMastery{})
	fixed := time.Date(2026, 5, 4, 12, 0, 0, 987654321, time.UTC)
	mgr.now = func() time.Time { return fixed }

	st, err := mgr.MasterDeck(context.Background(), "d1")
	require.NoError(t, err)
	assert.True(t, st.Mastered)

	reloaded, err := NewManager(context.Background(), kv, testCatalog(t), stubMastery{})
	require.NoError(t, err)
	got := reloaded.State("d1")
	require.NotNil(t, got.MasteredAt)
	assert.True(t, got.MasteredAt.Equal(fixed), "sub-second precision is kept, got %s", got.MasteredAt)
	assert.Equal(t, []string{"d1"}, reloaded.MasteredDecks())
}

func TestMasterDeck_FailedWrite(t *testing.T) {
	mgr, kv := newManager(t, stubMastery{})
	kv.FailWrites = errors.New("nope")

	_, err := mgr.MasterDeck(context.Background(), "d1")
	assert.Error(t, err)
	assert.False(t, mgr.IsDeckMastered("d1"))
}

func TestResetDeck(t *testing.T) {
	mgr, _ := newManager(t, stubMastery{})
	ctx := context.Background()

	_, err := mgr.MasterDeck(ctx, "d1")
	require.NoError(t, err)
	require.NoError(t, mgr.ResetDeck(ctx, "d1"))
	assert.False(t, mgr.IsDeckMastered("d1"))

	_, err = mgr.MasterDeck(ctx, "d1")
	require.NoError(t, err)
	require.NoError(t, mgr.Reset(ctx))
	assert.Empty(t, mgr.MasteredDecks())
}

func TestGradeExam(t *testing.T) {
	tests := []struct {
		correct, total int
		ratio          float64
		want           bool
	}{
		{8, 10, 0.8, true},
		{7, 10, 0.8, false},
		{4, 5, 0, true},
		{3, 5, 0, false},
		{0, 0, 0.8, false},
		{5, 5, 1.0, true},
		{9, 10, 1.5, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GradeExam(tt.correct, tt.total, tt.ratio), "%d/%d @ %v", tt.correct, tt.total, tt.ratio)
	}
}
