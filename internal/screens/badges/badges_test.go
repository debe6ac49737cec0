package badges

import (
	"context"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/hanzo/internal/catalog"
	"github.com/abhisek/hanzo/internal/engine"
	"github.com/abhisek/hanzo/internal/router"
	"github.com/abhisek/hanzo/internal/store"
)

const testCatalog = `{"decks":[
	{"id":"nums","name":"Numbers","category":"basics","words":[
		{"hanzi":"一","pinyin":"yī","translations":["one"]}]},
	{"id":"food","name":"Food","category":"daily","words":[
		{"hanzi":"米饭","pinyin":"mǐ fàn","translations":["rice"]}]}]}`

func TestBadgesScreen(t *testing.T) {
	cat, err := catalog.Parse([]byte(testCatalog))
	require.NoError(t, err)
	ctx := context.Background()
	e, err := engine.New(ctx, engine.Deps{Catalog: cat, KV: store.NewMemoryKV()}, engine.DefaultOptions())
	require.NoError(t, err)

	require.NoError(t, e.SetMastery(ctx, "一", 1))
	_, err = e.PassExam(ctx, "nums")
	require.NoError(t, err)

	s := New(e)
	s.Update(s.Init()())
	require.True(t, s.loaded)
	require.Len(t, s.rows, 2)

	byCategory := map[string]categoryRow{}
	for _, r := range s.rows {
		byCategory[r.Category] = r
	}
	assert.True(t, byCategory["basics"].Earned)
	assert.Equal(t, 1, byCategory["basics"].Mastered)
	assert.False(t, byCategory["daily"].Earned)

	view := s.View(100, 30)
	assert.Contains(t, view, "1 of 2 badges earned")
	assert.Contains(t, view, "0 of 1 decks mastered")

	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	require.NotNil(t, cmd)
	_, ok := cmd().(router.PopScreenMsg)
	assert.True(t, ok)
}
