package unlock

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/hanzo/internal/store"
)

type fixedCounter map[string]int

func (f fixedCounter) Completed(deckID string) int { return f[deckID] }

func TestGate_UnlockedCount(t *testing.T) {
	tests := []struct {
		name      string
		completed int
		total     int
		want      int
	}{
		{"fresh deck shows base", 0, 20, 5},
		{"one session releases one", 1, 20, 6},
		{"capped by deck size", 30, 20, 20},
		{"small deck fully visible", 0, 3, 3},
		{"empty deck", 4, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGate(DefaultPolicy, fixedCounter{"d": tt.completed})
			assert.Equal(t, tt.want, g.UnlockedCount("d", tt.total))
		})
	}
}

func TestGate_Monotonic(t *testing.T) {
	const total = 12
	prev := 0
	for completed := 0; completed < 20; completed++ {
		g := NewGate(Policy{Base: 5, ReleaseRate: 2}, fixedCounter{"d": completed})
		got := g.UnlockedCount("d", total)
		assert.GreaterOrEqual(t, got, prev, "completed=%d", completed)
		assert.LessOrEqual(t, got, total)
		prev = got
	}
	assert.Equal(t, total, prev)
}

func TestGate_UnlockedIndices(t *testing.T) {
	g := NewGate(DefaultPolicy, fixedCounter{"d": 2})
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, g.UnlockedIndices("d", 10))
	assert.Empty(t, g.UnlockedIndices("d", 0))

	assert.True(t, g.IsUnlocked("d", 6, 10))
	assert.False(t, g.IsUnlocked("d", 7, 10))
	assert.False(t, g.IsUnlocked("d", -1, 10))
}

func TestNewGate_FallsBackToDefaults(t *testing.T) {
	g := NewGate(Policy{Base: 0, ReleaseRate: -3}, fixedCounter{})
	assert.Equal(t, DefaultPolicy, g.Policy())
}

func TestTracker_IncrementPersists(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()

	tr, err := NewTracker(ctx, kv)
	require.NoError(t, err)
	assert.Equal(t, 0, tr.Completed("d1"))

	n, err := tr.Increment(ctx, "d1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	_, err = tr.Increment(ctx, "d1")
	require.NoError(t, err)

	reloaded, err := NewTracker(ctx, kv)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Completed("d1"))
	assert.Equal(t, 0, reloaded.Completed("d2"))
}

func TestTracker_FailedWriteKeepsCount(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	tr, err := NewTracker(ctx, kv)
	require.NoError(t, err)

	_, err = tr.Increment(ctx, "d1")
	require.NoError(t, err)

	boom := errors.New("locked")
	kv.FailWrites = boom
	n, err := tr.Increment(ctx, "d1")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, tr.Completed("d1"))
}

func TestTracker_Reset(t *testing.T) {
	ctx := context.Background()
	tr, err := NewTracker(ctx, store.NewMemoryKV())
	require.NoError(t, err)

	for _, deck := range []string{"a", "a", "b"} {
		_, err := tr.Increment(ctx, deck)
		require.NoError(t, err)
	}

	require.NoError(t, tr.ResetDeck(ctx, "a"))
	assert.Equal(t, 0, tr.Completed("a"))
	assert.Equal(t, 1, tr.Completed("b"))

	require.NoError(t, tr.Reset(ctx))
	assert.Equal(t, 0, tr.Completed("b"))
}

func TestGateWithTracker(t *testing.T) {
	ctx := context.Background()
	tr, err := NewTracker(ctx, store.NewMemoryKV())
	require.NoError(t, err)
	g := NewGate(DefaultPolicy, tr)

	assert.Equal(t, 5, g.UnlockedCount("d", 8))
	_, err = tr.Increment(ctx, "d")
	require.NoError(t, err)
	assert.Equal(t, 6, g.UnlockedCount("d", 8))
}
