package unlock

// Policy controls how quickly words are released.
type Policy struct {
	Base        int // words visible before any session is completed
	ReleaseRate int // extra words released per completed session
}

// DefaultPolicy unlocks five words up front and one more per session.
var DefaultPolicy = Policy{Base: 5, ReleaseRate: 1}

// SessionCounter reports completed sessions per deck.
type SessionCounter interface {
	Completed(deckID string) int
}

// Gate decides which words of a deck are visible.
type Gate struct {
	policy   Policy
	sessions SessionCounter
}

// NewGate creates a gate. Non-positive policy values fall back to the defaults.
func NewGate(policy Policy, sessions SessionCounter) *Gate {
	if policy.Base <= 0 {
		policy.Base = DefaultPolicy.Base
	}
	if policy.ReleaseRate < 0 {
		policy.ReleaseRate = DefaultPolicy.ReleaseRate
	}
	return &Gate{policy: policy, sessions: sessions}
}

// Policy returns the gate's effective policy.
func (g *Gate) Policy() Policy {
	return g.policy
}

// UnlockedCount returns min(totalWords, base + completed*releaseRate).
func (g *Gate) UnlockedCount(deckID string, totalWords int) int {
	if totalWords <= 0 {
		return 0
	}
	completed := max(g.sessions.Completed(deckID), 0)
	return min(totalWords, g.policy.Base+completed*g.policy.ReleaseRate)
}

// UnlockedIndices returns [0, UnlockedCount).
func (g *Gate) UnlockedIndices(deckID string, totalWords int) []int {
	n := g.UnlockedCount(deckID, totalWords)
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	return indices
}

// IsUnlocked reports whether the word at index is visible.
func (g *Gate) IsUnlocked(deckID string, index, totalWords int) bool {
	return index >= 0 && index < g.UnlockedCount(deckID, totalWords)
}
