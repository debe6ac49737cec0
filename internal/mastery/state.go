package mastery

import (
	"math"
	"time"
)

// StorageKey is the key-value entry holding every word's mastery record.
const StorageKey = "word_mastery"

// MasteredThreshold is the score at which a word counts as mastered.
const MasteredThreshold = 1.0

// precision is the rounding grid applied after clamping, so repeated
// fractional deltas land exactly on 1.0 instead of 0.9999999999.
const precision = 1e9

// Record holds the mastery data for a single word.
type Record struct {
	WordID        string
	Mastery       float64
	LastPracticed *time.Time // nil until the first scored answer
	Bookmarked    bool
}

// IsMastered reports whether the word has reached the mastery threshold.
func (r Record) IsMastered() bool {
	return r.Mastery >= MasteredThreshold
}

// Clamp bounds v to [0, 1] and snaps it to the rounding grid.
func Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	v = math.Max(0, math.Min(1, v))
	return math.Round(v*precision) / precision
}
