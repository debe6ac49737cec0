package distractor

import (
	"context"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/abhisek/hanzo/internal/catalog"
)

// Generator produces wrong answer options. Results are distinct, never
// contain the correct answer, and may be shorter than count when the
// source material runs out.
type Generator interface {
	// Translations returns other words' translations.
	Translations(ctx context.Context, correct catalog.WordItem, pool []catalog.WordItem, count int) []string

	// Characters returns hanzi that do not occur in the correct word.
	Characters(ctx context.Context, correct catalog.WordItem, chars map[string]catalog.CharacterMeta, count int) []string

	// PinyinVariants returns readings with the same syllables but a
	// different tone.
	PinyinVariants(ctx context.Context, correct catalog.WordItem, count int) []string
}

// CatalogGenerator draws distractors from catalog data only.
type CatalogGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

var _ Generator = (*CatalogGenerator)(nil)

// NewCatalogGenerator creates a generator using rng for shuffling.
// A nil rng seeds a fresh one.
func NewCatalogGenerator(rng *rand.Rand) *CatalogGenerator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &CatalogGenerator{rng: rng}
}

func (g *CatalogGenerator) Translations(_ context.Context, correct catalog.WordItem, pool []catalog.WordItem, count int) []string {
	if count <= 0 {
		return nil
	}
	others := lo.Filter(pool, func(w catalog.WordItem, _ int) bool { return w.ID != correct.ID })

	// Words of the same level make harder distractors, so they go first.
	sameLevel := lo.Filter(others, func(w catalog.WordItem, _ int) bool { return w.Level == correct.Level })
	otherLevel := lo.Filter(others, func(w catalog.WordItem, _ int) bool { return w.Level != correct.Level })
	g.shuffle(len(sameLevel), func(i, j int) { sameLevel[i], sameLevel[j] = sameLevel[j], sameLevel[i] })
	g.shuffle(len(otherLevel), func(i, j int) { otherLevel[i], otherLevel[j] = otherLevel[j], otherLevel[i] })

	candidates := lo.Map(append(sameLevel, otherLevel...), func(w catalog.WordItem, _ int) string {
		return w.Translation()
	})
	return pick(candidates, correct.Translations, count)
}

func (g *CatalogGenerator) Characters(_ context.Context, correct catalog.WordItem, chars map[string]catalog.CharacterMeta, count int) []string {
	if count <= 0 {
		return nil
	}
	used := lo.Map([]rune(correct.Hanzi), func(r rune, _ int) string { return string(r) })
	candidates := lo.Without(lo.Keys(chars), used...)

	// Map order is random but not seeded; sort first so rng alone decides.
	slices.Sort(candidates)
	g.shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })
	return pick(candidates, used, count)
}

func (g *CatalogGenerator) PinyinVariants(_ context.Context, correct catalog.WordItem, count int) []string {
	if count <= 0 {
		return nil
	}
	variants := ToneVariants(correct.Pinyin)
	g.shuffle(len(variants), func(i, j int) { variants[i], variants[j] = variants[j], variants[i] })
	return pick(variants, []string{correct.Pinyin}, count)
}

func (g *CatalogGenerator) shuffle(n int, swap func(i, j int)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rng.Shuffle(n, swap)
}

// pick returns up to count distinct, non-empty candidates that do not
// match any of the excluded answers (case-insensitively).
func pick(candidates, exclude []string, count int) []string {
	banned := make(map[string]bool, len(exclude))
	for _, e := range exclude {
		banned[normalize(e)] = true
	}

	out := make([]string, 0, count)
	for _, c := range candidates {
		key := normalize(c)
		if key == "" || banned[key] {
			continue
		}
		banned[key] = true
		out = append(out, c)
		if len(out) == count {
			break
		}
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
