package questiongen

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/abhisek/hanzo/internal/catalog"
	"github.com/abhisek/hanzo/internal/distractor"
	"github.com/abhisek/hanzo/internal/journey"
)

// Default option counts.
const (
	DefaultChoices    = 4
	DefaultExtraTiles = 3
)

// Builder turns a word and question type into a Question.
type Builder struct {
	gen        distractor.Generator
	choices    int
	extraTiles int

	mu  sync.Mutex
	rng *rand.Rand
}

// NewBuilder creates a builder. A nil rng seeds a fresh one.
func NewBuilder(gen distractor.Generator, rng *rand.Rand) *Builder {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Builder{gen: gen, choices: DefaultChoices, extraTiles: DefaultExtraTiles, rng: rng}
}

// Build creates the question for word. pool is the rest of the deck (or
// catalog) used for translation distractors; chars feeds construction tiles.
func (b *Builder) Build(ctx context.Context, word catalog.WordItem, qt journey.QuestionType, pool []catalog.WordItem, chars map[string]catalog.CharacterMeta) (*Question, error) {
	if word.Hanzi == "" {
		return nil, fmt.Errorf("build question for %q: word has no hanzi", word.ID)
	}

	q := &Question{
		WordID: word.ID,
		Type:   qt.Visible(),
		Reveal: fmt.Sprintf("%s  %s  %s", word.Hanzi, word.Pinyin, word.Translation()),
	}

	switch q.Type {
	case journey.Flashcard:
		q.Prompt = word.Hanzi
		q.Answer = fmt.Sprintf("%s  %s", word.Pinyin, word.Translation())

	case journey.MultipleChoice:
		q.Prompt = word.Hanzi
		q.Answer = word.Translation()
		wrong := b.gen.Translations(ctx, word, pool, b.choices-1)
		q.Choices = b.shuffled(append([]string{q.Answer}, wrong...))

	case journey.Pinyin:
		q.Prompt = word.Hanzi
		q.Answer = word.Pinyin
		wrong := b.gen.PinyinVariants(ctx, word, b.choices-1)
		q.Choices = b.shuffled(append([]string{q.Answer}, wrong...))

	case journey.Construction:
		q.Prompt = word.Translation()
		q.Answer = word.Hanzi
		tiles := make([]string, 0, len(word.Hanzi)+b.extraTiles)
		for _, r := range word.Hanzi {
			tiles = append(tiles, string(r))
		}
		tiles = append(tiles, b.gen.Characters(ctx, word, chars, b.extraTiles)...)
		q.Tiles = b.shuffled(tiles)
	}
	return q, nil
}

func (b *Builder) shuffled(in []string) []string {
	out := append([]string(nil), in...)
	b.mu.Lock()
	b.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	b.mu.Unlock()
	return out
}
