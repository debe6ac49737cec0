package distractor

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/abhisek/hanzo/internal/catalog"
	"github.com/abhisek/hanzo/internal/llm"
)

const distractorSystemPrompt = `You write wrong answer options for a Chinese vocabulary quiz.
Given a Chinese word and its correct English translations, return short English
words or phrases a learner could plausibly confuse with the correct answer.
Never return the correct translation or a synonym of it.`

// AssistedGenerator tops up translation distractors with an LLM when the
// catalog alone cannot supply enough. Any provider failure falls back to the
// catalog-only result.
type AssistedGenerator struct {
	base     Generator
	provider llm.Provider
	log      logrus.FieldLogger
}

var _ Generator = (*AssistedGenerator)(nil)

// NewAssistedGenerator wraps base. A nil provider disables the top-up.
func NewAssistedGenerator(base Generator, provider llm.Provider, log logrus.FieldLogger) *AssistedGenerator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &AssistedGenerator{base: base, provider: provider, log: log}
}

func (a *AssistedGenerator) Translations(ctx context.Context, correct catalog.WordItem, pool []catalog.WordItem, count int) []string {
	got := a.base.Translations(ctx, correct, pool, count)
	if len(got) >= count || a.provider == nil {
		return got
	}

	extra, err := a.ask(ctx, correct, count-len(got))
	if err != nil {
		a.log.WithError(err).WithField("word_id", correct.ID).Warn("llm distractors unavailable")
		return got
	}
	return pick(append(got, extra...), correct.Translations, count)
}

func (a *AssistedGenerator) Characters(ctx context.Context, correct catalog.WordItem, chars map[string]catalog.CharacterMeta, count int) []string {
	return a.base.Characters(ctx, correct, chars, count)
}

func (a *AssistedGenerator) PinyinVariants(ctx context.Context, correct catalog.WordItem, count int) []string {
	return a.base.PinyinVariants(ctx, correct, count)
}

func (a *AssistedGenerator) ask(ctx context.Context, correct catalog.WordItem, n int) ([]string, error) {
	prompt := fmt.Sprintf("Word: %s (%s)\nCorrect translations: %s\nReturn %d distractors.",
		correct.Hanzi, correct.Pinyin, strings.Join(correct.Translations, "; "), n)

	resp, err := a.provider.Generate(ctx, llm.Request{
		Purpose:     llm.PurposeDistractors,
		System:      distractorSystemPrompt,
		Prompt:      prompt,
		Schema:      llm.DistractorSchema,
		MaxTokens:   256,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, err
	}
	return llm.DecodeDistractors(resp.Content)
}
