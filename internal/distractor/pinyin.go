package distractor

import (
	"strings"
	"unicode"
)

// toneMarks maps each plain vowel to its four toned forms.
var toneMarks = map[rune][4]rune{
	'a': {'ā', 'á', 'ǎ', 'à'},
	'e': {'ē', 'é', 'ě', 'è'},
	'i': {'ī', 'í', 'ǐ', 'ì'},
	'o': {'ō', 'ó', 'ǒ', 'ò'},
	'u': {'ū', 'ú', 'ǔ', 'ù'},
	'ü': {'ǖ', 'ǘ', 'ǚ', 'ǜ'},
}

type tonedVowel struct {
	base rune
	tone int
}

// plainVowel maps a toned vowel back to its plain form and tone number.
var plainVowel = func() map[rune]tonedVowel {
	m := make(map[rune]tonedVowel)
	for base, marks := range toneMarks {
		for i, r := range marks {
			m[r] = tonedVowel{base: base, tone: i + 1}
		}
	}
	return m
}()

// SplitTone strips the tone mark from a single syllable, returning the
// plain syllable and its tone (0 for neutral).
func SplitTone(syllable string) (string, int) {
	var b strings.Builder
	tone := 0
	for _, r := range syllable {
		lower := unicode.ToLower(r)
		if pv, ok := plainVowel[lower]; ok {
			tone = pv.tone
			if unicode.IsUpper(r) {
				b.WriteRune(unicode.ToUpper(pv.base))
			} else {
				b.WriteRune(pv.base)
			}
			continue
		}
		b.WriteRune(r)
	}
	return b.String(), tone
}

// WithTone marks a plain syllable with tone 1-4; other tones leave it plain.
// The mark goes on a or e when present, on the o of "ou", and otherwise on
// the last vowel.
func WithTone(plain string, tone int) string {
	if tone < 1 || tone > 4 {
		return plain
	}
	runes := []rune(plain)
	target := -1
	lower := strings.ToLower(plain)

	switch {
	case strings.ContainsRune(lower, 'a'):
		target = indexRune(runes, 'a')
	case strings.ContainsRune(lower, 'e'):
		target = indexRune(runes, 'e')
	case strings.Contains(lower, "ou"):
		target = indexRune(runes, 'o')
	default:
		for i := len(runes) - 1; i >= 0; i-- {
			if _, ok := toneMarks[unicode.ToLower(runes[i])]; ok {
				target = i
				break
			}
		}
	}
	if target < 0 {
		return plain
	}

	r := runes[target]
	marked := toneMarks[unicode.ToLower(r)][tone-1]
	if unicode.IsUpper(r) {
		marked = unicode.ToUpper(marked)
	}
	runes[target] = marked
	return string(runes)
}

func indexRune(runes []rune, want rune) int {
	for i, r := range runes {
		if unicode.ToLower(r) == want {
			return i
		}
	}
	return -1
}

// ToneVariants returns every reading of pinyin that differs from it in the
// tone of exactly one syllable. Syllables are separated by spaces.
func ToneVariants(pinyin string) []string {
	syllables := strings.Fields(pinyin)
	seen := map[string]bool{strings.Join(syllables, " "): true}
	var out []string

	for i, syl := range syllables {
		plain, tone := SplitTone(syl)
		for t := 0; t <= 4; t++ {
			if t == tone {
				continue
			}
			variant := append([]string(nil), syllables...)
			variant[i] = WithTone(plain, t)
			s := strings.Join(variant, " ")
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}
