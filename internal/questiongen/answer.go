package questiongen

import (
	"strconv"
	"strings"

	"github.com/abhisek/hanzo/internal/journey"
)

// CheckAnswer compares the learner's response with the question.
//
//   - flashcard: the learner grades themselves; "y", "yes" or "1" is correct
//   - multiple choice and pinyin: a 1-based choice index or the choice text
//   - construction: the assembled characters, spaces ignored
func CheckAnswer(response string, q *Question) bool {
	response = strings.TrimSpace(response)
	if response == "" {
		return false
	}

	switch q.Type {
	case journey.Flashcard:
		switch strings.ToLower(response) {
		case "y", "yes", "1", "true":
			return true
		}
		return false

	case journey.Construction:
		return strings.Join(strings.Fields(response), "") == q.Answer

	default:
		if idx, err := strconv.Atoi(response); err == nil && idx >= 1 && idx <= len(q.Choices) {
			return q.Choices[idx-1] == q.Answer
		}
		return strings.EqualFold(response, strings.TrimSpace(q.Answer))
	}
}
