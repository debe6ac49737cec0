package journey

import "math/rand/v2"

// WeightedType is one option in a stage's question-type distribution.
type WeightedType struct {
	Type   QuestionType `json:"type"`
	Weight float64      `json:"weight"`
}

// Stage is a closed mastery interval with its question-type distribution.
type Stage struct {
	Number        int            `json:"stage"`
	MasteryMin    float64        `json:"masteryMin"`
	MasteryMax    float64        `json:"masteryMax"`
	QuestionTypes []WeightedType `json:"questionTypes"`
}

// Contains reports whether mastery lies in [MasteryMin, MasteryMax].
func (s Stage) Contains(mastery float64) bool {
	return mastery >= s.MasteryMin && mastery <= s.MasteryMax
}

// TotalWeight sums the option weights.
func (s Stage) TotalWeight() float64 {
	var total float64
	for _, o := range s.QuestionTypes {
		total += o.Weight
	}
	return total
}

// Journey is the ordered list of mastery stages.
type Journey struct {
	Version string  `json:"version"`
	Stages  []Stage `json:"stages"`
}

// StageFor returns the first stage, in declaration order, whose interval
// contains mastery. Shared boundaries therefore belong to the earlier stage.
func (j *Journey) StageFor(mastery float64) (Stage, bool) {
	for _, s := range j.Stages {
		if s.Contains(mastery) {
			return s, true
		}
	}
	return Stage{}, false
}

// ChooseQuestionType draws a question type from the stage's weighted
// distribution. A draw r in [0, total) walks the options in order and picks
// the first one that brings the remainder to zero or below. Degenerate
// weights pick the first option; an empty stage yields a flashcard.
func ChooseQuestionType(stage Stage, rng *rand.Rand) QuestionType {
	if len(stage.QuestionTypes) == 0 {
		return Flashcard
	}

	total := stage.TotalWeight()
	if total <= 0 {
		return stage.QuestionTypes[0].Type.Visible()
	}

	r := rng.Float64() * total
	for _, o := range stage.QuestionTypes {
		r -= o.Weight
		if r <= 0 {
			return o.Type.Visible()
		}
	}
	// Float drift can leave a sliver of remainder after the last option.
	return stage.QuestionTypes[len(stage.QuestionTypes)-1].Type.Visible()
}

// Resolve picks the question type for a word at the given mastery,
// falling back to a flashcard when no stage matches.
func (j *Journey) Resolve(mastery float64, rng *rand.Rand) QuestionType {
	stage, ok := j.StageFor(mastery)
	if !ok {
		return Flashcard
	}
	return ChooseQuestionType(stage, rng)
}
