package journey

// QuestionType identifies how a word is presented.
type QuestionType string

// Visible question types. Every type handed to a session is one of these.
const (
	Flashcard      QuestionType = "flashcard"
	MultipleChoice QuestionType = "multipleChoice"
	Construction   QuestionType = "construction"
	Pinyin         QuestionType = "pinyin"
)

// Logical types that may appear in the journey table but have no
// presentation of their own yet. They are shown as multiple choice.
const (
	FillInBlank QuestionType = "fillInBlank"
	TrueOrFalse QuestionType = "trueOrFalse"
	Speaking    QuestionType = "speaking"
)

// VisibleTypes lists the question types a session can contain.
var VisibleTypes = []QuestionType{Flashcard, MultipleChoice, Construction, Pinyin}

// Visible maps a logical type to the type actually presented.
func (q QuestionType) Visible() QuestionType {
	switch q {
	case Flashcard, MultipleChoice, Construction, Pinyin:
		return q
	default:
		return MultipleChoice
	}
}

// IsQuizFamily reports whether answers of this type are scored with the quiz
// anchors. Flashcards are the only self-graded type.
func (q QuestionType) IsQuizFamily() bool {
	return q != Flashcard
}

func (q QuestionType) String() string { return string(q) }

// Label returns a short human-readable name.
func (q QuestionType) Label() string {
	switch q.Visible() {
	case Flashcard:
		return "Flashcard"
	case Construction:
		return "Build the word"
	case Pinyin:
		return "Pinyin"
	default:
		return "Multiple choice"
	}
}
