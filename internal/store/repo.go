package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// AnswerEventData captures one scored answer.
type AnswerEventData struct {
	SessionID    string
	DeckID       string
	WordID       string
	QuestionType string
	Correct      bool
	Delta        float64
	Mastery      float64 // mastery after the delta was applied
}

// AnswerEventRecord is a persisted answer event.
type AnswerEventRecord struct {
	AnswerEventData
	Sequence  int64
	Timestamp time.Time
}

// Session actions.
const (
	SessionStart     = "start"
	SessionComplete  = "complete"
	SessionAbandoned = "abandon"
)

// SessionEventData captures a session lifecycle transition.
type SessionEventData struct {
	SessionID      string
	DeckID         string
	Action         string // start, complete, abandon
	Kind           string // practice or exam
	ItemsPlanned   int
	ItemsAnswered  int
	CorrectAnswers int
	WordsMastered  int
}

// SessionSummaryRecord is a finished (completed or abandoned) session.
type SessionSummaryRecord struct {
	SessionEventData
	Sequence  int64
	Timestamp time.Time
}

// Milestone kinds.
const (
	MilestoneDeckMastered = "deck_mastered"
	MilestoneDeckReset    = "deck_reset"
	MilestoneBadgeAwarded = "badge_awarded"
	MilestoneExamFailed   = "exam_failed"
)

// MilestoneEventData records a progression milestone.
type MilestoneEventData struct {
	Kind    string
	Subject string // deck id or category
	Detail  string
}

// MilestoneEventRecord is a persisted milestone.
type MilestoneEventRecord struct {
	MilestoneEventData
	Sequence  int64
	Timestamp time.Time
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEventRecord is a persisted LLM request.
type LLMRequestEventRecord struct {
	ID int
	LLMRequestEventData
	Sequence  int64
	Timestamp time.Time
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	AppendAnswerEvent(ctx context.Context, data AnswerEventData) error
	AppendSessionEvent(ctx context.Context, data SessionEventData) error
	AppendMilestoneEvent(ctx context.Context, data MilestoneEventData) error
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	QueryAnswerEvents(ctx context.Context, opts QueryOpts) ([]AnswerEventRecord, error)
	QuerySessionSummaries(ctx context.Context, opts QueryOpts) ([]SessionSummaryRecord, error)
	QueryMilestones(ctx context.Context, opts QueryOpts) ([]MilestoneEventRecord, error)
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEventRecord, error)

	// WordAccuracy returns the share of correct answers for a word and the
	// number of answers it is based on.
	WordAccuracy(ctx context.Context, wordID string) (float64, int, error)
}
