package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	kind := data.Kind
	if kind == "" {
		kind = "practice"
	}
	return r.insertEvent(ctx, tableSessions,
		[]string{"session_id", "deck_id", "action", "kind", "items_planned", "items_answered", "correct_answers", "words_mastered"},
		[]any{data.SessionID, data.DeckID, data.Action, kind, data.ItemsPlanned, data.ItemsAnswered, data.CorrectAnswers, data.WordsMastered},
	)
}

func (r *eventRepo) AppendAnswerEvent(ctx context.Context, data AnswerEventData) error {
	return r.insertEvent(ctx, tableAnswers,
		[]string{"session_id", "deck_id", "word_id", "question_type", "correct", "delta", "mastery"},
		[]any{data.SessionID, data.DeckID, data.WordID, data.QuestionType, data.Correct, data.Delta, data.Mastery},
	)
}

func (r *eventRepo) QueryAnswerEvents(ctx context.Context, opts QueryOpts) ([]AnswerEventRecord, error) {
	query, args := selectEvents(tableAnswers, opts,
		"session_id", "deck_id", "word_id", "question_type", "correct", "delta", "mastery",
	).Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query answer events: %w", err)
	}
	defer rows.Close()

	var records []AnswerEventRecord
	for rows.Next() {
		var rec AnswerEventRecord
		if err := rows.Scan(
			&rec.Sequence, &rec.Timestamp,
			&rec.SessionID, &rec.DeckID, &rec.WordID, &rec.QuestionType,
			&rec.Correct, &rec.Delta, &rec.Mastery,
		); err != nil {
			return nil, fmt.Errorf("scan answer event: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *eventRepo) QuerySessionSummaries(ctx context.Context, opts QueryOpts) ([]SessionSummaryRecord, error) {
	sel := selectEvents(tableSessions, opts,
		"session_id", "deck_id", "action", "kind", "items_planned", "items_answered", "correct_answers", "words_mastered",
	)
	sel.Where(entsql.In("action", SessionComplete, SessionAbandoned))
	query, args := sel.Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query session summaries: %w", err)
	}
	defer rows.Close()

	var records []SessionSummaryRecord
	for rows.Next() {
		var rec SessionSummaryRecord
		if err := rows.Scan(
			&rec.Sequence, &rec.Timestamp,
			&rec.SessionID, &rec.DeckID, &rec.Action, &rec.Kind,
			&rec.ItemsPlanned, &rec.ItemsAnswered, &rec.CorrectAnswers, &rec.WordsMastered,
		); err != nil {
			return nil, fmt.Errorf("scan session event: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *eventRepo) WordAccuracy(ctx context.Context, wordID string) (float64, int, error) {
	query, args := entsql.Dialect(dialect.SQLite).
		Select(entsql.Count("*"), "COALESCE(SUM(correct), 0)").
		From(entsql.Table(tableAnswers)).
		Where(entsql.EQ("word_id", wordID)).
		Query()

	var total, correct int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total, &correct); err != nil {
		return 0, 0, fmt.Errorf("query word accuracy: %w", err)
	}
	if total == 0 {
		return 0, 0, nil
	}
	return float64(correct) / float64(total), total, nil
}
