package store

import (
	"context"

	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table names.
const (
	tableKV         = "kv_entries"
	tableAnswers    = "answer_events"
	tableSessions   = "session_events"
	tableMilestones = "milestone_events"
	tableLLM        = "llm_request_events"
)

// eventColumns returns the columns every event table shares: an auto
// increment id, the global sequence number and the wall-clock timestamp.
func eventColumns(extra ...*schema.Column) []*schema.Column {
	cols := []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "sequence", Type: field.TypeInt64, Unique: true},
		{Name: "timestamp", Type: field.TypeTime},
	}
	return append(cols, extra...)
}

func eventTable(name string, extra ...*schema.Column) *schema.Table {
	cols := eventColumns(extra...)
	return &schema.Table{
		Name:       name,
		Columns:    cols,
		PrimaryKey: []*schema.Column{cols[0]},
		Indexes: []*schema.Index{
			{Name: name + "_timestamp", Columns: []*schema.Column{cols[2]}},
		},
	}
}

var (
	kvColumns = []*schema.Column{
		{Name: "name", Type: field.TypeString, Unique: true},
		{Name: "value", Type: field.TypeString, Size: 2147483647},
		{Name: "updated_at", Type: field.TypeTime},
	}
	kvTable = &schema.Table{
		Name:       tableKV,
		Columns:    kvColumns,
		PrimaryKey: []*schema.Column{kvColumns[0]},
	}

	answersTable = eventTable(tableAnswers,
		&schema.Column{Name: "session_id", Type: field.TypeString},
		&schema.Column{Name: "deck_id", Type: field.TypeString},
		&schema.Column{Name: "word_id", Type: field.TypeString},
		&schema.Column{Name: "question_type", Type: field.TypeString},
		&schema.Column{Name: "correct", Type: field.TypeBool},
		&schema.Column{Name: "delta", Type: field.TypeFloat64},
		&schema.Column{Name: "mastery", Type: field.TypeFloat64},
	)

	sessionsTable = eventTable(tableSessions,
		&schema.Column{Name: "session_id", Type: field.TypeString},
		&schema.Column{Name: "deck_id", Type: field.TypeString},
		&schema.Column{Name: "action", Type: field.TypeString},
		&schema.Column{Name: "kind", Type: field.TypeString, Default: "practice"},
		&schema.Column{Name: "items_planned", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "items_answered", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "correct_answers", Type: field.TypeInt, Default: 0},
		&schema.Column{Name: "words_mastered", Type: field.TypeInt, Default: 0},
	)

	milestonesTable = eventTable(tableMilestones,
		&schema.Column{Name: "kind", Type: field.TypeString},
		&schema.Column{Name: "subject", Type: field.TypeString},
		&schema.Column{Name: "detail", Type: field.TypeString, Default: ""},
	)

	llmTable = eventTable(tableLLM,
		&schema.Column{Name: "provider", Type: field.TypeString},
		&schema.Column{Name: "model", Type: field.TypeString},
		&schema.Column{Name: "purpose", Type: field.TypeString},
		&schema.Column{Name: "input_tokens", Type: field.TypeInt},
		&schema.Column{Name: "output_tokens", Type: field.TypeInt},
		&schema.Column{Name: "latency_ms", Type: field.TypeInt64},
		&schema.Column{Name: "success", Type: field.TypeBool},
		&schema.Column{Name: "error_message", Type: field.TypeString, Default: ""},
		&schema.Column{Name: "request_body", Type: field.TypeString, Size: 2147483647, Default: ""},
		&schema.Column{Name: "response_body", Type: field.TypeString, Size: 2147483647, Default: ""},
	)

	// tables lists every table managed by auto-migration.
	tables = []*schema.Table{
		kvTable,
		answersTable,
		sessionsTable,
		milestonesTable,
		llmTable,
	}
)

// migrate creates or upgrades all tables.
func migrate(ctx context.Context, drv *entsql.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return err
	}
	return m.Create(ctx, tables...)
}
