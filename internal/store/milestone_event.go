package store

import (
	"context"
	"fmt"
)

func (r *eventRepo) AppendMilestoneEvent(ctx context.Context, data MilestoneEventData) error {
	return r.insertEvent(ctx, tableMilestones,
		[]string{"kind", "subject", "detail"},
		[]any{data.Kind, data.Subject, data.Detail},
	)
}

func (r *eventRepo) QueryMilestones(ctx context.Context, opts QueryOpts) ([]MilestoneEventRecord, error) {
	query, args := selectEvents(tableMilestones, opts, "kind", "subject", "detail").Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query milestones: %w", err)
	}
	defer rows.Close()

	var records []MilestoneEventRecord
	for rows.Next() {
		var rec MilestoneEventRecord
		if err := rows.Scan(&rec.Sequence, &rec.Timestamp, &rec.Kind, &rec.Subject, &rec.Detail); err != nil {
			return nil, fmt.Errorf("scan milestone: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
