package predictlog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"zooguide/pkg/models"
)

type Repo struct {
	DB    *sql.DB
	Table string
}

// NewRepo expects the table to exist already (see database.Migrate).
func NewRepo(db *sql.DB, table string) *Repo {
	return &Repo{DB: db, Table: table}
}

func (r *Repo) Append(ctx context.Context, ev models.PredictionEvent) error {
	var (
		count                   int
		topTag, matched, animal sql.NullString
		summary, kind, message  sql.NullString
		topProb                 sql.NullFloat64
	)

	switch o := ev.Outcome.(type) {
	case models.PredictionSuccess:
		count = o.PredictionCount
		if o.PredictionCount > 0 {
			topTag = nullString(o.TopTag)
			topProb = sql.NullFloat64{Float64: o.TopConfidence, Valid: true}
		}
		matched = nullString(o.MatchedTag)
		animal = nullString(o.AnimalName)
		if !animal.Valid {
			animal = nullString(models.NoMatchName)
		}
		summary = nullString(o.Summary)
	case models.PredictionFailure:
		count = o.PredictionCount
		summary = nullString(o.Summary)
		kind = nullString(o.ErrorKind)
		message = nullString(o.ErrorMessage)
	default:
		return fmt.Errorf("append event %s: unknown outcome %T", ev.ID, ev.Outcome)
	}

	_, err := r.DB.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (
			partition_key, row_key, timestamp_ms, anonymous_id, outcome,
			prediction_count, top_tag, top_probability, matched_tag, animal_name,
			predictions, error_kind, error_message
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.Table),
		ev.Partition, ev.ID, ev.Timestamp.UnixMilli(), ev.AnonymousID, models.OutcomeName(ev.Outcome),
		count, topTag, topProb, matched, animal,
		summary, kind, message,
	)
	if err != nil {
		return fmt.Errorf("insert prediction event: %w", err)
	}
	return nil
}

// ListSince returns success events at or after since whose top probability
// is at least minConfidence, oldest first.
func (r *Repo) ListSince(ctx context.Context, since time.Time, minConfidence float64) ([]models.PredictionEvent, error) {
	return r.query(ctx, fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE timestamp_ms >= ? AND outcome = ? AND top_probability >= ?
		ORDER BY timestamp_ms ASC, row_key ASC
	`, selectColumns, r.Table), since.UnixMilli(), models.OutcomeSuccess, minConfidence)
}

// ListPartition returns every event logged for one calendar day.
func (r *Repo) ListPartition(ctx context.Context, partition string) ([]models.PredictionEvent, error) {
	return r.query(ctx, fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE partition_key = ?
		ORDER BY timestamp_ms ASC, row_key ASC
	`, selectColumns, r.Table), partition)
}

const selectColumns = `partition_key, row_key, timestamp_ms, anonymous_id, outcome,
	prediction_count, top_tag, top_probability, matched_tag, animal_name,
	predictions, error_kind, error_message`

func (r *Repo) query(ctx context.Context, q string, args ...any) ([]models.PredictionEvent, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query prediction events: %w", err)
	}
	defer rows.Close()

	var out []models.PredictionEvent
	for rows.Next() {
		var (
			ev                      models.PredictionEvent
			ts                      int64
			outcome                 string
			count                   int
			topTag, matched, animal sql.NullString
			summary, kind, message  sql.NullString
			topProb                 sql.NullFloat64
		)
		if err := rows.Scan(
			&ev.Partition, &ev.ID, &ts, &ev.AnonymousID, &outcome,
			&count, &topTag, &topProb, &matched, &animal,
			&summary, &kind, &message,
		); err != nil {
			return nil, fmt.Errorf("scan prediction event: %w", err)
		}
		ev.Timestamp = time.UnixMilli(ts).UTC()

		switch outcome {
		case models.OutcomeFailure:
			ev.Outcome = models.PredictionFailure{
				PredictionCount: count,
				Summary:         summary.String,
				ErrorKind:       kind.String,
				ErrorMessage:    message.String,
			}
		default:
			ev.Outcome = models.PredictionSuccess{
				PredictionCount: count,
				TopTag:          topTag.String,
				TopConfidence:   topProb.Float64,
				MatchedTag:      matched.String,
				AnimalName:      animal.String,
				Summary:         summary.String,
			}
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
