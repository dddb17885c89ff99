package gormrepo

import (
	"context"
	"encoding/json"

	"gridplan/internal/adapter/repo/gorm/model"
	"gridplan/internal/app/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EventRepo struct {
	db *gorm.DB
}

func NewEventRepo(db *gorm.DB) EventRepo {
	return EventRepo{db: db}
}

func (r EventRepo) Append(ctx context.Context, runID string, events []ports.SessionEvent) error {
	if len(events) == 0 {
		return nil
	}
	rows := make([]model.SessionEvent, 0, len(events))
	for _, e := range events {
		payload := e.Payload
		if payload == nil {
			payload = map[string]any{}
		}
		b, _ := json.Marshal(payload)
		rows = append(rows, model.SessionEvent{
			RunID:      runID,
			Type:       e.Type,
			Step:       int32(e.Step),
			OccurredAt: e.OccurredAt,
			Payload:    b,
		})
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// ListByRunID returns events in the order they were appended.
func (r EventRepo) ListByRunID(ctx context.Context, runID string, limit int) ([]ports.SessionEvent, error) {
	rows := []model.SessionEvent{}
	query := r.db.WithContext(ctx).
		Where(&model.SessionEvent{RunID: runID}).
		Clauses(clause.OrderBy{
			Columns: []clause.OrderByColumn{{Column: clause.Column{Name: "id"}}},
		})
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ports.ErrNotFound
	}

	out := make([]ports.SessionEvent, 0, len(rows))
	for _, row := range rows {
		var payload map[string]any
		if len(row.Payload) > 0 {
			_ = json.Unmarshal(row.Payload, &payload)
		}
		out = append(out, ports.SessionEvent{
			Type:       row.Type,
			Step:       int(row.Step),
			OccurredAt: row.OccurredAt,
			Payload:    payload,
		})
	}
	return out, nil
}
