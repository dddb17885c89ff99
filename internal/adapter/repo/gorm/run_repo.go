package gormrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gridplan/internal/adapter/repo/gorm/model"
	"gridplan/internal/app/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RunRepo struct {
	db *gorm.DB
}

func NewRunRepo(db *gorm.DB) RunRepo {
	return RunRepo{db: db}
}

func (r RunRepo) Save(ctx context.Context, run ports.RunRecord) error {
	actions := run.Actions
	if actions == nil {
		actions = []string{}
	}
	actionsJSON, err := json.Marshal(actions)
	if err != nil {
		return err
	}
	m := model.SolveRun{
		ID:         run.ID,
		LevelName:  run.LevelName,
		Domain:     run.Domain,
		LevelText:  run.LevelText,
		Status:     string(run.Status),
		Strategy:   run.Strategy,
		Actions:    actionsJSON,
		Length:     int32(run.Length),
		Explored:   int32(run.Explored),
		Generated:  int32(run.Generated),
		Helpers:    int32(run.Helpers),
		DurationMs: run.Duration.Milliseconds(),
		Error:      run.Error,
		CreatedAt:  run.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: run %s already exists", ports.ErrConflict, run.ID)
		}
		return err
	}
	return nil
}

func (r RunRepo) GetByID(ctx context.Context, id string) (ports.RunRecord, error) {
	var m model.SolveRun
	err := r.db.WithContext(ctx).Where(&model.SolveRun{ID: id}).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.RunRecord{}, ports.ErrNotFound
		}
		return ports.RunRecord{}, err
	}
	return toRunRecord(m), nil
}

// List returns the newest runs first.
func (r RunRepo) List(ctx context.Context, limit int) ([]ports.RunRecord, error) {
	rows := []model.SolveRun{}
	query := r.db.WithContext(ctx).
		Clauses(clause.OrderBy{
			Columns: []clause.OrderByColumn{{Column: clause.Column{Name: "created_at"}, Desc: true}},
		})
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]ports.RunRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, toRunRecord(row))
	}
	return out, nil
}

func toRunRecord(m model.SolveRun) ports.RunRecord {
	var actions []string
	_ = json.Unmarshal(m.Actions, &actions)
	return ports.RunRecord{
		ID:        m.ID,
		LevelName: m.LevelName,
		Domain:    m.Domain,
		LevelText: m.LevelText,
		Status:    ports.RunStatus(m.Status),
		Strategy:  m.Strategy,
		Actions:   actions,
		Length:    int(m.Length),
		Explored:  int(m.Explored),
		Generated: int(m.Generated),
		Helpers:   int(m.Helpers),
		Duration:  time.Duration(m.DurationMs) * time.Millisecond,
		Error:     m.Error,
		CreatedAt: m.CreatedAt,
	}
}
