package model

import "time"

const TableNameSolveRun = "solve_runs"

// SolveRun mapped from table <solve_runs>
type SolveRun struct {
	ID         string    `gorm:"column:id;primaryKey" json:"id"`
	LevelName  string    `gorm:"column:level_name;not null" json:"level_name"`
	Domain     string    `gorm:"column:domain;not null" json:"domain"`
	LevelText  string    `gorm:"column:level_text;not null" json:"level_text"`
	Status     string    `gorm:"column:status;not null" json:"status"`
	Strategy   string    `gorm:"column:strategy;not null" json:"strategy"`
	Actions    []byte    `gorm:"column:actions;type:jsonb;not null" json:"actions"`
	Length     int32     `gorm:"column:length;not null" json:"length"`
	Explored   int32     `gorm:"column:explored;not null" json:"explored"`
	Generated  int32     `gorm:"column:generated;not null" json:"generated"`
	Helpers    int32     `gorm:"column:helpers;not null" json:"helpers"`
	DurationMs int64     `gorm:"column:duration_ms;not null" json:"duration_ms"`
	Error      string    `gorm:"column:error;not null" json:"error"`
	CreatedAt  time.Time `gorm:"column:created_at;not null;default:now()" json:"created_at"`
}

// TableName SolveRun's table name
func (*SolveRun) TableName() string {
	return TableNameSolveRun
}
