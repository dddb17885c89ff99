package model

import "time"

const TableNameSessionEvent = "session_events"

// SessionEvent mapped from table <session_events>
type SessionEvent struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement:true" json:"id"`
	RunID      string    `gorm:"column:run_id;not null" json:"run_id"`
	Type       string    `gorm:"column:type;not null" json:"type"`
	Step       int32     `gorm:"column:step;not null" json:"step"`
	OccurredAt time.Time `gorm:"column:occurred_at;not null" json:"occurred_at"`
	Payload    []byte    `gorm:"column:payload;type:jsonb;not null" json:"payload"`
}

// TableName SessionEvent's table name
func (*SessionEvent) TableName() string {
	return TableNameSessionEvent
}
