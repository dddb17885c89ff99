package replay

import "gridplan/internal/app/ports"

type Request struct {
	RunID string
	Limit int
}

type Step struct {
	Index     int    `json:"index"`
	Action    string `json:"action"`
	GoalsLeft int    `json:"goals_left"`
}

type Response struct {
	RunID     string               `json:"run_id"`
	LevelName string               `json:"level_name"`
	Status    ports.RunStatus      `json:"status"`
	Solved    bool                 `json:"solved"`
	Steps     []Step               `json:"steps"`
	Final     string               `json:"final"`
	Events    []ports.SessionEvent `json:"events,omitempty"`
}
