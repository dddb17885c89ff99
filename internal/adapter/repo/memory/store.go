package memory

import (
	"sync"

	"gridplan/internal/app/ports"
)

type Store struct {
	mu     sync.RWMutex
	runs   map[string]ports.RunRecord
	order  []string
	events map[string][]ports.SessionEvent
}

func NewStore() *Store {
	return &Store{
		runs:   make(map[string]ports.RunRecord),
		events: make(map[string][]ports.SessionEvent),
	}
}
