package ports

import (
	"context"

	"gridplan/internal/domain/grid"
)

// ServerChannel is the line protocol spoken with the environment server.
type ServerChannel interface {
	Hello(ctx context.Context, name string) error
	ReadLevel(ctx context.Context) (string, error)
	Send(ctx context.Context, joint grid.JointAction) ([]bool, error)
}
