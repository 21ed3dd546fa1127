package store

import (
	"context"
	"errors"

	"vrptw/internal/model"
)

// Store is the persistence interface used by the API server: uploaded
// instances and the solutions computed for them.
type Store interface {
	// Instances
	CreateInstance(ctx context.Context, inst model.Instance) (string, error)
	GetInstance(ctx context.Context, id string) (model.Instance, error)
	ListInstances(ctx context.Context, cursor string, limit int) ([]model.Instance, string, error)

	// Solutions
	CreateSolution(ctx context.Context, sol model.SolutionOut) (string, error)
	GetSolution(ctx context.Context, id string) (model.SolutionOut, error)
	ListSolutions(ctx context.Context, instanceID, cursor string, limit int) ([]model.SolutionOut, string, error)
	// BestSolution returns the lowest-distance solution for an instance.
	BestSolution(ctx context.Context, instanceID string) (model.SolutionOut, error)

	Ping(ctx context.Context) error
}

var ErrNotFound = errors.New("not found")
