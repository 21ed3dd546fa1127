package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"vrptw/internal/model"
)

// Memory is a simple in-memory store used when no DATABASE_URL is set.
type Memory struct {
	mu          sync.Mutex
	instances   map[string]model.Instance
	instanceIDs []string // insertion order, backs cursor pagination
	solutions   map[string]model.SolutionOut
	solutionIDs []string
	byInstance  map[string][]string // instance id -> solution ids
}

func NewMemory() *Memory {
	return &Memory{
		instances:  map[string]model.Instance{},
		solutions:  map[string]model.SolutionOut{},
		byInstance: map[string][]string{},
	}
}

func (m *Memory) CreateInstance(_ context.Context, inst model.Instance) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if inst.ID == "" {
		inst.ID = uuid.New().String()
	}
	inst.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	m.instances[inst.ID] = inst
	m.instanceIDs = append(m.instanceIDs, inst.ID)
	return inst.ID, nil
}

func (m *Memory) GetInstance(_ context.Context, id string) (model.Instance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inst, ok := m.instances[id]
	if !ok {
		return model.Instance{}, ErrNotFound
	}
	return inst, nil
}

func (m *Memory) ListInstances(_ context.Context, cursor string, limit int) ([]model.Instance, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := m.instanceIDs
	start := 0
	if cursor != "" {
		for i, id := range ids {
			if id == cursor {
				start = i + 1
				break
			}
		}
	}
	if limit <= 0 {
		limit = 100
	}
	out := []model.Instance{}
	var next string
	for i := start; i < len(ids) && len(out) < limit; i++ {
		out = append(out, m.instances[ids[i]])
		next = ids[i]
	}
	if len(out) < limit {
		next = ""
	}
	return out, next, nil
}

func (m *Memory) CreateSolution(_ context.Context, sol model.SolutionOut) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sol.ID == "" {
		sol.ID = uuid.New().String()
	}
	sol.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	m.solutions[sol.ID] = sol
	m.solutionIDs = append(m.solutionIDs, sol.ID)
	m.byInstance[sol.InstanceID] = append(m.byInstance[sol.InstanceID], sol.ID)
	return sol.ID, nil
}

func (m *Memory) GetSolution(_ context.Context, id string) (model.SolutionOut, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sol, ok := m.solutions[id]
	if !ok {
		return model.SolutionOut{}, ErrNotFound
	}
	return sol, nil
}

func (m *Memory) ListSolutions(_ context.Context, instanceID, cursor string, limit int) ([]model.SolutionOut, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := m.solutionIDs
	if instanceID != "" {
		ids = m.byInstance[instanceID]
	}
	start := 0
	if cursor != "" {
		for i, id := range ids {
			if id == cursor {
				start = i + 1
				break
			}
		}
	}
	if limit <= 0 {
		limit = 100
	}
	out := []model.SolutionOut{}
	var next string
	for i := start; i < len(ids) && len(out) < limit; i++ {
		out = append(out, m.solutions[ids[i]])
		next = ids[i]
	}
	if len(out) < limit {
		next = ""
	}
	return out, next, nil
}

func (m *Memory) BestSolution(_ context.Context, instanceID string) (model.SolutionOut, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var best model.SolutionOut
	found := false
	for _, id := range m.byInstance[instanceID] {
		sol := m.solutions[id]
		if !found || sol.Distance < best.Distance {
			best = sol
			found = true
		}
	}
	if !found {
		return model.SolutionOut{}, ErrNotFound
	}
	return best, nil
}

func (m *Memory) Ping(context.Context) error { return nil }
