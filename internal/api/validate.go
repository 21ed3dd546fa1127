package api

import (
	"fmt"

	"vrptw/internal/model"
	"vrptw/internal/solver"
)

const AlgoBest = "best"

var knownAlgorithms = map[string]struct{}{
	AlgoBest:             {},
	solver.AlgoInsertion: {},
	solver.AlgoKMeans:    {},
	solver.AlgoSweep:     {},
	solver.AlgoSavings:   {},
	solver.AlgoNearest:   {},
}

// validateSolveRequest checks a request and fills defaults in place.
func validateSolveRequest(req *model.SolveRequest) error {
	if req.InstanceID == "" {
		return fmt.Errorf("instanceId required")
	}
	if req.Algorithm == "" {
		req.Algorithm = AlgoBest
	}
	if _, ok := knownAlgorithms[req.Algorithm]; !ok {
		return fmt.Errorf("invalid algorithm: %s (allowed: best, insertion, kmeans, sweep, savings, nearest)", req.Algorithm)
	}
	switch req.SeedRule {
	case "", "farthest", "earliest-due":
	default:
		return fmt.Errorf("invalid seedRule: %s (allowed: farthest, earliest-due)", req.SeedRule)
	}
	if req.Mu < 0 || req.Lambda < 0 || req.Alpha1 < 0 || req.Alpha2 < 0 {
		return fmt.Errorf("mu, lambda, alpha1, alpha2 must be >= 0")
	}
	if req.MaxWait < 0 {
		return fmt.Errorf("maxWait must be >= 0")
	}
	if len(req.Deltas) > 0 && len(req.Deltas) != 3 {
		return fmt.Errorf("deltas must have length 3")
	}
	for _, d := range req.Deltas {
		if d < 0 {
			return fmt.Errorf("deltas must be >= 0")
		}
	}
	// An all-zero weighting row means "use the defaults".
	if req.Mu == 0 && req.Lambda == 0 && req.Alpha1 == 0 && req.Alpha2 == 0 {
		req.Mu, req.Lambda, req.Alpha1, req.Alpha2 = 1, 2, 1, 0
	}
	if req.Algorithm == solver.AlgoSavings && req.MaxWait == 0 {
		req.MaxWait = 30
	}
	if req.Algorithm == solver.AlgoNearest && len(req.Deltas) == 0 {
		req.Deltas = []float64{0.4, 0.4, 0.2}
	}
	return nil
}

func seedRuleOf(req model.SolveRequest) solver.SeedRule {
	if req.SeedRule == "earliest-due" {
		return solver.SeedEarliestDue
	}
	return solver.SeedFarthest
}
