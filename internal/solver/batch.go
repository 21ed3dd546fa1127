package solver

import (
	"fmt"
	"math/rand"

	"vrptw/internal/model"
)

// The standard configuration tables swept by BestRun. The core never
// depends on these; they are inputs like any explicit parameter record.
var (
	// DefaultI1Params are the four classic I1 weightings, each tried with
	// both seed rules.
	DefaultI1Params = []Params{
		{Mu: 1, Lambda: 2, Alpha1: 1, Alpha2: 0},
		{Mu: 1, Lambda: 1, Alpha1: 1, Alpha2: 0},
		{Mu: 1, Lambda: 1, Alpha1: 0, Alpha2: 1},
		{Mu: 1, Lambda: 2, Alpha1: 0, Alpha2: 1},
	}
	// DefaultNNParams are the standard time-oriented NN weightings.
	DefaultNNParams = []NNParams{
		{Delta1: 0.4, Delta2: 0.4, Delta3: 0.2},
		{Delta1: 0.0, Delta2: 1.0, Delta3: 0.0},
		{Delta1: 0.5, Delta2: 0.5, Delta3: 0.0},
		{Delta1: 0.3, Delta2: 0.3, Delta3: 0.4},
	}
	// DefaultSavingsConfigs pair the savings mu with a waiting bound.
	DefaultSavingsConfigs = []struct {
		Mu      float64
		MaxWait float64
	}{
		{Mu: 1, MaxWait: 30}, {Mu: 1, MaxWait: 60},
		{Mu: 0.2, MaxWait: 30}, {Mu: 0.2, MaxWait: 60},
	}
)

// RunResult is one solver run of a configuration sweep.
type RunResult struct {
	Algorithm string
	Params    Params
	NN        NNParams
	Rule      SeedRule
	Solution  Solution
	Distance  float64
	Duration  float64
}

// BestRun sweeps the standard configurations of the named algorithm over
// one instance and returns the lowest-distance complete run. Runs that
// stall are skipped; if every configuration stalls, the last error is
// returned.
func BestRun(prob model.Problem, customers []model.Customer, m Matrix, algo string, kmeansIter int, rng *rand.Rand) (RunResult, error) {
	var best RunResult
	var lastErr error
	found := false

	record := func(r RunResult, sol Solution, err error) {
		if err != nil {
			lastErr = err
			return
		}
		r.Solution = sol
		r.Distance = sol.Distance(m)
		r.Duration = sol.Duration(m, customers)
		if !found || r.Distance < best.Distance {
			best = r
			found = true
		}
	}

	switch algo {
	case AlgoInsertion, AlgoKMeans, AlgoSweep:
		for _, p := range DefaultI1Params {
			for _, rule := range []SeedRule{SeedFarthest, SeedEarliestDue} {
				var sol Solution
				var err error
				switch algo {
				case AlgoInsertion:
					sol, err = SolveInsertion(prob, customers, m, p, rule)
				case AlgoKMeans:
					sol, err = SolveKMeans(prob, customers, m, p, rule, kmeansIter, rng)
				case AlgoSweep:
					sol, err = SolveSweep(prob, customers, m, p, rule)
				}
				record(RunResult{Algorithm: algo, Params: p, Rule: rule}, sol, err)
			}
		}
	case AlgoNearest:
		for _, p := range DefaultNNParams {
			sol, err := SolveNearest(prob, customers, m, p)
			record(RunResult{Algorithm: algo, NN: p}, sol, err)
		}
	case AlgoSavings:
		for _, cfg := range DefaultSavingsConfigs {
			sol, err := SolveSavings(prob, customers, m, cfg.Mu, cfg.MaxWait)
			record(RunResult{Algorithm: algo, Params: Params{Mu: cfg.Mu}}, sol, err)
		}
	default:
		return RunResult{}, fmt.Errorf("unknown algorithm: %s", algo)
	}

	if !found {
		if lastErr == nil {
			lastErr = ErrStalled
		}
		return RunResult{}, lastErr
	}
	return best, nil
}

// Algorithm names accepted by BestRun and the API.
const (
	AlgoInsertion = "insertion"
	AlgoKMeans    = "kmeans"
	AlgoSweep     = "sweep"
	AlgoSavings   = "savings"
	AlgoNearest   = "nearest"
)
