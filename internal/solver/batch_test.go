package solver

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vrptw/internal/model"
)

func TestBestRunPicksLowestDistance(t *testing.T) {
	customers := testCustomers(10000,
		model.Customer{X: 2, Y: 9, Demand: 3, DueDate: 300, Service: 5},
		model.Customer{X: 8, Y: 1, Demand: 4, DueDate: 300, Service: 5},
		model.Customer{X: 5, Y: 5, Demand: 2, DueDate: 300, Service: 5},
		model.Customer{X: -4, Y: 6, Demand: 6, DueDate: 300, Service: 5},
	)
	m := NewMatrix(customers)
	prob := model.Problem{ID: "t", Vehicles: 4, Capacity: 10}

	best, err := BestRun(prob, customers, m, AlgoInsertion, 10, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Equal(t, AlgoInsertion, best.Algorithm)
	assert.Positive(t, best.Distance)

	// No single configuration may beat the reported best.
	for _, p := range DefaultI1Params {
		for _, rule := range []SeedRule{SeedFarthest, SeedEarliestDue} {
			sol, err := SolveInsertion(prob, customers, m, p, rule)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, sol.Distance(m)+1e-9, best.Distance)
		}
	}
}

func TestBestRunUnknownAlgorithm(t *testing.T) {
	customers := testCustomers(10000, model.Customer{X: 1, Y: 1, Demand: 1, DueDate: 100})
	m := NewMatrix(customers)
	_, err := BestRun(model.Problem{Capacity: 10}, customers, m, "magic", 10, rand.New(rand.NewSource(1)))
	assert.Error(t, err)
}

func TestBestRunAllAlgorithms(t *testing.T) {
	customers := clusteredCustomers()
	m := NewMatrix(customers)
	prob := model.Problem{ID: "t", Vehicles: 4, Capacity: 10}

	for _, algo := range []string{AlgoInsertion, AlgoKMeans, AlgoSweep, AlgoSavings, AlgoNearest} {
		best, err := BestRun(prob, customers, m, algo, 10, rand.New(rand.NewSource(9)))
		require.NoError(t, err, algo)
		routed := 0
		for _, route := range best.Solution.Routes {
			routed += len(route)
		}
		assert.Equal(t, len(customers)-1, routed, algo)
	}
}
