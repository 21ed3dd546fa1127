package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vrptw/internal/model"
)

var nnParams = NNParams{Delta1: 0.4, Delta2: 0.4, Delta3: 0.2}

func TestSolveNearestRoutesEveryone(t *testing.T) {
	customers := testCustomers(10000,
		model.Customer{X: 5, Y: 0, Demand: 2, DueDate: 500, Service: 5},
		model.Customer{X: 10, Y: 0, Demand: 2, DueDate: 500, Service: 5},
		model.Customer{X: 15, Y: 0, Demand: 2, DueDate: 500, Service: 5},
	)
	m := NewMatrix(customers)
	prob := model.Problem{ID: "t", Vehicles: 2, Capacity: 10}

	sol, err := SolveNearest(prob, customers, m, nnParams)
	require.NoError(t, err)
	assert.Empty(t, sol.Unrouted)
	assert.Equal(t, 1, sol.Vehicles())
	// Pure appending walks outward along the line.
	assert.Equal(t, []int{1, 2, 3}, sol.Routes[0])
}

func TestSolveNearestSplitsOnCapacity(t *testing.T) {
	customers := testCustomers(10000,
		model.Customer{X: 5, Y: 0, Demand: 6, DueDate: 500, Service: 5},
		model.Customer{X: 10, Y: 0, Demand: 6, DueDate: 500, Service: 5},
	)
	m := NewMatrix(customers)
	prob := model.Problem{ID: "t", Vehicles: 2, Capacity: 10}

	sol, err := SolveNearest(prob, customers, m, nnParams)
	require.NoError(t, err)
	assert.Equal(t, 2, sol.Vehicles())
}

func TestSolveNearestHonorsTimeWindows(t *testing.T) {
	customers := testCustomers(10000,
		model.Customer{X: 5, Y: 0, Demand: 1, ReadyTime: 0, DueDate: 8, Service: 2},
		model.Customer{X: 6, Y: 0, Demand: 1, ReadyTime: 0, DueDate: 8, Service: 2},
		model.Customer{X: 7, Y: 0, Demand: 1, ReadyTime: 0, DueDate: 8, Service: 2},
	)
	m := NewMatrix(customers)
	prob := model.Problem{ID: "t", Vehicles: 3, Capacity: 10}

	sol, err := SolveNearest(prob, customers, m, nnParams)
	require.NoError(t, err)
	for _, route := range sol.Routes {
		assert.True(t, checkTimeWindows(route, m, customers))
	}
}

func TestSolveNearestReportsUnserviceable(t *testing.T) {
	customers := testCustomers(10000,
		model.Customer{X: 5, Y: 0, Demand: 1, DueDate: 500},
		model.Customer{X: 9, Y: 9, Demand: 1, DueDate: 1},
	)
	m := NewMatrix(customers)
	prob := model.Problem{ID: "t", Vehicles: 2, Capacity: 10}

	sol, err := SolveNearest(prob, customers, m, nnParams)
	require.ErrorIs(t, err, ErrStalled)
	assert.Equal(t, []int{2}, sol.Unrouted)
}
