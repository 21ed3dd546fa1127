package solver

import (
	"errors"

	"vrptw/internal/model"
)

// ErrStalled reports a construction round that routed zero customers. The
// remaining pool can never be placed; callers get the partial solution
// with Unrouted set rather than an endless repartitioning loop.
var ErrStalled = errors.New("solver: construction stalled with customers unrouted")

// Solution is an ordered collection of routes plus any customers that
// could not be placed. Routes store customer indices only; the depot is
// implicit at both ends. Unrouted is empty on success.
type Solution struct {
	Routes   [][]int
	Unrouted []int
}

// Vehicles is the number of routes, i.e. vehicles used.
func (s Solution) Vehicles() int { return len(s.Routes) }

// Distance sums consecutive-leg distances over all routes, both depot
// legs of each route included.
func (s Solution) Distance(m Matrix) float64 {
	total := 0.0
	for _, route := range s.Routes {
		prev := depot
		for _, c := range route {
			total += m[prev][c]
			prev = c
		}
		total += m[prev][depot]
	}
	return total
}

// Duration sums the full schedule length of every route, waiting and
// service time included, as simulated by the feasibility oracle.
func (s Solution) Duration(m Matrix, customers []model.Customer) float64 {
	total := 0.0
	for _, route := range s.Routes {
		total += beginTime(depot, route, m, customers)
	}
	return total
}
