package solver

import "vrptw/internal/model"

// SolveInsertion is the plain sequential front-end: it runs the
// construction engine over the whole unrouted pool, one route at a time,
// until the pool is empty. The route count is not capped; prob.Vehicles is
// advisory only.
func SolveInsertion(prob model.Problem, customers []model.Customer, m Matrix, p Params, rule SeedRule) (Solution, error) {
	var sol Solution
	pool := allCustomers(customers)
	for len(pool) > 0 {
		route, leftover := constructRoute(pool, prob.Capacity, m, customers, p, rule)
		if len(route) == 0 {
			sol.Unrouted = leftover
			return sol, ErrStalled
		}
		sol.Routes = append(sol.Routes, route)
		pool = leftover
	}
	return sol, nil
}
