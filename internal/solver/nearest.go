package solver

import (
	"math"

	"vrptw/internal/model"
)

// NNParams weight the time-oriented closeness measure: Delta1 the spatial
// distance, Delta2 the idle-time gap, Delta3 the urgency slack.
type NNParams struct {
	Delta1 float64 `json:"delta1"`
	Delta2 float64 `json:"delta2"`
	Delta3 float64 `json:"delta3"`
}

// SolveNearest is Solomon's time-oriented nearest neighbor: routes grow by
// appending, at every step, the feasible unrouted customer closest to the
// current route end. Like the savings merge it bypasses the insertion
// engine and shares only the feasibility oracle.
func SolveNearest(prob model.Problem, customers []model.Customer, m Matrix, p NNParams) (Solution, error) {
	var sol Solution
	pool := allCustomers(customers)

	for len(pool) > 0 {
		var route []int
		load := 0
		for {
			last := depot
			if len(route) > 0 {
				last = route[len(route)-1]
			}
			// Departure time from the route's current end.
			depart := customers[depot].ReadyTime
			if last != depot {
				depart = beginTime(last, route, m, customers) + customers[last].Service
			}

			best := -1
			bestCost := math.Inf(1)
			for _, u := range pool {
				if load+customers[u].Demand > prob.Capacity {
					continue
				}
				cand := append(append([]int(nil), route...), u)
				if !checkTimeWindows(cand, m, customers) {
					continue
				}
				gap := beginTime(u, cand, m, customers) - depart         // travel plus waiting
				slack := customers[u].DueDate - (depart + m[last][u])    // urgency
				cost := p.Delta1*m[last][u] + p.Delta2*gap + p.Delta3*slack
				if cost < bestCost {
					best, bestCost = u, cost
				}
			}
			if best < 0 {
				break
			}
			route = append(route, best)
			load += customers[best].Demand
			pool = removeCustomer(pool, best)
		}
		if len(route) == 0 {
			// Nothing in the pool can even open a route.
			sol.Unrouted = pool
			return sol, ErrStalled
		}
		sol.Routes = append(sol.Routes, route)
	}
	return sol, nil
}
