package solver

import (
	"math"

	"vrptw/internal/model"
)

// constructRoute grows a single capacity- and time-feasible route from
// pool with Solomon's I1 rule: every remaining customer is scored by its
// cheapest feasible insertion (min c1 over the route's edges), and the
// customer with the highest selection priority (max c2) is inserted. The
// loop stops when no customer has a feasible insertion.
//
// The returned leftover is disjoint from the route; together they hold
// exactly the customers of pool. Ties resolve to the first candidate in
// pool order, so the result is deterministic for a fixed pool ordering.
func constructRoute(pool []int, capacity int, m Matrix, customers []model.Customer, p Params, rule SeedRule) (route, leftover []int) {
	if len(pool) == 0 {
		return nil, nil
	}
	rest := append([]int(nil), pool...)

	// Seed with the farthest or most urgent customer. A seed that cannot
	// be serviced even alone can never be routed; set it aside and try the
	// next one.
	var dead []int
	seed := -1
	for len(rest) > 0 {
		s := pickSeed(rest, m, customers, rule)
		rest = removeCustomer(rest, s)
		if checkTimeWindows([]int{s}, m, customers) {
			seed = s
			break
		}
		dead = append(dead, s)
	}
	if seed < 0 {
		return nil, dead
	}

	route = []int{seed}
	load := customers[seed].Demand

	for {
		bestU, bestI, bestJ := -1, depot, depot
		bestC2 := math.Inf(-1)
		for _, u := range rest {
			if load+customers[u].Demand > capacity {
				continue
			}
			// Cheapest feasible edge for u, depot edges included.
			c1Best := math.Inf(1)
			uI, uJ := depot, depot
			found := false
			prev := depot
			for k := 0; k <= len(route); k++ {
				next := depot
				if k < len(route) {
					next = route[k]
				}
				cand := insertOnEdge(route, u, prev, next)
				if checkTimeWindows(cand, m, customers) {
					c1 := p.Alpha1*c11(prev, u, next, m, p.Mu) + p.Alpha2*c12(u, next, route, m, customers)
					if c1 < c1Best {
						c1Best, uI, uJ = c1, prev, next
						found = true
					}
				}
				prev = next
			}
			if !found {
				continue
			}
			if c2 := p.Lambda*m[depot][u] - c1Best; c2 > bestC2 {
				bestU, bestI, bestJ = u, uI, uJ
				bestC2 = c2
			}
		}
		if bestU < 0 {
			break
		}
		route = insertOnEdge(route, bestU, bestI, bestJ)
		rest = removeCustomer(rest, bestU)
		load += customers[bestU].Demand
	}

	return route, append(rest, dead...)
}

func pickSeed(pool []int, m Matrix, customers []model.Customer, rule SeedRule) int {
	seed := pool[0]
	switch rule {
	case SeedEarliestDue:
		for _, c := range pool[1:] {
			if customers[c].DueDate < customers[seed].DueDate {
				seed = c
			}
		}
	default:
		for _, c := range pool[1:] {
			if m[depot][c] > m[depot][seed] {
				seed = c
			}
		}
	}
	return seed
}

func removeCustomer(pool []int, c int) []int {
	for i, v := range pool {
		if v == c {
			return append(pool[:i], pool[i+1:]...)
		}
	}
	return pool
}

// allCustomers returns the indices 1..n-1, the initial unrouted pool.
func allCustomers(customers []model.Customer) []int {
	pool := make([]int, 0, len(customers)-1)
	for i := 1; i < len(customers); i++ {
		pool = append(pool, i)
	}
	return pool
}
