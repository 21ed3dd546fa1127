package solver

import (
	"sort"

	"vrptw/internal/model"
)

// savingsPair is a customer pair ranked by the Clarke-Wright measure
// d(0,i) + d(0,j) - mu*d(i,j).
type savingsPair struct {
	i, j    int
	saving  float64
	dropped bool
}

// SolveSavings builds routes with the parallel savings merge: the pair
// list is scanned in descending savings order, and a pair whose endpoint
// already sits at a route end absorbs its unrouted partner when capacity
// and time windows (with a per-stop waiting bound) allow. Customers the
// merge loop never places become singleton routes when serviceable alone,
// otherwise they are reported unrouted.
//
// This heuristic does not use the insertion engine; it only shares the
// feasibility oracle.
func SolveSavings(prob model.Problem, customers []model.Customer, m Matrix, mu, maxWait float64) (Solution, error) {
	pairs := savingsList(m, mu)

	var routes [][]int
	var loads []int
	unrouted := make(map[int]bool, len(customers)-1)
	for i := 1; i < len(customers); i++ {
		unrouted[i] = true
	}

	for len(unrouted) > 0 {
		merged := false
		for pi := range pairs {
			pr := &pairs[pi]
			if pr.dropped {
				continue
			}
			i, j := pr.i, pr.j

			// Open a route with the farther endpoint when both are still
			// unrouted.
			if unrouted[i] && unrouted[j] {
				x := i
				if m[depot][j] > m[depot][i] {
					x = j
				}
				routes = append(routes, []int{x})
				loads = append(loads, customers[x].Demand)
				delete(unrouted, x)
			}

			// Find the route holding i or j at an end position.
			k, end := findEndpoint(routes, i, j)
			if k < 0 {
				continue
			}
			var u int // the partner to absorb
			if end == i {
				u = j
			} else {
				u = i
			}
			if !unrouted[u] {
				pr.dropped = true // both endpoints already routed
				continue
			}
			if loads[k]+customers[u].Demand > prob.Capacity {
				continue
			}

			cand := mergeAtEnd(routes[k], end, u, customers)
			if !checkTimeWindowsMaxWait(cand, m, customers, maxWait) {
				continue
			}
			routes[k] = cand
			loads[k] += customers[u].Demand
			delete(unrouted, u)
			merged = true
			break
		}
		if !merged {
			break
		}
	}

	sol := Solution{Routes: routes}
	// Whatever the merge loop could not place rides alone if serviceable.
	for _, c := range sortedKeys(unrouted) {
		if checkTimeWindowsMaxWait([]int{c}, m, customers, maxWait) {
			sol.Routes = append(sol.Routes, []int{c})
		} else {
			sol.Unrouted = append(sol.Unrouted, c)
		}
	}
	if len(sol.Unrouted) > 0 {
		return sol, ErrStalled
	}
	return sol, nil
}

func savingsList(m Matrix, mu float64) []savingsPair {
	n := len(m) - 1
	pairs := make([]savingsPair, 0, n*(n-1)/2)
	for i := 1; i <= n; i++ {
		for j := i + 1; j <= n; j++ {
			pairs = append(pairs, savingsPair{i: i, j: j, saving: m[depot][i] + m[depot][j] - mu*m[i][j]})
		}
	}
	sort.SliceStable(pairs, func(a, b int) bool { return pairs[a].saving > pairs[b].saving })
	return pairs
}

// findEndpoint returns the first route having i or j at its head or tail,
// plus which of the two it found. Checks i before j within each route.
func findEndpoint(routes [][]int, i, j int) (int, int) {
	for k, r := range routes {
		if len(r) == 0 {
			continue
		}
		switch {
		case r[0] == i, r[len(r)-1] == i:
			return k, i
		case r[0] == j, r[len(r)-1] == j:
			return k, j
		}
	}
	return -1, 0
}

// mergeAtEnd extends route with u on the side where end sits. A singleton
// route is extended on the side that keeps ready times ascending.
func mergeAtEnd(route []int, end, u int, customers []model.Customer) []int {
	out := make([]int, 0, len(route)+1)
	if len(route) == 1 && customers[route[0]].ReadyTime < customers[u].ReadyTime {
		return append(append(out, route...), u)
	}
	if route[len(route)-1] == end {
		return append(append(out, route...), u)
	}
	return append(append(out, u), route...)
}

func sortedKeys(set map[int]bool) []int {
	keys := make([]int, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
