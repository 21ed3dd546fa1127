package solver

import (
	"math"
	"sort"

	"vrptw/internal/model"
)

// SolveSweep is the angular front-end: customers are swept by polar angle
// around the depot into capacity-bounded sectors, each sector is handed to
// the construction engine, and leftovers are re-sorted by angular distance
// from the leftover with the smallest angle (bisection) and re-packed
// until none remain.
func SolveSweep(prob model.Problem, customers []model.Customer, m Matrix, p Params, rule SeedRule) (Solution, error) {
	pool, angles := customerAngles(customers)

	var sol Solution
	first := true
	for len(pool) > 0 {
		if !first {
			pool = bisect(pool, angles)
		}
		var next []int
		routed := 0
		for _, sector := range packSectors(pool, customers, prob.Capacity) {
			route, leftover := constructRoute(sector, prob.Capacity, m, customers, p, rule)
			if len(route) > 0 {
				sol.Routes = append(sol.Routes, route)
				routed += len(route)
			}
			next = append(next, leftover...)
		}
		if routed == 0 {
			sol.Unrouted = next
			return sol, ErrStalled
		}
		pool = next
		first = false
	}
	return sol, nil
}

// customerAngles returns the customer indices sorted by polar angle around
// the depot, counter-clockwise, plus every customer's angle in [0, 2pi)
// indexed by customer.
func customerAngles(customers []model.Customer) ([]int, []float64) {
	angles := make([]float64, len(customers))
	sorted := make([]int, 0, len(customers)-1)
	for i := 1; i < len(customers); i++ {
		a := math.Atan2(customers[i].Y-customers[depot].Y, customers[i].X-customers[depot].X)
		if a < 0 {
			a += 2 * math.Pi
		}
		angles[i] = a
		sorted = append(sorted, i)
	}
	sort.SliceStable(sorted, func(a, b int) bool { return angles[sorted[a]] < angles[sorted[b]] })
	return sorted, angles
}

// packSectors splits an angle-ordered pool greedily into sectors whose
// total demand fits the vehicle capacity.
func packSectors(ordered []int, customers []model.Customer, capacity int) [][]int {
	var sectors [][]int
	var current []int
	load := 0
	for _, c := range ordered {
		if len(current) > 0 && load+customers[c].Demand > capacity {
			sectors = append(sectors, current)
			current = nil
			load = 0
		}
		current = append(current, c)
		load += customers[c].Demand
	}
	if len(current) > 0 {
		sectors = append(sectors, current)
	}
	return sectors
}

// bisect reorders leftovers by absolute angular distance from the leftover
// with the smallest angle, so the next packing round grows sectors around
// the least-covered direction.
func bisect(pool []int, angles []float64) []int {
	ref := pool[0]
	for _, c := range pool[1:] {
		if angles[c] < angles[ref] {
			ref = c
		}
	}
	out := append([]int(nil), pool...)
	sort.SliceStable(out, func(a, b int) bool {
		return math.Abs(angles[out[a]]-angles[ref]) < math.Abs(angles[out[b]]-angles[ref])
	})
	return out
}
