// Package solver implements route construction heuristics for the vehicle
// routing problem with time windows: Solomon's I1 sequential insertion
// behind three partitioning front-ends (plain, k-means, angular sweep),
// plus a Clarke-Wright savings merge and a time-oriented nearest neighbor.
package solver

import (
	"math"

	"vrptw/internal/model"
)

// depot is the index of the depot in every customer list. It never appears
// inside a route, so it doubles as the "no customer" marker on route edges
// and as the sentinel target for full-duration schedule queries.
const depot = 0

// Matrix holds pairwise Euclidean distances over depot and customers.
// Symmetric, zero diagonal. The same values serve as travel times (unit
// speed assumption).
type Matrix [][]float64

// NewMatrix computes the distance matrix for a customer list with the
// depot at index 0.
func NewMatrix(customers []model.Customer) Matrix {
	n := len(customers)
	m := make(Matrix, n)
	for i := range m {
		m[i] = make([]float64, n)
		for j := range m[i] {
			m[i][j] = math.Hypot(customers[i].X-customers[j].X, customers[i].Y-customers[j].Y)
		}
	}
	return m
}
