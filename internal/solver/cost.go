package solver

import "vrptw/internal/model"

// Params weight Solomon's two-level insertion criteria. Alpha1 and Alpha2
// mix the distance detour against the time push-back and normally sum to 1.
type Params struct {
	Mu     float64 `json:"mu"`
	Lambda float64 `json:"lambda"`
	Alpha1 float64 `json:"alpha1"`
	Alpha2 float64 `json:"alpha2"`
}

// SeedRule selects the customer that opens a new route.
type SeedRule int

const (
	// SeedFarthest seeds with the customer farthest from the depot.
	SeedFarthest SeedRule = iota
	// SeedEarliestDue seeds with the customer whose due date is earliest.
	SeedEarliestDue
)

// c11 is the distance detour of inserting u on the edge (i, j); mu scales
// the credit for the removed direct leg.
func c11(i, u, j int, d Matrix, mu float64) float64 {
	return d[i][u] + d[u][j] - mu*d[i][j]
}

// c12 is how far inserting u before j pushes back j's service start. With
// j == depot the insertion is an append and the difference is taken over
// the full route duration.
func c12(u, j int, route []int, t Matrix, customers []model.Customer) float64 {
	with := make([]int, 0, len(route)+1)
	if j == depot {
		with = append(with, route...)
		with = append(with, u)
	} else {
		for _, c := range route {
			if c == j {
				with = append(with, u)
			}
			with = append(with, c)
		}
	}
	return beginTime(j, with, t, customers) - beginTime(j, route, t, customers)
}

// insertOnEdge returns a copy of route with u placed between i and j,
// where depot stands for either end of the route.
func insertOnEdge(route []int, u, i, j int) []int {
	out := make([]int, 0, len(route)+1)
	switch {
	case i == depot:
		out = append(out, u)
		out = append(out, route...)
	case j == depot:
		out = append(out, route...)
		out = append(out, u)
	default:
		for _, c := range route {
			if c == j {
				out = append(out, u)
			}
			out = append(out, c)
		}
	}
	return out
}
