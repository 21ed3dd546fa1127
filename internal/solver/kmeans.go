package solver

import (
	"math"
	"math/rand"

	"vrptw/internal/model"
)

// cluster groups customers around a centroid coordinate. Membership is
// recomputed every Lloyd iteration and discarded after dispatch.
type cluster struct {
	cx, cy  float64
	members []int
}

// SolveKMeans partitions the unrouted pool into spatial clusters and runs
// the construction engine on each, pooling leftovers into a fresh
// clustering round until every customer is routed. The cluster count
// shrinks with the pool: k = vehicles * |pool| / (5 * |customers|),
// floored at 1.
func SolveKMeans(prob model.Problem, customers []model.Customer, m Matrix, p Params, rule SeedRule, maxIter int, rng *rand.Rand) (Solution, error) {
	if maxIter <= 0 {
		maxIter = 10
	}
	var sol Solution
	pool := allCustomers(customers)
	for len(pool) > 0 {
		k := prob.Vehicles * len(pool) / (len(customers) * 5)
		if k < 1 {
			k = 1
		}
		clusters := kmeansClusters(pool, customers, k, maxIter, rng)

		var next []int
		routed := 0
		for _, cl := range clusters {
			if len(cl.members) == 0 {
				continue
			}
			route, leftover := constructRoute(cl.members, prob.Capacity, m, customers, p, rule)
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
	}
	return sol, nil
}

// kmeansClusters runs distance-weighted seeding followed by a fixed number
// of Lloyd iterations over spatial coordinates.
func kmeansClusters(points []int, customers []model.Customer, k, maxIter int, rng *rand.Rand) []cluster {
	if k > len(points) {
		k = len(points)
	}
	seeds := seedCentroids(points, customers, k, rng)
	clusters := make([]cluster, len(seeds))
	for i, s := range seeds {
		clusters[i] = cluster{cx: customers[s].X, cy: customers[s].Y}
	}

	for it := 0; it < maxIter; it++ {
		for i := range clusters {
			clusters[i].members = clusters[i].members[:0]
		}
		// Assign each point to its nearest centroid.
		for _, pt := range points {
			best := 0
			bestDist := math.Inf(1)
			for ci := range clusters {
				d := math.Hypot(customers[pt].X-clusters[ci].cx, customers[pt].Y-clusters[ci].cy)
				if d < bestDist {
					best, bestDist = ci, d
				}
			}
			clusters[best].members = append(clusters[best].members, pt)
		}
		// Move non-empty centroids to the mean of their members.
		for i := range clusters {
			if len(clusters[i].members) == 0 {
				continue
			}
			sx, sy := 0.0, 0.0
			for _, pt := range clusters[i].members {
				sx += customers[pt].X
				sy += customers[pt].Y
			}
			n := float64(len(clusters[i].members))
			clusters[i].cx, clusters[i].cy = sx/n, sy/n
		}
	}
	return clusters
}

// seedCentroids picks k seed customers: the first uniformly at random,
// each following one with probability proportional to its squared distance
// to the nearest centroid chosen so far.
func seedCentroids(points []int, customers []model.Customer, k int, rng *rand.Rand) []int {
	centroids := []int{points[rng.Intn(len(points))]}
	taken := map[int]bool{centroids[0]: true}

	for len(centroids) < k {
		type candidate struct {
			idx int
			d2  float64
		}
		var cands []candidate
		total := 0.0
		for _, pt := range points {
			if taken[pt] {
				continue
			}
			nearest := math.Inf(1)
			for _, c := range centroids {
				d := math.Hypot(customers[pt].X-customers[c].X, customers[pt].Y-customers[c].Y)
				if d < nearest {
					nearest = d
				}
			}
			d2 := nearest * nearest
			cands = append(cands, candidate{idx: pt, d2: d2})
			total += d2
		}
		if len(cands) == 0 {
			break
		}
		pick := cands[0].idx
		if total > 0 {
			// Roulette wheel over squared distances.
			r := rng.Float64() * total
			acc := 0.0
			for _, c := range cands {
				acc += c.d2
				if r <= acc {
					pick = c.idx
					break
				}
			}
		}
		centroids = append(centroids, pick)
		taken[pick] = true
	}
	return centroids
}
