package solver

import "vrptw/internal/model"

// The feasibility oracle. Both operations walk the route from the depot
// accumulating travel, waiting, and service time. A schedule must be
// re-simulated from scratch after any modification: waiting at one stop
// shifts the arrival time of every later stop.

// beginTime returns the clock time at which target begins service within
// route. If target is depot (or simply not in the route), the scan runs
// through and the total route duration, return leg included, is returned
// instead.
func beginTime(target int, route []int, t Matrix, customers []model.Customer) float64 {
	clock := customers[depot].ReadyTime
	prev := depot
	for _, c := range route {
		clock += t[prev][c]
		if r := customers[c].ReadyTime; clock < r {
			clock = r // wait, no early service
		}
		if c == target {
			return clock
		}
		clock += customers[c].Service
		prev = c
	}
	return clock + t[prev][depot]
}

// checkTimeWindows reports whether route meets every due date, the depot's
// closing time on return included.
func checkTimeWindows(route []int, t Matrix, customers []model.Customer) bool {
	clock := customers[depot].ReadyTime
	prev := depot
	for _, c := range route {
		clock += t[prev][c]
		if r := customers[c].ReadyTime; clock < r {
			clock = r
		}
		if clock > customers[c].DueDate {
			return false
		}
		clock += customers[c].Service
		prev = c
	}
	return clock+t[prev][depot] <= customers[depot].DueDate
}

// checkTimeWindowsMaxWait is checkTimeWindows with an additional bound on
// the waiting time allowed at any single stop. Used by the savings merge,
// which would otherwise chain far-apart ready times into idle routes.
func checkTimeWindowsMaxWait(route []int, t Matrix, customers []model.Customer, maxWait float64) bool {
	clock := customers[depot].ReadyTime
	prev := depot
	for _, c := range route {
		clock += t[prev][c]
		arrived := clock
		if r := customers[c].ReadyTime; clock < r {
			clock = r
		}
		if clock-arrived > maxWait {
			return false
		}
		if clock > customers[c].DueDate {
			return false
		}
		clock += customers[c].Service
		prev = c
	}
	return clock+t[prev][depot] <= customers[depot].DueDate
}
