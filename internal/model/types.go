package model

// Core domain records shared by the solver, the stores, and the API.

// Customer is one node of a VRPTW instance. Index 0 in a customer list is
// always the depot: zero demand, zero service time, and the widest window.
type Customer struct {
	No        int     `json:"no"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Demand    int     `json:"demand"`
	ReadyTime float64 `json:"readyTime"`
	DueDate   float64 `json:"dueDate"`
	Service   float64 `json:"serviceTime"`
}

// Problem carries the instance header. Vehicles is a soft planning target;
// route construction may use more or fewer routes.
type Problem struct {
	ID       string `json:"id"`
	Vehicles int    `json:"vehicles"`
	Capacity int    `json:"capacity"`
}

// Instance is a stored problem together with its customer list.
type Instance struct {
	ID        string     `json:"id"`
	Problem   Problem    `json:"problem"`
	Customers []Customer `json:"customers"`
	CreatedAt string     `json:"createdAt,omitempty"`
}

// SolveRequest selects an algorithm and its parameters for one instance.
// Zero-valued parameters are filled with defaults during validation.
type SolveRequest struct {
	InstanceID string    `json:"instanceId"`
	Algorithm  string    `json:"algorithm,omitempty"` // insertion, kmeans, sweep, savings, nearest, best
	Mu         float64   `json:"mu,omitempty"`
	Lambda     float64   `json:"lambda,omitempty"`
	Alpha1     float64   `json:"alpha1,omitempty"`
	Alpha2     float64   `json:"alpha2,omitempty"`
	SeedRule   string    `json:"seedRule,omitempty"` // farthest, earliest-due
	Seed       int64     `json:"seed,omitempty"`
	MaxWait    float64   `json:"maxWait,omitempty"` // savings only
	Deltas     []float64 `json:"deltas,omitempty"`  // nearest only, length 3
}

// SolutionOut is the stored/returned result of one solver run.
type SolutionOut struct {
	ID         string  `json:"id"`
	InstanceID string  `json:"instanceId"`
	Algorithm  string  `json:"algorithm"`
	Routes     [][]int `json:"routes"`
	Unrouted   []int   `json:"unrouted,omitempty"`
	Distance   float64 `json:"distance"`
	Duration   float64 `json:"duration"`
	Vehicles   int     `json:"vehicles"`
	CreatedAt  string  `json:"createdAt,omitempty"`
}
