package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"strconv"
	"strings"
	"time"

	"vrptw/internal/buildinfo"
	"vrptw/internal/instance"
	"vrptw/internal/metrics"
	"vrptw/internal/model"
	"vrptw/internal/solver"
	"vrptw/internal/store"
)

// InstancesHandler handles POST/GET /v1/instances
func (s *Server) InstancesHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var inst model.Instance
		if ct := r.Header.Get("Content-Type"); strings.Contains(ct, "json") {
			if err := json.NewDecoder(r.Body).Decode(&inst); err != nil {
				writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
				return
			}
		} else {
			// Raw Solomon-format upload.
			prob, custs, err := instance.Parse(r.Body)
			if err != nil {
				writeProblem(w, http.StatusBadRequest, "Invalid instance file", err.Error(), r.URL.Path)
				return
			}
			inst = model.Instance{Problem: prob, Customers: custs}
		}
		if err := validateInstance(inst); err != nil {
			writeProblem(w, http.StatusBadRequest, "Invalid instance", err.Error(), r.URL.Path)
			return
		}
		id, err := s.Store.CreateInstance(r.Context(), inst)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "Create instance failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"id": id})
	case http.MethodGet:
		cursor := r.URL.Query().Get("cursor")
		limit := queryInt(r, "limit", 100)
		items, next, err := s.Store.ListInstances(r.Context(), cursor, limit)
		if err != nil {
			writeProblem(w, http.StatusInternalServerError, "List instances failed", err.Error(), r.URL.Path)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// InstanceByIDHandler handles GET /v1/instances/{id}
func (s *Server) InstanceByIDHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/v1/instances/")
	inst, err := s.Store.GetInstance(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Not Found", "no such instance", r.URL.Path)
		return
	}
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Get instance failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, inst)
}

// SolveHandler handles POST /v1/solve
func (s *Server) SolveHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req model.SolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid JSON", err.Error(), r.URL.Path)
		return
	}
	if err := validateSolveRequest(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid solve request", err.Error(), r.URL.Path)
		return
	}
	sol, err := s.runSolve(r.Context(), req)
	if errors.Is(err, store.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Not Found", "no such instance", r.URL.Path)
		return
	}
	if errors.Is(err, solver.ErrStalled) {
		writeProblem(w, http.StatusUnprocessableEntity, "No complete solution",
			fmt.Sprintf("no feasible insertion for customers %v", sol.Unrouted), r.URL.Path)
		return
	}
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Solve failed", err.Error(), r.URL.Path)
		return
	}
	id, err := s.Store.CreateSolution(r.Context(), sol)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Store solution failed", err.Error(), r.URL.Path)
		return
	}
	sol.ID = id
	writeJSON(w, http.StatusOK, sol)
}

// SolutionsHandler handles GET /v1/solutions
func (s *Server) SolutionsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	instanceID := r.URL.Query().Get("instanceId")
	cursor := r.URL.Query().Get("cursor")
	limit := queryInt(r, "limit", 100)
	items, next, err := s.Store.ListSolutions(r.Context(), instanceID, cursor, limit)
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "List solutions failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "nextCursor": next})
}

// SolutionByIDHandler handles GET /v1/solutions/{id} and /v1/solutions/best
func (s *Server) SolutionByIDHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/v1/solutions/")
	var sol model.SolutionOut
	var err error
	if id == "best" {
		instanceID := r.URL.Query().Get("instanceId")
		if instanceID == "" {
			writeProblem(w, http.StatusBadRequest, "Missing instanceId", "", r.URL.Path)
			return
		}
		sol, err = s.Store.BestSolution(r.Context(), instanceID)
	} else {
		sol, err = s.Store.GetSolution(r.Context(), id)
	}
	if errors.Is(err, store.ErrNotFound) {
		writeProblem(w, http.StatusNotFound, "Not Found", "no such solution", r.URL.Path)
		return
	}
	if err != nil {
		writeProblem(w, http.StatusInternalServerError, "Get solution failed", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, http.StatusOK, sol)
}

// SolveStreamHandler handles GET /v1/solve/stream. The solve runs in the
// background; progress events are relayed over SSE until the run ends.
func (s *Server) SolveStreamHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	req := solveRequestFromQuery(r)
	if err := validateSolveRequest(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid solve request", err.Error(), r.URL.Path)
		return
	}
	if _, err := s.Store.GetInstance(r.Context(), req.InstanceID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeProblem(w, http.StatusNotFound, "Not Found", "no such instance", r.URL.Path)
		} else {
			writeProblem(w, http.StatusInternalServerError, "Get instance failed", err.Error(), r.URL.Path)
		}
		return
	}
	fl, ok := w.(http.Flusher)
	if !ok {
		writeProblem(w, http.StatusInternalServerError, "Streaming unsupported", "", r.URL.Path)
		return
	}
	ch := s.Broker.Subscribe(req.InstanceID)
	defer s.Broker.Unsubscribe(req.InstanceID, ch)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	go func() {
		sol, err := s.runSolve(context.Background(), req)
		if err != nil && !errors.Is(err, solver.ErrStalled) {
			return
		}
		if err == nil {
			if id, serr := s.Store.CreateSolution(context.Background(), sol); serr == nil {
				sol.ID = id
			}
		}
	}()

	for {
		select {
		case <-r.Context().Done():
			return
		case evt, ok := <-ch:
			if !ok {
				return
			}
			data, _ := json.Marshal(evt.Data)
			fmt.Fprintf(w, "event: %s\n", evt.Type)
			fmt.Fprintf(w, "data: %s\n\n", data)
			fl.Flush()
			if evt.Type == "solve.completed" || evt.Type == "solve.stalled" || evt.Type == "solve.failed" {
				return
			}
		}
	}
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, 200, map[string]any{"status": "ok", "build": buildinfo.Info()})
}

func (s *Server) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
	defer cancel()
	if err := s.Store.Ping(ctx); err != nil {
		writeProblem(w, 503, "Not Ready", err.Error(), r.URL.Path)
		return
	}
	writeJSON(w, 200, map[string]string{"status": "ready"})
}

// runSolve loads the instance, runs the requested algorithm, and publishes
// lifecycle events. On a stall the partial solution is returned together
// with ErrStalled so callers can report the unrouted customers.
func (s *Server) runSolve(ctx context.Context, req model.SolveRequest) (model.SolutionOut, error) {
	inst, err := s.Store.GetInstance(ctx, req.InstanceID)
	if err != nil {
		return model.SolutionOut{}, err
	}
	m := solver.NewMatrix(inst.Customers)
	seed := req.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	s.Broker.Publish(req.InstanceID, SolveEvent{Type: "solve.started", Data: map[string]any{
		"instanceId": req.InstanceID, "algorithm": req.Algorithm,
	}})

	start := time.Now()
	sol, algo, err := s.dispatch(inst, m, req, rng)
	elapsed := time.Since(start)

	out := model.SolutionOut{
		InstanceID: req.InstanceID,
		Algorithm:  algo,
		Routes:     sol.Routes,
		Unrouted:   sol.Unrouted,
		Distance:   sol.Distance(m),
		Duration:   sol.Duration(m, inst.Customers),
		Vehicles:   sol.Vehicles(),
	}

	outcome := "ok"
	evtType := "solve.completed"
	switch {
	case errors.Is(err, solver.ErrStalled):
		outcome = "stalled"
		evtType = "solve.stalled"
	case err != nil:
		outcome = "error"
		evtType = "solve.failed"
	}
	metrics.SolveRuns.WithLabelValues(algo, outcome).Inc()
	metrics.SolveDuration.WithLabelValues(algo).Observe(elapsed.Seconds())
	metrics.SolveUnrouted.WithLabelValues(algo).Observe(float64(len(sol.Unrouted)))

	s.Broker.Publish(req.InstanceID, SolveEvent{Type: evtType, Data: map[string]any{
		"instanceId": req.InstanceID,
		"algorithm":  algo,
		"vehicles":   out.Vehicles,
		"distance":   out.Distance,
		"unrouted":   len(sol.Unrouted),
	}})
	return out, err
}

// dispatch runs one algorithm, or sweeps all of them for "best". The
// returned name is the algorithm that produced the solution.
func (s *Server) dispatch(inst model.Instance, m solver.Matrix, req model.SolveRequest, rng *rand.Rand) (solver.Solution, string, error) {
	prob, customers := inst.Problem, inst.Customers
	p := solver.Params{Mu: req.Mu, Lambda: req.Lambda, Alpha1: req.Alpha1, Alpha2: req.Alpha2}
	rule := seedRuleOf(req)

	switch req.Algorithm {
	case solver.AlgoInsertion:
		sol, err := solver.SolveInsertion(prob, customers, m, p, rule)
		return sol, req.Algorithm, err
	case solver.AlgoKMeans:
		sol, err := solver.SolveKMeans(prob, customers, m, p, rule, s.Cfg.KMeansIters, rng)
		return sol, req.Algorithm, err
	case solver.AlgoSweep:
		sol, err := solver.SolveSweep(prob, customers, m, p, rule)
		return sol, req.Algorithm, err
	case solver.AlgoSavings:
		sol, err := solver.SolveSavings(prob, customers, m, req.Mu, req.MaxWait)
		return sol, req.Algorithm, err
	case solver.AlgoNearest:
		nn := solver.NNParams{Delta1: req.Deltas[0], Delta2: req.Deltas[1], Delta3: req.Deltas[2]}
		sol, err := solver.SolveNearest(prob, customers, m, nn)
		return sol, req.Algorithm, err
	case AlgoBest:
		var best solver.RunResult
		found := false
		var lastErr error
		for _, algo := range []string{solver.AlgoInsertion, solver.AlgoKMeans, solver.AlgoSweep, solver.AlgoSavings, solver.AlgoNearest} {
			run, err := solver.BestRun(prob, customers, m, algo, s.Cfg.KMeansIters, rng)
			if err != nil {
				lastErr = err
				continue
			}
			if !found || run.Distance < best.Distance {
				best = run
				found = true
			}
		}
		if !found {
			if lastErr == nil {
				lastErr = solver.ErrStalled
			}
			return solver.Solution{}, AlgoBest, lastErr
		}
		return best.Solution, best.Algorithm, nil
	}
	return solver.Solution{}, req.Algorithm, fmt.Errorf("unknown algorithm: %s", req.Algorithm)
}

func validateInstance(inst model.Instance) error {
	if len(inst.Customers) < 2 {
		return fmt.Errorf("at least a depot and one customer required")
	}
	d := inst.Customers[0]
	if d.Demand != 0 || d.Service != 0 {
		return fmt.Errorf("customer 0 must be the depot with zero demand and service time")
	}
	if inst.Problem.Capacity <= 0 {
		return fmt.Errorf("capacity must be > 0")
	}
	for i, c := range inst.Customers {
		if c.DueDate < c.ReadyTime {
			return fmt.Errorf("customer %d: dueDate before readyTime", i)
		}
		if i > 0 && c.Demand <= 0 {
			return fmt.Errorf("customer %d: demand must be > 0", i)
		}
	}
	return nil
}

func solveRequestFromQuery(r *http.Request) model.SolveRequest {
	q := r.URL.Query()
	req := model.SolveRequest{
		InstanceID: q.Get("instanceId"),
		Algorithm:  q.Get("algorithm"),
		SeedRule:   q.Get("seedRule"),
	}
	req.Mu = queryFloat(r, "mu")
	req.Lambda = queryFloat(r, "lambda")
	req.Alpha1 = queryFloat(r, "alpha1")
	req.Alpha2 = queryFloat(r, "alpha2")
	req.MaxWait = queryFloat(r, "maxWait")
	if v := q.Get("seed"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			req.Seed = n
		}
	}
	return req
}

func queryInt(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func queryFloat(r *http.Request, key string) float64 {
	if v := r.URL.Query().Get(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return 0
}
