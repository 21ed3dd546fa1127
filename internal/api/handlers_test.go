package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"vrptw/internal/config"
	"vrptw/internal/model"
	"vrptw/internal/store"
)

func testServer() *Server {
	return &Server{Store: store.NewMemory(), Broker: NewBroker(), Cfg: config.Default()}
}

func postJSON(t *testing.T, h http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h(w, req)
	return w
}

func solvableInstance() model.Instance {
	// Depot plus four reachable customers with wide windows.
	return model.Instance{
		Problem: model.Problem{ID: "T1", Vehicles: 2, Capacity: 50},
		Customers: []model.Customer{
			{No: 0, X: 0, Y: 0, DueDate: 1000},
			{No: 1, X: 10, Y: 0, Demand: 10, DueDate: 900, Service: 5},
			{No: 2, X: 0, Y: 10, Demand: 10, DueDate: 900, Service: 5},
			{No: 3, X: -10, Y: 0, Demand: 10, DueDate: 900, Service: 5},
			{No: 4, X: 0, Y: -10, Demand: 10, DueDate: 900, Service: 5},
		},
	}
}

func createInstance(t *testing.T, s *Server, inst model.Instance) string {
	t.Helper()
	w := postJSON(t, s.InstancesHandler, "/v1/instances", inst)
	if w.Code != http.StatusCreated {
		t.Fatalf("create instance: status %d body %s", w.Code, w.Body.String())
	}
	var resp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	return resp.ID
}

func TestCreateAndGetInstance(t *testing.T) {
	s := testServer()
	id := createInstance(t, s, solvableInstance())

	req := httptest.NewRequest(http.MethodGet, "/v1/instances/"+id, nil)
	w := httptest.NewRecorder()
	s.InstanceByIDHandler(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get: status %d", w.Code)
	}
	var inst model.Instance
	if err := json.Unmarshal(w.Body.Bytes(), &inst); err != nil {
		t.Fatal(err)
	}
	if inst.Problem.ID != "T1" || len(inst.Customers) != 5 {
		t.Fatalf("unexpected instance: %+v", inst)
	}
}

func TestCreateInstanceFromSolomonText(t *testing.T) {
	s := testServer()
	raw := `R101

VEHICLE
NUMBER     CAPACITY
  25         200

CUSTOMER
CUST NO.  XCOORD.   YCOORD.    DEMAND   READY TIME  DUE DATE   SERVICE TIME

    0      35         35          0          0       230          0
    1      41         49         10          0       171         10
    2      35         17          7         50       160         10
`
	req := httptest.NewRequest(http.MethodPost, "/v1/instances", strings.NewReader(raw))
	req.Header.Set("Content-Type", "text/plain")
	w := httptest.NewRecorder()
	s.InstancesHandler(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
	var resp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	inst, err := s.Store.GetInstance(req.Context(), resp.ID)
	if err != nil {
		t.Fatal(err)
	}
	if inst.Problem.ID != "R101" || inst.Problem.Capacity != 200 || len(inst.Customers) != 3 {
		t.Fatalf("stored instance: %+v", inst)
	}
}

func TestCreateInstanceRejectsBadDepot(t *testing.T) {
	s := testServer()
	inst := solvableInstance()
	inst.Customers[0].Demand = 5
	w := postJSON(t, s.InstancesHandler, "/v1/instances", inst)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status %d", w.Code)
	}
}

func TestInstanceNotFound(t *testing.T) {
	s := testServer()
	req := httptest.NewRequest(http.MethodGet, "/v1/instances/nope", nil)
	w := httptest.NewRecorder()
	s.InstanceByIDHandler(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status %d", w.Code)
	}
	var p Problem
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatal(err)
	}
	if p.Status != http.StatusNotFound || p.Title == "" {
		t.Fatalf("problem body: %+v", p)
	}
}

func TestSolveEndToEnd(t *testing.T) {
	s := testServer()
	id := createInstance(t, s, solvableInstance())

	for _, algo := range []string{"insertion", "sweep", "savings", "nearest", "kmeans", "best"} {
		t.Run(algo, func(t *testing.T) {
			w := postJSON(t, s.SolveHandler, "/v1/solve", model.SolveRequest{
				InstanceID: id, Algorithm: algo, Seed: 1,
			})
			if w.Code != http.StatusOK {
				t.Fatalf("status %d body %s", w.Code, w.Body.String())
			}
			var sol model.SolutionOut
			if err := json.Unmarshal(w.Body.Bytes(), &sol); err != nil {
				t.Fatal(err)
			}
			if sol.ID == "" || len(sol.Unrouted) != 0 || sol.Distance <= 0 {
				t.Fatalf("solution: %+v", sol)
			}
			served := map[int]bool{}
			for _, rt := range sol.Routes {
				for _, c := range rt {
					served[c] = true
				}
			}
			if len(served) != 4 {
				t.Fatalf("served %d of 4 customers", len(served))
			}
		})
	}
}

func TestSolveUnknownInstance(t *testing.T) {
	s := testServer()
	w := postJSON(t, s.SolveHandler, "/v1/solve", model.SolveRequest{InstanceID: "nope", Algorithm: "insertion"})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status %d", w.Code)
	}
}

func TestSolveStalledReturns422(t *testing.T) {
	s := testServer()
	inst := solvableInstance()
	// Customer 1 cannot be reached before its deadline.
	inst.Customers[1].DueDate = 1
	inst.Customers[1].ReadyTime = 0
	id := createInstance(t, s, inst)

	w := postJSON(t, s.SolveHandler, "/v1/solve", model.SolveRequest{
		InstanceID: id, Algorithm: "insertion", Seed: 1,
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
}

func TestListSolutionsAndBest(t *testing.T) {
	s := testServer()
	id := createInstance(t, s, solvableInstance())
	for _, algo := range []string{"insertion", "sweep"} {
		w := postJSON(t, s.SolveHandler, "/v1/solve", model.SolveRequest{InstanceID: id, Algorithm: algo, Seed: 1})
		if w.Code != http.StatusOK {
			t.Fatalf("solve %s: %d", algo, w.Code)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/solutions?instanceId="+id, nil)
	w := httptest.NewRecorder()
	s.SolutionsHandler(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list: %d", w.Code)
	}
	var list struct {
		Items []model.SolutionOut `json:"items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list.Items) != 2 {
		t.Fatalf("want 2 solutions, got %d", len(list.Items))
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/solutions/best?instanceId="+id, nil)
	w = httptest.NewRecorder()
	s.SolutionByIDHandler(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("best: %d", w.Code)
	}
	var best model.SolutionOut
	if err := json.Unmarshal(w.Body.Bytes(), &best); err != nil {
		t.Fatal(err)
	}
	for _, it := range list.Items {
		if it.Distance < best.Distance {
			t.Fatalf("best %.2f beaten by %.2f", best.Distance, it.Distance)
		}
	}
}

func TestSolvePublishesEvents(t *testing.T) {
	s := testServer()
	id := createInstance(t, s, solvableInstance())

	ch := s.Broker.Subscribe(id)
	defer s.Broker.Unsubscribe(id, ch)

	w := postJSON(t, s.SolveHandler, "/v1/solve", model.SolveRequest{InstanceID: id, Algorithm: "insertion", Seed: 1})
	if w.Code != http.StatusOK {
		t.Fatalf("solve: %d", w.Code)
	}

	var types []string
	for len(ch) > 0 {
		types = append(types, (<-ch).Type)
	}
	if len(types) != 2 || types[0] != "solve.started" || types[1] != "solve.completed" {
		t.Fatalf("events: %v", types)
	}
}

func TestSolveStream(t *testing.T) {
	s := testServer()
	id := createInstance(t, s, solvableInstance())

	req := httptest.NewRequest(http.MethodGet, "/v1/solve/stream?instanceId="+id+"&algorithm=insertion&seed=1", nil)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		s.SolveStreamHandler(w, req)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("stream did not terminate")
	}
	body := w.Body.String()
	if !strings.Contains(body, "event: solve.started") || !strings.Contains(body, "event: solve.completed") {
		t.Fatalf("stream body:\n%s", body)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type %q", ct)
	}
}

func TestSolveStreamUnknownInstance(t *testing.T) {
	s := testServer()
	req := httptest.NewRequest(http.MethodGet, "/v1/solve/stream?instanceId=nope", nil)
	w := httptest.NewRecorder()
	s.SolveStreamHandler(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status %d", w.Code)
	}
}

func TestHealthAndReady(t *testing.T) {
	s := testServer()
	w := httptest.NewRecorder()
	s.HealthHandler(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != 200 {
		t.Fatalf("healthz: %d", w.Code)
	}
	w = httptest.NewRecorder()
	s.ReadyHandler(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if w.Code != 200 {
		t.Fatalf("readyz: %d", w.Code)
	}
}

func TestRateLimit(t *testing.T) {
	h := RateLimit(1, 1, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	codes := map[int]int{}
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/instances", nil))
		codes[w.Code]++
	}
	if codes[http.StatusOK] == 0 || codes[http.StatusTooManyRequests] == 0 {
		t.Fatalf("codes: %v", codes)
	}
}

func TestInstancesPaginationOverHTTP(t *testing.T) {
	s := testServer()
	for i := 0; i < 3; i++ {
		inst := solvableInstance()
		inst.Problem.ID = fmt.Sprintf("T%d", i)
		createInstance(t, s, inst)
	}
	req := httptest.NewRequest(http.MethodGet, "/v1/instances?limit=2", nil)
	w := httptest.NewRecorder()
	s.InstancesHandler(w, req)
	var page struct {
		Items      []model.Instance `json:"items"`
		NextCursor string           `json:"nextCursor"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatal(err)
	}
	if len(page.Items) != 2 || page.NextCursor == "" {
		t.Fatalf("page: %d items, cursor %q", len(page.Items), page.NextCursor)
	}
}
