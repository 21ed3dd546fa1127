package instance

import (
	"bytes"
	"strings"
	"testing"
)

const sampleInstance = `R101

VEHICLE
NUMBER     CAPACITY
  25         200

CUSTOMER
CUST NO.  XCOORD.   YCOORD.    DEMAND   READY TIME  DUE DATE   SERVICE TIME

    0      35         35          0          0       230          0
    1      41         49         10        161       171         10
    2      35         17          7         50        60         10
`

func TestParseInstance(t *testing.T) {
	prob, customers, err := Parse(strings.NewReader(sampleInstance))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if prob.ID != "R101" {
		t.Errorf("id = %q, want R101", prob.ID)
	}
	if prob.Vehicles != 25 || prob.Capacity != 200 {
		t.Errorf("vehicles/capacity = %d/%d, want 25/200", prob.Vehicles, prob.Capacity)
	}
	if len(customers) != 3 {
		t.Fatalf("customers = %d, want 3", len(customers))
	}
	depot := customers[0]
	if depot.Demand != 0 || depot.X != 35 || depot.DueDate != 230 {
		t.Errorf("bad depot row: %+v", depot)
	}
	c1 := customers[1]
	if c1.No != 1 || c1.Demand != 10 || c1.ReadyTime != 161 || c1.Service != 10 {
		t.Errorf("bad customer row: %+v", c1)
	}
}

func TestParseInstanceErrors(t *testing.T) {
	cases := map[string]string{
		"empty":            "",
		"no vehicle":       "R101\n\nCUSTOMER\n 0 0 0 0 0 10 0\n",
		"bad customer row": "R101\n\nVEHICLE\nNUMBER CAPACITY\n 5 100\n\nCUSTOMER\n 0 35 x 0 0 230 0\n",
		"no customers":     "R101\n\nVEHICLE\nNUMBER CAPACITY\n 5 100\n\nCUSTOMER\n",
	}
	for name, in := range cases {
		if _, _, err := Parse(strings.NewReader(in)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestSolutionRoundTrip(t *testing.T) {
	s := SolutionFile{Routes: [][]int{{3, 1, 2}, {5, 4}}, Cost: 123.5}
	var buf bytes.Buffer
	if err := WriteSolution(&buf, s); err != nil {
		t.Fatalf("WriteSolution: %v", err)
	}
	got, err := ParseSolution(&buf)
	if err != nil {
		t.Fatalf("ParseSolution: %v", err)
	}
	if len(got.Routes) != 2 || got.Routes[0][0] != 3 || got.Routes[1][1] != 4 {
		t.Errorf("routes = %v", got.Routes)
	}
	if got.Cost != 123.5 {
		t.Errorf("cost = %v, want 123.5", got.Cost)
	}
}
