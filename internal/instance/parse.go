// Package instance reads and writes Solomon benchmark files: R/C/RC
// problem instances and the conventional "Route #n / Cost" solution files.
package instance

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"vrptw/internal/model"
)

// Parse reads a Solomon instance: the problem id on the first line, a
// VEHICLE section with "number capacity", and a CUSTOMER table of seven
// integer columns with the depot as its first row.
func Parse(r io.Reader) (model.Problem, []model.Customer, error) {
	var prob model.Problem
	var customers []model.Customer

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return prob, nil, fmt.Errorf("instance: read: %w", err)
	}
	if len(lines) == 0 {
		return prob, nil, fmt.Errorf("instance: empty input")
	}
	prob.ID = strings.TrimSpace(lines[0])

	vehicleLine := -1
	for i, ln := range lines {
		if strings.Contains(ln, "VEHICLE") {
			vehicleLine = i
			break
		}
	}
	if vehicleLine < 0 || vehicleLine+2 >= len(lines) {
		return prob, nil, fmt.Errorf("instance: missing VEHICLE section")
	}
	// Header row sits between "VEHICLE" and the values.
	fields := strings.Fields(lines[vehicleLine+2])
	if len(fields) < 2 {
		return prob, nil, fmt.Errorf("instance: malformed vehicle line %q", lines[vehicleLine+2])
	}
	var err error
	if prob.Vehicles, err = strconv.Atoi(fields[0]); err != nil {
		return prob, nil, fmt.Errorf("instance: vehicle number: %w", err)
	}
	if prob.Capacity, err = strconv.Atoi(fields[1]); err != nil {
		return prob, nil, fmt.Errorf("instance: vehicle capacity: %w", err)
	}

	inCustomers := false
	for _, ln := range lines {
		if strings.Contains(ln, "CUSTOMER") {
			inCustomers = true
			continue
		}
		if !inCustomers || strings.TrimSpace(ln) == "" {
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(ln), "CUST NO.") {
			continue
		}
		c, err := parseCustomer(ln)
		if err != nil {
			return prob, nil, err
		}
		customers = append(customers, c)
	}
	if len(customers) == 0 {
		return prob, nil, fmt.Errorf("instance: no customer rows")
	}
	if customers[0].Demand != 0 {
		return prob, nil, fmt.Errorf("instance: depot row has non-zero demand %d", customers[0].Demand)
	}
	return prob, customers, nil
}

func parseCustomer(line string) (model.Customer, error) {
	fields := strings.Fields(line)
	if len(fields) != 7 {
		return model.Customer{}, fmt.Errorf("instance: customer row needs 7 columns, got %d: %q", len(fields), line)
	}
	vals := make([]int, 7)
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return model.Customer{}, fmt.Errorf("instance: customer row %q: %w", line, err)
		}
		vals[i] = v
	}
	return model.Customer{
		No:        vals[0],
		X:         float64(vals[1]),
		Y:         float64(vals[2]),
		Demand:    vals[3],
		ReadyTime: float64(vals[4]),
		DueDate:   float64(vals[5]),
		Service:   float64(vals[6]),
	}, nil
}
