package instance

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// SolutionFile is the conventional benchmark result format: one
// "Route #n: i j k" line per route and a trailing "Cost" line.
type SolutionFile struct {
	Routes [][]int
	Cost   float64
}

// WriteSolution writes s in the benchmark format.
func WriteSolution(w io.Writer, s SolutionFile) error {
	for i, route := range s.Routes {
		parts := make([]string, len(route))
		for j, c := range route {
			parts[j] = strconv.Itoa(c)
		}
		if _, err := fmt.Fprintf(w, "Route #%d: %s\n", i+1, strings.Join(parts, " ")); err != nil {
			return fmt.Errorf("instance: write solution: %w", err)
		}
	}
	if _, err := fmt.Fprintf(w, "Cost %g\n", s.Cost); err != nil {
		return fmt.Errorf("instance: write solution: %w", err)
	}
	return nil
}

// ParseSolution reads a benchmark solution file.
func ParseSolution(r io.Reader) (SolutionFile, error) {
	var s SolutionFile
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case strings.HasPrefix(line, "Route #"):
			_, rest, ok := strings.Cut(line, ":")
			if !ok {
				return s, fmt.Errorf("instance: malformed route line %q", line)
			}
			var route []int
			for _, f := range strings.Fields(rest) {
				v, err := strconv.Atoi(f)
				if err != nil {
					return s, fmt.Errorf("instance: route line %q: %w", line, err)
				}
				route = append(route, v)
			}
			s.Routes = append(s.Routes, route)
		case strings.HasPrefix(line, "Cost"):
			fields := strings.Fields(line)
			if len(fields) < 2 {
				return s, fmt.Errorf("instance: malformed cost line %q", line)
			}
			v, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				return s, fmt.Errorf("instance: cost line %q: %w", line, err)
			}
			s.Cost = v
		}
	}
	if err := sc.Err(); err != nil {
		return s, fmt.Errorf("instance: read solution: %w", err)
	}
	return s, nil
}
