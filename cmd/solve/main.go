// Command solve runs route construction on a Solomon-format instance file
// and prints the resulting routes.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"

	"vrptw/internal/instance"
	"vrptw/internal/solver"
)

func main() {
	var (
		algo    = flag.String("algo", "insertion", "algorithm: insertion, kmeans, sweep, savings, nearest, or all")
		seed    = flag.Int64("seed", 1, "random seed for kmeans centroid selection")
		iters   = flag.Int("kmeans-iters", 100, "Lloyd iterations per kmeans round")
		outPath = flag.String("o", "", "write best solution to this file")
	)
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: solve [flags] <instance-file>\n")
		flag.PrintDefaults()
		os.Exit(2)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	prob, customers, err := instance.Parse(f)
	if err != nil {
		log.Fatalf("parse %s: %v", flag.Arg(0), err)
	}
	m := solver.NewMatrix(customers)
	rng := rand.New(rand.NewSource(*seed))

	algos := []string{*algo}
	if *algo == "all" {
		algos = []string{solver.AlgoInsertion, solver.AlgoKMeans, solver.AlgoSweep, solver.AlgoSavings, solver.AlgoNearest}
	}

	var best solver.RunResult
	found := false
	for _, a := range algos {
		run, err := solver.BestRun(prob, customers, m, a, *iters, rng)
		if err != nil {
			log.Printf("%-10s no complete solution: %v", a, err)
			continue
		}
		fmt.Printf("%-10s vehicles=%-3d distance=%-10.2f duration=%.2f\n",
			run.Algorithm, run.Solution.Vehicles(), run.Distance, run.Duration)
		if !found || run.Distance < best.Distance {
			best = run
			found = true
		}
	}
	if !found {
		log.Fatal("no algorithm produced a complete solution")
	}

	fmt.Printf("\nbest: %s (%d routes, distance %.2f)\n", best.Algorithm, best.Solution.Vehicles(), best.Distance)
	for i, rt := range best.Solution.Routes {
		fmt.Printf("Route #%d:", i+1)
		for _, c := range rt {
			fmt.Printf(" %d", c)
		}
		fmt.Println()
	}

	if *outPath != "" {
		out, err := os.Create(*outPath)
		if err != nil {
			log.Fatal(err)
		}
		defer out.Close()
		if err := instance.WriteSolution(out, instance.SolutionFile{Routes: best.Solution.Routes, Cost: best.Distance}); err != nil {
			log.Fatal(err)
		}
		log.Printf("solution written to %s", *outPath)
	}
}
