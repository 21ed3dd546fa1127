package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":8080" || cfg.KMeansIters != 100 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "addr: \":9090\"\nrate_limit: 10\nkmeans_iters: 25\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":9090" || cfg.RateLimit != 10 || cfg.KMeansIters != 25 {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	// Untouched keys keep their defaults.
	if cfg.RateBurst != 100 {
		t.Fatalf("rate_burst = %d", cfg.RateBurst)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("addr: \":9090\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORT", "7070")
	t.Setenv("KMEANS_ITERS", "3")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":7070" {
		t.Fatalf("addr = %s", cfg.Addr)
	}
	if cfg.KMeansIters != 3 {
		t.Fatalf("kmeans_iters = %d", cfg.KMeansIters)
	}
}

func TestLoadMissingFileIsFine(t *testing.T) {
	cfg, err := Load("/nonexistent/config.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":8080" {
		t.Fatalf("addr = %s", cfg.Addr)
	}
}
