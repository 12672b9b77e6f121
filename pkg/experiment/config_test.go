package experiment

import (
	"testing"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Iterations != 30 {
		t.Errorf("Expected 30 iterations, got %d", cfg.Iterations)
	}
	if got := cfg.ServiceID(3); got != "rnn-serving-python-3" {
		t.Errorf("Unexpected service ID %s", got)
	}
	if cfg.StrictScaleUp {
		t.Error("Expected strict scale-up off by default")
	}
}

func TestLoadConfig_MergesPartialFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "iterations: 10\nstrictScaleUp: true\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Iterations != 10 {
		t.Errorf("Expected 10 iterations, got %d", cfg.Iterations)
	}
	if !cfg.StrictScaleUp {
		t.Error("Expected strict scale-up on")
	}
	// Unset fields keep their defaults.
	if got := cfg.ServiceID(1); got != "rnn-serving-python-1" {
		t.Errorf("Unexpected service ID %s", got)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "iterations: [nope")

	if _, err := LoadConfig(path); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}

func TestReadServiceLatencies(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "latency-iteration-1.txt", "12.5\n")
	writeFile(t, dir, "latency-iteration-3.txt", "8.1")

	latencies, err := ReadServiceLatencies(dir, 5)
	if err != nil {
		t.Fatalf("ReadServiceLatencies: %v", err)
	}
	if len(latencies) != 2 {
		t.Fatalf("Expected 2 samples, got %d", len(latencies))
	}
	if latencies[0] != 12.5 || latencies[1] != 8.1 {
		t.Errorf("Unexpected samples: %v", latencies)
	}
}

func TestReadServiceLatencies_Malformed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "latency-iteration-1.txt", "not a number")

	if _, err := ReadServiceLatencies(dir, 1); err == nil {
		t.Error("Expected error for unparseable latency file")
	}
}
