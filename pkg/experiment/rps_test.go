package experiment

import (
	"testing"
)

func TestParseRPSFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "rps_iteration_1", "1500\n2300\n\n980\n")

	latencies, err := ParseRPSFile(path)
	if err != nil {
		t.Fatalf("ParseRPSFile: %v", err)
	}
	if len(latencies) != 3 {
		t.Fatalf("Expected 3 samples, got %d", len(latencies))
	}
	if latencies[0] != 1500 || latencies[1] != 2300 || latencies[2] != 980 {
		t.Errorf("Unexpected samples: %v", latencies)
	}
}

func TestParseRPSFile_Empty(t *testing.T) {
	path := writeFile(t, t.TempDir(), "rps_iteration_1", "\n\n")

	if _, err := ParseRPSFile(path); err == nil {
		t.Error("Expected error for empty rps file")
	}
}

func TestParseRPSFile_NonInteger(t *testing.T) {
	path := writeFile(t, t.TempDir(), "rps_iteration_1", "1500\nabc\n")

	if _, err := ParseRPSFile(path); err == nil {
		t.Error("Expected error for non-integer line")
	}
}

func TestMilliseconds(t *testing.T) {
	ms := Milliseconds([]int64{1500, 250})
	if ms[0] != 1.5 || ms[1] != 0.25 {
		t.Errorf("Unexpected conversion: %v", ms)
	}
}
