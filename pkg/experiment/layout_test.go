package experiment

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// makeRun lays out a fake experiment directory with the given number
// of services and iterations.
func makeRun(t *testing.T, services, iterations int) string {
	t.Helper()
	root := t.TempDir()
	for i := 1; i <= services; i++ {
		dir := filepath.Join(root, ServiceDir(i))
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
		for iter := 1; iter <= iterations; iter++ {
			writeFile(t, dir, formatStatusName(iter),
				"Issued: 100\nCompleted: 95\nTarget RPS: 15.00\nReal RPS: 14.87\n")
			writeFile(t, dir, formatRPSName(iter), "1500\n2300\n")
		}
	}
	for iter := 1; iter <= iterations; iter++ {
		writeFile(t, root, formatCaptureName(iter), "[]")
	}
	return root
}

func formatStatusName(iter int) string {
	return fmt.Sprintf("iteration_%d_status.txt", iter)
}

func formatRPSName(iter int) string {
	return fmt.Sprintf("rps_iteration_%d", iter)
}

func formatCaptureName(iter int) string {
	return fmt.Sprintf("loki-logs-iteration_%d.json", iter)
}

func TestScanLayout(t *testing.T) {
	root := makeRun(t, 2, 3)

	layout, err := ScanLayout(root, 2)
	if err != nil {
		t.Fatalf("ScanLayout: %v", err)
	}
	if len(layout.Captures) != 3 {
		t.Errorf("Expected 3 captures, got %d", len(layout.Captures))
	}
	for i := 1; i <= 2; i++ {
		dir := ServiceDir(i)
		if n := len(layout.StatusFiles[dir]); n != 3 {
			t.Errorf("Expected 3 status files for %s, got %d", dir, n)
		}
		if n := len(layout.RPSFiles[dir]); n != 3 {
			t.Errorf("Expected 3 rps files for %s, got %d", dir, n)
		}
	}
}

func TestScanLayout_SortsByIterationNumber(t *testing.T) {
	root := makeRun(t, 1, 12)

	layout, err := ScanLayout(root, 1)
	if err != nil {
		t.Fatalf("ScanLayout: %v", err)
	}

	// Lexicographic order would put iteration 10 before iteration 2.
	names := layout.StatusFiles[ServiceDir(1)]
	for i := 1; i < len(names); i++ {
		if iterationNumber(names[i-1]) >= iterationNumber(names[i]) {
			t.Fatalf("Status files out of order: %v", names)
		}
	}
	for i := 1; i < len(layout.Captures); i++ {
		if iterationNumber(layout.Captures[i-1]) >= iterationNumber(layout.Captures[i]) {
			t.Fatalf("Captures out of order: %v", layout.Captures)
		}
	}
}

func TestScanLayout_InvalidRoot(t *testing.T) {
	if _, err := ScanLayout(filepath.Join(t.TempDir(), "nope"), 1); err == nil {
		t.Error("Expected error for missing root directory")
	}
}

func TestScanLayout_NonPositiveServices(t *testing.T) {
	if _, err := ScanLayout(t.TempDir(), 0); err == nil {
		t.Error("Expected error for zero services")
	}
}

func TestLayoutValidate(t *testing.T) {
	root := makeRun(t, 2, 3)
	layout, err := ScanLayout(root, 2)
	if err != nil {
		t.Fatalf("ScanLayout: %v", err)
	}

	if err := layout.Validate(3); err != nil {
		t.Errorf("Expected complete run to validate, got %v", err)
	}
	if err := layout.Validate(30); err == nil {
		t.Error("Expected validation failure for wrong iteration count")
	}
}

func TestIterationNumber(t *testing.T) {
	cases := map[string]int{
		"iteration_7_status.txt":       7,
		"rps_iteration_12":             12,
		"loki-logs-iteration_30.json":  30,
		"loki-logs-iteration-4.json":   4,
		"unrelated.txt":                0,
	}
	for name, want := range cases {
		if got := iterationNumber(name); got != want {
			t.Errorf("iterationNumber(%s): expected %d, got %d", name, want, got)
		}
	}
}
