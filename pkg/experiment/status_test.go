package experiment

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestParseStatusFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "iteration_1_status.txt",
		"Issued: 100\nCompleted: 95\nTarget RPS: 15.00\nReal RPS: 14.87\n")

	status, err := ParseStatusFile(path)
	if err != nil {
		t.Fatalf("ParseStatusFile: %v", err)
	}
	if status.Issued != 100 {
		t.Errorf("Expected 100 issued, got %d", status.Issued)
	}
	if status.Completed != 95 {
		t.Errorf("Expected 95 completed, got %d", status.Completed)
	}
	if status.Lost() != 5 {
		t.Errorf("Expected 5 lost, got %d", status.Lost())
	}
	if status.TargetRPS != 15 {
		t.Errorf("Expected target RPS 15, got %f", status.TargetRPS)
	}
	if status.RealRPS != 14.87 {
		t.Errorf("Expected real RPS 14.87, got %f", status.RealRPS)
	}
}

func TestParseStatusFile_MissingField(t *testing.T) {
	path := writeFile(t, t.TempDir(), "iteration_1_status.txt",
		"Issued: 100\nCompleted: 95\nTarget RPS: 15.00\n")

	if _, err := ParseStatusFile(path); err == nil {
		t.Error("Expected error for missing Real RPS field")
	}
}

func TestParseStatusFile_ZeroValue(t *testing.T) {
	path := writeFile(t, t.TempDir(), "iteration_1_status.txt",
		"Issued: 0\nCompleted: 95\nTarget RPS: 15.00\nReal RPS: 14.87\n")

	if _, err := ParseStatusFile(path); err == nil {
		t.Error("Expected error for zero Issued value")
	}
}

func TestParseStatusFile_NotFound(t *testing.T) {
	if _, err := ParseStatusFile(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("Expected error for missing file")
	}
}
