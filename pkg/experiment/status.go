package experiment

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
)

var (
	issuedRe    = regexp.MustCompile(`Issued:\s*(\d+)`)
	completedRe = regexp.MustCompile(`Completed:\s*(\d+)`)
	targetRPSRe = regexp.MustCompile(`Target RPS:\s*([\d.]+)`)
	realRPSRe   = regexp.MustCompile(`Real RPS:\s*([\d.]+)`)
)

// Status holds the request accounting of one load iteration against
// one service.
type Status struct {
	Issued    int
	Completed int
	TargetRPS float64
	RealRPS   float64
}

// Lost is the number of issued requests that never completed.
func (s Status) Lost() int { return s.Issued - s.Completed }

// ParseStatusFile extracts the four accounting fields from a status
// file. A missing field or a zero value marks the file malformed and
// fails with the path and reason.
func ParseStatusFile(path string) (Status, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Status{}, fmt.Errorf("read status file %s: %w", path, err)
	}

	issued, err := matchInt(issuedRe, content, "Issued")
	if err != nil {
		return Status{}, fmt.Errorf("status file %s: %w", path, err)
	}
	completed, err := matchInt(completedRe, content, "Completed")
	if err != nil {
		return Status{}, fmt.Errorf("status file %s: %w", path, err)
	}
	targetRPS, err := matchFloat(targetRPSRe, content, "Target RPS")
	if err != nil {
		return Status{}, fmt.Errorf("status file %s: %w", path, err)
	}
	realRPS, err := matchFloat(realRPSRe, content, "Real RPS")
	if err != nil {
		return Status{}, fmt.Errorf("status file %s: %w", path, err)
	}

	return Status{
		Issued:    issued,
		Completed: completed,
		TargetRPS: targetRPS,
		RealRPS:   realRPS,
	}, nil
}

func matchInt(re *regexp.Regexp, content []byte, field string) (int, error) {
	m := re.FindSubmatch(content)
	if m == nil {
		return 0, fmt.Errorf("missing field %s", field)
	}
	v, err := strconv.Atoi(string(m[1]))
	if err != nil {
		return 0, fmt.Errorf("parse field %s: %w", field, err)
	}
	if v == 0 {
		return 0, fmt.Errorf("field %s is 0", field)
	}
	return v, nil
}

func matchFloat(re *regexp.Regexp, content []byte, field string) (float64, error) {
	m := re.FindSubmatch(content)
	if m == nil {
		return 0, fmt.Errorf("missing field %s", field)
	}
	v, err := strconv.ParseFloat(string(m[1]), 64)
	if err != nil {
		return 0, fmt.Errorf("parse field %s: %w", field, err)
	}
	if v == 0 {
		return 0, fmt.Errorf("field %s is 0", field)
	}
	return v, nil
}
