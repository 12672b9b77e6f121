package experiment

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ParseRPSFile reads a per-iteration latency file: one integer
// microsecond latency per line, blank lines skipped. An empty file or
// a non-integer line is malformed input.
func ParseRPSFile(path string) ([]int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open rps file %s: %w", path, err)
	}
	defer f.Close()

	var latencies []int64
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		v, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("rps file %s: invalid latency value %q", path, line)
		}
		latencies = append(latencies, v)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read rps file %s: %w", path, err)
	}
	if len(latencies) == 0 {
		return nil, fmt.Errorf("rps file %s: no latency values found", path)
	}
	return latencies, nil
}

// Milliseconds converts microsecond latency samples to milliseconds.
func Milliseconds(latenciesUs []int64) []float64 {
	ms := make([]float64, len(latenciesUs))
	for i, v := range latenciesUs {
		ms[i] = float64(v) / 1000
	}
	return ms
}
