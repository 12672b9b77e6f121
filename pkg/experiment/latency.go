package experiment

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ReadServiceLatencies reads the single-value latency files of one
// service directory: latency-iteration-N.txt, one millisecond float
// each. Missing iterations are skipped; a present but unparseable
// file is malformed input.
func ReadServiceLatencies(serviceDir string, iterations int) ([]float64, error) {
	var latencies []float64
	for i := 1; i <= iterations; i++ {
		path := filepath.Join(serviceDir, fmt.Sprintf("latency-iteration-%d.txt", i))
		content, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read latency file %s: %w", path, err)
		}
		text := strings.TrimSpace(string(content))
		if text == "" {
			continue
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("latency file %s: invalid value %q", path, text)
		}
		latencies = append(latencies, v)
	}
	return latencies, nil
}
