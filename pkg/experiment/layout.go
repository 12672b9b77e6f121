package experiment

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var iterationRe = regexp.MustCompile(`iteration[-_](\d+)`)

// iterationNumber extracts the iteration index embedded in a file
// name. Both separator spellings appear in the wild.
func iterationNumber(name string) int {
	m := iterationRe.FindStringSubmatch(name)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// Layout is the scanned file structure of one experiment run: one
// audit capture per iteration at the root, and per-service
// subdirectories holding status and rps files.
type Layout struct {
	Root        string
	NumServices int

	// StatusFiles and RPSFiles map service directory names
	// ("service-1", ...) to file names sorted by iteration number.
	StatusFiles map[string][]string
	RPSFiles    map[string][]string

	// Captures holds the full paths of the audit capture files,
	// sorted by iteration number.
	Captures []string
}

// ServiceDir returns the directory name for a 1-based service index.
func ServiceDir(index int) string {
	return fmt.Sprintf("service-%d", index)
}

// ScanLayout walks an experiment directory and indexes its files.
// Validation of expected counts is separate so comparison tools can
// scan partial runs.
func ScanLayout(root string, numServices int) (Layout, error) {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return Layout{}, fmt.Errorf("%s is not a valid directory", root)
	}
	if numServices <= 0 {
		return Layout{}, fmt.Errorf("number of services must be a positive integer, got %d", numServices)
	}

	layout := Layout{
		Root:        root,
		NumServices: numServices,
		StatusFiles: make(map[string][]string),
		RPSFiles:    make(map[string][]string),
	}

	for i := 1; i <= numServices; i++ {
		dir := ServiceDir(i)
		servicePath := filepath.Join(root, dir)
		entries, err := os.ReadDir(servicePath)
		if err != nil {
			return Layout{}, fmt.Errorf("read service directory %s: %w", servicePath, err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			name := e.Name()
			switch {
			case strings.HasPrefix(name, "rps"):
				layout.RPSFiles[dir] = append(layout.RPSFiles[dir], name)
			case strings.HasPrefix(name, "iteration") || strings.HasSuffix(name, "status.txt"):
				layout.StatusFiles[dir] = append(layout.StatusFiles[dir], name)
			}
		}
		sortByIteration(layout.StatusFiles[dir])
		sortByIteration(layout.RPSFiles[dir])
	}

	rootEntries, err := os.ReadDir(root)
	if err != nil {
		return Layout{}, fmt.Errorf("read directory %s: %w", root, err)
	}
	for _, e := range rootEntries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, "loki-logs-iteration") && strings.HasSuffix(name, ".json") {
			layout.Captures = append(layout.Captures, filepath.Join(root, name))
		}
	}
	sortByIteration(layout.Captures)

	return layout, nil
}

// Validate checks the scanned layout against the expected iteration
// count. A mismatch anywhere aborts the whole run: partial runs would
// otherwise produce statistics over silently different sample sizes.
func (l Layout) Validate(iterations int) error {
	for i := 1; i <= l.NumServices; i++ {
		dir := ServiceDir(i)
		if n := len(l.StatusFiles[dir]); n != iterations {
			return fmt.Errorf("expected exactly %d status files, but found %d for %s", iterations, n, dir)
		}
		if n := len(l.RPSFiles[dir]); n != iterations {
			return fmt.Errorf("expected exactly %d rps files, but found %d for %s", iterations, n, dir)
		}
	}
	if n := len(l.Captures); n != iterations {
		return fmt.Errorf("expected exactly %d audit capture files, but found %d", iterations, n)
	}
	return nil
}

func sortByIteration(names []string) {
	sort.Slice(names, func(i, j int) bool {
		return iterationNumber(names[i]) < iterationNumber(names[j])
	})
}
