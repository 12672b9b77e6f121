// Command latency-results processes the steady-state latency probes
// of a run: one latency sample per iteration per service. It writes
// per-service statistics to CSV, a per-service box plot and CDF, and
// aggregated variants pooling all services.
package main

import (
	"flag"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"k8s.io/klog/v2"

	"github.com/dessertlab/preempt-k8s/pkg/charts"
	"github.com/dessertlab/preempt-k8s/pkg/experiment"
	"github.com/dessertlab/preempt-k8s/pkg/report"
	"github.com/dessertlab/preempt-k8s/pkg/statistics"
)

func main() {
	var (
		dir           string
		aggregatedDir string
		configPath    string
	)
	flag.StringVar(&dir, "dir", "", "Latency test results directory (required)")
	flag.StringVar(&aggregatedDir, "aggregated-out", "", "Directory for the aggregated plots (required)")
	flag.StringVar(&configPath, "config", "", "Optional experiment layout config (YAML)")
	klog.InitFlags(nil)
	flag.Parse()

	if dir == "" || aggregatedDir == "" {
		klog.Fatal("-dir and -aggregated-out are required")
	}
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		klog.Fatalf("%s is not a valid directory", dir)
	}
	if fi, err := os.Stat(aggregatedDir); err != nil || !fi.IsDir() {
		klog.Fatalf("%s is not a valid directory", aggregatedDir)
	}

	cfg, err := experiment.LoadConfig(configPath)
	if err != nil {
		klog.Fatalf("Failed to load config: %v", err)
	}

	outDir := filepath.Join(dir, "processed_results")
	if err := os.MkdirAll(outDir, 0755); err != nil {
		klog.Fatalf("Failed to create %s: %v", outDir, err)
	}
	outAggregated := filepath.Join(aggregatedDir,
		filepath.Base(filepath.Dir(dir))+"_"+filepath.Base(dir))
	if err := os.MkdirAll(outAggregated, 0755); err != nil {
		klog.Fatalf("Failed to create %s: %v", outAggregated, err)
	}

	services, err := findServiceDirs(dir)
	if err != nil {
		klog.Fatalf("Failed to list %s: %v", dir, err)
	}
	if len(services) == 0 {
		klog.Fatalf("No service directories found in %s", dir)
	}
	klog.Infof("Services found: %s", strings.Join(services, ", "))

	var groups [][]float64
	var pooled []float64
	for _, service := range services {
		latencies, err := experiment.ReadServiceLatencies(filepath.Join(dir, service), cfg.Iterations)
		if err != nil {
			klog.Fatalf("Failed to read latencies for %s: %v", service, err)
		}
		if len(latencies) == 0 {
			klog.Warningf("no latency samples found for %s", service)
		}
		groups = append(groups, latencies)
		pooled = append(pooled, latencies...)
	}

	csvPath := filepath.Join(outDir, "statistics.csv")
	if err := writeStatisticsCSV(csvPath, services, groups); err != nil {
		klog.Fatalf("Failed to write statistics: %v", err)
	}
	klog.Infof("Statistics saved to %s", csvPath)

	boxPath := filepath.Join(outDir, "boxplot.png")
	if err := charts.SaveBoxPlot(groups, services, "Per Service Latency Boxplot", "Latency [ms]", boxPath); err != nil {
		klog.Fatalf("Failed to render box plot: %v", err)
	}
	klog.Infof("Boxplot saved to %s", boxPath)

	cdfPath := filepath.Join(outDir, "cdf.png")
	if err := charts.SaveCDF(groups, services, "Latency Cumulative Distribution Function", "Latency [ms]", cdfPath); err != nil {
		klog.Fatalf("Failed to render CDF: %v", err)
	}
	klog.Infof("CDF saved to %s", cdfPath)

	aggBoxPath := filepath.Join(outAggregated, "boxplot_aggregated.png")
	if err := charts.SaveBoxPlot([][]float64{pooled}, []string{"All Services"}, "Aggregated Latency Boxplot", "Latency [ms]", aggBoxPath); err != nil {
		klog.Fatalf("Failed to render aggregated box plot: %v", err)
	}
	klog.Infof("Aggregated boxplot saved to %s", aggBoxPath)

	aggCDFPath := filepath.Join(outAggregated, "cdf_aggregated.png")
	if err := charts.SaveCDF([][]float64{pooled}, []string{"All Services"}, "Aggregated Latency Cumulative Distribution Function", "Latency [ms]", aggCDFPath); err != nil {
		klog.Fatalf("Failed to render aggregated CDF: %v", err)
	}
	klog.Infof("Aggregated CDF saved to %s", aggCDFPath)
}

func findServiceDirs(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var services []string
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), "service-") {
			services = append(services, e.Name())
		}
	}
	sort.Strings(services)
	return services, nil
}

func writeStatisticsCSV(path string, services []string, groups [][]float64) error {
	table := report.NewTable("Service", "mean", "min", "max", "variance", "std_dev")
	for i, service := range services {
		g := groups[i]
		table.AddRow(
			service,
			report.F4(statistics.Mean(g)),
			report.F4(statistics.Min(g)),
			report.F4(statistics.Max(g)),
			report.F4(statistics.Variance(g)),
			report.F4(statistics.StdDev(g)),
		)
	}
	return table.Write(path)
}
