// Command results analyzes one experiment run: it validates the
// on-disk layout, derives per-service scaling delays from the audit
// captures, summarizes the status and rps files, and writes a metrics
// CSV plus box and CDF plots into processed_results/.
package main

import (
	"flag"
	"os"
	"path/filepath"

	"k8s.io/klog/v2"

	"github.com/dessertlab/preempt-k8s/pkg/charts"
	"github.com/dessertlab/preempt-k8s/pkg/experiment"
	"github.com/dessertlab/preempt-k8s/pkg/report"
	"github.com/dessertlab/preempt-k8s/pkg/statistics"
)

func main() {
	var (
		dir        string
		services   int
		controller string
		configPath string
	)
	flag.StringVar(&dir, "dir", "", "Experiment results directory (required)")
	flag.IntVar(&services, "services", 0, "Number of services in the experiment (required)")
	flag.StringVar(&controller, "controller", "", "Controller under test: kube-manager or preempt-k8s (required)")
	flag.StringVar(&configPath, "config", "", "Optional experiment layout config (YAML)")
	klog.InitFlags(nil)
	flag.Parse()

	if dir == "" || services <= 0 || controller == "" {
		klog.Fatal("-dir, -services and -controller are required")
	}

	cfg, err := experiment.LoadConfig(configPath)
	if err != nil {
		klog.Fatalf("Failed to load config: %v", err)
	}

	layout, err := experiment.ScanLayout(dir, services)
	if err != nil {
		klog.Fatalf("Failed to scan %s: %v", dir, err)
	}
	if err := layout.Validate(cfg.Iterations); err != nil {
		klog.Fatalf("Layout validation failed: %v", err)
	}
	klog.Infof("File count validation passed: %d services, %d iterations", services, cfg.Iterations)

	outDir := filepath.Join(dir, "processed_results")
	if _, err := os.Stat(outDir); err == nil {
		klog.Fatalf("Directory %s already exists", outDir)
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		klog.Fatalf("Failed to create %s: %v", outDir, err)
	}

	data, err := experiment.CollectByService(layout, cfg, controller)
	if err != nil {
		klog.Fatalf("Failed to process %s: %v", dir, err)
	}
	if data.Failures > 0 {
		klog.Warningf("%d iterations failed to parse and were skipped", data.Failures)
	}

	if err := writeMetricsCSV(filepath.Join(outDir, "metrics.csv"), data); err != nil {
		klog.Fatalf("Failed to write metrics: %v", err)
	}

	boxPlots := []struct {
		groups   [][]float64
		title    string
		ylabel   string
		filename string
	}{
		{data.StartsProcessingDelays, "Starts Processing Delays Box Plot", "Delays [ms]", "boxplot_starts_processing_delays.png"},
		{data.PodCreationDelays, "Pod Creation Delays Box Plot", "Delays [ms]", "boxplot_pod_creation_delays.png"},
		{data.PodStartupDelays, "Pod Startup Delays Box Plot", "Delays [ms]", "boxplot_pod_startup_delays.png"},
		{data.LostRequests, "Lost Requests Box Plot", "Number of Requests", "boxplot_lost_requests.png"},
		{data.CompletedRequests, "Completed Requests Box Plot", "Number of Requests", "boxplot_completed_requests.png"},
		{data.MeanLatencies, "Mean Latencies Box Plot", "Latencies [ms]", "boxplot_mean_latencies.png"},
		{data.MaxLatencies, "Max Latencies Box Plot", "Latencies [ms]", "boxplot_max_latencies.png"},
	}
	for _, bp := range boxPlots {
		path := filepath.Join(outDir, bp.filename)
		if err := charts.SaveBoxPlot(bp.groups, data.Services, bp.title, bp.ylabel, path); err != nil {
			klog.Fatalf("Failed to render %s: %v", bp.title, err)
		}
		klog.Infof("%s saved to %s", bp.title, path)
	}

	cdfPlots := []struct {
		series   [][]float64
		title    string
		xlabel   string
		filename string
	}{
		{data.StartsProcessingDelays, "CDF of Starts Processing Delays", "Starts Processing Delays [ms]", "cdf_starts_processing_delays.png"},
		{data.PodCreationDelays, "CDF of Pod Creation Delays", "Pod Creation Delays [ms]", "cdf_pod_creation_delays.png"},
		{data.PodStartupDelays, "CDF of Pod Startup Delays", "Pod Startup Delays [ms]", "cdf_pod_startup_delays.png"},
		{data.MeanLatencies, "CDF of Mean Latencies", "Mean Latencies [ms]", "cdf_mean_latencies.png"},
		{data.MaxLatencies, "CDF of Max Latencies", "Max Latencies [ms]", "cdf_max_latencies.png"},
	}
	for _, cp := range cdfPlots {
		path := filepath.Join(outDir, cp.filename)
		if err := charts.SaveCDF(cp.series, data.Services, cp.title, cp.xlabel, path); err != nil {
			klog.Fatalf("Failed to render %s: %v", cp.title, err)
		}
		klog.Infof("%s saved to %s", cp.title, path)
	}

	klog.Infof("Results saved to %s", outDir)
}

func writeMetricsCSV(path string, data experiment.ServiceData) error {
	table := report.NewTable(
		"Service",
		"Mean Latencies [ms]", "Max Latencies [ms]",
		"Mean Lost Requests", "Max Lost Requests",
		"Mean Completed Requests", "Max Completed Requests",
		"Starts Processing Delay Mean [ms]", "Starts Processing Delay Max [ms]",
		"Pod Creation Delay Mean [ms]", "Pod Creation Delay Max [ms]",
		"Pod Startup Delay Mean [ms]", "Pod Startup Delay Max [ms]",
	)
	for i, service := range data.Services {
		table.AddRow(
			service,
			report.F2(statistics.Mean(data.MeanLatencies[i])), report.F2(statistics.Mean(data.MaxLatencies[i])),
			report.F2(statistics.Mean(data.LostRequests[i])), report.F2(statistics.Max(data.LostRequests[i])),
			report.F2(statistics.Mean(data.CompletedRequests[i])), report.F2(statistics.Max(data.CompletedRequests[i])),
			report.F2(statistics.Mean(data.StartsProcessingDelays[i])), report.F2(statistics.Max(data.StartsProcessingDelays[i])),
			report.F2(statistics.Mean(data.PodCreationDelays[i])), report.F2(statistics.Max(data.PodCreationDelays[i])),
			report.F2(statistics.Mean(data.PodStartupDelays[i])), report.F2(statistics.Max(data.PodStartupDelays[i])),
		)
	}
	return table.Write(path)
}
