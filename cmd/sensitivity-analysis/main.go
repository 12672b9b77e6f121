// Command sensitivity-analysis compares both controllers across
// three interference levels (15, 30 and 45 interfering resources).
// Each of the six input runs is aggregated per iteration, then every
// metric gets a six-box plot and a six-line CDF.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"k8s.io/klog/v2"

	"github.com/dessertlab/preempt-k8s/pkg/audit"
	"github.com/dessertlab/preempt-k8s/pkg/charts"
	"github.com/dessertlab/preempt-k8s/pkg/experiment"
)

var interferenceLevels = []int{15, 30, 45}

func main() {
	var (
		kmDirs     [3]string
		pk8sDirs   [3]string
		services   int
		outDir     string
		configPath string
	)
	for i, level := range interferenceLevels {
		flag.StringVar(&kmDirs[i], fmt.Sprintf("kube-manager-%d-dir", level), "",
			fmt.Sprintf("kube-manager results directory with %d interfering resources (required)", level))
		flag.StringVar(&pk8sDirs[i], fmt.Sprintf("preempt-k8s-%d-dir", level), "",
			fmt.Sprintf("preempt-k8s results directory with %d interfering resources (required)", level))
	}
	flag.IntVar(&services, "services", 0, "Number of services in each experiment (required)")
	flag.StringVar(&outDir, "out", "", "Output directory (default derived from -services)")
	flag.StringVar(&configPath, "config", "", "Optional experiment layout config (YAML)")
	klog.InitFlags(nil)
	flag.Parse()

	for i := range interferenceLevels {
		if kmDirs[i] == "" || pk8sDirs[i] == "" {
			klog.Fatal("All six results directories are required")
		}
	}
	if services <= 0 {
		klog.Fatal("-services must be a positive integer")
	}
	if outDir == "" {
		outDir = filepath.Join("results", "sensitivity-analysis",
			fmt.Sprintf("sensitivity-analysis-%d-services", services))
	}

	cfg, err := experiment.LoadConfig(configPath)
	if err != nil {
		klog.Fatalf("Failed to load config: %v", err)
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		klog.Fatalf("Failed to create %s: %v", outDir, err)
	}

	// Six runs ordered by interference level, kube-manager first
	// within each level.
	var runs [6]experiment.IterationData
	var labels [6]string
	for i, level := range interferenceLevels {
		runs[2*i] = collect(kmDirs[i], services, cfg, audit.KubeManager)
		labels[2*i] = fmt.Sprintf("KM-%d", level)
		runs[2*i+1] = collect(pk8sDirs[i], services, cfg, audit.PreemptK8s)
		labels[2*i+1] = fmt.Sprintf("PK8s-%d", level)
	}

	metrics := []struct {
		pick  func(experiment.IterationData) []float64
		name  string
		unit  string
		slug  string
	}{
		{func(d experiment.IterationData) []float64 { return d.StartsProcessingDelays }, "Starts Processing Delays", "Delays [ms]", "starts_processing_delays"},
		{func(d experiment.IterationData) []float64 { return d.PodCreationDelays }, "Pod Creation Delays", "Delays [ms]", "pod_creation_delays"},
		{func(d experiment.IterationData) []float64 { return d.PodStartupDelays }, "Pod Startup Delays", "Delays [ms]", "pod_startup_delays"},
		{func(d experiment.IterationData) []float64 { return d.LostRequests }, "Lost Requests", "Number of Requests", "lost_requests"},
		{func(d experiment.IterationData) []float64 { return d.CompletedRequests }, "Completed Requests", "Number of Requests", "completed_requests"},
		{func(d experiment.IterationData) []float64 { return d.RealRPS }, "Real RPS", "Real RPS", "real_rps"},
		{func(d experiment.IterationData) []float64 { return d.MeanLatencies }, "Mean Latencies", "Latencies [ms]", "mean_latencies"},
		{func(d experiment.IterationData) []float64 { return d.MaxLatencies }, "Max Latencies", "Latencies [ms]", "max_latencies"},
	}

	for _, m := range metrics {
		groups := make([][]float64, len(runs))
		for i, run := range runs {
			groups[i] = m.pick(run)
		}
		path := filepath.Join(outDir, "sensitivity_boxplot_"+m.slug+".png")
		if err := charts.SaveBoxPlot(groups, labels[:], "Sensitivity Analysis: "+m.name, m.unit, path); err != nil {
			klog.Fatalf("Failed to render %s box plot: %v", m.name, err)
		}
		klog.Infof("Sensitivity Analysis: %s saved to %s", m.name, path)
	}

	// Request counts are integer-valued sums; CDFs are drawn for the
	// continuous metrics only.
	for _, m := range metrics {
		if m.slug == "lost_requests" || m.slug == "completed_requests" || m.slug == "real_rps" {
			continue
		}
		series := make([][]float64, len(runs))
		for i, run := range runs {
			series[i] = m.pick(run)
		}
		path := filepath.Join(outDir, "sensitivity_cdf_"+m.slug+".png")
		if err := charts.SaveCDF(series, labels[:], "Sensitivity Analysis: CDF of "+m.name, m.name+" [ms]", path); err != nil {
			klog.Fatalf("Failed to render %s CDF: %v", m.name, err)
		}
		klog.Infof("Sensitivity Analysis: CDF of %s saved to %s", m.name, path)
	}

	klog.Infof("Sensitivity analysis saved to %s", outDir)
}

func collect(dir string, services int, cfg experiment.Config, controller string) experiment.IterationData {
	layout, err := experiment.ScanLayout(dir, services)
	if err != nil {
		klog.Fatalf("Failed to scan %s: %v", dir, err)
	}
	data, err := experiment.CollectByIteration(layout, cfg, controller)
	if err != nil {
		klog.Fatalf("Failed to process %s: %v", dir, err)
	}
	if data.Failures > 0 {
		klog.Warningf("%s: %d files failed to parse and were skipped", dir, data.Failures)
	}
	return data
}
