// Command aggregated-results compares a kube-manager run against a
// preempt-k8s run with every metric aggregated per iteration across
// all services. It writes a two-row comparative CSV (mean and
// standard deviation per controller) plus comparative box plots and
// CDFs.
package main

import (
	"flag"
	"os"
	"path/filepath"

	"k8s.io/klog/v2"

	"github.com/dessertlab/preempt-k8s/pkg/audit"
	"github.com/dessertlab/preempt-k8s/pkg/charts"
	"github.com/dessertlab/preempt-k8s/pkg/experiment"
	"github.com/dessertlab/preempt-k8s/pkg/report"
	"github.com/dessertlab/preempt-k8s/pkg/statistics"
)

func main() {
	var (
		kmDir      string
		pk8sDir    string
		services   int
		outDir     string
		configPath string
	)
	flag.StringVar(&kmDir, "kube-manager-dir", "", "kube-manager experiment results directory (required)")
	flag.StringVar(&pk8sDir, "preempt-k8s-dir", "", "preempt-k8s experiment results directory (required)")
	flag.IntVar(&services, "services", 0, "Number of services in each experiment (required)")
	flag.StringVar(&outDir, "out", "", "Output directory (default derived from the input directories)")
	flag.StringVar(&configPath, "config", "", "Optional experiment layout config (YAML)")
	klog.InitFlags(nil)
	flag.Parse()

	if kmDir == "" || pk8sDir == "" || services <= 0 {
		klog.Fatal("-kube-manager-dir, -preempt-k8s-dir and -services are required")
	}
	if outDir == "" {
		outDir = filepath.Join("results", "aggregated",
			filepath.Base(kmDir)+"--vs--"+filepath.Base(pk8sDir))
	}

	cfg, err := experiment.LoadConfig(configPath)
	if err != nil {
		klog.Fatalf("Failed to load config: %v", err)
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		klog.Fatalf("Failed to create %s: %v", outDir, err)
	}

	km := collect(kmDir, services, cfg, audit.KubeManager)
	pk8s := collect(pk8sDir, services, cfg, audit.PreemptK8s)

	csvPath := filepath.Join(outDir, "comparative_metrics.csv")
	if err := writeComparativeCSV(csvPath, km, pk8s); err != nil {
		klog.Fatalf("Failed to write comparative metrics: %v", err)
	}
	klog.Infof("Comparative metrics saved to %s", csvPath)

	boxPlots := []struct {
		km    []float64
		pk8s  []float64
		title string
		unit  string
		file  string
	}{
		{km.StartsProcessingDelays, pk8s.StartsProcessingDelays, "Comparative Starts Processing Delays", "Delays [ms]", "comparative_boxplot_starts_processing_delays.png"},
		{km.PodCreationDelays, pk8s.PodCreationDelays, "Comparative Pod Creation Delays", "Delays [ms]", "comparative_boxplot_pod_creation_delays.png"},
		{km.PodStartupDelays, pk8s.PodStartupDelays, "Comparative Pod Startup Delays", "Delays [ms]", "comparative_boxplot_pod_startup_delays.png"},
		{km.LostRequests, pk8s.LostRequests, "Comparative Lost Requests", "Number of Requests", "comparative_boxplot_lost_requests.png"},
		{km.CompletedRequests, pk8s.CompletedRequests, "Comparative Completed Requests", "Number of Requests", "comparative_boxplot_completed_requests.png"},
		{km.RealRPS, pk8s.RealRPS, "Comparative Real RPS", "Real RPS", "comparative_boxplot_real_rps.png"},
		{km.MeanLatencies, pk8s.MeanLatencies, "Comparative Mean Latencies", "Latencies [ms]", "comparative_boxplot_mean_latencies.png"},
		{km.MaxLatencies, pk8s.MaxLatencies, "Comparative Max Latencies", "Latencies [ms]", "comparative_boxplot_max_latencies.png"},
	}
	for _, bp := range boxPlots {
		path := filepath.Join(outDir, bp.file)
		groups := [][]float64{bp.km, bp.pk8s}
		labels := []string{audit.KubeManager, audit.PreemptK8s}
		if err := charts.SaveBoxPlot(groups, labels, bp.title, bp.unit, path); err != nil {
			klog.Fatalf("Failed to render %s: %v", bp.title, err)
		}
		klog.Infof("%s saved to %s", bp.title, path)
	}

	cdfPlots := []struct {
		km    []float64
		pk8s  []float64
		title string
		unit  string
		file  string
	}{
		{km.StartsProcessingDelays, pk8s.StartsProcessingDelays, "Comparative CDF of Starts Processing Delays", "Starts Processing Delays [ms]", "comparative_cdf_starts_processing_delays.png"},
		{km.PodCreationDelays, pk8s.PodCreationDelays, "Comparative CDF of Pod Creation Delays", "Pod Creation Delays [ms]", "comparative_cdf_pod_creation_delays.png"},
		{km.PodStartupDelays, pk8s.PodStartupDelays, "Comparative CDF of Pod Startup Delays", "Pod Startup Delays [ms]", "comparative_cdf_pod_startup_delays.png"},
		{km.MeanLatencies, pk8s.MeanLatencies, "Comparative CDF of Mean Latencies", "Mean Latencies [ms]", "comparative_cdf_mean_latencies.png"},
		{km.MaxLatencies, pk8s.MaxLatencies, "Comparative CDF of Max Latencies", "Max Latencies [ms]", "comparative_cdf_max_latencies.png"},
	}
	for _, cp := range cdfPlots {
		path := filepath.Join(outDir, cp.file)
		series := [][]float64{cp.km, cp.pk8s}
		labels := []string{audit.KubeManager, audit.PreemptK8s}
		if err := charts.SaveCDF(series, labels, cp.title, cp.unit, path); err != nil {
			klog.Fatalf("Failed to render %s: %v", cp.title, err)
		}
		klog.Infof("%s saved to %s", cp.title, path)
	}

	klog.Infof("Aggregated comparison saved to %s", outDir)
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

func writeComparativeCSV(path string, km, pk8s experiment.IterationData) error {
	table := report.NewTable(
		"Controller",
		"Mean of Mean Latencies [ms]", "Std of Mean Latencies [ms]",
		"Mean of Max Latencies [ms]", "Std of Max Latencies [ms]",
		"Mean of Lost Requests", "Std of Lost Requests",
		"Mean of Completed Requests", "Std of Completed Requests",
		"Mean of Real RPS", "Std of Real RPS",
		"Mean Starts Processing Delay [ms]", "Std Starts Processing Delay [ms]",
		"Mean Pod Creation Delay [ms]", "Std Pod Creation Delay [ms]",
		"Mean Pod Startup Delay [ms]", "Std Pod Startup Delay [ms]",
	)
	for _, row := range []struct {
		name string
		data experiment.IterationData
	}{
		{audit.KubeManager, km},
		{audit.PreemptK8s, pk8s},
	} {
		table.AddRow(
			row.name,
			report.F4(statistics.Mean(row.data.MeanLatencies)), report.F4(statistics.StdDev(row.data.MeanLatencies)),
			report.F4(statistics.Mean(row.data.MaxLatencies)), report.F4(statistics.StdDev(row.data.MaxLatencies)),
			report.F4(statistics.Mean(row.data.LostRequests)), report.F4(statistics.StdDev(row.data.LostRequests)),
			report.F4(statistics.Mean(row.data.CompletedRequests)), report.F4(statistics.StdDev(row.data.CompletedRequests)),
			report.F4(statistics.Mean(row.data.RealRPS)), report.F4(statistics.StdDev(row.data.RealRPS)),
			report.F4(statistics.Mean(row.data.StartsProcessingDelays)), report.F4(statistics.StdDev(row.data.StartsProcessingDelays)),
			report.F4(statistics.Mean(row.data.PodCreationDelays)), report.F4(statistics.StdDev(row.data.PodCreationDelays)),
			report.F4(statistics.Mean(row.data.PodStartupDelays)), report.F4(statistics.StdDev(row.data.PodStartupDelays)),
		)
	}
	return table.Write(path)
}
