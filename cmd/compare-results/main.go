// Command compare-results compares a kube-manager run against a
// preempt-k8s run of the same experiment, service by service. It
// prints a comparison table, writes a comparative CSV, and renders
// side-by-side box plots and overlaid CDFs for every metric.
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
	"github.com/dessertlab/preempt-k8s/pkg/report"
	"github.com/dessertlab/preempt-k8s/pkg/statistics"
)

type comparison struct {
	Metric      string
	KubeManager float64
	PreemptK8s  float64
	Difference  float64
	Winner      string
}

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
	flag.StringVar(&outDir, "out", "compared_results", "Output directory")
	flag.StringVar(&configPath, "config", "", "Optional experiment layout config (YAML)")
	klog.InitFlags(nil)
	flag.Parse()

	if kmDir == "" || pk8sDir == "" || services <= 0 {
		klog.Fatal("-kube-manager-dir, -preempt-k8s-dir and -services are required")
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

	printComparison(km, pk8s)

	if err := writeComparativeCSV(filepath.Join(outDir, "comparative_metrics.csv"), km, pk8s); err != nil {
		klog.Fatalf("Failed to write comparative metrics: %v", err)
	}

	metricPlots := []struct {
		km   [][]float64
		pk8s [][]float64
		name string
		unit string
		slug string
	}{
		{km.StartsProcessingDelays, pk8s.StartsProcessingDelays, "Starts Processing Delays", "Delays [ms]", "starts_processing_delays"},
		{km.PodCreationDelays, pk8s.PodCreationDelays, "Pod Creation Delays", "Delays [ms]", "pod_creation_delays"},
		{km.PodStartupDelays, pk8s.PodStartupDelays, "Pod Startup Delays", "Delays [ms]", "pod_startup_delays"},
		{km.LostRequests, pk8s.LostRequests, "Lost Requests", "Number of Requests", "lost_requests"},
		{km.CompletedRequests, pk8s.CompletedRequests, "Completed Requests", "Number of Requests", "completed_requests"},
		{km.MeanLatencies, pk8s.MeanLatencies, "Mean Latencies", "Latencies [ms]", "mean_latencies"},
		{km.MaxLatencies, pk8s.MaxLatencies, "Max Latencies", "Latencies [ms]", "max_latencies"},
	}
	for _, mp := range metricPlots {
		boxPath := filepath.Join(outDir, "boxplot_"+mp.slug+".png")
		err := charts.SaveComparativeBoxPlot(
			mp.km, mp.pk8s, audit.KubeManager, audit.PreemptK8s, km.Services,
			mp.name+" Comparison", mp.unit, boxPath)
		if err != nil {
			klog.Fatalf("Failed to render %s box plot: %v", mp.name, err)
		}
		klog.Infof("%s box plot saved to %s", mp.name, boxPath)

		cdfPath := filepath.Join(outDir, "cdf_"+mp.slug+".png")
		series := [][]float64{flatten(mp.km), flatten(mp.pk8s)}
		labels := []string{audit.KubeManager, audit.PreemptK8s}
		if err := charts.SaveCDF(series, labels, "CDF of "+mp.name, mp.unit, cdfPath); err != nil {
			klog.Fatalf("Failed to render %s CDF: %v", mp.name, err)
		}
		klog.Infof("%s CDF saved to %s", mp.name, cdfPath)
	}

	klog.Infof("Comparison saved to %s", outDir)
}

func collect(dir string, services int, cfg experiment.Config, controller string) experiment.ServiceData {
	layout, err := experiment.ScanLayout(dir, services)
	if err != nil {
		klog.Fatalf("Failed to scan %s: %v", dir, err)
	}
	data, err := experiment.CollectByService(layout, cfg, controller)
	if err != nil {
		klog.Fatalf("Failed to process %s: %v", dir, err)
	}
	if data.Failures > 0 {
		klog.Warningf("%s: %d iterations failed to parse and were skipped", dir, data.Failures)
	}
	return data
}

func compare(metric string, km, pk8s float64, lowerIsBetter bool) comparison {
	c := comparison{Metric: metric, KubeManager: km, PreemptK8s: pk8s, Difference: km - pk8s}
	switch {
	case km == pk8s:
		c.Winner = "Tie"
	case lowerIsBetter == (km < pk8s):
		c.Winner = audit.KubeManager
	default:
		c.Winner = audit.PreemptK8s
	}
	return c
}

func printComparison(km, pk8s experiment.ServiceData) {
	comparisons := []comparison{
		compare("Starts Processing Delay Mean [ms]", meanOfGroups(km.StartsProcessingDelays), meanOfGroups(pk8s.StartsProcessingDelays), true),
		compare("Pod Creation Delay Mean [ms]", meanOfGroups(km.PodCreationDelays), meanOfGroups(pk8s.PodCreationDelays), true),
		compare("Pod Startup Delay Mean [ms]", meanOfGroups(km.PodStartupDelays), meanOfGroups(pk8s.PodStartupDelays), true),
		compare("Mean Latency [ms]", meanOfGroups(km.MeanLatencies), meanOfGroups(pk8s.MeanLatencies), true),
		compare("Max Latency [ms]", meanOfGroups(km.MaxLatencies), meanOfGroups(pk8s.MaxLatencies), true),
		compare("Lost Requests", meanOfGroups(km.LostRequests), meanOfGroups(pk8s.LostRequests), true),
		compare("Completed Requests", meanOfGroups(km.CompletedRequests), meanOfGroups(pk8s.CompletedRequests), false),
	}

	fmt.Println("-----------------------------------------------------------------------------------------")
	fmt.Printf("%-35s %12s %12s %12s %12s\n", "Metric", "kube-mgr", "preempt-k8s", "Diff", "Winner")
	fmt.Println("-----------------------------------------------------------------------------------------")
	kmWins, pk8sWins := 0, 0
	for _, c := range comparisons {
		fmt.Printf("%-35s %12.4f %12.4f %12.4f %12s\n", c.Metric, c.KubeManager, c.PreemptK8s, c.Difference, c.Winner)
		switch c.Winner {
		case audit.KubeManager:
			kmWins++
		case audit.PreemptK8s:
			pk8sWins++
		}
	}
	fmt.Println("-----------------------------------------------------------------------------------------")
	fmt.Printf("Summary: kube-manager wins %d, preempt-k8s wins %d\n", kmWins, pk8sWins)
}

func writeComparativeCSV(path string, km, pk8s experiment.ServiceData) error {
	table := report.NewTable(
		"Service",
		"KM Starts Processing Delay Mean [ms]", "PK8S Starts Processing Delay Mean [ms]",
		"KM Pod Creation Delay Mean [ms]", "PK8S Pod Creation Delay Mean [ms]",
		"KM Pod Startup Delay Mean [ms]", "PK8S Pod Startup Delay Mean [ms]",
		"KM Mean Latency [ms]", "PK8S Mean Latency [ms]",
		"KM Lost Requests Mean", "PK8S Lost Requests Mean",
		"KM Completed Requests Mean", "PK8S Completed Requests Mean",
	)
	for i, service := range km.Services {
		table.AddRow(
			service,
			report.F2(statistics.Mean(km.StartsProcessingDelays[i])), report.F2(statistics.Mean(pk8s.StartsProcessingDelays[i])),
			report.F2(statistics.Mean(km.PodCreationDelays[i])), report.F2(statistics.Mean(pk8s.PodCreationDelays[i])),
			report.F2(statistics.Mean(km.PodStartupDelays[i])), report.F2(statistics.Mean(pk8s.PodStartupDelays[i])),
			report.F2(statistics.Mean(km.MeanLatencies[i])), report.F2(statistics.Mean(pk8s.MeanLatencies[i])),
			report.F2(statistics.Mean(km.LostRequests[i])), report.F2(statistics.Mean(pk8s.LostRequests[i])),
			report.F2(statistics.Mean(km.CompletedRequests[i])), report.F2(statistics.Mean(pk8s.CompletedRequests[i])),
		)
	}
	return table.Write(path)
}

func meanOfGroups(groups [][]float64) float64 {
	return statistics.Mean(flatten(groups))
}

func flatten(groups [][]float64) []float64 {
	var all []float64
	for _, g := range groups {
		all = append(all, g...)
	}
	return all
}
