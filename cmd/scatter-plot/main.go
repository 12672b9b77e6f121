// Command scatter-plot renders an event timeline for the first
// service of an experiment: every iteration contributes one row of
// lifecycle events (scale-up, starts-processing, pod-created,
// pod-started) normalized so the scale-up sits at zero. Rows are
// grouped into bands of five iterations. For kube-manager the
// starts-processing and pod-created events coincide and are drawn as
// a single collapsed marker.
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

const experimentsPerBand = 5

func main() {
	var (
		dir        string
		outDir     string
		controller string
		configPath string
	)
	flag.StringVar(&dir, "dir", "", "Experiment results directory (required)")
	flag.StringVar(&outDir, "out", "", "Output directory (required)")
	flag.StringVar(&controller, "controller", "", "Controller under test: kube-manager or preempt-k8s (required)")
	flag.StringVar(&configPath, "config", "", "Optional experiment layout config (YAML)")
	klog.InitFlags(nil)
	flag.Parse()

	if dir == "" || outDir == "" || controller == "" {
		klog.Fatal("-dir, -out and -controller are required")
	}

	ctrl, err := audit.ControllerByName(controller)
	if err != nil {
		klog.Fatalf("%v", err)
	}
	cfg, err := experiment.LoadConfig(configPath)
	if err != nil {
		klog.Fatalf("Failed to load config: %v", err)
	}
	if fi, err := os.Stat(outDir); err != nil || !fi.IsDir() {
		klog.Fatalf("%s is not a valid directory", outDir)
	}

	layout, err := experiment.ScanLayout(dir, 1)
	if err != nil {
		klog.Fatalf("Failed to scan %s: %v", dir, err)
	}
	if len(layout.Captures) == 0 {
		klog.Fatalf("No audit capture files found in %s", dir)
	}
	klog.Infof("Found %d audit capture files", len(layout.Captures))

	// The replicas patch check rejects scale-down patches that the
	// relaxed predicate would let through, keeping the zero anchor
	// honest.
	opts := audit.Options{StrictScaleUp: true}
	serviceID := cfg.ServiceID(1)

	var timelines []charts.Timeline
	for _, capture := range layout.Captures {
		metrics, ok, err := audit.ParseCaptureFile(capture, controller, serviceID, opts)
		if err != nil {
			klog.Errorf("capture %s: %v", capture, err)
			continue
		}
		if !ok {
			klog.Warningf("no events found for %s in %s", serviceID, capture)
			continue
		}
		timelines = append(timelines, buildTimeline(metrics, ctrl))
	}
	if len(timelines) == 0 {
		klog.Fatalf("No valid data found for %s", serviceID)
	}
	klog.Infof("%d iterations successfully processed for %s", len(timelines), serviceID)

	collapsed := !ctrl.HasStartsProcessing()
	title := fmt.Sprintf("Event Timeline - %s - %s (%d experiments)", controller, experiment.ServiceDir(1), len(timelines))
	path := filepath.Join(outDir, fmt.Sprintf("scatter_plot_%s_%s.png", controller, experiment.ServiceDir(1)))
	if err := charts.SaveScatterTimeline(timelines, collapsed, title, path, experimentsPerBand); err != nil {
		klog.Fatalf("Failed to render scatter plot: %v", err)
	}
	klog.Infof("Scatter plot saved to %s", path)
}

// buildTimeline normalizes one iteration's timestamps against its
// scale-up event. Offsets are milliseconds.
func buildTimeline(m audit.ServiceMetrics, ctrl audit.Controller) charts.Timeline {
	const nsPerMs = 1e6
	base := m.ScaleUp
	events := []charts.EventPoint{
		{Kind: charts.EventScaleUp, OffsetMs: 0},
		{Kind: charts.EventStartsProcessing, OffsetMs: float64(m.StartsProcessing-base) / nsPerMs},
	}
	if ctrl.HasStartsProcessing() {
		events = append(events, charts.EventPoint{Kind: charts.EventPodCreated, OffsetMs: float64(m.PodCreated-base) / nsPerMs})
	}
	events = append(events, charts.EventPoint{Kind: charts.EventPodStarted, OffsetMs: float64(m.PodStarted-base) / nsPerMs})
	return charts.Timeline{Events: events}
}
