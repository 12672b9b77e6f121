package experiment

import (
	"path/filepath"

	"k8s.io/klog/v2"

	"github.com/dessertlab/preempt-k8s/pkg/audit"
	"github.com/dessertlab/preempt-k8s/pkg/statistics"
)

// ServiceData holds one experiment's measurements grouped by service:
// the outer index is the service, the inner slice one value per usable
// iteration. Delays and latencies are milliseconds.
type ServiceData struct {
	Services []string

	StartsProcessingDelays [][]float64
	PodCreationDelays      [][]float64
	PodStartupDelays       [][]float64

	LostRequests      [][]float64
	CompletedRequests [][]float64
	RealRPS           [][]float64
	MeanLatencies     [][]float64
	MaxLatencies      [][]float64

	// Failures counts iterations dropped because a file failed to
	// parse. The batch continues past them; callers decide whether a
	// nonzero count fails the run.
	Failures int
}

// IterationData holds one experiment's measurements aggregated per
// iteration across all services: delays averaged, request counts and
// real RPS summed, latencies pooled before taking mean and max.
type IterationData struct {
	StartsProcessingDelays []float64
	PodCreationDelays      []float64
	PodStartupDelays       []float64

	LostRequests      []float64
	CompletedRequests []float64
	RealRPS           []float64
	MeanLatencies     []float64
	MaxLatencies      []float64

	Failures int
}

// CollectByService processes every capture, status, and rps file of a
// run and accumulates results per service. The controller name is
// validated before any file is read. A file that fails to parse fails
// only its own iteration: the error is logged and the batch continues.
func CollectByService(layout Layout, cfg Config, controllerName string) (ServiceData, error) {
	ctrl, err := audit.ControllerByName(controllerName)
	if err != nil {
		return ServiceData{}, err
	}
	opts := audit.Options{StrictScaleUp: cfg.StrictScaleUp}

	data := ServiceData{}
	for i := 1; i <= layout.NumServices; i++ {
		serviceID := cfg.ServiceID(i)
		dir := ServiceDir(i)
		data.Services = append(data.Services, dir)

		var spDelays, pcDelays, psDelays []float64
		for _, capture := range layout.Captures {
			metrics, ok, err := audit.ParseCaptureFile(capture, controllerName, serviceID, opts)
			if err != nil {
				klog.Errorf("capture %s: %v", capture, err)
				data.Failures++
				continue
			}
			if !ok {
				klog.Warningf("no control plane metrics extracted for %s in %s", serviceID, capture)
				continue
			}
			d, err := metrics.Delays(ctrl, serviceID)
			if err != nil {
				klog.Errorf("capture %s: %v", capture, err)
				data.Failures++
				continue
			}
			spDelays = append(spDelays, d.StartsProcessing)
			pcDelays = append(pcDelays, d.PodCreation)
			psDelays = append(psDelays, d.PodStartup)
		}
		data.StartsProcessingDelays = append(data.StartsProcessingDelays, spDelays)
		data.PodCreationDelays = append(data.PodCreationDelays, pcDelays)
		data.PodStartupDelays = append(data.PodStartupDelays, psDelays)

		var lost, completed, realRPS []float64
		for _, name := range layout.StatusFiles[dir] {
			status, err := ParseStatusFile(filepath.Join(layout.Root, dir, name))
			if err != nil {
				klog.Errorf("%v", err)
				data.Failures++
				continue
			}
			lost = append(lost, float64(status.Lost()))
			completed = append(completed, float64(status.Completed))
			realRPS = append(realRPS, status.RealRPS)
		}
		data.LostRequests = append(data.LostRequests, lost)
		data.CompletedRequests = append(data.CompletedRequests, completed)
		data.RealRPS = append(data.RealRPS, realRPS)

		var meanLat, maxLat []float64
		for _, name := range layout.RPSFiles[dir] {
			latencies, err := ParseRPSFile(filepath.Join(layout.Root, dir, name))
			if err != nil {
				klog.Errorf("%v", err)
				data.Failures++
				continue
			}
			ms := Milliseconds(latencies)
			meanLat = append(meanLat, statistics.Mean(ms))
			maxLat = append(maxLat, statistics.Max(ms))
		}
		data.MeanLatencies = append(data.MeanLatencies, meanLat)
		data.MaxLatencies = append(data.MaxLatencies, maxLat)
	}
	return data, nil
}

// CollectByIteration processes a run and aggregates each iteration
// across all services: request counts summed, delays averaged,
// latency samples pooled.
func CollectByIteration(layout Layout, cfg Config, controllerName string) (IterationData, error) {
	ctrl, err := audit.ControllerByName(controllerName)
	if err != nil {
		return IterationData{}, err
	}
	opts := audit.Options{StrictScaleUp: cfg.StrictScaleUp}

	data := IterationData{}
	for iter, capture := range layout.Captures {
		var spDelays, pcDelays, psDelays []float64
		for i := 1; i <= layout.NumServices; i++ {
			serviceID := cfg.ServiceID(i)
			metrics, ok, err := audit.ParseCaptureFile(capture, controllerName, serviceID, opts)
			if err != nil {
				klog.Errorf("capture %s: %v", capture, err)
				data.Failures++
				continue
			}
			if !ok {
				continue
			}
			d, err := metrics.Delays(ctrl, serviceID)
			if err != nil {
				klog.Errorf("capture %s: %v", capture, err)
				data.Failures++
				continue
			}
			spDelays = append(spDelays, d.StartsProcessing)
			pcDelays = append(pcDelays, d.PodCreation)
			psDelays = append(psDelays, d.PodStartup)
		}
		data.StartsProcessingDelays = append(data.StartsProcessingDelays, statistics.Mean(spDelays))
		data.PodCreationDelays = append(data.PodCreationDelays, statistics.Mean(pcDelays))
		data.PodStartupDelays = append(data.PodStartupDelays, statistics.Mean(psDelays))

		var totalLost, totalCompleted, totalRealRPS float64
		var pooled []float64
		for i := 1; i <= layout.NumServices; i++ {
			dir := ServiceDir(i)
			if iter < len(layout.StatusFiles[dir]) {
				status, err := ParseStatusFile(filepath.Join(layout.Root, dir, layout.StatusFiles[dir][iter]))
				if err != nil {
					klog.Errorf("%v", err)
					data.Failures++
				} else {
					totalLost += float64(status.Lost())
					totalCompleted += float64(status.Completed)
					totalRealRPS += status.RealRPS
				}
			}
			if iter < len(layout.RPSFiles[dir]) {
				latencies, err := ParseRPSFile(filepath.Join(layout.Root, dir, layout.RPSFiles[dir][iter]))
				if err != nil {
					klog.Errorf("%v", err)
					data.Failures++
				} else {
					pooled = append(pooled, Milliseconds(latencies)...)
				}
			}
		}
		data.LostRequests = append(data.LostRequests, totalLost)
		data.CompletedRequests = append(data.CompletedRequests, totalCompleted)
		data.RealRPS = append(data.RealRPS, totalRealRPS)
		data.MeanLatencies = append(data.MeanLatencies, statistics.Mean(pooled))
		data.MaxLatencies = append(data.MaxLatencies, statistics.Max(pooled))
	}
	return data, nil
}

