package audit

const nsPerMs = 1_000_000

// Delays are the scale-up-relative latencies of one service in one
// capture, in milliseconds.
type Delays struct {
	// StartsProcessing is the time from the autoscaler's patch until
	// the workload began handling requests.
	StartsProcessing float64

	// PodCreation is the time from the autoscaler's patch until the
	// pod object was created.
	PodCreation float64

	// PodStartup is the time from the autoscaler's patch until the
	// kubelet reported the pod fully running.
	PodStartup float64
}

// Delays derives the three delay metrics from the lifecycle
// timestamps. For kube-manager the starts-processing timestamp was
// already assigned from the pod-created event during classification,
// so the same subtraction applies to both controllers. A negative
// result is surfaced as a ClockAnomalyError, never clamped.
func (m ServiceMetrics) Delays(ctrl Controller, service string) (Delays, error) {
	d := Delays{
		StartsProcessing: float64(m.StartsProcessing-m.ScaleUp) / nsPerMs,
		PodCreation:      float64(m.PodCreated-m.ScaleUp) / nsPerMs,
		PodStartup:       float64(m.PodStarted-m.ScaleUp) / nsPerMs,
	}
	serviceName := ctrl.ResourceName(service)
	if d.StartsProcessing < 0 {
		return Delays{}, &ClockAnomalyError{Delay: "starts-processing", Service: serviceName, ValueMs: d.StartsProcessing}
	}
	if d.PodCreation < 0 {
		return Delays{}, &ClockAnomalyError{Delay: "pod-creation", Service: serviceName, ValueMs: d.PodCreation}
	}
	if d.PodStartup < 0 {
		return Delays{}, &ClockAnomalyError{Delay: "pod-startup", Service: serviceName, ValueMs: d.PodStartup}
	}
	return d, nil
}
