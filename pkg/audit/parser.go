package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/klog/v2"
)

// ServiceMetrics holds the four lifecycle timestamps extracted for one
// service from one capture, nanoseconds since epoch. Each field is set
// exactly once per capture.
type ServiceMetrics struct {
	ScaleUp          int64
	StartsProcessing int64
	PodCreated       int64
	PodStarted       int64
}

// eventSet tracks which lifecycle fields have been assigned. Presence
// is tracked apart from the values so a legitimate timestamp is never
// mistaken for "not seen yet".
type eventSet struct {
	scaleUp          bool
	startsProcessing bool
	podCreated       bool
	podStarted       bool
}

// Options tunes capture classification.
type Options struct {
	// StrictScaleUp narrows the scale-up predicate to patches that
	// replace /spec/replicas with 1, i.e. scale-from-zero only.
	StrictScaleUp bool
}

// ParseCaptureFile loads one audit capture and extracts the lifecycle
// timestamps for the named service. The controller name is validated
// before the file is touched. The boolean result is false when the
// capture contains no scale-up event at all, which means nothing
// happened in this iteration and is not an error.
func ParseCaptureFile(path, controllerName, service string, opts Options) (ServiceMetrics, bool, error) {
	ctrl, err := ControllerByName(controllerName)
	if err != nil {
		return ServiceMetrics{}, false, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return ServiceMetrics{}, false, fmt.Errorf("read capture %s: %w", path, err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return ServiceMetrics{}, false, fmt.Errorf("parse capture %s: %w", path, err)
	}

	return Classify(entries, ctrl, service, opts)
}

// Classify runs the single-pass classification over a capture's
// entries and returns the metrics for the given service. It is a pure
// fold: entries are sorted into a private copy and all state is local.
func Classify(entries []Entry, ctrl Controller, service string, opts Options) (ServiceMetrics, bool, error) {
	sorted := sortedByTimestamp(entries)

	isScaleUp := IsScaleUpEvent
	if opts.StrictScaleUp {
		isScaleUp = IsScaleFromZeroEvent
	}

	// The first scale-up across ALL services anchors the window. A
	// long-running capture may still contain events from a previous
	// experiment iteration; everything before the anchor is stale and
	// must not be attributed to this run.
	anchor, ok := firstScaleUp(sorted, isScaleUp)
	if !ok {
		klog.V(2).Infof("no scale-up events in capture, nothing to measure")
		return ServiceMetrics{}, false, nil
	}
	klog.V(2).Infof("first scale-up found at timestamp %d", anchor)

	serviceName := ctrl.ResourceName(service)
	var metrics ServiceMetrics
	var seen eventSet

	for i := range sorted {
		entry := &sorted[i]
		if int64(entry.Timestamp) < anchor {
			continue
		}
		r := &entry.Log
		ts := int64(entry.Timestamp)

		switch {
		case isScaleUp(r):
			if r.ObjectRef.Name != serviceName {
				continue
			}
			if seen.scaleUp {
				return ServiceMetrics{}, false, &DuplicateEventError{Event: "scale-up", Service: serviceName}
			}
			metrics.ScaleUp, seen.scaleUp = ts, true
			klog.V(2).Infof("scale-up event for %s at timestamp %d", serviceName, ts)

		case ctrl.HasStartsProcessing() && IsStartsProcessingEvent(r):
			if r.ObjectRef.Name != serviceName {
				continue
			}
			if seen.startsProcessing {
				return ServiceMetrics{}, false, &DuplicateEventError{Event: "starts-processing", Service: serviceName}
			}
			metrics.StartsProcessing, seen.startsProcessing = ts, true
			klog.V(2).Infof("starts-processing event for %s at timestamp %d", serviceName, ts)

		case IsPodCreatedEvent(r):
			// A created pod names its owner only through labels on the
			// request body.
			if ownerOf(r.RequestObject, ctrl) != serviceName {
				continue
			}
			if !ctrl.HasStartsProcessing() {
				// Deployments have no separate processing transition,
				// so pod creation doubles as the processing signal.
				if seen.startsProcessing {
					return ServiceMetrics{}, false, &DuplicateEventError{Event: "starts-processing", Service: serviceName}
				}
				metrics.StartsProcessing, seen.startsProcessing = ts, true
			}
			if seen.podCreated {
				return ServiceMetrics{}, false, &DuplicateEventError{Event: "pod-created", Service: serviceName}
			}
			metrics.PodCreated, seen.podCreated = ts, true
			klog.V(2).Infof("pod-created event for %s at timestamp %d", serviceName, ts)

		case IsPodStartedEvent(r):
			if ownerOf(r.ResponseObject, ctrl) != serviceName {
				continue
			}
			if seen.podStarted {
				return ServiceMetrics{}, false, &DuplicateEventError{Event: "pod-started", Service: serviceName}
			}
			metrics.PodStarted, seen.podStarted = ts, true
			klog.V(2).Infof("pod-started event for %s at timestamp %d", serviceName, ts)
		}
	}

	if err := seen.validate(&metrics, serviceName); err != nil {
		return ServiceMetrics{}, false, err
	}
	return metrics, true, nil
}

// FirstScaleUp returns the timestamp of the earliest scale-up event in
// the capture, across all services, and whether one exists.
func FirstScaleUp(entries []Entry, opts Options) (int64, bool) {
	isScaleUp := IsScaleUpEvent
	if opts.StrictScaleUp {
		isScaleUp = IsScaleFromZeroEvent
	}
	return firstScaleUp(sortedByTimestamp(entries), isScaleUp)
}

func sortedByTimestamp(entries []Entry) []Entry {
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})
	return sorted
}

func firstScaleUp(sorted []Entry, isScaleUp func(*Record) bool) (int64, bool) {
	for i := range sorted {
		if isScaleUp(&sorted[i].Log) {
			return int64(sorted[i].Timestamp), true
		}
	}
	return 0, false
}

// ownerOf decodes a raw pod object and resolves the workload it
// belongs to. Undecodable or unlabeled pods resolve to "" and never
// match a service.
func ownerOf(raw json.RawMessage, ctrl Controller) string {
	if len(raw) == 0 {
		return ""
	}
	var pod corev1.Pod
	if err := json.Unmarshal(raw, &pod); err != nil {
		return ""
	}
	return ctrl.podOwner(&pod)
}

// validate checks that every lifecycle event was observed and carries
// a sane timestamp. Negative nanoseconds cannot come from a real
// capture and indicate corrupt input; zero is tolerated only for the
// scale-up, whose timestamp may serve as the window origin.
func (s *eventSet) validate(m *ServiceMetrics, serviceName string) error {
	checks := []struct {
		name  string
		seen  bool
		ts    int64
		minTS int64
	}{
		{"scale-up", s.scaleUp, m.ScaleUp, 0},
		{"starts-processing", s.startsProcessing, m.StartsProcessing, 1},
		{"pod-created", s.podCreated, m.PodCreated, 1},
		{"pod-started", s.podStarted, m.PodStarted, 1},
	}
	for _, c := range checks {
		if !c.seen || c.ts < c.minTS {
			return &MissingEventError{Event: c.name, Service: serviceName}
		}
	}
	return nil
}
