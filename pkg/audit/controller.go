package audit

import corev1 "k8s.io/api/core/v1"

// Controller names accepted by the analysis tools.
const (
	KubeManager = "kube-manager"
	PreemptK8s  = "preempt-k8s"
)

// Controller describes how one of the two compared control planes
// names and labels the objects it scales, so audit events can be
// attributed back to the benchmark service they concern. It replaces
// per-call-site branching on the controller name with a single lookup.
type Controller struct {
	name string

	// resourceSuffix is appended to the logical service name to form
	// the workload object name the autoscaler patches.
	resourceSuffix string

	// hasStartsProcessing is true when the controller emits a distinct
	// starts-processing status transition. kube-manager does not:
	// there the pod-created event doubles as the processing signal.
	hasStartsProcessing bool

	// podLabel is the pod label naming the owning workload.
	podLabel string

	// podLabelSuffix is appended to the label value before comparison,
	// for controllers whose pods carry only the bare app name.
	podLabelSuffix string
}

// ControllerByName resolves a controller name to its strategy.
// Unknown names are rejected here, before any file is opened.
func ControllerByName(name string) (Controller, error) {
	switch name {
	case KubeManager:
		return Controller{
			name:           KubeManager,
			resourceSuffix: "-00001-deployment",
			podLabel:       "app",
			podLabelSuffix: "-deployment",
		}, nil
	case PreemptK8s:
		return Controller{
			name:                PreemptK8s,
			resourceSuffix:      "-00001-rtresource",
			hasStartsProcessing: true,
			podLabel:            "rtresource_name",
		}, nil
	default:
		return Controller{}, &UnsupportedControllerError{Name: name}
	}
}

// Name returns the controller name as passed on the command line.
func (c Controller) Name() string { return c.name }

// HasStartsProcessing reports whether the controller emits a distinct
// starts-processing event.
func (c Controller) HasStartsProcessing() bool { return c.hasStartsProcessing }

// ResourceName returns the workload object name the autoscaler patches
// for the given logical service.
func (c Controller) ResourceName(service string) string {
	return service + c.resourceSuffix
}

// podOwner resolves the workload a pod belongs to from its labels.
// Pods do not reference their parent resource directly, so ownership
// is carried in controller-specific labels.
func (c Controller) podOwner(pod *corev1.Pod) string {
	v, ok := pod.Labels[c.podLabel]
	if !ok || v == "" {
		return ""
	}
	return v + c.podLabelSuffix
}
