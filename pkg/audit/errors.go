package audit

import "fmt"

// UnsupportedControllerError is returned for controller names other
// than kube-manager and preempt-k8s.
type UnsupportedControllerError struct {
	Name string
}

func (e *UnsupportedControllerError) Error() string {
	return fmt.Sprintf("unsupported controller: %q", e.Name)
}

// DuplicateEventError reports a second qualifying lifecycle event for
// a field that was already set. A duplicate means the classifier
// matched two distinct API operations as the same lifecycle step,
// which indicates a classification or identity bug, so the capture is
// abandoned rather than silently overwritten.
type DuplicateEventError struct {
	Event   string
	Service string
}

func (e *DuplicateEventError) Error() string {
	return fmt.Sprintf("duplicate %s event for %s", e.Event, e.Service)
}

// MissingEventError reports that a capture finished without one of
// the four required lifecycle events for the service, i.e. an
// incomplete experiment run.
type MissingEventError struct {
	Event   string
	Service string
}

func (e *MissingEventError) Error() string {
	return fmt.Sprintf("missing or invalid %s event for service %s in audit logs", e.Event, e.Service)
}

// ClockAnomalyError reports a negative inter-event delay. Scale-up
// precedes the other events in a correctly functioning system, so a
// negative delay means bad data or clock skew and must not be clamped.
type ClockAnomalyError struct {
	Delay   string
	Service string
	ValueMs float64
}

func (e *ClockAnomalyError) Error() string {
	return fmt.Sprintf("negative %s delay (%.3f ms) for %s: timestamps out of order", e.Delay, e.ValueMs, e.Service)
}
