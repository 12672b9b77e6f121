package audit

import (
	"bytes"
	"encoding/json"
	"strings"

	corev1 "k8s.io/api/core/v1"
)

// Service-account identities observed in the audit stream. The
// autoscaler patches workloads through the Knative controller account,
// preempt-k8s updates its custom resources through its own account,
// and plain Deployments get their pods from the replicaset controller.
const (
	autoscalerIdentity           = "system:serviceaccount:knative-serving:controller"
	preemptK8sIdentity           = "system:serviceaccount:realtime:preempt-k8s"
	replicaSetControllerIdentity = "system:serviceaccount:kube-system:replicaset-controller"

	autoscalerAgentPrefix = "autoscaler/"
	kubeletAgentPrefix    = "kubelet/"

	experimentNamespace = "default"
	rtResourceGroup     = "rtgroup.critical.com"
)

// requiredPodConditions must all be True for a kubelet status patch to
// count as the pod-started event.
var requiredPodConditions = []corev1.PodConditionType{
	corev1.PodReadyToStartContainers,
	corev1.PodInitialized,
	corev1.PodReady,
	corev1.ContainersReady,
	corev1.PodScheduled,
}

// IsScaleUpEvent reports whether the record is the autoscaler patching
// a workload's replica count: a successful patch on a deployments or
// rtresources object in the experiment namespace, issued by the
// autoscaler identity.
func IsScaleUpEvent(r *Record) bool {
	if r.Verb != "patch" {
		return false
	}
	if r.User.Username != autoscalerIdentity {
		return false
	}
	if !strings.HasPrefix(r.UserAgent, autoscalerAgentPrefix) {
		return false
	}
	ref := r.ObjectRef
	if ref.Resource != "deployments" && ref.Resource != "rtresources" {
		return false
	}
	if ref.Namespace != experimentNamespace {
		return false
	}
	if ref.APIGroup != "apps" && ref.APIGroup != rtResourceGroup {
		return false
	}
	if ref.APIVersion != "v1" {
		return false
	}
	return r.ResponseStatus.Code == 200
}

// jsonPatchOp is one operation of an RFC 6902 patch body. Value stays
// raw so unrelated operations with structured values don't break
// decoding.
type jsonPatchOp struct {
	Op    string          `json:"op"`
	Path  string          `json:"path"`
	Value json.RawMessage `json:"value"`
}

// IsScaleFromZeroEvent is the strict variant of IsScaleUpEvent: the
// patch body must replace /spec/replicas with 1, which pins the match
// to the zero-to-one transition specifically rather than any replica
// adjustment.
func IsScaleFromZeroEvent(r *Record) bool {
	if !IsScaleUpEvent(r) {
		return false
	}
	var ops []jsonPatchOp
	if err := json.Unmarshal(r.RequestObject, &ops); err != nil {
		return false
	}
	for _, op := range ops {
		if op.Op == "replace" && op.Path == "/spec/replicas" &&
			bytes.Equal(bytes.TrimSpace(op.Value), []byte("1")) {
			return true
		}
	}
	return false
}

// rtResourceStatus is the slice of an rtresource status update the
// starts-processing check needs. Condition timestamps are kept as raw
// strings: the discriminant below is byte-for-byte equality, and
// parsing them into time values would erase formatting differences.
type rtResourceStatus struct {
	Status struct {
		Conditions []rtCondition `json:"conditions"`
	} `json:"status"`
}

type rtCondition struct {
	Type               string `json:"type"`
	Status             string `json:"status"`
	LastTransitionTime string `json:"lastTransitionTime"`
}

// IsStartsProcessingEvent reports whether the record is preempt-k8s
// marking an rtresource as having started processing: a successful
// status update whose response carries Progressing=True and
// Ready=False with identical lastTransitionTime values. The shared
// transition time is what distinguishes the moment processing began
// from any later, unrelated status update that happens to carry both
// conditions. Only the preempt-k8s control path emits this event.
func IsStartsProcessingEvent(r *Record) bool {
	if r.Verb != "update" {
		return false
	}
	if r.User.Username != preemptK8sIdentity {
		return false
	}
	ref := r.ObjectRef
	if ref.Resource != "rtresources" || ref.Subresource != "status" {
		return false
	}
	if ref.Namespace != experimentNamespace {
		return false
	}
	if ref.APIGroup != rtResourceGroup || ref.APIVersion != "v1" {
		return false
	}
	if r.ResponseStatus.Code != 200 {
		return false
	}

	var obj rtResourceStatus
	if err := json.Unmarshal(r.ResponseObject, &obj); err != nil {
		return false
	}

	var progressingAt, readyAt string
	var progressing, ready bool
	for _, cond := range obj.Status.Conditions {
		if cond.Type == "Progressing" && cond.Status == "True" {
			progressing = true
			progressingAt = cond.LastTransitionTime
		}
		if cond.Type == "Ready" && cond.Status == "False" {
			ready = true
			readyAt = cond.LastTransitionTime
		}
	}
	if !progressing || !ready {
		return false
	}
	if progressingAt == "" || readyAt == "" {
		return false
	}
	return progressingAt == readyAt
}

// IsPodCreatedEvent reports whether the record is a successful pod
// creation by either the replicaset controller (kube-manager path) or
// preempt-k8s, which schedules pods itself. For kube-manager this
// event also serves as the starts-processing signal, since plain
// Deployments have no separate processing transition.
func IsPodCreatedEvent(r *Record) bool {
	if r.Verb != "create" {
		return false
	}
	if r.User.Username != replicaSetControllerIdentity && r.User.Username != preemptK8sIdentity {
		return false
	}
	ref := r.ObjectRef
	if ref.Resource != "pods" {
		return false
	}
	if ref.Namespace != experimentNamespace || ref.APIVersion != "v1" {
		return false
	}
	return r.ResponseStatus.Code == 201
}

// IsPodStartedEvent reports whether the record is the kubelet status
// patch that marks a pod fully running: phase Running and every one of
// the five readiness conditions True. A partial condition set, or any
// condition not True, fails the match.
func IsPodStartedEvent(r *Record) bool {
	if r.Verb != "patch" {
		return false
	}
	if !strings.HasPrefix(r.UserAgent, kubeletAgentPrefix) {
		return false
	}
	ref := r.ObjectRef
	if ref.Resource != "pods" || ref.Subresource != "status" {
		return false
	}
	if ref.Namespace != experimentNamespace || ref.APIVersion != "v1" {
		return false
	}
	if r.ResponseStatus.Code != 200 {
		return false
	}

	var pod corev1.Pod
	if err := json.Unmarshal(r.ResponseObject, &pod); err != nil {
		return false
	}
	if pod.Status.Phase != corev1.PodRunning {
		return false
	}

	seen := make(map[corev1.PodConditionType]corev1.ConditionStatus, len(requiredPodConditions))
	for _, cond := range pod.Status.Conditions {
		seen[cond.Type] = cond.Status
	}
	for _, required := range requiredPodConditions {
		if seen[required] != corev1.ConditionTrue {
			return false
		}
	}
	return true
}
