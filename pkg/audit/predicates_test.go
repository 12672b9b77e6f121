package audit

import (
	"encoding/json"
	"testing"
)

func scaleUpRecord(resource, apiGroup, name string) *Record {
	return &Record{
		Verb:      "patch",
		User:      UserInfo{Username: autoscalerIdentity},
		UserAgent: "autoscaler/v0.39.0 (linux/amd64)",
		ObjectRef: ObjectRef{
			Resource:   resource,
			Namespace:  "default",
			APIGroup:   apiGroup,
			APIVersion: "v1",
			Name:       name,
		},
		ResponseStatus: ResponseStatus{Code: 200},
		RequestObject:  json.RawMessage(`[{"op":"replace","path":"/spec/replicas","value":1}]`),
	}
}

func startsProcessingRecord(name, progressingAt, readyAt string) *Record {
	response := map[string]any{
		"status": map[string]any{
			"conditions": []map[string]string{
				{"type": "Progressing", "status": "True", "lastTransitionTime": progressingAt},
				{"type": "Ready", "status": "False", "lastTransitionTime": readyAt},
			},
		},
	}
	raw, _ := json.Marshal(response)
	return &Record{
		Verb: "update",
		User: UserInfo{Username: preemptK8sIdentity},
		ObjectRef: ObjectRef{
			Resource:    "rtresources",
			Namespace:   "default",
			APIGroup:    rtResourceGroup,
			APIVersion:  "v1",
			Name:        name,
			Subresource: "status",
		},
		ResponseStatus: ResponseStatus{Code: 200},
		ResponseObject: raw,
	}
}

func podCreatedRecord(username string, labels map[string]string) *Record {
	request := map[string]any{
		"metadata": map[string]any{"labels": labels},
	}
	raw, _ := json.Marshal(request)
	return &Record{
		Verb: "create",
		User: UserInfo{Username: username},
		ObjectRef: ObjectRef{
			Resource:   "pods",
			Namespace:  "default",
			APIVersion: "v1",
		},
		ResponseStatus: ResponseStatus{Code: 201},
		RequestObject:  raw,
	}
}

func podStartedRecord(labels map[string]string, phase string, conditions map[string]string) *Record {
	var conds []map[string]string
	for condType, status := range conditions {
		conds = append(conds, map[string]string{"type": condType, "status": status})
	}
	response := map[string]any{
		"metadata": map[string]any{"labels": labels},
		"status":   map[string]any{"phase": phase, "conditions": conds},
	}
	raw, _ := json.Marshal(response)
	return &Record{
		Verb:      "patch",
		UserAgent: "kubelet/v1.29.0 (linux/amd64)",
		ObjectRef: ObjectRef{
			Resource:    "pods",
			Namespace:   "default",
			APIVersion:  "v1",
			Subresource: "status",
		},
		ResponseStatus: ResponseStatus{Code: 200},
		ResponseObject: raw,
	}
}

func allPodConditionsTrue() map[string]string {
	return map[string]string{
		"PodReadyToStartContainers": "True",
		"Initialized":               "True",
		"Ready":                     "True",
		"ContainersReady":           "True",
		"PodScheduled":              "True",
	}
}

func TestIsScaleUpEvent_Deployment(t *testing.T) {
	r := scaleUpRecord("deployments", "apps", "svc-00001-deployment")
	if !IsScaleUpEvent(r) {
		t.Error("Expected deployment patch to match")
	}
}

func TestIsScaleUpEvent_RTResource(t *testing.T) {
	r := scaleUpRecord("rtresources", rtResourceGroup, "svc-00001-rtresource")
	if !IsScaleUpEvent(r) {
		t.Error("Expected rtresource patch to match")
	}
}

func TestIsScaleUpEvent_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Record)
	}{
		{"wrong verb", func(r *Record) { r.Verb = "update" }},
		{"wrong identity", func(r *Record) { r.User.Username = "system:admin" }},
		{"wrong agent", func(r *Record) { r.UserAgent = "kubectl/v1.29.0" }},
		{"wrong resource", func(r *Record) { r.ObjectRef.Resource = "statefulsets" }},
		{"wrong namespace", func(r *Record) { r.ObjectRef.Namespace = "kube-system" }},
		{"wrong group", func(r *Record) { r.ObjectRef.APIGroup = "batch" }},
		{"wrong version", func(r *Record) { r.ObjectRef.APIVersion = "v2" }},
		{"failed request", func(r *Record) { r.ResponseStatus.Code = 409 }},
	}
	for _, tc := range cases {
		r := scaleUpRecord("deployments", "apps", "svc-00001-deployment")
		tc.mutate(r)
		if IsScaleUpEvent(r) {
			t.Errorf("%s: expected no match", tc.name)
		}
	}
}

func TestIsScaleFromZeroEvent_RequiresReplicasPatch(t *testing.T) {
	r := scaleUpRecord("deployments", "apps", "svc-00001-deployment")
	if !IsScaleFromZeroEvent(r) {
		t.Error("Expected replicas=1 patch to match")
	}

	r.RequestObject = json.RawMessage(`[{"op":"replace","path":"/spec/replicas","value":0}]`)
	if IsScaleFromZeroEvent(r) {
		t.Error("Expected scale-down patch not to match")
	}

	r.RequestObject = json.RawMessage(`[{"op":"replace","path":"/metadata/annotations","value":{}}]`)
	if IsScaleFromZeroEvent(r) {
		t.Error("Expected unrelated patch not to match")
	}
}

func TestIsScaleFromZeroEvent_RelaxedStillMatches(t *testing.T) {
	// The relaxed predicate ignores the patch body entirely.
	r := scaleUpRecord("deployments", "apps", "svc-00001-deployment")
	r.RequestObject = json.RawMessage(`[{"op":"replace","path":"/spec/replicas","value":0}]`)
	if !IsScaleUpEvent(r) {
		t.Error("Expected relaxed predicate to match regardless of patch value")
	}
}

func TestIsStartsProcessingEvent_Match(t *testing.T) {
	r := startsProcessingRecord("svc-00001-rtresource", "2025-03-01T10:00:00Z", "2025-03-01T10:00:00Z")
	if !IsStartsProcessingEvent(r) {
		t.Error("Expected matching transition times to match")
	}
}

func TestIsStartsProcessingEvent_MismatchedTransitionTimes(t *testing.T) {
	r := startsProcessingRecord("svc-00001-rtresource", "2025-03-01T10:00:00Z", "2025-03-01T10:00:05Z")
	if IsStartsProcessingEvent(r) {
		t.Error("Expected different transition times not to match")
	}
}

func TestIsStartsProcessingEvent_MissingCondition(t *testing.T) {
	r := startsProcessingRecord("svc-00001-rtresource", "2025-03-01T10:00:00Z", "2025-03-01T10:00:00Z")
	r.ResponseObject = json.RawMessage(`{"status":{"conditions":[{"type":"Progressing","status":"True","lastTransitionTime":"2025-03-01T10:00:00Z"}]}}`)
	if IsStartsProcessingEvent(r) {
		t.Error("Expected missing Ready condition not to match")
	}
}

func TestIsPodCreatedEvent_BothIdentities(t *testing.T) {
	for _, username := range []string{replicaSetControllerIdentity, preemptK8sIdentity} {
		r := podCreatedRecord(username, map[string]string{"app": "svc-00001"})
		if !IsPodCreatedEvent(r) {
			t.Errorf("Expected pod creation by %s to match", username)
		}
	}
}

func TestIsPodCreatedEvent_RequiresCreatedCode(t *testing.T) {
	r := podCreatedRecord(replicaSetControllerIdentity, map[string]string{"app": "svc-00001"})
	r.ResponseStatus.Code = 200
	if IsPodCreatedEvent(r) {
		t.Error("Expected non-201 response not to match")
	}
}

func TestIsPodStartedEvent_Match(t *testing.T) {
	r := podStartedRecord(map[string]string{"app": "svc-00001"}, "Running", allPodConditionsTrue())
	if !IsPodStartedEvent(r) {
		t.Error("Expected fully running pod to match")
	}
}

func TestIsPodStartedEvent_RequiresAllConditions(t *testing.T) {
	conditions := allPodConditionsTrue()
	conditions["ContainersReady"] = "False"
	r := podStartedRecord(map[string]string{"app": "svc-00001"}, "Running", conditions)
	if IsPodStartedEvent(r) {
		t.Error("Expected pod with a False condition not to match")
	}

	partial := map[string]string{"Ready": "True", "PodScheduled": "True"}
	r = podStartedRecord(map[string]string{"app": "svc-00001"}, "Running", partial)
	if IsPodStartedEvent(r) {
		t.Error("Expected pod with missing conditions not to match")
	}
}

func TestIsPodStartedEvent_RequiresRunningPhase(t *testing.T) {
	r := podStartedRecord(map[string]string{"app": "svc-00001"}, "Pending", allPodConditionsTrue())
	if IsPodStartedEvent(r) {
		t.Error("Expected pending pod not to match")
	}
}
