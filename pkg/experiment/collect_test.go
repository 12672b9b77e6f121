package experiment

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/dessertlab/preempt-k8s/pkg/audit"
)

// captureJSON builds a minimal preempt-k8s capture for service
// rnn-serving-python-1 with the four lifecycle events at fixed
// offsets: scale-up at base, starts-processing +50ms, pod-created
// +60ms, pod-started +500ms.
func captureJSON(base int64) string {
	const resource = "rnn-serving-python-1-00001-rtresource"
	return fmt.Sprintf(`[
  {"timestamp":"%d","log":{"verb":"patch","user":{"username":"system:serviceaccount:knative-serving:controller"},"userAgent":"autoscaler/v0.39.0","objectRef":{"resource":"rtresources","namespace":"default","apiGroup":"rtgroup.critical.com","apiVersion":"v1","name":"%s"},"responseStatus":{"code":200},"requestObject":[{"op":"replace","path":"/spec/replicas","value":1}]}},
  {"timestamp":"%d","log":{"verb":"update","user":{"username":"system:serviceaccount:realtime:preempt-k8s"},"objectRef":{"resource":"rtresources","namespace":"default","apiGroup":"rtgroup.critical.com","apiVersion":"v1","name":"%s","subresource":"status"},"responseStatus":{"code":200},"responseObject":{"status":{"conditions":[{"type":"Progressing","status":"True","lastTransitionTime":"2025-03-01T10:00:00Z"},{"type":"Ready","status":"False","lastTransitionTime":"2025-03-01T10:00:00Z"}]}}}},
  {"timestamp":"%d","log":{"verb":"create","user":{"username":"system:serviceaccount:realtime:preempt-k8s"},"objectRef":{"resource":"pods","namespace":"default","apiVersion":"v1"},"responseStatus":{"code":201},"requestObject":{"metadata":{"labels":{"rtresource_name":"%s"}}}}},
  {"timestamp":"%d","log":{"verb":"patch","userAgent":"kubelet/v1.29.0","objectRef":{"resource":"pods","namespace":"default","apiVersion":"v1","subresource":"status"},"responseStatus":{"code":200},"responseObject":{"metadata":{"labels":{"rtresource_name":"%s"}},"status":{"phase":"Running","conditions":[{"type":"PodReadyToStartContainers","status":"True"},{"type":"Initialized","status":"True"},{"type":"Ready","status":"True"},{"type":"ContainersReady","status":"True"},{"type":"PodScheduled","status":"True"}]}}}}
]`,
		base, resource,
		base+50_000_000, resource,
		base+60_000_000, resource,
		base+500_000_000, resource)
}

func makeAnalysisRun(t *testing.T, iterations int) string {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, ServiceDir(1))
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	for iter := 1; iter <= iterations; iter++ {
		writeFile(t, dir, formatStatusName(iter),
			"Issued: 100\nCompleted: 95\nTarget RPS: 15.00\nReal RPS: 14.87\n")
		writeFile(t, dir, formatRPSName(iter), "1000\n2000\n3000\n")
		writeFile(t, root, formatCaptureName(iter), captureJSON(int64(iter)*1_000_000_000))
	}
	return root
}

func TestCollectByService(t *testing.T) {
	root := makeAnalysisRun(t, 2)
	layout, err := ScanLayout(root, 1)
	if err != nil {
		t.Fatalf("ScanLayout: %v", err)
	}

	data, err := CollectByService(layout, DefaultConfig(), audit.PreemptK8s)
	if err != nil {
		t.Fatalf("CollectByService: %v", err)
	}
	if data.Failures != 0 {
		t.Errorf("Expected no failures, got %d", data.Failures)
	}
	if len(data.Services) != 1 || data.Services[0] != "service-1" {
		t.Fatalf("Unexpected services: %v", data.Services)
	}

	delays := data.StartsProcessingDelays[0]
	if len(delays) != 2 {
		t.Fatalf("Expected 2 delay samples, got %d", len(delays))
	}
	for _, d := range delays {
		if d != 50 {
			t.Errorf("Expected 50ms starts-processing delay, got %f", d)
		}
	}
	if data.PodStartupDelays[0][0] != 500 {
		t.Errorf("Expected 500ms pod-startup delay, got %f", data.PodStartupDelays[0][0])
	}

	if data.LostRequests[0][0] != 5 {
		t.Errorf("Expected 5 lost requests, got %f", data.LostRequests[0][0])
	}
	if data.MeanLatencies[0][0] != 2 {
		t.Errorf("Expected 2ms mean latency, got %f", data.MeanLatencies[0][0])
	}
	if data.MaxLatencies[0][0] != 3 {
		t.Errorf("Expected 3ms max latency, got %f", data.MaxLatencies[0][0])
	}
}

func TestCollectByService_BadCaptureFailsOnlyItsIteration(t *testing.T) {
	root := makeAnalysisRun(t, 2)
	writeFile(t, root, formatCaptureName(2), "{not json")

	layout, err := ScanLayout(root, 1)
	if err != nil {
		t.Fatalf("ScanLayout: %v", err)
	}
	data, err := CollectByService(layout, DefaultConfig(), audit.PreemptK8s)
	if err != nil {
		t.Fatalf("CollectByService: %v", err)
	}
	if data.Failures != 1 {
		t.Errorf("Expected 1 failure, got %d", data.Failures)
	}
	if len(data.StartsProcessingDelays[0]) != 1 {
		t.Errorf("Expected 1 surviving delay sample, got %d", len(data.StartsProcessingDelays[0]))
	}
}

func TestCollectByService_UnknownController(t *testing.T) {
	root := makeAnalysisRun(t, 1)
	layout, err := ScanLayout(root, 1)
	if err != nil {
		t.Fatalf("ScanLayout: %v", err)
	}
	if _, err := CollectByService(layout, DefaultConfig(), "vpa"); err == nil {
		t.Error("Expected error for unknown controller")
	}
}

func TestCollectByIteration(t *testing.T) {
	root := makeAnalysisRun(t, 2)
	layout, err := ScanLayout(root, 1)
	if err != nil {
		t.Fatalf("ScanLayout: %v", err)
	}

	data, err := CollectByIteration(layout, DefaultConfig(), audit.PreemptK8s)
	if err != nil {
		t.Fatalf("CollectByIteration: %v", err)
	}
	if len(data.StartsProcessingDelays) != 2 {
		t.Fatalf("Expected 2 iterations, got %d", len(data.StartsProcessingDelays))
	}
	if data.StartsProcessingDelays[0] != 50 {
		t.Errorf("Expected 50ms mean delay, got %f", data.StartsProcessingDelays[0])
	}
	if data.CompletedRequests[0] != 95 {
		t.Errorf("Expected 95 completed requests, got %f", data.CompletedRequests[0])
	}
	if data.MaxLatencies[1] != 3 {
		t.Errorf("Expected 3ms max latency, got %f", data.MaxLatencies[1])
	}
}
