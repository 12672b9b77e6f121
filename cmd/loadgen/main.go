// Command loadgen drives one load iteration against a service and
// writes the files the analysis tools consume: a status file with the
// request accounting and an rps file with one latency sample per
// line, in microseconds. With -deployment set it first waits for the
// service's deployment to report a ready replica, so the measured
// window starts after the scale-up completes.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
	"k8s.io/klog/v2"
)

func main() {
	var (
		targetURL  string
		rps        int
		duration   time.Duration
		iteration  int
		outDir     string
		deployment string
		namespace  string
		kubeconfig string
		waitFor    time.Duration
	)
	flag.StringVar(&targetURL, "url", "", "Target service URL (required)")
	flag.IntVar(&rps, "rps", 15, "Target requests per second")
	flag.DurationVar(&duration, "duration", time.Minute, "Load duration")
	flag.IntVar(&iteration, "iteration", 1, "Iteration number used in output file names")
	flag.StringVar(&outDir, "out", ".", "Service output directory")
	flag.StringVar(&deployment, "deployment", "", "Deployment to wait for before starting (optional)")
	flag.StringVar(&namespace, "namespace", "default", "Namespace of the deployment")
	flag.StringVar(&kubeconfig, "kubeconfig", "", "Path to kubeconfig (default ~/.kube/config)")
	flag.DurationVar(&waitFor, "wait-timeout", 2*time.Minute, "Deployment readiness timeout")
	klog.InitFlags(nil)
	flag.Parse()

	if targetURL == "" {
		klog.Fatal("-url is required")
	}
	if rps <= 0 {
		klog.Fatal("-rps must be a positive integer")
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		klog.Fatalf("Failed to create %s: %v", outDir, err)
	}

	if deployment != "" {
		if err := waitForDeployment(deployment, namespace, kubeconfig, waitFor); err != nil {
			klog.Fatalf("Deployment %s/%s not ready: %v", namespace, deployment, err)
		}
		klog.Infof("Deployment %s/%s is ready", namespace, deployment)
	}

	klog.Infof("Starting iteration %d against %s at %d RPS for %s", iteration, targetURL, rps, duration)
	issued, latencies := run(targetURL, rps, duration)
	completed := len(latencies)
	realRPS := float64(completed) / duration.Seconds()
	klog.Infof("Issued %d, completed %d, real RPS %.2f", issued, completed, realRPS)

	statusPath := filepath.Join(outDir, fmt.Sprintf("iteration_%d_status.txt", iteration))
	if err := writeStatus(statusPath, issued, completed, float64(rps), realRPS); err != nil {
		klog.Fatalf("Failed to write status file: %v", err)
	}
	klog.Infof("Status saved to %s", statusPath)

	rpsPath := filepath.Join(outDir, fmt.Sprintf("rps_iteration_%d", iteration))
	if err := writeLatencies(rpsPath, latencies); err != nil {
		klog.Fatalf("Failed to write rps file: %v", err)
	}
	klog.Infof("Latencies saved to %s", rpsPath)
}

// run issues requests open-loop at the target rate and returns the
// issued count plus the latency of every completed request in
// microseconds, sorted by arrival.
func run(url string, rps int, duration time.Duration) (int64, []int64) {
	stop := make(chan struct{})
	timer := time.NewTimer(duration)
	ticker := time.NewTicker(time.Duration(int64(time.Second) / int64(rps)))
	defer ticker.Stop()

	var wg sync.WaitGroup
	var issued int64
	var mu sync.Mutex
	var latencies []int64

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				atomic.AddInt64(&issued, 1)
				wg.Add(1)
				go func() {
					defer wg.Done()
					start := time.Now()
					resp, err := http.Get(url)
					latency := time.Since(start)
					if err != nil || resp.StatusCode != http.StatusOK {
						if resp != nil {
							resp.Body.Close()
						}
						return
					}
					resp.Body.Close()
					mu.Lock()
					latencies = append(latencies, latency.Microseconds())
					mu.Unlock()
				}()
			}
		}
	}()

	<-timer.C
	ticker.Stop()
	close(stop)
	// The generator must be gone before Wait: it is the only caller of
	// wg.Add.
	<-done
	wg.Wait()

	mu.Lock()
	sorted := make([]int64, len(latencies))
	copy(sorted, latencies)
	mu.Unlock()
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return issued, sorted
}

func waitForDeployment(name, namespace, kubeconfig string, timeout time.Duration) error {
	if kubeconfig == "" {
		kubeconfig = filepath.Join(homedir.HomeDir(), ".kube", "config")
	}
	config, err := clientcmd.BuildConfigFromFlags("", kubeconfig)
	if err != nil {
		return fmt.Errorf("build config: %w", err)
	}
	client, err := kubernetes.NewForConfig(config)
	if err != nil {
		return fmt.Errorf("create client: %w", err)
	}

	ctx := context.Background()
	return wait.PollUntilContextTimeout(ctx, 2*time.Second, timeout, true,
		func(ctx context.Context) (bool, error) {
			d, err := client.AppsV1().Deployments(namespace).Get(ctx, name, metav1.GetOptions{})
			if err != nil {
				klog.V(2).Infof("get deployment %s/%s: %v", namespace, name, err)
				return false, nil
			}
			return d.Status.ReadyReplicas >= 1, nil
		})
}

func writeStatus(path string, issued int64, completed int, targetRPS, realRPS float64) error {
	content := fmt.Sprintf("Issued: %d\nCompleted: %d\nTarget RPS: %.2f\nReal RPS: %.2f\n",
		issued, completed, targetRPS, realRPS)
	return os.WriteFile(path, []byte(content), 0644)
}

func writeLatencies(path string, latencies []int64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	for _, l := range latencies {
		if _, err := fmt.Fprintf(f, "%d\n", l); err != nil {
			return err
		}
	}
	return nil
}
