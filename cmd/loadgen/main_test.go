package main

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"
)

func TestRun_StopsCleanlyAndSortsLatencies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	issued, latencies := run(srv.URL, 100, 200*time.Millisecond)
	if issued == 0 {
		t.Fatal("Expected requests to be issued")
	}
	if int64(len(latencies)) > issued {
		t.Errorf("Expected at most %d completed requests, got %d", issued, len(latencies))
	}
	if !sort.SliceIsSorted(latencies, func(i, j int) bool { return latencies[i] < latencies[j] }) {
		t.Errorf("Expected latencies sorted ascending, got %v", latencies)
	}
}
