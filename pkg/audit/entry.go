package audit

// Package audit classifies Kubernetes API-server audit log entries
// captured during autoscaling experiments and derives per-service
// scaling-latency metrics from them.

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// NanoTime is a point in time expressed as nanoseconds since the Unix
// epoch. Capture files emit it either as a JSON number or as a decimal
// string, depending on the log shipper version.
type NanoTime int64

func (t *NanoTime) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*t = 0
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	*t = NanoTime(v)
	return nil
}

// Entry is one record in an audit capture file.
type Entry struct {
	Timestamp NanoTime `json:"timestamp"`
	Log       Record   `json:"log"`
}

// Record is the audit payload of an entry. RequestObject and
// ResponseObject are kept raw: depending on the verb they hold a full
// API object or a JSON-Patch array, and most entries never need either
// decoded.
type Record struct {
	Verb           string          `json:"verb"`
	User           UserInfo        `json:"user"`
	UserAgent      string          `json:"userAgent"`
	ObjectRef      ObjectRef       `json:"objectRef"`
	ResponseStatus ResponseStatus  `json:"responseStatus"`
	RequestObject  json.RawMessage `json:"requestObject"`
	ResponseObject json.RawMessage `json:"responseObject"`
}

// UserInfo identifies the issuer of an audited request.
type UserInfo struct {
	Username string `json:"username"`
}

// ObjectRef identifies the API object an audited request targeted.
type ObjectRef struct {
	Resource    string `json:"resource"`
	Namespace   string `json:"namespace"`
	APIGroup    string `json:"apiGroup"`
	APIVersion  string `json:"apiVersion"`
	Name        string `json:"name"`
	Subresource string `json:"subresource"`
}

// ResponseStatus carries the HTTP status the API server answered with.
type ResponseStatus struct {
	Code int `json:"code"`
}
