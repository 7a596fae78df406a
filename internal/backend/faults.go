package backend

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Faults configures simulated backend trouble.
type Faults struct {
	// Latency is added before every operation.
	Latency time.Duration
	// Rate is the probability in [0,1] that an operation fails with item.ErrTransient.
	Rate float64
	// Code is the HTTP status the API reports for injected failures.
	Code int
}

// Enabled reports whether any fault is configured.
func (f Faults) Enabled() bool {
	return f.Latency > 0 || f.Rate > 0
}

// StatusCode returns the HTTP status for injected failures.
func (f Faults) StatusCode() int {
	if f.Code == 0 {
		return http.StatusServiceUnavailable
	}
	return f.Code
}

// ParseFaults parses "rate=<float>,code=<status>" into the failure part of
// Faults. An empty string disables failure injection.
func ParseFaults(raw string) (Faults, error) {
	var f Faults
	if strings.TrimSpace(raw) == "" {
		return f, nil
	}

	for part := range strings.SplitSeq(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, val, ok := strings.Cut(part, "=")
		if !ok {
			return Faults{}, fmt.Errorf("invalid fail segment %q", part)
		}
		val = strings.TrimSpace(val)

		switch strings.TrimSpace(key) {
		case "rate":
			rate, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return Faults{}, fmt.Errorf("parse rate: %w", err)
			}
			if !(rate >= 0 && rate <= 1) {
				return Faults{}, fmt.Errorf("rate %v out of range [0,1]", rate)
			}
			f.Rate = rate
		case "code":
			code, err := strconv.Atoi(val)
			if err != nil {
				return Faults{}, fmt.Errorf("parse code: %w", err)
			}
			if code < 500 || code > 599 {
				return Faults{}, fmt.Errorf("code %d must be a 5xx status", code)
			}
			f.Code = code
		default:
			return Faults{}, fmt.Errorf("unknown fail key %q", key)
		}
	}
	return f, nil
}
