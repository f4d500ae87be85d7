// Package doctor runs the diagnostics behind `asuswrt doctor`: config
// checks that need no network, then router checks that exercise each
// command family the library depends on.
package doctor

import (
	"context"

	"github.com/rileyhilliard/asuswrt/internal/util"
)

// CheckStatus represents the result status of a check.
type CheckStatus int

const (
	StatusPass CheckStatus = iota
	StatusWarn
	StatusFail
	StatusSkip
)

// String returns a human-readable status string.
func (s CheckStatus) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	case StatusSkip:
		return "skip"
	default:
		return "unknown"
	}
}

// MarshalText renders the status by name in JSON and YAML output.
func (s CheckStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CheckResult contains the outcome of running a check.
type CheckResult struct {
	Name       string      `json:"name" yaml:"name"`
	Category   string      `json:"category" yaml:"category"`
	Status     CheckStatus `json:"status" yaml:"status"`
	Message    string      `json:"message" yaml:"message"`
	Suggestion string      `json:"suggestion,omitempty" yaml:"suggestion,omitempty"`
}

// Check defines the interface for diagnostic checks.
type Check interface {
	// Name returns the check's identifier.
	Name() string

	// Category returns the check's category (e.g., "CONFIG", "ROUTER").
	Category() string

	// Run executes the check and returns the result.
	Run(ctx context.Context) CheckResult
}

// gate is implemented by checks whose failure makes the rest of their
// category pointless, such as the connection check.
type gate interface {
	Gates() bool
}

// RunAll runs the checks in order. Once a gating check fails, the checks
// after it in the same category are reported as skipped.
func RunAll(ctx context.Context, checks []Check) []CheckResult {
	results := make([]CheckResult, len(checks))
	blocked := make(map[string]string)

	for i, check := range checks {
		cat := check.Category()
		if by, ok := blocked[cat]; ok || ctx.Err() != nil {
			msg := "Skipped: " + by + " failed"
			if !ok {
				msg = "Skipped: cancelled"
			}
			results[i] = CheckResult{Name: check.Name(), Category: cat, Status: StatusSkip, Message: msg}
			continue
		}

		res := check.Run(ctx)
		res.Name, res.Category = check.Name(), cat
		results[i] = res

		if g, ok := check.(gate); ok && g.Gates() && res.Status == StatusFail {
			blocked[cat] = check.Name()
		}
	}
	return results
}

// CountByStatus counts results by status.
func CountByStatus(results []CheckResult) map[CheckStatus]int {
	counts := make(map[CheckStatus]int)
	for _, r := range results {
		counts[r.Status]++
	}
	return counts
}

// HasFailures returns true if any result has a fail status.
func HasFailures(results []CheckResult) bool {
	return CountByStatus(results)[StatusFail] > 0
}

// Summary returns a summary string of the check results.
func Summary(results []CheckResult) string {
	counts := CountByStatus(results)
	issues := counts[StatusWarn] + counts[StatusFail]
	if issues == 0 {
		return "Everything looks good"
	}
	return util.Count(issues, "issue", "issues") + " found"
}

func pass(msg string) CheckResult {
	return CheckResult{Status: StatusPass, Message: msg}
}

func warn(msg, suggestion string) CheckResult {
	return CheckResult{Status: StatusWarn, Message: msg, Suggestion: suggestion}
}

func fail(msg, suggestion string) CheckResult {
	return CheckResult{Status: StatusFail, Message: msg, Suggestion: suggestion}
}
