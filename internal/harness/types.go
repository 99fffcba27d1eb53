package harness

import (
	"github.com/roach88/vantage/internal/jsonwire"
)

// RoundEvent records one resolution round.
type RoundEvent struct {
	Round     int `json:"round"`
	Deferred  int `json:"deferred"`
	Params    int `json:"params"`
	Remaining int `json:"remaining"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expectations match.
	Pass bool `json:"pass"`

	// Preview is the expression preview before resolution.
	Preview string `json:"preview"`

	// Resolved is the preview after resolution; empty on failure.
	Resolved string `json:"resolved,omitempty"`

	// Template and Params are the flat form after resolution.
	Template string           `json:"template,omitempty"`
	Params   []jsonwire.Value `json:"params,omitempty"`

	// Rounds is the number of resolution rounds that ran.
	Rounds int `json:"rounds"`

	// Trace lists every completed round in order.
	Trace []RoundEvent `json:"trace"`

	// Queries lists the previews the mock source executed.
	Queries []string `json:"queries,omitempty"`

	// Error is the resolution error message, if resolution failed.
	Error string `json:"error,omitempty"`

	// ErrorCode is the runtime error code, if the error carries one.
	ErrorCode string `json:"error_code,omitempty"`

	// Errors contains expectation mismatch messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []RoundEvent{},
		Errors: []string{},
	}
}

// AddError adds a mismatch and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
