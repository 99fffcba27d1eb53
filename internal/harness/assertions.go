package harness

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/roach88/vantage/internal/document"
	"github.com/roach88/vantage/internal/jsonwire"
)

// EvaluateExpect checks result against exp, recording every mismatch on
// the result. Returns an error only when the expectation itself cannot be
// decoded.
func EvaluateExpect(result *Result, exp *Expect) error {
	if exp.Preview != nil && result.Preview != *exp.Preview {
		result.AddError(fmt.Sprintf("preview: expected %q, got %q", *exp.Preview, result.Preview))
	}

	if exp.Error != "" {
		evaluateError(result, exp.Error)
		return nil
	}

	if result.Error != "" {
		result.AddError(fmt.Sprintf("resolution failed: %s", result.Error))
		return nil
	}

	if exp.Resolved != nil && result.Resolved != *exp.Resolved {
		result.AddError(fmt.Sprintf("resolved: expected %q, got %q", *exp.Resolved, result.Resolved))
	}

	if exp.Template != nil && result.Template != *exp.Template {
		result.AddError(fmt.Sprintf("template: expected %q, got %q", *exp.Template, result.Template))
	}

	if exp.Rounds != nil && result.Rounds != *exp.Rounds {
		result.AddError(fmt.Sprintf("rounds: expected %d, got %d", *exp.Rounds, result.Rounds))
	}

	if exp.Params != nil {
		if err := evaluateParams(result, exp); err != nil {
			return err
		}
	}
	return nil
}

// evaluateError matches an error code exactly or a message substring.
func evaluateError(result *Result, want string) {
	if result.Error == "" {
		result.AddError(fmt.Sprintf("error: expected %q, resolution succeeded", want))
		return
	}
	if result.ErrorCode == want || strings.Contains(result.Error, want) {
		return
	}
	result.AddError(fmt.Sprintf("error: expected %q, got %q", want, result.Error))
}

// evaluateParams compares parameters by canonical JSON, so 1.50 and 1.5
// and differently ordered object keys compare equal.
func evaluateParams(result *Result, exp *Expect) error {
	want, err := document.ValueFromYAML(exp.Params, "")
	if err != nil {
		return fmt.Errorf("expect.params: %w", err)
	}
	wantList, _ := want.(jsonwire.ArrayValue)

	if len(wantList) != len(result.Params) {
		result.AddError(fmt.Sprintf("params: expected %d, got %d", len(wantList), len(result.Params)))
		return nil
	}

	for i, w := range wantList {
		equal, err := canonicalEqual(w, result.Params[i])
		if err != nil {
			return fmt.Errorf("expect.params[%d]: %w", i, err)
		}
		if !equal {
			result.AddError(fmt.Sprintf("params[%d]: expected %s, got %s", i, w, result.Params[i]))
		}
	}
	return nil
}

func canonicalEqual(a, b jsonwire.Value) (bool, error) {
	ca, err := jsonwire.MarshalCanonical(a)
	if err != nil {
		return false, err
	}
	cb, err := jsonwire.MarshalCanonical(b)
	if err != nil {
		return false, err
	}
	return bytes.Equal(ca, cb), nil
}
