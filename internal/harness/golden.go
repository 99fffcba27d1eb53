package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/vantage/internal/jsonwire"
	"github.com/roach88/vantage/internal/record"
)

// Snapshot builds the canonical JSON form of a result for golden files.
// Pass and Errors are left out: the golden file records what happened,
// not whether it matched.
func Snapshot(name string, r *Result) ([]byte, error) {
	trace := make(jsonwire.ArrayValue, len(r.Trace))
	for i, ev := range r.Trace {
		trace[i] = jsonwire.NewObject(
			record.P[jsonwire.Value]("round", jsonwire.IntValue(int64(ev.Round))),
			record.P[jsonwire.Value]("deferred", jsonwire.IntValue(int64(ev.Deferred))),
			record.P[jsonwire.Value]("params", jsonwire.IntValue(int64(ev.Params))),
			record.P[jsonwire.Value]("remaining", jsonwire.IntValue(int64(ev.Remaining))),
		)
	}

	queries := make(jsonwire.ArrayValue, len(r.Queries))
	for i, q := range r.Queries {
		queries[i] = jsonwire.StringValue(q)
	}

	obj := jsonwire.NewObject(
		record.P[jsonwire.Value]("scenario_name", jsonwire.StringValue(name)),
		record.P[jsonwire.Value]("preview", jsonwire.StringValue(r.Preview)),
		record.P[jsonwire.Value]("rounds", jsonwire.IntValue(int64(r.Rounds))),
		record.P[jsonwire.Value]("trace", trace),
		record.P[jsonwire.Value]("queries", queries),
	)
	if r.Error != "" {
		obj.Set("error", jsonwire.StringValue(r.Error))
		if r.ErrorCode != "" {
			obj.Set("error_code", jsonwire.StringValue(r.ErrorCode))
		}
	} else {
		obj.Set("resolved", jsonwire.StringValue(r.Resolved))
		obj.Set("template", jsonwire.StringValue(r.Template))
		obj.Set("params", jsonwire.ArrayValue(r.Params))
	}

	return jsonwire.MarshalCanonical(obj)
}

// RunWithGolden executes a scenario and compares the result against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the result doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against a golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := Snapshot(name, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}
