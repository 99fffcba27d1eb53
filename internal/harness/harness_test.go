package harness

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vantage/internal/testutil"
)

func TestScenarios_Golden(t *testing.T) {
	files, err := FindScenarioFiles(filepath.Join("testdata", "scenarios"))
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, path := range files {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		t.Run(name, func(t *testing.T) {
			s, err := LoadScenario(path)
			require.NoError(t, err)

			result, err := RunWithGolden(t, s)
			require.NoError(t, err)
			assert.True(t, result.Pass, "expectation mismatches: %v", result.Errors)
		})
	}
}

func TestRun_ReportsMismatches(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: wrong
description: "every expectation is off"
expression:
  template: "v = {}"
  params:
    - deferred: {value: 1}
expect:
  preview: "v = 1"
  resolved: "v = 2"
  template: "w = {}"
  params: [2]
  rounds: 5
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	assert.Len(t, result.Errors, 5)
	assert.Contains(t, result.Errors[0], "preview")
	assert.Contains(t, strings.Join(result.Errors, "\n"), "params[0]: expected 2, got 1")
}

func TestRun_ParamsCompareCanonically(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: canonical
description: "1.50 equals 1.5 and key order is ignored"
expression:
  template: "{} {}"
  params:
    - 1.50
    - scalar: {b: 1, a: 2}
expect:
  params: [1.5, {a: 2, b: 1}]
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "%v", result.Errors)
}

func TestRun_ExpectedErrorButSucceeded(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: no_error
description: "resolution succeeds"
expression: {template: "x"}
expect:
  error: ROUND_LIMIT
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "resolution succeeded")
}

func TestRun_UnexpectedError(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: fails
description: "resolution fails without an error expectation"
expression:
  template: "v = {}"
  params:
    - deferred: {fail: boom}
expect:
  rounds: 1
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	assert.Contains(t, result.Errors[0], "resolution failed")
	assert.Equal(t, "DEFERRED_FAILED", result.ErrorCode)
}

func TestRun_FallbackAnswersUnknownQueries(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: fallback
description: "fallback result"
source:
  patterns: []
  fallback: 7
expression:
  template: "n = {}"
  params:
    - deferred:
        query: {template: "SELECT anything"}
expect:
  resolved: "n = 7"
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "%v", result.Errors)
	assert.Equal(t, []string{"SELECT anything"}, result.Queries)
}

func TestRun_UnknownQueryFails(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: unknown_query
description: "no pattern matches"
expression:
  template: "n = {}"
  params:
    - deferred:
        query: {template: "SELECT missing"}
expect:
  error: "no pattern for query"
`))
	require.NoError(t, err)

	result, err := Run(s)
	require.NoError(t, err)
	assert.True(t, result.Pass, "%v", result.Errors)
}

func TestRun_BadExpressionIsError(t *testing.T) {
	s, err := ParseScenario([]byte(`
name: bad
description: "expression has no template"
expression: {params: []}
expect: {preview: x}
`))
	require.NoError(t, err)

	_, err = Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load expression")
	assert.Contains(t, err.Error(), "E201")
}

func TestHarness_WithLogger(t *testing.T) {
	logger, buf := testutil.CaptureLogger()
	s, err := LoadScenario(filepath.Join("testdata", "scenarios", "chained_rounds.yaml"))
	require.NoError(t, err)

	result, err := New(WithLogger(logger)).Run(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, result.Pass)
	assert.Equal(t, 3, strings.Count(buf.String(), `"msg":"resolution round"`))
}
