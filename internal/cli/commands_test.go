package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/vantage/internal/sqlite"
)

const adultsDoc = `
template: "SELECT * FROM users WHERE {} AND name = {}"
params:
  - nested:
      template: "age > {}"
      params: [18]
  - deferred: {value: x}
`

// writeDoc writes a document into a temp dir and returns its path.
func writeDoc(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// decodeError parses a JSON error response.
func decodeError(t *testing.T, out string) *CLIError {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	return resp.Error
}

func TestPreviewCommand(t *testing.T) {
	path := writeDoc(t, "q.yaml", adultsDoc)

	out, _, err := run(t, "preview", path)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users WHERE age > 18 AND name = **deferred()\n", out)
}

func TestPreviewCommand_JSON(t *testing.T) {
	path := writeDoc(t, "q.yaml", adultsDoc)

	out, _, err := run(t, "--format", "json", "preview", path)
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   PreviewResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 2, resp.Data.Placeholders)
	assert.Equal(t, 2, resp.Data.Params)
	assert.True(t, resp.Data.Nested)
	assert.True(t, resp.Data.Deferred)
}

func TestPreviewCommand_CUE(t *testing.T) {
	path := writeDoc(t, "q.cue", `
#limit: 5
template: "SELECT * FROM t LIMIT {}"
params: [#limit * 2]
`)

	out, _, err := run(t, "preview", path)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t LIMIT 10\n", out)
}

func TestFlattenCommand_Golden(t *testing.T) {
	path := writeDoc(t, "q.yaml", adultsDoc)

	out, _, err := run(t, "--format", "json", "flatten", path)
	require.NoError(t, err)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "flatten_json", []byte(out))
}

func TestFlattenCommand_Text(t *testing.T) {
	path := writeDoc(t, "q.yaml", adultsDoc)

	out, _, err := run(t, "flatten", path)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM users WHERE age > {} AND name = {}\n"+
		`  $1 = {"scalar":18}`+"\n"+
		`  $2 = {"deferred":null}`+"\n", out)
}

func TestResolveCommand(t *testing.T) {
	path := writeDoc(t, "q.yaml", adultsDoc)

	out, _, err := run(t, "resolve", path)
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM users WHERE age > 18 AND name = "x"`+"\n"+
		"SELECT * FROM users WHERE age > {} AND name = {}\n"+
		"  $1 = 18\n"+
		`  $2 = "x"`+"\n", out)
}

func TestResolveCommand_JSONCountsRounds(t *testing.T) {
	path := writeDoc(t, "q.yaml", `
template: "v = {}"
params:
  - deferred: {chain: 3, value: 7}
`)

	out, _, err := run(t, "--format", "json", "resolve", path)
	require.NoError(t, err)

	var resp struct {
		Data struct {
			Resolved string            `json:"resolved"`
			Params   []json.RawMessage `json:"params"`
			Rounds   int               `json:"rounds"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "v = 7", resp.Data.Resolved)
	assert.Equal(t, 3, resp.Data.Rounds)
	require.Len(t, resp.Data.Params, 1)
	assert.Equal(t, "7", string(resp.Data.Params[0]))
}

func TestResolveCommand_VerboseLogsRounds(t *testing.T) {
	path := writeDoc(t, "q.yaml", `
template: "v = {}"
params:
  - deferred: {chain: 2, value: 1}
`)

	_, errOut, err := run(t, "--verbose", "resolve", path)
	require.NoError(t, err)
	assert.Contains(t, errOut, "round 1: 1 deferred, 1 remaining")
	assert.Contains(t, errOut, "round 2: 1 deferred, 0 remaining")
	assert.Contains(t, errOut, "msg=\"resolution round\"")
}

func TestResolveCommand_RoundLimit(t *testing.T) {
	path := writeDoc(t, "q.yaml", `
template: "v = {}"
params:
  - deferred: {chain: 5, value: 1}
`)

	out, _, err := run(t, "--format", "json", "--max-rounds", "2", "resolve", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	cliErr := decodeError(t, out)
	assert.Equal(t, "ROUND_LIMIT", cliErr.Code)
	assert.Contains(t, cliErr.Message, "deferred parameters remain after 2 rounds")
}

func TestResolveCommand_DeferredFailure(t *testing.T) {
	path := writeDoc(t, "q.yaml", `
template: "v = {}"
params:
  - deferred: {fail: connection reset}
`)

	out, _, err := run(t, "resolve", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [DEFERRED_FAILED]")
	assert.Contains(t, out, "connection reset")
}

func TestResolveCommand_LoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		wantCode string
	}{
		{"missing template", "q.yaml", "params: [1]\n", "E201"},
		{"unsupported extension", "q.txt", "x", "E007"},
		{"query without database", "q.yaml", "template: \"{}\"\nparams:\n  - deferred: {query: {template: \"SELECT 1\"}}\n", "E206"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeDoc(t, tt.file, tt.content)

			out, _, err := run(t, "--format", "json", "resolve", path)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Equal(t, tt.wantCode, decodeError(t, out).Code)
		})
	}
}

func TestResolveCommand_MissingFile(t *testing.T) {
	out, _, err := run(t, "--format", "json", "resolve", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, "E005", decodeError(t, out).Code)
}

func TestValidateCommand(t *testing.T) {
	path := writeDoc(t, "q.yaml", `
template: "SELECT * FROM t WHERE a = {} AND b IN ({})"
params:
  - 1
  - deferred:
      query: {template: "SELECT id FROM s"}
`)

	out, _, err := run(t, "validate", path)
	require.NoError(t, err)
	assert.Equal(t, "✓ expression is valid (2 params, 1 deferred)\n", out)
}

func TestValidateCommand_Mismatch(t *testing.T) {
	path := writeDoc(t, "q.yaml", `
template: "{} AND {}"
params:
  - 1
  - nested:
      template: "x = {} OR y = {}"
      params: [2]
`)

	out, _, err := run(t, "--format", "json", "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	cliErr := decodeError(t, out)
	assert.Equal(t, ErrCodeMismatch, cliErr.Code)
	assert.Contains(t, cliErr.Message, "param 1")
	assert.Contains(t, cliErr.Message, "has 2 placeholders but 1 parameters")
}

// seedDB creates a users table and returns the database path.
func seedDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.db")
	src, err := sqlite.Open(path)
	require.NoError(t, err)
	defer src.Close()

	for _, stmt := range []string{
		"CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT NOT NULL, age INTEGER)",
		"INSERT INTO users (name, age) VALUES ('Alice', 34), ('Bob', 19), ('Carol', 52)",
	} {
		_, err := src.DB().Exec(stmt)
		require.NoError(t, err)
	}
	return path
}

func TestExecCommand_DeferredSubselect(t *testing.T) {
	db := seedDB(t)
	path := writeDoc(t, "q.yaml", `
template: "SELECT name FROM users WHERE age > {} ORDER BY name"
params:
  - deferred:
      query: {template: "SELECT min(age) FROM users"}
`)

	out, _, err := run(t, "exec", "--db", db, path)
	require.NoError(t, err)
	assert.Equal(t, "{\"name\":\"Alice\"}\n{\"name\":\"Carol\"}\n", out)
}

func TestExecCommand_NoRows(t *testing.T) {
	db := seedDB(t)
	path := writeDoc(t, "q.yaml", `
template: "SELECT name FROM users WHERE age > {}"
params: [100]
`)

	out, _, err := run(t, "exec", "--db", db, path)
	require.NoError(t, err)
	assert.Equal(t, "(no rows)\n", out)
}

func TestExecCommand_Statement(t *testing.T) {
	db := seedDB(t)
	insert := writeDoc(t, "insert.yaml", `
template: "INSERT INTO users (name, age) VALUES ({}, {})"
params: [Dave, 41]
`)

	out, _, err := run(t, "exec", "--db", db, "--statement", insert)
	require.NoError(t, err)
	assert.Equal(t, "1 row(s) affected\n", out)

	count := writeDoc(t, "count.yaml", `template: "SELECT count(*) AS n FROM users"`)
	out, _, err = run(t, "--format", "json", "exec", "--db", db, count)
	require.NoError(t, err)

	var resp struct {
		Data struct {
			Rows []map[string]int `json:"rows"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, []map[string]int{{"n": 4}}, resp.Data.Rows)
}

func TestExecCommand_SQLError(t *testing.T) {
	db := seedDB(t)
	path := writeDoc(t, "q.yaml", `template: "SELECT * FROM missing_table"`)

	out, _, err := run(t, "exec", "--db", db, path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "no such table: missing_table")
}

func TestExecCommand_RequiresDB(t *testing.T) {
	path := writeDoc(t, "q.yaml", `template: "SELECT 1"`)

	_, _, err := run(t, "exec", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required flag(s) "db" not set`)
}
