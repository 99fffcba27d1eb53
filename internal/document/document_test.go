package document

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/roach88/vantage/internal/datasource/mockds"
	"github.com/roach88/vantage/internal/engine"
	"github.com/roach88/vantage/internal/expr"
	"github.com/roach88/vantage/internal/jsonwire"
)

func parseYAML(t *testing.T, src string, opts ...Option) expr.Expression[jsonwire.Value] {
	t.Helper()
	e, err := ParseYAML([]byte(src), "test.yaml", opts...)
	require.NoError(t, err)
	return e
}

func TestParseYAML_ScalarsAndNested(t *testing.T) {
	e := parseYAML(t, `
template: "SELECT * FROM users WHERE {} AND status = {}"
params:
  - nested:
      template: "age > {}"
      params: [21]
  - scalar: active
`)

	assert.Equal(t, "SELECT * FROM users WHERE {} AND status = {}", e.Template())
	assert.Equal(t, `SELECT * FROM users WHERE age > 21 AND status = "active"`, e.Preview())

	flat := engine.Flatten(e)
	assert.Equal(t, "SELECT * FROM users WHERE age > {} AND status = {}", flat.Template())
}

func TestParseYAML_ShorthandScalars(t *testing.T) {
	e := parseYAML(t, `
template: "{} {} {} {} {}"
params: [1, 2.50, "x", true, null]
`)

	assert.Equal(t, `1 2.50 "x" true null`, e.Preview())
}

func TestParseYAML_ObjectScalarKeepsKeyOrder(t *testing.T) {
	e := parseYAML(t, `
template: "CONTENT {}"
params:
  - scalar: {zeta: 1, alpha: [1, 2], mid: {b: 1, a: 2}}
`)

	assert.Equal(t, `CONTENT {"zeta":1,"alpha":[1,2],"mid":{"b":1,"a":2}}`, e.Preview())
}

func TestParseYAML_JSONInput(t *testing.T) {
	e := parseYAML(t, `{"template": "x = {}", "params": [{"scalar": 12345678901234567890}]}`)

	assert.Equal(t, "x = 12345678901234567890", e.Preview())
}

func TestParseYAML_Decimal(t *testing.T) {
	e := parseYAML(t, `
template: "price = {}"
params:
  - decimal: "19.990"
`)

	p, ok := e.Param(0)
	require.True(t, ok)
	v, _ := p.AsScalar()
	variant, tagged := jsonwire.Sniff(v)
	assert.True(t, tagged)
	assert.Equal(t, jsonwire.VariantDecimal, variant)

	d, ok := jsonwire.Decimal.FromWire(v)
	require.True(t, ok)
	assert.Equal(t, "19.990", d.Text('f'))
}

func TestParseYAML_DeferredForms(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		src      string
		preview  string
		resolved string
		rounds   int
	}{
		{
			name: "value",
			src: `
template: "WHERE id = ANY({})"
params:
  - deferred: {value: [1, 2, 3]}
`,
			preview:  "WHERE id = ANY(**deferred())",
			resolved: "WHERE id = ANY([1,2,3])",
			rounds:   1,
		},
		{
			name: "nested",
			src: `
template: "WHERE at < {}"
params:
  - deferred:
      nested: {template: "now() - {}", params: [3600]}
`,
			preview:  "WHERE at < **deferred()",
			resolved: "WHERE at < now() - 3600",
			rounds:   1,
		},
		{
			name: "chain",
			src: `
template: "v = {}"
params:
  - deferred: {chain: 3, value: end}
`,
			preview:  "v = **deferred()",
			resolved: `v = "end"`,
			rounds:   3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := parseYAML(t, tt.src)
			assert.Equal(t, tt.preview, e.Preview())

			rounds := 0
			out, err := engine.ResolveAndFlatten(ctx, e, engine.WithRoundHook(func(engine.RoundInfo) { rounds++ }))
			require.NoError(t, err)
			assert.Equal(t, tt.resolved, out.Preview())
			assert.Equal(t, tt.rounds, rounds)
		})
	}
}

func TestParseYAML_DeferredFail(t *testing.T) {
	e := parseYAML(t, `
template: "v = {}"
params:
  - deferred: {fail: "upstream down"}
`)

	_, err := engine.ResolveAndFlatten(context.Background(), e)
	require.Error(t, err)
	assert.True(t, engine.IsDeferredError(err))
	assert.Contains(t, err.Error(), "upstream down")
}

func TestParseYAML_DeferredQueryUsesSource(t *testing.T) {
	src := mockds.New[jsonwire.Value]().
		On(`SELECT id FROM user WHERE status = "active"`, jsonwire.ArrayValue{jsonwire.IntValue(1), jsonwire.IntValue(2)})

	e := parseYAML(t, `
template: "SELECT * FROM orders WHERE user_id = ANY({})"
params:
  - deferred:
      query: {template: "SELECT id FROM user WHERE status = {}", params: [active]}
`, WithSource(src))

	out, err := engine.ResolveAndFlatten(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM orders WHERE user_id = ANY([1,2])", out.Preview())
}

func TestParseYAML_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code string
		line int
	}{
		{"syntax", "template: [unclosed", ErrCodeParseFailed, 0},
		{"not an object", "- 1\n- 2\n", ErrCodeTemplate, 1},
		{"missing template", "params: []\n", ErrCodeTemplate, 1},
		{"template not string", "template: [1]\n", ErrCodeTemplate, 1},
		{"params not list", "template: x\nparams: {a: 1}\n", ErrCodeParams, 2},
		{"unknown form", "template: x\nparams:\n  - bogus: 1\n", ErrCodeParamForm, 3},
		{"two forms", "template: x\nparams:\n  - {scalar: 1, nested: {template: y}}\n", ErrCodeParamForm, 3},
		{"bad decimal", "template: x\nparams:\n  - decimal: abc\n", ErrCodeParamValue, 3},
		{"bad chain", "template: x\nparams:\n  - deferred: {chain: 0, value: 1}\n", ErrCodeDeferredForm, 3},
		{"empty deferred", "template: x\nparams:\n  - deferred: {}\n", ErrCodeDeferredForm, 3},
		{"query without source", "template: x\nparams:\n  - deferred: {query: {template: y}}\n", ErrCodeNoSource, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseYAML([]byte(tt.src), "bad.yaml")
			require.Error(t, err)

			var loadErr *LoadError
			require.ErrorAs(t, err, &loadErr)
			assert.Equal(t, tt.code, loadErr.Code)
			assert.Equal(t, "bad.yaml", loadErr.Pos.File)
			if tt.line > 0 {
				assert.Equal(t, tt.line, loadErr.Pos.Line)
			}
		})
	}
}

func TestLoadError_Format(t *testing.T) {
	withPos := &LoadError{Code: ErrCodeTemplate, Message: "template is required", Pos: Position{File: "q.yaml", Line: 3, Column: 5}}
	assert.Equal(t, "q.yaml:3:5: E201: template is required", withPos.Error())

	noPos := &LoadError{Code: ErrCodeGeneric, Message: "boom"}
	assert.Equal(t, "E001: boom", noPos.Error())
}

func TestLoad_DispatchesByExtension(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"q.yaml": "template: \"a = {}\"\nparams: [1]\n",
		"q.json": `{"template": "a = {}", "params": [1]}`,
		"q.cue":  "template: \"a = {}\"\nparams: [1]\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	for name := range files {
		t.Run(name, func(t *testing.T) {
			e, err := Load(filepath.Join(dir, name))
			require.NoError(t, err)
			assert.Equal(t, "a = 1", e.Preview())
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "q.txt")
	require.NoError(t, os.WriteFile(txt, []byte("x"), 0o644))

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	var loadErr *LoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeNotFound, loadErr.Code)

	_, err = Load(txt)
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, ErrCodeUnsupported, loadErr.Code)
}

func TestEncode_RoundTrip(t *testing.T) {
	e := parseYAML(t, `
template: "SELECT * FROM t WHERE {} AND b = {}"
params:
  - nested: {template: "a = {}", params: [1]}
  - decimal: "2.50"
`)

	encoded, err := jsonwire.Marshal(Encode(e))
	require.NoError(t, err)
	assert.Equal(t,
		`{"template":"SELECT * FROM t WHERE {} AND b = {}","params":[{"nested":{"template":"a = {}","params":[{"scalar":1}]}},{"scalar":{"decimal":"2.50"}}]}`,
		string(encoded))

	back := parseYAML(t, string(encoded))
	assert.Equal(t, e.Preview(), back.Preview())
	assert.Equal(t, engine.Flatten(e).Template(), engine.Flatten(back).Template())
}

func TestEncode_Deferred(t *testing.T) {
	e := parseYAML(t, "template: \"v = {}\"\nparams:\n  - deferred: {value: 1}\n")

	encoded, err := jsonwire.Marshal(Encode(e))
	require.NoError(t, err)
	assert.Equal(t, `{"template":"v = {}","params":[{"deferred":null}]}`, string(encoded))
}

func TestValueFromYAML(t *testing.T) {
	var n yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte("{b: [1, 2.50], a: null, c: text}"), &n))

	v, err := ValueFromYAML(&n, "v.yaml")
	require.NoError(t, err)
	assert.Equal(t, `{"b":[1,2.50],"a":null,"c":"text"}`, v.String())
}
