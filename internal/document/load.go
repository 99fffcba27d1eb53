package document

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/vantage/internal/expr"
	"github.com/roach88/vantage/internal/jsonwire"
)

// Load reads an expression document, choosing the parser by extension:
// .yaml, .yml and .json use YAML; .cue uses CUE.
func Load(path string, opts ...Option) (expr.Expression[jsonwire.Value], error) {
	var zero expr.Expression[jsonwire.Value]

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return zero, errorf(ErrCodeNotFound, Position{File: path}, "file not found")
	}
	if err != nil {
		return zero, errorf(ErrCodeGeneric, Position{File: path}, "read file: %v", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return ParseYAML(data, path, opts...)
	case ".cue":
		return ParseCUE(data, path, opts...)
	default:
		return zero, errorf(ErrCodeUnsupported, Position{File: path},
			"unsupported extension %q (want .yaml, .yml, .json or .cue)", filepath.Ext(path))
	}
}
