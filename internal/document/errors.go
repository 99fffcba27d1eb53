package document

import (
	"fmt"
)

// Error codes for document loading.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeParseFailed  = "E004" // YAML/JSON/CUE syntax error
	ErrCodeNotFound     = "E005" // File not found
	ErrCodeBuildFailed  = "E006" // CUE evaluation failed or value not concrete
	ErrCodeUnsupported  = "E007" // Unknown file extension
	ErrCodeTemplate     = "E201" // Missing or non-string template
	ErrCodeParams       = "E202" // params is not a list
	ErrCodeParamForm    = "E203" // Unknown or ambiguous parameter form
	ErrCodeParamValue   = "E204" // Invalid value for a parameter form
	ErrCodeDeferredForm = "E205" // Invalid deferred form
	ErrCodeNoSource     = "E206" // deferred query without a data source
)

// Position is a location in a source file.
type Position struct {
	File   string
	Line   int
	Column int
}

// IsValid reports whether the position carries a line.
func (p Position) IsValid() bool {
	return p.Line > 0
}

func (p Position) String() string {
	if !p.IsValid() {
		return p.File
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// LoadError represents an error that occurred while loading a document.
type LoadError struct {
	Code    string
	Message string
	Pos     Position // Source position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func errorf(code string, pos Position, format string, args ...any) *LoadError {
	return &LoadError{Code: code, Message: fmt.Sprintf(format, args...), Pos: pos}
}
