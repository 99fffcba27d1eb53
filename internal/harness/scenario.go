package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scenario defines an expression resolution test.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// MaxRounds overrides the resolver round limit when positive.
	MaxRounds int `yaml:"max_rounds,omitempty"`

	// Source configures the mock data source used by deferred queries.
	Source *SourceSpec `yaml:"source,omitempty"`

	// Expression is the expression document, decoded by package document.
	Expression yaml.Node `yaml:"expression"`

	// Expect lists the expected outcome.
	Expect Expect `yaml:"expect"`

	// path is the file the scenario was loaded from, for error positions.
	path string
}

// SourceSpec configures a mock data source.
type SourceSpec struct {
	// Flatten resolves queries before matching them.
	Flatten bool `yaml:"flatten,omitempty"`

	// Patterns map exact query previews to results.
	Patterns []Pattern `yaml:"patterns"`

	// Fallback answers queries that match no pattern.
	Fallback *yaml.Node `yaml:"fallback,omitempty"`
}

// Pattern is one query preview and its result.
type Pattern struct {
	Query  string    `yaml:"query"`
	Result yaml.Node `yaml:"result"`
}

// Expect specifies the expected resolution outcome.
// Unset fields are not checked.
type Expect struct {
	Preview  *string    `yaml:"preview,omitempty"`
	Resolved *string    `yaml:"resolved,omitempty"`
	Template *string    `yaml:"template,omitempty"`
	Params   *yaml.Node `yaml:"params,omitempty"`
	Rounds   *int       `yaml:"rounds,omitempty"`
	Error    string     `yaml:"error,omitempty"`
}

func (e *Expect) empty() bool {
	return e.Preview == nil && e.Resolved == nil && e.Template == nil &&
		e.Params == nil && e.Rounds == nil && e.Error == ""
}

// Path returns the file the scenario was loaded from.
func (s *Scenario) Path() string {
	return s.path
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	s, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}
	s.path = path
	return s, nil
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Reject unknown fields (catches typos like "expected:" vs "expect:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// FindScenarioFiles returns the .yaml and .yml files under dir, sorted.
func FindScenarioFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != dir && info.Name() == "golden" {
				return filepath.SkipDir
			}
			return nil
		}
		switch filepath.Ext(path) {
		case ".yaml", ".yml":
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if s.Expression.Kind == 0 {
		return fmt.Errorf("expression is required")
	}

	if s.MaxRounds < 0 {
		return fmt.Errorf("max_rounds must be non-negative")
	}

	if s.Expect.empty() {
		return fmt.Errorf("expect must set at least one of preview, resolved, template, params, rounds, error")
	}

	if s.Expect.Params != nil && s.Expect.Params.Kind != yaml.SequenceNode {
		return fmt.Errorf("expect.params must be a list")
	}

	if s.Expect.Rounds != nil && *s.Expect.Rounds < 0 {
		return fmt.Errorf("expect.rounds must be non-negative")
	}

	if s.Source != nil {
		seen := make(map[string]bool, len(s.Source.Patterns))
		for i, p := range s.Source.Patterns {
			if p.Query == "" {
				return fmt.Errorf("source.patterns[%d]: query is required", i)
			}
			if p.Result.Kind == 0 {
				return fmt.Errorf("source.patterns[%d]: result is required", i)
			}
			if seen[p.Query] {
				return fmt.Errorf("source.patterns[%d]: duplicate query %q", i, p.Query)
			}
			seen[p.Query] = true
		}
	}

	return nil
}
