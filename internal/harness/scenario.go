package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/basm/internal/config"
)

// Error codes for scenario problems (E400-E499).
const (
	ErrCodeScenarioRead  = "E401" // Scenario or program file unreadable
	ErrCodeScenarioParse = "E402" // Malformed YAML or unknown field
	ErrCodeMissingField  = "E403" // Required field absent
	ErrCodeProgramSource = "E404" // Both program and program_file given
	ErrCodeInterpreter   = "E405" // Unusable interpreter settings
	ErrCodeExpect        = "E406" // Malformed expect clause
)

// ValidationError reports a scenario that cannot be run.
type ValidationError struct {
	Code    string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Scenario is one equivalence check.
type Scenario struct {
	// Name identifies the scenario and names its golden file.
	Name string `yaml:"name"`

	Description string `yaml:"description"`

	// Program is the source text. When loaded from ProgramFile it holds the
	// file's contents.
	Program string `yaml:"program,omitempty"`

	// ProgramFile is a path relative to the scenario file.
	ProgramFile string `yaml:"program_file,omitempty"`

	// Input is fed to both runs.
	Input string `yaml:"input,omitempty"`

	Interpreter config.Interpreter `yaml:"interpreter,omitempty"`

	// Expect pins the source program's behaviour. If nil only equivalence
	// is checked.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect is the behaviour the source program must show.
type Expect struct {
	// Output, when set, must equal everything the program wrote.
	Output *string `yaml:"output,omitempty"`

	// Error is the interpreter error code the program must fail with. Empty
	// means it must succeed.
	Error string `yaml:"error,omitempty"`
}

var errorCodePattern = regexp.MustCompile(`^E2[0-9]{2}$`)

// LoadScenario reads a scenario file. Unknown fields are rejected so typos
// surface as errors.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ValidationError{Code: ErrCodeScenarioRead, Message: fmt.Sprintf("failed to read scenario file: %v", err)}
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, &ValidationError{Code: ErrCodeScenarioParse, Message: fmt.Sprintf("failed to parse YAML: %v", err)}
	}

	if scenario.ProgramFile != "" {
		if scenario.Program != "" {
			return nil, &ValidationError{
				Code:    ErrCodeProgramSource,
				Field:   "program_file",
				Message: "program and program_file are mutually exclusive",
			}
		}
		programPath := scenario.ProgramFile
		if !filepath.IsAbs(programPath) {
			programPath = filepath.Join(filepath.Dir(path), programPath)
		}
		src, err := os.ReadFile(programPath)
		if err != nil {
			return nil, &ValidationError{Code: ErrCodeScenarioRead, Field: "program_file", Message: err.Error()}
		}
		scenario.Program = string(src)
	}

	if err := ValidateScenario(&scenario); err != nil {
		return nil, err
	}
	return &scenario, nil
}

// LoadScenarios loads every .yaml and .yml file in dir, sorted by file name.
func LoadScenarios(dir string) ([]*Scenario, error) {
	var paths []string
	for _, pattern := range []string{"*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		paths = append(paths, matches...)
	}
	slices.Sort(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// ValidateScenario checks required fields, interpreter settings and the
// expect clause.
func ValidateScenario(s *Scenario) error {
	if s.Name == "" {
		return &ValidationError{Code: ErrCodeMissingField, Field: "name", Message: "name is required"}
	}
	if s.Description == "" {
		return &ValidationError{Code: ErrCodeMissingField, Field: "description", Message: "description is required"}
	}
	if s.Program == "" {
		return &ValidationError{Code: ErrCodeMissingField, Field: "program", Message: "program or program_file is required"}
	}

	if _, err := s.Interpreter.Runtime(); err != nil {
		return &ValidationError{Code: ErrCodeInterpreter, Field: "interpreter", Message: err.Error()}
	}

	if s.Expect != nil && s.Expect.Error != "" && !errorCodePattern.MatchString(s.Expect.Error) {
		return &ValidationError{
			Code:    ErrCodeExpect,
			Field:   "expect.error",
			Message: fmt.Sprintf("%q is not an interpreter error code", s.Expect.Error),
		}
	}
	return nil
}
