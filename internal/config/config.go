// Package config loads basm settings from CUE files.
//
// A configuration file is unified with an embedded schema that supplies
// defaults and rejects unknown fields, then decoded into Config:
//
//	interpreter: {
//		cell_bits: 16
//		overflow:  "saturate"
//	}
//	optimizer: reorder_rounds: 3
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/basm/internal/interpreter"
)

//go:embed schema.cue
var schemaSource string

// DefaultPath is the file the CLI looks for when --config is not given.
const DefaultPath = "basm.cue"

// Error codes for configuration failures (E300-E399).
const (
	ErrCodeNotFound     = "E301" // Config file missing or unreadable
	ErrCodeParseFailed  = "E302" // Not valid CUE
	ErrCodeInvalid      = "E303" // Violates the schema
	ErrCodeDecodeFailed = "E304" // Could not be decoded
	ErrCodeBadValue     = "E305" // Decoded but unusable
)

// LoadError describes why a configuration could not be loaded.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Config is the decoded configuration file.
type Config struct {
	Interpreter Interpreter `json:"interpreter"`
	Optimizer   Optimizer   `json:"optimizer"`
}

// Interpreter holds execution settings. The same keys appear in harness
// scenarios, where omitted fields take the schema defaults.
type Interpreter struct {
	CellBits     int    `json:"cell_bits" yaml:"cell_bits"`
	Signed       bool   `json:"signed" yaml:"signed"`
	Overflow     string `json:"overflow" yaml:"overflow"`
	TapeLimit    int    `json:"tape_limit" yaml:"tape_limit"`
	NumberInput  bool   `json:"number_input" yaml:"number_input"`
	NumberOutput bool   `json:"number_output" yaml:"number_output"`
	MaxSteps     int64  `json:"max_steps" yaml:"max_steps"`
}

// Optimizer holds pipeline settings.
type Optimizer struct {
	ReorderRounds int `json:"reorder_rounds"`
}

// Runtime converts the settings to an interpreter configuration. A zero
// CellBits means 8.
func (i Interpreter) Runtime() (interpreter.Config, error) {
	bits := i.CellBits
	if bits == 0 {
		bits = 8
	}
	cell, err := interpreter.CellKindFor(bits, i.Signed)
	if err != nil {
		return interpreter.Config{}, err
	}
	overflow, err := interpreter.ParseOverflow(i.Overflow)
	if err != nil {
		return interpreter.Config{}, err
	}
	if i.TapeLimit < 0 {
		return interpreter.Config{}, fmt.Errorf("tape limit must not be negative, got %d", i.TapeLimit)
	}
	if i.MaxSteps < 0 {
		return interpreter.Config{}, fmt.Errorf("max steps must not be negative, got %d", i.MaxSteps)
	}
	return interpreter.Config{
		Cell:         cell,
		Overflow:     overflow,
		TapeLimit:    i.TapeLimit,
		NumberInput:  i.NumberInput,
		NumberOutput: i.NumberOutput,
		MaxSteps:     i.MaxSteps,
	}, nil
}

// Default returns the schema defaults.
func Default() Config {
	cfg, err := Parse(nil, "default.cue")
	if err != nil {
		panic(fmt.Sprintf("config: embedded schema is broken: %v", err))
	}
	return cfg
}

// Load reads and decodes the CUE file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("reading config: %v", err)}
	}
	return Parse(data, path)
}

// LoadOptional is Load, except that a missing file yields the defaults.
func LoadOptional(path string) (Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return Load(path)
}

// Parse decodes CUE source. filename is only used in error positions.
func Parse(data []byte, filename string) (Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, fromCUE(ErrCodeParseFailed, err)
	}

	file := ctx.CompileBytes(data, cue.Filename(filename))
	if err := file.Err(); err != nil {
		return Config{}, fromCUE(ErrCodeParseFailed, err)
	}

	v := schema.LookupPath(cue.ParsePath("#Config")).Unify(file)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return Config{}, fromCUE(ErrCodeInvalid, err)
	}

	var cfg Config
	if err := v.Decode(&cfg); err != nil {
		return Config{}, fromCUE(ErrCodeDecodeFailed, err)
	}
	if _, err := cfg.Interpreter.Runtime(); err != nil {
		return Config{}, &LoadError{Code: ErrCodeBadValue, Message: err.Error()}
	}
	return cfg, nil
}

// fromCUE keeps the first CUE error and its position.
func fromCUE(code string, err error) *LoadError {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Code: code, Message: err.Error()}
	}

	first := errs[0]
	le := &LoadError{Code: code, Message: first.Error()}
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		le.Pos = positions[0]
	}
	return le
}
