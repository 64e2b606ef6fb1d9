package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeRun runs the run command and returns stdout, stderr and the error.
func executeRun(t *testing.T, format, stdin string, args ...string) (string, string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd := NewRunCommand(&RootOptions{Format: format})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRunCommandMissingArgs(t *testing.T) {
	_, _, err := executeRun(t, "text", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestRunCommandPrintsOutput(t *testing.T) {
	prog := writeProgram(t, "++++++++[>++++++++<-]>+.")

	out, _, err := executeRun(t, "text", "", prog)
	require.NoError(t, err)
	assert.Equal(t, "A", out)
}

func TestRunCommandInput(t *testing.T) {
	prog := writeProgram(t, ",.")

	tests := []struct {
		name  string
		stdin string
		args  []string
		want  string
	}{
		{"flag", "ignored", []string{"--input", "x"}, "x"},
		{"stdin", "y", nil, "y"},
		{"empty flag leaves cell", "z", []string{"--input", ""}, "\x00"},
		{"numbers", "", []string{"--input", "42", "--number-input", "--number-output"}, "42 "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := executeRun(t, "text", tt.stdin, append([]string{prog}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestRunCommandOptimizeShow(t *testing.T) {
	prog := writeProgram(t, "+++++[-]++.")

	out, _, err := executeRun(t, "text", "", prog, "--optimize", "--show", "--number-output")
	require.NoError(t, err)
	assert.Equal(t, "[-]++.\n2 ", out)
}

func TestRunCommandDump(t *testing.T) {
	prog := writeProgram(t, "+>++")

	out, errOut, err := executeRun(t, "text", "", prog, "--dump")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Contains(t, errOut, "pointer: 1")
	assert.Contains(t, errOut, "tape: 1 [2]")
}

func TestRunCommandJSON(t *testing.T) {
	prog := writeProgram(t, "+>++.")

	out, _, err := executeRun(t, "json", "", prog, "--dump", "--show", "--number-output")
	require.NoError(t, err)

	var envelope struct {
		Status string    `json:"status"`
		Data   RunResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &envelope))
	assert.Equal(t, "ok", envelope.Status)
	assert.Equal(t, "+>++.", envelope.Data.Program)
	assert.Equal(t, "2 ", envelope.Data.Output)
	assert.Equal(t, 1, envelope.Data.Pointer)
	assert.Equal(t, []int64{1, 2}, envelope.Data.Tape)
	assert.Positive(t, envelope.Data.Steps)
}

func TestRunCommandProgramError(t *testing.T) {
	prog := writeProgram(t, "+.<")

	out, errOut, err := executeRun(t, "text", "", prog, "--number-output")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, "1 ", out)
	assert.Contains(t, errOut, "Error [E202]")
}

func TestRunCommandProgramErrorJSON(t *testing.T) {
	prog := writeProgram(t, "+.<")

	out, _, err := executeRun(t, "json", "", prog, "--number-output")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var envelope struct {
		Status string    `json:"status"`
		Data   RunResult `json:"data"`
		Error  *CLIError `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &envelope))
	assert.Equal(t, "error", envelope.Status)
	assert.Equal(t, "1 ", envelope.Data.Output)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "E202", envelope.Error.Code)
}

func TestRunCommandInterpreterFlags(t *testing.T) {
	tests := []struct {
		name    string
		program string
		args    []string
		want    string
		code    string
	}{
		{"signed", "--.", []string{"--signed", "--number-output"}, "-2 ", ""},
		{"wide cells", strings.Repeat("+", 300) + ".", []string{"--cell-size", "16", "--number-output"}, "300 ", ""},
		{"saturate", "-.", []string{"--overflow", "saturate", "--number-output"}, "0 ", ""},
		{"abort", "-.", []string{"--overflow", "abort"}, "", "E204"},
		{"tape limit", ">>+", []string{"--tape-limit", "2"}, "", "E201"},
		{"step limit", "+[]", []string{"--max-steps", "10"}, "", "E206"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := writeProgram(t, tt.program)
			out, errOut, err := executeRun(t, "text", "", append([]string{prog}, tt.args...)...)
			if tt.code == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.want, out)
				return
			}
			require.Error(t, err)
			assert.Equal(t, ExitFailure, GetExitCode(err))
			assert.Contains(t, errOut, "Error ["+tt.code+"]")
		})
	}
}

func TestRunCommandBadSettings(t *testing.T) {
	prog := writeProgram(t, "+")

	out, _, err := executeRun(t, "text", "", prog, "--cell-size", "12")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E006]")
}
