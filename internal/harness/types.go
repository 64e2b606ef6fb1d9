package harness

// Execution is what one interpreter run produced.
type Execution struct {
	Output string `json:"output"`

	// ErrorCode is the interpreter error code, empty on success.
	ErrorCode string `json:"error_code,omitempty"`

	// Error is the full error text, empty on success.
	Error string `json:"error,omitempty"`
}

// Result is the outcome of a scenario.
type Result struct {
	// Pass is true when the runs agree with each other and with the
	// scenario's expect clause.
	Pass bool `json:"pass"`

	Scenario string `json:"scenario"`

	// Program is the optimized program text.
	Program string `json:"program"`

	Source    Execution `json:"source"`
	Optimized Execution `json:"optimized"`

	// Errors lists every mismatch found. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a passing result for the named scenario.
func NewResult(name string) *Result {
	return &Result{
		Pass:     true,
		Scenario: name,
		Errors:   []string{},
	}
}

// AddError records a mismatch and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
