package models

// TestCaseResult is the outcome of one test case within a submission or run.
// TestCaseNumber is 1-based in evaluation order.
type TestCaseResult struct {
	TestCaseNumber int    `json:"test_case_number"`
	Passed         bool   `json:"passed"`
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
	ActualOutput   string `json:"actual_output"`
	ErrorMessage   string `json:"error_message,omitempty"`
	IsSample       bool   `json:"is_sample"`
}

// EvaluationMode distinguishes a judged submission from an ephemeral run.
type EvaluationMode int

const (
	ModeSubmit EvaluationMode = iota
	ModeRun
)

func (m EvaluationMode) IsRun() bool {
	return m == ModeRun
}
