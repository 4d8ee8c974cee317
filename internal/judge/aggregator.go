// Package judge turns sandbox responses into per-test results, a verdict and
// a human readable transcript.
package judge

import (
	"fmt"
	"strings"

	"crucible/internal/models"
	"crucible/internal/sandbox"
)

// Passed reports whether a sandbox response matches the expected output.
// Comparison is exact after trimming surrounding whitespace; a missing run
// stage, a missing output or a non-zero exit code is a failure.
func Passed(resp *sandbox.ExecuteResponse, expected string) bool {
	if resp == nil || resp.Run == nil || resp.Run.Output == nil {
		return false
	}
	if resp.Run.Code != nil && *resp.Run.Code != 0 {
		return false
	}
	return strings.TrimSpace(*resp.Run.Output) == strings.TrimSpace(expected)
}

// ActualOutput is the trimmed run output, or empty if there is none.
func ActualOutput(resp *sandbox.ExecuteResponse) string {
	if resp == nil || resp.Run == nil || resp.Run.Output == nil {
		return ""
	}
	return strings.TrimSpace(*resp.Run.Output)
}

// Evaluation accumulates test case results in evaluation order.
type Evaluation struct {
	mode       models.EvaluationMode
	results    []models.TestCaseResult
	passed     int
	transcript strings.Builder
}

func NewEvaluation(mode models.EvaluationMode) *Evaluation {
	return &Evaluation{mode: mode}
}

// Record judges one sandbox outcome. err is a failed sandbox call; it marks
// the test case failed and never stops the evaluation.
func (e *Evaluation) Record(tc models.TestCase, resp *sandbox.ExecuteResponse, err error) models.TestCaseResult {
	result := models.TestCaseResult{
		TestCaseNumber: len(e.results) + 1,
		Input:          tc.Input,
		ExpectedOutput: tc.ExpectedOutput,
		IsSample:       tc.IsSample,
	}

	if err != nil {
		result.ErrorMessage = err.Error()
		fmt.Fprintf(&e.transcript, "Execution Error: %s\n\n", result.ErrorMessage)
	} else {
		result.Passed = Passed(resp, tc.ExpectedOutput)
		result.ActualOutput = ActualOutput(resp)
		e.writeCase(result)
	}

	if result.Passed {
		e.passed++
	}
	e.results = append(e.results, result)
	return result
}

func (e *Evaluation) writeCase(r models.TestCaseResult) {
	if r.IsSample {
		e.transcript.WriteString("Test Case (Sample):\n")
	} else {
		e.transcript.WriteString("Test Case:\n")
	}
	status := "FAIL"
	if r.Passed {
		status = "PASS"
	}
	fmt.Fprintf(&e.transcript, "Expected: %s\nGot: %s\nStatus: %s\n\n",
		r.ExpectedOutput, r.ActualOutput, status)
}

func (e *Evaluation) Passed() int { return e.passed }

func (e *Evaluation) Total() int { return len(e.results) }

func (e *Evaluation) Results() []models.TestCaseResult { return e.results }

func (e *Evaluation) Transcript() string { return e.transcript.String() }

func (e *Evaluation) Status() models.SubmissionStatus {
	return DeriveStatus(e.mode, e.passed, len(e.results))
}

// DeriveStatus maps pass counts to a verdict.
func DeriveStatus(mode models.EvaluationMode, passed, total int) models.SubmissionStatus {
	switch {
	case total == 0 && mode.IsRun():
		return models.SubmissionStatusNoSampleTestCases
	case total == 0:
		return models.SubmissionStatusNoTestCases
	case passed == total:
		return models.SubmissionStatusAccepted
	case passed == 0:
		return models.SubmissionStatusWrongAnswer
	default:
		return models.SubmissionStatusPartial
	}
}
