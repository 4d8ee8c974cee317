package sandbox

type File struct {
	Name     string `json:"name"`
	Content  string `json:"content"`
	Encoding string `json:"encoding,omitempty"`
}

// ExecuteRequest is the body of POST /execute. Timeouts are milliseconds;
// memory limits are bytes, -1 meaning unlimited.
type ExecuteRequest struct {
	Language           string   `json:"language"`
	Version            string   `json:"version"`
	Files              []File   `json:"files"`
	Stdin              string   `json:"stdin"`
	Args               []string `json:"args"`
	CompileTimeout     int      `json:"compile_timeout"`
	RunTimeout         int      `json:"run_timeout"`
	CompileMemoryLimit int      `json:"compile_memory_limit"`
	RunMemoryLimit     int      `json:"run_memory_limit"`
}

// Stage is the result of the compile or run phase. Output is nil when the
// sandbox did not report one; Code is nil when the process was killed by a
// signal.
type Stage struct {
	Stdout string  `json:"stdout"`
	Stderr string  `json:"stderr"`
	Output *string `json:"output"`
	Code   *int    `json:"code"`
	Signal *string `json:"signal"`
}

type ExecuteResponse struct {
	Language string `json:"language"`
	Version  string `json:"version"`
	Compile  *Stage `json:"compile,omitempty"`
	Run      *Stage `json:"run,omitempty"`
}
