package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Exit codes.
const (
	ExitSuccess      = 0 // everything passed
	ExitFailure      = 1 // scenarios failed or validation found problems
	ExitCommandError = 2 // command error: bad paths, unknown contract, etc.
)

// ExitError carries a specific exit code out of a command.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError builds an ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error, defaulting to
// ExitFailure for plain errors.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter switches command output between human text and JSON.
type OutputFormatter struct {
	Format  string
	Writer  io.Writer
	Verbose bool
}

// Response is the standard JSON envelope for command output.
type Response struct {
	Status string         `json:"status"` // "ok" or "error"
	Data   any            `json:"data,omitempty"`
	Error  *ResponseError `json:"error,omitempty"`
}

// ResponseError is the error half of a Response.
type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// JSON reports whether the formatter emits JSON.
func (f *OutputFormatter) JSON() bool {
	return f.Format == "json"
}

// Emit writes the standard envelope: status ok with data, or status error
// with the code and message when errMsg is non-empty.
func (f *OutputFormatter) Emit(data any, errCode, errMsg string) error {
	resp := Response{Status: "ok", Data: data}
	if errMsg != "" {
		resp.Status = "error"
		resp.Error = &ResponseError{Code: errCode, Message: errMsg}
	}
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

// Textf writes formatted text output; a no-op in JSON mode so diagnostic
// text never corrupts the JSON stream.
func (f *OutputFormatter) Textf(format string, args ...any) {
	if f.JSON() {
		return
	}
	fmt.Fprintf(f.Writer, format, args...)
}
