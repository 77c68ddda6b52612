package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/ordering/internal/ordering"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Check or scenario failure (gaps found, scenarios failed, invalid definitions)
	ExitCommandError = 2 // Command error (bad arguments, unknown record, database not found, etc.)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
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

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "E001", "E201", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// JSON reports whether output is JSON.
func (f *OutputFormatter) JSON() bool {
	return f.Format == "json"
}

// Success outputs a successful result in the configured format.
// Text output prints data with fmt.Println; commands with richer text output
// write it themselves and call Success only in JSON mode.
func (f *OutputFormatter) Success(data any) error {
	if f.JSON() {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.JSON() {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Fail reports err in the configured format and returns the ExitError the
// command should return. Ordering errors keep their code in the details.
func (f *OutputFormatter) Fail(message string, err error) error {
	code, exit := classify(err)

	var details any
	var oe *ordering.Error
	if errors.As(err, &oe) {
		details = map[string]any{"ordering_code": string(oe.Code), "collection": oe.Collection}
	}
	if outErr := f.Error(code, fmt.Sprintf("%s: %v", message, err), details); outErr != nil {
		return outErr
	}
	return WrapExitError(exit, message, err)
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// classify maps an error to its CLI error code and exit code.
func classify(err error) (string, int) {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, ExitCommandError
	}
	var unknown *unknownCollectionError
	if errors.As(err, &unknown) {
		return ErrCodeUnknownCollection, ExitCommandError
	}

	var oe *ordering.Error
	if !errors.As(err, &oe) {
		return ErrCodeGeneric, ExitCommandError
	}
	switch oe.Code {
	case ordering.ErrCodeNotFound:
		return ErrCodeRecordNotFound, ExitCommandError
	case ordering.ErrCodeGroupRequired:
		return ErrCodeGroupRequired, ExitCommandError
	case ordering.ErrCodeInvalidPosition:
		return ErrCodeInvalidPosition, ExitCommandError
	case ordering.ErrCodeFieldReserved:
		return ErrCodeFieldReserved, ExitCommandError
	case ordering.ErrCodeConsistency:
		return ErrCodeConsistency, ExitFailure
	case ordering.ErrCodeConfigInvalid:
		return ErrCodeInvalidCollection, ExitCommandError
	}
	return ErrCodeGeneric, ExitCommandError
}
