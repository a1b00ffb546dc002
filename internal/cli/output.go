package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Some programs failed to generate
	ExitCommandError = 2 // Command error (invalid document, bad config, unreadable input, etc.)
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
	if err == nil {
		return ExitSuccess
	}
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
	Code    string `json:"code"`              // "E001", "E002", etc.
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// styles renders text output. The renderer follows the writer, so output
// to a pipe or buffer carries no escape codes.
type styles struct {
	ok, warn, fail, label lipgloss.Style
}

func (f *OutputFormatter) styles() styles {
	r := lipgloss.NewRenderer(f.Writer)
	return styles{
		ok:    r.NewStyle().Foreground(lipgloss.Color("#27ca3f")),
		warn:  r.NewStyle().Foreground(lipgloss.Color("#f9ca24")),
		fail:  r.NewStyle().Foreground(lipgloss.Color("#ff5f56")).Bold(true),
		label: r.NewStyle().Foreground(lipgloss.Color("#bababa")),
	}
}

// Success outputs a successful result in the configured format. Text
// output prints data with fmt's default formatting.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{Status: "ok", Data: data})
	}
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return f.encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: code, Message: message, Details: details},
		})
	}

	s := f.styles()
	fmt.Fprintf(f.Writer, "%s %s\n", s.fail.Render(fmt.Sprintf("Error [%s]:", code)), message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// Field is a label-value pair for Fields.
type Field struct {
	Label string
	Value string
}

// Check prints a line prefixed with a green check mark.
func (f *OutputFormatter) Check(format string, args ...any) {
	s := f.styles()
	fmt.Fprintf(f.Writer, "%s %s\n", s.ok.Render("✓"), fmt.Sprintf(format, args...))
}

// Warn prints a line prefixed with a yellow marker.
func (f *OutputFormatter) Warn(format string, args ...any) {
	s := f.styles()
	fmt.Fprintf(f.Writer, "%s %s\n", s.warn.Render("!"), fmt.Sprintf(format, args...))
}

// Fail prints a line prefixed with a red cross.
func (f *OutputFormatter) Fail(format string, args ...any) {
	s := f.styles()
	fmt.Fprintf(f.Writer, "%s %s\n", s.fail.Render("✗"), fmt.Sprintf(format, args...))
}

// Fields prints aligned label-value lines.
func (f *OutputFormatter) Fields(fields []Field) {
	s := f.styles()
	width := 0
	for _, fl := range fields {
		width = max(width, len(fl.Label)+1)
	}
	for _, fl := range fields {
		fmt.Fprintf(f.Writer, "  %s %s\n", s.label.Width(width).Render(fl.Label+":"), fl.Value)
	}
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Verbose logs go to ErrWriter so they never corrupt JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

func (f *OutputFormatter) encode(v any) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
