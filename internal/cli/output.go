package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/ganot/todos/internal/listview"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // server unreachable or rejected the call
	ExitCommandError = 2 // bad arguments or local setup
)

// ExitError carries the exit code for an error returned by a command.
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
	Format string
	Writer io.Writer
}

// CLIResponse is the JSON envelope for command output.
type CLIResponse struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
	Error  string `json:"error,omitempty"`
}

type listData struct {
	Version uint64          `json:"version"`
	Todos   []listview.Item `json:"todos"`
}

// List writes the snapshot.
func (f *OutputFormatter) List(snap listview.Snapshot) error {
	if f.Format == "json" {
		items := snap.Items
		if items == nil {
			items = []listview.Item{}
		}
		return f.json(CLIResponse{Status: "ok", Data: listData{Version: snap.Version, Todos: items}})
	}

	if len(snap.Items) == 0 {
		_, err := fmt.Fprintln(f.Writer, "No todos.")
		return err
	}
	for _, it := range snap.Items {
		if _, err := fmt.Fprintf(f.Writer, "#%d %s\n", it.ID, it.Title); err != nil {
			return err
		}
	}
	return nil
}

// Message writes a one-line result.
func (f *OutputFormatter) Message(msg string) error {
	if f.Format == "json" {
		return f.json(CLIResponse{Status: "ok", Data: map[string]string{"message": msg}})
	}
	_, err := fmt.Fprintln(f.Writer, msg)
	return err
}

// Error writes a failure. In text mode errors go to the caller's stderr
// instead.
func (f *OutputFormatter) Error(err error) error {
	if f.Format != "json" {
		return nil
	}
	return f.json(CLIResponse{Status: "error", Error: err.Error()})
}

func (f *OutputFormatter) json(resp CLIResponse) error {
	return json.NewEncoder(f.Writer).Encode(resp)
}
