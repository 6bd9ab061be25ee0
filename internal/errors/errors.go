// Package errors provides structured error types for hecate operations.
package errors

import (
	"errors"
	"fmt"
	"os/exec"
)

// ErrorKind represents the category of an error.
type ErrorKind int

const (
	// KindIO represents I/O errors.
	KindIO ErrorKind = iota
	// KindPath represents path-related errors.
	KindPath
	// KindCommand represents external command execution errors.
	KindCommand
	// KindFFmpeg represents FFmpeg decode pipe errors.
	KindFFmpeg
	// KindFFprobeParse represents FFprobe output parsing errors.
	KindFFprobeParse
	// KindJSONParse represents JSON parsing errors.
	KindJSONParse
	// KindVideoInfo represents video metadata extraction errors.
	KindVideoInfo
	// KindVideoOpen represents a video that cannot be opened or decoded at all.
	KindVideoOpen
	// KindComments represents a missing or unreadable comment file.
	KindComments
	// KindConfig represents configuration validation errors.
	KindConfig
	// KindNoFilesFound represents no suitable video files found.
	KindNoFilesFound
	// KindAnalysis represents pipeline stage failures.
	KindAnalysis
	// KindOutput represents thumbnail or dump writing failures.
	KindOutput
	// KindCancelled represents user-cancelled operations.
	KindCancelled
)

var kindNames = map[ErrorKind]string{
	KindIO:           "I/O error",
	KindPath:         "Path error",
	KindCommand:      "Command error",
	KindFFmpeg:       "FFmpeg error",
	KindFFprobeParse: "FFprobe parse error",
	KindJSONParse:    "JSON parse error",
	KindVideoInfo:    "Video info error",
	KindVideoOpen:    "Video open error",
	KindComments:     "Comment stream error",
	KindConfig:       "Configuration error",
	KindNoFilesFound: "No files found",
	KindAnalysis:     "Analysis error",
	KindOutput:       "Output error",
	KindCancelled:    "Operation cancelled",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown error"
}

// CommandErrorKind represents the type of command error.
type CommandErrorKind int

const (
	// CommandStart means the command failed to start.
	CommandStart CommandErrorKind = iota
	// CommandFailed means the command returned non-zero exit status.
	CommandFailed
)

// CommandError represents an error from executing an external command.
type CommandError struct {
	Command    string
	Kind       CommandErrorKind
	ExitCode   int
	Stderr     string
	Underlying error
}

func (e *CommandError) Error() string {
	switch e.Kind {
	case CommandStart:
		return fmt.Sprintf("failed to execute %s: %v", e.Command, e.Underlying)
	case CommandFailed:
		if e.Stderr != "" {
			return fmt.Sprintf("command %s failed with exit code %d: %s", e.Command, e.ExitCode, e.Stderr)
		}
		return fmt.Sprintf("command %s failed with exit code %d", e.Command, e.ExitCode)
	default:
		return fmt.Sprintf("command %s error: %v", e.Command, e.Underlying)
	}
}

func (e *CommandError) Unwrap() error {
	return e.Underlying
}

// CoreError is the main error type for hecate operations.
type CoreError struct {
	Kind       ErrorKind
	Message    string
	Underlying error
}

func (e *CoreError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *CoreError) Unwrap() error {
	return e.Underlying
}

// Is reports whether target matches this error's kind.
func (e *CoreError) Is(target error) bool {
	t, ok := target.(*CoreError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// NewIOError creates a new I/O error.
func NewIOError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindIO, Message: message, Underlying: underlying}
}

// NewPathError creates a new path-related error.
func NewPathError(message string) *CoreError {
	return &CoreError{Kind: KindPath, Message: message}
}

// NewCommandError creates a new command execution error.
func NewCommandError(cmd string, kind CommandErrorKind, underlying error) *CoreError {
	cmdErr := &CommandError{
		Command:    cmd,
		Kind:       kind,
		Underlying: underlying,
	}
	return &CoreError{Kind: KindCommand, Message: cmdErr.Error(), Underlying: cmdErr}
}

// NewCommandStartError creates an error for when a command fails to start.
func NewCommandStartError(cmd string, err error) *CoreError {
	return NewCommandError(cmd, CommandStart, err)
}

// NewCommandFailedError creates an error for when a command returns non-zero exit status.
func NewCommandFailedError(cmd string, exitCode int, stderr string) *CoreError {
	cmdErr := &CommandError{
		Command:  cmd,
		Kind:     CommandFailed,
		ExitCode: exitCode,
		Stderr:   stderr,
	}
	return &CoreError{Kind: KindCommand, Message: cmdErr.Error(), Underlying: cmdErr}
}

// NewFFmpegError creates a new FFmpeg decode error.
func NewFFmpegError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindFFmpeg, Message: message, Underlying: underlying}
}

// NewFFprobeParseError creates a new FFprobe parsing error.
func NewFFprobeParseError(message string) *CoreError {
	return &CoreError{Kind: KindFFprobeParse, Message: message}
}

// NewJSONParseError creates a new JSON parsing error.
func NewJSONParseError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindJSONParse, Message: message, Underlying: underlying}
}

// NewVideoInfoError creates a new video metadata error.
func NewVideoInfoError(message string) *CoreError {
	return &CoreError{Kind: KindVideoInfo, Message: message}
}

// NewVideoOpenError creates an error for a video that cannot be opened.
func NewVideoOpenError(path string, underlying error) *CoreError {
	return &CoreError{Kind: KindVideoOpen, Message: fmt.Sprintf("cannot open video %s", path), Underlying: underlying}
}

// NewCommentsError creates an error for a comment file that cannot be loaded.
func NewCommentsError(path string, underlying error) *CoreError {
	return &CoreError{Kind: KindComments, Message: fmt.Sprintf("cannot load comments from %s", path), Underlying: underlying}
}

// NewConfigError creates a new configuration error.
func NewConfigError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindConfig, Message: message, Underlying: underlying}
}

// NewNoFilesFoundError creates an error for when no video files are found.
func NewNoFilesFoundError(dir string) *CoreError {
	return &CoreError{Kind: KindNoFilesFound, Message: fmt.Sprintf("no suitable video files found in %s", dir)}
}

// NewAnalysisError creates a new pipeline stage error.
func NewAnalysisError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindAnalysis, Message: message, Underlying: underlying}
}

// NewOutputError creates a new output writing error.
func NewOutputError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindOutput, Message: message, Underlying: underlying}
}

// NewCancelledError creates an error for user-cancelled operations.
func NewCancelledError() *CoreError {
	return &CoreError{Kind: KindCancelled, Message: "operation was cancelled by the user"}
}

// IsKind checks if the error has the specified kind.
func IsKind(err error, kind ErrorKind) bool {
	var coreErr *CoreError
	if errors.As(err, &coreErr) {
		return coreErr.Kind == kind
	}
	return false
}

// IsCancelled checks if the error is a cancellation error.
func IsCancelled(err error) bool {
	return IsKind(err, KindCancelled)
}

// IsFatalInput reports whether err belongs to the unopenable-source class
// that aborts a run before any stage executes.
func IsFatalInput(err error) bool {
	return IsKind(err, KindVideoOpen) || IsKind(err, KindComments)
}

// WrapExecError wraps an exec.ExitError into a CoreError.
func WrapExecError(cmd string, err error, stderr string) *CoreError {
	if exitErr, ok := err.(*exec.ExitError); ok {
		return NewCommandFailedError(cmd, exitErr.ExitCode(), stderr)
	}
	return NewCommandStartError(cmd, err)
}
