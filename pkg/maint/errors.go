package maint

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCommandFailed represents an external tool that could not be run or exited non-zero
type ErrCommandFailed struct {
	Command Command
	Code    int
	Err     error
}

func (e *ErrCommandFailed) Error() string {
	line := strings.Join(append([]string{e.Command.Name}, e.Command.Args...), " ")
	if e.Code > 0 {
		return fmt.Sprintf("command %q exited with status %d", line, e.Code)
	}
	return fmt.Sprintf("command %q failed: %v", line, e.Err)
}

func (e *ErrCommandFailed) Unwrap() error {
	return e.Err
}

// ErrMarkerNotFound is returned when the build file has no project version line
type ErrMarkerNotFound struct {
	Path    string
	Project string
}

func (e *ErrMarkerNotFound) Error() string {
	return fmt.Sprintf("no \"project(%s VERSION ...)\" line found in %s", e.Project, e.Path)
}

// ErrTagExists represents a release tag that is already present in the repository
type ErrTagExists struct {
	Tag string
}

func (e *ErrTagExists) Error() string {
	return fmt.Sprintf("tag already exists: %s", e.Tag)
}

// ErrMissingArtifact represents a release file expected on disk but not found
type ErrMissingArtifact struct {
	Path string
}

func (e *ErrMissingArtifact) Error() string {
	return fmt.Sprintf("release artifact not found: %s", e.Path)
}

// ErrInvalidConfig wraps a configuration validation failure
type ErrInvalidConfig struct {
	Field  string
	Reason string
}

func (e *ErrInvalidConfig) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Field, e.Reason)
}

// IsCommandFailedError checks if the error chain contains a failed external command
func IsCommandFailedError(err error) bool {
	var target *ErrCommandFailed
	return errors.As(err, &target)
}

// IsMarkerNotFoundError checks if the error chain contains a missing version marker
func IsMarkerNotFoundError(err error) bool {
	var target *ErrMarkerNotFound
	return errors.As(err, &target)
}

// IsTagExistsError checks if the error chain contains an existing tag error
func IsTagExistsError(err error) bool {
	var target *ErrTagExists
	return errors.As(err, &target)
}

// IsMissingArtifactError checks if the error chain contains a missing artifact error
func IsMissingArtifactError(err error) bool {
	var target *ErrMissingArtifact
	return errors.As(err, &target)
}

// ExitCode returns the process exit status that err should map to.
// A failed external tool propagates its own status; anything else is 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var failed *ErrCommandFailed
	if errors.As(err, &failed) && failed.Code > 0 {
		return failed.Code
	}
	return 1
}
