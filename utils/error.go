package utils

import (
	"fmt"
	"strings"
)

// ForbiddenError represents a 401/403 response from a remote repository.
type ForbiddenError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface for ForbiddenError.
func (e *ForbiddenError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%d Forbidden", e.StatusCode)
	}
	return fmt.Sprintf("%d Forbidden: %s", e.StatusCode, e.Message)
}

// NewForbiddenError creates a new ForbiddenError with the given status and message.
func NewForbiddenError(statusCode int, message string) *ForbiddenError {
	return &ForbiddenError{StatusCode: statusCode, Message: message}
}

// IsForbiddenStatus checks whether the status code returned by a repository means the credentials were rejected.
func IsForbiddenStatus(statusCode int) bool {
	return statusCode == 401 || statusCode == 403
}

// InvalidCoordinateError is returned when a group, artifact or version identifier can't be published.
type InvalidCoordinateError struct {
	Field  string
	Value  string
	Reason string
}

func (e *InvalidCoordinateError) Error() string {
	return fmt.Sprintf("invalid %s '%s': %s", e.Field, e.Value, e.Reason)
}

// IncompleteConfigError names the first required publish configuration field that is missing.
// An empty Field means no configuration was given at all.
type IncompleteConfigError struct {
	Field string
}

func (e *IncompleteConfigError) Error() string {
	if e.Field == "" {
		return "no publish configuration was given"
	}
	return fmt.Sprintf("publish configuration is missing the required field '%s'", e.Field)
}

type SigningError struct {
	Artifact string
	Cause    error
}

func (e *SigningError) Error() string {
	if e.Artifact == "" {
		return fmt.Sprintf("signing failed: %v", e.Cause)
	}
	return fmt.Sprintf("signing '%s' failed: %v", e.Artifact, e.Cause)
}

func (e *SigningError) Unwrap() error {
	return e.Cause
}

// StagingIOError is returned when an artifact couldn't be placed in the staging area.
// Op is the file operation that failed, such as "copy" or "checksum".
type StagingIOError struct {
	Artifact string
	Op       string
	Cause    error
}

func (e *StagingIOError) Error() string {
	return fmt.Sprintf("staging '%s' failed during %s: %v", e.Artifact, e.Op, e.Cause)
}

func (e *StagingIOError) Unwrap() error {
	return e.Cause
}

type UnsupportedChannelError struct {
	Channel string
}

func (e *UnsupportedChannelError) Error() string {
	return fmt.Sprintf("unsupported publish channel '%s'", e.Channel)
}

// DeploymentError is returned by an uploader. StatusCode is 0 when the failure happened before a response was received.
type DeploymentError struct {
	Target     string
	Artifact   string
	StatusCode int
	Cause      error
}

func (e *DeploymentError) Error() string {
	var details []string
	if e.Artifact != "" {
		details = append(details, "artifact '"+e.Artifact+"'")
	}
	if e.StatusCode != 0 {
		details = append(details, fmt.Sprintf("status %d", e.StatusCode))
	}
	msg := fmt.Sprintf("deployment to the %s repository failed", e.Target)
	if len(details) > 0 {
		msg += " (" + strings.Join(details, ", ") + ")"
	}
	return fmt.Sprintf("%s: %v", msg, e.Cause)
}

func (e *DeploymentError) Unwrap() error {
	return e.Cause
}
