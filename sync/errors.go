// ABOUTME: Error types returned by the token manager and event synchronizer
// ABOUTME: Callers match them with errors.As to decide how to surface failures
package sync

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/googleapi"
)

// AuthExchangeError reports a token endpoint response that carried an error.
type AuthExchangeError struct {
	Payload string
	Err     error
}

func (e *AuthExchangeError) Error() string {
	if e.Payload == "" {
		return fmt.Sprintf("token exchange failed: %v", e.Err)
	}
	return "token exchange failed: " + e.Payload
}

func (e *AuthExchangeError) Unwrap() error { return e.Err }

// StorageError reports that the token directory or file could not be written.
type StorageError struct {
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("token storage %s: %v", e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// RemoteServiceError wraps any failed call to the remote calendar.
type RemoteServiceError struct {
	Op  string
	Err error
}

func (e *RemoteServiceError) Error() string {
	return fmt.Sprintf("calendar %s: %v", e.Op, e.Err)
}

func (e *RemoteServiceError) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status of the failed call, or 0 when unknown.
func (e *RemoteServiceError) StatusCode() int {
	var apiErr *googleapi.Error
	if errors.As(e.Err, &apiErr) {
		return apiErr.Code
	}
	return 0
}

// ConsentRequiredError is returned when the stored credential expired and
// cannot be refreshed. The caller must send the user to URL.
type ConsentRequiredError struct {
	URL   string
	State string
}

func (e *ConsentRequiredError) Error() string {
	return "user consent required"
}

func joinErrorFields(fields ...string) string {
	var parts []string
	for _, f := range fields {
		if f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, ", ")
}
