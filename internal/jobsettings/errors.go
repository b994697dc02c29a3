package jobsettings

import (
	"errors"
	"fmt"
)

// ErrMalformedDocument marks a sticky settings or bundle document that could
// not be decoded or lacks required structure.
var ErrMalformedDocument = errors.New("malformed settings document")

// DocumentError describes a document that failed to decode.
type DocumentError struct {
	Path   string
	Reason string
	Err    error
}

func (e *DocumentError) Error() string {
	subject := "settings document"
	if e.Path != "" {
		subject = e.Path
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", subject, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", subject, e.Reason)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *DocumentError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformedDocument}
	}
	return []error{ErrMalformedDocument, e.Err}
}

// ErrorKind classifies document failures as configuration problems.
func (e *DocumentError) ErrorKind() string { return "configuration" }

func malformed(path, reason string, err error) error {
	return &DocumentError{Path: path, Reason: reason, Err: err}
}
