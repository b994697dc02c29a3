package submission

import "errors"

// ErrUnsavedScene is returned when the scene has unsaved changes and the
// caller did not agree to save it.
var ErrUnsavedScene = errors.New("scene has unsaved changes")

// ErrPackagingUnsupported is returned when packaging is requested from a
// session that cannot save scene packages.
var ErrPackagingUnsupported = errors.New("scene session cannot save packages")

// ErrorKind classifies err for exit codes and log hints: "configuration"
// for malformed documents and bad config, "validation" for rejected input,
// "conflict" for a held lock, and "internal" for everything else.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	var classifier interface{ ErrorKind() string }
	if errors.As(err, &classifier) {
		return classifier.ErrorKind()
	}
	switch {
	case errors.Is(err, ErrUnsavedScene):
		return "validation"
	default:
		return "internal"
	}
}

// kindError attaches a classification to an error without changing its text.
type kindError struct {
	kind string
	err  error
}

func (e *kindError) Error() string     { return e.err.Error() }
func (e *kindError) Unwrap() error     { return e.err }
func (e *kindError) ErrorKind() string { return e.kind }

func withKind(kind string, err error) error {
	if err == nil {
		return nil
	}
	return &kindError{kind: kind, err: err}
}
