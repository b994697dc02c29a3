package logging

import (
	"context"
	"log/slog"
	"strings"
)

type contextKey int

const (
	submissionIDKey contextKey = iota
	bundleDirKey
)

// WithSubmissionID tags ctx with a submission identifier.
func WithSubmissionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, submissionIDKey, strings.TrimSpace(id))
}

// SubmissionIDFromContext returns the submission identifier, if any.
func SubmissionIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(submissionIDKey).(string)
	return id, ok && id != ""
}

// WithBundleDir tags ctx with the job bundle directory being written.
func WithBundleDir(ctx context.Context, dir string) context.Context {
	return context.WithValue(ctx, bundleDirKey, dir)
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if id, ok := SubmissionIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldSubmissionID, id))
	}
	if dir, ok := ctx.Value(bundleDirKey).(string); ok && dir != "" {
		fields = append(fields, slog.String(FieldBundleDir, dir))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
