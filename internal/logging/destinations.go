package logging

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Destination is one named log sink, such as the console or the log file.
type Destination struct {
	Name    string
	Handler slog.Handler
}

// destinationsHandler sends each record to every destination whose handler
// accepts its level. A failing destination does not stop the others.
type destinationsHandler struct {
	dests []Destination
}

// Destinations combines the destinations with a nil Handler dropped. No
// destinations yields a handler that discards everything.
func Destinations(dests ...Destination) slog.Handler {
	kept := make([]Destination, 0, len(dests))
	for _, d := range dests {
		if d.Handler != nil {
			kept = append(kept, d)
		}
	}
	switch len(kept) {
	case 0:
		return NoopHandler{}
	case 1:
		return kept[0].Handler
	}
	return &destinationsHandler{dests: kept}
}

func (h *destinationsHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, d := range h.dests {
		if d.Handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h *destinationsHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	last := len(h.dests) - 1
	for i, d := range h.dests {
		if !d.Handler.Enabled(ctx, record.Level) {
			continue
		}
		rec := record
		if i < last {
			// Handlers may add attrs to the record they receive.
			rec = record.Clone()
		}
		if err := d.Handler.Handle(ctx, rec); err != nil {
			errs = append(errs, fmt.Errorf("%s log: %w", d.Name, err))
		}
	}
	return errors.Join(errs...)
}

func (h *destinationsHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.each(func(next slog.Handler) slog.Handler { return next.WithAttrs(attrs) })
}

func (h *destinationsHandler) WithGroup(name string) slog.Handler {
	return h.each(func(next slog.Handler) slog.Handler { return next.WithGroup(name) })
}

func (h *destinationsHandler) each(fn func(slog.Handler) slog.Handler) slog.Handler {
	dests := make([]Destination, len(h.dests))
	for i, d := range h.dests {
		dests[i] = Destination{Name: d.Name, Handler: fn(d.Handler)}
	}
	return &destinationsHandler{dests: dests}
}
