package taskstore

import "log/slog"

// Reporter receives every failed store operation.
type Reporter interface {
	Report(op, ownerID string, err error)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(op, ownerID string, err error)

func (f ReporterFunc) Report(op, ownerID string, err error) { f(op, ownerID, err) }

// Discard drops every report.
var Discard Reporter = ReporterFunc(func(string, string, error) {})

// LogReporter writes failures to a structured logger at warn level.
type LogReporter struct {
	Logger *slog.Logger
}

func (r LogReporter) Report(op, ownerID string, err error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("task operation failed", "op", op, "owner", ownerID, "err", err)
}
