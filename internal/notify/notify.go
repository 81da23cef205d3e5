// Package notify defines the single reporting surface the cart engine uses
// for failures and diagnostics. The engine never couples to a UI; callers
// plug in whatever presentation they want behind the Sink contract.
package notify

import (
	"context"
	"log/slog"
)

// Severity classifies a report.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Sink receives failure and status reports from the engine. Implementations
// must not panic; the engine treats every report as fire-and-forget.
type Sink interface {
	Report(ctx context.Context, severity Severity, message string)
}

// SlogSink routes reports to a structured logger.
type SlogSink struct {
	logger *slog.Logger
}

// NewSlogSink creates a sink backed by the given logger.
func NewSlogSink(logger *slog.Logger) *SlogSink {
	return &SlogSink{logger: logger}
}

// Report logs the message at the level matching the severity.
func (s *SlogSink) Report(ctx context.Context, severity Severity, message string) {
	switch severity {
	case SeverityError:
		s.logger.ErrorContext(ctx, message)
	case SeverityWarning:
		s.logger.WarnContext(ctx, message)
	default:
		s.logger.InfoContext(ctx, message)
	}
}

// NopSink discards all reports.
type NopSink struct{}

func (NopSink) Report(ctx context.Context, severity Severity, message string) {}
