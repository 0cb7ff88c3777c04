package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// SentryMetrics records compile-session spans for Sentry performance
// monitoring, adapted from the teacher's internal/metrics/sentry.go.
type SentryMetrics struct {
	enabled bool
}

// NewSentryMetrics creates a Sentry metrics client, always enabled when
// Sentry itself has been initialized.
func NewSentryMetrics() *SentryMetrics {
	return &SentryMetrics{enabled: true}
}

// RecordCompile records one phrase compilation as a Sentry span.
func (m *SentryMetrics) RecordCompile(ctx context.Context, phrase string, success bool, duration time.Duration) {
	if !m.enabled {
		return
	}

	span := sentry.StartSpan(ctx, "compiler.compile")
	defer span.Finish()

	span.SetTag("phrase", phrase)
	span.SetTag("success", fmt.Sprintf("%t", success))
	span.SetData("duration_ms", duration.Milliseconds())

	if success {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}
	span.Description = fmt.Sprintf("Compile: %s", phrase)
}

// RecordExplanation reports a failed construction's Explanation as a
// Sentry event, tagged by its Kind (USER_ERROR/DEFINITION_ERROR/
// PROGRAM_BUG) so dashboards can separate caller mistakes from bugs.
func (m *SentryMetrics) RecordExplanation(kind string, message string) {
	if !m.enabled {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("explanation_kind", kind)
		scope.SetContext("explanation", map[string]interface{}{"message": message})
		sentry.CaptureMessage("Compile failure: " + message)
	})
}

// RecordPerformanceMetric records an arbitrary named operation's
// duration and metadata, used by verbose tracing around tiling/breathe.
func (m *SentryMetrics) RecordPerformanceMetric(operation string, duration time.Duration, metadata map[string]interface{}) {
	if !m.enabled {
		return
	}
	ctx := context.Background()
	span := sentry.StartSpan(ctx, operation)
	span.Description = operation
	span.SetData("duration_ms", duration.Milliseconds())
	for key, value := range metadata {
		span.SetData(key, value)
	}
	span.Finish()
}
