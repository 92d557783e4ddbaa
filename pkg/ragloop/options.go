package ragloop

import (
	"log/slog"

	"github.com/randalmurphal/ragloop/pkg/ragloop/config"
	"github.com/randalmurphal/ragloop/pkg/ragloop/observability"
	"github.com/randalmurphal/ragloop/pkg/ragloop/runstore"
)

// Option configures a Pipeline at construction.
type Option func(*Pipeline)

// WithSettings replaces the default settings. The settings are validated by
// New.
func WithSettings(s config.Settings) Option {
	return func(p *Pipeline) {
		p.settings = s
	}
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMetrics enables metrics recording. Pass
// observability.NewMetricsRecorder() for OTel metrics.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(p *Pipeline) {
		if m != nil {
			p.metrics = m
		}
	}
}

// WithSpanManager enables distributed tracing. Pass
// observability.NewSpanManager() for OTel spans.
func WithSpanManager(sm observability.SpanManager) Option {
	return func(p *Pipeline) {
		if sm != nil {
			p.spans = sm
		}
	}
}

// WithRunStore enables run-trace persistence. One record is appended per
// completed step; store failures are logged and never fail the run.
func WithRunStore(store runstore.Store) Option {
	return func(p *Pipeline) {
		p.store = store
	}
}
