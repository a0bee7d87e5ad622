// Package pipeline implements analyzer construction.
package pipeline

import (
	"firestige.xyz/seqgap/internal/core/decoder"
	"firestige.xyz/seqgap/internal/exchange"
	"firestige.xyz/seqgap/internal/gap"
	"firestige.xyz/seqgap/internal/log"
	"firestige.xyz/seqgap/internal/metrics"
	"firestige.xyz/seqgap/internal/reporter"
	"firestige.xyz/seqgap/internal/selection"
)

// Builder provides a fluent interface for building analyzers.
// This is an alternative to using Config directly.
type Builder struct {
	config Config
}

// NewBuilder creates a new analyzer builder for one exchange.
func NewBuilder(ex exchange.Exchange) *Builder {
	return &Builder{
		config: Config{Exchange: ex},
	}
}

// WithDecoder sets the packet decoder.
func (b *Builder) WithDecoder(d decoder.Decoder) *Builder {
	b.config.Decoder = d
	return b
}

// WithEngine sets the gap engine.
func (b *Builder) WithEngine(e *gap.Engine) *Builder {
	b.config.Engine = e
	return b
}

// WithSelection copies packets inside w to sink.
func (b *Builder) WithSelection(w selection.Window, sink Sink) *Builder {
	b.config.Window = &w
	b.config.Sink = sink
	return b
}

// WithReporters sets the reporter chain.
func (b *Builder) WithReporters(reporters ...reporter.Reporter) *Builder {
	b.config.Reporters = append(b.config.Reporters, reporters...)
	return b
}

// WithMetrics sets the metrics collectors.
func (b *Builder) WithMetrics(m *metrics.Metrics) *Builder {
	b.config.Metrics = m
	return b
}

// WithWarnLimiter limits malformed-datagram warnings.
func (b *Builder) WithWarnLimiter(l *decoder.WarnRateLimiter) *Builder {
	b.config.WarnLimiter = l
	return b
}

// WithLogger sets the logger.
func (b *Builder) WithLogger(l log.Logger) *Builder {
	b.config.Logger = l
	return b
}

// Build creates the analyzer.
func (b *Builder) Build() *Analyzer {
	return New(b.config)
}
