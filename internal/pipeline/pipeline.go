// Package pipeline implements the analysis loop: decode, extract, track, report, select.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"firestige.xyz/seqgap/internal/core"
	"firestige.xyz/seqgap/internal/core/decoder"
	"firestige.xyz/seqgap/internal/exchange"
	"firestige.xyz/seqgap/internal/gap"
	"firestige.xyz/seqgap/internal/log"
	"firestige.xyz/seqgap/internal/metrics"
	"firestige.xyz/seqgap/internal/reporter"
	"firestige.xyz/seqgap/internal/selection"
)

// Source yields raw packets in capture order and io.EOF at the end.
type Source interface {
	ReadPacket() (core.RawPacket, error)
}

// Sink receives the selected packets unmodified. Only packets whose link
// type matches LinkType are written.
type Sink interface {
	Write(raw core.RawPacket) error
	LinkType() core.LinkType
	Close() error
}

// Analyzer runs every packet of a capture to completion before the next one.
type Analyzer struct {
	decoder   decoder.Decoder
	exchange  exchange.Exchange
	engine    *gap.Engine
	window    *selection.Window
	sink      Sink
	reporters []reporter.Reporter
	metrics   *metrics.Metrics
	limiter   *decoder.WarnRateLimiter
	log       log.Logger

	counters Counters
	finished bool
}

// Config contains analyzer configuration. Window and Sink are both set or
// both nil; Metrics and WarnLimiter are optional.
type Config struct {
	Decoder     decoder.Decoder
	Exchange    exchange.Exchange
	Engine      *gap.Engine
	Window      *selection.Window
	Sink        Sink
	Reporters   []reporter.Reporter
	Metrics     *metrics.Metrics
	WarnLimiter *decoder.WarnRateLimiter
	Logger      log.Logger
}

// New creates an analyzer.
func New(cfg Config) *Analyzer {
	if cfg.Decoder == nil {
		cfg.Decoder = decoder.NewStandardDecoder()
	}
	if cfg.Engine == nil {
		cfg.Engine = gap.NewEngine()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.GetLogger()
	}
	return &Analyzer{
		decoder:   cfg.Decoder,
		exchange:  cfg.Exchange,
		engine:    cfg.Engine,
		window:    cfg.Window,
		sink:      cfg.Sink,
		reporters: cfg.Reporters,
		metrics:   cfg.Metrics,
		limiter:   cfg.WarnLimiter,
		log:       cfg.Logger.WithField("exchange", cfg.Exchange.String()),
	}
}

// Run pulls packets from src until EOF or ctx is cancelled. A cancelled run
// returns ctx.Err(); the state accumulated so far stays valid for Finish.
// A capture truncated mid-packet ends the run like EOF.
func (a *Analyzer) Run(ctx context.Context, src Source) error {
	for {
		if err := ctx.Err(); err != nil {
			a.log.WithField("packets", a.counters.Read.Load()).Warn("analysis interrupted")
			return err
		}

		raw, err := src.ReadPacket()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if errors.Is(err, io.ErrUnexpectedEOF) {
				a.log.WithField("packets", a.counters.Read.Load()).Warn("capture truncated, last packet ignored")
				return nil
			}
			return fmt.Errorf("read packet %d: %w", a.counters.Read.Load()+1, err)
		}

		if err := a.Process(ctx, raw); err != nil {
			return err
		}
	}
}

// Process runs one packet through the analysis. Only sink failures are
// returned; per-packet decode problems are classified and counted.
func (a *Analyzer) Process(ctx context.Context, raw core.RawPacket) error {
	a.counters.Read.Add(1)

	dgram, err := a.decoder.Decode(raw)
	if err != nil {
		class := decoder.Classify(err)
		a.count(class)
		a.logDecodeFailure(raw, dgram, class, err)
		return nil
	}

	if len(dgram.Payload) < a.exchange.MinPayloadLen() {
		a.count(core.ClassShortPayload)
		if a.log.IsDebugEnabled() {
			a.log.WithFields(packetFields(raw, dgram)).WithField("len", len(dgram.Payload)).
				Debugf("%v", core.ErrShortPayload)
		}
		return nil
	}

	r := a.exchange.Extract(dgram.Payload)
	ev := a.engine.Observe(dgram.Key(), r)

	if ev.Outcome == gap.OutcomeSentinel {
		a.count(core.ClassSentinel)
	} else {
		a.count(core.ClassSequenced)
	}
	a.observeMetrics(ev)
	if a.log.IsDebugEnabled() {
		a.log.WithFields(packetFields(raw, dgram)).WithFields(map[string]interface{}{
			"stream":  ev.Key.String(),
			"range":   ev.Range.String(),
			"outcome": ev.Outcome.String(),
		}).Debug("packet observed")
	}

	a.report(ctx, reporter.Event{
		Event:     ev,
		Packet:    raw.Index,
		Timestamp: raw.Timestamp,
		Exchange:  a.exchange.String(),
	})

	if a.window != nil && a.sink != nil && a.window.Selects(r) {
		if raw.LinkType != a.sink.LinkType() {
			a.counters.SkippedLinkType.Add(1)
			a.log.WithField("packet", raw.Index).WithField("link_type", raw.LinkType.String()).
				Debug("selected packet not written, output capture has another link type")
			return nil
		}
		if err := a.sink.Write(raw); err != nil {
			return fmt.Errorf("write selected packet %d: %w", raw.Index, err)
		}
		a.counters.Selected.Add(1)
		if a.metrics != nil {
			a.metrics.SelectedPacketsTotal.Inc()
		}
	}
	return nil
}

func (a *Analyzer) count(class string) {
	a.counters.class(class).Add(1)
	if a.metrics != nil {
		a.metrics.PacketsTotal.WithLabelValues(class).Inc()
	}
}

func (a *Analyzer) observeMetrics(ev gap.Event) {
	if a.metrics == nil {
		return
	}
	a.metrics.OutcomesTotal.WithLabelValues(ev.Outcome.String()).Inc()
	switch ev.Outcome {
	case gap.OutcomeInitial:
		a.metrics.Streams.Set(float64(a.engine.Len()))
	case gap.OutcomeGap:
		a.metrics.GapsTotal.Inc()
		a.metrics.MissingSequencesTotal.Add(float64(ev.Gap.Count))
	case gap.OutcomeOverlap:
		a.metrics.RecoveredSequencesTotal.Add(float64(ev.Filled))
	}
}

// Malformed UDP means a damaged feed and is logged at warn level, limited
// per source. Other classes are ordinary non-feed traffic.
func (a *Analyzer) logDecodeFailure(raw core.RawPacket, dgram core.Datagram, class string, err error) {
	if class == core.ClassMalformedUDP {
		if a.limiter.Allow(dgram.SrcIP, raw.Timestamp) {
			a.log.WithField("packet", raw.Index).WithField("src", dgram.SrcIP.String()).
				WithError(err).Warn("malformed UDP datagram")
		}
		return
	}
	if a.log.IsDebugEnabled() {
		a.log.WithFields(packetFields(raw, dgram)).WithField("class", class).WithError(err).Debug("packet dropped")
	}
}

// packetFields identifies a packet in debug logs. Cooked captures add the
// link packet type.
func packetFields(raw core.RawPacket, dgram core.Datagram) map[string]interface{} {
	fields := map[string]interface{}{"packet": raw.Index}
	if dgram.LinkPacketType != "" {
		fields["packet_type"] = dgram.LinkPacketType
	}
	return fields
}

func (a *Analyzer) report(ctx context.Context, ev reporter.Event) {
	for _, r := range a.reporters {
		if err := r.ReportEvent(ctx, ev); err != nil {
			a.counters.ReportErrors.Add(1)
			a.log.WithField("reporter", r.Name()).WithError(err).Error("reporter failed")
		}
	}
}

// Stats returns a snapshot of the counters. Safe to call while Run is active.
func (a *Analyzer) Stats() Stats {
	s := a.counters.snapshot()
	s.SuppressedWarnings = a.limiter.Suppressed()
	return s
}

// Engine exposes the gap engine.
func (a *Analyzer) Engine() *gap.Engine {
	return a.engine
}

// Finish sends the integrity report to every reporter, closes the reporters
// and the sink, and returns the final statistics. Calling it again returns
// the statistics without reporting twice.
func (a *Analyzer) Finish(ctx context.Context) (Stats, error) {
	summary := a.engine.Summary()
	stats := a.Stats()
	stats.Streams = len(summary.Streams)
	stats.MissingTotal = summary.MissingTotal

	if a.finished {
		return stats, nil
	}
	a.finished = true

	if a.metrics != nil {
		a.metrics.Streams.Set(float64(stats.Streams))
	}

	var errs []error
	for _, r := range a.reporters {
		if err := r.ReportSummary(ctx, summary); err != nil {
			a.counters.ReportErrors.Add(1)
			errs = append(errs, fmt.Errorf("reporter %s: %w", r.Name(), err))
		}
		if err := r.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close reporter %s: %w", r.Name(), err))
		}
	}
	if a.sink != nil {
		if err := a.sink.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close output capture: %w", err))
		}
	}
	stats.ReportErrors = a.counters.ReportErrors.Load()

	a.log.WithFields(map[string]interface{}{
		"packets":  stats.Read,
		"streams":  stats.Streams,
		"missing":  stats.MissingTotal,
		"dropped":  stats.Dropped(),
		"selected": stats.Selected,
	}).Info("analysis finished")

	return stats, errors.Join(errs...)
}
