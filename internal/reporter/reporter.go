// Package reporter defines the outputs of an analysis run.
package reporter

import (
	"context"
	"time"

	"firestige.xyz/seqgap/internal/core"
	"firestige.xyz/seqgap/internal/gap"
)

// Reporter receives every gap-engine event of a run followed by one summary.
// Calls are made from the single analysis goroutine.
type Reporter interface {
	Name() string
	Init(options map[string]any) error
	ReportEvent(ctx context.Context, ev Event) error
	ReportSummary(ctx context.Context, s gap.Summary) error
	Close(ctx context.Context) error
}

// Event is a gap-engine event tagged with the packet that caused it.
type Event struct {
	gap.Event
	Packet    uint64 // 1-based index in the source capture
	Timestamp time.Time
	Exchange  string
}

// EventRecord is the serialized form of an Event.
type EventRecord struct {
	Type      string              `json:"type" yaml:"type"`
	Packet    uint64              `json:"packet" yaml:"packet"`
	Timestamp time.Time           `json:"timestamp" yaml:"timestamp"`
	Exchange  string              `json:"exchange,omitempty" yaml:"exchange,omitempty"`
	Stream    string              `json:"stream" yaml:"stream"`
	Range     core.SequenceRange  `json:"range" yaml:"range"`
	Outcome   gap.Outcome         `json:"outcome" yaml:"outcome"`
	Gap       *core.SequenceRange `json:"gap,omitempty" yaml:"gap,omitempty"`
	Filled    uint64              `json:"filled,omitempty" yaml:"filled,omitempty"`
}

// SummaryRecord is the serialized form of a gap.Summary.
type SummaryRecord struct {
	Type     string `json:"type" yaml:"type"`
	Exchange string `json:"exchange,omitempty" yaml:"exchange,omitempty"`
	gap.Summary `yaml:",inline"`
}

func (e Event) Record() EventRecord {
	rec := EventRecord{
		Type:      "event",
		Packet:    e.Packet,
		Timestamp: e.Timestamp,
		Exchange:  e.Exchange,
		Stream:    e.Key.String(),
		Range:     e.Range,
		Outcome:   e.Outcome,
		Filled:    e.Filled,
	}
	if e.Outcome == gap.OutcomeGap {
		g := e.Gap
		rec.Gap = &g
	}
	return rec
}

// Labels returns the event metadata used as message headers.
func (e Event) Labels() core.Labels {
	labels := core.Labels{
		core.LabelStream:  e.Key.String(),
		core.LabelOutcome: e.Outcome.String(),
	}
	if e.Exchange != "" {
		labels[core.LabelExchange] = e.Exchange
	}
	return labels
}

// NewSummaryRecord wraps a summary for serialization.
func NewSummaryRecord(exchange string, s gap.Summary) SummaryRecord {
	return SummaryRecord{Type: "summary", Exchange: exchange, Summary: s}
}
