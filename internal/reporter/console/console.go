// Package console implements the console reporter.
// Writes per-packet events and the final integrity report in text, JSON or YAML.
package console

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"firestige.xyz/seqgap/internal/gap"
	"firestige.xyz/seqgap/internal/log"
	"firestige.xyz/seqgap/internal/reporter"
)

const Name = "console"

// Config represents console reporter configuration.
type Config struct {
	Format   string `mapstructure:"format"`    // "text", "json" or "yaml", default "text"
	GapsOnly bool   `mapstructure:"gaps_only"` // only gap events, no per-packet lines
}

// ConsoleReporter writes human or machine readable reports to a writer.
type ConsoleReporter struct {
	out    io.Writer
	config Config
	yaml   *yaml.Encoder
	json   *json.Encoder

	reportedCount atomic.Uint64
}

// NewConsoleReporter creates a console reporter writing to stdout.
func NewConsoleReporter() reporter.Reporter {
	return New(os.Stdout)
}

// New creates a console reporter writing to w.
func New(w io.Writer) *ConsoleReporter {
	return &ConsoleReporter{
		out:    w,
		config: Config{Format: "text"},
	}
}

// Name returns the plugin name.
func (r *ConsoleReporter) Name() string {
	return Name
}

// Init initializes the reporter with configuration.
func (r *ConsoleReporter) Init(options map[string]any) error {
	cfg := Config{Format: "text"}
	if options != nil {
		if err := mapstructure.WeakDecode(options, &cfg); err != nil {
			return fmt.Errorf("invalid console options: %w", err)
		}
	}

	cfg.Format = strings.ToLower(cfg.Format)
	switch cfg.Format {
	case "text":
	case "json":
		r.json = json.NewEncoder(r.out)
	case "yaml":
		r.yaml = yaml.NewEncoder(r.out)
		r.yaml.SetIndent(2)
	default:
		return fmt.Errorf("invalid format %q, must be text, json or yaml", cfg.Format)
	}
	r.config = cfg

	log.GetLogger().WithField("format", cfg.Format).WithField("gaps_only", cfg.GapsOnly).Debug("console reporter initialized")
	return nil
}

// ReportEvent writes one packet event. With gaps_only, only gap events are written.
func (r *ConsoleReporter) ReportEvent(ctx context.Context, ev reporter.Event) error {
	if ev.Outcome == gap.OutcomeSentinel {
		return nil
	}
	if r.config.GapsOnly && ev.Outcome != gap.OutcomeGap {
		return nil
	}

	r.reportedCount.Add(1)

	switch r.config.Format {
	case "json":
		return r.encodeJSON(ev.Record())
	case "yaml":
		return r.encodeYAML(ev.Record())
	default:
		return r.eventText(ev)
	}
}

// ReportSummary writes the integrity report.
func (r *ConsoleReporter) ReportSummary(ctx context.Context, s gap.Summary) error {
	switch r.config.Format {
	case "json":
		return r.encodeJSON(reporter.NewSummaryRecord("", s))
	case "yaml":
		return r.encodeYAML(reporter.NewSummaryRecord("", s))
	default:
		return r.summaryText(s)
	}
}

// Close finishes the YAML stream.
func (r *ConsoleReporter) Close(ctx context.Context) error {
	log.GetLogger().WithField("total_reported", r.reportedCount.Load()).Debug("console reporter closed")
	if r.yaml != nil {
		return r.yaml.Close()
	}
	return nil
}

func (r *ConsoleReporter) encodeJSON(v any) error {
	if err := r.json.Encode(v); err != nil {
		return fmt.Errorf("json encode failed: %w", err)
	}
	return nil
}

func (r *ConsoleReporter) encodeYAML(v any) error {
	if err := r.yaml.Encode(v); err != nil {
		return fmt.Errorf("yaml encode failed: %w", err)
	}
	return nil
}

// eventText prints "begin->count" per packet, followed by what the engine
// concluded when the packet was not simply in order.
func (r *ConsoleReporter) eventText(ev reporter.Event) error {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d %s %s", ev.Packet, ev.Key, ev.Range)

	switch ev.Outcome {
	case gap.OutcomeGap:
		fmt.Fprintf(&b, " GAP missing %s", ev.Gap)
	case gap.OutcomeDuplicate:
		b.WriteString(" DUPLICATE")
	case gap.OutcomeOverlap:
		fmt.Fprintf(&b, " OVERLAP filled=%d", ev.Filled)
	}
	b.WriteByte('\n')

	_, err := io.WriteString(r.out, b.String())
	return err
}

func (r *ConsoleReporter) summaryText(s gap.Summary) error {
	var b strings.Builder
	b.WriteString("==== sequence integrity ====\n")
	for _, st := range s.Streams {
		fmt.Fprintf(&b, "%s expected=%d packets=%d duplicates=%d overlaps=%d gaps=%d missing=%d\n",
			st.Stream, st.Expected, st.Packets, st.Duplicates, st.Overlaps, st.Gaps, st.MissingTotal)
		for _, m := range st.Missing {
			fmt.Fprintf(&b, "  missing %s\n", m)
		}
	}
	fmt.Fprintf(&b, "streams=%d missing=%d unattributed_sentinels=%d\n",
		len(s.Streams), s.MissingTotal, s.PendingSentinels)

	_, err := io.WriteString(r.out, b.String())
	return err
}
