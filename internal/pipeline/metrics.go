// Package pipeline implements analyzer counters.
package pipeline

import (
	"sync/atomic"

	"firestige.xyz/seqgap/internal/core"
)

// Counters holds per-run packet counters. They are written by the analysis
// goroutine only but may be read concurrently, e.g. for progress logging.
type Counters struct {
	Read atomic.Uint64

	// One counter per packet class; every read packet lands in exactly one.
	Sequenced       atomic.Uint64
	Sentinel        atomic.Uint64
	NoFrame         atomic.Uint64
	UnsupportedLink atomic.Uint64
	NotIPv4         atomic.Uint64
	NotUDP          atomic.Uint64
	MalformedUDP    atomic.Uint64
	ShortPayload    atomic.Uint64

	Selected        atomic.Uint64
	SkippedLinkType atomic.Uint64 // selected but framed differently from the output capture
	ReportErrors    atomic.Uint64
}

func (c *Counters) class(name string) *atomic.Uint64 {
	switch name {
	case core.ClassSequenced:
		return &c.Sequenced
	case core.ClassSentinel:
		return &c.Sentinel
	case core.ClassNoFrame:
		return &c.NoFrame
	case core.ClassUnsupportedLink:
		return &c.UnsupportedLink
	case core.ClassNotIPv4:
		return &c.NotIPv4
	case core.ClassNotUDP:
		return &c.NotUDP
	case core.ClassMalformedUDP:
		return &c.MalformedUDP
	default:
		return &c.ShortPayload
	}
}

// Reset resets all counters to zero.
func (c *Counters) Reset() {
	c.Read.Store(0)
	c.Sequenced.Store(0)
	c.Sentinel.Store(0)
	c.NoFrame.Store(0)
	c.UnsupportedLink.Store(0)
	c.NotIPv4.Store(0)
	c.NotUDP.Store(0)
	c.MalformedUDP.Store(0)
	c.ShortPayload.Store(0)
	c.Selected.Store(0)
	c.SkippedLinkType.Store(0)
	c.ReportErrors.Store(0)
}

// Stats is a snapshot of the counters.
type Stats struct {
	Read            uint64 `json:"read" yaml:"read"`
	Sequenced       uint64 `json:"sequenced" yaml:"sequenced"`
	Sentinel        uint64 `json:"sentinel" yaml:"sentinel"`
	NoFrame         uint64 `json:"no_frame" yaml:"no_frame"`
	UnsupportedLink uint64 `json:"unsupported_link" yaml:"unsupported_link"`
	NotIPv4         uint64 `json:"not_ipv4" yaml:"not_ipv4"`
	NotUDP          uint64 `json:"not_udp" yaml:"not_udp"`
	MalformedUDP    uint64 `json:"malformed_udp" yaml:"malformed_udp"`
	ShortPayload    uint64 `json:"short_payload" yaml:"short_payload"`
	Selected        uint64 `json:"selected" yaml:"selected"`
	SkippedLinkType uint64 `json:"skipped_link_type" yaml:"skipped_link_type"`
	ReportErrors    uint64 `json:"report_errors" yaml:"report_errors"`

	Streams            int    `json:"streams" yaml:"streams"`
	MissingTotal       uint64 `json:"missing_total" yaml:"missing_total"`
	SuppressedWarnings int64  `json:"suppressed_warnings" yaml:"suppressed_warnings"`
}

// Dropped is the number of packets that never reached the gap engine.
func (s Stats) Dropped() uint64 {
	return s.NoFrame + s.UnsupportedLink + s.NotIPv4 + s.NotUDP + s.MalformedUDP + s.ShortPayload
}

func (c *Counters) snapshot() Stats {
	return Stats{
		Read:            c.Read.Load(),
		Sequenced:       c.Sequenced.Load(),
		Sentinel:        c.Sentinel.Load(),
		NoFrame:         c.NoFrame.Load(),
		UnsupportedLink: c.UnsupportedLink.Load(),
		NotIPv4:         c.NotIPv4.Load(),
		NotUDP:          c.NotUDP.Load(),
		MalformedUDP:    c.MalformedUDP.Load(),
		ShortPayload:    c.ShortPayload.Load(),
		Selected:        c.Selected.Load(),
		SkippedLinkType: c.SkippedLinkType.Load(),
		ReportErrors:    c.ReportErrors.Load(),
	}
}
