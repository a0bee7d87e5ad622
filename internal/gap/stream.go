// Package gap tracks sequence continuity per feed stream.
//
// Each stream keeps the next expected sequence number and a sorted, coalesced
// list of missing ranges. Streams are created on the first packet carrying
// sequence information and live for the whole analysis pass.
package gap

import "firestige.xyz/seqgap/internal/core"

// Outcome classifies how a packet's range related to the stream state.
type Outcome uint8

const (
	OutcomeSentinel   Outcome = iota // no sequence information, ignored
	OutcomeInitial                   // first range seen on the stream
	OutcomeContiguous                // begins at the expected sequence
	OutcomeGap                       // begins past the expected sequence
	OutcomeDuplicate                 // entirely before the expected sequence
	OutcomeOverlap                   // begins before and ends past the expected sequence
)

var outcomeNames = [...]string{
	OutcomeSentinel:   "sentinel",
	OutcomeInitial:    "initial",
	OutcomeContiguous: "contiguous",
	OutcomeGap:        "gap",
	OutcomeDuplicate:  "duplicate",
	OutcomeOverlap:    "overlap",
}

func (o Outcome) String() string {
	if int(o) < len(outcomeNames) {
		return outcomeNames[o]
	}
	return "unknown"
}

// MarshalText renders the outcome name in JSON and YAML reports.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Event is emitted for every observed packet.
type Event struct {
	Key     core.StreamKey
	Range   core.SequenceRange
	Outcome Outcome
	Gap     core.SequenceRange // set when Outcome is OutcomeGap
	Filled  uint64             // missing sequences recovered by an overlap
}

// Stream is the continuity state of one feed stream.
type Stream struct {
	Key      core.StreamKey
	Expected uint64
	Missing  []core.SequenceRange // sorted by Begin, never adjacent or overlapping

	Packets    uint64 // ranges applied, sentinels excluded
	Sentinels  uint64
	Duplicates uint64
	Overlaps   uint64
	Gaps       uint64 // forward gaps detected, before coalescing
}

func newStream(key core.StreamKey, first core.SequenceRange) *Stream {
	return &Stream{
		Key:      key,
		Expected: first.End(),
		Packets:  1,
	}
}

// Apply updates the stream with the next observed range.
func (s *Stream) Apply(r core.SequenceRange) Event {
	ev := Event{Key: s.Key, Range: r}

	if r.IsSentinel() {
		s.Sentinels++
		ev.Outcome = OutcomeSentinel
		return ev
	}
	s.Packets++

	switch {
	case r.Begin == s.Expected:
		s.Expected = r.End()
		ev.Outcome = OutcomeContiguous

	case r.Begin > s.Expected:
		ev.Gap = core.SequenceRange{Begin: s.Expected, Count: r.Begin - s.Expected}
		s.recordMissing(ev.Gap)
		s.Expected = r.End()
		s.Gaps++
		ev.Outcome = OutcomeGap

	case r.End() <= s.Expected:
		s.Duplicates++
		ev.Outcome = OutcomeDuplicate

	default:
		ev.Filled = s.fill(r.Begin)
		s.Expected = r.End()
		s.Overlaps++
		ev.Outcome = OutcomeOverlap
	}
	return ev
}

// MissingTotal returns the number of sequence numbers currently missing.
func (s *Stream) MissingTotal() uint64 {
	var n uint64
	for _, m := range s.Missing {
		n += m.Count
	}
	return n
}

// recordMissing appends gap, extending the last entry when they touch.
// Gaps always start at Expected, which is at or past the end of every entry.
func (s *Stream) recordMissing(gap core.SequenceRange) {
	if n := len(s.Missing); n > 0 && s.Missing[n-1].End() == gap.Begin {
		s.Missing[n-1].Count += gap.Count
		return
	}
	s.Missing = append(s.Missing, gap)
}

// fill removes [begin, Expected) from the missing list and returns how many
// sequence numbers were recovered. Every entry ends at or before Expected, so
// only trailing entries are affected and no entry is ever split.
func (s *Stream) fill(begin uint64) uint64 {
	var filled uint64
	i := len(s.Missing)
	for i > 0 && s.Missing[i-1].Begin >= begin {
		filled += s.Missing[i-1].Count
		i--
	}
	s.Missing = s.Missing[:i]

	if i > 0 {
		last := &s.Missing[i-1]
		if end := last.End(); end > begin {
			filled += end - begin
			last.Count = begin - last.Begin
		}
	}
	return filled
}
