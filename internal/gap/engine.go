package gap

import (
	"sort"

	"firestige.xyz/seqgap/internal/core"
)

// Engine owns the state of every stream seen during one analysis pass.
// It is not safe for concurrent use; a parallel caller must give each key
// to exactly one worker.
type Engine struct {
	streams map[core.StreamKey]*Stream

	pendingSentinels uint64 // sentinels on keys with no state yet
}

// NewEngine creates an empty engine.
func NewEngine() *Engine {
	return &Engine{streams: make(map[core.StreamKey]*Stream)}
}

// Observe applies r to the stream identified by key, creating the stream on
// the first range that carries sequence information.
func (e *Engine) Observe(key core.StreamKey, r core.SequenceRange) Event {
	s, ok := e.streams[key]
	if ok {
		return s.Apply(r)
	}

	if r.IsSentinel() {
		e.pendingSentinels++
		return Event{Key: key, Range: r, Outcome: OutcomeSentinel}
	}
	e.streams[key] = newStream(key, r)
	return Event{Key: key, Range: r, Outcome: OutcomeInitial}
}

// Stream returns the state for key.
func (e *Engine) Stream(key core.StreamKey) (*Stream, bool) {
	s, ok := e.streams[key]
	return s, ok
}

// Len returns the number of tracked streams.
func (e *Engine) Len() int {
	return len(e.streams)
}

// StreamReport is the integrity report of one stream.
type StreamReport struct {
	Stream       string               `json:"stream" yaml:"stream"`
	Key          core.StreamKey       `json:"-" yaml:"-"`
	Expected     uint64               `json:"expected" yaml:"expected"`
	Packets      uint64               `json:"packets" yaml:"packets"`
	Sentinels    uint64               `json:"sentinels" yaml:"sentinels"`
	Duplicates   uint64               `json:"duplicates" yaml:"duplicates"`
	Overlaps     uint64               `json:"overlaps" yaml:"overlaps"`
	Gaps         uint64               `json:"gaps" yaml:"gaps"`
	MissingTotal uint64               `json:"missing_total" yaml:"missing_total"`
	Missing      []core.SequenceRange `json:"missing" yaml:"missing"`
}

// Summary is the integrity report of a whole pass.
type Summary struct {
	Streams          []StreamReport `json:"streams" yaml:"streams"`
	MissingTotal     uint64         `json:"missing_total" yaml:"missing_total"`
	PendingSentinels uint64         `json:"pending_sentinels" yaml:"pending_sentinels"`
}

// Summary snapshots every stream, ordered by key.
func (e *Engine) Summary() Summary {
	sum := Summary{
		Streams:          make([]StreamReport, 0, len(e.streams)),
		PendingSentinels: e.pendingSentinels,
	}
	for _, s := range e.streams {
		missing := make([]core.SequenceRange, len(s.Missing))
		copy(missing, s.Missing)

		report := StreamReport{
			Stream:       s.Key.String(),
			Key:          s.Key,
			Expected:     s.Expected,
			Packets:      s.Packets,
			Sentinels:    s.Sentinels,
			Duplicates:   s.Duplicates,
			Overlaps:     s.Overlaps,
			Gaps:         s.Gaps,
			MissingTotal: s.MissingTotal(),
			Missing:      missing,
		}
		sum.MissingTotal += report.MissingTotal
		sum.Streams = append(sum.Streams, report)
	}
	sort.Slice(sum.Streams, func(i, j int) bool {
		return sum.Streams[i].Key.Less(sum.Streams[j].Key)
	})
	return sum
}
