package reporter_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/seqgap/internal/core"
	"firestige.xyz/seqgap/internal/gap"
	"firestige.xyz/seqgap/internal/reporter"
)

type stubReporter struct {
	name    string
	initErr error
	options map[string]any
}

func (s *stubReporter) Name() string                                      { return s.name }
func (s *stubReporter) Init(options map[string]any) error                 { s.options = options; return s.initErr }
func (s *stubReporter) ReportEvent(context.Context, reporter.Event) error { return nil }
func (s *stubReporter) ReportSummary(context.Context, gap.Summary) error  { return nil }
func (s *stubReporter) Close(context.Context) error                       { return nil }

func TestRegistry(t *testing.T) {
	require.NoError(t, reporter.Register("stub-ok", func() reporter.Reporter { return &stubReporter{name: "stub-ok"} }))
	require.NoError(t, reporter.Register("stub-fail", func() reporter.Reporter {
		return &stubReporter{name: "stub-fail", initErr: errors.New("no brokers")}
	}))

	t.Run("duplicate registration", func(t *testing.T) {
		err := reporter.Register("stub-ok", func() reporter.Reporter { return nil })
		assert.Error(t, err)
	})

	t.Run("new passes options", func(t *testing.T) {
		r, err := reporter.New("stub-ok", map[string]any{"k": "v"})
		require.NoError(t, err)
		assert.Equal(t, "stub-ok", r.Name())
		assert.Equal(t, "v", r.(*stubReporter).options["k"])
	})

	t.Run("not found", func(t *testing.T) {
		_, err := reporter.New("missing", nil)
		assert.ErrorIs(t, err, core.ErrReporterNotFound)
	})

	t.Run("init failure", func(t *testing.T) {
		_, err := reporter.New("stub-fail", nil)
		assert.ErrorIs(t, err, core.ErrReporterInitFailed)
		assert.Contains(t, err.Error(), "no brokers")
	})

	assert.Contains(t, reporter.Names(), "stub-ok")
	assert.Contains(t, reporter.Names(), "stub-fail")
}

func testKey() core.StreamKey {
	return core.StreamKey{Addr: core.IPv4Addr{224, 0, 31, 1}, Port: 14310}
}

func TestEventRecord(t *testing.T) {
	ts := time.Date(2024, 3, 1, 14, 30, 0, 0, time.UTC)
	ev := reporter.Event{
		Event: gap.Event{
			Key:     testKey(),
			Range:   core.SequenceRange{Begin: 110, Count: 1},
			Outcome: gap.OutcomeGap,
			Gap:     core.SequenceRange{Begin: 101, Count: 9},
		},
		Packet:    7,
		Timestamp: ts,
		Exchange:  "cme",
	}

	rec := ev.Record()
	assert.Equal(t, "event", rec.Type)
	assert.Equal(t, "224.0.31.1:14310", rec.Stream)
	require.NotNil(t, rec.Gap)
	assert.Equal(t, core.SequenceRange{Begin: 101, Count: 9}, *rec.Gap)

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"outcome":"gap"`)
	assert.Contains(t, string(data), `"gap":{"begin":101,"count":9}`)

	labels := ev.Labels()
	assert.Equal(t, "224.0.31.1:14310", labels[core.LabelStream])
	assert.Equal(t, "gap", labels[core.LabelOutcome])
	assert.Equal(t, "cme", labels[core.LabelExchange])
}

func TestEventRecordWithoutGap(t *testing.T) {
	ev := reporter.Event{Event: gap.Event{Key: testKey(), Range: core.SequenceRange{Begin: 5, Count: 1}, Outcome: gap.OutcomeContiguous}}
	rec := ev.Record()
	assert.Nil(t, rec.Gap)

	data, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"gap"`)
	assert.NotContains(t, ev.Labels(), core.LabelExchange)
}

func TestSummaryRecordJSON(t *testing.T) {
	s := gap.Summary{
		Streams: []gap.StreamReport{{
			Stream:       "224.0.31.1:14310",
			Expected:     120,
			MissingTotal: 9,
			Missing:      []core.SequenceRange{{Begin: 101, Count: 9}},
		}},
		MissingTotal: 9,
	}
	data, err := json.Marshal(reporter.NewSummaryRecord("cboe", s))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"summary"`)
	assert.Contains(t, string(data), `"exchange":"cboe"`)
	assert.Contains(t, string(data), `"missing_total":9`)
	assert.Contains(t, string(data), `"missing":[{"begin":101,"count":9}]`)
}
