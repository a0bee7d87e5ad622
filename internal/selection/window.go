// Package selection decides which packets are copied to the output capture.
package selection

import (
	"fmt"
	"math"

	"firestige.xyz/seqgap/internal/core"
)

// Window is the half-open sequence window [Begin, End).
type Window struct {
	Begin uint64
	End   uint64
}

// NewWindow builds a window from begin and exactly one of end or count.
func NewWindow(begin uint64, end, count *uint64) (Window, error) {
	switch {
	case end != nil && count != nil:
		return Window{}, fmt.Errorf("%w: must specify either end or count, not both", core.ErrConfigInvalid)
	case end != nil:
		if *end < begin {
			return Window{}, fmt.Errorf("%w: end %d is before begin %d", core.ErrConfigInvalid, *end, begin)
		}
		return Window{Begin: begin, End: *end}, nil
	case count != nil:
		if *count > math.MaxUint64-begin {
			return Window{}, fmt.Errorf("%w: begin %d plus count %d overflows", core.ErrConfigInvalid, begin, *count)
		}
		return Window{Begin: begin, End: begin + *count}, nil
	default:
		return Window{}, fmt.Errorf("%w: selecting output packets requires end or count", core.ErrConfigInvalid)
	}
}

// Selects reports whether a packet carrying r should be copied.
// Packets without sequence information are never selected.
func (w Window) Selects(r core.SequenceRange) bool {
	return r.Overlaps(w.Begin, w.End)
}

func (w Window) String() string {
	return fmt.Sprintf("[%d, %d)", w.Begin, w.End)
}
