// Package exchange maps exchange-specific UDP payload layouts to sequence ranges.
//
// The supported layouts form a closed set, so selection is an enum and
// extraction is a switch rather than a per-packet interface call.
package exchange

import (
	"fmt"
	"strings"

	"firestige.xyz/seqgap/internal/core"
)

// Exchange selects a payload layout.
type Exchange uint8

const (
	Unknown Exchange = iota
	CME              // CME MDP3: 4-byte sequence, one message per packet
	CBOE             // CBOE/CFE PITCH sequenced unit header
	ICE              // ICE iMpact message block header
)

var names = map[Exchange]string{
	CME:  "cme",
	CBOE: "cboe",
	ICE:  "ice",
}

func (e Exchange) String() string {
	if n, ok := names[e]; ok {
		return n
	}
	return "unknown"
}

// Parse resolves a case-insensitive exchange name.
func Parse(name string) (Exchange, error) {
	want := strings.ToLower(strings.TrimSpace(name))
	for e, n := range names {
		if n == want {
			return e, nil
		}
	}
	return Unknown, fmt.Errorf("%w: unknown exchange %q (must be cme, cboe or ice)", core.ErrConfigInvalid, name)
}

// Select resolves the exchange from one boolean selector per exchange.
// Exactly one must be set.
func Select(cme, cboe, ice bool) (Exchange, error) {
	switch {
	case cme && !cboe && !ice:
		return CME, nil
	case cboe && !cme && !ice:
		return CBOE, nil
	case ice && !cme && !cboe:
		return ICE, nil
	case !cme && !cboe && !ice:
		return Unknown, fmt.Errorf("%w: please specify one exchange: cme, cboe or ice", core.ErrConfigInvalid)
	default:
		return Unknown, fmt.Errorf("%w: exchanges are mutually exclusive, specify only one of cme, cboe or ice", core.ErrConfigInvalid)
	}
}

// MinPayloadLen is the shortest payload Extract may be given.
// CBOE handles short payloads itself and reports 0.
func (e Exchange) MinPayloadLen() int {
	switch e {
	case CME:
		return cmeHeaderLen
	case ICE:
		return iceHeaderLen
	default:
		return 0
	}
}

// Extract returns the sequence range carried by payload.
// Callers must check len(payload) >= MinPayloadLen() first.
func (e Exchange) Extract(payload []byte) core.SequenceRange {
	switch e {
	case CME:
		return ExtractCME(payload)
	case CBOE:
		return ExtractCBOE(payload)
	case ICE:
		return ExtractICE(payload)
	default:
		return core.SequenceRange{}
	}
}
