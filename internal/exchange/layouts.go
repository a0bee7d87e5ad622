package exchange

import (
	"encoding/binary"

	"firestige.xyz/seqgap/internal/core"
)

const (
	cmeHeaderLen  = 4
	cboeHeaderLen = 8
	iceHeaderLen  = 8
)

// ExtractCME reads a CME-style packet: sequence number in bytes 0-4,
// one message per packet.
func ExtractCME(payload []byte) core.SequenceRange {
	return core.SequenceRange{
		Begin: uint64(binary.BigEndian.Uint32(payload[0:4])),
		Count: 1,
	}
}

// ExtractCBOE reads a CBOE-style sequenced unit header: message count at
// byte 2, sequence number in bytes 4-8. Heartbeats carry sequence 0 and short
// payloads carry nothing; both yield the sentinel.
func ExtractCBOE(payload []byte) core.SequenceRange {
	if len(payload) < cboeHeaderLen {
		return core.SequenceRange{}
	}
	seq := binary.BigEndian.Uint32(payload[4:8])
	if seq == 0 {
		return core.SequenceRange{}
	}
	return core.SequenceRange{
		Begin: uint64(seq),
		Count: uint64(payload[2]),
	}
}

// ExtractICE reads an ICE-style block header: sequence number in bytes 2-6,
// message count in bytes 6-8.
func ExtractICE(payload []byte) core.SequenceRange {
	return core.SequenceRange{
		Begin: uint64(binary.BigEndian.Uint32(payload[2:6])),
		Count: uint64(binary.BigEndian.Uint16(payload[6:8])),
	}
}
