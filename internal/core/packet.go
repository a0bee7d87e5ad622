// Package core defines core data structures with zero external dependencies.
package core

import "time"

// LinkType selects the link-layer framing of a capture. It comes from the
// capture file header, never from the packet bytes.
type LinkType uint8

const (
	LinkUnsupported LinkType = iota
	LinkEthernet
	LinkCooked // Linux "cooked" capture (SLL)
)

func (l LinkType) String() string {
	switch l {
	case LinkEthernet:
		return "ethernet"
	case LinkCooked:
		return "linux_sll"
	default:
		return "unsupported"
	}
}

// RawPacket is one captured packet as read from the capture source.
type RawPacket struct {
	Index          uint64    // 1-based position in the capture
	Data           []byte    // Raw frame bytes; every decoded view borrows from this slice
	LinkType       LinkType  // Framing declared by the capture
	Timestamp      time.Time // Capture timestamp
	CaptureLen     uint32    // Captured length
	OrigLen        uint32    // Original frame length on the wire
	InterfaceIndex int       // Capture interface (pcapng)
}

// Datagram is the result of L2-L4 decoding: a UDP datagram carried over IPv4.
type Datagram struct {
	SrcIP    IPv4Addr
	DstIP    IPv4Addr
	SrcPort  uint16
	DstPort  uint16
	Checksum uint16
	Payload  []byte // UDP payload, zero-copy slice of RawPacket.Data

	// LinkPacketType is the cooked capture packet type ("multicast" or
	// "unknown"); empty for Ethernet frames.
	LinkPacketType string
}

// Key returns the stream the datagram belongs to.
func (d Datagram) Key() StreamKey {
	return StreamKey{Addr: d.DstIP, Port: d.DstPort}
}
