// Package decoder implements protocol decoding.
package decoder

import (
	"encoding/binary"
	"fmt"

	"firestige.xyz/seqgap/internal/core"
)

const udpHeaderLen = 8

// TransportKind tags the transport-layer variant.
type TransportKind uint8

const (
	TransportOther TransportKind = iota
	TransportUDP
	TransportICMP
	TransportIGMP
	TransportTCP
	TransportError // protocol 17 declared but the datagram is inconsistent
)

func (k TransportKind) String() string {
	switch k {
	case TransportUDP:
		return "udp"
	case TransportICMP:
		return "icmp"
	case TransportIGMP:
		return "igmp"
	case TransportTCP:
		return "tcp"
	case TransportError:
		return "error"
	default:
		return "other"
	}
}

// TransportPacket is the transport-layer variant. Only UDP carries structure;
// Err holds the reason when Kind is TransportError.
type TransportPacket struct {
	Kind TransportKind
	UDP  UDPDatagram
	Err  error
}

// UDPDatagram is a zero-copy view over a UDP datagram.
type UDPDatagram struct {
	data []byte // header plus payload, trimmed to the length field
}

// NewUDPDatagram wraps data as a UDP datagram. The length field includes the
// 8-byte header; bytes past it (link padding) are excluded from the payload.
// Errors wrap core.ErrMalformedUDP.
func NewUDPDatagram(data []byte) (UDPDatagram, error) {
	if len(data) < udpHeaderLen {
		return UDPDatagram{}, fmt.Errorf("%w: %d bytes, need %d for header",
			core.ErrMalformedUDP, len(data), udpHeaderLen)
	}

	length := int(binary.BigEndian.Uint16(data[4:6]))
	if length < udpHeaderLen {
		return UDPDatagram{}, fmt.Errorf("%w: length field %d smaller than header",
			core.ErrMalformedUDP, length)
	}
	if length > len(data) {
		return UDPDatagram{}, fmt.Errorf("%w: length field %d exceeds %d captured bytes",
			core.ErrMalformedUDP, length, len(data))
	}
	return UDPDatagram{data: data[:length]}, nil
}

// SourcePort returns bytes 0-2.
func (u UDPDatagram) SourcePort() uint16 {
	return binary.BigEndian.Uint16(u.data[0:2])
}

// DestinationPort returns bytes 2-4.
func (u UDPDatagram) DestinationPort() uint16 {
	return binary.BigEndian.Uint16(u.data[2:4])
}

// Length returns the length field, header included.
func (u UDPDatagram) Length() uint16 {
	return binary.BigEndian.Uint16(u.data[4:6])
}

// Checksum returns bytes 6-8. Not verified.
func (u UDPDatagram) Checksum() uint16 {
	return binary.BigEndian.Uint16(u.data[6:8])
}

// Payload returns the application bytes.
func (u UDPDatagram) Payload() []byte {
	return u.data[udpHeaderLen:]
}
