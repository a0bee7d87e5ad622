// Package decoder implements protocol decoding.
package decoder

import (
	"encoding/binary"

	"firestige.xyz/seqgap/internal/core"
)

const (
	ipv4HeaderMinLen = 20

	// IP protocol numbers
	protocolICMP = 1
	protocolIGMP = 2
	protocolTCP  = 6
	protocolUDP  = 17
)

// IPv4Packet is a zero-copy view over an IPv4 packet.
// Options are tolerated but not interpreted.
type IPv4Packet struct {
	data      []byte
	headerLen int
}

// NewIPv4Packet wraps data as an IPv4 packet. Returns false when the version
// nibble is not 4 or fewer bytes are available than the declared header length.
func NewIPv4Packet(data []byte) (IPv4Packet, bool) {
	if len(data) < 1 || data[0]>>4 != 4 {
		return IPv4Packet{}, false
	}

	// IHL is in 32-bit words
	headerLen := int(data[0]&0x0F) * 4
	if headerLen < ipv4HeaderMinLen || len(data) < headerLen {
		return IPv4Packet{}, false
	}
	return IPv4Packet{data: data, headerLen: headerLen}, true
}

// HeaderLen returns the declared header length in bytes.
func (p IPv4Packet) HeaderLen() int { return p.headerLen }

// TotalLength returns the total length field. Informational only.
func (p IPv4Packet) TotalLength() uint16 {
	return binary.BigEndian.Uint16(p.data[2:4])
}

// Protocol returns the protocol byte (offset 9).
func (p IPv4Packet) Protocol() uint8 {
	return p.data[9]
}

// Source returns the source address (bytes 12-16).
func (p IPv4Packet) Source() core.IPv4Addr {
	return core.IPv4Addr(p.data[12:16])
}

// Destination returns the destination address (bytes 16-20).
func (p IPv4Packet) Destination() core.IPv4Addr {
	return core.IPv4Addr(p.data[16:20])
}

// Payload returns the bytes following the header.
func (p IPv4Packet) Payload() []byte {
	return p.data[p.headerLen:]
}

// Transport classifies the enclosed transport-layer packet.
func (p IPv4Packet) Transport() TransportPacket {
	switch p.Protocol() {
	case protocolUDP:
		udp, err := NewUDPDatagram(p.Payload())
		if err != nil {
			return TransportPacket{Kind: TransportError, Err: err}
		}
		return TransportPacket{Kind: TransportUDP, UDP: udp}
	case protocolICMP:
		return TransportPacket{Kind: TransportICMP}
	case protocolIGMP:
		return TransportPacket{Kind: TransportIGMP}
	case protocolTCP:
		return TransportPacket{Kind: TransportTCP}
	default:
		return TransportPacket{Kind: TransportOther}
	}
}
