// Package decoder implements protocol decoding.
package decoder

import (
	"encoding/binary"

	"firestige.xyz/seqgap/internal/core"
)

const (
	// Link header sizes
	ethernetHeaderLen = 14
	cookedHeaderLen   = 16

	// EtherType values
	etherTypeIPv4 = 0x0800
	etherTypeARP  = 0x0806
	etherTypeIPv6 = 0x86DD

	// Linux cooked capture packet type for multicast
	cookedMulticast = 2
)

// EthernetFrame is a zero-copy view over an Ethernet II frame.
type EthernetFrame struct {
	data []byte
}

// NewEthernetFrame wraps data as an Ethernet frame.
// Returns false when data is shorter than the 14-byte header.
func NewEthernetFrame(data []byte) (EthernetFrame, bool) {
	if len(data) < ethernetHeaderLen {
		return EthernetFrame{}, false
	}
	return EthernetFrame{data: data}, true
}

// HeaderLen returns the fixed header size.
func (f EthernetFrame) HeaderLen() int { return ethernetHeaderLen }

// Destination returns the destination MAC address (bytes 0-6).
func (f EthernetFrame) Destination() core.MacAddr {
	return core.MacAddr(f.data[0:6])
}

// Source returns the source MAC address (bytes 6-12).
func (f EthernetFrame) Source() core.MacAddr {
	return core.MacAddr(f.data[6:12])
}

// Protocol returns the EtherType.
func (f EthernetFrame) Protocol() uint16 {
	return binary.BigEndian.Uint16(f.data[12:14])
}

// Payload returns the bytes following the header.
func (f EthernetFrame) Payload() []byte {
	return f.data[ethernetHeaderLen:]
}

// Network classifies the enclosed network-layer packet.
func (f EthernetFrame) Network() NetworkPacket {
	return classifyNetwork(f.Protocol(), f.Payload())
}

// PacketType classifies a cooked capture frame. Diagnostic only.
type PacketType uint8

const (
	PacketTypeUnknown PacketType = iota
	PacketTypeMulticast
)

func (t PacketType) String() string {
	if t == PacketTypeMulticast {
		return "multicast"
	}
	return "unknown"
}

// CookedFrame is a zero-copy view over a Linux cooked capture (SLL) header.
type CookedFrame struct {
	data []byte
}

// NewCookedFrame wraps data as a cooked capture frame.
// Returns false when data is shorter than the 16-byte header.
func NewCookedFrame(data []byte) (CookedFrame, bool) {
	if len(data) < cookedHeaderLen {
		return CookedFrame{}, false
	}
	return CookedFrame{data: data}, true
}

// HeaderLen returns the fixed header size.
func (f CookedFrame) HeaderLen() int { return cookedHeaderLen }

// PacketType returns the classification of the packet-type field (bytes 0-2).
func (f CookedFrame) PacketType() PacketType {
	if binary.BigEndian.Uint16(f.data[0:2]) == cookedMulticast {
		return PacketTypeMulticast
	}
	return PacketTypeUnknown
}

// Source returns the link-layer source address (bytes 6-12).
func (f CookedFrame) Source() core.MacAddr {
	return core.MacAddr(f.data[6:12])
}

// Protocol returns the protocol field (bytes 14-16), an EtherType.
func (f CookedFrame) Protocol() uint16 {
	return binary.BigEndian.Uint16(f.data[14:16])
}

// Payload returns the bytes following the header.
func (f CookedFrame) Payload() []byte {
	return f.data[cookedHeaderLen:]
}

// Network classifies the enclosed network-layer packet.
func (f CookedFrame) Network() NetworkPacket {
	return classifyNetwork(f.Protocol(), f.Payload())
}

// NetworkKind tags the network-layer variant.
type NetworkKind uint8

const (
	NetworkUnknown NetworkKind = iota
	NetworkIPv4
	NetworkARP
	NetworkIPv6
)

func (k NetworkKind) String() string {
	switch k {
	case NetworkIPv4:
		return "ipv4"
	case NetworkARP:
		return "arp"
	case NetworkIPv6:
		return "ipv6"
	default:
		return "unknown"
	}
}

// NetworkPacket is the network-layer variant. Only IPv4 carries structure.
type NetworkPacket struct {
	Kind NetworkKind
	IPv4 IPv4Packet
}

// classifyNetwork applies the EtherType table shared by both link forms.
// An IPv4 EtherType whose header does not parse is Unknown, not an error.
func classifyNetwork(etherType uint16, payload []byte) NetworkPacket {
	switch etherType {
	case etherTypeIPv4:
		if ip, ok := NewIPv4Packet(payload); ok {
			return NetworkPacket{Kind: NetworkIPv4, IPv4: ip}
		}
		return NetworkPacket{Kind: NetworkUnknown}
	case etherTypeARP:
		return NetworkPacket{Kind: NetworkARP}
	case etherTypeIPv6:
		return NetworkPacket{Kind: NetworkIPv6}
	default:
		return NetworkPacket{Kind: NetworkUnknown}
	}
}
