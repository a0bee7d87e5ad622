// Package decoder implements L2-L4 protocol stack decoding.
package decoder

import (
	"errors"
	"fmt"

	"firestige.xyz/seqgap/internal/core"
)

// Decoder decodes raw packets into UDP datagrams.
// Packets that do not carry a UDP datagram over IPv4 are reported through
// the error, which wraps one of the core classification sentinels. On
// transport-layer failures the returned Datagram still holds the addresses,
// and for cooked captures it carries the link packet type whenever the
// frame header was read.
type Decoder interface {
	Decode(raw core.RawPacket) (core.Datagram, error)
}

// StandardDecoder walks link -> IPv4 -> UDP over zero-copy views.
type StandardDecoder struct{}

// NewStandardDecoder creates a decoder.
func NewStandardDecoder() *StandardDecoder {
	return &StandardDecoder{}
}

// Decode implements Decoder.
func (d *StandardDecoder) Decode(raw core.RawPacket) (core.Datagram, error) {
	var (
		network    NetworkPacket
		packetType string
	)

	switch raw.LinkType {
	case core.LinkEthernet:
		frame, ok := NewEthernetFrame(raw.Data)
		if !ok {
			return core.Datagram{}, core.ErrNoFrame
		}
		network = frame.Network()
	case core.LinkCooked:
		frame, ok := NewCookedFrame(raw.Data)
		if !ok {
			return core.Datagram{}, core.ErrNoFrame
		}
		network = frame.Network()
		packetType = frame.PacketType().String()
	default:
		return core.Datagram{}, core.ErrUnsupportedLink
	}

	if network.Kind != NetworkIPv4 {
		return core.Datagram{LinkPacketType: packetType}, fmt.Errorf("%w: %s", core.ErrNotIPv4, network.Kind)
	}
	ip := network.IPv4

	// Past the IPv4 header the addresses are known even when the datagram
	// is rejected, so callers can attribute the failure.
	addrs := core.Datagram{SrcIP: ip.Source(), DstIP: ip.Destination(), LinkPacketType: packetType}

	transport := ip.Transport()
	switch transport.Kind {
	case TransportUDP:
	case TransportError:
		return addrs, transport.Err
	default:
		return addrs, fmt.Errorf("%w: %s", core.ErrNotUDP, transport.Kind)
	}

	udp := transport.UDP
	return core.Datagram{
		SrcIP:    ip.Source(),
		DstIP:    ip.Destination(),
		SrcPort:  udp.SourcePort(),
		DstPort:  udp.DestinationPort(),
		Checksum: udp.Checksum(),
		Payload:  udp.Payload(),

		LinkPacketType: packetType,
	}, nil
}

// Classify maps a Decode error to its packet class label.
// A nil error is ClassSequenced; callers refine it once the payload is read.
func Classify(err error) string {
	switch {
	case err == nil:
		return core.ClassSequenced
	case errors.Is(err, core.ErrNoFrame):
		return core.ClassNoFrame
	case errors.Is(err, core.ErrUnsupportedLink):
		return core.ClassUnsupportedLink
	case errors.Is(err, core.ErrNotIPv4):
		return core.ClassNotIPv4
	case errors.Is(err, core.ErrNotUDP):
		return core.ClassNotUDP
	case errors.Is(err, core.ErrMalformedUDP):
		return core.ClassMalformedUDP
	case errors.Is(err, core.ErrShortPayload):
		return core.ClassShortPayload
	default:
		return core.ClassNotIPv4
	}
}
