package decoder

import (
	"errors"
	"testing"

	"firestige.xyz/seqgap/internal/core"
)

func TestIPv4PacketBasic(t *testing.T) {
	// Minimal IPv4 header (20 bytes)
	data := []byte{
		0x45,                   // Version 4, IHL 5
		0x00,                   // DSCP, ECN
		0x00, 0x1C,             // Total Length: 28 bytes
		0x12, 0x34,             // Identification
		0x00, 0x00,             // Flags, Fragment Offset
		0x40,                   // TTL: 64
		0x06,                   // Protocol: TCP (6)
		0x00, 0x00,             // Checksum
		192, 168, 1, 1,         // Src IP
		192, 168, 1, 2,         // Dst IP
		0x01, 0x02, 0x03, 0x04, // Payload
	}

	ip, ok := NewIPv4Packet(data)
	if !ok {
		t.Fatal("NewIPv4Packet failed")
	}

	if ip.HeaderLen() != 20 {
		t.Errorf("Expected header length 20, got %d", ip.HeaderLen())
	}
	if ip.Protocol() != 6 {
		t.Errorf("Expected protocol 6, got %d", ip.Protocol())
	}
	if ip.TotalLength() != 28 {
		t.Errorf("Expected TotalLength 28, got %d", ip.TotalLength())
	}
	if ip.Source() != (core.IPv4Addr{192, 168, 1, 1}) {
		t.Errorf("Expected Source 192.168.1.1, got %s", ip.Source())
	}
	if ip.Destination() != (core.IPv4Addr{192, 168, 1, 2}) {
		t.Errorf("Expected Destination 192.168.1.2, got %s", ip.Destination())
	}
	if len(ip.Payload()) != 4 {
		t.Errorf("Expected payload length 4, got %d", len(ip.Payload()))
	}
	if ip.Transport().Kind != TransportTCP {
		t.Errorf("Expected TransportTCP, got %s", ip.Transport().Kind)
	}
}

func TestIPv4PacketWithOptions(t *testing.T) {
	// IHL 6: one 4-byte option word, skipped without interpretation
	data := buildIPv4UDP([4]byte{10, 0, 0, 1}, [4]byte{239, 0, 0, 1}, 1, 2, []byte{0xAB})
	withOpts := make([]byte, 0, len(data)+4)
	withOpts = append(withOpts, data[:20]...)
	withOpts = append(withOpts, 0x01, 0x01, 0x01, 0x00) // NOP NOP NOP EOL
	withOpts = append(withOpts, data[20:]...)
	withOpts[0] = 0x46

	ip, ok := NewIPv4Packet(withOpts)
	if !ok {
		t.Fatal("NewIPv4Packet failed")
	}
	if ip.HeaderLen() != 24 {
		t.Errorf("Expected header length 24, got %d", ip.HeaderLen())
	}
	transport := ip.Transport()
	if transport.Kind != TransportUDP {
		t.Fatalf("Expected TransportUDP, got %s (%v)", transport.Kind, transport.Err)
	}
	if got := transport.UDP.Payload(); len(got) != 1 || got[0] != 0xAB {
		t.Errorf("Unexpected payload %x", got)
	}
}

func TestIPv4PacketRejects(t *testing.T) {
	valid := buildIPv4UDP([4]byte{10, 0, 0, 1}, [4]byte{239, 0, 0, 1}, 1, 2, nil)

	tests := []struct {
		name string
		data func() []byte
	}{
		{"empty", func() []byte { return nil }},
		{"ipv6 version", func() []byte {
			d := append([]byte(nil), valid...)
			d[0] = 0x65
			return d
		}},
		{"ihl below minimum", func() []byte {
			d := append([]byte(nil), valid...)
			d[0] = 0x44
			return d
		}},
		{"ihl beyond data", func() []byte {
			d := append([]byte(nil), valid[:20]...)
			d[0] = 0x4F // 60-byte header declared
			return d
		}},
		{"truncated header", func() []byte { return valid[:19] }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := NewIPv4Packet(tt.data()); ok {
				t.Error("Expected no packet")
			}
		})
	}
}

func TestIPv4TransportKinds(t *testing.T) {
	tests := []struct {
		protocol byte
		want     TransportKind
	}{
		{1, TransportICMP},
		{2, TransportIGMP},
		{6, TransportTCP},
		{17, TransportUDP},
		{132, TransportOther},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			data := buildIPv4UDP([4]byte{10, 0, 0, 1}, [4]byte{239, 0, 0, 1}, 1, 2, []byte{1, 2, 3, 4})
			data[9] = tt.protocol
			ip, ok := NewIPv4Packet(data)
			if !ok {
				t.Fatal("NewIPv4Packet failed")
			}
			if got := ip.Transport().Kind; got != tt.want {
				t.Errorf("Transport().Kind = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestIPv4TransportErrorOnBadUDP(t *testing.T) {
	data := buildIPv4UDP([4]byte{10, 0, 0, 1}, [4]byte{239, 0, 0, 1}, 1, 2, []byte{1, 2, 3, 4})
	// Declare a UDP length beyond the captured bytes
	data[24], data[25] = 0x01, 0x00

	ip, ok := NewIPv4Packet(data)
	if !ok {
		t.Fatal("NewIPv4Packet failed")
	}
	transport := ip.Transport()
	if transport.Kind != TransportError {
		t.Fatalf("Expected TransportError, got %s", transport.Kind)
	}
	if !errors.Is(transport.Err, core.ErrMalformedUDP) {
		t.Errorf("Expected ErrMalformedUDP, got %v", transport.Err)
	}
}
