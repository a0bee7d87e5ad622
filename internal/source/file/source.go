// Package file reads packets from pcap and pcapng capture files.
package file

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"firestige.xyz/seqgap/internal/core"
)

// pcapng section header block type
var ngMagic = []byte{0x0A, 0x0D, 0x0D, 0x0A}

// packetReader is the subset of pcapgo.Reader and pcapgo.NgReader in use.
type packetReader interface {
	ReadPacketData() ([]byte, gopacket.CaptureInfo, error)
	LinkType() layers.LinkType
}

// Source reads packets in file order.
type Source struct {
	path   string
	file   *os.File
	reader packetReader
	ng     *pcapgo.NgReader // set for pcapng files
	format string
	index  uint64
}

// Open opens a capture file, detecting pcap or pcapng from its magic.
func Open(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture file %s: %w", path, err)
	}

	s, err := newSource(path, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	s.file = f
	return s, nil
}

func newSource(path string, r io.Reader) (*Source, error) {
	br := bufio.NewReaderSize(r, 1<<16)
	magic, err := br.Peek(4)
	if err != nil {
		return nil, fmt.Errorf("failed to read capture header %s: %w", path, err)
	}

	s := &Source{path: path}
	if bytes.Equal(magic, ngMagic) {
		ng, err := pcapgo.NewNgReader(br, pcapgo.DefaultNgReaderOptions)
		if err != nil {
			return nil, fmt.Errorf("failed to parse pcapng file %s: %w", path, err)
		}
		s.reader, s.ng, s.format = ng, ng, "pcapng"
		return s, nil
	}

	pr, err := pcapgo.NewReader(br)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pcap file %s: %w", path, err)
	}
	s.reader, s.format = pr, "pcap"
	return s, nil
}

// ReadPacket returns the next packet, or io.EOF at the end of the file.
func (s *Source) ReadPacket() (core.RawPacket, error) {
	data, ci, err := s.reader.ReadPacketData()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return core.RawPacket{}, io.EOF
		}
		return core.RawPacket{}, fmt.Errorf("failed to read packet %d: %w", s.index+1, err)
	}
	s.index++

	return core.RawPacket{
		Index:          s.index,
		Data:           data,
		LinkType:       MapLinkType(s.interfaceLinkType(ci.InterfaceIndex)),
		Timestamp:      ci.Timestamp,
		CaptureLen:     uint32(ci.CaptureLength),
		OrigLen:        uint32(ci.Length),
		InterfaceIndex: ci.InterfaceIndex,
	}, nil
}

// interfaceLinkType resolves the link type per pcapng interface; pcap files
// have a single link type in the file header.
func (s *Source) interfaceLinkType(index int) layers.LinkType {
	if s.ng != nil {
		if iface, err := s.ng.Interface(index); err == nil {
			return iface.LinkType
		}
	}
	return s.reader.LinkType()
}

// LinkType returns the capture's (first interface's) link type.
func (s *Source) LinkType() layers.LinkType {
	return s.reader.LinkType()
}

// Format returns "pcap" or "pcapng".
func (s *Source) Format() string {
	return s.format
}

// Path returns the file path.
func (s *Source) Path() string {
	return s.path
}

// Close releases the file.
func (s *Source) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// MapLinkType maps a capture link type to the framing the decoder understands.
func MapLinkType(lt layers.LinkType) core.LinkType {
	switch lt {
	case layers.LinkTypeEthernet:
		return core.LinkEthernet
	case layers.LinkTypeLinuxSLL:
		return core.LinkCooked
	default:
		return core.LinkUnsupported
	}
}
