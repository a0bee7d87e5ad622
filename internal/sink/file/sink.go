// Package file writes selected packets to a pcap capture file.
package file

import (
	"bufio"
	"fmt"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"firestige.xyz/seqgap/internal/core"
	sourcefile "firestige.xyz/seqgap/internal/source/file"
)

const defaultSnaplen = 65536

// Sink re-emits packets unmodified, in the order they are written.
type Sink struct {
	path    string
	link    core.LinkType
	file    *os.File
	buf     *bufio.Writer
	writer  *pcapgo.Writer
	written uint64
}

// Create creates (or truncates) path and writes the pcap file header.
func Create(path string, linkType layers.LinkType, snaplen uint32) (*Sink, error) {
	if snaplen == 0 {
		snaplen = defaultSnaplen
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file %s: %w", path, err)
	}

	buf := bufio.NewWriter(f)
	w := pcapgo.NewWriterNanos(buf)
	if err := w.WriteFileHeader(snaplen, linkType); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write pcap header to %s: %w", path, err)
	}

	return &Sink{path: path, link: sourcefile.MapLinkType(linkType), file: f, buf: buf, writer: w}, nil
}

// LinkType returns the framing declared in the file header. Packets with
// another framing must not be written.
func (s *Sink) LinkType() core.LinkType {
	return s.link
}

// Write appends raw with its original capture metadata.
func (s *Sink) Write(raw core.RawPacket) error {
	ci := gopacket.CaptureInfo{
		Timestamp:      raw.Timestamp,
		CaptureLength:  len(raw.Data),
		Length:         int(raw.OrigLen),
		InterfaceIndex: raw.InterfaceIndex,
	}
	if ci.Length < ci.CaptureLength {
		ci.Length = ci.CaptureLength
	}
	if err := s.writer.WritePacket(ci, raw.Data); err != nil {
		return fmt.Errorf("failed to write packet %d to %s: %w", raw.Index, s.path, err)
	}
	s.written++
	return nil
}

// Written returns the number of packets written.
func (s *Sink) Written() uint64 {
	return s.written
}

// Close flushes buffered packets and closes the file.
func (s *Sink) Close() error {
	if s.file == nil {
		return nil
	}
	flushErr := s.buf.Flush()
	closeErr := s.file.Close()
	s.file = nil
	if flushErr != nil {
		return fmt.Errorf("failed to flush %s: %w", s.path, flushErr)
	}
	return closeErr
}
