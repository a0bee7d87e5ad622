// Package core defines core types with zero external dependencies.
package core

import (
	"fmt"
	"strconv"
)

// SequenceRange is a contiguous block of Count sequence numbers starting at Begin.
// {0,0} is the sentinel for "no sequence information" and never denotes position 0.
type SequenceRange struct {
	Begin uint64 `json:"begin" yaml:"begin"`
	Count uint64 `json:"count" yaml:"count"`
}

// End returns the first sequence number past the range.
func (r SequenceRange) End() uint64 {
	return r.Begin + r.Count
}

// IsSentinel reports whether r is the canonical "could not determine" value.
func (r SequenceRange) IsSentinel() bool {
	return r.Begin == 0 && r.Count == 0
}

// Overlaps reports whether r shares at least one sequence number with [begin, end).
func (r SequenceRange) Overlaps(begin, end uint64) bool {
	if r.Count == 0 || end <= begin {
		return false
	}
	return r.Begin < end && begin < r.End()
}

func (r SequenceRange) String() string {
	return strconv.FormatUint(r.Begin, 10) + "->" + strconv.FormatUint(r.Count, 10)
}

// MacAddr is a raw 6-byte hardware address.
type MacAddr [6]byte

func (m MacAddr) String() string {
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", m[0], m[1], m[2], m[3], m[4], m[5])
}

// IPv4Addr is a raw 4-byte IPv4 address. Comparable, so usable as a map key.
type IPv4Addr [4]byte

func (a IPv4Addr) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", a[0], a[1], a[2], a[3])
}

// StreamKey identifies one feed stream by its destination endpoint.
type StreamKey struct {
	Addr IPv4Addr
	Port uint16
}

func (k StreamKey) String() string {
	return k.Addr.String() + ":" + strconv.Itoa(int(k.Port))
}

// Less orders keys by address bytes, then port.
func (k StreamKey) Less(o StreamKey) bool {
	for i := range k.Addr {
		if k.Addr[i] != o.Addr[i] {
			return k.Addr[i] < o.Addr[i]
		}
	}
	return k.Port < o.Port
}
