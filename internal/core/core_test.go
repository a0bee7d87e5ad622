package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestSequenceRangeSentinel(t *testing.T) {
	tests := []struct {
		name string
		r    SequenceRange
		want bool
	}{
		{"zero value", SequenceRange{}, true},
		{"position zero with count", SequenceRange{Begin: 0, Count: 1}, false},
		{"count zero nonzero begin", SequenceRange{Begin: 9, Count: 0}, false},
		{"regular", SequenceRange{Begin: 5, Count: 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.IsSentinel(); got != tt.want {
				t.Errorf("IsSentinel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSequenceRangeOverlaps(t *testing.T) {
	tests := []struct {
		name       string
		r          SequenceRange
		begin, end uint64
		want       bool
	}{
		{"inside", SequenceRange{Begin: 12, Count: 2}, 10, 20, true},
		{"straddles begin", SequenceRange{Begin: 8, Count: 3}, 10, 20, true},
		{"straddles end", SequenceRange{Begin: 19, Count: 5}, 10, 20, true},
		{"ends at begin", SequenceRange{Begin: 8, Count: 2}, 10, 20, false},
		{"starts at end", SequenceRange{Begin: 20, Count: 1}, 10, 20, false},
		{"empty range", SequenceRange{Begin: 12, Count: 0}, 10, 20, false},
		{"empty window", SequenceRange{Begin: 12, Count: 1}, 10, 10, false},
		{"covers window", SequenceRange{Begin: 0, Count: 100}, 10, 20, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Overlaps(tt.begin, tt.end); got != tt.want {
				t.Errorf("Overlaps(%d, %d) = %v, want %v", tt.begin, tt.end, got, tt.want)
			}
		})
	}
}

func TestStringers(t *testing.T) {
	if got := (SequenceRange{Begin: 10, Count: 3}).String(); got != "10->3" {
		t.Errorf("SequenceRange.String() = %q", got)
	}
	if got := (IPv4Addr{224, 0, 31, 1}).String(); got != "224.0.31.1" {
		t.Errorf("IPv4Addr.String() = %q", got)
	}
	if got := (MacAddr{0x01, 0x00, 0x5e, 0x00, 0x1f, 0xab}).String(); got != "01:00:5e:00:1f:ab" {
		t.Errorf("MacAddr.String() = %q", got)
	}
	key := StreamKey{Addr: IPv4Addr{224, 0, 31, 1}, Port: 14310}
	if got := key.String(); got != "224.0.31.1:14310" {
		t.Errorf("StreamKey.String() = %q", got)
	}
	if got := LinkCooked.String(); got != "linux_sll" {
		t.Errorf("LinkType.String() = %q", got)
	}
}

func TestStreamKeyComparable(t *testing.T) {
	a := StreamKey{Addr: IPv4Addr{224, 0, 31, 1}, Port: 14310}
	b := StreamKey{Addr: IPv4Addr{224, 0, 31, 1}, Port: 14310}
	m := map[StreamKey]int{a: 1}
	m[b]++
	if m[a] != 2 {
		t.Errorf("expected equal keys to share a map slot, got %v", m)
	}
}

func TestStreamKeyLess(t *testing.T) {
	low := StreamKey{Addr: IPv4Addr{224, 0, 31, 1}, Port: 20000}
	high := StreamKey{Addr: IPv4Addr{224, 0, 31, 2}, Port: 1}
	if !low.Less(high) || high.Less(low) {
		t.Error("expected address to dominate ordering")
	}
	p1 := StreamKey{Addr: low.Addr, Port: 1}
	if !p1.Less(low) {
		t.Error("expected port to break ties")
	}
	if low.Less(low) {
		t.Error("key must not be less than itself")
	}
}

func TestDatagramKey(t *testing.T) {
	d := Datagram{
		SrcIP: IPv4Addr{10, 0, 0, 1}, DstIP: IPv4Addr{239, 1, 1, 1},
		SrcPort: 1000, DstPort: 2000,
	}
	want := StreamKey{Addr: IPv4Addr{239, 1, 1, 1}, Port: 2000}
	if d.Key() != want {
		t.Errorf("Key() = %v, want %v", d.Key(), want)
	}
}

func TestSentinelErrorsWrap(t *testing.T) {
	err := fmt.Errorf("packet 7: %w", ErrMalformedUDP)
	if !errors.Is(err, ErrMalformedUDP) {
		t.Error("wrapped error should match sentinel")
	}
	if errors.Is(err, ErrNotUDP) {
		t.Error("wrapped error should not match unrelated sentinel")
	}
}
