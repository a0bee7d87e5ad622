// Package core defines core types.
package core

// Labels represents key-value metadata attached to a report line.
type Labels map[string]string

// Packet classes. Every packet read from a capture lands in exactly one class;
// the values double as the `class` label of the packet counter.
const (
	ClassSequenced       = "sequenced"        // UDP datagram with sequence information
	ClassSentinel        = "sentinel"         // UDP datagram without sequence information
	ClassNoFrame         = "no_frame"         // shorter than the link header
	ClassUnsupportedLink = "unsupported_link" // capture link type not decoded
	ClassNotIPv4         = "not_ipv4"         // ARP, IPv6, unknown ethertype, bad IPv4 header
	ClassNotUDP          = "not_udp"          // ICMP, IGMP, TCP, other IP protocols
	ClassMalformedUDP    = "malformed_udp"    // protocol 17 with an inconsistent datagram
	ClassShortPayload    = "short_payload"    // UDP payload too short for the exchange layout
)

// Report label keys.
const (
	LabelStream   = "stream"
	LabelOutcome  = "outcome"
	LabelExchange = "exchange"
)
