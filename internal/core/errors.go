// Package core defines sentinel errors.
package core

import "errors"

// Sentinel errors. Callers wrap them with context and test with errors.Is.
var (
	// Link layer
	ErrNoFrame         = errors.New("seqgap: frame shorter than link header")
	ErrUnsupportedLink = errors.New("seqgap: unsupported link type")

	// Network / transport layer classification
	ErrNotIPv4      = errors.New("seqgap: not an IPv4 packet")
	ErrNotUDP       = errors.New("seqgap: not a UDP datagram")
	ErrMalformedUDP = errors.New("seqgap: malformed UDP datagram")

	// Exchange payload
	ErrShortPayload = errors.New("seqgap: payload shorter than exchange header")

	// Configuration errors
	ErrConfigInvalid = errors.New("seqgap: invalid configuration")

	// Reporter errors
	ErrReporterNotFound   = errors.New("seqgap: reporter not found")
	ErrReporterInitFailed = errors.New("seqgap: reporter init failed")
)
