// Package reliable implements L5, the Reliable Buffer Link: a Go-Back-N
// ARQ state machine running over a validated datagram link.
package reliable

import "github.com/ethanjli/phyllo-go/internal/phyllo"

// Flags is the Reliable Buffer flags bitfield (bit 0 = LSB).
type Flags uint8

// Flag bits, in header order.
const (
	FlagFIN Flags = 1 << 0 // last reliable buffer from sender
	FlagSYN Flags = 1 << 1 // synchronize sequence numbers
	FlagNOS Flags = 1 << 2 // ignore the sequence number field
	FlagACK Flags = 1 << 3 // acknowledgement number field is significant
	FlagNAK Flags = 1 << 4 // request resend of all in-flight buffers; only examined if ACK set
	FlagSAK Flags = 1 << 5 // treat ack number as selective instead of cumulative
	FlagRST Flags = 1 << 6 // reset the connection
	FlagEXT Flags = 1 << 7 // extended header
)

// Has reports whether flag is set.
func (f Flags) Has(flag Flags) bool { return f&flag != 0 }

// With returns f with flag set.
func (f Flags) With(flag Flags) Flags { return f | flag }

// Without returns f with flag cleared.
func (f Flags) Without(flag Flags) Flags { return f &^ flag }

// HeaderSize is the wire size of a Reliable Buffer header:
// [seq, ack, flags, type].
const HeaderSize = 4

// Header is the L5 fixed header.
type Header struct {
	Seq   uint8
	Ack   uint8
	Flags Flags
	Type  phyllo.TypeCode
}
