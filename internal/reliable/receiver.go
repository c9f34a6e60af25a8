package reliable

import (
	"github.com/ethanjli/phyllo-go/internal/metrics"
	"github.com/ethanjli/phyllo-go/internal/phyllo"
)

// PiggybackTimeoutMS is how long the receiver waits for an outgoing
// datagram to piggyback an ACK/NAK before emitting a standalone one.
const PiggybackTimeoutMS = 4

// Receiver implements the GBN receiver half of L5: cumulative single-slot
// window (next_expected), one-shot pending-NAK, and a piggyback timer.
type Receiver struct {
	send         func([]byte) error
	nextExpected uint8
	pendingNAK   bool
	sentNAK      bool
	armed        bool
	armedAtMS    uint64
}

// NewReceiver constructs a Receiver. send forwards a standalone control
// Reliable Buffer's wire bytes to L4 when the piggyback timer expires.
func NewReceiver(send func([]byte) error) *Receiver {
	return &Receiver{send: send}
}

// Receive processes an incoming Buffer. It reports whether the payload
// should be delivered upward, and arms the piggyback timer regardless.
func (r *Receiver) Receive(buf *Buffer, nowMS uint64) bool {
	delivered := false
	switch {
	case buf.Header.Flags.Has(FlagNOS):
		delivered = true
	case buf.Header.Seq == r.nextExpected:
		r.nextExpected++
		r.pendingNAK = false
		r.sentNAK = false
		delivered = true
	default:
		metrics.IncARQDuplicate()
		r.pendingNAK = true
	}
	r.armed = true
	r.armedAtMS = nowMS
	return delivered
}

// Prepare populates hdr's Ack/Flags fields for piggybacking on an outgoing
// buffer, and disarms the piggyback timer (the caller is about to send).
func (r *Receiver) Prepare(hdr *Header) {
	hdr.Ack = r.nextExpected
	hdr.Flags = hdr.Flags.With(FlagACK)
	if r.pendingNAK && !r.sentNAK {
		hdr.Flags = hdr.Flags.With(FlagNAK)
		r.sentNAK = true
	} else {
		hdr.Flags = hdr.Flags.Without(FlagNAK)
	}
	r.armed = false
}

// Update checks the piggyback timer and, if expired without an upper-layer
// send having disarmed it, emits a standalone control Buffer carrying the
// pending ACK/NAK.
func (r *Receiver) Update(nowMS uint64) error {
	if !r.armed || nowMS-r.armedAtMS < PiggybackTimeoutMS {
		return nil
	}
	var standalone Buffer
	standalone.Header.Flags = FlagNOS
	standalone.Header.Type = phyllo.TypeControl
	r.Prepare(&standalone.Header)
	standalone.WriteEmpty()
	r.armed = false
	return r.send(standalone.WireBytes())
}

// Reset clears all receiver state, matching the peer-visible effect of an
// RST.
func (r *Receiver) Reset() {
	r.nextExpected = 0
	r.pendingNAK = false
	r.sentNAK = false
	r.armed = false
}

