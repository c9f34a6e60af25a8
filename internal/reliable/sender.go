package reliable

import (
	"errors"

	"github.com/ethanjli/phyllo-go/internal/metrics"
	"github.com/ethanjli/phyllo-go/internal/phyllo"
)

// SenderWindowSize is the maximum number of unacknowledged buffers in
// flight at once.
const SenderWindowSize = 8

// SendQueueSize is the fixed capacity of the sender's pending queue.
const SendQueueSize = 8

// SequenceNumberSpace is the modular sequence number space (mod 256).
const SequenceNumberSpace = 256

// RetransmitTimeoutMS is the per-segment retransmit threshold: how long the
// sender waits for a cumulative ACK before resending the in-flight window.
// Chosen as 5x the receiver's piggyback timeout, giving the peer's ACK a
// margin to arrive before the sender assumes loss.
const RetransmitTimeoutMS = 20

// MaxRetries bounds how many times the sender retransmits the in-flight
// window before giving up and resetting the link.
const MaxRetries = 5

// ErrQueueFull is returned by Enqueue when the send queue is saturated.
var ErrQueueFull = errors.New("reliable: send queue full")

// ErrLinkReset is returned by Enqueue after the link has reset due to
// exhausting the retry budget; the caller must re-synchronize (SYN) first.
var ErrLinkReset = errors.New("reliable: link reset, re-synchronize first")

type pendingEntry struct {
	buf      Buffer
	sent     bool
	sentAtMS uint64
}

// Sender implements the GBN sender half of L5: a bounded queue of
// unacknowledged buffers, retransmitted whole-window on timeout or NAK, and
// reset on the first timeout after MaxRetries consecutive timeout
// retransmissions.
type Sender struct {
	send     func([]byte) error
	queue    []pendingEntry
	sendBase uint8
	nextSeq  uint8
	retries  int
	reset    bool
}

// NewSender constructs a Sender. send forwards a Reliable Buffer's wire
// bytes to L4 (the Validated Datagram link).
func NewSender(send func([]byte) error) *Sender {
	return &Sender{
		send:  send,
		queue: make([]pendingEntry, 0, SendQueueSize),
	}
}

// Enqueue assigns the next sequence number to payload, queues it, and (since
// the queue's capacity equals the sender window size) sends it immediately.
// Update's job is solely to detect and react to the front entry's ACK
// timeout.
func (s *Sender) Enqueue(payload []byte, typ phyllo.TypeCode, nowMS uint64, prepare func(*Header)) error {
	if s.reset {
		return ErrLinkReset
	}
	if len(s.queue) >= SendQueueSize {
		return ErrQueueFull
	}
	var entry pendingEntry
	if err := entry.buf.Write(payload, typ); err != nil {
		return err
	}
	entry.buf.Header.Seq = s.nextSeq
	if prepare != nil {
		prepare(&entry.buf.Header)
	}
	entry.buf.writeHeader()
	s.nextSeq++
	if err := s.send(entry.buf.WireBytes()); err != nil {
		return err
	}
	entry.sent = true
	entry.sentAtMS = nowMS
	s.queue = append(s.queue, entry)
	return nil
}

// Update drives retransmission: if the front (oldest unacknowledged) entry
// has timed out waiting for a cumulative ACK, the whole in-flight window is
// resent, up to MaxRetries before the link resets.
func (s *Sender) Update(nowMS uint64) error {
	if s.reset || len(s.queue) == 0 {
		return nil
	}
	front := &s.queue[0]
	if !front.sent {
		if err := s.send(front.buf.WireBytes()); err != nil {
			return err
		}
		front.sent = true
		front.sentAtMS = nowMS
		return nil
	}
	if nowMS-front.sentAtMS < RetransmitTimeoutMS {
		return nil
	}
	s.retries++
	if s.retries > MaxRetries {
		s.emitReset()
		return nil
	}
	metrics.IncARQRetransmit()
	return s.retransmitWindow(nowMS)
}

// HandleAck processes a peer's piggybacked (or standalone) ACK/NAK. A
// cumulative ACK with ackNum = A drops all queued entries with seq < A
// under modular comparison. A NAK retransmits the whole in-flight window.
func (s *Sender) HandleAck(ackNum uint8, ack, nak bool) {
	if !ack {
		return
	}
	for len(s.queue) > 0 && seqBefore(s.queue[0].buf.Header.Seq, ackNum) {
		s.queue = s.queue[1:]
		s.retries = 0
	}
	s.sendBase = ackNum
	if nak && len(s.queue) > 0 {
		metrics.IncARQRetransmit()
		_ = s.retransmitWindow(0)
	}
}

func (s *Sender) retransmitWindow(nowMS uint64) error {
	for i := range s.queue {
		if err := s.send(s.queue[i].buf.WireBytes()); err != nil {
			return err
		}
		s.queue[i].sent = true
		s.queue[i].sentAtMS = nowMS
	}
	return nil
}

// emitReset clears all sender state and emits a standalone RST buffer.
func (s *Sender) emitReset() {
	metrics.IncARQReset()
	var rst Buffer
	rst.Header.Flags = FlagRST
	rst.Header.Type = phyllo.TypeControl
	rst.WriteEmpty()
	_ = s.send(rst.WireBytes())
	s.queue = s.queue[:0]
	s.sendBase = 0
	s.nextSeq = 0
	s.retries = 0
	s.reset = true
}

// Resync clears the reset flag, allowing Enqueue to resume after a RST.
func (s *Sender) Resync() {
	s.reset = false
	s.sendBase = 0
	s.nextSeq = 0
	s.retries = 0
	s.queue = s.queue[:0]
}

// seqBefore reports whether a precedes b in the modular sequence space,
// assuming the true distance between them is less than half the space
// (guaranteed by SenderWindowSize + receiver window <= SequenceNumberSpace).
func seqBefore(a, b uint8) bool {
	return int8(a-b) < 0
}
