package reliable

import (
	"github.com/ethanjli/phyllo-go/internal/phyllo"
)

// Link composes the GBN Sender and Receiver into the L5 Reliable Buffer
// Link: reliable, in-order delivery of discrete payloads over an
// unreliable-but-validated (L4) datagram link.
type Link struct {
	sender   *Sender
	receiver *Receiver
}

// NewLink constructs a Link. send forwards a Reliable Buffer's wire bytes
// to L4 (the Validated Datagram link's Send, pre-bound to
// phyllo.TypeBuffer by the caller, since L4 accepts no other type code
// for it).
func NewLink(send func([]byte) error) *Link {
	return &Link{
		sender:   NewSender(send),
		receiver: NewReceiver(send),
	}
}

// Update drives both the sender's retransmit timer and the receiver's
// piggyback timer.
func (l *Link) Update(nowMS uint64) error {
	if err := l.sender.Update(nowMS); err != nil {
		return err
	}
	return l.receiver.Update(nowMS)
}

// Enqueue queues payload for reliable transmission, piggybacking the
// receiver's current ACK/NAK state onto it before it is sent.
func (l *Link) Enqueue(payload []byte, typ phyllo.TypeCode, nowMS uint64) error {
	return l.sender.Enqueue(payload, typ, nowMS, l.receiver.Prepare)
}

// Receive parses wire bytes from L4 into a Buffer, updates sender state
// from any piggybacked ACK/NAK, and hands the Buffer to the receiver's GBN
// logic. It returns the delivered payload, its type code, and true if the
// upper layer should see it.
func (l *Link) Receive(wire []byte, nowMS uint64) ([]byte, phyllo.TypeCode, bool, error) {
	var buf Buffer
	if err := buf.Read(wire); err != nil {
		return nil, 0, false, err
	}
	if buf.Header.Flags.Has(FlagRST) {
		l.sender.Resync()
		l.receiver.Reset()
		return nil, 0, false, nil
	}
	l.sender.HandleAck(buf.Header.Ack, buf.Header.Flags.Has(FlagACK), buf.Header.Flags.Has(FlagNAK))
	delivered := l.receiver.Receive(&buf, nowMS)
	if !delivered {
		return nil, 0, false, nil
	}
	return buf.Payload(), buf.Header.Type, true, nil
}
