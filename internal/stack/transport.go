// Package stack composes the layer packages (chunk, cobs, datagram,
// reliable, document, pubsub) into the three conventional transport tiers
// and the two application tiers the wire format allows, and drives them
// from a byte Port.
package stack

import (
	"context"
	"sync"
	"time"

	"github.com/ethanjli/phyllo-go/internal/chunk"
	"github.com/ethanjli/phyllo-go/internal/cobs"
	"github.com/ethanjli/phyllo-go/internal/datagram"
	"github.com/ethanjli/phyllo-go/internal/iobyte"
	"github.com/ethanjli/phyllo-go/internal/metrics"
	"github.com/ethanjli/phyllo-go/internal/phyllo"
	"github.com/ethanjli/phyllo-go/internal/reliable"
)

// Tier names a conventional transport stack composition. Peers that
// advertise the same Tier are interoperable.
type Tier int

const (
	// Minimal is L1..L3: Chunked Stream, Frame (COBS), Datagram.
	Minimal Tier = iota
	// Reduced is L1..L4: Minimal plus CRC-32 validation.
	Reduced
	// Standard is L1..L5: Reduced plus the Go-Back-N Reliable Buffer Link.
	Standard
)

// Transport composes L1 through L3/L4/L5 (per Tier) into a single
// byte-stream <-> typed-payload pipeline. The application layer (Document,
// Pub/Sub) is wired on top via OnReceive/Send. All methods are safe for
// concurrent use; the protocol state machines beneath are inherently
// sequential, so a single mutex serializes Send/Feed/Update rather than
// exposing them only to one owning goroutine.
type Transport struct {
	tier  Tier
	port  iobyte.Port
	clock iobyte.Clock

	mu        sync.Mutex
	chunkLink *chunk.Link
	cobsLink  *cobs.Link
	plain     *datagram.Link
	validated *datagram.ValidatedLink
	reliableL *reliable.Link

	// OnReceive is invoked for every payload delivered up from the
	// transport, tagged with its type code. Set before calling Run.
	OnReceive func(payload []byte, typ phyllo.TypeCode)
}

// NewTransport constructs a Transport of the given Tier, bound to port,
// with chunk size limit chunkLimit (chunk.SizeLimit or
// chunk.SizeLimit8Bit). clock drives the Standard tier's ARQ timers.
func NewTransport(tier Tier, port iobyte.Port, clock iobyte.Clock, chunkLimit int) *Transport {
	t := &Transport{tier: tier, port: port, clock: clock}
	t.chunkLink = chunk.NewLink(chunkLimit, t.writePort)
	t.cobsLink = cobs.NewLink(chunkLimit, t.chunkLink.Send)

	switch tier {
	case Minimal:
		t.plain = datagram.NewLink(t.cobsLink.Send)
	case Reduced:
		t.validated = datagram.NewValidatedLink(t.cobsLink.Send)
	case Standard:
		t.validated = datagram.NewValidatedLink(t.cobsLink.Send)
		// L4 accepts only Bytes::Buffer or Transport::ValidatedDatagram as
		// its type code (spec contract); the Reliable Buffer's own Type
		// field, not the Validated Datagram's, carries the real
		// application-level type code.
		t.reliableL = reliable.NewLink(func(wire []byte) error {
			return t.validated.Send(wire, phyllo.TypeBuffer)
		})
	}
	return t
}

func (t *Transport) writePort(b []byte) error {
	_, err := t.port.Write(b)
	return err
}

// Send transmits payload under typ through the transport's top layer. For
// a Standard transport, nowMS timestamps the GBN send queue entry. For a
// Reduced transport, typ is not carried on the wire: L4 accepts only
// Bytes::Buffer as its type code, so a Reduced transport's app tier is
// always a single, implicitly-typed document (MinimalApp).
func (t *Transport) Send(payload []byte, typ phyllo.TypeCode, nowMS uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch t.tier {
	case Minimal:
		return t.plain.Send(payload, typ)
	case Reduced:
		return t.validated.Send(payload, phyllo.TypeBuffer)
	default:
		return t.reliableL.Enqueue(payload, typ, nowMS)
	}
}

// Update drives the Standard tier's ARQ timers; a no-op for Minimal/Reduced.
func (t *Transport) Update(nowMS uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.reliableL == nil {
		return nil
	}
	return t.reliableL.Update(nowMS)
}

// Feed processes one byte read from the Port's L0 stream, completing and
// delivering chunks as they arrive.
func (t *Transport) Feed(b byte, nowMS uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.chunkLink.Feed(b)
	if t.chunkLink.Overflow() {
		t.chunkLink.Consume()
		return
	}
	if !t.chunkLink.Received() {
		return
	}
	frame := append([]byte(nil), t.chunkLink.Peek()...)
	t.chunkLink.Consume()
	t.handleFrame(frame, nowMS)
}

func (t *Transport) handleFrame(frame []byte, nowMS uint64) {
	payload, err := t.cobsLink.Receive(frame)
	if err != nil {
		return
	}
	switch t.tier {
	case Minimal:
		dg, err := t.plain.Receive(payload)
		if err != nil {
			return
		}
		t.deliver(dg.Payload(), dg.Header.Type)
	case Reduced:
		dg, err := t.validated.Receive(payload)
		if err != nil {
			return
		}
		// dg.Header.Type is always Bytes::Buffer at this tier; the app
		// layer riding directly on Reduced knows its own payload shape.
		t.deliver(dg.Payload(), dg.Header.Type)
	case Standard:
		dg, err := t.validated.Receive(payload)
		if err != nil {
			return
		}
		out, typ, delivered, err := t.reliableL.Receive(dg.Payload(), nowMS)
		if err != nil || !delivered {
			return
		}
		t.deliver(out, typ)
	}
}

func (t *Transport) deliver(payload []byte, typ phyllo.TypeCode) {
	if len(payload) == 0 {
		return
	}
	if t.OnReceive != nil {
		t.OnReceive(payload, typ)
	}
}

// Run reads from the Port until it errors or ctx is canceled, feeding every
// byte through the transport and driving Update on a fixed tick interval.
func (t *Transport) Run(ctx context.Context, tick time.Duration) error {
	metrics.SetLinkActive(true)
	defer metrics.SetLinkActive(false)

	readErr := make(chan error, 1)
	go func() {
		buf := make([]byte, 256)
		for {
			n, err := t.port.Read(buf)
			for i := 0; i < n; i++ {
				t.Feed(buf[i], t.clock.NowMS())
			}
			if err != nil {
				readErr <- err
				return
			}
			if ctx.Err() != nil {
				readErr <- ctx.Err()
				return
			}
		}
	}()

	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-readErr:
			return err
		case <-ticker.C:
			if err := t.Update(t.clock.NowMS()); err != nil {
				return err
			}
		}
	}
}
