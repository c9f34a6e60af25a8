package stack

import (
	"io"
	"sync"
	"testing"

	"github.com/ethanjli/phyllo-go/internal/chunk"
	"github.com/ethanjli/phyllo-go/internal/cobs"
	"github.com/ethanjli/phyllo-go/internal/document"
	"github.com/ethanjli/phyllo-go/internal/iobyte"
	"github.com/ethanjli/phyllo-go/internal/phyllo"
	"github.com/ethanjli/phyllo-go/internal/pubsub"
)

// fakePort is an in-memory iobyte.Port: Write buffers bytes for the test to
// drain and feed to a peer Transport; Read is unused since tests drive
// Transport.Feed directly instead of Transport.Run.
type fakePort struct {
	mu  sync.Mutex
	out []byte
}

func (p *fakePort) Available() int { return 0 }

// Read is never exercised: these tests drive Transport.Feed directly
// rather than Transport.Run's Port-reading goroutine.
func (p *fakePort) Read([]byte) (int, error) { return 0, io.EOF }
func (p *fakePort) Close() error             { return nil }

func (p *fakePort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.out = append(p.out, b...)
	return len(b), nil
}

func (p *fakePort) drain() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.out
	p.out = nil
	return out
}

// pair wires two Transports of the same Tier back to back over fake ports.
type pair struct {
	portA, portB *fakePort
	tA, tB       *Transport
}

func newPair(tier Tier) *pair {
	pr := &pair{portA: &fakePort{}, portB: &fakePort{}}
	pr.tA = NewTransport(tier, pr.portA, iobyte.NewFakeClock(), chunk.SizeLimit)
	pr.tB = NewTransport(tier, pr.portB, iobyte.NewFakeClock(), chunk.SizeLimit)
	return pr
}

// pump drains both ports and feeds the bytes to the peer transport.
func (pr *pair) pump(nowMS uint64) {
	for _, b := range pr.portA.drain() {
		pr.tB.Feed(b, nowMS)
	}
	for _, b := range pr.portB.drain() {
		pr.tA.Feed(b, nowMS)
	}
}

// TestMinimalEcho mirrors scenario E1: a Document sent over a Minimal
// transport arrives at the peer with its body and format intact.
func TestMinimalEcho(t *testing.T) {
	pr := newPair(Minimal)
	var received *document.Document
	docA := document.NewLink(func(payload []byte, typ phyllo.TypeCode, nowMS uint64) error {
		return pr.tA.Send(payload, typ, nowMS)
	})
	docB := document.NewLink(nil)
	pr.tB.OnReceive = func(payload []byte, typ phyllo.TypeCode) {
		if typ != phyllo.TypeDocument {
			return
		}
		doc, err := docB.Receive(payload)
		if err != nil {
			return
		}
		received = doc
	}

	if err := docA.SendBody([]byte{0x41}, phyllo.SchemaSchemaless, 0); err != nil {
		t.Fatalf("SendBody: %v", err)
	}
	pr.pump(0)

	if received == nil {
		t.Fatal("peer did not receive a document")
	}
	if received.Header.Format != phyllo.FormatMsgPack {
		t.Fatalf("format = %#x, want %#x", received.Header.Format, phyllo.FormatMsgPack)
	}
	if len(received.Body()) != 1 || received.Body()[0] != 0x41 {
		t.Fatalf("body = %v, want [0x41]", received.Body())
	}
}

// TestReducedCRCReject mirrors scenario E2: corrupting one byte of the
// Validated Datagram's protected region (type, here) causes the CRC check
// to fail and the frame to be dropped before it reaches the app layer.
func TestReducedCRCReject(t *testing.T) {
	pr := newPair(Reduced)
	docA := document.NewLink(func(payload []byte, typ phyllo.TypeCode, nowMS uint64) error {
		return pr.tA.Send(payload, typ, nowMS)
	})
	var receivedCount int
	docB := document.NewLink(nil)
	pr.tB.OnReceive = func(payload []byte, typ phyllo.TypeCode) {
		if _, err := docB.Receive(payload); err == nil {
			receivedCount++
		}
	}

	if err := docA.SendBody([]byte{0x41}, phyllo.SchemaSchemaless, 0); err != nil {
		t.Fatalf("SendBody: %v", err)
	}
	wire := pr.portA.drain()
	if len(wire) < 4 || wire[0] != chunk.Delimiter || wire[len(wire)-1] != chunk.Delimiter {
		t.Fatalf("unexpected wire framing: %v", wire)
	}

	frame := wire[1 : len(wire)-1]
	payload, ok := cobs.Decode(frame)
	if !ok {
		t.Fatal("cobs.Decode failed on outgoing frame")
	}
	// Flip every bit of the type byte (offset 4: [crc(4)][type]).
	payload[4] ^= 0xFF

	corruptedFrame := cobs.Encode(payload)
	corruptedWire := append([]byte{chunk.Delimiter}, corruptedFrame...)
	corruptedWire = append(corruptedWire, chunk.Delimiter)

	for _, b := range corruptedWire {
		pr.tB.Feed(b, 0)
	}

	if receivedCount != 0 {
		t.Fatalf("receivedCount = %d, want 0 (corrupted frame should be dropped)", receivedCount)
	}
}

// TestStandardPubSubRoundTrip mirrors scenarios E4/E5: a Message reliably
// delivered over a Standard transport is dispatched by the Router to the
// matching handler and no other.
func TestStandardPubSubRoundTrip(t *testing.T) {
	pr := newPair(Standard)
	clock := iobyte.NewFakeClock()
	appA := NewPubSubApp(pr.tA, clock)
	appB := NewPubSubApp(pr.tB, clock)

	var echoed string
	var replyFired bool
	echoHandler := pubsub.NewEndpointHandler(pubsub.NewNameFilterString("echo"), nil,
		func(d *document.Document) {
			var s string
			_ = d.Decode(&s)
			echoed = s
		})
	replyHandler := pubsub.NewEndpointHandler(pubsub.NewNameFilterString("reply"), nil,
		func(d *document.Document) { replyFired = true })
	if err := appB.AddHandler(echoHandler); err != nil {
		t.Fatalf("AddHandler echo: %v", err)
	}
	if err := appB.AddHandler(replyHandler); err != nil {
		t.Fatalf("AddHandler reply: %v", err)
	}

	endpointA := appA.NewEndpoint(pubsub.NewNameFilterString("echo"))
	doc := document.New(phyllo.SchemaString)
	if err := doc.Encode("hello!", phyllo.SchemaString); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := endpointA.Send(doc); err != nil {
		t.Fatalf("Send: %v", err)
	}

	var now uint64
	for tick := 0; tick < 20 && echoed == ""; tick++ {
		now++
		clock.Advance(1)
		pr.pump(now)
		if err := pr.tA.Update(now); err != nil {
			t.Fatalf("tA.Update: %v", err)
		}
		if err := pr.tB.Update(now); err != nil {
			t.Fatalf("tB.Update: %v", err)
		}
		pr.pump(now)
	}

	if echoed != "hello!" {
		t.Fatalf("echoed = %q, want %q", echoed, "hello!")
	}
	if replyFired {
		t.Fatal("reply handler should not have fired for topic \"echo\"")
	}
}

// TestPubSubTopicOverflowRefused mirrors scenario E6: a topic exceeding the
// 15-byte limit is refused before any bytes reach the transport.
func TestPubSubTopicOverflowRefused(t *testing.T) {
	pr := newPair(Standard)
	clock := iobyte.NewFakeClock()
	app := NewPubSubApp(pr.tA, clock)
	endpoint := app.NewEndpoint(pubsub.NewNameFilter(make([]byte, 16)))

	doc := document.New(phyllo.SchemaSchemaless)
	if err := doc.Write([]byte{0x01}, phyllo.SchemaSchemaless); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := endpoint.Send(doc); err != pubsub.ErrTopicTooLarge {
		t.Fatalf("err = %v, want ErrTopicTooLarge", err)
	}
	if len(pr.portA.drain()) != 0 {
		t.Fatal("no bytes should have reached the transport for an oversized topic")
	}
}
