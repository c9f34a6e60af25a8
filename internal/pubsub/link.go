package pubsub

import (
	"github.com/ethanjli/phyllo-go/internal/document"
	"github.com/ethanjli/phyllo-go/internal/iobyte"
	"github.com/ethanjli/phyllo-go/internal/phyllo"
)

// Link adapts the Message layer onto the Reliable Buffer Link below it and
// a Router above it: Send wraps a topic-tagged Document as a Message and
// forwards its wire bytes downward; Receive parses an inbound wire Message
// and dispatches it through the Router.
type Link struct {
	send   func(payload []byte, typ phyllo.TypeCode, nowMS uint64) error
	clock  iobyte.Clock
	router *Router

	// OnMessage, if set, is invoked with every successfully parsed inbound
	// Message before it is handed to the Router — a relay tap for
	// observers that need the raw Message regardless of topic (e.g. a
	// gateway bridging Messages to other transports).
	OnMessage func(msg *Message)
}

// NewLink constructs a Link. send is typically reliable.Link.Enqueue;
// clock timestamps outbound sends; router receives every successfully
// parsed inbound Message.
func NewLink(send func(payload []byte, typ phyllo.TypeCode, nowMS uint64) error, clock iobyte.Clock, router *Router) *Link {
	return &Link{send: send, clock: clock, router: router}
}

// Send wraps doc as a Message addressed to topic and forwards it
// downward.
func (l *Link) Send(topic []byte, doc *document.Document) error {
	var msg Message
	if err := msg.Write(topic, doc.Bytes(), phyllo.TypeDocument); err != nil {
		return err
	}
	return l.send(msg.Bytes(), phyllo.TypePubSub, l.clock.NowMS())
}

// Receive parses wire bytes delivered from below into a Message and
// dispatches it through the Router.
func (l *Link) Receive(wire []byte) error {
	var msg Message
	if err := msg.Read(wire); err != nil {
		return err
	}
	if l.OnMessage != nil {
		l.OnMessage(&msg)
	}
	l.router.Dispatch(&msg)
	return nil
}

// SendFunc returns a topic-bound send function suitable for
// Endpoint/EndpointHandler construction.
func (l *Link) SendFunc() func(topic []byte, doc *document.Document) error {
	return l.Send
}
