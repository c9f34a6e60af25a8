package stack

import (
	"github.com/ethanjli/phyllo-go/internal/document"
	"github.com/ethanjli/phyllo-go/internal/iobyte"
	"github.com/ethanjli/phyllo-go/internal/phyllo"
	"github.com/ethanjli/phyllo-go/internal/pubsub"
)

// MinimalApp tops a Minimal or Reduced Transport with a single, untopiced
// Presentation Document — the only app tier a Reduced transport's fixed
// Bytes::Buffer type code can carry. It is equally valid over a Minimal
// transport, where the Document's arrival is tagged with the real type
// code on the wire instead.
type MinimalApp struct {
	transport *Transport
	doc       *document.Link

	// OnReceive is invoked with every Document delivered from the peer.
	OnReceive func(doc *document.Document)
}

// NewMinimalApp wires a Document Link atop transport. transport's tier
// must be Minimal or Reduced; Standard transports carry a type code that
// MinimalApp does not need and should use PubSubApp or a bare document.Link
// over the Reliable Buffer Link directly instead.
func NewMinimalApp(transport *Transport) *MinimalApp {
	a := &MinimalApp{transport: transport}
	a.doc = document.NewLink(func(payload []byte, typ phyllo.TypeCode, nowMS uint64) error {
		return transport.Send(payload, typ, nowMS)
	})
	transport.OnReceive = a.handleReceive
	return a
}

func (a *MinimalApp) handleReceive(payload []byte, typ phyllo.TypeCode) {
	doc, err := a.doc.Receive(payload)
	if err != nil {
		return
	}
	if a.OnReceive != nil {
		a.OnReceive(doc)
	}
}

// Send encodes v as a MessagePack body under schema and transmits it as a
// Document through the underlying transport.
func (a *MinimalApp) Send(v any, schema phyllo.SchemaCode, nowMS uint64) error {
	return a.doc.Send(v, schema, nowMS)
}

// PubSubApp tops a Standard transport with L7/L8: topic-addressed Pub/Sub
// Messages carrying Presentation Documents, dispatched through a Router to
// registered handlers.
type PubSubApp struct {
	transport *Transport
	link      *pubsub.Link
	router    *pubsub.Router
}

// NewPubSubApp wires a Pub/Sub Link and Router atop transport, which should
// be a Standard-tier Transport so the real Pub/Sub type code survives in
// the Reliable Buffer's own Type field (see the design note in
// internal/stack's DESIGN.md entry on L4's type-code restriction).
func NewPubSubApp(transport *Transport, clock iobyte.Clock) *PubSubApp {
	router := pubsub.NewRouter()
	a := &PubSubApp{transport: transport, router: router}
	a.link = pubsub.NewLink(func(payload []byte, typ phyllo.TypeCode, nowMS uint64) error {
		return transport.Send(payload, typ, nowMS)
	}, clock, router)
	transport.OnReceive = a.handleReceive
	return a
}

func (a *PubSubApp) handleReceive(payload []byte, typ phyllo.TypeCode) {
	if typ != phyllo.TypePubSub {
		return
	}
	_ = a.link.Receive(payload)
}

// AddHandler registers h with the router; every dispatched Message whose
// topic matches h.Filter() is handed to h.Receive in registration order.
func (a *PubSubApp) AddHandler(h pubsub.Handler) error {
	return a.router.AddHandler(h)
}

// NewEndpoint builds an Endpoint bound to this app's downward send path,
// ready to be wrapped in an EndpointHandler and registered via AddHandler.
func (a *PubSubApp) NewEndpoint(filter pubsub.NameFilter) *pubsub.Endpoint {
	return pubsub.NewEndpoint(filter, a.link.Send)
}

// OnMessage registers fn to observe every inbound Message regardless of
// topic, ahead of Router dispatch. Used by bridges that relay Messages to
// another transport rather than handling them in-process.
func (a *PubSubApp) OnMessage(fn func(msg *pubsub.Message)) {
	a.link.OnMessage = fn
}

// RelayMessage forwards the wire bytes of an already-framed Message
// downward verbatim, tagged as Pub/Sub::Message — used by bridges that
// received a Message from another transport (e.g. a gateway's TCP client
// link) and need to re-emit it unchanged rather than re-encode it from a
// Document.
func (a *PubSubApp) RelayMessage(wire []byte, nowMS uint64) error {
	return a.transport.Send(wire, phyllo.TypePubSub, nowMS)
}
