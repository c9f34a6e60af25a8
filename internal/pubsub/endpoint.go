package pubsub

import (
	"errors"

	"github.com/ethanjli/phyllo-go/internal/document"
)

// ErrNoSender is returned by Endpoint.Send when no downward send function
// has been bound yet.
var ErrNoSender = errors.New("pubsub: endpoint has no send function")

// Endpoint addresses one topic: it filters inbound Messages by topic and,
// on Send, tags outbound Documents with that topic before handing them to
// the MessageLink below.
type Endpoint struct {
	filter NameFilter
	send   func(topic []byte, doc *document.Document) error
}

// NewEndpoint constructs an Endpoint bound to filter. send forwards a
// topic-tagged Document to the MessageLink; it may be nil for a
// receive-only Endpoint, set later via SetSendFunc.
func NewEndpoint(filter NameFilter, send func(topic []byte, doc *document.Document) error) *Endpoint {
	return &Endpoint{filter: filter, send: send}
}

// Filter returns the Endpoint's topic filter.
func (e *Endpoint) Filter() NameFilter { return e.filter }

// SetSendFunc rebinds the Endpoint's downward send function.
func (e *Endpoint) SetSendFunc(send func(topic []byte, doc *document.Document) error) {
	e.send = send
}

// Receive parses msg's payload as a Document if msg's topic matches the
// Endpoint's filter.
func (e *Endpoint) Receive(msg *Message) (*document.Document, bool, error) {
	if !e.filter.Matches(msg.Topic()) {
		return nil, false, nil
	}
	doc := &document.Document{}
	if err := doc.Read(msg.Payload()); err != nil {
		return nil, false, err
	}
	return doc, true, nil
}

// Send forwards doc downward tagged with the Endpoint's filter topic.
func (e *Endpoint) Send(doc *document.Document) error {
	if e.send == nil {
		return ErrNoSender
	}
	return e.send(e.filter.filter, doc)
}

// EndpointHandler is a unit of the application that handles Documents
// received on a single Endpoint.
type EndpointHandler struct {
	endpoint  *Endpoint
	onReceive func(*document.Document)
}

// NewEndpointHandler constructs an EndpointHandler bound to filter.
// onReceive is invoked for every Document matching the filter.
func NewEndpointHandler(filter NameFilter, send func(topic []byte, doc *document.Document) error, onReceive func(*document.Document)) *EndpointHandler {
	return &EndpointHandler{
		endpoint:  NewEndpoint(filter, send),
		onReceive: onReceive,
	}
}

// Filter satisfies Handler.
func (h *EndpointHandler) Filter() NameFilter { return h.endpoint.Filter() }

// Receive satisfies Handler: it is only called by Router after confirming
// the topic matches, so the Endpoint re-check here is cheap and keeps
// EndpointHandler usable outside a Router too.
func (h *EndpointHandler) Receive(msg *Message) {
	doc, ok, err := h.endpoint.Receive(msg)
	if err != nil || !ok {
		return
	}
	if h.onReceive != nil {
		h.onReceive(doc)
	}
}

// Send forwards doc downward through the handler's Endpoint.
func (h *EndpointHandler) Send(doc *document.Document) error {
	return h.endpoint.Send(doc)
}

// SetSendFunc rebinds the underlying Endpoint's downward send function.
func (h *EndpointHandler) SetSendFunc(send func(topic []byte, doc *document.Document) error) {
	h.endpoint.SetSendFunc(send)
}
