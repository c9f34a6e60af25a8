package document

import (
	"github.com/ethanjli/phyllo-go/internal/phyllo"
)

// Link adapts the Document layer onto the Reliable Buffer Link below it:
// Send wraps a value (or raw body) as a Document and forwards its wire
// bytes downward; Receive parses inbound wire bytes into a Document.
type Link struct {
	send func(payload []byte, typ phyllo.TypeCode, nowMS uint64) error
}

// NewLink constructs a Link. send is typically reliable.Link.Enqueue.
func NewLink(send func(payload []byte, typ phyllo.TypeCode, nowMS uint64) error) *Link {
	return &Link{send: send}
}

// Send marshals v as MessagePack under schema and forwards the resulting
// Document downward.
func (l *Link) Send(v any, schema phyllo.SchemaCode, nowMS uint64) error {
	doc := New(schema)
	if err := doc.Encode(v, schema); err != nil {
		return err
	}
	return l.send(doc.Bytes(), phyllo.TypeDocument, nowMS)
}

// SendBody forwards a pre-encoded body under schema, without re-encoding.
func (l *Link) SendBody(body []byte, schema phyllo.SchemaCode, nowMS uint64) error {
	doc := New(schema)
	if err := doc.Write(body, schema); err != nil {
		return err
	}
	return l.send(doc.Bytes(), phyllo.TypeDocument, nowMS)
}

// Receive parses wire bytes delivered from below into a Document.
func (l *Link) Receive(wire []byte) (*Document, error) {
	doc := &Document{}
	if err := doc.Read(wire); err != nil {
		return nil, err
	}
	return doc, nil
}
