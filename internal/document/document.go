package document

import (
	"errors"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/ethanjli/phyllo-go/internal/metrics"
	"github.com/ethanjli/phyllo-go/internal/phyllo"
	"github.com/ethanjli/phyllo-go/internal/reliable"
)

// BodySizeLimit bounds a Document's body so header plus body fits within a
// single Reliable Buffer payload.
const BodySizeLimit = reliable.PayloadSizeLimit - HeaderSize

var (
	// ErrEmptyBody is returned when writing a zero-length body.
	ErrEmptyBody = errors.New("document: empty body")
	// ErrBodyTooLarge is returned when a body exceeds BodySizeLimit.
	ErrBodyTooLarge = errors.New("document: body exceeds size limit")
)

// Document is a Presentation-layer data unit: a Header identifying the
// serialization format and schema, followed by the encoded body.
type Document struct {
	Header Header
	buf    []byte
	body   []byte
}

// New constructs a Document with the given schema, defaulting to MsgPack
// format. Callers typically follow with Encode or Write.
func New(schema phyllo.SchemaCode) *Document {
	return &Document{Header: Header{Format: phyllo.FormatMsgPack, Schema: schema}}
}

// Body returns the raw (still-encoded) body bytes.
func (d *Document) Body() []byte { return d.body }

// Bytes returns the full wire representation: header followed by body.
func (d *Document) Bytes() []byte { return d.buf }

// Read parses buf into the Document's header and body.
func (d *Document) Read(buf []byte) error {
	var h Header
	if err := h.Read(buf); err != nil {
		return err
	}
	d.Header = h
	d.buf = append(d.buf[:0], buf...)
	d.body = d.buf[HeaderSize:]
	metrics.IncDatagramRx()
	return nil
}

// Write sets the Document's body to a raw byte slice, updating the header
// in the wire buffer. Use Encode to marshal a Go value instead.
func (d *Document) Write(body []byte, schema phyllo.SchemaCode) error {
	if len(body) == 0 {
		return ErrEmptyBody
	}
	if len(body) > BodySizeLimit {
		return ErrBodyTooLarge
	}
	d.Header.Schema = schema
	d.buf = append(d.buf[:0], 0, 0)
	d.buf = append(d.buf, body...)
	d.body = d.buf[HeaderSize:]
	if err := d.Header.Write(d.buf); err != nil {
		return err
	}
	return nil
}

// Encode marshals v as MessagePack and writes it as the Document's body
// under the given schema.
func (d *Document) Encode(v any, schema phyllo.SchemaCode) error {
	body, err := msgpack.Marshal(v)
	if err != nil {
		return err
	}
	return d.Write(body, schema)
}

// Decode unmarshals the Document's body as MessagePack into v.
func (d *Document) Decode(v any) error {
	return msgpack.Unmarshal(d.body, v)
}

// Writer starts a type-dispatched cursor for building a new body under
// schema. Pass its Bytes to Write once every field has been written.
func (d *Document) Writer(schema phyllo.SchemaCode) *Writer {
	return NewWriter(schema)
}

// Reader starts a type-dispatched cursor over the Document's current body,
// using its header schema for length-bound checks on ReadString/ReadBinary.
func (d *Document) Reader() *Reader {
	return NewReader(d.body, d.Header.Schema)
}

// WriteClass encodes v through its own Write method rather than reflection,
// then commits the result as the Document's body under schema.
func (d *Document) WriteClass(v WriterClass, schema phyllo.SchemaCode) error {
	w := NewWriter(schema)
	if err := w.WriteClass(v); err != nil {
		return err
	}
	return d.Write(w.Bytes(), schema)
}

// ReadClass decodes the Document's body through v's own Read method rather
// than reflection.
func (d *Document) ReadClass(v ReaderClass) error {
	return d.Reader().ReadClass(v)
}
