// Package document implements L6, the Presentation Document layer: a
// 2-byte format+schema header followed by a MessagePack-encoded body.
// Documents are the unit the application layer exchanges; the header lets
// a receiver dispatch on schema without decoding the body first.
package document

import (
	"errors"

	"github.com/ethanjli/phyllo-go/internal/phyllo"
)

// HeaderSize is the fixed wire size of a Header: one format byte, one
// schema byte.
const HeaderSize = 2

// ErrTruncated is returned when a buffer is too short to hold a Header.
var ErrTruncated = errors.New("document: buffer too short for header")

// Header identifies a Document's serialization format and application
// schema.
type Header struct {
	Format phyllo.FormatCode
	Schema phyllo.SchemaCode
}

// Read parses a Header from the first HeaderSize bytes of buf.
func (h *Header) Read(buf []byte) error {
	if len(buf) < HeaderSize {
		return ErrTruncated
	}
	h.Format = phyllo.FormatCode(buf[0])
	h.Schema = phyllo.SchemaCode(buf[1])
	return nil
}

// Write serializes h into the first HeaderSize bytes of buf.
func (h Header) Write(buf []byte) error {
	if len(buf) < HeaderSize {
		return ErrTruncated
	}
	buf[0] = byte(h.Format)
	buf[1] = byte(h.Schema)
	return nil
}
