package reliable

import (
	"errors"

	"github.com/ethanjli/phyllo-go/internal/phyllo"
)

// ErrEmptyPayload is returned by Write for a zero-length payload.
var ErrEmptyPayload = errors.New("reliable: empty payload")

// ErrPayloadTooLarge is returned by Write when payload exceeds the limit.
var ErrPayloadTooLarge = errors.New("reliable: payload too large")

// ErrTruncated is returned by Read when buf is shorter than HeaderSize.
var ErrTruncated = errors.New("reliable: truncated header")

// PayloadSizeLimit bounds a Reliable Buffer's payload so header plus
// payload fit within a Validated Datagram's payload limit (0xFF bytes),
// i.e. 0xFF minus this layer's own HeaderSize.
const PayloadSizeLimit = 0xFF - HeaderSize

// Buffer is a Reliable Buffer data unit: a Go-Back-N sequenced, flagged,
// typed payload.
type Buffer struct {
	Header  Header
	buf     []byte
	payload []byte
}

// Payload returns the buffer's payload bytes.
func (b *Buffer) Payload() []byte { return b.payload }

// WireBytes returns the buffer's full wire bytes, header included.
func (b *Buffer) WireBytes() []byte { return b.buf }

// Read parses buf into a Buffer.
func (b *Buffer) Read(buf []byte) error {
	if len(buf) < HeaderSize {
		return ErrTruncated
	}
	b.Header.Seq = buf[0]
	b.Header.Ack = buf[1]
	b.Header.Flags = Flags(buf[2])
	b.Header.Type = phyllo.TypeCode(buf[3])
	b.buf = append(b.buf[:0], buf...)
	b.payload = b.buf[HeaderSize:]
	return nil
}

// Write fills the buffer from payload, typ, and the header fields already
// set on b.Header (Seq/Ack/Flags are left to the caller to assign before or
// after Write — Write only dumps payload and re-serializes the header).
func (b *Buffer) Write(payload []byte, typ phyllo.TypeCode) error {
	if len(payload) == 0 {
		return ErrEmptyPayload
	}
	if len(payload) > PayloadSizeLimit {
		return ErrPayloadTooLarge
	}
	b.Header.Type = typ
	b.buf = append(b.buf[:0], 0, 0, 0, byte(typ))
	b.buf = append(b.buf, payload...)
	b.payload = b.buf[HeaderSize:]
	b.writeHeader()
	return nil
}

// WriteEmpty writes a zero-length payload (used for standalone control
// buffers such as piggyback ACK/NAK).
func (b *Buffer) WriteEmpty() {
	b.buf = append(b.buf[:0], 0, 0, 0, byte(b.Header.Type))
	b.payload = b.buf[HeaderSize:]
	b.writeHeader()
}

// writeHeader re-serializes Header into the leading bytes of buf, keeping
// the wire bytes consistent after Header fields are mutated directly
// (e.g. by the GBN sender/receiver setting Seq/Ack/Flags post-Write).
func (b *Buffer) writeHeader() {
	b.buf[0] = b.Header.Seq
	b.buf[1] = b.Header.Ack
	b.buf[2] = byte(b.Header.Flags)
	b.buf[3] = byte(b.Header.Type)
}

// Copy deep-copies src into b, matching operator= semantics: the backing
// array is duplicated rather than aliased.
func (b *Buffer) Copy(src *Buffer) {
	b.Header = src.Header
	b.buf = append(b.buf[:0], src.buf...)
	b.payload = b.buf[HeaderSize:]
}
