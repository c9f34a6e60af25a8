// Package chunk implements the L1 Chunked Stream layer: it delimits byte
// runs on a reserved zero byte and buffers one chunk at a time.
package chunk

import "github.com/ethanjli/phyllo-go/internal/metrics"

// Delimiter is the reserved byte marking chunk boundaries. It never
// appears inside a chunk's contents.
const Delimiter byte = 0x00

// SizeLimit is the default maximum chunk size (255 bytes). Use
// SizeLimit8Bit on constrained 8-bit targets.
const SizeLimit = 255

// SizeLimit8Bit is the reduced chunk size limit for 8-bit targets.
const SizeLimit8Bit = 127

// Link implements L1: byte-at-a-time accumulation into a single pending
// chunk buffer, completed on the delimiter byte.
type Link struct {
	limit    int
	pending  []byte
	received bool
	overflow bool
	send     func([]byte) error
}

// NewLink constructs a Link with the given chunk size limit and downstream
// byte sender (writes raw bytes, including delimiters, to L0).
func NewLink(limit int, send func([]byte) error) *Link {
	return &Link{
		limit:   limit,
		pending: make([]byte, 0, limit-1),
		send:    send,
	}
}

// Update is a no-op: this layer has no timers.
func (l *Link) Update(nowMS uint64) {}

// Feed processes one incoming byte from L0. It has no return value; callers
// poll Peek/Consume to retrieve completed chunks.
func (l *Link) Feed(b byte) {
	if b == Delimiter {
		if len(l.pending) > 0 {
			l.received = true
		}
		// Consecutive delimiters (empty chunks) are ignored.
		return
	}
	if len(l.pending) >= l.limit-1 {
		l.overflow = true
		metrics.IncChunkOverflow()
		return
	}
	l.pending = append(l.pending, b)
}

// Received reports whether a complete chunk is waiting to be consumed.
func (l *Link) Received() bool { return l.received }

// Overflow reports whether the pending chunk has dropped bytes since the
// last Consume.
func (l *Link) Overflow() bool { return l.overflow }

// Peek returns the pending chunk's bytes without clearing them.
func (l *Link) Peek() []byte { return l.pending }

// Consume clears the pending buffer and flags, readying the link for the
// next chunk.
func (l *Link) Consume() {
	l.pending = l.pending[:0]
	l.received = false
	l.overflow = false
}

// Send wraps payload with a leading and trailing delimiter and writes it to
// L0. Sending an empty or oversized payload fails.
func (l *Link) Send(payload []byte) error {
	if len(payload) == 0 {
		return ErrEmptyPayload
	}
	if len(payload) > l.limit-1 {
		return ErrPayloadTooLarge
	}
	framed := make([]byte, 0, len(payload)+2)
	framed = append(framed, Delimiter)
	framed = append(framed, payload...)
	framed = append(framed, Delimiter)
	return l.send(framed)
}
