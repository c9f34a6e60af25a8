package cobs

import "errors"

// ErrDecodeFailed is returned by Link.Receive when a chunk is not a valid
// COBS encoding.
var ErrDecodeFailed = errors.New("cobs: decode failed")

// ErrPayloadTooLarge is returned by Link.Send when the encoded frame would
// exceed the underlying chunk size limit.
var ErrPayloadTooLarge = errors.New("cobs: encoded frame too large")

// Link implements L2: it decodes chunks handed up from L1 into frame
// payloads, and encodes outgoing payloads into chunks handed down to L1.
type Link struct {
	limit int
	send  func([]byte) error
}

// NewLink constructs a Link. limit is the L1 chunk size limit; encoded
// frames must fit within it.
func NewLink(limit int, send func([]byte) error) *Link {
	return &Link{limit: limit, send: send}
}

// Receive decodes a chunk received from L1 into its original payload.
func (l *Link) Receive(chunk []byte) ([]byte, error) {
	payload, ok := Decode(chunk)
	if !ok {
		return nil, ErrDecodeFailed
	}
	return payload, nil
}

// Send encodes payload as a COBS frame and forwards it to L1 as one chunk.
func (l *Link) Send(payload []byte) error {
	frame := Encode(payload)
	if len(frame) > l.limit-1 {
		return ErrPayloadTooLarge
	}
	return l.send(frame)
}
