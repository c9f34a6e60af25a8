// Package cobs implements the L2 Frame layer: Consistent Overhead Byte
// Stuffing over the reserved 0x00 delimiter, matching the wire form used by
// PacketSerial-style COBS implementations.
package cobs

import (
	"bytes"

	"github.com/ethanjli/phyllo-go/internal/metrics"
)

// MaxOverheadPer254 bounds COBS overhead: at most one extra byte per 254
// non-zero input bytes.
const MaxOverheadPer254 = 254

// Encode returns the COBS encoding of payload. The result never contains a
// 0x00 byte. len(Encode(payload)) <= len(payload) + len(payload)/254 + 1.
func Encode(payload []byte) []byte {
	out := make([]byte, 0, len(payload)+len(payload)/MaxOverheadPer254+2)
	codeIdx := 0
	out = append(out, 0) // placeholder for first code byte
	code := byte(1)
	for _, b := range payload {
		if b == 0 {
			out[codeIdx] = code
			codeIdx = len(out)
			out = append(out, 0)
			code = 1
			continue
		}
		out = append(out, b)
		code++
		if code == 0xFF {
			out[codeIdx] = code
			codeIdx = len(out)
			out = append(out, 0)
			code = 1
		}
	}
	out[codeIdx] = code
	return out
}

// Decode reverses Encode. It returns (nil, false) if frame is not a valid
// COBS encoding (a zero byte appears at a position that isn't a code byte,
// or a code byte points past the end of frame).
func Decode(frame []byte) ([]byte, bool) {
	if len(frame) == 0 {
		return nil, false
	}
	out := make([]byte, 0, len(frame))
	i := 0
	for i < len(frame) {
		code := int(frame[i])
		if code == 0 {
			metrics.IncFrameDecodeError()
			return nil, false
		}
		end := i + code
		if end > len(frame) {
			metrics.IncFrameDecodeError()
			return nil, false
		}
		if bytes.IndexByte(frame[i+1:end], 0) >= 0 {
			metrics.IncFrameDecodeError()
			return nil, false
		}
		out = append(out, frame[i+1:end]...)
		i = end
		if code != 0xFF && i < len(frame) {
			out = append(out, 0)
		}
	}
	return out, true
}
