package cobs

import (
	"bytes"
	"testing"
)

func TestEncodeNoZeroBytes(t *testing.T) {
	payloads := [][]byte{
		{0x01, 0x02, 0x03},
		{0x00},
		{0x00, 0x00, 0x00},
		bytes.Repeat([]byte{0x01}, 300),
		bytes.Repeat([]byte{0x00, 0x01}, 150),
	}
	for _, p := range payloads {
		enc := Encode(p)
		if bytes.IndexByte(enc, 0x00) >= 0 {
			t.Fatalf("encoded frame for %v contains a zero byte: %v", p, enc)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	payloads := [][]byte{
		{0x01},
		{0x00},
		{0x01, 0x00, 0x02},
		{0x00, 0x00, 0x00, 0x00},
		bytes.Repeat([]byte{0xAA}, 254),
		bytes.Repeat([]byte{0xAA}, 255),
		bytes.Repeat([]byte{0x00}, 300),
	}
	for _, p := range payloads {
		enc := Encode(p)
		dec, ok := Decode(enc)
		if !ok {
			t.Fatalf("decode failed for payload %v, encoded %v", p, enc)
		}
		if !bytes.Equal(dec, p) {
			t.Fatalf("round-trip mismatch: got %v, want %v", dec, p)
		}
	}
}

func TestDecodeInvalidZeroCodeByte(t *testing.T) {
	if _, ok := Decode([]byte{0x00, 0x01}); ok {
		t.Fatal("expected decode failure for zero code byte")
	}
}

func TestDecodeInvalidTruncated(t *testing.T) {
	if _, ok := Decode([]byte{0x05, 0x01, 0x02}); ok {
		t.Fatal("expected decode failure for code pointing past end of frame")
	}
}

func TestDecodeEmpty(t *testing.T) {
	if _, ok := Decode(nil); ok {
		t.Fatal("expected decode failure for empty frame")
	}
}

func FuzzRoundTrip(f *testing.F) {
	f.Add([]byte{0x01, 0x00, 0x02, 0x03})
	f.Add([]byte{})
	f.Add(bytes.Repeat([]byte{0x00}, 260))
	f.Fuzz(func(t *testing.T, data []byte) {
		if len(data) == 0 {
			return
		}
		enc := Encode(data)
		if bytes.IndexByte(enc, 0x00) >= 0 {
			t.Fatalf("encoded frame contains zero byte for input %v", data)
		}
		dec, ok := Decode(enc)
		if !ok {
			t.Fatalf("decode failed for re-encoded input %v", data)
		}
		if !bytes.Equal(dec, data) {
			t.Fatalf("round-trip mismatch: got %v, want %v", dec, data)
		}
	})
}

func FuzzDecodeNoPanic(f *testing.F) {
	f.Add([]byte{0, 0, 0, 1, 0})
	f.Fuzz(func(t *testing.T, data []byte) {
		_, _ = Decode(data)
	})
}
