package datagram

import (
	"bytes"
	"hash/crc32"
	"testing"

	"github.com/ethanjli/phyllo-go/internal/phyllo"
)

func TestChecksumMatchesIEEE(t *testing.T) {
	// The spec's reflected CRC-32 (poly 0xEDB88320, init/final XOR
	// 0xFFFFFFFF) is numerically identical to the IEEE CRC-32 used by
	// hash/crc32; used here only as an independent oracle.
	inputs := [][]byte{
		{},
		{0x00},
		[]byte("hello!"),
		bytes.Repeat([]byte{0xFF}, 64),
	}
	for _, in := range inputs {
		want := crc32.ChecksumIEEE(in)
		got := Checksum(in)
		if got != want {
			t.Fatalf("Checksum(%v) = %#x, want %#x", in, got, want)
		}
	}
}

func TestValidatedRoundTrip(t *testing.T) {
	var v Validated
	payload := []byte("hello!")
	if err := v.Write(payload, phyllo.TypeBuffer); err != nil {
		t.Fatalf("Write: %v", err)
	}
	var got Validated
	if err := got.Read(v.Buffer()); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(got.Payload(), payload) {
		t.Fatalf("payload mismatch: got %v, want %v", got.Payload(), payload)
	}
	if !got.Check() {
		t.Fatal("expected Check to pass on unmodified datagram")
	}
}

func TestValidatedBitFlipFailsCheck(t *testing.T) {
	var v Validated
	if err := v.Write([]byte("hello!"), phyllo.TypeBuffer); err != nil {
		t.Fatalf("Write: %v", err)
	}
	buf := append([]byte(nil), v.Buffer()...)
	// Flip one bit in the protected region (the type byte, index 4).
	buf[4] ^= 0x01

	var got Validated
	err := got.Read(buf)
	if err != ErrIntegrityFailed {
		t.Fatalf("expected ErrIntegrityFailed, got %v", err)
	}
}

func TestValidatedRejectsUnacceptedType(t *testing.T) {
	var v Validated
	if err := v.Write([]byte("hello!"), phyllo.TypeDocument); err != nil {
		t.Fatalf("Write: %v", err)
	}
	var got Validated
	if err := got.Read(v.Buffer()); err != ErrUnacceptedType {
		t.Fatalf("expected ErrUnacceptedType, got %v", err)
	}
}

func TestValidatedUpdateInvalidatesCache(t *testing.T) {
	var v Validated
	if err := v.Write([]byte("abc"), phyllo.TypeBuffer); err != nil {
		t.Fatalf("Write: %v", err)
	}
	firstCRC := v.Header.CRC
	if err := v.Write([]byte("abcd"), phyllo.TypeBuffer); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if v.Header.CRC == firstCRC {
		t.Fatal("expected CRC to change after payload mutation")
	}
	if !v.Check() {
		t.Fatal("expected Check to pass after Write recomputed CRC")
	}
}
