package datagram

import (
	"encoding/binary"
	"errors"

	"github.com/ethanjli/phyllo-go/internal/metrics"
	"github.com/ethanjli/phyllo-go/internal/phyllo"
)

// ValidatedHeaderSize is the wire size of a ValidatedDatagram header:
// [crc32 (4 bytes, big-endian), type (1 byte)].
const ValidatedHeaderSize = 5

// protectedOffset is where the protected region (type + payload) begins
// within the datagram buffer.
const protectedOffset = 4

// ErrIntegrityFailed is returned by Check (and by Read, which calls it)
// when the recomputed CRC does not match the transmitted one.
var ErrIntegrityFailed = errors.New("datagram: crc integrity check failed")

// ErrUnacceptedType is returned by Read when the incoming type code is
// neither Bytes::Buffer nor Transport::ValidatedDatagram.
var ErrUnacceptedType = errors.New("datagram: unaccepted type code for validated datagram")

// ValidatedHeader is the L4 fixed header.
type ValidatedHeader struct {
	CRC  uint32
	Type phyllo.TypeCode
}

// Validated is a CRC-32 validated length-implicit datagram: the payload
// length is implied by the buffer size rather than carried in the header.
// A cached CRC is invalidated on every mutation (Write) and recomputed
// lazily by Check/Update, mirroring the source's cachedCRC optional.
type Validated struct {
	Header     ValidatedHeader
	buf        []byte
	payload    []byte
	cachedCRC  uint32
	haveCached bool
}

// Payload returns the validated datagram's payload bytes.
func (v *Validated) Payload() []byte { return v.payload }

// Buffer returns the validated datagram's full wire bytes, header included.
func (v *Validated) Buffer() []byte { return v.buf }

// Read parses buf into a Validated datagram and checks its CRC first, so a
// corrupted type byte is reported as ErrIntegrityFailed. Only then are
// type codes other than Bytes::Buffer and Transport::ValidatedDatagram
// rejected with ErrUnacceptedType.
func (v *Validated) Read(buf []byte) error {
	if len(buf) < ValidatedHeaderSize {
		return ErrTruncated
	}
	typ := phyllo.TypeCode(buf[4])
	v.Header.CRC = binary.BigEndian.Uint32(buf[0:4])
	v.Header.Type = typ
	v.buf = append(v.buf[:0], buf...)
	v.payload = v.buf[ValidatedHeaderSize:]
	v.haveCached = false

	if !v.Check() {
		metrics.IncCRCFailure()
		return ErrIntegrityFailed
	}
	if typ != phyllo.TypeBuffer && typ != phyllo.TypeValidatedDatagram {
		return ErrUnacceptedType
	}
	metrics.IncDatagramRx()
	return nil
}

// Write fills the validated datagram from payload and typ, then recomputes
// and stores the CRC.
func (v *Validated) Write(payload []byte, typ phyllo.TypeCode) error {
	if len(payload) == 0 {
		return ErrEmptyPayload
	}
	if len(payload) > 0xFF {
		return ErrPayloadTooLarge
	}
	v.Header.Type = typ
	v.buf = append(v.buf[:0], 0, 0, 0, 0, byte(typ))
	v.buf = append(v.buf, payload...)
	v.payload = v.buf[ValidatedHeaderSize:]
	v.haveCached = false
	v.Update()
	metrics.IncDatagramTx()
	return nil
}

// Update recomputes the CRC over the protected region and writes it into
// both the header and the wire buffer.
func (v *Validated) Update() {
	v.cachedCRC = v.computeCRC()
	v.haveCached = true
	v.Header.CRC = v.cachedCRC
	binary.BigEndian.PutUint32(v.buf[0:4], v.Header.CRC)
}

// Check reports whether the transmitted CRC matches the recomputation over
// the protected region (type ∥ payload).
func (v *Validated) Check() bool {
	if !v.haveCached {
		v.cachedCRC = v.computeCRC()
		v.haveCached = true
	}
	return v.Header.CRC == v.cachedCRC
}

func (v *Validated) computeCRC() uint32 {
	return Checksum(v.buf[protectedOffset:])
}
