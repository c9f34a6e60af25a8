package document

import (
	"bytes"
	"testing"

	"github.com/ethanjli/phyllo-go/internal/phyllo"
)

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{Format: phyllo.FormatMsgPack, Schema: phyllo.SchemaUint32}
	buf := make([]byte, HeaderSize)
	if err := h.Write(buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	var got Header
	if err := got.Read(buf); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != h {
		t.Fatalf("got %+v, want %+v", got, h)
	}
}

func TestDocumentEncodeDecodeRoundTrip(t *testing.T) {
	type payload struct {
		Name string
		N    int
	}
	want := payload{Name: "temp", N: 42}

	doc := New(phyllo.SchemaSchemaless)
	if err := doc.Encode(want, phyllo.SchemaSchemaless); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	wire := doc.Bytes()
	received := &Document{}
	if err := received.Read(wire); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if received.Header.Format != phyllo.FormatMsgPack {
		t.Fatalf("format = %v, want MsgPack", received.Header.Format)
	}

	var got payload
	if err := received.Decode(&got); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestDocumentWriteRawBody(t *testing.T) {
	body := []byte{0xc0} // msgpack nil
	doc := New(phyllo.SchemaNone)
	if err := doc.Write(body, phyllo.SchemaNone); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !bytes.Equal(doc.Body(), body) {
		t.Fatalf("body = %v, want %v", doc.Body(), body)
	}
	if len(doc.Bytes()) != HeaderSize+len(body) {
		t.Fatalf("wire length = %d, want %d", len(doc.Bytes()), HeaderSize+len(body))
	}
}

func TestDocumentWriteEmptyRejected(t *testing.T) {
	doc := New(phyllo.SchemaSchemaless)
	if err := doc.Write(nil, phyllo.SchemaSchemaless); err != ErrEmptyBody {
		t.Fatalf("err = %v, want ErrEmptyBody", err)
	}
}

func TestDocumentWriteTooLargeRejected(t *testing.T) {
	doc := New(phyllo.SchemaSchemaless)
	body := bytes.Repeat([]byte{0x01}, BodySizeLimit+1)
	if err := doc.Write(body, phyllo.SchemaSchemaless); err != ErrBodyTooLarge {
		t.Fatalf("err = %v, want ErrBodyTooLarge", err)
	}
}

// TestDocumentIdempotence mirrors law #8: re-reading a Document's own wire
// bytes reproduces the same header and body.
func TestDocumentIdempotence(t *testing.T) {
	doc := New(phyllo.SchemaUint8)
	if err := doc.Encode(uint8(7), phyllo.SchemaUint8); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	first := append([]byte(nil), doc.Bytes()...)

	again := &Document{}
	if err := again.Read(first); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(again.Bytes(), first) {
		t.Fatalf("re-read bytes diverged: got %v, want %v", again.Bytes(), first)
	}
}

func TestHeaderTruncated(t *testing.T) {
	var h Header
	if err := h.Read([]byte{0x11}); err != ErrTruncated {
		t.Fatalf("err = %v, want ErrTruncated", err)
	}
}

func TestWriterReaderPrimitivesRoundTrip(t *testing.T) {
	w := NewWriter(phyllo.SchemaSchemaless)
	if err := w.WriteBool(true); err != nil {
		t.Fatalf("WriteBool: %v", err)
	}
	if err := w.WriteUint8(200); err != nil {
		t.Fatalf("WriteUint8: %v", err)
	}
	if err := w.WriteInt32(-12345); err != nil {
		t.Fatalf("WriteInt32: %v", err)
	}
	if err := w.WriteFloat64(3.5); err != nil {
		t.Fatalf("WriteFloat64: %v", err)
	}
	if err := w.WriteString("hello"); err != nil {
		t.Fatalf("WriteString: %v", err)
	}
	if err := w.WriteBinary([]byte{1, 2, 3}); err != nil {
		t.Fatalf("WriteBinary: %v", err)
	}
	if err := w.WriteNone(); err != nil {
		t.Fatalf("WriteNone: %v", err)
	}
	if err := w.Err(); err != nil {
		t.Fatalf("Err: %v", err)
	}

	r := NewReader(w.Bytes(), phyllo.SchemaSchemaless)
	if v, err := r.ReadBool(); err != nil || v != true {
		t.Fatalf("ReadBool = %v, %v", v, err)
	}
	if v, err := r.ReadUint8(); err != nil || v != 200 {
		t.Fatalf("ReadUint8 = %v, %v", v, err)
	}
	if v, err := r.ReadInt32(); err != nil || v != -12345 {
		t.Fatalf("ReadInt32 = %v, %v", v, err)
	}
	if v, err := r.ReadFloat64(); err != nil || v != 3.5 {
		t.Fatalf("ReadFloat64 = %v, %v", v, err)
	}
	if v, err := r.ReadString(); err != nil || v != "hello" {
		t.Fatalf("ReadString = %q, %v", v, err)
	}
	if v, err := r.ReadBinary(); err != nil || !bytes.Equal(v, []byte{1, 2, 3}) {
		t.Fatalf("ReadBinary = %v, %v", v, err)
	}
	if err := r.ReadNone(); err != nil {
		t.Fatalf("ReadNone: %v", err)
	}
	if err := r.Err(); err != nil {
		t.Fatalf("Err: %v", err)
	}
}

func TestWriterArrayMapHeaders(t *testing.T) {
	w := NewWriter(phyllo.SchemaSchemaless)
	if err := w.WriteArrayHeader(2); err != nil {
		t.Fatalf("WriteArrayHeader: %v", err)
	}
	_ = w.WriteUint8(1)
	_ = w.WriteUint8(2)
	if err := w.WriteMapHeader(1); err != nil {
		t.Fatalf("WriteMapHeader: %v", err)
	}
	_ = w.WriteString("k")
	_ = w.WriteUint8(9)
	if err := w.Err(); err != nil {
		t.Fatalf("Err: %v", err)
	}

	r := NewReader(w.Bytes(), phyllo.SchemaSchemaless)
	n, err := r.ReadArrayHeader()
	if err != nil || n != 2 {
		t.Fatalf("ReadArrayHeader = %d, %v", n, err)
	}
	if v, _ := r.ReadUint8(); v != 1 {
		t.Fatalf("elem0 = %d", v)
	}
	if v, _ := r.ReadUint8(); v != 2 {
		t.Fatalf("elem1 = %d", v)
	}
	mn, err := r.ReadMapHeader()
	if err != nil || mn != 1 {
		t.Fatalf("ReadMapHeader = %d, %v", mn, err)
	}
	if k, _ := r.ReadString(); k != "k" {
		t.Fatalf("key = %q", k)
	}
	if v, _ := r.ReadUint8(); v != 9 {
		t.Fatalf("value = %d", v)
	}
}

func TestWriterStringOverflowRejected(t *testing.T) {
	w := NewWriter(phyllo.SchemaString8)
	long := string(bytes.Repeat([]byte{'a'}, 0x100))
	if err := w.WriteString(long); err == nil {
		t.Fatal("expected overflow error for string exceeding SchemaString8 bound")
	}
	// a sticky writer refuses further writes once it has failed.
	if err := w.WriteBool(true); err == nil {
		t.Fatal("expected writer to stay failed after first overflow")
	}
}

func TestWriterBinaryOverflowRejected(t *testing.T) {
	w := NewWriter(phyllo.SchemaBinary8)
	long := bytes.Repeat([]byte{0x01}, 0x100)
	if err := w.WriteBinary(long); err == nil {
		t.Fatal("expected overflow error for binary exceeding SchemaBinary8 bound")
	}
}

func TestWriterStringWithinBoundAccepted(t *testing.T) {
	w := NewWriter(phyllo.SchemaString8)
	short := string(bytes.Repeat([]byte{'a'}, 0xff))
	if err := w.WriteString(short); err != nil {
		t.Fatalf("WriteString within bound: %v", err)
	}
}

func TestReaderTypeMismatchReported(t *testing.T) {
	w := NewWriter(phyllo.SchemaSchemaless)
	_ = w.WriteString("not a number")
	r := NewReader(w.Bytes(), phyllo.SchemaSchemaless)
	if _, err := r.ReadUint8(); err == nil {
		t.Fatal("expected a type mismatch error reading a string as uint8")
	}
}

func TestReaderTruncatedReported(t *testing.T) {
	r := NewReader(nil, phyllo.SchemaSchemaless)
	if _, err := r.ReadBool(); err == nil {
		t.Fatal("expected a truncation error reading an empty body")
	}
}

type point struct {
	X, Y int32
}

func (p *point) Write(w *Writer) error {
	if err := w.WriteInt32(p.X); err != nil {
		return err
	}
	return w.WriteInt32(p.Y)
}

func (p *point) Read(r *Reader) error {
	x, err := r.ReadInt32()
	if err != nil {
		return err
	}
	y, err := r.ReadInt32()
	if err != nil {
		return err
	}
	p.X, p.Y = x, y
	return nil
}

func TestDocumentWriteClassReadClassRoundTrip(t *testing.T) {
	doc := New(phyllo.SchemaSchemaless)
	want := &point{X: 3, Y: -4}
	if err := doc.WriteClass(want, phyllo.SchemaSchemaless); err != nil {
		t.Fatalf("WriteClass: %v", err)
	}

	received := &Document{}
	if err := received.Read(doc.Bytes()); err != nil {
		t.Fatalf("Read: %v", err)
	}
	got := &point{}
	if err := received.ReadClass(got); err != nil {
		t.Fatalf("ReadClass: %v", err)
	}
	if *got != *want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}
