// Package phyllo holds the wire-level type codes shared by every layer of
// the protocol stack: data unit type codes, serialization format codes, and
// schema codes. Values are stable by number and must never be renumbered.
package phyllo

// TypeCode identifies the kind of data unit carried in a layer's type field.
type TypeCode uint8

// Layer control codes (0x00-0x0f).
const (
	TypeControl      TypeCode = 0x00
	TypeVersion      TypeCode = 0x01
	TypeCapabilities TypeCode = 0x02
	TypeError        TypeCode = 0x03
	TypeWarn         TypeCode = 0x04
	TypeInfo         TypeCode = 0x05
	TypeDebug        TypeCode = 0x06
	TypeTrace        TypeCode = 0x07
	TypeMetrics      TypeCode = 0x08
)

// Byte-stream codes (0x10-0x1f).
const (
	TypeBuffer TypeCode = 0x10
	TypeStream TypeCode = 0x11
	TypeChunk  TypeCode = 0x12
)

// Transport-layer codes (0x20-0x2f).
const (
	TypeFrame             TypeCode = 0x20
	TypeDatagram          TypeCode = 0x21
	TypeValidatedDatagram TypeCode = 0x22
	TypeReliableBuffer    TypeCode = 0x23
	TypePortedBuffer      TypeCode = 0x24
)

// Presentation-layer codes (0x40-0x4f).
const (
	TypeDocument TypeCode = 0x40
)

// Application-layer codes (0x60-0x6f).
const (
	TypePubSub TypeCode = 0x60
	TypeRPC    TypeCode = 0x61
	TypeREST   TypeCode = 0x62
)

// FormatCode identifies the serialization format of a Presentation Document.
type FormatCode uint8

const (
	FormatUnknown FormatCode = 0x10
	FormatMsgPack FormatCode = 0x11
	FormatCBOR    FormatCode = 0x12
	FormatBSON    FormatCode = 0x13
	FormatAvro    FormatCode = 0x14

	FormatProtobuf    FormatCode = 0x30
	FormatThrift      FormatCode = 0x31
	FormatCapnProto   FormatCode = 0x32
	FormatFlatBuffers FormatCode = 0x33

	FormatJSON FormatCode = 0x50
	FormatCSV  FormatCode = 0x51
)

// SchemaCode identifies the schema of a Presentation Document body.
type SchemaCode uint8

const (
	SchemaSchemaless SchemaCode = 0x00

	SchemaNone    SchemaCode = 0x01
	SchemaBoolean SchemaCode = 0x02
	SchemaUint    SchemaCode = 0x03
	SchemaUint8   SchemaCode = 0x04
	SchemaUint16  SchemaCode = 0x05
	SchemaUint32  SchemaCode = 0x06
	SchemaUint64  SchemaCode = 0x07
	SchemaInt     SchemaCode = 0x08
	SchemaInt8    SchemaCode = 0x09
	SchemaInt16   SchemaCode = 0x0a
	SchemaInt32   SchemaCode = 0x0b
	SchemaInt64   SchemaCode = 0x0c
	SchemaFloat32 SchemaCode = 0x0d
	SchemaFloat64 SchemaCode = 0x0e

	SchemaString   SchemaCode = 0x10
	SchemaString8  SchemaCode = 0x11
	SchemaString16 SchemaCode = 0x12
	SchemaString32 SchemaCode = 0x13
	SchemaString64 SchemaCode = 0x14
	SchemaBinary   SchemaCode = 0x15
	SchemaBinary8  SchemaCode = 0x16
	SchemaBinary16 SchemaCode = 0x17
	SchemaBinary32 SchemaCode = 0x18
	SchemaBinary64 SchemaCode = 0x19
)
