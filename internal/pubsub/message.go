// Package pubsub implements L7 (Message/MessageLink) and L8 (Endpoint,
// Router): topic-addressed publish/subscribe on top of a Presentation
// Document link.
package pubsub

import (
	"errors"

	"github.com/ethanjli/phyllo-go/internal/phyllo"
	"github.com/ethanjli/phyllo-go/internal/reliable"
)

// HeaderSize is the fixed wire size of a MessageHeader: one type byte, one
// topic-length byte.
const HeaderSize = 2

// TopicSizeLimit bounds a topic name.
const TopicSizeLimit = 15

// BodySizeLimit bounds topic+payload so a Message fits within a single
// Reliable Buffer payload.
const BodySizeLimit = reliable.PayloadSizeLimit - HeaderSize

var (
	ErrEmptyPayload  = errors.New("pubsub: empty payload")
	ErrTopicTooLarge = errors.New("pubsub: topic exceeds size limit")
	ErrBodyTooLarge  = errors.New("pubsub: topic+payload exceeds size limit")
	ErrTruncated     = errors.New("pubsub: buffer too short for message header")
)

// MessageHeader identifies a Message's payload type and topic length.
type MessageHeader struct {
	Type        phyllo.TypeCode
	TopicLength uint8
}

func (h *MessageHeader) read(buf []byte) error {
	if len(buf) < HeaderSize {
		return ErrTruncated
	}
	h.Type = phyllo.TypeCode(buf[0])
	h.TopicLength = buf[1]
	return nil
}

func (h MessageHeader) write(buf []byte) error {
	if len(buf) < HeaderSize {
		return ErrTruncated
	}
	buf[0] = byte(h.Type)
	buf[1] = h.TopicLength
	return nil
}

// Message is a topic-addressed data unit: `[type, topic_len, topic,
// payload]`.
type Message struct {
	Header  MessageHeader
	buf     []byte
	topic   []byte
	payload []byte
}

// Topic returns the message's topic name.
func (m *Message) Topic() []byte { return m.topic }

// Payload returns the message's payload bytes (typically a Document's wire
// bytes).
func (m *Message) Payload() []byte { return m.payload }

// Bytes returns the full wire representation.
func (m *Message) Bytes() []byte { return m.buf }

// Read parses buf into the Message's header, topic, and payload.
func (m *Message) Read(buf []byte) error {
	if len(buf) == 0 {
		return ErrEmptyPayload
	}
	var h MessageHeader
	if err := h.read(buf); err != nil {
		return err
	}
	if len(buf) < HeaderSize+int(h.TopicLength) {
		return ErrTruncated
	}
	m.Header = h
	m.buf = append(m.buf[:0], buf...)
	m.topic = m.buf[HeaderSize : HeaderSize+int(h.TopicLength)]
	m.payload = m.buf[HeaderSize+int(h.TopicLength):]
	return nil
}

// Write sets the Message's topic and payload, and serializes the header.
func (m *Message) Write(topic, payload []byte, typ phyllo.TypeCode) error {
	if len(payload) == 0 {
		return ErrEmptyPayload
	}
	if len(topic) > TopicSizeLimit {
		return ErrTopicTooLarge
	}
	if len(topic)+len(payload) > BodySizeLimit {
		return ErrBodyTooLarge
	}
	m.Header = MessageHeader{Type: typ, TopicLength: uint8(len(topic))}
	m.buf = append(m.buf[:0], 0, 0)
	m.buf = append(m.buf, topic...)
	m.buf = append(m.buf, payload...)
	m.topic = m.buf[HeaderSize : HeaderSize+len(topic)]
	m.payload = m.buf[HeaderSize+len(topic):]
	return m.Header.write(m.buf)
}
