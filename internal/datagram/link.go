package datagram

import "github.com/ethanjli/phyllo-go/internal/phyllo"

// Link composes L3 (plain Datagram) over a send callback to L2. Used by the
// Minimal stack, which does not validate integrity.
type Link struct {
	send func([]byte) error
}

// NewLink constructs a Datagram Link with the given downstream sender.
func NewLink(send func([]byte) error) *Link {
	return &Link{send: send}
}

// Receive parses a chunk payload (already COBS-decoded) into a Datagram.
func (l *Link) Receive(buf []byte) (*Datagram, error) {
	d := &Datagram{}
	if err := d.Read(buf); err != nil {
		return nil, err
	}
	return d, nil
}

// Send writes payload as a Datagram and forwards its wire bytes downstream.
func (l *Link) Send(payload []byte, typ phyllo.TypeCode) error {
	d := &Datagram{}
	if err := d.Write(payload, typ); err != nil {
		return err
	}
	return l.send(d.Buffer())
}

// ValidatedLink composes L4 (CRC-32 Validated Datagram) over a send
// callback to L2. Used by the Reduced and Standard stacks.
type ValidatedLink struct {
	send func([]byte) error
}

// NewValidatedLink constructs a ValidatedLink with the given downstream sender.
func NewValidatedLink(send func([]byte) error) *ValidatedLink {
	return &ValidatedLink{send: send}
}

// Receive parses a chunk payload into a checked Validated datagram. A CRC
// mismatch or unaccepted type yields an error and no datagram.
func (l *ValidatedLink) Receive(buf []byte) (*Validated, error) {
	v := &Validated{}
	if err := v.Read(buf); err != nil {
		return nil, err
	}
	return v, nil
}

// Send writes payload as a Validated datagram (computing and embedding its
// CRC) and forwards its wire bytes downstream.
func (l *ValidatedLink) Send(payload []byte, typ phyllo.TypeCode) error {
	v := &Validated{}
	if err := v.Write(payload, typ); err != nil {
		return err
	}
	return l.send(v.Buffer())
}
