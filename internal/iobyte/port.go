// Package iobyte provides the byte source/sink and clock collaborators that
// the protocol stack is driven by. These are the only components in the
// module that touch a real device, socket, or wall clock; every layer above
// this package only ever sees injected interfaces.
package iobyte

import (
	"time"

	"github.com/tarm/serial"
)

// Port is the byte source/sink contract every transport-facing layer is
// driven through: available/read/write, with an optional soft timeout.
// Generalized from a serial-only abstraction to a tier-agnostic byte
// source/sink contract.
type Port interface {
	Available() int
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
}

// OpenSerial opens a serial device as a Port.
func OpenSerial(name string, baud int, readTimeout time.Duration) (Port, error) {
	cfg := &serial.Config{Name: name, Baud: baud, ReadTimeout: readTimeout}
	sp, err := serial.OpenPort(cfg)
	if err != nil {
		return nil, err
	}
	return &serialPort{sp: sp}, nil
}

type serialPort struct {
	sp *serial.Port
}

func (p *serialPort) Available() int { return 0 } // tarm/serial has no peek/available primitive
func (p *serialPort) Read(b []byte) (int, error)  { return p.sp.Read(b) }
func (p *serialPort) Write(b []byte) (int, error) { return p.sp.Write(b) }
func (p *serialPort) Close() error                { return p.sp.Close() }
