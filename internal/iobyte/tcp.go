package iobyte

import "net"

// tcpPort adapts a net.Conn to Port, for bridging the stack over a TCP
// loopback/tunnel byte stream instead of a physical serial device.
type tcpPort struct {
	conn net.Conn
}

// NewTCPPort wraps conn as a Port.
func NewTCPPort(conn net.Conn) Port {
	return &tcpPort{conn: conn}
}

func (p *tcpPort) Available() int { return 0 }

func (p *tcpPort) Read(b []byte) (int, error) { return p.conn.Read(b) }

func (p *tcpPort) Write(b []byte) (int, error) { return p.conn.Write(b) }

func (p *tcpPort) Close() error { return p.conn.Close() }
