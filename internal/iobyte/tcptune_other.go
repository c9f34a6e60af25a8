//go:build !linux

package iobyte

import (
	"net"
	"time"
)

// TuneTCPKeepalive enables Go's platform-default TCP keepalive on conn.
// The idle/interval socket-option tuning TuneTCPKeepalive offers on Linux
// has no portable equivalent here, so non-Linux builds fall back to
// net.TCPConn's own keepalive toggle.
func TuneTCPKeepalive(conn net.Conn, idle, interval time.Duration) error {
	tc, ok := conn.(*net.TCPConn)
	if !ok {
		return nil
	}
	return tc.SetKeepAlive(true)
}
