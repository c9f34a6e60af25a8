//go:build linux

package iobyte

import (
	"net"
	"time"

	"golang.org/x/sys/unix"
)

// TuneTCPKeepalive enables TCP keepalive on conn and tunes the idle/interval
// timers below Go's platform-default knobs via raw socket options, so a
// half-dead serial-to-TCP bridge link is noticed in seconds rather than
// minutes. Non-TCP connections are a silent no-op. On other platforms
// (tcptune_other.go) only keepalive itself is enabled.
func TuneTCPKeepalive(conn net.Conn, idle, interval time.Duration) error {
	tc, ok := conn.(*net.TCPConn)
	if !ok {
		return nil
	}
	if err := tc.SetKeepAlive(true); err != nil {
		return err
	}
	raw, err := tc.SyscallConn()
	if err != nil {
		return err
	}
	var sockErr error
	err = raw.Control(func(fd uintptr) {
		idleSec := int(idle / time.Second)
		if idleSec < 1 {
			idleSec = 1
		}
		intervalSec := int(interval / time.Second)
		if intervalSec < 1 {
			intervalSec = 1
		}
		if e := unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_KEEPIDLE, idleSec); e != nil {
			sockErr = e
			return
		}
		if e := unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_KEEPINTVL, intervalSec); e != nil {
			sockErr = e
			return
		}
	})
	if err != nil {
		return err
	}
	return sockErr
}
