package main

import (
	"fmt"
	"net"

	"github.com/ethanjli/phyllo-go/internal/iobyte"
)

// openDevicePort opens the byte source/sink the device-side transport reads
// and writes through. Transport.Run owns the read loop, so this just
// resolves cfg.backend to a Port.
func openDevicePort(cfg *appConfig) (iobyte.Port, error) {
	switch cfg.backend {
	case "serial":
		return iobyte.OpenSerial(cfg.serialDev, cfg.baud, cfg.serialReadTO)
	case "tcp":
		conn, err := net.Dial("tcp", cfg.tcpDial)
		if err != nil {
			return nil, fmt.Errorf("dial device tcp %s: %w", cfg.tcpDial, err)
		}
		if err := iobyte.TuneTCPKeepalive(conn, cfg.tcpKeepaliveIdle, cfg.tcpKeepaliveIntvl); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("tune device tcp keepalive: %w", err)
		}
		return iobyte.NewTCPPort(conn), nil
	default:
		return nil, fmt.Errorf("unknown backend %q (use serial|tcp)", cfg.backend)
	}
}
