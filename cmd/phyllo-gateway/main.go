// Command phyllo-gateway bridges a single device -- speaking the layered
// byte protocol over a serial port or TCP loopback -- to any number of
// Pub/Sub TCP clients, fanning device Messages out to every client and
// relaying client Messages back to the device.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/ethanjli/phyllo-go/internal/chunk"
	"github.com/ethanjli/phyllo-go/internal/iobyte"
	"github.com/ethanjli/phyllo-go/internal/metrics"
	"github.com/ethanjli/phyllo-go/internal/stack"
)

func main() {
	cfg, showVersion := parseFlags()
	if showVersion {
		fmt.Printf("phyllo-gateway %s (commit %s, built %s)\n", version, commit, date)
		return
	}
	if cfg == nil {
		os.Exit(1)
	}
	l := setupLogger(cfg.logFormat, cfg.logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var wg sync.WaitGroup
	startMetricsLogger(ctx, cfg.logMetricsEvery, l, &wg)

	devicePort, err := openDevicePort(cfg)
	if err != nil {
		l.Error("device_open_error", "error", err)
		return
	}
	defer func() { _ = devicePort.Close() }()
	l.Info("device_open", "backend", cfg.backend, "tier", cfg.tier)

	clock := iobyte.NewSystemClock()
	deviceTransport := stack.NewTransport(stack.Standard, devicePort, clock, chunk.SizeLimit)
	deviceApp := stack.NewPubSubApp(deviceTransport, clock)

	ln, err := net.Listen("tcp", cfg.listenAddr)
	if err != nil {
		l.Error("listen_error", "error", err, "addr", cfg.listenAddr)
		return
	}
	defer func() { _ = ln.Close() }()
	l.Info("listening", "addr", ln.Addr().String())

	bridge := newClientBridge(deviceApp, clock, l, cfg)
	go bridge.serve(ctx, ln, cfg.clientReadTO)

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := deviceTransport.Run(ctx, 1*time.Millisecond); err != nil && ctx.Err() == nil {
			l.Error("device_transport_error", "error", err)
			cancel()
		}
	}()

	var port int
	if _, p, err := net.SplitHostPort(ln.Addr().String()); err == nil {
		fmt.Sscanf(p, "%d", &port)
	}
	cleanupMDNS, err := startMDNS(ctx, cfg, port)
	if err != nil {
		l.Warn("mdns_start_failed", "error", err)
	} else if cfg.mdnsEnable {
		l.Info("mdns_started", "service", mdnsServiceType, "name", cfg.mdnsName, "port", port)
	}
	defer cleanupMDNS()

	metrics.SetReadinessFunc(func() bool { return ctx.Err() == nil })
	if cfg.metricsAddr != "" {
		metrics.InitBuildInfo(version, commit, date)
		srvHTTP := metrics.StartHTTP(cfg.metricsAddr)
		defer func() { _ = srvHTTP.Shutdown(context.Background()) }()
	}

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	s := <-sigCh
	l.Info("shutdown_signal", "signal", s.String())
	cancel()
	wg.Wait()
}
