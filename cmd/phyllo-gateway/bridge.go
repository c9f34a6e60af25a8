package main

import (
	"context"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/ethanjli/phyllo-go/internal/chunk"
	"github.com/ethanjli/phyllo-go/internal/iobyte"
	"github.com/ethanjli/phyllo-go/internal/logging"
	"github.com/ethanjli/phyllo-go/internal/metrics"
	"github.com/ethanjli/phyllo-go/internal/phyllo"
	"github.com/ethanjli/phyllo-go/internal/pubsub"
	"github.com/ethanjli/phyllo-go/internal/stack"
)

// updateTick is the Run tick of each client Transport. A Minimal transport
// has no ARQ timers, so its Update is a no-op and this value does not affect
// protocol timing.
const updateTick = 10 * time.Millisecond

// clientBridge fans Pub/Sub Messages out to every connected TCP client and
// relays each client's own Messages upstream to the device. Each client
// gets its own Minimal-tier Transport: the Message itself already carries
// a topic, so no session handshake or per-client subscription state is
// needed at this layer -- a client simply receives every Message the
// device publishes.
type clientBridge struct {
	device *stack.PubSubApp
	clock  iobyte.Clock
	l      *slog.Logger
	max    int

	keepaliveIdle  time.Duration
	keepaliveIntvl time.Duration

	mu      sync.Mutex
	clients map[*stack.Transport]struct{}
}

func newClientBridge(device *stack.PubSubApp, clock iobyte.Clock, l *slog.Logger, cfg *appConfig) *clientBridge {
	b := &clientBridge{
		device:         device,
		clock:          clock,
		l:              l,
		max:            cfg.maxClients,
		keepaliveIdle:  cfg.tcpKeepaliveIdle,
		keepaliveIntvl: cfg.tcpKeepaliveIntvl,
		clients:        make(map[*stack.Transport]struct{}),
	}
	device.OnMessage(b.relayToClients)
	return b
}

// relayToClients forwards an inbound device Message verbatim to every
// connected client.
func (b *clientBridge) relayToClients(msg *pubsub.Message) {
	wire := append([]byte(nil), msg.Bytes()...)
	now := b.clock.NowMS()
	b.mu.Lock()
	clients := make([]*stack.Transport, 0, len(b.clients))
	for t := range b.clients {
		clients = append(clients, t)
	}
	b.mu.Unlock()
	for _, t := range clients {
		if err := t.Send(wire, phyllo.TypePubSub, now); err != nil {
			b.l.Warn("client_send_error", "error", err)
			metrics.IncError(metrics.ErrPubSubSend)
		}
	}
}

func (b *clientBridge) add(t *stack.Transport) (bool, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.max > 0 && len(b.clients) >= b.max {
		return false, len(b.clients)
	}
	b.clients[t] = struct{}{}
	return true, len(b.clients)
}

func (b *clientBridge) remove(t *stack.Transport) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.clients, t)
	return len(b.clients)
}

// serve accepts connections on ln until ctx is canceled, bridging each one
// to the device until the connection drops.
func (b *clientBridge) serve(ctx context.Context, ln net.Listener, readTimeout time.Duration) {
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			b.l.Warn("accept_error", "error", err)
			continue
		}
		go b.handleClient(ctx, conn, readTimeout)
	}
}

func (b *clientBridge) handleClient(ctx context.Context, conn net.Conn, readTimeout time.Duration) {
	addr := conn.RemoteAddr().String()
	l := logging.WithLink(b.l, addr, "minimal")
	if err := iobyte.TuneTCPKeepalive(conn, b.keepaliveIdle, b.keepaliveIntvl); err != nil {
		l.Warn("client_keepalive_tune_failed", "error", err)
	}
	port := iobyte.NewTCPPort(conn)
	t := stack.NewTransport(stack.Minimal, port, b.clock, chunk.SizeLimit)

	ok, count := b.add(t)
	if !ok {
		l.Warn("client_refused_max")
		_ = conn.Close()
		return
	}
	l.Info("client_connected", "clients", count)
	defer func() {
		count := b.remove(t)
		_ = conn.Close()
		l.Info("client_disconnected", "clients", count)
	}()

	t.OnReceive = func(payload []byte, typ phyllo.TypeCode) {
		if typ != phyllo.TypePubSub {
			return
		}
		now := b.clock.NowMS()
		if err := b.device.RelayMessage(payload, now); err != nil {
			l.Warn("device_relay_error", "error", err)
			metrics.IncError(metrics.ErrPubSubSend)
		}
	}

	cctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if readTimeout > 0 {
		go func() {
			<-cctx.Done()
			_ = conn.SetReadDeadline(time.Now())
		}()
	}

	if err := t.Run(cctx, updateTick); err != nil && cctx.Err() == nil {
		l.Debug("client_run_ended", "error", err)
	}
}
