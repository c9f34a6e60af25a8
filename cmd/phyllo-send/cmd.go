package main

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/ethanjli/phyllo-go/internal/chunk"
	"github.com/ethanjli/phyllo-go/internal/document"
	"github.com/ethanjli/phyllo-go/internal/iobyte"
	"github.com/ethanjli/phyllo-go/internal/phyllo"
	"github.com/ethanjli/phyllo-go/internal/pubsub"
	"github.com/ethanjli/phyllo-go/internal/stack"
)

type rootCmd struct {
	Backend string        `enum:"serial,tcp" default:"serial" help:"Byte source: serial|tcp"`
	Serial  string        `default:"/dev/ttyUSB0" help:"Serial device path (when --backend=serial)"`
	Baud    int           `default:"115200" help:"Serial baud rate"`
	TCP     string        `help:"TCP address to dial (when --backend=tcp)"`
	Tier    string        `enum:"minimal,reduced,standard" default:"standard" help:"Transport tier to speak"`
	Topic   string        `default:"" help:"Pub/Sub topic (standard tier only; ignored otherwise)"`
	Wait    time.Duration `default:"500ms" help:"How long to run the transport after sending, for ARQ retransmits/replies to settle"`

	Body string `arg:"" help:"Text payload to send, MessagePack-encoded as a string"`
}

var cli rootCmd

// Run opens the configured byte source, sends cli.Body once, and keeps the
// transport running for cli.Wait so a Standard transport's ARQ can finish
// retransmitting before the process exits.
func (c *rootCmd) Run() error {
	port, err := c.openPort()
	if err != nil {
		return fmt.Errorf("open byte source: %w", err)
	}
	defer func() { _ = port.Close() }()

	clock := iobyte.NewSystemClock()
	tier := c.parseTier()
	transport := stack.NewTransport(tier, port, clock, chunk.SizeLimit)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runErr := make(chan error, 1)
	go func() { runErr <- transport.Run(ctx, 1*time.Millisecond) }()

	if tier == stack.Standard {
		app := stack.NewPubSubApp(transport, clock)
		doc := document.New(phyllo.SchemaString)
		if err := doc.Encode(c.Body, phyllo.SchemaString); err != nil {
			return fmt.Errorf("encode document: %w", err)
		}
		endpoint := app.NewEndpoint(pubsub.NewNameFilterString(c.Topic))
		if err := endpoint.Send(doc); err != nil {
			return fmt.Errorf("send message: %w", err)
		}
	} else {
		app := stack.NewMinimalApp(transport)
		if err := app.Send(c.Body, phyllo.SchemaString, clock.NowMS()); err != nil {
			return fmt.Errorf("send document: %w", err)
		}
	}

	time.Sleep(c.Wait)
	cancel()
	<-runErr
	return nil
}

func (c *rootCmd) parseTier() stack.Tier {
	switch c.Tier {
	case "minimal":
		return stack.Minimal
	case "reduced":
		return stack.Reduced
	default:
		return stack.Standard
	}
}

func (c *rootCmd) openPort() (iobyte.Port, error) {
	switch c.Backend {
	case "serial":
		return iobyte.OpenSerial(c.Serial, c.Baud, 50*time.Millisecond)
	case "tcp":
		conn, err := net.Dial("tcp", c.TCP)
		if err != nil {
			return nil, err
		}
		return iobyte.NewTCPPort(conn), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", c.Backend)
	}
}
