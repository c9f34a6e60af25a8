package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type appConfig struct {
	backend           string
	serialDev         string
	baud              int
	serialReadTO      time.Duration
	tcpDial           string
	tcpKeepaliveIdle  time.Duration
	tcpKeepaliveIntvl time.Duration

	tier string

	listenAddr   string
	clientReadTO time.Duration
	maxClients   int

	logFormat       string
	logLevel        string
	metricsAddr     string
	logMetricsEvery time.Duration

	mdnsEnable bool
	mdnsName   string
}

func parseFlags() (*appConfig, bool) {
	cfg := &appConfig{}
	backend := flag.String("backend", "serial", "Device backend: serial|tcp")
	serialDev := flag.String("serial", "/dev/ttyUSB0", "Serial device path (when --backend=serial)")
	baud := flag.Int("baud", 115200, "Serial baud rate")
	serialReadTO := flag.Duration("serial-read-timeout", 50*time.Millisecond, "Serial read timeout")
	tcpDial := flag.String("tcp-dial", "", "TCP address to dial for the device byte stream (when --backend=tcp)")
	tcpKeepaliveIdle := flag.Duration("tcp-keepalive-idle", 10*time.Second, "TCP keepalive idle time before probing (Linux; best-effort elsewhere)")
	tcpKeepaliveIntvl := flag.Duration("tcp-keepalive-interval", 5*time.Second, "TCP keepalive probe interval (Linux; best-effort elsewhere)")
	tier := flag.String("tier", "standard", "Transport tier the device speaks (Pub/Sub bridging requires standard)")
	listen := flag.String("listen", ":20000", "TCP listen address for bridged Pub/Sub clients")
	clientReadTO := flag.Duration("client-read-timeout", 60*time.Second, "Client read timeout (must be > 0); client reads are unblocked at shutdown, idle clients are not disconnected")
	maxClients := flag.Int("max-clients", 0, "Maximum simultaneous TCP clients (0 = unlimited)")
	logFormat := flag.String("log-format", "text", "Log format: text|json")
	logLevel := flag.String("log-level", "info", "Log level: debug|info|warn|error")
	metricsAddr := flag.String("metrics-addr", "", "Metrics HTTP listen address (e.g., :9100); empty disables")
	logMetricsEvery := flag.Duration("log-metrics-interval", 0, "If >0, periodically log metrics counters")
	mdnsEnable := flag.Bool("mdns-enable", false, "Enable mDNS advertisement")
	mdnsName := flag.String("mdns-name", "", "mDNS instance name (default phyllo-gateway-<hostname>)")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	setFlags := map[string]struct{}{}
	flag.Visit(func(f *flag.Flag) { setFlags[f.Name] = struct{}{} })

	cfg.backend = *backend
	cfg.serialDev = *serialDev
	cfg.baud = *baud
	cfg.serialReadTO = *serialReadTO
	cfg.tcpDial = *tcpDial
	cfg.tcpKeepaliveIdle = *tcpKeepaliveIdle
	cfg.tcpKeepaliveIntvl = *tcpKeepaliveIntvl
	cfg.tier = *tier
	cfg.listenAddr = *listen
	cfg.clientReadTO = *clientReadTO
	cfg.maxClients = *maxClients
	cfg.logFormat = *logFormat
	cfg.logLevel = *logLevel
	cfg.metricsAddr = *metricsAddr
	cfg.logMetricsEvery = *logMetricsEvery
	cfg.mdnsEnable = *mdnsEnable
	cfg.mdnsName = *mdnsName

	if err := applyEnvOverrides(cfg, setFlags); err != nil {
		fmt.Printf("environment override error: %v\n", err)
		return nil, *showVersion
	}
	if err := cfg.validate(); err != nil {
		fmt.Printf("configuration error: %v\n", err)
		return nil, *showVersion
	}
	return cfg, *showVersion
}

// validate performs basic semantic validation of the parsed configuration.
// It does not attempt to open devices or listeners -- only checks values.
func (c *appConfig) validate() error {
	if c == nil {
		return errors.New("nil config")
	}
	switch c.backend {
	case "serial", "tcp":
	default:
		return fmt.Errorf("invalid backend: %s", c.backend)
	}
	if c.tier != "standard" {
		return fmt.Errorf("invalid tier: %s (phyllo-gateway's Pub/Sub bridge requires standard)", c.tier)
	}
	switch c.logFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log-format: %s", c.logFormat)
	}
	switch c.logLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log-level: %s", c.logLevel)
	}
	if c.backend == "serial" {
		if c.baud <= 0 {
			return fmt.Errorf("baud must be > 0 (got %d)", c.baud)
		}
		if c.serialReadTO <= 0 {
			return errors.New("serial-read-timeout must be > 0")
		}
	}
	if c.backend == "tcp" && c.tcpDial == "" {
		return errors.New("tcp-dial is required when --backend=tcp")
	}
	if c.tcpKeepaliveIdle <= 0 {
		return errors.New("tcp-keepalive-idle must be > 0")
	}
	if c.tcpKeepaliveIntvl <= 0 {
		return errors.New("tcp-keepalive-interval must be > 0")
	}
	if c.clientReadTO <= 0 {
		return errors.New("client-read-timeout must be > 0")
	}
	if c.maxClients < 0 {
		return errors.New("max-clients must be >= 0")
	}
	return nil
}

// applyEnvOverrides maps PHYLLO_GATEWAY_* environment variables to config
// fields unless the corresponding flag was explicitly set (flag wins).
func applyEnvOverrides(c *appConfig, set map[string]struct{}) error {
	var firstErr error
	get := func(k string) (string, bool) { v, ok := os.LookupEnv(k); return strings.TrimSpace(v), ok }
	setStr := func(flagName, env string, dst *string) {
		if _, ok := set[flagName]; ok {
			return
		}
		if v, ok := get(env); ok && v != "" {
			*dst = v
		}
	}
	setInt := func(flagName, env string, dst *int) {
		if _, ok := set[flagName]; ok {
			return
		}
		if v, ok := get(env); ok && v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			} else if firstErr == nil {
				firstErr = fmt.Errorf("invalid %s: %w", env, err)
			}
		}
	}
	setDuration := func(flagName, env string, dst *time.Duration) {
		if _, ok := set[flagName]; ok {
			return
		}
		if v, ok := get(env); ok && v != "" {
			if d, err := time.ParseDuration(v); err == nil {
				*dst = d
			} else if firstErr == nil {
				firstErr = fmt.Errorf("invalid %s: %w", env, err)
			}
		}
	}
	setBool := func(flagName, env string, dst *bool) {
		if _, ok := set[flagName]; ok {
			return
		}
		if v, ok := get(env); ok && v != "" {
			switch strings.ToLower(v) {
			case "1", "true", "yes", "on":
				*dst = true
			case "0", "false", "no", "off":
				*dst = false
			}
		}
	}

	setStr("backend", "PHYLLO_GATEWAY_BACKEND", &c.backend)
	setStr("serial", "PHYLLO_GATEWAY_SERIAL", &c.serialDev)
	setInt("baud", "PHYLLO_GATEWAY_BAUD", &c.baud)
	setDuration("serial-read-timeout", "PHYLLO_GATEWAY_SERIAL_READ_TIMEOUT", &c.serialReadTO)
	setStr("tcp-dial", "PHYLLO_GATEWAY_TCP_DIAL", &c.tcpDial)
	setDuration("tcp-keepalive-idle", "PHYLLO_GATEWAY_TCP_KEEPALIVE_IDLE", &c.tcpKeepaliveIdle)
	setDuration("tcp-keepalive-interval", "PHYLLO_GATEWAY_TCP_KEEPALIVE_INTERVAL", &c.tcpKeepaliveIntvl)
	setStr("tier", "PHYLLO_GATEWAY_TIER", &c.tier)
	setStr("listen", "PHYLLO_GATEWAY_LISTEN", &c.listenAddr)
	setDuration("client-read-timeout", "PHYLLO_GATEWAY_CLIENT_READ_TIMEOUT", &c.clientReadTO)
	setInt("max-clients", "PHYLLO_GATEWAY_MAX_CLIENTS", &c.maxClients)
	setStr("log-format", "PHYLLO_GATEWAY_LOG_FORMAT", &c.logFormat)
	setStr("log-level", "PHYLLO_GATEWAY_LOG_LEVEL", &c.logLevel)
	setStr("metrics-addr", "PHYLLO_GATEWAY_METRICS", &c.metricsAddr)
	setDuration("log-metrics-interval", "PHYLLO_GATEWAY_LOG_METRICS_INTERVAL", &c.logMetricsEvery)
	setBool("mdns-enable", "PHYLLO_GATEWAY_MDNS_ENABLE", &c.mdnsEnable)
	setStr("mdns-name", "PHYLLO_GATEWAY_MDNS_NAME", &c.mdnsName)

	return firstErr
}
