// Package metrics exposes Prometheus counters/gauges for every layer of the
// stack plus a locally mirrored snapshot for cheap in-process logging.
package metrics

import (
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/ethanjli/phyllo-go/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus counters and gauges, one family per layer.
var (
	ChunkOverflows = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chunk_overflow_total",
		Help: "Total bytes dropped because a pending chunk exceeded its size limit.",
	})
	FrameDecodeErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "frame_decode_errors_total",
		Help: "Total frames rejected by COBS decoding (zero byte inside a frame, bad run length).",
	})
	DatagramRx = promauto.NewCounter(prometheus.CounterOpts{
		Name: "datagram_rx_total",
		Help: "Total datagrams decoded from the frame layer.",
	})
	DatagramTx = promauto.NewCounter(prometheus.CounterOpts{
		Name: "datagram_tx_total",
		Help: "Total datagrams encoded to the frame layer.",
	})
	CRCFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crc_failures_total",
		Help: "Total validated datagrams rejected due to a CRC-32 mismatch.",
	})
	ARQRetransmits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arq_retransmits_total",
		Help: "Total reliable-buffer in-flight window retransmissions (after a retransmit timeout or a NAK).",
	})
	ARQResets = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arq_resets_total",
		Help: "Total reliable-buffer links reset after exceeding the retry budget.",
	})
	ARQDuplicates = promauto.NewCounter(prometheus.CounterOpts{
		Name: "arq_duplicates_total",
		Help: "Total segments received out of the expected sequence window and discarded.",
	})
	DocumentCodecErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "document_codec_errors_total",
		Help: "Total MessagePack encode/decode failures in the presentation layer.",
	})
	RouterDispatches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "router_dispatches_total",
		Help: "Total messages handed to at least one matching endpoint handler.",
	})
	RouterUnmatched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "router_unmatched_total",
		Help: "Total messages matching no registered endpoint filter.",
	})
	LinkActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "link_active",
		Help: "1 if the composed stack's underlying port is open, else 0.",
	})
	BuildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "build_info",
		Help: "Build metadata (value is always 1).",
	}, []string{"version", "commit", "date"})
	Errors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "errors_total",
		Help: "Error counters by subsystem.",
	}, []string{"where"})

	readinessMu sync.RWMutex
	readinessFn func() bool
)

// Error label constants (stable label values to bound cardinality)
const (
	ErrPortRead   = "port_read"
	ErrPortWrite  = "port_write"
	ErrFrameSend  = "frame_send"
	ErrCRCSend    = "crc_send"
	ErrARQSend    = "arq_send"
	ErrDocEncode  = "document_encode"
	ErrDocDecode  = "document_decode"
	ErrPubSubSend = "pubsub_send"
)

// StartHTTP serves Prometheus metrics and a readiness probe on addr.
func StartHTTP(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if IsReady() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready\n"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready\n"))
	})

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	go func() {
		logging.L().Info("metrics_listen", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.L().Error("metrics_http_error", "error", err)
		}
	}()
	return srv
}

// Local mirrored counters for cheap in-process logging without scraping.
var (
	localChunkOverflow   uint64
	localFrameDecodeErr  uint64
	localDatagramRx      uint64
	localDatagramTx      uint64
	localCRCFail         uint64
	localARQRetransmit   uint64
	localARQReset        uint64
	localARQDuplicate    uint64
	localDocCodecErr     uint64
	localRouterDispatch  uint64
	localRouterUnmatched uint64
	localErrors          uint64
)

// Snapshot is a cheap copy of local counters.
type Snapshot struct {
	ChunkOverflows   uint64
	FrameDecodeErrs  uint64
	DatagramRx       uint64
	DatagramTx       uint64
	CRCFailures      uint64
	ARQRetransmits   uint64
	ARQResets        uint64
	ARQDuplicates    uint64
	DocumentCodecErr uint64
	RouterDispatches uint64
	RouterUnmatched  uint64
	Errors           uint64
}

func Snap() Snapshot {
	return Snapshot{
		ChunkOverflows:   atomic.LoadUint64(&localChunkOverflow),
		FrameDecodeErrs:  atomic.LoadUint64(&localFrameDecodeErr),
		DatagramRx:       atomic.LoadUint64(&localDatagramRx),
		DatagramTx:       atomic.LoadUint64(&localDatagramTx),
		CRCFailures:      atomic.LoadUint64(&localCRCFail),
		ARQRetransmits:   atomic.LoadUint64(&localARQRetransmit),
		ARQResets:        atomic.LoadUint64(&localARQReset),
		ARQDuplicates:    atomic.LoadUint64(&localARQDuplicate),
		DocumentCodecErr: atomic.LoadUint64(&localDocCodecErr),
		RouterDispatches: atomic.LoadUint64(&localRouterDispatch),
		RouterUnmatched:  atomic.LoadUint64(&localRouterUnmatched),
		Errors:           atomic.LoadUint64(&localErrors),
	}
}

// IncChunkOverflow records a dropped byte in a pending chunk (L1).
func IncChunkOverflow() {
	ChunkOverflows.Inc()
	atomic.AddUint64(&localChunkOverflow, 1)
}

// IncFrameDecodeError records a rejected COBS frame (L2).
func IncFrameDecodeError() {
	FrameDecodeErrors.Inc()
	atomic.AddUint64(&localFrameDecodeErr, 1)
}

// IncDatagramRx records a decoded inbound datagram (L3).
func IncDatagramRx() {
	DatagramRx.Inc()
	atomic.AddUint64(&localDatagramRx, 1)
}

// IncDatagramTx records an encoded outbound datagram (L3).
func IncDatagramTx() {
	DatagramTx.Inc()
	atomic.AddUint64(&localDatagramTx, 1)
}

// IncCRCFailure records a validated datagram rejected by CRC-32 (L4).
func IncCRCFailure() {
	CRCFailures.Inc()
	atomic.AddUint64(&localCRCFail, 1)
}

// IncARQRetransmit records one in-flight window resend after a retransmit
// timeout or a NAK (L5).
func IncARQRetransmit() {
	ARQRetransmits.Inc()
	atomic.AddUint64(&localARQRetransmit, 1)
}

// IncARQReset records a link reset after exhausting the retry budget (L5).
func IncARQReset() {
	ARQResets.Inc()
	atomic.AddUint64(&localARQReset, 1)
}

// IncARQDuplicate records a segment outside the receiver's window (L5).
func IncARQDuplicate() {
	ARQDuplicates.Inc()
	atomic.AddUint64(&localARQDuplicate, 1)
}

// IncDocumentCodecError records a MessagePack encode/decode failure (L6).
func IncDocumentCodecError() {
	DocumentCodecErrors.Inc()
	atomic.AddUint64(&localDocCodecErr, 1)
}

// IncRouterDispatch records a message delivered to at least one endpoint (L8).
func IncRouterDispatch() {
	RouterDispatches.Inc()
	atomic.AddUint64(&localRouterDispatch, 1)
}

// IncRouterUnmatched records a message matching no registered filter (L8).
func IncRouterUnmatched() {
	RouterUnmatched.Inc()
	atomic.AddUint64(&localRouterUnmatched, 1)
}

// SetLinkActive reports whether the underlying port is currently open.
func SetLinkActive(active bool) {
	if active {
		LinkActive.Set(1)
		return
	}
	LinkActive.Set(0)
}

// IncError increments a labeled error counter.
func IncError(label string) {
	Errors.WithLabelValues(label).Inc()
	atomic.AddUint64(&localErrors, 1)
}

// InitBuildInfo sets the build info gauge (should be called once at startup).
func InitBuildInfo(version, commit, date string) {
	BuildInfo.WithLabelValues(version, commit, date).Set(1)
	for _, lbl := range []string{
		ErrPortRead, ErrPortWrite, ErrFrameSend, ErrCRCSend,
		ErrARQSend, ErrDocEncode, ErrDocDecode, ErrPubSubSend,
	} {
		Errors.WithLabelValues(lbl).Add(0)
	}
}

// SetReadinessFunc registers a function used by /ready and IsReady.
func SetReadinessFunc(fn func() bool) { readinessMu.Lock(); readinessFn = fn; readinessMu.Unlock() }

// IsReady invokes the registered readiness function if present.
func IsReady() bool {
	readinessMu.RLock()
	fn := readinessFn
	readinessMu.RUnlock()
	if fn == nil {
		return true
	}
	return fn()
}

// Ready is a concise alias used at call sites.
func Ready() bool { return IsReady() }
