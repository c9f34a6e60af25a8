package main

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ethanjli/phyllo-go/internal/metrics"
)

func startMetricsLogger(ctx context.Context, interval time.Duration, l *slog.Logger, wg *sync.WaitGroup) {
	if interval <= 0 {
		return
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				snap := metrics.Snap()
				l.Info("metrics_snapshot",
					"chunk_overflows", snap.ChunkOverflows,
					"frame_decode_errs", snap.FrameDecodeErrs,
					"datagram_rx", snap.DatagramRx,
					"datagram_tx", snap.DatagramTx,
					"crc_failures", snap.CRCFailures,
					"arq_retransmits", snap.ARQRetransmits,
					"arq_resets", snap.ARQResets,
					"arq_duplicates", snap.ARQDuplicates,
					"document_codec_errs", snap.DocumentCodecErr,
					"router_dispatches", snap.RouterDispatches,
					"router_unmatched", snap.RouterUnmatched,
					"errors", snap.Errors,
				)
			case <-ctx.Done():
				return
			}
		}
	}()
}
