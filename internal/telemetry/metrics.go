// Package telemetry is the observability surface for the host process:
// Prometheus counters/gauges/histograms exposed on an internal debug
// mux, following the same promauto and bounded-label conventions as the
// stack this was ported from.
package telemetry

import (
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics with bounded cardinality — no per-entity labels, since a
// match's entity count (boxes, walls) is not worth a label dimension;
// the only player label carries one of the MaxPlayers player numbers.
var (
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rollback_tick_duration_seconds",
		Help:    "Time spent advancing the speculative and confirmed worlds by one tick",
		Buckets: []float64{0.0005, 0.001, 0.002, 0.005, 0.01, 0.02},
	})

	replayFrames = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rollback_replay_frames",
		Help:    "Number of frames replayed by SimulateToCurrentFrame per tick",
		Buckets: []float64{1, 2, 4, 8, 16, 32},
	})

	divergenceDetected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rollback_divergence_detected_total",
		Help: "Confirmed-frame checksum mismatches detected against a peer",
	}, []string{"player"}) // bounded: player numbers, never free text

	predictionMiss = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rollback_prediction_miss_total",
		Help: "Frames simulated with a predicted (not received) input",
	}, []string{"player"})

	inputPacketsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rollback_input_packets_total",
		Help: "Total player input packets accepted by the host",
	})

	inputPacketsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rollback_input_packets_rejected_total",
		Help: "Input packets rejected before reaching the simulation",
	}, []string{"reason"}) // bounded: "rate_limit", "malformed", "unknown_player"
)

// RecordTick records the wall-clock time a single host tick took.
func RecordTick(d time.Duration) {
	tickDuration.Observe(d.Seconds())
}

// RecordReplay records how many frames a SimulateToCurrentFrame call replayed.
func RecordReplay(frames int) {
	replayFrames.Observe(float64(frames))
}

// RecordDivergence records a confirmed-checksum mismatch for player.
func RecordDivergence(player string) {
	divergenceDetected.WithLabelValues(player).Inc()
}

// RecordPredictionMiss records that player's frame was simulated with a
// predicted rather than received input.
func RecordPredictionMiss(player string) {
	predictionMiss.WithLabelValues(player).Inc()
}

// RecordInputAccepted records one accepted input packet.
func RecordInputAccepted() {
	inputPacketsTotal.Inc()
}

// RecordInputRejected records one rejected input packet, tagged with
// the (bounded) rejection reason.
func RecordInputRejected(reason string) {
	inputPacketsRejected.WithLabelValues(reason).Inc()
}

// DebugServerConfig configures the internal metrics/pprof server.
type DebugServerConfig struct {
	Enabled    bool
	ListenAddr string // should stay loopback-only in production
}

// DefaultDebugServerConfig returns safe defaults: enabled, bound to
// localhost.
func DefaultDebugServerConfig() DebugServerConfig {
	return DebugServerConfig{
		Enabled:    true,
		ListenAddr: "127.0.0.1:9090",
	}
}

// StartDebugServer starts the metrics/pprof server in the background.
// It never blocks the caller; a listen failure is only logged, since a
// host process shouldn't die because its observability endpoint
// couldn't bind.
func StartDebugServer(cfg DebugServerConfig, logf func(format string, args ...any)) {
	if !cfg.Enabled {
		return
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	go func() {
		logf("telemetry: debug server listening on %s", cfg.ListenAddr)
		if err := http.ListenAndServe(cfg.ListenAddr, mux); err != nil {
			logf("telemetry: debug server error: %v", err)
		}
	}()
}
