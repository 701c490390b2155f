// Package metrics implements Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CaptureFramesTotal counts frames read from a capture source
	CaptureFramesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dissector_capture_frames_total",
			Help: "Total number of frames read from capture sources",
		},
		[]string{"source"},
	)

	// LinkSkippedTotal counts frames that did not yield a UDP payload
	LinkSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dissector_link_skipped_total",
			Help: "Total number of frames skipped by the link layer decoder",
		},
		[]string{"reason"}, // not_udp | fragment | unsupported | malformed | truncated
	)

	// PacketsDissectedTotal counts dissected packets per resolved protocol
	PacketsDissectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dissector_packets_dissected_total",
			Help: "Total number of packets dissected",
		},
		[]string{"protocol"},
	)

	// DiagnosticsTotal counts diagnostics raised while dissecting
	DiagnosticsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dissector_diagnostics_total",
			Help: "Total number of diagnostics raised during dissection",
		},
		[]string{"protocol", "severity", "code"},
	)

	// OpcodesTotal counts opcodes seen per protocol
	OpcodesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dissector_opcodes_total",
			Help: "Total number of messages seen per opcode",
		},
		[]string{"protocol", "opcode"},
	)

	// DissectLatencySeconds measures one Engine.Dissect call
	DissectLatencySeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dissector_dissect_latency_seconds",
			Help:    "Latency of packet dissection in seconds",
			Buckets: prometheus.ExponentialBuckets(0.000001, 2, 20), // 1µs to ~1s
		},
		[]string{"protocol"},
	)

	// PipelineDropsTotal counts packets dropped because a worker queue was full
	PipelineDropsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dissector_pipeline_drops_total",
			Help: "Total number of packets dropped by the pipeline",
		},
		[]string{"worker"},
	)

	// ArtNetNodes tracks nodes currently known from ArtPollReply
	ArtNetNodes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dissector_artnet_nodes",
			Help: "Number of Art-Net nodes in the node directory",
		},
	)

	// ReporterErrorsTotal counts reporter errors by name and error type
	ReporterErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dissector_reporter_errors_total",
			Help: "Total number of reporter errors",
		},
		[]string{"reporter", "error_type"},
	)
)
