package reporter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/compress"

	"firestige.xyz/dissector/internal/config"
	"firestige.xyz/dissector/internal/core"
	"firestige.xyz/dissector/internal/metrics"
)

const (
	defaultBatchSize    = 100
	defaultBatchTimeout = time.Second
	defaultMaxAttempts  = 3
)

// messageWriter is the part of kafka.Writer the reporter uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka publishes records as JSON messages keyed by flow, so every packet
// of a flow lands on the same partition.
type Kafka struct {
	writer messageWriter
	topic  string

	reportedCount atomic.Uint64
	errorCount    atomic.Uint64
}

// NewKafka creates a Kafka reporter from validated configuration. The
// writer is asynchronous; delivery failures are counted from its
// completion callback.
func NewKafka(cfg config.KafkaReporterConfig) (*Kafka, error) {
	codec, err := compression(cfg.Compression)
	if err != nil {
		return nil, err
	}
	k := &Kafka{topic: cfg.Topic}
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchSize:    cfg.BatchSize,
		BatchTimeout: config.Duration(cfg.BatchTimeout),
		BatchBytes:   int64(cfg.MaxMessageBytes),
		MaxAttempts:  defaultMaxAttempts,
		Compression:  codec,
		Async:        true,
		Completion:   k.completed,
	}
	if w.BatchSize <= 0 {
		w.BatchSize = defaultBatchSize
	}
	if w.BatchTimeout <= 0 {
		w.BatchTimeout = defaultBatchTimeout
	}
	k.writer = w
	slog.Info("kafka reporter started",
		"brokers", cfg.Brokers,
		"topic", cfg.Topic,
		"batch_size", w.BatchSize,
		"batch_timeout", w.BatchTimeout,
		"compression", cfg.Compression,
	)
	return k, nil
}

func newKafka(w messageWriter, topic string) *Kafka {
	return &Kafka{writer: w, topic: topic}
}

func (k *Kafka) completed(msgs []kafka.Message, err error) {
	if err != nil {
		k.errorCount.Add(uint64(len(msgs)))
		metrics.ReporterErrorsTotal.WithLabelValues(k.Name(), "delivery").Add(float64(len(msgs)))
		slog.Warn("kafka delivery failed", "topic", k.topic, "messages", len(msgs), "error", err)
	}
}

func compression(name string) (kafka.Compression, error) {
	switch name {
	case "none", "":
		return 0, nil
	case "gzip":
		return compress.Gzip, nil
	case "snappy":
		return compress.Snappy, nil
	case "lz4":
		return compress.Lz4, nil
	case "zstd":
		return compress.Zstd, nil
	}
	return 0, fmt.Errorf("invalid compression type %q: %w", name, core.ErrConfigInvalid)
}

// Errors returns the number of records that failed to serialise or deliver.
func (k *Kafka) Errors() uint64 { return k.errorCount.Load() }

// Name returns the reporter name.
func (k *Kafka) Name() string { return "kafka" }

// Report publishes one record. Labels travel as message headers.
func (k *Kafka) Report(ctx context.Context, r *core.Record) error {
	msg, err := message(r)
	if err != nil {
		k.errorCount.Add(1)
		return err
	}
	if err := k.writer.WriteMessages(ctx, msg); err != nil {
		k.errorCount.Add(1)
		return fmt.Errorf("kafka write failed: %w", err)
	}
	k.reportedCount.Add(1)
	return nil
}

func message(r *core.Record) (kafka.Message, error) {
	if r == nil {
		return kafka.Message{}, errNilRecord
	}
	value, err := json.Marshal(envelope{Document: document(r), Labels: r.Labels})
	if err != nil {
		return kafka.Message{}, fmt.Errorf("serialize record failed: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(r.Labels[core.LabelFlow]),
		Value: value,
		Time:  r.Timestamp,
	}
	if len(r.Labels) > 0 {
		msg.Headers = make([]kafka.Header, 0, len(r.Labels))
		for key, v := range r.Labels {
			msg.Headers = append(msg.Headers, kafka.Header{Key: key, Value: []byte(v)})
		}
	}
	return msg, nil
}

// Flush is a no-op; the writer flushes batches on size or timeout and
// Close drains what is left.
func (k *Kafka) Flush(ctx context.Context) error { return nil }

// Close flushes pending messages and closes the writer.
func (k *Kafka) Close(ctx context.Context) error {
	if err := k.writer.Close(); err != nil {
		slog.Error("error closing kafka writer", "error", err)
		return err
	}
	slog.Info("kafka reporter stopped",
		"total_reported", k.reportedCount.Load(),
		"total_errors", k.errorCount.Load(),
	)
	return nil
}
