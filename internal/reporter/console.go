package reporter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"firestige.xyz/dissector/internal/core"
	"firestige.xyz/dissector/internal/export"
)

// Console writes records to a stream in text, JSON or YAML.
type Console struct {
	mu            sync.Mutex
	w             io.Writer
	format        export.Format
	reportedCount atomic.Uint64
}

// NewConsole creates a console reporter writing to w.
func NewConsole(w io.Writer, format export.Format) *Console {
	return &Console{w: w, format: format}
}

// Name returns the reporter name.
func (c *Console) Name() string { return "console" }

// Reported returns the number of records written.
func (c *Console) Reported() uint64 { return c.reportedCount.Load() }

// Report writes one record. Output of concurrent calls is not interleaved.
func (c *Console) Report(ctx context.Context, r *core.Record) error {
	if r == nil {
		return errNilRecord
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	switch c.format {
	case export.FormatJSON:
		err = json.NewEncoder(c.w).Encode(envelope{Document: document(r), Labels: r.Labels})
	case export.FormatYAML:
		if _, err = io.WriteString(c.w, "---\n"); err != nil {
			break
		}
		enc := yaml.NewEncoder(c.w)
		enc.SetIndent(2)
		if err = enc.Encode(envelope{Document: document(r), Labels: r.Labels}); err == nil {
			err = enc.Close()
		}
	default:
		err = document(r).WriteText(c.w)
	}
	if err != nil {
		return fmt.Errorf("console write failed: %w", err)
	}
	c.reportedCount.Add(1)
	return nil
}

// Flush is a no-op; every record is written synchronously.
func (c *Console) Flush(ctx context.Context) error { return nil }

// Close logs the number of records written.
func (c *Console) Close(ctx context.Context) error {
	slog.Debug("console reporter stopped", "total_reported", c.reportedCount.Load())
	return nil
}
