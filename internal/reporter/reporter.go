// Package reporter delivers dissected records to their destinations.
package reporter

import (
	"context"
	"errors"
	"log/slog"

	"firestige.xyz/dissector/internal/core"
	"firestige.xyz/dissector/internal/export"
	"firestige.xyz/dissector/internal/metrics"
)

// Reporter receives records from the pipeline. Report may be called
// concurrently from several workers.
type Reporter interface {
	Name() string
	Report(ctx context.Context, r *core.Record) error
	Flush(ctx context.Context) error
	Close(ctx context.Context) error
}

// envelope is the serialised form of a record: the exported document plus
// its labels.
type envelope struct {
	*export.Document `yaml:",inline"`
	Labels           core.Labels `json:"labels,omitempty" yaml:"labels,omitempty"`
}

// document returns the exported body of r, building a minimal one when the
// record carries no tree.
func document(r *core.Record) *export.Document {
	if doc, ok := r.Body.(*export.Document); ok {
		return doc
	}
	doc := &export.Document{
		Number:    r.Number,
		Timestamp: r.Timestamp,
		Protocol:  r.Protocol,
		Info:      r.Info,
	}
	if r.SrcAddr.IsValid() {
		doc.Source = r.SrcAddr.String()
		doc.Destination = r.DstAddr.String()
	}
	return doc
}

var errNilRecord = errors.New("nil record")

// Fanout forwards every record to a set of reporters. A failing reporter
// is counted and logged; the others still receive the record.
type Fanout struct {
	reporters []Reporter
}

// NewFanout returns a Fanout over reporters.
func NewFanout(reporters ...Reporter) *Fanout {
	return &Fanout{reporters: reporters}
}

// Len returns the number of reporters.
func (f *Fanout) Len() int { return len(f.reporters) }

// Report implements the pipeline's report step.
func (f *Fanout) Report(ctx context.Context, r *core.Record) error {
	var errs []error
	for _, rep := range f.reporters {
		if err := rep.Report(ctx, r); err != nil {
			metrics.ReporterErrorsTotal.WithLabelValues(rep.Name(), "report").Inc()
			slog.Warn("reporter failed", "reporter", rep.Name(), "number", r.Number, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Flush flushes every reporter.
func (f *Fanout) Flush(ctx context.Context) error {
	var errs []error
	for _, rep := range f.reporters {
		if err := rep.Flush(ctx); err != nil {
			metrics.ReporterErrorsTotal.WithLabelValues(rep.Name(), "flush").Inc()
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close flushes and closes every reporter.
func (f *Fanout) Close(ctx context.Context) error {
	var errs []error
	for _, rep := range f.reporters {
		if err := rep.Close(ctx); err != nil {
			metrics.ReporterErrorsTotal.WithLabelValues(rep.Name(), "close").Inc()
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
