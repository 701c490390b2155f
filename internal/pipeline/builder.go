package pipeline

import (
	"firestige.xyz/dissector/internal/core/decoder"
	"firestige.xyz/dissector/internal/export"
	"firestige.xyz/dissector/internal/source"
)

// Builder provides a fluent interface for building pipelines.
type Builder struct {
	config Config
}

// NewBuilder creates a new pipeline builder.
func NewBuilder() *Builder {
	return &Builder{
		config: Config{
			Workers:    1,
			BufferSize: 1024,
		},
	}
}

// WithSource sets the frame source.
func (b *Builder) WithSource(s source.Source) *Builder {
	b.config.Source = s
	return b
}

// WithEngine sets the dissection engine.
func (b *Builder) WithEngine(e *decoder.Engine) *Builder {
	b.config.Engine = e
	return b
}

// WithReporter sets the record sink.
func (b *Builder) WithReporter(r Reporter) *Builder {
	b.config.Reporter = r
	return b
}

// WithNodes enables the Art-Net node directory.
func (b *Builder) WithNodes(d *NodeDirectory) *Builder {
	b.config.Nodes = d
	return b
}

// WithWorkers sets the number of dissection workers.
func (b *Builder) WithWorkers(n int) *Builder {
	b.config.Workers = n
	return b
}

// WithBufferSize sets the per-worker queue capacity.
func (b *Builder) WithBufferSize(size int) *Builder {
	b.config.BufferSize = size
	return b
}

// WithExport sets how record bodies are rendered.
func (b *Builder) WithExport(opts export.Options) *Builder {
	b.config.Export = opts
	return b
}

// WithProtocol forces every packet to be dissected as protocol.
func (b *Builder) WithProtocol(protocol string) *Builder {
	b.config.Protocol = protocol
	return b
}

// WithLimit stops the pipeline after n frames.
func (b *Builder) WithLimit(n uint64) *Builder {
	b.config.Limit = n
	return b
}

// WithDropWhenFull drops packets instead of blocking on full queues.
func (b *Builder) WithDropWhenFull(drop bool) *Builder {
	b.config.DropWhenFull = drop
	return b
}

// Build creates the pipeline.
func (b *Builder) Build() *Pipeline {
	return New(b.config)
}
