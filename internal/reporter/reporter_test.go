package reporter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/netip"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"firestige.xyz/dissector/internal/config"
	"firestige.xyz/dissector/internal/core"
	"firestige.xyz/dissector/internal/export"
)

func record() *core.Record {
	return &core.Record{
		Number:    9,
		Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		SrcAddr:   netip.MustParseAddrPort("10.0.0.1:6454"),
		DstAddr:   netip.MustParseAddrPort("10.0.0.2:6454"),
		Protocol:  "artnet",
		Info:      "OpPoll",
		Labels: core.Labels{
			core.LabelProtocol: "artnet",
			core.LabelOpcode:   "OpPoll",
			core.LabelFlow:     "10.0.0.1:6454>10.0.0.2:6454",
		},
		Body: &export.Document{
			Number:   9,
			Protocol: "artnet",
			Opcode:   "OpPoll",
			Info:     "OpPoll",
			Source:   "10.0.0.1:6454",
			Tree: &export.Node{
				Name: "Art-Net", Kind: "protocol", Text: "Art-Net, OpPoll",
				Children: []*export.Node{{Name: "Header", Kind: "subtree", Text: "Header"}},
			},
		},
	}
}

func TestConsoleText(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, export.FormatText)
	require.NoError(t, c.Report(context.Background(), record()))

	lines := strings.Split(buf.String(), "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.True(t, strings.HasPrefix(lines[0], "#9 "))
	assert.Equal(t, "Art-Net, OpPoll", lines[1])
	assert.Equal(t, "    Header", lines[2])
	assert.EqualValues(t, 1, c.Reported())
}

func TestConsoleJSON(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, export.FormatJSON)
	require.NoError(t, c.Report(context.Background(), record()))
	require.NoError(t, c.Report(context.Background(), record()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &got))
	assert.Equal(t, "artnet", got["protocol"])
	assert.Equal(t, "OpPoll", got["opcode"])
	labels := got["labels"].(map[string]any)
	assert.Equal(t, "OpPoll", labels[core.LabelOpcode])
}

func TestConsoleYAML(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, export.FormatYAML)
	require.NoError(t, c.Report(context.Background(), record()))

	assert.True(t, strings.HasPrefix(buf.String(), "---\n"))
	var got map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "artnet", got["protocol"])
	assert.Contains(t, got, "labels")
	assert.Contains(t, got, "tree")
}

func TestConsoleWithoutBody(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, export.FormatText)
	r := record()
	r.Body = nil
	require.NoError(t, c.Report(context.Background(), r))
	assert.True(t, strings.HasPrefix(buf.String(), "#9 12:00:00.000000 10.0.0.1:6454 → 10.0.0.2:6454 artnet OpPoll\n"))
}

func TestConsoleNilRecord(t *testing.T) {
	c := NewConsole(&bytes.Buffer{}, export.FormatText)
	assert.Error(t, c.Report(context.Background(), nil))
	assert.Zero(t, c.Reported())
}

func TestConsoleConcurrent(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, export.FormatJSON)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				_ = c.Report(context.Background(), record())
			}
		}()
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 200)
	for _, l := range lines {
		assert.True(t, json.Valid([]byte(l)))
	}
}

type mockWriter struct {
	mock.Mock
}

func (m *mockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	return m.Called(ctx, msgs).Error(0)
}

func (m *mockWriter) Close() error {
	return m.Called().Error(0)
}

func TestKafkaReport(t *testing.T) {
	var sent []kafka.Message
	w := new(mockWriter)
	w.On("WriteMessages", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = append(sent, args.Get(1).([]kafka.Message)...) }).
		Return(nil)
	w.On("Close").Return(nil)

	k := newKafka(w, "dissector-packets")
	require.NoError(t, k.Report(context.Background(), record()))

	require.Len(t, sent, 1)
	msg := sent[0]
	assert.Equal(t, "10.0.0.1:6454>10.0.0.2:6454", string(msg.Key))
	assert.Equal(t, record().Timestamp, msg.Time)

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "OpPoll", headers[core.LabelOpcode])
	assert.Len(t, headers, 3)

	var got map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, "artnet", got["protocol"])
	assert.EqualValues(t, 9, got["number"])

	require.NoError(t, k.Close(context.Background()))
	w.AssertExpectations(t)
}

func TestKafkaReportErrors(t *testing.T) {
	w := new(mockWriter)
	w.On("WriteMessages", mock.Anything, mock.Anything).Return(errors.New("broker down")).Once()
	k := newKafka(w, "t")
	assert.Error(t, k.Report(context.Background(), record()))
	assert.Error(t, k.Report(context.Background(), nil))
	assert.EqualValues(t, 2, k.Errors())

	k.completed(make([]kafka.Message, 3), errors.New("timeout"))
	assert.EqualValues(t, 5, k.Errors())
	k.completed(make([]kafka.Message, 3), nil)
	assert.EqualValues(t, 5, k.Errors())
	w.AssertExpectations(t)
}

func TestNewKafka(t *testing.T) {
	tests := []struct {
		name        string
		compression string
		wantErr     bool
	}{
		{"none", "none", false},
		{"gzip", "gzip", false},
		{"snappy", "snappy", false},
		{"lz4", "lz4", false},
		{"zstd", "zstd", false},
		{"invalid", "brotli", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, err := NewKafka(config.KafkaReporterConfig{
				Brokers:      []string{"localhost:9092"},
				Topic:        "dissector-packets",
				Compression:  tt.compression,
				BatchTimeout: "200ms",
			})
			if tt.wantErr {
				assert.ErrorIs(t, err, core.ErrConfigInvalid)
				return
			}
			require.NoError(t, err)
			w := k.writer.(*kafka.Writer)
			assert.Equal(t, defaultBatchSize, w.BatchSize)
			assert.Equal(t, 200*time.Millisecond, w.BatchTimeout)
			assert.True(t, w.Async)
			require.NoError(t, k.Close(context.Background()))
		})
	}
}

type stubReporter struct {
	name     string
	err      error
	reported int
	flushed  bool
	closed   bool
}

func (s *stubReporter) Name() string { return s.name }
func (s *stubReporter) Report(context.Context, *core.Record) error {
	s.reported++
	return s.err
}
func (s *stubReporter) Flush(context.Context) error { s.flushed = true; return nil }
func (s *stubReporter) Close(context.Context) error { s.closed = true; return s.err }

func TestFanout(t *testing.T) {
	ok := &stubReporter{name: "ok"}
	bad := &stubReporter{name: "bad", err: errors.New("boom")}
	f := NewFanout(bad, ok)
	assert.Equal(t, 2, f.Len())

	err := f.Report(context.Background(), record())
	assert.ErrorContains(t, err, "boom")
	assert.Equal(t, 1, ok.reported)
	assert.Equal(t, 1, bad.reported)

	require.NoError(t, f.Flush(context.Background()))
	assert.True(t, ok.flushed)
	assert.Error(t, f.Close(context.Background()))
	assert.True(t, ok.closed)
	assert.True(t, bad.closed)
}
