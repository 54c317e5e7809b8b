// Package kafkaio publishes frames to a Kafka topic, one JSON message per
// row keyed by the primary-key value.
package kafkaio

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"

	ds "github.com/wdm0006/baddata/pkg/dataset"
	"github.com/wdm0006/baddata/pkg/io/jsonlio"
)

// DefaultBatchSize bounds the messages handed to the producer per call.
const DefaultBatchSize = 1000

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Writer is a dataset.ChunkSink producing to one topic.
type Writer struct {
	ctx       context.Context
	w         messageWriter
	headers   []kafka.Header
	batchSize int
	now       func() time.Time
	Rows      int
}

type Option func(*Writer)

// WithHeader adds a header to every message.
func WithHeader(key, value string) Option {
	return func(w *Writer) {
		w.headers = append(w.headers, kafka.Header{Key: key, Value: []byte(value)})
	}
}

func WithBatchSize(n int) Option {
	return func(w *Writer) {
		if n > 0 {
			w.batchSize = n
		}
	}
}

// NewWriter returns a producer for topic on brokers. ctx bounds every send.
func NewWriter(ctx context.Context, brokers []string, topic string, opts ...Option) *Writer {
	kw := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}
	return newWriter(ctx, kw, opts...)
}

func newWriter(ctx context.Context, mw messageWriter, opts ...Option) *Writer {
	w := &Writer{ctx: ctx, w: mw, batchSize: DefaultBatchSize, now: time.Now}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Messages converts f into Kafka messages.
func Messages(f *ds.Frame, headers []kafka.Header, at time.Time) ([]kafka.Message, error) {
	key := -1
	for i, cs := range f.Schema().Columns {
		if cs.Role == ds.RoleKey {
			key = i
			break
		}
	}
	out := make([]kafka.Message, f.Rows())
	for r := range out {
		v, err := jsonlio.EncodeRow(f, r)
		if err != nil {
			return nil, fmt.Errorf("encode row %d: %w", r, err)
		}
		m := kafka.Message{Value: v, Headers: headers, Time: at}
		if key >= 0 {
			if k, ok := f.FormatCell(r, key); ok {
				m.Key = []byte(k)
			}
		}
		out[r] = m
	}
	return out, nil
}

func (w *Writer) Write(f *ds.Frame) error {
	msgs, err := Messages(f, w.headers, w.now())
	if err != nil {
		return err
	}
	for start := 0; start < len(msgs); start += w.batchSize {
		end := min(start+w.batchSize, len(msgs))
		if err := w.w.WriteMessages(w.ctx, msgs[start:end]...); err != nil {
			return fmt.Errorf("kafka produce: %w", err)
		}
	}
	w.Rows += len(msgs)
	log.WithField("messages", len(msgs)).Debug("produced chunk")
	return nil
}

func (w *Writer) Close() error { return w.w.Close() }
