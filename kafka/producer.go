package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/kbukum/riv/errors"
	"github.com/kbukum/riv/logger"
	"github.com/kbukum/riv/resilience"
)

// MessageWriter is the part of kafka-go's Writer the producer uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Producer writes messages to the configured topic with retries.
type Producer struct {
	writer MessageWriter
	stats  func() kafkago.WriterStats
	cfg    Config
	log    *logger.Logger
	mu     sync.RWMutex
	closed bool
}

// ProducerOption configures a Producer.
type ProducerOption func(*Producer)

// WithWriter replaces the kafka-go writer, e.g. with an in-memory fake.
func WithWriter(w MessageWriter) ProducerOption {
	return func(p *Producer) { p.writer = w }
}

// NewProducer validates cfg and builds the writer.
func NewProducer(cfg Config, log *logger.Logger, opts ...ProducerOption) (*Producer, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	p := &Producer{cfg: cfg, log: log.WithComponent("kafka.producer")}
	for _, opt := range opts {
		opt(p)
	}
	if p.writer != nil {
		return p, nil
	}

	transport, err := NewTransport(&p.cfg)
	if err != nil {
		return nil, err
	}
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(p.cfg.Brokers...),
		Topic:        p.cfg.Topic,
		Transport:    transport,
		Balancer:     &kafkago.LeastBytes{},
		BatchSize:    p.cfg.BatchSize,
		BatchTimeout: ParseDuration(p.cfg.BatchTimeout),
		RequiredAcks: kafkago.RequiredAcks(p.cfg.RequiredAcks),
		Compression:  ResolveCompression(p.cfg.Compression),
		WriteTimeout: ParseDuration(p.cfg.WriteTimeout),
		ErrorLogger: kafkago.LoggerFunc(func(msg string, args ...interface{}) {
			p.log.Error("writer: "+msg, logger.Fields("args", fmt.Sprintf("%v", args)))
		}),
	}
	p.writer = w
	p.stats = w.Stats

	p.log.Info("Kafka producer initialized", logger.Fields(
		"brokers", p.cfg.Brokers,
		"topic", p.cfg.Topic,
		"compression", p.cfg.Compression,
		"batch_size", p.cfg.BatchSize,
	))
	return p, nil
}

// Topic returns the destination topic.
func (p *Producer) Topic() string { return p.cfg.Topic }

// WriteMessages sends msgs, retrying transient failures with a growing
// backoff. Errors are converted with FromKafka.
func (p *Producer) WriteMessages(ctx context.Context, msgs ...kafkago.Message) error {
	p.mu.RLock()
	closed := p.closed
	p.mu.RUnlock()
	if closed {
		return errors.InvalidInput("producer is closed")
	}

	policy := resilience.Policy{
		Attempts:   p.cfg.Retries,
		Backoff:    100 * time.Millisecond,
		MaxBackoff: ParseDuration(p.cfg.WriteTimeout),
		Jitter:     0.1,
		RetryIf: func(err error) bool {
			return resilience.Transient(err) && !IsNonRetryableError(err)
		},
		OnRetry: func(attempt int, err error, _ time.Duration) {
			p.log.Warn("kafka write failed, retrying", logger.Fields("attempt", attempt, logger.FieldError, err.Error()))
		},
	}
	err := resilience.Do(ctx, policy, func(ctx context.Context) error {
		return p.writer.WriteMessages(ctx, msgs...)
	})
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return errors.IO(errors.IOKindInterrupted, "kafka write canceled").WithCause(ctx.Err())
	}
	return FromKafka(err, p.cfg.Topic)
}

// SendJSON marshals value and sends it under key.
func (p *Producer) SendJSON(ctx context.Context, key string, value any) error {
	msg, err := NewJSONMessage(key, value)
	if err != nil {
		return err
	}
	return p.WriteMessages(ctx, msg)
}

// NewJSONMessage marshals value into a message keyed by key.
func NewJSONMessage(key string, value any) (kafkago.Message, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return kafkago.Message{}, errors.General("marshal JSON: " + err.Error()).WithCause(err)
	}
	return kafkago.Message{
		Key:   []byte(key),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "content-type", Value: []byte("application/json")},
		},
	}, nil
}

// WriterMetrics summarizes the kafka-go writer statistics.
type WriterMetrics struct {
	Writes       int64   `json:"writes"`
	Messages     int64   `json:"messages"`
	Bytes        int64   `json:"bytes"`
	Errors       int64   `json:"errors"`
	Retries      int64   `json:"retries"`
	AvgWriteTime float64 `json:"avg_write_time_ms"`
	MaxWriteTime float64 `json:"max_write_time_ms"`
}

// Stats returns writer statistics. It is zero when a custom writer is used.
func (p *Producer) Stats() WriterMetrics {
	if p.stats == nil {
		return WriterMetrics{}
	}
	s := p.stats()
	return WriterMetrics{
		Writes:       s.Writes,
		Messages:     s.Messages,
		Bytes:        s.Bytes,
		Errors:       s.Errors,
		Retries:      s.Retries,
		AvgWriteTime: float64(s.WriteTime.Avg) / 1e6,
		MaxWriteTime: float64(s.WriteTime.Max) / 1e6,
	}
}

// Close flushes pending batches and shuts down the writer.
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	p.log.Info("Kafka producer closing")
	return p.writer.Close()
}
