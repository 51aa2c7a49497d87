package sink

import (
	"context"
	"encoding/json"
	"strconv"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/kbukum/riv/atom"
	"github.com/kbukum/riv/errors"
	"github.com/kbukum/riv/kafka"
)

// WithKafkaWriter replaces the kafka-go writer of a message-queue sink.
func WithKafkaWriter(w kafka.MessageWriter) Option {
	return func(o *options) { o.kafkaWriter = w }
}

// MessageQueueSink publishes one JSON object per record to a Kafka topic.
// Messages are keyed by their sequence number and sent in batches.
type MessageQueueSink struct {
	lifecycle
	settings MessageQueueSettings
	writer   kafka.MessageWriter
	producer *kafka.Producer
	schema   schema
	pending  []kafkago.Message
	batch    int
	seq      uint64
}

var _ Sink = (*MessageQueueSink)(nil)

// NewMessageQueueSink creates a Kafka sink. The producer is built by
// Initialize.
func NewMessageQueueSink(settings MessageQueueSettings, opts ...Option) *MessageQueueSink {
	o := buildOptions(MessageQueue, opts)
	return &MessageQueueSink{
		lifecycle: newLifecycle(MessageQueue, o),
		settings:  settings,
		writer:    o.kafkaWriter,
	}
}

func (s *MessageQueueSink) Initialize(context.Context) error {
	if err := s.open(); err != nil {
		return err
	}
	cfg := s.settings.producer()
	cfg.ApplyDefaults()

	var popts []kafka.ProducerOption
	if s.writer != nil {
		popts = append(popts, kafka.WithWriter(s.writer))
	}
	p, err := kafka.NewProducer(cfg, s.log, popts...)
	if err != nil {
		return s.reject(err)
	}
	s.producer = p
	s.batch = cfg.BatchSize
	s.schema = schema{}
	s.pending = nil
	s.seq = 0
	return nil
}

func (s *MessageQueueSink) Accept(ctx context.Context, a atom.Atom) error {
	if handled, err := s.guard(a); handled {
		return err
	}
	switch v := a.(type) {
	case *atom.HeaderRow:
		if err := s.schema.setHeader(v.Row.Fields()); err != nil {
			return s.fail(err)
		}
		return nil
	case *atom.Comment, *atom.BlankLine:
		return nil
	}

	nv, err := s.schema.record(a)
	if err != nil {
		return s.fail(err)
	}
	obj, err := jsonObject(nv, false)
	if err != nil {
		return s.fail(errors.General("encode record: " + err.Error()).WithCause(err))
	}
	s.seq++
	msg, err := kafka.NewJSONMessage(strconv.FormatUint(s.seq, 10), json.RawMessage(obj))
	if err != nil {
		return s.fail(err)
	}
	s.pending = append(s.pending, msg)
	s.metrics.AddBytes(uint64(len(msg.Value)))
	if len(s.pending) >= s.batch {
		if err := s.flush(ctx); err != nil {
			return s.fail(err)
		}
	}
	return nil
}

// flush sends the buffered messages. Records count once sent.
func (s *MessageQueueSink) flush(ctx context.Context) error {
	if len(s.pending) == 0 {
		return nil
	}
	n := len(s.pending)
	err := s.producer.WriteMessages(ctx, s.pending...)
	s.pending = nil
	if err != nil {
		return err
	}
	s.metrics.AddRecords(uint64(n))
	return nil
}

func (s *MessageQueueSink) Close(ctx context.Context) {
	if !s.shut() {
		return
	}
	if err := s.flush(ctx); err != nil {
		s.logSecondary("flushing messages failed", err)
	}
	if err := s.producer.Close(); err != nil {
		s.logSecondary("closing producer failed", err)
	}
	s.logClosed()
}
