// Package kafka provides the producer side of the message-queue sink:
// configuration, TLS and SASL transport setup, and a retrying producer
// built on segmentio/kafka-go.
//
//	p, err := kafka.NewProducer(kafka.Config{Brokers: []string{"localhost:9092"}, Topic: "rows"}, log)
//	err = p.SendJSON(ctx, "1", map[string]string{"id": "1"})
package kafka
