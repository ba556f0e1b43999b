// Package kafka carries chat messages over a Kafka topic: the dev backend
// publishes every stored message and clients consume them as a live feed.
package kafka

import (
	"context"
	"errors"

	"github.com/IBM/sarama"
)

var ErrNoTopic = errors.New("kafka: topic is required")

// Producer publishes to a single topic.
type Producer struct {
	sync  sarama.SyncProducer
	topic string
}

// NewProducer dials brokers with idempotent, all-acks delivery.
func NewProducer(brokers []string, topic string, cfg *sarama.Config) (*Producer, error) {
	if topic == "" {
		return nil, ErrNoTopic
	}
	if cfg == nil {
		cfg = sarama.NewConfig()
	}
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Idempotent = true
	cfg.Producer.Return.Successes = true
	cfg.Net.MaxOpenRequests = 1
	sync, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return &Producer{sync: sync, topic: topic}, nil
}

// WrapProducer publishes through an existing sync producer.
func WrapProducer(sync sarama.SyncProducer, topic string) *Producer {
	return &Producer{sync: sync, topic: topic}
}

// Publish sends payload keyed by key. Messages sharing a key keep their order.
func (p *Producer) Publish(ctx context.Context, key string, payload []byte, headers map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var hs []sarama.RecordHeader
	for k, v := range headers {
		hs = append(hs, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
	}
	msg := &sarama.ProducerMessage{
		Topic:   p.topic,
		Key:     sarama.StringEncoder(key),
		Value:   sarama.ByteEncoder(payload),
		Headers: hs,
	}
	_, _, err := p.sync.SendMessage(msg)
	return err
}

func (p *Producer) Close() error {
	if p.sync == nil {
		return nil
	}
	return p.sync.Close()
}
