package kafka

import (
	"context"
	"errors"
	"log/slog"

	"github.com/IBM/sarama"

	"academy/internal/app/ports"
)

// FeedConfig selects the brokers, topic and consumer group of a Feed.
type FeedConfig struct {
	Brokers []string
	Topic   string
	Group   string
}

// Feed consumes the message topic as a consumer group and hands every record
// value to the deliver callback. Only records produced after the group first
// joins are seen.
type Feed struct {
	cfg    FeedConfig
	logger *slog.Logger
	dial   func(brokers []string, group string, cfg *sarama.Config) (sarama.ConsumerGroup, error)
}

func NewFeed(cfg FeedConfig, logger *slog.Logger) *Feed {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Feed{cfg: cfg, logger: logger, dial: sarama.NewConsumerGroup}
}

// Run joins the group and consumes until ctx ends.
func (f *Feed) Run(ctx context.Context, deliver func(raw []byte)) error {
	if f.cfg.Topic == "" {
		return ErrNoTopic
	}
	if len(f.cfg.Brokers) == 0 {
		return errors.New("kafka: brokers are required")
	}
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_5_0_0
	cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	group, err := f.dial(f.cfg.Brokers, f.cfg.Group, cfg)
	if err != nil {
		return err
	}
	defer group.Close()

	f.logger.Info("kafka feed joined", "topic", f.cfg.Topic, "group", f.cfg.Group)
	handler := claimHandler{deliver: deliver}
	for {
		if err := group.Consume(ctx, []string{f.cfg.Topic}, handler); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

type claimHandler struct {
	deliver func(raw []byte)
}

func (claimHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (claimHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h claimHandler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if len(message.Value) > 0 {
				h.deliver(message.Value)
			}
			sess.MarkMessage(message, "")
		case <-sess.Context().Done():
			return nil
		}
	}
}

var _ ports.Feed = (*Feed)(nil)
