package ginserver

import (
	"context"

	"academy/internal/domain/chat"
	"academy/internal/domain/wire"
	"academy/internal/infra/storage/memory"
)

// Publisher is the producing side of a message broker.
type Publisher interface {
	Publish(ctx context.Context, key string, payload []byte, headers map[string]string) error
}

// BrokerBroadcaster forwards new messages to a broker topic, keyed by thread
// so a conversation stays ordered within its partition.
type BrokerBroadcaster struct {
	Publisher Publisher
}

func (b BrokerBroadcaster) Broadcast(ctx context.Context, msg memory.Message, payload []byte) error {
	key := chat.ThreadKey(wire.Identifier(msg.SenderID), wire.Identifier(msg.ReceiverID))
	return b.Publisher.Publish(ctx, key, payload, map[string]string{
		"type":       "message.created",
		"message_id": msg.ID.Hex(),
	})
}
