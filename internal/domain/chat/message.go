package chat

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"academy/internal/domain/wire"
)

// LocalIDPrefix marks messages built on this device and not yet confirmed by the server.
const LocalIDPrefix = "local-"

var (
	ErrNoLocalIdentity = errors.New("chat: local user id is required")
	ErrReceiverMissing = errors.New("chat: receiver id is required")
	ErrEmptyText       = errors.New("chat: message text is required")
)

// Message is immutable once built; merges may replace IsRead but never the ids.
type Message struct {
	ID         wire.Identifier `json:"id"`
	SenderID   wire.Identifier `json:"senderId"`
	ReceiverID wire.Identifier `json:"receiverId"`
	Text       string          `json:"text"`
	IsRead     bool            `json:"isRead"`
	CreatedAt  string          `json:"createdAt"`
	UpdatedAt  string          `json:"updatedAt,omitempty"`
}

// NewLocalMessage builds an optimistic outgoing message.
func NewLocalMessage(sender, receiver wire.Identifier, text string, now time.Time) (Message, error) {
	if sender.IsZero() {
		return Message{}, ErrNoLocalIdentity
	}
	if receiver.IsZero() {
		return Message{}, ErrReceiverMissing
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrEmptyText
	}
	if now.IsZero() {
		now = time.Now()
	}
	stamp := wire.FormatTime(now)
	return Message{
		ID:         wire.Identifier(LocalIDPrefix + uuid.NewString()),
		SenderID:   sender,
		ReceiverID: receiver,
		Text:       text,
		IsRead:     true,
		CreatedAt:  stamp,
		UpdatedAt:  stamp,
	}, nil
}

// IsLocal reports whether the message is still an unconfirmed local copy.
func (m Message) IsLocal() bool {
	return strings.HasPrefix(string(m.ID), LocalIDPrefix)
}

// IsIncoming reports whether local is the receiver.
func (m Message) IsIncoming(local wire.Identifier) bool {
	return m.ReceiverID == local && m.SenderID != local
}

// Between reports whether the message was exchanged by a and b, in either direction.
func (m Message) Between(a, b wire.Identifier) bool {
	return (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a)
}

// OtherParty returns the participant who is not local.
func OtherParty(local wire.Identifier, m Message) wire.Identifier {
	if m.SenderID == local {
		return m.ReceiverID
	}
	return m.SenderID
}

// ThreadKey names the local-store slot of a transcript; it is symmetric in a and b.
func ThreadKey(a, b wire.Identifier) string {
	pair := []string{string(a), string(b)}
	sort.Strings(pair)
	return "chat:" + pair[0] + ":" + pair[1]
}

func messageKey(m Message) wire.Identifier { return m.ID }
