package chat

import (
	"fmt"

	"github.com/tidwall/gjson"

	"academy/internal/domain/shared/reconcile"
	"academy/internal/domain/wire"
)

var (
	idKeys        = []string{"_id", "id"}
	senderKeys    = []string{"senderId", "sender", "from"}
	receiverKeys  = []string{"receiverId", "receiver", "to"}
	textKeys      = []string{"text", "content", "message"}
	createdAtKeys = []string{"createdAt", "timestamp", "sentAt"}
)

// DecodeMessage decodes one message object. Missing or malformed ids and
// createdAt are fatal; updatedAt defaults to createdAt.
func DecodeMessage(obj gjson.Result) (Message, error) {
	if !obj.IsObject() {
		return Message{}, &wire.DecodeError{Field: "message", Reason: "expected an object"}
	}
	id, err := wire.RequiredID(obj, idKeys...)
	if err != nil {
		return Message{}, err
	}
	sender, err := wire.RequiredID(obj, senderKeys...)
	if err != nil {
		return Message{}, err
	}
	receiver, err := wire.RequiredID(obj, receiverKeys...)
	if err != nil {
		return Message{}, err
	}
	createdAt, err := wire.RequiredTime(obj, createdAtKeys...)
	if err != nil {
		return Message{}, err
	}
	updatedAt := wire.OptionalTime(obj, "updatedAt")
	if updatedAt == "" {
		updatedAt = createdAt
	}
	return Message{
		ID:         id,
		SenderID:   sender,
		ReceiverID: receiver,
		Text:       wire.OptionalString(obj, textKeys...),
		IsRead:     wire.OptionalBool(obj, "isRead", "read"),
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}, nil
}

// DecodeMessages decodes a message list. One bad item fails the whole response.
func DecodeMessages(raw []byte) ([]Message, error) {
	root, err := wire.Parse(raw)
	if err != nil {
		return nil, err
	}
	items, err := wire.Items(root, "messages")
	if err != nil {
		return nil, err
	}
	out := make([]Message, 0, len(items))
	for i, item := range items {
		msg, err := DecodeMessage(item)
		if err != nil {
			return nil, fmt.Errorf("chat: message %d: %w", i, err)
		}
		out = append(out, msg)
	}
	return out, nil
}

// DecodeSentMessage decodes the server's echo of a sent message, bare or
// wrapped under "message"/"data".
func DecodeSentMessage(raw []byte) (Message, error) {
	root, err := wire.Parse(raw)
	if err != nil {
		return Message{}, err
	}
	obj, err := wire.Object(root, "message", "data")
	if err != nil {
		return Message{}, err
	}
	return DecodeMessage(obj)
}

// DecodeConversations decodes a conversations payload. Items may be summaries
// ({otherUserId, lastMessage, unreadCount}) or raw messages; raw messages are
// folded through Upsert so both shapes share one merge path.
func DecodeConversations(raw []byte, local wire.Identifier) ([]Conversation, error) {
	if local.IsZero() {
		return nil, ErrNoLocalIdentity
	}
	root, err := wire.Parse(raw)
	if err != nil {
		return nil, err
	}
	items, err := wire.Items(root, "conversations")
	if err != nil {
		return nil, err
	}
	var (
		msgs      []Message
		summaries []Conversation
	)
	for i, item := range items {
		if isMessageShaped(item) {
			msg, err := DecodeMessage(item)
			if err != nil {
				return nil, fmt.Errorf("chat: conversation %d: %w", i, err)
			}
			msgs = append(msgs, msg)
			continue
		}
		summary, err := decodeSummary(item, local)
		if err != nil {
			return nil, fmt.Errorf("chat: conversation %d: %w", i, err)
		}
		summaries = append(summaries, summary)
	}
	// Fold oldest first so each conversation ends on its newest message
	// whatever order the server listed them in.
	msgs = reconcile.Sorted(msgs, reconcile.Ascending(func(m Message) string { return m.CreatedAt }))
	out, err := UpsertAll(nil, local, msgs)
	if err != nil {
		return nil, err
	}
	for _, summary := range summaries {
		out = ReplaceSummary(out, summary)
	}
	return SortConversations(out), nil
}

func isMessageShaped(obj gjson.Result) bool {
	_, sender := wire.Field(obj, senderKeys...)
	_, receiver := wire.Field(obj, receiverKeys...)
	return sender != "" && receiver != ""
}

func decodeSummary(obj gjson.Result, local wire.Identifier) (Conversation, error) {
	if !obj.IsObject() {
		return Conversation{}, &wire.DecodeError{Field: "conversation", Reason: "expected an object"}
	}
	var last *Message
	if value, key := wire.Field(obj, "lastMessage"); key != "" {
		msg, err := DecodeMessage(value)
		if err != nil {
			return Conversation{}, wire.WithField(err, "lastMessage")
		}
		last = &msg
	}

	other, err := wire.RequiredID(obj, "otherUserId", "otherUser", "userId", "_id", "id")
	if err != nil {
		if last == nil {
			return Conversation{}, err
		}
		other = OtherParty(local, *last)
	}

	name := wire.OptionalString(obj, "otherUserName", "name", "displayName")
	if name == "" {
		if user, key := wire.Field(obj, "otherUser"); key != "" {
			name = wire.OptionalString(user, "displayName", "name", "fullName", "username")
		}
	}
	unread := wire.OptionalInt(obj, "unreadCount", "unread")
	if unread < 0 {
		unread = 0
	}
	return Conversation{
		ID:            other,
		OtherUserID:   other,
		OtherUserName: name,
		LastMessage:   last,
		UnreadCount:   unread,
	}, nil
}
