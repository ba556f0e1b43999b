package chat

import "academy/internal/domain/wire"

// Conversation summarizes the exchange with one other user. ID always equals OtherUserID.
type Conversation struct {
	ID            wire.Identifier `json:"id"`
	OtherUserID   wire.Identifier `json:"otherUserId"`
	OtherUserName string          `json:"otherUserName,omitempty"`
	LastMessage   *Message        `json:"lastMessage,omitempty"`
	UnreadCount   int             `json:"unreadCount"`
}

// NewConversation returns an empty conversation with other.
func NewConversation(other wire.Identifier) Conversation {
	return Conversation{ID: other, OtherUserID: other}
}

// DisplayName falls back to the raw id until a name is resolved.
func (c Conversation) DisplayName() string {
	if c.OtherUserName != "" {
		return c.OtherUserName
	}
	return string(c.OtherUserID)
}

// NeedsName reports whether the name is missing or still the id placeholder.
func (c Conversation) NeedsName() bool {
	return c.OtherUserName == "" || c.OtherUserName == string(c.OtherUserID)
}

// LastActivity is the lastMessage timestamp, "" when there is none.
func (c Conversation) LastActivity() string {
	if c.LastMessage == nil {
		return ""
	}
	return c.LastMessage.CreatedAt
}

func conversationKey(c Conversation) wire.Identifier { return c.OtherUserID }
