// Package chat holds conversations and messages and the merge rules that keep
// locally held lists consistent with the server.
package chat

import (
	"academy/internal/domain/shared/reconcile"
	"academy/internal/domain/wire"
)

// Upsert merges msg into the conversation list:
//   - the conversation is keyed by the other party;
//   - a new conversation starts with unread 1 for an incoming unread message, else 0;
//   - an existing one takes msg as lastMessage and gains 1 unread for an incoming
//     unread message, otherwise keeps its count;
//   - the list is re-sorted newest first, ties keep their order.
//
// Server lists and optimistic sends both go through here.
func Upsert(list []Conversation, local wire.Identifier, msg Message) ([]Conversation, error) {
	if local.IsZero() {
		return nil, ErrNoLocalIdentity
	}
	incomingUnread := msg.IsIncoming(local) && !msg.IsRead
	return apply(list, OtherParty(local, msg), func(c *Conversation) {
		if c.LastMessage != nil && c.LastMessage.ID == msg.ID {
			// Already counted; only read-state may change.
			replaced := msg
			c.LastMessage = &replaced
			return
		}
		if incomingUnread {
			c.UnreadCount++
		}
		replaced := msg
		c.LastMessage = &replaced
	}), nil
}

// UpsertAll folds msgs into list in order, so the last one given becomes
// lastMessage of its conversation.
func UpsertAll(list []Conversation, local wire.Identifier, msgs []Message) ([]Conversation, error) {
	if local.IsZero() {
		return nil, ErrNoLocalIdentity
	}
	out := SortConversations(list)
	for _, msg := range msgs {
		var err error
		if out, err = Upsert(out, local, msg); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// MarkRead clears the unread count of the conversation with other and marks its
// last incoming message read. Unknown conversations are left alone.
func MarkRead(list []Conversation, local, other wire.Identifier) ([]Conversation, error) {
	if local.IsZero() {
		return nil, ErrNoLocalIdentity
	}
	if reconcile.Find(list, other, conversationKey) < 0 {
		return SortConversations(list), nil
	}
	return apply(list, other, func(c *Conversation) {
		c.UnreadCount = 0
		if c.LastMessage != nil && c.LastMessage.IsIncoming(local) && !c.LastMessage.IsRead {
			read := *c.LastMessage
			read.IsRead = true
			c.LastMessage = &read
		}
	}), nil
}

// ReplaceSummary stores a server-provided conversation summary, keeping
// whichever copy has the newer last message.
func ReplaceSummary(list []Conversation, summary Conversation) []Conversation {
	return apply(list, summary.OtherUserID, func(c *Conversation) {
		if c.LastMessage != nil && summary.LastActivity() < c.LastActivity() {
			return
		}
		name := c.OtherUserName
		*c = summary
		if c.OtherUserName == "" {
			c.OtherUserName = name
		}
	})
}

// SortConversations orders by last activity, newest first; ties keep list order.
func SortConversations(list []Conversation) []Conversation {
	return reconcile.Sorted(list, reconcile.Descending(Conversation.LastActivity))
}

// apply is the single write path for conversation lists: find-or-create by the
// other party, mutate, restore the invariants, re-sort.
func apply(list []Conversation, other wire.Identifier, mutate func(*Conversation)) []Conversation {
	out := reconcile.UpsertFunc(list, other, conversationKey, func(existing *Conversation) Conversation {
		c := NewConversation(other)
		if existing != nil {
			c = *existing
		}
		mutate(&c)
		c.OtherUserID = other
		c.ID = other
		if c.UnreadCount < 0 {
			c.UnreadCount = 0
		}
		return c
	})
	return SortConversations(out)
}
