package screens

import (
	"context"

	"academy/internal/app/enrich"
	"academy/internal/app/ports"
	"academy/internal/app/resource"
	"academy/internal/domain/chat"
	"academy/internal/domain/wire"
)

// Conversations drives the inbox screen.
type Conversations struct {
	deps Deps

	list *resource.Slot[[]chat.Conversation]
	send *resource.Slot[chat.Message]
	read *resource.Slot[wire.Identifier]

	local   wire.Identifier
	pending []chat.Message
}

// NewConversations returns an idle controller.
func NewConversations(deps Deps) *Conversations {
	return &Conversations{
		deps: deps,
		list: resource.NewSlot[[]chat.Conversation](),
		send: resource.NewSlot[chat.Message](),
		read: resource.NewSlot[wire.Identifier](),
	}
}

// List is the conversations resource.
func (c *Conversations) List() *resource.Slot[[]chat.Conversation] { return c.list }

// SendState carries the outcome of the latest send, independent of the list.
func (c *Conversations) SendState() *resource.Slot[chat.Message] { return c.send }

// ReadState carries the outcome of the latest mark-read call.
func (c *Conversations) ReadState() *resource.Slot[wire.Identifier] { return c.read }

// LocalUserID returns the identity read at the last appearance or refresh.
func (c *Conversations) LocalUserID() wire.Identifier { return c.local }

// Appear re-reads the local identity and loads the list. Refresh is the same
// operation triggered by the user.
func (c *Conversations) Appear(ctx context.Context) error {
	local, err := c.deps.currentUser()
	if err != nil {
		c.local = ""
		return err
	}
	c.local = local
	c.Load(ctx, local)
	return nil
}

// Refresh reloads the list for the current session.
func (c *Conversations) Refresh(ctx context.Context) error { return c.Appear(ctx) }

// Load fetches the conversations of userID. Success is published with
// placeholder names first; resolved names follow in one more publish.
func (c *Conversations) Load(ctx context.Context, userID wire.Identifier) {
	c.local = userID
	ticket := c.list.Begin()
	c.deps.call(ctx, ports.MethodGet, conversationsPath(userID), nil, func(raw []byte, err error) {
		if err != nil {
			c.list.Reject(ticket, ports.UserMessage(err))
			return
		}
		list, err := chat.DecodeConversations(raw, userID)
		if err == nil {
			list, err = chat.UpsertAll(list, userID, c.pending)
		}
		if err != nil {
			c.deps.logger().Warn("decode conversations", "user_id", userID.String(), "error", err)
			c.list.Reject(ticket, err.Error())
			return
		}
		if !c.list.Resolve(ticket, list) {
			return
		}
		c.pending = nil
		c.enrich(ctx, ticket, list)
	})
}

func (c *Conversations) enrich(ctx context.Context, ticket resource.Ticket, snapshot []chat.Conversation) {
	tasks := enrich.Plan(snapshot, chat.Conversation.NeedsName, otherUser)
	c.deps.coordinator().Run(ctx, tasks, func(report enrich.Report) {
		c.list.Refine(ticket, func(current []chat.Conversation) []chat.Conversation {
			return enrich.Apply(current, report, otherUser, withName)
		})
	})
}

// SendMessage appends an optimistic message to the list, then posts it. A
// failed send leaves the optimistic entry in place and is reported on
// SendState only.
func (c *Conversations) SendMessage(ctx context.Context, receiver wire.Identifier, text string) (chat.Message, error) {
	if c.local.IsZero() {
		return chat.Message{}, chat.ErrNoLocalIdentity
	}
	msg, err := chat.NewLocalMessage(c.local, receiver, text, c.deps.now())
	if err != nil {
		return chat.Message{}, err
	}
	c.upsert(msg)

	ticket := c.send.Begin()
	c.deps.call(ctx, ports.MethodPost, pathMessages, sendBody(msg), func(raw []byte, err error) {
		if err != nil {
			c.send.Reject(ticket, ports.UserMessage(err))
			return
		}
		confirmed, derr := chat.DecodeSentMessage(raw)
		if derr != nil {
			confirmed = msg
		}
		c.send.Resolve(ticket, confirmed)
	})
	return msg, nil
}

// ApplyIncoming merges a live message into the list. Conversations created by
// it get their name resolved in the background.
func (c *Conversations) ApplyIncoming(ctx context.Context, msg chat.Message) {
	if c.local.IsZero() || (msg.SenderID != c.local && msg.ReceiverID != c.local) {
		return
	}
	c.upsert(msg)
	current, ok := c.list.State().Value()
	if !ok {
		return
	}
	other := chat.OtherParty(c.local, msg)
	tasks := enrich.Plan(current, func(conv chat.Conversation) bool {
		return conv.OtherUserID == other && conv.NeedsName()
	}, otherUser)
	if len(tasks) == 0 {
		return
	}
	c.deps.coordinator().Run(ctx, tasks, func(report enrich.Report) {
		c.list.Mutate(func(current []chat.Conversation) []chat.Conversation {
			return enrich.Apply(current, report, otherUser, withName)
		})
	})
}

// MarkRead clears the unread count of the conversation with other through the
// reconcile path, then tells the backend.
func (c *Conversations) MarkRead(ctx context.Context, other wire.Identifier) error {
	if c.local.IsZero() {
		return chat.ErrNoLocalIdentity
	}
	local := c.local
	c.list.Mutate(func(current []chat.Conversation) []chat.Conversation {
		next, err := chat.MarkRead(current, local, other)
		if err != nil {
			return current
		}
		return next
	})
	ticket := c.read.Begin()
	body := map[string]string{"userId": local.String(), "otherUserId": other.String()}
	c.deps.call(ctx, ports.MethodPut, pathMarkRead, body, func(_ []byte, err error) {
		if err != nil {
			c.read.Reject(ticket, ports.UserMessage(err))
			return
		}
		c.read.Resolve(ticket, other)
	})
	return nil
}

// upsert folds msg into the published list, or queues it until the pending
// load resolves.
func (c *Conversations) upsert(msg chat.Message) {
	local := c.local
	applied := c.list.Mutate(func(current []chat.Conversation) []chat.Conversation {
		next, err := chat.Upsert(current, local, msg)
		if err != nil {
			return current
		}
		return next
	})
	if !applied {
		c.pending = append(c.pending, msg)
	}
}

func otherUser(c chat.Conversation) wire.Identifier { return c.OtherUserID }

func withName(c chat.Conversation, name string) chat.Conversation {
	c.OtherUserName = name
	return c
}

func sendBody(msg chat.Message) map[string]string {
	return map[string]string{
		"senderId":   msg.SenderID.String(),
		"receiverId": msg.ReceiverID.String(),
		"text":       msg.Text,
	}
}
