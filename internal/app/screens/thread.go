package screens

import (
	"context"
	"encoding/json"

	"academy/internal/app/ports"
	"academy/internal/app/resource"
	"academy/internal/domain/chat"
	"academy/internal/domain/wire"
)

// Thread drives one chat transcript. The cached transcript from the local
// store stays readable through Cached while a fetch is in flight.
type Thread struct {
	deps  Deps
	other wire.Identifier

	messages *resource.Slot[[]chat.Message]
	send     *resource.Slot[chat.Message]

	local  wire.Identifier
	cached []chat.Message
}

// NewThread returns an idle controller for the conversation with other.
func NewThread(deps Deps, other wire.Identifier) *Thread {
	return &Thread{
		deps:     deps,
		other:    other,
		messages: resource.NewSlot[[]chat.Message](),
		send:     resource.NewSlot[chat.Message](),
	}
}

// Other is the peer of this thread.
func (t *Thread) Other() wire.Identifier { return t.other }

// Messages is the transcript resource, oldest first.
func (t *Thread) Messages() *resource.Slot[[]chat.Message] { return t.messages }

// SendState carries the outcome of the latest send.
func (t *Thread) SendState() *resource.Slot[chat.Message] { return t.send }

// Cached returns the transcript restored from the local store.
func (t *Thread) Cached() []chat.Message { return t.cached }

// Open re-reads the identity, restores the cached transcript and fetches the
// server history.
func (t *Thread) Open(ctx context.Context) error {
	local, err := t.deps.currentUser()
	if err != nil {
		return err
	}
	t.local = local
	t.cached = t.restore()
	t.Refresh(ctx)
	return nil
}

// Refresh fetches the server history and merges it with the cached copy.
func (t *Thread) Refresh(ctx context.Context) {
	ticket := t.messages.Begin()
	t.deps.call(ctx, ports.MethodGet, threadPath(t.local, t.other), nil, func(raw []byte, err error) {
		if err != nil {
			t.messages.Reject(ticket, ports.UserMessage(err))
			return
		}
		server, err := chat.DecodeMessages(raw)
		if err != nil {
			t.deps.logger().Warn("decode thread", "other_user_id", t.other.String(), "error", err)
			t.messages.Reject(ticket, err.Error())
			return
		}
		merged := chat.MergeMessages(t.cached, filterThread(server, t.local, t.other))
		if t.messages.Resolve(ticket, merged) {
			t.persist(merged)
		}
	})
}

// Send appends an optimistic message and swaps it for the confirmed copy
// once the backend accepts it.
func (t *Thread) Send(ctx context.Context, text string) (chat.Message, error) {
	if t.local.IsZero() {
		return chat.Message{}, chat.ErrNoLocalIdentity
	}
	if !t.messages.State().IsSuccess() {
		return chat.Message{}, ErrNotLoaded
	}
	msg, err := chat.NewLocalMessage(t.local, t.other, text, t.deps.now())
	if err != nil {
		return chat.Message{}, err
	}
	t.mutate(func(list []chat.Message) []chat.Message {
		return chat.MergeMessages(list, []chat.Message{msg})
	})

	ticket := t.send.Begin()
	t.deps.call(ctx, ports.MethodPost, pathMessages, sendBody(msg), func(raw []byte, err error) {
		if err != nil {
			t.send.Reject(ticket, ports.UserMessage(err))
			return
		}
		confirmed, derr := chat.DecodeSentMessage(raw)
		if derr != nil {
			t.send.Resolve(ticket, msg)
			return
		}
		confirm := func(list []chat.Message) []chat.Message {
			return chat.ConfirmMessage(list, msg.ID, confirmed)
		}
		if !t.mutate(confirm) {
			// A refresh is in flight and will merge over the cached copy.
			t.persist(confirm(t.cached))
		}
		t.send.Resolve(ticket, confirmed)
	})
	return msg, nil
}

// ApplyIncoming merges a live message that belongs to this thread.
func (t *Thread) ApplyIncoming(msg chat.Message) bool {
	if t.local.IsZero() || !msg.Between(t.local, t.other) {
		return false
	}
	return t.mutate(func(list []chat.Message) []chat.Message {
		return chat.MergeMessages(list, []chat.Message{msg})
	})
}

// MarkRead marks every received message of the transcript read.
func (t *Thread) MarkRead() {
	t.mutate(func(list []chat.Message) []chat.Message {
		return chat.MarkThreadRead(list, t.local)
	})
}

func (t *Thread) mutate(fn func([]chat.Message) []chat.Message) bool {
	var next []chat.Message
	ok := t.messages.Mutate(func(list []chat.Message) []chat.Message {
		next = fn(list)
		return next
	})
	if ok {
		t.persist(next)
	}
	return ok
}

func (t *Thread) storeKey() string { return chat.ThreadKey(t.local, t.other) }

func (t *Thread) restore() []chat.Message {
	if t.deps.Store == nil {
		return nil
	}
	blob, ok, err := t.deps.Store.Get(t.storeKey())
	if err != nil || !ok {
		if err != nil {
			t.deps.logger().Warn("restore thread", "key", t.storeKey(), "error", err)
		}
		return nil
	}
	var cached []chat.Message
	if err := json.Unmarshal(blob, &cached); err != nil {
		t.deps.logger().Warn("decode cached thread", "key", t.storeKey(), "error", err)
		return nil
	}
	return chat.MergeMessages(nil, filterThread(cached, t.local, t.other))
}

func (t *Thread) persist(list []chat.Message) {
	t.cached = list
	if t.deps.Store == nil {
		return
	}
	blob, err := json.Marshal(list)
	if err != nil {
		t.deps.logger().Warn("encode thread", "key", t.storeKey(), "error", err)
		return
	}
	if err := t.deps.Store.Set(t.storeKey(), blob); err != nil {
		t.deps.logger().Warn("persist thread", "key", t.storeKey(), "error", err)
	}
}

func filterThread(list []chat.Message, a, b wire.Identifier) []chat.Message {
	out := make([]chat.Message, 0, len(list))
	for _, m := range list {
		if m.Between(a, b) {
			out = append(out, m)
		}
	}
	return out
}
