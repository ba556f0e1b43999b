package screens

import (
	"context"
	"sync"

	"academy/internal/domain/chat"
)

// LiveRouter hands live messages from a feed to the conversations list and
// to every open thread they belong to.
type LiveRouter struct {
	deps          Deps
	conversations *Conversations

	mu      sync.Mutex
	threads map[*Thread]struct{}
}

func NewLiveRouter(deps Deps, conversations *Conversations) *LiveRouter {
	return &LiveRouter{deps: deps, conversations: conversations, threads: make(map[*Thread]struct{})}
}

// Attach routes messages to t until the returned function is called.
func (r *LiveRouter) Attach(t *Thread) func() {
	r.mu.Lock()
	r.threads[t] = struct{}{}
	r.mu.Unlock()
	return func() {
		r.mu.Lock()
		delete(r.threads, t)
		r.mu.Unlock()
	}
}

// Deliver decodes raw off the dispatcher and applies it on the dispatcher.
// Undecodable payloads are logged and dropped.
func (r *LiveRouter) Deliver(ctx context.Context, raw []byte) {
	msg, err := chat.DecodeSentMessage(raw)
	if err != nil {
		r.deps.logger().Warn("drop live message", "error", err)
		return
	}
	r.deps.Dispatcher.Dispatch(func() {
		if r.conversations != nil {
			r.conversations.ApplyIncoming(ctx, msg)
		}
		r.mu.Lock()
		threads := make([]*Thread, 0, len(r.threads))
		for t := range r.threads {
			threads = append(threads, t)
		}
		r.mu.Unlock()
		for _, t := range threads {
			t.ApplyIncoming(msg)
		}
	})
}
