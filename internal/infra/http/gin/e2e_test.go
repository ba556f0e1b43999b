package ginserver_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"academy/internal/app/dispatch"
	"academy/internal/app/screens"
	"academy/internal/domain/chat"
	"academy/internal/domain/wire"
	"academy/internal/infra/directory"
	ginserver "academy/internal/infra/http/gin"
	"academy/internal/infra/security"
	"academy/internal/infra/session"
	"academy/internal/infra/storage/memory"
	"academy/internal/infra/transport/rest"
	"academy/internal/infra/transport/ws"
)

type client struct {
	session   *session.Session
	transport *rest.Client
	id        wire.Identifier
}

func signIn(t *testing.T, ctx context.Context, baseURL, email string) client {
	t.Helper()
	sess, err := session.New(memory.NewBlobStore())
	require.NoError(t, err)
	transport, err := rest.NewClient(rest.Config{BaseURL: baseURL, Timeout: 5 * time.Second}, sess, nil)
	require.NoError(t, err)
	id, err := sess.Login(ctx, transport, session.Credentials{Email: email, Password: memory.SeedPassword})
	require.NoError(t, err)
	return client{session: sess, transport: transport, id: id}
}

func names(list []chat.Conversation) []string {
	out := make([]string, 0, len(list))
	for _, c := range list {
		out = append(out, c.OtherUserName)
	}
	return out
}

func TestClientAgainstDevBackend(t *testing.T) {
	backend, err := ginserver.NewBackend(ginserver.Options{
		Env:    "test",
		Secret: []byte("e2e"),
		Hasher: security.BcryptHasher{Cost: bcrypt.MinCost},
	})
	require.NoError(t, err)
	srv := httptest.NewServer(backend.Router)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	coach := signIn(t, ctx, srv.URL, "coach@academy.test")
	parent := signIn(t, ctx, srv.URL, "parent@academy.test")

	loop := dispatch.NewLoop(nil)
	go func() { _ = loop.Run(ctx) }()

	store := memory.NewBlobStore()
	deps := screens.Deps{
		Transport:  coach.transport,
		Session:    coach.session,
		Directory:  directory.New(coach.transport, 32, time.Minute, nil),
		Store:      store,
		Dispatcher: loop,
	}
	inbox := screens.NewConversations(deps)
	var appearErr error
	require.NoError(t, loop.Sync(ctx, func() { appearErr = inbox.Appear(ctx) }))
	require.NoError(t, appearErr)

	require.Eventually(t, func() bool {
		list, ok := inbox.List().State().Value()
		return ok && len(list) == 2 && list[0].OtherUserName != "" && list[1].OtherUserName != ""
	}, 5*time.Second, 10*time.Millisecond)
	list, _ := inbox.List().State().Value()
	assert.Equal(t, []string{"Alex Medic", "Sam Parent"}, names(list))

	live := screens.NewLiveRouter(deps, inbox)
	thread := screens.NewThread(deps, parent.id)
	detach := live.Attach(thread)
	defer detach()
	var openErr error
	require.NoError(t, loop.Sync(ctx, func() { openErr = thread.Open(ctx) }))
	require.NoError(t, openErr)
	require.Eventually(t, func() bool {
		msgs, ok := thread.Messages().State().Value()
		return ok && len(msgs) == 3
	}, 5*time.Second, 10*time.Millisecond)

	feed, err := ws.NewFeed(ws.Config{URL: "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"}, coach.session, nil)
	require.NoError(t, err)
	go func() { _ = feed.Run(ctx, func(raw []byte) { live.Deliver(ctx, raw) }) }()
	require.Eventually(t, func() bool { return backend.Hub.Connections(coach.id.String()) == 1 }, 5*time.Second, 10*time.Millisecond)

	_, err = parent.transport.Send(ctx, "POST", "/api/messages", map[string]string{
		"senderId": parent.id.String(), "receiverId": coach.id.String(), "text": "Running late today",
	})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		list, ok := inbox.List().State().Value()
		return ok && len(list) == 2 && list[0].OtherUserID == parent.id &&
			list[0].LastMessage != nil && list[0].LastMessage.Text == "Running late today"
	}, 5*time.Second, 10*time.Millisecond)
	list, _ = inbox.List().State().Value()
	assert.Equal(t, 3, list[0].UnreadCount)
	assert.Equal(t, "Sam Parent", list[0].OtherUserName)

	require.Eventually(t, func() bool {
		msgs, ok := thread.Messages().State().Value()
		return ok && len(msgs) == 4
	}, 5*time.Second, 10*time.Millisecond)

	var sendErr error
	require.NoError(t, loop.Sync(ctx, func() { _, sendErr = thread.Send(ctx, "No problem") }))
	require.NoError(t, sendErr)
	require.Eventually(t, func() bool {
		sent, ok := thread.SendState().State().Value()
		return ok && !sent.IsLocal()
	}, 5*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool {
		msgs, ok := thread.Messages().State().Value()
		if !ok || len(msgs) != 5 {
			return false
		}
		for _, m := range msgs {
			if m.IsLocal() {
				return false
			}
		}
		return true
	}, 5*time.Second, 10*time.Millisecond)

	var readErr error
	require.NoError(t, loop.Sync(ctx, func() { readErr = inbox.MarkRead(ctx, parent.id) }))
	require.NoError(t, readErr)
	require.Eventually(t, func() bool {
		_, ok := inbox.ReadState().State().Value()
		return ok
	}, 5*time.Second, 10*time.Millisecond)
	assert.Zero(t, backend.Store.Conversations(coach.id.String())[0].Unread)
}
