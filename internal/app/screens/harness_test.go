package screens

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"academy/internal/app/dispatch"
	"academy/internal/app/ports"
	"academy/internal/app/resource"
	"academy/internal/domain/wire"
)

type route func(body any) ([]byte, error)

type fakeTransport struct {
	mu     sync.Mutex
	routes map[string]route
	calls  []string
	bodies map[string]any
}

func (f *fakeTransport) on(method, path string, fn route) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+path] = fn
}

func (f *fakeTransport) reply(method, path, payload string) {
	f.on(method, path, func(any) ([]byte, error) { return []byte(payload), nil })
}

func (f *fakeTransport) fail(method, path string, status int, message string) {
	f.on(method, path, func(any) ([]byte, error) {
		return nil, &ports.TransportError{Status: status, Message: message}
	})
}

func (f *fakeTransport) Send(_ context.Context, method, path string, body any) ([]byte, error) {
	key := method + " " + path
	f.mu.Lock()
	f.calls = append(f.calls, key)
	f.bodies[key] = body
	fn, ok := f.routes[key]
	f.mu.Unlock()
	if !ok {
		return nil, &ports.TransportError{Status: 404, Message: "no route " + key}
	}
	return fn(body)
}

func (f *fakeTransport) called(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == key {
			n++
		}
	}
	return n
}

func (f *fakeTransport) body(key string) any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[key]
}

type fakeDirectory struct {
	mu    sync.Mutex
	names map[wire.Identifier]string
	calls int
}

func (d *fakeDirectory) GetProfile(_ context.Context, id wire.Identifier) (ports.Profile, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	name, ok := d.names[id]
	if !ok {
		return ports.Profile{}, errors.New("profile not found")
	}
	return ports.Profile{ID: id, DisplayName: name}, nil
}

func (d *fakeDirectory) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

type fakeSession struct{ id wire.Identifier }

func (s fakeSession) CurrentUserID() (wire.Identifier, bool) { return s.id, !s.id.IsZero() }

type memStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func (m *memStore) Get(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.blobs[key]
	return b, ok, nil
}

func (m *memStore) Set(key string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = blob
	return nil
}

type fakeUploader struct {
	mu   sync.Mutex
	keys []string
	err  error
}

func (u *fakeUploader) Upload(_ context.Context, key string, body io.Reader, _ int64, _ string) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	if _, err := io.ReadAll(body); err != nil {
		return "", err
	}
	u.mu.Lock()
	u.keys = append(u.keys, key)
	u.mu.Unlock()
	return "https://cdn.test/" + key, nil
}

type harness struct {
	loop      *dispatch.Loop
	transport *fakeTransport
	directory *fakeDirectory
	store     *memStore
	deps      Deps
}

func newHarness(t *testing.T, user wire.Identifier) *harness {
	t.Helper()
	loop := dispatch.NewLoop(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = loop.Run(ctx) }()
	t.Cleanup(cancel)

	h := &harness{
		loop:      loop,
		transport: &fakeTransport{routes: map[string]route{}, bodies: map[string]any{}},
		directory: &fakeDirectory{names: map[wire.Identifier]string{}},
		store:     &memStore{blobs: map[string][]byte{}},
	}
	h.deps = Deps{
		Transport:  h.transport,
		Session:    fakeSession{id: user},
		Directory:  h.directory,
		Store:      h.store,
		Dispatcher: loop,
		Now:        func() time.Time { return time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC) },
	}
	return h
}

// do runs fn on the dispatcher and waits for it.
func (h *harness) do(t *testing.T, fn func()) {
	t.Helper()
	require.NoError(t, h.loop.Sync(context.Background(), fn))
}

// settle waits until slot satisfies pred, then drains queued callbacks.
func settle[T any](t *testing.T, h *harness, slot *resource.Slot[T], pred func(resource.Resource[T]) bool) resource.Resource[T] {
	t.Helper()
	require.Eventually(t, func() bool { return pred(slot.State()) }, 2*time.Second, 5*time.Millisecond)
	h.do(t, func() {})
	return slot.State()
}

// record collects every published value of slot.
func record[T any](slot *resource.Slot[T]) func() []resource.Resource[T] {
	var mu sync.Mutex
	var seen []resource.Resource[T]
	slot.Subscribe(func(r resource.Resource[T]) {
		mu.Lock()
		seen = append(seen, r)
		mu.Unlock()
	})
	return func() []resource.Resource[T] {
		mu.Lock()
		defer mu.Unlock()
		return append([]resource.Resource[T](nil), seen...)
	}
}
