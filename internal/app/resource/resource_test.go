package resource

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitions(t *testing.T) {
	r := Idle[[]string]()
	_, err := r.Succeed([]string{"a"})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = r.Fail("boom")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	r = r.Start()
	require.True(t, r.IsLoading())
	_, err = r.Refine(nil)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	ok, err := r.Succeed([]string{"a"})
	require.NoError(t, err)
	value, present := ok.Value()
	require.True(t, present)
	assert.Equal(t, []string{"a"}, value)

	_, err = ok.Succeed([]string{"b"})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	refined, err := ok.Refine([]string{"a", "b"})
	require.NoError(t, err)
	value, _ = refined.Value()
	assert.Equal(t, []string{"a", "b"}, value)

	failed, err := refined.Start().Fail("offline")
	require.NoError(t, err)
	assert.Equal(t, "offline", failed.Message())
	_, present = failed.Value()
	assert.False(t, present)
	assert.True(t, failed.Start().IsLoading())
}

func TestEqual(t *testing.T) {
	eq := slices.Equal[[]int]
	assert.True(t, Equal(Idle[[]int](), Idle[[]int](), eq))
	assert.True(t, Equal(Loading[[]int](), Loading[[]int](), eq))
	assert.False(t, Equal(Idle[[]int](), Loading[[]int](), eq))
	assert.True(t, Equal(Success([]int{1, 2}), Success([]int{1, 2}), eq))
	assert.False(t, Equal(Success([]int{1}), Success([]int{2}), eq))
	assert.True(t, Equal(Failed[[]int]("x"), Failed[[]int]("x"), eq))
	assert.False(t, Equal(Failed[[]int]("x"), Failed[[]int]("y"), eq))
}

func TestStoreSubscribe(t *testing.T) {
	s := NewStore[int]()
	var seen []State
	unsubscribe := s.Subscribe(func(r Resource[int]) { seen = append(seen, r.State()) })

	s.Publish(Loading[int]())
	s.Publish(Success(3))
	unsubscribe()
	unsubscribe()
	s.Publish(Loading[int]())

	assert.Equal(t, []State{StateLoading, StateSuccess}, seen)
	assert.True(t, s.State().IsLoading())
}

func TestSlotDiscardsStaleResponses(t *testing.T) {
	slot := NewSlot[string]()
	var published []Resource[string]
	slot.Subscribe(func(r Resource[string]) { published = append(published, r) })

	a := slot.Begin()
	b := slot.Begin()

	assert.True(t, slot.Resolve(b, "from B"))
	assert.False(t, slot.Resolve(a, "from A"))
	assert.False(t, slot.Reject(a, "A failed"))
	assert.False(t, slot.Refine(a, func(string) string { return "A refined" }))

	value, ok := slot.State().Value()
	require.True(t, ok)
	assert.Equal(t, "from B", value)

	only := NewSlot[string]()
	only.Resolve(only.Begin(), "from B")
	assert.Equal(t, only.State(), slot.State())
	assert.Len(t, published, 3)
}

func TestSlotRefineAndMutate(t *testing.T) {
	slot := NewSlot[[]string]()
	assert.False(t, slot.Mutate(func(v []string) []string { return append(v, "x") }))

	ticket := slot.Begin()
	calls := 0
	assert.False(t, slot.Refine(ticket, func(v []string) []string {
		calls++
		return v
	}))
	assert.Zero(t, calls, "refine must not run while loading")
	require.True(t, slot.Resolve(ticket, []string{"a"}))

	require.True(t, slot.Mutate(func(v []string) []string { return append(slices.Clone(v), "local") }))
	require.True(t, slot.Refine(ticket, func(v []string) []string {
		out := slices.Clone(v)
		out[0] = "A"
		return out
	}))
	value, _ := slot.State().Value()
	assert.Equal(t, []string{"A", "local"}, value)

	slot.Reset()
	assert.True(t, slot.State().IsIdle())
	assert.False(t, slot.Refine(ticket, func(v []string) []string { return v }))
}

func TestSlotRejectPublishesError(t *testing.T) {
	slot := NewSlot[int]()
	ticket := slot.Begin()
	require.True(t, slot.Reject(ticket, "server unavailable"))
	assert.Equal(t, "server unavailable", slot.State().Message())
	assert.False(t, slot.Resolve(ticket, 1))
}
