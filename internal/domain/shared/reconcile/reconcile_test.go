package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID    string
	Value int
}

func rowKey(r row) string { return r.ID }

func TestUpsertReplacesOrAppends(t *testing.T) {
	start := []row{{"a", 1}, {"b", 2}}

	replaced := Upsert(start, row{"a", 10}, rowKey)
	assert.Equal(t, []row{{"a", 10}, {"b", 2}}, replaced)

	appended := Upsert(start, row{"c", 3}, rowKey)
	assert.Equal(t, []row{{"a", 1}, {"b", 2}, {"c", 3}}, appended)

	assert.Equal(t, []row{{"a", 1}, {"b", 2}}, start, "input must stay untouched")
}

func TestUpsertFuncSeesExisting(t *testing.T) {
	start := []row{{"a", 1}}
	bump := func(existing *row) row {
		if existing == nil {
			return row{"a", 100}
		}
		return row{existing.ID, existing.Value + 1}
	}
	out := UpsertFunc(start, "a", rowKey, bump)
	assert.Equal(t, []row{{"a", 2}}, out)
	out = UpsertFunc(nil, "a", rowKey, bump)
	assert.Equal(t, []row{{"a", 100}}, out)
}

func TestMergeCollapsesDuplicates(t *testing.T) {
	out := Merge([]row{{"a", 1}}, []row{{"b", 2}, {"a", 3}, {"b", 4}}, rowKey)
	require.Len(t, out, 2)
	assert.Equal(t, row{"a", 3}, out[0])
	assert.Equal(t, row{"b", 4}, out[1])
}

func TestDedupeRemoveFind(t *testing.T) {
	list := []row{{"a", 1}, {"b", 2}, {"a", 3}}
	assert.Equal(t, []row{{"a", 1}, {"b", 2}}, Dedupe(list, rowKey))
	assert.Equal(t, []row{{"b", 2}}, Remove(list, "a", rowKey))
	assert.Equal(t, 1, Find(list, "b", rowKey))
	assert.Equal(t, -1, Find(list, "z", rowKey))
}

func TestSortedIsStable(t *testing.T) {
	list := []row{{"a", 1}, {"b", 2}, {"c", 1}, {"d", 2}}
	out := Sorted(list, Descending(func(r row) int { return r.Value }))
	assert.Equal(t, []row{{"b", 2}, {"d", 2}, {"a", 1}, {"c", 1}}, out)
	out = Sorted(list, Ascending(func(r row) int { return r.Value }))
	assert.Equal(t, []row{{"a", 1}, {"c", 1}, {"b", 2}, {"d", 2}}, out)
}
