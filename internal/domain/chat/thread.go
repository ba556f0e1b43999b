package chat

import (
	"academy/internal/domain/shared/reconcile"
	"academy/internal/domain/wire"
)

// MergeMessages merges incoming into a transcript, dedupes by id and orders
// oldest first.
func MergeMessages(existing, incoming []Message) []Message {
	merged := reconcile.Merge(existing, incoming, messageKey)
	return reconcile.Sorted(merged, reconcile.Ascending(func(m Message) string { return m.CreatedAt }))
}

// ConfirmMessage swaps the optimistic copy localID for the server's confirmed
// message. When the confirmed id is already present the local copy is dropped.
func ConfirmMessage(list []Message, localID wire.Identifier, confirmed Message) []Message {
	if reconcile.Find(list, confirmed.ID, messageKey) >= 0 {
		return reconcile.Remove(list, localID, messageKey)
	}
	i := reconcile.Find(list, localID, messageKey)
	if i < 0 {
		return MergeMessages(list, []Message{confirmed})
	}
	out := append([]Message(nil), list...)
	out[i] = confirmed
	return MergeMessages(out, nil)
}

// MarkThreadRead marks every message local received as read.
func MarkThreadRead(list []Message, local wire.Identifier) []Message {
	out := make([]Message, len(list))
	for i, m := range list {
		if m.IsIncoming(local) {
			m.IsRead = true
		}
		out[i] = m
	}
	return out
}
