// Package schedule implements the single-timer dynamic rescheduler behind
// club reminders and contest-result collection.
//
// A Queue is a Min-Heap of pending items keyed by trigger time:
//   - peek → O(1), always the next item due to fire
//   - insert/pop → O(log N)
//
// A Driver owns one Queue and at most one armed timer. It sleeps until the
// earliest item is due, dispatches it, then re-arms for the new earliest
// item. Inserting an item that is due sooner than the armed target nudges
// the driver to re-arm early.
package schedule

import (
	"container/heap"
	"sort"
	"time"
)

// Kind discriminates what a pending item refers to.
type Kind string

const (
	KindMeeting Kind = "meeting"
	KindContest Kind = "contest"
)

// Item is one unit of schedulable work: a lightweight projection of a
// contest or meeting. Full details are re-fetched from storage by ID when
// the item fires, so edits between queueing and firing are not lost.
type Item struct {
	ID        string    `json:"id"`
	Kind      Kind      `json:"kind"`
	Platform  string    `json:"platform,omitempty"` // contests only
	TriggerAt time.Time `json:"trigger_at"`         // UTC
}

// entry wraps an Item in the heap.
type entry struct {
	item Item
	// seq breaks ties between items with equal trigger times: insertion order.
	seq uint64
	// index is the entry's current position in the heap slice, maintained by
	// itemHeap.Swap so Remove can re-heapify in O(log N).
	index int
}

// itemHeap is a slice of *entry satisfying heap.Interface; the earliest
// trigger time sits at index 0.
type itemHeap []*entry

func (h itemHeap) Len() int { return len(h) }

func (h itemHeap) Less(i, j int) bool {
	if !h[i].item.TriggerAt.Equal(h[j].item.TriggerAt) {
		return h[i].item.TriggerAt.Before(h[j].item.TriggerAt)
	}
	return h[i].seq < h[j].seq
}

func (h itemHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *itemHeap) Push(x interface{}) {
	e := x.(*entry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *itemHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil // allow GC
	e.index = -1   // mark as not in heap
	*h = old[:n-1]
	return e
}

// Queue maintains pending items ordered by trigger time, ascending.
// It holds at most one entry per item ID: inserting an ID that is already
// queued replaces the stale entry.
//
// Queue is not safe for concurrent use; the owning Driver serializes access.
type Queue struct {
	h    itemHeap
	byID map[string]*entry
	seq  uint64
}

func NewQueue() *Queue {
	h := make(itemHeap, 0, 64)
	heap.Init(&h)
	return &Queue{
		h:    h,
		byID: make(map[string]*entry),
	}
}

// Insert adds an item, replacing any queued entry with the same ID.
func (q *Queue) Insert(it Item) {
	if prev, ok := q.byID[it.ID]; ok {
		heap.Remove(&q.h, prev.index)
		delete(q.byID, it.ID)
	}

	q.seq++
	e := &entry{item: it, seq: q.seq}
	heap.Push(&q.h, e)
	q.byID[it.ID] = e
}

// PeekEarliest returns the item with the smallest trigger time without
// removing it. The second return is false when the queue is empty; an empty
// queue is an expected steady state, not an error.
func (q *Queue) PeekEarliest() (Item, bool) {
	if q.h.Len() == 0 {
		return Item{}, false
	}
	return q.h[0].item, true
}

// PopEarliest removes and returns the earliest item.
func (q *Queue) PopEarliest() (Item, bool) {
	if q.h.Len() == 0 {
		return Item{}, false
	}
	e := heap.Pop(&q.h).(*entry)
	delete(q.byID, e.item.ID)
	return e.item, true
}

// Remove drops the entry with the given ID, if queued. O(log N).
func (q *Queue) Remove(id string) bool {
	e, ok := q.byID[id]
	if !ok {
		return false
	}
	heap.Remove(&q.h, e.index)
	delete(q.byID, id)
	return true
}

// Clear drains all items. Used for hard resets and re-bootstrap.
func (q *Queue) Clear() {
	q.h = q.h[:0]
	q.byID = make(map[string]*entry)
}

func (q *Queue) Len() int { return q.h.Len() }

// SnapshotAscending returns all queued items sorted by trigger time without
// mutating the heap. Diagnostic/listing use.
func (q *Queue) SnapshotAscending() []Item {
	entries := make([]*entry, len(q.h))
	copy(entries, q.h)
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].item.TriggerAt.Equal(entries[j].item.TriggerAt) {
			return entries[i].item.TriggerAt.Before(entries[j].item.TriggerAt)
		}
		return entries[i].seq < entries[j].seq
	})

	items := make([]Item, len(entries))
	for i, e := range entries {
		items[i] = e.item
	}
	return items
}
