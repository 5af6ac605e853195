package schedule

import (
	"testing"
	"time"
)

var qBase = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func qItem(id string, kind Kind, at time.Time) Item {
	return Item{ID: id, Kind: kind, TriggerAt: at}
}

func popAll(q *Queue) []string {
	var ids []string
	for {
		it, ok := q.PopEarliest()
		if !ok {
			return ids
		}
		ids = append(ids, it.ID)
	}
}

func TestQueue_PopOrder(t *testing.T) {
	q := NewQueue()
	q.Insert(qItem("c", KindContest, qBase.Add(3*time.Hour)))
	q.Insert(qItem("a", KindMeeting, qBase.Add(1*time.Hour)))
	q.Insert(qItem("d", KindContest, qBase.Add(4*time.Hour)))
	q.Insert(qItem("b", KindMeeting, qBase.Add(2*time.Hour)))

	want := []string{"a", "b", "c", "d"}
	got := popAll(q)
	if len(got) != len(want) {
		t.Fatalf("popped %d items; want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pop[%d] = %q; want %q", i, got[i], want[i])
		}
	}
	if q.Len() != 0 {
		t.Errorf("Len() = %d after drain; want 0", q.Len())
	}
}

func TestQueue_EqualTriggersPopInInsertionOrder(t *testing.T) {
	q := NewQueue()
	at := qBase.Add(time.Hour)
	q.Insert(qItem("first", KindMeeting, at))
	q.Insert(qItem("second", KindContest, at))
	q.Insert(qItem("third", KindMeeting, at))

	want := []string{"first", "second", "third"}
	got := popAll(q)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pop[%d] = %q; want %q", i, got[i], want[i])
		}
	}
}

func TestQueue_InsertReplacesSameID(t *testing.T) {
	q := NewQueue()
	q.Insert(qItem("x", KindContest, qBase.Add(time.Hour)))
	q.Insert(qItem("y", KindContest, qBase.Add(2*time.Hour)))
	// reschedule "x" later than "y"
	q.Insert(qItem("x", KindContest, qBase.Add(3*time.Hour)))

	if q.Len() != 2 {
		t.Fatalf("Len() = %d; want 2", q.Len())
	}
	it, ok := q.PopEarliest()
	if !ok || it.ID != "y" {
		t.Errorf("PopEarliest() = %q, %v; want \"y\", true", it.ID, ok)
	}
	it, ok = q.PopEarliest()
	if !ok || it.ID != "x" {
		t.Errorf("PopEarliest() = %q, %v; want \"x\", true", it.ID, ok)
	}
	if !it.TriggerAt.Equal(qBase.Add(3 * time.Hour)) {
		t.Errorf("rescheduled trigger = %v; want %v", it.TriggerAt, qBase.Add(3*time.Hour))
	}
}

func TestQueue_Remove(t *testing.T) {
	q := NewQueue()
	q.Insert(qItem("a", KindMeeting, qBase.Add(1*time.Hour)))
	q.Insert(qItem("b", KindMeeting, qBase.Add(2*time.Hour)))
	q.Insert(qItem("c", KindMeeting, qBase.Add(3*time.Hour)))

	if !q.Remove("b") {
		t.Error("Remove(\"b\") = false; want true")
	}
	if q.Remove("b") {
		t.Error("second Remove(\"b\") = true; want false")
	}
	if q.Remove("nope") {
		t.Error("Remove(\"nope\") = true; want false")
	}

	got := popAll(q)
	want := []string{"a", "c"}
	if len(got) != len(want) {
		t.Fatalf("popped %v; want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pop[%d] = %q; want %q", i, got[i], want[i])
		}
	}
}

func TestQueue_EmptySentinels(t *testing.T) {
	q := NewQueue()
	if _, ok := q.PeekEarliest(); ok {
		t.Error("PeekEarliest() on empty queue reported an item")
	}
	if _, ok := q.PopEarliest(); ok {
		t.Error("PopEarliest() on empty queue reported an item")
	}
	if q.Len() != 0 {
		t.Errorf("Len() = %d; want 0", q.Len())
	}
}

func TestQueue_PeekDoesNotRemove(t *testing.T) {
	q := NewQueue()
	q.Insert(qItem("a", KindContest, qBase))

	for i := 0; i < 3; i++ {
		it, ok := q.PeekEarliest()
		if !ok || it.ID != "a" {
			t.Fatalf("PeekEarliest() = %q, %v; want \"a\", true", it.ID, ok)
		}
	}
	if q.Len() != 1 {
		t.Errorf("Len() = %d after peeks; want 1", q.Len())
	}
}

func TestQueue_Clear(t *testing.T) {
	q := NewQueue()
	q.Insert(qItem("a", KindMeeting, qBase))
	q.Insert(qItem("b", KindMeeting, qBase.Add(time.Hour)))
	q.Clear()

	if q.Len() != 0 {
		t.Errorf("Len() = %d after Clear; want 0", q.Len())
	}
	// cleared IDs are insertable again
	q.Insert(qItem("a", KindMeeting, qBase))
	if q.Len() != 1 {
		t.Errorf("Len() = %d; want 1", q.Len())
	}
}

func TestQueue_SnapshotAscending(t *testing.T) {
	q := NewQueue()
	q.Insert(qItem("b", KindContest, qBase.Add(2*time.Hour)))
	q.Insert(qItem("a", KindMeeting, qBase.Add(1*time.Hour)))
	q.Insert(qItem("c", KindContest, qBase.Add(3*time.Hour)))

	snap := q.SnapshotAscending()
	want := []string{"a", "b", "c"}
	if len(snap) != len(want) {
		t.Fatalf("snapshot has %d items; want %d", len(snap), len(want))
	}
	for i := range want {
		if snap[i].ID != want[i] {
			t.Errorf("snapshot[%d] = %q; want %q", i, snap[i].ID, want[i])
		}
	}

	// pop order must be unaffected
	got := popAll(q)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pop[%d] = %q after snapshot; want %q", i, got[i], want[i])
		}
	}
}
