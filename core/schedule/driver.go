package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/trezcool/klabu/core"
)

type (
	// Dispatcher resolves a due item to its concrete action and executes it.
	// A Dispatcher error marks that item as failed; it never stops the Driver.
	Dispatcher interface {
		Dispatch(ctx context.Context, it Item) error
	}

	// DispatchFunc adapts a function to the Dispatcher interface.
	DispatchFunc func(ctx context.Context, it Item) error

	// Loader lists all items that should be pending, used to (re)build the
	// queue from storage at boot.
	Loader interface {
		LoadPending(ctx context.Context) ([]Item, error)
	}
)

func (f DispatchFunc) Dispatch(ctx context.Context, it Item) error { return f(ctx, it) }

// Driver guarantees that exactly one timer is armed for the earliest pending
// item, and that each firing dispatches that item's action, removes it from
// the queue, and re-arms for the next item — even when the action fails.
//
// Within one Driver, items fire in non-decreasing trigger order, one at a
// time. Independent Drivers do not coordinate and may fire concurrently.
//
// All methods are safe for concurrent use.
type Driver struct {
	name       string
	dispatcher Dispatcher
	log        core.Logger
	now        func() time.Time // hooked for testing

	mu sync.Mutex
	q  *Queue

	// notify is a buffered channel of capacity 1. Insert/Cancel send a signal
	// whenever the queue head may have changed, prompting the run goroutine
	// to re-evaluate its sleep duration (preemption).
	notify chan struct{}

	done chan struct{}
	wg   sync.WaitGroup
}

// NewDriver creates a Driver dispatching due items to d. Call Start to begin.
func NewDriver(name string, d Dispatcher, logger core.Logger) *Driver {
	return &Driver{
		name:       name,
		dispatcher: d,
		log:        logger,
		now:        time.Now,
		q:          NewQueue(),
		notify:     make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
}

// Bootstrap replaces the queue contents with the loader's pending set.
// Loading the same set twice cannot double-fire: the queue is cleared first
// and holds one entry per ID.
func (d *Driver) Bootstrap(ctx context.Context, loader Loader) error {
	items, err := loader.LoadPending(ctx)
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.q.Clear()
	for _, it := range items {
		d.q.Insert(it)
	}
	n := d.q.Len()
	d.mu.Unlock()

	d.log.Info(fmt.Sprintf("scheduler %s: bootstrapped %d pending item(s)", d.name, n))
	d.nudge()
	return nil
}

// Add queues an item. If it is due before the currently armed target, the
// run goroutine re-arms for it. A past-due trigger fires promptly.
func (d *Driver) Add(it Item) {
	d.mu.Lock()
	d.q.Insert(it)
	d.mu.Unlock()
	d.nudge()
}

// Cancel drops a queued item so it never fires. No-op if the item already
// fired or was never queued.
func (d *Driver) Cancel(id string) bool {
	d.mu.Lock()
	removed := d.q.Remove(id)
	d.mu.Unlock()
	if removed {
		d.nudge()
	}
	return removed
}

// Len returns the number of pending items.
func (d *Driver) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.q.Len()
}

// Pending returns a snapshot of the queued items in firing order.
func (d *Driver) Pending() []Item {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.q.SnapshotAscending()
}

// Start launches the background run goroutine. Must be called exactly once.
func (d *Driver) Start(ctx context.Context) {
	d.wg.Add(1)
	go d.run(ctx)
}

// Stop shuts down the run goroutine and waits for it to exit.
// Items still queued are abandoned; Bootstrap rebuilds them on next start.
func (d *Driver) Stop() {
	select {
	case <-d.done:
		// already stopped
	default:
		close(d.done)
	}
	d.wg.Wait()
}

// nudge signals the run goroutine to re-evaluate the queue head.
// Non-blocking: if a signal is already pending, the goroutine wakes soon anyway.
func (d *Driver) nudge() {
	select {
	case d.notify <- struct{}{}:
	default:
	}
}

func (d *Driver) run(ctx context.Context) {
	defer d.wg.Done()

	// timer is allocated on the first arm and reused afterwards; at most one
	// is armed at any time, and it is always stopped and drained before the
	// next Reset.
	var t *time.Timer
	defer func() {
		if t != nil {
			t.Stop()
		}
	}()

	for {
		d.mu.Lock()
		next, ok := d.q.PeekEarliest()
		d.mu.Unlock()

		if !ok {
			// Queue is empty — stay idle until an item arrives or shutdown.
			select {
			case <-ctx.Done():
				return
			case <-d.done:
				return
			case <-d.notify:
				// An item was added; loop around to re-evaluate.
			}
			continue
		}

		delay := next.TriggerAt.Sub(d.now())
		if delay <= 0 {
			// Already due — fire without sleeping.
			d.fire(ctx)
			continue
		}

		// Arm the timer for the earliest item, but stay responsive to queue
		// changes (notify) and shutdown.
		if t == nil {
			t = time.NewTimer(delay)
		} else {
			t.Reset(delay)
		}

		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-d.done:
			t.Stop()
			return
		case <-d.notify:
			// The head may have changed; re-arm from the top. Drain the
			// channel in case the timer fired between the arm and the Stop.
			if !t.Stop() {
				select {
				case <-t.C:
				default:
				}
			}
		case <-t.C:
			// Fired and drained; safe to Reset on the next arm.
			d.fire(ctx)
		}
	}
}

// fire pops the earliest item (exactly once) and dispatches it (at most
// once). The pop happens regardless of the dispatch outcome so one bad item
// can never stall the pipeline.
func (d *Driver) fire(ctx context.Context) {
	d.mu.Lock()
	it, ok := d.q.PopEarliest()
	d.mu.Unlock()
	if !ok {
		return
	}
	d.dispatch(ctx, it)
}

// dispatch is the failure boundary around the item's action: errors and
// panics are logged, never propagated.
func (d *Driver) dispatch(ctx context.Context, it Item) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("scheduler %s: dispatch panic on %s %q: %v", d.name, it.Kind, it.ID, r)
			d.log.Error(err.Error(), err)
		}
	}()

	if err := d.dispatcher.Dispatch(ctx, it); err != nil {
		d.log.Error(fmt.Sprintf("scheduler %s: dispatching %s %q: %v", d.name, it.Kind, it.ID, err), err)
	}
}
