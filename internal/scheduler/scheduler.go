// Package scheduler runs recurring tasks on an externally driven clock.
//
// The host calls Advance with the current time, from a bubbletea tick, a
// ticker loop or a test. Due tasks run serially on the caller's goroutine,
// so two runs of one task never overlap.
package scheduler

import (
	"container/heap"
	"context"
	"sync"
	"time"
)

// TaskFunc runs one tick at time now and returns the delay until its next
// run. A non-positive delay unregisters the task.
type TaskFunc func(now time.Duration) time.Duration

// TaskID identifies a registered task.
type TaskID uint64

// Expirer receives the clock after every Advance. The voice pool uses it to
// run deferred releases.
type Expirer interface {
	Expire(now time.Duration) int
}

type entry struct {
	id    TaskID
	due   time.Duration
	fn    TaskFunc
	index int // position in the heap, -1 when not queued
}

type queue []*entry

func (q queue) Len() int { return len(q) }
func (q queue) Less(i, j int) bool {
	if q[i].due != q[j].due {
		return q[i].due < q[j].due
	}
	return q[i].id < q[j].id
}
func (q queue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}
func (q *queue) Push(x any) {
	e := x.(*entry)
	e.index = len(*q)
	*q = append(*q, e)
}
func (q *queue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*q = old[:n-1]
	return e
}

// Scheduler is a cooperative task list keyed by due time.
type Scheduler struct {
	runMu sync.Mutex // serializes Advance

	mu      sync.Mutex
	queue   queue
	tasks   map[TaskID]*entry
	nextID  TaskID
	now     time.Duration
	expirer Expirer
}

// New creates a scheduler. expirer may be nil.
func New(expirer Expirer) *Scheduler {
	return &Scheduler{
		tasks:   make(map[TaskID]*entry),
		expirer: expirer,
	}
}

// Now returns the time of the latest Advance.
func (s *Scheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Add registers fn to first run delay after the current time.
func (s *Scheduler) Add(fn TaskFunc, delay time.Duration) TaskID {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	e := &entry{id: s.nextID, due: s.now + max(delay, 0), fn: fn}
	s.tasks[e.id] = e
	heap.Push(&s.queue, e)
	return e.id
}

// Every registers fn to run at a fixed interval, starting one interval from now.
func (s *Scheduler) Every(interval time.Duration, fn func(now time.Duration)) TaskID {
	return s.Add(func(now time.Duration) time.Duration {
		fn(now)
		return interval
	}, interval)
}

// Cancel unregisters a task. A task cancelled while running is not
// rescheduled. Reports whether the task was registered.
func (s *Scheduler) Cancel(id TaskID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.tasks[id]
	if !ok {
		return false
	}
	delete(s.tasks, id)
	if e.index >= 0 {
		heap.Remove(&s.queue, e.index)
	}
	return true
}

// Len returns the number of registered tasks.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Advance moves the clock to now, runs every task due at or before now once,
// then hands the clock to the expirer. The clock never moves backwards.
// Returns the number of task runs.
func (s *Scheduler) Advance(now time.Duration) int {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	s.mu.Lock()
	if now < s.now {
		now = s.now
	}
	s.now = now
	s.mu.Unlock()

	ran := 0
	for {
		s.mu.Lock()
		if len(s.queue) == 0 || s.queue[0].due > now {
			s.mu.Unlock()
			break
		}
		e := heap.Pop(&s.queue).(*entry)
		s.mu.Unlock()

		next := e.fn(now)
		ran++

		s.mu.Lock()
		if _, live := s.tasks[e.id]; live {
			if next <= 0 {
				delete(s.tasks, e.id)
			} else {
				e.due += next
				if e.due <= now {
					e.due = now + next
				}
				heap.Push(&s.queue, e)
			}
		}
		s.mu.Unlock()
	}

	if s.expirer != nil {
		s.expirer.Expire(now)
	}
	return ran
}

// Run drives Advance from a ticker until ctx is done. clock supplies the
// current time on the same timeline tasks are scheduled against.
func (s *Scheduler) Run(ctx context.Context, period time.Duration, clock func() time.Duration) error {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Advance(clock())
		}
	}
}
