package sched

import (
	"sort"
	"sync"
	"time"
)

// Task is a one-shot action run by Drain on the tick thread
type Task struct {
	Due        time.Time
	Generation uint64
	Name       string
	Run        func(now time.Time)

	seq uint64
}

// Queue is the single event queue drained once per tick. After and Post may
// be called from any goroutine; Run always happens inside Drain.
type Queue struct {
	mu      sync.Mutex
	pending []Task
	seq     uint64
	floor   uint64
}

func NewQueue() *Queue { return &Queue{} }

// After schedules fn to run on the first tick at or past now+delay
func (q *Queue) After(now time.Time, delay time.Duration, gen uint64, name string, fn func(time.Time)) {
	q.push(Task{Due: now.Add(delay), Generation: gen, Name: name, Run: fn})
}

// Post schedules fn for the next tick. Used to hand async results back.
func (q *Queue) Post(gen uint64, name string, fn func(time.Time)) {
	q.push(Task{Generation: gen, Name: name, Run: fn})
}

func (q *Queue) push(t Task) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if t.Generation < q.floor {
		return
	}
	q.seq++
	t.seq = q.seq

	// keep pending sorted by (Due, seq)
	i := sort.Search(len(q.pending), func(i int) bool {
		p := q.pending[i]
		if p.Due.Equal(t.Due) {
			return p.seq > t.seq
		}
		return p.Due.After(t.Due)
	})
	q.pending = append(q.pending, Task{})
	copy(q.pending[i+1:], q.pending[i:])
	q.pending[i] = t
}

// Drain runs every task due at now, in due order. Tasks queued while
// draining wait for the next call.
func (q *Queue) Drain(now time.Time) int {
	q.mu.Lock()
	n := sort.Search(len(q.pending), func(i int) bool {
		return q.pending[i].Due.After(now)
	})
	due := make([]Task, n)
	copy(due, q.pending[:n])
	q.pending = append(q.pending[:0], q.pending[n:]...)
	q.mu.Unlock()

	ran := 0
	for _, t := range due {
		if t.Generation < q.Floor() {
			continue
		}
		t.Run(now)
		ran++
	}
	return ran
}

// Cancel drops every task older than gen and refuses new ones
func (q *Queue) Cancel(gen uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if gen > q.floor {
		q.floor = gen
	}
	kept := q.pending[:0]
	for _, t := range q.pending {
		if t.Generation >= q.floor {
			kept = append(kept, t)
		}
	}
	q.pending = kept
}

func (q *Queue) Floor() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.floor
}

// Len is the number of tasks waiting
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Names lists pending task names in run order
func (q *Queue) Names() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]string, len(q.pending))
	for i, t := range q.pending {
		out[i] = t.Name
	}
	return out
}
