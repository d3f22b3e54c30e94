// Package sync implements the counting semaphore and the synchronization
// engines built on top of it: the bounded-buffer producer/consumer, dining
// philosophers, and readers/writers. None of this package uses the
// standard library's sync package — there is no real concurrency here,
// only bookkeeping for a tick-driven simulation.
package sync

import "github.com/eldux123/kernel-simulator/internal/logging"

// Semaphore is a counting semaphore with a strict FIFO waiter queue of
// PIDs. TryWait/Signal never block; callers observe failure and decide
// what to do (transition to Waiting, retry later).
type Semaphore struct {
	name    string
	value   int
	waiters []int
}

// NewSemaphore builds a semaphore with the given initial value.
func NewSemaphore(name string, initial int) *Semaphore {
	return &Semaphore{name: name, value: initial}
}

// Name returns the semaphore's textual name, used only for logging.
func (s *Semaphore) Name() string { return s.name }

// Value returns the current counter value.
func (s *Semaphore) Value() int { return s.value }

// HasWaiters reports whether any PID is queued.
func (s *Semaphore) HasWaiters() bool { return len(s.waiters) > 0 }

// Waiters returns a copy of the current waiter queue, oldest first.
func (s *Semaphore) Waiters() []int {
	out := make([]int, len(s.waiters))
	copy(out, s.waiters)
	return out
}

// TryWait attempts to decrement the semaphore. On success it returns true.
// On failure it enqueues pid on the FIFO waiter queue and returns false.
func (s *Semaphore) TryWait(pid int) bool {
	if s.value > 0 {
		s.value--
		return true
	}
	s.waiters = append(s.waiters, pid)
	return false
}

// Signal releases one unit back to the pool, always incrementing the
// counter. If a PID was queued, it is dequeued and returned with ok=true
// as a bookkeeping hint about who is now eligible to retry; that PID does
// not otherwise get the unit directly, since re-admission happens the
// next time its blocked operation is retried via TryWait. The counter
// must go up on every Signal, waiter or not: a handoff that left it at 0
// would never again satisfy a retried TryWait, deadlocking the waiter.
func (s *Semaphore) Signal() (pid int, ok bool) {
	s.value++
	if len(s.waiters) > 0 {
		pid = s.waiters[0]
		s.waiters = s.waiters[1:]
		logging.Logger().WithFields(logging.Event{
			"semaphore": s.name, "woken_pid": pid,
		}).Debug("semaphore signaled, waiter eligible to retry")
		return pid, true
	}
	return 0, false
}
