package sync

import "github.com/eldux123/kernel-simulator/internal/logging"

// ReadersWriters is the readers-preference variant: any number of
// readers may hold the resource concurrently, but a writer needs
// exclusive access. readCount is itself guarded by mutex, and only the
// first reader in and the last reader out touch the writer lock.
type ReadersWriters struct {
	mutex *Semaphore
	wrt   *Semaphore

	readCount   int
	totalReads  int
	totalWrites int
}

// NewReadersWriters builds the engine with both locks free.
func NewReadersWriters() *ReadersWriters {
	return &ReadersWriters{
		mutex: NewSemaphore("rw-mutex", 1),
		wrt:   NewSemaphore("rw-writer", 1),
	}
}

// TryRead attempts to register pid as an active reader. It fails if the
// readCount lock is contended or, for the first reader, if a writer
// currently holds the resource.
func (rw *ReadersWriters) TryRead(pid int) bool {
	if !rw.mutex.TryWait(pid) {
		return false
	}

	rw.readCount++
	if rw.readCount == 1 {
		if !rw.wrt.TryWait(pid) {
			rw.readCount--
			rw.mutex.Signal()
			return false
		}
	}
	rw.mutex.Signal()
	rw.totalReads++
	logging.Logger().WithFields(logging.Event{"pid": pid, "readers": rw.readCount}).Debug("reader admitted")
	return true
}

// FinishRead releases pid's read hold. The last reader out releases the
// writer lock. Unlike the original this always uses the caller's real
// pid on the mutex, never a forced acquire.
func (rw *ReadersWriters) FinishRead(pid int) {
	rw.mutex.TryWait(pid)
	rw.readCount--
	if rw.readCount == 0 {
		rw.wrt.Signal()
	}
	rw.mutex.Signal()
}

// TryWrite attempts to grant pid exclusive access.
func (rw *ReadersWriters) TryWrite(pid int) bool {
	if !rw.wrt.TryWait(pid) {
		return false
	}
	rw.totalWrites++
	logging.Logger().WithFields(logging.Event{"pid": pid}).Debug("writer admitted")
	return true
}

// FinishWrite releases pid's exclusive hold.
func (rw *ReadersWriters) FinishWrite() {
	rw.wrt.Signal()
}

// ReadCount returns the number of currently active readers.
func (rw *ReadersWriters) ReadCount() int { return rw.readCount }

// TotalReads returns the cumulative number of completed TryRead admissions.
func (rw *ReadersWriters) TotalReads() int { return rw.totalReads }

// TotalWrites returns the cumulative number of completed TryWrite admissions.
func (rw *ReadersWriters) TotalWrites() int { return rw.totalWrites }
