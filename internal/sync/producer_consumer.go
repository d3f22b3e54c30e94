package sync

import "github.com/eldux123/kernel-simulator/internal/logging"

// Semaphore identifiers for the buffer's three semaphores. They are not the
// TryProduce/TryConsume result codes below: those are 1 or 2 on failure,
// and the scheduler records the failed result code minus one in
// BlockedOnSemaphore.
const (
	SemEmpty = 0
	SemFull  = 1
	SemMutex = 2
)

// Result codes for TryProduce/TryConsume.
const (
	OK            = 0
	BlockedBuffer = 1
	BlockedMutex  = 2
)

// ProducerConsumer is a bounded buffer guarded by three counting
// semaphores, following the classic empty/full/mutex construction.
type ProducerConsumer struct {
	Capacity int
	buffer   []int
	nextItem int

	Empty *Semaphore
	Full  *Semaphore
	Mutex *Semaphore
}

// NewProducerConsumer builds a bounded buffer of the given capacity.
func NewProducerConsumer(capacity int) *ProducerConsumer {
	return &ProducerConsumer{
		Capacity: capacity,
		Empty:    NewSemaphore("empty", capacity),
		Full:     NewSemaphore("full", 0),
		Mutex:    NewSemaphore("mutex", 1),
	}
}

// BufferLen returns the number of items currently buffered.
func (pc *ProducerConsumer) BufferLen() int { return len(pc.buffer) }

// IsFull reports whether the buffer is at capacity.
func (pc *ProducerConsumer) IsFull() bool { return len(pc.buffer) >= pc.Capacity }

// IsEmpty reports whether the buffer holds no items.
func (pc *ProducerConsumer) IsEmpty() bool { return len(pc.buffer) == 0 }

// TryProduce attempts to insert one item on behalf of pid. It returns OK on
// success, BlockedBuffer if the empty-slot semaphore blocked (buffer full),
// or BlockedMutex if the buffer was momentarily locked by another holder.
func (pc *ProducerConsumer) TryProduce(pid int) int {
	if !pc.Empty.TryWait(pid) {
		return BlockedBuffer
	}
	if !pc.Mutex.TryWait(pid) {
		pc.Empty.Signal()
		return BlockedMutex
	}

	item := pc.nextItem
	pc.nextItem++
	pc.buffer = append(pc.buffer, item)

	pc.Mutex.Signal()
	pc.Full.Signal()

	logging.Logger().WithFields(logging.Event{
		"pid": pid, "item": item, "buffer_len": len(pc.buffer),
	}).Debug("producer inserted item")
	return OK
}

// TryConsume attempts to remove one item on behalf of pid, with the same
// result codes as TryProduce (BlockedBuffer means the buffer was empty).
func (pc *ProducerConsumer) TryConsume(pid int) (item int, code int) {
	if !pc.Full.TryWait(pid) {
		return 0, BlockedBuffer
	}
	if !pc.Mutex.TryWait(pid) {
		pc.Full.Signal()
		return 0, BlockedMutex
	}

	item = pc.buffer[0]
	pc.buffer = pc.buffer[1:]

	pc.Mutex.Signal()
	pc.Empty.Signal()

	logging.Logger().WithFields(logging.Event{
		"pid": pid, "item": item, "buffer_len": len(pc.buffer),
	}).Debug("consumer removed item")
	return item, OK
}
