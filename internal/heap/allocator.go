// Package heap implements a buddy-system allocator over a fixed
// power-of-two-sized arena: split on allocate, coalesce on free, with
// internal and external fragmentation accounting.
package heap

import "github.com/eldux123/kernel-simulator/internal/logging"

// Block describes one allocated region, returned to the caller by
// Allocate so it can later be passed to Deallocate.
type Block struct {
	Address uint64
	Size    uint64
	Order   int
}

// Allocator is a buddy-system heap of TotalSize bytes divided down to
// MinBlockSize leaves.
type Allocator struct {
	totalSize    uint64
	minBlockSize uint64
	maxOrder     int

	freeLists [][]Block        // freeLists[order] = free blocks of that order
	allocated map[uint64]Block // address -> allocated block

	totalAllocations      int
	totalDeallocations    int
	totalBytesAllocated   uint64
	totalBytesFreed       uint64
	internalFragmentation uint64
}

// NewAllocator builds an allocator managing totalSize bytes in
// power-of-two blocks no smaller than minBlockSize. Both must already be
// powers of two with totalSize a multiple of minBlockSize.
func NewAllocator(totalSize, minBlockSize uint64) *Allocator {
	a := &Allocator{
		totalSize:    totalSize,
		minBlockSize: minBlockSize,
	}
	a.maxOrder = log2(totalSize / minBlockSize)
	a.reset()
	return a
}

func log2(n uint64) int {
	order := 0
	for n > 1 {
		n >>= 1
		order++
	}
	return order
}

func (a *Allocator) blockSize(order int) uint64 {
	return a.minBlockSize << uint(order)
}

func (a *Allocator) orderFor(size uint64) (int, bool) {
	blockSize := a.minBlockSize
	order := 0
	for blockSize < size && order < a.maxOrder {
		blockSize *= 2
		order++
	}
	if blockSize >= size {
		return order, true
	}
	return 0, false
}

// Allocate reserves a block able to hold size bytes, splitting a larger
// free block as needed. It returns the block and true on success, or the
// zero Block and false if size is zero, exceeds the arena, or no block
// is available.
func (a *Allocator) Allocate(size uint64) (Block, bool) {
	if size == 0 || size > a.totalSize {
		return Block{}, false
	}

	order, ok := a.orderFor(size)
	if !ok {
		return Block{}, false
	}

	current := order
	for current <= a.maxOrder && len(a.freeLists[current]) == 0 {
		current++
	}
	if current > a.maxOrder {
		return Block{}, false
	}

	for current > order {
		a.split(current)
		current--
	}

	list := a.freeLists[order]
	block := list[len(list)-1]
	a.freeLists[order] = list[:len(list)-1]

	a.allocated[block.Address] = block
	a.totalAllocations++
	a.totalBytesAllocated += block.Size
	wasted := block.Size - size
	a.internalFragmentation += wasted

	logging.Logger().WithFields(logging.Event{
		"address": block.Address, "size": block.Size, "requested": size, "wasted": wasted,
	}).Debug("heap allocation")

	return block, true
}

// split takes one free block of order and replaces it with two free
// blocks of order-1 at the same address range.
func (a *Allocator) split(order int) {
	if order <= 0 || len(a.freeLists[order]) == 0 {
		return
	}
	list := a.freeLists[order]
	block := list[len(list)-1]
	a.freeLists[order] = list[:len(list)-1]

	newSize := block.Size / 2
	newOrder := order - 1

	a.freeLists[newOrder] = append(a.freeLists[newOrder],
		Block{Address: block.Address, Size: newSize, Order: newOrder},
		Block{Address: block.Address + newSize, Size: newSize, Order: newOrder},
	)
}

// Deallocate releases a previously allocated block by address, merging
// with its buddy as far up the tree as possible.
func (a *Allocator) Deallocate(address uint64) bool {
	block, ok := a.allocated[address]
	if !ok {
		return false
	}
	delete(a.allocated, address)
	a.totalDeallocations++
	a.totalBytesFreed += block.Size

	logging.Logger().WithFields(logging.Event{"address": address, "size": block.Size}).Debug("heap deallocation")

	a.merge(block)
	return true
}

func (a *Allocator) findBuddyIndex(block Block) int {
	buddyAddress := block.Address ^ block.Size
	for i, b := range a.freeLists[block.Order] {
		if b.Address == buddyAddress {
			return i
		}
	}
	return -1
}

func (a *Allocator) merge(block Block) {
	if block.Order >= a.maxOrder {
		a.freeLists[block.Order] = append(a.freeLists[block.Order], block)
		return
	}

	idx := a.findBuddyIndex(block)
	if idx == -1 {
		a.freeLists[block.Order] = append(a.freeLists[block.Order], block)
		return
	}

	buddy := a.freeLists[block.Order][idx]
	list := a.freeLists[block.Order]
	a.freeLists[block.Order] = append(list[:idx], list[idx+1:]...)

	newAddress := block.Address
	if buddy.Address < newAddress {
		newAddress = buddy.Address
	}
	merged := Block{Address: newAddress, Size: block.Size * 2, Order: block.Order + 1}

	logging.Logger().WithFields(logging.Event{
		"address": merged.Address, "size": merged.Size,
	}).Debug("heap coalesce")

	a.merge(merged)
}

// reset clears every allocation and free list, restoring the arena to
// one whole free block.
func (a *Allocator) reset() {
	a.freeLists = make([][]Block, a.maxOrder+1)
	a.allocated = make(map[uint64]Block)
	a.totalAllocations = 0
	a.totalDeallocations = 0
	a.totalBytesAllocated = 0
	a.totalBytesFreed = 0
	a.internalFragmentation = 0
	a.freeLists[a.maxOrder] = append(a.freeLists[a.maxOrder], Block{Address: 0, Size: a.totalSize, Order: a.maxOrder})
}

// Reset restores the allocator to its initial single-free-block state.
func (a *Allocator) Reset() { a.reset() }

// TotalAllocated returns bytes currently held by outstanding allocations.
func (a *Allocator) TotalAllocated() uint64 {
	return a.totalBytesAllocated - a.totalBytesFreed
}

// TotalFree returns bytes not currently allocated.
func (a *Allocator) TotalFree() uint64 {
	return a.totalSize - a.TotalAllocated()
}

// InternalFragmentation returns the percentage of allocated bytes wasted
// to power-of-two rounding.
func (a *Allocator) InternalFragmentation() float64 {
	if a.totalBytesAllocated == 0 {
		return 0
	}
	return float64(a.internalFragmentation) * 100 / float64(a.totalBytesAllocated)
}

// ExternalFragmentation returns the percentage of free bytes that are
// not part of the single largest contiguous free block.
func (a *Allocator) ExternalFragmentation() float64 {
	totalFree := a.TotalFree()
	if totalFree == 0 {
		return 0
	}
	var largest uint64
	for order := a.maxOrder; order >= 0; order-- {
		if len(a.freeLists[order]) > 0 {
			largest = a.blockSize(order)
			break
		}
	}
	return float64(totalFree-largest) * 100 / float64(totalFree)
}

// Stats is the plain-data reporting surface for the allocator.
type Stats struct {
	TotalAllocations      int
	TotalDeallocations    int
	TotalAllocated        uint64
	TotalFree             uint64
	InternalFragmentation float64
	ExternalFragmentation float64
}

// Report summarizes the allocator's cumulative counters.
func (a *Allocator) Report() Stats {
	return Stats{
		TotalAllocations:      a.totalAllocations,
		TotalDeallocations:    a.totalDeallocations,
		TotalAllocated:        a.TotalAllocated(),
		TotalFree:             a.TotalFree(),
		InternalFragmentation: a.InternalFragmentation(),
		ExternalFragmentation: a.ExternalFragmentation(),
	}
}
