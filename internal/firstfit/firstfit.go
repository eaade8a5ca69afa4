package firstfit

import (
	"fmt"
	"sync"

	"github.com/garethgeorge/memsim/internal/allocerr"
	"github.com/google/btree"
)

// DefaultCapacities returns the reference block layout in KB.
func DefaultCapacities() []int {
	return []int{200, 300, 100, 500, 50}
}

type block struct {
	capacity  int
	allocated int
}

// occupied is derived from the allocated amount, an allocation is always > 0 KB.
func (b block) occupied() bool {
	return b.allocated > 0
}

// Placement describes where an allocation landed.
type Placement struct {
	Index    int // 1-based block number
	Capacity int
	Size     int
}

// BlockRow is a read-only view of one block.
type BlockRow struct {
	Index     int // 1-based block number
	Capacity  int
	Allocated int
	Free      int
	Occupied  bool
}

// Stats summarizes usage and fragmentation across all blocks.
type Stats struct {
	Blocks         int
	OccupiedBlocks int
	TotalCapacity  int
	Allocated      int
	// FreeCapacity is the capacity of blocks that hold no process.
	FreeCapacity int
	// InternalFragmentation is the unused capacity inside occupied blocks.
	InternalFragmentation int
	LargestFreeBlock      int
}

// Allocator places each request into the first free block, in index order,
// that is large enough to hold it. Blocks never split or merge.
// It is safe for concurrent use; every operation holds a single lock.
type Allocator struct {
	mu     sync.Mutex
	blocks []block
	// free tracks the 0-based indices of unoccupied blocks in ascending order.
	free *btree.BTreeG[int]
}

func New(capacities []int) (*Allocator, error) {
	if len(capacities) == 0 {
		return nil, fmt.Errorf("first-fit: at least one block is required")
	}
	blocks := make([]block, len(capacities))
	for i, c := range capacities {
		if c <= 0 {
			return nil, fmt.Errorf("first-fit: block %d has non-positive capacity %d", i+1, c)
		}
		blocks[i] = block{capacity: c}
	}
	a := &Allocator{
		blocks: blocks,
		free:   btree.NewG[int](32, func(x, y int) bool { return x < y }),
	}
	a.resetLocked()
	return a, nil
}

// NewDefault returns an allocator over DefaultCapacities.
func NewDefault() *Allocator {
	a, err := New(DefaultCapacities())
	if err != nil {
		panic("first-fit: invalid default capacities: " + err.Error())
	}
	return a
}

func (a *Allocator) resetLocked() {
	a.free.Clear(true)
	for i := range a.blocks {
		a.blocks[i].allocated = 0
		a.free.ReplaceOrInsert(i)
	}
}

// Len reports the number of blocks.
func (a *Allocator) Len() int {
	return len(a.blocks)
}

// Allocate places a request of size KB into the first free block with
// enough capacity. State is unchanged on error.
func (a *Allocator) Allocate(size int) (Placement, error) {
	if err := allocerr.ValidateRequestSize(size); err != nil {
		return Placement{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	idx := -1
	a.free.Ascend(func(i int) bool {
		if a.blocks[i].capacity >= size {
			idx = i
			return false // stop
		}
		return true
	})
	if idx < 0 {
		return Placement{}, allocerr.New(allocerr.NoSuitableBlock, size)
	}

	a.free.Delete(idx)
	a.blocks[idx].allocated = size
	return Placement{Index: idx + 1, Capacity: a.blocks[idx].capacity, Size: size}, nil
}

// Deallocate frees the block with the given 1-based number.
func (a *Allocator) Deallocate(index int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if index < 1 || index > len(a.blocks) {
		return allocerr.New(allocerr.InvalidBlockIndex, index)
	}
	b := &a.blocks[index-1]
	if !b.occupied() {
		return allocerr.New(allocerr.AlreadyFree, index)
	}
	b.allocated = 0
	a.free.ReplaceOrInsert(index - 1)
	return nil
}

// Reset frees every block. Capacities are unchanged.
func (a *Allocator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.resetLocked()
}

// Snapshot returns one row per block in index order.
func (a *Allocator) Snapshot() []BlockRow {
	a.mu.Lock()
	defer a.mu.Unlock()

	rows := make([]BlockRow, len(a.blocks))
	for i, b := range a.blocks {
		rows[i] = BlockRow{
			Index:     i + 1,
			Capacity:  b.capacity,
			Allocated: b.allocated,
			Free:      b.capacity - b.allocated,
			Occupied:  b.occupied(),
		}
	}
	return rows
}

func (a *Allocator) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := Stats{Blocks: len(a.blocks)}
	for _, b := range a.blocks {
		s.TotalCapacity += b.capacity
		s.Allocated += b.allocated
		if b.occupied() {
			s.OccupiedBlocks++
			s.InternalFragmentation += b.capacity - b.allocated
			continue
		}
		s.FreeCapacity += b.capacity
		if b.capacity > s.LargestFreeBlock {
			s.LargestFreeBlock = b.capacity
		}
	}
	return s
}
