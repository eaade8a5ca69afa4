package sim

import (
	"fmt"

	"github.com/garethgeorge/memsim/internal/allocerr"
	"github.com/garethgeorge/memsim/internal/firstfit"
)

type firstFitEngine struct {
	alloc *firstfit.Allocator
}

var _ Engine = (*firstFitEngine)(nil)

func newFirstFitEngine(blocks []int) (*firstFitEngine, error) {
	a, err := firstfit.New(blocks)
	if err != nil {
		return nil, err
	}
	return &firstFitEngine{alloc: a}, nil
}

func (e *firstFitEngine) Mode() Mode {
	return FirstFit
}

func (e *firstFitEngine) Allocate(size int) (int, error) {
	p, err := e.alloc.Allocate(size)
	if err != nil {
		return 0, err
	}
	return p.Index, nil
}

func (e *firstFitEngine) Release(id int) error {
	return e.alloc.Deallocate(id)
}

func (e *firstFitEngine) Reset() {
	e.alloc.Reset()
}

func (e *firstFitEngine) Columns() []string {
	return []string{"Block Number", "Block Size (KB)", "Allocated Size (KB)", "Free Size (KB)", "Occupied (Yes/No)"}
}

func (e *firstFitEngine) Rows() []Row {
	snap := e.alloc.Snapshot()
	rows := make([]Row, len(snap))
	for i, b := range snap {
		rows[i] = Row{intCell(b.Index), intCell(b.Capacity), intCell(b.Allocated), intCell(b.Free), yesNo(b.Occupied)}
	}
	return rows
}

func (e *firstFitEngine) Stats() []Metric {
	s := e.alloc.Stats()
	return []Metric{
		{Name: "blocks", Value: s.Blocks},
		{Name: "occupied blocks", Value: s.OccupiedBlocks},
		{Name: "total capacity", Unit: "KB", Value: s.TotalCapacity},
		{Name: "allocated", Unit: "KB", Value: s.Allocated},
		{Name: "free capacity", Unit: "KB", Value: s.FreeCapacity},
		{Name: "internal fragmentation", Unit: "KB", Value: s.InternalFragmentation},
		{Name: "largest free block", Unit: "KB", Value: s.LargestFreeBlock},
	}
}

func (e *firstFitEngine) State() []int64 {
	snap := e.alloc.Snapshot()
	state := make([]int64, 0, 2*len(snap))
	for _, b := range snap {
		state = append(state, int64(b.Capacity), int64(b.Allocated))
	}
	return state
}

func (e *firstFitEngine) describe(a Action, value int, err error) (string, string) {
	switch a.Op {
	case OpAllocate:
		switch allocerr.KindOf(err) {
		case allocerr.KindUnknown:
			return "Allocation Successful", fmt.Sprintf("Process allocated to Block %d", value)
		case allocerr.InvalidRequestSize:
			return "Invalid Input", "Please enter a valid process size."
		default:
			return "Allocation Failed", fmt.Sprintf("No suitable block found for process size %d KB.", a.Arg)
		}
	case OpRelease:
		switch allocerr.KindOf(err) {
		case allocerr.KindUnknown:
			return "Deallocation Successful", fmt.Sprintf("Block %d deallocated.", a.Arg)
		case allocerr.AlreadyFree:
			return "Deallocation Failed", fmt.Sprintf("Block %d is already free.", a.Arg)
		default:
			return "Deallocation Failed", "Invalid block number."
		}
	case OpReset:
		return "Reset Successful", "All memory blocks have been reset."
	}
	return "Memory Blocks", ""
}
