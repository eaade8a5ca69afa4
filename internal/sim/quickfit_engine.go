package sim

import (
	"fmt"

	"github.com/garethgeorge/memsim/internal/allocerr"
	"github.com/garethgeorge/memsim/internal/quickfit"
)

type quickFitEngine struct {
	alloc *quickfit.Allocator
}

var _ Engine = (*quickFitEngine)(nil)

func newQuickFitEngine(classes []int, population int, opts ...quickfit.Option) (*quickFitEngine, error) {
	a, err := quickfit.New(classes, population, opts...)
	if err != nil {
		return nil, err
	}
	return &quickFitEngine{alloc: a}, nil
}

func (e *quickFitEngine) Mode() Mode {
	return QuickFit
}

func (e *quickFitEngine) Allocate(size int) (int, error) {
	p, err := e.alloc.Allocate(size)
	if err != nil {
		return 0, err
	}
	return p.Capacity, nil
}

func (e *quickFitEngine) Release(id int) error {
	return e.alloc.Deallocate(id)
}

func (e *quickFitEngine) Reset() {
	e.alloc.Reset()
}

func (e *quickFitEngine) Columns() []string {
	return []string{"Block Size (KB)", "Free Blocks", "Allocated Blocks"}
}

func (e *quickFitEngine) Rows() []Row {
	snap := e.alloc.Snapshot()
	rows := make([]Row, len(snap))
	for i, c := range snap {
		free := intCell(c.FreeCount)
		if c.FreeCount == 0 {
			free.Highlight = HighlightExhausted
		}
		rows[i] = Row{intCell(c.Capacity), free, intCell(c.Outstanding)}
	}
	return rows
}

func (e *quickFitEngine) Stats() []Metric {
	s := e.alloc.Stats()
	return []Metric{
		{Name: "size classes", Value: s.Classes},
		{Name: "free blocks", Value: s.FreeTokens},
		{Name: "allocated blocks", Value: s.OutstandingTokens},
		{Name: "free capacity", Unit: "KB", Value: s.FreeCapacity},
		{Name: "allocated capacity", Unit: "KB", Value: s.OutstandingCapacity},
		{Name: "inflated classes", Value: s.InflatedClasses},
	}
}

func (e *quickFitEngine) State() []int64 {
	snap := e.alloc.Snapshot()
	state := make([]int64, 0, 3*len(snap))
	for _, c := range snap {
		state = append(state, int64(c.Capacity), int64(c.FreeCount), int64(c.Outstanding))
	}
	return state
}

func (e *quickFitEngine) describe(a Action, value int, err error) (string, string) {
	switch a.Op {
	case OpAllocate:
		switch allocerr.KindOf(err) {
		case allocerr.KindUnknown:
			return "Allocation Successful", fmt.Sprintf("Process of size %d KB allocated in block size %d KB.", a.Arg, value)
		case allocerr.InvalidRequestSize:
			return "Invalid Input", "Please enter a valid process size."
		default:
			return "Allocation Failed", fmt.Sprintf("No suitable block found for process size %d KB.", a.Arg)
		}
	case OpRelease:
		switch allocerr.KindOf(err) {
		case allocerr.KindUnknown:
			return "Deallocation Successful", fmt.Sprintf("Block of size %d KB deallocated.", a.Arg)
		case allocerr.NothingOutstanding:
			return "Deallocation Failed", fmt.Sprintf("No allocated block of size %d KB to release.", a.Arg)
		default:
			return "Deallocation Failed", "Invalid block size."
		}
	case OpReset:
		return "Reset Successful", "Memory has been reset."
	}
	return "Free Lists", ""
}
